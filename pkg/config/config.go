package config

import (
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL  string
	Port         string
	IsProduction bool

	// LocalCurrency is the currency thresholds are expressed in. Foreign
	// amounts are converted into it before numeric checks.
	LocalCurrency string

	// ScopeFallbackLocal defaults unmatched scope classifications to LOCAL
	// instead of leaving them undetermined.
	ScopeFallbackLocal bool

	// RateLimit is a ulule/limiter formatted rate, e.g. "100-M".
	RateLimit string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("LOCAL_CURRENCY", "AMD")
	viper.SetDefault("SCOPE_FALLBACK_LOCAL", true)
	viper.SetDefault("RATE_LIMIT", "100-M")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080" // Default port
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")

	cfg.LocalCurrency = strings.ToUpper(viper.GetString("LOCAL_CURRENCY"))
	if len(cfg.LocalCurrency) != 3 {
		log.Printf("Warning: Invalid LOCAL_CURRENCY ('%s'). Defaulting to AMD.\n", cfg.LocalCurrency)
		cfg.LocalCurrency = "AMD"
	}

	cfg.ScopeFallbackLocal = viper.GetBool("SCOPE_FALLBACK_LOCAL")

	cfg.RateLimit = viper.GetString("RATE_LIMIT")
	if cfg.RateLimit == "" {
		cfg.RateLimit = "100-M"
	}

	return cfg, nil
}
