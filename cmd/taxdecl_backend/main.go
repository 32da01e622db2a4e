package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/araratsoft/tax_declaration_app/internal/core/services"
	"github.com/araratsoft/tax_declaration_app/internal/handlers"
	"github.com/araratsoft/tax_declaration_app/internal/middleware"
	"github.com/araratsoft/tax_declaration_app/internal/repositories/database/pgsql"
	"github.com/araratsoft/tax_declaration_app/pkg/config"
	"github.com/araratsoft/tax_declaration_app/pkg/database"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// @title Tax Declaration Backend API
// @version 1.0
// @description Rule driven classification backend for income tax declarations.

// @host localhost:8080
// @BasePath /api/v1
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize database connection pool (for application use)
	dbPool, err := database.NewPgxPool(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer dbPool.Close()
	logger.Info("Database connection pool established.")

	if err := runMigrations(cfg.DatabaseURL, logger); err != nil {
		logger.Error("Failed to apply migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, recovery)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "X-User-ID")
	r.Use(cors.New(corsConfig))

	// Caller identity comes from the authenticating reverse proxy
	r.Use(middleware.IdentityMiddleware())

	rate, err := limiter.NewRateFromFormatted(cfg.RateLimit)
	if err != nil {
		logger.Error("Invalid rate limit format", slog.String("rate", cfg.RateLimit), slog.String("error", err.Error()))
		os.Exit(1)
	}
	r.Use(middleware.RateLimit(limiter.New(memory.NewStore(), rate)))

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, buildServices(cfg, dbPool, logger))

	logger.Info("Server starting", slog.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// buildServices wires repositories into services. Handlers get request-scoped
// loggers from context, so services only need the base logger.
func buildServices(cfg *config.Config, dbPool *pgxpool.Pool, logger *slog.Logger) *handlers.Services {
	declRepo := pgsql.NewDeclarationRepository(dbPool)
	pointRepo := pgsql.NewDeclarationPointRepository(dbPool)
	ruleRepo := pgsql.NewRuleRepository(dbPool)
	txnRepo := pgsql.NewTransactionRepository(dbPool)
	rateRepo := pgsql.NewExchangeRateRepository(dbPool)
	reviewRepo := pgsql.NewReviewQueueRepository(dbPool)

	rateService := services.NewExchangeRateService(rateRepo, cfg.LocalCurrency, logger)
	reviewService := services.NewReviewService(reviewRepo, txnRepo, pointRepo, ruleRepo, logger)

	return &handlers.Services{
		Declaration:    services.NewDeclarationService(declRepo, txnRepo, logger),
		Point:          services.NewDeclarationPointService(pointRepo, logger),
		Rule:           services.NewRuleService(ruleRepo, pointRepo, logger),
		Classification: services.NewClassificationService(txnRepo, ruleRepo, declRepo, rateService, reviewService, cfg.ScopeFallbackLocal, logger),
		Review:         reviewService,
		ExchangeRate:   rateService,
	}
}

// runMigrations applies pending schema migrations using a temporary
// database/sql connection over the pgx stdlib driver.
func runMigrations(databaseURL string, logger *slog.Logger) error {
	logger.Info("Running database migrations...")

	migrationDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return err
	}
	if err := migrationDB.Ping(); err != nil {
		_ = migrationDB.Close()
		return err
	}

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		_ = migrationDB.Close()
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		_ = migrationDB.Close()
		return err
	}

	upErr := m.Up()
	if upErr != nil && upErr != migrate.ErrNoChange {
		return upErr
	}

	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		return sourceErr
	}
	if dbErr != nil {
		return dbErr
	}

	if upErr == migrate.ErrNoChange {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}
