package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/araratsoft/tax_declaration_app/internal/core/ports"
	"github.com/araratsoft/tax_declaration_app/internal/models"
)

type PgxExchangeRateRepository struct {
	BaseRepository
}

// NewExchangeRateRepository creates a new repository for exchange rate data.
func NewExchangeRateRepository(pool *pgxpool.Pool) ports.ExchangeRateRepository {
	return &PgxExchangeRateRepository{BaseRepository{Pool: pool}}
}

var _ ports.ExchangeRateRepository = (*PgxExchangeRateRepository)(nil)

// UpsertExchangeRate inserts the rate for one currency and day, overwriting
// any earlier value for that pair.
func (r *PgxExchangeRateRepository) UpsertExchangeRate(ctx context.Context, rate *models.ExchangeRate) error {
	query := `
		INSERT INTO exchange_rates (exchange_rate_id, rate_date, currency_code, rate, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (rate_date, currency_code)
		DO UPDATE SET rate = EXCLUDED.rate, last_updated_at = EXCLUDED.last_updated_at, last_updated_by = EXCLUDED.last_updated_by;
	`
	_, err := r.Pool.Exec(ctx, query,
		rate.ExchangeRateID,
		rate.Date,
		rate.CurrencyCode,
		rate.Rate,
		rate.CreatedAt,
		rate.CreatedBy,
		rate.LastUpdatedAt,
		rate.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert exchange rate for %s on %s: %w", rate.CurrencyCode, rate.Date.Format("2006-01-02"), err)
	}
	return nil
}

// ListRatesForCurrencies returns all published rates for the given currencies
// up to and including the given day.
func (r *PgxExchangeRateRepository) ListRatesForCurrencies(ctx context.Context, currencies []string, until time.Time) ([]models.ExchangeRate, error) {
	if len(currencies) == 0 {
		return nil, nil
	}

	query := `
		SELECT exchange_rate_id, rate_date, currency_code, rate, created_at, created_by, last_updated_at, last_updated_by
		FROM exchange_rates
		WHERE currency_code = ANY($1) AND rate_date <= $2
		ORDER BY currency_code, rate_date;
	`
	rows, err := r.Pool.Query(ctx, query, currencies, until)
	if err != nil {
		return nil, fmt.Errorf("failed to query exchange rates: %w", err)
	}
	defer rows.Close()

	var rates []models.ExchangeRate
	for rows.Next() {
		var rate models.ExchangeRate
		err := rows.Scan(
			&rate.ExchangeRateID,
			&rate.Date,
			&rate.CurrencyCode,
			&rate.Rate,
			&rate.CreatedAt,
			&rate.CreatedBy,
			&rate.LastUpdatedAt,
			&rate.LastUpdatedBy,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan exchange rate row: %w", err)
		}
		rates = append(rates, rate)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating exchange rate rows: %w", err)
	}
	return rates, nil
}
