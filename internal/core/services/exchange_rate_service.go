package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/araratsoft/tax_declaration_app/internal/apperrors"
	"github.com/araratsoft/tax_declaration_app/internal/core/ports"
	"github.com/araratsoft/tax_declaration_app/internal/core/rules"
	"github.com/araratsoft/tax_declaration_app/internal/dto"
	"github.com/araratsoft/tax_declaration_app/internal/models"
)

// ExchangeRateService maintains the daily reference-rate table used to bring
// foreign-currency amounts into the local currency for threshold checks.
type ExchangeRateService struct {
	rateRepo      ports.ExchangeRateRepository
	localCurrency string
	logger        *slog.Logger
}

// NewExchangeRateService creates a new ExchangeRateService.
func NewExchangeRateService(rateRepo ports.ExchangeRateRepository, localCurrency string, logger *slog.Logger) *ExchangeRateService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExchangeRateService{
		rateRepo:      rateRepo,
		localCurrency: strings.ToUpper(localCurrency),
		logger:        logger,
	}
}

// LocalCurrency returns the configured local currency code.
func (s *ExchangeRateService) LocalCurrency() string {
	return s.localCurrency
}

// UpsertExchangeRate records the rate for one currency on one date,
// overwriting any earlier value for that pair. Rates are local units per one
// foreign unit and must be positive; the local currency itself is implicit
// and cannot be stored.
func (s *ExchangeRateService) UpsertExchangeRate(ctx context.Context, req dto.UpsertExchangeRateRequest, creatorUserID string) (*models.ExchangeRate, error) {
	code := strings.ToUpper(strings.TrimSpace(req.CurrencyCode))
	if code == s.localCurrency {
		return nil, fmt.Errorf("%w: the local currency has an implicit rate of 1", apperrors.ErrValidation)
	}
	rateValue, err := decimal.NewFromString(req.Rate)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid rate value", apperrors.ErrValidation)
	}
	if !rateValue.IsPositive() {
		return nil, fmt.Errorf("%w: rate must be positive", apperrors.ErrValidation)
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid date, expected YYYY-MM-DD", apperrors.ErrValidation)
	}

	now := time.Now()
	rate := &models.ExchangeRate{
		ExchangeRateID: uuid.NewString(),
		Date:           date,
		CurrencyCode:   code,
		Rate:           rateValue,
	}
	rate.CreatedAt = now
	rate.CreatedBy = creatorUserID
	rate.LastUpdatedAt = now
	rate.LastUpdatedBy = creatorUserID
	if err := s.rateRepo.UpsertExchangeRate(ctx, rate); err != nil {
		return nil, fmt.Errorf("failed to save exchange rate: %w", err)
	}
	s.logger.Info("Exchange rate recorded",
		slog.String("currency", code),
		slog.String("date", req.Date),
		slog.String("rate", rateValue.String()),
	)
	return rate, nil
}

// PrefetchRateSet loads every stored rate for the given currencies up to and
// including the given date into an in-memory lookup.
func (s *ExchangeRateService) PrefetchRateSet(ctx context.Context, currencies []string, until time.Time) (*rules.RateSet, error) {
	if len(currencies) == 0 {
		return rules.NewRateSet(s.localCurrency, nil), nil
	}
	stored, err := s.rateRepo.ListRatesForCurrencies(ctx, currencies, until)
	if err != nil {
		return nil, fmt.Errorf("failed to load exchange rates: %w", err)
	}
	return rules.NewRateSet(s.localCurrency, stored), nil
}
