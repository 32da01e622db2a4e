package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/araratsoft/tax_declaration_app/internal/models"
)

// UpsertExchangeRateRequest defines the data needed to record one daily rate.
// Rate is units of local currency per one unit of CurrencyCode.
type UpsertExchangeRateRequest struct {
	Date         string `json:"date" binding:"required"` // YYYY-MM-DD
	CurrencyCode string `json:"currencyCode" binding:"required,len=3"`
	Rate         string `json:"rate" binding:"required"`
}

// ExchangeRateResponse defines the data returned for an exchange rate.
type ExchangeRateResponse struct {
	ExchangeRateID string          `json:"exchangeRateID"`
	Date           time.Time       `json:"date"`
	CurrencyCode   string          `json:"currencyCode"`
	Rate           decimal.Decimal `json:"rate"`
	CreatedAt      time.Time       `json:"createdAt"`
	CreatedBy      string          `json:"createdBy"`
}

// ToExchangeRateResponse converts a models.ExchangeRate to its DTO
func ToExchangeRateResponse(rate *models.ExchangeRate) ExchangeRateResponse {
	return ExchangeRateResponse{
		ExchangeRateID: rate.ExchangeRateID,
		Date:           rate.Date,
		CurrencyCode:   rate.CurrencyCode,
		Rate:           rate.Rate,
		CreatedAt:      rate.CreatedAt,
		CreatedBy:      rate.CreatedBy,
	}
}
