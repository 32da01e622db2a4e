package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRate is one published rate: units of local currency per one unit of
// CurrencyCode on Date. Append-only reference data, looked up by the nearest
// prior date per currency.
type ExchangeRate struct {
	ExchangeRateID string          `json:"exchangeRateID"`
	Date           time.Time       `json:"date"`
	CurrencyCode   string          `json:"currencyCode"`
	Rate           decimal.Decimal `json:"rate"`
	AuditFields
}
