package rules_test

import (
	"testing"
	"time"

	"github.com/araratsoft/tax_declaration_app/internal/core/rules"
	"github.com/araratsoft/tax_declaration_app/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateSet_RateFor(t *testing.T) {
	rs := rules.NewRateSet("amd", []models.ExchangeRate{
		{Date: date(2025, time.March, 3), CurrencyCode: "usd", Rate: decimal.NewFromInt(390)},
		{Date: date(2025, time.March, 7), CurrencyCode: "USD", Rate: decimal.NewFromInt(400)},
		{Date: date(2025, time.March, 5), CurrencyCode: "EUR", Rate: decimal.NewFromInt(430)},
	})

	t.Run("local currency is always 1 without lookup", func(t *testing.T) {
		rate, ok := rs.RateFor(date(2025, time.March, 10), "AMD")
		require.True(t, ok)
		assert.True(t, rate.Equal(decimal.NewFromInt(1)))
	})

	t.Run("picks the latest rate strictly before the date", func(t *testing.T) {
		rate, ok := rs.RateFor(date(2025, time.March, 10), "USD")
		require.True(t, ok)
		assert.True(t, rate.Equal(decimal.NewFromInt(400)))
	})

	t.Run("same-day publication is excluded", func(t *testing.T) {
		rate, ok := rs.RateFor(date(2025, time.March, 7), "USD")
		require.True(t, ok)
		assert.True(t, rate.Equal(decimal.NewFromInt(390)))
	})

	t.Run("no prior rate means not found", func(t *testing.T) {
		_, ok := rs.RateFor(date(2025, time.March, 3), "USD")
		assert.False(t, ok)
	})

	t.Run("unknown currency means not found", func(t *testing.T) {
		_, ok := rs.RateFor(date(2025, time.March, 10), "GBP")
		assert.False(t, ok)
	})

	t.Run("currency codes are case-insensitive", func(t *testing.T) {
		rate, ok := rs.RateFor(date(2025, time.March, 6), "eur")
		require.True(t, ok)
		assert.True(t, rate.Equal(decimal.NewFromInt(430)))
	})

	t.Run("time of day does not shift the publication day", func(t *testing.T) {
		evening := time.Date(2025, time.March, 8, 22, 45, 0, 0, time.UTC)
		rate, ok := rs.RateFor(evening, "USD")
		require.True(t, ok)
		assert.True(t, rate.Equal(decimal.NewFromInt(400)))
	})
}
