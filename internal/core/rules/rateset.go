package rules

import (
	"sort"
	"strings"
	"time"

	"github.com/araratsoft/tax_declaration_app/internal/models"
	"github.com/shopspring/decimal"
)

type dayRate struct {
	date time.Time
	rate decimal.Decimal
}

// RateSet is a run-scoped exchange-rate cache: all rates a batch might need,
// loaded once up front. It is read-only after construction and therefore safe
// to share across concurrent evaluations within one run.
type RateSet struct {
	localCurrency string
	byCurrency    map[string][]dayRate // sorted by date ascending
}

// NewRateSet builds a cache over the given published rates. Rates are
// "units of localCurrency per one foreign unit" on their publication date.
func NewRateSet(localCurrency string, rates []models.ExchangeRate) *RateSet {
	rs := &RateSet{
		localCurrency: strings.ToUpper(localCurrency),
		byCurrency:    make(map[string][]dayRate),
	}
	for _, r := range rates {
		code := strings.ToUpper(r.CurrencyCode)
		rs.byCurrency[code] = append(rs.byCurrency[code], dayRate{
			date: dayOf(r.Date),
			rate: r.Rate,
		})
	}
	for code := range rs.byCurrency {
		days := rs.byCurrency[code]
		sort.Slice(days, func(i, j int) bool { return days[i].date.Before(days[j].date) })
		rs.byCurrency[code] = days
	}
	return rs
}

// LocalCurrency returns the currency amounts are converted into.
func (rs *RateSet) LocalCurrency() string {
	return rs.localCurrency
}

// RateFor returns the rate in effect for a transaction dated date: the most
// recently published rate strictly before that day, since end-of-day
// publication means the same-day rate may not exist yet. The local currency
// always converts at 1 without a lookup.
func (rs *RateSet) RateFor(date time.Time, currency string) (decimal.Decimal, bool) {
	code := strings.ToUpper(currency)
	if code == rs.localCurrency {
		return decimal.NewFromInt(1), true
	}
	days := rs.byCurrency[code]
	if len(days) == 0 {
		return decimal.Decimal{}, false
	}
	day := dayOf(date)
	// Index of the first published day on/after the transaction day; the
	// entry just before it is the latest strictly-prior rate.
	i := sort.Search(len(days), func(i int) bool { return !days[i].date.Before(day) })
	if i == 0 {
		return decimal.Decimal{}, false
	}
	return days[i-1].rate, true
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
