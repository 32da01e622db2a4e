package rules

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Evaluator decides whether one atomic check holds for one transaction.
// Evaluation is best-effort and fault-isolated: malformed conditions, missing
// fields, bad literals and missing exchange rates all fail closed (no match,
// logged at Warn) so one broken rule can never abort an analysis run.
type Evaluator struct {
	rates  *RateSet
	logger *slog.Logger
}

// NewEvaluator creates an evaluator bound to one run's rate cache.
func NewEvaluator(rates *RateSet, logger *slog.Logger) *Evaluator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Evaluator{rates: rates, logger: logger}
}

// EvaluateCondition reports whether the check holds for the subject.
func (e *Evaluator) EvaluateCondition(sub Subject, check Check) bool {
	if check.Field == "" || check.Type == "" || check.Value == "" {
		e.logger.Warn("malformed condition skipped",
			slog.String("field", check.Field),
			slog.String("type", string(check.Type)))
		return false
	}

	if check.Type.IsNumeric() {
		return e.evaluateNumeric(sub, check)
	}

	fieldValue, ok := sub.ResolveField(check.Field)
	if !ok {
		return false
	}

	if check.Type.IsFieldComparison() {
		other, ok := sub.ResolveField(check.Value)
		if !ok {
			return false
		}
		switch check.Type {
		case OpContainsFieldValue:
			return strings.Contains(strings.ToLower(fieldValue), strings.ToLower(other))
		case OpNotContainsFieldValue:
			return !strings.Contains(strings.ToLower(fieldValue), strings.ToLower(other))
		case OpEqualsFieldValue:
			return normalize(fieldValue) == normalize(other)
		}
	}

	switch check.Type {
	case OpContainsKeyword:
		return containsAnyKeyword(fieldValue, check.Value)
	case OpNotContainsKeyword:
		return !containsAnyKeyword(fieldValue, check.Value)
	case OpEquals:
		return normalize(fieldValue) == normalize(check.Value)
	case OpRegexMatch:
		re, err := regexp.Compile("(?i)" + check.Value)
		if err != nil {
			e.logger.Warn("invalid regex in condition",
				slog.String("pattern", check.Value),
				slog.String("error", err.Error()))
			return false
		}
		return re.MatchString(fieldValue)
	}

	e.logger.Warn("unrecognized condition type",
		slog.String("type", string(check.Type)),
		slog.String("field", check.Field))
	return false
}

// evaluateNumeric compares the transaction amount, converted into local
// currency when needed, against the check's numeric literal(s). Numeric
// operators apply only to the amount field.
func (e *Evaluator) evaluateNumeric(sub Subject, check Check) bool {
	if check.Field != "amount" {
		e.logger.Warn("numeric comparison on non-amount field skipped",
			slog.String("field", check.Field),
			slog.String("type", string(check.Type)))
		return false
	}
	if sub.Txn == nil {
		return false
	}

	amount := sub.Txn.Amount
	currency := strings.ToUpper(sub.Txn.Currency)
	if currency != e.rates.LocalCurrency() {
		rate, ok := e.rates.RateFor(sub.Txn.TransactionDate, currency)
		if !ok {
			e.logger.Warn("no exchange rate available, condition fails closed",
				slog.String("currency", currency),
				slog.Time("date", sub.Txn.TransactionDate))
			return false
		}
		amount = amount.Mul(rate)
	}

	if check.Type == OpRangeAmount {
		bounds := strings.Split(check.Value, ",")
		if len(bounds) != 2 {
			e.logger.Warn("malformed range literal", slog.String("value", check.Value))
			return false
		}
		min, errMin := decimal.NewFromString(strings.TrimSpace(bounds[0]))
		max, errMax := decimal.NewFromString(strings.TrimSpace(bounds[1]))
		if errMin != nil || errMax != nil {
			e.logger.Warn("invalid number in range literal", slog.String("value", check.Value))
			return false
		}
		return amount.GreaterThanOrEqual(min) && amount.LessThanOrEqual(max)
	}

	threshold, err := decimal.NewFromString(strings.TrimSpace(check.Value))
	if err != nil {
		e.logger.Warn("invalid numeric literal in condition",
			slog.String("value", check.Value),
			slog.String("error", err.Error()))
		return false
	}

	switch check.Type {
	case OpGreaterThan:
		return amount.GreaterThan(threshold)
	case OpLessThan:
		return amount.LessThan(threshold)
	case OpGreaterThanOrEqual:
		return amount.GreaterThanOrEqual(threshold)
	case OpLessThanOrEqual:
		return amount.LessThanOrEqual(threshold)
	}
	return false
}

// containsAnyKeyword splits the literal on commas and reports whether any
// trimmed keyword is a substring of the field value, case-insensitively.
func containsAnyKeyword(fieldValue, literal string) bool {
	haystack := strings.ToLower(fieldValue)
	for _, kw := range strings.Split(strings.ToLower(literal), ",") {
		kw = strings.TrimSpace(kw)
		if kw != "" && strings.Contains(haystack, kw) {
			return true
		}
	}
	return false
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
