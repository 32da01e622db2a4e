package rules_test

import (
	"testing"
	"time"

	"github.com/araratsoft/tax_declaration_app/internal/core/rules"
	"github.com/araratsoft/tax_declaration_app/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func incomeTxn(description string) *models.Transaction {
	return &models.Transaction{
		TransactionID:   "txn-1",
		TransactionDate: date(2025, time.March, 10),
		Amount:          decimal.NewFromInt(100),
		Currency:        "AMD",
		Description:     description,
		Sender:          "ACME LLC",
		SenderAccount:   "1570001234",
	}
}

func newEvaluator(rates []models.ExchangeRate) *rules.Evaluator {
	return rules.NewEvaluator(rules.NewRateSet("AMD", rates), nil)
}

func TestEvaluateCondition_TextOperators(t *testing.T) {
	sub := rules.Subject{Txn: incomeTxn("  Monthly Salary Payment  ")}
	eval := newEvaluator(nil)

	tests := []struct {
		name  string
		check rules.Check
		want  bool
	}{
		{
			name:  "contains keyword, case-insensitive",
			check: rules.Check{Field: "description", Type: rules.OpContainsKeyword, Value: "SALARY"},
			want:  true,
		},
		{
			name:  "contains keyword matches any token in the list",
			check: rules.Check{Field: "description", Type: rules.OpContainsKeyword, Value: "bonus, salary ,dividend"},
			want:  true,
		},
		{
			name:  "contains keyword with no matching token",
			check: rules.Check{Field: "description", Type: rules.OpContainsKeyword, Value: "bonus,dividend"},
			want:  false,
		},
		{
			name:  "does not contain is the negation",
			check: rules.Check{Field: "description", Type: rules.OpNotContainsKeyword, Value: "bonus,dividend"},
			want:  true,
		},
		{
			name:  "does not contain fails when any token matches",
			check: rules.Check{Field: "description", Type: rules.OpNotContainsKeyword, Value: "bonus,salary"},
			want:  false,
		},
		{
			name:  "equals trims and lowercases both sides",
			check: rules.Check{Field: "description", Type: rules.OpEquals, Value: "monthly salary payment"},
			want:  true,
		},
		{
			name:  "regex is a case-insensitive search, not a full match",
			check: rules.Check{Field: "description", Type: rules.OpRegexMatch, Value: `sal\w+ payment`},
			want:  true,
		},
		{
			name:  "invalid regex fails closed",
			check: rules.Check{Field: "description", Type: rules.OpRegexMatch, Value: `sal(`},
			want:  false,
		},
		{
			name:  "unknown field fails closed",
			check: rules.Check{Field: "no_such_field", Type: rules.OpContainsKeyword, Value: "salary"},
			want:  false,
		},
		{
			name:  "unknown operator fails closed",
			check: rules.Check{Field: "description", Type: rules.Operator("SOUNDS_LIKE"), Value: "salary"},
			want:  false,
		},
		{
			name:  "missing value is malformed",
			check: rules.Check{Field: "description", Type: rules.OpContainsKeyword},
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, eval.EvaluateCondition(sub, tt.check))
		})
	}
}

func TestEvaluateCondition_FieldComparison(t *testing.T) {
	txn := incomeTxn("Transfer from Anna Hakobyan for rent")
	decl := &models.Declaration{FirstName: "Anna", LastName: "Hakobyan"}
	stmt := &models.Statement{BankName: "Ameriabank"}
	sub := rules.Subject{Txn: txn, Statement: stmt, Declaration: decl}
	eval := newEvaluator(nil)

	tests := []struct {
		name  string
		check rules.Check
		want  bool
	}{
		{
			name:  "description contains the declaration owner's first name",
			check: rules.Check{Field: "description", Type: rules.OpContainsFieldValue, Value: "statement__declaration__first_name"},
			want:  true,
		},
		{
			name:  "does-not-contain variant is the negation",
			check: rules.Check{Field: "description", Type: rules.OpNotContainsFieldValue, Value: "statement__declaration__first_name"},
			want:  false,
		},
		{
			name:  "equals-field compares normalized values",
			check: rules.Check{Field: "sender", Type: rules.OpEqualsFieldValue, Value: "statement__declaration__last_name"},
			want:  false,
		},
		{
			name:  "unresolvable comparison field fails closed",
			check: rules.Check{Field: "description", Type: rules.OpContainsFieldValue, Value: "statement__declaration__middle_name"},
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, eval.EvaluateCondition(sub, tt.check))
		})
	}

	t.Run("missing relation link fails closed", func(t *testing.T) {
		check := rules.Check{Field: "description", Type: rules.OpContainsFieldValue, Value: "statement__declaration__first_name"}
		assert.False(t, eval.EvaluateCondition(rules.Subject{Txn: txn, Statement: stmt}, check))
	})
}

func TestEvaluateCondition_NumericOperators(t *testing.T) {
	txn := incomeTxn("payment")
	txn.Amount = decimal.RequireFromString("250.50")
	sub := rules.Subject{Txn: txn}
	eval := newEvaluator(nil)

	tests := []struct {
		name  string
		check rules.Check
		want  bool
	}{
		{"greater than", rules.Check{Field: "amount", Type: rules.OpGreaterThan, Value: "250"}, true},
		{"greater than equal boundary", rules.Check{Field: "amount", Type: rules.OpGreaterThanOrEqual, Value: "250.50"}, true},
		{"less than", rules.Check{Field: "amount", Type: rules.OpLessThan, Value: "250.50"}, false},
		{"less than or equal boundary", rules.Check{Field: "amount", Type: rules.OpLessThanOrEqual, Value: "250.50"}, true},
		{"range inclusive of both ends", rules.Check{Field: "amount", Type: rules.OpRangeAmount, Value: "250.50, 300"}, true},
		{"range excludes outside values", rules.Check{Field: "amount", Type: rules.OpRangeAmount, Value: "251,300"}, false},
		{"range with trimmable spaces", rules.Check{Field: "amount", Type: rules.OpRangeAmount, Value: " 100 , 300 "}, true},
		{"malformed range fails closed", rules.Check{Field: "amount", Type: rules.OpRangeAmount, Value: "100"}, false},
		{"unparseable literal fails closed", rules.Check{Field: "amount", Type: rules.OpGreaterThan, Value: "abc"}, false},
		{"numeric operator on non-amount field is a no-match", rules.Check{Field: "description", Type: rules.OpGreaterThan, Value: "10"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, eval.EvaluateCondition(sub, tt.check))
		})
	}
}

func TestEvaluateCondition_CurrencyConversion(t *testing.T) {
	txn := incomeTxn("consulting invoice")
	txn.Amount = decimal.NewFromInt(100)
	txn.Currency = "USD"
	txn.TransactionDate = date(2025, time.March, 10)
	sub := rules.Subject{Txn: txn}

	check := rules.Check{Field: "amount", Type: rules.OpGreaterThan, Value: "30000"}

	t.Run("converts with the most recent prior rate", func(t *testing.T) {
		eval := newEvaluator([]models.ExchangeRate{
			{Date: date(2025, time.March, 9), CurrencyCode: "USD", Rate: decimal.NewFromInt(400)},
		})
		// 100 * 400 = 40000 > 30000
		assert.True(t, eval.EvaluateCondition(sub, check))
	})

	t.Run("same-day rate is not used", func(t *testing.T) {
		eval := newEvaluator([]models.ExchangeRate{
			{Date: date(2025, time.March, 10), CurrencyCode: "USD", Rate: decimal.NewFromInt(400)},
		})
		assert.False(t, eval.EvaluateCondition(sub, check))
	})

	t.Run("missing rate fails closed", func(t *testing.T) {
		eval := newEvaluator(nil)
		assert.False(t, eval.EvaluateCondition(sub, check))
	})

	t.Run("local currency bypasses lookup", func(t *testing.T) {
		local := incomeTxn("salary")
		local.Amount = decimal.NewFromInt(40000)
		eval := newEvaluator(nil)
		assert.True(t, eval.EvaluateCondition(rules.Subject{Txn: local}, check))
	})
}
