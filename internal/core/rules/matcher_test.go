package rules_test

import (
	"encoding/json"
	"testing"

	"github.com/araratsoft/tax_declaration_app/internal/core/rules"
	"github.com/araratsoft/tax_declaration_app/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMatcher() *rules.Matcher {
	eval := rules.NewEvaluator(rules.NewRateSet("AMD", nil), nil)
	return rules.NewMatcher(eval, nil)
}

func ruleWithConditions(conditions string) *models.Rule {
	return &models.Rule{
		RuleID:     "rule-1",
		Name:       "test rule",
		Conditions: json.RawMessage(conditions),
	}
}

func TestMatches_NestedFormat(t *testing.T) {
	m := newMatcher()
	sub := rules.Subject{Txn: incomeTxn("Payment from Horizon LLC for services")}

	tests := []struct {
		name       string
		conditions string
		want       bool
	}{
		{
			name: "single AND group under OR root",
			conditions: `{"root_logic":"OR","groups":[
				{"group_logic":"AND","conditions":[{"field":"description","type":"CONTAINS_KEYWORD","value":"llc"}]}
			]}`,
			want: true,
		},
		{
			name: "AND root requires every group",
			conditions: `{"root_logic":"AND","groups":[
				{"group_logic":"AND","conditions":[{"field":"description","type":"CONTAINS_KEYWORD","value":"llc"}]},
				{"group_logic":"AND","conditions":[{"field":"description","type":"CONTAINS_KEYWORD","value":"dividend"}]}
			]}`,
			want: false,
		},
		{
			name: "OR root matches when any group does",
			conditions: `{"root_logic":"OR","groups":[
				{"group_logic":"AND","conditions":[{"field":"description","type":"CONTAINS_KEYWORD","value":"dividend"}]},
				{"group_logic":"OR","conditions":[{"field":"description","type":"CONTAINS_KEYWORD","value":"services"}]}
			]}`,
			want: true,
		},
		{
			name: "AND group requires every check",
			conditions: `{"root_logic":"AND","groups":[
				{"group_logic":"AND","conditions":[
					{"field":"description","type":"CONTAINS_KEYWORD","value":"llc"},
					{"field":"description","type":"CONTAINS_KEYWORD","value":"dividend"}
				]}
			]}`,
			want: false,
		},
		{
			name: "unknown logic defaults to AND",
			conditions: `{"root_logic":"XOR","groups":[
				{"group_logic":"MAYBE","conditions":[{"field":"description","type":"CONTAINS_KEYWORD","value":"llc"}]}
			]}`,
			want: true,
		},
		{
			name:       "empty group list never matches",
			conditions: `{"root_logic":"AND","groups":[]}`,
			want:       false,
		},
		{
			name: "group with empty check list never matches",
			conditions: `{"root_logic":"AND","groups":[
				{"group_logic":"AND","conditions":[]}
			]}`,
			want: false,
		},
		{
			name:       "malformed JSON never matches",
			conditions: `{"root_logic":`,
			want:       false,
		},
		{
			name:       "null conditions never match",
			conditions: `null`,
			want:       false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Matches(sub, ruleWithConditions(tt.conditions)))
		})
	}
}

func TestMatches_LegacyFormat(t *testing.T) {
	m := newMatcher()
	sub := rules.Subject{Txn: incomeTxn("Monthly Salary Payment")}

	t.Run("legacy AND block", func(t *testing.T) {
		rule := ruleWithConditions(`[{"logic":"AND","checks":[
			{"field":"description","type":"CONTAINS_KEYWORD","value":"salary"},
			{"field":"description","type":"CONTAINS_KEYWORD","value":"payment"}
		]}]`)
		assert.True(t, m.Matches(sub, rule))
	})

	t.Run("legacy OR block", func(t *testing.T) {
		rule := ruleWithConditions(`[{"logic":"OR","checks":[
			{"field":"description","type":"CONTAINS_KEYWORD","value":"dividend"},
			{"field":"description","type":"CONTAINS_KEYWORD","value":"salary"}
		]}]`)
		assert.True(t, m.Matches(sub, rule))
	})

	t.Run("legacy empty list never matches", func(t *testing.T) {
		assert.False(t, m.Matches(sub, ruleWithConditions(`[]`)))
	})

	t.Run("legacy block with empty checks never matches", func(t *testing.T) {
		assert.False(t, m.Matches(sub, ruleWithConditions(`[{"logic":"AND","checks":[]}]`)))
	})
}

// A rule in the legacy flat shape and the same logic in the nested shape must
// match exactly the same transactions.
func TestMatches_FormatEquivalence(t *testing.T) {
	m := newMatcher()

	legacy := ruleWithConditions(`[{"logic":"OR","checks":[
		{"field":"description","type":"CONTAINS_KEYWORD","value":"salary"},
		{"field":"sender","type":"EQUALS","value":"acme llc"}
	]}]`)
	nested := ruleWithConditions(`{"root_logic":"OR","groups":[
		{"group_logic":"OR","conditions":[
			{"field":"description","type":"CONTAINS_KEYWORD","value":"salary"},
			{"field":"sender","type":"EQUALS","value":"acme llc"}
		]}
	]}`)

	descriptions := []string{
		"Monthly Salary Payment",
		"Transfer for rent",
		"acme payment",
		"",
	}
	for _, desc := range descriptions {
		sub := rules.Subject{Txn: incomeTxn(desc)}
		assert.Equal(t, m.Matches(sub, legacy), m.Matches(sub, nested), "description=%q", desc)
	}
}

// Scenario: entity-type rule with a nested tree matches "LLC" in a description
// case-insensitively, surrounding whitespace notwithstanding.
func TestMatches_EntityTypeNestedTree(t *testing.T) {
	m := newMatcher()
	rule := ruleWithConditions(`{"root_logic":"OR","groups":[{"group_logic":"AND","conditions":[{"field":"description","type":"CONTAINS_KEYWORD","value":"llc"}]}]}`)

	sub := rules.Subject{Txn: incomeTxn("  Payment from HORIZON LLC  ")}
	assert.True(t, m.Matches(sub, rule))

	sub = rules.Subject{Txn: incomeTxn("Payment from Anna")}
	assert.False(t, m.Matches(sub, rule))
}

func TestParseTree_LegacyTranslation(t *testing.T) {
	tree, err := rules.ParseTree(json.RawMessage(`[{"logic":"OR","checks":[{"field":"sender","type":"EQUALS","value":"x"}]}]`))
	require.NoError(t, err)
	assert.Equal(t, rules.Logic("OR"), tree.RootLogic)
	require.Len(t, tree.Groups, 1)
	assert.Equal(t, rules.Logic("OR"), tree.Groups[0].Logic)
	require.Len(t, tree.Groups[0].Checks, 1)
	assert.Equal(t, rules.OpEquals, tree.Groups[0].Checks[0].Type)
}

func TestParseTree_RoundTripsNestedShape(t *testing.T) {
	raw := json.RawMessage(`{"root_logic":"AND","groups":[{"group_logic":"OR","conditions":[{"field":"description","type":"CONTAINS_KEYWORD","value":"salary"}]}]}`)
	tree, err := rules.ParseTree(raw)
	require.NoError(t, err)

	out, err := json.Marshal(tree)
	require.NoError(t, err)
	assert.JSONEq(t, string(raw), string(out))
}
