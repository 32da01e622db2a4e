package rules

import (
	"encoding/json"
	"errors"
	"strings"
)

// Logic is a boolean combinator for checks within a group or groups under the
// root.
type Logic string

const (
	LogicAnd Logic = "AND"
	LogicOr  Logic = "OR"
)

// Operator is the closed set of condition types a check may carry. Adding an
// operator means extending this list and the evaluator's switch.
type Operator string

const (
	OpContainsKeyword    Operator = "CONTAINS_KEYWORD"
	OpNotContainsKeyword Operator = "DOES_NOT_CONTAIN_KEYWORD"
	OpEquals             Operator = "EQUALS"
	OpRegexMatch         Operator = "REGEX_MATCH"
	OpGreaterThan        Operator = "GREATER_THAN"
	OpLessThan           Operator = "LESS_THAN"
	OpGreaterThanOrEqual Operator = "GREATER_THAN_OR_EQUAL"
	OpLessThanOrEqual    Operator = "LESS_THAN_OR_EQUAL"
	OpRangeAmount        Operator = "RANGE_AMOUNT"

	// Field-comparison operators resolve Value as another field name instead
	// of a literal.
	OpContainsFieldValue    Operator = "CONTAINS_FIELD_VALUE"
	OpNotContainsFieldValue Operator = "NOT_CONTAINS_FIELD_VALUE"
	OpEqualsFieldValue      Operator = "EQUALS_FIELD_VALUE"
)

// IsNumeric reports whether the operator compares against the amount.
func (op Operator) IsNumeric() bool {
	switch op {
	case OpGreaterThan, OpLessThan, OpGreaterThanOrEqual, OpLessThanOrEqual, OpRangeAmount:
		return true
	}
	return false
}

// IsFieldComparison reports whether the operator's value names another field.
func (op Operator) IsFieldComparison() bool {
	switch op {
	case OpContainsFieldValue, OpNotContainsFieldValue, OpEqualsFieldValue:
		return true
	}
	return false
}

// Check is one atomic condition: a transaction field, an operator and either a
// literal value or (for field-comparison operators) another field name.
type Check struct {
	Field string   `json:"field"`
	Type  Operator `json:"type"`
	Value string   `json:"value"`
}

// Group is a flat list of checks combined by one logic operator.
type Group struct {
	Logic  Logic   `json:"group_logic"`
	Checks []Check `json:"conditions"`
}

// Tree is the internal (and preferred wire) representation of a rule's
// conditions: root logic over groups, group logic over checks.
type Tree struct {
	RootLogic Logic   `json:"root_logic"`
	Groups    []Group `json:"groups"`
}

// legacyBlock is the historical flat wire shape:
// [{"logic": "AND", "checks": [{"field","type","value"}, ...]}].
type legacyBlock struct {
	Logic  Logic   `json:"logic"`
	Checks []Check `json:"checks"`
}

var errEmptyConditions = errors.New("empty condition data")

// ParseTree decodes persisted condition data, accepting both the legacy flat
// shape and the nested shape, and always returns the nested representation.
// The legacy shape never travels past this boundary: its single logic block
// becomes one group whose logic doubles as the root logic.
func ParseTree(raw json.RawMessage) (*Tree, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil, errEmptyConditions
	}

	if strings.HasPrefix(trimmed, "[") {
		var blocks []legacyBlock
		if err := json.Unmarshal(raw, &blocks); err != nil {
			return nil, err
		}
		if len(blocks) == 0 {
			return &Tree{RootLogic: LogicAnd}, nil
		}
		first := blocks[0]
		return &Tree{
			RootLogic: first.Logic,
			Groups:    []Group{{Logic: first.Logic, Checks: first.Checks}},
		}, nil
	}

	var tree Tree
	if err := json.Unmarshal(raw, &tree); err != nil {
		return nil, err
	}
	return &tree, nil
}

// normalizeLogic maps a raw logic string onto AND/OR. Unknown values default
// to AND; defaulted reports whether that fallback was taken so callers can
// warn.
func normalizeLogic(l Logic) (logic Logic, defaulted bool) {
	switch Logic(strings.ToUpper(strings.TrimSpace(string(l)))) {
	case LogicAnd:
		return LogicAnd, false
	case LogicOr:
		return LogicOr, false
	default:
		return LogicAnd, true
	}
}
