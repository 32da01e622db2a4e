package rules

import (
	"log/slog"

	"github.com/araratsoft/tax_declaration_app/internal/models"
)

// Matcher decides whether one whole rule matches one transaction by combining
// its condition groups. A rule never matches vacuously: an empty tree, empty
// group list or empty check list yields no match.
type Matcher struct {
	eval   *Evaluator
	logger *slog.Logger
}

// NewMatcher creates a matcher over the given evaluator.
func NewMatcher(eval *Evaluator, logger *slog.Logger) *Matcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Matcher{eval: eval, logger: logger}
}

// Matches reports whether the rule's condition tree holds for the subject.
// Malformed condition data makes the rule non-matching, never an error.
func (m *Matcher) Matches(sub Subject, rule *models.Rule) bool {
	tree, err := ParseTree(rule.Conditions)
	if err != nil {
		m.logger.Warn("rule has malformed conditions, skipping",
			slog.String("rule", rule.Name),
			slog.String("error", err.Error()))
		return false
	}
	if len(tree.Groups) == 0 {
		return false
	}

	rootLogic, defaulted := normalizeLogic(tree.RootLogic)
	if defaulted {
		m.logger.Warn("unknown root logic, defaulting to AND",
			slog.String("rule", rule.Name),
			slog.String("logic", string(tree.RootLogic)))
	}

	for _, group := range tree.Groups {
		matched := m.groupMatches(sub, rule.Name, group)
		if rootLogic == LogicAnd && !matched {
			return false
		}
		if rootLogic == LogicOr && matched {
			return true
		}
	}
	// AND: every group matched. OR: no group matched.
	return rootLogic == LogicAnd
}

func (m *Matcher) groupMatches(sub Subject, ruleName string, group Group) bool {
	if len(group.Checks) == 0 {
		return false
	}
	logic, defaulted := normalizeLogic(group.Logic)
	if defaulted {
		m.logger.Warn("unknown group logic, defaulting to AND",
			slog.String("rule", ruleName),
			slog.String("logic", string(group.Logic)))
	}
	for _, check := range group.Checks {
		holds := m.eval.EvaluateCondition(sub, check)
		if logic == LogicAnd && !holds {
			return false
		}
		if logic == LogicOr && holds {
			return true
		}
	}
	return logic == LogicAnd
}
