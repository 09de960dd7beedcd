// Package derive produces candidate finding IDs from a fact table, using a
// declarative rule table and a fixed set of procedural predicates.
package derive

import (
	"fmt"
	"strings"

	"github.com/ppiankov/riskline/internal/model"
)

// RuleEvaluator evaluates an ordered rule table against a fact table
type RuleEvaluator struct {
	rules []model.Rule
}

// NewRuleEvaluator creates a rule evaluator
func NewRuleEvaluator(rules []model.Rule) *RuleEvaluator {
	return &RuleEvaluator{rules: rules}
}

// Evaluate returns one candidate per finding ID, from the first rule that matched it
func (e *RuleEvaluator) Evaluate(f model.Facts) []model.Candidate {
	var out []model.Candidate
	fired := make(map[string]bool)

	for i, rule := range e.rules {
		if fired[rule.FindingID] {
			continue
		}
		if !Match(rule.When, f) {
			continue
		}
		fired[rule.FindingID] = true

		hint, _ := model.ParsePriority(rule.PriorityHint)
		out = append(out, model.Candidate{
			FindingID:    rule.FindingID,
			PriorityHint: hint,
			Source:       model.SourceRule,
			Name:         fmt.Sprintf("rule[%d]", i),
		})
	}

	return out
}

// Match reports whether condition c holds against f.
// Array-valued facts match when any element satisfies the comparison.
// Absent or null facts only satisfy "exists: false".
func Match(c model.Condition, f model.Facts) bool {
	present := f.Present(c.Field)

	if c.Operator == model.OpExists {
		want := true
		if b, ok := toBool(c.Value); ok {
			want = b
		}
		return present == want
	}

	if !present {
		return false
	}
	actual, _ := f.Get(c.Field)

	target := c.Value
	if c.CompareField != "" {
		if !f.Present(c.CompareField) {
			return false
		}
		target, _ = f.Get(c.CompareField)
	}

	switch c.Operator {
	case model.OpEquals:
		return anyElement(actual, func(x any) bool { return looseEqual(x, target) })

	case model.OpNotEquals:
		return anyElement(actual, func(x any) bool { return !looseEqual(x, target) })

	case model.OpContains:
		return contains(actual, target)

	case model.OpNotContains:
		return !contains(actual, target)

	case model.OpGreaterThan:
		return compareNumeric(actual, target, func(a, b float64) bool { return a > b })

	case model.OpLessThan:
		return compareNumeric(actual, target, func(a, b float64) bool { return a < b })
	}

	return false
}

// contains is substring match for strings and membership for arrays
func contains(actual, target any) bool {
	if items, isArray := elements(actual); isArray {
		for _, item := range items {
			if looseEqual(item, target) {
				return true
			}
		}
		return false
	}
	return strings.Contains(toString(actual), toString(target))
}

func compareNumeric(actual, target any, cmp func(a, b float64) bool) bool {
	b, ok := toNumber(target)
	if !ok {
		return false
	}
	return anyElement(actual, func(x any) bool {
		a, ok := toNumber(x)
		return ok && cmp(a, b)
	})
}
