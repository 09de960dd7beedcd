package derive

import "github.com/ppiankov/riskline/internal/model"

// Deriver runs the rule table and then the procedural predicates
type Deriver struct {
	rules      *RuleEvaluator
	predicates *PredicateSet
}

// NewDeriver creates a deriver. A nil predicate set disables procedural checks.
func NewDeriver(rules []model.Rule, predicates *PredicateSet) *Deriver {
	return &Deriver{
		rules:      NewRuleEvaluator(rules),
		predicates: predicates,
	}
}

// Derive returns candidates de-duplicated by finding ID, rule-table hits first
func (d *Deriver) Derive(f model.Facts) []model.Candidate {
	candidates := d.rules.Evaluate(f)
	if d.predicates != nil {
		candidates = append(candidates, d.predicates.Evaluate(f)...)
	}
	return dedupeCandidates(candidates)
}

func dedupeCandidates(candidates []model.Candidate) []model.Candidate {
	seen := make(map[string]bool)
	unique := make([]model.Candidate, 0, len(candidates))

	for _, c := range candidates {
		if c.FindingID == "" || seen[c.FindingID] {
			continue
		}
		seen[c.FindingID] = true
		unique = append(unique, c)
	}

	return unique
}
