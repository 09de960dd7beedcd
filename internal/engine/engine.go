// Package engine runs the deterministic stages for one inspection:
// flatten, derive, resolve, classify, score and synthesize. It performs no I/O
// and is safe for concurrent use.
package engine

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ppiankov/riskline/internal/classify"
	"github.com/ppiankov/riskline/internal/derive"
	"github.com/ppiankov/riskline/internal/facts"
	"github.com/ppiankov/riskline/internal/model"
	"github.com/ppiankov/riskline/internal/narrative"
	"github.com/ppiankov/riskline/internal/priority"
	"github.com/ppiankov/riskline/internal/score"
)

// ErrInvalidBundle is returned by New when the configuration cannot drive the engine
var ErrInvalidBundle = errors.New("invalid configuration bundle")

// Engine holds the read-only configuration and the stage components built from it
type Engine struct {
	bundle      *model.Bundle
	deriver     *derive.Deriver
	classifier  *classify.Classifier
	resolver    *priority.Resolver
	scorer      *score.Scorer
	synthesizer *narrative.Synthesizer
}

// New creates an engine from a loaded bundle
func New(bundle *model.Bundle) (*Engine, error) {
	if err := Validate(bundle); err != nil {
		return nil, err
	}

	return &Engine{
		bundle:      bundle,
		deriver:     derive.NewDeriver(bundle.Rules.Rules, derive.DefaultPredicates()),
		classifier:  classify.NewClassifier(bundle.Rules.Classification),
		resolver:    priority.NewResolver(bundle.Rules),
		scorer:      score.NewScorer(),
		synthesizer: narrative.NewSynthesizer(),
	}, nil
}

// Validate checks the parts of a bundle the engine depends on
func Validate(bundle *model.Bundle) error {
	if bundle == nil || bundle.Rules == nil {
		return fmt.Errorf("%w: missing rule book", ErrInvalidBundle)
	}
	if len(bundle.Rules.Matrix) == 0 {
		return fmt.Errorf("%w: empty priority matrix", ErrInvalidBundle)
	}
	for i, r := range bundle.Rules.Rules {
		if r.FindingID == "" {
			return fmt.Errorf("%w: rule %d has no finding_id", ErrInvalidBundle, i)
		}
		if !r.When.Operator.Valid() {
			return fmt.Errorf("%w: rule %d (%s) has unknown operator %q", ErrInvalidBundle, i, r.FindingID, r.When.Operator)
		}
	}
	return nil
}

// RulesetVersion returns the version of the injected rule book
func (e *Engine) RulesetVersion() int {
	return e.bundle.Rules.Version
}

// Run processes one inspection
func (e *Engine) Run(in model.Inspection) model.Result {
	// 1. Flatten answers
	table := facts.Flatten(in.Answers)

	// 2. Derive candidates
	candidates := e.deriver.Derive(table)

	layers := []priority.Layer{
		priority.DebugLayer(in.DebugOverrides),
		priority.GlobalLayer(e.bundle.GlobalOverrides),
	}

	// 3. Resolve static findings
	findings := make([]model.Finding, 0, len(candidates)+len(in.Custom))
	seen := make(map[string]bool)
	for _, c := range candidates {
		f := e.resolveStatic(c, table, layers)
		seen[f.ID] = true
		findings = append(findings, f)
	}

	// 4. Resolve custom findings
	for _, cf := range in.Custom {
		if cf.ID == "" || seen[cf.ID] {
			continue
		}
		seen[cf.ID] = true
		findings = append(findings, e.resolveCustom(cf, table, layers))
	}

	sort.SliceStable(findings, func(i, j int) bool {
		return urgencyRank(findings[i].PriorityFinal) > urgencyRank(findings[j].PriorityFinal)
	})

	// 5. Score
	inputs := make([]score.Input, 0, len(findings))
	for _, f := range findings {
		inputs = append(inputs, score.InputFromFinding(f))
	}
	overall := e.scorer.Calculate(inputs)

	// 6. Synthesize decision signals
	signals := e.synthesizer.Build(narrative.ContextFrom(findings, overall), in.Candidates)

	return model.Result{
		InspectionID: in.ID,
		Findings:     findings,
		Score:        overall,
		Signals:      signals,
	}
}

// Narrate rebuilds the decision signals of a finished result from new
// candidate sentences. Findings and score are left untouched.
func (e *Engine) Narrate(result model.Result, candidates []string) model.DecisionSignals {
	return e.synthesizer.Build(narrative.ContextFrom(result.Findings, result.Score), candidates)
}

func (e *Engine) resolveStatic(c model.Candidate, table model.Facts, layers []priority.Layer) model.Finding {
	meta := e.lookupMeta(c.FindingID)
	profile := e.lookupProfile(c.FindingID)

	dims := model.Dimensions{
		Safety:     meta.Safety,
		Urgency:    meta.Urgency,
		Liability:  meta.Liability,
		Severity:   profile.Severity,
		Likelihood: profile.Likelihood,
		Escalation: profile.Escalation,
		BudgetBand: profile.BudgetBand,
		BudgetLow:  profile.BudgetLow,
		BudgetHigh: profile.BudgetHigh,
		Category:   profile.Category,
	}
	dims = priority.MergeDimensions(c.FindingID, dims, layers...).WithDefaults()

	res := e.resolver.Resolve(c.FindingID, dims)

	f := model.Finding{
		ID:               c.FindingID,
		Title:            meta.Title,
		Source:           c.Source,
		Priority:         c.PriorityHint,
		PrioritySelected: res.Bucket,
		BudgetLow:        dims.BudgetLow,
		BudgetHigh:       dims.BudgetHigh,
		PhotoIDs:         photoIDs(table, c.FindingID, nil),
		Dimensions:       dims,
		Trace:            res.Trace,
	}
	return e.finish(f, layers)
}

func (e *Engine) resolveCustom(cf model.CustomFinding, table model.Facts, layers []priority.Layer) model.Finding {
	dims := model.Dimensions{
		Safety:     cf.Dimensions.Safety,
		Urgency:    cf.Dimensions.Urgency,
		Liability:  cf.Dimensions.Liability,
		Severity:   cf.Dimensions.Severity,
		Likelihood: cf.Dimensions.Likelihood,
		Escalation: cf.Dimensions.Escalation,
		BudgetBand: cf.BudgetBand,
		BudgetLow:  cf.Dimensions.BudgetLow,
		BudgetHigh: cf.Dimensions.BudgetHigh,
		Category:   cf.Category,
	}
	dims = priority.MergeDimensions(cf.ID, dims, layers...).WithDefaults()

	res := e.resolver.ResolveCustom(cf.ID, dims)

	f := model.Finding{
		ID:                 cf.ID,
		Title:              cf.Title,
		Source:             model.SourceCustom,
		PriorityCalculated: res.Bucket,
		BudgetLow:          dims.BudgetLow,
		BudgetHigh:         dims.BudgetHigh,
		PhotoIDs:           photoIDs(table, cf.ID, cf.PhotoIDs),
		Dimensions:         dims,
		Trace:              res.Trace,
	}
	if selected, ok := model.ParsePriority(cf.Dimensions.Priority); ok {
		f.PrioritySelected = selected
	}
	return e.finish(f, layers)
}

// finish applies override precedence, title fallback and classification
func (e *Engine) finish(f model.Finding, layers []priority.Layer) model.Finding {
	f = priority.Merge(f, layers...)
	if f.Title == "" {
		f.Title = model.HumanizeID(f.ID)
	}
	if f.OverrideReason != "" {
		f.Trace = append(f.Trace, fmt.Sprintf("%s -> %s", f.OverrideReason, f.PriorityFinal))
	}
	f.Classification = e.classifier.Classify(f.ID)
	return f
}

func (e *Engine) lookupMeta(id string) model.FindingMeta {
	if meta, ok := e.bundle.Rules.Findings[id]; ok {
		return meta
	}
	return e.bundle.Rules.Findings[model.Normalize(id)]
}

func (e *Engine) lookupProfile(id string) model.Profile {
	if p, ok := e.bundle.Profiles[id]; ok {
		return p
	}
	return e.bundle.Profiles[model.Normalize(id)]
}

// photoIDs merges explicit IDs with the photos.<FINDING_ID> fact, de-duplicated
func photoIDs(table model.Facts, id string, explicit []string) []string {
	out := []string{}
	seen := make(map[string]bool)
	add := func(s string) {
		if s == "" || seen[s] {
			return
		}
		seen[s] = true
		out = append(out, s)
	}

	for _, s := range explicit {
		add(s)
	}

	v, ok := table.Get("photos." + id)
	if !ok {
		return out
	}
	switch list := v.(type) {
	case []any:
		for _, item := range list {
			if s, ok := item.(string); ok {
				add(s)
			}
		}
	case []string:
		for _, s := range list {
			add(s)
		}
	case string:
		add(list)
	}
	return out
}

func urgencyRank(p model.Priority) int {
	switch p {
	case model.PriorityImmediate:
		return 3
	case model.PriorityUrgent:
		return 2
	case model.PriorityRecommended:
		return 1
	}
	return 0
}
