// Package priority resolves one authoritative priority bucket per finding from
// the base priority matrix, liability adjustments, guardrails, hard overrides,
// custom dimensions and layered override sources.
package priority

import (
	"fmt"

	"github.com/ppiankov/riskline/internal/model"
)

// DefaultCustomThreshold is the severity × likelihood product that upgrades a custom finding
const DefaultCustomThreshold = 12

// ladder is the order liability adjustments step through
var ladder = []model.Priority{
	model.PriorityPlanMonitor,
	model.PriorityRecommended,
	model.PriorityImmediate,
}

// Resolver computes base buckets from a rule book
type Resolver struct {
	matrix          []model.MatrixEntry
	guardrails      model.Guardrails
	liability       []model.LiabilityRule
	hardOverrides   map[string]bool
	customThreshold int
}

// Resolution is the outcome of base bucket computation
type Resolution struct {
	Bucket       model.Priority // Bucket after all adjustments
	Base         model.Priority // Bucket straight from the matrix
	HardOverride bool
	Trace        []string
}

// NewResolver creates a resolver from the priority sections of a rule book
func NewResolver(book *model.RuleBook) *Resolver {
	r := &Resolver{
		hardOverrides:   make(map[string]bool),
		customThreshold: DefaultCustomThreshold,
	}
	if book == nil {
		return r
	}

	r.matrix = book.Matrix
	r.guardrails = book.Guardrails
	r.liability = book.Liability
	for _, id := range book.HardOverrides {
		r.hardOverrides[model.Normalize(id)] = true
	}
	if book.CustomThreshold > 0 {
		r.customThreshold = book.CustomThreshold
	}
	return r
}

// Resolve computes the bucket for a rule-table or predicate finding
func (r *Resolver) Resolve(findingID string, dims model.Dimensions) Resolution {
	dims = dims.WithDefaults()

	// 1. Hard overrides skip every other step
	if r.hardOverrides[model.Normalize(findingID)] {
		return Resolution{
			Bucket:       model.PriorityImmediate,
			Base:         model.PriorityImmediate,
			HardOverride: true,
			Trace:        []string{"hard_override -> IMMEDIATE"},
		}
	}

	// 2. Ordered matrix, first match wins
	base, trace := r.matrixBucket(dims)
	res := Resolution{Bucket: base, Base: base, Trace: []string{trace}}

	// 3. Guardrails
	noDowngrade := r.guardrails.NoDowngradeWhenSafetyHigh && dims.Safety == model.SafetyHigh
	if dims.Urgency == model.UrgencyImmediate {
		if r.guardrails.NoLiabilityAdjustmentWhenUrgencyImmediate {
			res.Trace = append(res.Trace, "guardrail no_liability_adjustment_when_urgency_immediate")
		} else {
			res.Trace = append(res.Trace, "urgency IMMEDIATE: liability adjustment skipped")
		}
		return res
	}

	// 4. Liability adjustment
	for _, rule := range r.liability {
		if model.Normalize(rule.Liability) != dims.Liability {
			continue
		}

		switch model.Normalize(rule.Action) {
		case model.ActionUp:
			if res.Bucket != model.PriorityPlanMonitor && res.Bucket != model.PriorityRecommended {
				continue
			}
			ceiling := bucketOr(rule.Ceiling, model.PriorityImmediate)
			next := stepUp(res.Bucket, ceiling)
			if next != res.Bucket {
				res.Trace = append(res.Trace, fmt.Sprintf("liability %s UP: %s -> %s", dims.Liability, res.Bucket, next))
				res.Bucket = next
			}

		case model.ActionDown:
			if res.Bucket != model.PriorityRecommended {
				continue
			}
			if noDowngrade {
				res.Trace = append(res.Trace, "guardrail no_downgrade_when_safety_high")
				continue
			}
			floor := bucketOr(rule.Floor, model.PriorityPlanMonitor)
			next := stepDown(res.Bucket, floor)
			if next != res.Bucket {
				res.Trace = append(res.Trace, fmt.Sprintf("liability %s DOWN: %s -> %s", dims.Liability, res.Bucket, next))
				res.Bucket = next
			}
		}
	}

	return res
}

// ResolveCustom computes the bucket for an author-entered finding. A finding
// that resolves to PLAN_MONITOR is upgraded to RECOMMENDED_0_3_MONTHS when its
// severity × likelihood reaches the threshold or its escalation is HIGH.
func (r *Resolver) ResolveCustom(findingID string, dims model.Dimensions) Resolution {
	dims = dims.WithDefaults()
	res := r.Resolve(findingID, dims)
	if res.Bucket != model.PriorityPlanMonitor {
		return res
	}

	product := Clamp(dims.Severity, 1, 5) * Clamp(dims.Likelihood, 1, 5)
	switch {
	case product >= r.customThreshold:
		res.Trace = append(res.Trace, fmt.Sprintf("custom severity×likelihood %d >= %d: PLAN_MONITOR -> RECOMMENDED_0_3_MONTHS", product, r.customThreshold))
		res.Bucket = model.PriorityRecommended
	case dims.Escalation == model.EscalationHigh:
		res.Trace = append(res.Trace, "custom escalation HIGH: PLAN_MONITOR -> RECOMMENDED_0_3_MONTHS")
		res.Bucket = model.PriorityRecommended
	}
	return res
}

func (r *Resolver) matrixBucket(dims model.Dimensions) (model.Priority, string) {
	for i, entry := range r.matrix {
		if model.Normalize(entry.When.Safety) != dims.Safety {
			continue
		}
		if entry.When.Urgency != "" && model.Normalize(entry.When.Urgency) != dims.Urgency {
			continue
		}
		bucket := bucketOr(entry.Then, model.PriorityPlanMonitor)
		return bucket, fmt.Sprintf("matrix[%d] safety=%s urgency=%s -> %s", i, dims.Safety, dims.Urgency, bucket)
	}
	return model.PriorityPlanMonitor, fmt.Sprintf("matrix default safety=%s urgency=%s -> PLAN_MONITOR", dims.Safety, dims.Urgency)
}

// Clamp limits v to [lo, hi]
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func bucketOr(p model.Priority, def model.Priority) model.Priority {
	if parsed, ok := model.ParsePriority(string(p)); ok {
		return parsed
	}
	return def
}

// rank orders buckets from least to most urgent
func rank(p model.Priority) int {
	switch p {
	case model.PriorityPlanMonitor:
		return 0
	case model.PriorityRecommended:
		return 1
	case model.PriorityUrgent:
		return 2
	case model.PriorityImmediate:
		return 3
	}
	return 0
}

func ladderIndex(p model.Priority) int {
	for i, b := range ladder {
		if b == p {
			return i
		}
	}
	return -1
}

// stepUp moves one rung up the ladder without passing ceiling
func stepUp(p, ceiling model.Priority) model.Priority {
	if rank(p) >= rank(ceiling) {
		return p
	}
	i := ladderIndex(p)
	if i < 0 || i+1 >= len(ladder) {
		return p
	}
	next := ladder[i+1]
	if rank(next) > rank(ceiling) {
		return ceiling
	}
	return next
}

// stepDown moves one rung down the ladder without passing floor
func stepDown(p, floor model.Priority) model.Priority {
	if rank(p) <= rank(floor) {
		return p
	}
	i := ladderIndex(p)
	if i <= 0 {
		return p
	}
	next := ladder[i-1]
	if rank(next) < rank(floor) {
		return floor
	}
	return next
}
