package priority

import (
	"math"

	"github.com/ppiankov/riskline/internal/model"
)

// Layer is one override source keyed by finding ID
type Layer struct {
	Reason    string
	Overrides map[string]model.Override
}

// DebugLayer wraps per-inspection admin edits
func DebugLayer(overrides map[string]model.Override) Layer {
	return Layer{Reason: model.ReasonDebugOverride, Overrides: overrides}
}

// GlobalLayer wraps configuration-level overrides
func GlobalLayer(overrides map[string]model.Override) Layer {
	return Layer{Reason: model.ReasonGlobalOverride, Overrides: overrides}
}

// Merge resolves PriorityFinal, Title and the budget range of f from layers
// ordered highest precedence first. Priority precedence is: first layer with a
// parseable priority, then PriorityCalculated, then PrioritySelected, then
// Priority. Title and each budget bound are resolved independently.
func Merge(f model.Finding, layers ...Layer) model.Finding {
	f.PriorityFinal = ""
	f.OverrideReason = ""

	for _, l := range layers {
		o, ok := l.Overrides[f.ID]
		if !ok {
			continue
		}
		if p, ok := model.ParsePriority(o.Priority); ok {
			f.PriorityFinal = p
			f.OverrideReason = l.Reason
			break
		}
	}

	if f.PriorityFinal == "" && f.PriorityCalculated != "" {
		f.PriorityFinal = f.PriorityCalculated
		f.OverrideReason = model.ReasonCustomDimensions
	}
	if f.PriorityFinal == "" {
		f.PriorityFinal = f.PrioritySelected
	}
	if f.PriorityFinal == "" {
		f.PriorityFinal = f.Priority
	}
	if f.PriorityFinal == "" {
		f.PriorityFinal = model.PriorityPlanMonitor
	}

	if title, ok := firstString(f.ID, layers, func(o model.Override) string { return o.Title }); ok {
		f.Title = title
	}
	if low, ok := firstAmount(f.ID, layers, func(o model.Override) *float64 { return o.BudgetLow }); ok {
		f.BudgetLow = low
	}
	if high, ok := firstAmount(f.ID, layers, func(o model.Override) *float64 { return o.BudgetHigh }); ok {
		f.BudgetHigh = high
	}

	return f
}

// MergeDimensions overlays dimension fields supplied by layers onto dims.
// Each field is taken from the highest-precedence layer that supplies it.
func MergeDimensions(findingID string, dims model.Dimensions, layers ...Layer) model.Dimensions {
	pick := func(get func(model.Override) string) (string, bool) {
		return firstString(findingID, layers, get)
	}

	if v, ok := pick(func(o model.Override) string { return o.Safety }); ok {
		dims.Safety = model.Normalize(v)
	}
	if v, ok := pick(func(o model.Override) string { return o.Urgency }); ok {
		dims.Urgency = model.Normalize(v)
	}
	if v, ok := pick(func(o model.Override) string { return o.Liability }); ok {
		dims.Liability = model.Normalize(v)
	}
	if v, ok := pick(func(o model.Override) string { return o.Escalation }); ok {
		dims.Escalation = model.Normalize(v)
	}
	if v, ok := firstInt(findingID, layers, func(o model.Override) int { return o.Severity }); ok {
		dims.Severity = v
	}
	if v, ok := firstInt(findingID, layers, func(o model.Override) int { return o.Likelihood }); ok {
		dims.Likelihood = v
	}
	if v, ok := firstAmount(findingID, layers, func(o model.Override) *float64 { return o.BudgetLow }); ok {
		dims.BudgetLow = v
	}
	if v, ok := firstAmount(findingID, layers, func(o model.Override) *float64 { return o.BudgetHigh }); ok {
		dims.BudgetHigh = v
	}

	return dims
}

func firstString(id string, layers []Layer, get func(model.Override) string) (string, bool) {
	for _, l := range layers {
		if o, ok := l.Overrides[id]; ok {
			if v := get(o); v != "" {
				return v, true
			}
		}
	}
	return "", false
}

func firstInt(id string, layers []Layer, get func(model.Override) int) (int, bool) {
	for _, l := range layers {
		if o, ok := l.Overrides[id]; ok {
			if v := get(o); v != 0 {
				return v, true
			}
		}
	}
	return 0, false
}

func firstAmount(id string, layers []Layer, get func(model.Override) *float64) (*float64, bool) {
	for _, l := range layers {
		if o, ok := l.Overrides[id]; ok {
			if v := get(o); v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0) {
				amount := *v
				return &amount, true
			}
		}
	}
	return nil, false
}
