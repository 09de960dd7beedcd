package priority

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/riskline/internal/model"
)

func amount(v float64) *float64 { return &v }

func TestMerge_Precedence(t *testing.T) {
	base := model.Finding{
		ID:                 "NO_RCD_PROTECTION",
		Title:              "No RCD protection",
		Priority:           model.PriorityPlanMonitor,
		PrioritySelected:   model.PriorityRecommended,
		PriorityCalculated: model.PriorityRecommended,
	}

	debug := DebugLayer(map[string]model.Override{"NO_RCD_PROTECTION": {Priority: "IMMEDIATE"}})
	global := GlobalLayer(map[string]model.Override{"NO_RCD_PROTECTION": {Priority: "PLAN_MONITOR"}})
	empty := GlobalLayer(nil)

	tests := []struct {
		name    string
		finding model.Finding
		layers  []Layer
		want    model.Priority
		reason  string
	}{
		{"debug beats global and calculated", base, []Layer{debug, global}, model.PriorityImmediate, model.ReasonDebugOverride},
		{"global beats calculated", base, []Layer{empty, global}, model.PriorityPlanMonitor, model.ReasonGlobalOverride},
		{"calculated without overrides", base, nil, model.PriorityRecommended, model.ReasonCustomDimensions},
		{"selected without calculated", model.Finding{ID: "X", Priority: model.PriorityPlanMonitor, PrioritySelected: model.PriorityImmediate}, nil, model.PriorityImmediate, ""},
		{"base priority last", model.Finding{ID: "X", Priority: model.PriorityRecommended}, nil, model.PriorityRecommended, ""},
		{"nothing set", model.Finding{ID: "X"}, nil, model.PriorityPlanMonitor, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Merge(tt.finding, tt.layers...)
			assert.Equal(t, tt.want, got.PriorityFinal)
			assert.Equal(t, tt.reason, got.OverrideReason)
		})
	}
}

func TestMerge_EmptyOrUnparseableLayerPriorityIgnored(t *testing.T) {
	f := model.Finding{ID: "X", PrioritySelected: model.PriorityRecommended}
	debug := DebugLayer(map[string]model.Override{"X": {Priority: "whenever"}})
	global := GlobalLayer(map[string]model.Override{"X": {Title: "Only a title"}})

	got := Merge(f, debug, global)

	assert.Equal(t, model.PriorityRecommended, got.PriorityFinal)
	assert.Empty(t, got.OverrideReason)
	assert.Equal(t, "Only a title", got.Title)
}

func TestMerge_SynonymPriority(t *testing.T) {
	f := model.Finding{ID: "X", Priority: model.PriorityPlanMonitor}
	global := GlobalLayer(map[string]model.Override{"X": {Priority: "recommended"}})

	got := Merge(f, global)

	assert.Equal(t, model.PriorityRecommended, got.PriorityFinal)
	assert.Equal(t, model.ReasonGlobalOverride, got.OverrideReason)
}

func TestMerge_TitleAndBudgetIndependentOfPriority(t *testing.T) {
	f := model.Finding{
		ID:         "BOARD_AT_CAPACITY",
		Title:      "Board at capacity",
		Priority:   model.PriorityPlanMonitor,
		BudgetLow:  amount(800),
		BudgetHigh: amount(1500),
	}
	debug := DebugLayer(map[string]model.Override{
		"BOARD_AT_CAPACITY": {BudgetHigh: amount(2200)},
	})
	global := GlobalLayer(map[string]model.Override{
		"BOARD_AT_CAPACITY": {Title: "Switchboard full", Priority: "RECOMMENDED_0_3_MONTHS", BudgetHigh: amount(1900), BudgetLow: amount(900)},
	})

	got := Merge(f, debug, global)

	assert.Equal(t, model.PriorityRecommended, got.PriorityFinal)
	assert.Equal(t, model.ReasonGlobalOverride, got.OverrideReason)
	assert.Equal(t, "Switchboard full", got.Title)
	require.NotNil(t, got.BudgetLow)
	require.NotNil(t, got.BudgetHigh)
	assert.Equal(t, 900.0, *got.BudgetLow)
	assert.Equal(t, 2200.0, *got.BudgetHigh)
}

func TestMerge_DoesNotAliasOverrideAmounts(t *testing.T) {
	high := amount(100)
	layer := GlobalLayer(map[string]model.Override{"X": {BudgetHigh: high}})

	got := Merge(model.Finding{ID: "X"}, layer)
	*got.BudgetHigh = 5

	assert.Equal(t, 100.0, *high)
}

func TestMergeDimensions(t *testing.T) {
	profile := model.Dimensions{
		Safety:     "MODERATE",
		Urgency:    "SHORT_TERM",
		Liability:  "MEDIUM",
		Severity:   2,
		Likelihood: 2,
		Escalation: "LOW",
		BudgetBand: "LOW",
		Category:   "electrical",
	}
	debug := DebugLayer(map[string]model.Override{"X": {Safety: "high", Severity: 5}})
	global := GlobalLayer(map[string]model.Override{"X": {Safety: "LOW", Urgency: "immediate", Likelihood: 4}})

	got := MergeDimensions("X", profile, debug, global)

	assert.Equal(t, "HIGH", got.Safety)
	assert.Equal(t, "IMMEDIATE", got.Urgency)
	assert.Equal(t, "MEDIUM", got.Liability)
	assert.Equal(t, 5, got.Severity)
	assert.Equal(t, 4, got.Likelihood)
	assert.Equal(t, "LOW", got.Escalation)
	assert.Equal(t, "electrical", got.Category)
}

func TestMergeDimensions_OtherFindingUntouched(t *testing.T) {
	profile := model.DefaultDimensions()
	layer := GlobalLayer(map[string]model.Override{"Y": {Safety: "HIGH"}})

	assert.Equal(t, profile, MergeDimensions("X", profile, layer))
}
