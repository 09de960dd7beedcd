package priority

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ppiankov/riskline/internal/model"
)

func fixtureBook() *model.RuleBook {
	return &model.RuleBook{
		Matrix: []model.MatrixEntry{
			{When: model.MatrixWhen{Safety: "HIGH", Urgency: "IMMEDIATE"}, Then: model.PriorityImmediate},
			{When: model.MatrixWhen{Safety: "HIGH"}, Then: model.PriorityRecommended},
			{When: model.MatrixWhen{Safety: "MODERATE", Urgency: "IMMEDIATE"}, Then: model.PriorityRecommended},
			{When: model.MatrixWhen{Safety: "MODERATE", Urgency: "SHORT_TERM"}, Then: model.PriorityRecommended},
			{When: model.MatrixWhen{Safety: "MODERATE"}, Then: model.PriorityPlanMonitor},
			{When: model.MatrixWhen{Safety: "LOW"}, Then: model.PriorityPlanMonitor},
		},
		Guardrails: model.Guardrails{
			NoDowngradeWhenSafetyHigh:                 true,
			NoLiabilityAdjustmentWhenUrgencyImmediate: true,
		},
		Liability: []model.LiabilityRule{
			{Liability: "HIGH", Action: model.ActionUp, Ceiling: model.PriorityRecommended},
			{Liability: "LOW", Action: model.ActionDown, Floor: model.PriorityPlanMonitor},
		},
		HardOverrides: []string{"THERMAL_HOTSPOT_MAJOR", "EXPOSED_LIVE_CONDUCTORS"},
	}
}

func TestResolve_Matrix(t *testing.T) {
	r := NewResolver(fixtureBook())

	tests := []struct {
		name   string
		dims   model.Dimensions
		bucket model.Priority
		base   model.Priority
	}{
		{"high immediate", model.Dimensions{Safety: "HIGH", Urgency: "IMMEDIATE", Liability: "LOW"}, model.PriorityImmediate, model.PriorityImmediate},
		{"high short term, low liability blocked by guardrail", model.Dimensions{Safety: "HIGH", Urgency: "SHORT_TERM", Liability: "LOW"}, model.PriorityRecommended, model.PriorityRecommended},
		{"moderate short term, low liability steps down", model.Dimensions{Safety: "MODERATE", Urgency: "SHORT_TERM", Liability: "LOW"}, model.PriorityPlanMonitor, model.PriorityRecommended},
		{"moderate long term, high liability steps up", model.Dimensions{Safety: "MODERATE", Urgency: "LONG_TERM", Liability: "HIGH"}, model.PriorityRecommended, model.PriorityPlanMonitor},
		{"high liability stops at ceiling", model.Dimensions{Safety: "HIGH", Urgency: "SHORT_TERM", Liability: "HIGH"}, model.PriorityRecommended, model.PriorityRecommended},
		{"moderate immediate skips liability", model.Dimensions{Safety: "MODERATE", Urgency: "IMMEDIATE", Liability: "LOW"}, model.PriorityRecommended, model.PriorityRecommended},
		{"lowercase input", model.Dimensions{Safety: "low", Urgency: "long-term", Liability: "medium"}, model.PriorityPlanMonitor, model.PriorityPlanMonitor},
		{"defaults", model.Dimensions{}, model.PriorityRecommended, model.PriorityRecommended},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := r.Resolve("SOME_FINDING", tt.dims)
			assert.Equal(t, tt.bucket, res.Bucket)
			assert.Equal(t, tt.base, res.Base)
			assert.False(t, res.HardOverride)
			assert.NotEmpty(t, res.Trace)
		})
	}
}

func TestResolve_HighShortTermLowLiabilityWithoutGuardrail(t *testing.T) {
	book := fixtureBook()
	book.Guardrails = model.Guardrails{}
	r := NewResolver(book)

	res := r.Resolve("SOME_FINDING", model.Dimensions{Safety: "HIGH", Urgency: "SHORT_TERM", Liability: "LOW"})

	assert.Equal(t, model.PriorityRecommended, res.Base)
	assert.Equal(t, model.PriorityPlanMonitor, res.Bucket)
}

func TestResolve_HardOverrideIgnoresDimensions(t *testing.T) {
	r := NewResolver(fixtureBook())

	dims := []model.Dimensions{
		{Safety: "LOW", Urgency: "LONG_TERM", Liability: "LOW"},
		{Safety: "HIGH", Urgency: "IMMEDIATE", Liability: "HIGH"},
		{Safety: "MODERATE", Urgency: "SHORT_TERM", Liability: "MEDIUM"},
		{},
	}

	for _, id := range []string{"THERMAL_HOTSPOT_MAJOR", "exposed-live-conductors"} {
		for _, d := range dims {
			res := r.Resolve(id, d)
			assert.Equal(t, model.PriorityImmediate, res.Bucket, "%s %+v", id, d)
			assert.True(t, res.HardOverride)
		}
	}
}

func TestResolve_DownNeverFiresForHighSafetyUnderGuardrail(t *testing.T) {
	book := fixtureBook()
	book.Matrix = []model.MatrixEntry{
		{When: model.MatrixWhen{Safety: "HIGH"}, Then: model.PriorityRecommended},
	}
	r := NewResolver(book)

	for _, urgency := range []string{"LONG_TERM", "SHORT_TERM"} {
		res := r.Resolve("X", model.Dimensions{Safety: "HIGH", Urgency: urgency, Liability: "LOW"})
		assert.Equal(t, model.PriorityRecommended, res.Bucket)
		assert.Contains(t, res.Trace, "guardrail no_downgrade_when_safety_high")
	}
}

func TestResolve_EmptyMatrixDefaultsToPlanMonitor(t *testing.T) {
	r := NewResolver(&model.RuleBook{})

	res := r.Resolve("X", model.Dimensions{Safety: "HIGH", Urgency: "IMMEDIATE"})

	assert.Equal(t, model.PriorityPlanMonitor, res.Bucket)
}

func TestResolveCustom(t *testing.T) {
	r := NewResolver(fixtureBook())

	tests := []struct {
		name string
		dims model.Dimensions
		want model.Priority
	}{
		{"product reaches threshold", model.Dimensions{Safety: "LOW", Severity: 4, Likelihood: 3, Escalation: "HIGH"}, model.PriorityRecommended},
		{"product alone", model.Dimensions{Safety: "LOW", Severity: 4, Likelihood: 3}, model.PriorityRecommended},
		{"escalation alone, mixed case", model.Dimensions{Safety: "LOW", Severity: 1, Likelihood: 1, Escalation: "High"}, model.PriorityRecommended},
		{"below threshold", model.Dimensions{Safety: "LOW", Severity: 3, Likelihood: 3}, model.PriorityPlanMonitor},
		{"clamped inputs", model.Dimensions{Safety: "LOW", Severity: 9, Likelihood: -2}, model.PriorityPlanMonitor},
		{"already recommended untouched", model.Dimensions{Safety: "HIGH", Urgency: "SHORT_TERM", Severity: 5, Likelihood: 5, Escalation: "HIGH"}, model.PriorityRecommended},
		{"immediate untouched", model.Dimensions{Safety: "HIGH", Urgency: "IMMEDIATE", Severity: 1, Likelihood: 1}, model.PriorityImmediate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.ResolveCustom("CUSTOM_X", tt.dims).Bucket)
		})
	}
}

func TestResolveCustom_ConfigurableThreshold(t *testing.T) {
	book := fixtureBook()
	book.CustomThreshold = 20
	r := NewResolver(book)

	res := r.ResolveCustom("CUSTOM_X", model.Dimensions{Safety: "LOW", Severity: 4, Likelihood: 4})

	assert.Equal(t, model.PriorityPlanMonitor, res.Bucket)
}

func TestStepBounds(t *testing.T) {
	assert.Equal(t, model.PriorityRecommended, stepUp(model.PriorityPlanMonitor, model.PriorityImmediate))
	assert.Equal(t, model.PriorityImmediate, stepUp(model.PriorityRecommended, model.PriorityImmediate))
	assert.Equal(t, model.PriorityUrgent, stepUp(model.PriorityRecommended, model.PriorityUrgent))
	assert.Equal(t, model.PriorityRecommended, stepUp(model.PriorityRecommended, model.PriorityRecommended))
	assert.Equal(t, model.PriorityPlanMonitor, stepDown(model.PriorityRecommended, model.PriorityPlanMonitor))
	assert.Equal(t, model.PriorityRecommended, stepDown(model.PriorityRecommended, model.PriorityRecommended))
}
