package model

import "time"

// RiskLevel is the overall risk classification of an inspection
type RiskLevel string

const (
	LevelLow      RiskLevel = "LOW"
	LevelModerate RiskLevel = "MODERATE"
	LevelElevated RiskLevel = "ELEVATED"
)

// OverallScore is the aggregate risk and budget snapshot for one report build
type OverallScore struct {
	Level           RiskLevel      `json:"overall_level"`
	AggregateScore  float64        `json:"aggregate_score"`
	CapexLow        float64        `json:"capex_low"`
	CapexHigh       float64        `json:"capex_high"`
	CapexIncomplete bool           `json:"capex_incomplete"`
	DominantRisk    []string       `json:"dominant_risk"`
	Breakdown       []FindingScore `json:"breakdown,omitempty"` // Per-finding inputs and formula
}

// FindingScore is the transparent per-finding scoring record
type FindingScore struct {
	FindingID      string  `json:"finding_id"`
	Category       string  `json:"category,omitempty"`
	RiskScore      int     `json:"risk_score"`
	PriorityWeight float64 `json:"priority_weight"`
	BudgetWeight   float64 `json:"budget_weight"`
	Score          float64 `json:"score"`
	Formula        string  `json:"formula"`
}

// Decision signal sources
const (
	SignalsFromTemplate   = "template"
	SignalsFromCandidates = "candidates"
	SignalsFromFallback   = "fallback"
)

// DecisionSignals is the synthesized narrative for a report
type DecisionSignals struct {
	Sentences       []string `json:"sentences"`
	IfNotAddressed  string   `json:"if_not_addressed"`
	WhyNotImmediate string   `json:"why_not_immediate"`
	ManageableRisk  string   `json:"manageable_risk"`
	Source          string   `json:"source"` // template, candidates, fallback
}

// Inspection is the engine input for one inspection
type Inspection struct {
	ID             string              `json:"id"`
	Answers        map[string]any      `json:"answers"`
	Custom         []CustomFinding     `json:"custom,omitempty"`
	DebugOverrides map[string]Override `json:"debug_overrides,omitempty"`
	Candidates     []string            `json:"candidates,omitempty"` // Optional narrative candidates
}

// Result is the engine output for one inspection
type Result struct {
	InspectionID string          `json:"inspection_id"`
	Findings     []Finding       `json:"findings"`
	Score        OverallScore    `json:"score"`
	Signals      DecisionSignals `json:"decision_signals"`
}

// Report wraps a Result with host metadata for rendering
type Report struct {
	RunID       string    `json:"run_id"`
	SourcePath  string    `json:"source_path,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
	RulesetVer  int       `json:"ruleset_version"`
	Result      Result    `json:"result"`
	Narrative   string    `json:"narrative_provider,omitempty"` // LLM provider/model that supplied candidates, if any
	Warnings    []string  `json:"warnings,omitempty"`
}
