package model

import "strings"

// Priority is a priority bucket assigned to a finding
type Priority string

const (
	PriorityImmediate   Priority = "IMMEDIATE"              // Make safe now
	PriorityUrgent      Priority = "URGENT"                 // Legacy profile value, weighted between immediate and recommended
	PriorityRecommended Priority = "RECOMMENDED_0_3_MONTHS" // Address within three months
	PriorityPlanMonitor Priority = "PLAN_MONITOR"           // Plan for and monitor
)

// ParsePriority accepts the canonical bucket names and their legacy synonyms.
// The second return value is false when s names no known bucket.
func ParsePriority(s string) (Priority, bool) {
	switch Normalize(s) {
	case "IMMEDIATE":
		return PriorityImmediate, true
	case "URGENT":
		return PriorityUrgent, true
	case "RECOMMENDED_0_3_MONTHS", "RECOMMENDED", "RECOMMENDED_0_3":
		return PriorityRecommended, true
	case "PLAN_MONITOR", "PLAN", "MONITOR":
		return PriorityPlanMonitor, true
	default:
		return "", false
	}
}

// Normalize upper-cases s and folds spaces and hyphens to underscores
func Normalize(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "-", "_")
	return strings.ReplaceAll(s, " ", "_")
}

// Dimension values used by finding meta, profiles and overrides
const (
	SafetyLow      = "LOW"
	SafetyModerate = "MODERATE"
	SafetyHigh     = "HIGH"

	UrgencyLongTerm  = "LONG_TERM"
	UrgencyShortTerm = "SHORT_TERM"
	UrgencyImmediate = "IMMEDIATE"

	LiabilityLow    = "LOW"
	LiabilityMedium = "MEDIUM"
	LiabilityHigh   = "HIGH"

	EscalationLow  = "LOW"
	EscalationHigh = "HIGH"

	BudgetBandLow  = "LOW"
	BudgetBandMed  = "MED"
	BudgetBandHigh = "HIGH"
)

// Finding sources
const (
	SourceRule      = "rule"
	SourcePredicate = "predicate"
	SourceCompound  = "compound"
	SourceCustom    = "custom"
)

// Override reasons recorded when a source wins priority resolution
const (
	ReasonDebugOverride    = "debug_override"
	ReasonGlobalOverride   = "global_override"
	ReasonCustomDimensions = "custom_dimensions"
)

// Dimensions is the resolved set of attributes that drive priority and scoring
type Dimensions struct {
	Safety     string   `json:"safety"`
	Urgency    string   `json:"urgency"`
	Liability  string   `json:"liability"`
	Severity   int      `json:"severity"`
	Likelihood int      `json:"likelihood"`
	Escalation string   `json:"escalation"`
	BudgetBand string   `json:"budget_band"`
	BudgetLow  *float64 `json:"budget_low,omitempty"`
	BudgetHigh *float64 `json:"budget_high,omitempty"`
	Category   string   `json:"category,omitempty"`
}

// DefaultDimensions returns the values used when a finding has no profile
func DefaultDimensions() Dimensions {
	return Dimensions{
		Safety:     SafetyModerate,
		Urgency:    UrgencyShortTerm,
		Liability:  LiabilityMedium,
		Severity:   2,
		Likelihood: 2,
		Escalation: EscalationLow,
		BudgetBand: BudgetBandLow,
	}
}

// WithDefaults fills every unset field from DefaultDimensions and normalizes enum casing
func (d Dimensions) WithDefaults() Dimensions {
	def := DefaultDimensions()
	d.Safety = orDefault(d.Safety, def.Safety)
	d.Urgency = orDefault(d.Urgency, def.Urgency)
	d.Liability = orDefault(d.Liability, def.Liability)
	d.Escalation = orDefault(d.Escalation, def.Escalation)
	d.BudgetBand = orDefault(d.BudgetBand, def.BudgetBand)
	if d.Severity == 0 {
		d.Severity = def.Severity
	}
	if d.Likelihood == 0 {
		d.Likelihood = def.Likelihood
	}
	return d
}

func orDefault(v, def string) string {
	if n := Normalize(v); n != "" {
		return n
	}
	return def
}

// Classification is the derived grouping of a finding
type Classification struct {
	SystemGroup string   `json:"system_group"`
	SpaceGroup  string   `json:"space_group"`
	Tags        []string `json:"tags"`
}

// Candidate is a finding ID produced by derivation, before enrichment
type Candidate struct {
	FindingID    string   `json:"finding_id"`
	PriorityHint Priority `json:"priority_hint,omitempty"`
	Source       string   `json:"source"`         // rule, predicate, compound
	Name         string   `json:"name,omitempty"` // Rule index or check name that fired
}

// Override is a partial set of finding fields supplied by an override source.
// Zero values mean "not supplied".
type Override struct {
	Title      string   `yaml:"title,omitempty" json:"title,omitempty"`
	Safety     string   `yaml:"safety,omitempty" json:"safety,omitempty"`
	Urgency    string   `yaml:"urgency,omitempty" json:"urgency,omitempty"`
	Liability  string   `yaml:"liability,omitempty" json:"liability,omitempty"`
	BudgetLow  *float64 `yaml:"budget_low,omitempty" json:"budget_low,omitempty"`
	BudgetHigh *float64 `yaml:"budget_high,omitempty" json:"budget_high,omitempty"`
	Priority   string   `yaml:"priority,omitempty" json:"priority,omitempty"`
	Severity   int      `yaml:"severity,omitempty" json:"severity,omitempty"`
	Likelihood int      `yaml:"likelihood,omitempty" json:"likelihood,omitempty"`
	Escalation string   `yaml:"escalation,omitempty" json:"escalation,omitempty"`
}

// CustomFinding is an author-entered finding that is not produced by the rule tables
type CustomFinding struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Notes      string   `json:"notes,omitempty"`
	Dimensions Override `json:"dimensions"`
	BudgetBand string   `json:"budget_band,omitempty"`
	Category   string   `json:"category,omitempty"`
	PhotoIDs   []string `json:"photo_ids,omitempty"`
}

// Finding is the per-inspection record for a detected condition
type Finding struct {
	ID                 string         `json:"id"`
	Title              string         `json:"title"`
	Source             string         `json:"source"`
	Priority           Priority       `json:"priority,omitempty"`            // Legacy/base value from the rule table
	PrioritySelected   Priority       `json:"priority_selected,omitempty"`   // Explicit chosen value
	PriorityCalculated Priority       `json:"priority_calculated,omitempty"` // Derived from custom dimensions
	PriorityFinal      Priority       `json:"priority_final"`                // Authoritative value
	OverrideReason     string         `json:"override_reason,omitempty"`
	BudgetLow          *float64       `json:"budget_low,omitempty"`
	BudgetHigh         *float64       `json:"budget_high,omitempty"`
	PhotoIDs           []string       `json:"photo_ids"`
	Dimensions         Dimensions     `json:"dimensions"`
	Classification     Classification `json:"classification"`
	Trace              []string       `json:"trace,omitempty"` // Resolution steps applied, in order
}

// HumanizeID turns NO_RCD_PROTECTION into "No rcd protection"
func HumanizeID(id string) string {
	s := strings.ToLower(strings.TrimSpace(strings.NewReplacer("_", " ", "-", " ").Replace(id)))
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return "Unnamed finding"
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
