package model

// Operator is a rule-condition comparison
type Operator string

const (
	OpEquals      Operator = "equals"
	OpNotEquals   Operator = "not_equals"
	OpExists      Operator = "exists"
	OpContains    Operator = "contains"
	OpNotContains Operator = "not_contains"
	OpGreaterThan Operator = "greater_than"
	OpLessThan    Operator = "less_than"
)

// Valid reports whether o is a supported operator
func (o Operator) Valid() bool {
	switch o {
	case OpEquals, OpNotEquals, OpExists, OpContains, OpNotContains, OpGreaterThan, OpLessThan:
		return true
	}
	return false
}

// Condition tests a single fact path
type Condition struct {
	Field        string   `yaml:"field" json:"field"`
	Operator     Operator `yaml:"operator" json:"operator"`
	Value        any      `yaml:"value,omitempty" json:"value,omitempty"`
	CompareField string   `yaml:"compare_field,omitempty" json:"compare_field,omitempty"` // Read the right-hand side from this fact instead of Value
}

// Rule maps a condition to a finding ID
type Rule struct {
	FindingID    string    `yaml:"finding_id" json:"finding_id"`
	PriorityHint string    `yaml:"priority,omitempty" json:"priority,omitempty"`
	When         Condition `yaml:"when" json:"when"`
}

// FindingMeta holds the static base-priority attributes of a finding ID
type FindingMeta struct {
	Title     string `yaml:"title" json:"title"`
	Safety    string `yaml:"safety" json:"safety"`
	Urgency   string `yaml:"urgency" json:"urgency"`
	Liability string `yaml:"liability" json:"liability"`
}

// Profile holds the scoring attributes of a finding ID
type Profile struct {
	Severity   int      `yaml:"severity" json:"severity"`
	Likelihood int      `yaml:"likelihood" json:"likelihood"`
	Escalation string   `yaml:"escalation,omitempty" json:"escalation,omitempty"`
	BudgetBand string   `yaml:"budget_band,omitempty" json:"budget_band,omitempty"`
	BudgetLow  *float64 `yaml:"budget_low,omitempty" json:"budget_low,omitempty"`
	BudgetHigh *float64 `yaml:"budget_high,omitempty" json:"budget_high,omitempty"`
	Category   string   `yaml:"category,omitempty" json:"category,omitempty"`
}

// MatrixWhen is the match side of a priority matrix entry. Empty Urgency matches any urgency.
type MatrixWhen struct {
	Safety  string `yaml:"safety" json:"safety"`
	Urgency string `yaml:"urgency,omitempty" json:"urgency,omitempty"`
}

// MatrixEntry is one row of the ordered priority matrix
type MatrixEntry struct {
	When MatrixWhen `yaml:"when" json:"when"`
	Then Priority   `yaml:"then" json:"then"`
}

// Guardrails disable liability adjustments under stated conditions
type Guardrails struct {
	NoDowngradeWhenSafetyHigh                 bool `yaml:"no_downgrade_when_safety_high" json:"no_downgrade_when_safety_high"`
	NoLiabilityAdjustmentWhenUrgencyImmediate bool `yaml:"no_liability_adjustment_when_urgency_immediate" json:"no_liability_adjustment_when_urgency_immediate"`
}

// Liability adjustment actions
const (
	ActionUp   = "UP"
	ActionDown = "DOWN"
)

// LiabilityRule moves a bucket up toward Ceiling or down toward Floor
type LiabilityRule struct {
	Liability string   `yaml:"liability" json:"liability"`
	Action    string   `yaml:"action" json:"action"`
	Ceiling   Priority `yaml:"ceiling,omitempty" json:"ceiling,omitempty"`
	Floor     Priority `yaml:"floor,omitempty" json:"floor,omitempty"`
}

// KeywordRule assigns Value when any keyword occurs in a normalized finding ID
type KeywordRule struct {
	Keywords []string `yaml:"keywords" json:"keywords"`
	Value    string   `yaml:"value" json:"value"`
}

// ClassificationTables are the ordered keyword tables used by the classifier
type ClassificationTables struct {
	System []KeywordRule `yaml:"system" json:"system"`
	Space  []KeywordRule `yaml:"space" json:"space"`
	Tags   []KeywordRule `yaml:"tags" json:"tags"`
}

// RuleBook is the finding-rule document
type RuleBook struct {
	Version         int                    `yaml:"version" json:"version"`
	Rules           []Rule                 `yaml:"rules" json:"rules"`
	Findings        map[string]FindingMeta `yaml:"findings" json:"findings"`
	Matrix          []MatrixEntry          `yaml:"matrix" json:"matrix"`
	Guardrails      Guardrails             `yaml:"guardrails" json:"guardrails"`
	Liability       []LiabilityRule        `yaml:"liability" json:"liability"`
	HardOverrides   []string               `yaml:"hard_overrides" json:"hard_overrides"`
	CustomThreshold int                    `yaml:"custom_threshold" json:"custom_threshold"`
	Classification  ClassificationTables   `yaml:"classification" json:"classification"`
}

// ProfileBook is the finding-profile document
type ProfileBook struct {
	Version  int                `yaml:"version" json:"version"`
	Profiles map[string]Profile `yaml:"profiles" json:"profiles"`
}

// OverrideBook is a global or per-inspection override document
type OverrideBook struct {
	Version   int                 `yaml:"version" json:"version"`
	Overrides map[string]Override `yaml:"overrides" json:"overrides"`
}

// Bundle is the read-only configuration injected into the engine
type Bundle struct {
	Rules           *RuleBook
	Profiles        map[string]Profile
	GlobalOverrides map[string]Override
}
