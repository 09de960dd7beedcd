package config

import (
	"errors"
	"fmt"

	"github.com/ppiankov/riskline/internal/model"
)

var (
	safetyValues    = set(model.SafetyLow, model.SafetyModerate, model.SafetyHigh)
	urgencyValues   = set(model.UrgencyLongTerm, model.UrgencyShortTerm, model.UrgencyImmediate)
	liabilityValues = set(model.LiabilityLow, model.LiabilityMedium, model.LiabilityHigh)
	bandValues      = set(model.BudgetBandLow, model.BudgetBandMed, "MEDIUM", model.BudgetBandHigh)
)

func set(values ...string) map[string]bool {
	m := make(map[string]bool, len(values))
	for _, v := range values {
		m[v] = true
	}
	return m
}

// ValidateRules checks a rule book and returns every problem found
func ValidateRules(book *model.RuleBook) error {
	var errs []error

	if book.Version < 1 {
		errs = append(errs, errors.New("version must be >= 1"))
	}

	for i, r := range book.Rules {
		if r.FindingID == "" {
			errs = append(errs, fmt.Errorf("rules[%d]: finding_id is required", i))
		}
		if r.When.Field == "" {
			errs = append(errs, fmt.Errorf("rules[%d]: when.field is required", i))
		}
		if !r.When.Operator.Valid() {
			errs = append(errs, fmt.Errorf("rules[%d]: unknown operator %q", i, r.When.Operator))
		}
		if r.When.CompareField != "" && r.When.Operator != model.OpGreaterThan && r.When.Operator != model.OpLessThan {
			errs = append(errs, fmt.Errorf("rules[%d]: compare_field only applies to greater_than and less_than", i))
		}
		if r.PriorityHint != "" {
			if _, ok := model.ParsePriority(r.PriorityHint); !ok {
				errs = append(errs, fmt.Errorf("rules[%d]: unknown priority %q", i, r.PriorityHint))
			}
		}
	}

	for id, meta := range book.Findings {
		errs = append(errs, checkEnum(fmt.Sprintf("findings.%s.safety", id), meta.Safety, safetyValues)...)
		errs = append(errs, checkEnum(fmt.Sprintf("findings.%s.urgency", id), meta.Urgency, urgencyValues)...)
		errs = append(errs, checkEnum(fmt.Sprintf("findings.%s.liability", id), meta.Liability, liabilityValues)...)
	}

	if len(book.Matrix) == 0 {
		errs = append(errs, errors.New("matrix must have at least one entry"))
	}
	for i, e := range book.Matrix {
		if e.When.Safety == "" {
			errs = append(errs, fmt.Errorf("matrix[%d]: when.safety is required", i))
		}
		errs = append(errs, checkEnum(fmt.Sprintf("matrix[%d].when.safety", i), e.When.Safety, safetyValues)...)
		errs = append(errs, checkEnum(fmt.Sprintf("matrix[%d].when.urgency", i), e.When.Urgency, urgencyValues)...)
		if _, ok := model.ParsePriority(string(e.Then)); !ok {
			errs = append(errs, fmt.Errorf("matrix[%d]: unknown bucket %q", i, e.Then))
		}
	}

	for i, l := range book.Liability {
		errs = append(errs, checkEnum(fmt.Sprintf("liability[%d].liability", i), l.Liability, liabilityValues)...)
		switch model.Normalize(l.Action) {
		case model.ActionUp, model.ActionDown:
		default:
			errs = append(errs, fmt.Errorf("liability[%d]: action must be UP or DOWN, got %q", i, l.Action))
		}
		for _, p := range []model.Priority{l.Ceiling, l.Floor} {
			if p == "" {
				continue
			}
			if _, ok := model.ParsePriority(string(p)); !ok {
				errs = append(errs, fmt.Errorf("liability[%d]: unknown bucket %q", i, p))
			}
		}
	}

	if book.CustomThreshold < 0 {
		errs = append(errs, errors.New("custom_threshold must not be negative"))
	}

	return errors.Join(errs...)
}

// ValidateProfiles checks a profile book
func ValidateProfiles(book *model.ProfileBook) error {
	var errs []error

	if book.Version < 1 {
		errs = append(errs, errors.New("version must be >= 1"))
	}

	for id, p := range book.Profiles {
		if p.Severity < 0 || p.Severity > 5 {
			errs = append(errs, fmt.Errorf("profiles.%s: severity %d outside 0-5", id, p.Severity))
		}
		if p.Likelihood < 0 || p.Likelihood > 5 {
			errs = append(errs, fmt.Errorf("profiles.%s: likelihood %d outside 0-5", id, p.Likelihood))
		}
		errs = append(errs, checkEnum(fmt.Sprintf("profiles.%s.budget_band", id), p.BudgetBand, bandValues)...)
		if p.BudgetLow != nil && p.BudgetHigh != nil && *p.BudgetLow > *p.BudgetHigh {
			errs = append(errs, fmt.Errorf("profiles.%s: budget_low exceeds budget_high", id))
		}
	}

	return errors.Join(errs...)
}

// ValidateOverrides checks an override book. Debug overrides may omit the version.
func ValidateOverrides(book *model.OverrideBook, requireVersion bool) error {
	var errs []error

	if requireVersion && book.Version < 1 {
		errs = append(errs, errors.New("version must be >= 1"))
	}

	for id, o := range book.Overrides {
		if o.Priority != "" {
			if _, ok := model.ParsePriority(o.Priority); !ok {
				errs = append(errs, fmt.Errorf("overrides.%s: unknown priority %q", id, o.Priority))
			}
		}
		if o.BudgetLow != nil && o.BudgetHigh != nil && *o.BudgetLow > *o.BudgetHigh {
			errs = append(errs, fmt.Errorf("overrides.%s: budget_low exceeds budget_high", id))
		}
	}

	return errors.Join(errs...)
}

func checkEnum(field, value string, allowed map[string]bool) []error {
	if value == "" || allowed[model.Normalize(value)] {
		return nil
	}
	return []error{fmt.Errorf("%s: unexpected value %q", field, value)}
}
