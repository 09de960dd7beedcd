package derive

import (
	"strings"

	"github.com/ppiankov/riskline/internal/model"
)

// Check is a named boolean test that appends FindingID when true
type Check struct {
	Name      string
	FindingID string
	Test      func(model.Facts) bool
}

// CompoundCheck fires only when an asset is present and a safety sub-check
// on that asset failed. Compound checks run after all simple checks.
type CompoundCheck struct {
	Name      string
	FindingID string
	Asset     func(model.Facts) bool
	SubCheck  func(model.Facts) bool
}

// PredicateSet is the fixed, ordered sequence of procedural checks
type PredicateSet struct {
	checks   []Check
	compound []CompoundCheck
}

// NewPredicateSet creates a predicate set from explicit checks
func NewPredicateSet(checks []Check, compound []CompoundCheck) *PredicateSet {
	return &PredicateSet{checks: checks, compound: compound}
}

// DefaultPredicates returns the built-in electrical inspection checks
func DefaultPredicates() *PredicateSet {
	return NewPredicateSet(
		[]Check{
			{
				Name:      "no_rcd_protection",
				FindingID: "NO_RCD_PROTECTION",
				Test: func(f model.Facts) bool {
					return f.Present("protection.devices") && !hasDeviceType(f, "protection.devices", "RCD", "RCBO")
				},
			},
			{
				Name:      "board_at_capacity",
				FindingID: "BOARD_AT_CAPACITY",
				Test: func(f model.Facts) bool {
					return isTrue(f, "switchboard.at_capacity") || numberEquals(f, "switchboard.spare_ways", 0)
				},
			},
			{
				Name:      "thermal_hotspot_major",
				FindingID: "THERMAL_HOTSPOT_MAJOR",
				Test: func(f model.Facts) bool {
					return stringEquals(f, "thermal.hotspot_severity", "major")
				},
			},
			{
				Name:      "smoke_alarms_missing",
				FindingID: "SMOKE_ALARMS_MISSING",
				Test: func(f model.Facts) bool {
					return isFalse(f, "smoke_alarms.present") || numberEquals(f, "smoke_alarms.count", 0)
				},
			},
			{
				Name:      "earthing_inadequate",
				FindingID: "EARTHING_INADEQUATE",
				Test: func(f model.Facts) bool {
					return isFalse(f, "earthing.electrode_present") || stringEquals(f, "earthing.condition", "poor")
				},
			},
			{
				Name:      "switchboard_asbestos",
				FindingID: "SWITCHBOARD_ASBESTOS",
				Test: func(f model.Facts) bool {
					return isTrue(f, "switchboard.asbestos_suspected")
				},
			},
			{
				Name:      "exposed_conductors",
				FindingID: "EXPOSED_LIVE_CONDUCTORS",
				Test: func(f model.Facts) bool {
					return isTrue(f, "hazards.exposed_conductors")
				},
			},
		},
		[]CompoundCheck{
			{
				Name:      "solar_isolator_fault",
				FindingID: "SOLAR_ISOLATOR_FAULT",
				Asset:     func(f model.Facts) bool { return isTrue(f, "solar.present") },
				SubCheck:  func(f model.Facts) bool { return stringEquals(f, "solar.isolator_check", "fail") },
			},
			{
				Name:      "ev_charger_unprotected",
				FindingID: "EV_CHARGER_NO_TYPE_B_RCD",
				Asset:     func(f model.Facts) bool { return isTrue(f, "ev_charger.present") },
				SubCheck:  func(f model.Facts) bool { return isFalse(f, "ev_charger.type_b_rcd") },
			},
		},
	)
}

// Evaluate runs the simple checks in order, then the compound checks
func (p *PredicateSet) Evaluate(f model.Facts) []model.Candidate {
	var out []model.Candidate
	fired := make(map[string]bool)

	add := func(id, name, source string) {
		if fired[id] {
			return
		}
		fired[id] = true
		out = append(out, model.Candidate{FindingID: id, Source: source, Name: name})
	}

	for _, c := range p.checks {
		if c.Test(f) {
			add(c.FindingID, c.Name, model.SourcePredicate)
		}
	}

	for _, c := range p.compound {
		if c.Asset(f) && c.SubCheck(f) {
			add(c.FindingID, c.Name, model.SourceCompound)
		}
	}

	return out
}

func isTrue(f model.Facts, path string) bool {
	v, ok := f.Get(path)
	if !ok {
		return false
	}
	b, ok := toBool(v)
	return ok && b
}

func isFalse(f model.Facts, path string) bool {
	v, ok := f.Get(path)
	if !ok {
		return false
	}
	b, ok := toBool(v)
	return ok && !b
}

func stringEquals(f model.Facts, path, want string) bool {
	v, ok := f.Get(path)
	return ok && v != nil && strings.EqualFold(strings.TrimSpace(toString(v)), want)
}

func numberEquals(f model.Facts, path string, want float64) bool {
	v, ok := f.Get(path)
	if !ok {
		return false
	}
	n, ok := toNumber(v)
	return ok && n == want
}

// hasDeviceType reports whether an array of devices holds any of the given types.
// Devices may be plain strings or objects with a "type" key.
func hasDeviceType(f model.Facts, path string, types ...string) bool {
	v, _ := f.Get(path)
	items, _ := elements(v)
	for _, item := range items {
		kind := item
		if obj, ok := item.(map[string]any); ok {
			kind = obj["type"]
		}
		name := model.Normalize(toString(kind))
		for _, t := range types {
			if name == t {
				return true
			}
		}
	}
	return false
}
