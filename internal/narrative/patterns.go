package narrative

import "regexp"

// Category is a semantic role a decision sentence can fill
type Category int

const (
	Consequence Category = iota
	NotImmediate
	Manageable
	Capital
	Representative
)

// Required lists the categories every output must cover, in output order
var Required = []Category{Consequence, NotImmediate, Manageable, Capital}

func (c Category) String() string {
	switch c {
	case Consequence:
		return "consequence"
	case NotImmediate:
		return "not_immediate"
	case Manageable:
		return "manageable"
	case Capital:
		return "capital"
	case Representative:
		return "representative"
	}
	return "unknown"
}

var (
	categoryPatterns = map[Category]*regexp.Regexp{
		Consequence:    regexp.MustCompile(`(?i)\b(if (left|not addressed|deferred|ignored)|left unaddressed|could (lead|result|escalate)|may (lead|result|escalate|worsen|deteriorate)|risk of (fire|injury|failure|shock))`),
		NotImmediate:   regexp.MustCompile(`(?i)\b(not (an )?immediate|no immediate|not urgent|not an emergency|does not require immediate)`),
		Manageable:     regexp.MustCompile(`(?i)\b(manageable|can be managed|planned (maintenance|works))`),
		Capital:        regexp.MustCompile(`(?i)(\$\s?\d|\bcapex\b|\bcapital\b|\bbudget|\bprovision)`),
		Representative: regexp.MustCompile(`(?i)\b(most significant|key finding|in particular|notably)\b`),
	}

	// jargonPattern marks a batch that reads like an inspection summary rather than a decision aid
	jargonPattern = regexp.MustCompile(`(?i)\b(inspection summary|insulation resistance|megger|loop impedance|trip times?|polarity test|continuity test|tests? results?|visual inspection|as tested)\b`)
)

// Classify returns every category s matches
func Classify(s string) []Category {
	var out []Category
	for _, c := range append(append([]Category{}, Required...), Representative) {
		if categoryPatterns[c].MatchString(s) {
			out = append(out, c)
		}
	}
	return out
}

// Matches reports whether s matches category c
func Matches(s string, c Category) bool {
	p, ok := categoryPatterns[c]
	return ok && p.MatchString(s)
}

// HasJargon reports whether s contains clinical or testing jargon
func HasJargon(s string) bool {
	return jargonPattern.MatchString(s)
}
