package narrative

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ppiankov/riskline/internal/model"
)

// Context is the summary of a scored inspection that selects templates
type Context struct {
	Level            model.RiskLevel
	FindingCount     int
	ImmediateCount   int
	RecommendedCount int
	CapexLow         float64
	CapexHigh        float64
	CapexIncomplete  bool
	Representative   string // Title of the highest-scoring finding
}

// HasImmediate reports whether any finding is IMMEDIATE
func (c Context) HasImmediate() bool { return c.ImmediateCount > 0 }

// HasCapex reports whether a positive CapEx range is available
func (c Context) HasCapex() bool { return c.CapexHigh > 0 }

// ContextFrom summarizes resolved findings and their overall score
func ContextFrom(findings []model.Finding, overall model.OverallScore) Context {
	ctx := Context{
		Level:           overall.Level,
		FindingCount:    len(findings),
		CapexLow:        overall.CapexLow,
		CapexHigh:       overall.CapexHigh,
		CapexIncomplete: overall.CapexIncomplete,
	}

	titles := make(map[string]string, len(findings))
	for _, f := range findings {
		titles[f.ID] = f.Title
		switch f.PriorityFinal {
		case model.PriorityImmediate:
			ctx.ImmediateCount++
		case model.PriorityRecommended, model.PriorityUrgent:
			ctx.RecommendedCount++
		}
	}

	best := -1.0
	for _, fs := range overall.Breakdown {
		if fs.Score > best {
			best = fs.Score
			ctx.Representative = titles[fs.FindingID]
		}
	}
	return ctx
}

// templateSentences selects the deterministic sentence set for ctx. It returns nil when
// there is nothing to describe.
func templateSentences(ctx Context) []string {
	if ctx.FindingCount == 0 {
		return nil
	}

	var out []string
	switch {
	case ctx.HasImmediate():
		out = append(out,
			fmt.Sprintf("%s immediate attention; if left unaddressed %s could lead to injury, fire or significant property damage.",
				plural(ctx.ImmediateCount, "item requires", "items require"), pronoun(ctx.ImmediateCount)),
			"Outside those items, the remaining findings are not immediate hazards and can be programmed over the coming months.",
			"Once the urgent items are made safe, the overall risk is manageable through planned works.",
		)

	case ctx.Level == model.LevelElevated:
		out = append(out,
			fmt.Sprintf("%s elevated risk; if deferred, they may escalate into safety or reliability problems.",
				plural(ctx.FindingCount, "finding carries", "findings carry")),
			"There is no immediate hazard, but the recommended items should be booked within three months.",
			"With timely scheduling the risk remains manageable.",
		)

	case ctx.Level == model.LevelModerate || ctx.RecommendedCount > 0:
		out = append(out,
			"If not addressed, the recommended items may lead to faults or compliance issues over time.",
			"These are not immediate hazards and can be scheduled within the next three months.",
			"The overall risk is manageable with planned maintenance.",
		)

	default:
		out = append(out,
			"Minor items may worsen if left unaddressed for an extended period.",
			"No immediate action is required.",
			"The overall risk is low and manageable through routine maintenance.",
		)
	}

	out = append(out, capitalSentence(ctx))
	if ctx.Representative != "" {
		// A jargon title would discard the whole batch; skip only this sentence
		if s := fmt.Sprintf("The most significant finding is %s.", strings.ToLower(ctx.Representative)); !HasJargon(s) {
			out = append(out, s)
		}
	}
	return out
}

// fallbackSentence is the category-specific deterministic sentence
func fallbackSentence(c Category, ctx Context) string {
	switch c {
	case Consequence:
		return "If left unaddressed, the identified items may worsen over time and lead to higher repair costs or safety exposure."
	case NotImmediate:
		return "The remaining items are not immediate hazards and can be scheduled rather than actioned today."
	case Manageable:
		return "Overall, the identified risk is manageable through planned maintenance."
	case Capital:
		return capitalSentence(ctx)
	}
	return ""
}

// fallbackSet is the full deterministic sentence set, one per required category
func fallbackSet(ctx Context) []string {
	out := make([]string, 0, len(Required))
	for _, c := range Required {
		out = append(out, fallbackSentence(c, ctx))
	}
	return out
}

func capitalSentence(ctx Context) string {
	if !ctx.HasCapex() {
		if ctx.CapexIncomplete {
			return "Capital provision should be confirmed once the outstanding items are priced."
		}
		return "No significant capital provision is expected beyond routine maintenance budgeting."
	}

	s := fmt.Sprintf("Allow a capital provision of approximately $%s to $%s for the recommended works",
		formatAmount(ctx.CapexLow), formatAmount(ctx.CapexHigh))
	if ctx.CapexIncomplete {
		s += ", with some items still to be priced"
	}
	return s + "."
}

func plural(n int, one, many string) string {
	if n == 1 {
		return "1 " + one
	}
	return strconv.Itoa(n) + " " + many
}

func pronoun(n int) string {
	if n == 1 {
		return "it"
	}
	return "they"
}

// formatAmount renders a whole-dollar amount with thousands separators
func formatAmount(v float64) string {
	n := int64(math.Round(v))
	neg := n < 0
	if neg {
		n = -n
	}

	digits := strconv.FormatInt(n, 10)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
