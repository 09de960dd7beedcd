// Package narrative synthesizes the decision-support sentences of a report from
// deterministic templates or supplied candidates, validating every sentence
// against the required semantic categories and falling back per category.
package narrative

import (
	"strings"

	"github.com/ppiankov/riskline/internal/model"
)

const (
	// MinSentences is the padding target
	MinSentences = 3
	// MaxSentences is the truncation limit
	MaxSentences = 5
)

// Synthesizer builds decision signals
type Synthesizer struct{}

// NewSynthesizer creates a new synthesizer
func NewSynthesizer() *Synthesizer {
	return &Synthesizer{}
}

// Build generates, validates, completes and truncates the decision sentences for ctx.
// Non-empty candidates replace the template batch.
func (s *Synthesizer) Build(ctx Context, candidates []string) model.DecisionSignals {
	batch, source := clean(candidates), model.SignalsFromCandidates
	if len(batch) == 0 {
		batch, source = templateSentences(ctx), model.SignalsFromTemplate
	}
	if len(batch) == 0 || batchHasJargon(batch) {
		batch, source = fallbackSet(ctx), model.SignalsFromFallback
	}

	// 1. Validate: keep sentences that add a required category, plus one representative
	covered := make(map[Category]bool)
	haveRepresentative := false
	var out []string
	for _, sentence := range batch {
		cats := Classify(sentence)

		addsRequired := false
		for _, c := range cats {
			if c != Representative && !covered[c] {
				addsRequired = true
			}
		}
		isRepresentative := containsCategory(cats, Representative)

		switch {
		case addsRequired:
			for _, c := range cats {
				covered[c] = true
			}
			if isRepresentative {
				haveRepresentative = true
			}
			out = append(out, sentence)
		case isRepresentative && !haveRepresentative:
			haveRepresentative = true
			out = append(out, sentence)
		}
	}

	// 2. Complete missing categories
	for _, c := range Required {
		if !covered[c] {
			out = append(out, fallbackSentence(c, ctx))
			covered[c] = true
		}
	}

	// 3. Pad
	for len(out) < MinSentences {
		out = append(out, fallbackSentence(Manageable, ctx))
	}

	// 4. Truncate
	if len(out) > MaxSentences {
		out = out[:MaxSentences]
	}

	return model.DecisionSignals{
		Sentences:       out,
		IfNotAddressed:  firstMatching(out, Consequence, ctx),
		WhyNotImmediate: firstMatching(out, NotImmediate, ctx),
		ManageableRisk:  firstMatching(out, Manageable, ctx),
		Source:          source,
	}
}

func clean(sentences []string) []string {
	var out []string
	for _, s := range sentences {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func batchHasJargon(batch []string) bool {
	for _, s := range batch {
		if HasJargon(s) {
			return true
		}
	}
	return false
}

func containsCategory(cats []Category, c Category) bool {
	for _, x := range cats {
		if x == c {
			return true
		}
	}
	return false
}

func firstMatching(sentences []string, c Category, ctx Context) string {
	for _, s := range sentences {
		if Matches(s, c) {
			return s
		}
	}
	return fallbackSentence(c, ctx)
}
