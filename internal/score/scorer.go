package score

import (
	"fmt"
	"math"
	"sort"

	"github.com/ppiankov/riskline/internal/model"
)

const (
	// Aggregate thresholds: below lowThreshold is LOW, below moderateThreshold is MODERATE
	lowThreshold      = 10.0
	moderateThreshold = 25.0

	// dominantWindow is how many top findings feed dominant risk
	dominantWindow = 5
	// maxDominant is how many categories dominant risk reports
	maxDominant = 2
)

// Input is the scoring view of one finding
type Input struct {
	FindingID  string
	Category   string
	Severity   int
	Likelihood int
	Priority   model.Priority
	BudgetBand string
	BudgetLow  *float64
	BudgetHigh *float64
}

// InputFromFinding builds a scoring input from a resolved finding
func InputFromFinding(f model.Finding) Input {
	return Input{
		FindingID:  f.ID,
		Category:   f.Dimensions.Category,
		Severity:   f.Dimensions.Severity,
		Likelihood: f.Dimensions.Likelihood,
		Priority:   f.PriorityFinal,
		BudgetBand: f.Dimensions.BudgetBand,
		BudgetLow:  f.BudgetLow,
		BudgetHigh: f.BudgetHigh,
	}
}

// Scorer calculates the aggregate risk score and CapEx range
type Scorer struct{}

// NewScorer creates a new scorer
func NewScorer() *Scorer {
	return &Scorer{}
}

// Calculate scores every finding and aggregates the results
func (s *Scorer) Calculate(inputs []Input) model.OverallScore {
	result := model.OverallScore{
		DominantRisk: []string{},
		Breakdown:    make([]model.FindingScore, 0, len(inputs)),
	}

	// 1. Per-finding scores
	for _, in := range inputs {
		fs := s.scoreFinding(in)
		result.Breakdown = append(result.Breakdown, fs)
		result.AggregateScore += fs.Score
	}

	// 2. Level
	result.Level = s.determineLevel(result.AggregateScore)

	// 3. CapEx
	result.CapexLow, result.CapexHigh, result.CapexIncomplete = s.calculateCapex(inputs)

	// 4. Dominant risk
	result.DominantRisk = s.dominantRisk(result.Breakdown)

	return result
}

// scoreFinding calculates risk × priority weight × budget weight
func (s *Scorer) scoreFinding(in Input) model.FindingScore {
	severity := clamp(in.Severity, 1, 5)
	likelihood := clamp(in.Likelihood, 1, 5)
	risk := severity * likelihood
	pw := PriorityWeight(in.Priority)
	bw := BudgetWeight(in.BudgetBand)

	return model.FindingScore{
		FindingID:      in.FindingID,
		Category:       in.Category,
		RiskScore:      risk,
		PriorityWeight: pw,
		BudgetWeight:   bw,
		Score:          float64(risk) * pw * bw,
		Formula:        fmt.Sprintf("clamp(severity=%d) × clamp(likelihood=%d) × priority_weight(%.1f) × budget_weight(%.1f)", severity, likelihood, pw, bw),
	}
}

// PriorityWeight maps a bucket to its scoring weight. Unknown buckets weigh as PLAN.
func PriorityWeight(p model.Priority) float64 {
	parsed, _ := model.ParsePriority(string(p))
	switch parsed {
	case model.PriorityImmediate:
		return 3.0
	case model.PriorityUrgent:
		return 2.5
	case model.PriorityRecommended:
		return 1.5
	default:
		return 1.0
	}
}

// BudgetWeight maps a budget band to its scoring weight. Unknown bands weigh as LOW.
func BudgetWeight(band string) float64 {
	switch model.Normalize(band) {
	case "HIGH":
		return 1.5
	case "MED", "MEDIUM":
		return 1.2
	default:
		return 1.0
	}
}

// determineLevel maps the aggregate score to a risk level
func (s *Scorer) determineLevel(aggregate float64) model.RiskLevel {
	switch {
	case aggregate < lowThreshold:
		return model.LevelLow
	case aggregate < moderateThreshold:
		return model.LevelModerate
	default:
		return model.LevelElevated
	}
}

// calculateCapex sums finite budget ranges. A finding without both bounds marks the total incomplete.
func (s *Scorer) calculateCapex(inputs []Input) (low, high float64, incomplete bool) {
	for _, in := range inputs {
		if !finite(in.BudgetLow) || !finite(in.BudgetHigh) {
			incomplete = true
			continue
		}
		low += *in.BudgetLow
		high += *in.BudgetHigh
	}
	return low, high, incomplete
}

// dominantRisk sums the top findings' scores per category and returns the heaviest labels.
// Uncategorized findings are ignored unless none of the top findings has a category.
func (s *Scorer) dominantRisk(scores []model.FindingScore) []string {
	ranked := make([]model.FindingScore, len(scores))
	copy(ranked, scores)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	if len(ranked) > dominantWindow {
		ranked = ranked[:dominantWindow]
	}

	type bucket struct {
		label string
		total float64
	}
	// Finding IDs stand in only when no top finding has a category
	categorized := false
	for _, fs := range ranked {
		if fs.Category != "" {
			categorized = true
			break
		}
	}

	var buckets []bucket
	index := make(map[string]int)
	for _, fs := range ranked {
		label := fs.Category
		if !categorized {
			label = fs.FindingID
		} else if label == "" {
			continue
		}
		if i, ok := index[label]; ok {
			buckets[i].total += fs.Score
			continue
		}
		index[label] = len(buckets)
		buckets = append(buckets, bucket{label: label, total: fs.Score})
	}

	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].total > buckets[j].total
	})

	labels := []string{}
	for i := 0; i < len(buckets) && i < maxDominant; i++ {
		labels = append(labels, buckets[i].label)
	}
	return labels
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func finite(v *float64) bool {
	return v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0)
}
