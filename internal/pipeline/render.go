package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/riskline/internal/model"
)

// Renderer writes reports as JSON, Markdown and a terminal summary
type Renderer struct {
	out io.Writer
}

// NewRenderer creates a renderer printing summaries to stdout
func NewRenderer() *Renderer {
	return &Renderer{out: os.Stdout}
}

// RenderJSON writes the report as indented JSON
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	return writeFile(path, append(data, '\n'))
}

// RenderMarkdown writes the report as Markdown
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	return writeFile(path, []byte(Markdown(report)))
}

// RenderSummary prints a short summary of the report
func (r *Renderer) RenderSummary(report *model.Report) {
	res := report.Result
	s := res.Score

	fmt.Fprintf(r.out, "\nInspection: %s\n", res.InspectionID)
	fmt.Fprintf(r.out, "Risk level: %s (score %.1f)\n", s.Level, s.AggregateScore)
	fmt.Fprintf(r.out, "Findings:   %d (%d immediate, %d recommended)\n",
		len(res.Findings), countPriority(res.Findings, model.PriorityImmediate), countPriority(res.Findings, model.PriorityRecommended))
	fmt.Fprintf(r.out, "CapEx:      %s\n", capexText(s))
	for _, sentence := range res.Signals.Sentences {
		fmt.Fprintf(r.out, "  %s\n", sentence)
	}
	for _, w := range report.Warnings {
		fmt.Fprintf(r.out, "Warning: %s\n", w)
	}
}

// Markdown renders the report body
func Markdown(report *model.Report) string {
	var b strings.Builder
	res := report.Result
	s := res.Score

	fmt.Fprintf(&b, "# Inspection %s\n\n", res.InspectionID)
	fmt.Fprintf(&b, "- **Risk level:** %s\n", s.Level)
	fmt.Fprintf(&b, "- **Aggregate score:** %.1f\n", s.AggregateScore)
	fmt.Fprintf(&b, "- **Capital provision:** %s\n", capexText(s))
	if len(s.DominantRisk) > 0 {
		fmt.Fprintf(&b, "- **Dominant risk:** %s\n", strings.Join(s.DominantRisk, ", "))
	}
	fmt.Fprintf(&b, "- **Ruleset version:** %d\n", report.RulesetVer)
	fmt.Fprintf(&b, "- **Generated:** %s\n", report.GeneratedAt.Format("2006-01-02 15:04 MST"))

	b.WriteString("\n## Summary\n\n")
	for _, sentence := range res.Signals.Sentences {
		b.WriteString(sentence)
		b.WriteString(" ")
	}
	b.WriteString("\n")

	b.WriteString("\n## Findings\n\n")
	if len(res.Findings) == 0 {
		b.WriteString("No findings.\n")
	} else {
		b.WriteString("| Priority | Finding | System | Budget |\n")
		b.WriteString("|---|---|---|---|\n")
		for _, f := range res.Findings {
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
				f.PriorityFinal, escapeCell(f.Title), f.Classification.SystemGroup, budgetText(f))
		}
	}

	if len(s.Breakdown) > 0 {
		b.WriteString("\n## Score breakdown\n\n")
		for _, fs := range s.Breakdown {
			fmt.Fprintf(&b, "- `%s`: %s\n", fs.FindingID, fs.Formula)
		}
	}

	if len(report.Warnings) > 0 {
		b.WriteString("\n## Warnings\n\n")
		for _, w := range report.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
	}

	return b.String()
}

func capexText(s model.OverallScore) string {
	if s.CapexHigh <= 0 {
		if s.CapexIncomplete {
			return "not yet priced"
		}
		return "none"
	}
	text := fmt.Sprintf("$%.0f to $%.0f", s.CapexLow, s.CapexHigh)
	if s.CapexIncomplete {
		text += " (incomplete)"
	}
	return text
}

func budgetText(f model.Finding) string {
	if f.BudgetLow == nil || f.BudgetHigh == nil {
		return "-"
	}
	return fmt.Sprintf("$%.0f to $%.0f", *f.BudgetLow, *f.BudgetHigh)
}

func countPriority(findings []model.Finding, p model.Priority) int {
	n := 0
	for _, f := range findings {
		if f.PriorityFinal == p {
			n++
		}
	}
	return n
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
