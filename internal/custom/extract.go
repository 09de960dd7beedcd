// Package custom reads author-entered findings from an answer document
package custom

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/ppiankov/riskline/internal/facts"
	"github.com/ppiankov/riskline/internal/model"
)

// AnswersKey is the answer document key holding custom findings
const AnswersKey = "custom_findings"

// IDPrefix starts every generated custom finding ID
const IDPrefix = "CUSTOM_"

var namespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("riskline/custom-finding"))

// Extract reads the custom findings of an inspection. Entries that are not
// objects, or carry neither an id nor a title, are skipped.
func Extract(inspectionID string, answers map[string]any) []model.CustomFinding {
	raw, _ := facts.Unwrap(answers[AnswersKey])
	entries, ok := raw.([]any)
	if !ok {
		return nil
	}

	var out []model.CustomFinding
	for i, entry := range entries {
		entry, _ = facts.Unwrap(entry)
		obj, ok := entry.(map[string]any)
		if !ok {
			continue
		}

		cf := model.CustomFinding{
			ID:         model.Normalize(str(obj, "id")),
			Title:      PlainText(str(obj, "title")),
			Notes:      PlainText(str(obj, "notes")),
			BudgetBand: model.Normalize(str(obj, "budget_band")),
			Category:   str(obj, "category"),
			PhotoIDs:   strs(obj, "photo_ids"),
			Dimensions: model.Override{
				Safety:     model.Normalize(str(obj, "safety")),
				Urgency:    model.Normalize(str(obj, "urgency")),
				Liability:  model.Normalize(str(obj, "liability")),
				Escalation: model.Normalize(str(obj, "escalation")),
				Priority:   str(obj, "priority"),
				Severity:   integer(obj, "severity"),
				Likelihood: integer(obj, "likelihood"),
				BudgetLow:  amount(obj, "budget_low"),
				BudgetHigh: amount(obj, "budget_high"),
			},
		}

		if cf.ID == "" && cf.Title == "" {
			continue
		}
		if cf.ID == "" {
			cf.ID = GenerateID(inspectionID, i, cf.Title)
		}
		out = append(out, cf)
	}

	return out
}

// GenerateID derives a stable ID from the inspection, entry position and title
func GenerateID(inspectionID string, index int, title string) string {
	name := fmt.Sprintf("%s\x00%d\x00%s", inspectionID, index, title)
	id := uuid.NewSHA1(namespace, []byte(name))
	return IDPrefix + strings.ToUpper(strings.ReplaceAll(id.String(), "-", "")[:12])
}

func field(obj map[string]any, key string) any {
	v, _ := facts.Unwrap(obj[key])
	return v
}

func str(obj map[string]any, key string) string {
	switch v := field(obj, key).(type) {
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	case nil:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

func strs(obj map[string]any, key string) []string {
	var out []string
	switch v := field(obj, key).(type) {
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
	case []string:
		out = append(out, v...)
	case string:
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func number(obj map[string]any, key string) (float64, bool) {
	var n float64
	var err error
	switch v := field(obj, key).(type) {
	case float64:
		n = v
	case int:
		n = float64(v)
	case int64:
		n = float64(v)
	case json.Number:
		n, err = v.Float64()
	case string:
		n, err = strconv.ParseFloat(strings.TrimSpace(v), 64)
	default:
		return 0, false
	}
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

func integer(obj map[string]any, key string) int {
	n, ok := number(obj, key)
	if !ok {
		return 0
	}
	return int(math.Round(n))
}

func amount(obj map[string]any, key string) *float64 {
	n, ok := number(obj, key)
	if !ok {
		return nil
	}
	return &n
}
