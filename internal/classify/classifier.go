// Package classify assigns system group, space group and tags to findings by
// ordered keyword matching against the finding identifier.
package classify

import (
	"strings"

	gocache "github.com/patrickmn/go-cache"

	"github.com/ppiankov/riskline/internal/model"
)

const (
	DefaultSystemGroup = "other"
	DefaultSpaceGroup  = "general"
)

// Classifier classifies finding IDs against static keyword tables
type Classifier struct {
	system []compiledRule
	space  []compiledRule
	tags   []compiledRule
	memo   *gocache.Cache
}

type compiledRule struct {
	keywords []string
	value    string
}

// NewClassifier creates a classifier. Empty tables fall back to DefaultTables.
func NewClassifier(tables model.ClassificationTables) *Classifier {
	if len(tables.System) == 0 && len(tables.Space) == 0 && len(tables.Tags) == 0 {
		tables = DefaultTables()
	}

	return &Classifier{
		system: compile(tables.System),
		space:  compile(tables.Space),
		tags:   compile(tables.Tags),
		memo:   gocache.New(gocache.NoExpiration, 0),
	}
}

func compile(rules []model.KeywordRule) []compiledRule {
	out := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		cr := compiledRule{value: r.Value}
		for _, kw := range r.Keywords {
			if n := model.Normalize(kw); n != "" {
				cr.keywords = append(cr.keywords, n)
			}
		}
		out = append(out, cr)
	}
	return out
}

// Classify returns the classification for a finding ID
func (c *Classifier) Classify(findingID string) model.Classification {
	id := model.Normalize(findingID)

	if cached, found := c.memo.Get(id); found {
		return copyClassification(cached.(model.Classification))
	}

	result := model.Classification{
		SystemGroup: firstMatch(c.system, id, DefaultSystemGroup),
		SpaceGroup:  firstMatch(c.space, id, DefaultSpaceGroup),
		Tags:        allMatches(c.tags, id),
	}

	c.memo.Set(id, result, gocache.NoExpiration)
	return copyClassification(result)
}

// firstMatch returns the value of the first rule with a keyword in id
func firstMatch(rules []compiledRule, id, def string) string {
	for _, r := range rules {
		if r.matches(id) {
			return r.value
		}
	}
	return def
}

// allMatches collects every matching tag, de-duplicated in table order
func allMatches(rules []compiledRule, id string) []string {
	tags := []string{}
	seen := make(map[string]bool)
	for _, r := range rules {
		if !r.matches(id) || seen[r.value] {
			continue
		}
		seen[r.value] = true
		tags = append(tags, r.value)
	}
	return tags
}

func (r compiledRule) matches(id string) bool {
	for _, kw := range r.keywords {
		if strings.Contains(id, kw) {
			return true
		}
	}
	return false
}

func copyClassification(c model.Classification) model.Classification {
	c.Tags = append([]string{}, c.Tags...)
	return c
}
