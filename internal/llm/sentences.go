package llm

import (
	"regexp"
	"strings"
)

var (
	urlPattern    = regexp.MustCompile(`(?i)\bhttps?://[^\s)]+|\bwww\.[^\s)]+`)
	bulletPattern = regexp.MustCompile(`^(?:[-*•]+|\d+[.)])\s*`)
)

// Sentence length bounds; fragments and run-ons are discarded
const (
	minSentenceLen = 20
	maxSentenceLen = 400
)

// SplitSentences breaks model output into sentences, stripping list markers
func SplitSentences(text string) []string {
	var sentences []string

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(bulletPattern.ReplaceAllString(strings.TrimSpace(line), ""))
		if line == "" {
			continue
		}

		var current strings.Builder
		for i := 0; i < len(line); i++ {
			ch := line[i]
			current.WriteByte(ch)

			// Split only when a terminator is followed by whitespace
			if ch == '.' || ch == '!' || ch == '?' {
				if i+1 < len(line) && (line[i+1] == ' ' || line[i+1] == '\t') {
					sentences = appendSentence(sentences, current.String())
					current.Reset()
				}
			}
		}
		if current.Len() > 0 {
			sentences = appendSentence(sentences, current.String())
		}
	}

	return sentences
}

func appendSentence(sentences []string, s string) []string {
	s = strings.TrimSpace(s)
	if len(s) < minSentenceLen || len(s) > maxSentenceLen {
		return sentences
	}
	return append(sentences, s)
}

// extractURLs extracts all URLs from text
func extractURLs(text string) []string {
	matches := urlPattern.FindAllString(text, -1)

	seen := make(map[string]bool)
	var unique []string
	for _, url := range matches {
		url = strings.TrimRight(url, ".,;:!?")
		if !seen[url] {
			seen[url] = true
			unique = append(unique, url)
		}
	}

	return unique
}

// Clean splits text into sentences and drops any that carry links.
// It returns the kept sentences and the number dropped.
func Clean(text string) ([]string, int) {
	var kept []string
	dropped := 0
	for _, s := range SplitSentences(text) {
		if len(extractURLs(s)) > 0 {
			dropped++
			continue
		}
		kept = append(kept, s)
	}
	return kept, dropped
}
