package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/ppiankov/riskline/internal/model"
)

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Candidates asks the model for plain-language narrative sentences
	Candidates(ctx context.Context, req Request) (*Response, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// Request contains the input for candidate generation
type Request struct {
	// Result is the finished engine result the narrative describes
	Result model.Result

	// Prompt is an optional custom prompt (if empty, use default)
	Prompt string

	// Model is the specific model to use (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// Response contains the candidate sentences
type Response struct {
	// Sentences are the cleaned candidate sentences
	Sentences []string

	// Dropped counts sentences removed because they carried links
	Dropped int

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string

	// Logger receives availability diagnostics; nil discards them
	Logger hclog.Logger
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "", // Disabled by default
		Timeout:   30,
		MaxTokens: 400,
	}
}

const systemPrompt = "You write short plain-language summaries of electrical inspection results for property owners. You never give technical test readings or cite links."

// maxPromptFindings caps the findings listed in the prompt
const maxPromptFindings = 8

// BuildPrompt constructs the default prompt from an engine result
func BuildPrompt(result model.Result) string {
	var b strings.Builder

	s := result.Score
	fmt.Fprintf(&b, `Summarize this electrical inspection for the property owner.

RULES:
1. Write 4 or 5 short sentences in plain English.
2. Cover each of these points:
   - what could happen if the work is not addressed
   - why the work is or is not immediately urgent
   - that the risk is manageable with planned work
   - the capital amount to allow for the work
3. Do not mention test readings, instruments or inspection procedures.
4. Do not include links, lists or headings.

Inspection Summary:
- Overall risk level: %s
- Findings: %d
`, s.Level, len(result.Findings))

	if s.CapexHigh > 0 {
		fmt.Fprintf(&b, "- Capital range: $%.0f to $%.0f", s.CapexLow, s.CapexHigh)
		if s.CapexIncomplete {
			b.WriteString(" (some items not yet priced)")
		}
		b.WriteString("\n")
	} else {
		b.WriteString("- Capital range: not yet priced\n")
	}
	if len(s.DominantRisk) > 0 {
		fmt.Fprintf(&b, "- Main risk areas: %s\n", strings.Join(s.DominantRisk, ", "))
	}

	b.WriteString("\nFindings by priority:\n")
	for i, f := range result.Findings {
		if i >= maxPromptFindings {
			fmt.Fprintf(&b, "... and %d more\n", len(result.Findings)-maxPromptFindings)
			break
		}
		fmt.Fprintf(&b, "- %s: %s\n", f.PriorityFinal, f.Title)
	}
	if len(result.Findings) == 0 {
		b.WriteString("- No findings were recorded.\n")
	}

	return b.String()
}

// resolveModel picks the request model, then the configured one, then def
func resolveModel(req Request, config Config, def string) string {
	if req.Model != "" {
		return req.Model
	}
	if config.Model != "" {
		return config.Model
	}
	return def
}

// resolveMaxTokens picks the request limit, then the configured one, then 400
func resolveMaxTokens(req Request, config Config) int {
	if req.MaxTokens > 0 {
		return req.MaxTokens
	}
	if config.MaxTokens > 0 {
		return config.MaxTokens
	}
	return 400
}

func loggerFor(config Config) hclog.Logger {
	if config.Logger == nil {
		return hclog.NewNullLogger()
	}
	return config.Logger
}

func promptFor(req Request) string {
	if req.Prompt != "" {
		return req.Prompt
	}
	return BuildPrompt(req.Result)
}
