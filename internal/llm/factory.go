package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/ppiankov/riskline/internal/model"
)

// NewProvider creates a new LLM provider based on configuration
func NewProvider(config Config) (Provider, error) {
	switch strings.ToLower(config.Provider) {
	case "openai":
		return NewOpenAIProvider(config)

	case "anthropic", "claude":
		return NewAnthropicProvider(config)

	case "ollama":
		return NewOllamaProvider(config)

	case "":
		// No provider configured - return nil (LLM disabled)
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, anthropic, ollama)", config.Provider)
	}
}

// ConfigFromModel converts model.LLMConfig to llm.Config
func ConfigFromModel(modelConfig model.LLMConfig, logger hclog.Logger) Config {
	return Config{
		Provider:   modelConfig.Provider,
		Model:      modelConfig.Model,
		APIKey:     modelConfig.APIKey,
		BaseURL:    modelConfig.BaseURL,
		Timeout:    modelConfig.Timeout,
		MaxTokens:  modelConfig.MaxTokens,
		HTTPProxy:  modelConfig.HTTPProxy,
		HTTPSProxy: modelConfig.HTTPSProxy,
		NoProxy:    modelConfig.NoProxy,
		Logger:     logger,
	}
}

// Narrator asks a provider for narrative candidates. Provider failures are
// logged and yield no candidates, so the caller falls back to templates.
type Narrator struct {
	provider Provider
	logger   hclog.Logger
}

// NewNarrator wraps a provider. A nil provider disables candidate generation.
func NewNarrator(provider Provider, logger hclog.Logger) *Narrator {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Narrator{provider: provider, logger: logger}
}

// Enabled reports whether a provider is configured
func (n *Narrator) Enabled() bool {
	return n != nil && n.provider != nil
}

// Candidates returns candidate sentences for result and a provider/model label.
// It returns nil and an empty label when disabled or on failure.
func (n *Narrator) Candidates(ctx context.Context, result model.Result) ([]string, string) {
	if !n.Enabled() {
		return nil, ""
	}

	resp, err := n.provider.Candidates(ctx, Request{Result: result})
	if err != nil {
		n.logger.Warn("narrative candidates unavailable, using templates",
			"provider", n.provider.Name(), "inspection", result.InspectionID, "error", err)
		return nil, ""
	}
	if resp.Dropped > 0 {
		n.logger.Debug("dropped candidate sentences with links", "count", resp.Dropped)
	}
	if len(resp.Sentences) == 0 {
		return nil, ""
	}

	n.logger.Debug("narrative candidates received",
		"provider", n.provider.Name(), "model", resp.Model,
		"sentences", len(resp.Sentences), "tokens", resp.TokensUsed)

	return resp.Sentences, n.provider.Name() + "/" + resp.Model
}
