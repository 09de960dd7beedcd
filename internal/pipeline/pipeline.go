// Package pipeline wires the host around the engine: it reads answer
// documents, loads configuration, runs the engine and renders reports.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/ppiankov/riskline/internal/cache"
	"github.com/ppiankov/riskline/internal/config"
	"github.com/ppiankov/riskline/internal/custom"
	"github.com/ppiankov/riskline/internal/engine"
	"github.com/ppiankov/riskline/internal/facts"
	"github.com/ppiankov/riskline/internal/llm"
	"github.com/ppiankov/riskline/internal/model"
)

// Pipeline orchestrates scoring of answer documents
type Pipeline struct {
	source   *Source
	engine   *engine.Engine
	narrator *llm.Narrator // nil if disabled
	renderer *Renderer
	warnings []string
	logger   hclog.Logger

	// DebugOverridesPath is an optional per-inspection override document
	DebugOverridesPath string

	now func() time.Time
}

// NewPipeline loads the configured documents and builds a ready pipeline
func NewPipeline(ctx context.Context, cfg *model.Config, logger hclog.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	loader := config.NewLoader(cfg.Documents, logger.Named("config"))

	var (
		bundle   *model.Bundle
		warnings []string
		err      error
	)
	if cfg.Cache.Enabled {
		cached := config.NewCachedLoader(loader, cache.New(cfg.Cache), logger.Named("config"))
		bundle, err = cached.Load(ctx)
		warnings = cached.Fallbacks()
	} else {
		bundle, err = loader.Load(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("load documents: %w", err)
	}

	eng, err := engine.New(bundle)
	if err != nil {
		return nil, fmt.Errorf("build engine: %w", err)
	}

	// Create LLM narrator if configured
	var narrator *llm.Narrator
	if cfg.LLM.Provider != "" {
		provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM, logger.Named("llm")))
		if err != nil {
			logger.Warn("failed to initialize LLM provider, using templates", "error", err)
		} else {
			narrator = llm.NewNarrator(provider, logger.Named("llm"))
		}
	}

	p := New(eng, NewSource(cfg.HTTP, logger.Named("source")), narrator, logger)
	p.warnings = warnings
	return p, nil
}

// New assembles a pipeline from prepared parts
func New(eng *engine.Engine, source *Source, narrator *llm.Narrator, logger hclog.Logger) *Pipeline {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Pipeline{
		source:   source,
		engine:   eng,
		narrator: narrator,
		renderer: NewRenderer(),
		logger:   logger,
		now:      time.Now,
	}
}

// Warnings lists document-cache fallbacks taken while building the pipeline
func (p *Pipeline) Warnings() []string {
	return append([]string(nil), p.warnings...)
}

// Engine returns the engine used for scoring
func (p *Pipeline) Engine() *engine.Engine {
	return p.engine
}

// ScoreFile scores the answer document at location (path or URL)
func (p *Pipeline) ScoreFile(ctx context.Context, location string) (*model.Report, error) {
	// 1. Read answers
	doc, err := p.source.Read(ctx, location)
	if err != nil {
		return nil, err
	}
	answers, err := facts.FromJSON(doc.Data)
	if err != nil {
		return nil, fmt.Errorf("parse answers %s: %w", location, err)
	}

	// 2. Custom findings and debug overrides
	inspectionID := InspectionID(answers, doc.Name)
	debug, err := config.LoadDebugOverrides(p.DebugOverridesPath)
	if err != nil {
		return nil, err
	}

	// 3. Run the engine
	result := p.engine.Run(model.Inspection{
		ID:             inspectionID,
		Answers:        answers,
		Custom:         custom.Extract(inspectionID, answers),
		DebugOverrides: debug,
	})

	// 4. Narrative candidates if enabled (never affects findings or score)
	var narrative string
	if p.narrator.Enabled() {
		if sentences, label := p.narrator.Candidates(ctx, result); len(sentences) > 0 {
			result.Signals = p.engine.Narrate(result, sentences)
			if result.Signals.Source == model.SignalsFromCandidates {
				narrative = label
			}
		}
	}

	p.logger.Debug("scored inspection",
		"inspection", inspectionID, "findings", len(result.Findings),
		"level", result.Score.Level, "signals", result.Signals.Source)

	return &model.Report{
		RunID:       uuid.NewString(),
		SourcePath:  doc.Location,
		GeneratedAt: p.now().UTC(),
		RulesetVer:  p.engine.RulesetVersion(),
		Result:      result,
		Narrative:   narrative,
		Warnings:    p.Warnings(),
	}, nil
}

// InspectionID picks the inspection identifier from the answers, falling back to name
func InspectionID(answers map[string]any, name string) string {
	for _, key := range []string{"inspection_id", "id"} {
		v, _ := facts.Unwrap(answers[key])
		switch id := v.(type) {
		case string:
			if s := strings.TrimSpace(id); s != "" {
				return s
			}
		case json.Number:
			return id.String()
		}
	}
	return name
}

// RenderReport renders the report to the requested outputs and prints a summary
func (p *Pipeline) RenderReport(report *model.Report, jsonPath, mdPath string, verbose bool) error {
	if jsonPath != "" {
		if err := p.renderer.RenderJSON(report, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			fmt.Printf("✓ Wrote JSON: %s\n", jsonPath)
		}
	}

	if mdPath != "" {
		if err := p.renderer.RenderMarkdown(report, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose {
			fmt.Printf("✓ Wrote Markdown: %s\n", mdPath)
		}
	}

	p.renderer.RenderSummary(report)
	return nil
}
