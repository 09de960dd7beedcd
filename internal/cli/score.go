package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/riskline/internal/model"
	"github.com/ppiankov/riskline/internal/pipeline"
)

var (
	outJSON        string
	outMD          string
	timeout        time.Duration
	rulesPath      string
	profilesPath   string
	overridesPath  string
	debugOverrides string
	noCache        bool
	llmProvider    string
	llmModel       string
)

// scoreCmd represents the score command
var scoreCmd = &cobra.Command{
	Use:   "score <answers>",
	Short: "Score one inspection answer document",
	Long: `Score reads an inspection answer document (a JSON file or an http(s) URL) and:
- Derives findings from the rule table and procedural checks
- Classifies each finding by system, space and tags
- Resolves priorities through the matrix, guardrails and overrides
- Computes the overall risk level and capital range
- Writes decision signals, optionally drafted by an LLM

Example:
  riskline score answers.json
  riskline score answers.json --json report.json --md report.md
  riskline score https://example.com/inspections/42.json --llm openai --model gpt-4o-mini`,
	Args: cobra.ExactArgs(1),
	RunE: runScore,
}

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path (optional)")
	scoreCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	scoreCmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall timeout")
	scoreCmd.Flags().StringVar(&debugOverrides, "debug-overrides", "", "per-inspection override document (YAML)")
	addDocumentFlags(scoreCmd)
	addLLMFlags(scoreCmd)
}

// addDocumentFlags registers the document and cache flags shared by score and batch
func addDocumentFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&rulesPath, "rules", "", "rule book (default: embedded)")
	cmd.Flags().StringVar(&profilesPath, "profiles", "", "finding profiles (default: embedded)")
	cmd.Flags().StringVar(&overridesPath, "overrides", "", "global overrides (default: embedded)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the document cache fallback")
}

func addLLMFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&llmProvider, "llm", "", "narrative candidate provider (openai, anthropic, ollama)")
	cmd.Flags().StringVar(&llmModel, "model", "", "LLM model name (default depends on provider)")
}

// applyFlags overlays flags the user actually set
func applyFlags(cmd *cobra.Command, cfg *model.Config) {
	flags := cmd.Flags()
	if flags.Changed("rules") {
		cfg.Documents.Rules = rulesPath
	}
	if flags.Changed("profiles") {
		cfg.Documents.Profiles = profilesPath
	}
	if flags.Changed("overrides") {
		cfg.Documents.Overrides = overridesPath
	}
	if flags.Changed("no-cache") {
		cfg.Cache.Enabled = !noCache
	}
	if flags.Changed("llm") {
		cfg.LLM.Provider = llmProvider
		applyAPIKey(&cfg.LLM)
	}
	if flags.Changed("model") {
		cfg.LLM.Model = llmModel
	}
	if verbose {
		cfg.Output.Verbose = true
	}
}

func runScore(cmd *cobra.Command, args []string) error {
	location := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyFlags(cmd, cfg)
	if err := checkAPIKey(cfg.LLM); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "Scoring: %s\n", location)
		fmt.Fprintf(os.Stderr, "Cache: %v\n", cfg.Cache.Enabled)
		if cfg.LLM.Provider != "" {
			fmt.Fprintf(os.Stderr, "LLM: %s\n", cfg.LLM.Provider)
		}
		fmt.Fprintln(os.Stderr)
	}

	p, report, err := scoreOne(ctx, cfg, location, debugOverrides)
	if err != nil {
		return err
	}
	if err := p.RenderReport(report, outJSON, outMD, cfg.Output.Verbose); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	return nil
}

// scoreOne builds a pipeline from cfg and scores a single document
func scoreOne(ctx context.Context, cfg *model.Config, location, debugPath string) (*pipeline.Pipeline, *model.Report, error) {
	p, err := pipeline.NewPipeline(ctx, cfg, newLogger(cfg))
	if err != nil {
		return nil, nil, err
	}
	p.DebugOverridesPath = debugPath

	report, err := p.ScoreFile(ctx, location)
	if err != nil {
		return nil, nil, fmt.Errorf("score failed: %w", err)
	}
	return p, report, nil
}
