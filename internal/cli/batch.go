package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/riskline/internal/model"
	"github.com/ppiankov/riskline/internal/pipeline"
	"github.com/ppiankov/riskline/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Score many answer documents in parallel",
	Long: `Batch scores every answer document listed in a file (one path or URL per line):
- Documents are scored concurrently with a configurable worker count
- Rules, profiles and overrides are loaded once and shared
- Reports for the same inspection are written one at a time
- A JSON and a Markdown report are written per inspection

Example:
  riskline batch inspections.txt
  riskline batch inspections.txt --concurrency 8 --output-dir ./reports`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default from config)")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "", "output directory for reports (default from config)")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
	addDocumentFlags(batchCmd)
	addLLMFlags(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyFlags(cmd, cfg)
	if cmd.Flags().Changed("concurrency") {
		cfg.Concurrency.Workers = concurrency
	}
	if cmd.Flags().Changed("output-dir") {
		cfg.Output.Dir = outputDir
	}
	if err := checkAPIKey(cfg.LLM); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	out := os.Stderr
	fmt.Fprintf(out, "\n")
	fmt.Fprintf(out, "  Riskline Batch Scoring\n")
	fmt.Fprintf(out, "\n")
	fmt.Fprintf(out, "  Input file:   %s\n", file)
	fmt.Fprintf(out, "  Workers:      %d\n", cfg.Concurrency.Workers)
	fmt.Fprintf(out, "  Output dir:   %s\n", cfg.Output.Dir)
	fmt.Fprintf(out, "  Timeout:      %v\n", batchTimeout)
	if cfg.LLM.Provider != "" {
		fmt.Fprintf(out, "  LLM:          %s\n", cfg.LLM.Provider)
	}
	fmt.Fprintf(out, "\n")

	if err := os.MkdirAll(cfg.Output.Dir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	logger := newLogger(cfg)
	p, err := pipeline.NewPipeline(ctx, cfg, logger)
	if err != nil {
		return err
	}

	processor := worker.NewBatchProcessor(p, cfg.Concurrency, logger.Named("batch")).
		WithSink(reportSink(cfg.Output.Dir))

	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	failures := printBatchResults(out, results)
	printBatchSummary(out, len(results), failures, cfg.Output.Dir)

	if failures > 0 && failures == len(results) {
		return fmt.Errorf("all %d documents failed", failures)
	}
	return nil
}

// reportSink writes <inspection>.json and <inspection>.md into dir
func reportSink(dir string) worker.Sink {
	renderer := pipeline.NewRenderer()
	return func(report *model.Report) error {
		jsonPath, mdPath := reportPaths(dir, report.Result.InspectionID)
		if err := renderer.RenderJSON(report, jsonPath); err != nil {
			return err
		}
		return renderer.RenderMarkdown(report, mdPath)
	}
}

func reportPaths(dir, inspectionID string) (string, string) {
	slug := sanitizeFilename(inspectionID)
	return filepath.Join(dir, slug+".json"), filepath.Join(dir, slug+".md")
}

func printBatchResults(out io.Writer, results []*worker.ScoreResult) int {
	failures := 0
	for _, result := range results {
		if result.Error != nil {
			failures++
			fmt.Fprintf(out, "✗ %s: %v\n", result.Location, result.Error)
			continue
		}
		s := result.Report.Result.Score
		fmt.Fprintf(out, "✓ %s (%s, %d findings)\n",
			result.Report.Result.InspectionID, s.Level, len(result.Report.Result.Findings))
	}
	return failures
}

func printBatchSummary(out io.Writer, total, failures int, dir string) {
	fmt.Fprintf(out, "\n")
	fmt.Fprintf(out, "  Batch Complete\n")
	fmt.Fprintf(out, "\n")
	fmt.Fprintf(out, "  Total:     %d documents\n", total)
	fmt.Fprintf(out, "  Success:   %d\n", total-failures)
	fmt.Fprintf(out, "  Failures:  %d\n", failures)
	fmt.Fprintf(out, "  Output:    %s\n", dir)
	fmt.Fprintf(out, "\n")
}

var filenameReplacer = strings.NewReplacer(
	"/", "_",
	"\\", "_",
	":", "_",
	"*", "_",
	"?", "_",
	"\"", "_",
	"<", "_",
	">", "_",
	"|", "_",
	" ", "-",
)

// sanitizeFilename makes an inspection ID safe to use as a file name
func sanitizeFilename(s string) string {
	s = filenameReplacer.Replace(strings.TrimSpace(s))
	s = strings.Trim(s, ".")
	if s == "" {
		s = "inspection"
	}
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}
