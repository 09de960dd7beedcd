package worker

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/ppiankov/riskline/internal/model"
)

// ErrJobAbandoned marks a location whose job never ran
var ErrJobAbandoned = errors.New("job abandoned")

// Scorer scores one answer document
type Scorer interface {
	ScoreFile(ctx context.Context, location string) (*model.Report, error)
}

// Sink persists a finished report. It runs while the inspection's report lock is held.
type Sink func(report *model.Report) error

// ScoreJob scores one answer document and hands the report to the sink
type ScoreJob struct {
	Location string
	Scorer   Scorer
	Lock     *ReportLock
	Sink     Sink
}

// Execute executes the score job
func (j *ScoreJob) Execute(ctx context.Context) Result {
	report, err := j.Scorer.ScoreFile(ctx, j.Location)
	if err != nil {
		return &ScoreResult{Location: j.Location, Error: err}
	}
	if j.Sink == nil {
		return &ScoreResult{Location: j.Location, Report: report}
	}

	id := report.Result.InspectionID
	if j.Lock != nil {
		if err := j.Lock.Acquire(ctx, id); err != nil {
			return &ScoreResult{Location: j.Location, Report: report, Error: err}
		}
		defer j.Lock.Release(id)
	}

	if err := j.Sink(report); err != nil {
		return &ScoreResult{Location: j.Location, Report: report, Error: fmt.Errorf("write report %s: %w", id, err)}
	}
	return &ScoreResult{Location: j.Location, Report: report}
}

// ScoreResult represents the result of a score job
type ScoreResult struct {
	Location string
	Report   *model.Report
	Error    error
}

// GetError returns the error from the score result
func (r *ScoreResult) GetError() error {
	return r.Error
}

// BatchProcessor scores many answer documents concurrently
type BatchProcessor struct {
	scorer      Scorer
	concurrency int
	lock        *ReportLock
	sink        Sink
	logger      hclog.Logger
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(scorer Scorer, cfg model.ConcurrencyConfig, logger hclog.Logger) *BatchProcessor {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &BatchProcessor{
		scorer:      scorer,
		concurrency: cfg.Workers,
		lock:        NewReportLock(cfg.LockPollPerSecond, cfg.LockPollBurst),
		logger:      logger,
	}
}

// WithSink sets the report sink run under the per-inspection lock
func (b *BatchProcessor) WithSink(sink Sink) *BatchProcessor {
	b.sink = sink
	return b
}

// Lock returns the report lock shared by the batch jobs
func (b *BatchProcessor) Lock() *ReportLock {
	return b.lock
}

// ProcessLocations scores the given locations, returning results in input order
func (b *BatchProcessor) ProcessLocations(ctx context.Context, locations []string) []*ScoreResult {
	if len(locations) == 0 {
		return []*ScoreResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for _, loc := range locations {
		accepted := pool.Submit(&ScoreJob{
			Location: loc,
			Scorer:   b.scorer,
			Lock:     b.lock,
			Sink:     b.sink,
		})
		if !accepted {
			break
		}
	}

	results := pool.Wait()

	scoreResults := make([]*ScoreResult, len(locations))
	for i, loc := range locations {
		var r Result
		if i < len(results) {
			r = results[i]
		}
		switch res := r.(type) {
		case *ScoreResult:
			scoreResults[i] = res
		case nil:
			cause := context.Cause(ctx)
			if cause == nil {
				cause = ErrJobAbandoned
			}
			scoreResults[i] = &ScoreResult{Location: loc, Error: fmt.Errorf("score %s: %w", loc, cause)}
		default:
			scoreResults[i] = &ScoreResult{Location: loc, Error: res.GetError()}
		}
		if err := scoreResults[i].Error; err != nil {
			b.logger.Warn("inspection failed", "location", loc, "error", err)
		}
	}

	return scoreResults
}

// ProcessFile reads locations from a list file and scores them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*ScoreResult, error) {
	locations, err := ReadLocationsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read locations: %w", err)
	}

	return b.ProcessLocations(ctx, locations), nil
}

// ReadLocationsFromFile reads answer document paths or URLs from a file (one per line)
func ReadLocationsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var locations []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			locations = append(locations, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return locations, nil
}
