package worker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/riskline/internal/model"
)

// mockScorer returns a report whose inspection ID is the location's base name
type mockScorer struct {
	fail map[string]bool
	ids  map[string]string
}

func (m *mockScorer) ScoreFile(ctx context.Context, location string) (*model.Report, error) {
	time.Sleep(5 * time.Millisecond)
	if m.fail[location] {
		return nil, errors.New("score error")
	}
	id := m.ids[location]
	if id == "" {
		id = filepath.Base(location)
	}
	return &model.Report{SourcePath: location, Result: model.Result{InspectionID: id}}, nil
}

func testConcurrency(workers int) model.ConcurrencyConfig {
	return model.ConcurrencyConfig{Workers: workers, LockPollPerSecond: 200, LockPollBurst: 1}
}

func TestBatchProcessor_ProcessLocations(t *testing.T) {
	scorer := &mockScorer{fail: map[string]bool{"b.json": true}}
	processor := NewBatchProcessor(scorer, testConcurrency(2), nil)

	results := processor.ProcessLocations(context.Background(), []string{"a.json", "b.json", "c.json"})

	require.Len(t, results, 3)
	assert.Equal(t, "a.json", results[0].Location)
	assert.NoError(t, results[0].Error)
	assert.Equal(t, "a.json", results[0].Report.Result.InspectionID)
	assert.Error(t, results[1].Error)
	assert.Nil(t, results[1].Report)
	assert.Equal(t, "c.json", results[2].Location)
	assert.NoError(t, results[2].GetError())
}

func TestBatchProcessor_ProcessLocations_Empty(t *testing.T) {
	processor := NewBatchProcessor(&mockScorer{}, testConcurrency(2), nil)
	assert.Empty(t, processor.ProcessLocations(context.Background(), nil))
}

func TestBatchProcessor_ProcessLocations_LargeBatch(t *testing.T) {
	workers := 4
	count := workers * 10

	var mu sync.Mutex
	written := 0
	processor := NewBatchProcessor(&mockScorer{}, testConcurrency(workers), nil).
		WithSink(func(report *model.Report) error {
			mu.Lock()
			written++
			mu.Unlock()
			return nil
		})

	locations := make([]string, count)
	for i := range locations {
		locations[i] = fmt.Sprintf("insp-%03d.json", i)
	}

	done := make(chan []*ScoreResult)
	go func() { done <- processor.ProcessLocations(context.Background(), locations) }()

	var results []*ScoreResult
	select {
	case results = <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("ProcessLocations did not finish")
	}

	require.Len(t, results, count)
	for i, r := range results {
		assert.Equal(t, locations[i], r.Location)
		assert.NoError(t, r.Error)
	}
	mu.Lock()
	assert.Equal(t, count, written)
	mu.Unlock()
}

func TestBatchProcessor_SinkRunsUnderInspectionLock(t *testing.T) {
	// Two files carry the same inspection ID
	scorer := &mockScorer{ids: map[string]string{"x1.json": "insp-7", "x2.json": "insp-7"}}

	var mu sync.Mutex
	inside := map[string]int{}
	overlap := false
	var written []string

	processor := NewBatchProcessor(scorer, testConcurrency(4), nil).WithSink(func(r *model.Report) error {
		id := r.Result.InspectionID
		mu.Lock()
		inside[id]++
		if inside[id] > 1 {
			overlap = true
		}
		mu.Unlock()

		time.Sleep(20 * time.Millisecond)

		mu.Lock()
		inside[id]--
		written = append(written, r.SourcePath)
		mu.Unlock()
		return nil
	})

	results := processor.ProcessLocations(context.Background(), []string{"x1.json", "x2.json", "y.json"})

	for _, r := range results {
		assert.NoError(t, r.Error)
	}
	assert.False(t, overlap, "two sinks ran for one inspection at once")
	assert.ElementsMatch(t, []string{"x1.json", "x2.json", "y.json"}, written)
	assert.False(t, processor.Lock().Held("insp-7"))
}

func TestBatchProcessor_SinkError(t *testing.T) {
	processor := NewBatchProcessor(&mockScorer{}, testConcurrency(1), nil).WithSink(func(*model.Report) error {
		return errors.New("disk full")
	})

	results := processor.ProcessLocations(context.Background(), []string{"a.json"})

	require.Len(t, results, 1)
	assert.ErrorContains(t, results[0].Error, "write report a.json: disk full")
	assert.NotNil(t, results[0].Report)
	assert.False(t, processor.Lock().Held("a.json"))
}

func TestBatchProcessor_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	processor := NewBatchProcessor(&mockScorer{}, testConcurrency(1), nil)
	results := processor.ProcessLocations(ctx, []string{"a.json", "b.json"})

	require.Len(t, results, 2)
	for _, r := range results {
		if r.Error != nil {
			assert.ErrorIs(t, r.Error, context.Canceled)
		}
	}
}

func TestReadLocationsFromFile(t *testing.T) {
	content := `# inspections for March
answers/a.json

https://example.com/exports/b.json
answers/a.json
`
	path := filepath.Join(t.TempDir(), "list.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	locations, err := ReadLocationsFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"answers/a.json", "https://example.com/exports/b.json"}, locations)
}

func TestBatchProcessor_ProcessFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "list.txt")
	require.NoError(t, os.WriteFile(path, []byte("a.json\nb.json\n"), 0644))

	processor := NewBatchProcessor(&mockScorer{}, testConcurrency(2), nil)
	results, err := processor.ProcessFile(context.Background(), path)
	require.NoError(t, err)
	assert.Len(t, results, 2)

	_, err = processor.ProcessFile(context.Background(), filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}
