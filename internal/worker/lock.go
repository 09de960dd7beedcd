package worker

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/time/rate"
)

// ReportLock is an advisory lock keyed by inspection ID. A holder blocks other
// report-generation jobs for the same inspection; waiters poll at a fixed rate.
type ReportLock struct {
	mu    sync.Mutex
	held  map[string]struct{}
	rate  rate.Limit
	burst int
}

// NewReportLock creates a lock whose waiters retry pollPerSecond times a second
func NewReportLock(pollPerSecond float64, burst int) *ReportLock {
	if pollPerSecond <= 0 {
		pollPerSecond = 4
	}
	if burst <= 0 {
		burst = 1
	}

	return &ReportLock{
		held:  make(map[string]struct{}),
		rate:  rate.Limit(pollPerSecond),
		burst: burst,
	}
}

// TryAcquire takes the lock for id if it is free
func (l *ReportLock) TryAcquire(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, busy := l.held[id]; busy {
		return false
	}
	l.held[id] = struct{}{}
	return true
}

// Acquire takes the lock for id, polling until it is free or ctx is done
func (l *ReportLock) Acquire(ctx context.Context, id string) error {
	if l.TryAcquire(id) {
		return nil
	}

	limiter := rate.NewLimiter(l.rate, l.burst)
	for {
		if err := limiter.Wait(ctx); err != nil {
			return fmt.Errorf("acquire report lock %s: %w", id, err)
		}
		if l.TryAcquire(id) {
			return nil
		}
	}
}

// Release frees the lock for id. Releasing a free lock is a no-op.
func (l *ReportLock) Release(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, id)
}

// Held reports whether id is currently locked
func (l *ReportLock) Held(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, busy := l.held[id]
	return busy
}
