package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/riskline/internal/model"
)

func testSource() *Source {
	return NewSource(model.HTTPConfig{Timeout: 5 * time.Second, UserAgent: "test-agent", MaxBodyBytes: 1 << 20}, nil)
}

func noSleep(t *testing.T) {
	t.Helper()
	orig := fetchSleepFunc
	fetchSleepFunc = func(time.Duration) {}
	t.Cleanup(func() { fetchSleepFunc = orig })
}

func TestSource_ReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "house-42.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"a": 1}`), 0644))

	doc, err := testSource().Read(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, `{"a": 1}`, string(doc.Data))
	assert.Equal(t, "house-42", doc.Name)
	assert.Equal(t, path, doc.Location)
}

func TestSource_ReadFileTooLarge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.json")
	require.NoError(t, os.WriteFile(path, make([]byte, 64), 0644))

	src := NewSource(model.HTTPConfig{MaxBodyBytes: 16}, nil)
	_, err := src.Read(context.Background(), path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds 16 bytes")
}

func TestSource_ReadMissingFile(t *testing.T) {
	_, err := testSource().Read(context.Background(), filepath.Join(t.TempDir(), "nope.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFetchWithRetry_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprint(w, `{"id": "insp-9"}`)
	}))
	defer server.Close()

	doc, err := testSource().Read(context.Background(), server.URL+"/exports/insp-9.json")
	require.NoError(t, err)

	assert.Equal(t, `{"id": "insp-9"}`, string(doc.Data))
	assert.Equal(t, "insp-9", doc.Name)
}

func TestFetchWithRetry_TransientThenSuccess(t *testing.T) {
	noSleep(t)
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = fmt.Fprint(w, `{}`)
	}))
	defer server.Close()

	doc, err := testSource().Read(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Equal(t, "{}", string(doc.Data))
	assert.Equal(t, int32(3), attempts.Load())
}

func TestFetchWithRetry_PermanentFailure(t *testing.T) {
	noSleep(t)
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := testSource().Read(context.Background(), server.URL)

	require.Error(t, err)
	assert.Equal(t, "unexpected status: 404 Not Found", err.Error())
	assert.Equal(t, int32(1), attempts.Load())
}

func TestFetchWithRetry_AllRetriesExhausted(t *testing.T) {
	noSleep(t)
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := testSource().Read(context.Background(), server.URL)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadGateway, statusErr.Code)
	assert.Equal(t, int32(maxFetchAttempts), attempts.Load())
}

func TestIsRetryableFetchError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"nil", nil, false},
		{"503", &StatusError{Code: 503}, true},
		{"500", &StatusError{Code: 500}, true},
		{"429", &StatusError{Code: 429}, true},
		{"404", &StatusError{Code: 404}, false},
		{"401", &StatusError{Code: 401}, false},
		{"refused", fmt.Errorf("fetch: %w", syscall.ECONNREFUSED), true},
		{"reset", fmt.Errorf("fetch: %w", syscall.ECONNRESET), true},
		{"canceled", fmt.Errorf("fetch: %w", context.Canceled), false},
		{"other", errors.New("create request: invalid URL"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.retryable, isRetryableFetchError(tt.err))
		})
	}
}

func TestDocumentName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/data/answers/insp-1.json", "insp-1"},
		{"insp-2", "insp-2"},
		{"https://example.com/api/inspections/77.json", "77"},
		{"https://example.com/", "example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, documentName(tt.in))
		})
	}
}
