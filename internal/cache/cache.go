// Package cache keeps the last good copy of configuration documents so a host
// can fall back to it when a fresh load fails.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/ppiankov/riskline/internal/model"
)

// Cache stores raw document bytes by key
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// DocumentKey derives the cache key for a document of kind loaded from path.
// The embedded default of a kind uses an empty path.
func DocumentKey(kind, path string) string {
	source := path
	if source == "" {
		source = "embedded"
	}
	hash := sha256.Sum256([]byte(kind + "\x00" + source))
	return "riskline-doc-" + kind + "-" + hex.EncodeToString(hash[:12])
}

// New builds the cache described by cfg. A disabled cache yields a memory-only
// cache so callers never handle nil.
func New(cfg model.CacheConfig) Cache {
	memory := NewMemoryCache(cfg.MemoryTTL, cleanupInterval(cfg.MemoryTTL))
	if !cfg.Enabled || cfg.Dir == "" {
		return memory
	}
	return NewLayeredCache(memory, NewDiskCache(cfg.Dir, cfg.DiskTTL))
}

func cleanupInterval(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return 10 * time.Minute
	}
	return ttl / 2
}
