package config

import (
	"context"
	"fmt"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/ppiankov/riskline/internal/cache"
	"github.com/ppiankov/riskline/internal/model"
)

// CachedLoader stores every successfully loaded document and serves the last
// good copy when a later load of the same document fails
type CachedLoader struct {
	loader *Loader
	cache  cache.Cache
	logger hclog.Logger

	mu        sync.Mutex
	fallbacks []string
}

// NewCachedLoader wraps loader with a document cache
func NewCachedLoader(loader *Loader, c cache.Cache, logger hclog.Logger) *CachedLoader {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &CachedLoader{
		loader: loader,
		cache:  c,
		logger: logger,
	}
}

// Load reads all documents, falling back per document to the cache
func (c *CachedLoader) Load(ctx context.Context) (*model.Bundle, error) {
	c.mu.Lock()
	c.fallbacks = nil
	c.mu.Unlock()

	return c.loader.load(ctx, c.fetch)
}

// Fallbacks describes the documents served from cache by the last Load
func (c *CachedLoader) Fallbacks() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.fallbacks...)
}

func (c *CachedLoader) fetch(ctx context.Context, kind, path string, decode func([]byte) error) error {
	key := cache.DocumentKey(kind, path)

	data, err := c.loader.read(ctx, kind, path)
	if err == nil {
		if err = decode(data); err == nil {
			if serr := c.cache.Set(key, data, 0); serr != nil {
				c.logger.Warn("document cache write failed", "kind", kind, "path", path, "error", serr)
			}
			return nil
		}
	}

	if ctx.Err() != nil {
		return err
	}

	cached, ok := c.cache.Get(key)
	if !ok {
		return err
	}
	if derr := decode(cached); derr != nil {
		c.logger.Error("cached document is unusable", "kind", kind, "path", path, "error", derr)
		return err
	}

	c.logger.Warn("using cached document", "kind", kind, "path", path, "error", err)
	c.mu.Lock()
	c.fallbacks = append(c.fallbacks, fmt.Sprintf("%s document served from cache: %v", kind, err))
	c.mu.Unlock()
	return nil
}
