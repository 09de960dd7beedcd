// Package config loads the rule, profile and override documents that drive the
// engine. Empty paths use the versioned defaults embedded in the binary.
package config

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/riskline/internal/model"
)

// Document kinds
const (
	KindRules          = "rules"
	KindProfiles       = "profiles"
	KindOverrides      = "overrides"
	KindDebugOverrides = "debug_overrides"
)

//go:embed defaults/*.yaml
var defaults embed.FS

// DefaultDocument returns the embedded default for a document kind
func DefaultDocument(kind string) ([]byte, error) {
	data, err := defaults.ReadFile("defaults/" + kind + ".yaml")
	if err != nil {
		return nil, missing(kind, "", err)
	}
	return data, nil
}

// Loader reads and validates the three engine documents
type Loader struct {
	RulesPath     string
	ProfilesPath  string
	OverridesPath string

	logger hclog.Logger
}

// NewLoader creates a loader for the configured document paths
func NewLoader(docs model.DocumentsConfig, logger hclog.Logger) *Loader {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Loader{
		RulesPath:     docs.Rules,
		ProfilesPath:  docs.Profiles,
		OverridesPath: docs.Overrides,
		logger:        logger,
	}
}

// Default loads the embedded documents
func Default() (*model.Bundle, error) {
	return NewLoader(model.DocumentsConfig{}, nil).Load(context.Background())
}

// Load reads all documents concurrently. Any failure aborts the load.
func (l *Loader) Load(ctx context.Context) (*model.Bundle, error) {
	return l.load(ctx, l.fetch)
}

// fetchFunc reads one document and hands its bytes to decode
type fetchFunc func(ctx context.Context, kind, path string, decode func([]byte) error) error

func (l *Loader) fetch(ctx context.Context, kind, path string, decode func([]byte) error) error {
	data, err := l.read(ctx, kind, path)
	if err != nil {
		return err
	}
	return decode(data)
}

func (l *Loader) load(ctx context.Context, fetch fetchFunc) (*model.Bundle, error) {
	var (
		rules     *model.RuleBook
		profiles  *model.ProfileBook
		overrides *model.OverrideBook
	)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return fetch(ctx, KindRules, l.RulesPath, func(data []byte) error {
			book, err := DecodeRules(l.RulesPath, data)
			if err == nil {
				rules = book
			}
			return err
		})
	})
	g.Go(func() error {
		return fetch(ctx, KindProfiles, l.ProfilesPath, func(data []byte) error {
			book, err := DecodeProfiles(l.ProfilesPath, data)
			if err == nil {
				profiles = book
			}
			return err
		})
	})
	g.Go(func() error {
		return fetch(ctx, KindOverrides, l.OverridesPath, func(data []byte) error {
			book, err := DecodeOverrides(KindOverrides, l.OverridesPath, data, true)
			if err == nil {
				overrides = book
			}
			return err
		})
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	l.logger.Debug("documents loaded",
		"rules_version", rules.Version, "rules", len(rules.Rules),
		"profiles_version", profiles.Version, "profiles", len(profiles.Profiles),
		"overrides", len(overrides.Overrides))

	return &model.Bundle{
		Rules:           rules,
		Profiles:        profiles.Profiles,
		GlobalOverrides: overrides.Overrides,
	}, nil
}

// read returns the raw bytes of a document, using the embedded default for an empty path
func (l *Loader) read(ctx context.Context, kind, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("read %s document: %w", kind, err)
	}

	if path == "" {
		return DefaultDocument(kind)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, missing(kind, path, err)
		}
		return nil, &DocumentError{Kind: kind, Path: path, Err: err}
	}
	return data, nil
}

// DecodeRules parses and validates a rule book
func DecodeRules(path string, data []byte) (*model.RuleBook, error) {
	var book model.RuleBook
	if err := decodeStrict(data, &book); err != nil {
		return nil, malformed(KindRules, path, err)
	}
	if err := ValidateRules(&book); err != nil {
		return nil, malformed(KindRules, path, err)
	}
	return &book, nil
}

// DecodeProfiles parses and validates a profile book
func DecodeProfiles(path string, data []byte) (*model.ProfileBook, error) {
	var book model.ProfileBook
	if err := decodeStrict(data, &book); err != nil {
		return nil, malformed(KindProfiles, path, err)
	}
	if err := ValidateProfiles(&book); err != nil {
		return nil, malformed(KindProfiles, path, err)
	}
	return &book, nil
}

// DecodeOverrides parses and validates an override book
func DecodeOverrides(kind, path string, data []byte, requireVersion bool) (*model.OverrideBook, error) {
	var book model.OverrideBook
	if err := decodeStrict(data, &book); err != nil {
		return nil, malformed(kind, path, err)
	}
	if err := ValidateOverrides(&book, requireVersion); err != nil {
		return nil, malformed(kind, path, err)
	}
	if book.Overrides == nil {
		book.Overrides = map[string]model.Override{}
	}
	return &book, nil
}

// LoadDebugOverrides reads a per-inspection override document (YAML or JSON).
// An empty path yields no overrides.
func LoadDebugOverrides(path string) (map[string]model.Override, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, missing(KindDebugOverrides, path, err)
		}
		return nil, &DocumentError{Kind: KindDebugOverrides, Path: path, Err: err}
	}

	book, err := DecodeOverrides(KindDebugOverrides, path, data, false)
	if err != nil {
		return nil, err
	}
	return book.Overrides, nil
}

// decodeStrict rejects unknown keys and empty documents
func decodeStrict(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("document is empty")
		}
		return err
	}
	return nil
}
