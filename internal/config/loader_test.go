package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/riskline/internal/cache"
	"github.com/ppiankov/riskline/internal/model"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault_EmbeddedDocumentsAreValid(t *testing.T) {
	bundle, err := Default()
	require.NoError(t, err)

	require.NotNil(t, bundle.Rules)
	assert.Equal(t, 3, bundle.Rules.Version)
	assert.NotEmpty(t, bundle.Rules.Rules)
	assert.Len(t, bundle.Rules.Matrix, 6)
	assert.True(t, bundle.Rules.Guardrails.NoDowngradeWhenSafetyHigh)
	assert.Equal(t, 12, bundle.Rules.CustomThreshold)
	assert.Contains(t, bundle.Rules.HardOverrides, "THERMAL_HOTSPOT_MAJOR")
	assert.NotEmpty(t, bundle.Rules.Classification.System)
	assert.NotNil(t, bundle.GlobalOverrides)

	// Every finding the rule table can emit has meta and a profile
	for _, r := range bundle.Rules.Rules {
		assert.Contains(t, bundle.Rules.Findings, r.FindingID)
		assert.Contains(t, bundle.Profiles, r.FindingID)
	}

	profile := bundle.Profiles["NO_RCD_PROTECTION"]
	require.NotNil(t, profile.BudgetLow)
	assert.Equal(t, 450.0, *profile.BudgetLow)

	var compare *model.Rule
	for i := range bundle.Rules.Rules {
		if bundle.Rules.Rules[i].When.CompareField != "" {
			compare = &bundle.Rules.Rules[i]
		}
	}
	require.NotNil(t, compare)
	assert.Equal(t, model.OpGreaterThan, compare.When.Operator)
}

func TestLoader_MissingDocument(t *testing.T) {
	loader := NewLoader(model.DocumentsConfig{Profiles: filepath.Join(t.TempDir(), "nope.yaml")}, nil)

	_, err := loader.Load(context.Background())

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingDocument))
	var docErr *DocumentError
	require.True(t, errors.As(err, &docErr))
	assert.Equal(t, KindProfiles, docErr.Kind)
}

func TestLoader_MalformedDocuments(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		docs    func() model.DocumentsConfig
		wantMsg string
	}{
		{
			name: "yaml syntax",
			docs: func() model.DocumentsConfig {
				return model.DocumentsConfig{Rules: writeFile(t, dir, "syntax.yaml", "version: [1")}
			},
		},
		{
			name: "empty",
			docs: func() model.DocumentsConfig {
				return model.DocumentsConfig{Rules: writeFile(t, dir, "empty.yaml", "")}
			},
			wantMsg: "document is empty",
		},
		{
			name: "unknown key",
			docs: func() model.DocumentsConfig {
				return model.DocumentsConfig{Overrides: writeFile(t, dir, "unknown.yaml", "version: 1\noverides: {}\n")}
			},
		},
		{
			name: "unknown operator",
			docs: func() model.DocumentsConfig {
				return model.DocumentsConfig{Rules: writeFile(t, dir, "operator.yaml", `
version: 1
rules:
  - { finding_id: X, when: { field: a, operator: matches, value: b } }
matrix:
  - { when: { safety: HIGH }, then: IMMEDIATE }
`)}
			},
			wantMsg: "unknown operator",
		},
		{
			name: "empty matrix",
			docs: func() model.DocumentsConfig {
				return model.DocumentsConfig{Rules: writeFile(t, dir, "matrix.yaml", "version: 1\n")}
			},
			wantMsg: "matrix must have at least one entry",
		},
		{
			name: "profile out of range",
			docs: func() model.DocumentsConfig {
				return model.DocumentsConfig{Profiles: writeFile(t, dir, "profiles.yaml", "version: 1\nprofiles:\n  X: { severity: 7, likelihood: 2 }\n")}
			},
			wantMsg: "severity 7 outside 0-5",
		},
		{
			name: "override priority",
			docs: func() model.DocumentsConfig {
				return model.DocumentsConfig{Overrides: writeFile(t, dir, "bad-priority.yaml", "version: 1\noverrides:\n  X: { priority: SOON }\n")}
			},
			wantMsg: `unknown priority "SOON"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLoader(tt.docs(), nil).Load(context.Background())
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedDocument), err.Error())
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestLoader_CustomOverrides(t *testing.T) {
	path := writeFile(t, t.TempDir(), "overrides.yaml", `
version: 4
overrides:
  NO_RCD_PROTECTION:
    title: RCD protection required
    priority: immediate
    budget_high: 1200
`)

	bundle, err := NewLoader(model.DocumentsConfig{Overrides: path}, nil).Load(context.Background())
	require.NoError(t, err)

	o := bundle.GlobalOverrides["NO_RCD_PROTECTION"]
	assert.Equal(t, "RCD protection required", o.Title)
	require.NotNil(t, o.BudgetHigh)
	assert.Equal(t, 1200.0, *o.BudgetHigh)
}

func TestLoader_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLoader(model.DocumentsConfig{}, nil).Load(ctx)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadDebugOverrides(t *testing.T) {
	dir := t.TempDir()

	overrides, err := LoadDebugOverrides("")
	require.NoError(t, err)
	assert.Nil(t, overrides)

	jsonPath := writeFile(t, dir, "debug.json", `{"overrides": {"BOARD_AT_CAPACITY": {"priority": "RECOMMENDED", "budget_low": 700}}}`)
	overrides, err = LoadDebugOverrides(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, "RECOMMENDED", overrides["BOARD_AT_CAPACITY"].Priority)

	_, err = LoadDebugOverrides(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, ErrMissingDocument)
}

func TestCachedLoader_FallsBackToLastGoodDocument(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "profiles.yaml", "version: 5\nprofiles:\n  X: { severity: 3, likelihood: 3 }\n")

	docCache := cache.NewMemoryCache(time.Hour, time.Minute)
	loader := NewCachedLoader(NewLoader(model.DocumentsConfig{Profiles: path}, nil), docCache, nil)

	bundle, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, bundle.Profiles["X"].Severity)
	assert.Empty(t, loader.Fallbacks())

	// Corrupt the document; the cached copy is served
	writeFile(t, dir, "profiles.yaml", "version: 5\nprofiles: [")
	bundle, err = loader.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, bundle.Profiles["X"].Severity)
	require.Len(t, loader.Fallbacks(), 1)
	assert.Contains(t, loader.Fallbacks()[0], "profiles document served from cache")

	// Without a cached copy the error surfaces
	require.NoError(t, docCache.Clear())
	_, err = loader.Load(context.Background())
	assert.ErrorIs(t, err, ErrMalformedDocument)
}
