package config

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingDocument means a configured document could not be found
	ErrMissingDocument = errors.New("missing document")
	// ErrMalformedDocument means a document could not be decoded or failed validation
	ErrMalformedDocument = errors.New("malformed document")
)

// DocumentError describes a failed load of one configuration document
type DocumentError struct {
	Kind string // rules, profiles, overrides, debug_overrides
	Path string // Empty for embedded defaults
	Err  error
}

func (e *DocumentError) Error() string {
	source := e.Path
	if source == "" {
		source = "embedded default"
	}
	return fmt.Sprintf("load %s document (%s): %v", e.Kind, source, e.Err)
}

func (e *DocumentError) Unwrap() error {
	return e.Err
}

func missing(kind, path string, err error) error {
	return &DocumentError{Kind: kind, Path: path, Err: fmt.Errorf("%w: %v", ErrMissingDocument, err)}
}

func malformed(kind, path string, err error) error {
	return &DocumentError{Kind: kind, Path: path, Err: fmt.Errorf("%w: %v", ErrMalformedDocument, err)}
}
