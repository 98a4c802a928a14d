// Package errors provides typed, wrappable error values for the indexing,
// parsing, pipeline, and configuration layers (spec.md §7).
package errors

import (
	"fmt"
	"time"
)

// ErrorType classifies an error for logging and metrics without requiring
// a type switch.
type ErrorType string

const (
	ErrorTypeIndexing ErrorType = "indexing"
	ErrorTypeParse    ErrorType = "parse"
	ErrorTypePipeline ErrorType = "pipeline"
	ErrorTypeConfig   ErrorType = "config"
)

// IndexingError represents an error during bulk indexing or graph mutation
// (internal/indexer, internal/graph).
type IndexingError struct {
	Type        ErrorType
	FilePath    string
	Operation   string
	Underlying  error
	Timestamp   time.Time
	Recoverable bool
}

// NewIndexingError creates a new indexing error with context.
func NewIndexingError(op string, err error) *IndexingError {
	return &IndexingError{
		Type:       ErrorTypeIndexing,
		Operation:  op,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// WithFile adds file information to the error.
func (e *IndexingError) WithFile(path string) *IndexingError {
	e.FilePath = path
	return e
}

// WithRecoverable marks the error as recoverable.
func (e *IndexingError) WithRecoverable(recoverable bool) *IndexingError {
	e.Recoverable = recoverable
	return e
}

func (e *IndexingError) Error() string {
	if e.FilePath != "" {
		return fmt.Sprintf("%s %s failed for %s: %v", e.Type, e.Operation, e.FilePath, e.Underlying)
	}
	return fmt.Sprintf("%s %s failed: %v", e.Type, e.Operation, e.Underlying)
}

func (e *IndexingError) Unwrap() error { return e.Underlying }

// IsRecoverable reports whether the caller should retry.
func (e *IndexingError) IsRecoverable() bool { return e.Recoverable }

// ParseError represents a parser adapter failure (internal/parser,
// internal/registry).
type ParseError struct {
	Type       ErrorType
	FilePath   string
	Line       int
	Column     int
	Token      string
	Underlying error
	Timestamp  time.Time
}

// NewParseError creates a new parse error.
func NewParseError(path string, line, column int, token string, err error) *ParseError {
	return &ParseError{
		Type:       ErrorTypeParse,
		FilePath:   path,
		Line:       line,
		Column:     column,
		Token:      token,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %s:%d:%d (near token %q): %v",
		e.FilePath, e.Line, e.Column, e.Token, e.Underlying)
}

func (e *ParseError) Unwrap() error { return e.Underlying }

// PipelineError represents a failure processing a change event through the
// monitoring pipeline (internal/pipeline). Recoverable distinguishes a
// transient failure (the file will be retried on the next event) from a
// permanent one (e.g. the file was deleted before it could be read).
type PipelineError struct {
	Type        ErrorType
	FilePath    string
	Stage       string
	Underlying  error
	Timestamp   time.Time
	Recoverable bool
}

// NewPipelineError creates a new pipeline error.
func NewPipelineError(stage, path string, err error) *PipelineError {
	return &PipelineError{
		Type:       ErrorTypePipeline,
		FilePath:   path,
		Stage:      stage,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// WithRecoverable marks the error as recoverable.
func (e *PipelineError) WithRecoverable(recoverable bool) *PipelineError {
	e.Recoverable = recoverable
	return e
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("pipeline %s failed for %s: %v", e.Stage, e.FilePath, e.Underlying)
}

func (e *PipelineError) Unwrap() error { return e.Underlying }

// ConfigError represents a configuration load or validation error
// (internal/config).
type ConfigError struct {
	Field      string
	Value      string
	Underlying error
	Timestamp  time.Time
}

// NewConfigError creates a new config error.
func NewConfigError(field, value string, err error) *ConfigError {
	return &ConfigError{
		Field:      field,
		Value:      value,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

func (e *ConfigError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("config error for field %s: %v", e.Field, e.Underlying)
	}
	return fmt.Sprintf("config error for field %s (value %s): %v", e.Field, e.Value, e.Underlying)
}

func (e *ConfigError) Unwrap() error { return e.Underlying }

// MultiError aggregates multiple errors, e.g. every file that failed during
// a bulk index run.
type MultiError struct {
	Errors []error
}

// NewMultiError creates a new multi-error, dropping any nil entries.
func NewMultiError(errs []error) *MultiError {
	filtered := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	return &MultiError{Errors: filtered}
}

func (e *MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors: %v", len(e.Errors), e.Errors)
}

func (e *MultiError) Unwrap() []error { return e.Errors }
