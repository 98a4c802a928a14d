package config

import (
	"fmt"
	"runtime"

	lcierrors "github.com/uastgraph/core/internal/errors"
)

// Validator validates a Config and fills in smart defaults for fields the
// loader left at their zero value.
type Validator struct{}

// NewValidator creates a new configuration validator.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateAndSetDefaults validates cfg and applies smart defaults. Returns
// a *lcierrors.ConfigError on the first invalid field.
func (v *Validator) ValidateAndSetDefaults(cfg *Config) error {
	if err := v.validate(cfg); err != nil {
		return lcierrors.NewConfigError("config", "", err)
	}

	v.setSmartDefaults(cfg)
	return nil
}

func (v *Validator) validate(cfg *Config) error {
	if cfg.ProjectRoot == "" {
		return fmt.Errorf("project_root cannot be empty")
	}
	if cfg.MaxFileSizeBytes < 0 {
		return fmt.Errorf("max_file_size_bytes cannot be negative, got %d", cfg.MaxFileSizeBytes)
	}
	if cfg.DebounceDurationMs < 0 {
		return fmt.Errorf("debounce_duration_ms cannot be negative, got %d", cfg.DebounceDurationMs)
	}
	if cfg.BatchSize < 0 {
		return fmt.Errorf("batch_size cannot be negative, got %d", cfg.BatchSize)
	}
	if cfg.ProcessingTimeoutMs < 0 {
		return fmt.Errorf("processing_timeout_ms cannot be negative, got %d", cfg.ProcessingTimeoutMs)
	}
	if cfg.MaxQueueSize < 0 {
		return fmt.Errorf("max_queue_size cannot be negative, got %d", cfg.MaxQueueSize)
	}
	return nil
}

// setSmartDefaults fills in zero-valued fields the loader didn't set
// explicitly.
func (v *Validator) setSmartDefaults(cfg *Config) {
	if cfg.MaxFileSizeBytes == 0 {
		cfg.MaxFileSizeBytes = DefaultMaxFileSizeBytes
	}
	if cfg.DebounceDurationMs == 0 {
		cfg.DebounceDurationMs = DefaultDebounceDurationMs
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.ProcessingTimeoutMs == 0 {
		cfg.ProcessingTimeoutMs = DefaultProcessingTimeoutMs
	}
	if cfg.MaxQueueSize == 0 {
		cfg.MaxQueueSize = DefaultMaxQueueSize
	}
}

// ParallelWorkers returns the cores-minus-one worker count the bulk
// indexer's worker pool sizes itself to, leaving one core free.
func ParallelWorkers() int {
	return max(1, runtime.NumCPU()-1)
}

// ValidateConfig is a convenience function for quick validation.
func ValidateConfig(cfg *Config) error {
	return NewValidator().ValidateAndSetDefaults(cfg)
}
