package config

import (
	"testing"
)

func TestValidateAndSetDefaults(t *testing.T) {
	cfg := &Config{
		ProjectRoot: "/test/root",
	}

	validator := NewValidator()
	if err := validator.ValidateAndSetDefaults(cfg); err != nil {
		t.Fatalf("ValidateAndSetDefaults failed: %v", err)
	}

	if cfg.MaxFileSizeBytes == 0 {
		t.Errorf("MaxFileSizeBytes should have been set to the default")
	}
	if cfg.DebounceDurationMs == 0 {
		t.Errorf("DebounceDurationMs should have been set to the default")
	}
	if cfg.BatchSize == 0 {
		t.Errorf("BatchSize should have been set to the default")
	}
	if cfg.ProcessingTimeoutMs == 0 {
		t.Errorf("ProcessingTimeoutMs should have been set to the default")
	}
}

func TestValidate_EmptyProjectRoot(t *testing.T) {
	validator := NewValidator()
	err := validator.validate(&Config{})
	if err == nil {
		t.Errorf("Expected error for empty project root")
	}
}

func TestValidate_NegativeFields(t *testing.T) {
	validator := NewValidator()

	cases := []Config{
		{ProjectRoot: "/root", MaxFileSizeBytes: -1},
		{ProjectRoot: "/root", DebounceDurationMs: -1},
		{ProjectRoot: "/root", BatchSize: -1},
		{ProjectRoot: "/root", ProcessingTimeoutMs: -1},
	}
	for _, cfg := range cases {
		if err := validator.validate(&cfg); err == nil {
			t.Errorf("Expected error for config %+v", cfg)
		}
	}
}

func TestValidateConfig(t *testing.T) {
	cfg := &Config{ProjectRoot: "/test/root"}
	if err := ValidateConfig(cfg); err != nil {
		t.Fatalf("ValidateConfig failed: %v", err)
	}

	invalidCfg := &Config{ProjectRoot: ""}
	if err := ValidateConfig(invalidCfg); err == nil {
		t.Errorf("Expected error for invalid config")
	}
}

func TestSetSmartDefaults(t *testing.T) {
	cfg := &Config{ProjectRoot: "/test/root"}

	validator := NewValidator()
	validator.setSmartDefaults(cfg)

	if cfg.MaxFileSizeBytes == 0 {
		t.Errorf("MaxFileSizeBytes should have been set")
	}
	if cfg.BatchSize == 0 {
		t.Errorf("BatchSize should have been set")
	}
}

func TestParallelWorkers(t *testing.T) {
	if w := ParallelWorkers(); w < 1 {
		t.Errorf("ParallelWorkers should be at least 1, got %d", w)
	}
}

func BenchmarkValidateAndSetDefaults(b *testing.B) {
	validator := NewValidator()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		testCfg := Config{ProjectRoot: "/test/root"}
		_ = validator.ValidateAndSetDefaults(&testCfg)
	}
}
