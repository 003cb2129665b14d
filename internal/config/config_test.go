package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.toml")

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Error("exists = true, want false")
	}
	if resolved != path {
		t.Errorf("resolved = %q, want %q", resolved, path)
	}
	if cfg.Matching.InternalThreshold != defaultInternalThreshold {
		t.Errorf("InternalThreshold = %d, want %d", cfg.Matching.InternalThreshold, defaultInternalThreshold)
	}
}

func TestLoadAppliesOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stitch.toml")
	body := `
[matching]
internal_threshold = 75
verify_threshold = 90

[classifier]
blacklist = ["UNKNOWN", " pending "]
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Fatal("exists = false, want true")
	}
	if cfg.Matching.InternalThreshold != 75 {
		t.Errorf("InternalThreshold = %d, want 75", cfg.Matching.InternalThreshold)
	}
	if cfg.Matching.VerifyThreshold != 90 {
		t.Errorf("VerifyThreshold = %d, want 90", cfg.Matching.VerifyThreshold)
	}
	want := []string{"UNKNOWN", "pending"}
	if len(cfg.Classifier.Blacklist) != len(want) {
		t.Fatalf("Blacklist = %v, want %v", cfg.Classifier.Blacklist, want)
	}
	for i, keyword := range want {
		if cfg.Classifier.Blacklist[i] != keyword {
			t.Errorf("Blacklist[%d] = %q, want %q", i, cfg.Classifier.Blacklist[i], keyword)
		}
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"threshold above 100", func(c *Config) { c.Matching.InternalThreshold = 101 }},
		{"verify below internal", func(c *Config) { c.Matching.VerifyThreshold = 70 }},
		{"zero shared token floor", func(c *Config) { c.Matching.SharedTokenFloor = 0 }},
		{"zero grouping passes", func(c *Config) { c.Matching.MaxGroupingPasses = 0 }},
		{"inverted digit bounds", func(c *Config) { c.Classifier.MaxTemporaryDigits = c.Classifier.MinTemporaryDigits - 1 }},
		{"zero verify concurrency", func(c *Config) { c.Engine.VerifyConcurrency = 0 }},
		{"unknown log format", func(c *Config) { c.Logging.Format = "xml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			if err := cfg.normalize(); err != nil {
				t.Fatalf("normalize: %v", err)
			}
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}

func TestWriteSampleRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := WriteSample(path); err != nil {
		t.Fatalf("WriteSample: %v", err)
	}
	if err := WriteSample(path); err == nil {
		t.Error("WriteSample on existing file = nil, want error")
	}
}

func TestEnvOverridesRelocatePaths(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "data")
	logDir := filepath.Join(t.TempDir(), "logs")
	t.Setenv("STITCH_DATA_DIR", dataDir)
	t.Setenv("STITCH_LOG_DIR", logDir)

	cfg, _, _, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Paths.DataDir != dataDir {
		t.Errorf("DataDir = %q, want %q", cfg.Paths.DataDir, dataDir)
	}
	if cfg.Paths.LogDir != logDir {
		t.Errorf("LogDir = %q, want %q", cfg.Paths.LogDir, logDir)
	}
}
