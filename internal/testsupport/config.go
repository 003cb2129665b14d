package testsupport

import (
	"path/filepath"
	"testing"

	"stitch/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	return &cfg
}

// WithInternalThreshold overrides the consolidation match threshold.
func WithInternalThreshold(threshold int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Matching.InternalThreshold = threshold
	}
}

// WithMintStart overrides the first minted identifier.
func WithMintStart(start int64) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Engine.MintStart = start
	}
}
