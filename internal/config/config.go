package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	// DataDir holds the result database and the run lock file.
	DataDir string `toml:"data_dir"`
	// LogDir receives the run log when log file output is enabled.
	LogDir string `toml:"log_dir"`
}

// Matching contains the fuzzy-match tuning shared by the consolidation and
// verification phases.
type Matching struct {
	// InternalThreshold is the minimum score for merging during
	// consolidation. Default: 80
	InternalThreshold int `toml:"internal_threshold"`
	// VerifyThreshold is the minimum score for confirming identity against
	// the registry. Higher than the internal one because a wrong external
	// confirmation costs more than a missed merge. Default: 85
	VerifyThreshold int `toml:"verify_threshold"`
	// SharedTokenFloor is the minimum distinct tokens two names must share
	// before any score is accepted. Default: 2
	SharedTokenFloor int `toml:"shared_token_floor"`
	// AmbiguityBand widens reporting: scores within this many points below
	// the threshold are surfaced for manual review. Default: 5
	AmbiguityBand int `toml:"ambiguity_band"`
	// MaxGroupingPasses caps the fixed-point grouping iteration. Default: 10
	MaxGroupingPasses int `toml:"max_grouping_passes"`
}

// Classifier contains the secondary-identifier classification rules.
type Classifier struct {
	Blacklist          []string `toml:"blacklist"`
	MinTemporaryDigits int      `toml:"min_temporary_digits"`
	MaxTemporaryDigits int      `toml:"max_temporary_digits"`
}

// Engine contains run-level tuning.
type Engine struct {
	// AggregationWorkers shards raw-row reduction; 0 uses GOMAXPROCS.
	AggregationWorkers int `toml:"aggregation_workers"`
	// VerifyConcurrency bounds parallel registry lookups. Default: 8
	VerifyConcurrency int `toml:"verify_concurrency"`
	// MintStart overrides the first minted identifier; 0 derives it from
	// max(observed)+1.
	MintStart int64 `toml:"mint_start"`
}

// Logging contains log output configuration.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	// ToFile also writes the run log under Paths.LogDir.
	ToFile bool `toml:"to_file"`
}

// Config encapsulates all configuration values for stitch.
//
// Sections by subsystem:
//   - Paths: data and log directories
//   - Matching: fuzzy-match thresholds, shared-token floor, pass cap
//   - Classifier: secondary-identifier pattern rules and blacklist
//   - Engine: worker counts and minted-identifier sequencing
//   - Logging: log level and format
type Config struct {
	Paths      Paths      `toml:"paths"`
	Matching   Matching   `toml:"matching"`
	Classifier Classifier `toml:"classifier"`
	Engine     Engine     `toml:"engine"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/stitch/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The second return is
// the resolved path; the third reports whether a file existed there.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(&cfg)

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// applyEnvOverrides lets deployment scripts relocate the data and log
// directories without editing the config file.
func applyEnvOverrides(cfg *Config) {
	if dir := strings.TrimSpace(os.Getenv("STITCH_DATA_DIR")); dir != "" {
		cfg.Paths.DataDir = dir
	}
	if dir := strings.TrimSpace(os.Getenv("STITCH_LOG_DIR")); dir != "" {
		cfg.Paths.LogDir = dir
	}
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("stitch.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories a run needs.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// DatabasePath returns the location of the result database.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.DataDir, "stitch.db")
}

// LockPath returns the location of the single-run lock file.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.DataDir, "stitch.lock")
}

// WriteSample writes the annotated sample configuration to path, refusing to
// overwrite an existing file.
func WriteSample(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	pathValue = strings.TrimSpace(pathValue)
	if pathValue == "" {
		return "", nil
	}
	if pathValue == "~" || strings.HasPrefix(pathValue, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			return home, nil
		}
		pathValue = filepath.Join(home, pathValue[2:])
	}
	abs, err := filepath.Abs(pathValue)
	if err != nil {
		return "", fmt.Errorf("resolve path %q: %w", pathValue, err)
	}
	return abs, nil
}
