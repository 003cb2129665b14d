package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateMatching(); err != nil {
		return err
	}
	if err := c.validateClassifier(); err != nil {
		return err
	}
	if err := c.validateEngine(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.DataDir == "" {
		return errors.New("paths.data_dir must be set")
	}
	return nil
}

func (c *Config) validateMatching() error {
	if c.Matching.InternalThreshold < 0 || c.Matching.InternalThreshold > 100 {
		return errors.New("matching.internal_threshold must be between 0 and 100")
	}
	if c.Matching.VerifyThreshold < 0 || c.Matching.VerifyThreshold > 100 {
		return errors.New("matching.verify_threshold must be between 0 and 100")
	}
	if c.Matching.VerifyThreshold < c.Matching.InternalThreshold {
		return errors.New("matching.verify_threshold must not be below matching.internal_threshold")
	}
	if c.Matching.SharedTokenFloor < 1 {
		return errors.New("matching.shared_token_floor must be at least 1")
	}
	if c.Matching.AmbiguityBand < 0 {
		return errors.New("matching.ambiguity_band must not be negative")
	}
	if c.Matching.MaxGroupingPasses < 1 {
		return errors.New("matching.max_grouping_passes must be at least 1")
	}
	return nil
}

func (c *Config) validateClassifier() error {
	if c.Classifier.MinTemporaryDigits < 1 {
		return errors.New("classifier.min_temporary_digits must be at least 1")
	}
	if c.Classifier.MaxTemporaryDigits < c.Classifier.MinTemporaryDigits {
		return fmt.Errorf("classifier.max_temporary_digits must be at least %d", c.Classifier.MinTemporaryDigits)
	}
	return nil
}

func (c *Config) validateEngine() error {
	if c.Engine.AggregationWorkers < 0 {
		return errors.New("engine.aggregation_workers must not be negative")
	}
	if c.Engine.VerifyConcurrency < 1 {
		return errors.New("engine.verify_concurrency must be at least 1")
	}
	if c.Engine.MintStart < 0 {
		return errors.New("engine.mint_start must not be negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
		return nil
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
}
