package config

import (
	"fmt"

	"epgdoctor/internal/services"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateMatching(); err != nil {
		return err
	}
	if err := c.validateScan(); err != nil {
		return err
	}
	if err := c.validateDispatcharr(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateMatching() error {
	if c.Matching.FuzzyThreshold < 0 || c.Matching.FuzzyThreshold > 100 {
		return rejected("matching.fuzzy_threshold must be between 0 and 100")
	}
	if c.Matching.ApplyConfidenceThreshold < 0 || c.Matching.ApplyConfidenceThreshold > 100 {
		return rejected("matching.apply_confidence_threshold must be between 0 and 100")
	}
	return nil
}

func (c *Config) validateScan() error {
	if err := ensurePositiveMap(map[string]int{
		"scan.check_hours":            c.Scan.CheckHours,
		"scan.workers":                c.Scan.Workers,
		"scan.validation_prefetch":    c.Scan.ValidationPrefetch,
		"dispatcharr.timeout_seconds": c.Dispatcharr.TimeoutSeconds,
	}); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateDispatcharr() error {
	// URL may be empty for purely local runs; remote commands check it at
	// client construction.
	if c.Dispatcharr.URL != "" && c.Dispatcharr.APIToken == "" {
		return rejected("dispatcharr.api_token must be set when dispatcharr.url is configured (or set DISPATCHARR_API_TOKEN)")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return rejected(fmt.Sprintf("%s must be positive", key))
		}
	}
	return nil
}

func rejected(message string) error {
	return services.Wrap(services.ErrConfiguration, "config", "validate", message, nil)
}
