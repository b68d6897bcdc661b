package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeMatching()
	c.normalizeScan()
	c.normalizeDispatcharr()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeMatching() {
	c.Matching.SourcePriority = normalizeList(c.Matching.SourcePriority, false)
}

func (c *Config) normalizeScan() {
	c.Scan.ChannelGroups = normalizeList(c.Scan.ChannelGroups, true)
}

func (c *Config) normalizeDispatcharr() {
	c.Dispatcharr.URL = strings.TrimRight(strings.TrimSpace(c.Dispatcharr.URL), "/")
	c.Dispatcharr.APIToken = strings.TrimSpace(c.Dispatcharr.APIToken)
	if c.Dispatcharr.APIToken == "" {
		if value, ok := os.LookupEnv("DISPATCHARR_API_TOKEN"); ok {
			c.Dispatcharr.APIToken = strings.TrimSpace(value)
		}
	}
	if c.Dispatcharr.TimeoutSeconds <= 0 {
		c.Dispatcharr.TimeoutSeconds = defaultDispatcharrTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

// normalizeList trims entries, drops empties and duplicates, and preserves
// order. Deduplication is case-insensitive; source priority keeps the
// configured casing for display while group filters are lowercased outright.
func normalizeList(values []string, lower bool) []string {
	if len(values) == 0 {
		return values
	}
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if _, exists := seen[key]; exists {
			continue
		}
		seen[key] = struct{}{}
		if lower {
			trimmed = key
		}
		out = append(out, trimmed)
	}
	return out
}
