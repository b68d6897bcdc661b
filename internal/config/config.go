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

// Matching contains configuration for channel identity extraction and
// candidate scoring.
type Matching struct {
	IgnoreQualityTags        bool     `toml:"ignore_quality_tags"`
	IgnoreRegionalTags       bool     `toml:"ignore_regional_tags"`
	IgnoreGeographicTags     bool     `toml:"ignore_geographic_tags"`
	IgnoreMiscTags           bool     `toml:"ignore_misc_tags"`
	SourcePriority           []string `toml:"source_priority"`
	FuzzyThreshold           int      `toml:"fuzzy_threshold"`
	ApplyConfidenceThreshold int      `toml:"apply_confidence_threshold"`
}

// Scan contains configuration for batch runs over the channel lineup.
type Scan struct {
	CheckHours         int      `toml:"check_hours"`
	Workers            int      `toml:"workers"`
	ValidationPrefetch int      `toml:"validation_prefetch"`
	ChannelGroups      []string `toml:"channel_groups"`
}

// Dispatcharr contains connection settings for the Dispatcharr API.
type Dispatcharr struct {
	URL            string `toml:"url"`
	APIToken       string `toml:"api_token"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Paths contains directory configuration.
type Paths struct {
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values.
//
// Configuration sections by subsystem:
//   - Matching: decoration stripping, source priority, scoring thresholds
//   - Scan: window size, worker pool, validation prefetch, group filter
//   - Dispatcharr: API base URL, token, and request timeout
//   - Paths: data directory (results, exports, program cache) and log directory
//   - Logging: log format and level
type Config struct {
	Matching    Matching    `toml:"matching"`
	Scan        Scan        `toml:"scan"`
	Dispatcharr Dispatcharr `toml:"dispatcharr"`
	Paths       Paths       `toml:"paths"`
	Logging     Logging     `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/epgdoctor/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized.
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

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
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

	projectPath, err := filepath.Abs("epgdoctor.toml")
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

// EnsureDirectories creates the data and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir, c.ExportDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// ResultsPath returns the location of the persisted run results file.
func (c *Config) ResultsPath() string {
	return filepath.Join(c.Paths.DataDir, "results.json")
}

// ProgramCachePath returns the location of the local program-data cache.
func (c *Config) ProgramCachePath() string {
	return filepath.Join(c.Paths.DataDir, "programs.db")
}

// ExportDir returns the directory CSV exports are written to.
func (c *Config) ExportDir() string {
	return filepath.Join(c.Paths.DataDir, "exports")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
