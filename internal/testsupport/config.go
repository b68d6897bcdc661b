// Package testsupport provides helpers shared by package tests: config
// builders seeded with temp directories and pre-populated program stores.
package testsupport

import (
	"path/filepath"
	"testing"

	"epgdoctor/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t   testing.TB
	cfg *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")

	builder := &configBuilder{t: t, cfg: &cfgVal}
	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return builder.cfg
}

// WithSourcePriority sets the EPG source preference order on the test config.
func WithSourcePriority(sources ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Matching.SourcePriority = sources
	}
}

// WithChannelGroups restricts scans on the test config to the given groups.
func WithChannelGroups(groups ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Scan.ChannelGroups = groups
	}
}

// WithDispatcharr points the test config at a Dispatcharr instance, usually
// an httptest server.
func WithDispatcharr(url, token string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Dispatcharr.URL = url
		b.cfg.Dispatcharr.APIToken = token
	}
}
