// Package config loads and validates the TOML configuration file.
//
// Load resolves the config path, decodes the file over repository defaults,
// normalizes the result (path expansion, env fallbacks, trimming), and
// validates it eagerly so misconfiguration surfaces at startup rather than
// mid-run.
package config
