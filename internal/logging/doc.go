// Package logging constructs the application's slog loggers and exposes the
// attribute helpers components use, so call sites never import log/slog
// construction details directly.
package logging
