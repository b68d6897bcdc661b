package match

import (
	"fmt"
	"strings"

	"epgdoctor/internal/identity"
	"epgdoctor/internal/services"
)

// Candidate is one guide identity offered by a provider.
type Candidate struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Source string `json:"source"`
}

// RankedCandidate carries a candidate through prioritization and scoring.
type RankedCandidate struct {
	Candidate
	Priority int
	Identity identity.ChannelIdentity
	Score    int
	Signals  []string
}

// MatchResult is the outcome of one matching run. Candidate is nil when no
// validated match was found; it is never non-nil without Validated being
// true.
type MatchResult struct {
	Candidate *Candidate `json:"candidate,omitempty"`
	Score     int        `json:"score"`
	Signals   []string   `json:"signals,omitempty"`
	Validated bool       `json:"validated"`
}

// Matched reports whether a validated candidate was selected.
func (r MatchResult) Matched() bool {
	return r.Candidate != nil
}

// Method returns the contributing signal names joined for display, e.g.
// "Callsign + State". Empty when no match was made.
func (r MatchResult) Method() string {
	return strings.Join(r.Signals, " + ")
}

// Config holds the tunables for one matching run.
type Config struct {
	// Decorations selects which name decorations are stripped before signal
	// extraction.
	Decorations identity.Flags
	// SourcePriority is the ordered list of desired source names. Empty
	// means every source is considered in pool order.
	SourcePriority []string
	// FuzzyThreshold is the minimum name-similarity percentage (0-100) for
	// the fuzzy fallback to produce a score.
	FuzzyThreshold int
}

// DefaultConfig returns the standard matching configuration: all decoration
// stripping enabled, no source filter, fuzzy threshold 85.
func DefaultConfig() Config {
	return Config{
		Decorations:    identity.DefaultFlags(),
		FuzzyThreshold: 85,
	}
}

// Validate rejects invalid tunables eagerly so a bad configuration can never
// surface mid-batch.
func (c Config) Validate() error {
	if c.FuzzyThreshold < 0 || c.FuzzyThreshold > 100 {
		return services.Wrap(services.ErrConfiguration, "match", "config",
			fmt.Sprintf("fuzzy threshold %d outside [0,100]", c.FuzzyThreshold), nil)
	}
	for i, source := range c.SourcePriority {
		if strings.TrimSpace(source) == "" {
			return services.Wrap(services.ErrConfiguration, "match", "config",
				fmt.Sprintf("source priority entry %d is blank", i), nil)
		}
	}
	return nil
}
