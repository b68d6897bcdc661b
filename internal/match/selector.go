package match

import (
	"context"
	"fmt"

	"log/slog"

	"epgdoctor/internal/identity"
	"epgdoctor/internal/logging"
	"epgdoctor/internal/schedule"
)

// Selector orchestrates scoring and rank-ordered validation to pick the best
// working candidate for a channel.
type Selector struct {
	prioritizer *Prioritizer
	scorer      *Scorer
	validator   schedule.Validator
	prefetch    int
	logger      *slog.Logger
}

// SelectorOption customizes a Selector.
type SelectorOption func(*Selector)

// WithPrefetch allows up to n candidate validations in flight at once. The
// returned result is still the highest-ranked candidate that validates;
// prefetching only hides lookup latency.
func WithPrefetch(n int) SelectorOption {
	return func(s *Selector) {
		if n > 0 {
			s.prefetch = n
		}
	}
}

// WithLogger attaches a logger for scoring diagnostics.
func WithLogger(logger *slog.Logger) SelectorOption {
	return func(s *Selector) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithScorerOptions forwards options to the underlying scorer.
func WithScorerOptions(opts ...ScorerOption) SelectorOption {
	return func(s *Selector) {
		for _, opt := range opts {
			opt(s.scorer)
		}
	}
}

// NewSelector validates cfg and builds a selector backed by the given
// schedule validator.
func NewSelector(cfg Config, validator schedule.Validator, opts ...SelectorOption) (*Selector, error) {
	scorer, err := NewScorer(cfg)
	if err != nil {
		return nil, err
	}
	s := &Selector{
		prioritizer: NewPrioritizer(cfg.SourcePriority),
		scorer:      scorer,
		validator:   validator,
		prefetch:    1,
		logger:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// FindBestMatch scores the pool against the channel's display name and
// validates candidates in descending-score order, returning the first one
// with program data inside the window. A clean "nothing validates" outcome is
// an empty result with a nil error; an error means a schedule lookup could
// not complete and the run is inconclusive.
func (s *Selector) FindBestMatch(ctx context.Context, channelName string, pool []Candidate, window schedule.Window) (MatchResult, error) {
	return s.findMatch(ctx, channelName, pool, window, 0)
}

// FindReplacement is the healing variant: it searches for a working candidate
// while excluding the identity already known to be broken, so the search can
// never re-select it.
func (s *Selector) FindReplacement(ctx context.Context, channelName string, pool []Candidate, window schedule.Window, brokenID int64) (MatchResult, error) {
	return s.findMatch(ctx, channelName, pool, window, brokenID)
}

func (s *Selector) findMatch(ctx context.Context, channelName string, pool []Candidate, window schedule.Window, excludeID int64) (MatchResult, error) {
	if excludeID != 0 {
		filtered := make([]Candidate, 0, len(pool))
		for _, cand := range pool {
			if cand.ID != excludeID {
				filtered = append(filtered, cand)
			}
		}
		pool = filtered
	}

	channel := identity.Parse(channelName, s.scorer.Flags())
	ranked := s.scorer.Rank(channel, s.prioritizer.Prioritize(pool, s.scorer.Flags()))

	s.logger.Debug("candidates ranked",
		logging.String("channel", channelName),
		logging.String("callsign", channel.Callsign),
		logging.String("state", channel.Location.State),
		logging.String("network", channel.Network),
		logging.Int("pool_size", len(pool)),
		logging.Int("ranked", len(ranked)))

	accepted, err := s.validateRanked(ctx, ranked, window)
	if err != nil {
		return MatchResult{}, err
	}
	if accepted < 0 {
		return MatchResult{}, nil
	}

	winner := ranked[accepted]
	s.logger.Debug("candidate accepted",
		logging.String("channel", channelName),
		logging.Int64("candidate_id", winner.ID),
		logging.String("candidate_name", winner.Name),
		logging.Int("score", winner.Score),
		logging.String("method", MatchResult{Signals: winner.Signals}.Method()))

	candidate := winner.Candidate
	return MatchResult{
		Candidate: &candidate,
		Score:     winner.Score,
		Signals:   winner.Signals,
		Validated: true,
	}, nil
}

type validationOutcome struct {
	ok  bool
	err error
}

// validateRanked returns the index of the highest-ranked candidate with
// program data, or -1 when none validates. With prefetch > 1 several lookups
// run concurrently, but outcomes are consumed in strict rank order and
// outstanding speculative lookups are abandoned once a candidate is accepted.
func (s *Selector) validateRanked(ctx context.Context, ranked []RankedCandidate, window schedule.Window) (int, error) {
	if len(ranked) == 0 {
		return -1, nil
	}

	if s.prefetch <= 1 {
		for i, candidate := range ranked {
			ok, err := s.validator.HasPrograms(ctx, candidate.ID, window)
			if err != nil {
				return -1, fmt.Errorf("validate candidate %d: %w", candidate.ID, err)
			}
			if ok {
				return i, nil
			}
		}
		return -1, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	outcomes := make([]chan validationOutcome, len(ranked))
	launched := 0
	launch := func() {
		if launched >= len(ranked) {
			return
		}
		i := launched
		launched++
		ch := make(chan validationOutcome, 1)
		outcomes[i] = ch
		candidate := ranked[i]
		go func() {
			ok, err := s.validator.HasPrograms(ctx, candidate.ID, window)
			ch <- validationOutcome{ok: ok, err: err}
		}()
	}
	for launched < s.prefetch && launched < len(ranked) {
		launch()
	}

	for i := range ranked {
		outcome := <-outcomes[i]
		if outcome.err != nil {
			return -1, fmt.Errorf("validate candidate %d: %w", ranked[i].ID, outcome.err)
		}
		if outcome.ok {
			return i, nil
		}
		launch()
	}
	return -1, nil
}
