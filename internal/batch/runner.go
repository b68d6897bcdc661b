// Package batch runs matching and validation over the whole channel lineup:
// scans for channels with no upcoming program data, healing runs that find
// replacements for broken assignments, and bulk match suggestion.
package batch

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"log/slog"

	"epgdoctor/internal/logging"
	"epgdoctor/internal/match"
	"epgdoctor/internal/schedule"
	"epgdoctor/internal/services"
)

// Applier writes accepted assignments back to the channel source.
type Applier interface {
	AssignEPG(ctx context.Context, channelID, epgID int64) error
}

// Runner executes batch operations with a bounded worker pool.
type Runner struct {
	validator      schedule.Validator
	selector       *match.Selector
	applier        Applier
	workers        int
	applyThreshold int
	logger         *slog.Logger
	now            func() time.Time
}

// RunnerOption customizes a Runner.
type RunnerOption func(*Runner)

// WithWorkers bounds how many channels are processed concurrently.
func WithWorkers(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithApplier enables write-back of accepted matches.
func WithApplier(applier Applier) RunnerOption {
	return func(r *Runner) {
		r.applier = applier
	}
}

// WithApplyThreshold sets the minimum confidence (0-100) a match needs
// before it is written back.
func WithApplyThreshold(n int) RunnerOption {
	return func(r *Runner) {
		if n >= 0 && n <= 100 {
			r.applyThreshold = n
		}
	}
}

// WithRunnerLogger attaches a logger for per-channel diagnostics.
func WithRunnerLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRunner builds a runner over the given validator and selector.
func NewRunner(validator schedule.Validator, selector *match.Selector, opts ...RunnerOption) *Runner {
	r := &Runner{
		validator:      validator,
		selector:       selector,
		workers:        4,
		applyThreshold: 70,
		logger:         logging.NewNop(),
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Scan checks every channel's assigned identity for program data inside the
// window. A lookup failure degrades to an inconclusive outcome for that
// channel; the run itself continues. Scanning an empty lineup is an error
// because it almost always means the group filter or connection settings are
// wrong.
func (r *Runner) Scan(ctx context.Context, channels []Channel, window schedule.Window, groups []string) (Result, error) {
	if len(channels) == 0 {
		return Result{}, services.Wrap(services.ErrValidation, "batch", "scan",
			"no channels to scan, check channel_groups and connection settings", nil)
	}

	result := r.newResult("scan", window, groups, len(channels))
	r.forEach(ctx, channels, func(ctx context.Context, i int, channel Channel) {
		result.Outcomes[i] = r.scanOne(ctx, channel, window)
	})
	result.FinishedAt = r.now()

	counts := result.Counts()
	r.logger.Info("scan finished",
		logging.String("run_id", result.RunID.String()),
		logging.Int("total", counts.Total),
		logging.Int("ok", counts.OK),
		logging.Int("missing", counts.Missing),
		logging.Int("inconclusive", counts.Inconclusive))
	return result, ctx.Err()
}

func (r *Runner) scanOne(ctx context.Context, channel Channel, window schedule.Window) Outcome {
	outcome := Outcome{Channel: channel}
	if channel.EPGDataID == 0 {
		outcome.Status = StatusMissing
		outcome.Detail = "no guide identity assigned"
		return outcome
	}

	ok, err := r.validator.HasPrograms(ctx, channel.EPGDataID, window)
	switch {
	case err != nil:
		outcome.Status = StatusInconclusive
		outcome.Detail = err.Error()
		r.logger.Warn("schedule lookup failed",
			logging.Int64("channel_id", channel.ID),
			logging.String("channel", channel.Name),
			logging.Error(err))
	case ok:
		outcome.Status = StatusOK
	default:
		outcome.Status = StatusMissing
	}
	return outcome
}

// Heal finds replacement identities for broken channels, excluding each
// channel's current assignment. When apply is true, matches whose score
// clears the apply threshold are written back.
func (r *Runner) Heal(ctx context.Context, channels []Channel, pool []match.Candidate, window schedule.Window, apply bool) (Result, error) {
	if len(channels) == 0 {
		return Result{}, services.Wrap(services.ErrValidation, "batch", "heal", "no broken channels to heal", nil)
	}

	result := r.newResult("heal", window, nil, len(channels))
	r.forEach(ctx, channels, func(ctx context.Context, i int, channel Channel) {
		result.Outcomes[i] = r.suggestOne(ctx, channel, pool, window, channel.EPGDataID, StatusHealed, apply)
	})
	result.FinishedAt = r.now()
	return result, ctx.Err()
}

// MatchAll suggests identities for every channel by display name. Unlike
// Heal it does not exclude current assignments; it answers "what would we
// pick today".
func (r *Runner) MatchAll(ctx context.Context, channels []Channel, pool []match.Candidate, window schedule.Window, apply bool) (Result, error) {
	if len(channels) == 0 {
		return Result{}, services.Wrap(services.ErrValidation, "batch", "match", "no channels to match", nil)
	}

	result := r.newResult("match", window, nil, len(channels))
	r.forEach(ctx, channels, func(ctx context.Context, i int, channel Channel) {
		result.Outcomes[i] = r.suggestOne(ctx, channel, pool, window, 0, StatusMatched, apply)
	})
	result.FinishedAt = r.now()
	return result, ctx.Err()
}

func (r *Runner) suggestOne(ctx context.Context, channel Channel, pool []match.Candidate, window schedule.Window, excludeID int64, found Status, apply bool) Outcome {
	outcome := Outcome{Channel: channel}

	var matched match.MatchResult
	var err error
	if excludeID != 0 {
		matched, err = r.selector.FindReplacement(ctx, channel.Name, pool, window, excludeID)
	} else {
		matched, err = r.selector.FindBestMatch(ctx, channel.Name, pool, window)
	}
	switch {
	case err != nil:
		// Selector errors only come from schedule lookups, so an error means
		// the verdict is unknown, not negative.
		outcome.Status = StatusInconclusive
		outcome.Detail = err.Error()
		return outcome
	case !matched.Matched():
		outcome.Status = StatusNoMatch
		return outcome
	}

	outcome.Status = found
	outcome.Match = &matched
	if apply {
		outcome.Applied, outcome.Detail = r.applyMatch(ctx, channel, matched)
	}
	return outcome
}

func (r *Runner) applyMatch(ctx context.Context, channel Channel, matched match.MatchResult) (bool, string) {
	if r.applier == nil {
		return false, "no applier configured"
	}
	if matched.Score < r.applyThreshold {
		return false, "confidence below apply threshold"
	}
	if err := r.applier.AssignEPG(ctx, channel.ID, matched.Candidate.ID); err != nil {
		r.logger.Warn("apply failed",
			logging.Int64("channel_id", channel.ID),
			logging.Int64("epg_id", matched.Candidate.ID),
			logging.Error(err))
		return false, err.Error()
	}
	r.logger.Info("assignment applied",
		logging.Int64("channel_id", channel.ID),
		logging.String("channel", channel.Name),
		logging.Int64("epg_id", matched.Candidate.ID),
		logging.Int("score", matched.Score))
	return true, ""
}

func (r *Runner) newResult(kind string, window schedule.Window, groups []string, size int) Result {
	return Result{
		RunID:     uuid.New(),
		Kind:      kind,
		StartedAt: r.now(),
		Window:    window,
		Groups:    groups,
		Outcomes:  make([]Outcome, size),
	}
}

// forEach fans channels out to the worker pool and waits. Outcomes are
// written by index so run order never depends on worker scheduling.
func (r *Runner) forEach(ctx context.Context, channels []Channel, fn func(ctx context.Context, i int, channel Channel)) {
	jobs := make(chan int)
	var wg sync.WaitGroup

	workers := r.workers
	if workers > len(channels) {
		workers = len(channels)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				fn(ctx, i, channels[i])
			}
		}()
	}

	for i := range channels {
		if ctx.Err() != nil {
			break
		}
		jobs <- i
	}
	close(jobs)
	wg.Wait()
}
