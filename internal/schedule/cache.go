package schedule

import (
	"context"
	"log/slog"
	"sync"

	"epgdoctor/internal/logging"
)

// Fetcher loads program rows for one guide identity from an upstream source.
type Fetcher interface {
	FetchPrograms(ctx context.Context, epgID int64, window Window) ([]Program, error)
}

// CachingValidator answers program-existence probes from a local Store,
// falling back to an upstream Fetcher. A cached overlap is trusted as-is; a
// miss is fetched and persisted before the identity is declared empty, so
// repeated probes of the same identity cost one upstream call.
type CachingValidator struct {
	fetcher Fetcher
	store   *Store
	logger  *slog.Logger

	mu      sync.Mutex
	fetched map[int64]struct{}
}

var _ Validator = (*CachingValidator)(nil)

// CacheOption customizes a CachingValidator.
type CacheOption func(*CachingValidator)

// WithCacheLogger sets the logger used for cache diagnostics.
func WithCacheLogger(logger *slog.Logger) CacheOption {
	return func(v *CachingValidator) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// NewCachingValidator wraps fetcher with the program cache at store.
func NewCachingValidator(fetcher Fetcher, store *Store, opts ...CacheOption) *CachingValidator {
	v := &CachingValidator{
		fetcher: fetcher,
		store:   store,
		logger:  logging.NewNop(),
		fetched: make(map[int64]struct{}),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// HasPrograms implements Validator. A fetch error is returned unchanged so
// callers keep the upstream error classification.
func (v *CachingValidator) HasPrograms(ctx context.Context, epgID int64, window Window) (bool, error) {
	hit, err := v.store.HasPrograms(ctx, epgID, window)
	if err != nil {
		v.logger.Warn("program cache read failed, probing upstream",
			logging.Int64("epg_id", epgID), logging.Error(err))
	} else if hit {
		return true, nil
	} else if v.alreadyFetched(epgID) {
		return false, nil
	}

	programs, err := v.fetcher.FetchPrograms(ctx, epgID, window)
	if err != nil {
		return false, err
	}
	v.markFetched(epgID)
	if persistErr := v.store.ReplacePrograms(ctx, epgID, programs); persistErr != nil {
		v.logger.Warn("program cache write failed",
			logging.Int64("epg_id", epgID), logging.Error(persistErr))
	}
	return len(programs) > 0, nil
}

func (v *CachingValidator) alreadyFetched(epgID int64) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	_, ok := v.fetched[epgID]
	return ok
}

func (v *CachingValidator) markFetched(epgID int64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.fetched[epgID] = struct{}{}
}
