package metadata

import (
	"context"
	"log/slog"

	"golang.org/x/sync/singleflight"
)

const refreshKey = "refresh"

// Refresher runs cache refreshes off the interactive path. Concurrent
// requests share a single refresh.
type Refresher struct {
	cache  *Cache
	source Source
	logger *slog.Logger
	group  singleflight.Group
}

// NewRefresher creates a Refresher. A nil logger discards output.
func NewRefresher(cache *Cache, source Source, logger *slog.Logger) *Refresher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Refresher{cache: cache, source: source, logger: logger}
}

func (r *Refresher) refresh(ctx context.Context) (any, error) {
	return nil, r.cache.Refresh(ctx, r.source)
}

// RefreshNow refreshes the cache and waits for the result. It joins a
// refresh that is already running instead of starting another.
func (r *Refresher) RefreshNow(ctx context.Context) error {
	_, err, _ := r.group.Do(refreshKey, func() (any, error) {
		return r.refresh(ctx)
	})
	return err
}

// Trigger starts a background refresh and returns immediately. The returned
// channel receives the outcome; callers may ignore it. Failures are logged.
func (r *Refresher) Trigger(ctx context.Context) <-chan error {
	done := make(chan error, 1)
	results := r.group.DoChan(refreshKey, func() (any, error) {
		return r.refresh(ctx)
	})
	go func() {
		res := <-results
		if res.Err != nil {
			r.logger.Warn("background metadata refresh failed", slog.String("error", res.Err.Error()))
		}
		done <- res.Err
	}()
	return done
}

// Reload marks the cache stale and triggers a background refresh. Used after
// statements that change the schema.
func (r *Refresher) Reload(ctx context.Context) <-chan error {
	r.cache.Invalidate()
	return r.Trigger(ctx)
}
