package services

import (
	"context"
	"log/slog"
	"time"

	"valentine/internal/domain"
)

const purgeAfterDays = 7

type rateLimiter struct {
	repo   domain.RateLimitRepository
	max    int
	window time.Duration
	logger *slog.Logger
	now    func() time.Time
}

// NewRateLimiter returns a RateLimiter allowing max creations per rolling
// window, backed by persistent per-day counters.
func NewRateLimiter(repo domain.RateLimitRepository, max int, window time.Duration, logger *slog.Logger) domain.RateLimiter {
	return &rateLimiter{
		repo:   repo,
		max:    max,
		window: window,
		logger: logger,
		now:    time.Now,
	}
}

// Check looks up the most recent counter whose window start falls inside the
// rolling window. When the counter store is unreachable it fails open: a
// storage outage must not block legitimate use.
func (l *rateLimiter) Check(ctx context.Context, email string) *domain.RateLimitResult {
	now := l.now()
	openResult := &domain.RateLimitResult{
		Allowed:   true,
		Remaining: l.max,
		ResetAt:   now.Add(l.window),
	}

	counter, err := l.repo.LatestInWindow(ctx, email, domain.ActionMessageCreate, now.Add(-l.window))
	if err != nil {
		l.logger.ErrorContext(ctx, "rate limit check failed, failing open", "email", email, "err", err)
		return openResult
	}
	if counter == nil {
		return openResult
	}

	remaining := l.max - counter.Count
	if remaining < 0 {
		remaining = 0
	}
	return &domain.RateLimitResult{
		Allowed:   counter.Count < l.max,
		Remaining: remaining,
		ResetAt:   counter.WindowStart.Add(l.window),
	}
}

// Increment upserts the counter for today's bucket and opportunistically
// purges buckets older than seven days. Both are best-effort: the creation
// this follows already succeeded and must not be retroactively failed.
func (l *rateLimiter) Increment(ctx context.Context, email string) {
	now := l.now()
	windowStart := startOfDay(now)
	if err := l.repo.Increment(ctx, email, domain.ActionMessageCreate, windowStart); err != nil {
		l.logger.ErrorContext(ctx, "failed to increment rate limit counter", "email", email, "err", err)
		return
	}
	cutoff := now.AddDate(0, 0, -purgeAfterDays)
	if err := l.repo.PurgeOlderThan(ctx, cutoff); err != nil {
		l.logger.WarnContext(ctx, "failed to purge old rate limit counters", "err", err)
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
