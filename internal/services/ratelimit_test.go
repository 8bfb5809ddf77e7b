package services

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"valentine/internal/domain"
)

// fakeRateLimitRepo implements domain.RateLimitRepository for tests.
type fakeRateLimitRepo struct {
	counters   map[string]*domain.RateLimitCounter // keyed by email|windowStart
	latestErr  error
	incErr     error
	purgedUpTo time.Time
	purgeErr   error
}

func newFakeRateLimitRepo() *fakeRateLimitRepo {
	return &fakeRateLimitRepo{counters: make(map[string]*domain.RateLimitCounter)}
}

func (f *fakeRateLimitRepo) key(email string, windowStart time.Time) string {
	return email + "|" + windowStart.Format(time.RFC3339)
}

func (f *fakeRateLimitRepo) LatestInWindow(ctx context.Context, email, action string, since time.Time) (*domain.RateLimitCounter, error) {
	if f.latestErr != nil {
		return nil, f.latestErr
	}
	var latest *domain.RateLimitCounter
	for _, c := range f.counters {
		if c.UserEmail != email || c.Action != action || c.WindowStart.Before(since) {
			continue
		}
		if latest == nil || c.WindowStart.After(latest.WindowStart) {
			latest = c
		}
	}
	return latest, nil
}

func (f *fakeRateLimitRepo) Increment(ctx context.Context, email, action string, windowStart time.Time) error {
	if f.incErr != nil {
		return f.incErr
	}
	k := f.key(email, windowStart)
	if c, ok := f.counters[k]; ok {
		c.Count++
		return nil
	}
	f.counters[k] = &domain.RateLimitCounter{
		UserEmail:   email,
		Action:      action,
		Count:       1,
		WindowStart: windowStart,
	}
	return nil
}

func (f *fakeRateLimitRepo) PurgeOlderThan(ctx context.Context, cutoff time.Time) error {
	if f.purgeErr != nil {
		return f.purgeErr
	}
	f.purgedUpTo = cutoff
	for k, c := range f.counters {
		if c.WindowStart.Before(cutoff) {
			delete(f.counters, k)
		}
	}
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestRateLimiter_Check_NoPriorCreations(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRateLimitRepo()
	limiter := NewRateLimiter(repo, 5, 24*time.Hour, testLogger())

	result := limiter.Check(ctx, "a@x.com")
	assert.True(t, result.Allowed)
	assert.Equal(t, 5, result.Remaining)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), result.ResetAt, 2*time.Second)
}

func TestRateLimiter_CapEnforcedAfterNIncrements(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRateLimitRepo()
	limiter := NewRateLimiter(repo, 5, 24*time.Hour, testLogger())

	for i := 0; i < 5; i++ {
		result := limiter.Check(ctx, "a@x.com")
		require.True(t, result.Allowed, "creation %d should be allowed", i+1)
		assert.Equal(t, 5-i, result.Remaining)
		limiter.Increment(ctx, "a@x.com")
	}

	result := limiter.Check(ctx, "a@x.com")
	assert.False(t, result.Allowed)
	assert.Equal(t, 0, result.Remaining)
}

func TestRateLimiter_ResetAtFromActiveCounter(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRateLimitRepo()
	limiter := NewRateLimiter(repo, 5, 24*time.Hour, testLogger())

	limiter.Increment(ctx, "a@x.com")
	result := limiter.Check(ctx, "a@x.com")

	windowStart := startOfDay(time.Now())
	assert.Equal(t, windowStart.Add(24*time.Hour), result.ResetAt)
}

func TestRateLimiter_Check_FailsOpenOnStoreError(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRateLimitRepo()
	repo.latestErr = sql.ErrConnDone
	limiter := NewRateLimiter(repo, 5, 24*time.Hour, testLogger())

	result := limiter.Check(ctx, "a@x.com")
	assert.True(t, result.Allowed)
	assert.Equal(t, 5, result.Remaining)
}

func TestRateLimiter_Increment_SwallowsStoreError(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRateLimitRepo()
	repo.incErr = sql.ErrConnDone
	limiter := NewRateLimiter(repo, 5, 24*time.Hour, testLogger())

	// Must not panic or surface anything.
	limiter.Increment(ctx, "a@x.com")
	assert.Empty(t, repo.counters)
}

func TestRateLimiter_Increment_PurgesOldCounters(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRateLimitRepo()
	old := startOfDay(time.Now().AddDate(0, 0, -10))
	repo.counters[repo.key("a@x.com", old)] = &domain.RateLimitCounter{
		UserEmail:   "a@x.com",
		Action:      domain.ActionMessageCreate,
		Count:       2,
		WindowStart: old,
	}
	limiter := NewRateLimiter(repo, 5, 24*time.Hour, testLogger())

	limiter.Increment(ctx, "a@x.com")

	assert.Len(t, repo.counters, 1)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, -7), repo.purgedUpTo, 2*time.Second)
}

func TestRateLimiter_SeparateIdentities(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRateLimitRepo()
	limiter := NewRateLimiter(repo, 1, 24*time.Hour, testLogger())

	limiter.Increment(ctx, "a@x.com")
	assert.False(t, limiter.Check(ctx, "a@x.com").Allowed)
	assert.True(t, limiter.Check(ctx, "b@x.com").Allowed)
}
