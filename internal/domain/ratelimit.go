package domain

import (
	"context"
	"fmt"
	"time"
)

// ActionMessageCreate is the only rate-limited action kind.
const ActionMessageCreate = "message_create"

// RateLimitCounter is a per-user, per-day bucket. At most one active counter
// exists per (user email, window start) pair.
type RateLimitCounter struct {
	ID          string
	UserEmail   string
	Action      string
	Count       int
	WindowStart time.Time
}

// RateLimitResult is the outcome of a rate-limit check.
type RateLimitResult struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// RateLimitedError is returned by the creation workflow when the caller has
// exhausted the window's quota. ResetAt tells the client when to retry.
type RateLimitedError struct {
	ResetAt time.Time
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limit exceeded, resets at %s", e.ResetAt.Format(time.RFC3339))
}

// RateLimitRepository defines the interface for counter storage. Counter rows
// are exclusively owned and mutated through this interface.
type RateLimitRepository interface {
	// LatestInWindow returns the most recent counter for (email, action) whose
	// window start is after the given time, or nil when none exists.
	LatestInWindow(ctx context.Context, email, action string, since time.Time) (*RateLimitCounter, error)
	// Increment upserts the counter keyed by (email, action, windowStart),
	// adding one atomically.
	Increment(ctx context.Context, email, action string, windowStart time.Time) error
	// PurgeOlderThan deletes counters with a window start before the cutoff.
	PurgeOlderThan(ctx context.Context, cutoff time.Time) error
}

// RateLimiter enforces the per-identity creation cap. Check fails open when
// the counter store is unreachable, so it never returns an error; Increment
// swallows storage errors because the creation it follows already succeeded.
type RateLimiter interface {
	Check(ctx context.Context, email string) *RateLimitResult
	Increment(ctx context.Context, email string)
}
