package postgres

import (
	"context"
	"database/sql"
	"time"

	"valentine/internal/domain"
)

type rateLimitRepository struct {
	DB *sql.DB
}

// NewRateLimitRepository returns a domain.RateLimitRepository implemented with Postgres.
func NewRateLimitRepository(db *sql.DB) domain.RateLimitRepository {
	return &rateLimitRepository{DB: db}
}

func (r *rateLimitRepository) LatestInWindow(ctx context.Context, email, action string, since time.Time) (*domain.RateLimitCounter, error) {
	query := `
		SELECT id, user_email, action, count, window_start
		FROM rate_limits
		WHERE user_email = $1 AND action = $2 AND window_start >= $3
		ORDER BY window_start DESC
		LIMIT 1
	`
	c := &domain.RateLimitCounter{}
	err := r.DB.QueryRowContext(ctx, query, email, action, since).
		Scan(&c.ID, &c.UserEmail, &c.Action, &c.Count, &c.WindowStart)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

// Increment is an atomic create-or-add-one upsert, so concurrent increments
// for the same bucket never lose updates.
func (r *rateLimitRepository) Increment(ctx context.Context, email, action string, windowStart time.Time) error {
	query := `
		INSERT INTO rate_limits (user_email, action, count, window_start)
		VALUES ($1, $2, 1, $3)
		ON CONFLICT (user_email, action, window_start)
		DO UPDATE SET count = rate_limits.count + 1
	`
	_, err := r.DB.ExecContext(ctx, query, email, action, windowStart)
	return err
}

func (r *rateLimitRepository) PurgeOlderThan(ctx context.Context, cutoff time.Time) error {
	query := `DELETE FROM rate_limits WHERE window_start < $1`
	_, err := r.DB.ExecContext(ctx, query, cutoff)
	return err
}
