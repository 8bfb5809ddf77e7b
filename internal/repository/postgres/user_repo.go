package postgres

import (
	"context"
	"database/sql"
	"time"

	"valentine/internal/domain"
)

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) domain.UserRepository {
	return &userRepository{DB: db}
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	query := `
		INSERT INTO users (email, name, google_id, avatar_url, is_active, last_login, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		u.Email, u.Name, u.GoogleID, u.AvatarURL, u.IsActive, u.LastLogin, u.CreatedAt, u.UpdatedAt,
	).Scan(&u.ID)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
		SELECT id, email, name, google_id, avatar_url, is_active, last_login, created_at, updated_at
		FROM users
		WHERE email = $1
	`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, email))
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `
		SELECT id, email, name, google_id, avatar_url, is_active, last_login, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, id))
}

func (r *userRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	query := `
		UPDATE users
		SET last_login = $1, updated_at = $1
		WHERE id = $2
	`
	res, err := r.DB.ExecContext(ctx, query, at, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) scanOne(row *sql.Row) (*domain.User, error) {
	u := &domain.User{}
	var lastLogin sql.NullTime
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.GoogleID, &u.AvatarURL, &u.IsActive, &lastLogin, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if lastLogin.Valid {
		u.LastLogin = &lastLogin.Time
	}
	return u, nil
}
