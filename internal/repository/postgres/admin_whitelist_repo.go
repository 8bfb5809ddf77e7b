package postgres

import (
	"context"
	"database/sql"

	"valentine/internal/domain"
)

type adminWhitelistRepository struct {
	DB *sql.DB
}

// NewAdminWhitelistRepository returns read access to the database-backed
// admin allow-list.
func NewAdminWhitelistRepository(db *sql.DB) domain.AdminWhitelistRepository {
	return &adminWhitelistRepository{DB: db}
}

func (r *adminWhitelistRepository) IsWhitelisted(ctx context.Context, email string) (bool, error) {
	var id string
	query := `
		SELECT id FROM admin_whitelist
		WHERE email = $1 AND is_active = TRUE
		LIMIT 1
	`
	err := r.DB.QueryRowContext(ctx, query, email).Scan(&id)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
