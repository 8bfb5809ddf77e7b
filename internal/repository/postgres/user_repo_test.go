package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"valentine/internal/domain"
)

func TestUserRepository_UpdateLastLogin(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2026, 2, 14, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		id      string
		mock    func(mock sqlmock.Sqlmock)
		wantErr bool
		errIs   error
	}{
		{
			name: "success",
			id:   "user-uuid-1",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE users`).
					WithArgs(at, "user-uuid-1").
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "not found zero rows affected",
			id:   "nonexistent",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE users`).
					WithArgs(at, "nonexistent").
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			wantErr: true,
			errIs:   domain.ErrUserNotFound,
		},
		{
			name: "db error",
			id:   "user-uuid-1",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE users`).
					WillReturnError(sql.ErrConnDone)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewUserRepository(db)
			err = repo.UpdateLastLogin(ctx, tt.id, at)
			if tt.wantErr {
				require.Error(t, err)
				if tt.errIs != nil {
					require.ErrorIs(t, err, tt.errIs)
				}
			} else {
				require.NoError(t, err)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_GetByEmail(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "email", "name", "google_id", "avatar_url", "is_active", "last_login", "created_at", "updated_at"}).
		AddRow("user-1", "a@x.com", "Alice", "g-123", "", true, now, now, now)
	mock.ExpectQuery(`SELECT (.+) FROM users WHERE email = \$1`).
		WithArgs("a@x.com").
		WillReturnRows(rows)

	repo := NewUserRepository(db)
	u, err := repo.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "user-1", u.ID)
	assert.Equal(t, "Alice", u.Name)
	require.NotNil(t, u.LastLogin)
	assert.Equal(t, now, *u.LastLogin)
	require.NoError(t, mock.ExpectationsWereMet())
}
