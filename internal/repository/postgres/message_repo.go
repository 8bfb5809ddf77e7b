package postgres

import (
	"context"
	"database/sql"
	"time"

	"valentine/internal/domain"
)

type messageRepository struct {
	DB *sql.DB
}

func NewMessageRepository(db *sql.DB) domain.MessageRepository {
	return &messageRepository{DB: db}
}

const messageColumns = `id, recipient_name, sender_email, COALESCE(sender_name, ''), user_id, COALESCE(ip_address, ''), clicked, clicked_at, created_at`

func (r *messageRepository) Create(ctx context.Context, m *domain.Message) error {
	query := `
		INSERT INTO messages (recipient_name, sender_email, sender_name, user_id, ip_address, created_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, NULLIF($5, ''), $6)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		m.RecipientName, m.SenderEmail, m.SenderName, m.UserID, m.IPAddress, m.CreatedAt,
	).Scan(&m.ID)
}

func (r *messageRepository) GetByID(ctx context.Context, id string) (*domain.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE id = $1`
	m, err := scanMessage(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrMessageNotFound
		}
		return nil, err
	}
	return m, nil
}

func (r *messageRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMessages(rows)
}

func (r *messageRepository) ListAll(ctx context.Context) ([]*domain.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages ORDER BY created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMessages(rows)
}

// MarkClicked transitions clicked false->true. The clicked = FALSE guard makes
// repeat acceptances report no transition instead of double-stamping.
func (r *messageRepository) MarkClicked(ctx context.Context, id string, at time.Time) (bool, error) {
	query := `
		UPDATE messages
		SET clicked = TRUE, clicked_at = $1
		WHERE id = $2 AND clicked = FALSE
	`
	res, err := r.DB.ExecContext(ctx, query, at, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *messageRepository) CreateClick(ctx context.Context, c *domain.Click) error {
	query := `
		INSERT INTO clicks (message_id, recipient_name, sender_email, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		c.MessageID, c.RecipientName, c.SenderEmail, c.CreatedAt,
	).Scan(&c.ID)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMessage(row rowScanner) (*domain.Message, error) {
	m := &domain.Message{}
	var clickedAt sql.NullTime
	err := row.Scan(&m.ID, &m.RecipientName, &m.SenderEmail, &m.SenderName, &m.UserID, &m.IPAddress, &m.Clicked, &clickedAt, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	if clickedAt.Valid {
		m.ClickedAt = &clickedAt.Time
	}
	return m, nil
}

func collectMessages(rows *sql.Rows) ([]*domain.Message, error) {
	var out []*domain.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
