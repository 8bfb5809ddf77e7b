package domain

import (
	"context"
	"errors"
	"time"
)

// ErrMessageNotFound is returned when a message lookup matches no row.
var ErrMessageNotFound = errors.New("message not found")

// ValidationError carries a user-facing reason for a rejected creation input
// (missing fields or a failed email validation step).
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// Message is one generated greeting. Created exactly once, mutated exactly
// once (the clicked false->true transition), never deleted.
// Invariant: ClickedAt is non-nil if and only if Clicked is true.
// swagger:model Message
type Message struct {
	ID            string     `json:"id"`
	RecipientName string     `json:"recipient_name"`
	SenderEmail   string     `json:"sender_email"`
	SenderName    string     `json:"sender_name,omitempty"`
	UserID        string     `json:"-"`
	IPAddress     string     `json:"-"`
	Clicked       bool       `json:"clicked"`
	ClickedAt     *time.Time `json:"clicked_at"`
	CreatedAt     time.Time  `json:"created_at"`
}

// PublicView strips the sender-private fields for the unauthenticated
// shared-link fetch.
func (m *Message) PublicView() *Message {
	return &Message{
		ID:            m.ID,
		RecipientName: m.RecipientName,
		SenderName:    m.SenderName,
		Clicked:       m.Clicked,
		ClickedAt:     m.ClickedAt,
		CreatedAt:     m.CreatedAt,
	}
}

// Click is an append-only audit record of a recipient accepting a Message.
// Exactly one Click exists per first-time acceptance.
// swagger:model Click
type Click struct {
	ID            string    `json:"id"`
	MessageID     string    `json:"message_id"`
	RecipientName string    `json:"recipient_name"`
	SenderEmail   string    `json:"sender_email"`
	CreatedAt     time.Time `json:"created_at"`
}

// OwnedMessage is a Message decorated for the owner's dashboard listing.
// swagger:model OwnedMessage
type OwnedMessage struct {
	*Message
	ShareableLink string `json:"shareable_link"`
	Status        string `json:"status"` // "clicked" | "waiting"
}

// MessageStats are the aggregate counts for the admin listing.
// swagger:model MessageStats
type MessageStats struct {
	Total          int     `json:"total"`
	TotalClicked   int     `json:"total_clicked"`
	ConversionRate float64 `json:"conversion_rate"`
	UniqueSenders  int     `json:"unique_senders"`
}

// MessageRepository defines the interface for message and click storage.
type MessageRepository interface {
	Create(ctx context.Context, m *Message) error
	GetByID(ctx context.Context, id string) (*Message, error)
	ListByUserID(ctx context.Context, userID string) ([]*Message, error)
	ListAll(ctx context.Context) ([]*Message, error)
	// MarkClicked flips clicked to true and stamps clicked_at. It reports
	// whether a row actually transitioned (false when already clicked).
	MarkClicked(ctx context.Context, id string, at time.Time) (bool, error)
	CreateClick(ctx context.Context, c *Click) error
}

// CreateMessageInput carries the validated creation fields into the workflow.
type CreateMessageInput struct {
	RecipientName string
	SenderEmail   string
	SenderName    string
	CaptchaToken  string
	IPAddress     string
}

// CreateMessageResult is the success output of the creation workflow.
type CreateMessageResult struct {
	MessageID string
	Remaining int
}

// AcceptResult is the output of the acceptance workflow.
type AcceptResult struct {
	AlreadyClicked bool
}

// MessageService orchestrates the message lifecycle: rate-limited creation,
// public fetch, acceptance with notification, and the listings.
type MessageService interface {
	Create(ctx context.Context, userEmail string, in CreateMessageInput) (*CreateMessageResult, error)
	GetByID(ctx context.Context, id string) (*Message, error)
	Accept(ctx context.Context, id string) (*AcceptResult, error)
	ListMine(ctx context.Context, userID string) ([]*OwnedMessage, error)
	ListAll(ctx context.Context) ([]*Message, *MessageStats, error)
}
