package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"valentine/internal/domain"
)

type messageService struct {
	messageRepo  domain.MessageRepository
	userRepo     domain.UserRepository
	validator    domain.EmailValidator
	captcha      domain.CaptchaVerifier
	limiter      domain.RateLimiter
	emailService domain.EmailService
	baseURL      string
	logger       *slog.Logger
	now          func() time.Time
}

// NewMessageService wires the message lifecycle: rate-limited creation with
// its validation pipeline, the public fetch, the idempotent acceptance with
// its notification side effect, and the listings.
func NewMessageService(
	messageRepo domain.MessageRepository,
	userRepo domain.UserRepository,
	validator domain.EmailValidator,
	captcha domain.CaptchaVerifier,
	limiter domain.RateLimiter,
	emailService domain.EmailService,
	baseURL string,
	logger *slog.Logger,
) domain.MessageService {
	return &messageService{
		messageRepo:  messageRepo,
		userRepo:     userRepo,
		validator:    validator,
		captcha:      captcha,
		limiter:      limiter,
		emailService: emailService,
		baseURL:      baseURL,
		logger:       logger,
		now:          time.Now,
	}
}

// Create runs the creation gate sequence in order, short-circuiting on the
// first failure: field presence, email validation, bot check, rate limit,
// user resolution, persist, then the best-effort counter increment.
func (s *messageService) Create(ctx context.Context, userEmail string, in domain.CreateMessageInput) (*domain.CreateMessageResult, error) {
	if in.RecipientName == "" || in.SenderEmail == "" || in.CaptchaToken == "" {
		return nil, &domain.ValidationError{Reason: "Missing required fields"}
	}

	if result := s.validator.Validate(ctx, in.SenderEmail); !result.Valid {
		return nil, &domain.ValidationError{Reason: result.Reason}
	}

	if !s.captcha.Verify(ctx, in.CaptchaToken, in.IPAddress) {
		return nil, domain.ErrCaptchaFailed
	}

	limit := s.limiter.Check(ctx, userEmail)
	if !limit.Allowed {
		return nil, &domain.RateLimitedError{ResetAt: limit.ResetAt}
	}

	user, err := s.userRepo.GetByEmail(ctx, userEmail)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}

	msg := &domain.Message{
		RecipientName: in.RecipientName,
		SenderEmail:   in.SenderEmail,
		SenderName:    in.SenderName,
		UserID:        user.ID,
		IPAddress:     in.IPAddress,
		CreatedAt:     s.now(),
	}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	// The message is committed; the counter update must not fail it.
	s.limiter.Increment(ctx, userEmail)

	return &domain.CreateMessageResult{
		MessageID: msg.ID,
		Remaining: limit.Remaining - 1,
	}, nil
}

func (s *messageService) GetByID(ctx context.Context, id string) (*domain.Message, error) {
	msg, err := s.messageRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrMessageNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get message: %w", err)
	}
	return msg, nil
}

// Accept records a recipient saying yes. Repeat visits are idempotent: once a
// message is clicked no further mutation happens and no second notification
// goes out. Everything after the load is best-effort; a recipient who just
// accepted must never see an error.
func (s *messageService) Accept(ctx context.Context, id string) (*domain.AcceptResult, error) {
	msg, err := s.messageRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrMessageNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get message: %w", err)
	}

	if msg.Clicked {
		return &domain.AcceptResult{AlreadyClicked: true}, nil
	}

	now := s.now()
	if _, err := s.messageRepo.MarkClicked(ctx, id, now); err != nil {
		s.logger.ErrorContext(ctx, "failed to mark message clicked", "message_id", id, "err", err)
	}

	click := &domain.Click{
		MessageID:     id,
		RecipientName: msg.RecipientName,
		SenderEmail:   msg.SenderEmail,
		CreatedAt:     now,
	}
	if err := s.messageRepo.CreateClick(ctx, click); err != nil {
		s.logger.ErrorContext(ctx, "failed to record click", "message_id", id, "err", err)
	}

	if err := s.emailService.SendClickNotification(ctx, &domain.ClickNotificationData{
		SenderEmail:   msg.SenderEmail,
		SenderName:    msg.SenderName,
		RecipientName: msg.RecipientName,
		ClickedAt:     now.Format(time.RFC1123),
	}); err != nil {
		s.logger.ErrorContext(ctx, "failed to send click notification", "message_id", id, "err", err)
	}

	return &domain.AcceptResult{AlreadyClicked: false}, nil
}

func (s *messageService) ListMine(ctx context.Context, userID string) ([]*domain.OwnedMessage, error) {
	messages, err := s.messageRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	out := make([]*domain.OwnedMessage, len(messages))
	for i, m := range messages {
		status := "waiting"
		if m.Clicked {
			status = "clicked"
		}
		out[i] = &domain.OwnedMessage{
			Message:       m,
			ShareableLink: fmt.Sprintf("%s/valentine?id=%s", s.baseURL, m.ID),
			Status:        status,
		}
	}
	return out, nil
}

func (s *messageService) ListAll(ctx context.Context) ([]*domain.Message, *domain.MessageStats, error) {
	messages, err := s.messageRepo.ListAll(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list messages: %w", err)
	}

	stats := &domain.MessageStats{Total: len(messages)}
	senders := make(map[string]struct{})
	for _, m := range messages {
		if m.Clicked {
			stats.TotalClicked++
		}
		senders[m.SenderEmail] = struct{}{}
	}
	stats.UniqueSenders = len(senders)
	if stats.Total > 0 {
		stats.ConversionRate = float64(stats.TotalClicked) / float64(stats.Total)
	}
	return messages, stats, nil
}
