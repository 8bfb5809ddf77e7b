package services

import (
	"context"
	"fmt"
	"log"

	"valentine/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer}
}

// SendClickNotification sends the "someone said yes" email to the message's
// original sender using the "click_notification" template.
func (s *emailService) SendClickNotification(ctx context.Context, data *domain.ClickNotificationData) error {
	if data == nil {
		return fmt.Errorf("click notification data is nil")
	}
	subject, htmlBody, textBody, err := s.renderer.Render("click_notification", data)
	if err != nil {
		return fmt.Errorf("failed to render click_notification template: %w", err)
	}
	if err := s.mailer.Send(data.SenderEmail, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send click notification email: %w", err)
	}
	log.Printf("[EMAIL] Click notification sent to %s", data.SenderEmail)
	return nil
}
