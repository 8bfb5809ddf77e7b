package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// ClickNotificationData holds data for the "someone said yes" email sent to
// the original sender when a recipient accepts.
type ClickNotificationData struct {
	SenderEmail   string
	SenderName    string
	RecipientName string
	ClickedAt     string
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendClickNotification(ctx context.Context, data *ClickNotificationData) error
}

// EmailValidationResult is the uniform outcome of validating a candidate
// sender address. Reason is user-facing and distinguishes the failing step.
type EmailValidationResult struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"error,omitempty"`
}

// EmailValidator runs the syntactic, disposable-domain, typo, and
// domain-liveness checks on a candidate address.
type EmailValidator interface {
	Validate(ctx context.Context, email string) EmailValidationResult
}
