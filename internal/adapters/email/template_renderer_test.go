package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"valentine/internal/domain"
)

func TestTemplateRenderer_ClickNotification(t *testing.T) {
	r := NewTemplateRenderer()

	data := &domain.ClickNotificationData{
		SenderEmail:   "a@x.com",
		SenderName:    "Alice",
		RecipientName: "Sam",
		ClickedAt:     "Sat, 14 Feb 2026 18:00:00 UTC",
	}

	subject, htmlBody, textBody, err := r.Render("click_notification", data)
	require.NoError(t, err)

	assert.Contains(t, subject, "Someone said YES")
	assert.Contains(t, htmlBody, "Sam")
	assert.Contains(t, htmlBody, "from Alice")
	assert.Contains(t, htmlBody, "Sat, 14 Feb 2026 18:00:00 UTC")
	assert.Contains(t, textBody, "Sam clicked YES")
	assert.Contains(t, textBody, "from Alice")
}

func TestTemplateRenderer_ClickNotification_NoSenderName(t *testing.T) {
	r := NewTemplateRenderer()

	data := &domain.ClickNotificationData{
		SenderEmail:   "a@x.com",
		RecipientName: "Sam",
		ClickedAt:     "Sat, 14 Feb 2026 18:00:00 UTC",
	}

	_, htmlBody, textBody, err := r.Render("click_notification", data)
	require.NoError(t, err)
	assert.NotContains(t, htmlBody, "from ")
	assert.NotContains(t, textBody, "from ")
}

func TestTemplateRenderer_UnknownTemplate(t *testing.T) {
	r := NewTemplateRenderer()
	_, _, _, err := r.Render("does_not_exist", nil)
	require.Error(t, err)
}
