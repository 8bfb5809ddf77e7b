package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"valentine/internal/delivery/http/helpers"
	"valentine/internal/delivery/http/middleware"
	"valentine/internal/domain"
)

// CreateMessageRequest is the request body for POST /messages
type CreateMessageRequest struct {
	RecipientName string `json:"recipient_name"`
	SenderEmail   string `json:"sender_email"`
	SenderName    string `json:"sender_name"` // optional
	CaptchaToken  string `json:"captcha_token"`
}

// Validate implements Validator.
func (c CreateMessageRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.RecipientName) == "" {
		errs = append(errs, "recipient_name is required")
	}
	if strings.TrimSpace(c.SenderEmail) == "" {
		errs = append(errs, "sender_email is required")
	}
	if strings.TrimSpace(c.CaptchaToken) == "" {
		errs = append(errs, "captcha_token is required")
	}
	return errs
}

// CreateMessageResponse is the response body for POST /messages
type CreateMessageResponse struct {
	MessageID string `json:"message_id"`
	Remaining int    `json:"remaining"`
}

// AcceptResponse is the response body for POST /messages/{id}/click
type AcceptResponse struct {
	AlreadyClicked bool `json:"already_clicked"`
}

// CreateMessageSuccessResponse is the success response envelope for POST /messages (201).
type CreateMessageSuccessResponse struct {
	Data  CreateMessageResponse `json:"data"`
	Error *helpers.APIError     `json:"error"`
}

// GetMessageSuccessResponse is the success response envelope for GET /messages/{id} (200).
type GetMessageSuccessResponse struct {
	Data  *domain.Message   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// AcceptSuccessResponse is the success response envelope for POST /messages/{id}/click (200).
type AcceptSuccessResponse struct {
	Data  AcceptResponse    `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ListMineSuccessResponse is the success response envelope for GET /users/me/messages (200).
type ListMineSuccessResponse struct {
	Data  []*domain.OwnedMessage `json:"data"`
	Error *helpers.APIError      `json:"error"`
}

// MessageController handles the message lifecycle endpoints.
type MessageController struct {
	Logger  *slog.Logger
	Service domain.MessageService
}

// NewMessageController creates a MessageController with the given logger and service.
func NewMessageController(logger *slog.Logger, svc domain.MessageService) *MessageController {
	return &MessageController{
		Logger:  logger,
		Service: svc,
	}
}

// Create godoc
// @Summary Create a greeting message
// @Description Create a personalized greeting under the authenticated identity. Validates the sender email (syntax, disposable domains, typos, MX lookup), verifies the bot-check token, and enforces the daily per-user quota.
// @Tags messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateMessageRequest true "Message data"
// @Success 201 {object} controllers.CreateMessageSuccessResponse "data contains message_id and remaining quota"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (validation or captcha failure)"
// @Failure 401 {object} helpers.APIResponse "error.code: auth_required"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 429 {object} helpers.APIResponse "error.code: rate_limited, error.reset_at set"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /messages [post]
func (c *MessageController) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeAuthRequired, "authentication required")
		return
	}
	var req CreateMessageRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	result, err := c.Service.Create(r.Context(), claims.Email, domain.CreateMessageInput{
		RecipientName: strings.TrimSpace(req.RecipientName),
		SenderEmail:   strings.TrimSpace(strings.ToLower(req.SenderEmail)),
		SenderName:    strings.TrimSpace(req.SenderName),
		CaptchaToken:  req.CaptchaToken,
		IPAddress:     helpers.ClientIP(r),
	})
	if err != nil {
		var vErr *domain.ValidationError
		if errors.As(err, &vErr) {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, vErr.Reason)
			return
		}
		if errors.Is(err, domain.ErrCaptchaFailed) {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "Captcha verification failed")
			return
		}
		var rlErr *domain.RateLimitedError
		if errors.As(err, &rlErr) {
			helpers.WriteRateLimited(w, "Daily message limit reached", rlErr.ResetAt)
			return
		}
		if errors.Is(err, domain.ErrUserNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "user not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "failed to create message")
		return
	}

	helpers.WriteJSONSuccess(w, http.StatusCreated, CreateMessageResponse{
		MessageID: result.MessageID,
		Remaining: result.Remaining,
	})
}

// Get godoc
// @Summary Fetch a greeting message
// @Description Public fetch of a message by ID for the shared-link page. Sender-private fields are omitted.
// @Tags messages
// @Produce json
// @Param id path string true "Message ID"
// @Success 200 {object} controllers.GetMessageSuccessResponse "data contains the public message view"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /messages/{id} [get]
func (c *MessageController) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	msg, err := c.Service.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrMessageNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "message not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "failed to get message")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, msg.PublicView())
}

// Accept godoc
// @Summary Accept a greeting message
// @Description Record the recipient saying yes. Idempotent: repeats report already_clicked without a new notification. The click audit row and the notification email are best effort.
// @Tags messages
// @Produce json
// @Param id path string true "Message ID"
// @Success 200 {object} controllers.AcceptSuccessResponse "data contains already_clicked"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /messages/{id}/click [post]
func (c *MessageController) Accept(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	result, err := c.Service.Accept(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrMessageNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "message not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "failed to accept message")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, AcceptResponse{AlreadyClicked: result.AlreadyClicked})
}

// ListMine godoc
// @Summary List my messages
// @Description Returns the authenticated user's messages, newest first, each with a shareable link and a clicked/waiting status. Requires Bearer token.
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.ListMineSuccessResponse "data contains the owner's messages"
// @Failure 401 {object} helpers.APIResponse "error.code: auth_required"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/me/messages [get]
func (c *MessageController) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeAuthRequired, "authentication required")
		return
	}
	messages, err := c.Service.ListMine(r.Context(), userID)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "failed to list messages")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, messages)
}
