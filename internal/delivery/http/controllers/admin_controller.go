package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"valentine/internal/delivery/http/helpers"
	"valentine/internal/domain"
)

// AdminLoginRequest is the request body for POST /admin/login
type AdminLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate implements Validator.
func (a AdminLoginRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(a.Email) == "" {
		errs = append(errs, "email is required")
	}
	if a.Password == "" {
		errs = append(errs, "password is required")
	}
	return errs
}

// AdminLoginResponse is the response body for POST /admin/login
type AdminLoginResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
}

// AdminMessagesResponse is the response body for GET /admin/messages
type AdminMessagesResponse struct {
	Messages []*domain.Message    `json:"messages"`
	Stats    *domain.MessageStats `json:"stats"`
}

// AdminLoginSuccessResponse is the success response envelope for POST /admin/login (200).
type AdminLoginSuccessResponse struct {
	Data  AdminLoginResponse `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

// AdminMessagesSuccessResponse is the success response envelope for GET /admin/messages (200).
type AdminMessagesSuccessResponse struct {
	Data  AdminMessagesResponse `json:"data"`
	Error *helpers.APIError     `json:"error"`
}

// AdminController handles the analytics endpoints.
type AdminController struct {
	Logger         *slog.Logger
	AdminService   domain.AdminService
	MessageService domain.MessageService
}

// NewAdminController creates an AdminController with the given logger and services.
func NewAdminController(logger *slog.Logger, adminSvc domain.AdminService, messageSvc domain.MessageService) *AdminController {
	return &AdminController{
		Logger:         logger,
		AdminService:   adminSvc,
		MessageService: messageSvc,
	}
}

// Login godoc
// @Summary Admin login
// @Description Authenticate for the analytics view. The password must match the configured value and the email must appear in the database-backed or configured allow-list. Returns a signed admin session token.
// @Tags admin
// @Accept json
// @Produce json
// @Param body body AdminLoginRequest true "Admin credentials"
// @Success 200 {object} controllers.AdminLoginSuccessResponse "data contains token and token_type"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/login [post]
func (c *AdminController) Login(w http.ResponseWriter, r *http.Request) {
	var req AdminLoginRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	token, err := c.AdminService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidAdminPassword) {
			helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "invalid credentials")
			return
		}
		if errors.Is(err, domain.ErrEmailNotWhitelisted) {
			helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "email not authorized for admin access")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "login failed")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, AdminLoginResponse{Token: token, TokenType: "Bearer"})
}

// ListMessages godoc
// @Summary List all messages with stats
// @Description Returns every message plus aggregate stats (total, total clicked, conversion rate, unique senders). Requires an admin session token.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.AdminMessagesSuccessResponse "data contains messages and stats"
// @Failure 401 {object} helpers.APIResponse "error.code: auth_required"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/messages [get]
func (c *AdminController) ListMessages(w http.ResponseWriter, r *http.Request) {
	messages, stats, err := c.MessageService.ListAll(r.Context())
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "failed to list messages")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, AdminMessagesResponse{Messages: messages, Stats: stats})
}
