package controllers

import (
	"crypto/rand"
	"encoding/base64"
	"log/slog"
	"net/http"

	"valentine/internal/delivery/http/helpers"
	"valentine/internal/domain"
)

const stateCookieName = "oauth_state"

// LoginResponse is the response body for GET /auth/google/callback
type LoginResponse struct {
	Token     string       `json:"token"`
	TokenType string       `json:"token_type"`
	User      *domain.User `json:"user"`
}

// LoginSuccessResponse is the success response envelope for GET /auth/google/callback (200).
type LoginSuccessResponse struct {
	Data  LoginResponse     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// AuthController handles the Google sign-in flow.
type AuthController struct {
	Logger  *slog.Logger
	Service domain.AuthService
}

// NewAuthController creates an AuthController with the given logger and service.
func NewAuthController(logger *slog.Logger, svc domain.AuthService) *AuthController {
	return &AuthController{
		Logger:  logger,
		Service: svc,
	}
}

// GoogleLogin godoc
// @Summary Start Google sign-in
// @Description Sets a random state cookie and redirects to Google's consent screen.
// @Tags auth
// @Success 302 {string} string "redirect to Google"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /auth/google [get]
func (c *AuthController) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	state, err := randomState()
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "failed to start sign-in")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, c.Service.AuthURL(state), http.StatusFound)
}

// GoogleCallback godoc
// @Summary Complete Google sign-in
// @Description Verifies the state cookie, exchanges the code for a profile, upserts the user, and returns a JWT with the user.
// @Tags auth
// @Produce json
// @Param state query string true "OAuth state"
// @Param code query string true "OAuth authorization code"
// @Success 200 {object} controllers.LoginSuccessResponse "data contains token, token_type, and user"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /auth/google/callback [get]
func (c *AuthController) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")
	cookie, err := r.Cookie(stateCookieName)
	if err != nil || state == "" || cookie.Value != state {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid oauth state")
		return
	}

	// The state is single-use.
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	code := r.URL.Query().Get("code")
	if code == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing authorization code")
		return
	}

	token, user, err := c.Service.SignIn(r.Context(), code)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "sign-in failed")
		return
	}

	helpers.WriteJSONSuccess(w, http.StatusOK, LoginResponse{Token: token, TokenType: "Bearer", User: user})
}

func randomState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
