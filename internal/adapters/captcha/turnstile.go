package captcha

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"valentine/internal/domain"
)

const verifyEndpoint = "https://challenges.cloudflare.com/turnstile/v0/siteverify"

// verifyResponse is the portion of the Turnstile siteverify response we use.
type verifyResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
}

type turnstileVerifier struct {
	client    *http.Client
	secretKey string
	endpoint  string
	logger    *slog.Logger
}

// NewTurnstileVerifier returns a CaptchaVerifier backed by Cloudflare
// Turnstile. Every failure path resolves to false; nothing is retried.
func NewTurnstileVerifier(client *http.Client, secretKey string, logger *slog.Logger) domain.CaptchaVerifier {
	if client == nil {
		client = http.DefaultClient
	}
	return &turnstileVerifier{client: client, secretKey: secretKey, endpoint: verifyEndpoint, logger: logger}
}

func (v *turnstileVerifier) Verify(ctx context.Context, token, remoteIP string) bool {
	if v.secretKey == "" {
		v.logger.Error("turnstile secret key is not configured")
		return false
	}

	form := url.Values{}
	form.Set("secret", v.secretKey)
	form.Set("response", token)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		v.logger.Error("failed to create turnstile request", "err", err)
		return false
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		v.logger.Error("turnstile verification request failed", "err", err)
		return false
	}
	defer resp.Body.Close()

	var data verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		v.logger.Error("failed to decode turnstile response", "err", err)
		return false
	}
	if !data.Success && len(data.ErrorCodes) > 0 {
		v.logger.Warn("turnstile rejected token", "error_codes", data.ErrorCodes)
	}
	return data.Success
}
