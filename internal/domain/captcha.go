package domain

import (
	"context"
	"errors"
)

// ErrCaptchaFailed is returned by the creation workflow when the bot check
// rejects the token. The caller must obtain a fresh token before retrying.
var ErrCaptchaFailed = errors.New("captcha verification failed")

// CaptchaVerifier forwards an opaque client-supplied challenge token to an
// external verification service. Implementations fail closed: any transport
// failure, missing configuration, or non-success response yields false, and
// no error ever escapes this boundary.
type CaptchaVerifier interface {
	Verify(ctx context.Context, token, remoteIP string) bool
}
