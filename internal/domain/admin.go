package domain

import (
	"context"
	"errors"
)

// AdminRole is the role claim carried by admin session tokens.
const AdminRole = "admin"

// Sentinel errors for admin authorization.
var (
	ErrInvalidAdminPassword = errors.New("invalid password")
	ErrEmailNotWhitelisted  = errors.New("email not authorized for admin access")
)

// AdminWhitelistEntry is an externally managed allow-list row consulted at
// admin-login time. The application only reads these.
type AdminWhitelistEntry struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	IsActive bool   `json:"is_active"`
}

// AdminWhitelistRepository defines read access to the database-backed allow-list.
type AdminWhitelistRepository interface {
	IsWhitelisted(ctx context.Context, email string) (bool, error)
}

// PasswordVerifier checks a submitted admin password against the configured
// accepted values.
type PasswordVerifier interface {
	Verify(password string) bool
}

// AdminService gates access to the analytics view: the password must match a
// configured value and the email must appear in at least one allow-list.
// On success it issues a signed admin session token.
type AdminService interface {
	Login(ctx context.Context, email, password string) (token string, err error)
}
