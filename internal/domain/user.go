package domain

import (
	"context"
	"errors"
	"time"
)

// ErrUserNotFound is returned when a user lookup matches no row.
var ErrUserNotFound = errors.New("user not found")

// User represents a signer-in, created on first successful sign-in via the
// external identity provider and never deleted by the application.
// swagger:model User
type User struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	GoogleID  string     `json:"-"`
	AvatarURL string     `json:"avatar_url"`
	IsActive  bool       `json:"is_active"`
	LastLogin *time.Time `json:"last_login"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Profile is the identity-provider view of a user, returned after the
// OAuth code exchange.
type Profile struct {
	Subject   string
	Email     string
	Name      string
	AvatarURL string
}

// IdentityProvider is the managed external sign-in collaborator.
// AuthURL returns the URL to redirect the user to; Exchange trades the
// callback code for the user's profile.
type IdentityProvider interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*Profile, error)
}

// TokenIssuer issues session tokens (e.g. JWT) for an authenticated principal.
type TokenIssuer interface {
	Issue(subject, email string, roles []string, expiry time.Duration) (string, error)
}

// TokenClaims are the verified contents of a session token.
type TokenClaims struct {
	Subject string
	Email   string
	Roles   []string
}

// TokenVerifier verifies a session token and returns its claims.
type TokenVerifier interface {
	Verify(token string) (*TokenClaims, error)
}

// UserRepository defines the interface for user storage
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
}

// AuthService signs a user in via the identity provider and issues a session token.
type AuthService interface {
	AuthURL(state string) string
	SignIn(ctx context.Context, code string) (token string, user *User, err error)
}
