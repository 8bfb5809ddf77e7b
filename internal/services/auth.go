package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"valentine/internal/domain"
)

type authService struct {
	provider    domain.IdentityProvider
	userRepo    domain.UserRepository
	tokenIssuer domain.TokenIssuer
	tokenExpiry time.Duration
	logger      *slog.Logger
	now         func() time.Time
}

// NewAuthService returns an AuthService that signs users in via the external
// identity provider, upserting the local user row on every sign-in.
func NewAuthService(provider domain.IdentityProvider, userRepo domain.UserRepository, tokenIssuer domain.TokenIssuer, tokenExpiry time.Duration, logger *slog.Logger) domain.AuthService {
	return &authService{
		provider:    provider,
		userRepo:    userRepo,
		tokenIssuer: tokenIssuer,
		tokenExpiry: tokenExpiry,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *authService) AuthURL(state string) string {
	return s.provider.AuthURL(state)
}

// SignIn exchanges the callback code for a profile, creates the user on first
// sign-in or stamps last_login on subsequent ones, and issues a session token.
func (s *authService) SignIn(ctx context.Context, code string) (string, *domain.User, error) {
	profile, err := s.provider.Exchange(ctx, code)
	if err != nil {
		return "", nil, fmt.Errorf("identity provider exchange failed: %w", err)
	}

	email := strings.ToLower(strings.TrimSpace(profile.Email))
	now := s.now()

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return "", nil, fmt.Errorf("failed to look up user: %w", err)
		}
		user = &domain.User{
			Email:     email,
			Name:      profile.Name,
			GoogleID:  profile.Subject,
			AvatarURL: profile.AvatarURL,
			IsActive:  true,
			LastLogin: &now,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return "", nil, fmt.Errorf("failed to create user: %w", err)
		}
	} else {
		if err := s.userRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
			// Not worth failing the sign-in over.
			s.logger.ErrorContext(ctx, "failed to update last login", "user_id", user.ID, "err", err)
		}
		user.LastLogin = &now
	}

	token, err := s.tokenIssuer.Issue(user.ID, user.Email, []string{"user"}, s.tokenExpiry)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return token, user, nil
}
