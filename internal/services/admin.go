package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"valentine/internal/domain"
)

type adminService struct {
	whitelistRepo domain.AdminWhitelistRepository
	password      domain.PasswordVerifier
	envWhitelist  map[string]struct{}
	tokenIssuer   domain.TokenIssuer
	tokenExpiry   time.Duration
	logger        *slog.Logger
}

// NewAdminService gates the analytics view. The password must match a
// configured value and the email must be present in the database-backed
// allow-list or the statically configured one.
func NewAdminService(whitelistRepo domain.AdminWhitelistRepository, password domain.PasswordVerifier, envWhitelist []string, tokenIssuer domain.TokenIssuer, tokenExpiry time.Duration, logger *slog.Logger) domain.AdminService {
	env := make(map[string]struct{}, len(envWhitelist))
	for _, e := range envWhitelist {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			env[e] = struct{}{}
		}
	}
	return &adminService{
		whitelistRepo: whitelistRepo,
		password:      password,
		envWhitelist:  env,
		tokenIssuer:   tokenIssuer,
		tokenExpiry:   tokenExpiry,
		logger:        logger,
	}
}

func (s *adminService) Login(ctx context.Context, email, password string) (string, error) {
	if !s.password.Verify(password) {
		return "", domain.ErrInvalidAdminPassword
	}

	email = strings.ToLower(strings.TrimSpace(email))

	_, inEnv := s.envWhitelist[email]
	inDB, err := s.whitelistRepo.IsWhitelisted(ctx, email)
	if err != nil {
		// The env list can still authorize when the database is unreachable.
		s.logger.ErrorContext(ctx, "admin whitelist lookup failed", "err", err)
		inDB = false
	}
	if !inDB && !inEnv {
		return "", domain.ErrEmailNotWhitelisted
	}

	token, err := s.tokenIssuer.Issue(email, email, []string{domain.AdminRole}, s.tokenExpiry)
	if err != nil {
		return "", fmt.Errorf("failed to sign admin token: %w", err)
	}
	return token, nil
}
