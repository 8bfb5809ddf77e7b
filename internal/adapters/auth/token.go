package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"valentine/internal/domain"
)

type jwtClaims struct {
	jwt.RegisteredClaims
	Email string   `json:"email"`
	Roles []string `json:"roles"`
}

type jwtCodec struct {
	secret []byte
}

// NewJWTCodec returns a TokenIssuer/TokenVerifier pair backed by HS256 JWTs
// signed with the given secret.
func NewJWTCodec(secret string) interface {
	domain.TokenIssuer
	domain.TokenVerifier
} {
	return &jwtCodec{secret: []byte(secret)}
}

func (c *jwtCodec) Issue(subject, email string, roles []string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
		Email: email,
		Roles: roles,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

func (c *jwtCodec) Verify(tokenString string) (*domain.TokenClaims, error) {
	var claims jwtClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return &domain.TokenClaims{
		Subject: claims.Subject,
		Email:   claims.Email,
		Roles:   claims.Roles,
	}, nil
}
