package auth

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"

	"valentine/internal/domain"
)

type adminPasswordVerifier struct {
	plain string
	hash  []byte
}

// NewAdminPasswordVerifier returns a PasswordVerifier that accepts either the
// plain configured password or a password matching the configured bcrypt
// hash. Empty configuration values never match anything.
func NewAdminPasswordVerifier(plain, bcryptHash string) domain.PasswordVerifier {
	return &adminPasswordVerifier{plain: plain, hash: []byte(bcryptHash)}
}

func (v *adminPasswordVerifier) Verify(password string) bool {
	if password == "" {
		return false
	}
	if v.plain != "" && subtle.ConstantTimeCompare([]byte(v.plain), []byte(password)) == 1 {
		return true
	}
	if len(v.hash) > 0 {
		if err := bcrypt.CompareHashAndPassword(v.hash, []byte(password)); err == nil {
			return true
		}
	}
	return false
}
