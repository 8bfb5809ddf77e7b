package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestAdminPasswordVerifier(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hashed-secret"), bcrypt.MinCost)
	require.NoError(t, err)

	tests := []struct {
		name     string
		plain    string
		hash     string
		password string
		want     bool
	}{
		{"plain match", "secret", "", "secret", true},
		{"plain mismatch", "secret", "", "nope", false},
		{"hash match", "", string(hash), "hashed-secret", true},
		{"hash mismatch", "", string(hash), "wrong", false},
		{"plain wins when both configured", "secret", string(hash), "secret", true},
		{"hash still usable when both configured", "secret", string(hash), "hashed-secret", true},
		{"empty password never matches", "secret", string(hash), "", false},
		{"nothing configured never matches", "", "", "anything", false},
		{"empty configured plain does not match empty input", "", string(hash), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewAdminPasswordVerifier(tt.plain, tt.hash)
			assert.Equal(t, tt.want, v.Verify(tt.password))
		})
	}
}
