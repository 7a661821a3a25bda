package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{"valid password", "validpassword123", nil},
		{"too short", "short", ErrPasswordTooShort},
		{"minimum length", "12345678", nil},
		{"too long", strings.Repeat("a", 73), ErrPasswordTooLong},
		{"maximum length", strings.Repeat("a", 72), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := HashPassword(tt.password, bcrypt.MinCost)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, hash)
			assert.NotEqual(t, tt.password, hash)
		})
	}
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("testpassword123", bcrypt.MinCost)
	require.NoError(t, err)

	assert.NoError(t, CheckPassword("testpassword123", hash))
	assert.ErrorIs(t, CheckPassword("wrongpassword", hash), ErrInvalidPassword)
	assert.Error(t, CheckPassword("testpassword123", "not-a-hash"))
}

func TestHashPassword_LowCostFallsBackToDefault(t *testing.T) {
	hash, err := HashPassword("testpassword123", 0)
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}

func TestGenerateSecret(t *testing.T) {
	a, err := GenerateSecret()
	require.NoError(t, err)
	b, err := GenerateSecret()
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}
