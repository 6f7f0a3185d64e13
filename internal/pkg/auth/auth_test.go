// internal/pkg/auth/auth_test.go
package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/erp-backend/internal/config"
	"golang.org/x/crypto/bcrypt"
)

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "test"},
		JWT: config.JWTConfig{
			Secret:             "test-secret",
			AccessTokenExpiry:  15 * time.Minute,
			RefreshTokenExpiry: time.Hour,
		},
		Security: config.SecurityConfig{BcryptCost: bcrypt.MinCost},
	}
}

func TestPasswordHashAndVerify(t *testing.T) {
	mgr := NewPasswordManager(testConfig())

	hash, err := mgr.HashPassword("password123")
	require.NoError(t, err)
	assert.NotEqual(t, "password123", hash)

	require.NoError(t, mgr.VerifyPassword("password123", hash))
	assert.Error(t, mgr.VerifyPassword("wrong-password", hash))
}

func TestPasswordTooShort(t *testing.T) {
	mgr := NewPasswordManager(testConfig())

	_, err := mgr.HashPassword("short")
	require.Error(t, err)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	mgr := NewJWTManager(testConfig())

	token, err := mgr.GenerateAccessToken(7, "jane@example.com", true)
	require.NoError(t, err)

	claims, err := mgr.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "jane@example.com", claims.Email)
	assert.True(t, claims.IsAdmin)
	assert.Equal(t, "access", claims.TokenType)
}

func TestTokenTypeEnforced(t *testing.T) {
	mgr := NewJWTManager(testConfig())

	access, err := mgr.GenerateAccessToken(7, "jane@example.com", false)
	require.NoError(t, err)
	refresh, err := mgr.GenerateRefreshToken(7, "jane@example.com")
	require.NoError(t, err)

	_, err = mgr.ValidateRefreshToken(access)
	assert.Error(t, err)
	_, err = mgr.ValidateAccessToken(refresh)
	assert.Error(t, err)
}

func TestRefreshTokenDropsAdmin(t *testing.T) {
	mgr := NewJWTManager(testConfig())

	refresh, err := mgr.GenerateRefreshToken(7, "jane@example.com")
	require.NoError(t, err)

	claims, err := mgr.ValidateRefreshToken(refresh)
	require.NoError(t, err)
	assert.False(t, claims.IsAdmin)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	mgr := NewJWTManager(testConfig())

	other := testConfig()
	other.JWT.Secret = "different-secret"
	token, err := NewJWTManager(other).GenerateAccessToken(7, "jane@example.com", false)
	require.NoError(t, err)

	_, err = mgr.ValidateToken(token)
	assert.Error(t, err)
}

func TestExtractTokenFromHeader(t *testing.T) {
	assert.Equal(t, "abc123", ExtractTokenFromHeader("Bearer abc123"))
	assert.Equal(t, "", ExtractTokenFromHeader("abc123"))
	assert.Equal(t, "", ExtractTokenFromHeader(""))
	assert.Equal(t, "", ExtractTokenFromHeader("Bearer"))
}
