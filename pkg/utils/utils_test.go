package utils

import (
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionToken_RoundTrip(t *testing.T) {
	m := NewJWTManager("secret", time.Hour, 2*time.Hour, 6*time.Hour)

	token, expiresAt, err := m.GenerateSessionToken("9876543210", 4, "9876543210_table_4")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(6*time.Hour), expiresAt, time.Minute)

	claims, err := m.ValidateSessionToken(token)
	require.NoError(t, err)
	assert.Equal(t, "9876543210", claims.Phone)
	assert.Equal(t, 4, claims.TableNumber)
	assert.Equal(t, RoleDiner, claims.Role)

	// A session token is not an admin token
	_, err = m.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestAccessToken_NotASessionToken(t *testing.T) {
	m := NewJWTManager("secret", time.Hour, 2*time.Hour, 6*time.Hour)
	userID := uuid.New()

	token, err := m.GenerateAccessToken(userID, "admin@cafe.test", []string{"admin"}, nil)
	require.NoError(t, err)

	claims, err := m.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)

	_, err = m.ValidateSessionToken(token)
	assert.Error(t, err)

	other := NewJWTManager("other", time.Hour, time.Hour, time.Hour)
	_, err = other.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestRefreshToken(t *testing.T) {
	m := NewJWTManager("secret", time.Hour, 2*time.Hour, time.Hour)
	userID := uuid.New()
	token, err := m.GenerateRefreshToken(userID)
	require.NoError(t, err)

	got, err := m.ValidateRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestGenerateCodes(t *testing.T) {
	code, err := GenerateCouponCode(8)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^[A-Z0-9]{8}$`), code)

	otp, err := GenerateOTP(6)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^\d{6}$`), otp)
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("123456")
	require.NoError(t, err)
	assert.True(t, CheckPasswordHash("123456", hash))
	assert.False(t, CheckPasswordHash("654321", hash))
}

func TestIsValidPhone(t *testing.T) {
	assert.True(t, IsValidPhone("9876543210"))
	assert.True(t, IsValidPhone("6000000000"))
	assert.False(t, IsValidPhone("5876543210"))
	assert.False(t, IsValidPhone("987654321"))
	assert.False(t, IsValidPhone("+919876543210"))
}
