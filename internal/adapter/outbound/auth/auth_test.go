package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestJWTManager(t *testing.T) {
	manager := NewJWTManager(&JWTConfig{Secret: "test-secret", Issuer: "calshare", AccessTokenExpiry: time.Hour})

	t.Run("round_trip", func(t *testing.T) {
		userID := uuid.New()
		token, expiresAt, err := manager.GenerateAccessToken(userID, "a@example.com")
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

		claims, err := manager.ValidateAccessToken(token)
		require.NoError(t, err)
		assert.Equal(t, userID, claims.UserID)
		assert.Equal(t, "a@example.com", claims.Email)
	})

	t.Run("wrong_secret", func(t *testing.T) {
		other := NewJWTManager(&JWTConfig{Secret: "other", Issuer: "calshare", AccessTokenExpiry: time.Hour})
		token, _, err := other.GenerateAccessToken(uuid.New(), "a@example.com")
		require.NoError(t, err)

		_, err = manager.ValidateAccessToken(token)
		assert.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		m := NewJWTManager(&JWTConfig{Secret: "test-secret", Issuer: "calshare", AccessTokenExpiry: time.Hour}).(*jwtManager)
		m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		token, _, err := m.GenerateAccessToken(uuid.New(), "a@example.com")
		require.NoError(t, err)

		_, err = manager.ValidateAccessToken(token)
		assert.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := manager.ValidateAccessToken("not-a-token")
		assert.Error(t, err)
	})
}

func TestBcryptHasher(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)

	hash, err := hasher.Hash("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)

	assert.NoError(t, hasher.Compare(hash, "correct horse"))
	assert.Error(t, hasher.Compare(hash, "wrong"))
}
