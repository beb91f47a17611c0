package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/taskdesk/internal/user"
)

func TestPasetoService(t *testing.T) {
	key := []byte(strings.Repeat("k", 32))
	s, err := NewPasetoService(key)
	require.NoError(t, err)

	id := uuid.New()
	changedAt := time.Date(2025, 3, 1, 10, 0, 0, 600_000_000, time.UTC)
	token, err := s.CreateToken(&user.User{ID: id, Email: "ana@x.com", PasswordChangedAt: changedAt}, time.Hour)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(token, "v4.local."))

	claims, err := s.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, id, claims.UserID)
	assert.Equal(t, "ana@x.com", claims.Email)
	assert.Equal(t, changedAt.UnixMilli(), claims.PasswordVersion)

	t.Run("expired", func(t *testing.T) {
		s.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		defer func() { s.now = time.Now }()

		_, err := s.VerifyToken(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("wrong key", func(t *testing.T) {
		other, err := NewPasetoService([]byte(strings.Repeat("z", 32)))
		require.NoError(t, err)

		_, err = other.VerifyToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := s.VerifyToken("v4.local.garbage")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestNewPasetoService_KeyLength(t *testing.T) {
	_, err := NewPasetoService([]byte("short"))
	assert.Error(t, err)
}
