package identity

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func sign(t *testing.T, claims jwt.MapClaims, key string) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	require.NoError(t, err)
	return s
}

func TestStatic(t *testing.T) {
	id, ok := Static{ID: "user-1"}.UserID()
	assert.True(t, ok)
	assert.Equal(t, "user-1", id)

	_, ok = Anonymous.UserID()
	assert.False(t, ok)
	assert.Empty(t, Anonymous.Token())
}

func TestFromToken(t *testing.T) {
	t.Run("subject claim", func(t *testing.T) {
		tok := sign(t, jwt.MapClaims{"sub": "user-42", "exp": jwt.NewNumericDate(time.Now().Add(time.Hour))}, secret)
		s, err := FromToken(tok, secret)
		require.NoError(t, err)

		id, ok := s.UserID()
		assert.True(t, ok)
		assert.Equal(t, "user-42", id)
		assert.Equal(t, tok, s.Token())
	})

	t.Run("user_id claim", func(t *testing.T) {
		tok := sign(t, jwt.MapClaims{"user_id": "user-7"}, secret)
		s, err := FromToken(tok, secret)
		require.NoError(t, err)
		id, _ := s.UserID()
		assert.Equal(t, "user-7", id)
	})

	t.Run("expired", func(t *testing.T) {
		tok := sign(t, jwt.MapClaims{"sub": "user-42", "exp": jwt.NewNumericDate(time.Now().Add(-time.Hour))}, secret)
		_, err := FromToken(tok, secret)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong key", func(t *testing.T) {
		tok := sign(t, jwt.MapClaims{"sub": "user-42"}, "other")
		_, err := FromToken(tok, secret)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("no subject", func(t *testing.T) {
		tok := sign(t, jwt.MapClaims{"role": "admin"}, secret)
		_, err := FromToken(tok, secret)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := FromToken("", secret)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestNilSessionIsSignedOut(t *testing.T) {
	var s *Session
	_, ok := s.UserID()
	assert.False(t, ok)
	assert.Empty(t, s.Token())
}

func TestNewSessionForwardsToken(t *testing.T) {
	s := NewSession("u7", "opaque")

	id, ok := s.UserID()
	assert.True(t, ok)
	assert.Equal(t, "u7", id)
	assert.Equal(t, "opaque", s.Token())

	_, ok = NewSession("", "opaque").UserID()
	assert.False(t, ok)
}
