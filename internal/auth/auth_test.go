package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewService(t *testing.T) {
	t.Run("rejects empty secret", func(t *testing.T) {
		_, err := NewService("", time.Hour)
		assert.Error(t, err)
	})

	t.Run("defaults ttl when unset", func(t *testing.T) {
		svc, err := NewService("secret", 0)
		require.NoError(t, err)
		assert.Equal(t, 24*time.Hour, svc.ttl)
	})
}

func TestIssueAndVerifyToken(t *testing.T) {
	svc, err := NewService("secret", time.Hour)
	require.NoError(t, err)

	token, err := svc.IssueToken("user-1", "alice")
	require.NoError(t, err)

	claims, err := svc.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "alice", claims.Username)
}

func TestVerifyTokenFailures(t *testing.T) {
	svc, err := NewService("secret", time.Hour)
	require.NoError(t, err)

	t.Run("garbage token", func(t *testing.T) {
		_, err := svc.VerifyToken("not.a.token")
		assert.Error(t, err)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other, err := NewService("different", time.Hour)
		require.NoError(t, err)
		token, err := other.IssueToken("user-1", "alice")
		require.NoError(t, err)

		_, err = svc.VerifyToken(token)
		assert.Error(t, err)
	})

	t.Run("expired token", func(t *testing.T) {
		short, err := NewService("secret", time.Nanosecond)
		require.NoError(t, err)
		token, err := short.IssueToken("user-1", "alice")
		require.NoError(t, err)

		time.Sleep(10 * time.Millisecond)
		_, err = short.VerifyToken(token)
		assert.Error(t, err)
	})
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", hash)

	assert.True(t, CheckPassword(hash, "hunter2"))
	assert.False(t, CheckPassword(hash, "wrong"))

	_, err = HashPassword("")
	assert.Error(t, err)
}
