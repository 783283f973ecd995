package helpers

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	h1, err := HashPassword("secret1")
	require.NoError(t, err)
	h2, err := HashPassword("secret1")
	require.NoError(t, err)

	assert.NotEqual(t, "secret1", h1)
	assert.NotEqual(t, h1, h2, "hashes are salted")
	assert.True(t, CompareHashAndPassword(h1, "secret1"))
	assert.True(t, CompareHashAndPassword(h2, "secret1"))
	assert.False(t, CompareHashAndPassword(h1, "secret2"))

	_, err = HashPassword(strings.Repeat("x", 73))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestCompareDummyPassword(t *testing.T) {
	cost, err := bcrypt.Cost(dummyHash())
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
	assert.False(t, CompareDummyPassword("morningforge-no-such-account"))
	assert.False(t, CompareDummyPassword("secret1"))
}

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager("a-secret", "r-secret", time.Minute, time.Hour)

	access, aexp, err := m.GenerateAccessToken("u1", "s1")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Minute), aexp, 5*time.Second)

	claims, err := m.ParseAccessToken(access)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "s1", claims.SessionID)

	_, err = m.ParseRefreshToken(access)
	assert.Error(t, err, "access token must not validate with the refresh secret")

	refresh, _, err := m.GenerateRefreshToken("u1", "s1")
	require.NoError(t, err)
	claims, err = m.ParseRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, "s1", claims.SessionID)
}

func TestJWTManager_Expired(t *testing.T) {
	m := NewJWTManager("a", "r", -time.Minute, time.Hour)
	tok, _, err := m.GenerateAccessToken("u1", "s1")
	require.NoError(t, err)
	_, err = m.ParseAccessToken(tok)
	assert.Error(t, err)
}

func TestObjectURL(t *testing.T) {
	assert.Equal(t, "https://storage.googleapis.com/mf-exports/exports/u1/a.json", ObjectURL("mf-exports", "exports/u1/a.json"))
}

func TestNewLogger_Level(t *testing.T) {
	assert.Equal(t, "debug", NewLogger("mf", "development", "").GetLevel().String())
	assert.Equal(t, "info", NewLogger("mf", "production", "").GetLevel().String())
	assert.Equal(t, "warning", NewLogger("mf", "production", "warn").GetLevel().String())
	assert.Equal(t, "info", NewLogger("mf", "production", "loud").GetLevel().String())
}
