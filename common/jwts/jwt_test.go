package jwts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "unit-test-secret"

func TestTokenRoundTrip(t *testing.T) {
	token, err := GetToken(10086, RoleUser, TokenTypeAccess, time.Hour, testSecret)
	require.NoError(t, err)

	userID, role, err := ParseToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, int64(10086), userID)
	assert.Equal(t, RoleUser, role)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, err := GetToken(1, RoleUser, TokenTypeAccess, time.Hour, testSecret)
	require.NoError(t, err)
	_, _, err = ParseToken(token, "other-secret")
	require.Error(t, err)
}

func TestParseRejectsRefreshToken(t *testing.T) {
	token, err := GetToken(1, RoleUser, TokenTypeRefresh, time.Hour, testSecret)
	require.NoError(t, err)
	_, _, err = ParseToken(token, testSecret)
	assert.ErrorIs(t, err, ErrTokenNotAccess)
}

func TestParseRejectsExpired(t *testing.T) {
	token, err := GetToken(1, RoleUser, TokenTypeAccess, -time.Minute, testSecret)
	require.NoError(t, err)
	_, _, err = ParseToken(token, testSecret)
	require.Error(t, err)
}
