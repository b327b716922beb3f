package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseToken(t *testing.T) {
	token, exp, err := GenerateToken("terminal-1", "r1", time.Hour)
	require.NoError(t, err)
	assert.True(t, exp.After(time.Now()))

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "terminal-1", claims.TerminalId)
	assert.Equal(t, "r1", claims.RestaurantId)
	assert.Equal(t, "terminal-1", claims.RegisteredClaims.Subject)
}

func TestParseToken_Expired(t *testing.T) {
	token, _, err := GenerateToken("terminal-1", "r1", -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(token)
	assert.Error(t, err)
}

func TestParseToken_Garbage(t *testing.T) {
	_, err := ParseToken("not-a-token")
	assert.Error(t, err)
}
