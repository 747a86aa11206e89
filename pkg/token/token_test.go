package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccessJWTRoundTrip(t *testing.T) {
	tokenStr, err := GenerateAccessJWT("u1", "s1", "chat_service")
	assert.NoError(t, err)

	claims, err := ParseAccessJWT(tokenStr)
	assert.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "s1", claims.SessionID)
	assert.Equal(t, "chat_service", claims.Issuer)
}

func TestRefreshJWTRoundTrip(t *testing.T) {
	tokenStr, err := GenerateRefreshJWT("u1", "s1", "chat_service")
	assert.NoError(t, err)

	claims, err := ParseRefreshJWT(tokenStr)
	assert.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "s1", claims.SessionID)
}

func TestAccessTokenRejectedByRefreshParser(t *testing.T) {
	tokenStr, err := GenerateAccessJWT("u1", "s1", "chat_service")
	assert.NoError(t, err)

	_, err = ParseRefreshJWT(tokenStr)
	assert.Error(t, err)
}

func TestParseGarbage(t *testing.T) {
	_, err := ParseAccessJWT("not-a-jwt")
	assert.Error(t, err)
}

func TestCheckJWTNotExpire(t *testing.T) {
	tokenStr, err := GenerateAccessJWT("u1", "s1", "chat_service")
	assert.NoError(t, err)

	ok, err := CheckJWTNotExpire("Bearer " + tokenStr)
	assert.NoError(t, err)
	assert.True(t, ok)

	_, err = CheckJWTNotExpire(tokenStr)
	assert.Error(t, err)
}
