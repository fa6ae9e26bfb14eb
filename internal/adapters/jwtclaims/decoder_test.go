package jwtclaims

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"oid":                "00000000-0000-0000-0000-000000000001",
		"tid":                "tenant",
		"preferred_username": "adele@contoso.com",
	}).SignedString([]byte("not-the-issuer-key"))
	require.NoError(t, err)

	claims, err := NewDecoder().Decode(signed)
	require.NoError(t, err)

	assert.Equal(t, "adele@contoso.com", claims["preferred_username"])
	assert.Equal(t, "tenant", claims["tid"])
}

func TestDecode_Opaque(t *testing.T) {
	_, err := NewDecoder().Decode("EwBwA8l6BAAU-opaque")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode token claims")
}
