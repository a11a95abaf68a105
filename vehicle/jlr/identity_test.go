package jlr

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenResponseDecode(t *testing.T) {
	var res tokenResponse
	require.NoError(t, json.Unmarshal([]byte(`{
		"access_token": "at",
		"refresh_token": "rt",
		"token_type": "bearer",
		"expires_in": 3600,
		"authorization_token": "authz"
	}`), &res))

	assert.Equal(t, "at", res.AccessToken)
	assert.Equal(t, "rt", res.RefreshToken)
	assert.Equal(t, "authz", res.AuthorizationToken)
	assert.Equal(t, 3600, res.ExpiresIn)
	assert.False(t, res.Expiry.IsZero())
}
