package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	Init("test-secret")

	token, err := GenerateToken(42, "admin@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "admin@example.com", claims.Email)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	Init("first-secret")
	token, err := GenerateToken(1, "a@example.com")
	require.NoError(t, err)

	Init("second-secret")
	_, err = ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateGarbageToken(t *testing.T) {
	Init("test-secret")
	_, err := ValidateToken("not.a.token")
	assert.Error(t, err)
}
