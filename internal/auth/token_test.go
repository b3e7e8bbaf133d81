// File: internal/auth/token_test.go
package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientTokenRoundTrip(t *testing.T) {
	secret := []byte("test-secret-key")

	token, err := GenerateClientToken("client-123", secret)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	clientID, err := ValidateClientToken(token, secret)
	require.NoError(t, err)
	assert.Equal(t, "client-123", clientID)
}

func TestGenerateClientTokenRequiresID(t *testing.T) {
	_, err := GenerateClientToken("", []byte("secret"))
	assert.Error(t, err)
}

func TestValidateClientTokenRejects(t *testing.T) {
	secret := []byte("test-secret-key")

	t.Run("wrong secret", func(t *testing.T) {
		token, err := GenerateClientToken("client-123", secret)
		require.NoError(t, err)

		_, err = ValidateClientToken(token, []byte("different-secret"))
		assert.Error(t, err)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := ValidateClientToken("not.a.token", secret)
		assert.Error(t, err)
	})

	t.Run("empty token", func(t *testing.T) {
		_, err := ValidateClientToken("", secret)
		assert.Error(t, err)
	})
}
