package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewTokenService("test-secret", "chat-test")

	token, err := svc.GenerateToken("alice")
	require.NoError(t, err)

	sub, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", sub)
}

func TestTokenRejectsWrongSecret(t *testing.T) {
	issuer := NewTokenService("secret-a", "chat-test")
	verifier := NewTokenService("secret-b", "chat-test")

	token, err := issuer.GenerateToken("alice")
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.Error(t, err)
}

func TestTokenRejectsGarbage(t *testing.T) {
	svc := NewTokenService("test-secret", "chat-test")
	_, err := svc.ValidateToken("not-a-token")
	assert.Error(t, err)
}
