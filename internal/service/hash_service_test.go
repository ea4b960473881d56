package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgon2HashService_HashAndVerify(t *testing.T) {
	svc := NewArgon2HashService()

	hash, err := svc.Hash("my-secret")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))
	assert.NotContains(t, hash, "my-secret")

	match, err := svc.Verify("my-secret", hash)
	require.NoError(t, err)
	assert.True(t, match)
}

func TestArgon2HashService_Verify_WrongSecret(t *testing.T) {
	svc := NewArgon2HashService()

	hash, err := svc.Hash("my-secret")
	require.NoError(t, err)

	match, err := svc.Verify("other-secret", hash)
	require.NoError(t, err)
	assert.False(t, match)
}

func TestArgon2HashService_HashesAreSalted(t *testing.T) {
	svc := NewArgon2HashService()

	h1, err := svc.Hash("my-secret")
	require.NoError(t, err)
	h2, err := svc.Hash("my-secret")
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}

func TestArgon2HashService_Verify_MalformedHash(t *testing.T) {
	svc := NewArgon2HashService()

	for _, hash := range []string{
		"",
		"plaintext",
		"$bcrypt$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=65536,t=1,p=4$!!!$aGFzaA",
	} {
		match, err := svc.Verify("my-secret", hash)
		assert.False(t, match, "hash=%q", hash)
		assert.Error(t, err, "hash=%q", hash)
	}
}
