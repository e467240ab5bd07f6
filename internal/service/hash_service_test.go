package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgon2HashService_HashAndVerify(t *testing.T) {
	svc := NewArgon2HashService()

	hash, err := svc.Hash("sk_super_secret_value")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))

	ok, err := svc.Verify("sk_super_secret_value", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Verify("sk_wrong_value", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestArgon2HashService_SaltsAreUnique(t *testing.T) {
	svc := NewArgon2HashService()

	h1, err := svc.Hash("same-secret")
	require.NoError(t, err)
	h2, err := svc.Hash("same-secret")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}

func TestArgon2HashService_Verify_MalformedHash(t *testing.T) {
	svc := NewArgon2HashService()

	cases := []string{
		"",
		"plaintext",
		"$argon2id$v=19$m=65536,t=1,p=4$onlyfiveparts",
		"$bcrypt$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA",
	}
	for _, h := range cases {
		_, err := svc.Verify("secret", h)
		assert.Error(t, err, "hash %q should be rejected", h)
	}
}
