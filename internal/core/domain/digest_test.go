package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDigester(t *testing.T) {
	d, err := NewDigester("")
	require.NoError(t, err)
	assert.Equal(t, DigestSHA256, d.Algorithm())

	d, err = NewDigester(DigestArgon2id)
	require.NoError(t, err)
	assert.Equal(t, DigestArgon2id, d.Algorithm())

	_, err = NewDigester("md5")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestDigester_SHA256(t *testing.T) {
	d, err := NewDigester(DigestSHA256)
	require.NoError(t, err)

	digest, err := d.Digest("pw1")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(digest, "sha256$"))
	assert.Len(t, digest, len("sha256$")+64)
	assert.True(t, d.Verify("pw1", digest))
	assert.False(t, d.Verify("pw2", digest))

	again, err := d.Digest("pw1")
	require.NoError(t, err)
	assert.Equal(t, digest, again, "sha256 digests are deterministic")
}

func TestDigester_Argon2id(t *testing.T) {
	d, err := NewDigester(DigestArgon2id)
	require.NoError(t, err)

	digest, err := d.Digest("pw1")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(digest, "$argon2id$v=19$m=16384,t=2,p=2$"))
	assert.True(t, d.Verify("pw1", digest))
	assert.False(t, d.Verify("pw2", digest))

	again, err := d.Digest("pw1")
	require.NoError(t, err)
	assert.NotEqual(t, digest, again, "salt differs per digest")
	assert.True(t, d.Verify("pw1", again))
}

func TestDigester_VerifyAcrossAlgorithms(t *testing.T) {
	sha, err := NewDigester(DigestSHA256)
	require.NoError(t, err)
	argon, err := NewDigester(DigestArgon2id)
	require.NoError(t, err)

	shaDigest, err := sha.Digest("secret")
	require.NoError(t, err)
	argonDigest, err := argon.Digest("secret")
	require.NoError(t, err)

	assert.True(t, argon.Verify("secret", shaDigest))
	assert.True(t, sha.Verify("secret", argonDigest))
}

func TestDigester_LegacyHex(t *testing.T) {
	d, err := NewDigester("")
	require.NoError(t, err)

	// sha256("pw1")
	legacy := strings.TrimPrefix(must(d.Digest("pw1")), "sha256$")
	assert.True(t, d.Verify("pw1", legacy))
	assert.True(t, d.Verify("pw1", strings.ToUpper(legacy)))
	assert.False(t, d.Verify("pw2", legacy))
}

func TestDigester_RejectsMalformed(t *testing.T) {
	d, err := NewDigester(DigestArgon2id)
	require.NoError(t, err)

	for _, digest := range []string{
		"",
		"plaintext",
		"$argon2id$v=19$m=16384,t=2,p=2$!!!$abc",
		"$argon2id$v=19$m=16384,t=2,p=2$c2FsdHNhbHQ$!!!",
		"$argon2id$v=18$m=16384,t=2,p=2$c2FsdHNhbHQ$a2V5",
		"$argon2id$v=19$m=0,t=2,p=2$c2FsdHNhbHQ$a2V5",
		"$argon2i$v=19$m=16384,t=2,p=2$c2FsdHNhbHQ$a2V5",
	} {
		assert.False(t, d.Verify("pw", digest), digest)
	}
}

func must(s string, err error) string {
	if err != nil {
		panic(err)
	}
	return s
}
