package password_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/simhub/backend/pkg/password"
)

// Low-cost parameters keep the test fast without changing code paths.
func testHasher() *password.Hasher {
	return password.NewHasher(password.Params{
		MemoryKiB:   8 * 1024,
		Iterations:  1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	})
}

func TestHasher_HashAndVerify(t *testing.T) {
	h := testHasher()

	encoded, err := h.Hash("s3cret-pass")
	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(encoded, "$argon2id$v=19$"))

	t.Run("correct password verifies", func(t *testing.T) {
		assert.True(t, h.Verify(encoded, "s3cret-pass"))
	})

	t.Run("wrong password fails", func(t *testing.T) {
		assert.False(t, h.Verify(encoded, "s3cret-Pass"))
		assert.False(t, h.Verify(encoded, ""))
	})

	t.Run("same password hashes differently", func(t *testing.T) {
		second, err := h.Hash("s3cret-pass")
		assert.NoError(t, err)
		assert.NotEqual(t, encoded, second)
		assert.True(t, h.Verify(second, "s3cret-pass"))
	})
}

func TestHasher_VerifyMalformed(t *testing.T) {
	h := testHasher()

	cases := []string{
		"",
		"not-a-hash",
		"$argon2i$v=19$m=8192,t=1,p=1$c2FsdHNhbHQ$aGFzaA",
		"$argon2id$v=18$m=8192,t=1,p=1$c2FsdHNhbHQ$aGFzaA",
		"$argon2id$v=19$m=0,t=0,p=0$c2FsdHNhbHQ$aGFzaA",
		"$argon2id$v=19$m=8192,t=1,p=1$!!!$aGFzaA",
	}
	for _, encoded := range cases {
		assert.False(t, h.Verify(encoded, "anything"), "digest %q must not verify", encoded)
	}
}

func TestHasher_VerifyRejectsExcessiveCost(t *testing.T) {
	h := testHasher()

	// A digest demanding far more memory than we ever produce is refused
	// before any key derivation happens.
	hostile := "$argon2id$v=19$m=1048576,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$aGFzaGhhc2hoYXNoaGFzaA"
	assert.False(t, h.Verify(hostile, "anything"))
}

func TestNewHasher_ZeroFieldsFallBack(t *testing.T) {
	h := password.NewHasher(password.Params{})

	encoded, err := h.Hash("pw")
	assert.NoError(t, err)
	assert.True(t, h.Verify(encoded, "pw"))
}
