package pin_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Harshit24Soni/Electric-Vehicle-Showroom-ERP/internal/pin"
)

func testHasher() *pin.Hasher {
	// Low-cost parameters keep the suite fast; the encoding and verify
	// paths are identical to production parameters.
	return pin.NewHasher(pin.Params{Memory: 8 * 1024, Iterations: 1, Parallelism: 1})
}

func TestHashRoundTrip(t *testing.T) {
	hasher := testHasher()

	encoded, err := hasher.Hash("123456")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(encoded, "$argon2id$"))

	require.True(t, hasher.Verify("123456", encoded))
	require.False(t, hasher.Verify("654321", encoded))
}

func TestHashIsSalted(t *testing.T) {
	hasher := testHasher()

	first, err := hasher.Hash("123456")
	require.NoError(t, err)
	second, err := hasher.Hash("123456")
	require.NoError(t, err)

	require.NotEqual(t, first, second)
	require.True(t, hasher.Verify("123456", first))
	require.True(t, hasher.Verify("123456", second))
}

func TestVerifyNeverPanicsOnBadHash(t *testing.T) {
	hasher := testHasher()

	require.False(t, hasher.Verify("123456", ""))
	require.False(t, hasher.Verify("123456", "not-a-hash"))
	require.False(t, hasher.Verify("123456", "$argon2id$v=19$m=8192,t=1,p=1$bad!salt$bad!key"))
	require.False(t, hasher.Verify("123456", "$argon2i$v=19$m=8192,t=1,p=1$c2FsdA$a2V5"))
}
