package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carbon-dev/carbon-go/pkg/util"
)

func TestBlake2b(t *testing.T) {
	input := []byte("hello")
	data := Blake2b(input)

	expected := "324dcf027dd4a30a932c441f365a25e86b173defa4b8e58948253471b81b72cf"
	actual := data.StringBE()

	assert.Equal(t, expected, actual)
	// Same input, same digest.
	assert.Equal(t, data, Blake2b(input))
}

func TestCalcMerkleRoot(t *testing.T) {
	// No transactions.
	assert.Equal(t, util.Uint256{}, CalcMerkleRoot([]util.Uint256{}))

	// One transaction is its own root.
	h := Blake2b([]byte("a"))
	assert.Equal(t, h, CalcMerkleRoot([]util.Uint256{h}))

	// Pair hashing is position-dependent.
	h2 := Blake2b([]byte("b"))
	r1 := CalcMerkleRoot([]util.Uint256{h, h2})
	r2 := CalcMerkleRoot([]util.Uint256{h2, h})
	require.NotEqual(t, r1, r2)

	// An odd number of hashes duplicates the last one.
	r3 := CalcMerkleRoot([]util.Uint256{h, h2, h2})
	r4 := CalcMerkleRoot([]util.Uint256{h, h2, h2, h2})
	assert.Equal(t, r4, r3)
}
