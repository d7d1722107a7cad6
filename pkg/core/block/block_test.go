package block

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carbon-dev/carbon-go/internal/random"
	"github.com/carbon-dev/carbon-go/internal/testserdes"
	"github.com/carbon-dev/carbon-go/pkg/core/transaction"
)

func newTestHeader() *Header {
	return &Header{
		PrevHash:   random.Uint256(),
		MerkleRoot: random.Uint256(),
		Timestamp:  1000,
		Number:     13,
		Difficulty: uint256.NewInt(42),
		Nonce:      100500,
	}
}

func TestHeaderEncodeDecode(t *testing.T) {
	header := newTestHeader()

	data, err := testserdes.EncodeBinary(header)
	require.NoError(t, err)
	decoded := &Header{}
	require.NoError(t, testserdes.DecodeBinary(data, decoded))

	assert.Equal(t, header.PrevHash, decoded.PrevHash)
	assert.Equal(t, header.MerkleRoot, decoded.MerkleRoot)
	assert.Equal(t, header.Number, decoded.Number)
	assert.True(t, header.Difficulty.Eq(decoded.Difficulty))
	// Decoding populates the hash cache.
	assert.True(t, header.Hash().Equals(decoded.Hash()))
}

func TestHeaderHashStable(t *testing.T) {
	header := newTestHeader()
	h := header.Hash()
	// The hash is cached, field changes don't affect it.
	header.Number++
	assert.True(t, h.Equals(header.Hash()))
}

func TestHeaderVerify(t *testing.T) {
	header := newTestHeader()
	require.NoError(t, header.Verify())

	header.Difficulty = uint256.NewInt(0)
	require.ErrorIs(t, header.Verify(), ErrZeroDifficulty)
	header.Difficulty = nil
	require.ErrorIs(t, header.Verify(), ErrZeroDifficulty)
}

func TestBlockMerkleRoot(t *testing.T) {
	txs := []*transaction.Transaction{
		transaction.New([]transaction.Input{{PreviousOutput: transaction.OutPoint{Hash: random.Uint256()}}}, nil),
		transaction.New([]transaction.Input{{PreviousOutput: transaction.OutPoint{Hash: random.Uint256()}}}, nil),
	}
	b := New(*newTestHeader(), txs, nil)
	b.RebuildMerkleRoot()
	require.Equal(t, b.MerkleRoot, b.ComputeMerkleRoot())

	// The root depends on transaction order.
	b2 := New(*newTestHeader(), []*transaction.Transaction{txs[1], txs[0]}, nil)
	b2.RebuildMerkleRoot()
	assert.NotEqual(t, b.MerkleRoot, b2.MerkleRoot)
}

func TestHeaderViewWork(t *testing.T) {
	hv := NewHeaderView(newTestHeader(), uint256.NewInt(100))
	assert.True(t, hv.HasMoreWorkThan(uint256.NewInt(100)))
	assert.True(t, hv.HasMoreWorkThan(uint256.NewInt(99)))
	assert.False(t, hv.HasMoreWorkThan(uint256.NewInt(101)))
}
