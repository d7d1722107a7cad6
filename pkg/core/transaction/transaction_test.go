package transaction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carbon-dev/carbon-go/internal/random"
	"github.com/carbon-dev/carbon-go/internal/testserdes"
)

func newTestTx() *Transaction {
	return New([]Input{{
		PreviousOutput: OutPoint{Hash: random.Uint256(), Index: 1},
		Unlock:         random.Bytes(8),
	}}, []Output{{
		Capacity: 100500,
		Data:     random.Bytes(16),
		Lock:     random.Uint256(),
	}})
}

func TestTransactionEncodeDecode(t *testing.T) {
	tx := newTestTx()

	data, err := testserdes.EncodeBinary(tx)
	require.NoError(t, err)
	decoded := &Transaction{}
	require.NoError(t, testserdes.DecodeBinary(data, decoded))

	assert.Equal(t, tx.Inputs, decoded.Inputs)
	assert.Equal(t, tx.Outputs, decoded.Outputs)
	assert.True(t, tx.Hash().Equals(decoded.Hash()))
}

func TestTransactionHashDiffers(t *testing.T) {
	tx1 := newTestTx()
	tx2 := newTestTx()
	assert.False(t, tx1.Hash().Equals(tx2.Hash()))
}

func TestDecodeBadUnlock(t *testing.T) {
	tx := New([]Input{{Unlock: make([]byte, MaxUnlockSize+1)}}, nil)
	data, err := testserdes.EncodeBinary(tx)
	require.NoError(t, err)
	require.Error(t, testserdes.DecodeBinary(data, &Transaction{}))
}
