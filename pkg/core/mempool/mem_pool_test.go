package mempool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carbon-dev/carbon-go/internal/random"
	"github.com/carbon-dev/carbon-go/pkg/core/transaction"
)

func newTestTx() *transaction.Transaction {
	return transaction.New([]transaction.Input{{
		PreviousOutput: transaction.OutPoint{Hash: random.Uint256()},
	}}, nil)
}

func TestMemPoolAddRemove(t *testing.T) {
	mp := New(10)
	tx := newTestTx()

	_, ok := mp.TryGetValue(tx.Hash())
	require.Equal(t, false, ok)
	require.NoError(t, mp.Add(tx))
	// Re-adding should fail.
	require.ErrorIs(t, mp.Add(tx), ErrDup)
	tx2, ok := mp.TryGetValue(tx.Hash())
	require.Equal(t, true, ok)
	require.Equal(t, tx, tx2)
	require.True(t, mp.ContainsKey(tx.Hash()))

	mp.Remove(tx.Hash())
	_, ok = mp.TryGetValue(tx.Hash())
	require.Equal(t, false, ok)
	assert.Equal(t, 0, mp.Count())
	// Removing the missing tx is a no-op.
	mp.Remove(tx.Hash())
}

func TestMemPoolCapacity(t *testing.T) {
	mp := New(3)
	for i := 0; i < 3; i++ {
		require.NoError(t, mp.Add(newTestTx()))
	}
	require.ErrorIs(t, mp.Add(newTestTx()), ErrOOM)
	assert.Equal(t, 3, mp.Count())
}

func TestGetVerifiedTransactions(t *testing.T) {
	mp := New(10)
	txs := make(map[*transaction.Transaction]bool)
	for i := 0; i < 5; i++ {
		tx := newTestTx()
		txs[tx] = true
		require.NoError(t, mp.Add(tx))
	}
	verified := mp.GetVerifiedTransactions()
	require.Len(t, verified, 5)
	for _, tx := range verified {
		assert.True(t, txs[tx])
	}
}

func TestRemoveStale(t *testing.T) {
	mp := New(10)
	keep := newTestTx()
	drop := newTestTx()
	require.NoError(t, mp.Add(keep))
	require.NoError(t, mp.Add(drop))

	mp.RemoveStale(func(tx *transaction.Transaction) bool {
		return tx.Hash().Equals(drop.Hash())
	})
	assert.True(t, mp.ContainsKey(keep.Hash()))
	assert.False(t, mp.ContainsKey(drop.Hash()))
}
