// Package mempool contains the transaction pool used by the relay engine.
// Admission policy (fees, validity) belongs to the caller, the pool itself
// only provides bounded indexed storage with deduplication.
package mempool

import (
	"errors"
	"sync"

	"github.com/carbon-dev/carbon-go/pkg/core/transaction"
	"github.com/carbon-dev/carbon-go/pkg/util"
)

var (
	// ErrDup is returned when the transaction is already present in the pool.
	ErrDup = errors.New("already in the memory pool")
	// ErrOOM is returned when the pool is full and can't accept anything.
	ErrOOM = errors.New("out of memory")
)

// Pool stores the unconfirmed transactions.
type Pool struct {
	lock     sync.RWMutex
	verified map[util.Uint256]*transaction.Transaction
	capacity int
}

// New returns a new Pool struct.
func New(capacity int) *Pool {
	return &Pool{
		verified: make(map[util.Uint256]*transaction.Transaction, capacity),
		capacity: capacity,
	}
}

// Count returns the total number of uncofirmed transactions.
func (mp *Pool) Count() int {
	mp.lock.RLock()
	defer mp.lock.RUnlock()
	return len(mp.verified)
}

// ContainsKey checks if the transactions hash is in the Pool.
func (mp *Pool) ContainsKey(hash util.Uint256) bool {
	mp.lock.RLock()
	defer mp.lock.RUnlock()

	_, ok := mp.verified[hash]
	return ok
}

// TryGetValue returns a transaction if it exists in the memory pool, ok
// tells if it was found.
func (mp *Pool) TryGetValue(hash util.Uint256) (*transaction.Transaction, bool) {
	mp.lock.RLock()
	defer mp.lock.RUnlock()

	tx, ok := mp.verified[hash]
	return tx, ok
}

// Add tries to add the given transaction to the Pool.
func (mp *Pool) Add(t *transaction.Transaction) error {
	mp.lock.Lock()
	defer mp.lock.Unlock()

	if _, ok := mp.verified[t.Hash()]; ok {
		return ErrDup
	}
	if len(mp.verified) >= mp.capacity {
		return ErrOOM
	}
	mp.verified[t.Hash()] = t
	return nil
}

// Remove removes an item from the mempool if it exists there (and does
// nothing if it doesn't).
func (mp *Pool) Remove(hash util.Uint256) {
	mp.lock.Lock()
	delete(mp.verified, hash)
	mp.lock.Unlock()
}

// GetVerifiedTransactions returns a snapshot of all transactions currently
// in the pool.
func (mp *Pool) GetVerifiedTransactions() []*transaction.Transaction {
	mp.lock.RLock()
	defer mp.lock.RUnlock()

	var t = make([]*transaction.Transaction, 0, len(mp.verified))
	for _, tx := range mp.verified {
		t = append(t, tx)
	}

	return t
}

// RemoveStale drops all transactions matched by the given predicate.
func (mp *Pool) RemoveStale(isStale func(*transaction.Transaction) bool) {
	mp.lock.Lock()
	for h, tx := range mp.verified {
		if isStale(tx) {
			delete(mp.verified, h)
		}
	}
	mp.lock.Unlock()
}
