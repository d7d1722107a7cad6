// Package fakechain implements the Blockchainer interface for testing, it
// keeps everything in memory and does no real validation.
package fakechain

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/holiman/uint256"

	"github.com/carbon-dev/carbon-go/pkg/core/block"
	"github.com/carbon-dev/carbon-go/pkg/util"
)

// FakeChain implements the Blockchainer interface, but does not provide
// real functionality.
type FakeChain struct {
	lock      sync.RWMutex
	blocks    map[util.Uint256]*block.Block
	headers   map[util.Uint256]*block.Header
	work      map[util.Uint256]*uint256.Int
	mainChain []util.Uint256
	tip       util.Uint256
	height    uint64

	// AddBlockCalls counts AddBlock invocations.
	AddBlockCalls int32
	// AddBlockF replaces the validation outcome when set.
	AddBlockF func(*block.Block) error
}

// NewFakeChain returns a new FakeChain with a zero-timestamp genesis of
// difficulty 1.
func NewFakeChain() *FakeChain {
	return NewFakeChainWithGenesis(1)
}

// NewFakeChainWithGenesis returns a new FakeChain whose genesis carries
// the given difficulty.
func NewFakeChainWithGenesis(difficulty uint64) *FakeChain {
	genesis := &block.Block{Header: block.Header{
		Difficulty: uint256.NewInt(difficulty),
	}}
	chain := &FakeChain{
		blocks:  make(map[util.Uint256]*block.Block),
		headers: make(map[util.Uint256]*block.Header),
		work:    make(map[util.Uint256]*uint256.Int),
	}
	h := genesis.Hash()
	chain.blocks[h] = genesis
	chain.headers[h] = &genesis.Header
	chain.work[h] = genesis.Header.Work()
	chain.mainChain = []util.Uint256{h}
	chain.tip = h
	return chain
}

// TipHeader implements the Blockchainer interface.
func (chain *FakeChain) TipHeader() *block.HeaderView {
	chain.lock.RLock()
	defer chain.lock.RUnlock()
	return block.NewHeaderView(chain.headers[chain.tip], chain.work[chain.tip])
}

// BlockHeight implements the Blockchainer interface.
func (chain *FakeChain) BlockHeight() uint64 {
	chain.lock.RLock()
	defer chain.lock.RUnlock()
	return chain.height
}

// HeaderHeight implements the Blockchainer interface.
func (chain *FakeChain) HeaderHeight() uint64 {
	chain.lock.RLock()
	defer chain.lock.RUnlock()
	return chain.headers[chain.tip].Number
}

// GetBlock implements the Blockchainer interface.
func (chain *FakeChain) GetBlock(hash util.Uint256) (*block.Block, error) {
	chain.lock.RLock()
	defer chain.lock.RUnlock()
	if b, ok := chain.blocks[hash]; ok {
		return b, nil
	}
	return nil, errors.New("not found")
}

// GetHeader implements the Blockchainer interface.
func (chain *FakeChain) GetHeader(hash util.Uint256) (*block.Header, error) {
	chain.lock.RLock()
	defer chain.lock.RUnlock()
	if h, ok := chain.headers[hash]; ok {
		return h, nil
	}
	return nil, errors.New("not found")
}

// GetHeaderView implements the Blockchainer interface.
func (chain *FakeChain) GetHeaderView(hash util.Uint256) (*block.HeaderView, error) {
	chain.lock.RLock()
	defer chain.lock.RUnlock()
	h, ok := chain.headers[hash]
	if !ok {
		return nil, errors.New("not found")
	}
	return block.NewHeaderView(h, chain.work[hash]), nil
}

// GetBlockHash implements the Blockchainer interface.
func (chain *FakeChain) GetBlockHash(number uint64) (util.Uint256, error) {
	chain.lock.RLock()
	defer chain.lock.RUnlock()
	if number >= uint64(len(chain.mainChain)) {
		return util.Uint256{}, fmt.Errorf("no block at height %d", number)
	}
	return chain.mainChain[number], nil
}

// HasBlock implements the Blockchainer interface.
func (chain *FakeChain) HasBlock(hash util.Uint256) bool {
	chain.lock.RLock()
	defer chain.lock.RUnlock()
	_, ok := chain.blocks[hash]
	return ok
}

// AddHeaders implements the Blockchainer interface.
func (chain *FakeChain) AddHeaders(headers ...*block.Header) error {
	chain.lock.Lock()
	defer chain.lock.Unlock()
	for _, h := range headers {
		if err := chain.addHeader(h); err != nil {
			return err
		}
	}
	return nil
}

func (chain *FakeChain) addHeader(h *block.Header) error {
	hash := h.Hash()
	if _, ok := chain.headers[hash]; ok {
		return nil
	}
	parentWork, ok := chain.work[h.PrevHash]
	if !ok {
		return errors.New("unknown parent")
	}
	chain.headers[hash] = h
	work := new(uint256.Int).Add(parentWork, h.Work())
	chain.work[hash] = work

	if work.Cmp(chain.work[chain.tip]) > 0 {
		chain.tip = hash
		if h.Number > 0 && h.Number == uint64(len(chain.mainChain)) && chain.mainChain[h.Number-1].Equals(h.PrevHash) {
			chain.mainChain = append(chain.mainChain, hash)
		} else {
			chain.rebuildMainChain(h)
		}
	}
	return nil
}

func (chain *FakeChain) rebuildMainChain(tip *block.Header) {
	hashes := make([]util.Uint256, tip.Number+1)
	h := tip
	for {
		hashes[h.Number] = h.Hash()
		if h.Number == 0 {
			break
		}
		h = chain.headers[h.PrevHash]
	}
	chain.mainChain = hashes
}

// AddBlock implements the Blockchainer interface.
func (chain *FakeChain) AddBlock(b *block.Block) error {
	atomic.AddInt32(&chain.AddBlockCalls, 1)
	if chain.AddBlockF != nil {
		if err := chain.AddBlockF(b); err != nil {
			return err
		}
	}
	chain.lock.Lock()
	defer chain.lock.Unlock()
	if err := chain.addHeader(&b.Header); err != nil {
		return err
	}
	chain.blocks[b.Hash()] = b
	for chain.height+1 < uint64(len(chain.mainChain)) {
		if _, ok := chain.blocks[chain.mainChain[chain.height+1]]; !ok {
			break
		}
		chain.height++
	}
	return nil
}
