// Package blockchainer defines the chain-provider interface the network
// protocols are built against. Validation, storage and reorg logic live
// behind it.
package blockchainer

import (
	"github.com/carbon-dev/carbon-go/pkg/core/block"
	"github.com/carbon-dev/carbon-go/pkg/util"
)

// Blockchainer is an interface that abstracts the implementation of the
// blockchain. The implementation is expected to be interior-mutable and
// safe for concurrent use.
type Blockchainer interface {
	// TipHeader returns the current tip of the best chain together with
	// its cumulative difficulty.
	TipHeader() *block.HeaderView
	// BlockHeight returns the number of the topmost fully stored block.
	BlockHeight() uint64
	// HeaderHeight returns the number of the topmost known header.
	HeaderHeight() uint64
	// GetBlock returns the block with the given hash.
	GetBlock(hash util.Uint256) (*block.Block, error)
	// GetHeader returns the header with the given hash, main chain or not.
	GetHeader(hash util.Uint256) (*block.Header, error)
	// GetHeaderView returns the header with the given hash together with
	// the cumulative difficulty of the chain ending at it.
	GetHeaderView(hash util.Uint256) (*block.HeaderView, error)
	// GetBlockHash returns the main-chain block hash at the given height.
	GetBlockHash(number uint64) (util.Uint256, error)
	// HasBlock tells if the full block with the given hash is stored.
	HasBlock(hash util.Uint256) bool
	// AddHeaders processes a batch of contiguous headers extending the
	// header chain.
	AddHeaders(headers ...*block.Header) error
	// AddBlock validates and stores the given block.
	AddBlock(b *block.Block) error
}
