package block

import (
	"github.com/carbon-dev/carbon-go/pkg/core/transaction"
	"github.com/carbon-dev/carbon-go/pkg/crypto/hash"
	"github.com/carbon-dev/carbon-go/pkg/io"
	"github.com/carbon-dev/carbon-go/pkg/util"
)

// MaxTransactionsPerBlock is the maximum number of transactions per block.
const MaxTransactionsPerBlock = 0x10000

// MaxUnclesPerBlock is the maximum number of uncle headers per block.
const MaxUnclesPerBlock = 32

// Block represents one block in the chain.
type Block struct {
	// The base of the block.
	Header

	// Transaction list.
	Transactions []*transaction.Transaction

	// Uncles are headers of competing blocks referenced by this one.
	Uncles []*Header
}

// New creates a block from the given header, transaction and uncle lists.
func New(h Header, txs []*transaction.Transaction, uncles []*Header) *Block {
	return &Block{
		Header:       h,
		Transactions: txs,
		Uncles:       uncles,
	}
}

// ComputeMerkleRoot computes the Merkle tree root hash based on the list of
// block's transactions.
func (b *Block) ComputeMerkleRoot() util.Uint256 {
	hashes := make([]util.Uint256, len(b.Transactions))
	for i, tx := range b.Transactions {
		hashes[i] = tx.Hash()
	}

	return hash.CalcMerkleRoot(hashes)
}

// RebuildMerkleRoot rebuilds the MerkleRoot of the block.
func (b *Block) RebuildMerkleRoot() {
	b.MerkleRoot = b.ComputeMerkleRoot()
}

// DecodeBinary implements the io.Serializable interface.
func (b *Block) DecodeBinary(br *io.BinReader) {
	b.Header.DecodeBinary(br)
	br.ReadArray(&b.Transactions, MaxTransactionsPerBlock)
	br.ReadArray(&b.Uncles, MaxUnclesPerBlock)
}

// EncodeBinary implements the io.Serializable interface.
func (b *Block) EncodeBinary(bw *io.BinWriter) {
	b.Header.EncodeBinary(bw)
	bw.WriteArray(b.Transactions)
	bw.WriteArray(b.Uncles)
}
