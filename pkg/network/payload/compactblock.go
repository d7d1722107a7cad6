package payload

import (
	"encoding/binary"
	"fmt"

	"github.com/twmb/murmur3"

	"github.com/carbon-dev/carbon-go/pkg/core/block"
	"github.com/carbon-dev/carbon-go/pkg/core/transaction"
	"github.com/carbon-dev/carbon-go/pkg/crypto/hash"
	"github.com/carbon-dev/carbon-go/pkg/io"
	"github.com/carbon-dev/carbon-go/pkg/util"
)

// ShortIDSize is the size of a short transaction id in bytes.
const ShortIDSize = 6

// MaxShortIDs is the maximum number of short ids in one compact block.
const MaxShortIDs = 0x10000

// ShortID is a compact reference to a mempool transaction, derived from the
// transaction hash and two per-block keys.
type ShortID [ShortIDSize]byte

// DecodeBinary implements the io.Serializable interface.
func (s *ShortID) DecodeBinary(br *io.BinReader) {
	br.ReadBytes(s[:])
}

// EncodeBinary implements the io.Serializable interface.
func (s ShortID) EncodeBinary(bw *io.BinWriter) {
	bw.WriteBytes(s[:])
}

// ShortIDKeys derives the pair of short-id keys for a block. The keys are
// the first two little-endian words of blake2b-256 over the header hash and
// the compact-block nonce. Endianness is wire-visible through short-id
// matching, keep it stable.
func ShortIDKeys(nonce uint64, h *block.Header) (uint64, uint64) {
	buf := make([]byte, util.Uint256Size+8)
	headerHash := h.Hash()
	copy(buf, headerHash.BytesBE())
	binary.LittleEndian.PutUint64(buf[util.Uint256Size:], nonce)

	digest := hash.Blake2b(buf)
	key0 := binary.LittleEndian.Uint64(digest[0:8])
	key1 := binary.LittleEndian.Uint64(digest[8:16])
	return key0, key1
}

// ShortTransactionID computes the short id of a transaction hash under the
// given key pair.
func ShortTransactionID(key0, key1 uint64, txHash util.Uint256) ShortID {
	h1, _ := murmur3.SeedSum128(key0, key1, txHash.BytesBE())

	var (
		s ShortID
		b [8]byte
	)
	binary.LittleEndian.PutUint64(b[:], h1)
	copy(s[:], b[:ShortIDSize])
	return s
}

// PrefilledTransaction is a transaction sent in-line with the compact block
// at an absolute slot index.
type PrefilledTransaction struct {
	Index       uint32
	Transaction *transaction.Transaction
}

// DecodeBinary implements the io.Serializable interface.
func (p *PrefilledTransaction) DecodeBinary(br *io.BinReader) {
	p.Index = br.ReadU32LE()
	p.Transaction = &transaction.Transaction{}
	p.Transaction.DecodeBinary(br)
}

// EncodeBinary implements the io.Serializable interface.
func (p *PrefilledTransaction) EncodeBinary(bw *io.BinWriter) {
	bw.WriteU32LE(p.Index)
	p.Transaction.EncodeBinary(bw)
}

// CompactBlock carries a block as a header plus short references to
// transactions the receiver is expected to have pooled already.
type CompactBlock struct {
	// Header of the block.
	Header block.Header

	// Nonce salts the short-id keys, chosen by the sender.
	Nonce uint64

	// ShortIDs reference the non-prefilled transactions in slot order.
	ShortIDs []ShortID

	// Prefilled are transactions the sender predicts the receiver does
	// not have, carried in full.
	Prefilled []PrefilledTransaction

	// Uncles are carried verbatim.
	Uncles []*block.Header
}

// NewCompactBlock compresses the given block under the given nonce with no
// prefilled transactions.
func NewCompactBlock(b *block.Block, nonce uint64) *CompactBlock {
	cb := &CompactBlock{
		Header: b.Header,
		Nonce:  nonce,
		Uncles: b.Uncles,
	}
	key0, key1 := ShortIDKeys(nonce, &cb.Header)
	cb.ShortIDs = make([]ShortID, len(b.Transactions))
	for i, tx := range b.Transactions {
		cb.ShortIDs[i] = ShortTransactionID(key0, key1, tx.Hash())
	}
	return cb
}

// TxCount returns the total number of transaction slots in the block.
func (c *CompactBlock) TxCount() int {
	return len(c.ShortIDs) + len(c.Prefilled)
}

// DecodeBinary implements the io.Serializable interface.
func (c *CompactBlock) DecodeBinary(br *io.BinReader) {
	c.Header.DecodeBinary(br)
	c.Nonce = br.ReadU64LE()
	br.ReadArray(&c.ShortIDs, MaxShortIDs)
	br.ReadArray(&c.Prefilled, MaxShortIDs)
	br.ReadArray(&c.Uncles, block.MaxUnclesPerBlock)
	if br.Err == nil {
		// Prefilled indexes must be strictly increasing, a repeated slot
		// would leave more short-id slots than short ids.
		for i, p := range c.Prefilled {
			if int(p.Index) >= c.TxCount() {
				br.Err = fmt.Errorf("prefilled index %d out of range", p.Index)
				return
			}
			if i > 0 && p.Index <= c.Prefilled[i-1].Index {
				br.Err = fmt.Errorf("prefilled index %d out of order", p.Index)
				return
			}
		}
	}
}

// EncodeBinary implements the io.Serializable interface.
func (c *CompactBlock) EncodeBinary(bw *io.BinWriter) {
	c.Header.EncodeBinary(bw)
	bw.WriteU64LE(c.Nonce)
	bw.WriteArray(c.ShortIDs)
	bw.WriteArray(c.Prefilled)
	bw.WriteArray(c.Uncles)
}
