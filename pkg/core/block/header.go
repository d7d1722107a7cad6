package block

import (
	"errors"

	"github.com/holiman/uint256"

	"github.com/carbon-dev/carbon-go/pkg/crypto/hash"
	"github.com/carbon-dev/carbon-go/pkg/io"
	"github.com/carbon-dev/carbon-go/pkg/util"
)

// VersionInitial is the default block version.
const VersionInitial uint32 = 0

// ErrZeroDifficulty is returned for headers carrying no work at all.
var ErrZeroDifficulty = errors.New("header with zero difficulty")

// Header holds the base info of a block.
type Header struct {
	// Version of the block, currently only 0.
	Version uint32

	// Hash of the previous block.
	PrevHash util.Uint256

	// Root hash of the transaction list.
	MerkleRoot util.Uint256

	// Timestamp is a millisecond-precision timestamp. The time stamp of
	// each block must be later than the previous block's time stamp.
	Timestamp uint64

	// Number/height of the block, the previous block's number plus 1.
	Number uint64

	// Difficulty is the amount of work this block represents.
	Difficulty *uint256.Int

	// Nonce is the proof-of-work nonce.
	Nonce uint64

	// Hash of this block, computed on the first Hash() call or when decoded.
	hash util.Uint256
}

// Hash returns the hash of the block. Notice that it is cached internally,
// so no matter how you change the Header after the first invocation of this
// method it won't change. To get an updated hash in case you're changing
// the Header please encode/decode it.
func (b *Header) Hash() util.Uint256 {
	if b.hash.Equals(util.Uint256{}) {
		b.createHash()
	}
	return b.hash
}

// DecodeBinary implements the io.Serializable interface. Notice that it
// also automatically updates the internal hash cache, see Hash().
func (b *Header) DecodeBinary(br *io.BinReader) {
	b.Version = br.ReadU32LE()
	br.ReadBytes(b.PrevHash[:])
	br.ReadBytes(b.MerkleRoot[:])
	b.Timestamp = br.ReadU64LE()
	b.Number = br.ReadU64LE()
	var d [32]byte
	br.ReadBytes(d[:])
	b.Difficulty = new(uint256.Int).SetBytes32(d[:])
	b.Nonce = br.ReadU64LE()

	// Make the hash of the block here so we dont need to do this
	// again.
	if br.Err == nil {
		b.createHash()
	}
}

// EncodeBinary implements the io.Serializable interface.
func (b *Header) EncodeBinary(bw *io.BinWriter) {
	bw.WriteU32LE(b.Version)
	bw.WriteBytes(b.PrevHash[:])
	bw.WriteBytes(b.MerkleRoot[:])
	bw.WriteU64LE(b.Timestamp)
	bw.WriteU64LE(b.Number)
	d := b.difficulty().Bytes32()
	bw.WriteBytes(d[:])
	bw.WriteU64LE(b.Nonce)
}

// Work returns the difficulty of this single header as a 256-bit value.
func (b *Header) Work() *uint256.Int {
	return new(uint256.Int).Set(b.difficulty())
}

func (b *Header) difficulty() *uint256.Int {
	if b.Difficulty == nil {
		return uint256.NewInt(0)
	}
	return b.Difficulty
}

// createHash creates the hash of the header.
func (b *Header) createHash() {
	buf := io.NewBufBinWriter()
	// No error can occur while encoding hashable fields.
	b.EncodeBinary(buf.BinWriter)

	b.hash = hash.Blake2b(buf.Bytes())
}

// Verify checks that the header is well-formed on its own, chain context
// rules are the chain provider's business.
func (b *Header) Verify() error {
	if b.Difficulty == nil || b.Difficulty.IsZero() {
		return ErrZeroDifficulty
	}
	return nil
}
