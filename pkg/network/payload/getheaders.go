package payload

import (
	"fmt"

	"github.com/carbon-dev/carbon-go/pkg/io"
	"github.com/carbon-dev/carbon-go/pkg/util"
)

// MaxLocatorHashes is the maximum number of hashes in a block locator. The
// locator is geometrically spaced, 64 entries cover any practical chain.
const MaxLocatorHashes = 64

// GetHeaders asks the remote side for headers following the latest common
// ancestor identified by the locator.
type GetHeaders struct {
	// Version of the protocol.
	Version uint32

	// BlockLocatorHashes is a sparse list of block hashes spaced
	// geometrically backward from the sender's tip.
	BlockLocatorHashes []util.Uint256

	// HashStop is where header enumeration stops, zero means "as many as
	// fit in one message".
	HashStop util.Uint256
}

// NewGetHeaders returns a GetHeaders object for the given locator.
func NewGetHeaders(locator []util.Uint256, stop util.Uint256) *GetHeaders {
	return &GetHeaders{
		BlockLocatorHashes: locator,
		HashStop:           stop,
	}
}

// DecodeBinary implements the io.Serializable interface.
func (p *GetHeaders) DecodeBinary(br *io.BinReader) {
	p.Version = br.ReadU32LE()
	lenStart := br.ReadVarUint()
	if lenStart > MaxLocatorHashes {
		br.Err = fmt.Errorf("too many locator hashes (%d)", lenStart)
		return
	}
	p.BlockLocatorHashes = make([]util.Uint256, lenStart)
	for i := range p.BlockLocatorHashes {
		br.ReadBytes(p.BlockLocatorHashes[i][:])
	}
	br.ReadBytes(p.HashStop[:])
}

// EncodeBinary implements the io.Serializable interface.
func (p *GetHeaders) EncodeBinary(bw *io.BinWriter) {
	bw.WriteU32LE(p.Version)
	bw.WriteVarUint(uint64(len(p.BlockLocatorHashes)))
	for i := range p.BlockLocatorHashes {
		bw.WriteBytes(p.BlockLocatorHashes[i][:])
	}
	bw.WriteBytes(p.HashStop[:])
}
