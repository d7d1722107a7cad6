package payload

import (
	"fmt"

	"github.com/carbon-dev/carbon-go/pkg/io"
	"github.com/carbon-dev/carbon-go/pkg/util"
)

// BlockTransactionsRequest asks for the transactions occupying the named
// slots of a block being reconstructed.
type BlockTransactionsRequest struct {
	// Hash of the block.
	Hash util.Uint256

	// Indexes are the absolute slot positions being requested.
	Indexes []uint32
}

// DecodeBinary implements the io.Serializable interface.
func (p *BlockTransactionsRequest) DecodeBinary(br *io.BinReader) {
	p.Hash.DecodeBinary(br)
	l := br.ReadVarUint()
	if l > MaxShortIDs {
		br.Err = fmt.Errorf("too many indexes (%d)", l)
		return
	}
	p.Indexes = make([]uint32, l)
	for i := range p.Indexes {
		p.Indexes[i] = br.ReadU32LE()
	}
}

// EncodeBinary implements the io.Serializable interface.
func (p *BlockTransactionsRequest) EncodeBinary(bw *io.BinWriter) {
	p.Hash.EncodeBinary(bw)
	bw.WriteVarUint(uint64(len(p.Indexes)))
	for i := range p.Indexes {
		bw.WriteU32LE(p.Indexes[i])
	}
}
