package transaction

import (
	"github.com/carbon-dev/carbon-go/pkg/io"
	"github.com/carbon-dev/carbon-go/pkg/util"
)

// OutPoint references an output of a previous transaction by the
// transaction hash and the output index.
type OutPoint struct {
	Hash  util.Uint256 `json:"hash"`
	Index uint32       `json:"index"`
}

// DecodeBinary implements the io.Serializable interface.
func (o *OutPoint) DecodeBinary(br *io.BinReader) {
	o.Hash.DecodeBinary(br)
	o.Index = br.ReadU32LE()
}

// EncodeBinary implements the io.Serializable interface.
func (o *OutPoint) EncodeBinary(bw *io.BinWriter) {
	o.Hash.EncodeBinary(bw)
	bw.WriteU32LE(o.Index)
}
