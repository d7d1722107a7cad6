package transaction

import (
	"github.com/carbon-dev/carbon-go/pkg/io"
	"github.com/carbon-dev/carbon-go/pkg/util"
)

// MaxOutputDataSize is the maximum size of data carried by a single output.
const MaxOutputDataSize = 0x10000

// Output represents a transaction output cell.
type Output struct {
	// Capacity is the value assigned to the cell.
	Capacity uint64 `json:"capacity"`

	// Data is the payload stored in the cell.
	Data []byte `json:"data"`

	// Lock is the hash of the script guarding the cell.
	Lock util.Uint256 `json:"lock"`
}

// DecodeBinary implements the io.Serializable interface.
func (o *Output) DecodeBinary(br *io.BinReader) {
	o.Capacity = br.ReadU64LE()
	o.Data = br.ReadVarBytes(MaxOutputDataSize)
	o.Lock.DecodeBinary(br)
}

// EncodeBinary implements the io.Serializable interface.
func (o *Output) EncodeBinary(bw *io.BinWriter) {
	bw.WriteU64LE(o.Capacity)
	bw.WriteVarBytes(o.Data)
	o.Lock.EncodeBinary(bw)
}
