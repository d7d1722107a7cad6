package transaction

import (
	"github.com/carbon-dev/carbon-go/pkg/io"
)

// MaxUnlockSize is the maximum size of an input unlock script.
const MaxUnlockSize = 1024

// Input represents a transaction input consuming a previous output.
type Input struct {
	// PreviousOutput is the output being spent.
	PreviousOutput OutPoint `json:"previous_output"`

	// Unlock is the script proving the right to spend PreviousOutput.
	Unlock []byte `json:"unlock"`
}

// DecodeBinary implements the io.Serializable interface.
func (in *Input) DecodeBinary(br *io.BinReader) {
	in.PreviousOutput.DecodeBinary(br)
	in.Unlock = br.ReadVarBytes(MaxUnlockSize)
}

// EncodeBinary implements the io.Serializable interface.
func (in *Input) EncodeBinary(bw *io.BinWriter) {
	in.PreviousOutput.EncodeBinary(bw)
	bw.WriteVarBytes(in.Unlock)
}
