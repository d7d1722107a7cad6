package transaction

import (
	"github.com/carbon-dev/carbon-go/pkg/crypto/hash"
	"github.com/carbon-dev/carbon-go/pkg/io"
	"github.com/carbon-dev/carbon-go/pkg/util"
)

// MaxTransactionItems is the maximum number of deps/inputs/outputs a single
// transaction can have.
const MaxTransactionItems = 0x10000

// Transaction is a chain transaction spending a set of previous outputs and
// creating a set of new ones.
type Transaction struct {
	// Version of the transaction format, currently 0.
	Version uint32 `json:"version"`

	// Deps are cells the transaction depends on without consuming them.
	Deps []OutPoint `json:"deps"`

	// Inputs are the cells consumed by this transaction.
	Inputs []Input `json:"inputs"`

	// Outputs are the cells created by this transaction.
	Outputs []Output `json:"outputs"`

	// Hash of the transaction, computed on the first Hash() call or when
	// decoded.
	hash util.Uint256
}

// New returns a transaction with the given inputs and outputs.
func New(inputs []Input, outputs []Output) *Transaction {
	return &Transaction{
		Inputs:  inputs,
		Outputs: outputs,
	}
}

// Hash returns the hash of the transaction. It is cached internally,
// changing the transaction after the first call to this method won't
// change the value returned, encode/decode the transaction to refresh it.
func (t *Transaction) Hash() util.Uint256 {
	if t.hash.Equals(util.Uint256{}) {
		if t.createHash() != nil {
			panic("failed to compute hash!")
		}
	}
	return t.hash
}

// DecodeBinary implements the io.Serializable interface. It also computes
// the hash cache, see Hash().
func (t *Transaction) DecodeBinary(br *io.BinReader) {
	t.Version = br.ReadU32LE()
	br.ReadArray(&t.Deps, MaxTransactionItems)
	br.ReadArray(&t.Inputs, MaxTransactionItems)
	br.ReadArray(&t.Outputs, MaxTransactionItems)
	if br.Err == nil {
		br.Err = t.createHash()
	}
}

// EncodeBinary implements the io.Serializable interface.
func (t *Transaction) EncodeBinary(bw *io.BinWriter) {
	bw.WriteU32LE(t.Version)
	bw.WriteArray(t.Deps)
	bw.WriteArray(t.Inputs)
	bw.WriteArray(t.Outputs)
}

func (t *Transaction) createHash() error {
	buf := io.NewBufBinWriter()
	t.EncodeBinary(buf.BinWriter)
	if buf.Err != nil {
		return buf.Err
	}
	t.hash = hash.Blake2b(buf.Bytes())
	return nil
}
