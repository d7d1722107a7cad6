package payload

import (
	"github.com/carbon-dev/carbon-go/pkg/core/transaction"
	"github.com/carbon-dev/carbon-go/pkg/io"
	"github.com/carbon-dev/carbon-go/pkg/util"
)

// BlockTransactions answers a BlockTransactionsRequest with the requested
// transactions in request order.
type BlockTransactions struct {
	// Hash of the block.
	Hash util.Uint256

	// Transactions in the order their slots were requested.
	Transactions []*transaction.Transaction
}

// DecodeBinary implements the io.Serializable interface.
func (p *BlockTransactions) DecodeBinary(br *io.BinReader) {
	p.Hash.DecodeBinary(br)
	br.ReadArray(&p.Transactions, MaxShortIDs)
}

// EncodeBinary implements the io.Serializable interface.
func (p *BlockTransactions) EncodeBinary(bw *io.BinWriter) {
	p.Hash.EncodeBinary(bw)
	bw.WriteArray(p.Transactions)
}
