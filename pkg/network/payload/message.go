// Package payload defines the wire messages exchanged by the sync and
// relay protocols. The outer envelope carries exactly one tagged message.
package payload

import (
	"fmt"

	"github.com/carbon-dev/carbon-go/pkg/core/block"
	"github.com/carbon-dev/carbon-go/pkg/core/transaction"
	"github.com/carbon-dev/carbon-go/pkg/io"
)

// CommandType represents the type of a message in the envelope.
type CommandType byte

// Valid protocol commands.
const (
	CMDGetHeaders CommandType = 0x01
	CMDHeaders    CommandType = 0x02
	CMDGetData    CommandType = 0x03
	CMDBlock      CommandType = 0x04
	CMDTX         CommandType = 0x05

	CMDCompactBlock             CommandType = 0x10
	CMDBlockTransactionsRequest CommandType = 0x11
	CMDBlockTransactions        CommandType = 0x12
)

// String implements the fmt.Stringer interface.
func (c CommandType) String() string {
	switch c {
	case CMDGetHeaders:
		return "getheaders"
	case CMDHeaders:
		return "headers"
	case CMDGetData:
		return "getdata"
	case CMDBlock:
		return "block"
	case CMDTX:
		return "tx"
	case CMDCompactBlock:
		return "cmpctblock"
	case CMDBlockTransactionsRequest:
		return "getblocktxn"
	case CMDBlockTransactions:
		return "blocktxn"
	default:
		return fmt.Sprintf("UNKNOWN(0x%02x)", byte(c))
	}
}

// Message is the envelope carrying one protocol message.
type Message struct {
	Command CommandType
	Payload io.Serializable
}

// NewMessage returns a new message with the given payload.
func NewMessage(cmd CommandType, p io.Serializable) *Message {
	return &Message{
		Command: cmd,
		Payload: p,
	}
}

// DecodeBinary implements the io.Serializable interface.
func (m *Message) DecodeBinary(br *io.BinReader) {
	m.Command = CommandType(br.ReadB())
	if br.Err != nil {
		return
	}
	switch m.Command {
	case CMDGetHeaders:
		m.Payload = &GetHeaders{}
	case CMDHeaders:
		m.Payload = &Headers{}
	case CMDGetData:
		m.Payload = &GetData{}
	case CMDBlock:
		m.Payload = &block.Block{}
	case CMDTX:
		m.Payload = &transaction.Transaction{}
	case CMDCompactBlock:
		m.Payload = &CompactBlock{}
	case CMDBlockTransactionsRequest:
		m.Payload = &BlockTransactionsRequest{}
	case CMDBlockTransactions:
		m.Payload = &BlockTransactions{}
	default:
		br.Err = fmt.Errorf("can't decode command %02x", byte(m.Command))
		return
	}
	m.Payload.DecodeBinary(br)
}

// EncodeBinary implements the io.Serializable interface.
func (m *Message) EncodeBinary(bw *io.BinWriter) {
	bw.WriteB(byte(m.Command))
	m.Payload.EncodeBinary(bw)
}

// Bytes serializes the message to a newly allocated buffer.
func (m *Message) Bytes() ([]byte, error) {
	w := io.NewBufBinWriter()
	m.EncodeBinary(w.BinWriter)
	if w.Err != nil {
		return nil, w.Err
	}
	return w.Bytes(), nil
}

// FromBytes deserializes the message from the given buffer.
func FromBytes(data []byte) (*Message, error) {
	m := &Message{}
	r := io.NewBinReaderFromBuf(data)
	m.DecodeBinary(r)
	if r.Err != nil {
		return nil, r.Err
	}
	return m, nil
}
