package payload

import (
	"github.com/carbon-dev/carbon-go/pkg/io"
	"github.com/carbon-dev/carbon-go/pkg/util"
)

// InventoryType is the type of an inventory item.
type InventoryType byte

// Possible inventory types.
const (
	// TXType means "transaction".
	TXType InventoryType = 0x01

	// BlockType means "block".
	BlockType InventoryType = 0x02
)

// String implements the fmt.Stringer interface.
func (i InventoryType) String() string {
	switch i {
	case TXType:
		return "TX"
	case BlockType:
		return "block"
	default:
		return "unknown inventory type"
	}
}

// Valid returns true if the inventory type is of a known kind.
func (i InventoryType) Valid() bool {
	return i == BlockType || i == TXType
}

// InvVect identifies one inventory item.
type InvVect struct {
	// Type of the object being referenced.
	Type InventoryType

	// Hash of the object.
	Hash util.Uint256
}

// DecodeBinary implements the io.Serializable interface.
func (v *InvVect) DecodeBinary(br *io.BinReader) {
	v.Type = InventoryType(br.ReadB())
	v.Hash.DecodeBinary(br)
}

// EncodeBinary implements the io.Serializable interface.
func (v *InvVect) EncodeBinary(bw *io.BinWriter) {
	bw.WriteB(byte(v.Type))
	v.Hash.EncodeBinary(bw)
}
