package payload

import (
	"github.com/carbon-dev/carbon-go/pkg/io"
	"github.com/carbon-dev/carbon-go/pkg/util"
)

// MaxInventoryItems is the maximum number of items in one GetData message.
const MaxInventoryItems = 50000

// GetData requests the objects named by the inventory list.
type GetData struct {
	Inventory []InvVect
}

// NewGetData returns a GetData message referencing the given hashes, all of
// the same type.
func NewGetData(typ InventoryType, hashes ...util.Uint256) *GetData {
	inv := make([]InvVect, len(hashes))
	for i, h := range hashes {
		inv[i] = InvVect{Type: typ, Hash: h}
	}
	return &GetData{Inventory: inv}
}

// DecodeBinary implements the io.Serializable interface.
func (p *GetData) DecodeBinary(br *io.BinReader) {
	br.ReadArray(&p.Inventory, MaxInventoryItems)
}

// EncodeBinary implements the io.Serializable interface.
func (p *GetData) EncodeBinary(bw *io.BinWriter) {
	bw.WriteArray(p.Inventory)
}
