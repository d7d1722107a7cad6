package block

import (
	"github.com/holiman/uint256"
)

// HeaderView is a header together with the cumulative chain work up to and
// including it. Chain preference is decided by comparing TotalDifficulty.
type HeaderView struct {
	Header          *Header
	TotalDifficulty *uint256.Int
}

// NewHeaderView wraps the header with the given cumulative difficulty.
func NewHeaderView(h *Header, td *uint256.Int) *HeaderView {
	return &HeaderView{
		Header:          h,
		TotalDifficulty: new(uint256.Int).Set(td),
	}
}

// HasMoreWorkThan tells if the view's chain has at least as much work as
// the other cumulative difficulty.
func (hv *HeaderView) HasMoreWorkThan(td *uint256.Int) bool {
	return hv.TotalDifficulty.Cmp(td) >= 0
}
