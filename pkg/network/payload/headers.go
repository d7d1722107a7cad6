package payload

import (
	"github.com/carbon-dev/carbon-go/pkg/core/block"
	"github.com/carbon-dev/carbon-go/pkg/io"
)

// MaxHeadersAllowed is the maximum number of headers in one Headers message.
const MaxHeadersAllowed = 2000

// Headers is a batch of block headers, contiguous and ascending.
type Headers struct {
	Hdrs []*block.Header
}

// DecodeBinary implements the io.Serializable interface.
func (p *Headers) DecodeBinary(br *io.BinReader) {
	br.ReadArray(&p.Hdrs, MaxHeadersAllowed)
}

// EncodeBinary implements the io.Serializable interface.
func (p *Headers) EncodeBinary(bw *io.BinWriter) {
	bw.WriteArray(p.Hdrs)
}
