// Package hash contains wrappers for the hash functions used throughout
// the node. Blake2b-256 is the canonical digest for all chain entities.
package hash

import (
	"golang.org/x/crypto/blake2b"

	"github.com/carbon-dev/carbon-go/pkg/io"
	"github.com/carbon-dev/carbon-go/pkg/util"
)

// Blake2b returns the blake2b-256 hash of the given data.
func Blake2b(data []byte) util.Uint256 {
	return util.Uint256(blake2b.Sum256(data))
}

// Hashable represents an object which can be hashed. Usually, these objects
// are io.Serializable and signable. They tend to cache the hash inside for
// effectiveness, providing this accessor method. Anything that can be
// identified with a hash can then be signed and verified.
type Hashable interface {
	Hash() util.Uint256
}

// GetHashableData serializes the given object and returns the data to hash.
func GetHashableData(hh io.Serializable) ([]byte, error) {
	buf := io.NewBufBinWriter()
	hh.EncodeBinary(buf.BinWriter)
	if buf.Err != nil {
		return nil, buf.Err
	}
	return buf.Bytes(), nil
}
