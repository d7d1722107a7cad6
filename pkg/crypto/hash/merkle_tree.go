package hash

import (
	"github.com/carbon-dev/carbon-go/pkg/util"
)

// CalcMerkleRoot calculates the Merkle root hash value for the given slice
// of hashes. It doesn't create a full Merkle tree structure and it uses the
// given slice as a scratchpad, so it will destroy its contents in the
// process.
func CalcMerkleRoot(hashes []util.Uint256) util.Uint256 {
	if len(hashes) == 0 {
		return util.Uint256{}
	}

	scratch := make([]byte, util.Uint256Size*2)
	for len(hashes) != 1 {
		// Odd number of hashes, duplicate the last one.
		if len(hashes)%2 != 0 {
			hashes = append(hashes, hashes[len(hashes)-1])
		}
		for i := 0; i < len(hashes)/2; i++ {
			copy(scratch, hashes[i*2].BytesBE())
			copy(scratch[util.Uint256Size:], hashes[i*2+1].BytesBE())
			hashes[i] = Blake2b(scratch)
		}
		hashes = hashes[:len(hashes)/2]
	}
	return hashes[0]
}
