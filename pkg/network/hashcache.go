package network

import (
	lru "github.com/hashicorp/golang-lru"

	"github.com/carbon-dev/carbon-go/pkg/util"
)

// HashCache is a bounded set of recently seen hashes. Insertion evicts the
// least recently used entry once the cache is full, which keeps relay
// deduplication memory constant.
type HashCache struct {
	c *lru.Cache
}

// NewHashCache returns a cache of the given size.
func NewHashCache(size int) *HashCache {
	c, err := lru.New(size)
	if err != nil {
		panic(err) // only possible with a non-positive size
	}
	return &HashCache{c: c}
}

// Add puts the hash into the cache and returns true if it was not there
// before ("first sight").
func (hc *HashCache) Add(h util.Uint256) bool {
	seen, _ := hc.c.ContainsOrAdd(h, struct{}{})
	return !seen
}

// Contains tells if the hash is in the cache.
func (hc *HashCache) Contains(h util.Uint256) bool {
	return hc.c.Contains(h)
}

// Len returns the number of cached hashes.
func (hc *HashCache) Len() int {
	return hc.c.Len()
}
