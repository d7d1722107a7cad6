package network

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carbon-dev/carbon-go/internal/random"
	"github.com/carbon-dev/carbon-go/pkg/util"
)

func TestHashCacheFirstSight(t *testing.T) {
	hc := NewHashCache(10)
	h := random.Uint256()

	require.True(t, hc.Add(h))
	require.False(t, hc.Add(h))
	require.True(t, hc.Contains(h))
	require.False(t, hc.Contains(random.Uint256()))
}

func TestHashCacheBounded(t *testing.T) {
	hc := NewHashCache(8)
	hashes := make([]util.Uint256, 32)
	for i := range hashes {
		hashes[i] = random.Uint256()
		require.True(t, hc.Add(hashes[i]))
	}
	assert.Equal(t, 8, hc.Len())
	// The oldest entries are evicted, so they read as fresh again.
	assert.True(t, hc.Add(hashes[0]))
}
