package network

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carbon-dev/carbon-go/internal/fakechain"
	"github.com/carbon-dev/carbon-go/pkg/util"
)

func TestIsInitialBlockDownload(t *testing.T) {
	chain := fakechain.NewFakeChain()
	s, now := newTestSync(t, chain)

	*now = s.cfg.MaxTipAge / 2
	assert.False(t, s.IsInitialBlockDownload())

	*now = s.cfg.MaxTipAge + 2
	assert.True(t, s.IsInitialBlockDownload())
}

func TestGetHeadersSyncTimeout(t *testing.T) {
	chain := fakechain.NewFakeChain()
	s, now := newTestSync(t, chain)

	// A fresh tip gets the base allowance.
	tip := s.TipHeader()
	require.Equal(t, *now+s.cfg.HeadersDownloadTimeoutBase, s.GetHeadersSyncTimeout(tip))

	// A stale tip gets an extra allowance proportional to the number of
	// headers the peer is expected to deliver.
	*now = 1 + 1000*s.cfg.BlockProductionInterval
	expected := *now + s.cfg.HeadersDownloadTimeoutBase + 1000*s.cfg.HeadersDownloadTimeoutPerHeader
	require.Equal(t, expected, s.GetHeadersSyncTimeout(tip))
}

func TestGetLocator(t *testing.T) {
	chain := fakechain.NewFakeChain()
	s, _ := newTestSync(t, chain)

	headers := makeHeaders(genesisHeader(t, chain), 64)
	require.NoError(t, chain.AddHeaders(headers...))

	locator := s.GetLocator(headers[63])
	require.NotEmpty(t, locator)

	// Heights are strictly decreasing and end at genesis.
	prev := headers[63].Number + 1
	for _, h := range locator {
		hdr, err := chain.GetHeader(h)
		require.NoError(t, err)
		require.Less(t, hdr.Number, prev)
		prev = hdr.Number
	}
	assert.EqualValues(t, 0, prev)

	// The first ten entries go back one by one, then the step doubles.
	first, err := chain.GetHeader(locator[0])
	require.NoError(t, err)
	assert.EqualValues(t, 64, first.Number)
	require.True(t, len(locator) > 10)
	tenth, err := chain.GetHeader(locator[10])
	require.NoError(t, err)
	assert.EqualValues(t, 53, tenth.Number)
}

func TestLocateLatestCommonAncestor(t *testing.T) {
	chain := fakechain.NewFakeChain()
	s, _ := newTestSync(t, chain)

	headers := makeHeaders(genesisHeader(t, chain), 20)
	require.NoError(t, chain.AddHeaders(headers...))

	// Unknown hashes are skipped until a main chain one is found.
	locator := []util.Uint256{makeTestTx().Hash(), headers[10].Hash(), headers[5].Hash()}
	ancestor, err := s.LocateLatestCommonAncestor(locator)
	require.NoError(t, err)
	assert.True(t, ancestor.Hash().Equals(headers[10].Hash()))

	// Nothing matching falls back to genesis.
	ancestor, err = s.LocateLatestCommonAncestor([]util.Uint256{makeTestTx().Hash()})
	require.NoError(t, err)
	assert.EqualValues(t, 0, ancestor.Number)
}

func TestGetBlocksToFetchWindow(t *testing.T) {
	chain := fakechain.NewFakeChain()
	s, _ := newTestSync(t, chain)

	headers := makeHeaders(genesisHeader(t, chain), 40)
	require.NoError(t, chain.AddHeaders(headers...))

	s.Peers().OnConnected(0, s.cfg.MaxTipAge*2, false)
	s.Peers().OnConnected(1, s.cfg.MaxTipAge*2, false)

	// A peer we know nothing about gets no requests.
	require.Empty(t, s.GetBlocksToFetch(0))

	view, err := chain.GetHeaderView(headers[39].Hash())
	require.NoError(t, err)
	s.Peers().NewHeaderReceived(0, view)
	s.Peers().NewHeaderReceived(1, view)

	// The per-peer window bounds the request and selection starts at the
	// lowest missing height.
	fetch := s.GetBlocksToFetch(0)
	require.Len(t, fetch, s.cfg.MaxBlocksInFlightPerPeer)
	assert.True(t, fetch[0].Equals(headers[0].Hash()))
	assert.True(t, fetch[15].Equals(headers[15].Hash()))

	// A hash is requested from at most one peer at a time.
	fetch2 := s.GetBlocksToFetch(1)
	require.Len(t, fetch2, s.cfg.MaxBlocksInFlightPerPeer)
	assert.True(t, fetch2[0].Equals(headers[16].Hash()))
	for _, h := range fetch {
		for _, h2 := range fetch2 {
			assert.False(t, h.Equals(h2))
		}
	}

	// The window is closed while requests are in flight.
	require.Empty(t, s.GetBlocksToFetch(0))

	// Block arrival frees the window up again.
	s.Peers().BlockReceived(fetch[0])
	fetch3 := s.GetBlocksToFetch(0)
	require.Len(t, fetch3, 1)
	// The freed hash is eligible again and is picked first.
	assert.True(t, fetch3[0].Equals(fetch[0]))
}
