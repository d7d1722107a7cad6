package network

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carbon-dev/carbon-go/internal/random"
)

func TestPeerRegistryConnectDisconnect(t *testing.T) {
	r := NewPeerRegistry()

	r.OnConnected(1, 100, true)
	require.Equal(t, 1, r.Count())
	st, ok := r.GetState(1)
	require.True(t, ok)
	assert.EqualValues(t, 100, st.HeadersSyncTimeout)
	assert.True(t, st.ChainSync.Protect)

	// Connecting again doesn't reset the state.
	r.OnConnected(1, 500, false)
	st, _ = r.GetState(1)
	assert.EqualValues(t, 100, st.HeadersSyncTimeout)
	assert.True(t, st.ChainSync.Protect)

	removed := r.Disconnected(1)
	require.NotNil(t, removed)
	assert.True(t, removed.ChainSync.Protect)
	assert.Equal(t, 0, r.Count())
	_, ok = r.GetState(1)
	assert.False(t, ok)

	// Disconnecting an unknown peer is a no-op.
	assert.Nil(t, r.Disconnected(42))
}

func TestPeerRegistryBestKnownHeader(t *testing.T) {
	r := NewPeerRegistry()
	r.OnConnected(1, 0, false)

	require.Nil(t, r.BestKnownHeader(1))

	r.NewHeaderReceived(1, mockHeaderView(10))
	require.True(t, r.BestKnownHeader(1).TotalDifficulty.Eq(mockHeaderView(10).TotalDifficulty))

	// Cumulative difficulty never decreases for a connected peer.
	r.NewHeaderReceived(1, mockHeaderView(5))
	assert.True(t, r.BestKnownHeader(1).TotalDifficulty.Eq(mockHeaderView(10).TotalDifficulty))
	r.NewHeaderReceived(1, mockHeaderView(10))
	assert.True(t, r.BestKnownHeader(1).TotalDifficulty.Eq(mockHeaderView(10).TotalDifficulty))
	r.NewHeaderReceived(1, mockHeaderView(11))
	assert.True(t, r.BestKnownHeader(1).TotalDifficulty.Eq(mockHeaderView(11).TotalDifficulty))

	// Disconnect cleans the entry up.
	r.Disconnected(1)
	assert.Nil(t, r.BestKnownHeader(1))
}

func TestPeerRegistryInFlight(t *testing.T) {
	r := NewPeerRegistry()
	h1, h2 := random.Uint256(), random.Uint256()

	require.True(t, r.MarkBlockInFlight(1, h2))
	// The same hash can't be on request from two peers.
	require.False(t, r.MarkBlockInFlight(2, h2))
	require.True(t, r.MarkBlockInFlight(2, h1))
	assert.Equal(t, 1, r.InFlightCount(1))
	assert.Equal(t, 1, r.InFlightCount(2))

	r.BlockReceived(h2)
	assert.Equal(t, 0, r.InFlightCount(1))
	// Receiving it again changes nothing.
	r.BlockReceived(h2)
	assert.Equal(t, 0, r.InFlightCount(1))

	// Disconnect releases everything the peer had on request.
	r.Disconnected(2)
	assert.Equal(t, 0, r.InFlightCount(2))
	require.True(t, r.MarkBlockInFlight(1, h1))
}
