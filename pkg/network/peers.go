package network

import (
	"sync"

	"github.com/carbon-dev/carbon-go/pkg/core/block"
	"github.com/carbon-dev/carbon-go/pkg/util"
)

// ChainSyncState is the chain-sync eviction state of a single peer, see
// the eviction pass for the transitions.
type ChainSyncState struct {
	// Protect exempts the peer from chain-sync eviction. It is set for a
	// bounded number of outbound peers at connect time.
	Protect bool
	// Timeout is the wall-clock instant (ms) of the next transition, zero
	// while the state machine is inactive.
	Timeout uint64
	// WorkHeader is the snapshot of our tip taken when the peer was first
	// noticed to be behind. Non-nil implies Timeout is nonzero.
	WorkHeader *block.HeaderView
	// SentGetHeaders marks that the single catch-up probe has been sent.
	SentGetHeaders bool
}

// PeerState is the sync protocol state of a single connected peer.
type PeerState struct {
	// HeadersSyncTimeout is the wall-clock deadline (ms) for the peer to
	// feed us headers during initial block download.
	HeadersSyncTimeout uint64
	// HeadersSynced is set once the peer has delivered its last headers
	// batch, disarming HeadersSyncTimeout.
	HeadersSynced bool
	// Disconnect is sticky, a peer marked for disconnection is never
	// revived.
	Disconnect bool
	// ChainSync is the chain-sync eviction state.
	ChainSync ChainSyncState
}

// PeerRegistry tracks per-peer sync state, the best header known for every
// peer and the global block download schedule.
type PeerRegistry struct {
	lock  sync.RWMutex
	state map[PeerID]*PeerState

	bkhLock          sync.RWMutex
	bestKnownHeaders map[PeerID]*block.HeaderView

	inflightLock    sync.Mutex
	blocksInflight  map[util.Uint256]PeerID
	inflightPerPeer map[PeerID]int
}

// NewPeerRegistry returns an empty registry.
func NewPeerRegistry() *PeerRegistry {
	return &PeerRegistry{
		state:            make(map[PeerID]*PeerState),
		bestKnownHeaders: make(map[PeerID]*block.HeaderView),
		blocksInflight:   make(map[util.Uint256]PeerID),
		inflightPerPeer:  make(map[PeerID]int),
	}
}

// OnConnected inserts a default state for the peer with the given
// headers-sync deadline and protection flag. It is idempotent, repeated
// connects of the same peer don't reset the state.
func (r *PeerRegistry) OnConnected(peer PeerID, headersSyncTimeout uint64, protect bool) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.state[peer]; ok {
		return
	}
	r.state[peer] = &PeerState{
		HeadersSyncTimeout: headersSyncTimeout,
		ChainSync:          ChainSyncState{Protect: protect},
	}
	peersConnected.Set(float64(len(r.state)))
}

// Disconnected drops all state of the peer and returns the removed entry
// (nil if the peer was unknown).
func (r *PeerRegistry) Disconnected(peer PeerID) *PeerState {
	r.lock.Lock()
	st := r.state[peer]
	delete(r.state, peer)
	peersConnected.Set(float64(len(r.state)))
	r.lock.Unlock()

	r.bkhLock.Lock()
	delete(r.bestKnownHeaders, peer)
	r.bkhLock.Unlock()

	r.inflightLock.Lock()
	for h, p := range r.blocksInflight {
		if p == peer {
			delete(r.blocksInflight, h)
		}
	}
	delete(r.inflightPerPeer, peer)
	r.inflightLock.Unlock()

	return st
}

// GetState returns a copy of the peer's state, ok tells if it's connected.
func (r *PeerRegistry) GetState(peer PeerID) (PeerState, bool) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	st, ok := r.state[peer]
	if !ok {
		return PeerState{}, false
	}
	return *st, true
}

// Peers returns the ids of all connected peers.
func (r *PeerRegistry) Peers() []PeerID {
	r.lock.RLock()
	defer r.lock.RUnlock()

	peers := make([]PeerID, 0, len(r.state))
	for p := range r.state {
		peers = append(peers, p)
	}
	return peers
}

// Count returns the number of connected peers.
func (r *PeerRegistry) Count() int {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return len(r.state)
}

// MarkHeadersSynced disarms the headers-sync deadline of the peer.
func (r *PeerRegistry) MarkHeadersSynced(peer PeerID) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if st, ok := r.state[peer]; ok {
		st.HeadersSynced = true
	}
}

// NewHeaderReceived updates the best header known for the peer. The entry
// never decreases in cumulative difficulty while the peer stays connected.
func (r *PeerRegistry) NewHeaderReceived(peer PeerID, view *block.HeaderView) {
	r.bkhLock.Lock()
	defer r.bkhLock.Unlock()

	if old, ok := r.bestKnownHeaders[peer]; ok && view.TotalDifficulty.Cmp(old.TotalDifficulty) <= 0 {
		return
	}
	r.bestKnownHeaders[peer] = view
}

// BestKnownHeader returns the best header known for the peer, nil if the
// peer never sent one.
func (r *PeerRegistry) BestKnownHeader(peer PeerID) *block.HeaderView {
	r.bkhLock.RLock()
	defer r.bkhLock.RUnlock()
	return r.bestKnownHeaders[peer]
}

// MarkBlockInFlight notes that the block is being requested from the peer.
// It returns false if the block is already on request from some peer.
func (r *PeerRegistry) MarkBlockInFlight(peer PeerID, h util.Uint256) bool {
	r.inflightLock.Lock()
	defer r.inflightLock.Unlock()

	if _, ok := r.blocksInflight[h]; ok {
		return false
	}
	r.blocksInflight[h] = peer
	r.inflightPerPeer[peer]++
	return true
}

// BlockReceived releases the in-flight slot of the block.
func (r *PeerRegistry) BlockReceived(h util.Uint256) {
	r.inflightLock.Lock()
	defer r.inflightLock.Unlock()

	peer, ok := r.blocksInflight[h]
	if !ok {
		return
	}
	delete(r.blocksInflight, h)
	if c := r.inflightPerPeer[peer]; c > 1 {
		r.inflightPerPeer[peer] = c - 1
	} else {
		delete(r.inflightPerPeer, peer)
	}
}

// InFlightCount returns the number of blocks on request from the peer.
func (r *PeerRegistry) InFlightCount(peer PeerID) int {
	r.inflightLock.Lock()
	defer r.inflightLock.Unlock()
	return r.inflightPerPeer[peer]
}
