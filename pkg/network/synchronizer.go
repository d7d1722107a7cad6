package network

import (
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/carbon-dev/carbon-go/pkg/config"
	"github.com/carbon-dev/carbon-go/pkg/core/block"
	"github.com/carbon-dev/carbon-go/pkg/core/blockchainer"
	"github.com/carbon-dev/carbon-go/pkg/util"
)

// Synchronizer aggregates the chain tip, locator construction and
// block-fetch selection for the protocol engines. It is shared by all
// worker tasks spawned from the dispatcher.
type Synchronizer struct {
	chain blockchainer.Blockchainer
	peers *PeerRegistry
	cfg   config.ProtocolConfiguration
	log   *zap.Logger

	// nSync counts peers a headers sync has been started with.
	nSync atomic.Int32
	// outboundPeersWithProtect counts outbound peers protected from
	// chain-sync eviction, bounded by MaxOutboundPeersToProtect.
	outboundPeersWithProtect atomic.Int32

	// recentBlocks and recentTxs are the relay dedup sets. They are owned
	// here because both the sync and the relay engine feed them.
	recentBlocks *HashCache
	recentTxs    *HashCache

	// now is the wall-clock authority (ms), replaceable in tests.
	now func() uint64
}

// NewSynchronizer creates a Synchronizer on top of the given chain.
func NewSynchronizer(chain blockchainer.Blockchainer, cfg config.ProtocolConfiguration, log *zap.Logger) *Synchronizer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Synchronizer{
		chain:        chain,
		peers:        NewPeerRegistry(),
		cfg:          cfg,
		log:          log,
		recentBlocks: NewHashCache(cfg.RelayCacheSize),
		recentTxs:    NewHashCache(cfg.RelayCacheSize),
		now:          func() uint64 { return uint64(time.Now().UnixMilli()) },
	}
}

// Peers returns the peer registry.
func (s *Synchronizer) Peers() *PeerRegistry {
	return s.peers
}

// TipHeader returns the current tip of the best chain.
func (s *Synchronizer) TipHeader() *block.HeaderView {
	return s.chain.TipHeader()
}

// IsInitialBlockDownload tells if the local tip is stale by more than
// MaxTipAge.
func (s *Synchronizer) IsInitialBlockDownload() bool {
	tip := s.chain.TipHeader()
	now := s.now()
	return tip.Header.Timestamp+s.cfg.MaxTipAge < now
}

// GetHeadersSyncTimeout computes the headers-sync deadline for a peer
// connecting while our tip is the given one. The allowance grows with the
// number of headers the peer is expected to deliver given the tip age.
func (s *Synchronizer) GetHeadersSyncTimeout(tip *block.HeaderView) uint64 {
	now := s.now()
	var stale uint64
	if tip.Header.Timestamp < now {
		stale = (now - tip.Header.Timestamp) / s.cfg.BlockProductionInterval
	}
	return now + s.cfg.HeadersDownloadTimeoutBase + s.cfg.HeadersDownloadTimeoutPerHeader*stale
}

// GetLocator returns the block locator for the given header: hashes spaced
// geometrically backward from it, at strictly decreasing heights, ending
// with genesis.
func (s *Synchronizer) GetLocator(from *block.Header) []util.Uint256 {
	var (
		locator []util.Uint256
		step    uint64 = 1
		number         = from.Number
	)
	for {
		hash, err := s.chain.GetBlockHash(number)
		if err != nil {
			break
		}
		locator = append(locator, hash)
		if number == 0 {
			return locator
		}
		if len(locator) >= 10 {
			step *= 2
		}
		if number < step {
			number = 0
		} else {
			number -= step
		}
	}
	// Main chain lookup failures can only leave genesis out, fix that up.
	if genesis, err := s.chain.GetBlockHash(0); err == nil {
		locator = append(locator, genesis)
	}
	return locator
}

// LocateLatestCommonAncestor finds the highest main-chain header named by
// the locator, falling back to genesis when nothing matches.
func (s *Synchronizer) LocateLatestCommonAncestor(locator []util.Uint256) (*block.Header, error) {
	for _, h := range locator {
		hdr, err := s.chain.GetHeader(h)
		if err != nil {
			continue
		}
		mainHash, err := s.chain.GetBlockHash(hdr.Number)
		if err != nil || !mainHash.Equals(h) {
			continue // Stale branch, keep looking.
		}
		return hdr, nil
	}
	genesis, err := s.chain.GetBlockHash(0)
	if err != nil {
		return nil, fmt.Errorf("no genesis block: %w", err)
	}
	return s.chain.GetHeader(genesis)
}

// GetLocatorResponse returns up to MaxHeadersResults main-chain headers
// ascending from the given height, terminating early at hashStop.
func (s *Synchronizer) GetLocatorResponse(start uint64, hashStop util.Uint256) []*block.Header {
	headers := make([]*block.Header, 0)
	for number := start; len(headers) < s.cfg.MaxHeadersResults; number++ {
		hash, err := s.chain.GetBlockHash(number)
		if err != nil {
			break
		}
		hdr, err := s.chain.GetHeader(hash)
		if err != nil {
			break
		}
		headers = append(headers, hdr)
		if hash.Equals(hashStop) {
			break
		}
	}
	return headers
}

// GetBlocksToFetch selects blocks to request from the peer: hashes on the
// peer's best-known-header path above our stored chain, not yet requested
// from anyone, lowest height first, bounded by the per-peer window.
func (s *Synchronizer) GetBlocksToFetch(peer PeerID) []util.Uint256 {
	bkh := s.peers.BestKnownHeader(peer)
	if bkh == nil {
		return nil
	}
	tipNum := s.chain.BlockHeight()
	if bkh.Header.Number <= tipNum {
		return nil
	}
	window := s.cfg.MaxBlocksInFlightPerPeer - s.peers.InFlightCount(peer)
	if window <= 0 {
		return nil
	}

	// Walk the peer's chain down to our stored height, remembering hashes
	// within the download window.
	var (
		path  []util.Uint256
		hdr   = bkh.Header
		limit = tipNum + s.cfg.BlockDownloadWindow
	)
	for hdr.Number > tipNum {
		if hdr.Number <= limit {
			path = append(path, hdr.Hash())
		}
		parent, err := s.chain.GetHeader(hdr.PrevHash)
		if err != nil {
			break // Ancestry not known yet, wait for more headers.
		}
		hdr = parent
	}

	fetch := make([]util.Uint256, 0, window)
	for i := len(path) - 1; i >= 0; i-- {
		h := path[i]
		if s.chain.HasBlock(h) {
			continue
		}
		if !s.peers.MarkBlockInFlight(peer, h) {
			continue // Someone else is downloading it.
		}
		fetch = append(fetch, h)
		if len(fetch) >= window {
			break
		}
	}
	return fetch
}

// GetBlock returns the block with the given hash from the chain provider.
func (s *Synchronizer) GetBlock(hash util.Uint256) (*block.Block, error) {
	return s.chain.GetBlock(hash)
}

// ProcessNewBlock hands the block received from the peer over to the chain
// provider. The in-flight slot is released whatever the validation outcome.
func (s *Synchronizer) ProcessNewBlock(peer PeerID, b *block.Block) error {
	h := b.Hash()
	s.peers.BlockReceived(h)
	if err := s.chain.AddBlock(b); err != nil {
		return fmt.Errorf("block %s from peer %d: %w", h.StringLE(), peer, err)
	}
	s.recentBlocks.Add(h)
	return nil
}
