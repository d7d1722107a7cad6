package network

import (
	"go.uber.org/zap"

	"github.com/carbon-dev/carbon-go/pkg/core/block"
	"github.com/carbon-dev/carbon-go/pkg/network/payload"
	"github.com/carbon-dev/carbon-go/pkg/util"
)

type taskKind byte

const (
	taskOnConnected taskKind = iota
	taskSendGetHeadersToAll
	taskFetchBlock
	taskGetHeaders
	taskHeaders
	taskGetData
	taskBlock
)

// task is one tagged work item of the dispatcher queue.
type task struct {
	kind taskKind
	ctx  Context
	peer PeerID

	getHeaders *payload.GetHeaders
	headers    *payload.Headers
	getData    *payload.GetData
	block      *block.Block
}

// SyncProtocol discovers and downloads the longest valid chain from the
// connected peers. Transport events are serialized through a bounded work
// queue and fanned out to independent worker goroutines.
type SyncProtocol struct {
	sync *Synchronizer
	log  *zap.Logger

	tasks chan task
	quit  chan struct{}
}

// NewSyncProtocol creates a sync protocol engine over the synchronizer.
func NewSyncProtocol(s *Synchronizer, log *zap.Logger) *SyncProtocol {
	if log == nil {
		log = zap.NewNop()
	}
	return &SyncProtocol{
		sync:  s,
		log:   log,
		tasks: make(chan task, s.cfg.TaskQueueCapacity),
		quit:  make(chan struct{}),
	}
}

// Start runs the dispatcher loop draining the work queue. Each item is
// executed on its own goroutine, items are not ordered with each other
// beyond the queue's FIFO discipline at enqueue time.
func (p *SyncProtocol) Start() {
	go func() {
		for {
			select {
			case t := <-p.tasks:
				go p.exec(t)
			case <-p.quit:
				return
			}
		}
	}()
}

// Shutdown stops the dispatcher. In-flight work completes opportunistically.
func (p *SyncProtocol) Shutdown() {
	close(p.quit)
}

// enqueue pushes the work item into the queue. When the queue is full the
// event is dropped, the transport is never blocked.
func (p *SyncProtocol) enqueue(t task) {
	select {
	case p.tasks <- t:
	case <-p.quit:
	default:
		droppedTasks.Inc()
		p.log.Error("dispatcher queue full, dropping event",
			zap.Uint64("peer", uint64(t.peer)))
	}
}

func (p *SyncProtocol) exec(t task) {
	switch t.kind {
	case taskOnConnected:
		p.onConnected(t.ctx, t.peer)
	case taskSendGetHeadersToAll:
		p.sendGetHeadersToAll(t.ctx)
	case taskFetchBlock:
		p.findBlocksToFetch(t.ctx)
	case taskGetHeaders:
		p.handleGetHeaders(t.ctx, t.peer, t.getHeaders)
	case taskHeaders:
		p.handleHeaders(t.ctx, t.peer, t.headers)
	case taskGetData:
		p.handleGetData(t.ctx, t.peer, t.getData)
	case taskBlock:
		p.handleBlock(t.ctx, t.peer, t.block)
	}
}

// Initialize implements the ProtocolHandler interface.
func (p *SyncProtocol) Initialize(ctx Context) {
	if err := ctx.RegisterTimer(SendGetHeadersToken, TimerInterval); err != nil {
		p.log.Error("can't register getheaders timer", zap.Error(err))
	}
	if err := ctx.RegisterTimer(BlockFetchToken, TimerInterval); err != nil {
		p.log.Error("can't register block fetch timer", zap.Error(err))
	}
}

// OnRead implements the ProtocolHandler interface. It decodes the envelope
// and enqueues a work item, malformed packets are dropped with a warning
// and the connection is kept.
func (p *SyncProtocol) OnRead(ctx Context, peer PeerID, data []byte) {
	msg, err := payload.FromBytes(data)
	if err != nil {
		p.log.Warn("failed to decode message",
			zap.Uint64("peer", uint64(peer)),
			zap.Error(err))
		return
	}
	switch msg.Command {
	case payload.CMDGetHeaders:
		p.enqueue(task{kind: taskGetHeaders, ctx: ctx, peer: peer, getHeaders: msg.Payload.(*payload.GetHeaders)})
	case payload.CMDHeaders:
		hdrs := msg.Payload.(*payload.Headers)
		p.log.Debug("received headers", zap.Int("count", len(hdrs.Hdrs)))
		p.enqueue(task{kind: taskHeaders, ctx: ctx, peer: peer, headers: hdrs})
	case payload.CMDGetData:
		p.enqueue(task{kind: taskGetData, ctx: ctx, peer: peer, getData: msg.Payload.(*payload.GetData)})
	case payload.CMDBlock:
		p.enqueue(task{kind: taskBlock, ctx: ctx, peer: peer, block: msg.Payload.(*block.Block)})
	default:
		// Relay traffic, not ours.
	}
}

// OnConnected implements the ProtocolHandler interface.
func (p *SyncProtocol) OnConnected(ctx Context, peer PeerID) {
	p.log.Info("peer connected", zap.Uint64("peer", uint64(peer)))
	if p.sync.nSync.Load() == 0 || !p.sync.IsInitialBlockDownload() {
		p.enqueue(task{kind: taskOnConnected, ctx: ctx, peer: peer})
	}
}

// OnDisconnected implements the ProtocolHandler interface.
func (p *SyncProtocol) OnDisconnected(_ Context, peer PeerID) {
	p.log.Info("peer disconnected", zap.Uint64("peer", uint64(peer)))
	st := p.sync.peers.Disconnected(peer)
	if st == nil {
		return
	}
	p.sync.nSync.Add(-1)
	if st.ChainSync.Protect {
		p.sync.outboundPeersWithProtect.Add(-1)
	}
}

// OnTimer implements the ProtocolHandler interface. Eviction runs on the
// same cadence, interleaved with the GetHeaders broadcast.
func (p *SyncProtocol) OnTimer(ctx Context, token TimerToken) {
	if p.sync.peers.Count() == 0 {
		p.log.Debug("no peers connected")
		return
	}
	switch token {
	case SendGetHeadersToken:
		p.Eviction(ctx)
		p.dispatchGetHeaders(ctx)
	case BlockFetchToken:
		p.dispatchBlockFetch(ctx)
	}
}

func (p *SyncProtocol) dispatchGetHeaders(ctx Context) {
	if p.sync.nSync.Load() == 0 || !p.sync.IsInitialBlockDownload() {
		p.enqueue(task{kind: taskSendGetHeadersToAll, ctx: ctx})
	}
}

func (p *SyncProtocol) dispatchBlockFetch(ctx Context) {
	p.enqueue(task{kind: taskFetchBlock, ctx: ctx})
}

// onConnected starts a headers sync with the new peer: arm its
// headers-sync deadline, maybe protect it and probe it with GetHeaders.
func (p *SyncProtocol) onConnected(ctx Context, peer PeerID) {
	si := ctx.SessionInfo(peer)
	if si == nil {
		return // Session gone before the task ran.
	}
	tip := p.sync.TipHeader()
	timeout := p.sync.GetHeadersSyncTimeout(tip)

	protect := si.Originated &&
		p.sync.outboundPeersWithProtect.Load() < p.sync.cfg.MaxOutboundPeersToProtect
	if protect {
		p.sync.outboundPeersWithProtect.Add(1)
	}

	p.sync.peers.OnConnected(peer, timeout, protect)
	p.sync.nSync.Add(1)
	p.sendGetHeadersToPeer(ctx, peer, tip.Header)
}

func (p *SyncProtocol) sendGetHeadersToAll(ctx Context) {
	peers := p.sync.peers.Peers()
	p.log.Debug("sending getheaders to peers", zap.Int("count", len(peers)))
	tip := p.sync.TipHeader()
	for _, peer := range peers {
		p.sendGetHeadersToPeer(ctx, peer, tip.Header)
	}
}

func (p *SyncProtocol) sendGetHeadersToPeer(ctx Context, peer PeerID, from *block.Header) {
	locator := p.sync.GetLocator(from)
	msg := payload.NewMessage(payload.CMDGetHeaders, payload.NewGetHeaders(locator, util.Uint256{}))
	if err := ctx.SendPayload(peer, msg); err != nil {
		p.log.Debug("failed to send getheaders",
			zap.Uint64("peer", uint64(peer)),
			zap.Error(err))
		return
	}
	p.log.Debug("sent getheaders",
		zap.Uint64("peer", uint64(peer)),
		zap.Uint64("from", from.Number))
}

// findBlocksToFetch selects blocks to download from every peer and sends
// one GetData per peer with the chosen inventory.
func (p *SyncProtocol) findBlocksToFetch(ctx Context) {
	for _, peer := range p.sync.peers.Peers() {
		fetch := p.sync.GetBlocksToFetch(peer)
		if len(fetch) == 0 {
			continue
		}
		msg := payload.NewMessage(payload.CMDGetData, payload.NewGetData(payload.BlockType, fetch...))
		if err := ctx.SendPayload(peer, msg); err != nil {
			p.log.Debug("failed to send getdata",
				zap.Uint64("peer", uint64(peer)),
				zap.Error(err))
			continue
		}
		p.log.Debug("sent block getdata",
			zap.Int("len", len(fetch)),
			zap.Uint64("peer", uint64(peer)))
	}
}

// Eviction is one pass of the per-peer timeout state machines. It is run
// on every SendGetHeadersToken tick.
//
// Headers-sync: a peer that has not finished feeding us headers by its
// deadline while we are still in initial block download is disconnected,
// protection does not exempt from this one.
//
// Chain-sync, outbound unprotected peers only, once initial block download
// is over: a peer whose best known
// chain falls behind our tip is given ChainSyncTimeout to catch up, then
// one GetHeaders probe and EvictionTestResponseTime more, then it is
// disconnected. This mirrors the anti-eclipse policy of the reference
// implementations: one explicit chance to catch up, never applied to the
// protected minority.
func (p *SyncProtocol) Eviction(ctx Context) {
	var (
		s        = p.sync
		now      = s.now()
		eviction []PeerID
		isIBD    = s.IsInitialBlockDownload()
	)
	s.peers.lock.Lock()
	s.peers.bkhLock.RLock()
	for peer, state := range s.peers.state {
		if !state.HeadersSynced && now > state.HeadersSyncTimeout && isIBD && !state.Disconnect {
			eviction = append(eviction, peer)
			state.Disconnect = true
			continue
		}

		si := ctx.SessionInfo(peer)
		if isIBD || si == nil || !si.Originated || state.ChainSync.Protect {
			continue
		}

		bkh := s.peers.bestKnownHeaders[peer]
		tip := s.chain.TipHeader()
		cs := &state.ChainSync
		switch {
		case bkh != nil && bkh.TotalDifficulty.Cmp(tip.TotalDifficulty) >= 0:
			// The peer keeps up with us, stand down.
			if cs.Timeout != 0 {
				cs.Timeout = 0
				cs.WorkHeader = nil
				cs.SentGetHeaders = false
			}
		case cs.Timeout == 0 ||
			(bkh != nil && cs.WorkHeader != nil && bkh.TotalDifficulty.Cmp(cs.WorkHeader.TotalDifficulty) >= 0):
			// Our best block known by this peer is behind our tip, and
			// we're either noticing that for the first time or the peer
			// caught up to the previously recorded snapshot but is still
			// behind. Either way, set a new timeout based on the current
			// tip.
			cs.Timeout = now + s.cfg.ChainSyncTimeout
			cs.WorkHeader = tip
			cs.SentGetHeaders = false
		case cs.Timeout > 0 && now > cs.Timeout:
			if cs.SentGetHeaders {
				// The peer ran out of time to catch up.
				eviction = append(eviction, peer)
				state.Disconnect = true
			} else {
				// No evidence yet that the peer has synced to a chain
				// with work equal to that of our tip, send a single
				// getheaders to give it a chance to update us.
				cs.SentGetHeaders = true
				cs.Timeout = now + s.cfg.EvictionTestResponseTime
				p.sendGetHeadersToPeer(ctx, peer, cs.WorkHeader.Header)
			}
		}
	}
	s.peers.bkhLock.RUnlock()
	s.peers.lock.Unlock()

	for _, peer := range eviction {
		ctx.ReportPeer(peer, SeverityTimeout)
	}
}
