package network

import (
	"sync"

	"go.uber.org/zap"

	"github.com/carbon-dev/carbon-go/pkg/core/block"
	"github.com/carbon-dev/carbon-go/pkg/core/mempool"
	"github.com/carbon-dev/carbon-go/pkg/core/transaction"
	"github.com/carbon-dev/carbon-go/pkg/network/payload"
	"github.com/carbon-dev/carbon-go/pkg/util"
)

// pendingCompact is a compact block awaiting its BlockTransactions
// response.
type pendingCompact struct {
	cb    *payload.CompactBlock
	since uint64
}

// RelayProtocol propagates new transactions and blocks across the mesh,
// reconstructing compact blocks from the local transaction pools.
type RelayProtocol struct {
	sync       *Synchronizer
	txPool     *mempool.Pool
	orphanPool *mempool.Pool
	log        *zap.Logger

	pendingLock          sync.Mutex
	pendingCompactBlocks map[util.Uint256]pendingCompact
}

// NewRelayProtocol creates a relay engine sharing the synchronizer (and
// its dedup sets) with the sync protocol.
func NewRelayProtocol(s *Synchronizer, txPool *mempool.Pool, orphanPool *mempool.Pool, log *zap.Logger) *RelayProtocol {
	if log == nil {
		log = zap.NewNop()
	}
	return &RelayProtocol{
		sync:                 s,
		txPool:               txPool,
		orphanPool:           orphanPool,
		log:                  log,
		pendingCompactBlocks: make(map[util.Uint256]pendingCompact),
	}
}

// Initialize implements the ProtocolHandler interface.
func (p *RelayProtocol) Initialize(ctx Context) {
	if err := ctx.RegisterTimer(RelayPruneToken, TimerInterval); err != nil {
		p.log.Error("can't register prune timer", zap.Error(err))
	}
}

// OnRead implements the ProtocolHandler interface.
func (p *RelayProtocol) OnRead(ctx Context, peer PeerID, data []byte) {
	msg, err := payload.FromBytes(data)
	if err != nil {
		p.log.Warn("failed to decode message",
			zap.Uint64("peer", uint64(peer)),
			zap.Error(err))
		return
	}
	switch msg.Command {
	case payload.CMDTX:
		p.handleTransaction(ctx, peer, msg, msg.Payload.(*transaction.Transaction))
	case payload.CMDBlock:
		p.handleBlock(ctx, peer, msg, msg.Payload.(*block.Block))
	case payload.CMDCompactBlock:
		p.handleCompactBlock(ctx, peer, msg, msg.Payload.(*payload.CompactBlock))
	case payload.CMDBlockTransactionsRequest:
		p.handleBlockTransactionsRequest(ctx, peer, msg.Payload.(*payload.BlockTransactionsRequest))
	case payload.CMDBlockTransactions:
		p.handleBlockTransactions(ctx, peer, msg.Payload.(*payload.BlockTransactions))
	default:
		// Sync traffic, not ours.
	}
}

// OnConnected implements the ProtocolHandler interface.
func (p *RelayProtocol) OnConnected(_ Context, peer PeerID) {
	p.log.Debug("relay peer connected", zap.Uint64("peer", uint64(peer)))
}

// OnDisconnected implements the ProtocolHandler interface.
func (p *RelayProtocol) OnDisconnected(_ Context, peer PeerID) {
	p.log.Debug("relay peer disconnected", zap.Uint64("peer", uint64(peer)))
}

// OnTimer implements the ProtocolHandler interface.
func (p *RelayProtocol) OnTimer(_ Context, token TimerToken) {
	if token == RelayPruneToken {
		p.prunePending()
	}
}

// relay forwards the payload to every connected peer except the source.
func (p *RelayProtocol) relay(ctx Context, source PeerID, msg *payload.Message) {
	for _, ps := range ctx.Sessions(p.sync.peers.Peers()) {
		if ps.Peer == source {
			continue
		}
		if err := ctx.SendPayload(ps.Peer, msg); err != nil {
			p.log.Debug("failed to relay",
				zap.Uint64("peer", uint64(ps.Peer)),
				zap.Error(err))
		}
	}
}

// handleTransaction admits a first-seen transaction to the pool and
// forwards it, duplicates are dropped.
func (p *RelayProtocol) handleTransaction(ctx Context, peer PeerID, msg *payload.Message, tx *transaction.Transaction) {
	if !p.sync.recentTxs.Add(tx.Hash()) {
		return
	}
	if err := p.txPool.Add(tx); err != nil {
		p.log.Debug("transaction not pooled",
			zap.String("hash", tx.Hash().StringLE()),
			zap.Error(err))
	}
	p.relay(ctx, peer, msg)
}

// handleBlock hands a first-seen block to the chain provider and forwards
// it, duplicates are dropped.
func (p *RelayProtocol) handleBlock(ctx Context, peer PeerID, msg *payload.Message, b *block.Block) {
	if !p.sync.recentBlocks.Add(b.Hash()) {
		return
	}
	if err := p.sync.ProcessNewBlock(peer, b); err != nil {
		p.log.Info("relayed block rejected", zap.Error(err))
		ctx.ReportPeer(peer, SeverityBadProtocol)
		return
	}
	p.relay(ctx, peer, msg)
}

// handleCompactBlock tries to rebuild a first-seen compact block from the
// local pools. A full reconstruction is submitted to the chain and the
// compact form is forwarded on, otherwise the missing slots are requested
// from the sender.
func (p *RelayProtocol) handleCompactBlock(ctx Context, peer PeerID, msg *payload.Message, cb *payload.CompactBlock) {
	hash := cb.Header.Hash()
	p.log.Debug("received compact block",
		zap.Uint64("peer", uint64(peer)),
		zap.Uint64("number", cb.Header.Number),
		zap.String("hash", hash.StringLE()))
	if !p.sync.recentBlocks.Add(hash) {
		return
	}

	b, missing := p.reconstructBlock(cb, nil)
	if b != nil {
		if err := p.sync.ProcessNewBlock(peer, b); err != nil {
			p.log.Info("reconstructed block rejected", zap.Error(err))
			ctx.ReportPeer(peer, SeverityBadProtocol)
			return
		}
		p.relay(ctx, peer, msg)
		return
	}

	p.pendingLock.Lock()
	p.pendingCompactBlocks[hash] = pendingCompact{cb: cb, since: p.sync.now()}
	pendingCompacts.Set(float64(len(p.pendingCompactBlocks)))
	p.pendingLock.Unlock()

	req := &payload.BlockTransactionsRequest{Hash: hash, Indexes: missing}
	if err := ctx.RespondPayload(payload.NewMessage(payload.CMDBlockTransactionsRequest, req)); err != nil {
		p.log.Debug("failed to request block transactions", zap.Error(err))
	}
}

// handleBlockTransactionsRequest serves the transactions occupying the
// requested slots of a stored block. Out-of-range indexes and unknown
// hashes are silently dropped.
func (p *RelayProtocol) handleBlockTransactionsRequest(ctx Context, peer PeerID, req *payload.BlockTransactionsRequest) {
	b, err := p.sync.GetBlock(req.Hash)
	if err != nil {
		return
	}
	txs := make([]*transaction.Transaction, 0, len(req.Indexes))
	for _, i := range req.Indexes {
		if int(i) < len(b.Transactions) {
			txs = append(txs, b.Transactions[i])
		}
	}
	resp := &payload.BlockTransactions{Hash: req.Hash, Transactions: txs}
	if err := ctx.RespondPayload(payload.NewMessage(payload.CMDBlockTransactions, resp)); err != nil {
		p.log.Debug("failed to send block transactions",
			zap.Uint64("peer", uint64(peer)),
			zap.Error(err))
	}
}

// handleBlockTransactions completes a pending reconstruction. A response
// for a hash with no pending entry (late or duplicate) is ignored.
func (p *RelayProtocol) handleBlockTransactions(_ Context, peer PeerID, bt *payload.BlockTransactions) {
	p.pendingLock.Lock()
	pending, ok := p.pendingCompactBlocks[bt.Hash]
	if ok {
		delete(p.pendingCompactBlocks, bt.Hash)
		pendingCompacts.Set(float64(len(p.pendingCompactBlocks)))
	}
	p.pendingLock.Unlock()
	if !ok {
		return
	}

	b, _ := p.reconstructBlock(pending.cb, bt.Transactions)
	if b == nil {
		// A short-id collision can still fail the fill-in. The pending
		// entry is gone already, the block is dropped until some peer
		// relays it again.
		p.log.Debug("reconstruction failed after fill-in, block dropped",
			zap.String("hash", bt.Hash.StringLE()))
		return
	}
	if err := p.sync.ProcessNewBlock(peer, b); err != nil {
		p.log.Info("reconstructed block rejected", zap.Error(err))
	}
}

// reconstructBlock rebuilds a block from its compact form and the given
// extra transactions, consulting the main and the orphan pool. It returns
// either the block or the list of slot indexes that couldn't be resolved.
// A short-id collision that produced a wrong match is detected through the
// merkle root and degrades to requesting every non-prefilled slot.
func (p *RelayProtocol) reconstructBlock(cb *payload.CompactBlock, extra []*transaction.Transaction) (*block.Block, []uint32) {
	key0, key1 := payload.ShortIDKeys(cb.Nonce, &cb.Header)

	txs := p.txPool.GetVerifiedTransactions()
	txs = append(txs, p.orphanPool.GetVerifiedTransactions()...)
	// Extra transactions go last so that explicit fill-ins win.
	txs = append(txs, extra...)

	txsMap := make(map[payload.ShortID]*transaction.Transaction, len(txs))
	for _, tx := range txs {
		txsMap[payload.ShortTransactionID(key0, key1, tx.Hash())] = tx
	}

	slots := make([]*transaction.Transaction, cb.TxCount())
	for _, pf := range cb.Prefilled {
		slots[pf.Index] = pf.Transaction
	}

	var (
		missing []uint32
		next    int
	)
	for i := range slots {
		if slots[i] != nil {
			continue
		}
		if next >= len(cb.ShortIDs) {
			// Duplicate prefilled slots are rejected at decode time, but
			// don't trust any caller to have enough short ids.
			missing = append(missing, uint32(i))
			continue
		}
		shortID := cb.ShortIDs[next]
		next++
		tx, ok := txsMap[shortID]
		if !ok {
			missing = append(missing, uint32(i))
			continue
		}
		delete(txsMap, shortID) // One tx fills one slot.
		slots[i] = tx
	}
	if len(missing) != 0 {
		return nil, missing
	}

	b := block.New(cb.Header, slots, cb.Uncles)
	if !b.ComputeMerkleRoot().Equals(cb.Header.MerkleRoot) {
		// Some short id matched the wrong transaction, re-request all
		// non-prefilled slots.
		all := make([]uint32, 0, len(cb.ShortIDs))
		prefilled := make(map[uint32]bool, len(cb.Prefilled))
		for _, pf := range cb.Prefilled {
			prefilled[pf.Index] = true
		}
		for i := 0; i < cb.TxCount(); i++ {
			if !prefilled[uint32(i)] {
				all = append(all, uint32(i))
			}
		}
		return nil, all
	}
	return b, nil
}

// prunePending expires pending reconstructions that never got their
// BlockTransactions response.
func (p *RelayProtocol) prunePending() {
	var (
		now = p.sync.now()
		ttl = p.sync.cfg.PendingCompactTTL
	)
	p.pendingLock.Lock()
	for h, pending := range p.pendingCompactBlocks {
		if pending.since+ttl < now {
			delete(p.pendingCompactBlocks, h)
			p.log.Debug("expired pending compact block",
				zap.String("hash", h.StringLE()))
		}
	}
	pendingCompacts.Set(float64(len(p.pendingCompactBlocks)))
	p.pendingLock.Unlock()
}
