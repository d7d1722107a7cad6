package network

import (
	"go.uber.org/zap"

	"github.com/carbon-dev/carbon-go/pkg/core/block"
	"github.com/carbon-dev/carbon-go/pkg/network/payload"
)

// handleGetHeaders serves the peer headers following the latest common
// ancestor named by its locator.
func (p *SyncProtocol) handleGetHeaders(ctx Context, peer PeerID, msg *payload.GetHeaders) {
	if len(msg.BlockLocatorHashes) == 0 {
		p.log.Debug("getheaders with empty locator", zap.Uint64("peer", uint64(peer)))
		return
	}
	ancestor, err := p.sync.LocateLatestCommonAncestor(msg.BlockLocatorHashes)
	if err != nil {
		p.log.Debug("can't locate common ancestor", zap.Error(err))
		return
	}
	headers := p.sync.GetLocatorResponse(ancestor.Number+1, msg.HashStop)
	resp := payload.NewMessage(payload.CMDHeaders, &payload.Headers{Hdrs: headers})
	if err := ctx.SendPayload(peer, resp); err != nil {
		p.log.Debug("failed to send headers",
			zap.Uint64("peer", uint64(peer)),
			zap.Error(err))
		return
	}
	p.log.Debug("sent headers",
		zap.Int("count", len(headers)),
		zap.Uint64("peer", uint64(peer)))
}

// handleHeaders accepts a headers batch into the header chain and updates
// the best header known for the peer. Repeated batches for an already
// known prefix are no-ops on the chain side, which makes out-of-order
// redelivery harmless.
func (p *SyncProtocol) handleHeaders(ctx Context, peer PeerID, msg *payload.Headers) {
	headers := msg.Hdrs
	if len(headers) == 0 {
		// The peer has nothing above our locator, headers sync is done.
		p.sync.peers.MarkHeadersSynced(peer)
		return
	}
	for i, h := range headers {
		if err := h.Verify(); err != nil {
			p.log.Debug("invalid header in batch", zap.Error(err))
			ctx.ReportPeer(peer, SeverityBadProtocol)
			return
		}
		if i > 0 && !headers[i].PrevHash.Equals(headers[i-1].Hash()) {
			p.log.Debug("non-contiguous headers batch", zap.Uint64("peer", uint64(peer)))
			ctx.ReportPeer(peer, SeverityBadProtocol)
			return
		}
	}
	if err := p.sync.chain.AddHeaders(headers...); err != nil {
		p.log.Info("failed to accept headers",
			zap.Uint64("peer", uint64(peer)),
			zap.Error(err))
		ctx.ReportPeer(peer, SeverityUseless)
		return
	}

	last := headers[len(headers)-1]
	if view, err := p.sync.chain.GetHeaderView(last.Hash()); err == nil {
		p.sync.peers.NewHeaderReceived(peer, view)
	}

	if len(headers) < p.sync.cfg.MaxHeadersResults {
		// A short batch means the peer delivered its tip, disarm the
		// headers-sync deadline.
		p.sync.peers.MarkHeadersSynced(peer)
	} else {
		// More to come, continue from the last accepted header.
		p.sendGetHeadersToPeer(ctx, peer, last)
	}
}

// handleGetData serves the blocks named by the inventory, silently
// skipping unknown hashes.
func (p *SyncProtocol) handleGetData(ctx Context, peer PeerID, msg *payload.GetData) {
	for _, inv := range msg.Inventory {
		if inv.Type != payload.BlockType {
			continue
		}
		b, err := p.sync.GetBlock(inv.Hash)
		if err != nil {
			continue
		}
		if err := ctx.SendPayload(peer, payload.NewMessage(payload.CMDBlock, b)); err != nil {
			p.log.Debug("failed to send block",
				zap.Uint64("peer", uint64(peer)),
				zap.Error(err))
			return
		}
	}
}

// handleBlock hands a downloaded block to the chain provider.
func (p *SyncProtocol) handleBlock(ctx Context, peer PeerID, b *block.Block) {
	if err := p.sync.ProcessNewBlock(peer, b); err != nil {
		p.log.Info("rejected block", zap.Error(err))
		ctx.ReportPeer(peer, SeverityBadProtocol)
	}
}
