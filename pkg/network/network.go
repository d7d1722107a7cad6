// Package network implements the sync and relay protocol engines. The
// underlying P2P transport invokes them through the ProtocolHandler
// interface and is itself consumed through Context.
package network

import (
	"time"

	"github.com/carbon-dev/carbon-go/pkg/network/payload"
)

// PeerID identifies a connected peer within the transport session manager.
type PeerID uint64

// TimerToken identifies a periodic timer registered with the transport.
type TimerToken int

// Timer tokens exposed by the protocols.
const (
	// SendGetHeadersToken triggers the GetHeaders broadcast and the
	// eviction pass.
	SendGetHeadersToken TimerToken = 1
	// BlockFetchToken triggers block-fetch selection.
	BlockFetchToken TimerToken = 2
	// RelayPruneToken triggers expiry of stale pending compact blocks.
	RelayPruneToken TimerToken = 3
)

// TimerInterval is the cadence of the sync protocol timers.
// NOTE: 100ms is what bitcoin uses.
const TimerInterval = 100 * time.Millisecond

// Severity grades a peer misbehavior report.
type Severity int

// Possible severity values.
const (
	// SeverityTimeout is used for peers that keep staying silent.
	SeverityTimeout Severity = iota
	// SeverityBadProtocol is used for protocol violations.
	SeverityBadProtocol
	// SeverityUseless is used for peers that serve nothing we need.
	SeverityUseless
)

// String implements the fmt.Stringer interface.
func (s Severity) String() string {
	switch s {
	case SeverityTimeout:
		return "timeout"
	case SeverityBadProtocol:
		return "bad protocol"
	case SeverityUseless:
		return "useless"
	default:
		return "unknown"
	}
}

// SessionInfo describes a transport session with a peer.
type SessionInfo struct {
	// Originated is true for outbound connections.
	Originated bool
	// ClientVersion is the remote user agent.
	ClientVersion string
	// RemoteAddress is the remote endpoint.
	RemoteAddress string
}

// PeerSession binds a peer id to its live session.
type PeerSession struct {
	Peer PeerID
	Info *SessionInfo
}

// Context is the transport handle given to the protocol for the duration
// of a single invocation.
type Context interface {
	// SendPayload sends a message to the given peer.
	SendPayload(peer PeerID, msg *payload.Message) error
	// RespondPayload replies to the peer whose packet is being handled.
	RespondPayload(msg *payload.Message) error
	// Sessions returns live sessions for the given subset of peers.
	Sessions(peers []PeerID) []PeerSession
	// SessionInfo returns the session of the given peer, nil if it's gone.
	SessionInfo(peer PeerID) *SessionInfo
	// ReportPeer reports peer misbehavior, which may lead to a disconnect
	// or a ban on the transport's side.
	ReportPeer(peer PeerID, severity Severity)
	// RegisterTimer registers a periodic timer with the given token.
	RegisterTimer(token TimerToken, d time.Duration) error
}

// ProtocolHandler is the interface the transport drives a protocol through.
// Its methods may be invoked from any transport thread.
type ProtocolHandler interface {
	// Initialize is called once when the protocol is attached.
	Initialize(ctx Context)
	// OnRead is called for every packet received.
	OnRead(ctx Context, peer PeerID, data []byte)
	// OnConnected is called when a new peer session is established.
	OnConnected(ctx Context, peer PeerID)
	// OnDisconnected is called when a peer session is closed.
	OnDisconnected(ctx Context, peer PeerID)
	// OnTimer is called when a registered timer fires.
	OnTimer(ctx Context, token TimerToken)
}
