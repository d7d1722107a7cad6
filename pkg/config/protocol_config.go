package config

import (
	"errors"
)

// ProtocolConfiguration represents the sync/relay protocol config.
type ProtocolConfiguration struct {
	// MaxTipAge is the tip staleness (in milliseconds) past which the node
	// considers itself to be in initial block download.
	MaxTipAge uint64 `yaml:"MaxTipAge"`
	// ChainSyncTimeout is the time (ms) a lagging outbound peer is given
	// to catch up before it gets probed.
	ChainSyncTimeout uint64 `yaml:"ChainSyncTimeout"`
	// EvictionTestResponseTime is the time (ms) a probed peer is given to
	// answer the probe before disconnection.
	EvictionTestResponseTime uint64 `yaml:"EvictionTestResponseTime"`
	// MaxOutboundPeersToProtect is the number of outbound peers exempted
	// from chain-sync eviction.
	MaxOutboundPeersToProtect int32 `yaml:"MaxOutboundPeersToProtect"`
	// TaskQueueCapacity is the size of the dispatcher work queue.
	TaskQueueCapacity int `yaml:"TaskQueueCapacity"`
	// MaxHeadersResults is the maximum number of headers in one Headers
	// message.
	MaxHeadersResults int `yaml:"MaxHeadersResults"`
	// MaxBlocksInFlightPerPeer bounds the per-peer block download window.
	MaxBlocksInFlightPerPeer int `yaml:"MaxBlocksInFlightPerPeer"`
	// BlockDownloadWindow bounds how far above the stored chain blocks are
	// fetched.
	BlockDownloadWindow uint64 `yaml:"BlockDownloadWindow"`
	// HeadersDownloadTimeoutBase is the base headers-sync allowance (ms).
	HeadersDownloadTimeoutBase uint64 `yaml:"HeadersDownloadTimeoutBase"`
	// HeadersDownloadTimeoutPerHeader is the per-expected-header
	// headers-sync allowance (ms).
	HeadersDownloadTimeoutPerHeader uint64 `yaml:"HeadersDownloadTimeoutPerHeader"`
	// BlockProductionInterval is the expected block interval (ms), used to
	// estimate how many headers a syncing peer has to deliver.
	BlockProductionInterval uint64 `yaml:"BlockProductionInterval"`
	// RelayCacheSize is the number of block/transaction hashes remembered
	// for relay deduplication.
	RelayCacheSize int `yaml:"RelayCacheSize"`
	// PendingCompactTTL is the time (ms) an unresolved compact block is
	// kept waiting for its BlockTransactions response.
	PendingCompactTTL uint64 `yaml:"PendingCompactTTL"`
	// MemPoolSize is the transaction pool capacity.
	MemPoolSize int `yaml:"MemPoolSize"`
	// OrphanPoolSize is the orphan transaction pool capacity.
	OrphanPoolSize int `yaml:"OrphanPoolSize"`
}

// DefaultProtocolConfiguration returns the protocol settings used when the
// config file leaves them out.
func DefaultProtocolConfiguration() ProtocolConfiguration {
	return ProtocolConfiguration{
		MaxTipAge:                       24 * 60 * 60 * 1000,
		ChainSyncTimeout:                20 * 60 * 1000,
		EvictionTestResponseTime:        120 * 1000,
		MaxOutboundPeersToProtect:       4,
		TaskQueueCapacity:               65535,
		MaxHeadersResults:               2000,
		MaxBlocksInFlightPerPeer:        16,
		BlockDownloadWindow:             1024,
		HeadersDownloadTimeoutBase:      15 * 60 * 1000,
		HeadersDownloadTimeoutPerHeader: 1,
		BlockProductionInterval:         10 * 1000,
		RelayCacheSize:                  50000,
		PendingCompactTTL:               30 * 1000,
		MemPoolSize:                     50000,
		OrphanPoolSize:                  10000,
	}
}

// Validate checks that the settings are usable.
func (p ProtocolConfiguration) Validate() error {
	if p.TaskQueueCapacity <= 0 {
		return errors.New("TaskQueueCapacity must be positive")
	}
	if p.MaxHeadersResults <= 0 {
		return errors.New("MaxHeadersResults must be positive")
	}
	if p.MaxBlocksInFlightPerPeer <= 0 {
		return errors.New("MaxBlocksInFlightPerPeer must be positive")
	}
	if p.RelayCacheSize <= 0 {
		return errors.New("RelayCacheSize must be positive")
	}
	return nil
}
