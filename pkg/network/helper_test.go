package network

import (
	"sync"
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/carbon-dev/carbon-go/internal/fakechain"
	"github.com/carbon-dev/carbon-go/internal/random"
	"github.com/carbon-dev/carbon-go/pkg/config"
	"github.com/carbon-dev/carbon-go/pkg/core/block"
	"github.com/carbon-dev/carbon-go/pkg/core/transaction"
	"github.com/carbon-dev/carbon-go/pkg/network/payload"
)

// testContext implements the Context interface recording everything the
// protocol does with it.
type testContext struct {
	lock      sync.Mutex
	sessions  map[PeerID]*SessionInfo
	sent      map[PeerID][]*payload.Message
	responded []*payload.Message
	reported  map[PeerID][]Severity
}

func newTestContext(peerNum int, originated bool) *testContext {
	sessions := make(map[PeerID]*SessionInfo)
	for peer := 0; peer < peerNum; peer++ {
		sessions[PeerID(peer)] = &SessionInfo{
			Originated:    originated,
			ClientVersion: "test",
		}
	}
	return &testContext{
		sessions: sessions,
		sent:     make(map[PeerID][]*payload.Message),
		reported: make(map[PeerID][]Severity),
	}
}

func (c *testContext) SendPayload(peer PeerID, msg *payload.Message) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.sent[peer] = append(c.sent[peer], msg)
	return nil
}

func (c *testContext) RespondPayload(msg *payload.Message) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.responded = append(c.responded, msg)
	return nil
}

func (c *testContext) Sessions(peers []PeerID) []PeerSession {
	c.lock.Lock()
	defer c.lock.Unlock()
	res := make([]PeerSession, 0, len(peers))
	for _, p := range peers {
		if si, ok := c.sessions[p]; ok {
			res = append(res, PeerSession{Peer: p, Info: si})
		}
	}
	return res
}

func (c *testContext) SessionInfo(peer PeerID) *SessionInfo {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.sessions[peer]
}

func (c *testContext) ReportPeer(peer PeerID, severity Severity) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.reported[peer] = append(c.reported[peer], severity)
}

func (c *testContext) RegisterTimer(TimerToken, time.Duration) error {
	return nil
}

// sentCount returns the number of messages with the given command sent to
// the peer.
func (c *testContext) sentCount(peer PeerID, cmd payload.CommandType) int {
	c.lock.Lock()
	defer c.lock.Unlock()
	var n int
	for _, msg := range c.sent[peer] {
		if msg.Command == cmd {
			n++
		}
	}
	return n
}

// reportedPeers returns ids of all reported peers.
func (c *testContext) reportedPeers() map[PeerID]bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	res := make(map[PeerID]bool)
	for p := range c.reported {
		res[p] = true
	}
	return res
}

func (c *testContext) reportCount(peer PeerID) int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return len(c.reported[peer])
}

// newTestSync creates a synchronizer over the given chain with a settable
// millisecond clock.
func newTestSync(t *testing.T, chain *fakechain.FakeChain) (*Synchronizer, *uint64) {
	now := new(uint64)
	*now = 1
	s := NewSynchronizer(chain, config.DefaultProtocolConfiguration(), zaptest.NewLogger(t))
	s.now = func() uint64 { return *now }
	return s, now
}

// mockHeaderView makes a header view carrying only cumulative difficulty,
// which is all the eviction engine looks at.
func mockHeaderView(totalDifficulty uint64) *block.HeaderView {
	return block.NewHeaderView(&block.Header{}, uint256.NewInt(totalDifficulty))
}

// makeHeaders builds n linked headers of difficulty 1 on top of prev.
func makeHeaders(prev *block.Header, n int) []*block.Header {
	headers := make([]*block.Header, n)
	for i := range headers {
		headers[i] = &block.Header{
			PrevHash:   prev.Hash(),
			MerkleRoot: random.Uint256(),
			Timestamp:  prev.Timestamp + 1,
			Number:     prev.Number + 1,
			Difficulty: uint256.NewInt(1),
		}
		prev = headers[i]
	}
	return headers
}

// makeTestTx returns a transaction with a unique input.
func makeTestTx() *transaction.Transaction {
	return transaction.New([]transaction.Input{{
		PreviousOutput: transaction.OutPoint{Hash: random.Uint256()},
	}}, []transaction.Output{{Capacity: 100}})
}

// makeBlock builds a block of the given transactions on top of prev with a
// valid merkle root.
func makeBlock(prev *block.Header, txs ...*transaction.Transaction) *block.Block {
	b := block.New(block.Header{
		PrevHash:   prev.Hash(),
		Timestamp:  prev.Timestamp + 1,
		Number:     prev.Number + 1,
		Difficulty: uint256.NewInt(1),
	}, txs, nil)
	b.RebuildMerkleRoot()
	return b
}

// genesisHeader returns the genesis header of the chain.
func genesisHeader(t *testing.T, chain *fakechain.FakeChain) *block.Header {
	hash, err := chain.GetBlockHash(0)
	require.NoError(t, err)
	h, err := chain.GetHeader(hash)
	require.NoError(t, err)
	return h
}
