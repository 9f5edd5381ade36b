package node

import (
	"context"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/jonboulle/clockwork"
	"github.com/mosaicnetworks/tally/src/app"
	"github.com/mosaicnetworks/tally/src/chain"
	"github.com/mosaicnetworks/tally/src/common"
	"github.com/mosaicnetworks/tally/src/crypto/keys"
	"github.com/mosaicnetworks/tally/src/ledger"
	"github.com/mosaicnetworks/tally/src/node/state"
	"github.com/mosaicnetworks/tally/src/proxy/inmem"
	"github.com/mosaicnetworks/tally/src/token"
	"github.com/stretchr/testify/require"
)

type testNode struct {
	*Node
	clock *clockwork.FakeClock
	proxy *inmem.InmemProxy
	app   *app.State
}

func newTestNode(t *testing.T) *testNode {
	conf := TestConfig(t)
	clock := clockwork.NewFakeClockAt(time.Unix(1700000000, 0))
	conf.Clock = clock
	conf.BlockSize = 2

	db := ledger.NewInmemStore()
	application := app.NewState(db, nil, -1, common.NewTestEntry(t, "app"))
	proxy := inmem.NewInmemProxy(application, common.NewTestEntry(t, "proxy"))

	key, _ := keys.GenerateECDSAKey()
	node, err := NewNode(conf, NewValidator(key, "sequencer"), chain.NewStore(db), proxy)
	require.NoError(t, err)

	return &testNode{Node: node, clock: clock, proxy: proxy, app: application}
}

// tick waits for the heartbeat to be scheduled and fires it.
func (n *testNode) tick(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, n.clock.BlockUntilContext(ctx, 1))
	n.clock.Advance(n.conf.HeartbeatTimeout)
}

func (n *testNode) waitBlock(t *testing.T, index int) {
	require.Eventually(t, func() bool {
		return n.GetLastBlockIndex() >= index
	}, 5*time.Second, 5*time.Millisecond)
}

func mintTxs(t *testing.T, count int) [][]byte {
	key := solana.NewWallet().PrivateKey
	res := make([][]byte, count)
	for i := range res {
		raw, err := ledger.BuildTransaction(key, token.ProgramID, uint64(i),
			token.CreateMintArgs{Mint: solana.NewWallet().PublicKey(), Decimals: 6})
		require.NoError(t, err)
		res[i] = raw
	}
	return res
}

func TestNodeCommitsOnHeartbeat(t *testing.T) {
	node := newTestNode(t)
	node.RunAsync()
	defer node.Shutdown()

	txs := mintTxs(t, 3)
	for _, tx := range txs {
		require.NoError(t, node.proxy.SubmitTx(tx))
	}

	// Block size is 2: the third transaction waits for the next heartbeat.
	node.tick(t)
	node.waitBlock(t, 0)
	node.tick(t)
	node.waitBlock(t, 1)

	b0, err := node.GetBlock(0)
	require.NoError(t, err)
	require.Equal(t, txs[:2], b0.Transactions())
	require.Equal(t, int64(1700000000), b0.Timestamp())

	b1, err := node.GetBlock(1)
	require.NoError(t, err)
	require.Equal(t, txs[2:], b1.Transactions())
	require.Equal(t, node.app.StateHash(), b1.StateHash())

	sig, err := b1.GetSignature(node.Validator().PublicKeyHex())
	require.NoError(t, err)
	ok, err := b1.Verify(sig)
	require.NoError(t, err)
	require.True(t, ok)

	for _, h := range append(b0.Receipts(), b1.Receipts()...) {
		r, err := node.app.GetReceipt(h)
		require.NoError(t, err)
		require.True(t, r.Succeeded(), r.Message)
	}

	stats := node.GetStats()
	require.Equal(t, "1", stats["last_block_index"])
	require.Equal(t, "3", stats["committed_transactions"])
	require.Equal(t, "0", stats["transaction_pool"])
	require.Equal(t, "Running", stats["state"])
	require.Equal(t, "sequencer", stats["moniker"])
}

func TestNodeSuspendResume(t *testing.T) {
	node := newTestNode(t)
	node.RunAsync()
	defer node.Shutdown()

	require.Eventually(t, func() bool {
		return node.GetState() == state.Running
	}, 5*time.Second, 5*time.Millisecond)

	node.Suspend()
	require.Equal(t, state.Suspended, node.GetState())
	require.Equal(t, state.Suspended, node.app.NodeState())

	require.NoError(t, node.proxy.SubmitTx(mintTxs(t, 1)[0]))
	node.tick(t)

	time.Sleep(50 * time.Millisecond)
	require.Equal(t, -1, node.GetLastBlockIndex())
	require.Equal(t, "1", node.GetStats()["transaction_pool"])

	node.Resume()
	node.waitBlock(t, 0)
	require.Equal(t, state.Running, node.app.NodeState())
}

func TestNodeShutdown(t *testing.T) {
	node := newTestNode(t)

	done := make(chan struct{})
	go func() {
		node.Run()
		close(done)
	}()

	require.Eventually(t, func() bool {
		return node.GetState() == state.Running
	}, 5*time.Second, 5*time.Millisecond)

	node.Shutdown()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after Shutdown")
	}
	require.Equal(t, state.Shutdown, node.app.NodeState())

	// The proxy refuses transactions nobody would sequence.
	require.Equal(t, inmem.ErrProxyClosed, node.proxy.SubmitTx(mintTxs(t, 1)[0]))

	// Idempotent.
	node.Shutdown()
}

func TestNodeStartSuspended(t *testing.T) {
	node := newTestNode(t)
	node.conf.Suspended = true
	node.RunAsync()
	defer node.Shutdown()

	require.Eventually(t, func() bool {
		return node.GetState() == state.Suspended
	}, 5*time.Second, 5*time.Millisecond)

	require.NoError(t, node.proxy.SubmitTx(mintTxs(t, 1)[0]))
	require.Eventually(t, func() bool {
		return node.GetStats()["transaction_pool"] == "1"
	}, 5*time.Second, 5*time.Millisecond)
	require.Equal(t, -1, node.GetLastBlockIndex())

	node.Resume()
	node.tick(t)
	node.waitBlock(t, 0)
}
