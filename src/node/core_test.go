package node

import (
	"fmt"
	"testing"

	"github.com/mosaicnetworks/tally/src/chain"
	"github.com/mosaicnetworks/tally/src/common"
	"github.com/mosaicnetworks/tally/src/crypto/keys"
	"github.com/mosaicnetworks/tally/src/ledger"
	"github.com/mosaicnetworks/tally/src/proxy"
	"github.com/stretchr/testify/require"
)

type recordingCallback struct {
	blocks []chain.Block
	fail   bool
}

func (r *recordingCallback) commit(block chain.Block) (proxy.CommitResponse, error) {
	if r.fail {
		return proxy.CommitResponse{}, fmt.Errorf("app unavailable")
	}
	r.blocks = append(r.blocks, block)

	receipts := make([]string, len(block.Transactions()))
	for i, tx := range block.Transactions() {
		receipts[i] = ledger.TxHash(tx)
	}
	return proxy.CommitResponse{
		StateHash: []byte(fmt.Sprintf("state-%d", block.Index())),
		Receipts:  receipts,
	}, nil
}

func newTestCore(t *testing.T, store *chain.Store, cb *recordingCallback) *Core {
	key, _ := keys.GenerateECDSAKey()
	core, err := NewCore(NewValidator(key, "test"), store, cb.commit, common.NewTestEntry(t, "core"))
	require.NoError(t, err)
	return core
}

func txs(n int) [][]byte {
	res := make([][]byte, n)
	for i := range res {
		res[i] = []byte(fmt.Sprintf("tx %d", i))
	}
	return res
}

func TestCoreCommit(t *testing.T) {
	cb := &recordingCallback{}
	store := chain.NewStore(ledger.NewInmemStore())
	core := newTestCore(t, store, cb)

	block, err := core.Commit(100, 2)
	require.NoError(t, err)
	require.Nil(t, block, "empty pool commits nothing")

	core.AddTransactions(txs(5))

	block, err = core.Commit(100, 2)
	require.NoError(t, err)
	require.Equal(t, 0, block.Index())
	require.Equal(t, txs(5)[:2], block.Transactions())
	require.Equal(t, []byte("state-0"), block.StateHash())
	require.Len(t, block.Receipts(), 2)
	require.Equal(t, 3, core.GetTransactionPoolCount())

	sig, err := block.GetSignature(core.validator.PublicKeyHex())
	require.NoError(t, err)
	ok, err := block.Verify(sig)
	require.NoError(t, err)
	require.True(t, ok)

	stored, err := store.GetBlock(0)
	require.NoError(t, err)
	require.Equal(t, block.Body.Receipts, stored.Body.Receipts)

	// The clock went backwards; the block time does not.
	block, err = core.Commit(50, 2)
	require.NoError(t, err)
	require.Equal(t, 1, block.Index())
	require.Equal(t, int64(100), block.Timestamp())

	block, err = core.Commit(150, 0)
	require.NoError(t, err)
	require.Equal(t, int64(150), block.Timestamp())
	require.Len(t, block.Transactions(), 1)
	require.False(t, core.Busy())
	require.Equal(t, 5, core.GetCommittedTransactionsCount())
}

func TestCoreCommitFailureKeepsPool(t *testing.T) {
	cb := &recordingCallback{fail: true}
	core := newTestCore(t, chain.NewStore(ledger.NewInmemStore()), cb)

	core.AddTransactions(txs(3))

	_, err := core.Commit(100, 10)
	require.Error(t, err)
	require.Equal(t, 3, core.GetTransactionPoolCount())
	require.Equal(t, -1, core.GetLastBlockIndex())

	cb.fail = false
	block, err := core.Commit(100, 10)
	require.NoError(t, err)
	require.Equal(t, 0, block.Index())
	require.Len(t, block.Transactions(), 3)
}

func TestCoreResume(t *testing.T) {
	cb := &recordingCallback{}
	store := chain.NewStore(ledger.NewInmemStore())
	core := newTestCore(t, store, cb)

	core.AddTransactions(txs(2))
	_, err := core.Commit(500, 1)
	require.NoError(t, err)
	_, err = core.Commit(600, 1)
	require.NoError(t, err)

	resumed := newTestCore(t, store, cb)
	require.Equal(t, 1, resumed.GetLastBlockIndex())

	resumed.AddTransactions(txs(1))
	block, err := resumed.Commit(10, 1)
	require.NoError(t, err)
	require.Equal(t, 2, block.Index())
	require.Equal(t, int64(600), block.Timestamp())
}
