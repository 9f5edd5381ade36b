package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/jonboulle/clockwork"
	"github.com/mosaicnetworks/tally/src/app"
	"github.com/mosaicnetworks/tally/src/chain"
	"github.com/mosaicnetworks/tally/src/common"
	"github.com/mosaicnetworks/tally/src/crypto/keys"
	"github.com/mosaicnetworks/tally/src/ledger"
	"github.com/mosaicnetworks/tally/src/node"
	"github.com/mosaicnetworks/tally/src/proxy/inmem"
	"github.com/mosaicnetworks/tally/src/token"
	"github.com/mosaicnetworks/tally/src/tracker"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	t      *testing.T
	clock  *clockwork.FakeClock
	node   *node.Node
	server *httptest.Server
	nonce  uint64

	admin        solana.PrivateKey
	alice        solana.PrivateKey
	mint         solana.PublicKey
	rewardVault  solana.PublicKey
	reserveVault solana.PublicKey
}

func newFixture(t *testing.T) *fixture {
	conf := node.TestConfig(t)
	clock := clockwork.NewFakeClockAt(time.Unix(1700000000, 0))
	conf.Clock = clock

	db := ledger.NewInmemStore()
	state := app.NewState(db, nil, -1, common.NewTestEntry(t, "app"))
	proxy := inmem.NewInmemProxy(state, common.NewTestEntry(t, "proxy"))

	key, _ := keys.GenerateECDSAKey()
	n, err := node.NewNode(conf, node.NewValidator(key, "api"), chain.NewStore(db), proxy)
	require.NoError(t, err)
	n.RunAsync()

	service := NewService("127.0.0.1:0", n, state, proxy.SubmitTx, common.NewTestEntry(t, "service"))
	server := httptest.NewServer(service.Handler())

	f := &fixture{
		t:            t,
		clock:        clock,
		node:         n,
		server:       server,
		admin:        solana.NewWallet().PrivateKey,
		alice:        solana.NewWallet().PrivateKey,
		mint:         solana.NewWallet().PublicKey(),
		rewardVault:  solana.NewWallet().PublicKey(),
		reserveVault: solana.NewWallet().PublicKey(),
	}

	t.Cleanup(func() {
		server.Close()
		n.Shutdown()
	})
	return f
}

func (f *fixture) post(key solana.PrivateKey, program solana.PublicKey, ins ledger.Instruction) string {
	f.nonce++
	raw, err := ledger.BuildTransaction(key, program, f.nonce, ins)
	require.NoError(f.t, err)

	resp, err := http.Post(f.server.URL+"/tx", "application/json", bytes.NewReader(raw))
	require.NoError(f.t, err)
	defer resp.Body.Close()
	require.Equal(f.t, http.StatusAccepted, resp.StatusCode)

	var res SubmitResponse
	require.NoError(f.t, json.NewDecoder(resp.Body).Decode(&res))
	return res.TxHash
}

// commit fires the heartbeat and waits for the block.
func (f *fixture) commit() {
	index := f.node.GetLastBlockIndex() + 1

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(f.t, f.clock.BlockUntilContext(ctx, 1))
	f.clock.Advance(time.Second)

	require.Eventually(f.t, func() bool {
		return f.node.GetLastBlockIndex() >= index
	}, 5*time.Second, 5*time.Millisecond)
}

func (f *fixture) get(path string, v interface{}) int {
	resp, err := http.Get(f.server.URL + path)
	require.NoError(f.t, err)
	defer resp.Body.Close()

	body, err := ioutil.ReadAll(resp.Body)
	require.NoError(f.t, err)
	if v != nil {
		require.NoError(f.t, json.Unmarshal(body, v), string(body))
	}
	return resp.StatusCode
}

func (f *fixture) receipt(hash string) ledger.Receipt {
	var r ledger.Receipt
	require.Equal(f.t, http.StatusOK, f.get("/receipt/"+hash, &r))
	return r
}

func (f *fixture) genesis() {
	trackerAddr, _ := tracker.TrackerAddress()
	hashes := []string{
		f.post(f.admin, token.ProgramID, token.CreateMintArgs{Mint: f.mint, Decimals: 6}),
		f.post(f.admin, token.ProgramID, token.CreateAccountArgs{Account: f.rewardVault, Mint: f.mint, Owner: trackerAddr}),
		f.post(f.admin, token.ProgramID, token.CreateAccountArgs{Account: f.reserveVault, Mint: f.mint, Owner: f.admin.PublicKey()}),
		f.post(f.admin, token.ProgramID, token.MintToArgs{Mint: f.mint, Destination: f.rewardVault, Amount: 5000}),
		f.post(f.admin, tracker.ProgramID, tracker.InitializeTrackerArgs{
			PeriodDuration:         3600,
			MinimumPointsThreshold: 5,
			TokensPerPeriod:        1000,
			RewardMint:             f.mint,
		}),
	}
	f.commit()
	for _, h := range hashes {
		r := f.receipt(h)
		require.True(f.t, r.Succeeded(), r.Message)
	}
}

func TestTrackerAPI(t *testing.T) {
	f := newFixture(t)

	var e ErrorResponse
	require.Equal(t, http.StatusNotFound, f.get("/tracker", &e))
	require.Equal(t, uint32(tracker.NotInitialized), e.Code)

	f.genesis()

	var tr tracker.Tracker
	require.Equal(t, http.StatusOK, f.get("/tracker", &tr))
	require.Equal(t, f.admin.PublicKey(), tr.Admin)
	require.Equal(t, uint64(1000), tr.TokensPerPeriod)

	var p tracker.Period
	require.Equal(t, http.StatusOK, f.get("/period/0", &p))
	require.Equal(t, int64(1700000001), p.StartTime)
	require.Equal(t, http.StatusNotFound, f.get("/period/7", nil))

	addr, _ := tracker.ContributionAddress(f.alice.PublicKey(), 0, 0)
	h := f.post(f.alice, tracker.ProgramID, tracker.RecordContributionArgs{
		Kind:        tracker.CodeReview,
		Impact:      tracker.Major,
		Description: "reviewed the parser",
	})
	f.commit()
	r := f.receipt(h)
	require.True(t, r.Succeeded())

	var c tracker.Contribution
	require.Equal(t, http.StatusOK, f.get("/contribution/"+addr.String(), &c))
	require.Equal(t, tracker.Pending, c.Status)
	require.Equal(t, "reviewed the parser", c.Description)

	var entries []tracker.ContributionEntry
	path := fmt.Sprintf("/contributor/%s/contributions", f.alice.PublicKey())
	require.Equal(t, http.StatusOK, f.get(path, &entries))
	require.Len(t, entries, 1)
	require.Equal(t, addr, entries[0].Address)

	require.Equal(t, http.StatusOK, f.get(path+"?period=1", &entries))
	require.Empty(t, entries)

	var contributor tracker.Contributor
	require.Equal(t, http.StatusOK, f.get("/contributor/"+f.alice.PublicKey().String(), &contributor))
	require.Equal(t, uint64(1), contributor.ContributionCount)
	require.Equal(t, http.StatusNotFound, f.get("/contributor/"+f.admin.PublicKey().String(), nil))

	// Period 0 is still open.
	require.Equal(t, http.StatusUnprocessableEntity,
		f.get(fmt.Sprintf("/contributor/%s/claimable/0", f.alice.PublicKey()), &e))
	require.Equal(t, uint32(tracker.PeriodNotFinalized), e.Code)

	var account token.Account
	require.Equal(t, http.StatusOK, f.get("/token/"+f.rewardVault.String(), &account))
	require.Equal(t, uint64(5000), account.Amount)
	require.Equal(t, http.StatusNotFound, f.get("/token/"+solana.NewWallet().PublicKey().String(), nil))

	var mint token.Mint
	require.Equal(t, http.StatusOK, f.get("/mint/"+f.mint.String(), &mint))
	require.Equal(t, uint64(5000), mint.Supply)
}

func TestChainAPI(t *testing.T) {
	f := newFixture(t)
	f.genesis()

	var block chain.Block
	require.Equal(t, http.StatusOK, f.get("/block/0", &block))
	require.Len(t, block.Body.Transactions, 5)
	require.Len(t, block.Body.Receipts, 5)

	require.Equal(t, http.StatusNotFound, f.get("/block/1", nil))
	require.Equal(t, http.StatusBadRequest, f.get("/block/abc", nil))

	var stats map[string]string
	require.Equal(t, http.StatusOK, f.get("/stats", &stats))
	require.Equal(t, "0", stats["last_block_index"])
	require.Equal(t, "api", stats["moniker"])

	require.Equal(t, http.StatusNotFound, f.get("/receipt/0XDEADBEEF", nil))

	resp, err := http.Get(f.server.URL + "/metrics")
	require.NoError(t, err)
	body, _ := ioutil.ReadAll(resp.Body)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(body), "tally_blocks_committed_total")
}

func TestSubmitTxRejectsGarbage(t *testing.T) {
	f := newFixture(t)

	resp, err := http.Post(f.server.URL+"/tx", "application/json", bytes.NewReader([]byte("garbage")))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	tx := ledger.NewTransaction(tracker.ProgramID, 1, []byte{1})
	require.NoError(t, tx.Sign(f.alice))
	tx.Nonce = 2
	raw, err := tx.Marshal()
	require.NoError(t, err)

	resp, err = http.Post(f.server.URL+"/tx", "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	var e ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&e))
	resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, uint32(ledger.InvalidSignature), e.Code)

	require.Equal(t, http.StatusBadRequest, f.get("/contribution/not-a-key", nil))
}

func TestSubmitTxAfterShutdown(t *testing.T) {
	f := newFixture(t)
	f.node.Shutdown()

	raw, err := ledger.BuildTransaction(f.admin, token.ProgramID, 1,
		token.CreateMintArgs{Mint: f.mint, Decimals: 6})
	require.NoError(t, err)

	resp, err := http.Post(f.server.URL+"/tx", "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	var e ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&e))
	resp.Body.Close()
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	require.Equal(t, uint32(ledger.Internal), e.Code)
}
