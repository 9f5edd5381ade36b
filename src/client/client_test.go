package client

import (
	"context"
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
	"github.com/mosaicnetworks/tally/src/service"
	"github.com/mosaicnetworks/tally/src/token"
	"github.com/mosaicnetworks/tally/src/tracker"
	"github.com/stretchr/testify/require"
)

type harness struct {
	t      *testing.T
	clock  *clockwork.FakeClock
	node   *node.Node
	client *Client
}

func newHarness(t *testing.T) *harness {
	conf := node.TestConfig(t)
	clock := clockwork.NewFakeClockAt(time.Unix(1700000000, 0))
	conf.Clock = clock

	db := ledger.NewInmemStore()
	state := app.NewState(db, nil, -1, common.NewTestEntry(t, "app"))
	proxy := inmem.NewInmemProxy(state, common.NewTestEntry(t, "proxy"))

	key, _ := keys.GenerateECDSAKey()
	n, err := node.NewNode(conf, node.NewValidator(key, "client"), chain.NewStore(db), proxy)
	require.NoError(t, err)
	n.RunAsync()

	s := service.NewService("127.0.0.1:0", n, state, proxy.SubmitTx, common.NewTestEntry(t, "service"))
	server := httptest.NewServer(s.Handler())

	t.Cleanup(func() {
		server.Close()
		n.Shutdown()
	})

	return &harness{
		t:      t,
		clock:  clock,
		node:   n,
		client: NewClient(server.URL, common.NewTestEntry(t, "client")),
	}
}

// send submits ins, commits it and returns the receipt.
func (h *harness) send(key solana.PrivateKey, program solana.PublicKey, ins ledger.Instruction) *ledger.Receipt {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	hash, err := h.client.Send(ctx, key, program, ins)
	require.NoError(h.t, err)

	require.NoError(h.t, h.clock.BlockUntilContext(ctx, 1))
	h.clock.Advance(time.Second)

	receipt, err := h.client.WaitReceipt(ctx, hash, 5*time.Millisecond)
	require.NoError(h.t, err)
	require.Equal(h.t, hash, receipt.TxHash)
	return receipt
}

func TestClientRewardCycle(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	admin := solana.NewWallet().PrivateKey
	alice := solana.NewWallet().PrivateKey
	mint := solana.NewWallet().PublicKey()
	rewardVault := solana.NewWallet().PublicKey()
	reserveVault := solana.NewWallet().PublicKey()
	trackerAddr, _ := tracker.TrackerAddress()

	_, err := h.client.GetTracker(ctx)
	require.True(t, IsNotFound(err), err)

	for _, step := range []struct {
		program solana.PublicKey
		ins     ledger.Instruction
	}{
		{token.ProgramID, token.CreateMintArgs{Mint: mint, Decimals: 6}},
		{token.ProgramID, token.CreateAccountArgs{Account: rewardVault, Mint: mint, Owner: trackerAddr}},
		{token.ProgramID, token.CreateAccountArgs{Account: reserveVault, Mint: mint, Owner: admin.PublicKey()}},
		{token.ProgramID, token.MintToArgs{Mint: mint, Destination: rewardVault, Amount: 5000}},
		{tracker.ProgramID, tracker.InitializeTrackerArgs{
			PeriodDuration:         60,
			MinimumPointsThreshold: 5,
			TokensPerPeriod:        1000,
			RewardMint:             mint,
		}},
	} {
		r := h.send(admin, step.program, step.ins)
		require.True(t, r.Succeeded(), r.Message)
	}

	tr, err := h.client.GetTracker(ctx)
	require.NoError(t, err)
	require.Equal(t, admin.PublicKey(), tr.Admin)

	r := h.send(alice, tracker.ProgramID, tracker.RecordContributionArgs{
		Kind:        tracker.Feature,
		Impact:      tracker.Critical,
		Description: "period rollover",
	})
	require.True(t, r.Succeeded(), r.Message)

	entries, err := h.client.GetContributions(ctx, alice.PublicKey(), nil)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, tracker.Pending, entries[0].Status)

	r = h.send(admin, tracker.ProgramID, tracker.ReviewContributionArgs{
		Contribution: entries[0].Address,
		Approve:      true,
	})
	require.True(t, r.Succeeded(), r.Message)

	contribution, err := h.client.GetContribution(ctx, entries[0].Address)
	require.NoError(t, err)
	require.Equal(t, tracker.Approved, contribution.Status)
	require.NotNil(t, contribution.ReviewedAt)

	// Let period 0 expire.
	h.clock.Advance(time.Minute)

	r = h.send(admin, tracker.ProgramID, tracker.ProcessPeriodDistributionArgs{
		PeriodNumber: 0,
		RewardVault:  rewardVault,
		ReserveVault: reserveVault,
	})
	require.True(t, r.Succeeded(), r.Message)

	periods, err := h.client.GetPeriods(ctx)
	require.NoError(t, err)
	require.Len(t, periods, 2)
	require.True(t, periods[0].IsFinalized)

	claim, err := h.client.GetClaimable(ctx, alice.PublicKey(), 0)
	require.NoError(t, err)
	require.Equal(t, uint64(1000), claim.Share)

	ata, err := token.AssociatedAddress(alice.PublicKey(), mint)
	require.NoError(t, err)

	r = h.send(alice, tracker.ProgramID, tracker.ClaimRewardsArgs{
		PeriodNumber: 0,
		RewardVault:  rewardVault,
		TokenAccount: ata,
	})
	require.True(t, r.Succeeded(), r.Message)

	account, err := h.client.GetTokenAccount(ctx, ata)
	require.NoError(t, err)
	require.Equal(t, uint64(1000), account.Amount)
	require.Equal(t, alice.PublicKey(), account.Owner)

	contributor, err := h.client.GetContributor(ctx, alice.PublicKey())
	require.NoError(t, err)
	require.Equal(t, uint64(1000), contributor.TotalTokensClaimed)
	require.Equal(t, int64(0), contributor.LastClaimedPeriod)

	// A second claim is refused with the tracker's error code.
	r = h.send(alice, tracker.ProgramID, tracker.ClaimRewardsArgs{
		PeriodNumber: 0,
		RewardVault:  rewardVault,
		TokenAccount: ata,
	})
	require.False(t, r.Succeeded())
	require.Equal(t, uint32(tracker.AlreadyClaimed), r.Code)

	block, err := h.client.GetBlock(ctx, 0)
	require.NoError(t, err)
	require.Len(t, block.Transactions(), 1)

	stats, err := h.client.GetStats(ctx)
	require.NoError(t, err)
	require.Equal(t, "Running", stats["state"])
}

func TestClientErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"code":6007,"error":"period 0 is not finalized"}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, nil)
	_, err := c.GetClaimable(context.Background(), solana.NewWallet().PublicKey(), 0)
	require.Error(t, err)
	require.False(t, IsNotFound(err))

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	require.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
	require.Equal(t, uint32(6007), apiErr.Code)
	require.Equal(t, "period 0 is not finalized", apiErr.Message)
}

func TestNewClientEndpoint(t *testing.T) {
	require.Equal(t, "http://127.0.0.1:8000", NewClient("127.0.0.1:8000", nil).endpoint)
	require.Equal(t, "https://tally.example", NewClient("https://tally.example", nil).endpoint)
}
