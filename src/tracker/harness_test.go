package tracker

import (
	"strings"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/mosaicnetworks/tally/src/common"
	"github.com/mosaicnetworks/tally/src/ledger"
	"github.com/mosaicnetworks/tally/src/token"
	"github.com/stretchr/testify/require"
)

const genesisTime int64 = 1700000000

type encoder interface {
	Encode() ([]byte, error)
}

// harness drives the tracker through the ledger runtime with a manual clock.
type harness struct {
	t       *testing.T
	store   *ledger.InmemStore
	runtime *ledger.Runtime
	now     int64
	block   int
	nonce   uint64

	admin        solana.PrivateKey
	mint         solana.PublicKey
	rewardVault  solana.PublicKey
	reserveVault solana.PublicKey
}

func newHarness(t *testing.T) *harness {
	store := ledger.NewInmemStore()
	h := &harness{
		t:     t,
		store: store,
		runtime: ledger.NewRuntime(store,
			common.NewTestEntry(t, "runtime"),
			token.NewProgram(),
			NewProgram(common.NewTestEntry(t, "tracker"))),
		now:          genesisTime,
		admin:        solana.NewWallet().PrivateKey,
		mint:         solana.NewWallet().PublicKey(),
		rewardVault:  solana.NewWallet().PublicKey(),
		reserveVault: solana.NewWallet().PublicKey(),
	}

	trackerAddr, _ := TrackerAddress()
	h.mustExec(h.admin, token.ProgramID, token.CreateMintArgs{Mint: h.mint, Decimals: 6})
	h.mustExec(h.admin, token.ProgramID, token.CreateAccountArgs{Account: h.rewardVault, Mint: h.mint, Owner: trackerAddr})
	h.mustExec(h.admin, token.ProgramID, token.CreateAccountArgs{Account: h.reserveVault, Mint: h.mint, Owner: h.admin.PublicKey()})
	h.mustExec(h.admin, token.ProgramID, token.MintToArgs{Mint: h.mint, Destination: h.rewardVault, Amount: 1000000})
	return h
}

func (h *harness) advance(seconds int64) {
	h.now += seconds
}

func (h *harness) exec(key solana.PrivateKey, program solana.PublicKey, args encoder) *ledger.Receipt {
	data, err := args.Encode()
	require.NoError(h.t, err)

	h.nonce++
	h.block++
	tx := ledger.NewTransaction(program, h.nonce, data)
	require.NoError(h.t, tx.Sign(key))
	raw, err := tx.Marshal()
	require.NoError(h.t, err)

	r, err := h.runtime.Execute(raw, h.block, h.now)
	require.NoError(h.t, err)
	return r
}

func (h *harness) mustExec(key solana.PrivateKey, program solana.PublicKey, args encoder) *ledger.Receipt {
	r := h.exec(key, program, args)
	require.True(h.t, r.Succeeded(), "%s: %s", r.Program, r.Message)
	return r
}

func (h *harness) run(key solana.PrivateKey, args encoder) *ledger.Receipt {
	return h.exec(key, ProgramID, args)
}

func (h *harness) init(duration int64, threshold, tokens uint64) {
	h.mustExec(h.admin, ProgramID, InitializeTrackerArgs{
		PeriodDuration:         duration,
		MinimumPointsThreshold: threshold,
		TokensPerPeriod:        tokens,
		RewardMint:             h.mint,
	})
}

// nextContribution returns the address the next contribution of key would be
// stored at.
func (h *harness) nextContribution(key solana.PrivateKey) solana.PublicKey {
	txn := h.txn()
	tracker, err := LoadTracker(txn)
	require.NoError(h.t, err)
	c, err := LoadContributor(txn, key.PublicKey())
	require.NoError(h.t, err)
	seq := uint64(0)
	if c != nil {
		seq = c.ContributionCount
	}
	addr, _ := ContributionAddress(key.PublicKey(), tracker.CurrentPeriod, seq)
	return addr
}

func (h *harness) contribute(key solana.PrivateKey, kind Kind, impact Impact, description string) solana.PublicKey {
	addr := h.nextContribution(key)
	h.mustExec(key, ProgramID, RecordContributionArgs{Kind: kind, Impact: impact, Description: description})
	return addr
}

func (h *harness) review(addr solana.PublicKey, approve bool) *ledger.Receipt {
	return h.run(h.admin, ReviewContributionArgs{Contribution: addr, Approve: approve})
}

func (h *harness) approve(addr solana.PublicKey) {
	r := h.review(addr, true)
	require.True(h.t, r.Succeeded(), r.Message)
}

func (h *harness) finalize(period uint64) *ledger.Receipt {
	return h.run(h.admin, ProcessPeriodDistributionArgs{
		PeriodNumber: period,
		RewardVault:  h.rewardVault,
		ReserveVault: h.reserveVault,
	})
}

func (h *harness) ata(key solana.PrivateKey) solana.PublicKey {
	addr, err := token.AssociatedAddress(key.PublicKey(), h.mint)
	require.NoError(h.t, err)
	return addr
}

func (h *harness) claim(key solana.PrivateKey, period uint64) *ledger.Receipt {
	return h.run(key, ClaimRewardsArgs{
		PeriodNumber: period,
		RewardVault:  h.rewardVault,
		TokenAccount: h.ata(key),
	})
}

func (h *harness) txn() *ledger.Txn {
	return ledger.NewTxn(h.store)
}

func (h *harness) tracker() *Tracker {
	t, err := LoadTracker(h.txn())
	require.NoError(h.t, err)
	return t
}

func (h *harness) period(n uint64) *Period {
	p, err := LoadPeriod(h.txn(), n)
	require.NoError(h.t, err)
	return p
}

func (h *harness) contributor(key solana.PrivateKey) *Contributor {
	c, err := LoadContributor(h.txn(), key.PublicKey())
	require.NoError(h.t, err)
	require.NotNil(h.t, c)
	return c
}

func (h *harness) contribution(addr solana.PublicKey) *Contribution {
	c, err := LoadContribution(h.txn(), addr)
	require.NoError(h.t, err)
	return c
}

// balance returns the token balance at addr, 0 when the account is missing.
func (h *harness) balance(addr solana.PublicKey) uint64 {
	b, err := token.Balance(h.txn(), addr)
	if token.Is(err, token.AccountNotFound) {
		return 0
	}
	require.NoError(h.t, err)
	return b
}

// accounts dumps every record in the store.
func (h *harness) accounts() map[string]string {
	res := make(map[string]string)
	err := h.store.Iterate(ledger.AccountPrefix(), func(key, value []byte) error {
		res[string(key)] = string(value)
		return nil
	})
	require.NoError(h.t, err)
	return res
}

// contributions returns every stored contribution.
func (h *harness) contributions() []*Contribution {
	var res []*Contribution
	err := h.store.Iterate(ledger.AccountPrefix(), func(key, value []byte) error {
		if kind, ok := RecordType(value); ok && kind == RecordContribution {
			c := new(Contribution)
			if err := c.Unmarshal(value); err != nil {
				return err
			}
			res = append(res, c)
		}
		return nil
	})
	require.NoError(h.t, err)
	return res
}

// checkInvariants asserts the properties that must hold after every
// committed transaction.
func (h *harness) checkInvariants() {
	tracker := h.tracker()

	approved := make(map[uint64]uint64)
	for _, c := range h.contributions() {
		require.LessOrEqual(h.t, c.PeriodNumber, tracker.CurrentPeriod)
		require.Equal(h.t, c.Points, mustPoints(h.t, c.Kind, c.Impact))
		if c.Status == Approved {
			approved[c.PeriodNumber] += c.Points
		}
	}

	for n := uint64(0); n <= tracker.CurrentPeriod; n++ {
		p := h.period(n)
		require.Equal(h.t, n, p.Number)
		require.LessOrEqual(h.t, p.TokensDistributed, p.TokensAllocated, "period %d", n)
		require.Equal(h.t, approved[n], p.TotalPoints, "period %d", n)
		require.Equal(h.t, n != tracker.CurrentPeriod, p.IsFinalized, "period %d", n)
	}

	_, err := LoadPeriod(h.txn(), tracker.CurrentPeriod+1)
	require.True(h.t, Is(err, InvalidParameters))
}

func mustPoints(t *testing.T, kind Kind, impact Impact) uint64 {
	p, err := Points(kind, impact)
	require.NoError(t, err)
	return p
}

func requireCode(t *testing.T, r *ledger.Receipt, code ErrType) {
	t.Helper()
	require.Equal(t, uint32(code), r.Code, r.Message)
	require.True(t, strings.HasPrefix(r.Message, code.String()), r.Message)
}
