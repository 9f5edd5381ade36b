package tracker

import (
	"github.com/gagliardetto/solana-go"
	"github.com/mosaicnetworks/tally/src/ledger"
	"github.com/mosaicnetworks/tally/src/token"
	"github.com/sirupsen/logrus"
)

// ProcessPeriodDistribution finalizes the expired current period and opens
// the next one. A period whose total is below the minimum threshold sends its
// whole allocation from the reward vault to the reserve vault; otherwise the
// allocation stays in the reward vault for contributors to claim.
func (p *Program) ProcessPeriodDistribution(ctx *ledger.Context, args ProcessPeriodDistributionArgs) error {
	tracker, err := LoadTracker(ctx.Txn)
	if err != nil {
		return err
	}
	if !ctx.Signer.Equals(tracker.Admin) {
		return newError(Unauthorized, "%s is not the admin", ctx.Signer)
	}

	period, err := LoadPeriod(ctx.Txn, args.PeriodNumber)
	if err != nil {
		return err
	}
	if period.IsFinalized {
		return newError(AlreadyFinalized, "period %d is already finalized", period.Number)
	}
	if period.Number != tracker.CurrentPeriod {
		return newError(InvalidParameters, "period %d is not the current period %d", period.Number, tracker.CurrentPeriod)
	}
	if !period.Expired(ctx.Now) {
		return newError(PeriodNotExpired, "period %d ends at %d, now %d", period.Number, period.EndTime, ctx.Now)
	}

	trackerAddr, _ := TrackerAddress()

	if args.RewardVault.Equals(args.ReserveVault) {
		return newError(VaultMismatch, "reward and reserve vault are the same account")
	}
	if err := checkVault(ctx.Txn, args.RewardVault, tracker.RewardMint, &trackerAddr); err != nil {
		return err
	}
	if err := checkVault(ctx.Txn, args.ReserveVault, tracker.RewardMint, nil); err != nil {
		return err
	}

	period.TokensAllocated = tracker.TokensPerPeriod

	belowThreshold := period.TotalPoints < tracker.MinimumPointsThreshold
	if belowThreshold {
		err := token.Transfer(ctx.Txn, args.RewardVault, args.ReserveVault, trackerAddr, period.TokensAllocated)
		if err != nil {
			return err
		}
		period.TokensDistributed = period.TokensAllocated
		if tracker.ReservePoolAmount, err = checkedAdd(tracker.ReservePoolAmount, period.TokensAllocated, "reserve pool"); err != nil {
			return err
		}
	}

	period.IsFinalized = true

	next, err := checkedAdd(period.Number, 1, "period number")
	if err != nil {
		return err
	}
	end := ctx.Now + tracker.PeriodDuration
	if end < ctx.Now {
		return newError(ArithmeticOverflow, "period end overflows")
	}

	nextAddr, nextBump := PeriodAddress(next)
	exists, err := ctx.Txn.Exists(nextAddr)
	if err != nil {
		return err
	}
	if exists {
		return newError(InvalidParameters, "period %d already exists", next)
	}

	tracker.CurrentPeriod = next

	if err := savePeriod(ctx.Txn, period); err != nil {
		return err
	}
	if err := savePeriod(ctx.Txn, &Period{
		Number:    next,
		StartTime: ctx.Now,
		EndTime:   end,
		Bump:      nextBump,
	}); err != nil {
		return err
	}
	if err := saveTracker(ctx.Txn, tracker); err != nil {
		return err
	}

	if belowThreshold {
		ctx.Logf("period %d finalized below threshold (%d < %d): %d tokens moved to reserve",
			period.Number, period.TotalPoints, tracker.MinimumPointsThreshold, period.TokensAllocated)
	} else {
		ctx.Logf("period %d finalized with %d points: %d tokens claimable",
			period.Number, period.TotalPoints, period.TokensAllocated)
	}

	p.logger.WithFields(logrus.Fields{
		"period":          period.Number,
		"total_points":    period.TotalPoints,
		"allocated":       period.TokensAllocated,
		"below_threshold": belowThreshold,
		"next_end":        end,
	}).Info("Period finalized")

	return nil
}

// checkVault verifies that the token account at addr holds mint and, when
// owner is given, is owned by it.
func checkVault(txn *ledger.Txn, addr, mint solana.PublicKey, owner *solana.PublicKey) error {
	acct, err := token.LoadAccount(txn, addr)
	if err != nil {
		if token.Is(err, token.AccountNotFound) {
			return newError(VaultMismatch, "vault %s is not a token account", addr)
		}
		return err
	}
	if !acct.Mint.Equals(mint) {
		return newError(VaultMismatch, "vault %s holds %s, expected %s", addr, acct.Mint, mint)
	}
	if owner != nil && !acct.Owner.Equals(*owner) {
		return newError(VaultMismatch, "vault %s is owned by %s, expected %s", addr, acct.Owner, *owner)
	}
	return nil
}
