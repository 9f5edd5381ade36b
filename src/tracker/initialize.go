package tracker

import (
	"github.com/mosaicnetworks/tally/src/ledger"
	"github.com/mosaicnetworks/tally/src/token"
)

// InitializeTracker creates the Tracker, with the signer as admin, and opens
// Period 0 at ctx.Now.
func (p *Program) InitializeTracker(ctx *ledger.Context, args InitializeTrackerArgs) error {
	trackerAddr, trackerBump := TrackerAddress()

	exists, err := ctx.Txn.Exists(trackerAddr)
	if err != nil {
		return err
	}
	if exists {
		return newError(AlreadyInitialized, "tracker %s already exists", trackerAddr)
	}

	if args.PeriodDuration <= 0 {
		return newError(InvalidParameters, "period duration must be positive, got %d", args.PeriodDuration)
	}
	if args.TokensPerPeriod == 0 {
		return newError(InvalidParameters, "tokens per period must be positive")
	}
	if args.RewardMint.IsZero() {
		return newError(InvalidParameters, "reward mint is not set")
	}
	if _, err := token.LoadMint(ctx.Txn, args.RewardMint); err != nil {
		if token.Is(err, token.AccountNotFound) {
			return newError(InvalidParameters, "reward mint %s does not exist", args.RewardMint)
		}
		return err
	}

	end := ctx.Now + args.PeriodDuration
	if end < ctx.Now {
		return newError(InvalidParameters, "period end overflows")
	}

	tracker := &Tracker{
		Admin:                  ctx.Signer,
		RewardMint:             args.RewardMint,
		PeriodDuration:         args.PeriodDuration,
		MinimumPointsThreshold: args.MinimumPointsThreshold,
		TokensPerPeriod:        args.TokensPerPeriod,
		CurrentPeriod:          0,
		Bump:                   trackerBump,
	}

	_, periodBump := PeriodAddress(0)
	period := &Period{
		Number:    0,
		StartTime: ctx.Now,
		EndTime:   end,
		Bump:      periodBump,
	}

	if err := saveTracker(ctx.Txn, tracker); err != nil {
		return err
	}
	if err := savePeriod(ctx.Txn, period); err != nil {
		return err
	}

	ctx.Logf("tracker initialized: admin=%s mint=%s duration=%d threshold=%d tokens=%d",
		tracker.Admin, tracker.RewardMint, tracker.PeriodDuration,
		tracker.MinimumPointsThreshold, tracker.TokensPerPeriod)
	return nil
}
