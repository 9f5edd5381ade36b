package tracker

import (
	"math/bits"

	"github.com/gagliardetto/solana-go"
	"github.com/mosaicnetworks/tally/src/ledger"
	"github.com/mosaicnetworks/tally/src/token"
)

// Claim is the outcome of a claim against a period.
type Claim struct {
	Principal       solana.PublicKey `json:"principal"`
	PeriodNumber    uint64           `json:"period_number"`
	Points          uint64           `json:"points"`
	TotalPoints     uint64           `json:"total_points"`
	TokensAllocated uint64           `json:"tokens_allocated"`
	Share           uint64           `json:"share"`
}

// Share returns floor(points * allocated / total) computed over 128 bits.
func Share(points, allocated, total uint64) (uint64, error) {
	if total == 0 {
		return 0, newError(NothingToClaim, "period has no points")
	}
	if points > total {
		return 0, newError(ArithmeticOverflow, "%d points out of %d", points, total)
	}
	hi, lo := bits.Mul64(points, allocated)
	if hi >= total {
		return 0, newError(ArithmeticOverflow, "share of %d*%d/%d", points, allocated, total)
	}
	quo, _ := bits.Div64(hi, lo, total)
	return quo, nil
}

// PointsInPeriod sums the approved points of principal in period by scanning
// every contribution sequence the contributor has used.
func PointsInPeriod(txn *ledger.Txn, contributor *Contributor, period uint64) (uint64, error) {
	var total uint64
	for seq := uint64(0); seq < contributor.ContributionCount; seq++ {
		addr, _ := ContributionAddress(contributor.Principal, period, seq)
		c := new(Contribution)
		found, err := get(txn, addr, c, RecordContribution)
		if err != nil {
			return 0, err
		}
		if !found || c.Status != Approved {
			continue
		}
		if total, err = checkedAdd(total, c.Points, "points in period"); err != nil {
			return 0, err
		}
	}
	return total, nil
}

// assessClaim runs every eligibility check of a claim and computes the
// share, without touching vaults.
func assessClaim(txn *ledger.Txn, tracker *Tracker, principal solana.PublicKey, number uint64) (*Claim, *Period, *Contributor, error) {
	period, err := LoadPeriod(txn, number)
	if err != nil {
		return nil, nil, nil, err
	}
	if !period.IsFinalized {
		return nil, nil, nil, newError(PeriodNotFinalized, "period %d is not finalized", number)
	}
	if period.TotalPoints < tracker.MinimumPointsThreshold {
		return nil, nil, nil, newError(BelowThreshold, "period %d has %d points, threshold %d",
			number, period.TotalPoints, tracker.MinimumPointsThreshold)
	}

	contributor, err := LoadContributor(txn, principal)
	if err != nil {
		return nil, nil, nil, err
	}
	if contributor == nil {
		return nil, nil, nil, newError(NothingToClaim, "%s has no contributions", principal)
	}
	if contributor.LastClaimedPeriod >= 0 && uint64(contributor.LastClaimedPeriod) >= number {
		return nil, nil, nil, newError(AlreadyClaimed, "%s last claimed period %d", principal, contributor.LastClaimedPeriod)
	}

	points, err := PointsInPeriod(txn, contributor, number)
	if err != nil {
		return nil, nil, nil, err
	}
	if points == 0 {
		return nil, nil, nil, newError(NothingToClaim, "%s has no approved points in period %d", principal, number)
	}

	share, err := Share(points, period.TokensAllocated, period.TotalPoints)
	if err != nil {
		return nil, nil, nil, err
	}
	if period.TokensDistributed+share < period.TokensDistributed ||
		period.TokensDistributed+share > period.TokensAllocated {
		return nil, nil, nil, newError(ArithmeticOverflow, "period %d would distribute %d of %d",
			number, period.TokensDistributed+share, period.TokensAllocated)
	}

	claim := &Claim{
		Principal:       principal,
		PeriodNumber:    number,
		Points:          points,
		TotalPoints:     period.TotalPoints,
		TokensAllocated: period.TokensAllocated,
		Share:           share,
	}
	return claim, period, contributor, nil
}

// ClaimRewards pays the signer its share of a finalized period. A claim with
// a zero share still consumes the period.
func (p *Program) ClaimRewards(ctx *ledger.Context, args ClaimRewardsArgs) (*Claim, error) {
	tracker, err := LoadTracker(ctx.Txn)
	if err != nil {
		return nil, err
	}

	claim, period, contributor, err := assessClaim(ctx.Txn, tracker, ctx.Signer, args.PeriodNumber)
	if err != nil {
		return nil, err
	}

	trackerAddr, _ := TrackerAddress()
	if err := checkVault(ctx.Txn, args.RewardVault, tracker.RewardMint, &trackerAddr); err != nil {
		return nil, err
	}
	if err := p.prepareTokenAccount(ctx, tracker, args.TokenAccount); err != nil {
		return nil, err
	}

	if claim.Share > 0 {
		if err := token.Transfer(ctx.Txn, args.RewardVault, args.TokenAccount, trackerAddr, claim.Share); err != nil {
			return nil, err
		}
	}

	period.TokensDistributed += claim.Share
	contributor.LastClaimedPeriod = int64(period.Number)
	if contributor.TotalTokensClaimed, err = checkedAdd(contributor.TotalTokensClaimed, claim.Share, "tokens claimed"); err != nil {
		return nil, err
	}
	if contributor.PointsPeriod == period.Number {
		contributor.CurrentPeriodPoints = 0
	}

	if err := savePeriod(ctx.Txn, period); err != nil {
		return nil, err
	}
	if err := saveContributor(ctx.Txn, contributor); err != nil {
		return nil, err
	}

	ctx.Logf("%s claimed %d tokens for %d/%d points in period %d",
		ctx.Signer, claim.Share, claim.Points, claim.TotalPoints, period.Number)
	return claim, nil
}

// prepareTokenAccount checks the account receiving a claim. An existing
// account must hold the reward mint and belong to the signer. A missing one
// is created, but only at the signer's associated address.
func (p *Program) prepareTokenAccount(ctx *ledger.Context, tracker *Tracker, addr solana.PublicKey) error {
	exists, err := ctx.Txn.Exists(addr)
	if err != nil {
		return err
	}
	if exists {
		if err := checkVault(ctx.Txn, addr, tracker.RewardMint, nil); err != nil {
			return err
		}
		acct, err := token.LoadAccount(ctx.Txn, addr)
		if err != nil {
			return err
		}
		if !acct.Owner.Equals(ctx.Signer) {
			return newError(InvalidParameters, "token account %s belongs to %s", addr, acct.Owner)
		}
		return nil
	}

	ata, err := token.AssociatedAddress(ctx.Signer, tracker.RewardMint)
	if err != nil {
		return err
	}
	if !ata.Equals(addr) {
		return newError(InvalidParameters, "token account %s is not the associated account %s", addr, ata)
	}
	if _, err := token.CreateAssociatedAccount(ctx.Txn, ctx.Signer, tracker.RewardMint); err != nil {
		return err
	}
	ctx.Logf("created associated token account %s", ata)
	return nil
}
