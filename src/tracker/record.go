package tracker

import (
	"unicode/utf8"

	"github.com/gagliardetto/solana-go"
	"github.com/mosaicnetworks/tally/src/ledger"
)

// RecordContribution stores a Pending contribution of the signer in the
// current period and returns its address. Points are assigned here but only
// credited to aggregates on approval.
func (p *Program) RecordContribution(ctx *ledger.Context, args RecordContributionArgs) (solana.PublicKey, error) {
	var none solana.PublicKey

	if len(args.Description) > MaxDescriptionLength {
		return none, newError(DescriptionTooLong, "%d bytes, max %d", len(args.Description), MaxDescriptionLength)
	}
	if !utf8.ValidString(args.Description) {
		return none, newError(InvalidParameters, "description is not valid UTF-8")
	}
	points, err := Points(args.Kind, args.Impact)
	if err != nil {
		return none, err
	}

	tracker, err := LoadTracker(ctx.Txn)
	if err != nil {
		return none, err
	}
	period, err := LoadPeriod(ctx.Txn, tracker.CurrentPeriod)
	if err != nil {
		return none, err
	}
	if period.IsFinalized {
		return none, newError(PeriodFinalized, "period %d is finalized", period.Number)
	}
	if period.Expired(ctx.Now) {
		return none, newError(PeriodExpired, "period %d ended at %d, now %d", period.Number, period.EndTime, ctx.Now)
	}

	contributor, err := LoadContributor(ctx.Txn, ctx.Signer)
	if err != nil {
		return none, err
	}
	if contributor == nil {
		_, bump := ContributorAddress(ctx.Signer)
		contributor = &Contributor{
			Principal:         ctx.Signer,
			PointsPeriod:      period.Number,
			LastClaimedPeriod: NeverClaimed,
			Bump:              bump,
		}
	}

	seq := contributor.ContributionCount
	addr, bump := ContributionAddress(ctx.Signer, period.Number, seq)
	exists, err := ctx.Txn.Exists(addr)
	if err != nil {
		return none, err
	}
	if exists {
		return none, newError(InvalidParameters, "contribution %s already exists", addr)
	}

	contributor.ContributionCount, err = checkedAdd(contributor.ContributionCount, 1, "contribution count")
	if err != nil {
		return none, err
	}

	contribution := &Contribution{
		Contributor:  ctx.Signer,
		PeriodNumber: period.Number,
		Sequence:     seq,
		Kind:         args.Kind,
		Impact:       args.Impact,
		Points:       points,
		Status:       Pending,
		SubmittedAt:  ctx.Now,
		Description:  args.Description,
		Bump:         bump,
	}

	if err := saveContribution(ctx.Txn, contribution); err != nil {
		return none, err
	}
	if err := saveContributor(ctx.Txn, contributor); err != nil {
		return none, err
	}

	ctx.Logf("contribution %s recorded: %s/%s %d points in period %d",
		addr, args.Kind, args.Impact, points, period.Number)
	return addr, nil
}
