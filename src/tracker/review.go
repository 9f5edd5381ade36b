package tracker

import (
	"github.com/mosaicnetworks/tally/src/ledger"
)

// ReviewContribution moves a Pending contribution to Approved or Rejected.
// Approval credits the points to the period, the contributor and the
// tracker. Rejection keeps the submitted score.
func (p *Program) ReviewContribution(ctx *ledger.Context, args ReviewContributionArgs) error {
	tracker, err := LoadTracker(ctx.Txn)
	if err != nil {
		return err
	}
	if !ctx.Signer.Equals(tracker.Admin) {
		return newError(Unauthorized, "%s is not the admin", ctx.Signer)
	}

	contribution, err := LoadContribution(ctx.Txn, args.Contribution)
	if err != nil {
		return err
	}
	if contribution.Status != Pending {
		return newError(AlreadyReviewed, "contribution %s is %s", args.Contribution, contribution.Status)
	}

	period, err := LoadPeriod(ctx.Txn, contribution.PeriodNumber)
	if err != nil {
		return err
	}
	if period.IsFinalized {
		return newError(PeriodFinalized, "period %d is finalized", period.Number)
	}

	now := ctx.Now
	contribution.ReviewedAt = &now

	if !args.Approve {
		contribution.Status = Rejected
		if err := saveContribution(ctx.Txn, contribution); err != nil {
			return err
		}
		ctx.Logf("contribution %s rejected", args.Contribution)
		return nil
	}

	contributor, err := LoadContributor(ctx.Txn, contribution.Contributor)
	if err != nil {
		return err
	}
	if contributor == nil {
		return newError(ContributionNotFound, "contributor %s does not exist", contribution.Contributor)
	}

	points := contribution.Points

	if period.TotalPoints, err = checkedAdd(period.TotalPoints, points, "period points"); err != nil {
		return err
	}
	if contributor.PointsPeriod != period.Number {
		contributor.PointsPeriod = period.Number
		contributor.CurrentPeriodPoints = 0
	}
	if contributor.CurrentPeriodPoints, err = checkedAdd(contributor.CurrentPeriodPoints, points, "contributor period points"); err != nil {
		return err
	}
	if contributor.TotalPointsEarned, err = checkedAdd(contributor.TotalPointsEarned, points, "contributor total points"); err != nil {
		return err
	}
	if tracker.TotalPointsAllTime, err = checkedAdd(tracker.TotalPointsAllTime, points, "tracker total points"); err != nil {
		return err
	}

	contribution.Status = Approved

	if err := saveContribution(ctx.Txn, contribution); err != nil {
		return err
	}
	if err := savePeriod(ctx.Txn, period); err != nil {
		return err
	}
	if err := saveContributor(ctx.Txn, contributor); err != nil {
		return err
	}
	if err := saveTracker(ctx.Txn, tracker); err != nil {
		return err
	}

	ctx.Logf("contribution %s approved: %d points, period %d total %d",
		args.Contribution, points, period.Number, period.TotalPoints)
	return nil
}
