package tracker

import (
	"github.com/gagliardetto/solana-go"
	"github.com/mosaicnetworks/tally/src/ledger"
	"github.com/sirupsen/logrus"
)

// Program is the contribution tracker ledger program.
type Program struct {
	logger *logrus.Entry
}

// NewProgram returns the tracker Program.
func NewProgram(logger *logrus.Entry) *Program {
	if logger == nil {
		log := logrus.New()
		log.Level = logrus.InfoLevel
		logger = logrus.NewEntry(log)
	}
	return &Program{
		logger: logger,
	}
}

// ID implements ledger.Program.
func (p *Program) ID() solana.PublicKey {
	return ProgramID
}

// Name implements ledger.Program.
func (p *Program) Name() string {
	return "tracker"
}

// Process implements ledger.Program.
func (p *Program) Process(ctx *ledger.Context, data []byte) error {
	ix, err := DecodeInstruction(data)
	if err != nil {
		return err
	}

	switch args := ix.(type) {
	case InitializeTrackerArgs:
		return p.InitializeTracker(ctx, args)
	case RecordContributionArgs:
		_, err := p.RecordContribution(ctx, args)
		return err
	case ReviewContributionArgs:
		return p.ReviewContribution(ctx, args)
	case ProcessPeriodDistributionArgs:
		return p.ProcessPeriodDistribution(ctx, args)
	case ClaimRewardsArgs:
		_, err := p.ClaimRewards(ctx, args)
		return err
	}
	return newError(InvalidParameters, "unhandled instruction %T", ix)
}
