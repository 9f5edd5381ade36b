package tracker

import (
	"github.com/gagliardetto/solana-go"
	"github.com/mosaicnetworks/tally/src/ledger"
)

// Instruction tags.
const (
	TagInitializeTracker uint8 = iota
	TagRecordContribution
	TagReviewContribution
	TagProcessPeriodDistribution
	TagClaimRewards
)

// MaxDescriptionLength bounds Contribution.Description, in bytes.
const MaxDescriptionLength = 256

// InitializeTrackerArgs creates the Tracker and Period 0. The signer becomes
// the admin.
type InitializeTrackerArgs struct {
	PeriodDuration         int64
	MinimumPointsThreshold uint64
	TokensPerPeriod        uint64
	RewardMint             solana.PublicKey
}

// Encode returns the instruction data.
func (a InitializeTrackerArgs) Encode() ([]byte, error) {
	w := ledger.NewWriter()
	w.U8(TagInitializeTracker)
	w.I64(a.PeriodDuration)
	w.U64(a.MinimumPointsThreshold)
	w.U64(a.TokensPerPeriod)
	w.Key(a.RewardMint)
	return w.Bytes()
}

// RecordContributionArgs submits a contribution into the current period.
type RecordContributionArgs struct {
	Kind        Kind
	Impact      Impact
	Description string
}

// Encode returns the instruction data.
func (a RecordContributionArgs) Encode() ([]byte, error) {
	w := ledger.NewWriter()
	w.U8(TagRecordContribution)
	w.U8(uint8(a.Kind))
	w.U8(uint8(a.Impact))
	w.String(a.Description)
	return w.Bytes()
}

// ReviewContributionArgs approves or rejects a pending contribution.
type ReviewContributionArgs struct {
	Contribution solana.PublicKey
	Approve      bool
}

// Encode returns the instruction data.
func (a ReviewContributionArgs) Encode() ([]byte, error) {
	w := ledger.NewWriter()
	w.U8(TagReviewContribution)
	w.Key(a.Contribution)
	w.Bool(a.Approve)
	return w.Bytes()
}

// ProcessPeriodDistributionArgs finalizes the current period.
type ProcessPeriodDistributionArgs struct {
	PeriodNumber uint64
	RewardVault  solana.PublicKey
	ReserveVault solana.PublicKey
}

// Encode returns the instruction data.
func (a ProcessPeriodDistributionArgs) Encode() ([]byte, error) {
	w := ledger.NewWriter()
	w.U8(TagProcessPeriodDistribution)
	w.U64(a.PeriodNumber)
	w.Key(a.RewardVault)
	w.Key(a.ReserveVault)
	return w.Bytes()
}

// ClaimRewardsArgs pays the signer its share of a finalized period.
type ClaimRewardsArgs struct {
	PeriodNumber uint64
	RewardVault  solana.PublicKey
	TokenAccount solana.PublicKey
}

// Encode returns the instruction data.
func (a ClaimRewardsArgs) Encode() ([]byte, error) {
	w := ledger.NewWriter()
	w.U8(TagClaimRewards)
	w.U64(a.PeriodNumber)
	w.Key(a.RewardVault)
	w.Key(a.TokenAccount)
	return w.Bytes()
}

// DecodeInstruction parses instruction data into one of the *Args types.
func DecodeInstruction(data []byte) (interface{}, error) {
	if len(data) == 0 {
		return nil, newError(InvalidParameters, "empty instruction")
	}

	r := ledger.NewReader(data)
	tag := r.U8()

	var ix interface{}
	switch tag {
	case TagInitializeTracker:
		ix = InitializeTrackerArgs{
			PeriodDuration:         r.I64(),
			MinimumPointsThreshold: r.U64(),
			TokensPerPeriod:        r.U64(),
			RewardMint:             r.Key(),
		}
	case TagRecordContribution:
		ix = RecordContributionArgs{
			Kind:        Kind(r.U8()),
			Impact:      Impact(r.U8()),
			Description: r.String(),
		}
	case TagReviewContribution:
		ix = ReviewContributionArgs{
			Contribution: r.Key(),
			Approve:      r.Bool(),
		}
	case TagProcessPeriodDistribution:
		ix = ProcessPeriodDistributionArgs{
			PeriodNumber: r.U64(),
			RewardVault:  r.Key(),
			ReserveVault: r.Key(),
		}
	case TagClaimRewards:
		ix = ClaimRewardsArgs{
			PeriodNumber: r.U64(),
			RewardVault:  r.Key(),
			TokenAccount: r.Key(),
		}
	default:
		return nil, newError(InvalidParameters, "unknown instruction %d", tag)
	}

	if err := r.Done(); err != nil {
		return nil, newError(InvalidParameters, "decoding instruction %d: %v", tag, err)
	}
	return ix, nil
}
