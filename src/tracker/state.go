package tracker

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/mosaicnetworks/tally/src/crypto"
	"github.com/mosaicnetworks/tally/src/ledger"
)

var (
	trackerDiscriminator      = crypto.Discriminator("account", "ContributionTracker")
	periodDiscriminator       = crypto.Discriminator("account", "DistributionPeriod")
	contributorDiscriminator  = crypto.Discriminator("account", "Contributor")
	contributionDiscriminator = crypto.Discriminator("account", "Contribution")
)

// NeverClaimed is the LastClaimedPeriod of a contributor that has not claimed
// yet.
const NeverClaimed int64 = -1

// Tracker is the singleton configuration record.
type Tracker struct {
	Admin                  solana.PublicKey `json:"admin"`
	RewardMint             solana.PublicKey `json:"reward_mint"`
	PeriodDuration         int64            `json:"period_duration"`
	MinimumPointsThreshold uint64           `json:"minimum_points_threshold"`
	TokensPerPeriod        uint64           `json:"tokens_per_period"`
	CurrentPeriod          uint64           `json:"current_period"`
	TotalPointsAllTime     uint64           `json:"total_points_all_time"`
	ReservePoolAmount      uint64           `json:"reserve_pool_amount"`
	Bump                   uint8            `json:"bump"`
}

// Marshal returns the stored encoding of the tracker.
func (t *Tracker) Marshal() ([]byte, error) {
	w := ledger.NewWriter()
	w.Raw(trackerDiscriminator[:])
	w.Key(t.Admin)
	w.Key(t.RewardMint)
	w.I64(t.PeriodDuration)
	w.U64(t.MinimumPointsThreshold)
	w.U64(t.TokensPerPeriod)
	w.U64(t.CurrentPeriod)
	w.U64(t.TotalPointsAllTime)
	w.U64(t.ReservePoolAmount)
	w.U8(t.Bump)
	return w.Bytes()
}

// Unmarshal decodes the output of Marshal.
func (t *Tracker) Unmarshal(data []byte) error {
	r := ledger.NewReader(data)
	r.Expect(trackerDiscriminator[:])
	t.Admin = r.Key()
	t.RewardMint = r.Key()
	t.PeriodDuration = r.I64()
	t.MinimumPointsThreshold = r.U64()
	t.TokensPerPeriod = r.U64()
	t.CurrentPeriod = r.U64()
	t.TotalPointsAllTime = r.U64()
	t.ReservePoolAmount = r.U64()
	t.Bump = r.U8()
	return r.Done()
}

// Period aggregates the approved points and the budget of one reward
// period.
type Period struct {
	Number            uint64 `json:"period_number"`
	StartTime         int64  `json:"start_time"`
	EndTime           int64  `json:"end_time"`
	TotalPoints       uint64 `json:"total_points"`
	TokensAllocated   uint64 `json:"tokens_allocated"`
	TokensDistributed uint64 `json:"tokens_distributed"`
	IsFinalized       bool   `json:"is_finalized"`
	Bump              uint8  `json:"bump"`
}

// Expired reports whether the period is over at time now.
func (p *Period) Expired(now int64) bool {
	return now >= p.EndTime
}

// Marshal returns the stored encoding of the period.
func (p *Period) Marshal() ([]byte, error) {
	w := ledger.NewWriter()
	w.Raw(periodDiscriminator[:])
	w.U64(p.Number)
	w.I64(p.StartTime)
	w.I64(p.EndTime)
	w.U64(p.TotalPoints)
	w.U64(p.TokensAllocated)
	w.U64(p.TokensDistributed)
	w.Bool(p.IsFinalized)
	w.U8(p.Bump)
	return w.Bytes()
}

// Unmarshal decodes the output of Marshal.
func (p *Period) Unmarshal(data []byte) error {
	r := ledger.NewReader(data)
	r.Expect(periodDiscriminator[:])
	p.Number = r.U64()
	p.StartTime = r.I64()
	p.EndTime = r.I64()
	p.TotalPoints = r.U64()
	p.TokensAllocated = r.U64()
	p.TokensDistributed = r.U64()
	p.IsFinalized = r.Bool()
	p.Bump = r.U8()
	return r.Done()
}

// Contributor is the rolling state of one principal.
//
// CurrentPeriodPoints counts the approved points of period PointsPeriod. It
// restarts from zero when an approval lands in a later period, and is
// cleared when PointsPeriod is claimed.
type Contributor struct {
	Principal           solana.PublicKey `json:"principal"`
	CurrentPeriodPoints uint64           `json:"current_period_points"`
	PointsPeriod        uint64           `json:"points_period"`
	TotalPointsEarned   uint64           `json:"total_points_earned"`
	LastClaimedPeriod   int64            `json:"last_claimed_period"`
	ContributionCount   uint64           `json:"contribution_count"`
	TotalTokensClaimed  uint64           `json:"total_tokens_claimed"`
	Bump                uint8            `json:"bump"`
}

// Marshal returns the stored encoding of the contributor.
func (c *Contributor) Marshal() ([]byte, error) {
	w := ledger.NewWriter()
	w.Raw(contributorDiscriminator[:])
	w.Key(c.Principal)
	w.U64(c.CurrentPeriodPoints)
	w.U64(c.PointsPeriod)
	w.U64(c.TotalPointsEarned)
	w.I64(c.LastClaimedPeriod)
	w.U64(c.ContributionCount)
	w.U64(c.TotalTokensClaimed)
	w.U8(c.Bump)
	return w.Bytes()
}

// Unmarshal decodes the output of Marshal.
func (c *Contributor) Unmarshal(data []byte) error {
	r := ledger.NewReader(data)
	r.Expect(contributorDiscriminator[:])
	c.Principal = r.Key()
	c.CurrentPeriodPoints = r.U64()
	c.PointsPeriod = r.U64()
	c.TotalPointsEarned = r.U64()
	c.LastClaimedPeriod = r.I64()
	c.ContributionCount = r.U64()
	c.TotalTokensClaimed = r.U64()
	c.Bump = r.U8()
	return r.Done()
}

// Contribution is a single submitted work item.
type Contribution struct {
	Contributor  solana.PublicKey `json:"contributor"`
	PeriodNumber uint64           `json:"period_number"`
	Sequence     uint64           `json:"sequence"`
	Kind         Kind             `json:"kind"`
	Impact       Impact           `json:"impact"`
	Points       uint64           `json:"points"`
	Status       Status           `json:"status"`
	SubmittedAt  int64            `json:"submitted_at"`
	ReviewedAt   *int64           `json:"reviewed_at,omitempty"`
	Description  string           `json:"description"`
	Bump         uint8            `json:"bump"`
}

// Marshal returns the stored encoding of the contribution.
func (c *Contribution) Marshal() ([]byte, error) {
	w := ledger.NewWriter()
	w.Raw(contributionDiscriminator[:])
	w.Key(c.Contributor)
	w.U64(c.PeriodNumber)
	w.U64(c.Sequence)
	w.U8(uint8(c.Kind))
	w.U8(uint8(c.Impact))
	w.U64(c.Points)
	w.U8(uint8(c.Status))
	w.I64(c.SubmittedAt)
	w.OptionI64(c.ReviewedAt)
	w.String(c.Description)
	w.U8(c.Bump)
	return w.Bytes()
}

// Unmarshal decodes the output of Marshal.
func (c *Contribution) Unmarshal(data []byte) error {
	r := ledger.NewReader(data)
	r.Expect(contributionDiscriminator[:])
	c.Contributor = r.Key()
	c.PeriodNumber = r.U64()
	c.Sequence = r.U64()
	c.Kind = Kind(r.U8())
	c.Impact = Impact(r.U8())
	c.Points = r.U64()
	c.Status = Status(r.U8())
	c.SubmittedAt = r.I64()
	c.ReviewedAt = r.OptionI64()
	c.Description = r.String()
	c.Bump = r.U8()
	if err := r.Done(); err != nil {
		return err
	}
	if !c.Kind.Valid() || !c.Impact.Valid() || !c.Status.Valid() {
		return fmt.Errorf("invalid enumeration in contribution %d", c.Sequence)
	}
	return nil
}

// Record names the four record types of the program, as found by
// RecordType.
type Record string

const (
	RecordTracker      Record = "Tracker"
	RecordPeriod       Record = "Period"
	RecordContributor  Record = "Contributor"
	RecordContribution Record = "Contribution"
)

// RecordType identifies a stored tracker record from its discriminator.
func RecordType(data []byte) (Record, bool) {
	if len(data) < 8 {
		return "", false
	}
	var d [8]byte
	copy(d[:], data)
	switch d {
	case trackerDiscriminator:
		return RecordTracker, true
	case periodDiscriminator:
		return RecordPeriod, true
	case contributorDiscriminator:
		return RecordContributor, true
	case contributionDiscriminator:
		return RecordContribution, true
	}
	return "", false
}
