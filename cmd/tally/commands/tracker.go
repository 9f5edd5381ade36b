package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/gagliardetto/solana-go"
	"github.com/mosaicnetworks/tally/src/client"
	"github.com/mosaicnetworks/tally/src/token"
	"github.com/mosaicnetworks/tally/src/tracker"
	"github.com/spf13/cobra"
)

// NewTrackerCmd returns the tracker subcommands
func NewTrackerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tracker",
		Short: "Record and review contributions, distribute and claim rewards",
	}

	AddClientFlags(cmd)

	cmd.AddCommand(
		newInitCmd(),
		newContributeCmd(),
		newReviewCmd(),
		newDistributeCmd(),
		newClaimCmd(),
		newShowTrackerCmd(),
		newPeriodsCmd(),
		newPeriodCmd(),
		newContributorCmd(),
		newContributionsCmd(),
		newContributionCmd(),
		newClaimableCmd(),
	)

	return cmd
}

/*******************************************************************************
* Transactions                                                                 *
*******************************************************************************/

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the tracker with the principal as admin",
		RunE: func(cmd *cobra.Command, args []string) error {
			mint, err := keyFlag(cmd, "mint")
			if err != nil {
				return err
			}
			duration, _ := cmd.Flags().GetDuration("period-duration")
			threshold, _ := cmd.Flags().GetUint64("threshold")
			tokens, _ := cmd.Flags().GetUint64("tokens-per-period")

			return send(cmd, tracker.ProgramID, tracker.InitializeTrackerArgs{
				PeriodDuration:         int64(duration.Seconds()),
				MinimumPointsThreshold: threshold,
				TokensPerPeriod:        tokens,
				RewardMint:             mint,
			})
		},
	}
	cmd.Flags().String("mint", "", "Reward mint")
	cmd.Flags().Duration("period-duration", 0, "Length of a distribution period (whole seconds)")
	cmd.Flags().Uint64("threshold", 0, "Minimum approved points for a period to pay out")
	cmd.Flags().Uint64("tokens-per-period", 0, "Tokens allocated to each period")
	return cmd
}

func newContributeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contribute",
		Short: "Record a contribution in the current period",
		RunE: func(cmd *cobra.Command, args []string) error {
			kindFlag, _ := cmd.Flags().GetString("kind")
			impactFlag, _ := cmd.Flags().GetString("impact")
			description, _ := cmd.Flags().GetString("description")

			kind, err := tracker.ParseKind(kindFlag)
			if err != nil {
				return err
			}
			impact, err := tracker.ParseImpact(impactFlag)
			if err != nil {
				return err
			}

			return send(cmd, tracker.ProgramID, tracker.RecordContributionArgs{
				Kind:        kind,
				Impact:      impact,
				Description: description,
			})
		},
	}
	cmd.Flags().String("kind", "", "BugFix, Feature, Documentation, CodeReview or Other")
	cmd.Flags().String("impact", "", "Minor, Major or Critical")
	cmd.Flags().StringP("description", "d", "", "Description of the contribution")
	return cmd
}

func newReviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review [contribution]",
		Short: "Approve or reject a pending contribution (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := parseKey(args[0])
			if err != nil {
				return err
			}
			reject, _ := cmd.Flags().GetBool("reject")

			return send(cmd, tracker.ProgramID, tracker.ReviewContributionArgs{
				Contribution: addr,
				Approve:      !reject,
			})
		},
	}
	cmd.Flags().Bool("reject", false, "Reject instead of approving")
	return cmd
}

func newDistributeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "distribute [period]",
		Short: "Finalize an expired period and open the next one (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			number, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return err
			}
			rewardVault, err := keyFlag(cmd, "reward-vault")
			if err != nil {
				return err
			}
			reserveVault, err := keyFlag(cmd, "reserve-vault")
			if err != nil {
				return err
			}

			return send(cmd, tracker.ProgramID, tracker.ProcessPeriodDistributionArgs{
				PeriodNumber: number,
				RewardVault:  rewardVault,
				ReserveVault: reserveVault,
			})
		},
	}
	cmd.Flags().String("reward-vault", "", "Token account owned by the tracker")
	cmd.Flags().String("reserve-vault", "", "Token account receiving unclaimed allocations")
	return cmd
}

func newClaimCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "claim [period]",
		Short: "Claim the principal's share of a finalized period",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			number, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return err
			}
			rewardVault, err := keyFlag(cmd, "reward-vault")
			if err != nil {
				return err
			}

			key, err := loadPrincipal()
			if err != nil {
				return err
			}

			var account solana.PublicKey
			if s, _ := cmd.Flags().GetString("account"); s != "" {
				if account, err = parseKey(s); err != nil {
					return err
				}
			} else {
				c, err := newClient(cmd)
				if err != nil {
					return err
				}
				ctx, cancel := context.WithTimeout(context.Background(), client.DefaultTimeout)
				defer cancel()

				t, err := c.GetTracker(ctx)
				if err != nil {
					return err
				}
				if account, err = token.AssociatedAddress(key.PublicKey(), t.RewardMint); err != nil {
					return err
				}
				fmt.Printf("account: %s\n", account)
			}

			return send(cmd, tracker.ProgramID, tracker.ClaimRewardsArgs{
				PeriodNumber: number,
				RewardVault:  rewardVault,
				TokenAccount: account,
			})
		},
	}
	cmd.Flags().String("reward-vault", "", "Token account owned by the tracker")
	cmd.Flags().String("account", "", "Token account receiving the share (default: the principal's associated account)")
	return cmd
}

/*******************************************************************************
* Queries                                                                      *
*******************************************************************************/

func newShowTrackerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the tracker",
		RunE: func(cmd *cobra.Command, args []string) error {
			return query(cmd, func(ctx context.Context, c *client.Client) (interface{}, error) {
				return c.GetTracker(ctx)
			})
		},
	}
}

func newPeriodsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "periods",
		Short: "List every period",
		RunE: func(cmd *cobra.Command, args []string) error {
			return query(cmd, func(ctx context.Context, c *client.Client) (interface{}, error) {
				return c.GetPeriods(ctx)
			})
		},
	}
}

func newPeriodCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "period [number]",
		Short: "Show a period",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			number, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return err
			}
			return query(cmd, func(ctx context.Context, c *client.Client) (interface{}, error) {
				return c.GetPeriod(ctx, number)
			})
		},
	}
}

func newContributorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "contributor [principal]",
		Short: "Show a contributor (default: the principal)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			principal, err := principalOrSelf(args)
			if err != nil {
				return err
			}
			return query(cmd, func(ctx context.Context, c *client.Client) (interface{}, error) {
				return c.GetContributor(ctx, principal)
			})
		},
	}
}

func newContributionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contributions [principal]",
		Short: "List the contributions of a principal in a period (default: current)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			principal, err := principalOrSelf(args)
			if err != nil {
				return err
			}
			var period *uint64
			if cmd.Flags().Changed("period") {
				p, _ := cmd.Flags().GetUint64("period")
				period = &p
			}
			return query(cmd, func(ctx context.Context, c *client.Client) (interface{}, error) {
				return c.GetContributions(ctx, principal, period)
			})
		},
	}
	cmd.Flags().Uint64("period", 0, "Period number")
	return cmd
}

func newContributionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "contribution [address]",
		Short: "Show a contribution",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := parseKey(args[0])
			if err != nil {
				return err
			}
			return query(cmd, func(ctx context.Context, c *client.Client) (interface{}, error) {
				return c.GetContribution(ctx, addr)
			})
		},
	}
}

func newClaimableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "claimable [period] [principal]",
		Short: "Preview a claim (default principal: the principal key)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			number, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return err
			}
			principal, err := principalOrSelf(args[1:])
			if err != nil {
				return err
			}
			return query(cmd, func(ctx context.Context, c *client.Client) (interface{}, error) {
				return c.GetClaimable(ctx, principal, number)
			})
		},
	}
}
