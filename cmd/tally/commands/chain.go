package commands

import (
	"context"
	"strconv"

	"github.com/mosaicnetworks/tally/src/client"
	"github.com/spf13/cobra"
)

// NewChainCmd returns the commands that inspect blocks, receipts and stats
func NewChainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chain",
		Short: "Inspect blocks, receipts and node stats",
	}

	AddClientFlags(cmd)

	cmd.AddCommand(
		&cobra.Command{
			Use:   "block [index]",
			Short: "Show a signed block",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				index, err := strconv.Atoi(args[0])
				if err != nil {
					return err
				}
				return query(cmd, func(ctx context.Context, c *client.Client) (interface{}, error) {
					return c.GetBlock(ctx, index)
				})
			},
		},
		&cobra.Command{
			Use:   "receipt [tx_hash]",
			Short: "Show the receipt of a committed transaction",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return query(cmd, func(ctx context.Context, c *client.Client) (interface{}, error) {
					return c.GetReceipt(ctx, args[0])
				})
			},
		},
		&cobra.Command{
			Use:   "stats",
			Short: "Show node stats",
			RunE: func(cmd *cobra.Command, args []string) error {
				return query(cmd, func(ctx context.Context, c *client.Client) (interface{}, error) {
					return c.GetStats(ctx)
				})
			},
		},
	)

	return cmd
}
