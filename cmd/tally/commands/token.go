package commands

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/mosaicnetworks/tally/src/client"
	"github.com/mosaicnetworks/tally/src/token"
	"github.com/spf13/cobra"
)

// NewTokenCmd returns the token subcommands
func NewTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Create mints and token accounts, mint and transfer tokens",
	}

	AddClientFlags(cmd)

	cmd.AddCommand(
		newCreateMintCmd(),
		newCreateAccountCmd(),
		newCreateAssociatedCmd(),
		newMintToCmd(),
		newTransferCmd(),
		newShowAccountCmd(),
		newShowMintCmd(),
	)

	return cmd
}

func newCreateMintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-mint",
		Short: "Create a mint with the principal as mint authority",
		RunE: func(cmd *cobra.Command, args []string) error {
			decimals, _ := cmd.Flags().GetUint8("decimals")
			mint := solana.NewWallet().PublicKey()
			fmt.Printf("mint: %s\n", mint)
			return send(cmd, token.ProgramID, token.CreateMintArgs{Mint: mint, Decimals: decimals})
		},
	}
	cmd.Flags().Uint8("decimals", 9, "Number of decimals")
	return cmd
}

func newCreateAccountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-account",
		Short: "Create a token account at a fresh address",
		RunE: func(cmd *cobra.Command, args []string) error {
			mint, err := keyFlag(cmd, "mint")
			if err != nil {
				return err
			}
			owner, err := keyFlag(cmd, "owner")
			if err != nil {
				return err
			}
			account := solana.NewWallet().PublicKey()
			fmt.Printf("account: %s\n", account)
			return send(cmd, token.ProgramID, token.CreateAccountArgs{Account: account, Mint: mint, Owner: owner})
		},
	}
	cmd.Flags().String("mint", "", "Mint of the account")
	cmd.Flags().String("owner", "", "Owner of the account, or \"tracker\" for a reward vault")
	return cmd
}

func newCreateAssociatedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-associated [owner]",
		Short: "Create the associated token account of owner (default: the principal)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mint, err := keyFlag(cmd, "mint")
			if err != nil {
				return err
			}
			owner, err := principalOrSelf(args)
			if err != nil {
				return err
			}
			ata, err := token.AssociatedAddress(owner, mint)
			if err != nil {
				return err
			}
			fmt.Printf("account: %s\n", ata)
			return send(cmd, token.ProgramID, token.CreateAssociatedAccountArgs{Owner: owner, Mint: mint})
		},
	}
	cmd.Flags().String("mint", "", "Mint of the account")
	return cmd
}

func newMintToCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mint-to",
		Short: "Mint tokens into an account; the principal must be the mint authority",
		RunE: func(cmd *cobra.Command, args []string) error {
			mint, err := keyFlag(cmd, "mint")
			if err != nil {
				return err
			}
			to, err := keyFlag(cmd, "to")
			if err != nil {
				return err
			}
			amount, _ := cmd.Flags().GetUint64("amount")
			return send(cmd, token.ProgramID, token.MintToArgs{Mint: mint, Destination: to, Amount: amount})
		},
	}
	cmd.Flags().String("mint", "", "Mint")
	cmd.Flags().String("to", "", "Destination token account")
	cmd.Flags().Uint64("amount", 0, "Amount in base units")
	return cmd
}

func newTransferCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Transfer tokens from an account owned by the principal",
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := keyFlag(cmd, "from")
			if err != nil {
				return err
			}
			to, err := keyFlag(cmd, "to")
			if err != nil {
				return err
			}
			amount, _ := cmd.Flags().GetUint64("amount")
			return send(cmd, token.ProgramID, token.TransferArgs{Source: from, Destination: to, Amount: amount})
		},
	}
	cmd.Flags().String("from", "", "Source token account")
	cmd.Flags().String("to", "", "Destination token account")
	cmd.Flags().Uint64("amount", 0, "Amount in base units")
	return cmd
}

func newShowAccountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "account [address]",
		Short: "Show a token account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := parseKey(args[0])
			if err != nil {
				return err
			}
			return query(cmd, func(ctx context.Context, c *client.Client) (interface{}, error) {
				return c.GetTokenAccount(ctx, addr)
			})
		},
	}
}

func newShowMintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mint [address]",
		Short: "Show a mint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := parseKey(args[0])
			if err != nil {
				return err
			}
			return query(cmd, func(ctx context.Context, c *client.Client) (interface{}, error) {
				return c.GetMint(ctx, addr)
			})
		},
	}
}
