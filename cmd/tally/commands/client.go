package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/mosaicnetworks/tally/src/client"
	"github.com/mosaicnetworks/tally/src/crypto"
	"github.com/mosaicnetworks/tally/src/ledger"
	"github.com/mosaicnetworks/tally/src/tracker"
	"github.com/spf13/cobra"
)

// AddClientFlags adds the flags shared by every command talking to a node
func AddClientFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringP("node", "n", _config.Node, "IP:Port or URL of the node HTTP service")
	cmd.PersistentFlags().String("principal", _config.Principal, "Principal keyfile (default [datadir]/principal.json)")
	cmd.PersistentFlags().Bool("wait", _config.Wait, "Wait for the transaction to be committed and print its receipt")
	cmd.PersistentFlags().Duration("wait-timeout", _config.WaitTimeout, "Maximum time to wait for a receipt")
}

func newClient(cmd *cobra.Command) (*client.Client, error) {
	if err := bindFlagsLoadViper(cmd); err != nil {
		return nil, err
	}
	return client.NewClient(_config.Node, _config.Tally.Logger().WithField("component", "client")), nil
}

func loadPrincipal() (solana.PrivateKey, error) {
	keyfile := crypto.NewPrincipalKeyfile(_config.principalKeyfile())

	key, err := keyfile.ReadKey()
	if err != nil {
		return nil, fmt.Errorf("Reading principal key %s: %s (run `tally principal` to create one)", keyfile.Path(), err)
	}
	return key, nil
}

// send signs and submits an instruction with the principal key, then prints
// the receipt, or the transaction hash when not waiting.
func send(cmd *cobra.Command, program solana.PublicKey, ins ledger.Instruction) error {
	c, err := newClient(cmd)
	if err != nil {
		return err
	}

	key, err := loadPrincipal()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), _config.WaitTimeout)
	defer cancel()

	hash, err := c.Send(ctx, key, program, ins)
	if err != nil {
		return err
	}

	if !_config.Wait {
		return printJSON(map[string]string{"tx_hash": hash})
	}

	receipt, err := c.WaitReceipt(ctx, hash, 100*time.Millisecond)
	if err != nil {
		return err
	}

	if err := printJSON(receipt); err != nil {
		return err
	}
	if !receipt.Succeeded() {
		return fmt.Errorf("transaction failed: %s", receipt.Message)
	}
	return nil
}

// query runs fn against the node with a bounded context and prints its
// result.
func query(cmd *cobra.Command, fn func(ctx context.Context, c *client.Client) (interface{}, error)) error {
	c, err := newClient(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), client.DefaultTimeout)
	defer cancel()

	res, err := fn(ctx, c)
	if err != nil {
		return err
	}
	return printJSON(res)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// parseKey accepts a base58 address, or the word "tracker" for the tracker
// address, which owns the reward vault.
func parseKey(s string) (solana.PublicKey, error) {
	if s == "tracker" {
		addr, _ := tracker.TrackerAddress()
		return addr, nil
	}
	return solana.PublicKeyFromBase58(s)
}

// principalOrSelf parses the optional principal argument, defaulting to the
// public key of the principal keyfile.
func principalOrSelf(args []string) (solana.PublicKey, error) {
	if len(args) > 0 {
		return parseKey(args[0])
	}
	key, err := loadPrincipal()
	if err != nil {
		return solana.PublicKey{}, err
	}
	return key.PublicKey(), nil
}

func keyFlag(cmd *cobra.Command, name string) (solana.PublicKey, error) {
	s, err := cmd.Flags().GetString(name)
	if err != nil {
		return solana.PublicKey{}, err
	}
	if s == "" {
		return solana.PublicKey{}, fmt.Errorf("--%s is required", name)
	}
	key, err := parseKey(s)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("--%s: %s", name, err)
	}
	return key, nil
}
