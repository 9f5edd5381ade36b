package commands

import (
	"fmt"
	"io/ioutil"
	"os"
	"path"
	"path/filepath"

	"github.com/mosaicnetworks/tally/src/config"
	"github.com/mosaicnetworks/tally/src/crypto"
	"github.com/mosaicnetworks/tally/src/crypto/keys"
	"github.com/mosaicnetworks/tally/src/tally"
	"github.com/spf13/cobra"
)

var (
	privKeyFile string
	pubKeyFile  string
)

// NewKeygenCmd produces a KeygenCmd which creates the validator key pair
func NewKeygenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Create the validator key pair",
		RunE:  keygen,
	}

	AddKeygenFlags(cmd)

	return cmd
}

// AddKeygenFlags adds flags to the keygen command
func AddKeygenFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&privKeyFile, "priv", "", "File where the private key will be written (default [datadir]/priv_key)")
	cmd.Flags().StringVar(&pubKeyFile, "pub", "", "File where the public key will be written (default [datadir]/key.pub)")
}

func keygen(cmd *cobra.Command, args []string) error {
	if err := bindFlagsLoadViper(cmd); err != nil {
		return err
	}

	if privKeyFile == "" {
		privKeyFile = filepath.Join(_config.Tally.DataDir, config.DefaultKeyfile)
	}
	if pubKeyFile == "" {
		pubKeyFile = filepath.Join(_config.Tally.DataDir, "key.pub")
	}

	if err := os.MkdirAll(path.Dir(privKeyFile), 0700); err != nil {
		return fmt.Errorf("Writing private key: %s", err)
	}

	key, err := tally.Keygen(privKeyFile)
	if err != nil {
		return err
	}

	fmt.Printf("Your private key has been saved to: %s\n", privKeyFile)

	if err := os.MkdirAll(path.Dir(pubKeyFile), 0700); err != nil {
		return fmt.Errorf("Writing public key: %s", err)
	}

	pub := keys.PublicKeyHex(&key.PublicKey)

	if err := ioutil.WriteFile(pubKeyFile, []byte(pub), 0600); err != nil {
		return fmt.Errorf("Writing public key: %s", err)
	}

	fmt.Printf("Your public key has been saved to: %s\n", pubKeyFile)

	return nil
}

// NewPrincipalCmd produces the command that creates or shows the principal
// key client commands sign with
func NewPrincipalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "principal",
		Short: "Create or show the principal key used to sign transactions",
		RunE:  principal,
	}

	cmd.Flags().String("principal", "", "Principal keyfile (default [datadir]/principal.json)")

	return cmd
}

func principal(cmd *cobra.Command, args []string) error {
	if err := bindFlagsLoadViper(cmd); err != nil {
		return err
	}

	keyfile := crypto.NewPrincipalKeyfile(_config.principalKeyfile())

	key, created, err := keyfile.LoadOrCreate()
	if err != nil {
		return err
	}

	if created {
		fmt.Printf("Your principal key has been saved to: %s\n", keyfile.Path())
	}
	fmt.Println(key.PublicKey())

	return nil
}
