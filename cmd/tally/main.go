package main

import (
	"os"

	cmd "github.com/mosaicnetworks/tally/cmd/tally/commands"
)

func main() {
	rootCmd := cmd.RootCmd

	rootCmd.AddCommand(
		cmd.VersionCmd,
		cmd.NewKeygenCmd(),
		cmd.NewPrincipalCmd(),
		cmd.NewRunCmd(),
		cmd.NewTokenCmd(),
		cmd.NewTrackerCmd(),
		cmd.NewChainCmd())

	//Do not print usage when error occurs
	rootCmd.SilenceUsage = true

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
