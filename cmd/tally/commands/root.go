package commands

import (
	"github.com/spf13/cobra"
)

var (
	_config = NewDefaultCLIConfig()
)

func init() {
	RootCmd.PersistentFlags().String("datadir", _config.Tally.DataDir, "Top-level directory for configuration and data")
	RootCmd.PersistentFlags().String("log", _config.Tally.LogLevel, "debug, info, warn, error, fatal, panic")
}

// RootCmd is the root command for tally
var RootCmd = &cobra.Command{
	Use:              "tally",
	Short:            "contribution tracking and periodic reward distribution",
	TraverseChildren: true,
}
