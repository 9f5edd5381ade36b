package commands

import (
	"github.com/mosaicnetworks/tally/src/config"
	"github.com/mosaicnetworks/tally/src/tally"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewRunCmd returns the command that starts a tally node
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "run",
		Short:   "Run node",
		PreRunE: loadConfig,
		RunE:    runTally,
	}
	AddRunFlags(cmd)
	return cmd
}

/*******************************************************************************
* RUN
*******************************************************************************/

func runTally(cmd *cobra.Command, args []string) error {
	engine := tally.NewTally(&_config.Tally)

	if err := engine.Init(); err != nil {
		_config.Tally.Logger().Error("Cannot initialize engine:", err)
		return err
	}

	engine.Run()

	return nil
}

/*******************************************************************************
* CONFIG
*******************************************************************************/

// AddRunFlags adds flags to the Run command
func AddRunFlags(cmd *cobra.Command) {
	cmd.Flags().String("moniker", _config.Tally.Moniker, "Optional name")
	cmd.Flags().Bool("log-files", _config.Tally.LogFiles, "Also write logs to files in the data directory")

	// Service
	cmd.Flags().Bool("no-service", _config.Tally.NoService, "Disable HTTP service")
	cmd.Flags().StringP("service-listen", "s", _config.Tally.ServiceAddr, "Listen IP:Port for HTTP service")

	// Store
	cmd.Flags().Bool("store", _config.Tally.Store, "Use badgerDB instead of in-mem DB")
	cmd.Flags().String("db", _config.Tally.DatabaseDir, "Dabatabase directory")

	// Node configuration
	cmd.Flags().Duration("heartbeat", _config.Tally.HeartbeatTimeout, "Time between the first pooled transaction and the block committing it")
	cmd.Flags().Int("block-size", _config.Tally.BlockSize, "Maximum number of transactions per block")
	cmd.Flags().Bool("suspended", _config.Tally.Suspended, "Start suspended: serve queries and pool transactions without committing")
}

func loadConfig(cmd *cobra.Command, args []string) error {

	err := bindFlagsLoadViper(cmd)
	if err != nil {
		return err
	}

	logFields := logrus.Fields{
		"tally.DataDir":          _config.Tally.DataDir,
		"tally.ServiceAddr":      _config.Tally.ServiceAddr,
		"tally.NoService":        _config.Tally.NoService,
		"tally.Store":            _config.Tally.Store,
		"tally.LogLevel":         _config.Tally.LogLevel,
		"tally.LogFiles":         _config.Tally.LogFiles,
		"tally.Moniker":          _config.Tally.Moniker,
		"tally.HeartbeatTimeout": _config.Tally.HeartbeatTimeout,
		"tally.BlockSize":        _config.Tally.BlockSize,
		"tally.Suspended":        _config.Tally.Suspended,
	}

	if _config.Tally.Store {
		logFields["tally.DatabaseDir"] = _config.Tally.DatabaseDir
	}

	_config.Tally.Logger().WithFields(logFields).Debug("RUN")

	return nil
}

// Bind all flags and read the config into viper
func bindFlagsLoadViper(cmd *cobra.Command) error {
	// Register flags with viper. Include flags from this command and all other
	// persistent flags from the parent
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// first unmarshal to read from CLI flags
	if err := viper.Unmarshal(_config); err != nil {
		return err
	}

	// look for config file in [datadir]/tally.toml (.json, .yaml also work)
	viper.SetConfigName(config.DefaultConfigFile) // name of config file (without extension)
	viper.AddConfigPath(_config.Tally.DataDir)    // search root directory

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		_config.Tally.Logger().Debugf("Using config file: %s", viper.ConfigFileUsed())
	} else if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		_config.Tally.Logger().Debugf("No config file found in: %s", _config.Tally.DataDir)
	} else {
		return err
	}

	// second unmarshal to read from config file
	if err := viper.Unmarshal(_config); err != nil {
		return err
	}

	// If --datadir was explicitely set, but not --db, this will update the
	// default database dir to be inside the new datadir
	_config.Tally.SetDataDir(_config.Tally.DataDir)

	return nil
}
