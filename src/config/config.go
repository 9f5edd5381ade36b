package config

import (
	"crypto/ecdsa"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/mosaicnetworks/tally/src/common"
	"github.com/mosaicnetworks/tally/src/proxy"
	"github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

// Default filenames.
const (
	// DefaultKeyfile is the default name of the file containing the validator's
	// private key
	DefaultKeyfile = "priv_key"

	// DefaultPrincipalKeyfile is the default name of the file containing the
	// ed25519 key the CLI signs transactions with.
	DefaultPrincipalKeyfile = "principal.json"

	// DefaultBadgerFile is the default name of the folder containing the Badger
	// database
	DefaultBadgerFile = "badger_db"

	// DefaultConfigFile is the default name of the optional configuration file,
	// without extension.
	DefaultConfigFile = "tally"
)

// Default configuration values.
const (
	DefaultLogLevel         = "debug"
	DefaultServiceAddr      = "127.0.0.1:8000"
	DefaultHeartbeatTimeout = 200 * time.Millisecond
	DefaultBlockSize        = 100
	DefaultStore            = false
	DefaultLogFiles         = false
	DefaultSuspended        = false
)

// Config contains all the configuration properties of a tally node.
type Config struct {
	// DataDir is the top-level directory containing tally configuration and
	// data
	DataDir string `mapstructure:"datadir"`

	// LogLevel determines the chattiness of the log output.
	LogLevel string `mapstructure:"log"`

	// LogFiles tees info and debug logs to files in the data directory.
	LogFiles bool `mapstructure:"log-files"`

	// NoService disables the HTTP API service.
	NoService bool `mapstructure:"no-service"`

	// ServiceAddr is the address:port of the HTTP API.
	ServiceAddr string `mapstructure:"service-listen"`

	// HeartbeatTimeout is the delay between the first pooled transaction and
	// the block that commits it.
	HeartbeatTimeout time.Duration `mapstructure:"heartbeat"`

	// BlockSize is the maximum number of transactions per block.
	BlockSize int `mapstructure:"block-size"`

	// Store activates persistant storage.
	Store bool `mapstructure:"store"`

	// DatabaseDir is the directory containing database files.
	DatabaseDir string `mapstructure:"db"`

	// Suspended starts the node without committing blocks. It serves queries
	// and pools transactions until resumed.
	Suspended bool `mapstructure:"suspended"`

	// Moniker defines the friendly name of this node
	Moniker string `mapstructure:"moniker"`

	// Proxy is the application proxy that enables the node to communicate
	// with the application. It is set by the engine when left nil.
	Proxy proxy.AppProxy `mapstructure:"-"`

	// Key is the private key of the validator.
	Key *ecdsa.PrivateKey `mapstructure:"-"`

	logger *logrus.Logger
}

// NewDefaultConfig returns a config object with default values.
func NewDefaultConfig() *Config {
	config := &Config{
		DataDir:          DefaultDataDir(),
		LogLevel:         DefaultLogLevel,
		LogFiles:         DefaultLogFiles,
		ServiceAddr:      DefaultServiceAddr,
		HeartbeatTimeout: DefaultHeartbeatTimeout,
		BlockSize:        DefaultBlockSize,
		Store:            DefaultStore,
		DatabaseDir:      DefaultDatabaseDir(),
		Suspended:        DefaultSuspended,
	}

	return config
}

// NewTestConfig returns a config object with default values and a special
// logger for debugging tests.
func NewTestConfig(t testing.TB, level logrus.Level) *Config {
	config := NewDefaultConfig()
	config.HeartbeatTimeout = 10 * time.Millisecond
	config.logger = common.NewTestLogger(t, level)
	return config
}

// SetDataDir sets the top-level tally directory, and updates the database
// directory if it is currently set to the default value. If the database
// directory is not currently the default, it means the user has explicitely set
// it to something else, so avoid changing it again here.
func (c *Config) SetDataDir(dataDir string) {
	c.DataDir = dataDir
	if c.DatabaseDir == DefaultDatabaseDir() {
		c.DatabaseDir = filepath.Join(dataDir, DefaultBadgerFile)
	}
}

// Keyfile returns the full path of the file containing the private key.
func (c *Config) Keyfile() string {
	return filepath.Join(c.DataDir, DefaultKeyfile)
}

// PrincipalKeyfile returns the full path of the principal key used by the
// CLI.
func (c *Config) PrincipalKeyfile() string {
	return filepath.Join(c.DataDir, DefaultPrincipalKeyfile)
}

// Logger returns a formatted logrus Entry, with prefix set to "tally".
func (c *Config) Logger() *logrus.Entry {
	if c.logger == nil {
		c.logger = logrus.New()
		c.logger.Level = LogLevel(c.LogLevel)
		c.logger.Formatter = new(prefixed.TextFormatter)
		if c.LogFiles {
			c.addFileHook()
		}
	}
	return c.logger.WithField("prefix", "tally")
}

// addFileHook tees info and debug entries to tally_info.log and
// tally_debug.log in the data directory.
func (c *Config) addFileHook() {
	pathMap := lfshook.PathMap{}

	if err := os.MkdirAll(c.DataDir, 0700); err != nil {
		c.logger.WithError(err).Info("Failed to create data directory, logging to stderr only")
		return
	}

	for level, name := range map[logrus.Level]string{
		logrus.InfoLevel:  "tally_info.log",
		logrus.DebugLevel: "tally_debug.log",
	} {
		path := filepath.Join(c.DataDir, name)
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0666)
		if err != nil {
			c.logger.WithError(err).Infof("Failed to open %s, using default stderr", name)
			continue
		}
		f.Close()
		pathMap[level] = path
	}

	c.logger.Hooks.Add(lfshook.NewHook(
		pathMap,
		&logrus.TextFormatter{},
	))
}

// DefaultDatabaseDir returns the default path for the badger database files.
func DefaultDatabaseDir() string {
	return filepath.Join(DefaultDataDir(), DefaultBadgerFile)
}

// DefaultDataDir return the default directory name for top-level tally config
// based on the underlying OS, attempting to respect conventions.
func DefaultDataDir() string {
	// Try to place the data folder in the user's home dir
	home := HomeDir()
	if home != "" {
		if runtime.GOOS == "darwin" {
			return filepath.Join(home, ".Tally")
		} else if runtime.GOOS == "windows" {
			return filepath.Join(home, "AppData", "Roaming", "Tally")
		} else {
			return filepath.Join(home, ".tally")
		}
	}
	// As we cannot guess a stable location, return empty and handle later
	return ""
}

// HomeDir returns the user's home directory.
func HomeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}

// LogLevel parses a string into a Logrus log level.
func LogLevel(l string) logrus.Level {
	switch l {
	case "debug":
		return logrus.DebugLevel
	case "info":
		return logrus.InfoLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	case "panic":
		return logrus.PanicLevel
	default:
		return logrus.DebugLevel
	}
}
