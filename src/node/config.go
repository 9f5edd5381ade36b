package node

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mosaicnetworks/tally/src/common"
	"github.com/sirupsen/logrus"
)

// Config contains the configuration of a Node.
type Config struct {
	// HeartbeatTimeout is the delay between the first transaction entering an
	// empty pool and the block that includes it.
	HeartbeatTimeout time.Duration `mapstructure:"heartbeat"`

	// BlockSize is the maximum number of transactions per block.
	BlockSize int `mapstructure:"block-size"`

	// Suspended starts the node in the Suspended state.
	Suspended bool `mapstructure:"suspended"`

	// Clock stamps blocks. Tests use a fake one.
	Clock clockwork.Clock

	Logger *logrus.Entry
}

// NewConfig creates a Config.
func NewConfig(heartbeat time.Duration,
	blockSize int,
	clock clockwork.Clock,
	logger *logrus.Entry) *Config {

	return &Config{
		HeartbeatTimeout: heartbeat,
		BlockSize:        blockSize,
		Clock:            clock,
		Logger:           logger,
	}
}

// DefaultConfig returns a Config with the real clock and a debug logger.
func DefaultConfig() *Config {
	logger := logrus.New()
	logger.Level = logrus.DebugLevel

	return &Config{
		HeartbeatTimeout: 200 * time.Millisecond,
		BlockSize:        100,
		Clock:            clockwork.NewRealClock(),
		Logger:           logrus.NewEntry(logger),
	}
}

// TestConfig returns a Config with a fake clock and a logger that writes to
// t.Log.
func TestConfig(t testing.TB) *Config {
	config := DefaultConfig()
	config.HeartbeatTimeout = 10 * time.Millisecond
	config.Clock = clockwork.NewFakeClockAt(time.Unix(1700000000, 0))
	config.Logger = common.NewTestEntry(t, "node")
	return config
}
