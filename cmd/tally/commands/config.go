package commands

import (
	"time"

	"github.com/mosaicnetworks/tally/src/config"
)

// CLIConfig contains the configuration of every command
type CLIConfig struct {
	Tally config.Config `mapstructure:",squash"`

	// Node is the HTTP address of the node queried by client commands.
	Node string `mapstructure:"node"`

	// Principal is the keyfile client commands sign with. Defaults to
	// [datadir]/principal.json.
	Principal string `mapstructure:"principal"`

	// Wait makes client commands block until the transaction is committed.
	Wait bool `mapstructure:"wait"`

	// WaitTimeout bounds the wait for a receipt.
	WaitTimeout time.Duration `mapstructure:"wait-timeout"`
}

// NewDefaultCLIConfig creates a CLIConfig with default values
func NewDefaultCLIConfig() *CLIConfig {
	return &CLIConfig{
		Tally:       *config.NewDefaultConfig(),
		Node:        config.DefaultServiceAddr,
		Wait:        true,
		WaitTimeout: 30 * time.Second,
	}
}

// principalKeyfile returns the keyfile client commands sign with.
func (c *CLIConfig) principalKeyfile() string {
	if c.Principal != "" {
		return c.Principal
	}
	return c.Tally.PrincipalKeyfile()
}
