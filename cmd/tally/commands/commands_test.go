package commands

import (
	"io/ioutil"
	"path/filepath"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/mosaicnetworks/tally/src/config"
	"github.com/mosaicnetworks/tally/src/tracker"
	"github.com/stretchr/testify/require"
)

func TestParseKey(t *testing.T) {
	trackerAddr, _ := tracker.TrackerAddress()

	key, err := parseKey("tracker")
	require.NoError(t, err)
	require.Equal(t, trackerAddr, key)

	wallet := solana.NewWallet().PublicKey()
	key, err = parseKey(wallet.String())
	require.NoError(t, err)
	require.Equal(t, wallet, key)

	_, err = parseKey("not-base58!")
	require.Error(t, err)
}

func TestLoadConfigFile(t *testing.T) {
	dataDir := t.TempDir()

	toml := `
heartbeat = "50ms"
block-size = 7
store = true
moniker = "sequencer"
`
	require.NoError(t, ioutil.WriteFile(filepath.Join(dataDir, "tally.toml"), []byte(toml), 0600))

	cmd := NewRunCmd()
	require.NoError(t, cmd.Flags().Set("service-listen", "127.0.0.1:9000"))
	cmd.Flags().String("datadir", dataDir, "")

	require.NoError(t, bindFlagsLoadViper(cmd))

	require.Equal(t, dataDir, _config.Tally.DataDir)
	require.Equal(t, filepath.Join(dataDir, config.DefaultBadgerFile), _config.Tally.DatabaseDir)
	require.Equal(t, "127.0.0.1:9000", _config.Tally.ServiceAddr)
	require.Equal(t, 50*time.Millisecond, _config.Tally.HeartbeatTimeout)
	require.Equal(t, 7, _config.Tally.BlockSize)
	require.True(t, _config.Tally.Store)
	require.Equal(t, "sequencer", _config.Tally.Moniker)
	require.Equal(t, filepath.Join(dataDir, config.DefaultPrincipalKeyfile), _config.principalKeyfile())
}
