package tally

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/mosaicnetworks/tally/src/app"
	"github.com/mosaicnetworks/tally/src/chain"
	"github.com/mosaicnetworks/tally/src/common"
	"github.com/mosaicnetworks/tally/src/config"
	"github.com/mosaicnetworks/tally/src/crypto/keys"
	"github.com/mosaicnetworks/tally/src/ledger"
	"github.com/mosaicnetworks/tally/src/node"
	"github.com/mosaicnetworks/tally/src/proxy/inmem"
	"github.com/mosaicnetworks/tally/src/service"
	"github.com/sirupsen/logrus"
)

// Tally is the engine: it wires the store, the application, the node and
// the HTTP service together.
type Tally struct {
	Config  *config.Config
	Store   ledger.Store
	State   *app.State
	Proxy   *inmem.InmemProxy
	Node    *node.Node
	Service *service.Service

	// Clock stamps blocks. It defaults to the real clock.
	Clock clockwork.Clock

	logger *logrus.Entry
}

// NewTally creates an engine. Init must be called before Run.
func NewTally(config *config.Config) *Tally {
	engine := &Tally{
		Config: config,
		Clock:  clockwork.NewRealClock(),
		logger: config.Logger(),
	}

	return engine
}

func (t *Tally) initStore() error {
	if !t.Config.Store {
		t.Store = ledger.NewInmemStore()

		t.logger.Debug("created new in-mem store")
		return nil
	}

	t.logger.WithField("path", t.Config.DatabaseDir).Debug("Attempting to load or create database")

	store, err := ledger.NewBadgerStore(t.Config.DatabaseDir, t.logger.WithField("component", "badger"))
	if err != nil {
		return err
	}
	t.Store = store

	return nil
}

func (t *Tally) initKey() error {
	if t.Config.Key == nil {
		keyfile := keys.NewKeyfile(t.Config.Keyfile())

		privKey, err := keyfile.ReadKey()
		if err != nil {
			t.logger.Warn("Cannot read private key from file", err)

			privKey, err = Keygen(t.Config.Keyfile())
			if err != nil {
				t.logger.Error("Cannot generate a new private key", err)

				return err
			}

			t.logger.Info("Created a new key:", keys.PublicKeyHex(&privKey.PublicKey))
		}

		t.Config.Key = privKey
	}
	return nil
}

// initState resumes the application from the last stored block, if any.
func (t *Tally) initState() error {
	blocks := chain.NewStore(t.Store)

	last, err := blocks.LastBlockIndex()
	if err != nil {
		return err
	}

	var stateHash []byte
	if last >= 0 {
		block, err := blocks.GetBlock(last)
		if err != nil {
			return err
		}
		stateHash = block.StateHash()
	}

	t.State = app.NewState(t.Store, stateHash, last, t.logger.WithField("component", "app"))
	return nil
}

func (t *Tally) initProxy() error {
	if t.Config.Proxy != nil {
		return fmt.Errorf("tally runs its own application; Config.Proxy must be nil")
	}

	t.Proxy = inmem.NewInmemProxy(t.State, t.logger.WithField("component", "proxy"))
	t.Config.Proxy = t.Proxy
	return nil
}

func (t *Tally) initNode() error {
	validator := node.NewValidator(t.Config.Key, t.Config.Moniker)

	t.logger.WithFields(logrus.Fields{
		"id":        validator.ID(),
		"validator": validator.PublicKeyHex(),
		"moniker":   validator.Moniker,
	}).Debug("VALIDATOR")

	conf := node.NewConfig(
		t.Config.HeartbeatTimeout,
		t.Config.BlockSize,
		t.Clock,
		t.logger.WithField("component", "node"),
	)
	conf.Suspended = t.Config.Suspended

	n, err := node.NewNode(conf, validator, chain.NewStore(t.Store), t.Proxy)
	if err != nil {
		return fmt.Errorf("failed to initialize node: %s", err)
	}
	t.Node = n

	return nil
}

func (t *Tally) initService() error {
	if !t.Config.NoService {
		t.Service = service.NewService(
			t.Config.ServiceAddr,
			t.Node,
			t.State,
			t.Proxy.SubmitTx,
			t.logger.WithField("component", "service"),
		)
	}
	return nil
}

// Init initialises every component, in dependency order.
func (t *Tally) Init() error {
	if err := t.initStore(); err != nil {
		return err
	}

	if err := t.initKey(); err != nil {
		return err
	}

	if err := t.initState(); err != nil {
		return err
	}

	if err := t.initProxy(); err != nil {
		return err
	}

	if err := t.initNode(); err != nil {
		return err
	}

	if err := t.initService(); err != nil {
		return err
	}

	t.logger.WithFields(logrus.Fields{
		"last_block": t.State.LastBlockIndex(),
		"state_hash": common.EncodeToString(t.State.StateHash()),
	}).Info("Initialized")

	return nil
}

// Run starts the service and blocks on the node until it shuts down.
func (t *Tally) Run() {
	if t.Service != nil {
		go t.Service.Serve()
	}

	t.Node.Run()

	if t.Service != nil {
		t.Service.Close()
	}
}

// Shutdown stops the node, which closes the store and makes Run return.
func (t *Tally) Shutdown() {
	t.Node.Shutdown()
}

// Keygen creates a new validator key and writes it to keyfile. It refuses to
// overwrite an existing key.
func Keygen(keyfile string) (*ecdsa.PrivateKey, error) {
	kf := keys.NewKeyfile(keyfile)

	if kf.Exists() {
		return nil, fmt.Errorf("Another key already lives under %s", keyfile)
	}

	privKey, err := keys.GenerateECDSAKey()
	if err != nil {
		return nil, err
	}

	if err := kf.WriteKey(privKey); err != nil {
		return nil, err
	}

	return privKey, nil
}
