package crypto

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"path"
	"sync"

	"github.com/gagliardetto/solana-go"
)

// PrincipalKeyfile reads and writes the ed25519 key of a principal (a
// contributor or an admin) in the solana-keygen JSON format: an array of the
// 64 bytes of the private key.
type PrincipalKeyfile struct {
	l       sync.Mutex
	keyfile string
}

// NewPrincipalKeyfile instantiates a PrincipalKeyfile backed by keyfile.
func NewPrincipalKeyfile(keyfile string) *PrincipalKeyfile {
	return &PrincipalKeyfile{
		keyfile: keyfile,
	}
}

// Path returns the underlying file path.
func (k *PrincipalKeyfile) Path() string {
	return k.keyfile
}

// ReadKey loads the private key.
func (k *PrincipalKeyfile) ReadKey() (solana.PrivateKey, error) {
	k.l.Lock()
	defer k.l.Unlock()

	return solana.PrivateKeyFromSolanaKeygenFile(k.keyfile)
}

// WriteKey writes the private key with user-only permissions.
func (k *PrincipalKeyfile) WriteKey(key solana.PrivateKey) error {
	k.l.Lock()
	defer k.l.Unlock()

	if len(key) != 64 {
		return fmt.Errorf("invalid private key length %d", len(key))
	}

	ints := make([]int, len(key))
	for i, b := range key {
		ints[i] = int(b)
	}

	raw, err := json.Marshal(ints)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(path.Dir(k.keyfile), 0700); err != nil {
		return err
	}

	return ioutil.WriteFile(k.keyfile, raw, 0600)
}

// LoadOrCreate reads the key, or generates and writes a new one when the file
// does not exist.
func (k *PrincipalKeyfile) LoadOrCreate() (solana.PrivateKey, bool, error) {
	if _, err := os.Stat(k.keyfile); err == nil {
		key, err := k.ReadKey()
		return key, false, err
	}

	key, err := solana.NewRandomPrivateKey()
	if err != nil {
		return nil, false, err
	}

	if err := k.WriteKey(key); err != nil {
		return nil, false, err
	}

	return key, true, nil
}
