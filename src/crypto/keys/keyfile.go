package keys

import (
	"crypto/ecdsa"
	"encoding/hex"
	"fmt"
	"io/ioutil"
	"os"
	"path"
	"strings"
	"sync"
)

// Keyfile stores a validator key as the hex dump of its D value, readable by
// its owner only.
type Keyfile struct {
	l    sync.Mutex
	path string
}

// NewKeyfile returns a Keyfile backed by the file at path.
func NewKeyfile(path string) *Keyfile {
	return &Keyfile{path: path}
}

// Path returns the underlying file path.
func (k *Keyfile) Path() string {
	return k.path
}

// Exists reports whether something already lives at the keyfile path.
func (k *Keyfile) Exists() bool {
	_, err := os.Stat(k.path)
	return err == nil
}

func (k *Keyfile) checkPermissions() error {
	info, err := os.Stat(k.path)
	if err != nil {
		return err
	}

	if perm := info.Mode().Perm(); perm&0077 != 0 {
		return fmt.Errorf("%s is accessible by group or others (%o); expected 0600", path.Base(k.path), perm)
	}
	return nil
}

// ReadKey loads the key written by WriteKey. It refuses keyfiles that other
// users can access.
func (k *Keyfile) ReadKey() (*ecdsa.PrivateKey, error) {
	k.l.Lock()
	defer k.l.Unlock()

	if err := k.checkPermissions(); err != nil {
		return nil, err
	}

	buf, err := ioutil.ReadFile(k.path)
	if err != nil {
		return nil, err
	}

	raw := strings.TrimPrefix(strings.TrimSpace(string(buf)), "0x")
	d, err := hex.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %s", path.Base(k.path), err)
	}

	return ParsePrivateKey(d)
}

// WriteKey writes key, creating parent directories as needed.
func (k *Keyfile) WriteKey(key *ecdsa.PrivateKey) error {
	k.l.Lock()
	defer k.l.Unlock()

	if err := os.MkdirAll(path.Dir(k.path), 0700); err != nil {
		return err
	}

	return ioutil.WriteFile(k.path, []byte(PrivateKeyHex(key)), 0600)
}
