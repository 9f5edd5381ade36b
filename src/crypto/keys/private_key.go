package keys

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/btcsuite/btcd/btcec"
)

// PrivateKeyLen is the length of a dumped private key.
const PrivateKeyLen = btcec.PrivKeyBytesLen

// Curve returns btcsuite's implementation of secp256k1.
func Curve() elliptic.Curve {
	return btcec.S256()
}

// GenerateECDSAKey creates a new secp256k1 private key.
func GenerateECDSAKey() (*ecdsa.PrivateKey, error) {
	key, err := btcec.NewPrivateKey(btcec.S256())
	if err != nil {
		return nil, err
	}
	return key.ToECDSA(), nil
}

// DumpPrivateKey exports the D value of a private key, left-padded to
// PrivateKeyLen bytes.
func DumpPrivateKey(priv *ecdsa.PrivateKey) []byte {
	if priv == nil {
		return nil
	}
	return (*btcec.PrivateKey)(priv).Serialize()
}

// ParsePrivateKey rebuilds a private key from the output of DumpPrivateKey.
func ParsePrivateKey(d []byte) (*ecdsa.PrivateKey, error) {
	if len(d) != PrivateKeyLen {
		return nil, fmt.Errorf("invalid private key length %d, need %d", len(d), PrivateKeyLen)
	}

	n := new(big.Int).SetBytes(d)
	if n.Sign() == 0 || n.Cmp(btcec.S256().N) >= 0 {
		return nil, fmt.Errorf("private key out of range")
	}

	priv, _ := btcec.PrivKeyFromBytes(btcec.S256(), d)
	return priv.ToECDSA(), nil
}

// PrivateKeyHex returns the hexadecimal form of DumpPrivateKey.
func PrivateKeyHex(key *ecdsa.PrivateKey) string {
	return hex.EncodeToString(DumpPrivateKey(key))
}
