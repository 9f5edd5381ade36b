package keys

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/btcsuite/btcd/btcec"
)

// Sign signs the data hash with the private key. Signatures are
// deterministic (RFC 6979), so signing the same block twice yields the same
// signature.
func Sign(priv *ecdsa.PrivateKey, data []byte) (r, s *big.Int, err error) {
	sig, err := (*btcec.PrivateKey)(priv).Sign(data)
	if err != nil {
		return nil, nil, err
	}
	return sig.R, sig.S, nil
}

// Verify checks a signature produced by Sign.
func Verify(pub *ecdsa.PublicKey, data []byte, r, s *big.Int) bool {
	if pub == nil || r == nil || s == nil {
		return false
	}
	sig := &btcec.Signature{R: r, S: s}
	return sig.Verify(data, (*btcec.PublicKey)(pub))
}

// EncodeSignature returns the base-36 "r|s" form of a signature.
func EncodeSignature(r, s *big.Int) string {
	return fmt.Sprintf("%s|%s", r.Text(36), s.Text(36))
}

// DecodeSignature parses the output of EncodeSignature.
func DecodeSignature(sig string) (r, s *big.Int, err error) {
	values := strings.Split(sig, "|")
	if len(values) != 2 {
		return r, s, fmt.Errorf("wrong number of values in signature: got %d, want 2", len(values))
	}
	var ok bool
	if r, ok = new(big.Int).SetString(values[0], 36); !ok {
		return nil, nil, fmt.Errorf("invalid r value %q", values[0])
	}
	if s, ok = new(big.Int).SetString(values[1], 36); !ok {
		return nil, nil, fmt.Errorf("invalid s value %q", values[1])
	}
	return r, s, nil
}
