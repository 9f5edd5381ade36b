package keys

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"hash/fnv"

	"github.com/mosaicnetworks/tally/src/common"
)

// ToPublicKey unmarshals the uncompressed form of a point on the curve, as
// returned by FromPublicKey.
func ToPublicKey(pub []byte) *ecdsa.PublicKey {
	if len(pub) == 0 {
		return nil
	}
	x, y := elliptic.Unmarshal(Curve(), pub)
	if x == nil {
		return nil
	}
	return &ecdsa.PublicKey{Curve: Curve(), X: x, Y: y}
}

// FromPublicKey marshals the public key in uncompressed form.
func FromPublicKey(pub *ecdsa.PublicKey) []byte {
	if pub == nil || pub.X == nil || pub.Y == nil {
		return nil
	}
	return elliptic.Marshal(Curve(), pub.X, pub.Y)
}

// PublicKeyHex returns the 0X-prefixed hexadecimal form of the public key.
func PublicKeyHex(pub *ecdsa.PublicKey) string {
	return common.EncodeToString(FromPublicKey(pub))
}

// PublicKeyID returns a short identifier of a public key: the 32-bit FNV-1a
// hash of its uncompressed form.
func PublicKeyID(pub *ecdsa.PublicKey) uint32 {
	h := fnv.New32a()
	h.Write(FromPublicKey(pub))
	return h.Sum32()
}
