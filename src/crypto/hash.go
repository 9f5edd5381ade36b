package crypto

import (
	"crypto/sha256"
)

// SHA256 returns the SHA256 hash of the data.
func SHA256(data []byte) []byte {
	hasher := sha256.New()
	hasher.Write(data)
	hash := hasher.Sum(nil)
	return hash
}

// SimpleHashFromTwoHashes returns the SHA256 hash of the concatenation of left
// and right data. The application state hash is chained with it.
func SimpleHashFromTwoHashes(left []byte, right []byte) []byte {
	var hasher = sha256.New()
	hasher.Write(left)
	hasher.Write(right)
	return hasher.Sum(nil)
}

// Discriminator returns the 8-byte prefix that tags a serialized record or
// instruction. It is the head of SHA256("<namespace>:<name>").
func Discriminator(namespace, name string) [8]byte {
	var d [8]byte
	copy(d[:], SHA256([]byte(namespace+":"+name)))
	return d
}
