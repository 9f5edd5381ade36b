// Package keys implements the validator keys of a tally node.
//
// The node that sequences transactions into blocks owns a secp256k1 key-pair.
// It signs every block it commits so that anyone holding the block store can
// check which validator produced it. Principals (contributors and the admin)
// do not use these keys; they sign transactions with ed25519 keys.
package keys
