package node

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/mosaicnetworks/tally/src/chain"
	"github.com/mosaicnetworks/tally/src/crypto/keys"
)

// Validator is the identity a node signs blocks with. Its derived fields are
// computed once, so a Validator is safe to read from several goroutines.
type Validator struct {
	Key     *ecdsa.PrivateKey
	Moniker string

	id       uint32
	pubBytes []byte
	pubHex   string
}

// NewValidator wraps a secp256k1 key.
func NewValidator(key *ecdsa.PrivateKey, moniker string) *Validator {
	return &Validator{
		Key:      key,
		Moniker:  moniker,
		id:       keys.PublicKeyID(&key.PublicKey),
		pubBytes: keys.FromPublicKey(&key.PublicKey),
		pubHex:   keys.PublicKeyHex(&key.PublicKey),
	}
}

// ID is a short identifier derived from the public key.
func (v *Validator) ID() uint32 {
	return v.id
}

// PublicKeyBytes returns the uncompressed public key.
func (v *Validator) PublicKeyBytes() []byte {
	return v.pubBytes
}

// PublicKeyHex returns the public key in 0X-prefixed hex; blocks index their
// signatures by it.
func (v *Validator) PublicKeyHex() string {
	return v.pubHex
}

// SignBlock signs block and attaches the signature to it.
func (v *Validator) SignBlock(block *chain.Block) (chain.BlockSignature, error) {
	sig, err := block.Sign(v.Key)
	if err != nil {
		return sig, err
	}
	if err := block.SetSignature(sig); err != nil {
		return sig, err
	}
	return sig, nil
}

// VerifyBlock checks that block carries a valid signature by this validator.
func (v *Validator) VerifyBlock(block *chain.Block) error {
	sig, err := block.GetSignature(v.pubHex)
	if err != nil {
		return err
	}
	ok, err := block.Verify(sig)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("invalid signature on block %d", block.Index())
	}
	return nil
}
