package node

import (
	"testing"

	"github.com/mosaicnetworks/tally/src/chain"
	"github.com/mosaicnetworks/tally/src/crypto/keys"
	"github.com/stretchr/testify/require"
)

func TestValidatorSignBlock(t *testing.T) {
	key, _ := keys.GenerateECDSAKey()
	v := NewValidator(key, "alpha")

	require.Equal(t, keys.PublicKeyID(&key.PublicKey), v.ID())
	require.Equal(t, keys.PublicKeyHex(&key.PublicKey), v.PublicKeyHex())
	require.Equal(t, keys.FromPublicKey(&key.PublicKey), v.PublicKeyBytes())

	block := chain.NewBlock(3, 1700000000, [][]byte{[]byte("tx")})
	require.Error(t, v.VerifyBlock(block))

	sig, err := v.SignBlock(block)
	require.NoError(t, err)
	require.Equal(t, 3, sig.Index)
	require.NoError(t, v.VerifyBlock(block))

	otherKey, _ := keys.GenerateECDSAKey()
	require.Error(t, NewValidator(otherKey, "beta").VerifyBlock(block))
}
