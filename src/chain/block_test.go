package chain

import (
	"testing"

	cm "github.com/mosaicnetworks/tally/src/common"
	"github.com/mosaicnetworks/tally/src/crypto/keys"
	"github.com/mosaicnetworks/tally/src/ledger"
	"github.com/stretchr/testify/require"
)

func createTestBlock() *Block {
	block := NewBlock(3, 1700000000,
		[][]byte{
			[]byte("abc"),
			[]byte("def"),
			[]byte("ghi"),
		})
	block.Body.StateHash = []byte("statehash")
	return block
}

func TestSignBlock(t *testing.T) {
	privateKey, _ := keys.GenerateECDSAKey()

	block := createTestBlock()

	sig, err := block.Sign(privateKey)
	require.NoError(t, err)

	res, err := block.Verify(sig)
	require.NoError(t, err)
	require.True(t, res)

	block.Body.Transactions = append(block.Body.Transactions, []byte("jkl"))

	res, err = block.Verify(sig)
	require.NoError(t, err)
	require.False(t, res, "signature must not cover a different body")
}

func TestAppendSignature(t *testing.T) {
	privateKey, _ := keys.GenerateECDSAKey()

	block := createTestBlock()

	sig, err := block.Sign(privateKey)
	require.NoError(t, err)
	require.NoError(t, block.SetSignature(sig))

	blockSignature, err := block.GetSignature(keys.PublicKeyHex(&privateKey.PublicKey))
	require.NoError(t, err)

	res, err := block.Verify(blockSignature)
	require.NoError(t, err)
	require.True(t, res)

	require.Len(t, block.GetSignatures(), 1)

	sig.Index = 4
	require.Error(t, block.SetSignature(sig))
}

func TestBlockMarshal(t *testing.T) {
	privateKey, _ := keys.GenerateECDSAKey()

	block := createTestBlock()
	sig, err := block.Sign(privateKey)
	require.NoError(t, err)
	require.NoError(t, block.SetSignature(sig))

	raw, err := block.Marshal()
	require.NoError(t, err)

	other := new(Block)
	require.NoError(t, other.Unmarshal(raw))
	require.Equal(t, block.Index(), other.Index())
	require.Equal(t, block.Timestamp(), other.Timestamp())
	require.Equal(t, block.StateHash(), other.StateHash())
	require.Equal(t, block.Transactions(), other.Transactions())
	require.Equal(t, block.Signatures, other.Signatures)

	res, err := other.Verify(sig)
	require.NoError(t, err)
	require.True(t, res)
}

func TestStore(t *testing.T) {
	store := NewStore(ledger.NewInmemStore())

	last, err := store.LastBlockIndex()
	require.NoError(t, err)
	require.Equal(t, -1, last)

	_, err = store.GetBlock(0)
	require.True(t, cm.IsStore(err, cm.KeyNotFound))

	for i := 0; i < 12; i++ {
		require.NoError(t, store.SetBlock(NewBlock(i, int64(1700000000+i), nil)))
	}

	last, err = store.LastBlockIndex()
	require.NoError(t, err)
	require.Equal(t, 11, last)

	block, err := store.GetBlock(10)
	require.NoError(t, err)
	require.Equal(t, int64(1700000010), block.Timestamp())
	require.Empty(t, block.Transactions())
}
