package ledger

import (
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	cm "github.com/mosaicnetworks/tally/src/common"
	"github.com/stretchr/testify/require"
)

type failure struct{}

func (failure) Error() string { return "refused" }
func (failure) Code() uint32  { return 4242 }

// echoProgram writes its instruction data at the signer's address, and
// refuses empty data after having written something.
type echoProgram struct {
	id solana.PublicKey
}

func (p *echoProgram) ID() solana.PublicKey { return p.id }
func (p *echoProgram) Name() string         { return "echo" }

func (p *echoProgram) Process(ctx *Context, data []byte) error {
	ctx.Txn.Put(ctx.Signer, []byte("partial"))
	if len(data) == 0 {
		return failure{}
	}
	ctx.Txn.Put(ctx.Signer, data)
	ctx.Logf("echo %d bytes at %d", len(data), ctx.Now)
	return nil
}

func signedTx(t *testing.T, key solana.PrivateKey, program solana.PublicKey, nonce uint64, data []byte) []byte {
	tx := NewTransaction(program, nonce, data)
	require.NoError(t, tx.Sign(key))
	raw, err := tx.Marshal()
	require.NoError(t, err)
	return raw
}

func TestTransactionSignVerify(t *testing.T) {
	key := solana.NewWallet().PrivateKey
	program := solana.NewWallet().PublicKey()

	tx := NewTransaction(program, 7, []byte{1, 2, 3})
	require.NoError(t, tx.Sign(key))
	require.True(t, tx.Verify())

	raw, err := tx.Marshal()
	require.NoError(t, err)

	decoded := new(Transaction)
	require.NoError(t, decoded.Unmarshal(raw))
	require.Equal(t, tx.Signer, decoded.Signer)
	require.Equal(t, tx.Nonce, decoded.Nonce)
	require.Equal(t, tx.Data, decoded.Data)
	require.True(t, decoded.Verify())

	decoded.Data = []byte{9}
	require.False(t, decoded.Verify())
}

func TestRuntimeExecute(t *testing.T) {
	store := NewInmemStore()
	program := &echoProgram{id: solana.NewWallet().PublicKey()}
	runtime := NewRuntime(store, cm.NewTestEntry(t, "runtime"), program)

	key := solana.NewWallet().PrivateKey

	raw := signedTx(t, key, program.id, 1, []byte("hello"))
	receipt, err := runtime.Execute(raw, 1, 1000)
	require.NoError(t, err)
	require.True(t, receipt.Succeeded(), receipt.Message)
	require.Equal(t, "echo", receipt.Program)
	require.Equal(t, []string{"echo 5 bytes at 1000"}, receipt.Logs)

	v, err := store.Get(AccountKey(key.PublicKey()))
	require.NoError(t, err)
	require.Equal(t, "hello", string(v))

	stored, err := runtime.GetReceipt(receipt.TxHash)
	require.NoError(t, err)
	require.Equal(t, receipt, stored)

	t.Run("duplicate is rejected and first receipt kept", func(t *testing.T) {
		dup, err := runtime.Execute(raw, 2, 1001)
		require.NoError(t, err)
		require.Equal(t, uint32(DuplicateTransaction), dup.Code)

		stored, err := runtime.GetReceipt(receipt.TxHash)
		require.NoError(t, err)
		require.True(t, stored.Succeeded())
		require.Equal(t, 1, stored.BlockIndex)
	})

	t.Run("program failure discards writes", func(t *testing.T) {
		failed, err := runtime.Execute(signedTx(t, key, program.id, 2, nil), 3, 1002)
		require.NoError(t, err)
		require.Equal(t, uint32(4242), failed.Code)
		require.Equal(t, "refused", failed.Message)

		v, err := store.Get(AccountKey(key.PublicKey()))
		require.NoError(t, err)
		require.Equal(t, "hello", string(v))
	})

	t.Run("tampered signature", func(t *testing.T) {
		tx := NewTransaction(program.id, 3, []byte("x"))
		require.NoError(t, tx.Sign(key))
		tx.Data = []byte("y")
		raw, err := tx.Marshal()
		require.NoError(t, err)

		r, err := runtime.Execute(raw, 4, 1003)
		require.NoError(t, err)
		require.Equal(t, uint32(InvalidSignature), r.Code)
	})

	t.Run("unknown program", func(t *testing.T) {
		r, err := runtime.Execute(signedTx(t, key, solana.NewWallet().PublicKey(), 4, []byte("x")), 5, 1004)
		require.NoError(t, err)
		require.Equal(t, uint32(UnknownProgram), r.Code)
	})

	t.Run("garbage", func(t *testing.T) {
		r, err := runtime.Execute([]byte("not a transaction"), 6, 1005)
		require.NoError(t, err)
		require.Equal(t, uint32(InvalidTransaction), r.Code)
	})
}

func TestErrorCode(t *testing.T) {
	require.Equal(t, uint32(CodeOK), ErrorCode(nil))
	require.Equal(t, uint32(Internal), ErrorCode(errors.New("plain")))
	require.Equal(t, uint32(4242), ErrorCode(failure{}))
	require.True(t, IsLedger(NewError(InvalidSignature, "x"), InvalidSignature))
}
