package token

import (
	"github.com/gagliardetto/solana-go"
	"github.com/mosaicnetworks/tally/src/ledger"
)

// ProgramID is the address the token program is registered under.
var ProgramID = solana.TokenProgramID

// Instruction tags.
const (
	TagCreateMint uint8 = iota
	TagCreateAccount
	TagCreateAssociatedAccount
	TagMintTo
	TagTransfer
)

// CreateMintArgs creates a mint; the signer becomes its authority.
type CreateMintArgs struct {
	Mint     solana.PublicKey
	Decimals uint8
}

// Encode returns the instruction data.
func (a CreateMintArgs) Encode() ([]byte, error) {
	w := ledger.NewWriter()
	w.U8(TagCreateMint)
	w.Key(a.Mint)
	w.U8(a.Decimals)
	return w.Bytes()
}

// CreateAccountArgs creates a token account at an arbitrary address.
type CreateAccountArgs struct {
	Account solana.PublicKey
	Mint    solana.PublicKey
	Owner   solana.PublicKey
}

// Encode returns the instruction data.
func (a CreateAccountArgs) Encode() ([]byte, error) {
	w := ledger.NewWriter()
	w.U8(TagCreateAccount)
	w.Key(a.Account)
	w.Key(a.Mint)
	w.Key(a.Owner)
	return w.Bytes()
}

// CreateAssociatedAccountArgs creates the associated account of Owner.
type CreateAssociatedAccountArgs struct {
	Owner solana.PublicKey
	Mint  solana.PublicKey
}

// Encode returns the instruction data.
func (a CreateAssociatedAccountArgs) Encode() ([]byte, error) {
	w := ledger.NewWriter()
	w.U8(TagCreateAssociatedAccount)
	w.Key(a.Owner)
	w.Key(a.Mint)
	return w.Bytes()
}

// MintToArgs mints new tokens; the signer must be the mint authority.
type MintToArgs struct {
	Mint        solana.PublicKey
	Destination solana.PublicKey
	Amount      uint64
}

// Encode returns the instruction data.
func (a MintToArgs) Encode() ([]byte, error) {
	w := ledger.NewWriter()
	w.U8(TagMintTo)
	w.Key(a.Mint)
	w.Key(a.Destination)
	w.U64(a.Amount)
	return w.Bytes()
}

// TransferArgs moves tokens; the signer must own Source.
type TransferArgs struct {
	Source      solana.PublicKey
	Destination solana.PublicKey
	Amount      uint64
}

// Encode returns the instruction data.
func (a TransferArgs) Encode() ([]byte, error) {
	w := ledger.NewWriter()
	w.U8(TagTransfer)
	w.Key(a.Source)
	w.Key(a.Destination)
	w.U64(a.Amount)
	return w.Bytes()
}

// Program is the ledger program of the token subsystem.
type Program struct{}

// NewProgram returns the token Program.
func NewProgram() *Program {
	return &Program{}
}

// ID implements ledger.Program.
func (p *Program) ID() solana.PublicKey {
	return ProgramID
}

// Name implements ledger.Program.
func (p *Program) Name() string {
	return "token"
}

// Process implements ledger.Program.
func (p *Program) Process(ctx *ledger.Context, data []byte) error {
	if len(data) == 0 {
		return newError(InvalidInstruction, "empty instruction")
	}
	r := ledger.NewReader(data)
	tag := r.U8()

	switch tag {
	case TagCreateMint:
		mint, decimals := r.Key(), r.U8()
		if err := r.Done(); err != nil {
			return newError(InvalidInstruction, "CreateMint: %v", err)
		}
		if err := CreateMint(ctx.Txn, mint, decimals, ctx.Signer); err != nil {
			return err
		}
		ctx.Logf("created mint %s", mint)
	case TagCreateAccount:
		account, mint, owner := r.Key(), r.Key(), r.Key()
		if err := r.Done(); err != nil {
			return newError(InvalidInstruction, "CreateAccount: %v", err)
		}
		if err := CreateAccount(ctx.Txn, account, mint, owner); err != nil {
			return err
		}
		ctx.Logf("created token account %s", account)
	case TagCreateAssociatedAccount:
		owner, mint := r.Key(), r.Key()
		if err := r.Done(); err != nil {
			return newError(InvalidInstruction, "CreateAssociatedAccount: %v", err)
		}
		addr, err := CreateAssociatedAccount(ctx.Txn, owner, mint)
		if err != nil {
			return err
		}
		ctx.Logf("created associated account %s", addr)
	case TagMintTo:
		mint, dst, amount := r.Key(), r.Key(), r.U64()
		if err := r.Done(); err != nil {
			return newError(InvalidInstruction, "MintTo: %v", err)
		}
		if err := MintTo(ctx.Txn, mint, dst, ctx.Signer, amount); err != nil {
			return err
		}
		ctx.Logf("minted %d to %s", amount, dst)
	case TagTransfer:
		src, dst, amount := r.Key(), r.Key(), r.U64()
		if err := r.Done(); err != nil {
			return newError(InvalidInstruction, "Transfer: %v", err)
		}
		if err := Transfer(ctx.Txn, src, dst, ctx.Signer, amount); err != nil {
			return err
		}
		ctx.Logf("transferred %d from %s to %s", amount, src, dst)
	default:
		return newError(InvalidInstruction, "unknown instruction %d", tag)
	}
	return nil
}
