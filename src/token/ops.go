package token

import (
	"github.com/gagliardetto/solana-go"
	"github.com/mosaicnetworks/tally/src/ledger"
)

// AssociatedAddress returns the canonical token account of owner for mint.
func AssociatedAddress(owner, mint solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	return addr, err
}

// CreateMint creates a mint at addr with authority allowed to mint.
func CreateMint(txn *ledger.Txn, addr solana.PublicKey, decimals uint8, authority solana.PublicKey) error {
	if addr.IsZero() {
		return newError(InvalidInstruction, "zero mint address")
	}
	exists, err := txn.Exists(addr)
	if err != nil {
		return err
	}
	if exists {
		return newError(AccountAlreadyExists, "%s already exists", addr)
	}
	return saveMint(txn, addr, &Mint{
		Decimals:      decimals,
		MintAuthority: authority,
	})
}

// CreateAccount creates an empty token account at addr.
func CreateAccount(txn *ledger.Txn, addr, mint, owner solana.PublicKey) error {
	if addr.IsZero() {
		return newError(InvalidInstruction, "zero account address")
	}
	if _, err := LoadMint(txn, mint); err != nil {
		return err
	}
	exists, err := txn.Exists(addr)
	if err != nil {
		return err
	}
	if exists {
		return newError(AccountAlreadyExists, "%s already exists", addr)
	}
	return saveAccount(txn, addr, &Account{
		Mint:  mint,
		Owner: owner,
	})
}

// CreateAssociatedAccount creates the associated account of owner for mint
// and returns its address.
func CreateAssociatedAccount(txn *ledger.Txn, owner, mint solana.PublicKey) (solana.PublicKey, error) {
	addr, err := AssociatedAddress(owner, mint)
	if err != nil {
		return solana.PublicKey{}, err
	}
	return addr, CreateAccount(txn, addr, mint, owner)
}

// EnsureAssociatedAccount returns the associated account of owner for mint,
// creating it when it does not exist yet.
func EnsureAssociatedAccount(txn *ledger.Txn, owner, mint solana.PublicKey) (solana.PublicKey, error) {
	addr, err := AssociatedAddress(owner, mint)
	if err != nil {
		return solana.PublicKey{}, err
	}
	exists, err := txn.Exists(addr)
	if err != nil {
		return solana.PublicKey{}, err
	}
	if exists {
		acct, err := LoadAccount(txn, addr)
		if err != nil {
			return solana.PublicKey{}, err
		}
		if !acct.Mint.Equals(mint) {
			return solana.PublicKey{}, newError(MintMismatch, "%s holds %s, not %s", addr, acct.Mint, mint)
		}
		return addr, nil
	}
	return addr, CreateAccount(txn, addr, mint, owner)
}

// MintTo credits amount new tokens to dst. authority must be the mint
// authority.
func MintTo(txn *ledger.Txn, mintAddr, dst, authority solana.PublicKey, amount uint64) error {
	mint, err := LoadMint(txn, mintAddr)
	if err != nil {
		return err
	}
	if !mint.MintAuthority.Equals(authority) {
		return newError(OwnerMismatch, "%s is not the authority of mint %s", authority, mintAddr)
	}
	acct, err := LoadAccount(txn, dst)
	if err != nil {
		return err
	}
	if !acct.Mint.Equals(mintAddr) {
		return newError(MintMismatch, "%s holds %s, not %s", dst, acct.Mint, mintAddr)
	}
	if mint.Supply+amount < mint.Supply || acct.Amount+amount < acct.Amount {
		return newError(Overflow, "minting %d to %s", amount, dst)
	}

	mint.Supply += amount
	acct.Amount += amount

	if err := saveMint(txn, mintAddr, mint); err != nil {
		return err
	}
	return saveAccount(txn, dst, acct)
}

// Transfer moves amount from src to dst. authority must own src.
func Transfer(txn *ledger.Txn, src, dst, authority solana.PublicKey, amount uint64) error {
	from, err := LoadAccount(txn, src)
	if err != nil {
		return err
	}
	to, err := LoadAccount(txn, dst)
	if err != nil {
		return err
	}
	if !from.Owner.Equals(authority) {
		return newError(OwnerMismatch, "%s does not own %s", authority, src)
	}
	if !from.Mint.Equals(to.Mint) {
		return newError(MintMismatch, "%s holds %s but %s holds %s", src, from.Mint, dst, to.Mint)
	}
	if from.Amount < amount {
		return newError(InsufficientFunds, "%s holds %d, needs %d", src, from.Amount, amount)
	}
	if src.Equals(dst) {
		return nil
	}
	if to.Amount+amount < to.Amount {
		return newError(Overflow, "crediting %d to %s", amount, dst)
	}

	from.Amount -= amount
	to.Amount += amount

	if err := saveAccount(txn, src, from); err != nil {
		return err
	}
	return saveAccount(txn, dst, to)
}

// Balance returns the amount held by the token account at addr.
func Balance(txn *ledger.Txn, addr solana.PublicKey) (uint64, error) {
	acct, err := LoadAccount(txn, addr)
	if err != nil {
		return 0, err
	}
	return acct.Amount, nil
}
