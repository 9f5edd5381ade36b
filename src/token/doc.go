// Package token is the fungible token subsystem: mints, token accounts and
// transfers between them.
//
// It registers as a ledger program under solana.TokenProgramID so mints and
// accounts can be created and funded with signed transactions, and exposes
// the same operations as library functions over a ledger.Txn. Other programs
// call Transfer directly, passing their own address as the authority of the
// accounts they own.
//
// Associated accounts live at solana.FindAssociatedTokenAddress(owner, mint).
package token
