package ledger

import (
	"github.com/gagliardetto/solana-go"
)

// FindAddress derives the program address of a record from its seeds. The
// result is deterministic: the same seeds and program always give the same
// address and bump.
func FindAddress(programID solana.PublicKey, seeds ...[]byte) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress(seeds, programID)
}

// MustFindAddress is FindAddress for seeds that are known to derive.
func MustFindAddress(programID solana.PublicKey, seeds ...[]byte) solana.PublicKey {
	addr, _, err := FindAddress(programID, seeds...)
	if err != nil {
		panic(err)
	}
	return addr
}
