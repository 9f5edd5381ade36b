package token

import (
	"bytes"
	"fmt"

	"github.com/gagliardetto/solana-go"
	cm "github.com/mosaicnetworks/tally/src/common"
	"github.com/mosaicnetworks/tally/src/crypto"
	"github.com/mosaicnetworks/tally/src/ledger"
)

var (
	mintDiscriminator    = crypto.Discriminator("account", "Mint")
	accountDiscriminator = crypto.Discriminator("account", "TokenAccount")
)

// Mint defines a token type.
type Mint struct {
	Decimals      uint8            `json:"decimals"`
	MintAuthority solana.PublicKey `json:"mint_authority"`
	Supply        uint64           `json:"supply"`
}

// Marshal returns the stored encoding of the mint.
func (m *Mint) Marshal() ([]byte, error) {
	w := ledger.NewWriter()
	w.Raw(mintDiscriminator[:])
	w.U8(m.Decimals)
	w.Key(m.MintAuthority)
	w.U64(m.Supply)
	return w.Bytes()
}

// Unmarshal decodes the output of Marshal.
func (m *Mint) Unmarshal(data []byte) error {
	r := ledger.NewReader(data)
	r.Expect(mintDiscriminator[:])
	m.Decimals = r.U8()
	m.MintAuthority = r.Key()
	m.Supply = r.U64()
	return r.Done()
}

// Account holds a balance of one mint on behalf of an owner.
type Account struct {
	Mint   solana.PublicKey `json:"mint"`
	Owner  solana.PublicKey `json:"owner"`
	Amount uint64           `json:"amount"`
}

// Marshal returns the stored encoding of the account.
func (a *Account) Marshal() ([]byte, error) {
	w := ledger.NewWriter()
	w.Raw(accountDiscriminator[:])
	w.Key(a.Mint)
	w.Key(a.Owner)
	w.U64(a.Amount)
	return w.Bytes()
}

// Unmarshal decodes the output of Marshal.
func (a *Account) Unmarshal(data []byte) error {
	r := ledger.NewReader(data)
	r.Expect(accountDiscriminator[:])
	a.Mint = r.Key()
	a.Owner = r.Key()
	a.Amount = r.U64()
	return r.Done()
}

// IsMint reports whether data is a stored Mint.
func IsMint(data []byte) bool {
	return hasPrefix(data, mintDiscriminator)
}

// IsAccount reports whether data is a stored token Account.
func IsAccount(data []byte) bool {
	return hasPrefix(data, accountDiscriminator)
}

func hasPrefix(data []byte, d [8]byte) bool {
	return bytes.HasPrefix(data, d[:])
}

func load(txn *ledger.Txn, addr solana.PublicKey, what string) ([]byte, error) {
	data, err := txn.Get(addr)
	if err != nil {
		if cm.IsStore(err, cm.KeyNotFound) {
			return nil, newError(AccountNotFound, "%s %s does not exist", what, addr)
		}
		return nil, err
	}
	return data, nil
}

// LoadMint reads the mint at addr.
func LoadMint(txn *ledger.Txn, addr solana.PublicKey) (*Mint, error) {
	data, err := load(txn, addr, "mint")
	if err != nil {
		return nil, err
	}
	if !IsMint(data) {
		return nil, newError(AccountNotFound, "%s is not a mint", addr)
	}
	m := new(Mint)
	if err := m.Unmarshal(data); err != nil {
		return nil, cm.NewStoreErr("Mint", cm.Corrupted, fmt.Sprintf("%s: %v", addr, err))
	}
	return m, nil
}

// LoadAccount reads the token account at addr.
func LoadAccount(txn *ledger.Txn, addr solana.PublicKey) (*Account, error) {
	data, err := load(txn, addr, "token account")
	if err != nil {
		return nil, err
	}
	if !IsAccount(data) {
		return nil, newError(AccountNotFound, "%s is not a token account", addr)
	}
	a := new(Account)
	if err := a.Unmarshal(data); err != nil {
		return nil, cm.NewStoreErr("TokenAccount", cm.Corrupted, fmt.Sprintf("%s: %v", addr, err))
	}
	return a, nil
}

func saveMint(txn *ledger.Txn, addr solana.PublicKey, m *Mint) error {
	data, err := m.Marshal()
	if err != nil {
		return err
	}
	txn.Put(addr, data)
	return nil
}

func saveAccount(txn *ledger.Txn, addr solana.PublicKey, a *Account) error {
	data, err := a.Marshal()
	if err != nil {
		return err
	}
	txn.Put(addr, data)
	return nil
}
