package ledger

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	cm "github.com/mosaicnetworks/tally/src/common"
)

func TestTxnWorkingSet(t *testing.T) {
	store := NewInmemStore()
	addr := solana.NewWallet().PublicKey()

	txn := NewTxn(store)

	if ok, err := txn.Exists(addr); err != nil || ok {
		t.Fatalf("fresh address should not exist: %v %v", ok, err)
	}

	if err := txn.Create(addr, []byte("v1")); err != nil {
		t.Fatal(err)
	}
	if err := txn.Create(addr, []byte("v2")); !cm.IsStore(err, cm.KeyAlreadyExists) {
		t.Fatalf("expected KeyAlreadyExists, got %v", err)
	}

	// uncommitted writes are visible inside the txn only
	if v, _ := txn.Get(addr); string(v) != "v1" {
		t.Fatalf("got %s", v)
	}
	if _, err := store.Get(AccountKey(addr)); !cm.IsStore(err, cm.KeyNotFound) {
		t.Fatalf("store should not see pending writes")
	}

	if err := txn.Commit(); err != nil {
		t.Fatal(err)
	}
	if v, err := store.Get(AccountKey(addr)); err != nil || string(v) != "v1" {
		t.Fatalf("commit did not reach the store: %s %v", v, err)
	}

	other := NewTxn(store)
	other.Put(addr, []byte("v3"))
	other.Discard()
	if err := other.Commit(); err != nil {
		t.Fatal(err)
	}
	if v, _ := store.Get(AccountKey(addr)); string(v) != "v1" {
		t.Fatalf("discarded write leaked: %s", v)
	}
}

func TestFindAddressDeterministic(t *testing.T) {
	program := solana.NewWallet().PublicKey()

	a, bumpA, err := FindAddress(program, []byte("tag"), []byte{1, 0, 0, 0, 0, 0, 0, 0})
	if err != nil {
		t.Fatal(err)
	}
	b, bumpB, err := FindAddress(program, []byte("tag"), []byte{1, 0, 0, 0, 0, 0, 0, 0})
	if err != nil {
		t.Fatal(err)
	}
	if !a.Equals(b) || bumpA != bumpB {
		t.Fatalf("derivation is not deterministic")
	}

	c := MustFindAddress(program, []byte("tag"), []byte{2, 0, 0, 0, 0, 0, 0, 0})
	if a.Equals(c) {
		t.Fatalf("different seeds gave the same address")
	}
}
