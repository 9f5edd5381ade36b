package crypto

import (
	"bytes"
	"io/ioutil"
	"os"
	"path"
	"testing"
)

func TestSimpleHashFromTwoHashes(t *testing.T) {
	left := SHA256([]byte("left"))
	right := SHA256([]byte("right"))

	h := SimpleHashFromTwoHashes(left, right)

	if !bytes.Equal(h, SHA256(append(append([]byte{}, left...), right...))) {
		t.Fatalf("hash of concatenation mismatch")
	}
}

func TestDiscriminator(t *testing.T) {
	a := Discriminator("account", "Tracker")
	b := Discriminator("account", "Period")

	if a == b {
		t.Fatalf("discriminators should differ")
	}

	if !bytes.Equal(a[:], SHA256([]byte("account:Tracker"))[:8]) {
		t.Fatalf("discriminator is not the head of the hash")
	}
}

func TestPrincipalKeyfile(t *testing.T) {
	os.Mkdir("test_data", os.ModeDir|0700)
	dir, err := ioutil.TempDir("test_data", "tally")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	defer os.RemoveAll("test_data")

	kf := NewPrincipalKeyfile(path.Join(dir, "principal.json"))

	if _, err := kf.ReadKey(); err == nil {
		t.Fatalf("ReadKey should fail on a missing file")
	}

	key, created, err := kf.LoadOrCreate()
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if !created {
		t.Fatalf("expected a new key")
	}

	again, created, err := kf.LoadOrCreate()
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if created {
		t.Fatalf("expected the existing key")
	}

	if !again.PublicKey().Equals(key.PublicKey()) {
		t.Fatalf("keys do not match")
	}
}
