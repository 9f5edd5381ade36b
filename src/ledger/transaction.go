package ledger

import (
	"bytes"

	"github.com/gagliardetto/solana-go"
	"github.com/mosaicnetworks/tally/src/common"
	"github.com/mosaicnetworks/tally/src/crypto"
	"github.com/ugorji/go/codec"
)

// Transaction is a signed call into a program. The runtime reads the clock
// itself; transactions never carry timestamps.
type Transaction struct {
	ProgramID solana.PublicKey
	Signer    solana.PublicKey
	Nonce     uint64
	Data      []byte
	Signature solana.Signature
}

type wireTransaction struct {
	ProgramID string
	Signer    string
	Nonce     uint64
	Data      []byte
	Signature string
}

// NewTransaction creates an unsigned transaction.
func NewTransaction(programID solana.PublicKey, nonce uint64, data []byte) *Transaction {
	return &Transaction{
		ProgramID: programID,
		Nonce:     nonce,
		Data:      data,
	}
}

func (tx *Transaction) toWire(withSignature bool) wireTransaction {
	w := wireTransaction{
		ProgramID: tx.ProgramID.String(),
		Signer:    tx.Signer.String(),
		Nonce:     tx.Nonce,
		Data:      tx.Data,
	}
	if withSignature {
		w.Signature = tx.Signature.String()
	}
	return w
}

func encodeCanonical(v interface{}) ([]byte, error) {
	b := new(bytes.Buffer)
	jh := new(codec.JsonHandle)
	jh.Canonical = true
	enc := codec.NewEncoder(b, jh)

	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

func decodeCanonical(data []byte, v interface{}) error {
	b := bytes.NewBuffer(data)
	jh := new(codec.JsonHandle)
	jh.Canonical = true
	dec := codec.NewDecoder(b, jh)

	return dec.Decode(v)
}

// SignBytes returns the bytes covered by the signature.
func (tx *Transaction) SignBytes() ([]byte, error) {
	return encodeCanonical(tx.toWire(false))
}

// Sign sets the signer and the signature.
func (tx *Transaction) Sign(key solana.PrivateKey) error {
	tx.Signer = key.PublicKey()

	msg, err := tx.SignBytes()
	if err != nil {
		return err
	}

	sig, err := key.Sign(msg)
	if err != nil {
		return err
	}
	tx.Signature = sig
	return nil
}

// Verify checks the signature against the signer.
func (tx *Transaction) Verify() bool {
	msg, err := tx.SignBytes()
	if err != nil {
		return false
	}
	return tx.Signature.Verify(tx.Signer, msg)
}

// Marshal returns the canonical JSON encoding of the signed transaction.
func (tx *Transaction) Marshal() ([]byte, error) {
	return encodeCanonical(tx.toWire(true))
}

// Unmarshal decodes the output of Marshal.
func (tx *Transaction) Unmarshal(data []byte) error {
	var w wireTransaction
	if err := decodeCanonical(data, &w); err != nil {
		return err
	}

	programID, err := solana.PublicKeyFromBase58(w.ProgramID)
	if err != nil {
		return err
	}
	signer, err := solana.PublicKeyFromBase58(w.Signer)
	if err != nil {
		return err
	}
	signature, err := solana.SignatureFromBase58(w.Signature)
	if err != nil {
		return err
	}

	tx.ProgramID = programID
	tx.Signer = signer
	tx.Nonce = w.Nonce
	tx.Data = w.Data
	tx.Signature = signature
	return nil
}

// Hash returns the hash of the marshalled transaction.
func (tx *Transaction) Hash() ([]byte, error) {
	raw, err := tx.Marshal()
	if err != nil {
		return nil, err
	}
	return crypto.SHA256(raw), nil
}

// TxHash is the identifier receipts are stored under: the hex hash of the raw
// bytes that were submitted.
func TxHash(raw []byte) string {
	return common.EncodeToString(crypto.SHA256(raw))
}

// Instruction is implemented by the argument types of every program.
type Instruction interface {
	Encode() ([]byte, error)
}

// BuildTransaction encodes ins into a transaction for programID, signs it
// with key and returns its raw form, ready to be submitted.
func BuildTransaction(key solana.PrivateKey, programID solana.PublicKey, nonce uint64, ins Instruction) ([]byte, error) {
	data, err := ins.Encode()
	if err != nil {
		return nil, err
	}

	tx := NewTransaction(programID, nonce, data)
	if err := tx.Sign(key); err != nil {
		return nil, err
	}
	return tx.Marshal()
}
