package chain

import (
	"bytes"
	"crypto/ecdsa"
	"fmt"

	"github.com/mosaicnetworks/tally/src/common"
	"github.com/mosaicnetworks/tally/src/crypto"
	"github.com/mosaicnetworks/tally/src/crypto/keys"
	"github.com/ugorji/go/codec"
)

// BlockBody is the signed part of a Block.
type BlockBody struct {
	Index        int
	Timestamp    int64
	StateHash    []byte
	Transactions [][]byte
	Receipts     []string
}

// Marshal returns the canonical JSON encoding of the body.
func (bb *BlockBody) Marshal() ([]byte, error) {
	return encode(bb)
}

// Unmarshal decodes the output of Marshal.
func (bb *BlockBody) Unmarshal(data []byte) error {
	if err := decode(data, bb); err != nil {
		return err
	}
	bb.normalize()
	return nil
}

// normalize replaces nil slices with empty ones so that a decoded body
// encodes, and therefore hashes, exactly like the original.
func (bb *BlockBody) normalize() {
	if bb.StateHash == nil {
		bb.StateHash = []byte{}
	}
	if bb.Transactions == nil {
		bb.Transactions = [][]byte{}
	}
	if bb.Receipts == nil {
		bb.Receipts = []string{}
	}
}

// Hash is the SHA256 hash of the marshalled body. It is what validators sign.
func (bb *BlockBody) Hash() ([]byte, error) {
	hashBytes, err := bb.Marshal()
	if err != nil {
		return nil, err
	}
	return crypto.SHA256(hashBytes), nil
}

// BlockSignature is a validator's signature of a block body.
type BlockSignature struct {
	Validator []byte
	Index     int
	Signature string
}

// ValidatorHex returns the hex form of the validator's public key.
func (bs *BlockSignature) ValidatorHex() string {
	return common.EncodeToString(bs.Validator)
}

// Key identifies the signature within a block store.
func (bs *BlockSignature) Key() string {
	return fmt.Sprintf("%d-%s", bs.Index, bs.ValidatorHex())
}

// Block is a batch of transactions committed at a single point in time.
type Block struct {
	Body       BlockBody
	Signatures map[string]string // [validator hex] => signature

	hash []byte
	hex  string
}

// NewBlock creates an unsigned block. The state hash is filled in once the
// application has applied the transactions.
func NewBlock(index int, timestamp int64, txs [][]byte) *Block {
	body := BlockBody{
		Index:        index,
		Timestamp:    timestamp,
		Transactions: txs,
	}
	body.normalize()

	return &Block{
		Body:       body,
		Signatures: make(map[string]string),
	}
}

// Index returns the position of the block in the chain.
func (b *Block) Index() int {
	return b.Body.Index
}

// Timestamp returns the block time in unix seconds.
func (b *Block) Timestamp() int64 {
	return b.Body.Timestamp
}

// Transactions returns the raw transactions.
func (b *Block) Transactions() [][]byte {
	return b.Body.Transactions
}

// StateHash returns the application state hash after this block.
func (b *Block) StateHash() []byte {
	return b.Body.StateHash
}

// Receipts returns the hashes of the receipts produced by the block, in
// transaction order.
func (b *Block) Receipts() []string {
	return b.Body.Receipts
}

// GetSignatures returns all the signatures of the block.
func (b *Block) GetSignatures() []BlockSignature {
	res := make([]BlockSignature, 0, len(b.Signatures))
	for val, sig := range b.Signatures {
		validatorBytes, _ := common.DecodeFromString(val)
		res = append(res, BlockSignature{
			Validator: validatorBytes,
			Index:     b.Index(),
			Signature: sig,
		})
	}
	return res
}

// GetSignature returns the signature of a given validator.
func (b *Block) GetSignature(validator string) (res BlockSignature, err error) {
	sig, ok := b.Signatures[validator]
	if !ok {
		return res, fmt.Errorf("signature not found")
	}

	validatorBytes, _ := common.DecodeFromString(validator)
	return BlockSignature{
		Validator: validatorBytes,
		Index:     b.Index(),
		Signature: sig,
	}, nil
}

// Marshal returns the canonical JSON encoding of the block.
func (b *Block) Marshal() ([]byte, error) {
	return encode(b)
}

// Unmarshal decodes the output of Marshal.
func (b *Block) Unmarshal(data []byte) error {
	if err := decode(data, b); err != nil {
		return err
	}
	b.Body.normalize()
	if b.Signatures == nil {
		b.Signatures = make(map[string]string)
	}
	b.hash = nil
	b.hex = ""
	return nil
}

// Hash returns the hash of the whole block, signatures included.
func (b *Block) Hash() ([]byte, error) {
	if len(b.hash) == 0 {
		hashBytes, err := b.Marshal()
		if err != nil {
			return nil, err
		}
		b.hash = crypto.SHA256(hashBytes)
	}
	return b.hash, nil
}

// Hex returns the hex form of Hash.
func (b *Block) Hex() string {
	if b.hex == "" {
		hash, _ := b.Hash()
		b.hex = common.EncodeToString(hash)
	}
	return b.hex
}

// Sign signs the block body.
func (b *Block) Sign(privKey *ecdsa.PrivateKey) (bs BlockSignature, err error) {
	signBytes, err := b.Body.Hash()
	if err != nil {
		return bs, err
	}
	R, S, err := keys.Sign(privKey, signBytes)
	if err != nil {
		return bs, err
	}
	signature := BlockSignature{
		Validator: keys.FromPublicKey(&privKey.PublicKey),
		Index:     b.Index(),
		Signature: keys.EncodeSignature(R, S),
	}

	return signature, nil
}

// SetSignature appends a signature to the block.
func (b *Block) SetSignature(bs BlockSignature) error {
	if bs.Index != b.Index() {
		return fmt.Errorf("signature is for block %d, not %d", bs.Index, b.Index())
	}
	b.Signatures[bs.ValidatorHex()] = bs.Signature
	b.hash = nil
	b.hex = ""
	return nil
}

// Verify checks a signature against the block body.
func (b *Block) Verify(sig BlockSignature) (bool, error) {
	signBytes, err := b.Body.Hash()
	if err != nil {
		return false, err
	}

	pubKey := keys.ToPublicKey(sig.Validator)

	r, s, err := keys.DecodeSignature(sig.Signature)
	if err != nil {
		return false, err
	}

	return keys.Verify(pubKey, signBytes, r, s), nil
}

func encode(v interface{}) ([]byte, error) {
	b := new(bytes.Buffer)
	jh := new(codec.JsonHandle)
	jh.Canonical = true
	enc := codec.NewEncoder(b, jh)

	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

func decode(data []byte, v interface{}) error {
	b := bytes.NewBuffer(data)
	jh := new(codec.JsonHandle)
	jh.Canonical = true
	dec := codec.NewDecoder(b, jh)

	return dec.Decode(v)
}
