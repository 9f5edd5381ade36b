package ledger

import (
	"bytes"
	"encoding/binary"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// Writer serializes records and instruction data with the Borsh encoding:
// little-endian fixed-width integers, raw 32-byte keys, u32 length-prefixed
// strings and u8 option tags. The first error sticks and is returned by
// Bytes.
type Writer struct {
	buf *bytes.Buffer
	enc *bin.Encoder
	err error
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	buf := new(bytes.Buffer)
	return &Writer{
		buf: buf,
		enc: bin.NewBorshEncoder(buf),
	}
}

func (w *Writer) set(err error) {
	if w.err == nil && err != nil {
		w.err = err
	}
}

// Raw writes b without a length prefix.
func (w *Writer) Raw(b []byte) {
	w.set(w.enc.WriteBytes(b, false))
}

// U8 writes a byte.
func (w *Writer) U8(v uint8) {
	w.set(w.enc.WriteUint8(v))
}

// Bool writes a bool as one byte.
func (w *Writer) Bool(v bool) {
	w.set(w.enc.WriteBool(v))
}

// U64 writes a little-endian uint64.
func (w *Writer) U64(v uint64) {
	w.set(w.enc.WriteUint64(v, binary.LittleEndian))
}

// I64 writes a little-endian int64.
func (w *Writer) I64(v int64) {
	w.set(w.enc.WriteInt64(v, binary.LittleEndian))
}

// Key writes the 32 bytes of a public key.
func (w *Writer) Key(k solana.PublicKey) {
	w.Raw(k[:])
}

// String writes a u32 length-prefixed string.
func (w *Writer) String(s string) {
	w.set(w.enc.WriteString(s))
}

// OptionI64 writes an option tag followed by the value when present.
func (w *Writer) OptionI64(v *int64) {
	if v == nil {
		w.Bool(false)
		return
	}
	w.Bool(true)
	w.I64(*v)
}

// Bytes returns the encoded data.
func (w *Writer) Bytes() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	return w.buf.Bytes(), nil
}

// Reader is the decoding counterpart of Writer.
type Reader struct {
	dec *bin.Decoder
	err error
}

// NewReader reads from data.
func NewReader(data []byte) *Reader {
	return &Reader{
		dec: bin.NewBorshDecoder(data),
	}
}

func (r *Reader) set(err error) {
	if r.err == nil && err != nil {
		r.err = err
	}
}

// Expect consumes len(prefix) bytes and fails the Reader if they differ from
// prefix.
func (r *Reader) Expect(prefix []byte) {
	got := r.Raw(len(prefix))
	if r.err == nil && !bytes.Equal(got, prefix) {
		r.err = fmt.Errorf("unexpected discriminator %x", got)
	}
}

// Raw reads n bytes.
func (r *Reader) Raw(n int) []byte {
	if r.err != nil {
		return nil
	}
	b, err := r.dec.ReadNBytes(n)
	r.set(err)
	return b
}

// U8 reads a byte.
func (r *Reader) U8() uint8 {
	if r.err != nil {
		return 0
	}
	v, err := r.dec.ReadUint8()
	r.set(err)
	return v
}

// Bool reads a bool.
func (r *Reader) Bool() bool {
	if r.err != nil {
		return false
	}
	v, err := r.dec.ReadBool()
	r.set(err)
	return v
}

// U64 reads a little-endian uint64.
func (r *Reader) U64() uint64 {
	if r.err != nil {
		return 0
	}
	v, err := r.dec.ReadUint64(binary.LittleEndian)
	r.set(err)
	return v
}

// I64 reads a little-endian int64.
func (r *Reader) I64() int64 {
	if r.err != nil {
		return 0
	}
	v, err := r.dec.ReadInt64(binary.LittleEndian)
	r.set(err)
	return v
}

// Key reads a public key.
func (r *Reader) Key() solana.PublicKey {
	var k solana.PublicKey
	copy(k[:], r.Raw(solana.PublicKeyLength))
	return k
}

// String reads a u32 length-prefixed string.
func (r *Reader) String() string {
	if r.err != nil {
		return ""
	}
	v, err := r.dec.ReadString()
	r.set(err)
	return v
}

// OptionI64 reads an optional int64.
func (r *Reader) OptionI64() *int64 {
	if !r.Bool() {
		return nil
	}
	v := r.I64()
	if r.err != nil {
		return nil
	}
	return &v
}

// Done returns the first decoding error, or an error when bytes are left
// over.
func (r *Reader) Done() error {
	if r.err != nil {
		return r.err
	}
	if rem := r.dec.Remaining(); rem != 0 {
		return fmt.Errorf("%d trailing bytes", rem)
	}
	return nil
}
