package ledger

// Receipt records the outcome of a transaction. A failed transaction still
// gets a receipt; its writes are discarded.
type Receipt struct {
	TxHash     string
	BlockIndex int
	Program    string
	Signer     string
	Code       uint32
	Message    string
	Logs       []string
}

// Succeeded reports whether the transaction committed.
func (r *Receipt) Succeeded() bool {
	return r.Code == uint32(CodeOK)
}

// Marshal returns the canonical JSON encoding of the receipt.
func (r *Receipt) Marshal() ([]byte, error) {
	return encodeCanonical(r)
}

// Unmarshal decodes the output of Marshal.
func (r *Receipt) Unmarshal(data []byte) error {
	return decodeCanonical(data, r)
}
