package service

// SubmitResponse is returned by POST /tx.
type SubmitResponse struct {
	TxHash string `json:"tx_hash"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code  uint32 `json:"code"`
	Error string `json:"error"`
}
