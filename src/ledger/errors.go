package ledger

import (
	"errors"
	"fmt"
)

// CodedError is implemented by every error that a program can abort a
// transaction with. The code is what ends up in the Receipt.
type CodedError interface {
	error
	Code() uint32
}

// ErrType enumerates runtime-level failures. Program error codes live in
// higher ranges (token from 100, tracker from 6000).
type ErrType uint32

const (
	// CodeOK is the receipt code of a committed transaction.
	CodeOK ErrType = iota
	// InvalidTransaction means the transaction bytes could not be decoded.
	InvalidTransaction
	// InvalidSignature means the signature does not match the signer.
	InvalidSignature
	// DuplicateTransaction means a receipt already exists for the hash.
	DuplicateTransaction
	// UnknownProgram means no program is registered under the program id.
	UnknownProgram
	// Internal is used for errors that carry no code.
	Internal
)

// Error is a runtime error.
type Error struct {
	errType ErrType
	msg     string
}

// NewError creates a runtime Error.
func NewError(t ErrType, format string, args ...interface{}) Error {
	return Error{
		errType: t,
		msg:     fmt.Sprintf(format, args...),
	}
}

// Error implements the error interface.
func (e Error) Error() string {
	return e.msg
}

// Code implements CodedError.
func (e Error) Code() uint32 {
	return uint32(e.errType)
}

// IsLedger checks that an error is a ledger Error of the given type.
func IsLedger(err error, t ErrType) bool {
	var le Error
	return errors.As(err, &le) && le.errType == t
}

// ErrorCode extracts the code of an error, Internal when it has none.
func ErrorCode(err error) uint32 {
	if err == nil {
		return uint32(CodeOK)
	}
	var ce CodedError
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return uint32(Internal)
}
