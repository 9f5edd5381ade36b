package token

import (
	"errors"
	"fmt"
)

// ErrType enumerates token failures. Codes start at 100.
type ErrType uint32

const (
	AccountNotFound ErrType = iota + 100
	AccountAlreadyExists
	MintMismatch
	OwnerMismatch
	InsufficientFunds
	Overflow
	InvalidInstruction
)

func (t ErrType) String() string {
	switch t {
	case AccountNotFound:
		return "AccountNotFound"
	case AccountAlreadyExists:
		return "AccountAlreadyExists"
	case MintMismatch:
		return "MintMismatch"
	case OwnerMismatch:
		return "OwnerMismatch"
	case InsufficientFunds:
		return "InsufficientFunds"
	case Overflow:
		return "Overflow"
	case InvalidInstruction:
		return "InvalidInstruction"
	default:
		return "Unknown"
	}
}

// Error is a token error. It implements ledger.CodedError.
type Error struct {
	errType ErrType
	msg     string
}

func newError(t ErrType, format string, args ...interface{}) Error {
	return Error{
		errType: t,
		msg:     fmt.Sprintf(format, args...),
	}
}

// Error implements the error interface.
func (e Error) Error() string {
	return fmt.Sprintf("%s: %s", e.errType, e.msg)
}

// Code returns the numeric code of the error.
func (e Error) Code() uint32 {
	return uint32(e.errType)
}

// Is checks that an error is a token Error of the given type.
func Is(err error, t ErrType) bool {
	var te Error
	return errors.As(err, &te) && te.errType == t
}
