package tracker

import (
	"errors"
	"fmt"
)

// ErrType enumerates the failures of the tracker program. Codes start at
// 6000.
type ErrType uint32

const (
	Unauthorized ErrType = iota + 6000
	NotInitialized
	AlreadyInitialized
	InvalidParameters
	PeriodExpired
	PeriodNotExpired
	AlreadyReviewed
	AlreadyFinalized
	PeriodNotFinalized
	BelowThreshold
	AlreadyClaimed
	NothingToClaim
	VaultMismatch
	DescriptionTooLong
	PeriodFinalized
	ContributionNotFound
	ArithmeticOverflow
)

var errNames = map[ErrType]string{
	Unauthorized:         "Unauthorized",
	NotInitialized:       "NotInitialized",
	AlreadyInitialized:   "AlreadyInitialized",
	InvalidParameters:    "InvalidParameters",
	PeriodExpired:        "PeriodExpired",
	PeriodNotExpired:     "PeriodNotExpired",
	AlreadyReviewed:      "AlreadyReviewed",
	AlreadyFinalized:     "AlreadyFinalized",
	PeriodNotFinalized:   "PeriodNotFinalized",
	BelowThreshold:       "BelowThreshold",
	AlreadyClaimed:       "AlreadyClaimed",
	NothingToClaim:       "NothingToClaim",
	VaultMismatch:        "VaultMismatch",
	DescriptionTooLong:   "DescriptionTooLong",
	PeriodFinalized:      "PeriodFinalized",
	ContributionNotFound: "ContributionNotFound",
	ArithmeticOverflow:   "ArithmeticOverflow",
}

func (t ErrType) String() string {
	if name, ok := errNames[t]; ok {
		return name
	}
	return fmt.Sprintf("ErrType(%d)", uint32(t))
}

// Error is a tracker error. It implements ledger.CodedError so the code ends
// up in the transaction receipt.
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

// Code returns the numeric error code.
func (e Error) Code() uint32 {
	return uint32(e.errType)
}

// Type returns the ErrType.
func (e Error) Type() ErrType {
	return e.errType
}

// Is checks that an error is a tracker Error of the given type.
func Is(err error, t ErrType) bool {
	var te Error
	return errors.As(err, &te) && te.errType == t
}

func checkedAdd(a, b uint64, what string) (uint64, error) {
	if a+b < a {
		return 0, newError(ArithmeticOverflow, "%s: %d + %d", what, a, b)
	}
	return a + b, nil
}
