package common

import (
	"errors"
	"fmt"
)

// StoreErrType enumerates the failure modes of a Store.
type StoreErrType uint32

const (
	// KeyNotFound is returned when no value is stored under a key.
	KeyNotFound StoreErrType = iota
	// KeyAlreadyExists is returned when a create targets an occupied key.
	KeyAlreadyExists
	// Empty is returned when a lookup is made against an empty collection.
	Empty
	// Corrupted is returned when a stored value cannot be decoded.
	Corrupted
)

// StoreErr is the error returned by stores. It records the kind of data that
// was requested, the key, and the failure mode.
type StoreErr struct {
	dataType string
	errType  StoreErrType
	key      string
}

// NewStoreErr creates a StoreErr.
func NewStoreErr(dataType string, errType StoreErrType, key string) StoreErr {
	return StoreErr{
		dataType: dataType,
		errType:  errType,
		key:      key,
	}
}

// Error implements the error interface.
func (e StoreErr) Error() string {
	m := ""
	switch e.errType {
	case KeyNotFound:
		m = "Not Found"
	case KeyAlreadyExists:
		m = "Key Already Exists"
	case Empty:
		m = "Empty"
	case Corrupted:
		m = "Corrupted"
	}

	return fmt.Sprintf("%s, %s, %s", e.dataType, e.key, m)
}

// IsStore reports whether err, or any error it wraps, is a StoreErr of type t.
func IsStore(err error, t StoreErrType) bool {
	var storeErr StoreErr
	return errors.As(err, &storeErr) && storeErr.errType == t
}
