package nodestore

import (
	"errors"
	"fmt"
)

// ErrorCode classifies failures raised by the storage backends.
type ErrorCode int

const (
	Unknown ErrorCode = iota
	// InvalidArgument is a caller contract violation, e.g. removing a node that was never stored.
	InvalidArgument
	// CorruptPage means a data file page could not be read in full.
	CorruptPage
	// ConfigurationError is a missing or malformed construction property.
	ConfigurationError
	// FileIOError wraps failures of the underlying file system calls.
	FileIOError
	// DecodeFailure means stored bytes could not be decoded back into a node or index.
	DecodeFailure
	// StorageDisposed is returned by any call made after Dispose.
	StorageDisposed
)

var (
	ErrNodeNotFound    = errors.New("node not found")
	ErrShortRead       = errors.New("short page read")
	ErrMissingProperty = errors.New("missing required property")
	ErrDisposed        = errors.New("storage is disposed")
)

// Error is the node store custom error.
type Error struct {
	Code     ErrorCode
	Err      error
	UserData any
}

func (e Error) Error() string {
	return fmt.Errorf("error code: %d, user data: %v, details: %w", e.Code, e.UserData, e.Err).Error()
}

func (e Error) Unwrap() error {
	return e.Err
}

// NodeNotFound returns the InvalidArgument error raised when removing an unknown node.
func NodeNotFound(id NodeID) error {
	return Error{Code: InvalidArgument, Err: ErrNodeNotFound, UserData: id}
}

// Disposed returns the error raised by operations on a disposed storage.
func Disposed() error {
	return Error{Code: StorageDisposed, Err: ErrDisposed}
}

// CodeOf returns the ErrorCode carried by err, or Unknown.
func CodeOf(err error) ErrorCode {
	var e Error
	if errors.As(err, &e) {
		return e.Code
	}
	return Unknown
}
