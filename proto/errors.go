package proto

import "errors"

var (
	// ErrNotConnected indicates that an operation requires an active session.
	ErrNotConnected = errors.New("elmitec: not connected")

	// ErrInvalidArgument indicates that an argument failed local validation.
	// The check always happens before any I/O is performed.
	ErrInvalidArgument = errors.New("elmitec: invalid argument")

	// ErrFormat indicates that a reply does not match the expected token
	// count or shape, or fails a numeric parse.
	ErrFormat = errors.New("elmitec: malformed reply")

	// ErrConnClosed indicates that the stream ended before a fixed-length
	// read completed.
	ErrConnClosed = errors.New("elmitec: connection closed")

	// ErrRemote indicates that the remote application explicitly signaled
	// an error.
	ErrRemote = errors.New("elmitec: remote error")
)
