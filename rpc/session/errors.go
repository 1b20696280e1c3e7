package session

import (
	"errors"
	"fmt"
)

// ErrClosed is returned when an operation is attempted on a closed session
var ErrClosed = errors.New("session is closed")

// RemoteError is the error kind for a non-empty error field in a response.
// The server's reason is propagated verbatim.
type RemoteError struct {
	Method string
	Reason string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote error calling %q: %s", e.Method, e.Reason)
}

// TimeoutError is the error kind for a call whose deadline elapsed before a
// response arrived. It is generated locally by the timeout sweep; the wire
// request may still reach the server and execute.
type TimeoutError struct {
	Method string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request %q timed out", e.Method)
}

// ConnectionError is the error kind broadcast to all outstanding
// future-based calls when the transport reports a connection failure.
type ConnectionError struct {
	Reason error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection failed: %v", e.Reason)
}

func (e *ConnectionError) Unwrap() error {
	return e.Reason
}
