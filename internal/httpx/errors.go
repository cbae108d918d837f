package httpx

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrorClass partitions transport failures into the three classes the
// routing engine distinguishes.
type ErrorClass string

const (
	// ErrTimeout means the deadline elapsed before a response arrived.
	ErrTimeout ErrorClass = "timeout"
	// ErrConnection means DNS, TCP, or TLS failed.
	ErrConnection ErrorClass = "connection"
	// ErrProtocol means the HTTP exchange itself was malformed.
	ErrProtocol ErrorClass = "protocol"
)

// TransportError wraps a failed request with its classification.
type TransportError struct {
	Class ErrorClass
	Op    string
	Err   error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Class, e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// classify maps an error from http.Client.Do onto a TransportError.
func classify(op string, err error) *TransportError {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &TransportError{Class: ErrTimeout, Op: op, Err: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &TransportError{Class: ErrTimeout, Op: op, Err: err}
	}

	var opErr *net.OpError
	var dnsErr *net.DNSError
	if errors.As(err, &opErr) || errors.As(err, &dnsErr) {
		return &TransportError{Class: ErrConnection, Op: op, Err: err}
	}

	return &TransportError{Class: ErrProtocol, Op: op, Err: err}
}

// ClassOf reports the transport error class, or "" for non-transport errors.
func ClassOf(err error) ErrorClass {
	var te *TransportError
	if errors.As(err, &te) {
		return te.Class
	}
	return ""
}
