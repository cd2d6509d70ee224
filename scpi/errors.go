package scpi

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidMode indicates a numeric mode code outside of [0, 3].
	ErrInvalidMode = errors.New("invalid network mode, should be in range of [0, 3]")

	// ErrAddressParse indicates a malformed IP address string.
	ErrAddressParse = errors.New("invalid IP address")

	// ErrInvalidPort indicates a port number out of range.
	ErrInvalidPort = errors.New("port is out of range")

	// ErrInvalidRepetition indicates a negative repetition count.
	ErrInvalidRepetition = errors.New("repetition count must not be negative")

	// ErrInvalidMessage indicates a message that still contains a line terminator after trimming.
	ErrInvalidMessage = errors.New("message contains an embedded line terminator")

	// ErrSessionConfigNil indicates that a nil SessionConfig was provided.
	ErrSessionConfigNil = errors.New("session config is nil")
)

var (
	// ErrBind indicates the local socket could not be bound.
	ErrBind = errors.New("bind local socket failed")

	// ErrConnect indicates the TCP connection to the remote endpoint could not be established.
	ErrConnect = errors.New("connect to remote failed")

	// ErrMulticastJoin indicates the socket could not join the multicast group.
	ErrMulticastJoin = errors.New("multicast join failed")

	// ErrUnsupportedMode indicates a mode that exists in the enumeration but has no implementation,
	// such as TCP multicast or IPv6 multicast.
	ErrUnsupportedMode = errors.New("unsupported network mode")

	// ErrUnsupportedAddressFamily indicates multicast over a non-IPv4 address.
	// Errors wrapping it also match ErrUnsupportedMode.
	ErrUnsupportedAddressFamily = errors.New("unsupported address family")

	// ErrIO indicates a send or write failure on an established transport.
	ErrIO = errors.New("network I/O failed")

	// ErrSessionClosed indicates that the session was already closed.
	ErrSessionClosed = errors.New("session closed")
)

// wrapErr joins kind and the underlying cause so that errors.Is matches both.
func wrapErr(kind error, cause error) error {
	if cause == nil {
		return kind
	}

	return fmt.Errorf("%w: %w", kind, cause)
}

// MessageError reports which message of a list failed to send.
type MessageError struct {
	// Index is the 1-based position of the failed message.
	Index int
	// Message is the caller's text, before framing.
	Message string
	// Err is the underlying failure.
	Err error
}

func (e *MessageError) Error() string {
	return fmt.Sprintf("message %d (%q): %v", e.Index, e.Message, e.Err)
}

func (e *MessageError) Unwrap() error {
	return e.Err
}
