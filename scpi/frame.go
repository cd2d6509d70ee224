package scpi

import "strings"

// Terminator ends every message placed on the wire.
const Terminator = "\r\n"

// Frame trims surrounding whitespace from msg and appends the CRLF terminator.
//
// Messages that still contain CR or LF after trimming are rejected with
// ErrInvalidMessage, so every frame carries exactly one terminator at its end.
func Frame(msg string) ([]byte, error) {
	trimmed := strings.TrimSpace(msg)
	if strings.ContainsAny(trimmed, "\r\n") {
		return nil, ErrInvalidMessage
	}

	buf := make([]byte, 0, len(trimmed)+len(Terminator))
	buf = append(buf, trimmed...)
	buf = append(buf, Terminator...)

	return buf, nil
}

// FramedLen returns the number of bytes Frame produces for msg.
func FramedLen(msg string) int {
	return len(strings.TrimSpace(msg)) + len(Terminator)
}
