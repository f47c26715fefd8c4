// Package wire implements the classic ADB smart-socket framing shared by
// the client and the daemon: length-prefixed protocol strings and the
// OKAY/FAIL status replies used by host services.
//
// A protocol string is four lowercase hex digits encoding the byte length,
// followed by that many bytes. A status reply is the literal "OKAY", or
// "FAIL" followed by a protocol string carrying the reason.
package wire

import (
	"errors"
	"fmt"
	"io"
	"strconv"
)

// MaxStringLength is the longest string the four-hex-digit length prefix
// can carry.
const MaxStringLength = 0xFFFF

// Status replies.
const (
	StatusOkay = "OKAY"
	StatusFail = "FAIL"

	statusSize = 4
)

// Wire protocol errors.
var (
	ErrStringTooLong       = errors.New("wire: string exceeds maximum protocol length")
	ErrInvalidLengthPrefix = errors.New("wire: invalid length prefix")
	ErrServiceFailed       = errors.New("wire: service failed")
	ErrUnknownStatus       = errors.New("wire: unknown status")
)

// SendProtocolString writes s as a protocol string: a "%04x" length prefix
// followed by the bytes of s.
func SendProtocolString(w io.Writer, s string) error {
	if len(s) > MaxStringLength {
		return ErrStringTooLong
	}

	msg := fmt.Sprintf("%04x%s", len(s), s)
	if _, err := io.WriteString(w, msg); err != nil {
		return fmt.Errorf("wire: send protocol string: %w", err)
	}
	return nil
}

// ReadProtocolString reads one protocol string: it parses the four-hex-digit
// length prefix and reads exactly that many bytes.
func ReadProtocolString(r io.Reader) (string, error) {
	var prefix [4]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		return "", fmt.Errorf("wire: read length prefix: %w", err)
	}

	length, err := strconv.ParseUint(string(prefix[:]), 16, 16)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidLengthPrefix, prefix)
	}

	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", fmt.Errorf("wire: read protocol string: %w", err)
	}
	return string(buf), nil
}

// SendOkay writes the "OKAY" status.
func SendOkay(w io.Writer) error {
	if _, err := io.WriteString(w, StatusOkay); err != nil {
		return fmt.Errorf("wire: send okay: %w", err)
	}
	return nil
}

// SendFail writes the "FAIL" status followed by the reason as a protocol
// string.
func SendFail(w io.Writer, reason string) error {
	if _, err := io.WriteString(w, StatusFail); err != nil {
		return fmt.Errorf("wire: send fail: %w", err)
	}
	return SendProtocolString(w, reason)
}

// ReadStatus reads a four-byte status reply. It returns nil for "OKAY" and
// an error wrapping ErrServiceFailed, carrying the peer's reason, for
// "FAIL".
func ReadStatus(r io.Reader) error {
	var status [statusSize]byte
	if _, err := io.ReadFull(r, status[:]); err != nil {
		return fmt.Errorf("wire: read status: %w", err)
	}

	switch string(status[:]) {
	case StatusOkay:
		return nil
	case StatusFail:
		reason, err := ReadProtocolString(r)
		if err != nil {
			return fmt.Errorf("%w: unreadable reason: %v", ErrServiceFailed, err)
		}
		return fmt.Errorf("%w: %s", ErrServiceFailed, reason)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStatus, status)
	}
}
