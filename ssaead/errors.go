package ssaead

import (
	"encoding/hex"
	"errors"
	"fmt"
)

// ErrTerminated is returned by a preset after a fatal failure has already
// been surfaced, or after Close. The original error is reported exactly once.
var ErrTerminated = errors.New("preset terminated")

// ErrRepeatedSalt means the inbound salt was seen before, indicating a
// replayed stream.
var ErrRepeatedSalt = errors.New("repeated salt detected")

// AuthError is a failed tag verification on one wire field. It is fatal for
// the connection: a failed AEAD open is indistinguishable from tampering.
type AuthError struct {
	Field   string // "length" or "payload"
	Excerpt []byte // first bytes of the offending ciphertext
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s tag verification failed (0x%s...)", e.Field, hex.EncodeToString(e.Excerpt))
}

// ProtocolError means the peer declared a chunk length above the protocol
// maximum. Fatal, detected before the payload tag is examined.
type ProtocolError struct {
	Length int
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("declared chunk length %#04x exceeds %#04x", e.Length, MaxChunkSize)
}

// excerpt copies out the first few bytes of b for error reporting.
func excerpt(b []byte) []byte {
	if len(b) > 8 {
		b = b[:8]
	}
	return append([]byte(nil), b...)
}
