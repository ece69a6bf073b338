package ssaead

import (
	"crypto/cipher"

	"github.com/shadowpipe/go-shadowpipe/core"
)

// engine performs AEAD operations for one direction of one connection. The
// nonce is a little-endian counter starting at zero; it must never repeat
// under the same subkey, so it only ever moves forward, and open advances it
// only after the tag verified. Failed opens leave the counter untouched so an
// attacker cannot desynchronize nonce state with garbage.
type engine struct {
	aead  cipher.AEAD
	nonce []byte
}

// newEngine derives the session subkey for salt and builds the AEAD around it.
func newEngine(p core.Profile, secret, salt []byte) (*engine, error) {
	subkey, err := sessionKey(secret, salt, p.KeySize)
	if err != nil {
		return nil, err
	}
	aead, err := p.NewAEAD(subkey)
	if err != nil {
		return nil, err
	}
	return &engine{aead: aead, nonce: make([]byte, aead.NonceSize())}, nil
}

// seal encrypts plaintext, appends ciphertext||tag to dst and advances the
// counter.
func (e *engine) seal(dst, plaintext []byte) []byte {
	out := e.aead.Seal(dst, e.nonce, plaintext, nil)
	increment(e.nonce)
	return out
}

// open verifies and decrypts ciphertext||tag, appending plaintext to dst.
// The counter advances only on success.
func (e *engine) open(dst, ciphertext []byte) ([]byte, error) {
	out, err := e.aead.Open(dst, e.nonce, ciphertext, nil)
	if err != nil {
		return nil, err
	}
	increment(e.nonce)
	return out, nil
}

func (e *engine) overhead() int { return e.aead.Overhead() }

// clear drops key material references and resets the counter.
func (e *engine) clear() {
	e.aead = nil
	for i := range e.nonce {
		e.nonce[i] = 0
	}
}

// increment little-endian encoded unsigned integer b. Wrap around on overflow.
func increment(b []byte) {
	for i := range b {
		b[i]++
		if b[i] != 0 {
			return
		}
	}
}
