package ssaead

import (
	"crypto/sha1"
	"io"

	"golang.org/x/crypto/hkdf"
)

// hkdfSHA1 fills outkey with key material derived from the pre-shared
// secret and the per-connection salt.
func hkdfSHA1(secret, salt, info, outkey []byte) error {
	r := hkdf.New(sha1.New, secret, salt, info)
	_, err := io.ReadFull(r, outkey)
	return err
}

// sessionKey derives one direction's session subkey from the long-term
// secret and that direction's salt.
func sessionKey(secret, salt []byte, keySize int) ([]byte, error) {
	subkey := make([]byte, keySize)
	if err := hkdfSHA1(secret, salt, []byte("ss-subkey"), subkey); err != nil {
		return nil, err
	}
	return subkey, nil
}
