package core

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/md5"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
)

// ErrCipherNotSupported occurs when a cipher is not in the supported set.
var ErrCipherNotSupported = errors.New("cipher not supported")

// KeySizeError means the supplied key does not match the profile's key size.
type KeySizeError int

func (e KeySizeError) Error() string { return "key size error: need " + strconv.Itoa(int(e)) + " bytes" }

// Profile is the immutable parameter set of one AEAD cipher variant.
// A Profile value is safe to share across connections.
type Profile struct {
	Name     string
	KeySize  int
	SaltSize int
	newAEAD  func(key []byte) (cipher.AEAD, error)
}

// NewAEAD builds an AEAD instance from a key of exactly KeySize bytes.
func (p Profile) NewAEAD(key []byte) (cipher.AEAD, error) {
	if len(key) != p.KeySize {
		return nil, KeySizeError(p.KeySize)
	}
	return p.newAEAD(key)
}

func aesGCM(key []byte) (cipher.AEAD, error) {
	blk, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(blk) // standard 12-byte nonce
}

// Supported AEAD profiles: key size and salt size in bytes.
var profiles = map[string]Profile{
	"aes-128-gcm":            {"aes-128-gcm", 16, 16, aesGCM},
	"aes-192-gcm":            {"aes-192-gcm", 24, 24, aesGCM},
	"aes-256-gcm":            {"aes-256-gcm", 32, 32, aesGCM},
	"chacha20-ietf-poly1305": {"chacha20-ietf-poly1305", 32, 32, chacha20poly1305.New},
}

// PickProfile returns the Profile of the given cipher name. Unknown names
// fail here, before any connection is admitted.
func PickProfile(name string) (Profile, error) {
	p, ok := profiles[strings.ToLower(name)]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %s", ErrCipherNotSupported, name)
	}
	return p, nil
}

// ListCipher returns available cipher names sorted alphabetically.
func ListCipher() []string {
	var l []string
	for k := range profiles {
		l = append(l, k)
	}
	sort.Strings(l)
	return l
}

// Key stretches a password into keyLen bytes of long-term key material.
// This is the key-derivation function from original Shadowsocks.
func Key(password string, keyLen int) []byte {
	var b, prev []byte
	h := md5.New()
	for len(b) < keyLen {
		h.Write(prev)
		h.Write([]byte(password))
		b = h.Sum(b)
		prev = b[len(b)-h.Size():]
		h.Reset()
	}
	return b[:keyLen]
}
