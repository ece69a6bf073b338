package core

import (
	"encoding/hex"
	"errors"
	"sort"
	"testing"
)

func TestPickProfile(t *testing.T) {
	cases := []struct {
		name     string
		keySize  int
		saltSize int
	}{
		{"aes-128-gcm", 16, 16},
		{"aes-192-gcm", 24, 24},
		{"aes-256-gcm", 32, 32},
		{"chacha20-ietf-poly1305", 32, 32},
	}
	for _, c := range cases {
		p, err := PickProfile(c.name)
		if err != nil {
			t.Fatalf("PickProfile(%q): %v", c.name, err)
		}
		if p.KeySize != c.keySize || p.SaltSize != c.saltSize {
			t.Errorf("%s: got key/salt %d/%d, want %d/%d", c.name, p.KeySize, p.SaltSize, c.keySize, c.saltSize)
		}
		aead, err := p.NewAEAD(make([]byte, p.KeySize))
		if err != nil {
			t.Fatalf("%s: NewAEAD: %v", c.name, err)
		}
		if aead.NonceSize() != 12 || aead.Overhead() != 16 {
			t.Errorf("%s: nonce/overhead %d/%d, want 12/16", c.name, aead.NonceSize(), aead.Overhead())
		}
	}
}

func TestPickProfileCaseInsensitive(t *testing.T) {
	if _, err := PickProfile("AES-128-GCM"); err != nil {
		t.Fatal(err)
	}
}

func TestPickProfileUnknown(t *testing.T) {
	_, err := PickProfile("rc4-md5")
	if !errors.Is(err, ErrCipherNotSupported) {
		t.Fatalf("got %v, want ErrCipherNotSupported", err)
	}
}

func TestNewAEADKeySize(t *testing.T) {
	p, err := PickProfile("aes-256-gcm")
	if err != nil {
		t.Fatal(err)
	}
	_, err = p.NewAEAD(make([]byte, 16))
	var kerr KeySizeError
	if !errors.As(err, &kerr) || int(kerr) != 32 {
		t.Fatalf("got %v, want KeySizeError(32)", err)
	}
}

func TestListCipherSorted(t *testing.T) {
	l := ListCipher()
	if len(l) != 4 {
		t.Fatalf("got %d ciphers, want 4", len(l))
	}
	if !sort.StringsAreSorted(l) {
		t.Errorf("cipher list not sorted: %v", l)
	}
}

func TestKey(t *testing.T) {
	// MD5("pass"), the first block of the EVP-style stretch.
	want, _ := hex.DecodeString("1a1dc91c907325c69271ddf0c944bc72")

	got := Key("pass", 16)
	if string(got) != string(want) {
		t.Errorf("Key(pass, 16) = %x, want %x", got, want)
	}

	long := Key("pass", 32)
	if len(long) != 32 || string(long[:16]) != string(want) {
		t.Errorf("Key(pass, 32) = %x, want prefix %x", long, want)
	}

	if string(Key("pass", 32)) != string(long) {
		t.Error("Key is not deterministic")
	}
}
