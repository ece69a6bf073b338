package ssaead

import (
	"net"

	"github.com/shadowpipe/go-shadowpipe/core"
)

// Conn wraps a stream-oriented net.Conn with the AEAD chunk protocol,
// adapting the push-style Preset onto the usual pull-style interface.
type Conn struct {
	net.Conn
	preset Preset
	rbuf   []byte // decoded, not yet read by the caller
	rerr   error
	tmp    []byte
}

type closeWriter interface {
	CloseWrite() error
}

type closeReader interface {
	CloseRead() error
}

// NewConn wraps c with the given profile and long-term key. pool may be nil
// to disable replay defense.
func NewConn(c net.Conn, profile core.Profile, key []byte, pool *SaltPool) (*Conn, error) {
	sc := &Conn{Conn: c, tmp: make([]byte, 32*1024)}
	p, err := New(Config{
		Profile: profile,
		Key:     key,
		Salts:   pool,
		OnChunk: func(b []byte) { sc.rbuf = append(sc.rbuf, b...) },
	})
	if err != nil {
		return nil, err
	}
	sc.preset = p
	return sc, nil
}

// Read returns decrypted application bytes, pulling and decoding as many
// wire bytes as needed to produce at least one chunk.
func (c *Conn) Read(b []byte) (int, error) {
	for len(c.rbuf) == 0 {
		if c.rerr != nil {
			return 0, c.rerr
		}
		n, err := c.Conn.Read(c.tmp)
		if n > 0 {
			if derr := c.preset.Decode(c.tmp[:n]); derr != nil {
				c.rerr = derr
				continue
			}
		}
		if err != nil {
			c.rerr = err
		}
	}
	n := copy(b, c.rbuf)
	c.rbuf = c.rbuf[n:]
	return n, nil
}

// Write encrypts b and writes the wire bytes to the embedded net.Conn.
func (c *Conn) Write(b []byte) (int, error) {
	wire, err := c.preset.Encode(b)
	if err != nil {
		return 0, err
	}
	if _, err := c.Conn.Write(wire); err != nil {
		return 0, err
	}
	return len(b), nil
}

// Close tears down the preset state before closing the transport.
func (c *Conn) Close() error {
	c.preset.Close()
	return c.Conn.Close()
}

func (c *Conn) CloseRead() error {
	if c, ok := c.Conn.(closeReader); ok {
		return c.CloseRead()
	}
	return nil
}

func (c *Conn) CloseWrite() error {
	if c, ok := c.Conn.(closeWriter); ok {
		return c.CloseWrite()
	}
	return nil
}
