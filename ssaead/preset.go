package ssaead

import (
	"crypto/rand"
	"encoding/binary"
	"io"

	"github.com/shadowpipe/go-shadowpipe/core"
)

const (
	// MaxChunkSize is the maximum payload of one chunk in bytes.
	MaxChunkSize = 0x3FFF
	// minSplitSize is the lower bound of the randomized chunk split.
	minSplitSize = 0x0800
)

// Preset is the two-directional transform between application bytes and
// wire bytes, driven by the surrounding pipeline. Encode turns outbound
// application bytes into wire bytes. Decode accepts inbound wire bytes in
// arbitrary fragments; complete decrypted chunks reach the configured
// OnChunk callback. Close clears all buffered and keyed state.
//
// A Preset instance owns all of its mutable state and serves exactly one
// connection; it is not safe for concurrent use, and does not need to be.
type Preset interface {
	Encode(p []byte) ([]byte, error)
	Decode(p []byte) error
	Close()
}

// Config assembles a Preset for one connection.
type Config struct {
	Profile core.Profile
	Key     []byte // long-term key of exactly Profile.KeySize bytes

	// OnChunk receives each decoded chunk. The slice is reused; the
	// callback must copy it to retain it past the call.
	OnChunk func(p []byte)

	// OnError, if set, is called exactly once with the terminal failure.
	// The same error is also returned by the failing Encode/Decode call.
	OnError func(err error)

	// Salts, if set, records and rejects connection salts to defeat
	// stream replay. Typically one pool is shared per process.
	Salts *SaltPool
}

// New validates cfg and returns a fresh Preset. Session keys and nonce
// counters are created lazily on first use in each direction.
func New(cfg Config) (Preset, error) {
	if len(cfg.Key) != cfg.Profile.KeySize {
		return nil, core.KeySizeError(cfg.Profile.KeySize)
	}
	p := &preset{cfg: cfg}
	p.asm = NewAssembler(p.resolve, p.consume)
	return p, nil
}

type preset struct {
	cfg Config
	enc *engine // send direction, created with a generated salt
	dec *engine // receive direction, created from the peer's salt
	asm *Assembler
	err error
}

// Encode splits b into randomly sized chunks and frames each as
// Seal(length) || Seal(payload). The first call on a connection prepends the
// freshly generated salt, exactly once.
func (p *preset) Encode(b []byte) ([]byte, error) {
	if p.err != nil {
		return nil, ErrTerminated
	}
	var out []byte
	if p.enc == nil {
		salt := make([]byte, p.cfg.Profile.SaltSize)
		if _, err := io.ReadFull(rand.Reader, salt); err != nil {
			return nil, p.fail(err)
		}
		enc, err := newEngine(p.cfg.Profile, p.cfg.Key, salt)
		if err != nil {
			return nil, p.fail(err)
		}
		if p.cfg.Salts != nil {
			p.cfg.Salts.Add(salt)
		}
		p.enc = enc
		out = salt
	}
	for len(b) > 0 {
		n := splitSize(len(b))
		out = p.appendChunk(out, b[:n])
		b = b[n:]
	}
	return out, nil
}

func (p *preset) appendChunk(dst, payload []byte) []byte {
	var lb [2]byte
	binary.BigEndian.PutUint16(lb[:], uint16(len(payload)))
	dst = p.enc.seal(dst, lb[:])
	return p.enc.seal(dst, payload)
}

// splitSize picks the next chunk size uniformly in [minSplitSize,
// MaxChunkSize], capped by the remaining input. Randomized sizes blur the
// application's payload-size fingerprint on the wire.
func splitSize(remaining int) int {
	var b [2]byte
	rand.Read(b[:])
	n := minSplitSize + int(binary.BigEndian.Uint16(b[:]))%(MaxChunkSize-minSplitSize+1)
	if n > remaining {
		n = remaining
	}
	return n
}

// Decode feeds inbound wire bytes to the reassembler. Decoded chunks are
// delivered through OnChunk; a fatal protocol or authentication failure is
// returned once and latches the preset.
func (p *preset) Decode(b []byte) error {
	if p.err != nil {
		return ErrTerminated
	}
	if err := p.asm.Put(b); err != nil {
		return p.fail(err)
	}
	return nil
}

// resolve implements the inbound length-resolution policy over the
// currently buffered bytes.
func (p *preset) resolve(buf []byte) Outcome {
	if p.dec == nil {
		saltSize := p.cfg.Profile.SaltSize
		if len(buf) < saltSize {
			return NeedMore()
		}
		salt := buf[:saltSize]
		if p.cfg.Salts != nil && p.cfg.Salts.Check(salt) {
			return Abort(ErrRepeatedSalt)
		}
		dec, err := newEngine(p.cfg.Profile, p.cfg.Key, salt)
		if err != nil {
			return Abort(err)
		}
		p.dec = dec
		return Replace(buf[saltSize:])
	}

	overhead := p.dec.overhead()
	if len(buf) < 2*overhead+3 { // smallest possible chunk
		return NeedMore()
	}
	lenBuf, err := p.dec.open(nil, buf[:2+overhead])
	if err != nil {
		return Abort(&AuthError{Field: "length", Excerpt: excerpt(buf)})
	}
	n := int(binary.BigEndian.Uint16(lenBuf))
	if n > MaxChunkSize {
		return Abort(&ProtocolError{Length: n})
	}
	return Deliver(2 + overhead + n + overhead)
}

// consume opens the payload of one complete chunk and emits the plaintext.
func (p *preset) consume(unit []byte) error {
	overhead := p.dec.overhead()
	data := unit[2+overhead:]
	plain, err := p.dec.open(data[:0], data)
	if err != nil {
		return &AuthError{Field: "payload", Excerpt: excerpt(data)}
	}
	if len(plain) > 0 && p.cfg.OnChunk != nil {
		p.cfg.OnChunk(plain)
	}
	return nil
}

// fail latches the first terminal error and reports it once.
func (p *preset) fail(err error) error {
	if p.err != nil {
		return ErrTerminated
	}
	p.err = err
	if p.cfg.OnError != nil {
		p.cfg.OnError(err)
	}
	return err
}

// Close clears buffered bytes, session keys and nonce counters. The preset
// refuses further use.
func (p *preset) Close() {
	p.asm.Clear()
	if p.enc != nil {
		p.enc.clear()
		p.enc = nil
	}
	if p.dec != nil {
		p.dec.clear()
		p.dec = nil
	}
	if p.err == nil {
		p.err = ErrTerminated
	}
}
