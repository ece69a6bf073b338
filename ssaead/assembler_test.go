package ssaead

import (
	"bytes"
	"errors"
	"testing"
)

// toy protocol: 1-byte payload length, then the payload
func lengthPrefixed(buf []byte) Outcome {
	if len(buf) < 1 {
		return NeedMore()
	}
	return Deliver(1 + int(buf[0]))
}

func collectUnits(units *[][]byte) func([]byte) error {
	return func(u []byte) error {
		*units = append(*units, append([]byte(nil), u...))
		return nil
	}
}

func TestAssemblerSinglePut(t *testing.T) {
	var units [][]byte
	a := NewAssembler(lengthPrefixed, collectUnits(&units))

	// three units in one transport read
	if err := a.Put([]byte("\x03abc\x00\x02xy")); err != nil {
		t.Fatal(err)
	}
	want := [][]byte{[]byte("\x03abc"), []byte("\x00"), []byte("\x02xy")}
	if len(units) != len(want) {
		t.Fatalf("got %d units, want %d", len(units), len(want))
	}
	for i := range want {
		if !bytes.Equal(units[i], want[i]) {
			t.Errorf("unit %d = %q, want %q", i, units[i], want[i])
		}
	}
}

func TestAssemblerByteAtATime(t *testing.T) {
	var units [][]byte
	a := NewAssembler(lengthPrefixed, collectUnits(&units))

	wire := []byte("\x03abc\x02xy")
	for i := range wire {
		if err := a.Put(wire[i : i+1]); err != nil {
			t.Fatal(err)
		}
	}
	if len(units) != 2 || !bytes.Equal(units[0], []byte("\x03abc")) || !bytes.Equal(units[1], []byte("\x02xy")) {
		t.Fatalf("got %q", units)
	}
}

func TestAssemblerResolverRunsOncePerUnit(t *testing.T) {
	calls := 0
	resolve := func(buf []byte) Outcome {
		calls++
		return Deliver(4)
	}
	var units [][]byte
	a := NewAssembler(resolve, collectUnits(&units))

	for i := 0; i < 4; i++ {
		if err := a.Put([]byte{byte(i)}); err != nil {
			t.Fatal(err)
		}
	}
	if len(units) != 1 {
		t.Fatalf("got %d units, want 1", len(units))
	}
	// one call decided the unit size, one saw the empty remainder
	if calls != 2 {
		t.Errorf("resolver ran %d times, want 2", calls)
	}
}

func TestAssemblerReplace(t *testing.T) {
	prefixed := true
	resolve := func(buf []byte) Outcome {
		if prefixed {
			if len(buf) < 4 {
				return NeedMore()
			}
			prefixed = false
			return Replace(buf[4:])
		}
		return lengthPrefixed(buf)
	}
	var units [][]byte
	a := NewAssembler(resolve, collectUnits(&units))

	if err := a.Put([]byte("SALT\x02ab")); err != nil {
		t.Fatal(err)
	}
	if len(units) != 1 || !bytes.Equal(units[0], []byte("\x02ab")) {
		t.Fatalf("got %q, want [\\x02ab]", units)
	}
}

func TestAssemblerAbort(t *testing.T) {
	boom := errors.New("boom")
	a := NewAssembler(func([]byte) Outcome { return Abort(boom) }, func([]byte) error { return nil })

	if err := a.Put([]byte("x")); err != boom {
		t.Fatalf("got %v, want boom", err)
	}
	// terminal; the original error is surfaced exactly once
	if err := a.Put([]byte("y")); err != ErrTerminated {
		t.Fatalf("got %v, want ErrTerminated", err)
	}
}

func TestAssemblerEmitError(t *testing.T) {
	boom := errors.New("boom")
	a := NewAssembler(lengthPrefixed, func([]byte) error { return boom })

	if err := a.Put([]byte("\x01a")); err != boom {
		t.Fatalf("got %v, want boom", err)
	}
	if err := a.Put([]byte("\x01b")); err != ErrTerminated {
		t.Fatalf("got %v, want ErrTerminated", err)
	}
}

func TestAssemblerClear(t *testing.T) {
	var units [][]byte
	a := NewAssembler(lengthPrefixed, collectUnits(&units))

	if err := a.Put([]byte("\x05ab")); err != nil { // partial unit
		t.Fatal(err)
	}
	a.Clear()
	if err := a.Put([]byte("\x01z")); err != nil {
		t.Fatal(err)
	}
	if len(units) != 1 || !bytes.Equal(units[0], []byte("\x01z")) {
		t.Fatalf("got %q after Clear", units)
	}
}
