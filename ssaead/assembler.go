package ssaead

// Assembler turns arbitrarily fragmented transport reads back into complete
// protocol units. It is transport-agnostic: Put may be called with one byte
// or with several chunks' worth of bytes, and the emitted units are the same
// either way.
//
// The caller supplies a Resolver that inspects the buffered bytes and says
// what to do next. A Deliver target is remembered across Put calls, so the
// resolver is consulted exactly once per unit even when the unit trickles in
// byte by byte.

// Outcome is a Resolver's decision about the currently buffered bytes.
type Outcome struct {
	op  int
	n   int
	buf []byte
	err error
}

const (
	opNeedMore = iota
	opDeliver
	opReplace
	opAbort
)

// NeedMore waits for the next Put without making progress.
func NeedMore() Outcome { return Outcome{op: opNeedMore} }

// Deliver emits the first n buffered bytes as one complete unit, once n
// bytes are available.
func Deliver(n int) Outcome { return Outcome{op: opDeliver, n: n} }

// Replace swaps the buffer contents without emitting a unit. Used to drop
// the consumed salt from the front of the stream.
func Replace(buf []byte) Outcome { return Outcome{op: opReplace, buf: buf} }

// Abort stops all further processing and surfaces err to the caller of Put.
func Abort(err error) Outcome { return Outcome{op: opAbort, err: err} }

// Resolver inspects the buffered bytes and decides how many of them form the
// next unit. It must not retain buf.
type Resolver func(buf []byte) Outcome

// Assembler accumulates inbound bytes and emits complete units.
type Assembler struct {
	resolve Resolver
	emit    func(unit []byte) error
	buf     []byte
	want    int   // pending unit size; 0 when the resolver must be asked
	err     error // terminal state
}

// NewAssembler returns an Assembler that consults resolve and hands each
// complete unit to emit. A non-nil error from emit is terminal.
func NewAssembler(resolve Resolver, emit func(unit []byte) error) *Assembler {
	return &Assembler{resolve: resolve, emit: emit}
}

// Put appends p and processes as many complete units as the buffer now
// holds. After a terminal failure every subsequent Put returns ErrTerminated.
func (a *Assembler) Put(p []byte) error {
	if a.err != nil {
		return ErrTerminated
	}
	a.buf = append(a.buf, p...)
	for {
		if a.want == 0 {
			o := a.resolve(a.buf)
			switch o.op {
			case opNeedMore:
				return nil
			case opReplace:
				a.buf = append(a.buf[:0], o.buf...)
				continue
			case opAbort:
				return a.fail(o.err)
			case opDeliver:
				a.want = o.n
			}
		}
		if len(a.buf) < a.want {
			return nil
		}
		unit := a.buf[:a.want]
		rest := a.buf[a.want:]
		a.want = 0
		if err := a.emit(unit); err != nil {
			return a.fail(err)
		}
		a.buf = rest
	}
}

func (a *Assembler) fail(err error) error {
	a.err = err
	a.buf = nil
	return err
}

// Clear resets the buffer and all internal state for reuse or teardown.
func (a *Assembler) Clear() {
	a.buf = nil
	a.want = 0
	a.err = nil
}
