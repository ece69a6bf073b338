package ssaead

import (
	"hash/fnv"
	"sync"

	"github.com/riobard/go-bloom"
)

// Salt replay defense. A salt that appears twice means a recorded stream is
// being replayed at us; the pool remembers recently seen salts in a ring of
// bloom filters so memory stays bounded while detection covers the window an
// attacker can realistically replay into.

// Defaults for a process-wide pool, sized for roughly a million salts.
const (
	DefaultSaltPoolSlots    = 10
	DefaultSaltPoolCapacity = 1e6
	DefaultSaltPoolFPR      = 1e-6
)

// simply use Double FNV here as our bloom filter hash
func doubleFNV(b []byte) (uint64, uint64) {
	hx := fnv.New64()
	hx.Write(b)
	x := hx.Sum64()
	hy := fnv.New64a()
	hy.Write(b)
	y := hy.Sum64()
	return x, y
}

// SaltPool records connection salts across all connections of a process.
// Safe for concurrent use.
type SaltPool struct {
	mu           sync.Mutex
	slotCapacity int
	slotPosition int
	entryCounter int
	slots        []bloom.Filter
}

// NewSaltPool builds a pool of slot rotating filters holding capacity salts
// in total at the given false-positive rate.
func NewSaltPool(slot, capacity int, falsePositiveRate float64) *SaltPool {
	p := &SaltPool{
		slotCapacity: capacity / slot,
		slots:        make([]bloom.Filter, slot),
	}
	for i := range p.slots {
		p.slots[i] = bloom.New(p.slotCapacity, falsePositiveRate, doubleFNV)
	}
	return p
}

// DefaultSaltPool returns a pool with the default sizing.
func DefaultSaltPool() *SaltPool {
	return NewSaltPool(DefaultSaltPoolSlots, DefaultSaltPoolCapacity, DefaultSaltPoolFPR)
}

// Add records a salt we generated ourselves, so a reflected stream is
// caught as a replay too.
func (p *SaltPool) Add(salt []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.add(salt)
}

// Check reports whether salt was seen before, recording it either way.
// A true result is a replay.
func (p *SaltPool) Check(salt []byte) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, s := range p.slots {
		if s.Test(salt) {
			return true
		}
	}
	p.add(salt)
	return false
}

// add appends to the current slot, rotating to (and resetting) the next
// slot when the current one is full. Callers hold mu.
func (p *SaltPool) add(salt []byte) {
	slot := p.slots[p.slotPosition]
	if p.entryCounter > p.slotCapacity {
		p.slotPosition = (p.slotPosition + 1) % len(p.slots)
		slot = p.slots[p.slotPosition]
		slot.Reset()
		p.entryCounter = 0
	}
	p.entryCounter++
	slot.Add(salt)
}
