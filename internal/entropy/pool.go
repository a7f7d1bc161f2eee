// Package entropy turns the timing jitter of player input into a byte stream.
//
// Every key edge stores the low byte of the time elapsed since the previous
// edge in a small ring buffer. Piece generation reads the buffer back one
// byte at a time. Write and read indices advance independently and may lap
// each other; under light input the reader simply sees older deltas again.
package entropy

import (
	"math/rand/v2"
	"time"
)

// PoolSize is the ring buffer capacity. Must be a power of two.
const PoolSize = 32

const mask = PoolSize - 1

// Pool is the entropy ring buffer. The zero value is usable but starts with
// an all-zero buffer; use New or NewSeeded to pre-fill it.
type Pool struct {
	buf   [PoolSize]byte
	write int
	read  int
	last  time.Time
}

// Snapshot is a read-only copy of the pool state for diagnostics.
type Snapshot struct {
	Buf   [PoolSize]byte
	Write int
	Read  int
}

// New creates a pool pre-filled from a time-seeded generator.
func New() *Pool {
	return NewSeeded(uint64(time.Now().UnixNano()))
}

// NewSeeded creates a pool pre-filled from a generator with a fixed seed.
func NewSeeded(seed uint64) *Pool {
	p := &Pool{}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	for i := range p.buf {
		p.buf[i] = byte(rng.Uint32())
	}
	return p
}

// RecordEdge stores the delta since the previous edge, in microseconds,
// truncated to its low byte.
func (p *Pool) RecordEdge(now time.Time) {
	var us int64
	if p.last.IsZero() {
		us = now.UnixMicro()
	} else {
		us = now.Sub(p.last).Microseconds()
	}
	p.buf[p.write] = byte(us)
	p.write = (p.write + 1) & mask
	p.last = now
}

// NextByte returns the byte at the read index and advances it.
// It never blocks: without fresh edges it returns older contents.
func (p *Pool) NextByte() byte {
	b := p.buf[p.read]
	p.read = (p.read + 1) & mask
	return b
}

// Snapshot returns a copy of the buffer and both indices.
func (p *Pool) Snapshot() Snapshot {
	return Snapshot{Buf: p.buf, Write: p.write, Read: p.read}
}
