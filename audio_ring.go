// audio_ring.go - Lock-free single-producer/single-consumer sample ring

package main

import (
	"context"
	"errors"
	"sync/atomic"
	"time"
)

var ErrRingClosed = errors.New("sample ring closed")

// ringFullBackoff is how long the producer sleeps when the consumer is behind
const ringFullBackoff = 500 * time.Microsecond

// SampleRing hands samples from the simulation goroutine (sole producer) to
// the audio callback (sole consumer). The consumer side never blocks.
type SampleRing struct {
	buf  []float32
	mask uint64

	head atomic.Uint64 // next slot to read, owned by the consumer
	tail atomic.Uint64 // next slot to write, owned by the producer

	closed    atomic.Bool
	underruns atomic.Uint64
}

// NewSampleRing rounds capacity up to a power of two
func NewSampleRing(capacity int) *SampleRing {
	size := 1
	for size < capacity {
		size <<= 1
	}
	return &SampleRing{
		buf:  make([]float32, size),
		mask: uint64(size - 1),
	}
}

func (r *SampleRing) Cap() int {
	return len(r.buf)
}

// Len is the number of samples buffered and not yet read
func (r *SampleRing) Len() int {
	return int(r.tail.Load() - r.head.Load())
}

// TryWrite stores one sample if there is room
func (r *SampleRing) TryWrite(s float32) bool {
	tail := r.tail.Load()
	if tail-r.head.Load() >= uint64(len(r.buf)) {
		return false
	}
	r.buf[tail&r.mask] = s
	r.tail.Store(tail + 1)
	return true
}

// WriteSample implements SampleWriter. It waits for space while ctx is live;
// once ctx is cancelled the sample is dropped so the scheduler can finish the
// current note without stalling.
func (r *SampleRing) WriteSample(ctx context.Context, s float32) error {
	for {
		if r.closed.Load() {
			return ErrRingClosed
		}
		if r.TryWrite(s) {
			return nil
		}
		if ctx.Err() != nil {
			return nil
		}
		time.Sleep(ringFullBackoff)
	}
}

// ReadSamples fills dst and returns how many samples were real. Missing
// samples are zero-filled and counted as underruns.
func (r *SampleRing) ReadSamples(dst []float32) int {
	head := r.head.Load()
	avail := r.tail.Load() - head
	n := len(dst)
	if uint64(n) > avail {
		n = int(avail)
	}
	for i := 0; i < n; i++ {
		dst[i] = r.buf[(head+uint64(i))&r.mask]
	}
	r.head.Store(head + uint64(n))

	if n < len(dst) {
		clear(dst[n:])
		if !r.closed.Load() {
			r.underruns.Add(uint64(len(dst) - n))
		}
	}
	return n
}

// Close stops further writes; buffered samples remain readable
func (r *SampleRing) Close() {
	r.closed.Store(true)
}

func (r *SampleRing) Closed() bool {
	return r.closed.Load()
}

// Underruns counts zero-filled samples delivered while the ring was open
func (r *SampleRing) Underruns() uint64 {
	return r.underruns.Load()
}

// Drain waits until the consumer has read everything buffered
func (r *SampleRing) Drain(ctx context.Context) error {
	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()
	for r.Len() > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}
