// music_interfaces.go - Interfaces between the scheduler, the chip model and audio output

package main

import "context"

// ChipEmulator is a stateful register file plus sample generator.
// Identical write/advance sequences must produce identical state.
type ChipEmulator interface {
	// WriteRegister stores value in a writable register (0x00-0x18)
	WriteRegister(reg uint8, value uint8) error
	// AdvanceClock runs the simulation forward by cycles chip clocks
	AdvanceClock(cycles uint32)
	// StateSnapshot returns a comparable copy of the internal state
	StateSnapshot() StateSnapshot
	// NextSample returns the current mixed output in [-1, 1]
	NextSample() float32
}

// SampleWriter receives samples from the simulation thread
type SampleWriter interface {
	WriteSample(ctx context.Context, sample float32) error
}

// SampleSource fills dst from pre-rendered output and returns how many
// samples were real (the rest are zero). It must never block.
type SampleSource func(dst []float32) int

// AudioSink is a real-time consumer that pulls from a SampleSource on its
// own callback thread. Device lifecycle belongs to the sink.
type AudioSink interface {
	Start(src SampleSource) error
	Close() error
}
