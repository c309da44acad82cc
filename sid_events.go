// sid_events.go - Note events and immutable event sequences for direct register playback

package main

import (
	"iter"
	"math"
)

// NoteEvent is one monophonic note: a 16-bit SID frequency split into
// register bytes and a gate hold measured in scheduler ticks.
type NoteEvent struct {
	FreqLo        uint8
	FreqHi        uint8
	GateHoldTicks uint32
}

// Frequency returns the combined 16-bit frequency register value
func (n NoteEvent) Frequency() uint16 {
	return uint16(n.FreqLo) | uint16(n.FreqHi)<<8
}

// NewNote builds a NoteEvent from a 16-bit frequency register value
func NewNote(freq uint16, holdTicks uint32) NoteEvent {
	return NoteEvent{FreqLo: uint8(freq), FreqHi: uint8(freq >> 8), GateHoldTicks: holdTicks}
}

// sidFrequencyRegister converts Hz to a SID frequency register value:
// freq = Fout * 16777216 / clockHz
func sidFrequencyRegister(hz float64, clockHz uint32) uint16 {
	if hz <= 0 || clockHz == 0 {
		return 0
	}
	v := math.Round(hz * 16777216.0 / float64(clockHz))
	if v > math.MaxUint16 {
		return math.MaxUint16
	}
	return uint16(v)
}

// EventSequence is an ordered, immutable list of notes; insertion order is
// playback order.
type EventSequence struct {
	notes []NoteEvent
}

// NewEventSequence copies notes so later changes to the slice are not seen
func NewEventSequence(notes ...NoteEvent) EventSequence {
	cp := make([]NoteEvent, len(notes))
	copy(cp, notes)
	return EventSequence{notes: cp}
}

func (s EventSequence) Len() int {
	return len(s.notes)
}

func (s EventSequence) At(i int) NoteEvent {
	return s.notes[i]
}

// All yields notes in playback order
func (s EventSequence) All() iter.Seq2[int, NoteEvent] {
	return func(yield func(int, NoteEvent) bool) {
		for i, n := range s.notes {
			if !yield(i, n) {
				return
			}
		}
	}
}

// TotalTicks is the number of scheduler ticks a full playback takes
func (s EventSequence) TotalTicks(releaseTicks uint32) uint64 {
	var total uint64
	for _, n := range s.notes {
		total += uint64(n.GateHoldTicks) + uint64(releaseTicks)
	}
	return total
}

// demoSequence is the built-in tune used when no event script is given.
// Hold values are in ticks of defaultStepCycles (one tick per output sample).
func demoSequence() EventSequence {
	return NewEventSequence(
		NoteEvent{FreqLo: 25, FreqHi: 177, GateHoldTicks: 250},
		NewNote(0x1167, 6000),  // C4
		NewNote(0x15ED, 6000),  // E4
		NewNote(0x1A13, 6000),  // G4
		NewNote(0x22CE, 12000), // C5
		NewNote(0x1A13, 6000),  // G4
		NewNote(0x15ED, 6000),  // E4
		NewNote(0x1167, 18000), // C4
	)
}
