package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoteEvent_Frequency(t *testing.T) {
	n := NoteEvent{FreqLo: 25, FreqHi: 177, GateHoldTicks: 250}
	if n.Frequency() != 0xB119 {
		t.Errorf("Frequency() = 0x%04X, want 0xB119", n.Frequency())
	}
	if got := NewNote(0xB119, 250); got != n {
		t.Errorf("NewNote = %+v, want %+v", got, n)
	}
}

func TestSIDFrequencyRegister(t *testing.T) {
	tests := []struct {
		name  string
		hz    float64
		clock uint32
		want  uint16
	}{
		{"A4 PAL", 440, SID_CLOCK_PAL, 7493},
		{"A4 NTSC", 440, SID_CLOCK_NTSC, 7218},
		{"zero", 0, SID_CLOCK_PAL, 0},
		{"negative", -5, SID_CLOCK_PAL, 0},
		{"no clock", 440, 0, 0},
		{"clamped", 10000, SID_CLOCK_PAL, 0xFFFF},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sidFrequencyRegister(tt.hz, tt.clock); got != tt.want {
				t.Errorf("sidFrequencyRegister(%v, %d) = %d, want %d", tt.hz, tt.clock, got, tt.want)
			}
		})
	}
}

func TestEventSequence_Immutable(t *testing.T) {
	notes := []NoteEvent{NewNote(1, 10), NewNote(2, 20)}
	seq := NewEventSequence(notes...)
	notes[0] = NewNote(99, 99)

	if seq.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", seq.Len())
	}
	if seq.At(0).Frequency() != 1 {
		t.Error("sequence must not see later changes to the source slice")
	}

	var order []uint16
	for i, n := range seq.All() {
		if n != seq.At(i) {
			t.Errorf("All() index %d does not match At()", i)
		}
		order = append(order, n.Frequency())
	}
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("All() yielded %v, want insertion order", order)
	}

	for range seq.All() {
		break
	}

	if got := seq.TotalTicks(5); got != 10+20+2*5 {
		t.Errorf("TotalTicks(5) = %d, want 40", got)
	}
}

func TestDemoSequence(t *testing.T) {
	seq := demoSequence()
	if seq.Len() == 0 {
		t.Fatal("demo sequence is empty")
	}
	first := seq.At(0)
	if first.FreqLo != 25 || first.FreqHi != 177 || first.GateHoldTicks != 250 {
		t.Errorf("unexpected first note %+v", first)
	}
}

func TestParseEventScript(t *testing.T) {
	src := `
local notes = {
  { lo = 25, hi = 177, hold = 250 },
  { freq = 0x1167, hold = 6000 },
  { hz = 440, hold = 100 },
}
for i = 1, 2 do
  table.insert(notes, { freq = hz(220 * i), hold = math.floor(10.7) })
end
return notes
`
	seq, err := ParseEventScript(src, SID_CLOCK_PAL)
	require.NoError(t, err)
	require.Equal(t, 5, seq.Len())

	assert.Equal(t, NoteEvent{FreqLo: 25, FreqHi: 177, GateHoldTicks: 250}, seq.At(0))
	assert.Equal(t, NewNote(0x1167, 6000), seq.At(1))
	assert.Equal(t, NewNote(7493, 100), seq.At(2))
	assert.Equal(t, NewNote(sidFrequencyRegister(220, SID_CLOCK_PAL), 10), seq.At(3))
	assert.Equal(t, NewNote(7493, 10), seq.At(4))
}

func TestParseEventScript_GlobalNotes(t *testing.T) {
	seq, err := ParseEventScript(`notes = { { freq = 1, hold = 2 } }`, SID_CLOCK_PAL)
	require.NoError(t, err)
	require.Equal(t, 1, seq.Len())
	assert.Equal(t, NewNote(1, 2), seq.At(0))
}

func TestParseEventScript_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		msg  string
	}{
		{"syntax", `return {`, "run event script"},
		{"no table", `return 42`, "must return a table"},
		{"entry not table", `return { 5 }`, "note 1: expected table"},
		{"missing hold", `return { { freq = 1 } }`, "missing hold"},
		{"negative hold", `return { { freq = 1, hold = -1 } }`, "hold"},
		{"fractional", `return { { freq = 1.5, hold = 1 } }`, "freq"},
		{"lo too big", `return { { lo = 256, hi = 0, hold = 1 } }`, "lo"},
		{"string freq", `return { { freq = "x", hold = 1 } }`, "expected number"},
		{"no io library", `io.write("x") return {}`, "run event script"},
		{"no os library", `os.exit(1) return {}`, "run event script"},
		{"no dofile", `dofile("/etc/passwd") return {}`, "run event script"},
		{"no loadfile", `loadfile("x.lua") return {}`, "run event script"},
		{"no load", `load("return 1") return {}`, "run event script"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseEventScript(tt.src, SID_CLOCK_PAL)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestParseEventScript_Timeout(t *testing.T) {
	saved := eventScriptTimeout
	eventScriptTimeout = 50 * time.Millisecond
	defer func() { eventScriptTimeout = saved }()

	done := make(chan error, 1)
	go func() {
		_, err := ParseEventScript(`while true do end`, SID_CLOCK_PAL)
		done <- err
	}()
	select {
	case err := <-done:
		assert.ErrorContains(t, err, "run event script")
	case <-time.After(5 * time.Second):
		t.Fatal("endless script was not stopped")
	}
}

func TestLoadEventScript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.lua")
	require.NoError(t, os.WriteFile(path, []byte(`return { { hz = 440, hold = 5 } }`), 0o644))

	seq, err := LoadEventScript(path, SID_CLOCK_NTSC)
	require.NoError(t, err)
	assert.Equal(t, NewNote(7218, 5), seq.At(0))

	_, err = LoadEventScript(filepath.Join(t.TempDir(), "missing.lua"), SID_CLOCK_PAL)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
