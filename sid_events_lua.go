// sid_events_lua.go - Load event sequences from Lua scripts

package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"time"

	lua "github.com/yuin/gopher-lua"
)

// LoadEventScript reads a Lua script that returns (or assigns to the global
// "notes") an array of note tables:
//
//	return {
//	  { lo = 25, hi = 177, hold = 250 },
//	  { freq = 0x1167, hold = 6000 },
//	  { hz = 440, hold = 6000 },
//	}
//
// The helper hz(x) converts Hertz to a frequency register value for clockHz.
func LoadEventScript(path string, clockHz uint32) (EventSequence, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return EventSequence{}, fmt.Errorf("read event script: %w", err)
	}
	return ParseEventScript(string(src), clockHz)
}

// eventScriptTimeout bounds how long a script may run
var eventScriptTimeout = 2 * time.Second

// luaBlockedGlobals are base library functions that reach the filesystem or
// compile further code
var luaBlockedGlobals = []string{"dofile", "loadfile", "load", "loadstring"}

// ParseEventScript runs src with only the base, table and math libraries,
// minus luaBlockedGlobals, and aborts it after eventScriptTimeout. Scripts
// are still trusted input: memory use is not limited.
func ParseEventScript(src string, clockHz uint32) (EventSequence, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()

	ctx, cancel := context.WithTimeout(context.Background(), eventScriptTimeout)
	defer cancel()

	for _, lib := range []struct {
		name string
		open lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.MathLibName, lua.OpenMath},
	} {
		if err := L.CallByParam(lua.P{Fn: L.NewFunction(lib.open), NRet: 0, Protect: true}, lua.LString(lib.name)); err != nil {
			return EventSequence{}, fmt.Errorf("open lua %s: %w", lib.name, err)
		}
	}

	for _, name := range luaBlockedGlobals {
		L.SetGlobal(name, lua.LNil)
	}
	L.SetContext(ctx)

	L.SetGlobal("hz", L.NewFunction(func(L *lua.LState) int {
		hz := L.CheckNumber(1)
		L.Push(lua.LNumber(sidFrequencyRegister(float64(hz), clockHz)))
		return 1
	}))

	if err := L.DoString(src); err != nil {
		return EventSequence{}, fmt.Errorf("run event script: %w", err)
	}

	tbl, ok := L.Get(-1).(*lua.LTable)
	if !ok {
		tbl, ok = L.GetGlobal("notes").(*lua.LTable)
	}
	if !ok {
		return EventSequence{}, fmt.Errorf("event script must return a table of notes")
	}

	notes := make([]NoteEvent, 0, tbl.Len())
	for i := 1; i <= tbl.Len(); i++ {
		entry, ok := tbl.RawGetInt(i).(*lua.LTable)
		if !ok {
			return EventSequence{}, fmt.Errorf("note %d: expected table, got %s", i, tbl.RawGetInt(i).Type())
		}
		note, err := luaNote(entry, clockHz)
		if err != nil {
			return EventSequence{}, fmt.Errorf("note %d: %w", i, err)
		}
		notes = append(notes, note)
	}
	return EventSequence{notes: notes}, nil
}

func luaNote(entry *lua.LTable, clockHz uint32) (NoteEvent, error) {
	hold, set, err := luaUint(entry, "hold", math.MaxUint32)
	if err != nil {
		return NoteEvent{}, err
	}
	if !set {
		return NoteEvent{}, fmt.Errorf("missing hold")
	}

	if hz, ok := entry.RawGetString("hz").(lua.LNumber); ok {
		return NewNote(sidFrequencyRegister(float64(hz), clockHz), uint32(hold)), nil
	}
	freq, set, err := luaUint(entry, "freq", math.MaxUint16)
	if err != nil {
		return NoteEvent{}, err
	}
	if set {
		return NewNote(uint16(freq), uint32(hold)), nil
	}

	lo, _, err := luaUint(entry, "lo", math.MaxUint8)
	if err != nil {
		return NoteEvent{}, err
	}
	hi, _, err := luaUint(entry, "hi", math.MaxUint8)
	if err != nil {
		return NoteEvent{}, err
	}
	return NoteEvent{FreqLo: uint8(lo), FreqHi: uint8(hi), GateHoldTicks: uint32(hold)}, nil
}

// luaUint reads an optional non-negative integer field bounded by max
func luaUint(entry *lua.LTable, key string, max uint64) (uint64, bool, error) {
	v := entry.RawGetString(key)
	if v == lua.LNil {
		return 0, false, nil
	}
	n, ok := v.(lua.LNumber)
	if !ok {
		return 0, false, fmt.Errorf("%s: expected number, got %s", key, v.Type())
	}
	f := float64(n)
	if f < 0 || f != math.Trunc(f) || f > float64(max) {
		return 0, false, fmt.Errorf("%s: %v out of range [0, %d]", key, f, max)
	}
	return uint64(f), true, nil
}
