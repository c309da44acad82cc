// sid_scheduler.go - Converts an EventSequence into timed SID register writes

package main

import (
	"context"
	"fmt"
)

// SchedulerConfig controls voice selection and timing of playback
type SchedulerConfig struct {
	Voice          int    // 1-3; 0 selects voice 1
	StepCycles     uint32 // chip cycles per tick
	ReleaseTicks   uint32 // ticks spent in release after each note
	MasterVolume   uint8  // MODE_VOL value written once at setup
	AttackDecay    uint8  // written at setup when non-zero
	SustainRelease uint8  // written at setup when non-zero
	PulseWidth     uint16 // 12-bit; written at setup when non-zero

	// SampleRate and ClockHz together set the output rate: samples are
	// pulled so that one emulated second yields SampleRate samples. With
	// either left at zero one sample is pulled per tick.
	SampleRate int
	ClockHz    uint32
}

func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Voice:        1,
		StepCycles:   defaultStepCycles,
		ReleaseTicks: defaultReleaseTicks,
		MasterVolume: defaultMasterVolume,
	}
}

// Fixed square-wave control codes
const (
	schedCtrlGateOn  = SID_CTRL_PULSE | SID_CTRL_GATE
	schedCtrlGateOff = SID_CTRL_PULSE
)

// SchedulerStats counts what a run has done so far
type SchedulerStats struct {
	NotesPlayed int
	Cycles      uint64
	Samples     uint64
}

// Scheduler walks an EventSequence and drives a ChipEmulator in strict
// program order. It is single-threaded; only the attached SampleWriter
// hands data to another goroutine.
type Scheduler struct {
	chip   ChipEmulator
	seq    EventSequence
	cfg    SchedulerConfig
	out    SampleWriter
	base   uint8
	setup  bool
	stats  SchedulerStats
	cursor int
	phase  uint64 // cycles*SampleRate carried between sample pulls
}

func NewScheduler(chip ChipEmulator, seq EventSequence, cfg SchedulerConfig) *Scheduler {
	if cfg.Voice == 0 {
		cfg.Voice = 1
	}
	if cfg.StepCycles == 0 {
		cfg.StepCycles = defaultStepCycles
	}
	return &Scheduler{
		chip: chip,
		seq:  seq,
		cfg:  cfg,
		base: uint8((cfg.Voice - 1) * SID_VOICE_STRIDE),
	}
}

// SetOutput attaches the sample consumer; nil disables sample pulling
func (s *Scheduler) SetOutput(w SampleWriter) {
	s.out = w
}

func (s *Scheduler) Config() SchedulerConfig {
	return s.cfg
}

func (s *Scheduler) Stats() SchedulerStats {
	return s.stats
}

// Run plays the remaining notes. Cancellation is checked before setup and
// between notes, never inside one. A chip error aborts the rest of the
// sequence and is returned unchanged in the error chain.
func (s *Scheduler) Run(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !s.setup {
		if err := s.runSetup(); err != nil {
			return fmt.Errorf("scheduler setup: %w", err)
		}
		s.setup = true
	}

	for s.cursor < s.seq.Len() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.playNote(ctx, s.seq.At(s.cursor)); err != nil {
			return fmt.Errorf("note %d: %w", s.cursor, err)
		}
		s.cursor++
		s.stats.NotesPlayed++
	}
	return nil
}

func (s *Scheduler) runSetup() error {
	if s.cfg.Voice < 1 || s.cfg.Voice > SID_VOICE_COUNT {
		reg := (s.cfg.Voice-1)*SID_VOICE_STRIDE + SID_VOICE_CTRL
		if reg < 0 || reg > 0xFF {
			return &ChipError{Kind: InvalidRegister, Reg: reg}
		}
		// Let the chip reject it so the failure carries its own detail.
		return s.write(uint8(reg), 0)
	}
	// Upper nibble cleared: no filter mode selected, voice 3 connected.
	if err := s.write(SID_MODE_VOL, s.cfg.MasterVolume&SID_MODE_VOL_MASK); err != nil {
		return err
	}
	if pw := s.cfg.PulseWidth & 0x0FFF; pw != 0 {
		if err := s.write(s.base+SID_VOICE_PW_LO, uint8(pw)); err != nil {
			return err
		}
		if err := s.write(s.base+SID_VOICE_PW_HI, uint8(pw>>8)); err != nil {
			return err
		}
	}
	if s.cfg.AttackDecay != 0 {
		if err := s.write(s.base+SID_VOICE_AD, s.cfg.AttackDecay); err != nil {
			return err
		}
	}
	if s.cfg.SustainRelease != 0 {
		if err := s.write(s.base+SID_VOICE_SR, s.cfg.SustainRelease); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scheduler) playNote(ctx context.Context, note NoteEvent) error {
	if err := s.write(s.base+SID_VOICE_FREQ_LO, note.FreqLo); err != nil {
		return err
	}
	if err := s.write(s.base+SID_VOICE_FREQ_HI, note.FreqHi); err != nil {
		return err
	}
	if err := s.write(s.base+SID_VOICE_CTRL, schedCtrlGateOn); err != nil {
		return err
	}
	if err := s.advance(ctx, note.GateHoldTicks); err != nil {
		return err
	}
	if err := s.write(s.base+SID_VOICE_CTRL, schedCtrlGateOff); err != nil {
		return err
	}
	return s.advance(ctx, s.cfg.ReleaseTicks)
}

func (s *Scheduler) write(reg, value uint8) error {
	return s.chip.WriteRegister(reg, value)
}

// advance steps the clock tick by tick. Without a rate pair one sample is
// pulled per tick; otherwise a sample is pulled each time the emulated time
// crosses a 1/SampleRate boundary, so a tick yields zero or more samples.
func (s *Scheduler) advance(ctx context.Context, ticks uint32) error {
	resample := s.cfg.SampleRate > 0 && s.cfg.ClockHz > 0
	for range ticks {
		s.chip.AdvanceClock(s.cfg.StepCycles)
		s.stats.Cycles += uint64(s.cfg.StepCycles)
		if s.out == nil {
			continue
		}
		pulls := uint64(1)
		if resample {
			s.phase += uint64(s.cfg.StepCycles) * uint64(s.cfg.SampleRate)
			pulls = s.phase / uint64(s.cfg.ClockHz)
			s.phase %= uint64(s.cfg.ClockHz)
		}
		for range pulls {
			if err := s.out.WriteSample(ctx, s.chip.NextSample()); err != nil {
				return err
			}
			s.stats.Samples++
		}
	}
	return nil
}
