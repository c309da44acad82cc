package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// samplesFor is the number of samples a run of ticks yields at the default
// sink rate on a PAL chip
func samplesFor(ticks int) int {
	return int(uint64(ticks) * defaultStepCycles * defaultSampleRate / SID_CLOCK_PAL)
}

func TestSIDPlayer_LoadDataConfiguresChip(t *testing.T) {
	chip := NewSIDChip()
	p := NewSIDPlayer(chip, DefaultSchedulerConfig(), 0)

	// clock NTSC (bits 2-3 = 2), model 8580 (bits 4-5 = 2)
	data := buildSIDHeader("PSID", 2, 0x1000, 0x1000, 0x1003, 3, 1, 0, 0x0028)
	require.NoError(t, p.LoadData(data))

	assert.Equal(t, uint32(SID_CLOCK_NTSC), chip.ClockHz())
	assert.Equal(t, SID_MODEL_8580, chip.Model())
	require.NotNil(t, p.File())

	meta := p.Metadata()
	assert.Equal(t, "Test Song", meta.Title)
	assert.Equal(t, "Test Author", meta.Author)
	assert.Equal(t, "C64", meta.System)
	assert.Equal(t, 3, meta.Subsongs)
	assert.Greater(t, meta.Duration, 0.0)
}

func TestSIDPlayer_LoadDataErrors(t *testing.T) {
	p := NewSIDPlayer(NewSIDChip(), DefaultSchedulerConfig(), 0)

	err := p.LoadData([]byte("PSID"))
	assert.ErrorIs(t, err, ErrTooShort)
	assert.Nil(t, p.File())

	err = p.Load(filepath.Join(t.TempDir(), "missing.sid"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSIDPlayer_LoadDataWarnsOnStartSong(t *testing.T) {
	p := NewSIDPlayer(NewSIDChip(), DefaultSchedulerConfig(), 0)
	data := buildSIDHeader("PSID", 2, 0x1000, 0x1000, 0x1003, 2, 9, 0, 0)
	require.NoError(t, p.LoadData(data))
	assert.Equal(t, uint16(9), p.File().Header.StartSong)
}

func TestSIDPlayer_Render(t *testing.T) {
	cfg := DefaultSchedulerConfig()
	p := NewSIDPlayer(NewSIDChip(), cfg, 0)
	p.SetSequence(NewEventSequence(NewNote(0x1CD6, 100), NewNote(0x1167, 40)))

	w := &sliceWriter{}
	require.NoError(t, p.Render(context.Background(), w))

	wantTicks := 100 + 40 + 2*int(cfg.ReleaseTicks)
	assert.Len(t, w.samples, samplesFor(wantTicks))

	stats := p.Stats()
	assert.Equal(t, 2, stats.NotesPlayed)
	assert.Equal(t, uint64(samplesFor(wantTicks)), stats.Samples)
	assert.Equal(t, uint64(wantTicks)*uint64(cfg.StepCycles), stats.Cycles)

	var peak float32
	for _, s := range w.samples {
		if s > peak {
			peak = s
		} else if -s > peak {
			peak = -s
		}
	}
	assert.Greater(t, peak, float32(0), "rendered audio should not be silent")
}

func TestSIDPlayer_RenderIsRepeatable(t *testing.T) {
	p := NewSIDPlayer(NewSIDChip(), DefaultSchedulerConfig(), 0)
	p.SetSequence(NewEventSequence(NewNote(0x2000, 60)))

	first, second := &sliceWriter{}, &sliceWriter{}
	require.NoError(t, p.Render(context.Background(), first))
	require.NoError(t, p.Render(context.Background(), second))
	assert.Equal(t, first.samples, second.samples)
}

func TestSIDPlayer_RenderToWAV(t *testing.T) {
	p := NewSIDPlayer(NewSIDChip(), DefaultSchedulerConfig(), 0)
	p.SetSequence(NewEventSequence(NewNote(0x1CD6, 30)))

	f, err := os.Create(filepath.Join(t.TempDir(), "render.wav"))
	require.NoError(t, err)
	defer f.Close()

	w, err := NewWAVWriter(f, defaultSampleRate)
	require.NoError(t, err)
	require.NoError(t, p.Render(context.Background(), w))
	require.NoError(t, w.Close())
	assert.Equal(t, samplesFor(30+defaultReleaseTicks), w.Samples())

	info, err := f.Stat()
	require.NoError(t, err)
	assert.Equal(t, int64(wavHeaderBytes+2*w.Samples()), info.Size())
}

func TestSIDPlayer_PlayToNullSink(t *testing.T) {
	p := NewSIDPlayer(NewSIDChip(), DefaultSchedulerConfig(), defaultSampleRate)
	p.SetSequence(NewEventSequence(NewNote(0x1CD6, 100), NewNote(0x1167, 100)))

	sink := NewNullSink(defaultSampleRate)
	require.NoError(t, p.Play(context.Background(), sink))
	assert.Error(t, p.Play(context.Background(), sink), "second Play while running")

	done := make(chan error, 1)
	go func() { done <- p.Wait() }()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("playback did not finish")
	}

	assert.False(t, p.IsPlaying())
	stats := p.Stats()
	assert.Equal(t, 2, stats.NotesPlayed)
	assert.Equal(t, uint64(samplesFor(200+2*defaultReleaseTicks)), stats.Samples)
	assert.Equal(t, stats.Samples, sink.Pulled())
}

func TestSIDPlayer_Stop(t *testing.T) {
	notes := make([]NoteEvent, 100)
	for i := range notes {
		notes[i] = NewNote(0x1CD6, 20000)
	}
	p := NewSIDPlayer(NewSIDChip(), DefaultSchedulerConfig(), defaultSampleRate)
	p.SetSequence(NewEventSequence(notes...))

	require.NoError(t, p.Play(context.Background(), NewNullSink(defaultSampleRate)))
	time.Sleep(20 * time.Millisecond)
	assert.True(t, p.IsPlaying())
	p.Stop()

	done := make(chan error, 1)
	go func() { done <- p.Wait() }()
	select {
	case err := <-done:
		assert.NoError(t, err, "cancellation is not an error")
	case <-time.After(5 * time.Second):
		t.Fatal("Stop did not end playback")
	}
	assert.Less(t, p.Stats().NotesPlayed, 100)
	assert.Error(t, p.Render(context.Background(), &sliceWriter{failAt: 1}))
}

func TestSIDPlayer_SamplesMatchSinkRate(t *testing.T) {
	tests := []struct {
		clock uint32
		rate  int
	}{
		{SID_CLOCK_PAL, 22050},
		{SID_CLOCK_PAL, 44100},
		{SID_CLOCK_PAL, 48000},
		{SID_CLOCK_NTSC, 44100},
		{SID_CLOCK_NTSC, 48000},
	}
	for _, tt := range tests {
		chip := NewSIDChip()
		chip.SetClockHz(tt.clock)
		cfg := DefaultSchedulerConfig()
		p := NewSIDPlayer(chip, cfg, tt.rate)

		// one emulated second, rounded up to whole ticks
		ticks := (tt.clock + cfg.StepCycles - 1) / cfg.StepCycles
		p.SetSequence(NewEventSequence(NewNote(0x1CD6, ticks-cfg.ReleaseTicks)))
		require.InDelta(t, 1.0, p.DurationSeconds(), 0.0001)

		w := &sliceWriter{}
		require.NoError(t, p.Render(context.Background(), w))
		assert.InDelta(t, tt.rate, len(w.samples), 1, "clock %d Hz, rate %d Hz", tt.clock, tt.rate)
		assert.Equal(t, tt.rate, p.SampleRate())
	}
}

func TestSIDPlayer_Duration(t *testing.T) {
	cfg := DefaultSchedulerConfig()
	p := NewSIDPlayer(NewSIDChip(), cfg, 0)

	// 44787 ticks * 22 cycles ~= 1 s at PAL
	p.SetSequence(NewEventSequence(NewNote(0x1000, 44787-uint32(cfg.ReleaseTicks))))
	assert.InDelta(t, 1.0, p.DurationSeconds(), 0.001)
	assert.Equal(t, "0:01", p.DurationText())

	p.SetSequence(NewEventSequence())
	assert.Equal(t, 0.0, p.DurationSeconds())
	assert.Equal(t, "", p.DurationText())
}

func TestIsSIDExtension(t *testing.T) {
	for path, want := range map[string]bool{
		"tune.sid":         true,
		"TUNE.SID":         true,
		"x/y/tune.psid":    true,
		"tune.rsid":        true,
		"tune.sid.bak":     false,
		"tune.mod":         false,
		"no_extension_sid": false,
	} {
		assert.Equal(t, want, isSIDExtension(path), path)
	}
}
