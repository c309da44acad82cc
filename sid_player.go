// sid_player.go - Ties header parsing, the scheduler and audio output together

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
)

// SIDPlayer owns one chip, the loaded file and the sequence to play.
// Metadata is informational only; playback is driven by the EventSequence.
type SIDPlayer struct {
	chip       *SIDChip
	cfg        SchedulerConfig
	seq        EventSequence
	sampleRate int
	ringSize   int

	mu     sync.Mutex
	file   *SIDFile
	cancel context.CancelFunc
	done   chan struct{}
	err    error
	stats  SchedulerStats

	playing atomic.Bool
}

func NewSIDPlayer(chip *SIDChip, cfg SchedulerConfig, sampleRate int) *SIDPlayer {
	if sampleRate <= 0 {
		sampleRate = defaultSampleRate
	}
	return &SIDPlayer{
		chip:       chip,
		cfg:        cfg,
		seq:        demoSequence(),
		sampleRate: sampleRate,
		ringSize:   defaultRingSamples,
	}
}

// SampleRate is the rate handed to sinks and WAV files
func (p *SIDPlayer) SampleRate() int {
	return p.sampleRate
}

// schedulerConfig pins the output rate to the sink rate at the chip's
// current clock
func (p *SIDPlayer) schedulerConfig() SchedulerConfig {
	cfg := p.cfg
	cfg.SampleRate = p.sampleRate
	cfg.ClockHz = p.chip.ClockHz()
	return cfg
}

// SetSequence replaces the event sequence used by the next Play or Render
func (p *SIDPlayer) SetSequence(seq EventSequence) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seq = seq
}

// SetRingSize sets the handoff buffer size in samples
func (p *SIDPlayer) SetRingSize(samples int) {
	if samples > 0 {
		p.ringSize = samples
	}
}

func (p *SIDPlayer) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read SID file: %w", err)
	}
	return p.LoadData(data)
}

// LoadData parses a PSID/RSID image and configures the chip clock and model
// from its header. A start song outside the song range is only a warning.
func (p *SIDPlayer) LoadData(data []byte) error {
	file, err := ParseSIDData(data)
	if err != nil {
		return fmt.Errorf("parse SID: %w", err)
	}
	if err := file.Header.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "sid_player: warning: %v\n", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.file = file
	p.chip.SetClockHz(file.ClockHz())
	if file.Extended != nil {
		p.chip.SetModel(file.Extended.ChipModel())
	}
	return nil
}

// File returns the parsed file, or nil before Load
func (p *SIDPlayer) File() *SIDFile {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.file
}

func (p *SIDPlayer) Metadata() MusicMetadata {
	p.mu.Lock()
	file := p.file
	p.mu.Unlock()

	var meta MusicMetadata
	if file != nil {
		meta = file.Metadata()
	}
	meta.Duration = p.DurationSeconds()
	return meta
}

// Play starts the scheduler on its own goroutine, feeding sink through a
// SampleRing. It returns once the sink is running.
func (p *SIDPlayer) Play(ctx context.Context, sink AudioSink) error {
	if !p.playing.CompareAndSwap(false, true) {
		return errors.New("sid_player: already playing")
	}

	p.mu.Lock()
	seq := p.seq
	p.mu.Unlock()

	p.chip.Reset()
	ring := NewSampleRing(p.ringSize)
	sched := NewScheduler(p.chip, seq, p.schedulerConfig())
	sched.SetOutput(ring)

	if err := sink.Start(ring.ReadSamples); err != nil {
		p.playing.Store(false)
		return fmt.Errorf("start audio: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	p.mu.Lock()
	p.cancel = cancel
	p.done = done
	p.err = nil
	p.mu.Unlock()

	go func() {
		defer close(done)
		defer cancel()

		err := sched.Run(runCtx)
		ring.Close()
		if err == nil {
			err = ring.Drain(runCtx)
		}
		if cerr := sink.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close audio: %w", cerr)
		}

		p.mu.Lock()
		p.err = err
		p.stats = sched.Stats()
		p.mu.Unlock()
		p.playing.Store(false)
	}()
	return nil
}

// Wait blocks until playback ends. Cancellation is not reported as an error.
func (p *SIDPlayer) Wait() error {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()
	if done == nil {
		return nil
	}
	<-done

	p.mu.Lock()
	defer p.mu.Unlock()
	if errors.Is(p.err, context.Canceled) {
		return nil
	}
	return p.err
}

// Stop requests playback to end after the current note
func (p *SIDPlayer) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	p.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (p *SIDPlayer) IsPlaying() bool {
	return p.playing.Load()
}

// Stats reports the last finished playback or render
func (p *SIDPlayer) Stats() SchedulerStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

// Render runs the whole sequence synchronously into w
func (p *SIDPlayer) Render(ctx context.Context, w SampleWriter) error {
	if p.playing.Load() {
		return errors.New("sid_player: render while playing")
	}
	p.mu.Lock()
	seq := p.seq
	p.mu.Unlock()

	p.chip.Reset()
	sched := NewScheduler(p.chip, seq, p.schedulerConfig())
	sched.SetOutput(w)
	err := sched.Run(ctx)

	p.mu.Lock()
	p.stats = sched.Stats()
	p.mu.Unlock()
	return err
}

func (p *SIDPlayer) DurationSeconds() float64 {
	p.mu.Lock()
	seq := p.seq
	p.mu.Unlock()

	clock := p.chip.ClockHz()
	if clock == 0 {
		return 0
	}
	step := p.cfg.StepCycles
	if step == 0 {
		step = defaultStepCycles
	}
	cycles := seq.TotalTicks(p.cfg.ReleaseTicks) * uint64(step)
	return float64(cycles) / float64(clock)
}

func (p *SIDPlayer) DurationText() string {
	return formatDuration(p.DurationSeconds())
}

func isSIDExtension(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".sid", ".psid", ".rsid":
		return true
	default:
		return false
	}
}
