//go:build !headless

// audio_backend_ebiten.go - Ebiten audio output implementation

package main

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/hajimehoshi/ebiten/v2/audio"
)

// ebitenFrameBytes is one stereo float32 frame
const ebitenFrameBytes = 8

// EbitenSink plays through ebiten's shared audio context. Ebiten mixes in
// stereo float32, so each mono sample is written to both channels.
type EbitenSink struct {
	ctx       *audio.Context
	player    *audio.Player
	src       atomic.Pointer[SampleSource]
	sampleBuf []float32
	mutex     sync.Mutex
}

func NewEbitenSink(sampleRate int) (*EbitenSink, error) {
	ctx := audio.CurrentContext()
	if ctx == nil {
		ctx = audio.NewContext(sampleRate)
	}
	if ctx.SampleRate() != sampleRate {
		return nil, fmt.Errorf("ebiten: audio context already running at %d Hz", ctx.SampleRate())
	}
	return &EbitenSink{ctx: ctx, sampleBuf: make([]float32, 1024)}, nil
}

func (es *EbitenSink) Start(src SampleSource) error {
	if src == nil {
		return errors.New("ebiten: nil sample source")
	}
	es.mutex.Lock()
	defer es.mutex.Unlock()

	es.src.Store(&src)
	if es.player != nil {
		return nil
	}
	player, err := es.ctx.NewPlayerF32(es)
	if err != nil {
		return fmt.Errorf("ebiten: %w", err)
	}
	es.player = player
	es.player.Play()
	return nil
}

// Read is called from ebiten's mixer goroutine. It must not block.
func (es *EbitenSink) Read(p []byte) (int, error) {
	frames := len(p) / ebitenFrameBytes
	src := es.src.Load()
	if src == nil || frames == 0 {
		clear(p)
		return len(p), nil
	}

	if len(es.sampleBuf) < frames {
		es.sampleBuf = make([]float32, frames)
	}
	samples := es.sampleBuf[:frames]
	(*src)(samples)

	for i, s := range samples {
		bits := math.Float32bits(s)
		binary.LittleEndian.PutUint32(p[i*ebitenFrameBytes:], bits)
		binary.LittleEndian.PutUint32(p[i*ebitenFrameBytes+4:], bits)
	}
	clear(p[frames*ebitenFrameBytes:])
	return len(p), nil
}

func (es *EbitenSink) Close() error {
	es.mutex.Lock()
	defer es.mutex.Unlock()

	es.src.Store(nil)
	if es.player == nil {
		return nil
	}
	err := es.player.Close()
	es.player = nil
	return err
}
