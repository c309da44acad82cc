//go:build !headless

// audio_backend_oto.go - OTO v3 audio output implementation

/*
 ████████▓ ██████▓ ██████▓   ████████▓ ██▓         ████▓   ██▓   ██▓
 ██▓         ██▓   ██▓   ██▓ ██▓   ██▓ ██▓       ██▓   ██▓ ██▓   ██▓
 ████████▓   ██▓   ██▓   ██▓ ████████▓ ██▓       ████████▓   ████▓
       ██▓   ██▓   ██▓   ██▓ ██▓       ██▓       ██▓   ██▓   ██▓
 ████████▓ ██████▓ ██████▓   ██▓       ████████▓ ██▓   ██▓   ██▓
 ▒▒▒▒▒▒▒▒  ▒▒▒▒▒▒  ▒▒▒▒▒▒    ▒▒        ▒▒▒▒▒▒▒▒  ▒▒    ▒▒    ▒▒
 ░░░░░░░░  ░░░░░░  ░░░░░░    ░░        ░░░░░░░░  ░░    ░░    ░░

(c) 2024 - 2026 Zayn Otley
https://github.com/intuitionamiga/sidplay
License: GPLv3 or later
*/

package main

import (
	"errors"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/ebitengine/oto/v3"
)

type OtoSink struct {
	ctx       *oto.Context
	player    *oto.Player
	src       atomic.Pointer[SampleSource] // Atomic for lock-free Read()
	sampleBuf []float32                    // Pre-allocated sample buffer
	started   bool
	mutex     sync.Mutex // Only for setup/control operations
}

func NewOtoSink(sampleRate int) (*OtoSink, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
		BufferSize:   0,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-ready

	return &OtoSink{
		ctx: ctx,
		// Pre-allocate buffer for typical oto buffer sizes (4096 bytes = 1024 float32 samples)
		sampleBuf: make([]float32, 1024),
	}, nil
}

func (o *OtoSink) Start(src SampleSource) error {
	if src == nil {
		return errors.New("oto: nil sample source")
	}
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.src.Store(&src)
	if o.started {
		return nil
	}
	o.player = o.ctx.NewPlayer(o)
	o.player.Play()
	o.started = true
	return nil
}

// Read is called from oto's audio thread. It must not block.
func (o *OtoSink) Read(p []byte) (n int, err error) {
	src := o.src.Load()
	numSamples := len(p) / 4
	if src == nil || numSamples == 0 {
		clear(p)
		return len(p), nil
	}

	// Ensure our pre-allocated buffer is large enough
	// This should rarely happen after the first callback
	if len(o.sampleBuf) < numSamples {
		o.sampleBuf = make([]float32, numSamples)
	}
	samples := o.sampleBuf[:numSamples]
	(*src)(samples)

	copy(p, unsafe.Slice((*byte)(unsafe.Pointer(&samples[0])), numSamples*4))
	clear(p[numSamples*4:])
	return len(p), nil
}

func (o *OtoSink) Close() error {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.src.Store(nil)
	if o.player == nil {
		return nil
	}
	err := o.player.Close()
	o.player = nil
	o.started = false
	return err
}
