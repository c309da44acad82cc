//go:build !headless

// audio_backends.go - Audio sink selection

package main

import (
	"fmt"
	"strings"
)

const (
	backendOto    = "oto"
	backendEbiten = "ebiten"
	backendNull   = "null"
)

func init() {
	compiledFeatures = append(compiledFeatures, "audio:oto", "audio:ebiten")
}

// newAudioSink opens the named backend. The empty name selects oto.
func newAudioSink(backend string, sampleRate int) (AudioSink, error) {
	switch strings.ToLower(backend) {
	case "", backendOto:
		sink, err := NewOtoSink(sampleRate)
		if err != nil {
			return nil, fmt.Errorf("oto backend: %w", err)
		}
		return sink, nil
	case backendEbiten:
		sink, err := NewEbitenSink(sampleRate)
		if err != nil {
			return nil, fmt.Errorf("ebiten backend: %w", err)
		}
		return sink, nil
	case backendNull:
		return NewNullSink(sampleRate), nil
	default:
		return nil, fmt.Errorf("unknown audio backend %q (want %s, %s or %s)", backend, backendOto, backendEbiten, backendNull)
	}
}
