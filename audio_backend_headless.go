//go:build headless

package main

import "fmt"

func init() {
	compiledFeatures = append(compiledFeatures, "audio:headless")
}

func newAudioSink(backend string, sampleRate int) (AudioSink, error) {
	switch backend {
	case "", "null", "oto", "ebiten":
		return NewNullSink(sampleRate), nil
	default:
		return nil, fmt.Errorf("unknown audio backend %q", backend)
	}
}
