// audio_null.go - Paced sink that consumes samples without an audio device

package main

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

const nullSinkPeriod = 10 * time.Millisecond

// NullSink pulls from its source at the real sample rate and discards the
// result. It stands in for a device in headless builds and tests.
type NullSink struct {
	sampleRate int
	pulled     atomic.Uint64

	mutex sync.Mutex
	stop  chan struct{}
	done  chan struct{}
}

func NewNullSink(sampleRate int) *NullSink {
	if sampleRate <= 0 {
		sampleRate = defaultSampleRate
	}
	return &NullSink{sampleRate: sampleRate}
}

func (ns *NullSink) Start(src SampleSource) error {
	if src == nil {
		return errors.New("null: nil sample source")
	}
	ns.mutex.Lock()
	defer ns.mutex.Unlock()
	if ns.stop != nil {
		return nil
	}
	ns.stop = make(chan struct{})
	ns.done = make(chan struct{})
	go ns.loop(src, ns.stop, ns.done)
	return nil
}

func (ns *NullSink) loop(src SampleSource, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	buf := make([]float32, ns.sampleRate*int(nullSinkPeriod)/int(time.Second))
	ticker := time.NewTicker(nullSinkPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			ns.pulled.Add(uint64(src(buf)))
		}
	}
}

// Pulled is the number of real samples consumed so far
func (ns *NullSink) Pulled() uint64 {
	return ns.pulled.Load()
}

func (ns *NullSink) Close() error {
	ns.mutex.Lock()
	defer ns.mutex.Unlock()
	if ns.stop == nil {
		return nil
	}
	close(ns.stop)
	<-ns.done
	ns.stop = nil
	return nil
}
