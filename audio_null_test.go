package main

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestNullSink_PullsAtSampleRate(t *testing.T) {
	sink := NewNullSink(8000)
	var calls atomic.Int32
	src := func(dst []float32) int {
		calls.Add(1)
		if len(dst) != 80 {
			t.Errorf("buffer len = %d, want 80 (10ms at 8 kHz)", len(dst))
		}
		return len(dst)
	}

	if err := sink.Start(src); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := sink.Start(src); err != nil {
		t.Fatalf("second Start should be a no-op: %v", err)
	}
	time.Sleep(55 * time.Millisecond)
	if err := sink.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	n := calls.Load()
	if n == 0 {
		t.Fatal("source was never pulled")
	}
	if sink.Pulled() != uint64(n)*80 {
		t.Errorf("Pulled() = %d, want %d", sink.Pulled(), n*80)
	}

	time.Sleep(25 * time.Millisecond)
	if calls.Load() != n {
		t.Error("source pulled after Close")
	}
	if err := sink.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestNullSink_NilSource(t *testing.T) {
	if err := NewNullSink(0).Start(nil); err == nil {
		t.Error("expected error for nil source")
	}
}
