package main

import (
	"bytes"
	"context"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWAVWriter_HeaderPatchedOnClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	ww, err := NewWAVWriter(f, 44100)
	require.NoError(t, err)

	ctx := context.Background()
	for _, s := range []float32{0, 0.5, -0.5, 1, -1} {
		require.NoError(t, ww.WriteSample(ctx, s))
	}
	assert.Equal(t, 5, ww.Samples())
	require.NoError(t, ww.Close())
	require.NoError(t, ww.Close(), "second Close is a no-op")
	assert.Error(t, ww.WriteSample(ctx, 0))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, data, wavHeaderBytes+10)

	var h wavHeader
	require.NoError(t, binary.Read(bytes.NewReader(data), binary.LittleEndian, &h))
	assert.Equal(t, "RIFF", string(h.RiffID[:]))
	assert.Equal(t, "WAVE", string(h.WaveID[:]))
	assert.Equal(t, "fmt ", string(h.FmtID[:]))
	assert.Equal(t, "data", string(h.DataID[:]))
	assert.Equal(t, uint32(36+10), h.FileSize)
	assert.Equal(t, uint32(10), h.DataSize)
	assert.Equal(t, uint16(1), h.NumChannels)
	assert.Equal(t, uint32(44100), h.SampleRate)
	assert.Equal(t, uint32(88200), h.ByteRate)
	assert.Equal(t, uint16(2), h.BlockAlign)
	assert.Equal(t, uint16(16), h.BitsPerSample)

	pcm := make([]int16, 5)
	require.NoError(t, binary.Read(bytes.NewReader(data[wavHeaderBytes:]), binary.LittleEndian, pcm))
	assert.Equal(t, []int16{0, 16384, -16384, math.MaxInt16, -math.MaxInt16}, pcm)
}

func TestPCM16(t *testing.T) {
	tests := []struct {
		in   float32
		want int16
	}{
		{0, 0},
		{1, math.MaxInt16},
		{2, math.MaxInt16},
		{-1, -math.MaxInt16},
		{-7, -math.MaxInt16},
		{0.25, 8192},
		{float32(math.NaN()), 0},
		{float32(math.Inf(1)), math.MaxInt16},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, pcm16(tt.in), "pcm16(%v)", tt.in)
	}
}
