// audio_wav.go - 16-bit mono PCM WAV writer for offline rendering

package main

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// wavHeader is the canonical 44-byte RIFF/WAVE PCM header
type wavHeader struct {
	// RIFF header
	RiffID   [4]byte // "RIFF"
	FileSize uint32  // 36 + DataSize
	WaveID   [4]byte // "WAVE"

	// fmt sub-chunk
	FmtID         [4]byte // "fmt "
	FmtSize       uint32  // 16 for PCM
	AudioFormat   uint16  // 1 for PCM
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32 // SampleRate * NumChannels * BitsPerSample/8
	BlockAlign    uint16 // NumChannels * BitsPerSample/8
	BitsPerSample uint16

	// data sub-chunk
	DataID   [4]byte // "data"
	DataSize uint32
}

const (
	wavHeaderBytes = 44
	wavPCMMode     = 1
	wavBPS         = 16
	wavChannels    = 1
)

func newWAVHeader(sampleRate uint32, dataSize uint32) wavHeader {
	return wavHeader{
		RiffID:        [4]byte{'R', 'I', 'F', 'F'},
		FileSize:      wavHeaderBytes - 8 + dataSize,
		WaveID:        [4]byte{'W', 'A', 'V', 'E'},
		FmtID:         [4]byte{'f', 'm', 't', ' '},
		FmtSize:       16,
		AudioFormat:   wavPCMMode,
		NumChannels:   wavChannels,
		SampleRate:    sampleRate,
		ByteRate:      sampleRate * wavChannels * wavBPS / 8,
		BlockAlign:    wavChannels * wavBPS / 8,
		BitsPerSample: wavBPS,
		DataID:        [4]byte{'d', 'a', 't', 'a'},
		DataSize:      dataSize,
	}
}

// WAVWriter streams float samples to a WAV file. The header is written with
// a zero size up front and patched by Close.
type WAVWriter struct {
	dst        io.WriteSeeker
	w          *bufio.Writer
	sampleRate uint32
	dataSize   uint32
	closed     bool
}

func NewWAVWriter(dst io.WriteSeeker, sampleRate int) (*WAVWriter, error) {
	ww := &WAVWriter{
		dst:        dst,
		w:          bufio.NewWriter(dst),
		sampleRate: uint32(sampleRate),
	}
	header := newWAVHeader(ww.sampleRate, 0)
	if err := binary.Write(ww.w, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("error writing WAV header: %w", err)
	}
	return ww, nil
}

// WriteSample implements SampleWriter; ctx is unused since writes never wait
func (ww *WAVWriter) WriteSample(_ context.Context, s float32) error {
	if ww.closed {
		return fmt.Errorf("wav: write after close")
	}
	if ww.dataSize > math.MaxUint32-wavHeaderBytes-2 {
		return fmt.Errorf("wav: file exceeds 4 GiB")
	}
	if err := binary.Write(ww.w, binary.LittleEndian, pcm16(s)); err != nil {
		return fmt.Errorf("error writing audio data: %w", err)
	}
	ww.dataSize += 2
	return nil
}

// Samples is the number of samples written so far
func (ww *WAVWriter) Samples() int {
	return int(ww.dataSize / 2)
}

// Close flushes buffered data and rewrites the header with final sizes.
// It does not close the underlying file.
func (ww *WAVWriter) Close() error {
	if ww.closed {
		return nil
	}
	ww.closed = true
	if err := ww.w.Flush(); err != nil {
		return fmt.Errorf("error flushing audio data: %w", err)
	}
	if _, err := ww.dst.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("error rewinding WAV file: %w", err)
	}
	header := newWAVHeader(ww.sampleRate, ww.dataSize)
	if err := binary.Write(ww.dst, binary.LittleEndian, &header); err != nil {
		return fmt.Errorf("error writing WAV header: %w", err)
	}
	_, err := ww.dst.Seek(0, io.SeekEnd)
	return err
}

// pcm16 clamps to [-1, 1] and scales to signed 16-bit
func pcm16(s float32) int16 {
	switch {
	case math.IsNaN(float64(s)):
		return 0
	case s >= 1:
		return math.MaxInt16
	case s <= -1:
		return -math.MaxInt16
	}
	return int16(math.Round(float64(s) * math.MaxInt16))
}
