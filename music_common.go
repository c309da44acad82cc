// music_common.go - Shared utilities for music players and parsers

package main

import (
	"bytes"
	"fmt"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// decodeTextField extracts a string from a fixed-size, null-padded field.
// Bytes after the first null are ignored; the prefix must be valid UTF-8.
func decodeTextField(data []byte) (string, error) {
	if i := bytes.IndexByte(data, 0); i >= 0 {
		data = data[:i]
	}
	out, _, err := transform.Bytes(encoding.UTF8Validator, data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// MusicMetadata contains common metadata fields across all music formats
type MusicMetadata struct {
	Title    string
	Author   string
	System   string // "C64"
	Date     string
	Subsongs int
	Duration float64
}

// formatDuration renders seconds as m:ss, or "" when unknown
func formatDuration(seconds float64) string {
	if seconds <= 0 {
		return ""
	}
	minutes := int(seconds) / 60
	secs := int(seconds) % 60
	return fmt.Sprintf("%d:%02d", minutes, secs)
}
