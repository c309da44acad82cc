package main

import "testing"

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, ""},
		{-3, ""},
		{0.4, "0:00"},
		{59.9, "0:59"},
		{60, "1:00"},
		{125, "2:05"},
		{3600, "60:00"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.seconds); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestDecodeTextField(t *testing.T) {
	tests := []struct {
		name    string
		in      []byte
		want    string
		wantErr bool
	}{
		{"null padded", []byte("Commando\x00\x00\x00"), "Commando", false},
		{"full width", []byte("ABCD"), "ABCD", false},
		{"stops at first null", []byte("A\x00B"), "A", false},
		{"empty", []byte{0, 0, 0}, "", false},
		{"utf8", []byte("R\xc3\xb6ckstr\xc3\xb6m\x00"), "Röckström", false},
		{"garbage after null ignored", []byte("ok\x00\xff\xfe"), "ok", false},
		{"latin1 rejected", []byte("R\xf6b\x00"), "", true},
		{"truncated sequence", []byte("Te\xc3"), "", true},
		{"truncated before null", []byte("Te\xc3\x00xx"), "", true},
		{"lone invalid byte", []byte("\xff"), "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeTextField(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
