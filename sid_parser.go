// sid_parser.go - PSID/RSID file header parser

package main

import (
	"encoding/binary"
	"fmt"
	"os"
	"strings"
)

// FileHeader is the fixed 118-byte PSID/RSID header
type FileHeader struct {
	MagicID     string
	Version     uint16
	DataOffset  uint16
	LoadAddress uint16
	InitAddress uint16
	PlayAddress uint16
	Songs       uint16
	StartSong   uint16
	Speed       uint32
	Name        string
	Author      string
	Released    string
}

// ExtendedHeader is present iff Version > 1
type ExtendedHeader struct {
	Flags      uint16
	StartPage  uint8
	PageLength uint8
	Sid2Addr   uint8
	Sid3Addr   uint8
}

// SIDFile is a parsed header plus the C64 payload
type SIDFile struct {
	Header   FileHeader
	Extended *ExtendedHeader
	// LoadAddress is the effective load address; when the header field is
	// zero it comes from the first two payload bytes (little-endian).
	LoadAddress uint16
	Data        []byte
}

func ParseSIDFile(path string) (*SIDFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseSIDData(data)
}

// ParseHeader decodes the base header. It never looks past byte 118.
func ParseHeader(data []byte) (FileHeader, error) {
	if len(data) < sidHeaderSize {
		return FileHeader{}, &FormatError{Kind: TooShort, Need: sidHeaderSize, Got: len(data)}
	}

	magic := string(data[sidOffMagic : sidOffMagic+4])
	if magic != sidMagicPSID && magic != sidMagicRSID {
		return FileHeader{}, &FormatError{Kind: BadMagic, Magic: magic}
	}

	header := FileHeader{
		MagicID:     magic,
		Version:     binary.BigEndian.Uint16(data[sidOffVersion:]),
		DataOffset:  binary.BigEndian.Uint16(data[sidOffDataOffset:]),
		LoadAddress: binary.BigEndian.Uint16(data[sidOffLoadAddress:]),
		InitAddress: binary.BigEndian.Uint16(data[sidOffInitAddress:]),
		PlayAddress: binary.BigEndian.Uint16(data[sidOffPlayAddress:]),
		Songs:       binary.BigEndian.Uint16(data[sidOffSongs:]),
		StartSong:   binary.BigEndian.Uint16(data[sidOffStartSong:]),
		Speed:       binary.BigEndian.Uint32(data[sidOffSpeed:]),
	}

	fields := []struct {
		name   string
		offset int
		dst    *string
	}{
		{"name", sidOffName, &header.Name},
		{"author", sidOffAuthor, &header.Author},
		{"released", sidOffReleased, &header.Released},
	}
	for _, f := range fields {
		text, err := decodeTextField(data[f.offset : f.offset+sidTextFieldLen])
		if err != nil {
			return FileHeader{}, &FormatError{Kind: InvalidText, Field: f.name, Err: err}
		}
		*f.dst = text
	}

	return header, nil
}

// ParseExtendedHeader decodes bytes 118-137. Callers gate it on Version > 1.
func ParseExtendedHeader(data []byte) (ExtendedHeader, error) {
	if len(data) < sidExtendedSize {
		return ExtendedHeader{}, &FormatError{Kind: TooShort, Need: sidExtendedSize, Got: len(data)}
	}
	// Bytes 0x78-0x85 are reserved and not decoded.
	return ExtendedHeader{
		Flags:      binary.BigEndian.Uint16(data[sidOffFlags:]),
		StartPage:  data[sidOffStartPage],
		PageLength: data[sidOffPageLength],
		Sid2Addr:   data[sidOffSecondSID],
		Sid3Addr:   data[sidOffThirdSID],
	}, nil
}

func ParseSIDData(data []byte) (*SIDFile, error) {
	header, err := ParseHeader(data)
	if err != nil {
		return nil, err
	}

	file := &SIDFile{
		Header:      header,
		LoadAddress: header.LoadAddress,
	}

	// Presence is governed by the version field alone, never by length.
	if header.Version > 1 {
		ext, err := ParseExtendedHeader(data)
		if err != nil {
			return nil, err
		}
		file.Extended = &ext
	}

	dataStart := int(header.DataOffset)
	if dataStart < sidHeaderSize || dataStart > len(data) {
		return file, nil
	}
	if header.LoadAddress == 0 && dataStart+2 <= len(data) {
		file.LoadAddress = binary.LittleEndian.Uint16(data[dataStart:])
		dataStart += 2
	}

	// Allocate exact size instead of using append idiom
	file.Data = make([]byte, len(data)-dataStart)
	copy(file.Data, data[dataStart:])

	return file, nil
}

// IsRSID reports whether the file needs a real C64 environment
func (h FileHeader) IsRSID() bool {
	return h.MagicID == sidMagicRSID
}

// Validate checks the song range; parsing itself does not enforce it.
func (h FileHeader) Validate() error {
	if h.Songs > 0 && (h.StartSong < 1 || h.StartSong > h.Songs) {
		return &FormatError{Kind: BadStartSong, Field: fmt.Sprintf("%d not in [1, %d]", h.StartSong, h.Songs)}
	}
	return nil
}

// SpeedUsesCIA reports whether song (1-based) is timed by CIA rather than
// vertical blank. Songs beyond 32 share bit 31.
func (h FileHeader) SpeedUsesCIA(song int) bool {
	bit := song - 1
	if bit < 0 {
		bit = 0
	}
	if bit >= sidSpeedBits {
		bit = sidSpeedBits - 1
	}
	return h.Speed&(1<<uint(bit)) != 0
}

func (e ExtendedHeader) MUSPlayer() bool {
	return e.Flags&SID_FLAG_MUS_PLAYER != 0
}

func (e ExtendedHeader) PlaySIDSpecific() bool {
	return e.Flags&SID_FLAG_PLAYSID != 0
}

// Clock returns the video standard field (bits 2-3)
func (e ExtendedHeader) Clock() uint8 {
	return uint8(e.Flags>>sidFlagClockShift) & sidFlagTwoBitMask
}

// Model returns the primary SID model field (bits 4-5)
func (e ExtendedHeader) Model() uint8 {
	return uint8(e.Flags>>sidFlagModelShift) & sidFlagTwoBitMask
}

// IsNTSC is true only for NTSC-only tunes; "PAL and NTSC" plays as PAL.
func (e ExtendedHeader) IsNTSC() bool {
	return e.Clock() == SID_FLAG_CLOCK_NTSC
}

// ChipModel maps the header model field to SID_MODEL_*, defaulting to 6581
func (e ExtendedHeader) ChipModel() int {
	if e.Model() == SID_FLAG_MODEL_8580 {
		return SID_MODEL_8580
	}
	return SID_MODEL_6581
}

// ClockHz picks the master clock for a file
func (f *SIDFile) ClockHz() uint32 {
	if f.Extended != nil && f.Extended.IsNTSC() {
		return SID_CLOCK_NTSC
	}
	return SID_CLOCK_PAL
}

// Metadata returns the common music metadata view
func (f *SIDFile) Metadata() MusicMetadata {
	return MusicMetadata{
		Title:    f.Header.Name,
		Author:   f.Header.Author,
		System:   "C64",
		Date:     f.Header.Released,
		Subsongs: int(f.Header.Songs),
	}
}

var sidClockNames = [4]string{"unknown", "PAL", "NTSC", "PAL/NTSC"}
var sidModelNames = [4]string{"unknown", "6581", "8580", "6581/8580"}

// Summary renders the header for -info output
func (f *SIDFile) Summary() string {
	h := f.Header
	var b strings.Builder
	fmt.Fprintf(&b, "Format:       %s v%d\n", h.MagicID, h.Version)
	fmt.Fprintf(&b, "Name:         %s\n", h.Name)
	fmt.Fprintf(&b, "Author:       %s\n", h.Author)
	fmt.Fprintf(&b, "Released:     %s\n", h.Released)
	fmt.Fprintf(&b, "Songs:        %d (start %d)\n", h.Songs, h.StartSong)
	fmt.Fprintf(&b, "Data offset:  0x%04X\n", h.DataOffset)
	fmt.Fprintf(&b, "Load address: $%04X", f.LoadAddress)
	if h.LoadAddress == 0 && f.LoadAddress != 0 {
		b.WriteString(" (embedded)")
	}
	b.WriteByte('\n')
	fmt.Fprintf(&b, "Init address: $%04X\n", h.InitAddress)
	fmt.Fprintf(&b, "Play address: $%04X\n", h.PlayAddress)
	fmt.Fprintf(&b, "Speed:        0x%08X\n", h.Speed)
	if e := f.Extended; e != nil {
		fmt.Fprintf(&b, "Flags:        0x%04X (clock %s, model %s)\n", e.Flags, sidClockNames[e.Clock()], sidModelNames[e.Model()])
		fmt.Fprintf(&b, "Start page:   0x%02X (%d pages)\n", e.StartPage, e.PageLength)
		if e.Sid2Addr != 0 || e.Sid3Addr != 0 {
			fmt.Fprintf(&b, "Extra SIDs:   $D%02X0 $D%02X0\n", e.Sid2Addr, e.Sid3Addr)
		}
	}
	fmt.Fprintf(&b, "Payload:      %d bytes", len(f.Data))
	return b.String()
}
