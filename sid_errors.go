// sid_errors.go - Typed errors for SID header parsing and register scheduling

package main

import "fmt"

// FormatErrorKind classifies header decoding failures
type FormatErrorKind int

const (
	TooShort FormatErrorKind = iota + 1
	BadMagic
	InvalidText
	BadStartSong
)

func (k FormatErrorKind) String() string {
	switch k {
	case TooShort:
		return "too short"
	case BadMagic:
		return "bad magic"
	case InvalidText:
		return "invalid text"
	case BadStartSong:
		return "bad start song"
	default:
		return fmt.Sprintf("FormatErrorKind(%d)", int(k))
	}
}

// FormatError reports a malformed SID header. Parsing never returns a
// partial header alongside a FormatError.
type FormatError struct {
	Kind  FormatErrorKind
	Need  int    // TooShort: required length
	Got   int    // TooShort: actual length
	Magic string // BadMagic: the 4 bytes found
	Field string // InvalidText/BadStartSong: offending field
	Err   error  // InvalidText: underlying decoder error
}

// Sentinels for errors.Is; matching compares Kind only.
var (
	ErrTooShort     = &FormatError{Kind: TooShort}
	ErrBadMagic     = &FormatError{Kind: BadMagic}
	ErrInvalidText  = &FormatError{Kind: InvalidText}
	ErrBadStartSong = &FormatError{Kind: BadStartSong}
)

func (e *FormatError) Error() string {
	switch e.Kind {
	case TooShort:
		if e.Need == 0 {
			return "SID data too short"
		}
		return fmt.Sprintf("SID data too short: need %d bytes, got %d", e.Need, e.Got)
	case BadMagic:
		if e.Magic == "" {
			return "invalid SID magic"
		}
		return fmt.Sprintf("invalid SID magic: %q", e.Magic)
	case InvalidText:
		if e.Field == "" {
			return "invalid SID text field"
		}
		if e.Err != nil {
			return fmt.Sprintf("invalid SID text field %s: %v", e.Field, e.Err)
		}
		return fmt.Sprintf("invalid SID text field %s", e.Field)
	case BadStartSong:
		if e.Field == "" {
			return "SID start song out of range"
		}
		return "SID start song out of range: " + e.Field
	default:
		return "SID format error: " + e.Kind.String()
	}
}

func (e *FormatError) Unwrap() error { return e.Err }

func (e *FormatError) Is(target error) bool {
	t, ok := target.(*FormatError)
	return ok && t.Kind == e.Kind
}

// ChipErrorKind classifies register-level failures
type ChipErrorKind int

const (
	InvalidRegister ChipErrorKind = iota + 1
)

// ChipError is a programming invariant violation surfaced by the chip
// model; the scheduler aborts the remaining sequence when it sees one.
type ChipError struct {
	Kind ChipErrorKind
	Reg  int
}

var ErrInvalidRegister = &ChipError{Kind: InvalidRegister}

func (e *ChipError) Error() string {
	if e.Kind == InvalidRegister {
		return fmt.Sprintf("invalid SID register 0x%02X", e.Reg)
	}
	return fmt.Sprintf("SID chip error %d at register 0x%02X", int(e.Kind), e.Reg)
}

func (e *ChipError) Is(target error) bool {
	t, ok := target.(*ChipError)
	return ok && t.Kind == e.Kind
}
