// sid_constants.go - MOS 6581/8580 SID register offsets, control bits and timing tables

package main

// SID register offsets (chip-local, 0x00-0x1C)
const (
	// Voice 1 registers (0x00-0x06)
	SID_V1_FREQ_LO = 0x00 // Voice 1 frequency low byte
	SID_V1_FREQ_HI = 0x01 // Voice 1 frequency high byte
	SID_V1_PW_LO   = 0x02 // Voice 1 pulse width low byte
	SID_V1_PW_HI   = 0x03 // Voice 1 pulse width high byte (bits 0-3 only)
	SID_V1_CTRL    = 0x04 // Voice 1 control register
	SID_V1_AD      = 0x05 // Voice 1 attack/decay
	SID_V1_SR      = 0x06 // Voice 1 sustain/release

	// Filter registers (0x15-0x17)
	SID_FC_LO    = 0x15 // Filter cutoff low (bits 0-2 only)
	SID_FC_HI    = 0x16 // Filter cutoff high byte
	SID_RES_FILT = 0x17 // Filter resonance (bits 4-7) and routing (bits 0-3)

	// Volume and filter mode (0x18)
	SID_MODE_VOL = 0x18 // Volume (bits 0-3), filter mode (bits 4-7)

	// Read-only registers
	SID_POT_X = 0x19
	SID_POT_Y = 0x1A
	SID_OSC3  = 0x1B // Oscillator 3 output
	SID_ENV3  = 0x1C // Envelope 3 output

	SID_VOICE_STRIDE  = 7
	SID_VOICE_COUNT   = 3
	SID_WRITABLE_REGS = SID_MODE_VOL + 1
	SID_REG_COUNT     = 29
)

// Per-voice register offsets relative to the voice base
const (
	SID_VOICE_FREQ_LO = 0
	SID_VOICE_FREQ_HI = 1
	SID_VOICE_PW_LO   = 2
	SID_VOICE_PW_HI   = 3
	SID_VOICE_CTRL    = 4
	SID_VOICE_AD      = 5
	SID_VOICE_SR      = 6
)

// SID clock frequencies
const (
	SID_CLOCK_PAL  = 985248  // PAL C64 clock (Hz)
	SID_CLOCK_NTSC = 1022727 // NTSC C64 clock (Hz)
)

// SID chip model types
const (
	SID_MODEL_6581 = 0 // Original SID (non-linear filter, warmer sound)
	SID_MODEL_8580 = 1 // Revised SID (linear filter, cleaner sound)
)

// Voice control register bits
const (
	SID_CTRL_GATE     = 0x01 // Bit 0: Gate (trigger envelope)
	SID_CTRL_SYNC     = 0x02 // Bit 1: Sync with previous voice
	SID_CTRL_RINGMOD  = 0x04 // Bit 2: Ring modulation with previous voice
	SID_CTRL_TEST     = 0x08 // Bit 3: Test bit (resets oscillator)
	SID_CTRL_TRIANGLE = 0x10 // Bit 4: Triangle waveform
	SID_CTRL_SAWTOOTH = 0x20 // Bit 5: Sawtooth waveform
	SID_CTRL_PULSE    = 0x40 // Bit 6: Pulse/square waveform
	SID_CTRL_NOISE    = 0x80 // Bit 7: Noise waveform

	SID_CTRL_WAVE_MASK = SID_CTRL_TRIANGLE | SID_CTRL_SAWTOOTH | SID_CTRL_PULSE | SID_CTRL_NOISE
)

// Filter resonance/routing register bits
const (
	SID_FILT_V1  = 0x01 // Bit 0: Route voice 1 through filter
	SID_FILT_V2  = 0x02 // Bit 1: Route voice 2 through filter
	SID_FILT_V3  = 0x04 // Bit 2: Route voice 3 through filter
	SID_FILT_EXT = 0x08 // Bit 3: Route external input through filter
	SID_FILT_RES = 0xF0 // Bits 4-7: Filter resonance (0-15)
)

// Mode/volume register bits
const (
	SID_MODE_VOL_MASK = 0x0F // Bits 0-3: Master volume (0-15)
	SID_MODE_LP       = 0x10 // Bit 4: Low-pass filter
	SID_MODE_BP       = 0x20 // Bit 5: Band-pass filter
	SID_MODE_HP       = 0x40 // Bit 6: High-pass filter
	SID_MODE_3OFF     = 0x80 // Bit 7: Voice 3 off (disconnect from output)
)

// Oscillator and noise generator geometry
const (
	sidAccumulatorMask = 0xFFFFFF // 24-bit phase accumulator
	sidAccumulatorMSB  = 0x800000
	sidNoiseClockBit   = 0x080000 // accumulator bit 19 clocks the LFSR
	sidNoiseMask       = 0x7FFFFF // 23-bit LFSR
	sidNoiseSeed       = 0x7FFFF8
	sidWaveCenter      = 0x800 // midpoint of a 12-bit waveform
)

// SID ADSR rate counter periods (clock cycles at 985248 Hz PAL)
// These are the base periods for each ADSR value (0-15)
var sidADSRRatePeriods = [16]uint16{
	9, 32, 63, 95, 149, 220, 267, 313,
	392, 977, 1954, 3126, 3907, 11720, 19532, 31251,
}

// SID envelope exponential decay thresholds
// When envelope level crosses these thresholds, decay rate changes
// This creates the characteristic "bent" SID envelope curve
// Thresholds: 255-94 (1x), 93-55 (2x), 54-27 (4x), 26-15 (8x), 14-7 (16x), 6-1 (30x)
var sidEnvExpThresholds = [6]uint8{93, 54, 26, 14, 6, 0}

// SID envelope exponential rate multipliers at each threshold
var sidEnvExpMultipliers = [6]uint8{1, 2, 4, 8, 16, 30}

// PSID/RSID header layout (big-endian, fixed offsets)
const (
	sidOffMagic       = 0x00
	sidOffVersion     = 0x04
	sidOffDataOffset  = 0x06
	sidOffLoadAddress = 0x08
	sidOffInitAddress = 0x0A
	sidOffPlayAddress = 0x0C
	sidOffSongs       = 0x0E
	sidOffStartSong   = 0x10
	sidOffSpeed       = 0x12
	sidOffName        = 0x16
	sidOffAuthor      = 0x36
	sidOffReleased    = 0x56
	sidOffFlags       = 0x76
	sidOffStartPage   = 0x86
	sidOffPageLength  = 0x87
	sidOffSecondSID   = 0x88
	sidOffThirdSID    = 0x89

	sidTextFieldLen   = 32
	sidHeaderSize   = 0x76 // 118 bytes, base header
	sidExtendedSize = 0x8A // 138 bytes, base + extended header
	sidSpeedBits    = 32
	sidMagicPSID    = "PSID"
	sidMagicRSID    = "RSID"
)

// Extended header flag fields (bits fixed by the PSID v2+ format)
const (
	SID_FLAG_MUS_PLAYER   = 0x0001 // Bit 0: built-in MUS player data
	SID_FLAG_PLAYSID      = 0x0002 // Bit 1: PlaySID specific (PSID) / C64 BASIC (RSID)
	sidFlagClockShift     = 2      // Bits 2-3: video standard
	sidFlagModelShift     = 4      // Bits 4-5: primary SID model
	sidFlagTwoBitMask     = 0x03
	SID_FLAG_CLOCK_UNSET  = 0
	SID_FLAG_CLOCK_PAL    = 1
	SID_FLAG_CLOCK_NTSC   = 2
	SID_FLAG_CLOCK_ANY    = 3
	SID_FLAG_MODEL_UNSET  = 0
	SID_FLAG_MODEL_6581   = 1
	SID_FLAG_MODEL_8580   = 2
	SID_FLAG_MODEL_EITHER = 3
)

// Playback scheduler defaults
const (
	// One step per output sample: 985248 Hz / 44100 Hz ~= 22.34 cycles.
	defaultStepCycles   = 22
	defaultReleaseTicks = 50
	defaultMasterVolume = 0x0F
	defaultSampleRate   = 44100
	defaultRingSamples  = 8192
)
