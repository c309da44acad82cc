// sid_engine.go - MOS 6581/8580 SID register file and cycle-clocked voice model

/*
SID (Sound Interface Device) was the audio chip used in the Commodore 64.
This model keeps the writable register file and steps three voices one
clock cycle at a time, so any split of a clock advance yields the same state.

Features:
- 3 voices with 24-bit phase accumulators
- 12-bit triangle, sawtooth, pulse and noise (23-bit LFSR) waveforms
- Test bit, hard sync and ring modulation between voices
- Rate-counter ADSR envelopes with the exponential decay curve
- Master volume and voice 3 disconnect

Filter registers are stored but the analog filter is not modeled.
*/

package main

import "fmt"

// Envelope phases
const (
	envAttack = iota
	envDecaySustain
	envRelease
)

type sidVoice struct {
	accumulator uint32
	noise       uint32
	msbRising   bool

	envState    uint8
	envLevel    uint8
	rateCounter uint16
	ratePeriod  uint16
	expCounter  uint8
	expPeriod   uint8
	holdZero    bool
	gate        bool
}

// VoiceSnapshot is the comparable per-voice part of StateSnapshot
type VoiceSnapshot struct {
	Accumulator uint32
	Noise       uint32
	EnvState    uint8
	EnvLevel    uint8
	RateCounter uint16
	ExpCounter  uint8
	HoldZero    bool
	Gate        bool
}

// StateSnapshot is a comparable copy of the chip state
type StateSnapshot struct {
	Cycles uint64
	Regs   [SID_WRITABLE_REGS]uint8
	Voices [SID_VOICE_COUNT]VoiceSnapshot
}

// SIDChip is the reference ChipEmulator. It is driven from a single
// goroutine; the real-time consumer only ever sees rendered samples.
type SIDChip struct {
	regs    [SID_WRITABLE_REGS]uint8
	voices  [SID_VOICE_COUNT]sidVoice
	cycles  uint64
	clockHz uint32
	model   int

	debugEnabled bool
	lastCtrl     [SID_VOICE_COUNT]uint8
}

// NewSIDChip creates a powered-on chip clocked at PAL rate
func NewSIDChip() *SIDChip {
	c := &SIDChip{
		clockHz: SID_CLOCK_PAL,
		model:   SID_MODEL_6581, // Default to original SID
	}
	c.Reset()
	return c
}

// SetClockHz sets the master clock used for debug timestamps
func (c *SIDChip) SetClockHz(clock uint32) {
	if clock == 0 {
		return
	}
	c.clockHz = clock
}

func (c *SIDChip) ClockHz() uint32 {
	return c.clockHz
}

// SetModel sets the SID chip model (6581 or 8580)
func (c *SIDChip) SetModel(model int) {
	if model == SID_MODEL_6581 || model == SID_MODEL_8580 {
		c.model = model
	}
}

func (c *SIDChip) Model() int {
	return c.model
}

// EnableDebugLogging traces gate and waveform changes to stdout
func (c *SIDChip) EnableDebugLogging(enabled bool) {
	c.debugEnabled = enabled
	for i := range c.lastCtrl {
		c.lastCtrl[i] = c.regs[i*SID_VOICE_STRIDE+SID_VOICE_CTRL]
	}
}

// Reset resets all SID state
func (c *SIDChip) Reset() {
	c.regs = [SID_WRITABLE_REGS]uint8{}
	c.cycles = 0
	for i := range c.voices {
		c.voices[i] = sidVoice{
			noise:      sidNoiseSeed,
			envState:   envRelease,
			ratePeriod: sidADSRRatePeriods[0],
			expPeriod:  1,
			holdZero:   true,
		}
	}
	c.lastCtrl = [SID_VOICE_COUNT]uint8{}
}

// WriteRegister writes a value to a SID register
func (c *SIDChip) WriteRegister(reg uint8, value uint8) error {
	if reg >= SID_WRITABLE_REGS {
		return &ChipError{Kind: InvalidRegister, Reg: int(reg)}
	}

	if c.debugEnabled {
		c.debugRegisterWrite(reg, value)
	}

	c.regs[reg] = value

	voice := int(reg) / SID_VOICE_STRIDE
	if voice < SID_VOICE_COUNT {
		switch int(reg) % SID_VOICE_STRIDE {
		case SID_VOICE_CTRL:
			c.writeControl(voice, value)
		case SID_VOICE_AD, SID_VOICE_SR:
			c.refreshRatePeriod(voice)
		}
	}
	return nil
}

// ReadRegister returns a register value; OSC3/ENV3 return live voice 3 state
func (c *SIDChip) ReadRegister(reg uint8) uint8 {
	switch reg {
	case SID_OSC3:
		return uint8(c.waveform(2) >> 4)
	case SID_ENV3:
		return c.voices[2].envLevel
	}
	if reg < SID_WRITABLE_REGS {
		return c.regs[reg]
	}
	return 0
}

func (c *SIDChip) writeControl(voice int, ctrl uint8) {
	v := &c.voices[voice]
	gate := ctrl&SID_CTRL_GATE != 0

	if gate && !v.gate {
		// Gate just went high - trigger attack
		v.envState = envAttack
		v.holdZero = false
	} else if !gate && v.gate {
		// Gate just went low - trigger release
		v.envState = envRelease
	}
	v.gate = gate

	if ctrl&SID_CTRL_TEST != 0 {
		v.accumulator = 0
		v.noise = sidNoiseSeed
	}
	c.refreshRatePeriod(voice)
}

func (c *SIDChip) refreshRatePeriod(voice int) {
	base := voice * SID_VOICE_STRIDE
	ad := c.regs[base+SID_VOICE_AD]
	sr := c.regs[base+SID_VOICE_SR]

	v := &c.voices[voice]
	switch v.envState {
	case envAttack:
		v.ratePeriod = sidADSRRatePeriods[ad>>4]
	case envDecaySustain:
		v.ratePeriod = sidADSRRatePeriods[ad&0x0F]
	default:
		v.ratePeriod = sidADSRRatePeriods[sr&0x0F]
	}
}

// AdvanceClock steps the chip one cycle at a time
func (c *SIDChip) AdvanceClock(cycles uint32) {
	for i := uint32(0); i < cycles; i++ {
		c.clockOscillators()
		for voice := range c.voices {
			c.clockEnvelope(voice)
		}
		c.cycles++
	}
}

func (c *SIDChip) clockOscillators() {
	for voice := range c.voices {
		v := &c.voices[voice]
		ctrl := c.regs[voice*SID_VOICE_STRIDE+SID_VOICE_CTRL]
		if ctrl&SID_CTRL_TEST != 0 {
			v.msbRising = false
			continue
		}
		prev := v.accumulator
		v.accumulator = (prev + uint32(c.frequency(voice))) & sidAccumulatorMask
		v.msbRising = prev&sidAccumulatorMSB == 0 && v.accumulator&sidAccumulatorMSB != 0

		if prev&sidNoiseClockBit == 0 && v.accumulator&sidNoiseClockBit != 0 {
			bit := ((v.noise >> 22) ^ (v.noise >> 17)) & 1
			v.noise = ((v.noise << 1) & sidNoiseMask) | bit
		}
	}

	// Hard sync: voice N resets when its source (N-1, wrapping) overflows
	for voice := range c.voices {
		ctrl := c.regs[voice*SID_VOICE_STRIDE+SID_VOICE_CTRL]
		src := (voice + 2) % SID_VOICE_COUNT
		if ctrl&SID_CTRL_SYNC != 0 && c.voices[src].msbRising {
			c.voices[voice].accumulator = 0
		}
	}
}

func (c *SIDChip) clockEnvelope(voice int) {
	v := &c.voices[voice]

	v.rateCounter++
	if v.rateCounter < v.ratePeriod {
		return
	}
	v.rateCounter = 0

	if v.envState != envAttack {
		v.expCounter++
		if v.expCounter < v.expPeriod {
			return
		}
	}
	v.expCounter = 0

	if v.holdZero {
		return
	}

	base := voice * SID_VOICE_STRIDE
	switch v.envState {
	case envAttack:
		v.envLevel++
		if v.envLevel == 0xFF {
			v.envState = envDecaySustain
			c.refreshRatePeriod(voice)
		}
	case envDecaySustain:
		sustain := (c.regs[base+SID_VOICE_SR] >> 4) * 0x11
		if v.envLevel != sustain {
			v.envLevel--
		}
	case envRelease:
		v.envLevel--
	}

	v.expPeriod = sidExpPeriod(v.envLevel)
	if v.envLevel == 0 && v.envState != envAttack {
		v.holdZero = true
	}
}

// sidExpPeriod returns the exponential counter period for an envelope level
func sidExpPeriod(level uint8) uint8 {
	for i, threshold := range sidEnvExpThresholds {
		if level > threshold {
			return sidEnvExpMultipliers[i]
		}
	}
	return 1
}

func (c *SIDChip) frequency(voice int) uint16 {
	base := voice * SID_VOICE_STRIDE
	return uint16(c.regs[base+SID_VOICE_FREQ_LO]) | uint16(c.regs[base+SID_VOICE_FREQ_HI])<<8
}

func (c *SIDChip) pulseWidth(voice int) uint32 {
	base := voice * SID_VOICE_STRIDE
	return uint32(c.regs[base+SID_VOICE_PW_LO]) | uint32(c.regs[base+SID_VOICE_PW_HI]&0x0F)<<8
}

// waveform returns the 12-bit oscillator output; combined selections AND together
func (c *SIDChip) waveform(voice int) uint32 {
	v := &c.voices[voice]
	ctrl := c.regs[voice*SID_VOICE_STRIDE+SID_VOICE_CTRL]
	if ctrl&SID_CTRL_WAVE_MASK == 0 {
		return 0
	}

	out := uint32(0xFFF)
	if ctrl&SID_CTRL_TRIANGLE != 0 {
		msb := v.accumulator & sidAccumulatorMSB
		if ctrl&SID_CTRL_RINGMOD != 0 {
			src := (voice + 2) % SID_VOICE_COUNT
			msb ^= c.voices[src].accumulator & sidAccumulatorMSB
		}
		acc := v.accumulator
		if msb != 0 {
			acc = ^acc
		}
		out &= (acc >> 11) & 0xFFF
	}
	if ctrl&SID_CTRL_SAWTOOTH != 0 {
		out &= v.accumulator >> 12
	}
	if ctrl&SID_CTRL_PULSE != 0 {
		if ctrl&SID_CTRL_TEST == 0 && v.accumulator>>12 < c.pulseWidth(voice) {
			out = 0
		}
	}
	if ctrl&SID_CTRL_NOISE != 0 {
		n := v.noise
		bits := (n>>11)&0x800 | (n>>10)&0x400 | (n>>7)&0x200 | (n>>5)&0x100 |
			(n>>4)&0x080 | (n>>1)&0x040 | (n<<1)&0x020 | (n<<2)&0x010
		out &= bits
	}
	return out
}

// NextSample returns the mixed output for the current state. It does not
// advance the clock.
func (c *SIDChip) NextSample() float32 {
	modeVol := c.regs[SID_MODE_VOL]
	volume := int32(modeVol & SID_MODE_VOL_MASK)
	if volume == 0 {
		return 0
	}

	var mix int32
	for voice := range c.voices {
		if voice == 2 && modeVol&SID_MODE_3OFF != 0 {
			continue
		}
		ctrl := c.regs[voice*SID_VOICE_STRIDE+SID_VOICE_CTRL]
		if ctrl&SID_CTRL_WAVE_MASK == 0 {
			continue
		}
		wave := int32(c.waveform(voice)) - sidWaveCenter
		mix += wave * int32(c.voices[voice].envLevel)
	}

	const fullScale = sidWaveCenter * 0xFF * SID_VOICE_COUNT * SID_MODE_VOL_MASK
	return float32(mix*volume) / fullScale
}

// StateSnapshot returns a comparable copy of the chip state
func (c *SIDChip) StateSnapshot() StateSnapshot {
	s := StateSnapshot{
		Cycles: c.cycles,
		Regs:   c.regs,
	}
	for i, v := range c.voices {
		s.Voices[i] = VoiceSnapshot{
			Accumulator: v.accumulator,
			Noise:       v.noise,
			EnvState:    v.envState,
			EnvLevel:    v.envLevel,
			RateCounter: v.rateCounter,
			ExpCounter:  v.expCounter,
			HoldZero:    v.holdZero,
			Gate:        v.gate,
		}
	}
	return s
}

func (c *SIDChip) debugRegisterWrite(reg uint8, value uint8) {
	voice := int(reg) / SID_VOICE_STRIDE
	if voice < SID_VOICE_COUNT && int(reg)%SID_VOICE_STRIDE == SID_VOICE_CTRL {
		prev := c.lastCtrl[voice]
		if (prev^value)&SID_CTRL_GATE != 0 {
			state := "off"
			if value&SID_CTRL_GATE != 0 {
				state = "on"
			}
			fmt.Printf("SID t=%.3fs V%d gate=%s ctrl=0x%02X\n", c.debugTime(), voice+1, state, value)
		}
		if (prev^value)&0xF0 != 0 {
			fmt.Printf("SID t=%.3fs V%d wave=0x%02X\n", c.debugTime(), voice+1, value&0xF0)
		}
		c.lastCtrl[voice] = value
		return
	}

	switch reg {
	case SID_FC_LO, SID_FC_HI, SID_RES_FILT, SID_MODE_VOL:
		fmt.Printf("SID t=%.3fs reg=0x%02X value=0x%02X\n", c.debugTime(), reg, value)
	}
}

func (c *SIDChip) debugTime() float64 {
	if c.clockHz == 0 {
		return 0
	}
	return float64(c.cycles) / float64(c.clockHz)
}
