// config.go - Persistent player settings (file, environment, defaults)

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

const (
	configName      = "sidplay"
	configEnvPrefix = "SIDPLAY"
)

// Config is the resolved player configuration. Keys match sidplay.yaml and,
// upper-cased with a SIDPLAY_ prefix, the environment.
type Config struct {
	SampleRate     int    `mapstructure:"sample_rate"`
	Clock          string `mapstructure:"clock"` // "", "pal", "ntsc" or Hz
	StepCycles     uint32 `mapstructure:"step_cycles"`
	ReleaseTicks   uint32 `mapstructure:"release_ticks"`
	Voice          int    `mapstructure:"voice"`
	MasterVolume   uint8  `mapstructure:"master_volume"`
	AttackDecay    uint8  `mapstructure:"attack_decay"`
	SustainRelease uint8  `mapstructure:"sustain_release"`
	PulseWidth     uint16 `mapstructure:"pulse_width"`
	Backend        string `mapstructure:"backend"`
	BufferSamples  int    `mapstructure:"buffer_samples"`

	// Source is the config file that was read, if any
	Source string `mapstructure:"-"`
}

func setConfigDefaults(v *viper.Viper) {
	v.SetDefault("sample_rate", defaultSampleRate)
	v.SetDefault("clock", "")
	v.SetDefault("step_cycles", defaultStepCycles)
	v.SetDefault("release_ticks", defaultReleaseTicks)
	v.SetDefault("voice", 1)
	v.SetDefault("master_volume", defaultMasterVolume)
	v.SetDefault("attack_decay", 0x09)
	v.SetDefault("sustain_release", 0xA9)
	v.SetDefault("pulse_width", 0x800)
	v.SetDefault("backend", "")
	v.SetDefault("buffer_samples", defaultRingSamples)
}

// LoadConfig resolves settings from defaults, an optional config file and
// SIDPLAY_* environment variables. With an empty path, sidplay.yaml is looked
// up in the working directory and $HOME/.config/sidplay; a missing file is
// not an error. An explicit path must exist.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	setConfigDefaults(v)
	v.SetEnvPrefix(configEnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", configName))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.Source = v.ConfigFileUsed()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch {
	case c.SampleRate < 8000 || c.SampleRate > 192000:
		return fmt.Errorf("config: sample_rate %d out of range [8000, 192000]", c.SampleRate)
	case c.StepCycles == 0:
		return fmt.Errorf("config: step_cycles must be positive")
	case c.Voice < 1 || c.Voice > SID_VOICE_COUNT:
		return fmt.Errorf("config: voice %d out of range [1, %d]", c.Voice, SID_VOICE_COUNT)
	case c.MasterVolume > SID_MODE_VOL_MASK:
		return fmt.Errorf("config: master_volume %d out of range [0, 15]", c.MasterVolume)
	case c.PulseWidth > 0x0FFF:
		return fmt.Errorf("config: pulse_width 0x%X exceeds 12 bits", c.PulseWidth)
	case c.BufferSamples <= 0:
		return fmt.Errorf("config: buffer_samples must be positive")
	}
	if _, err := c.ClockOverride(); err != nil {
		return err
	}
	return nil
}

// ClockOverride returns the configured chip clock, or 0 to use the file's
func (c Config) ClockOverride() (uint32, error) {
	switch strings.ToLower(strings.TrimSpace(c.Clock)) {
	case "", "auto":
		return 0, nil
	case "pal":
		return SID_CLOCK_PAL, nil
	case "ntsc":
		return SID_CLOCK_NTSC, nil
	}
	hz, err := strconv.ParseUint(c.Clock, 0, 32)
	if err != nil || hz == 0 {
		return 0, fmt.Errorf("config: clock %q is not pal, ntsc or a frequency in Hz", c.Clock)
	}
	return uint32(hz), nil
}

func (c Config) SchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Voice:          c.Voice,
		StepCycles:     c.StepCycles,
		ReleaseTicks:   c.ReleaseTicks,
		MasterVolume:   c.MasterVolume,
		AttackDecay:    c.AttackDecay,
		SustainRelease: c.SustainRelease,
		PulseWidth:     c.PulseWidth,
	}
}
