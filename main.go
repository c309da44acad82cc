// main.go - Command-line entry point for the SID header parser and player

/*
 ████████▓ ██████▓ ██████▓   ████████▓ ██▓         ████▓   ██▓   ██▓
 ██▓         ██▓   ██▓   ██▓ ██▓   ██▓ ██▓       ██▓   ██▓ ██▓   ██▓
 ████████▓   ██▓   ██▓   ██▓ ████████▓ ██▓       ████████▓   ████▓
       ██▓   ██▓   ██▓   ██▓ ██▓       ██▓       ██▓   ██▓   ██▓
 ████████▓ ██████▓ ██████▓   ██▓       ████████▓ ██▓   ██▓   ██▓
 ▒▒▒▒▒▒▒▒  ▒▒▒▒▒▒  ▒▒▒▒▒▒    ▒▒        ▒▒▒▒▒▒▒▒  ▒▒    ▒▒    ▒▒
 ░░░░░░░░  ░░░░░░  ░░░░░░    ░░        ░░░░░░░░  ░░    ░░    ░░

(c) 2024 - 2026 Zayn Otley
https://github.com/intuitionamiga/sidplay
License: GPLv3 or later
*/

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"
)

var errMissingFile = errors.New("no SID file given")

func boilerPlate() {
	fmt.Println("\n\033[38;2;255;20;147m ████████▓ ██████▓ ██████▓   ████████▓ ██▓         ████▓   ██▓   ██▓\033[0m\n\033[38;2;255;60;147m ██▓         ██▓   ██▓   ██▓ ██▓   ██▓ ██▓       ██▓   ██▓ ██▓   ██▓\033[0m\n\033[38;2;255;100;147m ████████▓   ██▓   ██▓   ██▓ ████████▓ ██▓       ████████▓   ████▓\033[0m\n\033[38;2;255;140;147m       ██▓   ██▓   ██▓   ██▓ ██▓       ██▓       ██▓   ██▓   ██▓\033[0m\n\033[38;2;255;180;147m ████████▓ ██████▓ ██████▓   ██▓       ████████▓ ██▓   ██▓   ██▓\033[0m\n\033[38;2;255;220;147m ▒▒▒▒▒▒▒▒  ▒▒▒▒▒▒  ▒▒▒▒▒▒    ▒▒        ▒▒▒▒▒▒▒▒  ▒▒    ▒▒    ▒▒\033[0m\n\033[38;2;255;255;147m ░░░░░░░░  ░░░░░░  ░░░░░░    ░░        ░░░░░░░░  ░░    ░░    ░░\033[0m")
	fmt.Println("\nsidplay: PSID/RSID header inspection and SID register playback.")
	fmt.Println("(c) 2024 - 2026 Zayn Otley")
	fmt.Println("https://github.com/intuitionamiga/sidplay")
	fmt.Println("License: GPLv3 or later")
}

type cliOptions struct {
	info       bool
	debug      bool
	copyMeta   bool
	version    bool
	configPath string
	eventsPath string
	wavPath    string
	backend    string
	voice      int
	ntsc       bool
	filename   string

	set map[string]bool // flags given explicitly on the command line
}

func newFlagSet(opts *cliOptions) *flag.FlagSet {
	flagSet := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.BoolVar(&opts.info, "info", false, "Print header metadata and exit")
	flagSet.BoolVar(&opts.debug, "debug", false, "Trace SID register writes")
	flagSet.BoolVar(&opts.copyMeta, "copy", false, "Copy title / author / released to the clipboard")
	flagSet.BoolVar(&opts.version, "version", false, "Print version and compiled features")
	flagSet.StringVar(&opts.configPath, "config", "", "Config file (default: ./sidplay.yaml or ~/.config/sidplay/sidplay.yaml)")
	flagSet.StringVar(&opts.eventsPath, "events", "", "Lua script returning the note sequence to play")
	flagSet.StringVar(&opts.wavPath, "wav", "", "Render to a 16-bit mono WAV file instead of the audio device")
	flagSet.StringVar(&opts.backend, "backend", "", "Audio backend: oto, ebiten or null")
	flagSet.IntVar(&opts.voice, "voice", 1, "SID voice to play on (1-3)")
	flagSet.BoolVar(&opts.ntsc, "ntsc", false, "Force the NTSC clock")

	flagSet.Usage = func() {
		flagSet.SetOutput(os.Stdout)
		fmt.Println("Usage: ./sidplay [-info] [-copy] [-events notes.lua] [-wav out.wav] [-backend oto|ebiten|null] filename.sid")
		flagSet.PrintDefaults()
	}
	return flagSet
}

func parseArgs(args []string) (*cliOptions, *flag.FlagSet, error) {
	opts := &cliOptions{set: make(map[string]bool)}
	flagSet := newFlagSet(opts)
	if err := flagSet.Parse(args); err != nil {
		return nil, flagSet, err
	}
	flagSet.Visit(func(f *flag.Flag) {
		opts.set[f.Name] = true
	})
	opts.filename = flagSet.Arg(0)
	return opts, flagSet, nil
}

// applyFlags overrides config values with flags set on the command line
func (o *cliOptions) applyFlags(cfg *Config) error {
	if o.set["backend"] {
		cfg.Backend = o.backend
	}
	if o.set["voice"] {
		cfg.Voice = o.voice
	}
	if o.ntsc {
		cfg.Clock = "ntsc"
	}
	return cfg.Validate()
}

func main() {
	opts, flagSet, err := parseArgs(os.Args[1:])
	if err != nil {
		// Parse has already printed usage
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Printf("Error: %v\n", err)
		os.Exit(2)
	}

	if term.IsTerminal(int(os.Stdout.Fd())) && !opts.info {
		boilerPlate()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, opts)
	stop()

	if errors.Is(err, errMissingFile) {
		fmt.Printf("Error: %v\n", err)
		flagSet.Usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts *cliOptions) error {
	if opts.version {
		printFeatures()
		return nil
	}
	if opts.filename == "" {
		return errMissingFile
	}

	cfg, err := LoadConfig(opts.configPath)
	if err != nil {
		return err
	}
	if err := opts.applyFlags(&cfg); err != nil {
		return err
	}

	data, err := loadMedia(opts.filename)
	if err != nil {
		return err
	}
	if !isSIDExtension(opts.filename) {
		fmt.Fprintf(os.Stderr, "sidplay: warning: %s does not have a .sid extension\n", opts.filename)
	}

	chip := NewSIDChip()
	player := NewSIDPlayer(chip, cfg.SchedulerConfig(), cfg.SampleRate)
	player.SetRingSize(cfg.BufferSamples)
	if err := player.LoadData(data); err != nil {
		if errors.Is(err, ErrBadMagic) {
			return fmt.Errorf("%s: %w (input looks like %s)", opts.filename, err, describeInput(data))
		}
		return fmt.Errorf("%s: %w", opts.filename, err)
	}
	clockHz, err := cfg.ClockOverride()
	if err != nil {
		return err
	}
	chip.SetClockHz(clockHz)

	file := player.File()
	if opts.copyMeta {
		h := file.Header
		if err := copyToClipboard(fmt.Sprintf("%s / %s / %s", h.Name, h.Author, h.Released)); err != nil {
			fmt.Fprintf(os.Stderr, "sidplay: %v\n", err)
		}
	}
	if opts.info {
		fmt.Println(file.Summary())
		return nil
	}

	if opts.eventsPath != "" {
		seq, err := LoadEventScript(opts.eventsPath, chip.ClockHz())
		if err != nil {
			return err
		}
		player.SetSequence(seq)
	}

	meta := player.Metadata()
	if meta.Title != "" || meta.Author != "" {
		fmt.Printf("Playing SID: %s - %s (%s)\n", meta.Title, meta.Author, player.DurationText())
	} else {
		fmt.Printf("Playing SID file: %s (%s)\n", opts.filename, player.DurationText())
	}
	chip.EnableDebugLogging(opts.debug)

	if opts.wavPath != "" {
		return renderWAV(ctx, player, opts.wavPath)
	}
	return playLive(ctx, player, cfg)
}

func renderWAV(ctx context.Context, player *SIDPlayer, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create WAV: %w", err)
	}
	defer f.Close()

	w, err := NewWAVWriter(f, player.SampleRate())
	if err != nil {
		return err
	}
	if err := player.Render(ctx, w); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("render: %w", err)
	}
	if err := w.Close(); err != nil {
		return err
	}
	fmt.Printf("Wrote %d samples to %s\n", w.Samples(), path)
	return f.Close()
}

func playLive(ctx context.Context, player *SIDPlayer, cfg Config) error {
	sink, err := newAudioSink(cfg.Backend, player.SampleRate())
	if err != nil {
		return fmt.Errorf("failed to initialize sound: %w", err)
	}
	if err := player.Play(ctx, sink); err != nil {
		_ = sink.Close()
		return err
	}

	if stdinIsTerminal() {
		host := NewTerminalHost(player.Stop)
		host.Start()
		defer host.Stop()
		fmt.Print("Press q to stop\r\n")
	}
	return player.Wait()
}
