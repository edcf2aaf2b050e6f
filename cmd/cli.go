// SPDX-License-Identifier: MIT
package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"wavemath/internal/config"
	"wavemath/pkg/build"
)

// Commands other than the interactive menu.
const (
	CommandDevices  = "devices"
	CommandPlay     = "play"
	CommandTone     = "tone"
	CommandAnalyze  = "analyze"
	CommandEquation = "equation"
	CommandGenerate = "generate"
)

// Default files the menu acts on.
const (
	DefaultMusicFile    = "untitled.mp3"
	DefaultWaveformFile = "untitled.wav"
)

// Options is the parsed command line.
type Options struct {
	Menu       bool   // Run the interactive menu.
	Command    string // One-off command, empty for the menu.
	Target     string // File or equation the command acts on.
	ConfigPath string
	Verbose    bool
	OutputPath string // Export generated or resynthesized audio here.
	LogFile    string // Log destination while the menu owns the terminal.

	MusicFile    string
	WaveformFile string

	outputDevice    int
	sampleRate      int
	framesPerBuffer int
	lowLatency      bool
	backend         string
	window          string
	topK            int
	positiveFirst   bool
	duration        float64
	frequency       float64
	play            bool
	bitDepth        int
	websocket       bool
	udp             bool

	changed map[string]bool
}

// ParseArgs parses args (without the program name).
func ParseArgs(args []string) (*Options, error) {
	buildInfo := build.GetBuildFlags()
	options := &Options{changed: map[string]bool{}}

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name,
		Short:         build.Description,
		Version:       buildInfo.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			options.Menu = true
			return nil
		},
	}

	// Display help message
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	command := func(use, short string, nargs cobra.PositionalArgs, join bool) *cobra.Command {
		name, _, _ := strings.Cut(use, " ")
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  nargs,
			Run: func(cmd *cobra.Command, args []string) {
				options.Command = name
				if join {
					options.Target = strings.Join(args, " ")
				} else if len(args) > 0 {
					options.Target = args[0]
				}
			},
		}
	}
	rootCmd.AddCommand(
		command("devices", "List available audio devices", cobra.NoArgs, false),
		command("play <file>", "Play a WAV or MP3 file", cobra.ExactArgs(1), false),
		command("tone", "Play the reference sine wave", cobra.NoArgs, false),
		command("analyze <file>", "Show the dominant frequencies and plot waveform and spectrum", cobra.ExactArgs(1), false),
		command("equation <file>", "Print the sum-of-sines equation of an audio file", cobra.ExactArgs(1), false),
		command("generate <equation>", "Synthesize, play and plot a waveform equation in t", cobra.MinimumNArgs(1), true),
	)

	flags := rootCmd.PersistentFlags()

	// General
	flags.StringVarP(&options.ConfigPath, "config", "c", "",
		"Path to a YAML configuration file. Defaults to config.yaml or config.yml if present")
	flags.BoolVarP(&options.Verbose, "verbose", "v", false,
		"Show verbose output")
	flags.StringVar(&options.LogFile, "log-file", "",
		"Write logs to this file while the menu is running (discarded by default)")

	// Audio Device Configuration
	flags.IntVarP(&options.outputDevice, "device", "d", config.DefaultOutputDevice,
		"Specify output device ID. Use 'devices' command to see available devices.")
	flags.IntVarP(&options.sampleRate, "sample-rate", "s", config.DefaultSampleRate,
		"Sample rate of synthesized audio, measured in Hertz (Hz)")
	flags.IntVarP(&options.framesPerBuffer, "frames-per-buffer", "b", config.DefaultFramesPerBuffer,
		"The number of frames per buffer (affects latency)")
	flags.BoolVarP(&options.lowLatency, "low-latency", "l", false,
		"Use low latency output settings")

	// Analysis Configuration
	flags.StringVar(&options.backend, "backend", config.DefaultBackend,
		"FFT backend (gonum, godsp)")
	flags.StringVar(&options.window, "window", config.DefaultWindow,
		"Window applied before the transform (none, hann, hamming, blackman, ...)")
	flags.IntVarP(&options.topK, "top-k", "k", config.DefaultTopK,
		"Number of dominant frequencies to extract")
	flags.BoolVar(&options.positiveFirst, "positive-first", false,
		"Discard non-positive frequencies before ranking")

	// Synthesis Configuration
	flags.Float64Var(&options.duration, "duration", config.DefaultDuration,
		"Length of generated audio in seconds")
	flags.Float64VarP(&options.frequency, "frequency", "f", config.DefaultToneFrequency,
		"Frequency of the reference sine wave in Hz")
	flags.BoolVarP(&options.play, "play", "p", true,
		"Play generated audio")

	// Output Configuration
	flags.StringVarP(&options.OutputPath, "output", "o", "",
		"Export generated audio (or the resynthesized equation) to this WAV file")
	flags.IntVar(&options.bitDepth, "bit-depth", config.DefaultBitDepth,
		"PCM bit depth of exported WAV files (16, 24, 32)")
	flags.StringVar(&options.MusicFile, "music-file", DefaultMusicFile,
		"File the menu plays")
	flags.StringVar(&options.WaveformFile, "waveform-file", DefaultWaveformFile,
		"File the menu analyzes")

	// Plot Transport Configuration
	flags.BoolVar(&options.websocket, "websocket", false,
		"Serve plot frames over WebSocket")
	flags.BoolVar(&options.udp, "udp", false,
		"Send spectrum magnitudes over UDP")

	// Execute the CLI
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		return nil, err
	}

	flags.VisitAll(func(f *pflag.Flag) {
		options.changed[f.Name] = f.Changed
	})
	return options, nil
}

// Apply overrides cfg with the flags given on the command line and
// re-validates it.
func (o *Options) Apply(cfg *config.Config) error {
	set := func(name string, apply func()) {
		if o.changed[name] {
			apply()
		}
	}

	cfg.Command = o.Command
	if o.Verbose {
		cfg.Debug = true
		cfg.LogLevel = "debug"
	}

	set("device", func() { cfg.Audio.OutputDevice = o.outputDevice })
	set("sample-rate", func() { cfg.Audio.SampleRate = o.sampleRate })
	set("frames-per-buffer", func() { cfg.Audio.FramesPerBuffer = o.framesPerBuffer })
	set("low-latency", func() { cfg.Audio.LowLatency = o.lowLatency })
	set("backend", func() { cfg.Analysis.Backend = o.backend })
	set("window", func() { cfg.Analysis.Window = o.window })
	set("top-k", func() { cfg.Analysis.TopK = o.topK })
	set("positive-first", func() { cfg.Analysis.PositiveFirst = o.positiveFirst })
	set("duration", func() { cfg.Synthesis.Duration = o.duration })
	set("frequency", func() { cfg.Synthesis.ToneFrequency = o.frequency })
	set("play", func() { cfg.Synthesis.Play = o.play })
	set("bit-depth", func() { cfg.Output.BitDepth = o.bitDepth })
	set("websocket", func() { cfg.Transport.WebSocketEnabled = o.websocket })
	set("udp", func() { cfg.Transport.UDPEnabled = o.udp })

	return cfg.Validate()
}
