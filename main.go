// SPDX-License-Identifier: MIT
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"wavemath/cmd"
	"wavemath/internal/app"
	"wavemath/internal/audio"
	"wavemath/internal/config"
	applog "wavemath/internal/log"
	"wavemath/internal/render"
	"wavemath/internal/spectral"
	"wavemath/internal/synth"
	"wavemath/internal/transport"
	"wavemath/internal/transport/udp"
	"wavemath/internal/tui"
	"wavemath/pkg/build"
)

// main is the entry point for the application.
// The program flow is divided into three distinct phases:
//
// 1. Startup Phase:
//   - Initialize build information
//   - Parse command line arguments and load configuration
//   - Initialize PortAudio when the command plays audio or lists devices
//   - Open the plot transports
//
// 2. Run Phase:
//   - Execute a one-off command, or
//   - Run the interactive menu until the user quits
//
// 3. Shutdown Phase:
//   - Handle termination signals
//   - Stop playback, close transports, terminate PortAudio
func main() {
	if err := run(); err != nil {
		applog.Errorf("%v", err)
		applog.Sync()
		os.Exit(1)
	}
}

func run() error {
	// ==================== STARTUP PHASE ====================

	// Initialize build information including version, commit hash, and build time
	if err := build.Initialize(); err != nil {
		return err
	}

	opts, err := cmd.ParseArgs(os.Args[1:])
	if err != nil {
		return err
	}
	// Help or version was printed.
	if !opts.Menu && opts.Command == "" {
		return nil
	}

	cfg, err := config.LoadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}
	if err := opts.Apply(cfg); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	configureLogging(cfg)

	// Setup signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if needsAudio(cfg, opts) {
		if err := audio.Initialize(); err != nil {
			if !opts.Menu {
				return err
			}
			applog.Warnf("Audio output unavailable: %v", err)
		} else {
			defer audio.Terminate()
		}
	}

	if cfg.Command == cmd.CommandDevices {
		return audio.ListDevices(os.Stdout)
	}

	sink, err := openTransports(cfg.Transport)
	if err != nil {
		return err
	}
	defer func() {
		if err := sink.Close(); err != nil {
			applog.Warnf("Error closing transports: %v", err)
		}
	}()

	// ==================== RUN PHASE ====================

	if opts.Menu {
		return runMenu(ctx, cfg, opts, sink)
	}

	a, err := newApp(cfg, opts, sink, os.Stdout)
	if err != nil {
		return err
	}
	defer a.Stop()
	return executeCommand(ctx, a, cfg.Command, opts.Target)
}

// configureLogging applies the configured level. Debug forces debug output.
func configureLogging(cfg *config.Config) {
	level, _ := applog.ParseLevel(cfg.LogLevel)
	if cfg.Debug {
		level = applog.LevelDebug
	}
	applog.SetLevel(level)
}

func needsAudio(cfg *config.Config, opts *cmd.Options) bool {
	switch cfg.Command {
	case cmd.CommandDevices, cmd.CommandPlay, cmd.CommandTone:
		return true
	case cmd.CommandGenerate:
		return cfg.Synthesis.Play
	}
	return opts.Menu
}

// openTransports builds the plot sinks. Frames are always summarized in the
// debug log.
func openTransports(cfg config.TransportConfig) (transport.Transport, error) {
	sinks := transport.Multi{transport.NewLoggingTransport()}

	if cfg.WebSocketEnabled {
		ws, err := transport.NewWebSocketTransport(cfg.WebSocketAddress)
		if err != nil {
			sinks.Close()
			return nil, err
		}
		sinks = append(sinks, ws)
	}

	if cfg.UDPEnabled {
		sender, err := udp.NewUDPSender(cfg.UDPTargetAddress, cfg.UDPSendInterval)
		if err != nil {
			sinks.Close()
			return nil, err
		}
		sinks = append(sinks, sender)
	}
	return sinks, nil
}

func newApp(cfg *config.Config, opts *cmd.Options, sink transport.Transport, out io.Writer) (*app.App, error) {
	backend, err := spectral.ParseBackend(cfg.Analysis.Backend)
	if err != nil {
		return nil, err
	}
	window, err := spectral.ParseWindowFunc(cfg.Analysis.Window)
	if err != nil {
		return nil, err
	}
	sampleRate := uint32(cfg.Audio.SampleRate)

	pipeline := synth.New(
		synth.WithTransformer(spectral.NewTransformer(spectral.WithBackend(backend), spectral.WithWindow(window))),
		synth.WithTopK(cfg.Analysis.TopK),
		synth.WithPositiveFirst(cfg.Analysis.PositiveFirst),
		synth.WithDefaults(cfg.Synthesis.Duration, sampleRate),
	)

	outputPath := opts.OutputPath
	if outputPath != "" && !filepath.IsAbs(outputPath) {
		outputPath = filepath.Join(cfg.Output.Dir, outputPath)
	}

	return app.New(pipeline,
		app.WithPlayer(audio.NewPlayer(cfg.Audio.OutputDevice, cfg.Audio.FramesPerBuffer, cfg.Audio.LowLatency)),
		app.WithPlotter(render.NewPlotter(sink, cfg.Transport.MaxPlotPoints)),
		app.WithLoader(audio.LoadFile),
		app.WithSaver(audio.SaveWAV),
		app.WithOutput(out),
		app.WithSettings(app.Settings{
			ToneFrequency: cfg.Synthesis.ToneFrequency,
			ToneDuration:  cfg.Synthesis.ToneDuration,
			Duration:      cfg.Synthesis.Duration,
			SampleRate:    sampleRate,
			Play:          cfg.Synthesis.Play,
			OutputPath:    outputPath,
			BitDepth:      cfg.Output.BitDepth,
		}),
	), nil
}

// runMenu hands the terminal to the menu. Logs and printed results go to
// --log-file or are discarded while it runs.
func runMenu(ctx context.Context, cfg *config.Config, opts *cmd.Options, sink transport.Transport) error {
	var logOut io.Writer = io.Discard
	if opts.LogFile != "" {
		f, err := os.OpenFile(opts.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	applog.SetOutput(logOut)
	defer applog.SetOutput(os.Stderr)

	a, err := newApp(cfg, opts, sink, logOut)
	if err != nil {
		return err
	}
	defer a.Stop()

	files := tui.Files{Music: opts.MusicFile, Waveform: opts.WaveformFile}
	return tui.Start(ctx, a, files, audio.HostDevices)
}

// executeCommand runs a one-off command.
func executeCommand(ctx context.Context, a *app.App, command, target string) error {
	var err error
	switch command {
	case cmd.CommandPlay:
		err = a.PlayFile(ctx, target)
	case cmd.CommandTone:
		err = a.PlayTone(ctx)
	case cmd.CommandAnalyze:
		_, err = a.Analyze(target)
	case cmd.CommandEquation:
		_, err = a.ComputeEquation(target)
	case cmd.CommandGenerate:
		_, err = a.Generate(ctx, target)
	default:
		err = fmt.Errorf("unknown command %q", command)
	}
	if ctx.Err() != nil {
		applog.Infof("Interrupted")
		return nil
	}
	return err
}
