// SPDX-License-Identifier: MIT
package config

import "time"

// Defaults and limits for the analysis and synthesis pipeline.
const (
	DefaultLogLevel        = "info"
	DefaultOutputDevice    = MinDeviceID // System default output device
	DefaultSampleRate      = 44100       // CD-quality audio
	DefaultFramesPerBuffer = 1024
	DefaultBackend         = "gonum"
	DefaultWindow          = "none"
	DefaultTopK            = 5
	DefaultDuration        = 10.0  // Seconds of audio GenerateFromEquation renders
	DefaultToneFrequency   = 440.0 // Hz
	DefaultToneDuration    = 2.0   // Seconds
	DefaultBitDepth        = 16
	DefaultOutputDir       = "."
	DefaultMaxPlotPoints   = 2048
	DefaultWebSocketAddr   = "localhost:8080"
	DefaultUDPTargetAddr   = "127.0.0.1:9090"
	DefaultEnvFile         = ".env"

	MinDeviceID     = -1     // -1 represents system default device
	MinSampleRate   = 8000   // Minimum usable sample rate (Hz)
	MaxSampleRate   = 192000 // Maximum supported sample rate (Hz)
	MaxBufferFrames = 8192   // Maximum frames per buffer (power of 2)
	MaxDuration     = 600.0  // Longest synthesized waveform in seconds
)

// Config represents the main application configuration structure, loaded from YAML.
type Config struct {
	Debug     bool            `yaml:"debug"`             // Enable debug logging.
	LogLevel  string          `yaml:"log_level"`         // Logging level ("debug", "info", "warn", "error").
	Command   string          `yaml:"command,omitempty"` // A one-off command to execute instead of the menu.
	Audio     AudioConfig     `yaml:"audio"`             // Playback settings.
	Analysis  AnalysisConfig  `yaml:"analysis"`          // Spectral decomposition settings.
	Synthesis SynthesisConfig `yaml:"synthesis"`         // Expression rendering settings.
	Output    OutputConfig    `yaml:"output"`            // WAV export settings.
	Transport TransportConfig `yaml:"transport"`         // Plot frame delivery settings.
}

// AudioConfig holds settings related to audio output.
type AudioConfig struct {
	OutputDevice    int  `yaml:"output_device"`     // PortAudio device index for playback (-1 for default).
	SampleRate      int  `yaml:"sample_rate"`       // Sample rate in Hz for synthesized audio.
	FramesPerBuffer int  `yaml:"frames_per_buffer"` // Frames written to the output stream per call.
	LowLatency      bool `yaml:"low_latency"`       // Request low latency settings from PortAudio device.
}

// AnalysisConfig holds settings for the spectral transform and extractor.
type AnalysisConfig struct {
	Backend       string `yaml:"backend"`        // FFT implementation ("gonum" or "godsp").
	Window        string `yaml:"window"`         // Window applied before the transform ("none", "hann", ...).
	TopK          int    `yaml:"top_k"`          // Number of dominant bins considered.
	PositiveFirst bool   `yaml:"positive_first"` // Drop non-positive frequencies before ranking.
}

// SynthesisConfig holds settings for rendering expressions.
type SynthesisConfig struct {
	Duration      float64 `yaml:"duration_seconds"`      // Length of generated waveforms.
	ToneFrequency float64 `yaml:"tone_frequency"`        // Frequency of the test tone.
	ToneDuration  float64 `yaml:"tone_duration_seconds"` // Length of the test tone.
	Play          bool    `yaml:"play"`                  // Play generated waveforms.
}

// OutputConfig holds settings for exported waveforms.
type OutputConfig struct {
	Dir      string `yaml:"dir"`       // Directory for exported WAV files.
	BitDepth int    `yaml:"bit_depth"` // PCM bit depth (16, 24 or 32).
}

// TransportConfig holds settings for sending plot frames.
type TransportConfig struct {
	WebSocketEnabled bool          `yaml:"websocket_enabled"`  // Serve plot frames on /plot.
	WebSocketAddress string        `yaml:"websocket_address"`  // Listen address of the plot server.
	UDPEnabled       bool          `yaml:"udp_enabled"`        // Send spectrum magnitudes over UDP.
	UDPTargetAddress string        `yaml:"udp_target_address"` // Target address and port for UDP packets.
	UDPSendInterval  time.Duration `yaml:"udp_send_interval"`  // Minimum interval between UDP packets.
	MaxPlotPoints    int           `yaml:"max_plot_points"`    // Points per plotted series after decimation.
}

// NewConfig returns a Config populated with the built-in defaults.
func NewConfig() *Config {
	return &Config{
		LogLevel: DefaultLogLevel,
		Audio: AudioConfig{
			OutputDevice:    DefaultOutputDevice,
			SampleRate:      DefaultSampleRate,
			FramesPerBuffer: DefaultFramesPerBuffer,
		},
		Analysis: AnalysisConfig{
			Backend: DefaultBackend,
			Window:  DefaultWindow,
			TopK:    DefaultTopK,
		},
		Synthesis: SynthesisConfig{
			Duration:      DefaultDuration,
			ToneFrequency: DefaultToneFrequency,
			ToneDuration:  DefaultToneDuration,
			Play:          true,
		},
		Output: OutputConfig{
			Dir:      DefaultOutputDir,
			BitDepth: DefaultBitDepth,
		},
		Transport: TransportConfig{
			WebSocketAddress: DefaultWebSocketAddr,
			UDPTargetAddress: DefaultUDPTargetAddr,
			UDPSendInterval:  33 * time.Millisecond,
			MaxPlotPoints:    DefaultMaxPlotPoints,
		},
	}
}
