// SPDX-License-Identifier: MIT
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	applog "wavemath/internal/log"
	"wavemath/internal/spectral"
	"wavemath/pkg/bitint"
)

// LoadConfig loads configuration from a YAML file specified by path. If path is empty,
// it searches default locations ("config.yaml"). If no file is found, it uses built-in
// defaults. A ".env" file in the working directory is then loaded into the process
// environment, ENV_* overrides are applied, and the final configuration is validated.
func LoadConfig(path string) (*Config, error) {
	cfg := NewConfig()

	if path == "" {
		for _, candidate := range []string{"config.yaml", "config.yml"} {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := loadEnvFile(DefaultEnvFile); err != nil {
		return nil, err
	}

	// Apply environment variable overrides AFTER loading from file.
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadEnvFile populates the process environment from a dotenv file. Variables
// already set in the environment win. A missing file is not an error.
func loadEnvFile(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// Validate reports the first setting outside its supported range.
func (c *Config) Validate() error {
	if _, ok := applog.ParseLevel(c.LogLevel); !ok {
		return fmt.Errorf("log_level %q is not one of debug, info, warn, error", c.LogLevel)
	}

	// Audio Validation
	if c.Audio.OutputDevice < MinDeviceID {
		return fmt.Errorf("audio.output_device %d must be >= %d", c.Audio.OutputDevice, MinDeviceID)
	}
	if c.Audio.SampleRate < MinSampleRate || c.Audio.SampleRate > MaxSampleRate {
		return fmt.Errorf("audio.sample_rate %d out of range [%d, %d]", c.Audio.SampleRate, MinSampleRate, MaxSampleRate)
	}
	if !bitint.IsPowerOfTwo(c.Audio.FramesPerBuffer) || c.Audio.FramesPerBuffer > MaxBufferFrames {
		return fmt.Errorf("audio.frames_per_buffer %d must be a power of two <= %d (nearest: %d)",
			c.Audio.FramesPerBuffer, MaxBufferFrames, min(bitint.NextPowerOfTwo(c.Audio.FramesPerBuffer), MaxBufferFrames))
	}

	// Analysis Validation
	if _, err := spectral.ParseBackend(c.Analysis.Backend); err != nil {
		return fmt.Errorf("analysis.backend: %w", err)
	}
	if _, err := spectral.ParseWindowFunc(c.Analysis.Window); err != nil {
		return fmt.Errorf("analysis.window: %w", err)
	}
	if c.Analysis.TopK < 1 {
		return fmt.Errorf("analysis.top_k %d must be at least 1", c.Analysis.TopK)
	}

	// Synthesis Validation
	if !validDuration(c.Synthesis.Duration) {
		return fmt.Errorf("synthesis.duration_seconds %v out of range (0, %v]", c.Synthesis.Duration, MaxDuration)
	}
	if !validDuration(c.Synthesis.ToneDuration) {
		return fmt.Errorf("synthesis.tone_duration_seconds %v out of range (0, %v]", c.Synthesis.ToneDuration, MaxDuration)
	}
	nyquist := float64(c.Audio.SampleRate) / 2
	if c.Synthesis.ToneFrequency <= 0 || c.Synthesis.ToneFrequency >= nyquist {
		return fmt.Errorf("synthesis.tone_frequency %v must be in (0, %v)", c.Synthesis.ToneFrequency, nyquist)
	}

	// Output Validation
	switch c.Output.BitDepth {
	case 16, 24, 32:
	default:
		return fmt.Errorf("output.bit_depth %d must be 16, 24 or 32", c.Output.BitDepth)
	}

	// Transport Validation
	if c.Transport.WebSocketEnabled && c.Transport.WebSocketAddress == "" {
		return errors.New("transport.websocket_address must be set when the websocket is enabled")
	}
	if c.Transport.UDPEnabled {
		if c.Transport.UDPTargetAddress == "" {
			return errors.New("transport.udp_target_address must be set when UDP is enabled")
		}
		if c.Transport.UDPSendInterval < 0 {
			return errors.New("transport.udp_send_interval must not be negative")
		}
	}
	if c.Transport.MaxPlotPoints < 2 {
		return fmt.Errorf("transport.max_plot_points %d must be at least 2", c.Transport.MaxPlotPoints)
	}

	return nil
}

func validDuration(d float64) bool {
	return d > 0 && d <= MaxDuration && !math.IsNaN(d)
}

// applyEnvOverrides replaces settings with ENV_* variables when they are set
// and parse; unparsable values are logged and ignored.
func (c *Config) applyEnvOverrides() {
	// ENV_{...}
	// These are general overrides.
	envBool("ENV_DEBUG", &c.Debug)
	envString("ENV_LOG_LEVEL", &c.LogLevel)

	// ENV_AUDIO_{...}
	envInt("ENV_OUTPUT_DEVICE", &c.Audio.OutputDevice)
	envInt("ENV_SAMPLE_RATE", &c.Audio.SampleRate)
	envInt("ENV_FRAMES_PER_BUFFER", &c.Audio.FramesPerBuffer)

	// ENV_FFT_{...}
	envString("ENV_FFT_BACKEND", &c.Analysis.Backend)
	envString("ENV_FFT_WINDOW", &c.Analysis.Window)
	envInt("ENV_TOP_K", &c.Analysis.TopK)
	envBool("ENV_POSITIVE_FIRST", &c.Analysis.PositiveFirst)

	// ENV_SYNTH_{...}
	envFloat("ENV_DURATION", &c.Synthesis.Duration)
	envFloat("ENV_TONE_FREQUENCY", &c.Synthesis.ToneFrequency)

	// ENV_WS_{...} and ENV_UDP_{...}
	// These are specific to the transport layer.
	envBool("ENV_WS_ENABLED", &c.Transport.WebSocketEnabled)
	envString("ENV_WS_ADDRESS", &c.Transport.WebSocketAddress)
	envBool("ENV_UDP_ENABLED", &c.Transport.UDPEnabled)
	envString("ENV_UDP_TARGET_ADDRESS", &c.Transport.UDPTargetAddress)
	if val, ok := os.LookupEnv("ENV_UDP_SEND_INTERVAL"); ok {
		if dur, err := time.ParseDuration(val); err == nil {
			c.Transport.UDPSendInterval = dur
			applog.Debugf("configuration: overriding transport.udp_send_interval from env: %s", dur)
		} else {
			applog.Warnf("configuration: ignoring ENV_UDP_SEND_INTERVAL=%q: %v", val, err)
		}
	}
}

func envString(key string, dst *string) {
	if val, ok := os.LookupEnv(key); ok {
		*dst = val
		applog.Debugf("configuration: overriding %s from env: %s", key, val)
	}
}

func envBool(key string, dst *bool) {
	envParse(key, dst, strconv.ParseBool)
}

func envInt(key string, dst *int) {
	envParse(key, dst, strconv.Atoi)
}

func envFloat(key string, dst *float64) {
	envParse(key, dst, func(s string) (float64, error) { return strconv.ParseFloat(s, 64) })
}

func envParse[T any](key string, dst *T, parse func(string) (T, error)) {
	val, ok := os.LookupEnv(key)
	if !ok {
		return
	}
	v, err := parse(val)
	if err != nil {
		applog.Warnf("configuration: ignoring %s=%q: %v", key, val, err)
		return
	}
	*dst = v
	applog.Debugf("configuration: overriding %s from env: %v", key, v)
}
