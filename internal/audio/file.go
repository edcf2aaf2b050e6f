// SPDX-License-Identifier: MIT
package audio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/mdobak/go-xerrors"

	applog "wavemath/internal/log"
	"wavemath/internal/signal"
)

var (
	// ErrUnsupportedFormat is returned for files that are neither WAV nor MP3.
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	// ErrInvalidWAV is returned when a file does not carry a PCM WAV stream.
	ErrInvalidWAV = errors.New("invalid WAV file")
)

// wavPCMFormat is the WAVE_FORMAT_PCM tag.
const wavPCMFormat = 1

// LoadFile decodes a .wav or .mp3 file into a mono buffer at the file's
// native sample rate. Multi-channel input is averaged.
func LoadFile(path string) (signal.Buffer, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".wav" && ext != ".mp3" {
		return signal.Buffer{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return signal.Buffer{}, xerrors.New(fmt.Errorf("failed to open audio file: %w", err))
	}
	defer f.Close()

	var buf signal.Buffer
	if ext == ".wav" {
		buf, err = LoadWAV(f)
	} else {
		buf, err = LoadMP3(f)
	}
	if err != nil {
		return signal.Buffer{}, fmt.Errorf("%s: %w", path, err)
	}

	applog.Debugf("audio: loaded %s (%d samples, %d Hz, %s)", path, buf.Len(), buf.SampleRate(), buf.Duration())
	return buf, nil
}

// LoadWAV decodes a PCM WAV stream of any bit depth.
func LoadWAV(r io.ReadSeeker) (signal.Buffer, error) {
	decoder := wav.NewDecoder(r)
	if !decoder.IsValidFile() {
		return signal.Buffer{}, ErrInvalidWAV
	}
	if decoder.WavAudioFormat != wavPCMFormat {
		return signal.Buffer{}, fmt.Errorf("%w: audio format %d is not PCM", ErrUnsupportedFormat, decoder.WavAudioFormat)
	}

	pcm, err := decoder.FullPCMBuffer()
	if err != nil {
		return signal.Buffer{}, xerrors.New(fmt.Errorf("could not read PCM buffer: %w", err))
	}

	bitDepth := int(decoder.BitDepth)
	scale := float64(int(1) << (bitDepth - 1))
	offset := 0.0
	if bitDepth == 8 {
		// 8-bit PCM is unsigned.
		offset = scale
	}

	samples := mixdown(pcm.Data, pcm.Format.NumChannels, func(v int) float64 {
		return (float64(v) - offset) / scale
	})
	return signal.New(samples, uint32(pcm.Format.SampleRate))
}

// LoadMP3 decodes an MP3 stream. The decoder always yields 16-bit
// little-endian stereo.
func LoadMP3(r io.Reader) (signal.Buffer, error) {
	decoder, err := mp3.NewDecoder(r)
	if err != nil {
		return signal.Buffer{}, xerrors.New(fmt.Errorf("could not decode MP3 stream: %w", err))
	}
	raw, err := io.ReadAll(decoder)
	if err != nil {
		return signal.Buffer{}, xerrors.New(fmt.Errorf("could not read MP3 frames: %w", err))
	}

	const channels, bytesPerSample = 2, 2
	ints := make([]int, len(raw)/bytesPerSample)
	for i := range ints {
		ints[i] = int(int16(uint16(raw[2*i]) | uint16(raw[2*i+1])<<8))
	}
	samples := mixdown(ints, channels, func(v int) float64 {
		return float64(v) / 32768
	})
	return signal.New(samples, uint32(decoder.SampleRate()))
}

// mixdown averages interleaved frames to mono, dropping a trailing partial frame.
func mixdown(interleaved []int, channels int, scale func(int) float64) []float64 {
	if channels < 1 {
		channels = 1
	}
	frames := len(interleaved) / channels
	out := make([]float64, frames)
	for i := range out {
		var sum float64
		for c := range channels {
			sum += scale(interleaved[i*channels+c])
		}
		out[i] = sum / float64(channels)
	}
	return out
}

// SaveWAV writes buf as mono PCM at bitDepth bits. Samples are clamped to [-1, 1].
func SaveWAV(path string, buf signal.Buffer, bitDepth int) error {
	if buf.IsZero() {
		return signal.ErrInvalidInput
	}
	switch bitDepth {
	case 16, 24, 32:
	default:
		return fmt.Errorf("%w: bit depth %d", ErrUnsupportedFormat, bitDepth)
	}

	file, err := os.Create(path)
	if err != nil {
		return xerrors.New(fmt.Errorf("output file creation error: %w", err))
	}

	encoder := wav.NewEncoder(file, int(buf.SampleRate()), bitDepth, 1, wavPCMFormat)

	peak := float64(int(1)<<(bitDepth-1) - 1)
	data := make([]int, buf.Len())
	for i, v := range buf.Samples() {
		data[i] = int(max(-1, min(1, v)) * peak)
	}
	pcm := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  int(buf.SampleRate()),
		},
		Data:           data,
		SourceBitDepth: bitDepth,
	}

	if err := encoder.Write(pcm); err != nil {
		file.Close()
		return xerrors.New(fmt.Errorf("data writing error: %w", err))
	}
	if err := encoder.Close(); err != nil {
		file.Close()
		return xerrors.New(fmt.Errorf("failed to finalize WAV header: %w", err))
	}
	if err := file.Close(); err != nil {
		return xerrors.New(err)
	}

	applog.Debugf("audio: wrote %s (%d samples, %d-bit)", path, buf.Len(), bitDepth)
	return nil
}
