// SPDX-License-Identifier: MIT
package audio

import (
	"context"
	"errors"
	"fmt"

	"github.com/gordonklaus/portaudio"

	"wavemath/internal/config"
	applog "wavemath/internal/log"
	"wavemath/internal/signal"
)

// Player writes mono buffers to a PortAudio output device using blocking I/O.
type Player struct {
	deviceID        int
	framesPerBuffer int
	lowLatency      bool
}

// NewPlayer returns a Player for the given output device (-1 selects the
// system default).
func NewPlayer(deviceID, framesPerBuffer int, lowLatency bool) *Player {
	if framesPerBuffer <= 0 {
		framesPerBuffer = config.DefaultFramesPerBuffer
	}
	return &Player{
		deviceID:        deviceID,
		framesPerBuffer: framesPerBuffer,
		lowLatency:      lowLatency,
	}
}

// Play blocks until buf has been written to the device or ctx is done.
// PortAudio must be initialized.
func (p *Player) Play(ctx context.Context, buf signal.Buffer) error {
	if buf.IsZero() {
		return signal.ErrInvalidInput
	}

	device, err := OutputDevice(p.deviceID)
	if err != nil {
		return err
	}
	latency := device.DefaultHighOutputLatency
	if p.lowLatency {
		latency = device.DefaultLowOutputLatency
	}

	out := make([]float32, p.framesPerBuffer)
	params := portaudio.StreamParameters{
		Output: portaudio.StreamDeviceParameters{
			Channels: 1,
			Device:   device,
			Latency:  latency,
		},
		FramesPerBuffer: len(out),
		SampleRate:      float64(buf.SampleRate()),
	}

	stream, err := portaudio.OpenStream(params, out)
	if err != nil {
		return fmt.Errorf("failed to open output stream: %w", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return fmt.Errorf("failed to start output stream: %w", err)
	}

	applog.Debugf("audio: playing %d samples at %d Hz on %s", buf.Len(), buf.SampleRate(), device.Name)

	samples := buf.Samples()
	for offset := 0; offset < len(samples); offset += len(out) {
		if err := ctx.Err(); err != nil {
			if abortErr := stream.Abort(); abortErr != nil {
				applog.Warnf("audio: failed to abort output stream: %v", abortErr)
			}
			return err
		}

		fillFrame(out, samples[offset:])
		if err := stream.Write(); err != nil {
			if errors.Is(err, portaudio.OutputUnderflowed) {
				applog.Debugf("audio: output underflow at sample %d", offset)
				continue
			}
			stream.Abort()
			return fmt.Errorf("failed to write output stream: %w", err)
		}
	}

	if err := stream.Stop(); err != nil {
		return fmt.Errorf("failed to stop output stream: %w", err)
	}
	return nil
}

// fillFrame copies src into dst as float32 clamped to [-1, 1] and zero
// pads the remainder.
func fillFrame(dst []float32, src []float64) {
	n := copy32(dst, src)
	clear(dst[n:])
}

func copy32(dst []float32, src []float64) int {
	n := min(len(dst), len(src))
	for i := range n {
		dst[i] = float32(max(-1, min(1, src[i])))
	}
	return n
}
