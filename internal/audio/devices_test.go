// SPDX-License-Identifier: MIT
package audio

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/gordonklaus/portaudio"

	"wavemath/internal/signal"
)

func setupPortAudio(t *testing.T) {
	t.Helper()
	if err := Initialize(); err != nil {
		t.Skipf("PortAudio unavailable: %v", err)
	}
	t.Cleanup(func() {
		if err := Terminate(); err != nil {
			t.Fatalf("Failed to terminate PortAudio: %v", err)
		}
	})
}

func mockDevices(t *testing.T, devices []*portaudio.DeviceInfo, err error) {
	t.Helper()
	orig := paLibDevicesFunc
	t.Cleanup(func() { paLibDevicesFunc = orig })
	paLibDevicesFunc = func() ([]*portaudio.DeviceInfo, error) {
		return devices, err
	}
}

var fakeDevices = []*portaudio.DeviceInfo{
	{
		Name:                     "Built-in Microphone",
		MaxInputChannels:         2,
		DefaultSampleRate:        48000,
		DefaultLowInputLatency:   3 * time.Millisecond,
		DefaultHighInputLatency:  12 * time.Millisecond,
		DefaultLowOutputLatency:  0,
		DefaultHighOutputLatency: 0,
	},
	{
		Name:                     "Built-in Output",
		MaxOutputChannels:        2,
		DefaultSampleRate:        44100,
		DefaultLowOutputLatency:  5 * time.Millisecond,
		DefaultHighOutputLatency: 20 * time.Millisecond,
	},
	{
		Name:              "USB Interface",
		MaxInputChannels:  4,
		MaxOutputChannels: 4,
		DefaultSampleRate: 96000,
	},
}

func TestHostDevices(t *testing.T) {
	mockDevices(t, fakeDevices, nil)

	devices, err := HostDevices()
	if err != nil {
		t.Fatalf("HostDevices error: %v", err)
	}
	if len(devices) != len(fakeDevices) {
		t.Fatalf("got %d devices, want %d", len(devices), len(fakeDevices))
	}
	for i, d := range devices {
		if d.ID != i {
			t.Errorf("Device ID mismatch: got %d, want %d", d.ID, i)
		}
		if d.Name != fakeDevices[i].Name {
			t.Errorf("Device %d name = %q, want %q", i, d.Name, fakeDevices[i].Name)
		}
		if d.DefaultSampleRate <= 0 {
			t.Errorf("Device %d has invalid sample rate: %f", i, d.DefaultSampleRate)
		}
	}
}

func TestHostDevices_System(t *testing.T) {
	setupPortAudio(t)

	devices, err := HostDevices()
	if err != nil {
		t.Fatalf("HostDevices error: %v", err)
	}
	if len(devices) == 0 {
		t.Skip("No audio devices found on system")
	}
	for i, d := range devices {
		if d.ID != i {
			t.Errorf("Device ID mismatch: got %d, want %d", d.ID, i)
		}
		if d.Name == "" {
			t.Errorf("Device %d has empty name", i)
		}
	}
}

func TestHostDevices_paDevicesError(t *testing.T) {
	orig := paDevicesFunc
	defer func() { paDevicesFunc = orig }()
	paDevicesFunc = func() ([]*portaudio.DeviceInfo, error) {
		return nil, fmt.Errorf("mock error")
	}

	_, err := HostDevices()
	if err == nil || !strings.Contains(err.Error(), "mock error") {
		t.Errorf("expected mock error, got %v", err)
	}
}

func TestOutputDevice(t *testing.T) {
	mockDevices(t, fakeDevices, nil)

	orig := paLibDefaultOutputDeviceFunc
	defer func() { paLibDefaultOutputDeviceFunc = orig }()
	paLibDefaultOutputDeviceFunc = func() (*portaudio.DeviceInfo, error) {
		return fakeDevices[1], nil
	}

	if dev, err := OutputDevice(-1); err != nil || dev.Name != "Built-in Output" {
		t.Errorf("OutputDevice(-1) = %v, %v; want default output", dev, err)
	}
	if dev, err := OutputDevice(2); err != nil || dev.Name != "USB Interface" {
		t.Errorf("OutputDevice(2) = %v, %v", dev, err)
	}

	tests := []struct {
		name   string
		id     int
		substr string
	}{
		{"Negative ID", -2, "invalid device ID"},
		{"Too high ID", len(fakeDevices) + 10, "invalid device ID"},
		{"Non-output device", 0, "does not support output"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := OutputDevice(tt.id)
			if err == nil {
				t.Errorf("Expected error for ID %d", tt.id)
			} else if !strings.Contains(err.Error(), tt.substr) {
				t.Errorf("Error = %q, want substring %q", err.Error(), tt.substr)
			}
		})
	}
}

func TestOutputDevice_paDevicesError(t *testing.T) {
	orig := paDevicesFunc
	defer func() { paDevicesFunc = orig }()
	paDevicesFunc = func() ([]*portaudio.DeviceInfo, error) {
		return nil, fmt.Errorf("mock error")
	}

	_, err := OutputDevice(-1)
	if err == nil || !strings.Contains(err.Error(), "mock error") {
		t.Errorf("expected mock error, got %v", err)
	}
}

func TestOutputDevice_paDefaultOutputDeviceError(t *testing.T) {
	mockDevices(t, fakeDevices, nil)

	orig := paLibDefaultOutputDeviceFunc
	defer func() { paLibDefaultOutputDeviceFunc = orig }()
	paLibDefaultOutputDeviceFunc = func() (*portaudio.DeviceInfo, error) {
		return nil, fmt.Errorf("mock default output error")
	}

	_, err := OutputDevice(-1)
	if err == nil || !strings.Contains(err.Error(), "mock default output error") {
		t.Errorf("expected mock error, got %v", err)
	}
}

func TestListDevices(t *testing.T) {
	mockDevices(t, fakeDevices, nil)

	var out bytes.Buffer
	if err := ListDevices(&out); err != nil {
		t.Fatalf("ListDevices error: %v", err)
	}

	for _, want := range []string{
		"Available Audio Devices",
		"[0] Built-in Microphone (Input)",
		"[1] Built-in Output (Output)",
		"[2] USB Interface (Input/Output)",
		"Default sample rate: 96000 Hz",
		"Output latency: Low=5.00ms, High=20.00ms",
	} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("ListDevices output missing %q:\n%s", want, out.String())
		}
	}
}

func TestErrorInitialize(t *testing.T) {
	orig := paLibInitialize
	defer func() { paLibInitialize = orig }()

	paLibInitialize = func() error { return nil }
	if err := Initialize(); err != nil {
		t.Errorf("expected nil, got %v", err)
	}

	paLibInitialize = func() error { return fmt.Errorf("mock init error") }
	if err := Initialize(); err == nil || !strings.Contains(err.Error(), "mock init error") {
		t.Errorf("expected mock init error, got %v", err)
	}
}

func TestErrorTerminate(t *testing.T) {
	orig := paLibTerminate
	defer func() { paLibTerminate = orig }()

	paLibTerminate = func() error { return nil }
	if err := Terminate(); err != nil {
		t.Errorf("expected nil, got %v", err)
	}

	paLibTerminate = func() error { return fmt.Errorf("mock term error") }
	if err := Terminate(); err == nil || !strings.Contains(err.Error(), "mock term error") {
		t.Errorf("expected mock term error, got %v", err)
	}
}

func TestNilDevices(t *testing.T) {
	mockDevices(t, nil, nil)

	devices, err := paDevices()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if devices == nil {
		t.Errorf("expected empty slice, got nil")
	}
	if len(devices) != 0 {
		t.Errorf("expected length 0, got %d", len(devices))
	}
}

func TestPortAudioNotInitialized(t *testing.T) {
	mockDevices(t, nil, fmt.Errorf("PortAudio not initialized"))

	devices, err := paDevices()
	if err == nil || !strings.Contains(err.Error(), "PortAudio not initialized") {
		t.Errorf("expected 'PortAudio not initialized' error, got %v", err)
	}
	if devices != nil {
		t.Errorf("expected devices to be nil on error, got %v", devices)
	}
}

func TestPlayRejectsEmptyBuffer(t *testing.T) {
	p := NewPlayer(-1, 256, false)
	if err := p.Play(context.Background(), signal.Buffer{}); err != signal.ErrInvalidInput {
		t.Errorf("Play(empty) = %v, want ErrInvalidInput", err)
	}
}

func TestPlayDeviceError(t *testing.T) {
	mockDevices(t, fakeDevices, nil)

	buf, err := signal.New([]float64{0, 0.5, -0.5}, 8000)
	if err != nil {
		t.Fatal(err)
	}
	p := NewPlayer(0, 256, false)
	err = p.Play(context.Background(), buf)
	if err == nil || !strings.Contains(err.Error(), "does not support output") {
		t.Errorf("Play on input-only device = %v", err)
	}
}

func TestFillFrame(t *testing.T) {
	dst := []float32{9, 9, 9, 9, 9}
	fillFrame(dst, []float64{0.25, -2, 3})

	want := []float32{0.25, -1, 1, 0, 0}
	for i := range want {
		if dst[i] != want[i] {
			t.Errorf("dst[%d] = %v, want %v", i, dst[i], want[i])
		}
	}

	fillFrame(dst[:2], []float64{0.5, 0.5, 0.5})
	if dst[0] != 0.5 || dst[1] != 0.5 || dst[2] != 1 {
		t.Errorf("fillFrame wrote past dst: %v", dst)
	}
}

func TestDeviceKind(t *testing.T) {
	tests := []struct {
		in, out int
		want    string
		canPlay bool
	}{
		{2, 0, "Input", false},
		{0, 2, "Output", true},
		{4, 4, "Input/Output", true},
		{0, 0, "", false},
	}
	for _, tt := range tests {
		d := Device{MaxInputChannels: tt.in, MaxOutputChannels: tt.out}
		if got := d.Kind(); got != tt.want {
			t.Errorf("Kind(%d in, %d out) = %q, want %q", tt.in, tt.out, got, tt.want)
		}
		if got := d.CanPlay(); got != tt.canPlay {
			t.Errorf("CanPlay(%d in, %d out) = %v, want %v", tt.in, tt.out, got, tt.canPlay)
		}
	}
}

func TestListDevicesMarksOutputs(t *testing.T) {
	mockDevices(t, fakeDevices, nil)

	var out bytes.Buffer
	if err := ListDevices(&out); err != nil {
		t.Fatal(err)
	}
	text := out.String()
	if !strings.Contains(text, "*[1] Built-in Output") || !strings.Contains(text, " [0] Built-in Microphone") {
		t.Errorf("output devices not marked:\n%s", text)
	}
	if strings.Count(text, "Output latency") != 2 {
		t.Errorf("latency should only be listed for output devices:\n%s", text)
	}
}
