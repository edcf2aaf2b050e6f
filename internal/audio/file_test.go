// SPDX-License-Identifier: MIT
package audio

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"wavemath/internal/signal"
	"wavemath/pkg/utils"
)

func TestSaveAndLoadWAV(t *testing.T) {
	const rate = 8000
	samples := utils.GenerateSineWave(rate/2, rate, 440, 0.5, 0)
	buf, err := signal.New(samples, rate)
	if err != nil {
		t.Fatal(err)
	}

	for _, bitDepth := range []int{16, 24, 32} {
		t.Run(fmt.Sprintf("%dbit", bitDepth), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "tone.wav")
			if err := SaveWAV(path, buf, bitDepth); err != nil {
				t.Fatalf("SaveWAV(%d): %v", bitDepth, err)
			}

			got, err := LoadFile(path)
			if err != nil {
				t.Fatalf("LoadFile: %v", err)
			}
			if got.Len() != buf.Len() {
				t.Fatalf("Len = %d, want %d", got.Len(), buf.Len())
			}
			if got.SampleRate() != rate {
				t.Errorf("SampleRate = %d, want %d", got.SampleRate(), rate)
			}

			tolerance := 2 / math.Pow(2, float64(bitDepth-1))
			for i := range samples {
				if d := math.Abs(got.At(i) - samples[i]); d > tolerance {
					t.Fatalf("sample %d = %v, want %v (diff %v > %v)", i, got.At(i), samples[i], d, tolerance)
				}
			}
		})
	}
}

func TestSaveWAVClamps(t *testing.T) {
	buf, err := signal.New([]float64{2, -2, 0}, 8000)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "clip.wav")
	if err := SaveWAV(path, buf, 16); err != nil {
		t.Fatal(err)
	}
	got, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.At(0) < 0.999 || got.At(1) > -0.999 || got.At(2) != 0 {
		t.Errorf("clamped samples = %v", got.Samples())
	}
}

func TestSaveWAVErrors(t *testing.T) {
	buf, err := signal.New([]float64{0.1}, 8000)
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()

	if err := SaveWAV(filepath.Join(dir, "a.wav"), signal.Buffer{}, 16); !errors.Is(err, signal.ErrInvalidInput) {
		t.Errorf("empty buffer: got %v", err)
	}
	if err := SaveWAV(filepath.Join(dir, "b.wav"), buf, 12); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("bit depth 12: got %v", err)
	}
	if err := SaveWAV(filepath.Join(dir, "missing", "c.wav"), buf, 16); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing directory: got %v", err)
	}
}

func TestLoadWAVStereoMixdown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stereo.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	enc := wav.NewEncoder(f, 22050, 16, 2, 1)
	frames := []int{16384, 8192, -16384, -8192, 0, 32767}
	if err := enc.Write(&audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 2, SampleRate: 22050},
		Data:           frames,
		SourceBitDepth: 16,
	}); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}
	f.Close()

	buf, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if buf.Len() != 3 || buf.SampleRate() != 22050 {
		t.Fatalf("got %d samples at %d Hz", buf.Len(), buf.SampleRate())
	}
	want := []float64{0.375, -0.375, 32767.0 / 65536}
	for i, w := range want {
		if math.Abs(buf.At(i)-w) > 1e-9 {
			t.Errorf("sample %d = %v, want %v", i, buf.At(i), w)
		}
	}
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadFile(filepath.Join(dir, "song.flac")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("flac: got %v", err)
	}
	if _, err := LoadFile(filepath.Join(dir, "absent.wav")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file: got %v", err)
	}

	garbage := filepath.Join(dir, "garbage.wav")
	if err := os.WriteFile(garbage, []byte("this is not a RIFF file"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(garbage); !errors.Is(err, ErrInvalidWAV) {
		t.Errorf("garbage wav: got %v", err)
	}

	badMP3 := filepath.Join(dir, "garbage.mp3")
	if err := os.WriteFile(badMP3, []byte("ID"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(badMP3); err == nil {
		t.Error("garbage mp3: expected error")
	}
}

func TestMixdown(t *testing.T) {
	got := mixdown([]int{2, 4, 6, 8, 10}, 2, func(v int) float64 { return float64(v) })
	want := []float64{3, 7}
	if len(got) != len(want) {
		t.Fatalf("mixdown len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("mixdown[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}
