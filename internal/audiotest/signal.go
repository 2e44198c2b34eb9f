// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/ik5/audpipe/audio"
	"github.com/ik5/audpipe/formats/wav"
)

// Sine returns a waveform carrying the same sine of the given frequency and
// amplitude on every channel.
func Sine(sampleRate, channels, frames int, frequency, amplitude float64) *audio.Waveform {
	w := audio.NewWaveform(sampleRate, channels, frames)
	for i := range frames {
		v := amplitude * math.Sin(2*math.Pi*frequency*float64(i)/float64(sampleRate))
		for c := range channels {
			w.Channels[c][i] = v
		}
	}

	return w
}

// Constant returns a waveform whose every sample equals value.
func Constant(sampleRate, channels, frames int, value float64) *audio.Waveform {
	w := audio.NewWaveform(sampleRate, channels, frames)
	for c := range w.Channels {
		for i := range w.Channels[c] {
			w.Channels[c][i] = value
		}
	}

	return w
}

// Frequency estimates the fundamental of samples by counting rising zero
// crossings. It is only meaningful for clean periodic signals.
func Frequency(samples []float64, sampleRate int) float64 {
	if len(samples) < 2 {
		return 0
	}

	var (
		first, last = -1.0, -1.0
		crossings   int
	)
	for i := 1; i < len(samples); i++ {
		if samples[i-1] < 0 && samples[i] >= 0 {
			// Linear interpolation of the crossing point.
			x := float64(i-1) + samples[i-1]/(samples[i-1]-samples[i])
			if first < 0 {
				first = x
			}
			last = x
			crossings++
		}
	}
	if crossings < 2 {
		return 0
	}

	return float64(crossings-1) * float64(sampleRate) / (last - first)
}

// WAVBytes renders w as a 16-bit WAV held in memory.
func WAVBytes(tb testing.TB, w *audio.Waveform) []byte {
	tb.Helper()

	buf := new(bytes.Buffer)
	if err := wav.WriteWAV16(buf, w.SampleRate, w.NumChannels(), wav.PCM16(w)); err != nil {
		tb.Fatalf("audiotest: rendering wav: %v", err)
	}

	return buf.Bytes()
}

// WriteWAV writes w as a 16-bit WAV at dir/name and returns the path.
func WriteWAV(tb testing.TB, dir, name string, w *audio.Waveform) string {
	tb.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		tb.Fatalf("audiotest: %v", err)
	}

	f, err := os.Create(path)
	if err != nil {
		tb.Fatalf("audiotest: %v", err)
	}
	defer f.Close()

	if err := wav.Encode(f, w); err != nil {
		tb.Fatalf("audiotest: encoding %s: %v", path, err)
	}

	return path
}
