// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"
	"math"
	"time"
)

// Waveform is a fully materialised block of audio.
//
// Samples are stored channel-major: Channels[c][i] is frame i of channel c.
// A mono waveform has exactly one channel slice. Every channel slice has the
// same length.
type Waveform struct {
	SampleRate int
	Channels   [][]float64
}

// NewWaveform allocates a silent waveform of the given shape.
func NewWaveform(sampleRate, channels, frames int) *Waveform {
	w := &Waveform{
		SampleRate: sampleRate,
		Channels:   make([][]float64, channels),
	}
	for c := range w.Channels {
		w.Channels[c] = make([]float64, frames)
	}

	return w
}

// NewMono wraps samples as a single channel waveform. samples is not copied.
func NewMono(sampleRate int, samples []float64) *Waveform {
	return &Waveform{
		SampleRate: sampleRate,
		Channels:   [][]float64{samples},
	}
}

// Validate reports whether w satisfies the waveform invariants: a positive
// sample rate, at least one channel and equal per-channel lengths.
func (w *Waveform) Validate() error {
	if w == nil {
		return fmt.Errorf("%w: nil waveform", ErrInvalidArgument)
	}

	if w.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate must be positive, got %d", ErrInvalidArgument, w.SampleRate)
	}

	if len(w.Channels) == 0 {
		return fmt.Errorf("%w: waveform has no channels", ErrInvalidArgument)
	}

	frames := len(w.Channels[0])
	for c, ch := range w.Channels {
		if len(ch) != frames {
			return fmt.Errorf("%w: channel %d has %d frames, channel 0 has %d",
				ErrInvalidArgument, c, len(ch), frames)
		}
	}

	return nil
}

// NumChannels returns the channel count.
func (w *Waveform) NumChannels() int { return len(w.Channels) }

// Frames returns the number of samples per channel.
func (w *Waveform) Frames() int {
	if len(w.Channels) == 0 {
		return 0
	}

	return len(w.Channels[0])
}

// Duration returns the playback length at the waveform's sample rate.
func (w *Waveform) Duration() time.Duration {
	if w.SampleRate <= 0 {
		return 0
	}

	return time.Duration(float64(w.Frames()) / float64(w.SampleRate) * float64(time.Second))
}

// Clone returns a deep copy of w.
func (w *Waveform) Clone() *Waveform {
	out := &Waveform{
		SampleRate: w.SampleRate,
		Channels:   make([][]float64, len(w.Channels)),
	}
	for c, ch := range w.Channels {
		out.Channels[c] = append([]float64(nil), ch...)
	}

	return out
}

// Mono returns a single channel waveform holding the average of all channels.
// A mono input is deep-copied.
func (w *Waveform) Mono() *Waveform {
	if len(w.Channels) <= 1 {
		return w.Clone()
	}

	frames := w.Frames()
	mono := make([]float64, frames)
	inv := 1 / float64(len(w.Channels))

	for _, ch := range w.Channels {
		for i, v := range ch {
			mono[i] += v
		}
	}
	for i := range mono {
		mono[i] *= inv
	}

	return NewMono(w.SampleRate, mono)
}

// Peak returns the largest absolute sample value across all channels.
func (w *Waveform) Peak() float64 {
	var peak float64
	for _, ch := range w.Channels {
		for _, v := range ch {
			peak = math.Max(peak, math.Abs(v))
		}
	}

	return peak
}

// RMS returns the root-mean-square level across all channels.
func (w *Waveform) RMS() float64 {
	var (
		sum float64
		n   int
	)
	for _, ch := range w.Channels {
		for _, v := range ch {
			sum += v * v
		}
		n += len(ch)
	}
	if n == 0 {
		return 0
	}

	return math.Sqrt(sum / float64(n))
}

// Interleaved returns the samples as interleaved float32 frames.
func (w *Waveform) Interleaved() []float32 {
	channels := len(w.Channels)
	frames := w.Frames()
	out := make([]float32, frames*channels)

	for c, ch := range w.Channels {
		for i, v := range ch {
			out[i*channels+c] = float32(v)
		}
	}

	return out
}

// Source exposes w as a streaming Source of interleaved float32 samples.
func (w *Waveform) Source() Source {
	return &waveformSource{w: w}
}

type waveformSource struct {
	w   *Waveform
	pos int
}

func (s *waveformSource) SampleRate() int { return s.w.SampleRate }
func (s *waveformSource) Channels() int   { return len(s.w.Channels) }
func (s *waveformSource) BufSize() int    { return 4096 }
func (s *waveformSource) Close() error    { return nil }

func (s *waveformSource) ReadSamples(dst []float32) (int, error) {
	channels := len(s.w.Channels)
	if channels == 0 {
		return 0, io.EOF
	}
	if len(dst)%channels != 0 {
		return 0, ErrInvalidDstSize
	}

	frames := s.w.Frames()
	if s.pos >= frames {
		return 0, io.EOF
	}

	n := min(len(dst)/channels, frames-s.pos)
	for f := range n {
		for c, ch := range s.w.Channels {
			dst[f*channels+c] = float32(ch[s.pos+f])
		}
	}
	s.pos += n

	if s.pos >= frames {
		return n * channels, io.EOF
	}

	return n * channels, nil
}

// maxEmptyReads bounds consecutive (0, nil) reads from a misbehaving source.
const maxEmptyReads = 64

// Collect drains src into a Waveform, de-interleaving its channels.
// src is not closed.
func Collect(src Source) (*Waveform, error) {
	channels := src.Channels()
	if channels <= 0 {
		return nil, fmt.Errorf("%w: source reports %d channels", ErrInvalidArgument, channels)
	}
	if src.SampleRate() <= 0 {
		return nil, fmt.Errorf("%w: source reports sample rate %d", ErrInvalidArgument, src.SampleRate())
	}

	size := src.BufSize()
	if size < channels {
		size = 4096
	}
	size -= size % channels
	buf := make([]float32, size)

	w := &Waveform{
		SampleRate: src.SampleRate(),
		Channels:   make([][]float64, channels),
	}

	// Sources may return a trailing partial frame; it is carried over to the
	// next read so that channels stay aligned.
	var (
		pending []float32
		empty   int
	)
	for {
		n, err := src.ReadSamples(buf)
		if n > 0 {
			pending = append(pending, buf[:n]...)
			whole := len(pending) - len(pending)%channels
			for i := 0; i < whole; i += channels {
				for c := range channels {
					w.Channels[c] = append(w.Channels[c], float64(pending[i+c]))
				}
			}
			pending = append(pending[:0], pending[whole:]...)
		}

		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrIO, err)
		}
		if n == 0 {
			empty++
			if empty >= maxEmptyReads {
				return nil, fmt.Errorf("%w: source made no progress after %d reads", ErrIO, empty)
			}
			continue
		}
		empty = 0
	}

	for c := range w.Channels {
		if w.Channels[c] == nil {
			w.Channels[c] = []float64{}
		}
	}

	return w, nil
}
