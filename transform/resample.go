// SPDX-License-Identifier: EPL-2.0

package transform

import (
	"fmt"

	"github.com/ik5/audpipe/audio"
	resampling "github.com/tphakala/go-audio-resampling"
)

// Resample converts w to targetRate. The result has exactly
// OutputLength(w.Frames(), w.SampleRate, targetRate) frames on every
// channel. When the rates already match, a copy of w is returned.
func Resample(w *audio.Waveform, targetRate int, opts ...Option) (*audio.Waveform, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	if targetRate <= 0 {
		return nil, fmt.Errorf("%w: target sample rate must be positive, got %d", audio.ErrInvalidArgument, targetRate)
	}
	if targetRate == w.SampleRate {
		return w.Clone(), nil
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	outLen := OutputLength(w.Frames(), w.SampleRate, targetRate)

	switch cfg.engine {
	case EngineSinc:
		k := newSincKernel(cfg.zeroCrossings, cfg.kaiserBeta)
		ratio := float64(targetRate) / float64(w.SampleRate)

		out := &audio.Waveform{SampleRate: targetRate, Channels: make([][]float64, w.NumChannels())}
		for c, ch := range w.Channels {
			out.Channels[c] = k.resample(ch, ratio, outLen)
		}

		return out, nil
	case EngineSoxr:
		return resampleSoxr(w, targetRate, outLen)
	case EngineCubic:
		return resampleCubic(w, targetRate, outLen)
	default:
		return nil, fmt.Errorf("%w: unknown resampling engine %v", audio.ErrInvalidArgument, cfg.engine)
	}
}

// OutputLength is round(frames * targetRate / sourceRate), halves rounding up.
func OutputLength(frames, sourceRate, targetRate int) int {
	if sourceRate <= 0 || frames <= 0 {
		return 0
	}

	return int((2*int64(frames)*int64(targetRate) + int64(sourceRate)) / (2 * int64(sourceRate)))
}

// soxrTail is extra silence fed after the signal, in seconds of input, so
// that the filter delay line is flushed.
const soxrTail = 0.25

func resampleSoxr(w *audio.Waveform, targetRate, outLen int) (*audio.Waveform, error) {
	out := &audio.Waveform{SampleRate: targetRate, Channels: make([][]float64, w.NumChannels())}
	tail := int(soxrTail*float64(w.SampleRate)) + 1

	for c, ch := range w.Channels {
		r, err := resampling.New(&resampling.Config{
			InputRate:  float64(w.SampleRate),
			OutputRate: float64(targetRate),
			Channels:   1,
			Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
		})
		if err != nil {
			return nil, fmt.Errorf("%w: creating soxr resampler for %d -> %d Hz: %w",
				audio.ErrInvalidArgument, w.SampleRate, targetRate, err)
		}

		input := make([]float64, len(ch)+tail)
		copy(input, ch)

		res, err := r.Process(input)
		if err != nil {
			return nil, fmt.Errorf("%w: soxr resample: %w", audio.ErrIO, err)
		}

		out.Channels[c] = fitLength(res, outLen)
	}

	return out, nil
}

func resampleCubic(w *audio.Waveform, targetRate, outLen int) (*audio.Waveform, error) {
	res, err := audio.Collect(audio.NewResampler(w.Source(), targetRate))
	if err != nil {
		return nil, fmt.Errorf("cubic resample: %w", err)
	}

	for c := range res.Channels {
		res.Channels[c] = fitLength(res.Channels[c], outLen)
	}

	return res, nil
}

// fitLength truncates or zero-pads x to n samples.
func fitLength(x []float64, n int) []float64 {
	if len(x) >= n {
		return x[:n:n]
	}

	out := make([]float64, n)
	copy(out, x)

	return out
}
