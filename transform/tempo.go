// SPDX-License-Identifier: EPL-2.0

package transform

import (
	"fmt"
	"math"

	"github.com/ik5/audpipe/audio"
)

// semitonesPerRate is the fixed pitch heuristic: each unit of tempo rate
// away from 1 shifts pitch by ten semitones.
const semitonesPerRate = 10

// MaxFrames is the longest channel ApplyTempo will produce. Rates that would
// stretch a waveform, or its pitch-shift pass, beyond it are rejected.
const MaxFrames = math.MaxInt32

// ApplyTempo changes playback speed by rate without changing pitch: the
// result has round(frames/rate) frames at the same sample rate. rate 1 is
// the identity. With shiftPitch set, the stretched signal is additionally
// pitch shifted by PitchSteps(rate) semitones at constant length.
func ApplyTempo(w *audio.Waveform, rate float64, shiftPitch bool) (*audio.Waveform, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	if rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return nil, fmt.Errorf("%w: tempo rate must be a positive finite number, got %v", audio.ErrInvalidArgument, rate)
	}
	if rate == 1 {
		return w.Clone(), nil
	}

	steps := PitchSteps(rate)
	frames, err := stretchLength(w.Frames(), rate)
	if err != nil {
		return nil, err
	}
	if shiftPitch && steps != 0 {
		if _, err := stretchLength(frames, pitchFactor(steps)); err != nil {
			return nil, err
		}
	}

	s, err := newSTFT(fftSize, hopSize)
	if err != nil {
		return nil, err
	}

	cfg := defaultConfig()
	k := newSincKernel(cfg.zeroCrossings, cfg.kaiserBeta)

	out := &audio.Waveform{SampleRate: w.SampleRate, Channels: make([][]float64, w.NumChannels())}
	for c, ch := range w.Channels {
		y, err := timeStretch(s, ch, rate)
		if err != nil {
			return nil, err
		}

		if shiftPitch && steps != 0 {
			if y, err = pitchShift(s, k, y, steps); err != nil {
				return nil, err
			}
		}

		out.Channels[c] = y
	}

	return out, nil
}

// PitchSteps returns the semitone shift paired with a tempo rate:
// rate*10-10 above 1, -(10-rate*10) below 1 and 0 at 1. The result is not
// clamped; rate 3 gives 20 semitones.
func PitchSteps(rate float64) float64 {
	if rate == 1 {
		return 0
	}

	return rate*semitonesPerRate - semitonesPerRate
}

// stretchLength is round(frames/rate), rejected when it does not fit in
// MaxFrames.
func stretchLength(frames int, rate float64) (int, error) {
	n := math.Round(float64(frames) / rate)
	if math.IsNaN(n) || n > MaxFrames {
		return 0, fmt.Errorf("%w: stretching %d frames by rate %v exceeds %d frames",
			audio.ErrInvalidArgument, frames, rate, MaxFrames)
	}

	return int(n), nil
}

func pitchFactor(steps float64) float64 { return math.Pow(2, -steps/12) }

func timeStretch(s *stft, x []float64, rate float64) ([]float64, error) {
	length, err := stretchLength(len(x), rate)
	if err != nil {
		return nil, err
	}
	if len(x) == 0 || length == 0 {
		return make([]float64, length), nil
	}

	spec, err := s.analyze(x)
	if err != nil {
		return nil, err
	}

	return s.synthesize(phaseVocoder(spec, rate, s.hop, s.size), length)
}

// pitchShift moves x by steps semitones keeping its length: stretch by
// 2^(-steps/12), then resample by the same factor.
func pitchShift(s *stft, k *sincKernel, x []float64, steps float64) ([]float64, error) {
	factor := pitchFactor(steps)

	stretched, err := timeStretch(s, x, factor)
	if err != nil {
		return nil, err
	}

	return k.resample(stretched, factor, len(x)), nil
}
