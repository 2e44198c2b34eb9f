// SPDX-License-Identifier: EPL-2.0

package transform

import (
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"
)

const (
	fftSize = 2048
	hopSize = fftSize / 4
)

// stft is a centred short-time Fourier transform with a periodic Hann
// window. Frames hold the fftSize/2+1 non-negative frequency bins.
type stft struct {
	size, hop int
	plan      *algofft.Plan[complex128]
	window    []float64
	// invScale corrects whatever normalisation the inverse transform applies.
	invScale float64

	segment  []float64
	windowed []float64
	spectrum []complex128
	frame    []complex128
}

func newSTFT(size, hop int) (*stft, error) {
	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return nil, fmt.Errorf("stft: creating %d point plan: %w", size, err)
	}

	window := make([]float64, size)
	for i := range window {
		window[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(size))
	}

	s := &stft{
		size:     size,
		hop:      hop,
		plan:     plan,
		window:   window,
		segment:  make([]float64, size),
		windowed: make([]float64, size),
		spectrum: make([]complex128, size),
		frame:    make([]complex128, size),
	}

	// An impulse must survive a round trip unchanged.
	s.spectrum[0] = 1
	if err := plan.Forward(s.spectrum, s.spectrum); err != nil {
		return nil, fmt.Errorf("stft: forward FFT failed: %w", err)
	}
	if err := plan.Inverse(s.frame, s.spectrum); err != nil {
		return nil, fmt.Errorf("stft: inverse FFT failed: %w", err)
	}
	s.invScale = 1 / real(s.frame[0])

	return s, nil
}

func (s *stft) bins() int { return s.size/2 + 1 }

// frames returns the frame count of a centred transform of n samples.
func (s *stft) frames(n int) int { return 1 + n/s.hop }

// analyze returns the spectrogram of x, one slice of bins per frame. x is
// zero padded by size/2 on both sides so frame t is centred on x[t*hop].
func (s *stft) analyze(x []float64) ([][]complex128, error) {
	pad := s.size / 2
	out := make([][]complex128, s.frames(len(x)))

	for t := range out {
		start := t*s.hop - pad
		for i := range s.segment {
			idx := start + i
			if idx >= 0 && idx < len(x) {
				s.segment[i] = x[idx]
			} else {
				s.segment[i] = 0
			}
		}

		vecmath.MulBlock(s.windowed, s.segment, s.window)
		for i, v := range s.windowed {
			s.spectrum[i] = complex(v, 0)
		}

		if err := s.plan.Forward(s.spectrum, s.spectrum); err != nil {
			return nil, fmt.Errorf("stft: forward FFT failed: %w", err)
		}

		out[t] = append([]complex128(nil), s.spectrum[:s.bins()]...)
	}

	return out, nil
}

// synthesize inverts a spectrogram by weighted overlap-add and returns
// exactly length samples, undoing the centring padding of analyze.
func (s *stft) synthesize(spec [][]complex128, length int) ([]float64, error) {
	pad := s.size / 2
	total := s.size + s.hop*max(len(spec)-1, 0)
	y := make([]float64, total)
	norm := make([]float64, total)
	half := s.size / 2

	for t, bins := range spec {
		// Rebuild the Hermitian spectrum of a real frame.
		copy(s.spectrum, bins)
		s.spectrum[0] = complex(real(s.spectrum[0]), 0)
		s.spectrum[half] = complex(real(s.spectrum[half]), 0)
		for k := 1; k < half; k++ {
			v := bins[k]
			s.spectrum[s.size-k] = complex(real(v), -imag(v))
		}

		if err := s.plan.Inverse(s.frame, s.spectrum); err != nil {
			return nil, fmt.Errorf("stft: inverse FFT failed: %w", err)
		}

		pos := t * s.hop
		for i, w := range s.window {
			y[pos+i] += real(s.frame[i]) * s.invScale * w
			norm[pos+i] += w * w
		}
	}

	out := make([]float64, length)
	for i := range out {
		idx := i + pad
		if idx >= total {
			break
		}
		if norm[idx] > 1e-10 {
			out[i] = y[idx] / norm[idx]
		}
	}

	return out, nil
}

// phaseVocoder resamples the frames of spec in time by rate, keeping the
// instantaneous frequency of every bin. rate > 1 yields fewer frames.
func phaseVocoder(spec [][]complex128, rate float64, hop, size int) [][]complex128 {
	if len(spec) == 0 {
		return nil
	}

	bins := len(spec[0])
	steps := int(math.Ceil(float64(len(spec)) / rate))
	out := make([][]complex128, steps)

	// Expected phase advance of each bin over one hop.
	advance := make([]float64, bins)
	for k := range advance {
		advance[k] = 2 * math.Pi * float64(hop) * float64(k) / float64(size)
	}

	phase := make([]float64, bins)
	for k, v := range spec[0] {
		phase[k] = math.Atan2(imag(v), real(v))
	}

	re0, im0 := make([]float64, bins), make([]float64, bins)
	re1, im1 := make([]float64, bins), make([]float64, bins)
	mag0, mag1 := make([]float64, bins), make([]float64, bins)
	silent := make([]complex128, bins)

	column := func(i int) []complex128 {
		if i < len(spec) {
			return spec[i]
		}
		return silent
	}

	for t := range out {
		pos := float64(t) * rate
		i := int(pos)
		alpha := pos - float64(i)
		c0, c1 := column(i), column(i+1)

		for k := range bins {
			re0[k], im0[k] = real(c0[k]), imag(c0[k])
			re1[k], im1[k] = real(c1[k]), imag(c1[k])
		}
		vecmath.Magnitude(mag0, re0, im0)
		vecmath.Magnitude(mag1, re1, im1)

		frame := make([]complex128, bins)
		for k := range bins {
			mag := (1-alpha)*mag0[k] + alpha*mag1[k]
			frame[k] = complex(mag*math.Cos(phase[k]), mag*math.Sin(phase[k]))

			delta := math.Atan2(im1[k], re1[k]) - math.Atan2(im0[k], re0[k]) - advance[k]
			delta -= 2 * math.Pi * math.Round(delta/(2*math.Pi))
			phase[k] += advance[k] + delta
		}
		out[t] = frame
	}

	return out
}
