// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"

	"github.com/ik5/audpipe/utils"
)

// Resampler streams from src to a target sample rate using Catmull-Rom cubic
// interpolation. It works on interleaved samples and preserves the channel
// count. When downsampling, a one-pole low-pass smooths the input first.
// The first output frame is the first source frame.
//
// The output length of a full drain is approximately
// frames*dstRate/srcRate; callers that need an exact length trim or pad.
type Resampler struct {
	src      Source
	dstRate  int
	step     float64 // source frames advanced per output frame
	channels int

	// window holds 4 consecutive source frames: t-1, t0, t+1, t+2.
	window [4][]float32
	filled [4]bool
	primed bool

	// frac is the fractional position between window[1] and window[2].
	frac float64

	frameBuf []float32
	eof      bool

	lowpass  bool
	lpPrimed bool
	alpha    float32
	lpMemory []float32
}

// lowpassAlpha is the coefficient of the one-pole smoother applied when
// downsampling.
const lowpassAlpha = 0.5

func NewResampler(src Source, dstRate int) *Resampler {
	channels := src.Channels()
	step := float64(src.SampleRate()) / float64(dstRate)

	r := &Resampler{
		src:      src,
		dstRate:  dstRate,
		step:     step,
		channels: channels,
		frameBuf: make([]float32, channels),
		lowpass:  step > 1.0,
		alpha:    lowpassAlpha,
		lpMemory: make([]float32, channels),
	}

	for i := range r.window {
		r.window[i] = make([]float32, channels)
	}

	return r
}

func (r *Resampler) SampleRate() int { return r.dstRate }
func (r *Resampler) Channels() int   { return r.channels }
func (r *Resampler) BufSize() int    { return r.src.BufSize() }

func (r *Resampler) Close() error {
	if err := r.src.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// readFrame reads exactly one source frame into dst. It reports false at the
// end of the stream. The low-pass memory starts at the first frame to avoid
// a warm-up transient.
func (r *Resampler) readFrame(dst []float32) (bool, error) {
	if r.eof {
		return false, nil
	}

	n, err := r.src.ReadSamples(r.frameBuf)
	if err == io.EOF {
		r.eof = true
	} else if err != nil {
		return false, fmt.Errorf("%w", err)
	}

	if n < r.channels {
		return false, nil
	}

	copy(dst, r.frameBuf)
	if r.lowpass {
		if !r.lpPrimed {
			copy(r.lpMemory, r.frameBuf)
			r.lpPrimed = true
		}
		for c := range r.channels {
			dst[c] = r.alpha*dst[c] + (1-r.alpha)*r.lpMemory[c]
			r.lpMemory[c] = dst[c]
		}
	}

	return true, nil
}

// prime loads the first three source frames into window[1:]. window[0] has
// no predecessor and is treated as a copy of window[1].
func (r *Resampler) prime() error {
	r.primed = true

	for i := 1; i < len(r.window); i++ {
		ok, err := r.readFrame(r.window[i])
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		r.filled[i] = true
	}

	return nil
}

// advance shifts the window by one source frame and reports whether the
// new interpolation interval window[1]..window[2] is complete.
func (r *Resampler) advance() (bool, error) {
	oldest := r.window[0]
	copy(r.window[:3], r.window[1:])
	copy(r.filled[:3], r.filled[1:])
	r.window[3] = oldest

	ok, err := r.readFrame(r.window[3])
	if err != nil {
		return false, err
	}
	r.filled[3] = ok

	return r.filled[1] && r.filled[2], nil
}

// ReadSamples produces interleaved samples at the target rate.
// dst length must be a multiple of the channel count.
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	if !r.primed {
		if err := r.prime(); err != nil {
			return 0, err
		}
	}
	if !r.filled[1] {
		return 0, io.EOF
	}

	written := 0
	want := len(dst) / r.channels

	for written < want {
		for r.frac >= 1.0 {
			r.frac -= 1.0
			ok, err := r.advance()
			if err != nil {
				return written * r.channels, err
			}
			if !ok {
				return written * r.channels, io.EOF
			}
		}

		if !r.filled[1] || !r.filled[2] {
			return written * r.channels, io.EOF
		}

		x := float32(r.frac)
		out := dst[written*r.channels : (written+1)*r.channels]
		for c := range r.channels {
			y1 := r.window[1][c]
			y2 := r.window[2][c]
			y0, y3 := y1, y2
			if r.filled[0] {
				y0 = r.window[0][c]
			}
			if r.filled[3] {
				y3 = r.window[3][c]
			}
			out[c] = utils.CatmullRom(y0, y1, y2, y3, x)
		}

		written++
		r.frac += r.step
	}

	return written * r.channels, nil
}
