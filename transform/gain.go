// SPDX-License-Identifier: EPL-2.0

package transform

import (
	"github.com/cwbudde/algo-vecmath"
	"github.com/ik5/audpipe/audio"
)

// ApplyVolume multiplies every sample by factor. No clamping takes place,
// so factors above 1 may leave [-1, 1]; the writer clamps on output.
// A nil waveform yields nil.
func ApplyVolume(w *audio.Waveform, factor float64) *audio.Waveform {
	if w == nil {
		return nil
	}

	out := &audio.Waveform{
		SampleRate: w.SampleRate,
		Channels:   make([][]float64, len(w.Channels)),
	}

	for c, ch := range w.Channels {
		out.Channels[c] = make([]float64, len(ch))
		vecmath.ScaleBlock(out.Channels[c], ch, factor)
	}

	return out
}
