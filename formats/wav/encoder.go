// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"
	"github.com/ik5/audpipe/audio"
	"github.com/ik5/audpipe/utils"
)

const encodeChunkFrames = 8192

// Encode writes w as 16-bit PCM WAV with all of its channels. Samples are
// clamped to [-1, 1]. The header is finalised on return, so ws must be
// seekable.
func Encode(ws io.WriteSeeker, w *audio.Waveform) error {
	if err := w.Validate(); err != nil {
		return err
	}

	channels := w.NumChannels()
	enc := gowav.NewEncoder(ws, w.SampleRate, 16, channels, formatPCM)

	buf := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: channels,
			SampleRate:  w.SampleRate,
		},
		SourceBitDepth: 16,
	}

	frames := w.Frames()
	data := make([]int, min(frames, encodeChunkFrames)*channels)

	// The first Write emits the header, so an empty waveform still gets one.
	for start := 0; start == 0 || start < frames; start += encodeChunkFrames {
		end := min(start+encodeChunkFrames, frames)
		buf.Data = data[:(end-start)*channels]

		for c, ch := range w.Channels {
			for i, v := range ch[start:end] {
				buf.Data[i*channels+c] = int(utils.ToInt16(v))
			}
		}

		if err := enc.Write(buf); err != nil {
			return fmt.Errorf("writing wav pcm: %w", err)
		}
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalising wav: %w", err)
	}

	return nil
}

// PCM16 interleaves w into 16-bit PCM samples.
func PCM16(w *audio.Waveform) []int16 {
	samples := w.Interleaved()
	out := make([]int16, len(samples))
	for i, v := range samples {
		out[i] = utils.ToInt16(v)
	}

	return out
}
