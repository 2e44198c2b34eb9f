// SPDX-License-Identifier: EPL-2.0

// Package audio provides the sample containers and low-level streaming
// primitives shared by the decoders and transforms.
//
// Two representations coexist. A Source streams interleaved float32 samples
// in [-1, 1] and is what format decoders produce:
//
//	type Source interface {
//	    SampleRate() int
//	    Channels() int
//	    ReadSamples(dst []float32) (int, error)
//	    BufSize() int
//	    Close() error
//	}
//
// A Waveform is a fully decoded signal stored channel-major as float64.
// Collect turns a Source into a Waveform and Waveform.Source goes the other
// way, so streaming stages such as Resampler and MonoMixer can be applied to
// either.
//
// # Format Registry
//
// Registry maps file extensions to decoders:
//
//	registry := audio.NewRegistry()
//	registry.Register("wav", wav.Decoder{})
//	decoder, ok := registry.ForPath("/data/input.wav")
//
// # Errors
//
// ReadSamples returns io.EOF once the stream is exhausted; the final data
// may arrive together with io.EOF. The sentinel errors ErrNotFound,
// ErrInvalidArgument and ErrIO classify failures across the module and are
// matched with errors.Is.
package audio
