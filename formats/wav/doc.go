// SPDX-License-Identifier: EPL-2.0

// Package wav decodes and encodes PCM WAV files.
//
// Decoding goes through github.com/go-audio/wav and accepts 16, 24 and
// 32-bit integer PCM of any channel count:
//
//	src, err := wav.Decoder{}.Decode(file)
//	w, err := audio.Collect(src)
//
// Two writers exist. Encode writes a Waveform to a seekable destination
// (a file) through the go-audio encoder. WriteWAV16 writes pre-converted
// int16 PCM to any io.Writer with a fixed 44-byte header, which is what a
// multipart upload needs.
//
// Output is always 16-bit. Samples outside [-1, 1] are clamped.
package wav
