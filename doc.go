// SPDX-License-Identifier: EPL-2.0

// Package audpipe loads a sound file, adjusts its volume and tempo and hands
// the result to a speech recognizer or writes it back to disk.
//
// # Supported Formats
//
// Input files are decoded by extension:
//   - WAV (PCM 16/24/32-bit) via formats/wav
//   - MP3 via formats/mp3
//   - Ogg Vorbis via formats/vorbis
//   - AIFF via formats/aiff
//
// Output is always 16-bit PCM WAV.
//
// # Pipeline
//
// A Pipeline runs its stages strictly in order:
//
//	load (with resample) -> volume -> tempo
//
// Only load is mandatory; volume and tempo run when the TransformRequest
// sets them. Every stage returns a new waveform and the first failure aborts
// the run.
//
//	st, _ := store.New(".")
//	p := audpipe.New(st, audpipe.WithRecognizer(rec))
//
//	text, err := p.Transcribe(ctx, "speech.wav", audpipe.TransformRequest{
//		Volume: audpipe.Float(0.8),
//		Speed:  audpipe.Float(1.25),
//	}, "en")
//
// Transcribe delivers mono samples at the recognizer's rate (16000 Hz for
// whisper). Export writes the final waveform at the output rate, 22050 Hz
// unless WithOutputSampleRate says otherwise.
//
// # Observers
//
// An Observer sees the waveform after each stage. None is installed by
// default; package inspect provides a table observer for diagnostics.
//
// See the store, transform and recognize subpackages for the individual
// components.
package audpipe
