// SPDX-License-Identifier: EPL-2.0

// Package transform holds the waveform stages of the pipeline: sample rate
// conversion, gain and tempo change with optional pitch shift.
//
// Every function takes an *audio.Waveform and returns a new one; inputs are
// never modified. Invalid arguments are reported with audio.ErrInvalidArgument.
//
//	w, err := transform.Resample(w, 16000)
//	w = transform.ApplyVolume(w, 0.5)
//	w, err = transform.ApplyTempo(w, 2.0, false)
package transform
