// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MPEG-1 Layer III audio through
// github.com/hajimehoshi/go-mp3.
//
// The decoder always reports two channels; mono files are duplicated by
// go-mp3. Samples are float32 in [-1, 1).
package mp3
