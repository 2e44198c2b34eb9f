// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis audio.
//
// The stream is decoded with github.com/jfreymuth/oggvorbis, which already
// yields float32 samples, so no conversion takes place.
package vorbis
