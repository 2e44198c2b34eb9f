// SPDX-License-Identifier: EPL-2.0

// Package whispercpp runs whisper.cpp in-process through its Go bindings.
//
// The bindings need cgo with libwhisper.a and whisper.h reachable through
// LIBRARY_PATH and C_INCLUDE_PATH. Build with -tags whispercpp to enable
// them; without the tag New returns recognize.ErrNotAvailable.
package whispercpp
