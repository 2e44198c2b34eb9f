// SPDX-License-Identifier: EPL-2.0

// Package recognize defines the speech recognition collaborator that
// consumes the final waveform of a pipeline run.
//
// A Recognizer receives mono float32 samples at its own SampleRate and
// returns an opaque transcript. Two implementations live here: Server,
// which talks to a whisper.cpp whisper-server over HTTP, and Nop. The
// whispercpp subpackage runs the model in-process through the whisper.cpp
// bindings when built with the whispercpp tag.
package recognize
