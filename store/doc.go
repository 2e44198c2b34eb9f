// SPDX-License-Identifier: EPL-2.0

// Package store reads and writes waveforms under a data directory.
//
// A Store is rooted at an explicit directory; input names are resolved
// beneath <root>/data and may not escape it. Path checks are pure functions
// separate from decoding:
//
//	s, err := store.New(".")
//	path, err := s.Resolve("speech.wav")     // pure
//	err = store.CheckReadable(path)           // stat only
//	w, err := s.Load("speech.wav", 16000)     // decode and resample
//	err = s.Write("out.wav", w)               // 16-bit PCM
package store
