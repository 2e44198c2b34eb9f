// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

var (
	ErrInvalidDstSize = errors.New("dst size must be multiple of channels")

	// ErrNotFound is returned when an input file does not exist.
	ErrNotFound = errors.New("audio: not found")

	// ErrInvalidArgument covers malformed file names, unsupported
	// extensions, non-positive rates and invalid waveforms.
	ErrInvalidArgument = errors.New("audio: invalid argument")

	// ErrIO wraps underlying read, write and decode failures.
	ErrIO = errors.New("audio: i/o error")
)
