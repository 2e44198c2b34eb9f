// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes uncompressed AIFF files via github.com/go-audio/aiff.
//
// Sample sizes of 8, 16, 24 and 32 bits are accepted. Non-seekable readers
// are buffered in memory first, as go-audio needs to seek between chunks.
package aiff
