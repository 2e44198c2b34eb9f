// SPDX-License-Identifier: EPL-2.0

package utils

// PCMScale returns the divisor that maps signed integer PCM of the given bit
// depth into [-1, 1). It returns 0 for depths it does not know.
func PCMScale(bitDepth int) float32 {
	switch bitDepth {
	case 8:
		return 128.0
	case 16:
		return 32768.0
	case 24:
		return 8388608.0
	case 32:
		return 2147483648.0
	default:
		return 0
	}
}
