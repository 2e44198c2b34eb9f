// SPDX-License-Identifier: EPL-2.0

package utils

// ToInt16 maps x, clamped to [-1, 1], to the nearest 16-bit PCM value.
// Full scale is ±32767 on both sides.
func ToInt16[T Float](x T) int16 {
	v := float64(max(min(x, 1), -1)) * 32767

	if v >= 0 {
		return int16(v + 0.5)
	}

	return int16(v - 0.5)
}
