package utils

import "testing"

func TestPCMScale(t *testing.T) {
	t.Parallel()

	tests := []struct {
		bits int
		want float32
	}{
		{8, 128},
		{16, 32768},
		{24, 8388608},
		{32, 2147483648},
		{12, 0},
		{0, 0},
	}

	for _, tt := range tests {
		if got := PCMScale(tt.bits); got != tt.want {
			t.Errorf("PCMScale(%d) = %v, want %v", tt.bits, got, tt.want)
		}
	}
}
