// SPDX-License-Identifier: EPL-2.0

package transform

import "math"

const (
	// cutoffScale keeps the passband edge slightly below Nyquist.
	cutoffScale = 0.95
	windowTable = 2048
)

// sincKernel evaluates a Kaiser-windowed sinc at arbitrary offsets. The
// window is tabulated once since i0 is costly.
type sincKernel struct {
	zeroCrossings int
	table         []float64
}

func newSincKernel(zeroCrossings int, beta float64) *sincKernel {
	table := make([]float64, windowTable+1)
	for i := range table {
		table[i] = kaiser(float64(i)/windowTable, beta)
	}

	return &sincKernel{zeroCrossings: zeroCrossings, table: table}
}

// window returns the Kaiser window at |x| in [0, 1], 0 outside.
func (k *sincKernel) window(x float64) float64 {
	if x >= 1 {
		return 0
	}

	pos := x * windowTable
	i := int(pos)
	frac := pos - float64(i)

	return k.table[i]*(1-frac) + k.table[i+1]*frac
}

// resample converts in by ratio (output rate / input rate) into exactly
// outLen samples. Output sample j sits at input position j/ratio. Weights
// are normalised per output sample so DC passes with unit gain, including
// at the edges where the kernel is truncated.
func (k *sincKernel) resample(in []float64, ratio float64, outLen int) []float64 {
	out := make([]float64, outLen)
	if len(in) == 0 {
		return out
	}

	fc := math.Min(1, ratio) * cutoffScale
	half := float64(k.zeroCrossings) / fc

	for j := range out {
		t := float64(j) / ratio
		lo := max(0, int(math.Ceil(t-half)))
		hi := min(len(in)-1, int(math.Floor(t+half)))

		var acc, wsum float64
		for n := lo; n <= hi; n++ {
			x := float64(n) - t
			h := sinc(fc*x) * k.window(math.Abs(x)/half)
			acc += in[n] * h
			wsum += h
		}

		if math.Abs(wsum) > 1e-12 {
			out[j] = acc / wsum
		}
	}

	return out
}

func sinc(x float64) float64 {
	if math.Abs(x) < 1e-12 {
		return 1
	}

	pix := math.Pi * x

	return math.Sin(pix) / pix
}

// kaiser is the Kaiser window at normalised distance x in [0, 1] from the
// centre.
func kaiser(x, beta float64) float64 {
	if beta == 0 {
		return 1
	}

	return i0(beta*math.Sqrt(math.Max(0, 1-x*x))) / i0(beta)
}

func i0(x float64) float64 {
	// Power series approximation.
	sum := 1.0
	term := 1.0

	x2 := (x * x) / 4
	for k := 1; k < 64; k++ {
		term *= x2 / float64(k*k)

		sum += term
		if term < 1e-16*sum {
			break
		}
	}

	return sum
}
