// SPDX-License-Identifier: EPL-2.0

package utils

// Float is the sample type accepted by the helpers in this package.
type Float interface {
	~float32 | ~float64
}

// CatmullRom evaluates the Catmull-Rom spline through four consecutive
// samples at x in [0, 1]: x == 0 yields y1 and x == 1 yields y2.
func CatmullRom[T Float](y0, y1, y2, y3, x T) T {
	a := (3*(y1-y2) + y3 - y0) / 2
	b := y0 - (5*y1-4*y2+y3)/2
	c := (y2 - y0) / 2

	return ((a*x+b)*x+c)*x + y1
}
