// Package normalize rescales image intensities to the canonical [0,1] range.
package normalize

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ErrInvalidInput is returned for images that cannot be normalized: constant
// images (zero dynamic range) and images holding NaN or infinite samples.
var ErrInvalidInput = errors.New("normalize: invalid input image")

// Normalize returns a copy of m shifted and scaled so that its minimum is 0
// and its maximum is 1. The input is left untouched.
//
// A constant image has no range to scale by and is rejected with
// ErrInvalidInput rather than returned unchanged.
func Normalize(m mat.Matrix) (*mat.Dense, error) {
	if m == nil {
		return nil, fmt.Errorf("%w: nil image", ErrInvalidInput)
	}
	r, c := m.Dims()
	if r == 0 || c == 0 {
		return nil, fmt.Errorf("%w: empty image", ErrInvalidInput)
	}

	out := mat.DenseCopyOf(m)
	data := out.RawMatrix().Data

	for i, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: non-finite sample at index %d", ErrInvalidInput, i)
		}
	}

	lo := floats.Min(data)
	hi := floats.Max(data)
	if hi == lo {
		return nil, fmt.Errorf("%w: constant image (value %g)", ErrInvalidInput, lo)
	}

	// Dividing (rather than scaling by the reciprocal) maps the maximum to
	// exactly 1.
	span := hi - lo
	if math.IsInf(span, 0) {
		// The range overflows; halve everything first so that neither the
		// span nor any shifted sample can.
		floats.Scale(0.5, data)
		lo, hi = lo/2, hi/2
		span = hi - lo
	}
	floats.AddConst(-lo, data)
	for i := range data {
		data[i] /= span
	}
	return out, nil
}
