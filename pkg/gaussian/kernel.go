// Package gaussian implements the Gaussian blur used to build a scale space:
// kernel sizing, 1-D kernel generation and separable convolution of float64
// images.
package gaussian

import (
	"errors"
	"fmt"
	"math"

	"github.com/anthonynsimon/bild/convolution"
)

// ErrInvalidKernel is returned when a blur is requested with a kernel length
// or sigma the convolution cannot honour.
var ErrInvalidKernel = errors.New("gaussian: invalid kernel")

// KernelLength returns the odd kernel length used for a Gaussian of the
// given sigma: a half-width of round(3*sigma) on each side of the centre tap.
func KernelLength(sigma float64) int {
	return 2*int(math.Floor(3*sigma+0.5)) + 1
}

// Kernel returns a normalized 1-D Gaussian kernel of the given odd length.
// The kernel is laid out horizontally (Width == length, Height == 1).
// A zero sigma yields the identity kernel.
func Kernel(length int, sigma float64) (*convolution.Kernel, error) {
	if err := validate(length, sigma); err != nil {
		return nil, err
	}

	k := convolution.NewKernel(length, 1)
	half := length / 2
	if sigma == 0 {
		k.Matrix[half] = 1
		return k, nil
	}

	factor := -0.5 / (sigma * sigma)
	for i := 0; i < length; i++ {
		x := float64(i - half)
		k.Matrix[i] = math.Exp(factor * x * x)
	}
	return k.Normalized().(*convolution.Kernel), nil
}

// taps returns the weights of a 1-D kernel along its long axis, whichever
// way it is laid out.
func taps(k convolution.Matrix) []float64 {
	if k.MaxY() == 1 {
		out := make([]float64, k.MaxX())
		for x := range out {
			out[x] = k.At(x, 0)
		}
		return out
	}
	out := make([]float64, k.MaxY())
	for y := range out {
		out[y] = k.At(0, y)
	}
	return out
}

func validate(length int, sigma float64) error {
	if length < 1 || length%2 == 0 {
		return fmt.Errorf("%w: length %d is not a positive odd number", ErrInvalidKernel, length)
	}
	if math.IsNaN(sigma) || math.IsInf(sigma, 0) || sigma < 0 {
		return fmt.Errorf("%w: sigma %g is not a finite non-negative number", ErrInvalidKernel, sigma)
	}
	return nil
}
