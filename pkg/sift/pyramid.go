package sift

import (
	"gonum.org/v1/gonum/mat"
)

// Level is one blurred image of the scale space together with the total
// blur it carries relative to the original signal.
type Level struct {
	// Sigma is the absolute Gaussian scale of Image, not the incremental
	// blur applied to produce it.
	Sigma float64

	// Image is the blurred image.
	Image *mat.Dense
}

// Octave is a group of levels sharing one resolution, ordered by
// increasing Sigma.
type Octave struct {
	// Index is the octave number o; level 0 sits at sigma0 * 2^o.
	Index int

	// Width and Height are the column and row counts of every level.
	Width  int
	Height int

	Levels []Level
}

// Pyramid is the scale space produced by a detector run. It is owned by the
// caller; the detector keeps no reference to it.
type Pyramid struct {
	Octaves []Octave
}

// NumLevels returns the total number of levels across all octaves.
func (p *Pyramid) NumLevels() int {
	n := 0
	for _, o := range p.Octaves {
		n += len(o.Levels)
	}
	return n
}

// Downsample halves an image by keeping the samples at even row and column
// indices. The result has ceil(rows/2) x ceil(cols/2) samples.
func Downsample(m *mat.Dense) *mat.Dense {
	rows, cols := m.Dims()
	outRows, outCols := (rows+1)/2, (cols+1)/2

	out := mat.NewDense(outRows, outCols, nil)
	for y := 0; y < outRows; y++ {
		for x := 0; x < outCols; x++ {
			out.Set(y, x, m.At(2*y, 2*x))
		}
	}
	return out
}
