package gaussian

import (
	"fmt"
	"sync"

	"gonum.org/v1/gonum/mat"
)

// Blurrer applies separable Gaussian blurs to float64 images.
//
// Borders are handled by replicating the edge sample (clamp-to-edge). The
// output is always a freshly allocated matrix with the dimensions of the
// input; the input is never written to.
type Blurrer struct {
	// Workers is the number of goroutines each pass is split across.
	// Values below 2 run the convolution on the calling goroutine.
	Workers int
}

// Blur convolves src with a Gaussian of the given kernel length and sigma
// using a single goroutine.
func Blur(src *mat.Dense, length int, sigma float64) (*mat.Dense, error) {
	return Blurrer{Workers: 1}.Blur(src, length, sigma)
}

// Blur convolves src with a Gaussian of the given kernel length and sigma,
// first along rows and then along columns.
func (b Blurrer) Blur(src *mat.Dense, length int, sigma float64) (*mat.Dense, error) {
	if src == nil || src.IsEmpty() {
		return nil, fmt.Errorf("%w: empty source image", ErrInvalidKernel)
	}
	k, err := Kernel(length, sigma)
	if err != nil {
		return nil, err
	}

	rows, cols := src.Dims()
	in := src.RawMatrix()
	weights := taps(k)
	column := taps(k.Transposed())
	half := len(weights) / 2

	// Horizontal pass: src -> tmp.
	tmp := make([]float64, rows*cols)
	parallelFor(rows, b.Workers, func(start, end int) {
		for y := start; y < end; y++ {
			row := in.Data[y*in.Stride : y*in.Stride+cols]
			dst := tmp[y*cols : (y+1)*cols]
			for x := 0; x < cols; x++ {
				var sum float64
				for i, w := range weights {
					sum += w * row[clamp(x+i-half, cols)]
				}
				dst[x] = sum
			}
		}
	})

	// Vertical pass: tmp -> out.
	out := make([]float64, rows*cols)
	parallelFor(cols, b.Workers, func(start, end int) {
		for x := start; x < end; x++ {
			for y := 0; y < rows; y++ {
				var sum float64
				for i, w := range column {
					sum += w * tmp[clamp(y+i-half, rows)*cols+x]
				}
				out[y*cols+x] = sum
			}
		}
	})

	return mat.NewDense(rows, cols, out), nil
}

// clamp maps i into [0, n).
func clamp(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// parallelFor splits [0, n) into contiguous chunks and runs fn on each chunk
// in its own goroutine.
func parallelFor(n, workers int, fn func(start, end int)) {
	if workers < 2 || n < 2 {
		fn(0, n)
		return
	}
	if workers > n {
		workers = n
	}
	chunk := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			fn(start, end)
		}(start, end)
	}
	wg.Wait()
}
