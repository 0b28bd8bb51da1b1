// Package imageio moves grayscale images between files and float64
// matrices. Samples are 16-bit luminance scaled to [0,1].
package imageio

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"math"
	"os"
	"path/filepath"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"gonum.org/v1/gonum/mat"

	"scalespace/pkg/sift"
)

// Load decodes the image at path (PNG, JPEG, GIF, BMP, TIFF or WebP) and
// returns its luminance as a rows x cols matrix.
func Load(path string) (*mat.Dense, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", sift.ErrIO, err)
	}
	defer file.Close()

	img, format, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", sift.ErrIO, path, err)
	}

	m, err := FromImage(img)
	if err != nil {
		return nil, fmt.Errorf("%s (%s): %w", path, format, err)
	}
	return m, nil
}

// FromImage converts img to a matrix of 16-bit luminance values in [0,1].
// Color images are reduced to luminance with the standard Gray16 model.
func FromImage(img image.Image) (*mat.Dense, error) {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: image has no pixels", sift.ErrInvalidInput)
	}

	data := make([]float64, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			g := color.Gray16Model.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.Gray16)
			data[y*width+x] = float64(g.Y) / 65535.0
		}
	}

	return mat.NewDense(height, width, data), nil
}

// ToGray16 converts a matrix with values in [0,1] to a 16-bit grayscale
// image. Values outside the range are clamped.
func ToGray16(m *mat.Dense) *image.Gray16 {
	rows, cols := m.Dims()
	img := image.NewGray16(image.Rect(0, 0, cols, rows))

	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			v := math.Max(0, math.Min(1, m.At(y, x)))
			img.SetGray16(x, y, color.Gray16{Y: uint16(math.Round(v * 65535))})
		}
	}

	return img
}

// SaveLevel writes m as a 16-bit grayscale PNG, creating parent
// directories as needed.
func SaveLevel(m *mat.Dense, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("%w: create directory: %w", sift.ErrIO, err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %w", sift.ErrIO, err)
	}
	defer file.Close()

	if err := png.Encode(file, ToGray16(m)); err != nil {
		return fmt.Errorf("%w: encode %s: %w", sift.ErrIO, path, err)
	}
	return nil
}

// SavePyramid writes every level of p below dir as
// octave_NN/level_NN.png and returns the written paths in pyramid order.
func SavePyramid(p *sift.Pyramid, dir string) ([]string, error) {
	paths := make([]string, 0, p.NumLevels())
	for _, octave := range p.Octaves {
		octaveDir := filepath.Join(dir, fmt.Sprintf("octave_%02d", octave.Index))
		for li, level := range octave.Levels {
			path := filepath.Join(octaveDir, fmt.Sprintf("level_%02d.png", li))
			if err := SaveLevel(level.Image, path); err != nil {
				return paths, err
			}
			paths = append(paths, path)
		}
	}
	return paths, nil
}
