// Package report summarizes a scale-space pyramid level by level.
package report

import (
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gopkg.in/yaml.v3"

	"scalespace/pkg/sift"
)

// LevelSummary holds the statistics of one pyramid level.
type LevelSummary struct {
	Octave int     `yaml:"octave"`
	Level  int     `yaml:"level"`
	Sigma  float64 `yaml:"sigma"`
	Width  int     `yaml:"width"`
	Height int     `yaml:"height"`
	Min    float64 `yaml:"min"`
	Max    float64 `yaml:"max"`
	Mean   float64 `yaml:"mean"`

	// StdDev shrinks as sigma grows; it is a quick check that levels are
	// progressively smoother.
	StdDev float64 `yaml:"stdDev"`
}

// Report is the per-level summary of a pyramid.
type Report struct {
	Octaves int            `yaml:"octaves"`
	Levels  []LevelSummary `yaml:"levels"`
}

// Summarize computes the statistics of every level of p, in pyramid order.
func Summarize(p *sift.Pyramid) Report {
	r := Report{
		Octaves: len(p.Octaves),
		Levels:  make([]LevelSummary, 0, p.NumLevels()),
	}
	for _, octave := range p.Octaves {
		for li, level := range octave.Levels {
			data := samples(level.Image)
			mean, std := stat.MeanStdDev(data, nil)
			r.Levels = append(r.Levels, LevelSummary{
				Octave: octave.Index,
				Level:  li,
				Sigma:  level.Sigma,
				Width:  octave.Width,
				Height: octave.Height,
				Min:    floats.Min(data),
				Max:    floats.Max(data),
				Mean:   mean,
				StdDev: std,
			})
		}
	}
	return r
}

// WriteYAML writes the report to path, creating parent directories as needed.
func (r Report) WriteYAML(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("%w: create report directory: %w", sift.ErrIO, err)
	}

	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("error marshaling report: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("%w: write report: %w", sift.ErrIO, err)
	}
	return nil
}

// samples returns the values of m as a contiguous slice.
func samples(m *mat.Dense) []float64 {
	raw := m.RawMatrix()
	if raw.Stride == raw.Cols {
		return raw.Data[:raw.Rows*raw.Cols]
	}
	return mat.DenseCopyOf(m).RawMatrix().Data
}
