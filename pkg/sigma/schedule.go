// Package sigma computes the blur schedule of a Gaussian scale space.
//
// The scale of level s in octave o is
//
//	sigma(o, s) = sigma0 * 2^(o + s/S)
//
// where S is the number of levels per octave. Moving a signal that is already
// blurred to sigma A up to sigma B takes one extra Gaussian of
// sqrt(B^2 - A^2), since the variances of sequential Gaussian blurs add.
package sigma

import (
	"errors"
	"fmt"
	"math"
)

// ErrDomain is returned when an incremental blur is requested towards a
// sigma that is not strictly larger than the starting one.
var ErrDomain = errors.New("sigma: target sigma must exceed source sigma")

// Schedule maps (octave, level) pairs to absolute sigmas.
type Schedule struct {
	// Sigma0 is the absolute sigma of level 0 in octave 0.
	Sigma0 float64

	// LevelsPerOctave is S, the number of levels per doubling of sigma.
	LevelsPerOctave int
}

// New returns a schedule for the given base sigma and levels per octave.
func New(sigma0 float64, levelsPerOctave int) (Schedule, error) {
	if levelsPerOctave < 1 {
		return Schedule{}, fmt.Errorf("levels per octave must be >= 1, got %d", levelsPerOctave)
	}
	if !(sigma0 > 0) || math.IsInf(sigma0, 0) {
		return Schedule{}, fmt.Errorf("sigma0 must be positive and finite, got %g", sigma0)
	}
	return Schedule{Sigma0: sigma0, LevelsPerOctave: levelsPerOctave}, nil
}

// Absolute returns sigma0 * 2^(octave + level/S).
func (s Schedule) Absolute(octave, level int) float64 {
	return s.Sigma0 * math.Pow(2, float64(octave)+float64(level)/float64(s.LevelsPerOctave))
}

// K returns the per-level growth factor 2^(1/S).
func (s Schedule) K() float64 {
	return math.Pow(2, 1/float64(s.LevelsPerOctave))
}

// Step returns the blur that takes level-1 of the octave to level.
func (s Schedule) Step(octave, level int) (float64, error) {
	return Incremental(s.Absolute(octave, level-1), s.Absolute(octave, level))
}

// Incremental returns the sigma of the Gaussian that, applied to a signal
// already blurred to from, yields a signal blurred to to.
func Incremental(from, to float64) (float64, error) {
	if math.IsNaN(from) || math.IsNaN(to) || math.IsInf(from, 0) || math.IsInf(to, 0) {
		return 0, fmt.Errorf("%w: non-finite sigma (from=%g, to=%g)", ErrDomain, from, to)
	}
	if from < 0 {
		return 0, fmt.Errorf("%w: negative source sigma %g", ErrDomain, from)
	}
	if to <= from {
		return 0, fmt.Errorf("%w: from=%g, to=%g", ErrDomain, from, to)
	}
	return math.Sqrt(to*to - from*from), nil
}
