// Package sift builds the Gaussian scale space consumed by SIFT-style
// feature detectors.
//
// A Detector normalizes a grayscale image to [0,1], pre-blurs it from the
// blur it is assumed to carry (sigmaNominal) up to the base scale sigma0, and
// then materializes S+3 levels per octave by chaining incremental Gaussian
// blurs, so that level s of octave o carries an absolute blur of
// sigma0 * 2^(o + s/S). Each octave after the first is seeded by decimating
// level S of the previous one, whose absolute blur is exactly twice that of
// the previous octave's level 0.
package sift

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"

	"scalespace/pkg/config"
	"scalespace/pkg/gaussian"
	"scalespace/pkg/normalize"
	"scalespace/pkg/sigma"
)

// Defaults for the scale-space parameters.
const (
	DefaultNumOctaves      = 4
	DefaultLevelsPerOctave = 3
	DefaultMinOctave       = 0
	DefaultSigma0          = 1.6
	DefaultSigmaNominal    = 0.5

	// extraLevels are stored on top of the S levels of each octave so that a
	// difference-of-Gaussians stage sees consistent sigma ratios across
	// octave boundaries.
	extraLevels = 3

	// MaxSigma0 bounds the base scale; every blur kernel grows linearly
	// with it.
	MaxSigma0 = 64.0
)

// Detector holds an immutable scale-space configuration. It is safe for
// concurrent use; every Run builds and returns a new Pyramid.
type Detector struct {
	numOctaves      int
	levelsPerOctave int
	minOctave       int
	numLevels       int
	sigma0          float64
	sigmaNominal    float64

	schedule sigma.Schedule
	blurrer  gaussian.Blurrer
	log      zerolog.Logger
}

// Option customizes a Detector at construction.
type Option func(*Detector)

// WithSigma0 sets the absolute sigma of level 0 in octave 0.
func WithSigma0(s float64) Option {
	return func(d *Detector) { d.sigma0 = s }
}

// WithSigmaNominal sets the blur the raw input is assumed to carry already.
func WithSigmaNominal(s float64) Option {
	return func(d *Detector) { d.sigmaNominal = s }
}

// WithBlurWorkers sets how many goroutines each blur pass is split across.
func WithBlurWorkers(n int) Option {
	return func(d *Detector) { d.blurrer.Workers = n }
}

// WithLogger sets the logger used to trace pyramid construction.
func WithLogger(l zerolog.Logger) Option {
	return func(d *Detector) { d.log = l }
}

// New creates a detector building numOctaves octaves of levelsPerOctave+3
// levels each, starting at octave minOctave.
//
// Only minOctave == 0 is supported: other values require resampling the input
// before the first octave and are rejected with ErrParameter.
func New(numOctaves, levelsPerOctave, minOctave int, opts ...Option) (*Detector, error) {
	d := &Detector{
		numOctaves:      numOctaves,
		levelsPerOctave: levelsPerOctave,
		minOctave:       minOctave,
		numLevels:       levelsPerOctave + extraLevels,
		sigma0:          DefaultSigma0,
		sigmaNominal:    DefaultSigmaNominal,
		blurrer:         gaussian.Blurrer{Workers: 1},
		log:             zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}

	if err := d.validate(); err != nil {
		return nil, err
	}

	schedule, err := sigma.New(d.sigma0, d.levelsPerOctave)
	if err != nil {
		return nil, errors.Wrap(ErrParameter, err.Error())
	}
	d.schedule = schedule
	return d, nil
}

// NewDefault creates a detector with 4 octaves of 3 levels starting at
// octave 0.
func NewDefault(opts ...Option) (*Detector, error) {
	return New(DefaultNumOctaves, DefaultLevelsPerOctave, DefaultMinOctave, opts...)
}

// NewFromConfig creates a detector from the detector and blur sections of
// cfg. Options are applied after the configuration values.
func NewFromConfig(cfg *config.Config, opts ...Option) (*Detector, error) {
	if cfg == nil {
		return nil, errors.Wrap(ErrParameter, "nil configuration")
	}
	base := []Option{
		WithSigma0(cfg.Detector.Sigma0),
		WithSigmaNominal(cfg.Detector.SigmaNominal),
		WithBlurWorkers(cfg.Blur.Workers),
	}
	return New(cfg.Detector.NumOctaves, cfg.Detector.LevelsPerOctave, cfg.Detector.MinOctave,
		append(base, opts...)...)
}

func (d *Detector) validate() error {
	switch {
	case d.numOctaves < 1:
		return errors.Wrapf(ErrParameter, "number of octaves must be >= 1, got %d", d.numOctaves)
	case d.levelsPerOctave < 1:
		return errors.Wrapf(ErrParameter, "levels per octave must be >= 1, got %d", d.levelsPerOctave)
	case d.minOctave != 0:
		return errors.Wrapf(ErrParameter, "min octave %d requires resampling, which is not supported", d.minOctave)
	case !isFinite(d.sigma0) || d.sigma0 <= 0:
		return errors.Wrapf(ErrParameter, "sigma0 must be positive and finite, got %g", d.sigma0)
	case d.sigma0 > MaxSigma0:
		return errors.Wrapf(ErrParameter, "sigma0 must be at most %g, got %g", MaxSigma0, d.sigma0)
	case !isFinite(d.sigmaNominal) || d.sigmaNominal < 0:
		return errors.Wrapf(ErrParameter, "nominal sigma must be non-negative and finite, got %g", d.sigmaNominal)
	case d.blurrer.Workers < 1:
		return errors.Wrapf(ErrParameter, "blur workers must be >= 1, got %d", d.blurrer.Workers)
	}
	return nil
}

// NumOctaves returns the number of octaves a run builds at most.
func (d *Detector) NumOctaves() int { return d.numOctaves }

// LevelsPerOctave returns S.
func (d *Detector) LevelsPerOctave() int { return d.levelsPerOctave }

// MinOctave returns the index of the first octave.
func (d *Detector) MinOctave() int { return d.minOctave }

// NumLevels returns the number of levels stored per octave, S+3.
func (d *Detector) NumLevels() int { return d.numLevels }

// Sigma0 returns the absolute sigma of level 0 in octave 0.
func (d *Detector) Sigma0() float64 { return d.sigma0 }

// SigmaNominal returns the blur assumed present in the raw input.
func (d *Detector) SigmaNominal() float64 { return d.sigmaNominal }

// K returns the per-level scale factor 2^(1/S).
func (d *Detector) K() float64 { return d.schedule.K() }

// Schedule returns the sigma schedule of the detector.
func (d *Detector) Schedule() sigma.Schedule { return d.schedule }

// Run normalizes img and builds its scale space. The input is not modified.
// On error no pyramid is returned; StatusOf maps the error to a Status.
func (d *Detector) Run(img mat.Matrix) (*Pyramid, error) {
	normalized, err := normalize.Normalize(img)
	if err != nil {
		return nil, errors.Wrap(err, "normalize input")
	}

	seed, err := d.baseLevel(normalized)
	if err != nil {
		return nil, err
	}

	pyramid := &Pyramid{Octaves: make([]Octave, 0, d.numOctaves)}
	for oi := 0; oi < d.numOctaves; oi++ {
		octave, err := d.BuildOctave(seed, oi+d.minOctave)
		if err != nil {
			return nil, err
		}
		pyramid.Octaves = append(pyramid.Octaves, *octave)

		if oi == d.numOctaves-1 {
			break
		}

		// Level S sits at twice the octave's base sigma, which after
		// halving the resolution is the base sigma of the next octave.
		top := octave.Levels[d.levelsPerOctave].Image
		rows, cols := top.Dims()
		if rows < 2 || cols < 2 {
			d.log.Warn().
				Int("built", len(pyramid.Octaves)).
				Int("requested", d.numOctaves).
				Int("rows", rows).
				Int("cols", cols).
				Msg("image too small to seed another octave")
			break
		}
		seed = Downsample(top)
	}

	d.log.Info().
		Int("octaves", len(pyramid.Octaves)).
		Int("levels", pyramid.NumLevels()).
		Msg("scale space built")
	return pyramid, nil
}

// baseLevel brings the normalized input from its assumed nominal blur up to
// the absolute sigma of the first level. When the input is assumed to be at
// least that blurred already it is used as is.
func (d *Detector) baseLevel(img *mat.Dense) (*mat.Dense, error) {
	scale := math.Pow(2, float64(d.minOctave))
	bottom := d.sigma0 * scale
	nominal := d.sigmaNominal * scale

	if bottom <= nominal {
		d.log.Debug().
			Float64("bottom", bottom).
			Float64("nominal", nominal).
			Msg("input already at base scale, skipping pre-blur")
		return img, nil
	}

	pre, err := sigma.Incremental(nominal, bottom)
	if err != nil {
		return nil, errors.Wrap(err, "pre-blur")
	}

	d.log.Debug().
		Float64("bottom", bottom).
		Float64("increment", pre).
		Msg("pre-blurring input")
	out, err := d.blur(img, pre)
	if err != nil {
		return nil, errors.Wrap(err, "pre-blur")
	}
	return out, nil
}

// BuildOctave builds one octave from seed, which must already carry the
// absolute blur of the octave's level 0, sigma0 * 2^octave. Level 0 holds
// seed itself; each following level is the previous level blurred by the
// incremental sigma separating the two, expressed in the octave's own pixel
// grid. Level sigmas stay in input-image pixels.
func (d *Detector) BuildOctave(seed *mat.Dense, octave int) (*Octave, error) {
	if seed == nil || seed.IsEmpty() {
		return nil, errors.Wrap(ErrInvalidInput, "empty octave seed")
	}

	rows, cols := seed.Dims()
	out := &Octave{
		Index:  octave,
		Width:  cols,
		Height: rows,
		Levels: make([]Level, 0, d.numLevels),
	}

	// Sigmas are in input pixels; octave o samples every 2^(o-minOctave)th
	// pixel, so blurs applied on its grid shrink by the same factor.
	spacing := math.Pow(2, float64(octave-d.minOctave))

	last := Level{Sigma: d.schedule.Absolute(octave, 0), Image: seed}
	out.Levels = append(out.Levels, last)

	for li := 1; li < d.numLevels; li++ {
		current := d.schedule.Absolute(octave, li)
		diff, err := d.schedule.Step(octave, li)
		if err != nil {
			return nil, errors.Wrapf(err, "octave %d level %d", octave, li)
		}
		step := diff / spacing

		img, err := d.blur(last.Image, step)
		if err != nil {
			return nil, errors.Wrapf(err, "octave %d level %d", octave, li)
		}

		d.log.Debug().
			Int("octave", octave).
			Int("level", li).
			Float64("sigma", current).
			Float64("increment", diff).
			Float64("gridIncrement", step).
			Int("taps", gaussian.KernelLength(step)).
			Msg("level built")

		last = Level{Sigma: current, Image: img}
		out.Levels = append(out.Levels, last)
	}

	return out, nil
}

// blur applies one Gaussian of the given sigma with its matching kernel
// length.
func (d *Detector) blur(img *mat.Dense, s float64) (*mat.Dense, error) {
	out, err := d.blurrer.Blur(img, gaussian.KernelLength(s), s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProcessing, err)
	}
	return out, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
