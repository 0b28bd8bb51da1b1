package sigma

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	s, err := New(1.6, 3)
	require.NoError(t, err)
	assert.Equal(t, 1.6, s.Sigma0)
	assert.Equal(t, 3, s.LevelsPerOctave)

	_, err = New(1.6, 0)
	assert.Error(t, err)

	_, err = New(0, 3)
	assert.Error(t, err)

	_, err = New(math.NaN(), 3)
	assert.Error(t, err)
}

func TestAbsoluteDefaultSchedule(t *testing.T) {
	s, err := New(1.6, 3)
	require.NoError(t, err)

	expected := []float64{1.6, 2.0159, 2.5398, 3.2, 4.0317, 5.0797}
	for level, want := range expected {
		assert.InDelta(t, want, s.Absolute(0, level), 1e-3, "level %d", level)
	}

	// Level 0 of octave o sits at sigma0 * 2^o.
	for o := 0; o < 4; o++ {
		assert.InDelta(t, 1.6*math.Pow(2, float64(o)), s.Absolute(o, 0), 1e-12)
	}

	// The top of one octave lines up with the bottom of the next.
	assert.InDelta(t, s.Absolute(1, 0), s.Absolute(0, 3), 1e-12)
}

func TestAbsoluteStrictlyIncreasing(t *testing.T) {
	for _, levels := range []int{1, 2, 3, 5} {
		s, err := New(1.6, levels)
		require.NoError(t, err)
		for o := 0; o < 3; o++ {
			for i := 1; i < levels+3; i++ {
				assert.Greater(t, s.Absolute(o, i), s.Absolute(o, i-1))
			}
		}
	}
}

func TestK(t *testing.T) {
	s, err := New(1.6, 3)
	require.NoError(t, err)
	assert.InDelta(t, math.Cbrt(2), s.K(), 1e-12)
	assert.InDelta(t, s.Absolute(0, 1), s.Absolute(0, 0)*s.K(), 1e-12)
}

func TestIncrementalCompositionLaw(t *testing.T) {
	cases := []struct{ from, to float64 }{
		{0, 1},
		{0.5, 1.6},
		{1.6, 2.0159},
		{3.2, 4.0317},
		{10, 10.5},
	}
	for _, c := range cases {
		inc, err := Incremental(c.from, c.to)
		require.NoError(t, err)
		assert.InDelta(t, c.to*c.to, inc*inc+c.from*c.from, 1e-9)
	}
}

func TestIncrementalPreBlur(t *testing.T) {
	inc, err := Incremental(0.5, 1.6)
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt(1.6*1.6-0.25), inc, 1e-12)
}

func TestIncrementalDomainErrors(t *testing.T) {
	cases := []struct {
		name     string
		from, to float64
	}{
		{"equal", 1.6, 1.6},
		{"decreasing", 1.6, 0.5},
		{"negative source", -1, 2},
		{"nan", math.NaN(), 2},
		{"inf", 1, math.Inf(1)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Incremental(c.from, c.to)
			assert.ErrorIs(t, err, ErrDomain)
		})
	}
}

func TestStep(t *testing.T) {
	s, err := New(1.6, 3)
	require.NoError(t, err)

	// All steps within an octave share the factor sqrt(2^(2/S) - 1).
	factor := math.Sqrt(math.Pow(2, 2.0/3.0) - 1)
	for level := 1; level < 6; level++ {
		step, err := s.Step(0, level)
		require.NoError(t, err)
		assert.InDelta(t, s.Absolute(0, level-1)*factor, step, 1e-9)
	}
}
