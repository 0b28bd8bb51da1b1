package sift

import (
	"github.com/pkg/errors"

	"scalespace/pkg/normalize"
	"scalespace/pkg/sigma"
)

// Sentinel errors surfaced by the detector. Callers match them with
// errors.Is; returned errors carry extra context on top.
var (
	// ErrInvalidInput marks a degenerate input image (zero dynamic range,
	// non-finite samples, no pixels).
	ErrInvalidInput = normalize.ErrInvalidInput

	// ErrParameter marks an invalid detector configuration.
	ErrParameter = errors.New("sift: invalid parameter")

	// ErrDomain marks an incremental blur requested from a sigma to a
	// smaller or equal one.
	ErrDomain = sigma.ErrDomain

	// ErrProcessing marks a failure of the blur primitive.
	ErrProcessing = errors.New("sift: blur failed")

	// ErrIO marks a failure reading or writing image data.
	ErrIO = errors.New("sift: i/o failure")
)
