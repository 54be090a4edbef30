package density

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingInput means a particle or mesh source is unavailable this
	// frame. The frame is skipped and nothing is published.
	ErrMissingInput = errors.New("density: input unavailable")

	// ErrNotReady is a MissingInput reported before the particle source has
	// finished emitting its configured count.
	ErrNotReady = fmt.Errorf("%w: particle source not ready", ErrMissingInput)

	// ErrShapeMismatch means a source produced a count that contradicts the
	// configuration. It is fatal for the update loop.
	ErrShapeMismatch = errors.New("density: shape mismatch")
)

// ShapeMismatchError reports which input had the wrong length.
type ShapeMismatchError struct {
	Input string // "particles" or "vertices"
	Want  int
	Got   int
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("density: shape mismatch: %s count %d, want %d", e.Input, e.Got, e.Want)
}

// Unwrap lets errors.Is(err, ErrShapeMismatch) match.
func (e *ShapeMismatchError) Unwrap() error {
	return ErrShapeMismatch
}

// IsMissingInput reports whether err means the frame should be skipped.
func IsMissingInput(err error) bool {
	return errors.Is(err, ErrMissingInput)
}
