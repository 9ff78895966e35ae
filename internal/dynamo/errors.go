package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for engine and buffer operations.
var (
	// ErrBufferRelocated indicates the engine moved or resized its particle
	// storage after a view was acquired. Views are never re-derived, so this
	// is fatal for the session.
	ErrBufferRelocated = errors.New("dynamo: particle buffer relocated after acquisition")

	// ErrParameterBounds indicates a parameter value is outside valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrUnstable indicates the simulation produced NaN or Inf positions.
	ErrUnstable = errors.New("dynamo: simulation unstable (state diverged)")
)

// RelocationError carries the addresses observed when a relocation is detected.
type RelocationError struct {
	WantBase, GotBase uintptr
	WantLen, GotLen   int
}

func (e *RelocationError) Error() string {
	return fmt.Sprintf("%v: base %#x len %d, engine now reports base %#x len %d",
		ErrBufferRelocated, e.WantBase, e.WantLen, e.GotBase, e.GotLen)
}

func (e *RelocationError) Unwrap() error {
	return ErrBufferRelocated
}
