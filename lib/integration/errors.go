package integration

import (
	"fmt"
)

// EmptyCellError is returned by PIC.Repopulate when a cell contains no
// integration points and zero-weight cells are not allowed.
type EmptyCellError struct {
	Cell int
}

func (e *EmptyCellError) Error() string {
	return fmt.Sprintf("Cell %d contains no integration points, and empty "+
		"cells are not allowed.", e.Cell)
}

// CountMismatchError means that mapping tracers to integration points
// left a cell with different numbers of each. It can only be caused by a
// bug.
type CountMismatchError struct {
	Cell, Tracers, Points int
}

func (e *CountMismatchError) Error() string {
	return fmt.Sprintf("Cell %d has %d tracer particles, but %d integration "+
		"points.", e.Cell, e.Tracers, e.Points)
}

// UnknownVariantError is returned when parsing a generator variant fails.
type UnknownVariantError struct {
	Name string
}

func (e *UnknownVariantError) Error() string {
	return fmt.Sprintf("'%s' is not a valid integration point generator. "+
		"Must be one of 'Gauss', 'GaussBorder', or 'PIC'.", e.Name)
}
