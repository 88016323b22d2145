package particles

import (
	"errors"
	"fmt"
)

// ErrForeignVariable is returned when a Variable is used with a Store other
// than the one that created it.
var ErrForeignVariable = errors.New("variable does not belong to this store")

// DuplicateNameError is returned by AddVariable when the name is already
// registered.
type DuplicateNameError struct {
	Store, Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("The variable name '%s' is used more than once in "+
		"store '%s'.", e.Name, e.Store)
}

// UnsupportedKindError is returned for kinds outside the supported set.
type UnsupportedKindError struct {
	Kind string
}

func (e *UnsupportedKindError) Error() string {
	return fmt.Sprintf("'%s' is not a supported kind. Only 'char', 'short', "+
		"'int', 'long', 'float', and 'double' are supported.", e.Kind)
}

// InvalidCountError is returned when a component count, particle count or
// capacity is below its minimum.
type InvalidCountError struct {
	Name       string
	Count, Min int
}

func (e *InvalidCountError) Error() string {
	return fmt.Sprintf("%s is %d, but must be at least %d.",
		e.Name, e.Count, e.Min)
}

// LiveViewConflictError is returned by AddVariable while views into the
// store are still live. Adding a variable moves every variable's memory, so
// this is an invariant violation on the caller's side.
type LiveViewConflictError struct {
	Store string
	Live  int
}

func (e *LiveViewConflictError) Error() string {
	return fmt.Sprintf("There are %d live views into store '%s'. Adding a "+
		"variable changes the memory layout of every variable, so all views "+
		"must be released before a variable can be added.", e.Live, e.Store)
}

// StaleViewError reports access through a View that was released or that
// outlived a structural change of its store.
type StaleViewError struct {
	Variable            string
	Generation, Current uint64
	Released            bool
}

func (e *StaleViewError) Error() string {
	if e.Released {
		return fmt.Sprintf("The view of '%s' has been released.", e.Variable)
	}
	return fmt.Sprintf("The view of '%s' was created at store generation "+
		"%d, but the store is now at generation %d.",
		e.Variable, e.Generation, e.Current)
}
