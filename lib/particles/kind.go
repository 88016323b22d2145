package particles

import (
	"fmt"
	"strings"
)

// Kind is the element type of a variable's components.
type Kind int

const (
	Char Kind = iota // int8
	Short            // int16
	Int              // int32
	Long             // int64
	Float            // float32
	Double           // float64
	numKinds
)

var (
	kindNames = [numKinds]string{"char", "short", "int", "long", "float", "double"}
	kindSizes = [numKinds]int{1, 2, 4, 8, 4, 8}
)

// ParseKind converts a kind name ("char", "short", "int", "long", "float",
// or "double", in any case) to a Kind.
func ParseKind(name string) (Kind, error) {
	s := strings.ToLower(strings.TrimSpace(name))
	for k := Kind(0); k < numKinds; k++ {
		if kindNames[k] == s {
			return k, nil
		}
	}
	return 0, &UnsupportedKindError{Kind: name}
}

// Valid returns true if k is one of the supported kinds.
func (k Kind) Valid() bool { return k >= 0 && k < numKinds }

// Size returns the size of a single component in bytes.
func (k Kind) Size() int {
	if !k.Valid() {
		panic(fmt.Sprintf("Internal error: Size() called on invalid %s.", k))
	}
	return kindSizes[k]
}

// IsFloat returns true for the floating point kinds.
func (k Kind) IsFloat() bool { return k == Float || k == Double }

func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}
