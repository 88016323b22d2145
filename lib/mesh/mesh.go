/*package mesh contains the finite element mesh abstractions that swarms are
built on: reference cell shapes, element types and point location. Cells
are always mapped from the reference cell [-1, 1]^dim.*/
package mesh

import (
	"fmt"
	"strings"
)

// NotFound is returned by Locate for points outside of the mesh.
const NotFound = -1

// Mesh is the interface swarms use to talk to a mesh.
type Mesh interface {
	// Dim returns the dimensionality of the mesh.
	Dim() int
	// Cells returns the number of cells in the mesh.
	Cells() int
	// Locate returns the cell containing x or NotFound.
	Locate(x []float64) int
	// Shape returns the reference shape of a cell.
	Shape(cell int) Shape
	// Volume returns the physical volume of a cell.
	Volume(cell int) float64
	// ToLocal maps the global position x into the reference coordinates xi
	// of a cell.
	ToLocal(cell int, x, xi []float64)
	// ToGlobal maps reference coordinates xi of a cell to a global position.
	ToGlobal(cell int, xi, x []float64)
}

// Geometry is the reference geometry of a cell.
type Geometry int

const (
	Line Geometry = iota + 1
	Quad
	Hex
)

// Dim returns the dimensionality of the geometry.
func (g Geometry) Dim() int { return int(g) }

func (g Geometry) String() string {
	switch g {
	case Line:
		return "Line"
	case Quad:
		return "Quad"
	case Hex:
		return "Hex"
	}
	return fmt.Sprintf("Geometry(%d)", int(g))
}

// GeometryForDim returns the tensor product geometry of a dimension.
func GeometryForDim(dim int) (Geometry, error) {
	if dim < 1 || dim > 3 {
		return 0, fmt.Errorf("Meshes must have 1, 2, or 3 dimensions, not %d.", dim)
	}
	return Geometry(dim), nil
}

// Shape is a reference cell together with the interpolation order of its
// shape functions.
type Shape struct {
	Geometry Geometry
	Order    int
}

func (s Shape) Dim() int { return s.Geometry.Dim() }

// ReferenceVolume returns the volume of [-1, 1]^dim.
func (s Shape) ReferenceVolume() float64 {
	return float64(int(1) << uint(s.Dim()))
}

// ElementType is a finite element family. Only its shape function order
// matters to swarms.
type ElementType int

const (
	DQ0 ElementType = iota
	Q1
	DQ1
	DPC1
	Q2
	numElementTypes
)

var (
	elementNames  = [numElementTypes]string{"DQ0", "Q1", "DQ1", "DPC1", "Q2"}
	elementOrders = [numElementTypes]int{0, 1, 1, 1, 2}
)

// ParseElementType converts a name like "Q1" (in any case) to an
// ElementType.
func ParseElementType(name string) (ElementType, error) {
	s := strings.ToUpper(strings.TrimSpace(name))
	for t := ElementType(0); t < numElementTypes; t++ {
		if elementNames[t] == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("'%s' is not a recognized element type. Only %s "+
		"are recognized.", name, strings.Join(elementNames[:], ", "))
}

// Order returns the interpolation order of the element's shape functions.
func (t ElementType) Order() int {
	if t < 0 || t >= numElementTypes {
		panic(fmt.Sprintf("Internal error: %s has no order.", t))
	}
	return elementOrders[t]
}

func (t ElementType) String() string {
	if t < 0 || t >= numElementTypes {
		return fmt.Sprintf("ElementType(%d)", int(t))
	}
	return elementNames[t]
}
