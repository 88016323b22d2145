package mesh

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Cartesian is a regular mesh of axis-aligned cells. Cells are indexed
// x-major: idx = ix + iy*res[0] + iz*res[0]*res[1].
type Cartesian struct {
	elem         ElementType
	shape        Shape
	res          []int
	min, max, dx []float64
	cells        int
	volume       float64
	length, area int
}

var _ Mesh = &Cartesian{}

// NewCartesian creates a mesh with res[i] cells along dimension i covering
// the box [min, max].
func NewCartesian(
	elem ElementType, res []int, min, max []float64,
) (*Cartesian, error) {
	dim := len(res)
	geom, err := GeometryForDim(dim)
	if err != nil {
		return nil, err
	} else if len(min) != dim || len(max) != dim {
		return nil, fmt.Errorf("The mesh has %d dimensions, but Min has %d "+
			"and Max has %d.", dim, len(min), len(max))
	} else if elem < 0 || elem >= numElementTypes {
		return nil, fmt.Errorf("%s is not a valid element type.", elem)
	}

	m := &Cartesian{
		elem: elem, shape: Shape{geom, elem.Order()},
		res: append([]int{}, res...),
		min: append([]float64{}, min...), max: append([]float64{}, max...),
		dx: make([]float64, dim), cells: 1,
	}

	for i := 0; i < dim; i++ {
		if res[i] <= 0 {
			return nil, fmt.Errorf("Resolution along dimension %d must be "+
				"positive, but is %d.", i, res[i])
		} else if !(max[i] > min[i]) {
			return nil, fmt.Errorf("Max along dimension %d, %g, must be "+
				"larger than Min, %g.", i, max[i], min[i])
		}
		m.dx[i] = (max[i] - min[i]) / float64(res[i])
		m.cells *= res[i]
	}
	m.volume = floats.Prod(m.dx)

	m.length = res[0]
	m.area = res[0]
	if dim > 1 {
		m.area *= res[1]
	}

	return m, nil
}

func (m *Cartesian) Dim() int                 { return len(m.res) }
func (m *Cartesian) Cells() int               { return m.cells }
func (m *Cartesian) ElementType() ElementType { return m.elem }
func (m *Cartesian) Shape(cell int) Shape     { return m.shape }
func (m *Cartesian) Volume(cell int) float64  { return m.volume }

// Resolution returns the number of cells along each dimension.
func (m *Cartesian) Resolution() []int { return append([]int{}, m.res...) }

// Idx returns the cell index corresponding to a set of cell coordinates.
func (m *Cartesian) Idx(ijk []int) int {
	idx := ijk[0]
	if len(ijk) > 1 {
		idx += ijk[1] * m.length
	}
	if len(ijk) > 2 {
		idx += ijk[2] * m.area
	}
	return idx
}

// Coords writes the cell coordinates of a cell index into ijk.
func (m *Cartesian) Coords(cell int, ijk []int) {
	ijk[0] = cell % m.length
	if len(ijk) > 1 {
		ijk[1] = (cell % m.area) / m.length
	}
	if len(ijk) > 2 {
		ijk[2] = cell / m.area
	}
}

// Locate returns the cell containing x. Points on a face shared by two
// cells belong to the cell with the larger index, except on the upper
// boundary of the mesh, which belongs to the last cell.
func (m *Cartesian) Locate(x []float64) int {
	if len(x) != len(m.res) {
		panic(fmt.Sprintf("Position has %d dimensions, but the mesh has %d.",
			len(x), len(m.res)))
	}

	idx, stride := 0, 1
	for i := range m.res {
		if !(x[i] >= m.min[i] && x[i] <= m.max[i]) {
			return NotFound
		}
		j := int(math.Floor((x[i] - m.min[i]) / m.dx[i]))
		if j >= m.res[i] {
			j = m.res[i] - 1
		}
		idx += j * stride
		stride *= m.res[i]
	}
	return idx
}

func (m *Cartesian) ToLocal(cell int, x, xi []float64) {
	stride := 1
	for i := range m.res {
		j := (cell / stride) % m.res[i]
		lo := m.min[i] + float64(j)*m.dx[i]
		xi[i] = 2*(x[i]-lo)/m.dx[i] - 1
		stride *= m.res[i]
	}
}

func (m *Cartesian) ToGlobal(cell int, xi, x []float64) {
	stride := 1
	for i := range m.res {
		j := (cell / stride) % m.res[i]
		lo := m.min[i] + float64(j)*m.dx[i]
		x[i] = lo + (xi[i]+1)*m.dx[i]/2
		stride *= m.res[i]
	}
}
