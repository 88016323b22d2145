/*package layout assigns particles to the cells of a mesh. A CellLayout is
always rebuilt from scratch after particles move; it is never patched.*/
package layout

import (
	"errors"
	"fmt"

	"github.com/phil-mansfield/picswarm/lib/mesh"
)

var (
	// ErrNotBuilt is returned by Rebuild before the first successful Build.
	ErrNotBuilt = errors.New("cell layout has not been built")
	// ErrLayoutChanged is reported by an Iterator whose layout was rebuilt
	// while it was being iterated over.
	ErrLayoutChanged = errors.New("cell layout was rebuilt during iteration")
)

// Positions is a source of particle positions.
type Positions interface {
	// Len returns the number of particles.
	Len() int
	// Position writes the global position of particle i into x.
	Position(i int, x []float64)
}

// OutOfDomainError lists the particles which could not be located in the
// mesh when escaping is not allowed.
type OutOfDomainError struct {
	Particles []int
	// Position of the first particle in Particles.
	Position []float64
}

func (e *OutOfDomainError) Error() string {
	return fmt.Sprintf("%d particles are outside the mesh, starting with "+
		"particle %d at %v, and escaping is not allowed.",
		len(e.Particles), e.Particles[0], e.Position)
}

// CellLayout maps every particle to the cell which owns it. Particles
// outside the mesh are "escaped" if the layout allows it.
type CellLayout struct {
	mesh          mesh.Mesh
	escapeAllowed bool
	src           Positions

	owner   []int
	start   []int // len = cells+1
	order   []int // particle indices, grouped by cell
	escaped []int

	gen uint64
}

// New creates an unbuilt layout over m.
func New(m mesh.Mesh, escapeAllowed bool) *CellLayout {
	return &CellLayout{mesh: m, escapeAllowed: escapeAllowed}
}

func (l *CellLayout) Mesh() mesh.Mesh     { return l.mesh }
func (l *CellLayout) EscapeAllowed() bool { return l.escapeAllowed }
func (l *CellLayout) Built() bool         { return l.src != nil }

// Generation is incremented by every successful Build.
func (l *CellLayout) Generation() uint64 { return l.gen }

// CellCount returns the number of cells in the underlying mesh.
func (l *CellLayout) CellCount() int { return l.mesh.Cells() }

// Len returns the number of particles in the layout, escaped or not.
func (l *CellLayout) Len() int { return len(l.owner) }

// Build locates every particle of src in the mesh. If escaping isn't
// allowed and any particle is outside the mesh, Build returns an
// *OutOfDomainError and the previous layout is left untouched.
func (l *CellLayout) Build(src Positions) error {
	n, cells := src.Len(), l.mesh.Cells()
	owner := make([]int, n)
	counts := make([]int, cells+1)
	escaped := []int{}
	x := make([]float64, l.mesh.Dim())

	var outside *OutOfDomainError
	for i := 0; i < n; i++ {
		src.Position(i, x)
		c := l.mesh.Locate(x)
		owner[i] = c
		if c != mesh.NotFound {
			counts[c+1]++
			continue
		}

		if l.escapeAllowed {
			escaped = append(escaped, i)
		} else if outside == nil {
			outside = &OutOfDomainError{
				Particles: []int{i}, Position: append([]float64{}, x...),
			}
		} else {
			outside.Particles = append(outside.Particles, i)
		}
	}
	if outside != nil {
		return outside
	}

	// Counting sort into CSR form. Within a cell, particles keep their
	// index order.
	for c := 0; c < cells; c++ {
		counts[c+1] += counts[c]
	}
	start := append([]int{}, counts...)
	order := make([]int, counts[cells])
	for i, c := range owner {
		if c == mesh.NotFound {
			continue
		}
		order[counts[c]] = i
		counts[c]++
	}

	l.src, l.owner, l.start, l.order, l.escaped = src, owner, start, order, escaped
	l.gen++
	return nil
}

// Rebuild re-locates every particle of the source passed to the last
// successful Build.
func (l *CellLayout) Rebuild() error {
	if l.src == nil {
		return ErrNotBuilt
	}
	return l.Build(l.src)
}

// Owner returns the cell owning particle i, or mesh.NotFound if it escaped.
func (l *CellLayout) Owner(i int) int { return l.owner[i] }

// Count returns the number of particles owned by a cell.
func (l *CellLayout) Count(cell int) int {
	if l.start == nil {
		return 0
	}
	return l.start[cell+1] - l.start[cell]
}

// Escaped returns the indices of escaped particles in increasing order.
func (l *CellLayout) Escaped() []int { return append([]int{}, l.escaped...) }

// ParticlesInCell returns an iterator over the particles owned by a cell.
// The iterator reads the layout lazily and can be restarted with Reset.
func (l *CellLayout) ParticlesInCell(cell int) *Iterator {
	if cell < 0 || cell >= l.mesh.Cells() {
		panic(fmt.Sprintf("Cell %d is out of range for a mesh with %d "+
			"cells.", cell, l.mesh.Cells()))
	}
	return &Iterator{l: l, cell: cell, gen: l.gen}
}

// Iterator walks over the particles of one cell. If the layout is rebuilt
// during iteration, Next returns false and Err returns ErrLayoutChanged.
type Iterator struct {
	l    *CellLayout
	cell int
	pos  int
	gen  uint64
	err  error
}

// Next returns the next particle index and true, or false once the cell is
// exhausted.
func (it *Iterator) Next() (int, bool) {
	if it.err != nil {
		return 0, false
	} else if it.gen != it.l.gen {
		it.err = ErrLayoutChanged
		return 0, false
	} else if it.pos >= it.l.Count(it.cell) {
		return 0, false
	}
	i := it.l.order[it.l.start[it.cell]+it.pos]
	it.pos++
	return i, true
}

// Reset restarts the iterator against the current layout.
func (it *Iterator) Reset() {
	it.pos, it.gen, it.err = 0, it.l.gen, nil
}

// Err returns the error which stopped iteration, if any.
func (it *Iterator) Err() error { return it.err }

// Collect is a convenience function which drains the iterator into a slice.
func (it *Iterator) Collect() []int {
	out := []int{}
	for i, ok := it.Next(); ok; i, ok = it.Next() {
		out = append(out, i)
	}
	return out
}
