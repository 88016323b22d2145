/*package swarm manages a swarm of tracer particles moving through a mesh.
A Swarm keeps a particle store with coordinate and owning-cell variables
alongside the CellLayout which indexes it by cell.*/
package swarm

import (
	"errors"
	"fmt"

	"github.com/phil-mansfield/picswarm/lib/layout"
	"github.com/phil-mansfield/picswarm/lib/mesh"
	"github.com/phil-mansfield/picswarm/lib/particles"
)

const (
	coordsSuffix = "_coords"
	ownerSuffix  = "_owningCell"
)

// ErrStaleOwners is returned by users of the cell layout when particles
// have moved or been added since the last UpdateOwners.
var ErrStaleOwners = errors.New("Tracer particles have moved since the " +
	"last UpdateOwners.")

// Options are the construction time parameters of a Swarm.
type Options struct {
	Layout        particles.Layout
	EscapeAllowed bool
}

// Swarm is a set of tracer particles with global coordinates.
type Swarm struct {
	mesh   mesh.Mesh
	store  *particles.Store
	coords *particles.Variable
	owner  *particles.Variable
	cells  *layout.CellLayout
	moved  bool
}

var _ layout.Positions = &Swarm{}

// New creates an empty swarm over m. The swarm's store is created with two
// variables: "<name>_coords", a Double with one component per dimension,
// and "<name>_owningCell", an Int holding the cell which owns each particle.
func New(name string, m mesh.Mesh, opt Options) (*Swarm, error) {
	store := particles.NewStore(name, opt.Layout)
	coords, err := store.AddVariable(name+coordsSuffix, particles.Double, m.Dim())
	if err != nil {
		return nil, err
	}
	owner, err := store.AddVariable(name+ownerSuffix, particles.Int, 1)
	if err != nil {
		return nil, err
	}

	return &Swarm{
		mesh: m, store: store, coords: coords, owner: owner,
		cells: layout.New(m, opt.EscapeAllowed),
	}, nil
}

func (s *Swarm) Name() string                  { return s.store.Name() }
func (s *Swarm) Mesh() mesh.Mesh               { return s.mesh }
func (s *Swarm) Store() *particles.Store       { return s.store }
func (s *Swarm) Coords() *particles.Variable   { return s.coords }
func (s *Swarm) OwnerVar() *particles.Variable { return s.owner }
func (s *Swarm) Layout() *layout.CellLayout    { return s.cells }
func (s *Swarm) EscapeAllowed() bool           { return s.cells.EscapeAllowed() }

// Len returns the number of particles in the swarm.
func (s *Swarm) Len() int { return s.store.Count() }

// AddVariable registers a user variable. kind is one of the names accepted
// by particles.ParseKind.
func (s *Swarm) AddVariable(name, kind string, count int) (*particles.Variable, error) {
	k, err := particles.ParseKind(kind)
	if err != nil {
		return nil, err
	}
	return s.store.AddVariable(name, k, count)
}

// Position writes the global coordinates of particle i into x.
func (s *Swarm) Position(i int, x []float64) {
	for c := range x {
		x[c] = s.store.Float(s.coords, i, c)
	}
}

// Move sets the global coordinates of particle i. The cell layout is not
// updated until UpdateOwners is called.
func (s *Swarm) Move(i int, x []float64) {
	if len(x) != s.mesh.Dim() {
		panic(fmt.Sprintf("Position %v has %d dimensions, but the mesh has "+
			"%d.", x, len(x), s.mesh.Dim()))
	}
	for c := range x {
		s.store.SetFloat(s.coords, i, c, x[c])
	}
	s.moved = true
}

// Stale reports whether the cell layout is out of date: a particle has
// been moved or added since the last successful UpdateOwners.
func (s *Swarm) Stale() bool {
	return s.moved || s.cells.Len() != s.store.Count()
}

// Add appends a particle at x and returns its index. Its owning cell is
// mesh.NotFound until the next UpdateOwners.
func (s *Swarm) Add(x []float64) (int, error) {
	i, err := s.store.AddParticles(1)
	if err != nil {
		return 0, err
	}
	s.Move(i, x)
	s.store.SetInt(s.owner, i, 0, mesh.NotFound)
	return i, nil
}

// Owner returns the owning cell of particle i as of the last UpdateOwners.
func (s *Swarm) Owner(i int) int { return int(s.store.Int(s.owner, i, 0)) }

// UpdateOwners rebuilds the cell layout from the current coordinates and
// writes each particle's owning cell, or mesh.NotFound for escaped
// particles. On error nothing is changed.
func (s *Swarm) UpdateOwners() error {
	if err := s.cells.Build(s); err != nil {
		return err
	}
	for i := 0; i < s.store.Count(); i++ {
		s.store.SetInt(s.owner, i, 0, int64(s.cells.Owner(i)))
	}
	s.moved = false
	return nil
}

// Escaped returns the number of particles outside the mesh as of the last
// UpdateOwners.
func (s *Swarm) Escaped() int { return len(s.cells.Escaped()) }

// Populate adds the particles generated by p to every cell of the mesh and
// then updates the owning cells.
func (s *Swarm) Populate(p PopulationLayout) error {
	x := make([]float64, s.mesh.Dim())
	for cell := 0; cell < s.mesh.Cells(); cell++ {
		local, err := p.Cell(s.mesh, cell)
		if err != nil {
			return err
		}

		first, err := s.store.AddParticles(len(local))
		if err != nil {
			return err
		}
		for j, xi := range local {
			s.mesh.ToGlobal(cell, xi, x)
			s.Move(first+j, x)
		}
	}
	return s.UpdateOwners()
}
