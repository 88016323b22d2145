package integration

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/phil-mansfield/picswarm/lib/mesh"
	"github.com/phil-mansfield/picswarm/lib/particles"
)

const (
	// LocalName is the name of the reference coordinate variable of an
	// integration point store.
	LocalName = "local"
	// WeightName is the name of the weight variable of an integration
	// point store.
	WeightName = "weight"
)

// Points is a set of integration points grouped by cell. The points of a
// cell are contiguous in the underlying store.
type Points struct {
	mesh   mesh.Mesh
	store  *particles.Store
	local  *particles.Variable
	weight *particles.Variable
	start  []int
}

func newPoints(name string, m mesh.Mesh, l particles.Layout) (*Points, error) {
	store := particles.NewStore(name, l)
	local, err := store.AddVariable(LocalName, particles.Double, m.Dim())
	if err != nil {
		return nil, err
	}
	weight, err := store.AddVariable(WeightName, particles.Double, 1)
	if err != nil {
		return nil, err
	}
	return &Points{
		mesh: m, store: store, local: local, weight: weight,
		start: make([]int, m.Cells()+1),
	}, nil
}

func (p *Points) Mesh() mesh.Mesh         { return p.mesh }
func (p *Points) Store() *particles.Store { return p.store }

// Len returns the total number of integration points.
func (p *Points) Len() int { return p.store.Count() }

// Cells returns the number of cells.
func (p *Points) Cells() int { return len(p.start) - 1 }

// Cell returns the index of the first point in a cell and the number of
// points it contains.
func (p *Points) Cell(cell int) (first, n int) {
	return p.start[cell], p.start[cell+1] - p.start[cell]
}

// Local writes the reference coordinates of point i into xi.
func (p *Points) Local(i int, xi []float64) {
	for c := range xi {
		xi[c] = p.store.Float(p.local, i, c)
	}
}

func (p *Points) setLocal(i int, xi []float64) {
	for c := range xi {
		p.store.SetFloat(p.local, i, c, xi[c])
	}
}

// Weight returns the quadrature weight of point i.
func (p *Points) Weight(i int) float64 { return p.store.Float(p.weight, i, 0) }

func (p *Points) setWeight(i int, w float64) { p.store.SetFloat(p.weight, i, 0, w) }

// CellWeight returns the sum of the weights of a cell's points.
func (p *Points) CellWeight(cell int) float64 {
	first, n := p.Cell(cell)
	w := make([]float64, n)
	for j := range w {
		w[j] = p.Weight(first + j)
	}
	return floats.Sum(w)
}

// TotalWeight returns the sum of all weights.
func (p *Points) TotalWeight() float64 {
	sum := 0.0
	for c := 0; c < p.Cells(); c++ {
		sum += p.CellWeight(c)
	}
	return sum
}

// cellLocals returns copies of the reference coordinates of a cell's
// points.
func (p *Points) cellLocals(cell int) [][]float64 {
	first, n := p.Cell(cell)
	out := make([][]float64, n)
	for j := range out {
		out[j] = make([]float64, p.mesh.Dim())
		p.Local(first+j, out[j])
	}
	return out
}

// addShared registers a variable copied from a tracer store.
func (p *Points) addShared(v *particles.Variable) error {
	if u, ok := p.store.Variable(v.Name()); ok {
		if u.Kind() != v.Kind() || u.Count() != v.Count() {
			return fmt.Errorf("Shared variable '%s' has %d %s components, "+
				"but '%s' already has %d %s components.", v.Name(), v.Count(),
				v.Kind(), p.store.Name(), u.Count(), u.Kind())
		}
		return nil
	}
	_, err := p.store.AddVariable(v.Name(), v.Kind(), v.Count())
	return err
}
