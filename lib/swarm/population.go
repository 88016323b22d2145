package swarm

import (
	"fmt"

	"golang.org/x/exp/rand"

	"github.com/phil-mansfield/picswarm/lib/gauss"
	"github.com/phil-mansfield/picswarm/lib/mesh"
)

// PopulationLayout decides where the initial particles of a swarm go.
type PopulationLayout interface {
	// Cell returns the reference coordinates of the particles to place in
	// a cell.
	Cell(m mesh.Mesh, cell int) ([][]float64, error)
}

// GaussLayout places particles at the Gauss points of each cell.
// PointsPerDirection = 0 uses the default for the cell's shape order.
type GaussLayout struct {
	PointsPerDirection int
}

func (g GaussLayout) Cell(m mesh.Mesh, cell int) ([][]float64, error) {
	shape := m.Shape(cell)
	n := g.PointsPerDirection
	if n == 0 {
		var err error
		if n, err = gauss.PointsPerDirection(shape.Order); err != nil {
			return nil, err
		}
	}

	pts, err := gauss.Generate(shape, n)
	if err != nil {
		return nil, err
	}
	local := make([][]float64, len(pts))
	for i := range pts {
		local[i] = pts[i].Local
	}
	return local, nil
}

// RandomLayout places a fixed number of uniformly random particles in each
// cell. Cells must be visited in the same order for the same seed to give
// the same swarm.
type RandomLayout struct {
	perCell int
	rng     *rand.Rand
}

// NewRandomLayout creates a RandomLayout with perCell particles per cell.
func NewRandomLayout(perCell int, seed uint64) (*RandomLayout, error) {
	if perCell < 1 {
		return nil, fmt.Errorf("The number of particles per cell is %d, "+
			"but must be at least 1.", perCell)
	}
	return &RandomLayout{perCell, rand.New(rand.NewSource(seed))}, nil
}

func (r *RandomLayout) Cell(m mesh.Mesh, cell int) ([][]float64, error) {
	dim := m.Shape(cell).Dim()
	local := make([][]float64, r.perCell)
	for i := range local {
		local[i] = make([]float64, dim)
		for k := range local[i] {
			local[i][k] = 2*r.rng.Float64() - 1
		}
	}
	return local, nil
}
