package integration

import (
	"fmt"

	"github.com/phil-mansfield/picswarm/lib/swarm"
)

// PICGenerator keeps one integration point per tracer particle. Its
// weights come from a WeightStrategy and are recomputed every time the
// tracers move.
type PICGenerator struct {
	tracker  *swarm.Swarm
	pts      *Points
	mapper   *Mapper
	weights  WeightStrategy
	zeroCell bool

	// Per-cell neighbour search trees, built on demand.
	trees map[int]tree
}

func newPICGenerator(
	cfg Config, pts *Points, tracker *swarm.Swarm,
) (*PICGenerator, error) {
	if tracker.Mesh() != pts.mesh {
		return nil, fmt.Errorf("Tracer swarm '%s' uses a different mesh "+
			"than the integration points.", tracker.Name())
	}

	shared := cfg.Shared
	if len(shared) == 0 {
		shared = []string{tracker.Coords().Name()}
	}
	for _, name := range shared {
		v, ok := tracker.Store().Variable(name)
		if !ok {
			return nil, fmt.Errorf("Shared variable '%s' is not in tracer "+
				"swarm '%s'.", name, tracker.Name())
		}
		if err := pts.addShared(v); err != nil {
			return nil, err
		}
	}

	weights := cfg.Weights
	if weights == nil {
		weights = Constant{}
	}

	return &PICGenerator{
		tracker:  tracker,
		pts:      pts,
		mapper:   &Mapper{Shared: shared},
		weights:  weights,
		zeroCell: cfg.ZeroWeightCells || tracker.EscapeAllowed(),
		trees:    map[int]tree{},
	}, nil
}

func (p *PICGenerator) Variant() Variant { return PIC }
func (p *PICGenerator) Points() *Points  { return p.pts }
func (p *PICGenerator) Mapper() *Mapper  { return p.mapper }

// ZeroWeightCells reports whether empty cells are allowed.
func (p *PICGenerator) ZeroWeightCells() bool { return p.zeroCell }

// Repopulate maps the tracers onto the integration points, computes the
// weights of every cell, and clears the neighbour cache, in that order.
// The tracer layout must be up to date: moving tracers without calling
// UpdateOwners makes Repopulate fail with swarm.ErrStaleOwners.
func (p *PICGenerator) Repopulate() error {
	defer p.clearCache()

	if err := p.mapper.Map(p.tracker, p.pts); err != nil {
		return err
	}

	m := p.pts.mesh
	for c := 0; c < m.Cells(); c++ {
		first, n := p.pts.Cell(c)
		if n == 0 {
			if !p.zeroCell {
				return &EmptyCellError{c}
			}
			continue
		}

		w := make([]float64, n)
		if err := p.weights.Weights(m.Shape(c), p.pts.cellLocals(c), w); err != nil {
			return err
		}
		for j := range w {
			p.pts.setWeight(first+j, w[j])
		}
	}
	return nil
}

func (p *PICGenerator) clearCache() { p.trees = map[int]tree{} }

// CachedCells returns the number of cells with a neighbour tree.
func (p *PICGenerator) CachedCells() int { return len(p.trees) }

// Nearest returns the index of the integration point in cell closest to the
// reference coordinates xi.
func (p *PICGenerator) Nearest(cell int, xi []float64) (int, error) {
	first, n := p.pts.Cell(cell)
	if n == 0 {
		return 0, &EmptyCellError{cell}
	}
	t, ok := p.trees[cell]
	if !ok {
		t = newTree(p.pts.cellLocals(cell))
		p.trees[cell] = t
	}
	return first + t.nearest(xi), nil
}
