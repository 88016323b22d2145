package integration

import (
	"github.com/phil-mansfield/picswarm/lib/gauss"
	"github.com/phil-mansfield/picswarm/lib/mesh"
)

// GaussGenerator places points at the Gauss quadrature locations of each
// cell, either in its interior or on its border.
type GaussGenerator struct {
	border bool
	n      int
	pts    *Points
	rules  map[mesh.Shape][]gauss.Point
}

func newGaussGenerator(cfg Config, pts *Points) (*GaussGenerator, error) {
	if cfg.PointsPerDirection != 0 {
		if _, _, err := gauss.Nodes(cfg.PointsPerDirection); err != nil {
			return nil, err
		}
	}
	return &GaussGenerator{
		border: cfg.Variant == GaussBorder, n: cfg.PointsPerDirection,
		pts: pts, rules: map[mesh.Shape][]gauss.Point{},
	}, nil
}

func (g *GaussGenerator) Variant() Variant {
	if g.border {
		return GaussBorder
	}
	return Gauss
}

func (g *GaussGenerator) Points() *Points { return g.pts }

// Rule returns the points used for cells of the given shape.
func (g *GaussGenerator) Rule(shape mesh.Shape) ([]gauss.Point, error) {
	if r, ok := g.rules[shape]; ok {
		return r, nil
	}

	n := g.n
	if n == 0 {
		var err error
		if n, err = gauss.PointsPerDirection(shape.Order); err != nil {
			return nil, err
		}
	}

	var r []gauss.Point
	var err error
	if g.border {
		r, err = gauss.GenerateBorder(shape, n)
	} else {
		r, err = gauss.Generate(shape, n)
	}
	if err != nil {
		return nil, err
	}
	g.rules[shape] = r
	return r, nil
}

// Repopulate places every cell's points. Rules for all cells are resolved
// before anything is written, so a failing shape leaves the point set
// untouched.
func (g *GaussGenerator) Repopulate() error {
	m := g.pts.mesh
	rules := make([][]gauss.Point, m.Cells())
	total := 0
	for c := range rules {
		r, err := g.Rule(m.Shape(c))
		if err != nil {
			return err
		}
		rules[c] = r
		total += len(r)
	}

	if err := g.pts.store.SetCount(total); err != nil {
		return err
	}
	total = 0
	for c, r := range rules {
		g.pts.start[c] = total
		for j := range r {
			g.pts.setLocal(total+j, r[j].Local)
			g.pts.setWeight(total+j, r[j].Weight)
		}
		total += len(r)
	}
	g.pts.start[len(rules)] = total
	return nil
}
