package integration

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/phil-mansfield/picswarm/lib/mesh"
)

// WeightStrategy assigns quadrature weights to the points of one cell.
type WeightStrategy interface {
	// Weights writes the weight of each point in local, given in reference
	// coordinates, into w. local is never empty, and the weights must sum
	// to the reference volume of shape.
	Weights(shape mesh.Shape, local [][]float64, w []float64) error
}

// Constant gives every point of a cell the same weight.
type Constant struct{}

func (Constant) Weights(shape mesh.Shape, local [][]float64, w []float64) error {
	for i := range w {
		w[i] = shape.ReferenceVolume() / float64(len(local))
	}
	return nil
}

// Voronoi weights each point by the volume of its discrete Voronoi cell:
// the reference cell is sampled at Resolution^dim evenly spaced points,
// and each sample adds its volume to the nearest particle.
type Voronoi struct {
	Resolution int
}

func (v Voronoi) Weights(shape mesh.Shape, local [][]float64, w []float64) error {
	if v.Resolution < 1 {
		return fmt.Errorf("The Voronoi resolution is %d, but must be at "+
			"least 1.", v.Resolution)
	}

	tree := newTree(local)
	dim := shape.Dim()
	samples := 1
	for k := 0; k < dim; k++ {
		samples *= v.Resolution
	}
	dv := shape.ReferenceVolume() / float64(samples)

	for i := range w {
		w[i] = 0
	}
	digits := make([]int, dim)
	x := make([]float64, dim)
	for s := 0; s < samples; s++ {
		for k := range x {
			x[k] = -1 + (2*float64(digits[k])+1)/float64(v.Resolution)
		}
		w[tree.nearest(x)] += dv

		for k := range digits {
			digits[k]++
			if digits[k] < v.Resolution {
				break
			}
			digits[k] = 0
		}
	}

	// Removes round-off from summing many small volumes.
	floats.Scale(shape.ReferenceVolume()/floats.Sum(w), w)
	return nil
}

// ParseWeightStrategy returns the strategy with the given name. resolution
// is only used by Voronoi.
func ParseWeightStrategy(name string, resolution int) (WeightStrategy, error) {
	switch strings.ToLower(name) {
	case "constant":
		return Constant{}, nil
	case "voronoi":
		return Voronoi{resolution}, nil
	}
	return nil, fmt.Errorf("'%s' is not a valid weight strategy. Must be "+
		"one of 'Constant' or 'Voronoi'.", name)
}
