/*package gauss generates Gauss-Legendre quadrature points on reference
cells. The 1D rules are tabulated once, so every call with the same
arguments returns exactly the same points.*/
package gauss

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/integrate/quad"

	"github.com/phil-mansfield/picswarm/lib/mesh"
)

const (
	MinPointsPerDirection = 1
	MaxPointsPerDirection = 5
)

// InvalidParticleCountError is returned for point counts outside of
// [MinPointsPerDirection, MaxPointsPerDirection].
type InvalidParticleCountError struct {
	Count int
}

func (e *InvalidParticleCountError) Error() string {
	return fmt.Sprintf("The number of Gauss points per direction must be in "+
		"the range [%d, %d], but is %d.",
		MinPointsPerDirection, MaxPointsPerDirection, e.Count)
}

// UnknownShapeOrderError is returned when no default point count exists
// for a shape function order.
type UnknownShapeOrderError struct {
	Order int
}

func (e *UnknownShapeOrderError) Error() string {
	return fmt.Sprintf("There is no default number of Gauss points for shape "+
		"functions of order %d.", e.Order)
}

// defaultCounts maps shape function order to points per direction.
var defaultCounts = map[int]int{0: 1, 1: 2, 2: 3}

// PointsPerDirection returns the default number of points per direction
// for shape functions of the given order.
func PointsPerDirection(order int) (int, error) {
	n, ok := defaultCounts[order]
	if !ok {
		return 0, &UnknownShapeOrderError{order}
	}
	return n, nil
}

// Point is a quadrature point in reference coordinates.
type Point struct {
	Local  []float64
	Weight float64
}

type rule struct {
	x, w []float64
}

var rules [MaxPointsPerDirection + 1]rule

func init() {
	for n := MinPointsPerDirection; n <= MaxPointsPerDirection; n++ {
		x, w := make([]float64, n), make([]float64, n)
		quad.Legendre{}.FixedLocations(x, w, -1, 1)

		idx := make([]int, n)
		for i := range idx {
			idx[i] = i
		}
		sort.Slice(idx, func(i, j int) bool { return x[idx[i]] < x[idx[j]] })

		rules[n].x, rules[n].w = make([]float64, n), make([]float64, n)
		for i, j := range idx {
			rules[n].x[i], rules[n].w[i] = x[j], w[j]
		}
	}
}

func checkCount(n int) error {
	if n < MinPointsPerDirection || n > MaxPointsPerDirection {
		return &InvalidParticleCountError{n}
	}
	return nil
}

// Nodes returns copies of the n-point 1D rule on [-1, 1] in increasing
// order of x.
func Nodes(n int) (x, w []float64, err error) {
	if err := checkCount(n); err != nil {
		return nil, nil, err
	}
	x = append([]float64{}, rules[n].x...)
	w = append([]float64{}, rules[n].w...)
	return x, w, nil
}

// Generate returns the tensor product rule with n points per direction on
// the reference cell of shape. The first coordinate varies fastest. The
// weights sum to the reference volume.
func Generate(shape mesh.Shape, n int) ([]Point, error) {
	if err := checkCount(n); err != nil {
		return nil, err
	}
	dim := shape.Dim()
	return tensor(dim, n, -1, 0), nil
}

// GenerateBorder returns points on the boundary of the reference cell: an
// (n points per direction) rule on each of its 2*dim faces. Faces are
// ordered by axis, low side first. For lines, the faces are the two end
// points, each with weight 1.
func GenerateBorder(shape mesh.Shape, n int) ([]Point, error) {
	if err := checkCount(n); err != nil {
		return nil, err
	}
	dim := shape.Dim()
	pts := []Point{}
	for axis := 0; axis < dim; axis++ {
		for _, side := range []float64{-1, 1} {
			pts = append(pts, tensor(dim, n, axis, side)...)
		}
	}
	return pts, nil
}

// tensor builds the tensor product rule over every axis except fixed,
// which is held at the coordinate side. fixed = -1 means no axis is fixed.
func tensor(dim, n, fixed int, side float64) []Point {
	free := []int{}
	for i := 0; i < dim; i++ {
		if i != fixed {
			free = append(free, i)
		}
	}

	total := 1
	for range free {
		total *= n
	}

	r := rules[n]
	pts := make([]Point, total)
	digits := make([]int, len(free))
	for p := range pts {
		local := make([]float64, dim)
		w := 1.0
		if fixed >= 0 {
			local[fixed] = side
		}
		for k, axis := range free {
			local[axis] = r.x[digits[k]]
			w *= r.w[digits[k]]
		}
		pts[p] = Point{local, w}

		for k := range digits {
			digits[k]++
			if digits[k] < n {
				break
			}
			digits[k] = 0
		}
	}
	return pts
}
