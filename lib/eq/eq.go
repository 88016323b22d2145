/*package eq is a simple package for telling whether two arrays are equal to
one another. It's used by the tests of picswarm's other packages.*/
package eq

import (
	"math"
)

// Generic returns true if two arrays are the same type and have the same
// values and false otherwise. Only []byte, []int, []int8, []int16, []int32,
// []int64, []float32, and []float64 are supported.
func Generic(x, y interface{}) bool {
	switch xx := x.(type) {
	case []byte:
		yy, ok := y.([]byte)
		return ok && Bytes(xx, yy)
	case []int:
		yy, ok := y.([]int)
		return ok && Ints(xx, yy)
	case []int8:
		yy, ok := y.([]int8)
		return ok && ints(len(xx), len(yy), func(i int) bool { return xx[i] == yy[i] })
	case []int16:
		yy, ok := y.([]int16)
		return ok && ints(len(xx), len(yy), func(i int) bool { return xx[i] == yy[i] })
	case []int32:
		yy, ok := y.([]int32)
		return ok && ints(len(xx), len(yy), func(i int) bool { return xx[i] == yy[i] })
	case []int64:
		yy, ok := y.([]int64)
		return ok && ints(len(xx), len(yy), func(i int) bool { return xx[i] == yy[i] })
	case []float32:
		yy, ok := y.([]float32)
		return ok && ints(len(xx), len(yy), func(i int) bool { return xx[i] == yy[i] })
	case []float64:
		yy, ok := y.([]float64)
		return ok && Float64sEps(xx, yy, 0)
	}
	return false
}

// ints checks n elements with the same function. The name is historical.
func ints(nx, ny int, same func(i int) bool) bool {
	if nx != ny {
		return false
	}
	for i := 0; i < nx; i++ {
		if !same(i) {
			return false
		}
	}
	return true
}

// Bytes returns true if two []byte arrays are the same and false otherwise.
func Bytes(x, y []byte) bool {
	return ints(len(x), len(y), func(i int) bool { return x[i] == y[i] })
}

// Ints returns true if two []int arrays are the same and false otherwise.
func Ints(x, y []int) bool {
	return ints(len(x), len(y), func(i int) bool { return x[i] == y[i] })
}

// IntSets returns true if x and y contain the same values, ignoring order
// and multiplicity.
func IntSets(x, y []int) bool {
	sx, sy := map[int]bool{}, map[int]bool{}
	for _, v := range x {
		sx[v] = true
	}
	for _, v := range y {
		sy[v] = true
	}
	if len(sx) != len(sy) {
		return false
	}
	for v := range sx {
		if !sy[v] {
			return false
		}
	}
	return true
}

// Float64sEps returns true if the two []float64 arrays are within eps of one
// another and false otherwise.
func Float64sEps(x, y []float64, eps float64) bool {
	return ints(len(x), len(y), func(i int) bool {
		return x[i]+eps >= y[i] && x[i]-eps <= y[i]
	})
}

// Float64sRel returns true if every element of x is within a relative
// tolerance rel of the corresponding element of y.
func Float64sRel(x, y []float64, rel float64) bool {
	return ints(len(x), len(y), func(i int) bool {
		scale := math.Max(math.Abs(x[i]), math.Abs(y[i]))
		return math.Abs(x[i]-y[i]) <= rel*scale
	})
}
