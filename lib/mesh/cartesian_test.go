package mesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseElementType(t *testing.T) {
	tests := []struct {
		name  string
		order int
		valid bool
	}{
		{"DQ0", 0, true},
		{"q1", 1, true},
		{"DQ1", 1, true},
		{"dpc1", 1, true},
		{"Q2", 2, true},
		{"Q3", 0, false},
		{"", 0, false},
	}

	for i := range tests {
		elem, err := ParseElementType(tests[i].name)
		if tests[i].valid != (err == nil) {
			t.Errorf("%d) Expected ParseElementType('%s') validity %v, got "+
				"error %v.", i, tests[i].name, tests[i].valid, err)
		} else if err == nil && elem.Order() != tests[i].order {
			t.Errorf("%d) Expected '%s' to have order %d, got %d.",
				i, tests[i].name, tests[i].order, elem.Order())
		}
	}
}

func TestNewCartesianErrors(t *testing.T) {
	_, err := NewCartesian(Q1, []int{}, nil, nil)
	assert.Error(t, err)
	_, err = NewCartesian(Q1, []int{1, 1, 1, 1},
		[]float64{0, 0, 0, 0}, []float64{1, 1, 1, 1})
	assert.Error(t, err)
	_, err = NewCartesian(Q1, []int{2, 0}, []float64{0, 0}, []float64{1, 1})
	assert.Error(t, err)
	_, err = NewCartesian(Q1, []int{2, 2}, []float64{0, 1}, []float64{1, 1})
	assert.Error(t, err)
	_, err = NewCartesian(Q1, []int{2, 2}, []float64{0}, []float64{1, 1})
	assert.Error(t, err)
	_, err = NewCartesian(ElementType(9), []int{2}, []float64{0}, []float64{1})
	assert.Error(t, err)
}

func TestCartesianLocate(t *testing.T) {
	m, err := NewCartesian(Q1, []int{4, 2}, []float64{0, 0}, []float64{2, 1})
	require.NoError(t, err)

	assert.Equal(t, 8, m.Cells())
	assert.Equal(t, 2, m.Dim())
	assert.InDelta(t, 0.25, m.Volume(3), 1e-15)
	assert.Equal(t, Shape{Quad, 1}, m.Shape(0))
	assert.Equal(t, 4.0, m.Shape(0).ReferenceVolume())

	tests := []struct {
		x    []float64
		cell int
	}{
		{[]float64{0.1, 0.1}, 0},
		{[]float64{0.6, 0.1}, 1},
		{[]float64{1.9, 0.9}, 7},
		{[]float64{0, 0}, 0},
		{[]float64{2, 1}, 7},
		{[]float64{0.5, 0.5}, 5},
		{[]float64{-0.01, 0.5}, NotFound},
		{[]float64{1, 1.01}, NotFound},
	}

	for i := range tests {
		if cell := m.Locate(tests[i].x); cell != tests[i].cell {
			t.Errorf("%d) Expected Locate(%v) = %d, got %d.",
				i, tests[i].x, tests[i].cell, cell)
		}
	}
}

func TestCartesianCoords(t *testing.T) {
	m, err := NewCartesian(Q2, []int{3, 4, 5},
		[]float64{0, 0, 0}, []float64{3, 4, 5})
	require.NoError(t, err)

	ijk := make([]int, 3)
	for cell := 0; cell < m.Cells(); cell++ {
		m.Coords(cell, ijk)
		assert.Equal(t, cell, m.Idx(ijk))
	}
}

func TestCartesianLocalGlobal(t *testing.T) {
	m, err := NewCartesian(Q1, []int{3, 2, 2},
		[]float64{-1, 0, 2}, []float64{2, 1, 3})
	require.NoError(t, err)

	x, xi, back := make([]float64, 3), make([]float64, 3), make([]float64, 3)
	for cell := 0; cell < m.Cells(); cell++ {
		// The reference origin maps to the cell centre.
		m.ToGlobal(cell, []float64{0, 0, 0}, x)
		assert.Equal(t, cell, m.Locate(x))

		m.ToGlobal(cell, []float64{0.3, -0.9, 0.5}, x)
		m.ToLocal(cell, x, xi)
		assert.InDeltaSlice(t, []float64{0.3, -0.9, 0.5}, xi, 1e-12)

		m.ToGlobal(cell, xi, back)
		assert.InDeltaSlice(t, x, back, 1e-12)
	}
}
