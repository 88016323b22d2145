package integration

import (
	"errors"
	"testing"

	"github.com/phil-mansfield/picswarm/lib/gauss"
	"github.com/phil-mansfield/picswarm/lib/layout"
	"github.com/phil-mansfield/picswarm/lib/mesh"
	"github.com/phil-mansfield/picswarm/lib/particles"
	"github.com/phil-mansfield/picswarm/lib/swarm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unitSquare(t *testing.T, elem mesh.ElementType, n int) *mesh.Cartesian {
	m, err := mesh.NewCartesian(elem, []int{n, n},
		[]float64{0, 0}, []float64{1, 1})
	require.NoError(t, err)
	return m
}

func randomSwarm(t *testing.T, m mesh.Mesh, perCell int, escape bool) *swarm.Swarm {
	s, err := swarm.New("tracers", m, swarm.Options{EscapeAllowed: escape})
	require.NoError(t, err)
	r, err := swarm.NewRandomLayout(perCell, 1337)
	require.NoError(t, err)
	require.NoError(t, s.Populate(r))
	return s
}

func TestParseVariant(t *testing.T) {
	tests := []struct {
		name    string
		variant Variant
		valid   bool
	}{
		{"Gauss", Gauss, true},
		{"gaussborder", GaussBorder, true},
		{"PIC", PIC, true},
		{"pcdvc", 0, false},
		{"", 0, false},
	}

	for i := range tests {
		v, err := ParseVariant(tests[i].name)
		if tests[i].valid != (err == nil) {
			t.Errorf("%d) Expected ParseVariant('%s') validity %v, got "+
				"error %v.", i, tests[i].name, tests[i].valid, err)
		} else if err == nil && v != tests[i].variant {
			t.Errorf("%d) Expected ParseVariant('%s') = %s, got %s.",
				i, tests[i].name, tests[i].variant, v)
		}
	}
}

func TestGaussLine(t *testing.T) {
	m, err := mesh.NewCartesian(mesh.Q1, []int{4}, []float64{0}, []float64{1})
	require.NoError(t, err)

	g, err := New(Config{Variant: Gauss, PointsPerDirection: 2}, m, nil)
	require.NoError(t, err)
	assert.Equal(t, Gauss, g.Variant())
	require.NoError(t, g.Repopulate())

	pts := g.Points()
	assert.Equal(t, 8, pts.Len())
	for c := 0; c < pts.Cells(); c++ {
		_, n := pts.Cell(c)
		assert.Equal(t, 2, n)
		assert.InDelta(t, 2.0, pts.CellWeight(c), 1e-14)
	}
}

func TestGaussDefaults(t *testing.T) {
	tests := []struct {
		elem    mesh.ElementType
		variant Variant
		perCell int
	}{
		{mesh.DQ0, Gauss, 1},
		{mesh.Q1, Gauss, 4},
		{mesh.DPC1, Gauss, 4},
		{mesh.Q2, Gauss, 9},
		{mesh.Q1, GaussBorder, 8},
		{mesh.Q2, GaussBorder, 12},
	}

	for i := range tests {
		m := unitSquare(t, tests[i].elem, 2)
		g, err := New(Config{Variant: tests[i].variant}, m, nil)
		require.NoError(t, err)
		require.NoError(t, g.Repopulate())

		pts := g.Points()
		if pts.Len() != 4*tests[i].perCell {
			t.Errorf("%d) Expected %d points for %s %s, got %d.", i,
				4*tests[i].perCell, tests[i].elem, tests[i].variant, pts.Len())
		}

		expected := 4.0
		if tests[i].variant == GaussBorder {
			expected = 8.0
		}
		for c := 0; c < pts.Cells(); c++ {
			assert.InDelta(t, expected, pts.CellWeight(c), 1e-12)
		}
	}
}

func TestGaussInvalidCount(t *testing.T) {
	m := unitSquare(t, mesh.Q1, 2)
	for _, n := range []int{-1, 6} {
		_, err := New(Config{Variant: Gauss, PointsPerDirection: n}, m, nil)
		var countErr *gauss.InvalidParticleCountError
		assert.True(t, errors.As(err, &countErr), "n = %d", n)
	}
}

// cubicCorner is a Cartesian mesh whose last cell can be switched to an
// element order with no default point count.
type cubicCorner struct {
	*mesh.Cartesian
	cubic bool
}

func (m *cubicCorner) Shape(cell int) mesh.Shape {
	shape := m.Cartesian.Shape(cell)
	if m.cubic && cell == m.Cells()-1 {
		shape.Order = 3
	}
	return shape
}

func TestGaussUnknownOrderKeepsPoints(t *testing.T) {
	m := &cubicCorner{Cartesian: unitSquare(t, mesh.Q1, 2)}
	g, err := New(Config{Variant: Gauss}, m, nil)
	require.NoError(t, err)
	require.NoError(t, g.Repopulate())

	pts := g.Points()
	require.Equal(t, 16, pts.Len())

	m.cubic = true
	err = g.Repopulate()
	var orderErr *gauss.UnknownShapeOrderError
	require.True(t, errors.As(err, &orderErr))

	assert.Equal(t, 16, pts.Len())
	for c := 0; c < pts.Cells(); c++ {
		first, n := pts.Cell(c)
		if first != 4*c || n != 4 {
			t.Errorf("%d) Expected cell to start at %d with 4 points, got "+
				"%d points starting at %d.", c, 4*c, n, first)
		}
		assert.InDelta(t, 4.0, pts.CellWeight(c), 1e-12)
	}
}

func TestPICNeedsTracker(t *testing.T) {
	_, err := New(Config{Variant: PIC}, unitSquare(t, mesh.Q1, 2), nil)
	assert.Error(t, err)
}

func TestPICWeights(t *testing.T) {
	m := unitSquare(t, mesh.Q1, 3)
	for _, w := range []WeightStrategy{Constant{}, Voronoi{Resolution: 10}} {
		for _, l := range []particles.Layout{particles.Interlaced, particles.Block} {
			tracker := randomSwarm(t, m, 7, false)
			g, err := New(Config{Variant: PIC, Weights: w, Layout: l}, m, tracker)
			require.NoError(t, err)
			require.NoError(t, g.Repopulate())

			pts := g.Points()
			require.Equal(t, tracker.Len(), pts.Len())
			for c := 0; c < pts.Cells(); c++ {
				first, n := pts.Cell(c)
				assert.Equal(t, 7, n)
				assert.InDelta(t, 4.0, pts.CellWeight(c), 1e-9)
				for j := 0; j < n; j++ {
					assert.True(t, pts.Weight(first+j) >= 0)
				}
			}
		}
	}
}

func TestPICLocalCoordinates(t *testing.T) {
	m := unitSquare(t, mesh.Q1, 2)
	tracker := randomSwarm(t, m, 5, false)
	g, err := New(Config{Variant: PIC}, m, tracker)
	require.NoError(t, err)
	require.NoError(t, g.Repopulate())

	pic := g.(*PICGenerator)
	pts := pic.Points()
	coords, ok := pts.Store().Variable(tracker.Coords().Name())
	require.True(t, ok)

	x, xi, global := make([]float64, 2), make([]float64, 2), make([]float64, 2)
	for c := 0; c < pts.Cells(); c++ {
		first, n := pts.Cell(c)
		for k := first; k < first+n; k++ {
			i := pic.Mapper().TracerOf(k)
			assert.Equal(t, c, tracker.Owner(i))

			tracker.Position(i, x)
			pts.Local(k, xi)
			m.ToGlobal(c, xi, global)
			assert.InDeltaSlice(t, x, global, 1e-12)

			for d := range x {
				assert.Equal(t, x[d], pts.Store().Float(coords, k, d))
			}
		}
	}
}

func TestVoronoiSymmetric(t *testing.T) {
	// Tracers at the 2x2 Gauss points split each cell into equal quarters.
	m := unitSquare(t, mesh.Q1, 2)
	tracker, err := swarm.New("tracers", m, swarm.Options{})
	require.NoError(t, err)
	require.NoError(t, tracker.Populate(swarm.GaussLayout{PointsPerDirection: 2}))

	g, err := New(Config{Variant: PIC, Weights: Voronoi{8}}, m, tracker)
	require.NoError(t, err)
	require.NoError(t, g.Repopulate())

	pts := g.Points()
	for k := 0; k < pts.Len(); k++ {
		assert.InDelta(t, 1.0, pts.Weight(k), 1e-12)
	}
}

func TestPICIdempotent(t *testing.T) {
	m := unitSquare(t, mesh.Q1, 2)
	tracker := randomSwarm(t, m, 4, false)
	g, err := New(Config{Variant: PIC, Weights: Voronoi{6}}, m, tracker)
	require.NoError(t, err)

	require.NoError(t, g.Repopulate())
	store := g.Points().Store()
	local, _ := store.Variable(LocalName)
	weight, _ := store.Variable(WeightName)
	before := [][]byte{store.VariableBytes(local, nil), store.VariableBytes(weight, nil)}

	require.NoError(t, g.Repopulate())
	assert.Equal(t, before[0], store.VariableBytes(local, nil))
	assert.Equal(t, before[1], store.VariableBytes(weight, nil))
}

func TestPICFollowsTracers(t *testing.T) {
	m := unitSquare(t, mesh.Q1, 2)
	tracker, err := swarm.New("tracers", m, swarm.Options{})
	require.NoError(t, err)
	for _, x := range [][]float64{
		{0.25, 0.25}, {0.75, 0.25}, {0.25, 0.75}, {0.75, 0.75}, {0.1, 0.1},
	} {
		_, err := tracker.Add(x)
		require.NoError(t, err)
	}
	require.NoError(t, tracker.UpdateOwners())

	g, err := New(Config{Variant: PIC}, m, tracker)
	require.NoError(t, err)
	require.NoError(t, g.Repopulate())
	_, n := g.Points().Cell(0)
	assert.Equal(t, 2, n)
	assert.InDelta(t, 2.0, g.Points().Weight(0), 1e-14)

	tracker.Move(4, []float64{0.9, 0.9})
	require.NoError(t, tracker.UpdateOwners())
	require.NoError(t, g.Repopulate())
	_, n = g.Points().Cell(0)
	assert.Equal(t, 1, n)
	_, n = g.Points().Cell(3)
	assert.Equal(t, 2, n)
	assert.InDelta(t, 16.0, g.Points().TotalWeight(), 1e-12)
}

func TestPICStaleOwners(t *testing.T) {
	m := unitSquare(t, mesh.Q1, 2)
	tracker := randomSwarm(t, m, 2, false)
	g, err := New(Config{Variant: PIC}, m, tracker)
	require.NoError(t, err)
	require.NoError(t, g.Repopulate())

	tracker.Move(0, []float64{0.9, 0.9})
	assert.Equal(t, swarm.ErrStaleOwners, g.Repopulate())

	_, err = tracker.Add([]float64{0.1, 0.1})
	require.NoError(t, err)
	assert.Equal(t, swarm.ErrStaleOwners, g.Repopulate())

	require.NoError(t, tracker.UpdateOwners())
	require.NoError(t, g.Repopulate())
	assert.Equal(t, 9, g.Points().Len())

	xi := make([]float64, 2)
	for k := 0; k < g.Points().Len(); k++ {
		g.Points().Local(k, xi)
		for d := range xi {
			if xi[d] < -1 || xi[d] > 1 {
				t.Errorf("%d) Expected local coordinates in [-1, 1], got %v.",
					k, xi)
			}
		}
	}
}

func TestEmptyCell(t *testing.T) {
	m := unitSquare(t, mesh.Q1, 2)
	build := func(escape bool) *swarm.Swarm {
		s, err := swarm.New("tracers", m, swarm.Options{EscapeAllowed: escape})
		require.NoError(t, err)
		_, err = s.Add([]float64{0.1, 0.1})
		require.NoError(t, err)
		require.NoError(t, s.UpdateOwners())
		return s
	}

	g, err := New(Config{Variant: PIC}, m, build(false))
	require.NoError(t, err)
	err = g.Repopulate()
	var empty *EmptyCellError
	require.True(t, errors.As(err, &empty))
	assert.Equal(t, 1, empty.Cell)

	g, err = New(Config{Variant: PIC, ZeroWeightCells: true}, m, build(false))
	require.NoError(t, err)
	require.NoError(t, g.Repopulate())
	assert.Equal(t, 0.0, g.Points().CellWeight(1))
	assert.InDelta(t, 4.0, g.Points().CellWeight(0), 1e-14)

	g, err = New(Config{Variant: PIC}, m, build(true))
	require.NoError(t, err)
	assert.True(t, g.(*PICGenerator).ZeroWeightCells())
	require.NoError(t, g.Repopulate())
}

func TestNearestCache(t *testing.T) {
	m := unitSquare(t, mesh.Q1, 2)
	tracker, err := swarm.New("tracers", m, swarm.Options{})
	require.NoError(t, err)
	require.NoError(t, tracker.Populate(swarm.GaussLayout{PointsPerDirection: 2}))

	g, err := New(Config{Variant: PIC}, m, tracker)
	require.NoError(t, err)
	require.NoError(t, g.Repopulate())
	pic := g.(*PICGenerator)
	assert.Equal(t, 0, pic.CachedCells())

	xi := make([]float64, 2)
	for _, target := range [][]float64{{-0.9, -0.9}, {0.9, -0.9}, {0.9, 0.9}} {
		k, err := pic.Nearest(3, target)
		require.NoError(t, err)
		first, n := pic.Points().Cell(3)
		assert.True(t, k >= first && k < first+n)

		pic.Points().Local(k, xi)
		for d := range xi {
			assert.Equal(t, target[d] > 0, xi[d] > 0)
		}
	}
	assert.Equal(t, 1, pic.CachedCells())

	require.NoError(t, g.Repopulate())
	assert.Equal(t, 0, pic.CachedCells())
}

func TestMapperNotBuilt(t *testing.T) {
	m := unitSquare(t, mesh.Q1, 2)
	tracker, err := swarm.New("tracers", m, swarm.Options{})
	require.NoError(t, err)
	g, err := New(Config{Variant: PIC}, m, tracker)
	require.NoError(t, err)
	assert.Equal(t, layout.ErrNotBuilt, g.Repopulate())
}

func TestCountMismatch(t *testing.T) {
	m := unitSquare(t, mesh.Q1, 2)
	tracker := randomSwarm(t, m, 3, false)
	pts, err := newPoints("integration", m, particles.Interlaced)
	require.NoError(t, err)

	mp := &Mapper{}
	require.NoError(t, mp.Map(tracker, pts))
	require.NoError(t, checkCounts(tracker.Layout(), pts))

	pts.start[2]--
	err = checkCounts(tracker.Layout(), pts)
	var mismatch *CountMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, CountMismatchError{Cell: 1, Tracers: 3, Points: 2}, *mismatch)
}

func TestParseWeightStrategy(t *testing.T) {
	w, err := ParseWeightStrategy("constant", 0)
	require.NoError(t, err)
	assert.Equal(t, Constant{}, w)
	w, err = ParseWeightStrategy("Voronoi", 12)
	require.NoError(t, err)
	assert.Equal(t, Voronoi{12}, w)
	_, err = ParseWeightStrategy("pcdvc", 0)
	assert.Error(t, err)

	err = Voronoi{0}.Weights(mesh.Shape{Geometry: mesh.Quad, Order: 1},
		[][]float64{{0, 0}}, []float64{0})
	assert.Error(t, err)
}
