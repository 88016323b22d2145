package integration

import (
	"github.com/phil-mansfield/picswarm/lib/layout"
	"github.com/phil-mansfield/picswarm/lib/swarm"
)

// Mapper builds a one-to-one correspondence between the tracers owned by
// each cell and the integration points of that cell. Integration point k
// sits at the reference coordinates of tracer TracerOf(k).
type Mapper struct {
	// Shared names the tracer variables copied onto integration points.
	Shared   []string
	tracerOf []int
}

// TracerOf returns the tracer mapped to integration point k by the last
// Map.
func (mp *Mapper) TracerOf(k int) int { return mp.tracerOf[k] }

// Map resizes pts to one point per non-escaped tracer, writes the
// reference coordinates of every point, and copies over the shared
// variables. Points are ordered by cell and, within a cell, by the order
// of the tracer layout, so mapping twice without moving the tracers gives
// the same result. Map fails with swarm.ErrStaleOwners if the tracers
// have moved since their owners were last updated.
func (mp *Mapper) Map(tracker *swarm.Swarm, pts *Points) error {
	l := tracker.Layout()
	if !l.Built() {
		return layout.ErrNotBuilt
	} else if tracker.Stale() {
		return swarm.ErrStaleOwners
	}

	n := l.Len() - len(l.Escaped())
	if err := pts.store.SetCount(n); err != nil {
		return err
	}
	if cap(mp.tracerOf) < n {
		mp.tracerOf = make([]int, n)
	}
	mp.tracerOf = mp.tracerOf[:n]

	dim := pts.mesh.Dim()
	x, xi := make([]float64, dim), make([]float64, dim)
	to := make([]int, n)
	k := 0
	for c := 0; c < pts.Cells(); c++ {
		pts.start[c] = k
		it := l.ParticlesInCell(c)
		for i, ok := it.Next(); ok; i, ok = it.Next() {
			tracker.Position(i, x)
			pts.mesh.ToLocal(c, x, xi)
			pts.setLocal(k, xi)
			mp.tracerOf[k], to[k] = i, k
			k++
		}
		if err := it.Err(); err != nil {
			return err
		}
	}
	pts.start[pts.Cells()] = k

	if err := checkCounts(l, pts); err != nil {
		return err
	}
	return tracker.Store().Transfer(pts.store, mp.Shared, mp.tracerOf, to)
}

// checkCounts verifies that every cell has as many points as tracers.
func checkCounts(l *layout.CellLayout, pts *Points) error {
	for c := 0; c < pts.Cells(); c++ {
		_, n := pts.Cell(c)
		if n != l.Count(c) {
			return &CountMismatchError{Cell: c, Tracers: l.Count(c), Points: n}
		}
	}
	return nil
}
