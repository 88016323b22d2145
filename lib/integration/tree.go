package integration

import (
	"sort"

	"gonum.org/v1/gonum/spatial/kdtree"
)

// node is a point in a kd-tree which remembers its index in the slice the
// tree was built from.
type node struct {
	x   []float64
	idx int
}

func (p node) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	return p.x[d] - c.(node).x[d]
}

func (p node) Dims() int { return len(p.x) }

func (p node) Distance(c kdtree.Comparable) float64 {
	q := c.(node)
	sum := 0.0
	for k := range p.x {
		dx := p.x[k] - q.x[k]
		sum += dx * dx
	}
	return sum
}

// nodes implements kdtree.Interface.
type nodes []node

func (p nodes) Index(i int) kdtree.Comparable         { return p[i] }
func (p nodes) Len() int                              { return len(p) }
func (p nodes) Slice(start, end int) kdtree.Interface { return p[start:end] }

// Pivot sorts along d and splits at the median.
func (p nodes) Pivot(d kdtree.Dim) int {
	sort.Sort(plane{p, d})
	return len(p) / 2
}

type plane struct {
	nodes
	d kdtree.Dim
}

func (p plane) Less(i, j int) bool { return p.nodes[i].x[p.d] < p.nodes[j].x[p.d] }
func (p plane) Swap(i, j int)      { p.nodes[i], p.nodes[j] = p.nodes[j], p.nodes[i] }

type tree struct {
	t *kdtree.Tree
}

// newTree builds a tree over pts, which must not be empty.
func newTree(pts [][]float64) tree {
	list := make(nodes, len(pts))
	for i := range pts {
		list[i] = node{pts[i], i}
	}
	return tree{kdtree.New(list, false)}
}

// nearest returns the index of the point closest to x.
func (t tree) nearest(x []float64) int {
	c, _ := t.t.Nearest(node{x: x})
	return c.(node).idx
}
