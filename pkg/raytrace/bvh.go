// Package raytrace renders world-space triangles by casting one primary ray
// per pixel through a bounding volume hierarchy.
package raytrace

import (
	"cmp"
	"slices"
	"time"

	"github.com/taigrr/prism/pkg/logging"
	"github.com/taigrr/prism/pkg/math3d"
	"github.com/taigrr/prism/pkg/render"
)

// MaxLeafSize is the largest number of triangles stored in one leaf.
const MaxLeafSize = 4

var logger = logging.New("raytrace")

// Node is a BVH node stored in the BVH arena. A node with Count > 0 is a
// leaf covering Tris[Offset:Offset+Count]; otherwise Left and Right index
// its children in the arena.
type Node struct {
	Bounds render.AABB
	Left   int
	Right  int
	Offset int
	Count  int
}

// IsLeaf reports whether the node holds triangles.
func (n *Node) IsLeaf() bool {
	return n.Count > 0
}

// BVH is a bounding volume hierarchy over a private copy of the input
// triangles. Nodes[0] is the root. Tris is reordered so every leaf covers a
// contiguous range, and Order[k] is the caller's index of Tris[k].
type BVH struct {
	Nodes []Node
	Tris  []render.Triangle
	Order []int
}

// TreeStats describes the shape of a BVH.
type TreeStats struct {
	Nodes  int
	Leaves int
	Depth  int // Number of levels; 0 for an empty tree
}

type builder struct {
	src       []render.Triangle
	centroids []math3d.Vec3
	order     []int
	nodes     []Node
}

// Build constructs a BVH by median split along the longest axis of each
// node's bounds. tris is not modified.
func Build(tris []render.Triangle) *BVH {
	b := &builder{
		src:       tris,
		centroids: make([]math3d.Vec3, len(tris)),
		order:     make([]int, len(tris)),
	}
	for i, t := range tris {
		b.centroids[i] = t.Centroid()
		b.order[i] = i
	}

	bvh := &BVH{Order: b.order}
	if len(tris) == 0 {
		return bvh
	}

	start := time.Now()
	b.nodes = make([]Node, 0, 2*len(tris)/MaxLeafSize+1)
	b.build(0, len(tris))

	bvh.Nodes = b.nodes
	bvh.Tris = make([]render.Triangle, len(tris))
	for k, i := range b.order {
		bvh.Tris[k] = tris[i]
	}

	st := bvh.Stats()
	logger.Debugf("bvh build time: %s, triangles: %d, nodes: %d, leaves: %d, depth: %d",
		time.Since(start), len(tris), st.Nodes, st.Leaves, st.Depth)
	return bvh
}

// build partitions order[lo:hi] and returns the index of its node.
func (b *builder) build(lo, hi int) int {
	idx := len(b.nodes)
	b.nodes = append(b.nodes, Node{})

	bounds := render.EmptyAABB()
	for _, i := range b.order[lo:hi] {
		bounds = bounds.Union(b.src[i].Bounds())
	}

	if hi-lo <= MaxLeafSize {
		b.nodes[idx] = Node{Bounds: bounds, Offset: lo, Count: hi - lo}
		return idx
	}

	axis := bounds.LongestAxis()
	slices.SortStableFunc(b.order[lo:hi], func(i, j int) int {
		return cmp.Compare(b.centroids[i].Axis(axis), b.centroids[j].Axis(axis))
	})

	mid := lo + (hi-lo)/2
	left := b.build(lo, mid)
	right := b.build(mid, hi)
	b.nodes[idx] = Node{Bounds: bounds, Left: left, Right: right}
	return idx
}

// Stats walks the tree and counts its nodes, leaves and levels.
func (b *BVH) Stats() TreeStats {
	var st TreeStats
	if len(b.Nodes) == 0 {
		return st
	}
	b.collectStats(0, 1, &st)
	return st
}

func (b *BVH) collectStats(i, depth int, st *TreeStats) {
	st.Nodes++
	st.Depth = max(st.Depth, depth)

	n := &b.Nodes[i]
	if n.IsLeaf() {
		st.Leaves++
		return
	}
	b.collectStats(n.Left, depth+1, st)
	b.collectStats(n.Right, depth+1, st)
}
