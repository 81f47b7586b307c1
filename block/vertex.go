package block

import "math"

// Infinity is the sentinel stored for an edge with no finite path inside
// the enlarged search rectangle (§3 "Vertex costs" invariant).
var Infinity = float32(math.Inf(1))

// Table is the flat vertex-cost array of §4.B: num_move_classes ×
// num_blocks × 4, storing only the LEFT, LEFT_UP, UP, RIGHT_UP edges per
// block. The remaining four directions are derived by the mirror rule.
type Table struct {
	grid       *Grid
	numClasses int
	data       []float32
}

// NewTable allocates a vertex-cost table sized from g, initialized to
// Infinity (an edge is unreachable until phase 2 of precompute/update
// proves otherwise).
func NewTable(g *Grid) *Table {
	n := g.NumBlocks() * g.NumClasses * 4
	data := make([]float32, n)
	for i := range data {
		data[i] = Infinity
	}
	return &Table{grid: g, numClasses: g.NumClasses, data: data}
}

func (t *Table) slot(class int, idx Index, dir Dir) int {
	return (class*t.grid.NumBlocks()+int(idx))*4 + int(dir)
}

// Set stores the cost for one of the four directly-stored directions.
// Calling it with a derived direction (Right..LeftDown) panics: callers
// must write through the storing endpoint, never the mirrored one, or
// the symmetry invariant silently breaks.
func (t *Table) Set(class int, idx Index, dir Dir, cost float32) {
	if !dir.stored() {
		panic("block: vertex cost must be written at its storing direction")
	}
	t.data[t.slot(class, idx, dir)] = cost
}

// vertexOffset is vertex_offset(dir, nx): the block that stores dir's
// cost, reached from p, and the direction it is stored under there.
// Computed via Grid.Neighbour (not raw index arithmetic) so a block on
// the map edge correctly reports "no storing block" instead of wrapping
// into the adjacent row.
func (t *Table) vertexOffset(p Pos, dir Dir) (storingBlock Pos, storedDir Dir, ok bool) {
	np, ok := t.grid.Neighbour(p, dir)
	return np, dir.Opposite(), ok
}

// Cost returns vertex_cost(class, idx, dir), reading straight from the
// table for the four stored directions and applying the mirror rule
// (reading the neighbour's stored opposite-direction slot) for the rest.
// Cost returns Infinity if the mirrored neighbour is out of map — which
// should not happen for any edge the grid itself considers adjacent, but
// guards against a corrupted caller rather than reading out of bounds.
func (t *Table) Cost(class int, idx Index, dir Dir) float32 {
	if dir.stored() {
		return t.data[t.slot(class, idx, dir)]
	}
	storingBlock, storedDir, ok := t.vertexOffset(t.grid.PosOf(idx), dir)
	if !ok {
		return Infinity
	}
	return t.data[t.slot(class, t.grid.IndexOf(storingBlock), storedDir)]
}
