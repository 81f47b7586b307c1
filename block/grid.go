// Package block holds the fixed-size block grid and its per-block state
// and vertex-cost tables (spec §4.A, §4.B): plain row-major data storage,
// no search or terrain logic. It is the data layer the estimator's
// search, precompute and update engines operate on.
package block

import "fmt"

// NodeMask holds the PATHOPT bits for one block: OPEN/CLOSED/BLOCKED/
// OBSOLETE plus three bits encoding the arrival direction for a search
// currently touching the block.
type NodeMask uint16

const (
	MaskOpen     NodeMask = 1 << 0
	MaskClosed   NodeMask = 1 << 1
	MaskBlocked  NodeMask = 1 << 2
	MaskObsolete NodeMask = 1 << 3

	dirShift   = 4
	dirBits    NodeMask = 0x7 << dirShift // 3 bits, encodes a Dir 0..7
	searchBits          = MaskOpen | MaskClosed | MaskBlocked | dirBits
)

// WithDir returns m with its cardinal-direction bits set to d.
func (m NodeMask) WithDir(d Dir) NodeMask {
	return (m &^ dirBits) | (NodeMask(d)<<dirShift)&dirBits
}

// Dir decodes the arrival direction previously stored with WithDir.
func (m NodeMask) Dir() Dir {
	return Dir((m & dirBits) >> dirShift)
}

// ClearSearch clears the bits a search touches (OPEN, CLOSED, arrival
// direction, and the BLOCKED bit a search sets on constraint violation)
// while leaving OBSOLETE untouched, since that belongs to the update
// engine, not a search. Used by the §4.F dirty-block reset, which must
// restore exactly the bits a search wrote.
func (m NodeMask) ClearSearch() NodeMask {
	return m &^ searchBits
}

// Pos is a block's coordinates in the block grid.
type Pos struct {
	X, Z int32
}

// Add returns p shifted by (dx, dz).
func (p Pos) Add(dx, dz int32) Pos { return Pos{p.X + dx, p.Z + dz} }

// Index is a block's flat row-major index, block_pos_to_idx from §4.A.
type Index int32

// State is one block's record: §3 "Block state".
type State struct {
	Mask   NodeMask
	FCost  float32
	GCost  float32
	Parent Pos
}

// Grid is the fixed nx×ny array of block state, plus the per-move-class
// representative-square offsets (§3 "offsets[move_class]"), allocated
// once at construction per §3 "Lifecycle".
type Grid struct {
	BlockSize  int32
	NX, NZ     int32
	NumClasses int

	states  []State  // len = NX*NZ, row-major
	offsets []OffsetSquare // len = NX*NZ*NumClasses, row-major by (block, class)
}

// OffsetSquare is a representative fine-square coordinate within a block,
// relative to the block's own fine-square origin — i.e. in [0, BlockSize).
type OffsetSquare struct {
	X, Z int32
}

// New allocates a grid covering an nx×nz block map for numClasses move
// classes. blockSize must be a positive power of two per §3.
func New(blockSize, nx, nz int32, numClasses int) *Grid {
	if blockSize <= 0 || blockSize&(blockSize-1) != 0 {
		panic(fmt.Sprintf("block: BLOCK_SIZE must be a power of two, got %d", blockSize))
	}
	n := int(nx * nz)
	return &Grid{
		BlockSize:  blockSize,
		NX:         nx,
		NZ:         nz,
		NumClasses: numClasses,
		states:     make([]State, n),
		offsets:    make([]OffsetSquare, n*numClasses),
	}
}

// NumBlocks is nx*ny.
func (g *Grid) NumBlocks() int { return int(g.NX * g.NZ) }

// InBounds reports whether p names a block inside the grid.
func (g *Grid) InBounds(p Pos) bool {
	return p.X >= 0 && p.X < g.NX && p.Z >= 0 && p.Z < g.NZ
}

// IndexOf implements block_pos_to_idx(bx, bz) = bz*nx + bx.
func (g *Grid) IndexOf(p Pos) Index {
	return Index(p.Z*g.NX + p.X)
}

// PosOf is the inverse of IndexOf.
func (g *Grid) PosOf(idx Index) Pos {
	return Pos{X: int32(idx) % g.NX, Z: int32(idx) / g.NX}
}

// Neighbour returns the block reached from p by dir, and whether it is
// in-map.
func (g *Grid) Neighbour(p Pos, d Dir) (Pos, bool) {
	dx, dz := d.Delta()
	np := p.Add(dx, dz)
	return np, g.InBounds(np)
}

// State returns a pointer to the block's mutable state record.
func (g *Grid) State(idx Index) *State { return &g.states[idx] }

// Offset returns the representative square stored for (idx, class).
func (g *Grid) Offset(idx Index, class int) OffsetSquare {
	return g.offsets[int(idx)*g.NumClasses+class]
}

// SetOffset stores the representative square for (idx, class). Only
// called from phase 1 of precompute/update — see §4.E.
func (g *Grid) SetOffset(idx Index, class int, sq OffsetSquare) {
	g.offsets[int(idx)*g.NumClasses+class] = sq
}

// WorldSquare projects a block's representative square to fine-grid
// coordinates.
func (g *Grid) WorldSquare(idx Index, class int) (x, z int32) {
	p := g.PosOf(idx)
	sq := g.Offset(idx, class)
	return p.X*g.BlockSize + sq.X, p.Z*g.BlockSize + sq.Z
}

// ResetDirty clears the search bits (OPEN/CLOSED/BLOCKED/direction) on exactly
// the blocks named, in O(len(idxs)) — the §4.F "dirty-block list" reset.
func (g *Grid) ResetDirty(idxs []Index) {
	for _, idx := range idxs {
		s := &g.states[idx]
		s.Mask = s.Mask.ClearSearch()
		s.FCost, s.GCost = 0, 0
		s.Parent = Pos{}
	}
}
