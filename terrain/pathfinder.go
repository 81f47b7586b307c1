package terrain

import (
	"container/heap"

	"blockpath"
)

// Dir indexes the eight directions a fine-grained step can take.
type Dir int8

const (
	E Dir = iota
	W
	N
	S
	NE
	NW
	SE
	SW
)

var allDirs = [8]Dir{E, W, N, S, NE, NW, SE, SW}

func isDiag(d Dir) bool { return d >= NE }

func toOrthA(d Dir) Dir {
	switch d {
	case NE, SE:
		return E
	case NW, SW:
		return W
	}
	return d
}

func toOrthB(d Dir) Dir {
	switch d {
	case NE, NW:
		return N
	case SE, SW:
		return S
	}
	return d
}

func step(x, z int32, d Dir) (int32, int32) {
	switch d {
	case E:
		return x + 1, z
	case W:
		return x - 1, z
	case N:
		return x, z - 1
	case S:
		return x, z + 1
	case NE:
		return x + 1, z - 1
	case NW:
		return x - 1, z - 1
	case SE:
		return x + 1, z + 1
	case SW:
		return x - 1, z + 1
	}
	return x, z
}

const sqrt2 = 1.41421356

func moveCost(d Dir) float32 {
	if isDiag(d) {
		return sqrt2
	}
	return 1
}

type fineNode struct {
	x, z    int32
	h20     uint16
	g, f    float32
	openIdx int
}

type fineHeap []*fineNode

func (h fineHeap) Len() int            { return len(h) }
func (h fineHeap) Less(i, j int) bool  { return h[i].f < h[j].f }
func (h fineHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].openIdx, h[j].openIdx = i, j
}
func (h *fineHeap) Push(x any) {
	n := x.(*fineNode)
	n.openIdx = len(*h)
	*h = append(*h, n)
}
func (h *fineHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

type edgeKey struct {
	x, z      int32
	dir       Dir
	h20       uint16
	moveClass int
	owner     int32
}
type edgeVal struct {
	ok  bool
	nh  uint16
}

// PathFinder is a per-worker fine-grained A* search over a World's
// column store, implementing blockpath.FinePathFinder. It is not safe
// for concurrent use: each precompute/update worker owns its own
// instance.
type PathFinder struct {
	world    *World
	profiles []Profile
	edges    map[edgeKey]edgeVal
}

func NewPathFinder(world *World, profiles []Profile) *PathFinder {
	return &PathFinder{world: world, profiles: profiles, edges: make(map[edgeKey]edgeVal)}
}

func (pf *PathFinder) profile(moveClass int) Profile {
	if moveClass < 0 || moveClass >= len(pf.profiles) {
		return pf.profiles[0]
	}
	return pf.profiles[moveClass]
}

// GetPath implements blockpath.FinePathFinder: an A* search confined to
// [min, max), budgeted to at most nodeBudget expansions, starting and
// ending at start/goal's fine squares. The initial standing height is
// whatever surface start itself offers at ground level.
func (pf *PathFinder) GetPath(moveClass int, owner int32, start, goal blockpath.FineSquare, min, max blockpath.FineSquare, nodeBudget int) (float32, bool) {
	p := pf.profile(moveClass)

	startCol, ok := pf.world.columnAt(start.X, start.Z)
	if !ok {
		return 0, false
	}
	sh, ok := startCol.findBestSupport(0, p.MaxStepUp20, p.HeadClear20, p.Ignore)
	if !ok {
		return 0, false
	}

	startNode := &fineNode{x: start.X, z: start.Z, h20: sh, g: 0}
	startNode.f = heuristic(start.X, start.Z, goal.X, goal.Z)
	open := &fineHeap{}
	heap.Init(open)
	heap.Push(open, startNode)
	visited := map[int64]*fineNode{keyOf(start.X, start.Z): startNode}
	closed := make(map[int64]bool)

	expansions := 0
	for open.Len() > 0 {
		if expansions >= nodeBudget {
			return 0, false
		}
		expansions++

		cur := heap.Pop(open).(*fineNode)
		if cur.x == goal.X && cur.z == goal.Z {
			return cur.g, true
		}
		closed[keyOf(cur.x, cur.z)] = true
		for _, d := range allDirs {
			nx, nz := step(cur.x, cur.z, d)
			if nx < min.X || nx >= max.X || nz < min.Z || nz >= max.Z {
				continue
			}
			nh, ok := pf.edgePass(owner, moveClass, p, cur.x, cur.z, cur.h20, d)
			if !ok {
				continue
			}
			if isDiag(d) {
				_, ok1 := pf.edgePass(owner, moveClass, p, cur.x, cur.z, cur.h20, toOrthA(d))
				_, ok2 := pf.edgePass(owner, moveClass, p, cur.x, cur.z, cur.h20, toOrthB(d))
				if !ok1 || !ok2 {
					continue
				}
			}
			ng := cur.g + moveCost(d)
			key := keyOf(nx, nz)
			if closed[key] {
				continue
			}
			if old, ok := visited[key]; ok {
				if ng < old.g {
					old.g = ng
					old.h20 = nh
					old.f = ng + heuristic(nx, nz, goal.X, goal.Z)
					heap.Fix(open, old.openIdx)
				}
				continue
			}
			nn := &fineNode{x: nx, z: nz, h20: nh, g: ng}
			nn.f = ng + heuristic(nx, nz, goal.X, goal.Z)
			nn.openIdx = -1
			visited[key] = nn
			heap.Push(open, nn)
		}
	}
	return 0, false
}

func heuristic(x, z, gx, gz int32) float32 {
	dx := float32(abs32(gx - x))
	dz := float32(abs32(gz - z))
	minv, maxv := dx, dz
	if minv > maxv {
		minv, maxv = maxv, minv
	}
	return (maxv - minv) + minv*sqrt2
}

func keyOf(x, z int32) int64 { return int64(x)<<32 | int64(uint32(z)) }

func abs32(a int32) int32 {
	if a < 0 {
		return -a
	}
	return a
}

// edgePass reports whether standing at (x, z, h20) can step to dir's
// neighbour, and if so the standing height once there; owner's static
// obstacles block the step regardless of column shape.
func (pf *PathFinder) edgePass(owner int32, moveClass int, p Profile, x, z int32, h20 uint16, d Dir) (uint16, bool) {
	key := edgeKey{x: x, z: z, dir: d, h20: h20, moveClass: moveClass, owner: owner}
	if v, ok := pf.edges[key]; ok {
		return v.nh, v.ok
	}

	nx, nz := step(x, z, d)
	if pf.world.hasObstacle(nx, nz, owner) {
		pf.edges[key] = edgeVal{ok: false}
		return 0, false
	}
	col, ok := pf.world.columnAt(nx, nz)
	if !ok {
		pf.edges[key] = edgeVal{ok: false}
		return 0, false
	}
	nh, ok := col.findBestSupport(h20, p.MaxStepUp20, p.HeadClear20, p.Ignore)
	if !ok {
		pf.edges[key] = edgeVal{ok: false}
		return 0, false
	}
	pf.edges[key] = edgeVal{ok: true, nh: nh}
	return nh, true
}
