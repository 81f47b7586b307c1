package blockpath

import (
	"container/heap"
	"errors"

	"blockpath/block"
)

// ErrGoalOutOfRange is returned by DoSearch when the open set empties
// (or the search budget is exhausted) without reaching a block
// satisfying GoalDef.IsGoal — the search instead reports the best
// heuristic candidate it found, per §4.F's fallback.
var ErrGoalOutOfRange = errors.New("blockpath: goal out of range")

// errUnhandledSearchEnd marks the branch §4.F's own text calls out as
// unreachable in a correct implementation: no best-heuristic candidate
// was ever recorded, not even the start block. Kept as a detectable
// dead fallback rather than a panic, so a test can assert it is never
// hit instead of crashing a caller if it somehow is.
var errUnhandledSearchEnd = errors.New("blockpath: unhandled end of search")

// Path is one computed route through the block graph, reconstructed
// from parent pointers written during DoSearch.
type Path struct {
	Blocks []block.Pos
	Cost   float32
}

type openItem struct {
	idx     block.Index
	fCost   float32
	heapIdx int
}

type openHeap []*openItem

func (h openHeap) Len() int          { return len(h) }
func (h openHeap) Less(i, j int) bool { return h[i].fCost < h[j].fCost }
func (h openHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].heapIdx, h[j].heapIdx = i, j
}
func (h *openHeap) Push(x any) {
	it := x.(*openItem)
	it.heapIdx = len(*h)
	*h = append(*h, it)
}
func (h *openHeap) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	*h = old[:n-1]
	return it
}

// searchState carries the open set, dirty-block list and best-candidate
// tracking through one DoSearch call, threaded through testBlock.
type searchState struct {
	open  *openHeap
	items map[block.Index]*openItem
	dirty []block.Index

	goalIdx       block.Index
	goalHeuristic float32
	haveCandidate bool

	touched int
}

func (ss *searchState) pushOpen(idx block.Index, f float32) {
	it := &openItem{idx: idx, fCost: f}
	heap.Push(ss.open, it)
	ss.items[idx] = it
}

// DoSearch implements §4.F: an A* search over the block graph from
// start, guided by goal's capability set, using moveClass's stored
// vertex costs. synced selects which flow-cost overlay view to consult.
func (e *Estimator) DoSearch(start block.Pos, goal GoalDef, moveClass int, owner int32, synced bool) (Path, error) {
	startIdx := e.grid.IndexOf(start)
	startSqX, startSqZ := e.grid.WorldSquare(startIdx, moveClass)

	ss := &searchState{
		open:  &openHeap{},
		items: make(map[block.Index]*openItem),
	}
	heap.Init(ss.open)

	st := e.grid.State(startIdx)
	st.GCost = 0
	st.FCost = goal.Heuristic(startSqX, startSqZ)
	st.Mask = (st.Mask &^ block.MaskClosed) | block.MaskOpen
	ss.pushOpen(startIdx, st.FCost)
	ss.dirty = append(ss.dirty, startIdx)
	ss.touched = 1

	ss.goalIdx = startIdx
	ss.goalHeuristic = st.FCost
	ss.haveCandidate = true

	defer e.grid.ResetDirty(ss.dirty)

	foundGoal := false
	for ss.open.Len() > 0 {
		if e.cfg.MaxBlocksToBeSearched > 0 && ss.touched >= e.cfg.MaxBlocksToBeSearched {
			break
		}

		cur := heap.Pop(ss.open).(*openItem)
		delete(ss.items, cur.idx)
		curState := e.grid.State(cur.idx)
		if curState.Mask&(block.MaskBlocked|block.MaskClosed) != 0 {
			continue
		}

		curPos := e.grid.PosOf(cur.idx)
		xB, zB := e.grid.WorldSquare(cur.idx, moveClass)
		dx, dz := goal.GoalSquareOffset(e.grid.BlockSize)
		xG, zG := curPos.X*e.grid.BlockSize+dx, curPos.Z*e.grid.BlockSize+dz
		if goal.IsGoal(xB, zB) || goal.IsGoal(xG, zG) {
			ss.goalIdx = cur.idx
			ss.goalHeuristic = 0
			foundGoal = true
			curState.Mask = (curState.Mask &^ block.MaskOpen) | block.MaskClosed
			break
		}

		for _, dir := range block.AllDirs {
			e.testBlock(cur.idx, dir, moveClass, goal, owner, synced, ss)
		}

		curState.Mask = (curState.Mask &^ block.MaskOpen) | block.MaskClosed
	}

	if !foundGoal {
		if !ss.haveCandidate {
			// Unreachable: the start block is always recorded as a
			// candidate before the loop runs. Kept as a detectable dead
			// fallback per the search's own termination contract.
			e.log.Error().Msg("unhandled end of search")
			return Path{}, errUnhandledSearchEnd
		}
		return e.reconstructPath(start, ss.goalIdx), ErrGoalOutOfRange
	}
	return e.reconstructPath(start, ss.goalIdx), nil
}

// testBlock implements §4.F's test_block contract for one outgoing
// direction from parent.
func (e *Estimator) testBlock(parent block.Index, dir block.Dir, moveClass int, goal GoalDef, owner int32, synced bool, ss *searchState) {
	parentPos := e.grid.PosOf(parent)
	childPos, ok := e.grid.Neighbour(parentPos, dir)
	if !ok {
		return
	}
	childIdx := e.grid.IndexOf(childPos)
	childState := e.grid.State(childIdx)
	if childState.Mask&(block.MaskBlocked|block.MaskClosed) != 0 {
		return
	}
	if goal.GoalIsBlocked(moveClass, childState.Mask, owner) {
		return
	}

	v := e.vertices.Cost(moveClass, parent, dir)
	if v == block.Infinity {
		return
	}

	sx, sz := e.grid.WorldSquare(childIdx, moveClass)
	if !goal.WithinConstraints(sx, sz) {
		wasDirty := childState.Mask&(block.MaskOpen|block.MaskClosed|block.MaskBlocked) != 0
		childState.Mask |= block.MaskBlocked
		if !wasDirty {
			ss.dirty = append(ss.dirty, childIdx)
		}
		return
	}

	nodeCost := v + e.flow.FlowCost(sx, sz, moveClass, dir) + e.flow.ExtraCost(sx, sz, synced)
	parentState := e.grid.State(parent)
	g := parentState.GCost + nodeCost
	h := goal.Heuristic(sx, sz)
	f := g + h

	alreadyOpen := childState.Mask&block.MaskOpen != 0
	if alreadyOpen && childState.FCost <= f {
		return
	}

	if h < ss.goalHeuristic {
		ss.goalHeuristic = h
		ss.goalIdx = childIdx
	}

	childState.GCost = g
	childState.FCost = f
	childState.Parent = parentPos
	wasTouched := childState.Mask&(block.MaskOpen|block.MaskClosed) != 0
	childState.Mask = (childState.Mask.WithDir(dir.Opposite()) &^ block.MaskClosed) | block.MaskOpen

	if it, ok := ss.items[childIdx]; ok {
		it.fCost = f
		heap.Fix(ss.open, it.heapIdx)
		return
	}
	ss.pushOpen(childIdx, f)
	if !wasTouched {
		ss.dirty = append(ss.dirty, childIdx)
		ss.touched++
	}
}

func (e *Estimator) reconstructPath(start block.Pos, goalIdx block.Index) Path {
	goalState := e.grid.State(goalIdx)
	cost := goalState.GCost

	var blocks []block.Pos
	idx := goalIdx
	for {
		pos := e.grid.PosOf(idx)
		blocks = append(blocks, pos)
		if pos == start {
			break
		}
		idx = e.grid.IndexOf(e.grid.State(idx).Parent)
	}
	for i, j := 0, len(blocks)-1; i < j; i, j = i+1, j-1 {
		blocks[i], blocks[j] = blocks[j], blocks[i]
	}
	return Path{Blocks: blocks, Cost: cost}
}

// FindPathCached wraps DoSearch with the §6 result cache: goalBlock and
// goalRadius are the cache key's goal-side components, kept separate
// from goal's polymorphic GoalDef logic so rectangular- and
// radius-constrained goals alike can be cached under a plain block key.
func (e *Estimator) FindPathCached(start, goalBlock block.Pos, goalRadius int32, moveClass int, owner int32, synced bool, goal GoalDef) (Path, error) {
	if entry, ok := e.lookupResult(start, goalBlock, goalRadius, moveClass, synced); ok {
		if !entry.Found {
			return Path{}, ErrGoalOutOfRange
		}
		return Path{Blocks: []block.Pos{start, {X: entry.NextStep.X, Z: entry.NextStep.Z}}, Cost: entry.Cost}, nil
	}

	path, err := e.DoSearch(start, goal, moveClass, owner, synced)
	entry := resultEntry{Cost: path.Cost, Found: err == nil}
	if len(path.Blocks) > 1 {
		entry.NextStep = block32{path.Blocks[1].X, path.Blocks[1].Z}
	}
	if err == nil || errors.Is(err, ErrGoalOutOfRange) {
		e.storeResult(start, goalBlock, goalRadius, moveClass, entry, synced)
	}
	return path, err
}
