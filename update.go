package blockpath

import (
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"blockpath/block"
)

// obsoleteQueue is the §4.G "obsolete FIFO queue": blocks whose terrain
// changed are appended once (re-enqueue is suppressed via the OBSOLETE
// mask bit) and drained in first-changed-first-refreshed order.
type obsoleteQueue struct {
	mu     sync.Mutex
	order  []block.Index
	queued map[block.Index]bool
}

func (q *obsoleteQueue) push(idx block.Index) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.queued == nil {
		q.queued = make(map[block.Index]bool)
	}
	if q.queued[idx] {
		return false
	}
	q.queued[idx] = true
	q.order = append(q.order, idx)
	return true
}

// drain removes and returns up to n queue entries, oldest first.
func (q *obsoleteQueue) drain(n int) []block.Index {
	q.mu.Lock()
	defer q.mu.Unlock()
	if n > len(q.order) {
		n = len(q.order)
	}
	out := q.order[:n]
	q.order = q.order[n:]
	for _, idx := range out {
		delete(q.queued, idx)
	}
	return out
}

func (q *obsoleteQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.order)
}

// MapChanged implements §4.G's change notification: every block
// touching the fine-square rectangle [x1,z1]-[x2,z2] is marked OBSOLETE
// and queued for refresh, in z-major/x-minor order, skipping blocks
// already queued.
func (e *Estimator) MapChanged(x1, z1, x2, z2 int32) {
	size := e.grid.BlockSize
	bx1, bz1 := x1/size, z1/size
	bx2, bz2 := x2/size, z2/size
	if bx1 > bx2 {
		bx1, bx2 = bx2, bx1
	}
	if bz1 > bz2 {
		bz1, bz2 = bz2, bz1
	}

	for bz := bz1; bz <= bz2; bz++ {
		for bx := bx1; bx <= bx2; bx++ {
			pos := block.Pos{X: bx, Z: bz}
			if !e.grid.InBounds(pos) {
				continue
			}
			idx := e.grid.IndexOf(pos)
			st := e.grid.State(idx)
			if st.Mask&block.MaskObsolete != 0 {
				continue
			}
			st.Mask |= block.MaskObsolete
			e.obsolete.push(idx)
			e.syncedCache.invalidateBlock(block32{bx, bz}, true)
			e.unsyncedCache.invalidateBlock(block32{bx, bz}, false)
		}
	}
}

// refreshJob is one (block, move class) pair due for recomputation, the
// flat unit §4.G's FIFO drain and phase 5/6 loops operate on.
type refreshJob struct {
	idx   block.Index
	class int
}

// Update implements §4.G's per-tick maintenance: compute this tick's
// rate budget, drain that many obsolete blocks, and recompute their
// offsets (parallel, phase 5) and vertex costs (serial, phase 6).
func (e *Estimator) Update() error {
	budget := e.tickBudget()
	if budget <= 0 || e.obsolete.len() == 0 {
		return nil
	}

	idxs := e.obsolete.drain(budget)
	if len(idxs) == 0 {
		return nil
	}

	classes := e.activeClasses()
	jobs := make([]refreshJob, 0, len(idxs)*len(classes))
	for _, idx := range idxs {
		for _, class := range classes {
			jobs = append(jobs, refreshJob{idx: idx, class: class})
		}
	}
	// Ascending pathType order, §4.G's ordering requirement for the
	// flattened drain list.
	sort.Slice(jobs, func(i, j int) bool {
		return e.registry.ByPathType(jobs[i].class).PathType < e.registry.ByPathType(jobs[j].class).PathType
	})

	if err := e.refreshOffsets(jobs); err != nil {
		return err
	}
	e.refreshVertices(jobs)

	for _, idx := range idxs {
		st := e.grid.State(idx)
		st.Mask &^= block.MaskObsolete
	}
	return nil
}

// tickBudget implements §4.G's BLOCKS_TO_UPDATE-based rate budget: the
// queue size and total move class count drive a progressive estimate
// (discounted below BLOCK_SIZE 16), clamped into
// [max(BLOCKS_TO_UPDATE/2,4), BLOCKS_TO_UPDATE*2], with penalty-carry
// smoothing applied before the result is capped to the queue length
// (invariant 5: budget is bounded by N*2*BLOCKS_TO_UPDATE +
// initial_queue_size).
func (e *Estimator) tickBudget() int {
	base := e.cfg.blocksToUpdate(e.grid.BlockSize)
	minBudget := base / 2
	if minBudget < 4 {
		minBudget = 4
	}
	maxBudget := base * 2
	if maxBudget < minBudget {
		maxBudget = minBudget
	}

	discount := float32(0.6)
	if e.grid.BlockSize >= 16 {
		discount = 1.0
	}
	queued := e.obsolete.len()
	progressive := float32(queued) * float32(e.registry.NumClasses()) * discount * e.cfg.UpdateRate

	budget := int(progressive)
	if budget < minBudget {
		budget = minBudget
	}
	if budget > maxBudget {
		budget = maxBudget
	}

	e.blockUpdatePenalty -= float32(budget)
	if e.blockUpdatePenalty < 0 {
		e.blockUpdatePenalty = 0
	}
	if e.blockUpdatePenalty > 0 {
		budget -= int(e.blockUpdatePenalty)
		if budget < 0 {
			budget = 0
		}
	}
	if progressive != 0 {
		e.blockUpdatePenalty += float32(budget)
	}

	if budget > queued {
		budget = queued
	}
	return budget
}

// refreshOffsets is phase 5: recompute findOffset for every job in
// parallel, exactly as precompute phase 1 does.
func (e *Estimator) refreshOffsets(jobs []refreshJob) error {
	workers := e.workerCount()
	g := new(errgroup.Group)
	g.SetLimit(workers)
	for _, j := range jobs {
		j := j
		g.Go(func() error {
			pos := e.grid.PosOf(j.idx)
			sq := findOffset(e.terrain, e.grid, j.class, e.cfg.SquareSize, pos)
			e.grid.SetOffset(j.idx, j.class, sq)
			return nil
		})
	}
	return g.Wait()
}

// refreshVertices is phase 6: recompute every stored direction's cost
// for each job, serially and on a single fine path finder instance —
// §4.G keeps this phase serial because it runs interleaved with phase 5
// having just rewritten the very offsets calculateVertex reads.
func (e *Estimator) refreshVertices(jobs []refreshJob) {
	pf := e.newFinePathFinder()
	for _, j := range jobs {
		pos := e.grid.PosOf(j.idx)
		for d := block.Left; d < block.Right; d++ {
			e.calculateVertex(pf, j.class, pos, d)
		}
		// Edges in the four derived directions are stored at the
		// neighbour under the opposite direction, and their cost also
		// depends on idx's offset, so those neighbour slots are
		// recomputed as well.
		for _, d := range block.AllDirs[4:] {
			nbr, ok := e.grid.Neighbour(pos, d)
			if !ok {
				continue
			}
			e.calculateVertex(pf, j.class, nbr, d.Opposite())
		}
	}
}
