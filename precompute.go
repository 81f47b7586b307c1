package blockpath

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"blockpath/block"
)

// workerCount implements §4.E's memory-budget clamp: start from the
// configured thread count (or the logical CPU count if unset), then clamp the
// extra workers beyond the first to whatever the memory footprint
// budget allows.
func (e *Estimator) workerCount() int {
	n := e.cfg.PathingThreadCount
	if n <= 0 {
		n = numCPU()
	}
	if n < 1 {
		n = 1
	}
	budget := int64(e.cfg.MaxPathCostsMemoryFootprintMB) << 20
	maxExtras := budget/e.cfg.PerWorkerFootprintBytes - 1
	if maxExtras < 0 {
		maxExtras = 0
	}
	extras := n - 1
	if int64(extras) > maxExtras {
		extras = int(maxExtras)
	}
	return extras + 1
}

// activeClasses lists the move classes with a nonzero reference count:
// §4.E only does work for classes someone actually uses.
func (e *Estimator) activeClasses() []int {
	var out []int
	for i := 0; i < e.registry.NumClasses(); i++ {
		if e.registry.ByPathType(i).RefCount != 0 {
			out = append(out, i)
		}
	}
	return out
}

// precompute runs §4.E's two-phase parallel driver: every (block, move
// class) offset is found before any vertex cost is calculated, because
// calculateVertex reads the offsets of both endpoints of an edge.
func (e *Estimator) precompute() error {
	classes := e.activeClasses()
	if len(classes) == 0 {
		return nil
	}
	numBlocks := e.grid.NumBlocks()
	workers := e.workerCount()

	if err := e.parallelOffsets(workers, numBlocks, classes); err != nil {
		return err
	}
	return e.parallelVertices(workers, numBlocks, classes)
}

// parallelOffsets is precompute phase 1: each worker claims flat
// (block, class) work items one at a time from a shared atomic counter and calls
// findOffset, a pure function safe to run unsynchronized across blocks.
func (e *Estimator) parallelOffsets(workers, numBlocks int, classes []int) error {
	total := numBlocks * len(classes)
	var claimed atomic.Int64
	var done atomic.Int64
	reportEvery := total/16 + 1

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(workers)
	for w := 0; w < workers; w++ {
		workerID := w
		g.Go(func() error {
			for {
				if err := ctx.Err(); err != nil {
					return err
				}
				i := claimed.Add(1) - 1
				if int(i) >= total {
					return nil
				}
				idx := block.Index(int(i) / len(classes))
				class := classes[int(i)%len(classes)]
				pos := e.grid.PosOf(idx)

				sq := findOffset(e.terrain, e.grid, class, e.cfg.SquareSize, pos)
				e.grid.SetOffset(idx, class, sq)

				n := done.Add(1)
				if workerID == 0 && int(n)%reportEvery == 0 {
					e.progress.OnProgress(int(n), total)
				}
			}
		})
	}
	return g.Wait()
}

// parallelVertices is precompute phase 2: each worker owns a private
// FinePathFinder instance (fine path finders are not reentrant) and
// claims flat (block, stored-direction, class) work items.
func (e *Estimator) parallelVertices(workers, numBlocks int, classes []int) error {
	total := numBlocks * len(classes) * 4
	var claimed atomic.Int64
	var done atomic.Int64
	reportEvery := total/16 + 1

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(workers)
	for w := 0; w < workers; w++ {
		workerID := w
		g.Go(func() error {
			pf := e.newFinePathFinder()
			for {
				if err := ctx.Err(); err != nil {
					return err
				}
				i := claimed.Add(1) - 1
				if int(i) >= total {
					return nil
				}
				rem := int(i)
				class := classes[rem%len(classes)]
				rem /= len(classes)
				dir := block.Dir(rem % 4)
				rem /= 4
				idx := block.Index(rem)
				pos := e.grid.PosOf(idx)

				e.calculateVertex(pf, class, pos, dir)

				n := done.Add(1)
				if workerID == 0 && int(n)%reportEvery == 0 {
					e.progress.OnProgress(int(n), total)
				}
			}
		})
	}
	return g.Wait()
}
