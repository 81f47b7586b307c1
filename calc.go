package blockpath

import "blockpath/block"

// calculateVertex implements §4.D calculate_vertex(move_class,
// parent_block, dir, worker_id): computes and stores the cost of the
// single stored direction dir out of parent_block, using pf as the
// calling worker's private fine path finder instance.
func (e *Estimator) calculateVertex(pf FinePathFinder, moveClass int, parent block.Pos, dir block.Dir) {
	idx := e.grid.IndexOf(parent)

	child, ok := e.grid.Neighbour(parent, dir)
	if !ok {
		e.vertices.Set(moveClass, idx, dir, block.Infinity)
		return
	}
	childIdx := e.grid.IndexOf(child)

	startX, startZ := e.grid.WorldSquare(idx, moveClass)
	goalX, goalZ := e.grid.WorldSquare(childIdx, moveClass)

	if e.terrain.IsBlocked(moveClass, startX, startZ, offsetNoOwner) ||
		e.terrain.IsBlocked(moveClass, goalX, goalZ, offsetNoOwner) {
		e.vertices.Set(moveClass, idx, dir, block.Infinity)
		return
	}

	minX, minZ, maxX, maxZ := enclosingRect(e.grid.BlockSize, parent, child)

	cost, ok := pf.GetPath(
		moveClass, offsetNoOwner,
		FineSquare{X: startX, Z: startZ}, FineSquare{X: goalX, Z: goalZ},
		FineSquare{X: minX, Z: minZ}, FineSquare{X: maxX, Z: maxZ},
		e.cfg.MaxSearchedNodesPF/4,
	)
	if !ok {
		e.vertices.Set(moveClass, idx, dir, block.Infinity)
		return
	}
	e.vertices.Set(moveClass, idx, dir, cost)
}

// enclosingRect is the "rectangular constraint" of §4.D: the union of
// the two adjacent blocks' fine-square extents: a 2·BLOCK_SIZE ×
// 2·BLOCK_SIZE bounding rectangle for diagonal neighbours, and
// 2·BLOCK_SIZE × BLOCK_SIZE (or its transpose) for orthogonal ones.
func enclosingRect(blockSize int32, a, b block.Pos) (minX, minZ, maxX, maxZ int32) {
	ax0, az0 := a.X*blockSize, a.Z*blockSize
	bx0, bz0 := b.X*blockSize, b.Z*blockSize
	minX, maxX = minI32(ax0, bx0), maxI32(ax0, bx0)+blockSize
	minZ, maxZ = minI32(az0, bz0), maxI32(az0, bz0)+blockSize
	return
}

func minI32(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}

func maxI32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}
