package blockpath

import "blockpath/block"

// offsetNoOwner is the owner passed to the terrain blocking test when
// finding a representative square: offset selection has no notion of a
// requesting unit, only of static occupancy.
const offsetNoOwner = int32(0)

// findOffset implements §4.C find_offset(move_class, bx, bz) → (sx, sz).
// It is a pure function of the terrain and move class: running it twice
// with identical inputs yields identical outputs, which is what makes
// recomputing it from multiple goroutines (precompute phase 1, update
// phase 5) safe without locks.
func findOffset(terrain Terrain, grid *block.Grid, moveClass int, squareSize float32, pos block.Pos) block.OffsetSquare {
	size := grid.BlockSize
	c := float32(size-1) / 2
	blockArea := float32(size*size) / squareSize

	baseX := pos.X * size
	baseZ := pos.Z * size

	bestCost := float32(0)
	bestX, bestZ := int32(-1), int32(-1)
	found := false

	for z := int32(0); z < size; z++ {
		for x := int32(0); x < size; x++ {
			wx, wz := baseX+x, baseZ+z
			speedMod := terrain.SpeedMod(moveClass, wx, wz)
			if speedMod == 0 || terrain.IsBlocked(moveClass, wx, wz, offsetNoOwner) {
				continue
			}
			dx, dz := float32(x)-c, float32(z)-c
			cost := dx*dx + dz*dz + blockArea/(0.001+speedMod)
			if !found || cost < bestCost {
				found = true
				bestCost = cost
				bestX, bestZ = x, z
			}
		}
	}

	if !found {
		// No traversable square: report the block centre. Vertex costs
		// touching this block will see it as blocked (§7).
		return block.OffsetSquare{X: size / 2, Z: size / 2}
	}
	return block.OffsetSquare{X: bestX, Z: bestZ}
}
