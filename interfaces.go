package blockpath

import "blockpath/block"

// Terrain is the consumed terrain/blocking collaborator of §6. The
// estimator never inspects terrain data directly — every query about
// mobility or occupancy goes through this interface, so a game's own
// terrain representation can back the estimator without it knowing the
// storage format.
type Terrain interface {
	// SpeedMod returns the mobility multiplier for moveClass at the fine
	// square (x, z); 0 means impassable.
	SpeedMod(moveClass int, x, z int32) float32
	// IsBlocked reports whether a structure/owner combination blocks
	// moveClass at (x, z).
	IsBlocked(moveClass int, x, z int32, owner int32) bool
	// YLevel returns the terrain height at (x, z) for moveClass, used by
	// callers reconstructing world-space paths; unused by the estimator
	// itself but part of the collaborator contract.
	YLevel(moveClass int, x, z int32) float32
	// MapChecksum feeds the dataset hash of §3.
	MapChecksum() uint32
}

// MoveDef describes one movement class's parameters (§"Move class /
// move def" in the GLOSSARY).
type MoveDef struct {
	PathType int
	RefCount int32
}

// MoveClassRegistry is the consumed move-class collaborator of §6.
type MoveClassRegistry interface {
	NumClasses() int
	ByPathType(i int) MoveDef
	Checksum() uint32
}

// FinePathFinder is the non-reentrant, per-worker fine-grained path
// finder of §6/§4.D. Implementations must confine their search to the
// rectangle [min, max) in fine-square coordinates and budget node
// expansions to nodeBudget.
type FinePathFinder interface {
	GetPath(moveClass int, owner int32, start, goal FineSquare, min, max FineSquare, nodeBudget int) (cost float32, ok bool)
}

// FineSquare is a fine-grid coordinate, the unit the fine path finder
// and terrain collaborator both operate in.
type FineSquare struct {
	X, Z int32
}

// FlowCostOverlay is the consumed flow/cost-overlay collaborator of §6.
type FlowCostOverlay interface {
	FlowCost(x, z int32, moveClass int, dir block.Dir) float32
	ExtraCost(x, z int32, synced bool) float32
}

// GoalDef is the capability set passed to DoSearch (§4.F, §9 "Polymorphic
// goal/constraint"). Concrete variants (rectangular constraint, radius
// constraint) implement this directly rather than through inheritance.
type GoalDef interface {
	IsGoal(x, z int32) bool
	Heuristic(x, z int32) float32
	WithinConstraints(x, z int32) bool
	GoalIsBlocked(moveClass int, flags block.NodeMask, owner int32) bool
	GoalSquareOffset(blockSize int32) (dx, dz int32)
}

// ProgressSink receives periodic precompute progress reports (§4.E). It
// must not block; the estimator never waits on it.
type ProgressSink interface {
	OnProgress(done, total int)
}

type noopProgressSink struct{}

func (noopProgressSink) OnProgress(done, total int) {}
