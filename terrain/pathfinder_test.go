package terrain

import (
	"testing"

	"blockpath"
)

func flatGroundWorld(n int32) *World {
	w := NewWorld()
	for z := int32(0); z < n; z++ {
		for x := int32(0); x < n; x++ {
			w.SetColumn(x, z, RichRange{Range: Range{Begin: 0, End: 20}, Texture: 1})
		}
	}
	return w
}

func TestGetPathStraightLineOnFlatGround(t *testing.T) {
	pf := NewPathFinder(flatGroundWorld(8), []Profile{DefaultProfile()})
	cost, ok := pf.GetPath(0, 0,
		blockpath.FineSquare{X: 0, Z: 0}, blockpath.FineSquare{X: 3, Z: 0},
		blockpath.FineSquare{X: 0, Z: 0}, blockpath.FineSquare{X: 8, Z: 8},
		1000)
	if !ok {
		t.Fatal("expected a path across open flat ground")
	}
	if cost != 3 {
		t.Fatalf("cost = %v, want 3 (three orthogonal steps)", cost)
	}
}

func TestGetPathDiagonalCheaperThanOrthogonalDetour(t *testing.T) {
	pf := NewPathFinder(flatGroundWorld(8), []Profile{DefaultProfile()})
	cost, ok := pf.GetPath(0, 0,
		blockpath.FineSquare{X: 0, Z: 0}, blockpath.FineSquare{X: 3, Z: 3},
		blockpath.FineSquare{X: 0, Z: 0}, blockpath.FineSquare{X: 8, Z: 8},
		1000)
	if !ok {
		t.Fatal("expected a path across open flat ground")
	}
	if cost >= 6 { // an all-orthogonal L-shaped route would cost 6
		t.Fatalf("cost = %v, want less than 6 (diagonal steps should be cheaper)", cost)
	}
}

func TestGetPathFailsWhenStartHasNoColumn(t *testing.T) {
	pf := NewPathFinder(flatGroundWorld(8), []Profile{DefaultProfile()})
	_, ok := pf.GetPath(0, 0,
		blockpath.FineSquare{X: 100, Z: 100}, blockpath.FineSquare{X: 3, Z: 0},
		blockpath.FineSquare{X: 0, Z: 0}, blockpath.FineSquare{X: 8, Z: 8},
		1000)
	if ok {
		t.Fatal("expected failure: start square has no recorded column")
	}
}

func TestGetPathRespectsNodeBudget(t *testing.T) {
	pf := NewPathFinder(flatGroundWorld(16), []Profile{DefaultProfile()})
	_, ok := pf.GetPath(0, 0,
		blockpath.FineSquare{X: 0, Z: 0}, blockpath.FineSquare{X: 15, Z: 15},
		blockpath.FineSquare{X: 0, Z: 0}, blockpath.FineSquare{X: 16, Z: 16},
		1)
	if ok {
		t.Fatal("a one-node budget cannot reach a goal 15 steps away")
	}
}

func TestGetPathBlockedByWallHasNoRoute(t *testing.T) {
	w := flatGroundWorld(5)
	// A solid wall spanning the whole row z=2 between x=0..4 separates
	// the search rectangle into two halves.
	for x := int32(0); x < 5; x++ {
		w.SetObstacle(x, 2, 0, true)
	}
	pf := NewPathFinder(w, []Profile{DefaultProfile()})
	_, ok := pf.GetPath(0, 0,
		blockpath.FineSquare{X: 2, Z: 0}, blockpath.FineSquare{X: 2, Z: 4},
		blockpath.FineSquare{X: 0, Z: 0}, blockpath.FineSquare{X: 5, Z: 5},
		1000)
	if ok {
		t.Fatal("expected no route through a wall spanning the whole row")
	}
}

func TestGetPathStepUpOntoCurbWithinProfileLimit(t *testing.T) {
	w := NewWorld()
	// The start slab's top (10) is itself within the step limit from
	// ground level, which is how GetPath finds its starting surface.
	w.SetColumn(0, 0, RichRange{Range: Range{Begin: 0, End: 10}, Texture: 1})
	w.SetColumn(1, 0, RichRange{Range: Range{Begin: 0, End: 16}, Texture: 1}) // a 6-unit curb
	profile := DefaultProfile()
	profile.MaxStepUp20 = 10
	pf := NewPathFinder(w, []Profile{profile})

	cost, ok := pf.GetPath(0, 0,
		blockpath.FineSquare{X: 0, Z: 0}, blockpath.FineSquare{X: 1, Z: 0},
		blockpath.FineSquare{X: 0, Z: 0}, blockpath.FineSquare{X: 2, Z: 1},
		100)
	if !ok || cost != 1 {
		t.Fatalf("GetPath onto a within-limit curb = (%v, %v), want (1, true)", cost, ok)
	}
}

func TestGetPathRejectsStepOntoCurbBeyondLimit(t *testing.T) {
	w := NewWorld()
	w.SetColumn(0, 0, RichRange{Range: Range{Begin: 0, End: 10}, Texture: 1})
	w.SetColumn(1, 0, RichRange{Range: Range{Begin: 0, End: 50}, Texture: 1}) // a 40-unit wall
	profile := DefaultProfile()
	profile.MaxStepUp20 = 10
	pf := NewPathFinder(w, []Profile{profile})

	_, ok := pf.GetPath(0, 0,
		blockpath.FineSquare{X: 0, Z: 0}, blockpath.FineSquare{X: 1, Z: 0},
		blockpath.FineSquare{X: 0, Z: 0}, blockpath.FineSquare{X: 2, Z: 1},
		100)
	if ok {
		t.Fatal("expected no route: the curb exceeds the profile's max step-up")
	}
}
