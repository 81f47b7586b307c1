package block

import "testing"

func TestNewTableInitializedToInfinity(t *testing.T) {
	g := New(16, 3, 3, 1)
	tab := NewTable(g)
	idx := g.IndexOf(Pos{X: 1, Z: 1})
	if got := tab.Cost(0, idx, Left); got != Infinity {
		t.Fatalf("fresh table cost = %v, want Infinity", got)
	}
	if got := tab.Cost(0, idx, Right); got != Infinity {
		t.Fatalf("fresh mirrored cost = %v, want Infinity", got)
	}
}

func TestSetPanicsOnDerivedDirection(t *testing.T) {
	g := New(16, 3, 3, 1)
	tab := NewTable(g)
	idx := g.IndexOf(Pos{X: 1, Z: 1})
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic writing a derived direction")
		}
	}()
	tab.Set(0, idx, Right, 4.5)
}

func TestMirrorRuleSymmetry(t *testing.T) {
	g := New(16, 4, 4, 1)
	tab := NewTable(g)

	a := g.IndexOf(Pos{X: 1, Z: 1})
	tab.Set(0, a, Left, 2.5)
	tab.Set(0, a, Up, 1.0)
	tab.Set(0, a, LeftUp, 3.0)
	tab.Set(0, a, RightUp, 4.0)

	leftNbr := g.IndexOf(Pos{X: 0, Z: 1})
	if got := tab.Cost(0, leftNbr, Right); got != 2.5 {
		t.Fatalf("mirrored Right from left neighbour = %v, want 2.5", got)
	}
	upNbr := g.IndexOf(Pos{X: 1, Z: 0})
	if got := tab.Cost(0, upNbr, Down); got != 1.0 {
		t.Fatalf("mirrored Down from up neighbour = %v, want 1.0", got)
	}
}

func TestCostAtMapEdgeDoesNotWrap(t *testing.T) {
	// A block in the rightmost column has no Right neighbour; reading its
	// mirrored Right cost must report Infinity rather than wrapping into
	// the next row's Left slot, which raw index arithmetic would do.
	g := New(16, 4, 4, 1)
	tab := NewTable(g)

	wrapTarget := g.IndexOf(Pos{X: 0, Z: 2})
	tab.Set(0, wrapTarget, Left, 9.0)

	rightEdge := g.IndexOf(Pos{X: 3, Z: 1})
	if got := tab.Cost(0, rightEdge, Right); got != Infinity {
		t.Fatalf("edge block Right cost = %v, want Infinity (no wraparound)", got)
	}
}
