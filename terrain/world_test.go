package terrain

import "testing"

func TestWorldInternDeduplicatesIdenticalColumns(t *testing.T) {
	w := NewWorld()
	w.SetColumn(0, 0, RichRange{Range: Range{Begin: 0, End: 20}, Texture: 1})
	w.SetColumn(5, 5, RichRange{Range: Range{Begin: 0, End: 20}, Texture: 1})

	if len(w.cols) != 1 {
		t.Fatalf("expected one interned column, got %d", len(w.cols))
	}
}

func TestWorldInternKeepsDistinctColumnsSeparate(t *testing.T) {
	w := NewWorld()
	w.SetColumn(0, 0, RichRange{Range: Range{Begin: 0, End: 20}, Texture: 1})
	w.SetColumn(1, 0, RichRange{Range: Range{Begin: 0, End: 30}, Texture: 1})

	if len(w.cols) != 2 {
		t.Fatalf("expected two distinct columns, got %d", len(w.cols))
	}
}

func TestWorldColumnAtMissingSquare(t *testing.T) {
	w := NewWorld()
	if _, ok := w.columnAt(100, 100); ok {
		t.Fatal("expected no column at an untouched square")
	}
}

func TestWorldColumnAtCrossesChunkBoundary(t *testing.T) {
	w := NewWorld()
	w.SetColumn(chunkDim-1, chunkDim-1, RichRange{Range: Range{Begin: 0, End: 10}, Texture: 9})
	w.SetColumn(chunkDim, chunkDim, RichRange{Range: Range{Begin: 0, End: 20}, Texture: 9})

	a, ok := w.columnAt(chunkDim-1, chunkDim-1)
	if !ok || a.raw[0].End != 10 {
		t.Fatalf("columnAt(%d,%d) = %+v, %v", chunkDim-1, chunkDim-1, a, ok)
	}
	b, ok := w.columnAt(chunkDim, chunkDim)
	if !ok || b.raw[0].End != 20 {
		t.Fatalf("columnAt(%d,%d) = %+v, %v", chunkDim, chunkDim, b, ok)
	}
}

func TestWorldColumnAtNegativeCoordinates(t *testing.T) {
	w := NewWorld()
	w.SetColumn(-1, -1, RichRange{Range: Range{Begin: 0, End: 15}, Texture: 4})
	got, ok := w.columnAt(-1, -1)
	if !ok || got.raw[0].End != 15 {
		t.Fatalf("columnAt(-1,-1) = %+v, %v", got, ok)
	}
	if _, ok := w.columnAt(-2, -1); ok {
		t.Fatal("did not expect a column at an untouched negative square")
	}
}

func TestWorldSetObstacleGlobalAndPerOwner(t *testing.T) {
	w := NewWorld()
	w.SetObstacle(3, 3, 0, true) // blocked for everyone
	if !w.hasObstacle(3, 3, 7) {
		t.Fatal("owner-0 obstacle must block every owner")
	}

	w.SetObstacle(4, 4, 5, true) // blocked only for owner 5
	if w.hasObstacle(4, 4, 6) {
		t.Fatal("owner-5 obstacle must not block owner 6")
	}
	if !w.hasObstacle(4, 4, 5) {
		t.Fatal("owner-5 obstacle must block owner 5")
	}

	w.SetObstacle(3, 3, 0, false)
	if w.hasObstacle(3, 3, 7) {
		t.Fatal("clearing the obstacle must unblock it")
	}
}

func TestWorldChecksumChangesWithContent(t *testing.T) {
	w1 := NewWorld()
	w1.SetColumn(0, 0, RichRange{Range: Range{Begin: 0, End: 20}, Texture: 1})

	w2 := NewWorld()
	w2.SetColumn(0, 0, RichRange{Range: Range{Begin: 0, End: 30}, Texture: 1})

	if w1.Checksum() == w2.Checksum() {
		t.Fatal("checksums of differently-shaped worlds must differ")
	}
}

func TestWorldChecksumDeterministicForIdenticalBuild(t *testing.T) {
	build := func() *World {
		w := NewWorld()
		w.SetColumn(0, 0, RichRange{Range: Range{Begin: 0, End: 20}, Texture: 1})
		w.SetColumn(1, 0, RichRange{Range: Range{Begin: 0, End: 30}, Texture: 2})
		return w
	}
	if build().Checksum() != build().Checksum() {
		t.Fatal("checksum must be deterministic for the same construction sequence")
	}
}
