package blockpath

import (
	"os"
	"path/filepath"
	"testing"

	"blockpath/block"
)

func TestNewPanicsOnNilCollaborator(t *testing.T) {
	terrain := newFlatTerrain()
	registry := &simpleRegistry{classes: []MoveDef{{PathType: 0, RefCount: 1}}}
	flow := NopFlowCostOverlay{}
	factory := func() FinePathFinder { return &recordingPathFinder{ok: true} }

	cases := []struct {
		name string
		fn   func()
	}{
		{"nil terrain", func() { New(Config{}, 8, 2, 2, nil, registry, flow, factory) }},
		{"nil registry", func() { New(Config{}, 8, 2, 2, terrain, nil, flow, factory) }},
		{"nil flow", func() { New(Config{}, 8, 2, 2, terrain, registry, nil, factory) }},
		{"nil factory", func() { New(Config{}, 8, 2, 2, terrain, registry, flow, nil) }},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Fatal("expected panic")
				}
			}()
			c.fn()
		})
	}
}

func newTestEstimator() *Estimator {
	terrain := newFlatTerrain()
	registry := &simpleRegistry{classes: []MoveDef{{PathType: 0, RefCount: 1}}}
	return New(Config{}, 8, 2, 2, terrain, registry, NopFlowCostOverlay{}, func() FinePathFinder {
		return &recordingPathFinder{ok: true, cost: 1}
	})
}

func TestNewExposesGridDimensions(t *testing.T) {
	e := newTestEstimator()
	if e.BlockSize() != 8 {
		t.Fatalf("BlockSize = %d, want 8", e.BlockSize())
	}
	if e.NumBlocks() != 4 {
		t.Fatalf("NumBlocks = %d, want 4", e.NumBlocks())
	}
}

func TestDatasetHashChangesWithFormatVersion(t *testing.T) {
	terrain := newFlatTerrain()
	registry := &simpleRegistry{classes: []MoveDef{{PathType: 0, RefCount: 1}}}
	factory := func() FinePathFinder { return &recordingPathFinder{ok: true} }

	a := New(Config{FormatVersion: 1}, 8, 2, 2, terrain, registry, NopFlowCostOverlay{}, factory)
	b := New(Config{FormatVersion: 2}, 8, 2, 2, terrain, registry, NopFlowCostOverlay{}, factory)
	if a.datasetHash() == b.datasetHash() {
		t.Fatal("datasetHash must change when FormatVersion changes")
	}
}

func TestCachePathIncludesDatasetHash(t *testing.T) {
	e := newTestEstimator()
	path := e.CachePath("arena")
	want := cacheFilePath("", "arena", e.cfg.CacheName, e.datasetHash())
	if path != want {
		t.Fatalf("CachePath = %q, want %q", path, want)
	}
}

func TestInitRunsPrecomputeOnCacheMissThenPersists(t *testing.T) {
	e := newTestEstimator()
	dir := t.TempDir()
	e.cfg.CacheDir = dir
	cachePath := e.CachePath("arena")

	if err := e.Init(cachePath); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if e.PathChecksum() == 0 {
		t.Fatal("expected a nonzero path checksum after a fresh precompute+write")
	}

	// A second estimator over the same layout should now hit the cache
	// Init just wrote, rather than recomputing.
	e2 := newTestEstimator()
	e2.cfg.CacheDir = dir
	if err := e2.Init(e2.CachePath("arena")); err != nil {
		t.Fatalf("second Init: %v", err)
	}
	if e2.PathChecksum() != e.PathChecksum() {
		t.Fatalf("second estimator checksum = %x, want %x (cache hit)", e2.PathChecksum(), e.PathChecksum())
	}
}

func TestInitWithUnwritableCacheDirStillSucceeds(t *testing.T) {
	e := newTestEstimator()
	// A path nested under a file (not a directory) can never be created.
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	e.cfg.CacheDir = blocker

	if err := e.Init(e.CachePath("arena")); err != nil {
		t.Fatalf("Init must tolerate an unwritable cache dir, got: %v", err)
	}
}

func TestFindPathCachedStoresAndReusesSearchResults(t *testing.T) {
	e := newTestEstimator()
	// Give every stored direction a finite cost so DoSearch can traverse.
	for idx := 0; idx < e.grid.NumBlocks(); idx++ {
		for d := block.Left; d < block.Right; d++ {
			e.vertices.Set(0, block.Index(idx), d, 1)
		}
	}
	goal := RadiusGoal{Center: FineSquare{X: 1*8 + 4, Z: 1*8 + 4}, Radius: 1}

	p1, err := e.FindPathCached(block.Pos{X: 0, Z: 0}, block.Pos{X: 1, Z: 1}, 1, 0, 0, true, goal)
	if err != nil {
		t.Fatalf("FindPathCached: %v", err)
	}

	// Second call must be served from cache: verified indirectly, since a
	// result cache hit short-circuits DoSearch entirely and still returns
	// a consistent cost.
	p2, err := e.FindPathCached(block.Pos{X: 0, Z: 0}, block.Pos{X: 1, Z: 1}, 1, 0, 0, true, goal)
	if err != nil {
		t.Fatalf("FindPathCached (cached): %v", err)
	}
	if p1.Cost != p2.Cost {
		t.Fatalf("cached cost %v != original cost %v", p2.Cost, p1.Cost)
	}
}
