// Package blockpath implements the hierarchical path estimator: a
// coarse block-graph pathfinding layer that precomputes, caches and
// incrementally maintains traversal costs between representative
// squares of adjacent fixed-size blocks of a fine grid (spec §1–§9).
package blockpath

import (
	"fmt"

	"github.com/rs/zerolog"

	"blockpath/block"
	"blockpath/internal/logx"
)

// FinePathFinderFactory constructs one fine path finder instance. It is
// called once per precompute/update worker, since the fine path finder
// is not reentrant (§5, §9).
type FinePathFinderFactory func() FinePathFinder

// Option configures optional collaborators on an Estimator.
type Option func(*Estimator)

// WithLogger attaches a zerolog logger; the default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(e *Estimator) { e.log = log }
}

// WithProgressSink attaches the §4.E progress reporting collaborator.
func WithProgressSink(sink ProgressSink) Option {
	return func(e *Estimator) { e.progress = sink }
}

// Estimator is the hierarchical path estimator for one BLOCK_SIZE layer
// of one map. Multiple Estimators with different BLOCK_SIZE may coexist
// over the same Terrain (§3).
type Estimator struct {
	cfg      Config
	grid     *block.Grid
	vertices *block.Table

	terrain           Terrain
	registry          MoveClassRegistry
	newFinePathFinder FinePathFinderFactory
	flow              FlowCostOverlay

	log      zerolog.Logger
	progress ProgressSink

	obsolete           obsoleteQueue
	blockUpdatePenalty float32

	syncedCache   *resultCache
	unsyncedCache *resultCache

	pathChecksum uint32
}

// New constructs an Estimator over a blockSize×blockSize partitioning of
// an nx×nz block map. terrain, registry, flow and newFinePathFinder are
// the consumed collaborators of §6; they must be non-nil.
func New(cfg Config, blockSize, nx, nz int32, terrain Terrain, registry MoveClassRegistry, flow FlowCostOverlay, newFinePathFinder FinePathFinderFactory, opts ...Option) *Estimator {
	if terrain == nil || registry == nil || flow == nil || newFinePathFinder == nil {
		panic("blockpath: terrain, registry, flow and newFinePathFinder are required")
	}
	cfg = cfg.withDefaults()
	grid := block.New(blockSize, nx, nz, registry.NumClasses())

	e := &Estimator{
		cfg:               cfg,
		grid:              grid,
		vertices:          block.NewTable(grid),
		terrain:           terrain,
		registry:          registry,
		newFinePathFinder: newFinePathFinder,
		flow:              flow,
		log:               logx.Nop(),
		progress:          noopProgressSink{},
		syncedCache:       newResultCache(defaultResultCacheCapacity),
		unsyncedCache:     newResultCache(defaultResultCacheCapacity),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// BlockSize, NumBlocks expose the grid's dimensions for callers building
// a cache path or sizing a higher/lower-resolution companion estimator.
func (e *Estimator) BlockSize() int32 { return e.grid.BlockSize }
func (e *Estimator) NumBlocks() int   { return e.grid.NumBlocks() }

// PathChecksum returns §6's path_checksum, valid once Init has run.
func (e *Estimator) PathChecksum() uint32 { return e.pathChecksum }

// CachePath builds this estimator's on-disk cache path for mapName,
// suitable for passing to Init.
func (e *Estimator) CachePath(mapName string) string {
	return cacheFilePath(e.cfg.CacheDir, mapName, e.cfg.CacheName, e.datasetHash())
}

// datasetHash implements §3's "Dataset hash" formula.
func (e *Estimator) datasetHash() uint32 {
	return e.terrain.MapChecksum() + e.registry.Checksum() + uint32(e.grid.BlockSize) + e.cfg.FormatVersion
}

// Init runs the startup control flow of §2: attempt to load a matching
// on-disk cache; on a miss, run the parallel precompute driver and write
// a fresh cache.
func (e *Estimator) Init(cachePath string) error {
	hash := e.datasetHash()
	if err := e.loadCache(cachePath, hash); err == nil {
		e.log.Debug().Str("cache", cachePath).Msg("pathinfo cache hit")
		return nil
	} else if err != errCacheMiss {
		e.log.Warn().Err(err).Str("cache", cachePath).Msg("pathinfo cache unreadable, recomputing")
	}

	e.log.Info().Int("blocks", e.grid.NumBlocks()).Msg("precomputing block path tables")
	if err := e.precompute(); err != nil {
		return fmt.Errorf("blockpath: precompute: %w", err)
	}

	if err := e.writeCache(cachePath, hash); err != nil {
		// §7: unwritable cache directory is silent; the estimator works
		// without persistence.
		e.log.Warn().Err(err).Str("cache", cachePath).Msg("failed to persist pathinfo cache")
		return nil
	}
	return nil
}
