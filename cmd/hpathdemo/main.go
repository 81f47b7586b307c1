// Command hpathdemo builds a small world, precomputes its block path
// tables, runs a search and an incremental update tick, and prints what
// happened. It exists to exercise the estimator end to end, not as a
// production tool.
package main

import (
	"fmt"
	"os"

	"blockpath"
	"blockpath/block"
	"blockpath/internal/logx"
	"blockpath/terrain"
)

const (
	mapSize   = 64
	blockSize = 16
)

func buildWorld() *terrain.World {
	w := terrain.NewWorld()
	ground := terrain.RichRange{Range: terrain.Range{Begin: 0, End: 20}, Texture: 0}
	for z := int32(0); z < mapSize; z++ {
		for x := int32(0); x < mapSize; x++ {
			w.SetColumn(x, z, ground)
		}
	}
	return w
}

func main() {
	log := logx.New()

	world := buildWorld()
	profiles := []terrain.Profile{terrain.DefaultProfile()}
	tr := terrain.New(world, profiles)
	registry := terrain.NewRegistry(blockpath.MoveDef{PathType: 0, RefCount: 1})

	est := blockpath.New(
		blockpath.Config{CacheDir: os.TempDir(), CacheName: "hpathdemo"},
		blockSize, mapSize/blockSize, mapSize/blockSize,
		tr, registry, blockpath.NopFlowCostOverlay{},
		func() blockpath.FinePathFinder { return terrain.NewPathFinder(world, profiles) },
		blockpath.WithLogger(log),
	)

	if err := est.Init(est.CachePath("demo")); err != nil {
		log.Fatal().Err(err).Msg("init failed")
	}

	goal := blockpath.RadiusGoal{Center: blockpath.FineSquare{X: 56, Z: 56}, Radius: 8}
	path, err := est.DoSearch(block.Pos{X: 0, Z: 0}, goal, 0, 0, true)
	if err != nil {
		fmt.Println("search result:", err)
	} else {
		fmt.Printf("search OK: %d blocks, cost %.2f\n", len(path.Blocks), path.Cost)
	}

	est.MapChanged(32, 0, 34, 48)
	if err := est.Update(); err != nil {
		log.Fatal().Err(err).Msg("update failed")
	}
	fmt.Println("path checksum:", est.PathChecksum())
}
