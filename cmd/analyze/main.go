// Command analyze prints quick, human-readable heuristics about
// configuration files in the configs directory. For each config it generates
// a sample maze and summarizes dimensions, corridor density, loop count, and
// how far a die roll typically carries the runner, so config authors can
// compare variants without playing them.
//
// Usage: analyze [configs-dir] (defaults to ./configs)
package main

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/mazeveil/echomaze/game/engine"
)

// mazeStats aggregates measurements over sampled mazes for one config.
type mazeStats struct {
	OpenCells    int
	TotalCells   int
	ExtraLoops   int
	AvgReachable float64
}

// sampleMaze generates one maze from the config and measures it. The
// reachability average is taken over every open cell with the config's
// maximum die roll as the step budget.
func sampleMaze(cfg *engine.GameConfig, rng *rand.Rand) mazeStats {
	grid := engine.GenerateMaze(cfg.GridWidth, cfg.GridHeight, rng)
	engine.AddLoops(grid, cfg.LoopPasses, cfg.LoopChance, rng)

	var stats mazeStats
	stats.TotalCells = grid.Rows() * grid.Cols()

	var open []engine.Position
	for row := 0; row < grid.Rows(); row++ {
		for col := 0; col < grid.Cols(); col++ {
			if grid.IsOpen(engine.Position{Row: row, Col: col}) {
				open = append(open, engine.Position{Row: row, Col: col})
			}
		}
	}
	stats.OpenCells = len(open)

	// A perfect maze on N open cells has N-1 corridor adjacencies; anything
	// beyond that is a loop the augmentation pass added.
	adjacencies := 0
	for _, pos := range open {
		for _, next := range []engine.Position{
			{Row: pos.Row + 1, Col: pos.Col},
			{Row: pos.Row, Col: pos.Col + 1},
		} {
			if grid.IsOpen(next) {
				adjacencies++
			}
		}
	}
	stats.ExtraLoops = adjacencies - (len(open) - 1)

	total := 0
	for _, pos := range open {
		total += len(engine.Reachable(grid, pos, cfg.DiceSides))
	}
	if len(open) > 0 {
		stats.AvgReachable = float64(total) / float64(len(open))
	}

	return stats
}

// analyzeConfig loads one config and prints its report.
func analyzeConfig(path string, rng *rand.Rand) error {
	cfg, err := engine.LoadGameConfig(path)
	if err != nil {
		return err
	}

	stats := sampleMaze(cfg, rng)

	fmt.Printf("\n== %s (%s)\n", cfg.Name, filepath.Base(path))
	fmt.Printf("   %s\n", cfg.Description)
	fmt.Printf("   Grid: %dx%d, dice d%d, echo charge %d (%s expiry)\n",
		cfg.GridWidth, cfg.GridHeight, cfg.DiceSides, cfg.MaxEchoCharge, cfg.EchoExpiry)
	fmt.Printf("   Open cells: %d/%d (%.0f%%)\n",
		stats.OpenCells, stats.TotalCells, 100*float64(stats.OpenCells)/float64(stats.TotalCells))
	fmt.Printf("   Extra loops beyond spanning tree: %d\n", stats.ExtraLoops)
	fmt.Printf("   Avg cells reachable on a max roll: %.1f\n", stats.AvgReachable)
	fmt.Printf("   Placement: exit ≥%d, warden ≥%d (grid max distance %d)\n",
		cfg.MinExitDistance, cfg.MinEnemyDistance,
		(cfg.GridWidth-2)+(cfg.GridHeight-2))

	return nil
}

func main() {
	configDir := "configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}

	files, err := filepath.Glob(filepath.Join(configDir, "*.json"))
	if err != nil || len(files) == 0 {
		fmt.Printf("No config files found in %s\n", configDir)
		os.Exit(1)
	}

	rng := rand.New(rand.NewSource(1))
	failed := false
	for _, file := range files {
		if err := analyzeConfig(file, rng); err != nil {
			fmt.Printf("\n== %s: %v\n", filepath.Base(file), err)
			failed = true
		}
	}

	if failed {
		os.Exit(1)
	}
}
