package main

import (
	"encoding/json"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/mazeveil/echomaze/game/engine"
)

func TestSampleMaze(t *testing.T) {
	cfg := engine.DefaultConfig()
	rng := rand.New(rand.NewSource(7))

	stats := sampleMaze(cfg, rng)

	if stats.TotalCells != cfg.GridWidth*cfg.GridHeight {
		t.Errorf("TotalCells = %d, want %d", stats.TotalCells, cfg.GridWidth*cfg.GridHeight)
	}
	if stats.OpenCells <= 0 || stats.OpenCells >= stats.TotalCells {
		t.Errorf("OpenCells = %d out of %d, implausible", stats.OpenCells, stats.TotalCells)
	}
	if stats.ExtraLoops < 0 {
		t.Errorf("ExtraLoops = %d, maze lost connectivity accounting", stats.ExtraLoops)
	}
	if stats.AvgReachable <= 0 {
		t.Errorf("AvgReachable = %f, want positive", stats.AvgReachable)
	}
}

func TestSampleMaze_NoLoopsConfigured(t *testing.T) {
	cfg := engine.DefaultConfig()
	cfg.LoopPasses = 0
	rng := rand.New(rand.NewSource(7))

	stats := sampleMaze(cfg, rng)
	if stats.ExtraLoops != 0 {
		t.Errorf("ExtraLoops = %d on a perfect maze, want 0", stats.ExtraLoops)
	}
}

func TestAnalyzeConfig(t *testing.T) {
	dir := t.TempDir()
	data, err := json.Marshal(engine.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "default.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	rng := rand.New(rand.NewSource(1))
	if err := analyzeConfig(path, rng); err != nil {
		t.Errorf("analyzeConfig: %v", err)
	}

	if err := analyzeConfig(filepath.Join(dir, "missing.json"), rng); err == nil {
		t.Error("expected error for missing file")
	}
}
