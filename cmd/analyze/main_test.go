package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wricardo/mcp-training/stromrallye/game/engine"
	"github.com/wricardo/mcp-training/stromrallye/game/grid"
)

func cornerPuzzle() *engine.Puzzle {
	return &engine.Puzzle{
		Name:  "corner",
		Size:  3,
		Robot: engine.RobotSpec{Position: grid.Point{X: 1, Y: 1}, Charge: 2},
		Batteries: []engine.BatterySpec{
			{Position: grid.Point{X: 3, Y: 1}, Charge: 1},
		},
	}
}

func TestAnalyzePuzzle_Connected(t *testing.T) {
	r, err := analyzePuzzle(cornerPuzzle())
	if err != nil {
		t.Fatalf("analyzePuzzle failed: %v", err)
	}

	if r.Size != 3 || r.Batteries != 1 || r.TotalCharge != 3 || r.MaxCharge != 2 {
		t.Errorf("Unexpected summary: %+v", r)
	}
	if r.Pairs != 1 || r.AvailablePairs != 1 {
		t.Errorf("Expected 1 of 1 pairs available, got %d of %d", r.AvailablePairs, r.Pairs)
	}
	if r.Reachable != 1 {
		t.Errorf("Expected 1 reachable battery, got %d", r.Reachable)
	}
	if len(r.Isolated) != 0 {
		t.Errorf("Expected no isolated batteries, got %v", r.Isolated)
	}
	if !r.Feasible {
		t.Error("Expected feasible puzzle")
	}
	if r.ClosedTour {
		t.Error("Odd board should not report a closed tour")
	}
}

func TestAnalyzePuzzle_Islands(t *testing.T) {
	p := &engine.Puzzle{
		Name:  "islands",
		Size:  5,
		Robot: engine.RobotSpec{Position: grid.Point{X: 3, Y: 3}, Charge: 1},
		Batteries: []engine.BatterySpec{
			{Position: grid.Point{X: 1, Y: 1}, Charge: 1},
			{Position: grid.Point{X: 5, Y: 5}, Charge: 1},
		},
	}

	r, err := analyzePuzzle(p)
	if err != nil {
		t.Fatalf("analyzePuzzle failed: %v", err)
	}
	if r.Pairs != 3 {
		t.Errorf("Expected 3 pairs, got %d", r.Pairs)
	}
	if r.Reachable != 0 {
		t.Errorf("Expected no reachable batteries, got %d", r.Reachable)
	}
	if len(r.Isolated) != 2 {
		t.Errorf("Expected 2 isolated batteries, got %v", r.Isolated)
	}
	if r.Feasible {
		t.Error("Expected infeasible puzzle")
	}
}

func TestAnalyzePuzzle_EvenBoard(t *testing.T) {
	r, err := analyzePuzzle(engine.DefaultPuzzle())
	if err != nil {
		t.Fatalf("analyzePuzzle failed: %v", err)
	}
	if !r.ClosedTour {
		t.Error("Even board should report a closed tour")
	}
	if r.TotalCharge != 10 {
		t.Errorf("Expected total charge 10, got %d", r.TotalCharge)
	}
}

func TestAnalyzePuzzle_Invalid(t *testing.T) {
	p := cornerPuzzle()
	p.Batteries[0].Position = grid.Point{X: 1, Y: 1}

	if _, err := analyzePuzzle(p); err == nil {
		t.Error("Expected error for battery on the robot's cell")
	}
}

func TestPrintReport(t *testing.T) {
	r, err := analyzePuzzle(cornerPuzzle())
	if err != nil {
		t.Fatalf("analyzePuzzle failed: %v", err)
	}

	var buf bytes.Buffer
	printReport(&buf, r)
	out := buf.String()

	for _, want := range []string{
		"Name: corner",
		"Grid Size: 3 x 3",
		"Robot: (1, 1) with charge 2",
		"Available Pairs: 1 of 1",
		"✅ Robot and batteries form one connected cluster",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "WARNING") {
		t.Errorf("Unexpected warning:\n%s", out)
	}
}

func TestPrintReport_Warnings(t *testing.T) {
	r := &Report{
		Name:     "many",
		Size:     9,
		Isolated: make([]grid.Point, 7),
	}

	var buf bytes.Buffer
	printReport(&buf, r)
	out := buf.String()

	if !strings.Contains(out, "7 batteries are isolated") || !strings.Contains(out, "... and 2 more") {
		t.Errorf("Expected isolation warning, got:\n%s", out)
	}
	if !strings.Contains(out, "CRITICAL") {
		t.Errorf("Expected critical line, got:\n%s", out)
	}
}

func TestLibraryPuzzles(t *testing.T) {
	p, err := engine.LoadPuzzle(filepath.Join("..", "..", "puzzles", "loop.json"))
	if err != nil {
		t.Skipf("puzzle library not available: %v", err)
	}

	r, err := analyzePuzzle(p)
	if err != nil {
		t.Fatalf("analyzePuzzle failed: %v", err)
	}
	if r.Name != "loop" || !r.Feasible {
		t.Errorf("Expected feasible loop puzzle, got %+v", r)
	}
}
