// Command analyze prints quick, human-readable heuristics about the puzzle
// files in a directory (default "puzzles"). It summarizes size and charge,
// counts the usable connections of the path graph, and highlights batteries
// whose charge can never reach anything else.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/wricardo/mcp-training/stromrallye/game/engine"
	"github.com/wricardo/mcp-training/stromrallye/game/grid"
	"github.com/wricardo/mcp-training/stromrallye/game/solver"
)

// Report is the analysis of one puzzle.
type Report struct {
	Name        string
	Size        int
	Robot       grid.Point
	RobotCharge int
	Batteries   int
	TotalCharge int
	MaxCharge   int

	Pairs          int
	AvailablePairs int
	// Reachable counts batteries the robot can reach on its starting charge.
	Reachable int
	// Isolated lists charged batteries with no route to another point that
	// either side has the charge to cover.
	Isolated []grid.Point
	Feasible bool
	// ClosedTour is true on even boards, where the search tour is a real
	// grid cycle.
	ClosedTour bool
}

func main() {
	dir := "puzzles"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		fmt.Printf("Error reading directory: %v\n", err)
		os.Exit(1)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && engine.IsPuzzleFile(entry.Name()) {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	for _, name := range files {
		fmt.Printf("\n=== Analyzing %s ===\n", name)
		p, err := engine.LoadPuzzle(filepath.Join(dir, name))
		if err != nil {
			fmt.Printf("Error loading puzzle: %v\n", err)
			continue
		}
		report, err := analyzePuzzle(p)
		if err != nil {
			fmt.Printf("Error analyzing puzzle: %v\n", err)
			continue
		}
		printReport(os.Stdout, report)
	}
}

func analyzePuzzle(p *engine.Puzzle) (*Report, error) {
	s, err := solver.New(p, solver.Options{})
	if err != nil {
		return nil, err
	}

	r := &Report{
		Name:        p.Name,
		Size:        p.Size,
		Robot:       p.Robot.Position,
		RobotCharge: p.Robot.Charge,
		Batteries:   len(p.Batteries),
		TotalCharge: p.TotalCharge(),
		MaxCharge:   p.Robot.Charge,
		Feasible:    s.IsFeasible(s.Initial()),
		ClosedTour:  p.Size%2 == 0,
	}

	g := s.Graph()
	points := g.Points()
	r.Pairs = len(points) * (len(points) - 1) / 2
	r.AvailablePairs = g.AvailableEdges()

	charge := make(map[int]int, len(points))
	start := grid.Encode(p.Robot.Position, p.Size)
	charge[start] = p.Robot.Charge
	for _, b := range p.Batteries {
		charge[grid.Encode(b.Position, p.Size)] = b.Charge
		r.MaxCharge = max(r.MaxCharge, b.Charge)
	}

	for _, b := range s.Batteries() {
		if path := g.Path(start, b); path != nil && path.Available && path.Length <= p.Robot.Charge {
			r.Reachable++
		}
		if charge[b] == 0 {
			continue
		}

		connected := false
		for _, other := range points {
			if other == b {
				continue
			}
			path := g.Path(b, other)
			if path != nil && path.Available && path.Length <= max(charge[b], charge[other]) {
				connected = true
				break
			}
		}
		if !connected {
			r.Isolated = append(r.Isolated, grid.Decode(b, p.Size))
		}
	}

	return r, nil
}

func printReport(w io.Writer, r *Report) {
	fmt.Fprintf(w, "Name: %s\n", r.Name)
	fmt.Fprintf(w, "Grid Size: %d x %d\n", r.Size, r.Size)
	fmt.Fprintf(w, "Robot: (%d, %d) with charge %d\n", r.Robot.X, r.Robot.Y, r.RobotCharge)
	fmt.Fprintf(w, "Batteries: %d\n", r.Batteries)
	fmt.Fprintf(w, "Total Charge: %d (max single charge %d)\n", r.TotalCharge, r.MaxCharge)
	fmt.Fprintf(w, "Available Pairs: %d of %d\n", r.AvailablePairs, r.Pairs)
	fmt.Fprintf(w, "Reachable From Start: %d\n", r.Reachable)
	if r.ClosedTour {
		fmt.Fprintf(w, "Tour: closed serpentine cycle\n")
	} else {
		fmt.Fprintf(w, "Tour: spiral (odd board, no closed cycle)\n")
	}

	if len(r.Isolated) > 0 {
		fmt.Fprintf(w, "⚠️  WARNING: %d batteries are isolated!\n", len(r.Isolated))
		for i, p := range r.Isolated {
			if i < 5 {
				fmt.Fprintf(w, "   Isolated: (%d, %d)\n", p.X, p.Y)
			}
		}
		if len(r.Isolated) > 5 {
			fmt.Fprintf(w, "   ... and %d more\n", len(r.Isolated)-5)
		}
	}

	if r.Feasible {
		fmt.Fprintf(w, "✅ Robot and batteries form one connected cluster\n")
	} else {
		fmt.Fprintf(w, "⚠️  CRITICAL: charge is split between disconnected clusters\n")
	}
}
