// Package validate checks puzzle files before they go into the library.
//
// For each file it checks:
//   - the file decodes in the format its extension names (.txt, .json, .yaml)
//   - the puzzle passes engine.ValidatePuzzle
//   - the robot and every charged battery form one connected cluster
//   - optionally, that the solver finds a drain-everything path
package validate

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/wricardo/mcp-training/stromrallye/game/engine"
	"github.com/wricardo/mcp-training/stromrallye/game/solver"
)

// Options select the checks to run.
type Options struct {
	// Solve runs the full search on every puzzle that passes the cheap checks.
	Solve bool
	// MaxNodes caps each search. Zero means unlimited.
	MaxNodes int
	// Timeout bounds each search. Zero means no timeout.
	Timeout time.Duration
}

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...any) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) note(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// File loads and validates a single puzzle file.
func File(ctx context.Context, path string, opts Options) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(path),
		Valid:  true,
		Errors: []string{},
	}

	puzzle, err := engine.LoadPuzzle(path)
	if err != nil {
		result.fail("Failed to load puzzle: %v", err)
		return result
	}

	result.note("size %d, %d batteries, total charge %d", puzzle.Size, len(puzzle.Batteries), puzzle.TotalCharge())
	checkPuzzle(ctx, puzzle, opts, &result)
	return result
}

// Puzzle runs the same checks as File on an already decoded puzzle.
func Puzzle(ctx context.Context, name string, puzzle *engine.Puzzle, opts Options) ValidationResult {
	result := ValidationResult{File: name, Valid: true, Errors: []string{}}
	if err := engine.ValidatePuzzle(puzzle); err != nil {
		result.fail("%v", err)
		return result
	}
	checkPuzzle(ctx, puzzle, opts, &result)
	return result
}

func checkPuzzle(ctx context.Context, puzzle *engine.Puzzle, opts Options, result *ValidationResult) {
	s, err := solver.New(puzzle, solver.Options{MaxNodes: opts.MaxNodes})
	if err != nil {
		result.fail("Failed to prepare solver: %v", err)
		return
	}

	if !s.IsFeasible(s.Initial()) {
		result.fail("Charge is split between disconnected clusters")
		return
	}

	if !opts.Solve {
		return
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	sol, err := s.Solve(ctx)
	switch {
	case errors.Is(err, solver.ErrUnsolvable):
		result.fail("Unsolvable: no path drains every battery")
	case errors.Is(err, solver.ErrBudgetExhausted), errors.Is(err, context.DeadlineExceeded):
		result.note("Search gave up: %v", err)
	case err != nil:
		result.fail("Solver error: %v", err)
	default:
		if err := solver.Verify(puzzle, sol.Path); err != nil {
			result.fail("Solution does not replay: %v", err)
			return
		}
		result.note("solved in %d steps (%d workers expanded)", len(sol.Path), sol.Expanded)
	}
}

// Paths validates every puzzle file named in paths. Directories are expanded
// to the puzzle files they contain, sorted by name.
func Paths(ctx context.Context, paths []string, opts Options) ([]ValidationResult, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}

		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read directory %s: %w", p, err)
		}
		var found []string
		for _, entry := range entries {
			if !entry.IsDir() && engine.IsPuzzleFile(entry.Name()) {
				found = append(found, filepath.Join(p, entry.Name()))
			}
		}
		sort.Strings(found)
		files = append(files, found...)
	}

	results := make([]ValidationResult, 0, len(files))
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		results = append(results, File(ctx, f, opts))
	}
	return results, nil
}
