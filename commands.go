package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	mrand "math/rand/v2"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/mcp-training/stromrallye/game/config"
	"github.com/wricardo/mcp-training/stromrallye/game/engine"
	"github.com/wricardo/mcp-training/stromrallye/game/generator"
	"github.com/wricardo/mcp-training/stromrallye/game/solver"
	"github.com/wricardo/mcp-training/stromrallye/validate"
)

func stdout(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func debugLogger(cmd *cli.Command) *log.Logger {
	w := cmd.Root().ErrWriter
	if w == nil {
		w = os.Stderr
	}
	return log.New(w, "", 0)
}

// loadPuzzleArg reads "-" from stdin in the text format, an existing file by
// its extension, or anything else as an id in the puzzle library.
func loadPuzzleArg(arg, puzzleDir string) (*engine.Puzzle, error) {
	if arg == "-" {
		return engine.ParsePuzzle(os.Stdin)
	}
	if _, err := os.Stat(arg); err == nil {
		return engine.LoadPuzzle(arg)
	}

	library, err := config.NewManager(puzzleDir)
	if err != nil {
		return nil, fmt.Errorf("%s is not a file and the library is unavailable: %w", arg, err)
	}
	return library.LoadPuzzle(arg)
}

func solveCommand() *cli.Command {
	return &cli.Command{
		Name:      "solve",
		Usage:     "Print a path that drains the robot and every battery",
		ArgsUsage: "<puzzle file | puzzle id | ->",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "max-nodes",
				Usage: "Give up after expanding this many workers (0 = unlimited)",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Value: time.Minute,
				Usage: "Give up after this long",
			},
			&cli.StringFlag{
				Name:  "output",
				Value: "path",
				Usage: "Output format: path, directions or json",
			},
		},
		Action: solveAction,
	}
}

func solveAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return fmt.Errorf("solve expects exactly one puzzle, got %d arguments", cmd.Args().Len())
	}
	output := cmd.String("output")
	switch output {
	case "path", "directions", "json":
	default:
		return fmt.Errorf("unknown output format %q", output)
	}

	puzzle, err := loadPuzzleArg(cmd.Args().First(), cmd.String("puzzle-dir"))
	if err != nil {
		return err
	}

	if timeout := cmd.Duration("timeout"); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	opts := solver.Options{MaxNodes: int(cmd.Int("max-nodes"))}
	if cmd.Bool("debug") {
		opts.Debug = true
		opts.Logger = debugLogger(cmd)
	}

	out := stdout(cmd)
	sol, err := solver.Solve(ctx, puzzle, opts)
	if errors.Is(err, solver.ErrUnsolvable) {
		fmt.Fprintln(out, "The puzzle is unsolvable!")
		return nil
	}
	if err != nil {
		return err
	}
	if err := solver.Verify(puzzle, sol.Path); err != nil {
		return fmt.Errorf("solution failed to replay: %w", err)
	}

	directions, _ := engine.PathToDirections(puzzle.Robot.Position, sol.Path)
	switch output {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"puzzle":     puzzle.Name,
			"steps":      len(sol.Path),
			"path":       sol.Path,
			"directions": directions,
			"moves":      sol.Moves,
			"leftover":   sol.Leftover,
			"expanded":   sol.Expanded,
		})
	case "directions":
		fmt.Fprintln(out, strings.Join(directions, ","))
	default:
		fmt.Fprintln(out, "Solution:")
		cells := make([]string, len(sol.Path))
		for i, p := range sol.Path {
			cells[i] = fmt.Sprintf("(%d|%d)", p.X, p.Y)
		}
		fmt.Fprintln(out, strings.Join(cells, " "))
	}
	return nil
}

func generateCommand() *cli.Command {
	defaults := generator.DefaultConstraints()
	return &cli.Command{
		Name:  "generate",
		Usage: "Generate a solvable puzzle within difficulty bounds",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "size", Value: 10, Usage: "Board size"},
			&cli.IntFlag{Name: "seed", Usage: "Random seed (0 = random)"},
			&cli.FloatFlag{Name: "min-di", Value: defaults.MinDI, Usage: "Minimum difficulty index"},
			&cli.FloatFlag{Name: "max-di", Value: defaults.MaxDI, Usage: "Maximum difficulty index"},
			&cli.FloatFlag{Name: "min-density", Value: defaults.MinDensity, Usage: "Minimum battery density"},
			&cli.FloatFlag{Name: "max-density", Value: defaults.MaxDensity, Usage: "Maximum battery density"},
			&cli.FloatFlag{Name: "min-length", Value: defaults.MinLength, Usage: "Minimum solution length factor"},
			&cli.FloatFlag{Name: "max-length", Value: defaults.MaxLength, Usage: "Maximum solution length factor"},
			&cli.StringFlag{Name: "out", Usage: "Write the puzzle to this file instead of stdout"},
			&cli.StringFlag{Name: "format", Value: string(engine.FormatText), Usage: "Format for stdout: text, json or yaml"},
		},
		Action: generateAction,
	}
}

func generateAction(ctx context.Context, cmd *cli.Command) error {
	constraints := generator.Constraints{
		Size:       int(cmd.Int("size")),
		MinDI:      cmd.Float("min-di"),
		MaxDI:      cmd.Float("max-di"),
		MinDensity: cmd.Float("min-density"),
		MaxDensity: cmd.Float("max-density"),
		MinLength:  cmd.Float("min-length"),
		MaxLength:  cmd.Float("max-length"),
	}

	seed := uint64(cmd.Int("seed"))
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rng := mrand.New(mrand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	opts := generator.Options{Debug: cmd.Bool("debug")}
	if opts.Debug {
		opts.Logger = debugLogger(cmd)
	}

	res, err := generator.GenerateWithin(constraints, rng, opts)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	outFile := cmd.String("out")
	format := engine.Format(cmd.String("format"))
	if outFile != "" {
		format = engine.FormatFromFilename(outFile)
	}
	data, err := engine.EncodePuzzle(res.Puzzle, format)
	if err != nil {
		return err
	}

	d := res.Difficulty
	if outFile == "" {
		_, err := stdout(cmd).Write(data)
		return err
	}

	out := stdout(cmd)
	fmt.Fprintln(out, "Puzzle properties")
	fmt.Fprintln(out, "-----------------")
	fmt.Fprintf(out, "Difficulty index : %.2f\n", d.DI)
	fmt.Fprintf(out, "Battery density  : %.3f\n", d.Density)
	fmt.Fprintf(out, "Solution length  : %.3f\n", d.Length)
	fmt.Fprintf(out, "Batteries        : %d\n", len(res.Puzzle.Batteries))
	fmt.Fprintf(out, "Steps            : %d\n", len(res.Witness))
	fmt.Fprintf(out, "Seed             : %d\n", seed)

	if err := os.WriteFile(outFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", outFile, err)
	}
	fmt.Fprintf(out, "Puzzle written to %s\n", outFile)
	return nil
}

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "Check puzzle files (defaults to the puzzle directory)",
		ArgsUsage: "[file or directory...]",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "solve", Usage: "Also run the solver on every puzzle"},
			&cli.IntFlag{Name: "max-nodes", Usage: "Solver budget per puzzle (0 = unlimited)"},
			&cli.DurationFlag{Name: "timeout", Value: 30 * time.Second, Usage: "Solver time limit per puzzle"},
		},
		Action: validateAction,
	}
}

func validateAction(ctx context.Context, cmd *cli.Command) error {
	paths := cmd.Args().Slice()
	if len(paths) == 0 {
		paths = []string{cmd.String("puzzle-dir")}
	}

	results, err := validate.Paths(ctx, paths, validate.Options{
		Solve:    cmd.Bool("solve"),
		MaxNodes: int(cmd.Int("max-nodes")),
		Timeout:  cmd.Duration("timeout"),
	})
	if err != nil {
		return err
	}

	out := stdout(cmd)
	invalid := 0
	for _, r := range results {
		if r.Valid {
			fmt.Fprintf(out, "✅ %s\n", r.File)
		} else {
			invalid++
			fmt.Fprintf(out, "❌ %s\n", r.File)
		}
		for _, msg := range r.Errors {
			fmt.Fprintf(out, "   %s\n", msg)
		}
	}
	fmt.Fprintf(out, "\n%d puzzles, %d invalid\n", len(results), invalid)

	if invalid > 0 {
		return fmt.Errorf("%d of %d puzzles are invalid", invalid, len(results))
	}
	return nil
}
