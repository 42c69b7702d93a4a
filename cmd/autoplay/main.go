// Command autoplay plays a Stromrallye session against a running server.
//
// It asks the server's solver for a path from the current state and sends the
// moves one at a time, so browsers watching the session over WebSocket see
// the robot drive. When a move fails or the game ends badly it resets and
// asks again, up to --max-attempts times.
package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/mcp-training/stromrallye/game/engine"
)

// ErrNoSolution is returned when the solver finds no path from the start.
var ErrNoSolution = errors.New("no solution from the start")

// Options control a play run.
type Options struct {
	MaxAttempts int
	MaxNodes    int
	Delay       time.Duration
	Verbose     bool
	Logger      *log.Logger
}

// Outcome summarizes a play run.
type Outcome struct {
	Attempts int
	Moves    int
	State    *engine.GameState
}

func main() {
	cmd := &cli.Command{
		Name:  "autoplay",
		Usage: "Solve and play a Stromrallye session through the REST API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: "http://localhost:8080", Usage: "Game server URL", Sources: cli.EnvVars("STROMRALLYE_URL")},
			&cli.StringFlag{Name: "puzzle", Usage: "Puzzle id (default: the server's default puzzle)"},
			&cli.StringFlag{Name: "continue", Usage: "Resume playing an existing session by ID"},
			&cli.StringFlag{Name: "session-file", Value: ".session", Usage: "Remembers the last session between runs"},
			&cli.IntFlag{Name: "max-attempts", Value: 3, Usage: "Maximum attempts before giving up"},
			&cli.IntFlag{Name: "max-nodes", Usage: "Solver budget per attempt (0 = server default)"},
			&cli.DurationFlag{Name: "delay", Usage: "Delay between moves"},
			&cli.BoolFlag{Name: "v", Usage: "Verbose output"},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	log.Printf("Connecting to game server at %s", cmd.String("url"))
	client := NewClient(cmd.String("url"))

	sessionFile := cmd.String("session-file")
	savedSessionID := cmd.String("continue")
	if savedSessionID == "" && sessionFile != "" {
		if data, err := os.ReadFile(sessionFile); err == nil {
			savedSessionID = string(bytes.TrimSpace(data))
		}
	}

	var state *engine.GameState
	var err error
	if savedSessionID != "" {
		log.Printf("🔄 Resuming session: %s", savedSessionID)
		if state, err = client.Resume(ctx, savedSessionID); err != nil {
			log.Printf("⚠️  Failed to resume session (may be expired): %v", err)
			state = nil
		}
	}

	if state == nil {
		if state, err = client.CreateSession(ctx, cmd.String("puzzle")); err != nil {
			return err
		}
		log.Printf("✨ Session created: %s", client.SessionID())
		if sessionFile != "" {
			if err := os.WriteFile(sessionFile, []byte(client.SessionID()), 0644); err != nil {
				log.Printf("Warning: Failed to save session ID: %v", err)
			}
		}
	}
	log.Printf("Puzzle %s: %dx%d, charge %d, %d left in batteries",
		state.PuzzleName, state.Size, state.Size, state.Charge, state.RemainingCharge)

	outcome, err := Play(ctx, client, Options{
		MaxAttempts: int(cmd.Int("max-attempts")),
		MaxNodes:    int(cmd.Int("max-nodes")),
		Delay:       cmd.Duration("delay"),
		Verbose:     cmd.Bool("v"),
	})
	if err != nil {
		log.Printf("Session: %s", client.SessionID())
		return err
	}

	log.Printf("🎉 VICTORY! Game won in attempt %d with %d moves!", outcome.Attempts, outcome.Moves)
	log.Printf("Session: %s", client.SessionID())
	return nil
}

// Play drives the client's session to victory.
func Play(ctx context.Context, client *Client, opts Options) (*Outcome, error) {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 1
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	outcome := &Outcome{}
	for outcome.Attempts < opts.MaxAttempts {
		outcome.Attempts++
		if opts.Verbose {
			opts.Logger.Printf("=== 🎮 Attempt %d/%d ===", outcome.Attempts, opts.MaxAttempts)
		}

		result, err := client.Solve(ctx, opts.MaxNodes)
		if err != nil {
			return outcome, err
		}
		outcome.State = result.GameState
		if result.GameState != nil && result.GameState.Victory {
			return outcome, nil
		}

		if !result.Solvable {
			if result.FromStart || isFresh(result.GameState) {
				return outcome, fmt.Errorf("%w: %s", ErrNoSolution, result.Reason)
			}
			opts.Logger.Printf("No solution from here (%s), resetting", result.Reason)
			if outcome.State, err = client.Reset(ctx); err != nil {
				return outcome, err
			}
			continue
		}

		if result.FromStart {
			if outcome.State, err = client.Reset(ctx); err != nil {
				return outcome, err
			}
		}

		for _, direction := range result.Directions {
			moved, err := client.Move(ctx, direction)
			if err != nil {
				return outcome, err
			}
			outcome.State = moved.GameState
			if !moved.Success {
				opts.Logger.Printf("Move %s failed: %s", direction, moved.Message)
				break
			}
			outcome.Moves++

			if opts.Verbose {
				opts.Logger.Printf("%s → (%d,%d) charge %d", direction,
					moved.GameState.RobotPos.X, moved.GameState.RobotPos.Y, moved.GameState.Charge)
			}
			if moved.GameState.Victory {
				return outcome, nil
			}

			if opts.Delay > 0 {
				select {
				case <-ctx.Done():
					return outcome, ctx.Err()
				case <-time.After(opts.Delay):
				}
			}
		}
	}

	return outcome, fmt.Errorf("failed to win after %d attempts", outcome.Attempts)
}

// isFresh reports whether no move has been made since the last reset.
func isFresh(state *engine.GameState) bool {
	return state == nil || state.CurrentMovesCount == 0
}
