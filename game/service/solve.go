package service

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	mrand "math/rand/v2"
	"slices"
	"time"

	"github.com/wricardo/mcp-training/stromrallye/game/engine"
	"github.com/wricardo/mcp-training/stromrallye/game/generator"
	"github.com/wricardo/mcp-training/stromrallye/game/grid"
	"github.com/wricardo/mcp-training/stromrallye/game/solver"
)

const (
	// DefaultMaxNodes caps solver runs that do not set SolveOptions.MaxNodes
	DefaultMaxNodes = 200000
	// DefaultSolveTimeout bounds solver runs that do not set SolveOptions.Timeout
	DefaultSolveTimeout = 30 * time.Second
)

// Solve searches a drain-everything path for a puzzle
func (s *gameServiceImpl) Solve(ctx context.Context, puzzle *engine.Puzzle, opts SolveOptions) (*SolveResult, error) {
	if puzzle == nil {
		return nil, fmt.Errorf("%w: no puzzle given", engine.ErrInvalidPuzzle)
	}
	return runSolver(ctx, puzzle, opts)
}

// SolveSession solves from the session's current position and charges. With
// opts.Apply the path is played on the session. The service lock is only held
// to snapshot the session and to apply the result, so other sessions stay
// responsive while the search runs. A session that was played on in the
// meantime is not touched and ErrSessionChanged is returned.
func (s *gameServiceImpl) SolveSession(ctx context.Context, sessionID string, opts SolveOptions) (*SolveResult, error) {
	s.mu.Lock()
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	state := sess.Engine.GetState()
	if state.GameOver {
		result := &SolveResult{
			Solvable:  state.Victory,
			Reason:    state.Message,
			GameState: enrich(state),
		}
		s.mu.Unlock()
		return result, nil
	}

	snap := snapshotOf(sess)
	puzzle, fromStart := puzzleFromState(sess.Puzzle, state)
	view := *enrich(state)
	view.Batteries = slices.Clone(state.Batteries)
	view.MoveHistory = slices.Clone(state.MoveHistory)
	view.CurrentMoves = slices.Clone(state.CurrentMoves)
	s.mu.Unlock()

	result, err := runSolver(ctx, puzzle, opts)
	if err != nil {
		return nil, err
	}
	result.FromStart = fromStart
	result.GameState = &view

	if !opts.Apply || !result.Solvable {
		return result, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err = s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	if snapshotOf(sess) != snap {
		return nil, fmt.Errorf("%w: session %s moved while solving", ErrSessionChanged, sessionID)
	}

	if fromStart {
		sess.Engine.Reset()
	}
	if steps, err := sess.Engine.FollowPath(result.Path); err != nil {
		return nil, fmt.Errorf("applying solution stopped after %d steps: %w", steps, err)
	}
	result.Applied = true

	if err := s.sessions.Save(sessionID); err != nil {
		fmt.Printf("Warning: Failed to persist session %s after solve: %v\n", sessionID, err)
	}
	result.GameState = enrich(sess.Engine.GetState())

	return result, nil
}

// sessionSnapshot identifies a session's game at one point of play. Moves grow
// the history and a reset swaps in a fresh state.
type sessionSnapshot struct {
	session *Session
	state   *engine.GameState
	history int
}

func snapshotOf(sess *Session) sessionSnapshot {
	state := sess.Engine.GetState()
	return sessionSnapshot{session: sess, state: state, history: len(state.MoveHistory)}
}

// puzzleFromState freezes a running game into a puzzle. A drained battery
// under the robot is dropped. A robot parked on a charged battery cannot be
// expressed as a puzzle, so the session's original puzzle is returned and
// fromStart is set.
func puzzleFromState(base *engine.Puzzle, state *engine.GameState) (p *engine.Puzzle, fromStart bool) {
	p = &engine.Puzzle{
		Size:  state.Size,
		Robot: engine.RobotSpec{Position: state.RobotPos, Charge: state.Charge},
	}
	if base != nil {
		p.Name = base.Name
		p.Description = base.Description
	}
	for _, b := range state.Batteries {
		if b.Position != state.RobotPos {
			p.Batteries = append(p.Batteries, b)
			continue
		}
		if b.Charge > 0 && base != nil {
			return base.Clone(), true
		}
	}
	return p, false
}

func runSolver(ctx context.Context, puzzle *engine.Puzzle, opts SolveOptions) (*SolveResult, error) {
	if opts.MaxNodes <= 0 {
		opts.MaxNodes = DefaultMaxNodes
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultSolveTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	began := time.Now()
	sol, err := solver.Solve(ctx, puzzle, solver.Options{MaxNodes: opts.MaxNodes})
	elapsed := time.Since(began).Milliseconds()

	switch {
	case errors.Is(err, solver.ErrUnsolvable):
		return &SolveResult{Reason: err.Error(), DurationMS: elapsed}, nil
	case errors.Is(err, solver.ErrBudgetExhausted), errors.Is(err, context.DeadlineExceeded):
		return &SolveResult{Reason: fmt.Sprintf("no solution found: %v", err), DurationMS: elapsed}, nil
	case err != nil:
		return nil, err
	}

	directions, ok := engine.PathToDirections(puzzle.Robot.Position, sol.Path)
	if !ok {
		return nil, fmt.Errorf("%w: path is not connected", solver.ErrInvalidMoves)
	}

	return &SolveResult{
		Solvable:   true,
		Moves:      sol.Moves,
		Leftover:   sol.Leftover,
		Path:       sol.Path,
		Directions: directions,
		Steps:      len(sol.Path),
		Expanded:   sol.Expanded,
		DurationMS: elapsed,
	}, nil
}

// Generate creates a puzzle by reverse play
func (s *gameServiceImpl) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	constraints := generator.DefaultConstraints()
	if req.Constraints != nil {
		constraints = *req.Constraints
	}

	seed := req.Seed
	if seed == 0 {
		seed = randomSeed()
	}
	rng := mrand.New(mrand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	res, err := generator.GenerateWithin(constraints, rng, generator.Options{})
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &GenerateResult{
		Puzzle:     res.Puzzle,
		Difficulty: res.Difficulty,
		Seed:       seed,
		Steps:      len(res.Witness),
	}

	if req.SaveAs != "" {
		res.Puzzle.Name = req.SaveAs
		if err := s.puzzles.SavePuzzle(req.SaveAs, res.Puzzle); err != nil {
			return nil, fmt.Errorf("failed to save puzzle %s: %w", req.SaveAs, err)
		}
		result.PuzzleID = req.SaveAs
	}

	if req.CreateSession {
		s.mu.Lock()
		info, err := s.createLocked(result.PuzzleID, res.Puzzle)
		s.mu.Unlock()
		if err != nil {
			return nil, err
		}
		result.Session = info
	}

	return result, nil
}

func randomSeed() uint64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return uint64(time.Now().UnixNano())
	}
	return binary.LittleEndian.Uint64(b[:]) | 1
}

// Hint returns the first direction of a solution from the session's state
func Hint(result *SolveResult) (string, grid.Point, bool) {
	if result == nil || !result.Solvable || len(result.Directions) == 0 {
		return "", grid.Point{}, false
	}
	return result.Directions[0], result.Path[0], true
}
