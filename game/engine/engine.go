package engine

import (
	"fmt"

	"github.com/wricardo/mcp-training/stromrallye/game/grid"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Game state management
	GetState() *GameState
	SetState(state *GameState) error
	Reset() *GameState
	IsGameOver() bool
	IsVictory() bool
	GetCharge() int
	GetRobotPosition() grid.Point

	// Movement operations
	Move(direction string) bool
	CanMove(direction string) bool
	GetPossibleMoves() []string
	BulkMove(moves []string) []bool
	FollowPath(path []grid.Point) (int, error)

	// Puzzle
	GetPuzzle() *Puzzle
	SetPuzzle(puzzle *Puzzle) error

	// History
	GetMoveHistory() []MoveHistoryEntry
	GetLastMove() *MoveHistoryEntry

	// Local view
	GetLocalView() []SurroundingCell

	// Batteries and objectives
	GetTotalBatteries() int
	GetEmptyBatteries() int
	GetRemainingCharge() int
}

// GameEngine implements the Engine interface
type GameEngine struct {
	state  *GameState
	puzzle *Puzzle
}

// NewEngine creates a new game engine for the provided puzzle
func NewEngine(puzzle *Puzzle) (*GameEngine, error) {
	if err := ValidatePuzzle(puzzle); err != nil {
		return nil, err
	}

	engine := &GameEngine{
		puzzle: puzzle.Clone(),
	}
	engine.state = InitGameStateFromPuzzle(engine.puzzle)

	return engine, nil
}

// NewEngineWithDefaults creates a new game engine with the default puzzle
func NewEngineWithDefaults() *GameEngine {
	engine := &GameEngine{
		puzzle: DefaultPuzzle(),
	}
	engine.state = InitGameStateFromPuzzle(engine.puzzle)
	return engine
}

// GetState returns the current game state
func (e *GameEngine) GetState() *GameState {
	return e.state
}

// SetState sets the game state (used for persistence loading)
func (e *GameEngine) SetState(state *GameState) error {
	if state == nil {
		return fmt.Errorf("state cannot be nil")
	}
	e.state = state
	return nil
}

// Reset resets the game to initial state
func (e *GameEngine) Reset() *GameState {
	// Preserve cumulative history and totals across resets
	prevHistory := e.state.MoveHistory
	prevTotal := e.state.TotalMoves

	e.state = InitGameStateFromPuzzle(e.puzzle)

	// Restore cumulative history and totals; clear only the current segment
	e.state.MoveHistory = prevHistory
	e.state.TotalMoves = prevTotal
	e.state.CurrentMoves = []MoveHistoryEntry{}
	e.state.CurrentMovesCount = 0

	return e.state
}

// IsGameOver returns whether the game is over
func (e *GameEngine) IsGameOver() bool {
	return e.state.GameOver
}

// IsVictory returns whether every unit of charge has been spent
func (e *GameEngine) IsVictory() bool {
	return e.state.Victory
}

// GetCharge returns the robot's current charge
func (e *GameEngine) GetCharge() int {
	return e.state.Charge
}

// GetRobotPosition returns the current robot position
func (e *GameEngine) GetRobotPosition() grid.Point {
	return e.state.RobotPos
}

// Move attempts to move the robot in the specified direction
func (e *GameEngine) Move(direction string) bool {
	prevPos := e.state.RobotPos
	success, swapped := e.state.MoveRobot(direction)

	e.state.AddMoveToHistory(direction, prevPos, e.state.RobotPos, success, swapped)

	return success
}

// CanMove checks if the robot can move in the specified direction
func (e *GameEngine) CanMove(direction string) bool {
	if e.state.GameOver {
		return false
	}

	delta, ok := DirectionDelta(direction)
	if !ok {
		return false
	}

	return e.state.CanMoveTo(e.state.RobotPos.Add(delta)) && e.state.Charge > 0
}

// GetPossibleMoves returns all valid directions the robot can move
func (e *GameEngine) GetPossibleMoves() []string {
	var possible []string

	for _, dir := range Directions {
		if e.CanMove(dir) {
			possible = append(possible, dir)
		}
	}

	return possible
}

// GetPuzzle returns the puzzle being played
func (e *GameEngine) GetPuzzle() *Puzzle {
	return e.puzzle
}

// SetPuzzle switches to a new puzzle and resets the game
func (e *GameEngine) SetPuzzle(puzzle *Puzzle) error {
	if err := ValidatePuzzle(puzzle); err != nil {
		return err
	}

	e.puzzle = puzzle.Clone()
	e.state = InitGameStateFromPuzzle(e.puzzle)
	return nil
}

// GetMoveHistory returns the complete move history
func (e *GameEngine) GetMoveHistory() []MoveHistoryEntry {
	return e.state.MoveHistory
}

// GetLastMove returns the last move made, or nil if no moves
func (e *GameEngine) GetLastMove() *MoveHistoryEntry {
	if len(e.state.MoveHistory) == 0 {
		return nil
	}
	return &e.state.MoveHistory[len(e.state.MoveHistory)-1]
}

// GetLocalView returns the local view around the robot
func (e *GameEngine) GetLocalView() []SurroundingCell {
	return e.state.GenerateLocalView()
}

// GetTotalBatteries returns the number of batteries on the board
func (e *GameEngine) GetTotalBatteries() int {
	return len(e.state.Batteries)
}

// GetEmptyBatteries returns the number of drained batteries
func (e *GameEngine) GetEmptyBatteries() int {
	return CountEmptyBatteries(e.state)
}

// GetRemainingCharge returns the charge still stored in batteries
func (e *GameEngine) GetRemainingCharge() int {
	return e.state.RemainingCharge
}

// BulkMove executes multiple moves in sequence, returning success status for each
func (e *GameEngine) BulkMove(moves []string) []bool {
	results := make([]bool, 0, len(moves))

	for _, direction := range moves {
		// Stop if game is over
		if e.IsGameOver() {
			break
		}

		success := e.Move(direction)
		results = append(results, success)
	}

	return results
}

// FollowPath walks the robot along a list of cells, each adjacent to the
// previous one. It returns the number of steps taken before the first failure.
func (e *GameEngine) FollowPath(path []grid.Point) (int, error) {
	for i, p := range path {
		dir, ok := DirectionTo(e.state.RobotPos, p)
		if !ok {
			return i, fmt.Errorf("step %d: %v is not adjacent to %v", i+1, p, e.state.RobotPos)
		}
		if !e.Move(dir) {
			return i, fmt.Errorf("step %d: %s", i+1, e.state.Message)
		}
	}
	return len(path), nil
}
