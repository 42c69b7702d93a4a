package service

import (
	"time"

	"github.com/wricardo/mcp-training/stromrallye/game/engine"
	"github.com/wricardo/mcp-training/stromrallye/game/generator"
	"github.com/wricardo/mcp-training/stromrallye/game/grid"
	"github.com/wricardo/mcp-training/stromrallye/game/solver"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string            `json:"id"`
	PuzzleID       string            `json:"puzzle_id"`
	CreatedAt      time.Time         `json:"created_at"`
	LastAccessedAt time.Time         `json:"last_accessed_at"`
	GameState      *engine.GameState `json:"game_state"`
	Puzzle         *engine.Puzzle    `json:"puzzle"`
}

// MoveResult contains the result of a move operation
type MoveResult struct {
	Success     bool              `json:"success"`
	GameState   *engine.GameState `json:"game_state"`
	Message     string            `json:"message"`
	Events      []GameEvent       `json:"events,omitempty"`
	Step        *StepInfo         `json:"step,omitempty"`
	AttemptedTo *AttemptInfo      `json:"attempted_to,omitempty"`
}

// BulkMoveResult contains the result of multiple moves
type BulkMoveResult struct {
	// Summary
	MovesExecuted  int               `json:"moves_executed"`
	RequestedMoves int               `json:"requested_moves"`
	Success        bool              `json:"success"`
	GameState      *engine.GameState `json:"game_state"`
	Events         []GameEvent       `json:"events"`
	StoppedReason  string            `json:"stopped_reason,omitempty"`
	StopReasonCode string            `json:"stop_reason_code,omitempty"` // invalid_direction|blocked_boundary|out_of_charge|stranded|game_over|victory
	StoppedOnMove  int               `json:"stopped_on_move,omitempty"`  // 1-based index of the move that caused stop
	Truncated      bool              `json:"truncated,omitempty"`
	Limit          int               `json:"limit,omitempty"`

	// Start/end snapshot
	StartPos       grid.Point `json:"start_pos"`
	EndPos         grid.Point `json:"end_pos"`
	StartCharge    int        `json:"start_charge"`
	EndCharge      int        `json:"end_charge"`
	DrainedCharge  int        `json:"drained_charge"`
	SwapsPerformed int        `json:"swaps_performed"`

	// Per-step compact trace (only for this call)
	Steps []StepInfo `json:"steps,omitempty"`

	// Failure diagnostics
	AttemptedTo *AttemptInfo `json:"attempted_to,omitempty"`

	// Final status aids
	GameOver      bool     `json:"game_over"`
	GameOverCode  string   `json:"game_over_code,omitempty"`
	Message       string   `json:"message,omitempty"`
	PossibleMoves []string `json:"possible_moves,omitempty"`
	LocalView3x3  []string `json:"local_view_3x3,omitempty"`
	ChargeRisk    string   `json:"charge_risk,omitempty"`
}

// StepInfo is a compact record for each executed move in the bulk call
type StepInfo struct {
	Idx          int        `json:"idx"`
	Dir          string     `json:"dir"`
	From         grid.Point `json:"from"`
	To           grid.Point `json:"to"`
	CellChar     string     `json:"cell_char"`
	CellType     string     `json:"cell_type"`
	ChargeBefore int        `json:"charge_before"`
	ChargeAfter  int        `json:"charge_after"`
	Success      bool       `json:"success"`
	Swapped      bool       `json:"swapped,omitempty"`
	Victory      bool       `json:"victory,omitempty"`
}

// AttemptInfo details the first failed target cell attempted
type AttemptInfo struct {
	X        int    `json:"x"`
	Y        int    `json:"y"`
	CellChar string `json:"cell_char"`
	CellType string `json:"cell_type"`
	OnBoard  bool   `json:"on_board"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string     `json:"type"` // "move", "swap", "game_over", "victory", "reset", "solve"
	Message   string     `json:"message"`
	Timestamp time.Time  `json:"timestamp"`
	Position  grid.Point `json:"position,omitempty"`
}

// HistoryOptions configures move history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated move history
type HistoryResponse struct {
	Moves       []engine.MoveHistoryEntry `json:"moves"`
	TotalMoves  int                       `json:"total_moves"`
	Page        int                       `json:"page"`
	PageSize    int                       `json:"page_size"`
	TotalPages  int                       `json:"total_pages"`
	HasNext     bool                      `json:"has_next"`
	HasPrevious bool                      `json:"has_previous"`
}

// PuzzleInfo describes a puzzle in the library
type PuzzleInfo struct {
	Filename    string `json:"filename"`
	PuzzleID    string `json:"puzzle_id"` // The identifier to use for session creation
	Name        string `json:"name"`
	Description string `json:"description"`
	Format      string `json:"format"`
	Size        int    `json:"size"`
	Batteries   int    `json:"batteries"`
	TotalCharge int    `json:"total_charge"`
}

// SolveOptions tune a solver run
type SolveOptions struct {
	// MaxNodes caps the search. Zero uses DefaultMaxNodes.
	MaxNodes int `json:"max_nodes,omitempty"`
	// Timeout bounds the search. Zero uses DefaultSolveTimeout.
	Timeout time.Duration `json:"timeout,omitempty"`
	// Apply replays the solution on the session (SolveSession only).
	Apply bool `json:"apply,omitempty"`
}

// SolveResult is the outcome of a solver run
type SolveResult struct {
	Solvable   bool              `json:"solvable"`
	Reason     string            `json:"reason,omitempty"`
	Moves      []solver.Move     `json:"moves,omitempty"`
	Leftover   int               `json:"leftover,omitempty"`
	Path       []grid.Point      `json:"path,omitempty"`
	Directions []string          `json:"directions,omitempty"`
	Steps      int               `json:"steps"`
	Expanded   int               `json:"expanded"`
	DurationMS int64             `json:"duration_ms"`
	Applied    bool              `json:"applied,omitempty"`
	FromStart  bool              `json:"from_start,omitempty"` // solved from the puzzle's initial state
	GameState  *engine.GameState `json:"game_state,omitempty"`
}

// GenerateRequest asks for a new puzzle
type GenerateRequest struct {
	// Seed makes generation reproducible. Zero picks a random seed.
	Seed        uint64                 `json:"seed,omitempty"`
	Constraints *generator.Constraints `json:"constraints,omitempty"`
	// SaveAs stores the puzzle in the library under this id.
	SaveAs string `json:"save_as,omitempty"`
	// CreateSession starts a session on the new puzzle.
	CreateSession bool `json:"create_session,omitempty"`
}

// GenerateResult is a generated puzzle
type GenerateResult struct {
	Puzzle     *engine.Puzzle       `json:"puzzle"`
	Difficulty generator.Difficulty `json:"difficulty"`
	Seed       uint64               `json:"seed"`
	Steps      int                  `json:"steps"`
	PuzzleID   string               `json:"puzzle_id,omitempty"`
	Session    *SessionInfo         `json:"session,omitempty"`
}
