package service

import (
	"context"
	"time"

	"github.com/wricardo/mcp-training/stromrallye/game/engine"
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, puzzleID string) (*SessionInfo, error)
	CreateSessionFromPuzzle(ctx context.Context, puzzle *engine.Puzzle) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game Operations
	Move(ctx context.Context, sessionID, direction string, reset bool) (*MoveResult, error)
	BulkMove(ctx context.Context, sessionID string, moves []string, reset bool) (*BulkMoveResult, error)
	Reset(ctx context.Context, sessionID string) (*engine.GameState, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error)
	GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Puzzles
	ListPuzzles(ctx context.Context) ([]*PuzzleInfo, error)
	LoadPuzzle(ctx context.Context, puzzleID string) (*engine.Puzzle, error)
	SavePuzzle(ctx context.Context, puzzleID string, puzzle *engine.Puzzle) error

	// Solver and generator
	Solve(ctx context.Context, puzzle *engine.Puzzle, opts SolveOptions) (*SolveResult, error)
	SolveSession(ctx context.Context, sessionID string, opts SolveOptions) (*SolveResult, error)
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error)
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id, puzzleID string, puzzle *engine.Puzzle) (*Session, error)
	Get(id string) (*Session, error)
	GetOrCreate(id, puzzleID string, puzzle *engine.Puzzle) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
}

// PuzzleLibrary handles puzzle loading and storage
type PuzzleLibrary interface {
	LoadPuzzle(name string) (*engine.Puzzle, error)
	ListPuzzles() ([]*PuzzleInfo, error)
	GetDefault() *engine.Puzzle
	SavePuzzle(name string, puzzle *engine.Puzzle) error
}

// Session represents an active game session
type Session struct {
	ID             string
	Engine         *engine.GameEngine
	PuzzleID       string
	Puzzle         *engine.Puzzle
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
