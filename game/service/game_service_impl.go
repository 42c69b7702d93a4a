package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/wricardo/mcp-training/stromrallye/game/engine"
	"github.com/wricardo/mcp-training/stromrallye/game/grid"
)

// ErrPuzzleNotFound is returned when a puzzle id is not in the library
var ErrPuzzleNotFound = errors.New("puzzle not found")

// ErrSessionChanged is returned when a session was played on while a
// solution for it was being searched.
var ErrSessionChanged = errors.New("session changed")

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	puzzles  PuzzleLibrary
	mu       sync.RWMutex
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, puzzles PuzzleLibrary) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		puzzles:  puzzles,
	}
}

// CreateSession creates a new game session on a library puzzle. An empty id
// uses the library's default puzzle.
func (s *gameServiceImpl) CreateSession(ctx context.Context, puzzleID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var puzzle *engine.Puzzle
	if puzzleID != "" {
		p, err := s.puzzles.LoadPuzzle(puzzleID)
		if err != nil {
			if errors.Is(err, ErrPuzzleNotFound) {
				available, listErr := s.puzzles.ListPuzzles()
				if listErr == nil && len(available) > 0 {
					ids := make([]string, 0, len(available))
					for _, info := range available {
						ids = append(ids, info.PuzzleID)
					}
					return nil, fmt.Errorf("%w: '%s'. Available puzzles: %v", ErrPuzzleNotFound, puzzleID, ids)
				}
				return nil, fmt.Errorf("%w: '%s'. Use /api/puzzles to list available puzzles", ErrPuzzleNotFound, puzzleID)
			}
			return nil, fmt.Errorf("failed to load puzzle %s: %w", puzzleID, err)
		}
		puzzle = p
	} else {
		puzzle = s.puzzles.GetDefault()
		puzzleID = puzzle.Name
	}

	return s.createLocked(puzzleID, puzzle)
}

// CreateSessionFromPuzzle starts a session on a puzzle that is not in the library
func (s *gameServiceImpl) CreateSessionFromPuzzle(ctx context.Context, puzzle *engine.Puzzle) (*SessionInfo, error) {
	if err := engine.ValidatePuzzle(puzzle); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createLocked("", puzzle)
}

func (s *gameServiceImpl) createLocked(puzzleID string, puzzle *engine.Puzzle) (*SessionInfo, error) {
	// Let session manager generate a proper 4-character ID
	session, err := s.sessions.Create("", puzzleID, puzzle)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return sessionInfo(session), nil
}

func sessionInfo(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		PuzzleID:       sess.PuzzleID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      enrich(sess.Engine.GetState()),
		Puzzle:         sess.Puzzle,
	}
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	return sessionInfo(session), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, sessionInfo(sess))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessions.Delete(sessionID)
}

// Move executes a single move for a session
func (s *gameServiceImpl) Move(ctx context.Context, sessionID, direction string, reset bool) (*MoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)

	events := []GameEvent{}
	if reset {
		sess.Engine.Reset()
		events = append(events, GameEvent{
			Type:      "reset",
			Message:   "Game reset to initial state",
			Timestamp: time.Now(),
		})
	}

	prevPos := sess.Engine.GetRobotPosition()
	prevCharge := sess.Engine.GetCharge()
	success := sess.Engine.Move(direction)
	state := sess.Engine.GetState()

	result := &MoveResult{
		Success:   success,
		GameState: state,
		Message:   state.Message,
		Events:    events,
	}

	if success {
		swapped := sess.Engine.GetLastMove().Swapped
		result.Events = append(result.Events, moveEvents(state, direction, swapped)...)

		cellChar, cellType := describeCell(state.CellAt(state.RobotPos))
		result.Step = &StepInfo{
			Idx:          1,
			Dir:          direction,
			From:         prevPos,
			To:           state.RobotPos,
			CellChar:     cellChar,
			CellType:     cellType,
			ChargeBefore: prevCharge,
			ChargeAfter:  state.Charge,
			Success:      true,
			Swapped:      swapped,
			Victory:      state.Victory,
		}
	} else {
		result.AttemptedTo = attempted(state, prevPos, direction)
	}

	enrich(state)

	// Auto-save session after move
	if err := s.sessions.Save(sessionID); err != nil {
		fmt.Printf("Warning: Failed to persist session %s after move: %v\n", sessionID, err)
	}

	return result, nil
}

// BulkMove executes multiple moves in sequence
func (s *gameServiceImpl) BulkMove(ctx context.Context, sessionID string, moves []string, reset bool) (*BulkMoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)

	result := &BulkMoveResult{
		RequestedMoves: len(moves),
		Events:         make([]GameEvent, 0),
		Success:        true,
	}

	if reset {
		sess.Engine.Reset()
		result.Events = append(result.Events, GameEvent{
			Type:      "reset",
			Message:   "Game reset to initial state",
			Timestamp: time.Now(),
		})
	}

	state := sess.Engine.GetState()
	result.StartPos = state.RobotPos
	result.StartCharge = state.Charge
	startRemaining := state.RemainingCharge + state.Charge

	// Limit moves to prevent abuse
	if len(moves) > engine.MaxBulkMoves {
		result.Truncated = true
		result.Limit = engine.MaxBulkMoves
		moves = moves[:engine.MaxBulkMoves]
	}

	for i, move := range moves {
		if sess.Engine.IsGameOver() {
			result.StoppedReason = "game_over"
			result.StopReasonCode = "game_over"
			result.StoppedOnMove = i + 1
			break
		}

		prevPos := sess.Engine.GetRobotPosition()
		prevCharge := sess.Engine.GetCharge()
		success := sess.Engine.Move(move)
		st := sess.Engine.GetState()

		if !success {
			result.Success = false
			result.StoppedReason = fmt.Sprintf("move %d blocked: %s", i+1, move)
			result.StoppedOnMove = i + 1
			result.AttemptedTo = attempted(st, prevPos, move)

			switch {
			case result.AttemptedTo == nil:
				result.StopReasonCode = "invalid_direction"
			case !result.AttemptedTo.OnBoard:
				result.StopReasonCode = "blocked_boundary"
			case prevCharge <= 0:
				result.StopReasonCode = "out_of_charge"
			default:
				result.StopReasonCode = "game_over"
			}
			break
		}

		result.MovesExecuted++
		swapped := sess.Engine.GetLastMove().Swapped
		if swapped {
			result.SwapsPerformed++
		}
		result.Events = append(result.Events, moveEvents(st, move, swapped)...)

		cellChar, cellType := describeCell(st.CellAt(st.RobotPos))
		result.Steps = append(result.Steps, StepInfo{
			Idx:          i + 1,
			Dir:          move,
			From:         prevPos,
			To:           st.RobotPos,
			CellChar:     cellChar,
			CellType:     cellType,
			ChargeBefore: prevCharge,
			ChargeAfter:  st.Charge,
			Success:      true,
			Swapped:      swapped,
			Victory:      st.Victory,
		})
	}

	endState := sess.Engine.GetState()
	result.GameState = endState
	result.EndPos = endState.RobotPos
	result.EndCharge = endState.Charge
	result.DrainedCharge = startRemaining - (endState.RemainingCharge + endState.Charge)
	result.GameOver = endState.GameOver
	result.Message = endState.Message

	if result.GameOver {
		switch {
		case endState.Victory:
			result.GameOverCode = "victory"
		case endState.Charge == 0:
			result.GameOverCode = "stranded"
		default:
			result.GameOverCode = "game_over"
		}
		if result.StopReasonCode == "" {
			result.StopReasonCode = result.GameOverCode
		}
	}

	// Decision aids
	enrich(endState)
	result.PossibleMoves = sess.Engine.GetPossibleMoves()
	result.LocalView3x3 = buildLocal3x3(endState)
	result.ChargeRisk = endState.ChargeRisk

	// Auto-save session after bulk moves
	if err := s.sessions.Save(sessionID); err != nil {
		fmt.Printf("Warning: Failed to persist session %s after bulk moves: %v\n", sessionID, err)
	}

	return result, nil
}

// Reset resets a game session to initial state
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	state := enrich(sess.Engine.Reset())

	// Auto-save session after reset
	if err := s.sessions.Save(sessionID); err != nil {
		fmt.Printf("Warning: Failed to persist session %s after reset: %v\n", sessionID, err)
	}

	return state, nil
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	return enrich(sess.Engine.GetState()), nil
}

// GetMoveHistory returns paginated move history
func (s *gameServiceImpl) GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	history := sess.Engine.GetMoveHistory()
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := min(start+opts.Limit, total)

	var moves []engine.MoveHistoryEntry
	if opts.Order == "desc" {
		// Most recent first
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			moves = append(moves, history[i])
		}
	} else if start < total {
		moves = history[start:end]
	}

	if moves == nil {
		moves = []engine.MoveHistoryEntry{}
	}

	return &HistoryResponse{
		Moves:       moves,
		TotalMoves:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// ListPuzzles returns the puzzles in the library
func (s *gameServiceImpl) ListPuzzles(ctx context.Context) ([]*PuzzleInfo, error) {
	return s.puzzles.ListPuzzles()
}

// LoadPuzzle loads a puzzle from the library
func (s *gameServiceImpl) LoadPuzzle(ctx context.Context, puzzleID string) (*engine.Puzzle, error) {
	return s.puzzles.LoadPuzzle(puzzleID)
}

// SavePuzzle stores a puzzle in the library
func (s *gameServiceImpl) SavePuzzle(ctx context.Context, puzzleID string, puzzle *engine.Puzzle) error {
	return s.puzzles.SavePuzzle(puzzleID, puzzle)
}

// moveEvents describes what a successful move did
func moveEvents(state *engine.GameState, direction string, swapped bool) []GameEvent {
	now := time.Now()
	events := []GameEvent{{
		Type:      "move",
		Message:   fmt.Sprintf("Moved %s to %v", direction, state.RobotPos),
		Timestamp: now,
		Position:  state.RobotPos,
	}}

	if swapped {
		events = append(events, GameEvent{
			Type:      "swap",
			Message:   fmt.Sprintf("Swapped charge at %v: robot now holds %d", state.RobotPos, state.Charge),
			Timestamp: now,
			Position:  state.RobotPos,
		})
	}

	if state.GameOver {
		if state.Victory {
			events = append(events, GameEvent{
				Type:      "victory",
				Message:   "Victory! All batteries drained!",
				Timestamp: now,
				Position:  state.RobotPos,
			})
		} else {
			events = append(events, GameEvent{
				Type:      "game_over",
				Message:   state.Message,
				Timestamp: now,
				Position:  state.RobotPos,
			})
		}
	}

	return events
}

// attempted describes the cell a failed move aimed at. It returns nil for
// unknown directions.
func attempted(state *engine.GameState, from grid.Point, direction string) *AttemptInfo {
	delta, ok := engine.DirectionDelta(direction)
	if !ok {
		return nil
	}
	target := from.Add(delta)
	cellChar, cellType := describeCell(state.CellAt(target))
	return &AttemptInfo{
		X:        target.X,
		Y:        target.Y,
		CellChar: cellChar,
		CellType: cellType,
		OnBoard:  target.In(state.Size),
	}
}

// enrich fills the derived views of a state and returns it
func enrich(state *engine.GameState) *engine.GameState {
	if state == nil {
		return nil
	}
	state.LocalView = state.GenerateLocalView()
	state.Board = engine.RenderBoard(state)
	state.ChargeRisk = riskCode(engine.AnalyzeChargeRisk(state))
	return state
}

func describeCell(cell engine.Cell) (string, string) {
	switch cell.Type {
	case engine.Robot:
		return "R", "robot"
	case engine.Battery:
		if cell.Charge == 0 {
			return "o", "empty_battery"
		}
		return "B", "battery"
	case engine.Empty:
		return ".", "empty"
	case engine.Outside:
		return "#", "outside"
	default:
		return "?", "unknown"
	}
}

func buildLocal3x3(state *engine.GameState) []string {
	if state == nil {
		return nil
	}
	lines := make([]string, 0, 3)
	for dy := -1; dy <= 1; dy++ {
		var row strings.Builder
		for dx := -1; dx <= 1; dx++ {
			ch, _ := describeCell(state.CellAt(state.RobotPos.Add(grid.Point{X: dx, Y: dy})))
			row.WriteString(ch)
		}
		lines = append(lines, row.String())
	}
	return lines
}

func riskCode(text string) string {
	code, _, found := strings.Cut(text, ":")
	if !found {
		return "UNKNOWN"
	}
	return code
}
