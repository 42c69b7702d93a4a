package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/wricardo/mcp-training/stromrallye/game/config"
	"github.com/wricardo/mcp-training/stromrallye/game/engine"
	"github.com/wricardo/mcp-training/stromrallye/game/generator"
	"github.com/wricardo/mcp-training/stromrallye/game/grid"
	"github.com/wricardo/mcp-training/stromrallye/game/service"
	"github.com/wricardo/mcp-training/stromrallye/game/session"
	"github.com/wricardo/mcp-training/stromrallye/transport/websocket"
)

// MockGameService implements service.GameService for testing
type MockGameService struct {
	CreateSessionFunc           func(ctx context.Context, puzzleID string) (*service.SessionInfo, error)
	CreateSessionFromPuzzleFunc func(ctx context.Context, puzzle *engine.Puzzle) (*service.SessionInfo, error)
	GetSessionFunc              func(ctx context.Context, sessionID string) (*service.SessionInfo, error)
	ListSessionsFunc            func(ctx context.Context) ([]*service.SessionInfo, error)
	DeleteSessionFunc           func(ctx context.Context, sessionID string) error

	MoveFunc     func(ctx context.Context, sessionID, direction string, reset bool) (*service.MoveResult, error)
	BulkMoveFunc func(ctx context.Context, sessionID string, moves []string, reset bool) (*service.BulkMoveResult, error)
	ResetFunc    func(ctx context.Context, sessionID string) (*engine.GameState, error)

	GetGameStateFunc   func(ctx context.Context, sessionID string) (*engine.GameState, error)
	GetMoveHistoryFunc func(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error)

	ListPuzzlesFunc func(ctx context.Context) ([]*service.PuzzleInfo, error)
	LoadPuzzleFunc  func(ctx context.Context, puzzleID string) (*engine.Puzzle, error)
	SavePuzzleFunc  func(ctx context.Context, puzzleID string, puzzle *engine.Puzzle) error

	SolveFunc        func(ctx context.Context, puzzle *engine.Puzzle, opts service.SolveOptions) (*service.SolveResult, error)
	SolveSessionFunc func(ctx context.Context, sessionID string, opts service.SolveOptions) (*service.SolveResult, error)
	GenerateFunc     func(ctx context.Context, req service.GenerateRequest) (*service.GenerateResult, error)
}

func (m *MockGameService) CreateSession(ctx context.Context, puzzleID string) (*service.SessionInfo, error) {
	if m.CreateSessionFunc != nil {
		return m.CreateSessionFunc(ctx, puzzleID)
	}
	return &service.SessionInfo{ID: "test-session", PuzzleID: puzzleID, CreatedAt: time.Now()}, nil
}

func (m *MockGameService) CreateSessionFromPuzzle(ctx context.Context, puzzle *engine.Puzzle) (*service.SessionInfo, error) {
	if m.CreateSessionFromPuzzleFunc != nil {
		return m.CreateSessionFromPuzzleFunc(ctx, puzzle)
	}
	return &service.SessionInfo{ID: "inline-session", Puzzle: puzzle, CreatedAt: time.Now()}, nil
}

func (m *MockGameService) GetSession(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
	if m.GetSessionFunc != nil {
		return m.GetSessionFunc(ctx, sessionID)
	}
	return &service.SessionInfo{ID: sessionID, PuzzleID: "test-puzzle", CreatedAt: time.Now()}, nil
}

func (m *MockGameService) ListSessions(ctx context.Context) ([]*service.SessionInfo, error) {
	if m.ListSessionsFunc != nil {
		return m.ListSessionsFunc(ctx)
	}
	return []*service.SessionInfo{}, nil
}

func (m *MockGameService) DeleteSession(ctx context.Context, sessionID string) error {
	if m.DeleteSessionFunc != nil {
		return m.DeleteSessionFunc(ctx, sessionID)
	}
	return nil
}

func (m *MockGameService) Move(ctx context.Context, sessionID, direction string, reset bool) (*service.MoveResult, error) {
	if m.MoveFunc != nil {
		return m.MoveFunc(ctx, sessionID, direction, reset)
	}
	return &service.MoveResult{Success: true, GameState: &engine.GameState{}}, nil
}

func (m *MockGameService) BulkMove(ctx context.Context, sessionID string, moves []string, reset bool) (*service.BulkMoveResult, error) {
	if m.BulkMoveFunc != nil {
		return m.BulkMoveFunc(ctx, sessionID, moves, reset)
	}
	return &service.BulkMoveResult{Success: true, GameState: &engine.GameState{}}, nil
}

func (m *MockGameService) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	if m.ResetFunc != nil {
		return m.ResetFunc(ctx, sessionID)
	}
	return &engine.GameState{}, nil
}

func (m *MockGameService) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	if m.GetGameStateFunc != nil {
		return m.GetGameStateFunc(ctx, sessionID)
	}
	return &engine.GameState{}, nil
}

func (m *MockGameService) GetMoveHistory(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
	if m.GetMoveHistoryFunc != nil {
		return m.GetMoveHistoryFunc(ctx, sessionID, opts)
	}
	return &service.HistoryResponse{
		Moves:      []engine.MoveHistoryEntry{},
		Page:       opts.Page,
		PageSize:   opts.Limit,
		TotalPages: 1,
	}, nil
}

func (m *MockGameService) ListPuzzles(ctx context.Context) ([]*service.PuzzleInfo, error) {
	if m.ListPuzzlesFunc != nil {
		return m.ListPuzzlesFunc(ctx)
	}
	return []*service.PuzzleInfo{}, nil
}

func (m *MockGameService) LoadPuzzle(ctx context.Context, puzzleID string) (*engine.Puzzle, error) {
	if m.LoadPuzzleFunc != nil {
		return m.LoadPuzzleFunc(ctx, puzzleID)
	}
	p := engine.DefaultPuzzle()
	p.Name = puzzleID
	return p, nil
}

func (m *MockGameService) SavePuzzle(ctx context.Context, puzzleID string, puzzle *engine.Puzzle) error {
	if m.SavePuzzleFunc != nil {
		return m.SavePuzzleFunc(ctx, puzzleID, puzzle)
	}
	return nil
}

func (m *MockGameService) Solve(ctx context.Context, puzzle *engine.Puzzle, opts service.SolveOptions) (*service.SolveResult, error) {
	if m.SolveFunc != nil {
		return m.SolveFunc(ctx, puzzle, opts)
	}
	return &service.SolveResult{Solvable: true}, nil
}

func (m *MockGameService) SolveSession(ctx context.Context, sessionID string, opts service.SolveOptions) (*service.SolveResult, error) {
	if m.SolveSessionFunc != nil {
		return m.SolveSessionFunc(ctx, sessionID, opts)
	}
	return &service.SolveResult{Solvable: true}, nil
}

func (m *MockGameService) Generate(ctx context.Context, req service.GenerateRequest) (*service.GenerateResult, error) {
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, req)
	}
	return &service.GenerateResult{Puzzle: engine.DefaultPuzzle(), Seed: req.Seed}, nil
}

// Test helpers
func setupTestServer(t *testing.T, mockService service.GameService) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := websocket.NewHub()
	go hub.Run(ctx)
	return NewServer(mockService, hub)
}

func makeRequest(method, path string, body interface{}) *http.Request {
	var bodyBytes []byte
	if body != nil {
		bodyBytes, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewBuffer(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), target); err != nil {
		t.Fatalf("Failed to parse response: %v (body %q)", err, w.Body.String())
	}
}

func do(server *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest(method, path, body))
	return w
}

// Session Management Tests

func TestCreateSession(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    interface{}
		setupMock      func(*MockGameService)
		expectedStatus int
		validateResp   func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:        "Create session with default puzzle",
			requestBody: nil,
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, puzzleID string) (*service.SessionInfo, error) {
					if puzzleID != "" {
						t.Errorf("Expected empty puzzle id, got %s", puzzleID)
					}
					return &service.SessionInfo{ID: "ab12", PuzzleID: "stromrallye0"}, nil
				}
			},
			expectedStatus: http.StatusCreated,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.SessionInfo
				parseResponse(t, w, &resp)
				if resp.ID != "ab12" {
					t.Errorf("Expected session ID ab12, got %s", resp.ID)
				}
			},
		},
		{
			name:        "Create session with specific puzzle",
			requestBody: map[string]string{"puzzle_id": "corner"},
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, puzzleID string) (*service.SessionInfo, error) {
					return &service.SessionInfo{ID: "cd34", PuzzleID: puzzleID}, nil
				}
			},
			expectedStatus: http.StatusCreated,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.SessionInfo
				parseResponse(t, w, &resp)
				if resp.PuzzleID != "corner" {
					t.Errorf("Expected puzzle id 'corner', got %s", resp.PuzzleID)
				}
			},
		},
		{
			name:           "Create session from puzzle text",
			requestBody:    map[string]string{"puzzle_text": "3\n1,1,2\n1\n3,1,1\n"},
			expectedStatus: http.StatusCreated,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.SessionInfo
				parseResponse(t, w, &resp)
				if resp.Puzzle == nil || resp.Puzzle.Size != 3 || len(resp.Puzzle.Batteries) != 1 {
					t.Errorf("Expected the parsed 3x3 puzzle, got %+v", resp.Puzzle)
				}
			},
		},
		{
			name:           "Reject malformed puzzle text",
			requestBody:    map[string]string{"puzzle_text": "three"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:        "Unknown puzzle",
			requestBody: map[string]string{"puzzle_id": "missing"},
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, puzzleID string) (*service.SessionInfo, error) {
					return nil, fmt.Errorf("failed to load puzzle: %w", service.ErrPuzzleNotFound)
				}
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name: "Handle service error",
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, puzzleID string) (*service.SessionInfo, error) {
					return nil, fmt.Errorf("service error")
				}
			},
			expectedStatus: http.StatusInternalServerError,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp map[string]string
				parseResponse(t, w, &resp)
				if resp["error"] != "service error" {
					t.Errorf("Expected error message 'service error', got %s", resp["error"])
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			w := do(setupTestServer(t, mockService), "POST", "/api/sessions", tt.requestBody)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d (%s)", tt.expectedStatus, w.Code, w.Body.String())
			}
			if tt.validateResp != nil {
				tt.validateResp(t, w)
			}
		})
	}
}

func TestListSessions(t *testing.T) {
	now := time.Now()
	mockService := &MockGameService{
		ListSessionsFunc: func(ctx context.Context) ([]*service.SessionInfo, error) {
			return []*service.SessionInfo{
				{ID: "old", CreatedAt: now.Add(-time.Hour), LastAccessedAt: now},
				{ID: "new", CreatedAt: now, LastAccessedAt: now.Add(-time.Minute)},
			}, nil
		},
	}
	server := setupTestServer(t, mockService)

	tests := []struct {
		query   string
		first   string
		count   int
		total   int
		sortKey string
	}{
		{"", "old", 2, 2, "accessed"},
		{"?sort=created", "new", 2, 2, "created"},
		{"?sort=created&order=asc&limit=1", "old", 1, 2, "created"},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := do(server, "GET", "/api/sessions"+tt.query, nil)
			if w.Code != http.StatusOK {
				t.Fatalf("Expected status 200, got %d", w.Code)
			}

			var resp struct {
				Count    int                    `json:"count"`
				Total    int                    `json:"total"`
				Sort     string                 `json:"sort"`
				Sessions []*service.SessionInfo `json:"sessions"`
			}
			parseResponse(t, w, &resp)

			if resp.Count != tt.count || resp.Total != tt.total {
				t.Errorf("Expected count %d total %d, got %d %d", tt.count, tt.total, resp.Count, resp.Total)
			}
			if resp.Sort != tt.sortKey {
				t.Errorf("Expected sort %s, got %s", tt.sortKey, resp.Sort)
			}
			if len(resp.Sessions) == 0 || resp.Sessions[0].ID != tt.first {
				t.Errorf("Expected %s first, got %+v", tt.first, resp.Sessions)
			}
		})
	}

	t.Run("service error", func(t *testing.T) {
		failing := &MockGameService{
			ListSessionsFunc: func(ctx context.Context) ([]*service.SessionInfo, error) {
				return nil, fmt.Errorf("database error")
			},
		}
		w := do(setupTestServer(t, failing), "GET", "/api/sessions", nil)
		if w.Code != http.StatusInternalServerError {
			t.Errorf("Expected status 500, got %d", w.Code)
		}
	})
}

func TestGetAndDeleteSession(t *testing.T) {
	mockService := &MockGameService{
		GetSessionFunc: func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
			if sessionID != "ab12" {
				return nil, fmt.Errorf("session not found")
			}
			return &service.SessionInfo{ID: sessionID}, nil
		},
		DeleteSessionFunc: func(ctx context.Context, sessionID string) error {
			if sessionID != "ab12" {
				return fmt.Errorf("session not found")
			}
			return nil
		},
	}
	server := setupTestServer(t, mockService)

	if w := do(server, "GET", "/api/sessions/ab12", nil); w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if w := do(server, "GET", "/api/sessions/zz99", nil); w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}

	w := do(server, "DELETE", "/api/sessions/ab12", nil)
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	var resp map[string]string
	parseResponse(t, w, &resp)
	if resp["message"] != "Session ab12 deleted" {
		t.Errorf("Unexpected message %q", resp["message"])
	}

	if w := do(server, "DELETE", "/api/sessions/zz99", nil); w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

// Game Operation Tests

func TestMove(t *testing.T) {
	var gotDirection string
	var gotReset bool
	mockService := &MockGameService{
		MoveFunc: func(ctx context.Context, sessionID, direction string, reset bool) (*service.MoveResult, error) {
			gotDirection, gotReset = direction, reset
			if direction == "up" {
				return &service.MoveResult{
					Success:     false,
					GameState:   &engine.GameState{Size: 3, RobotPos: grid.Point{X: 1, Y: 1}, Charge: 2},
					AttemptedTo: &service.AttemptInfo{X: 1, Y: 0, CellChar: "#", CellType: "outside"},
				}, nil
			}
			return &service.MoveResult{
				Success:   true,
				GameState: &engine.GameState{Size: 3, RobotPos: grid.Point{X: 2, Y: 1}, Charge: 1},
				Step: &service.StepInfo{
					Idx: 1, Dir: direction,
					From: grid.Point{X: 1, Y: 1}, To: grid.Point{X: 2, Y: 1},
					ChargeBefore: 2, ChargeAfter: 1, Success: true,
				},
			}, nil
		},
	}
	server := setupTestServer(t, mockService)

	w := do(server, "POST", "/api/sessions/ab12/move", map[string]interface{}{"direction": "right", "reset": true})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if gotDirection != "right" || !gotReset {
		t.Errorf("Expected right with reset, got %s %t", gotDirection, gotReset)
	}
	var result service.MoveResult
	parseResponse(t, w, &result)
	if result.Step == nil || result.Step.ChargeAfter != 1 {
		t.Errorf("Expected step with charge 1, got %+v", result.Step)
	}

	w = do(server, "POST", "/api/sessions/ab12/move", map[string]string{"direction": "up"})
	parseResponse(t, w, &result)
	if result.Success || result.AttemptedTo == nil || result.AttemptedTo.CellChar != "#" {
		t.Errorf("Expected a blocked move, got %+v", result)
	}

	req := httptest.NewRequest("POST", "/api/sessions/ab12/move", strings.NewReader("{"))
	w = httptest.NewRecorder()
	server.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for malformed body, got %d", w.Code)
	}
}

func TestBulkMove(t *testing.T) {
	mockService := &MockGameService{
		BulkMoveFunc: func(ctx context.Context, sessionID string, moves []string, reset bool) (*service.BulkMoveResult, error) {
			if sessionID == "missing" {
				return nil, fmt.Errorf("session not found")
			}
			return &service.BulkMoveResult{
				MovesExecuted:  len(moves),
				RequestedMoves: len(moves),
				Success:        true,
				GameState:      &engine.GameState{Victory: true, GameOver: true},
				StopReasonCode: "victory",
				GameOverCode:   "victory",
			}, nil
		},
	}
	server := setupTestServer(t, mockService)

	w := do(server, "POST", "/api/sessions/ab12/bulk-move", map[string]interface{}{"moves": []string{"right", "right", "down"}})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var result service.BulkMoveResult
	parseResponse(t, w, &result)
	if result.MovesExecuted != 3 || result.GameOverCode != "victory" {
		t.Errorf("Unexpected result %+v", result)
	}

	if w := do(server, "POST", "/api/sessions/missing/bulk-move", map[string]interface{}{"moves": []string{"up"}}); w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestResetAndState(t *testing.T) {
	state := &engine.GameState{
		Size:            2,
		RobotPos:        grid.Point{X: 1, Y: 1},
		Charge:          1,
		Batteries:       []engine.BatterySpec{{Position: grid.Point{X: 2, Y: 2}, Charge: 1}},
		RemainingCharge: 1,
		Message:         "Drain every battery",
	}
	mockService := &MockGameService{
		ResetFunc:        func(ctx context.Context, sessionID string) (*engine.GameState, error) { return state, nil },
		GetGameStateFunc: func(ctx context.Context, sessionID string) (*engine.GameState, error) { return state, nil },
	}
	server := setupTestServer(t, mockService)

	w := do(server, "POST", "/api/sessions/ab12/reset", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var resp struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}
	parseResponse(t, w, &resp)
	if resp.State == nil || resp.State.Charge != 1 {
		t.Errorf("Unexpected reset state %+v", resp.State)
	}

	w = do(server, "GET", "/api/sessions/ab12/state", nil)
	var got engine.GameState
	parseResponse(t, w, &got)
	if got.RobotPos != state.RobotPos {
		t.Errorf("Expected robot at %v, got %v", state.RobotPos, got.RobotPos)
	}

	w = do(server, "GET", "/api/sessions/ab12/board", nil)
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("Expected a text board, got content type %s", ct)
	}
	if !strings.Contains(w.Body.String(), "charge=1 remaining=1") {
		t.Errorf("Board is missing the status line: %q", w.Body.String())
	}
}

func TestGetHistory(t *testing.T) {
	var got service.HistoryOptions
	mockService := &MockGameService{
		GetMoveHistoryFunc: func(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
			got = opts
			return &service.HistoryResponse{Page: opts.Page, PageSize: opts.Limit}, nil
		},
	}
	server := setupTestServer(t, mockService)

	tests := []struct {
		query    string
		expected service.HistoryOptions
	}{
		{"", service.HistoryOptions{Page: 1, Limit: 20, Order: "desc"}},
		{"?page=3&limit=5&order=asc", service.HistoryOptions{Page: 3, Limit: 5, Order: "asc"}},
		{"?page=-1&limit=abc&order=sideways", service.HistoryOptions{Page: 1, Limit: 20, Order: "desc"}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := do(server, "GET", "/api/sessions/ab12/history"+tt.query, nil)
			if w.Code != http.StatusOK {
				t.Fatalf("Expected status 200, got %d", w.Code)
			}
			if got != tt.expected {
				t.Errorf("Expected options %+v, got %+v", tt.expected, got)
			}
		})
	}
}

// Puzzle Tests

func TestPuzzles(t *testing.T) {
	var saved *engine.Puzzle
	var savedID string
	mockService := &MockGameService{
		ListPuzzlesFunc: func(ctx context.Context) ([]*service.PuzzleInfo, error) {
			return []*service.PuzzleInfo{{PuzzleID: "corner", Size: 3, Batteries: 1, TotalCharge: 3}}, nil
		},
		LoadPuzzleFunc: func(ctx context.Context, puzzleID string) (*engine.Puzzle, error) {
			if puzzleID != "corner" {
				return nil, service.ErrPuzzleNotFound
			}
			return &engine.Puzzle{
				Size:      3,
				Robot:     engine.RobotSpec{Position: grid.Point{X: 1, Y: 1}, Charge: 2},
				Batteries: []engine.BatterySpec{{Position: grid.Point{X: 3, Y: 1}, Charge: 1}},
			}, nil
		},
		SavePuzzleFunc: func(ctx context.Context, puzzleID string, puzzle *engine.Puzzle) error {
			if err := engine.ValidatePuzzle(puzzle); err != nil {
				return err
			}
			savedID, saved = puzzleID, puzzle
			return nil
		},
	}
	server := setupTestServer(t, mockService)

	w := do(server, "GET", "/api/puzzles", nil)
	var infos []*service.PuzzleInfo
	parseResponse(t, w, &infos)
	if len(infos) != 1 || infos[0].PuzzleID != "corner" {
		t.Errorf("Unexpected puzzle list %+v", infos)
	}

	w = do(server, "GET", "/api/puzzles/corner", nil)
	var p engine.Puzzle
	parseResponse(t, w, &p)
	if p.Size != 3 || p.Robot.Charge != 2 {
		t.Errorf("Unexpected puzzle %+v", p)
	}

	w = do(server, "GET", "/api/puzzles/corner?format=text", nil)
	if got := w.Body.String(); got != "3\n1,1,2\n1\n3,1,1\n" {
		t.Errorf("Unexpected text puzzle %q", got)
	}

	if w := do(server, "GET", "/api/puzzles/missing", nil); w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}

	body := map[string]interface{}{
		"id":        "mine.yaml",
		"size":      2,
		"robot":     map[string]interface{}{"position": map[string]int{"x": 1, "y": 1}, "charge": 1},
		"batteries": []interface{}{},
	}
	w = do(server, "POST", "/api/puzzles", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d (%s)", w.Code, w.Body.String())
	}
	if savedID != "mine.yaml" || saved == nil || saved.Size != 2 {
		t.Errorf("Unexpected save %s %+v", savedID, saved)
	}

	w = do(server, "POST", "/api/puzzles", map[string]interface{}{"size": 2})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 without a name, got %d", w.Code)
	}

	body["id"] = "broken"
	body["size"] = 0
	w = do(server, "POST", "/api/puzzles", body)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for an invalid puzzle, got %d", w.Code)
	}
}

// Solver and Generator Tests

func TestSolve(t *testing.T) {
	var gotOpts service.SolveOptions
	var gotPuzzle *engine.Puzzle
	mockService := &MockGameService{
		SolveFunc: func(ctx context.Context, puzzle *engine.Puzzle, opts service.SolveOptions) (*service.SolveResult, error) {
			gotPuzzle, gotOpts = puzzle, opts
			return &service.SolveResult{Solvable: true, Directions: []string{"right"}, Steps: 1}, nil
		},
	}
	server := setupTestServer(t, mockService)

	w := do(server, "POST", "/api/solve", map[string]interface{}{"puzzle_id": "corner", "max_nodes": 50, "timeout_ms": 250})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if gotPuzzle == nil || gotPuzzle.Name != "corner" {
		t.Errorf("Expected the library puzzle, got %+v", gotPuzzle)
	}
	if gotOpts.MaxNodes != 50 || gotOpts.Timeout != 250*time.Millisecond {
		t.Errorf("Unexpected options %+v", gotOpts)
	}

	w = do(server, "POST", "/api/solve", map[string]string{"puzzle_text": "2\n1,1,1\n0\n"})
	if w.Code != http.StatusOK || gotPuzzle.Size != 2 {
		t.Errorf("Expected the text puzzle to be solved, got %d %+v", w.Code, gotPuzzle)
	}

	if w := do(server, "POST", "/api/solve", map[string]string{}); w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 without a puzzle, got %d", w.Code)
	}
}

func TestSolveSession(t *testing.T) {
	mockService := &MockGameService{
		SolveSessionFunc: func(ctx context.Context, sessionID string, opts service.SolveOptions) (*service.SolveResult, error) {
			if sessionID == "missing" {
				return nil, fmt.Errorf("session not found")
			}
			if sessionID == "busy" {
				return nil, fmt.Errorf("%w: session busy moved while solving", service.ErrSessionChanged)
			}
			return &service.SolveResult{
				Solvable:  true,
				Applied:   opts.Apply,
				GameState: &engine.GameState{Victory: opts.Apply},
			}, nil
		},
	}
	server := setupTestServer(t, mockService)

	w := do(server, "POST", "/api/sessions/ab12/solve", map[string]bool{"apply": true})
	var result service.SolveResult
	parseResponse(t, w, &result)
	if !result.Applied || !result.GameState.Victory {
		t.Errorf("Expected an applied solution, got %+v", result)
	}

	if w := do(server, "POST", "/api/sessions/ab12/solve", nil); w.Code != http.StatusOK {
		t.Errorf("Expected status 200 without a body, got %d", w.Code)
	}
	if w := do(server, "POST", "/api/sessions/missing/solve", nil); w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
	if w := do(server, "POST", "/api/sessions/busy/solve", map[string]bool{"apply": true}); w.Code != http.StatusConflict {
		t.Errorf("Expected status 409 for a session moved during the search, got %d", w.Code)
	}
}

func TestGenerate(t *testing.T) {
	mockService := &MockGameService{
		GenerateFunc: func(ctx context.Context, req service.GenerateRequest) (*service.GenerateResult, error) {
			if req.Constraints != nil && req.Constraints.Size == 1 {
				return nil, fmt.Errorf("%w: size 1", generator.ErrInvalidConstraints)
			}
			result := &service.GenerateResult{Puzzle: engine.DefaultPuzzle(), Seed: req.Seed}
			if req.SaveAs != "" {
				result.PuzzleID = req.SaveAs
			}
			return result, nil
		},
	}
	server := setupTestServer(t, mockService)

	w := do(server, "POST", "/api/generate", map[string]interface{}{"seed": 7})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var result service.GenerateResult
	parseResponse(t, w, &result)
	if result.Seed != 7 {
		t.Errorf("Expected seed 7, got %d", result.Seed)
	}

	if w := do(server, "POST", "/api/generate", map[string]string{"save_as": "fresh"}); w.Code != http.StatusCreated {
		t.Errorf("Expected status 201 when saving, got %d", w.Code)
	}

	w = do(server, "POST", "/api/generate", map[string]interface{}{"constraints": map[string]int{"size": 1}})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for bad constraints, got %d", w.Code)
	}
}

func TestUnifiedSessions(t *testing.T) {
	now := time.Now()
	corner := &engine.Puzzle{
		Size:      3,
		Robot:     engine.RobotSpec{Position: grid.Point{X: 1, Y: 1}, Charge: 2},
		Batteries: []engine.BatterySpec{{Position: grid.Point{X: 3, Y: 1}, Charge: 1}},
	}
	all := []*service.SessionInfo{
		{ID: "b", PuzzleID: "corner", Puzzle: corner, CreatedAt: now},
		{ID: "a", PuzzleID: "corner", Puzzle: corner, CreatedAt: now.Add(-time.Minute)},
		{ID: "c", PuzzleID: "loop", CreatedAt: now},
	}
	mockService := &MockGameService{
		ListSessionsFunc: func(ctx context.Context) ([]*service.SessionInfo, error) { return all, nil },
		GetSessionFunc: func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
			for _, s := range all {
				if s.ID == sessionID {
					return s, nil
				}
			}
			return nil, fmt.Errorf("session not found")
		},
	}
	server := setupTestServer(t, mockService)

	type unified struct {
		PuzzleID    string `json:"puzzle_id"`
		TotalCharge int    `json:"total_charge"`
		Sessions    []struct {
			SessionID string `json:"session_id"`
		} `json:"sessions"`
	}

	var resp unified
	parseResponse(t, do(server, "GET", "/api/sessions/unified?puzzleId=corner", nil), &resp)
	if resp.PuzzleID != "corner" || resp.TotalCharge != 3 || len(resp.Sessions) != 2 {
		t.Fatalf("Unexpected unified response %+v", resp)
	}
	if resp.Sessions[0].SessionID != "a" {
		t.Errorf("Expected oldest session first, got %s", resp.Sessions[0].SessionID)
	}

	resp = unified{}
	parseResponse(t, do(server, "GET", "/api/sessions/unified?sessionIds=c,%20zz,", nil), &resp)
	if len(resp.Sessions) != 1 || resp.Sessions[0].SessionID != "c" {
		t.Errorf("Expected only session c, got %+v", resp.Sessions)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	server := setupTestServer(t, &MockGameService{})

	w := do(server, "GET", "/health", nil)
	var resp map[string]string
	parseResponse(t, w, &resp)
	if resp["status"] != "healthy" {
		t.Errorf("Expected healthy, got %v", resp)
	}

	w = do(server, "GET", "/metrics", nil)
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200 from /metrics, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "stromrallye_websocket_clients") {
		t.Error("Expected the websocket gauge in the metrics output")
	}
}

func TestWebSocket(t *testing.T) {
	tests := []struct {
		name           string
		queryParams    string
		setupMock      func(*MockGameService)
		expectedStatus int
	}{
		{
			name:           "Missing session parameter",
			queryParams:    "",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:        "Invalid session",
			queryParams: "?session=invalid",
			setupMock: func(m *MockGameService) {
				m.GetSessionFunc = func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
					return nil, fmt.Errorf("session not found")
				}
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			w := do(setupTestServer(t, mockService), "GET", "/ws"+tt.queryParams, nil)
			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
		})
	}
}

// TestEndToEnd drives the real service stack through the HTTP API.
func TestEndToEnd(t *testing.T) {
	puzzles, err := config.NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create puzzle library: %v", err)
	}
	gameService := service.NewGameService(session.NewManager(), puzzles)
	server := setupTestServer(t, gameService)

	w := do(server, "POST", "/api/sessions", map[string]string{"puzzle_text": "3\n1,1,2\n1\n3,1,1\n"})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d (%s)", w.Code, w.Body.String())
	}
	var info service.SessionInfo
	parseResponse(t, w, &info)

	w = do(server, "POST", "/api/sessions/"+info.ID+"/bulk-move", map[string]interface{}{"moves": []string{"right", "right", "down"}})
	var bulk service.BulkMoveResult
	parseResponse(t, w, &bulk)
	if bulk.MovesExecuted != 3 || bulk.GameOverCode != "victory" || !bulk.GameState.Victory {
		t.Errorf("Expected victory after three moves, got %+v", bulk)
	}

	w = do(server, "POST", "/api/solve", map[string]string{"puzzle_text": "4\n1,1,3\n3\n4,1,2\n4,3,3\n2,4,2\n"})
	var solved service.SolveResult
	parseResponse(t, w, &solved)
	if !solved.Solvable || solved.Steps != 10 || len(solved.Directions) != 10 {
		t.Errorf("Expected a 10 step solution, got %+v", solved)
	}

	w = do(server, "POST", "/api/solve", map[string]string{"puzzle_text": "5\n3,3,1\n2\n1,1,1\n5,5,1\n"})
	parseResponse(t, w, &solved)
	if w.Code != http.StatusOK || solved.Solvable || solved.Reason == "" {
		t.Errorf("Expected an unsolvable verdict with a reason, got %d %+v", w.Code, solved)
	}

	if w := do(server, "GET", "/api/sessions/nope/state", nil); w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 for unknown session, got %d", w.Code)
	}
}
