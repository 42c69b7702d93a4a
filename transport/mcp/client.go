package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/mcp-training/stromrallye/game/engine"
	"github.com/wricardo/mcp-training/stromrallye/game/generator"
	"github.com/wricardo/mcp-training/stromrallye/game/grid"
	"github.com/wricardo/mcp-training/stromrallye/game/service"
)

// solveTimeout keeps solver calls inside the HTTP client timeout
const solveTimeout = 8 * time.Second

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Stromrallye",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Stromrallye - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Spend every unit of charge on the board. The robot (R) loses one charge per step.
Stepping onto a battery swaps the robot's charge with the battery's. You win when
the robot and every battery are empty.

AVAILABLE TOOLS:
- list_puzzles: List puzzles in the library
- create_session: Create new game session
- get_session / list_sessions: Inspect sessions
- game_state: Get current game state
- move: Single move (up/down/left/right) - requires intent explanation
- bulk_move: Multiple moves at once - requires intent explanation
- reset_game: Reset to initial state
- move_history: View past moves
- describe_cell: Get detailed info about one cell (1-indexed x,y)
- solve: Ask the solver for a full solution, optionally playing it
- hint: Get only the next move of a solution
- generate_puzzle: Generate a new solvable puzzle
- game_instructions: Rules and strategy

NOTE: The 'intent' parameter on move/bulk_move tools serves as rubber duck debugging - explain your reasoning!`),
	)

	c.registerTools()
}

func sessionProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session from a library puzzle or a puzzle in the text format",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"puzzle_id": map[string]interface{}{
					"type":        "string",
					"description": "Library puzzle to play (optional, see list_puzzles)",
				},
				"puzzle_text": map[string]interface{}{
					"type":        "string",
					"description": "Puzzle in the text format: size, robot x,y,charge, battery count, then x,y,charge per battery",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current game state",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Move the robot one cell",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"direction": map[string]interface{}{
					"type":        "string",
					"enum":        []string{engine.Up, engine.Down, engine.Left, engine.Right},
					"description": "Direction to move",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this move (serves as a rubber duck to help explain your reasoning)",
				},
				"reset": map[string]interface{}{
					"type":        "boolean",
					"description": "Reset before moving",
				},
			},
			Required: []string{"session_id", "direction"},
		},
	}, c.handleMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "bulk_move",
		Description: "Execute multiple moves in sequence, stopping at the first failure",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"moves": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type": "string",
						"enum": []string{engine.Up, engine.Down, engine.Left, engine.Right},
					},
					"description": "Array of moves",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this sequence of moves (serves as a rubber duck to help explain your reasoning)",
				},
				"reset": map[string]interface{}{
					"type":        "boolean",
					"description": "Reset before moving",
				},
			},
			Required: []string{"session_id", "moves"},
		},
	}, c.handleBulkMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_game",
		Description: "Reset the game to initial state",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move_history",
		Description: "Get move history for a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Items per page",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleMoveHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_puzzles",
		Description: "List puzzles available in the library",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListPuzzles)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get comprehensive game instructions and rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_cell",
		Description: "Get detailed information about one cell of the board: robot, battery and its charge, or empty.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"x": map[string]interface{}{
					"type":        "integer",
					"description": "Column of the cell, 1 is the left edge",
				},
				"y": map[string]interface{}{
					"type":        "integer",
					"description": "Row of the cell, 1 is the top edge",
				},
			},
			Required: []string{"session_id", "x", "y"},
		},
	}, c.handleDescribeCell)

	// Solver and generator
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "solve",
		Description: "Solve a session from its current state, or a library puzzle. With apply the solution is played on the session.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"puzzle_id": map[string]interface{}{
					"type":        "string",
					"description": "Library puzzle to solve when no session is given",
				},
				"apply": map[string]interface{}{
					"type":        "boolean",
					"description": "Play the solution on the session",
				},
			},
		},
	}, c.handleSolve)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "hint",
		Description: "Get the next move of a solution from the session's current state",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleHint)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "generate_puzzle",
		Description: "Generate a new puzzle that is solvable by construction",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"size": map[string]interface{}{
					"type":        "integer",
					"description": "Board side length (default 10)",
				},
				"seed": map[string]interface{}{
					"type":        "integer",
					"description": "Seed for a reproducible puzzle (optional)",
				},
				"save_as": map[string]interface{}{
					"type":        "string",
					"description": "Store the puzzle in the library under this id",
				},
				"create_session": map[string]interface{}{
					"type":        "boolean",
					"description": "Start a session on the new puzzle",
				},
			},
		},
	}, c.handleGeneratePuzzle)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

// Argument helpers

func stringArg(args map[string]interface{}, key string) string {
	s, _ := args[key].(string)
	return strings.TrimSpace(s)
}

func boolArg(args map[string]interface{}, key string) bool {
	b, _ := args[key].(bool)
	return b
}

func intArg(args map[string]interface{}, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case json.Number:
		n, err := v.Int64()
		return int(n), err == nil
	}
	return 0, false
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	body := map[string]string{}
	if puzzleID := stringArg(args, "puzzle_id"); puzzleID != "" {
		body["puzzle_id"] = puzzleID
	}
	if text := stringArg(args, "puzzle_text"); text != "" {
		body["puzzle_text"] = text
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nPuzzle: %s\n\n%s", session.ID, session.PuzzleID, formatGameState(session.GameState))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		status := "playing"
		if s.GameState != nil && s.GameState.GameOver {
			status = "won"
			if !s.GameState.Victory {
				status = "stranded"
			}
		}
		fmt.Fprintf(&b, "- %s (Puzzle: %s, %s, Created: %s)\n",
			s.ID, s.PuzzleID, status, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(request.GetArguments(), "session_id")

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(request.GetArguments(), "session_id")

	var state engine.GameState
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID := stringArg(args, "session_id")

	// intent is only there for the caller's reasoning
	body := map[string]interface{}{
		"direction": stringArg(args, "direction"),
		"reset":     boolArg(args, "reset"),
	}

	var result service.MoveResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/move"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMoveResult(&result)), nil
}

func (c *Client) handleBulkMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID := stringArg(args, "session_id")
	movesRaw, _ := args["moves"].([]interface{})

	moves := make([]string, 0, len(movesRaw))
	for _, m := range movesRaw {
		if move, ok := m.(string); ok {
			moves = append(moves, move)
		}
	}

	body := map[string]interface{}{
		"moves": moves,
		"reset": boolArg(args, "reset"),
	}

	var result service.BulkMoveResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/bulk-move"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatBulkMoveResult(sessionID, &result)), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(request.GetArguments(), "session_id")

	var response struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}

	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/reset"), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("%s\n\n%s", response.Message, formatGameState(response.State))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleMoveHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID := stringArg(args, "session_id")

	query := url.Values{}
	if page, ok := intArg(args, "page"); ok {
		query.Set("page", fmt.Sprint(page))
	}
	if limit, ok := intArg(args, "limit"); ok {
		query.Set("limit", fmt.Sprint(limit))
	}
	path := sessionPath(sessionID, "/history")
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := formatHistory(&history)

	// Also show the segment since the last reset
	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &session); err == nil {
		result += "\n" + formatCurrentSegment(session.GameState)
	}
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListPuzzles(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var puzzles []service.PuzzleInfo
	if err := c.apiCall(ctx, "GET", "/api/puzzles", nil, &puzzles); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Puzzles:\n\n")
	for _, p := range puzzles {
		fmt.Fprintf(&b, "• %s", p.PuzzleID)
		if p.Description != "" {
			fmt.Fprintf(&b, "\n  %s", p.Description)
		}
		fmt.Fprintf(&b, "\n  Board: %dx%d, Batteries: %d, Total charge: %d (%s)\n\n",
			p.Size, p.Size, p.Batteries, p.TotalCharge, p.Format)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `Stromrallye - Complete Instructions

GAME OBJECTIVE:
Drive the robot until no charge is left anywhere on the board: the robot and every battery must end empty.

BOARD:
• Square board of n x n cells, coordinates are 1-indexed: (1,1) is the top-left corner
• x grows to the right, y grows downwards
• There are no walls; only the board edge blocks a move

GRID LEGEND:
• R = the robot
• a number = a battery holding that much charge
• 0 = a drained battery
• . = empty cell

MOVEMENT COMMANDS:
• up, down, left, right - one cell per move
• Every step costs exactly one unit of the robot's charge
• The robot cannot move with zero charge

BATTERIES:
• Stepping onto a battery that still holds charge SWAPS charges: the robot takes the battery's charge and leaves its own remaining charge behind
• A drained battery (0) is just an empty cell to drive over
• Passing over a battery does the swap on every visit, so plan your route

VICTORY CONDITIONS:
• The robot's charge is 0 and every battery is 0
• If the robot runs empty while some battery still holds charge, the game is over (stranded)

STRATEGY:
• Count total charge: a winning route takes exactly that many steps
• Leftover charge at the end can be burned by stepping back and forth next to the robot
• Use hint for one move, or solve to see a complete solution
• Use reset_game to start over; the move history is kept

Good luck draining the board!`

	return mcp.NewToolResultText(instructions), nil
}

func (c *Client) handleDescribeCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID := stringArg(args, "session_id")
	x, okX := intArg(args, "x")
	y, okY := intArg(args, "y")
	if !okX || !okY {
		return mcp.NewToolResultError("x and y must be integers"), nil
	}

	var state engine.GameState
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	p := grid.Point{X: x, Y: y}
	if !p.In(state.Size) {
		return mcp.NewToolResultError(fmt.Sprintf("Coordinates (%d, %d) are out of bounds. Board is %dx%d (1-%d for both x and y)",
			x, y, state.Size, state.Size, state.Size)), nil
	}

	cell := state.CellAt(p)
	var char, description string
	switch cell.Type {
	case engine.Robot:
		char = "R"
		description = fmt.Sprintf("The robot, holding %d charge", state.Charge)
	case engine.Battery:
		char = fmt.Sprint(cell.Charge)
		if cell.Charge > 0 {
			description = fmt.Sprintf("Battery with %d charge. Arriving here swaps it with the robot's charge after the step", cell.Charge)
		} else {
			description = "Drained battery, free to drive over"
		}
	default:
		char = "."
		description = "Empty cell"
	}

	distance := grid.ManhattanDistance(state.RobotPos, p)
	reach := "out of reach with the current charge"
	if distance <= state.Charge {
		reach = "within reach with the current charge"
	}

	result := fmt.Sprintf(`Cell at position (%d, %d):
━━━━━━━━━━━━━━━━━━━━━━━━
Character: %s
Type: %s
Description: %s
Distance from robot: %d (%s)`,
		x, y, char, cell.Type, description, distance, reach)

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleSolve(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID := stringArg(args, "session_id")
	puzzleID := stringArg(args, "puzzle_id")

	body := map[string]interface{}{
		"timeout_ms": solveTimeout.Milliseconds(),
	}

	var result service.SolveResult
	var err error
	switch {
	case sessionID != "":
		body["apply"] = boolArg(args, "apply")
		err = c.apiCall(ctx, "POST", sessionPath(sessionID, "/solve"), body, &result)
	case puzzleID != "":
		body["puzzle_id"] = puzzleID
		err = c.apiCall(ctx, "POST", "/api/solve", body, &result)
	default:
		return mcp.NewToolResultError("session_id or puzzle_id is required"), nil
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSolveResult(&result)), nil
}

func (c *Client) handleHint(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(request.GetArguments(), "session_id")

	body := map[string]interface{}{"timeout_ms": solveTimeout.Milliseconds()}
	var result service.SolveResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/solve"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	dir, to, ok := service.Hint(&result)
	if !ok {
		if result.Reason != "" {
			return mcp.NewToolResultText("No hint: " + result.Reason), nil
		}
		return mcp.NewToolResultText("No hint: nothing left to solve"), nil
	}

	hint := fmt.Sprintf("Next move: %s → (%d,%d)\n%d steps remain in this solution.", dir, to.X, to.Y, result.Steps)
	if result.FromStart {
		hint = "The robot stands on a charged battery, so this solution starts from the puzzle's initial state. Call reset_game first.\n" + hint
	}
	return mcp.NewToolResultText(hint), nil
}

func (c *Client) handleGeneratePuzzle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	req := service.GenerateRequest{
		SaveAs:        stringArg(args, "save_as"),
		CreateSession: boolArg(args, "create_session"),
	}
	if seed, ok := intArg(args, "seed"); ok && seed > 0 {
		req.Seed = uint64(seed)
	}
	if size, ok := intArg(args, "size"); ok {
		constraints := generator.DefaultConstraints()
		constraints.Size = size
		req.Constraints = &constraints
	}

	var result service.GenerateResult
	if err := c.apiCall(ctx, "POST", "/api/generate", req, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Generated a %dx%d puzzle with %d batteries (seed %d, difficulty %.2f)\n",
		result.Puzzle.Size, result.Puzzle.Size, len(result.Puzzle.Batteries), result.Seed, result.Difficulty.DI)
	fmt.Fprintf(&b, "Total charge: %d\n", result.Puzzle.TotalCharge())
	if result.PuzzleID != "" {
		fmt.Fprintf(&b, "Saved as: %s\n", result.PuzzleID)
	}
	if text, err := engine.EncodePuzzle(result.Puzzle, engine.FormatText); err == nil {
		fmt.Fprintf(&b, "\nPuzzle text:\n%s", text)
	}
	if result.Session != nil {
		fmt.Fprintf(&b, "\nCreated session: %s\n\n%s", result.Session.ID, formatGameState(result.Session.GameState))
	}

	return mcp.NewToolResultText(b.String()), nil
}

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nPuzzle: %s\nCreated: %s\n\n%s",
		session.ID, session.PuzzleID,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatGameState(session.GameState))
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state available"
	}

	var result strings.Builder

	fmt.Fprintf(&result, "Position: (%d,%d) | Charge: %d | Remaining in batteries: %d | Moves: %d\n\n",
		state.RobotPos.X, state.RobotPos.Y, state.Charge, state.RemainingCharge, state.TotalMoves)

	if state.ChargeRisk != "" {
		fmt.Fprintf(&result, "Charge risk: %s\n", state.ChargeRisk)
	}
	if v := formatLocal3x3(state); v != "" {
		result.WriteString("Local 3x3:\n")
		result.WriteString(v + "\n")
	}

	board := state.Board
	if len(board) == 0 && state.Size > 0 {
		board = engine.RenderBoard(state)
	}
	for _, row := range board {
		result.WriteString(row + "\n")
	}

	if state.GameOver {
		if state.Victory {
			result.WriteString("\n🎉 VICTORY!")
		} else {
			result.WriteString("\n💀 GAME OVER")
		}
	}

	if state.Message != "" {
		fmt.Fprintf(&result, "\nMessage: %s", state.Message)
	}

	return result.String()
}

func formatMoveResult(result *service.MoveResult) string {
	var b strings.Builder
	if result.Success {
		b.WriteString("✓ Move successful\n")
	} else {
		b.WriteString("✗ Move failed\n")
	}

	if result.Step != nil {
		b.WriteString(formatStepLine(*result.Step))
	}

	if result.AttemptedTo != nil {
		a := result.AttemptedTo
		where := "off the board"
		if a.OnBoard {
			where = "on the board"
		}
		fmt.Fprintf(&b, "Blocked: attempted (%d,%d) cell=%s %s (%s)\n", a.X, a.Y, a.CellChar, a.CellType, where)
	}

	if len(result.Events) > 0 {
		b.WriteString("Events:\n")
		for _, event := range result.Events {
			fmt.Fprintf(&b, "- %s: %s\n", event.Type, event.Message)
		}
	}

	b.WriteString("\n" + formatGameState(result.GameState))
	return b.String()
}

func formatBulkMoveResult(sessionID string, result *service.BulkMoveResult) string {
	var b strings.Builder

	size := 0
	puzzleName := ""
	if result.GameState != nil {
		size = result.GameState.Size
		puzzleName = result.GameState.PuzzleName
	}
	fmt.Fprintf(&b, "Session: %s • Puzzle: %s • Board: %dx%d\n", sessionID, puzzleName, size, size)

	fmt.Fprintf(&b, "Executed %d/%d moves", result.MovesExecuted, result.RequestedMoves)
	if result.Truncated {
		fmt.Fprintf(&b, " (truncated to %d)", result.Limit)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Charge %d → %d • Drained %d • Swaps %d\n",
		result.StartCharge, result.EndCharge, result.DrainedCharge, result.SwapsPerformed)
	if result.StoppedReason != "" {
		fmt.Fprintf(&b, "Stopped on move %d: %s [%s]\n", result.StoppedOnMove, result.StoppedReason, result.StopReasonCode)
	}

	if len(result.Events) > 0 {
		b.WriteString("\nEvents:\n")
		for _, event := range result.Events {
			fmt.Fprintf(&b, "- %s: %s\n", event.Type, event.Message)
		}
	}

	if len(result.Steps) > 0 {
		b.WriteString("\nSteps (this call):\n")
		for _, s := range result.Steps {
			b.WriteString(formatStepLine(s))
		}
	}

	if a := result.AttemptedTo; a != nil {
		fmt.Fprintf(&b, "\nBlocked: attempted (%d,%d) cell=%s %s\n", a.X, a.Y, a.CellChar, a.CellType)
	}

	if len(result.PossibleMoves) > 0 {
		fmt.Fprintf(&b, "\nPossible moves: %s\n", strings.Join(result.PossibleMoves, ","))
	}

	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

// formatStepLine renders a single compact step line
func formatStepLine(s service.StepInfo) string {
	status := "✗"
	if s.Success {
		status = "✓"
	}
	extra := ""
	if s.Swapped {
		extra = " swapped"
	}
	if s.Victory {
		extra += " victory"
	}
	return fmt.Sprintf("%d. %s (%d,%d)→(%d,%d) cell=%s charge %d→%d %s%s\n",
		s.Idx, s.Dir, s.From.X, s.From.Y, s.To.X, s.To.Y, s.CellChar, s.ChargeBefore, s.ChargeAfter, status, extra)
}

func formatSolveResult(result *service.SolveResult) string {
	var b strings.Builder
	if !result.Solvable {
		fmt.Fprintf(&b, "No solution: %s\n", result.Reason)
		fmt.Fprintf(&b, "Expanded %d nodes in %dms\n", result.Expanded, result.DurationMS)
		if result.GameState != nil {
			b.WriteString("\n" + formatGameState(result.GameState))
		}
		return b.String()
	}

	fmt.Fprintf(&b, "Solution with %d steps (expanded %d nodes in %dms)\n", result.Steps, result.Expanded, result.DurationMS)
	if result.FromStart {
		b.WriteString("Solved from the puzzle's initial state\n")
	}
	if len(result.Directions) > 0 {
		fmt.Fprintf(&b, "Moves: %s\n", strings.Join(result.Directions, ","))
	}
	if result.Applied {
		b.WriteString("\nApplied to the session:\n")
		b.WriteString(formatGameState(result.GameState))
	}
	return b.String()
}

// formatLocal3x3 renders a 3x3 character window centered on the robot
func formatLocal3x3(state *engine.GameState) string {
	if state == nil || state.Size == 0 {
		return ""
	}
	var lines [3]string
	for dy := -1; dy <= 1; dy++ {
		var row strings.Builder
		for dx := -1; dx <= 1; dx++ {
			p := grid.Point{X: state.RobotPos.X + dx, Y: state.RobotPos.Y + dy}
			row.WriteString(cellChar(state, p))
		}
		lines[dy+1] = row.String()
	}
	return lines[0] + "\n" + lines[1] + "\n" + lines[2] + "\n"
}

// cellChar returns a single-character representation for a cell, "#" off the board
func cellChar(state *engine.GameState, p grid.Point) string {
	if !p.In(state.Size) {
		return "#"
	}
	cell := state.CellAt(p)
	switch cell.Type {
	case engine.Robot:
		return "R"
	case engine.Battery:
		if cell.Charge > 9 {
			return "+"
		}
		return fmt.Sprint(cell.Charge)
	default:
		return "."
	}
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Move History (Page %d/%d) — Total (cumulative): %d\n\n",
		history.Page, history.TotalPages, history.TotalMoves)

	for _, move := range history.Moves {
		b.WriteString(formatHistoryLine(move.MoveNumber, move))
	}

	return b.String()
}

func formatCurrentSegment(state *engine.GameState) string {
	if state == nil {
		return "Current Segment: unavailable"
	}
	header := fmt.Sprintf("Current Move Segment — Moves: %d\n\n", state.CurrentMovesCount)
	if len(state.CurrentMoves) == 0 {
		return header + "(no moves in current segment)"
	}
	var b strings.Builder
	b.WriteString(header)
	for i, move := range state.CurrentMoves {
		b.WriteString(formatHistoryLine(i+1, move))
	}
	return b.String()
}

func formatHistoryLine(num int, move engine.MoveHistoryEntry) string {
	status := "✓"
	if !move.Success {
		status = "✗"
	}
	swap := ""
	if move.Swapped {
		swap = " swap"
	}
	return fmt.Sprintf("%d. %s %s [Charge: %d]%s\n", num, move.Action, status, move.Charge, swap)
}
