// Package service provides the business logic layer for the Stromrallye server.
//
// The service package implements:
//   - Multi-session game management
//   - Puzzle library access
//   - Move processing and validation
//   - Solving puzzles and live sessions
//   - Puzzle generation
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// PuzzleLibrary loads, lists and saves puzzles.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the game engine, solver and generator. Each session owns its own game engine
// instance and a copy of the puzzle it was started from, so generated puzzles
// do not need to be saved to the library to be played.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	library, _ := config.NewManager("puzzles")
//	gameService := service.NewGameService(sessionMgr, library)
//
//	info, err := gameService.CreateSession(ctx, "stromrallye0")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameService.SolveSession(ctx, info.ID, service.SolveOptions{Apply: true})
//
// Solving:
//
// Solve and SolveSession run the best-first solver. SolveSession starts from
// the session's current board, not the original puzzle, and with Apply set
// replays the found path on the session.
package service
