// Package mcp exposes Stromrallye to AI agents over the Model Context Protocol.
//
// The Client is a thin proxy: every tool calls the REST API, so the MCP view
// and browsers watching a session over WebSocket always agree.
//
// Tools:
//   - list_puzzles, create_session, get_session, list_sessions
//   - game_state, describe_cell, move_history
//   - move, bulk_move, reset_game
//   - solve, hint, generate_puzzle
//   - game_instructions
//
// Transport Modes:
//   - Stdio: server.ServeStdio(client.GetMCPServer())
//   - HTTP: POST /mcp on the main server, handled with HandleMessage
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	if err := server.ServeStdio(client.GetMCPServer()); err != nil {
//		log.Fatal(err)
//	}
//
// Coordinates in tool input and output are 1-indexed with (1,1) at the top
// left, the same as the puzzle files.
package mcp
