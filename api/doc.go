// Package api provides the HTTP REST API for Stromrallye sessions, the puzzle
// library, the solver and the generator.
//
// Endpoints:
//
// Sessions:
//   - POST /api/sessions - Create a session from puzzle_id, an inline puzzle or puzzle_text
//   - GET /api/sessions - List sessions (sort=created|accessed, order, limit)
//   - GET /api/sessions/unified - Sessions of one puzzle (puzzleId) or by id (sessionIds)
//   - GET /api/sessions/{id} - Get a session
//   - DELETE /api/sessions/{id} - Delete a session
//
// Game operations:
//   - GET /api/sessions/{id}/state - Current game state
//   - GET /api/sessions/{id}/board - Board as plain text
//   - POST /api/sessions/{id}/move - {"direction": "up", "reset": false}
//   - POST /api/sessions/{id}/bulk-move - {"moves": ["up", "left"], "reset": false}
//   - POST /api/sessions/{id}/reset - Restart from the puzzle
//   - GET /api/sessions/{id}/history - Paginated move history (page, limit, order)
//   - POST /api/sessions/{id}/solve - Solve from the current state, {"apply": true} plays it
//
// Puzzles:
//   - GET /api/puzzles - List the library
//   - GET /api/puzzles/{id} - Get a puzzle, ?format=text for the text file format
//   - POST /api/puzzles - Save a puzzle, "id" may carry .json, .yaml or .txt
//
// Solver and generator:
//   - POST /api/solve - {"puzzle_id" | "puzzle" | "puzzle_text", "max_nodes", "timeout_ms"}
//   - POST /api/generate - {"seed", "constraints", "save_as", "create_session"}
//
// Other:
//   - GET /ws?session={id} - WebSocket updates
//   - GET /health
//   - GET /metrics - Prometheus metrics
//
// Errors are returned as JSON:
//
//	{"error": "error message"}
//
// An unsolvable puzzle is not an error: /api/solve answers 200 with
// "solvable": false and a reason.
package api

//
// Enriched Responses (Move and Bulk Move)
//
// Move (POST /api/sessions/{id}/move)
//   Response:
//     - step: { idx, dir, from{x,y}, to{x,y}, cell_char, cell_type, charge_before, charge_after, success, swapped }
//     - attempted_to: { x, y, cell_char, cell_type, on_board } // present when blocked
//     - game_state additions:
//         board: ["R.1", "...", "..."]   // batteries show their charge
//         charge_risk: "DONE|SAFE|CAUTION|DANGER|CRITICAL"
//
// Bulk Move (POST /api/sessions/{id}/bulk-move)
//   Response:
//     - requested_moves, moves_executed
//     - stopped_reason (text), stop_reason_code (enum), stopped_on_move (1-based), truncated, limit
//     - steps: [{ idx, dir, from, to, cell_char, cell_type, charge_before, charge_after, success, swapped?, victory? }]
//     - attempted_to: failed target cell on first block
//     - start_pos, end_pos, start_charge, end_charge, drained_charge, swaps_performed
//     - possible_moves: ["up","right"], local_view_3x3, charge_risk
