// Package engine provides the puzzle model and the playable rules of Stromrallye.
//
// The engine package implements:
//   - The Puzzle type with its text and JSON file formats
//   - Puzzle validation
//   - Robot movement, charge consumption and battery swapping
//   - Victory and stranded detection
//   - Move history across resets
//
// Core Types:
//
// The Engine interface defines the main contract for game operations,
// implemented by GameEngine. Puzzle is the immutable starting configuration,
// GameState the mutable state of one play-through.
//
// Usage:
//
//	puzzle, err := engine.LoadPuzzle("puzzles/stromrallye0.txt")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameEngine, err := engine.NewEngine(puzzle)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Move the robot
//	success := gameEngine.Move("right")
//	state := gameEngine.GetState()
//
// Game Rules:
//
// A robot stands on an n×n board holding some charge; batteries with their
// own charge occupy other cells. Every step to a neighboring cell costs one
// unit. When the robot arrives on a battery that still holds charge, the two
// swap charges. The puzzle is won when the robot and every battery are empty,
// and lost when the robot runs dry while charge is left in a battery.
package engine
