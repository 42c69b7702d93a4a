package engine

import (
	"fmt"
	"time"

	"github.com/wricardo/mcp-training/stromrallye/game/grid"
)

// CanMoveTo checks if the robot can step onto the specified cell
func (gs *GameState) CanMoveTo(p grid.Point) bool {
	return p.In(gs.Size) && grid.Adjacent(gs.RobotPos, p)
}

// MoveRobot attempts to move the robot one cell in the specified direction.
//
// Each step costs one unit of charge. Arriving on a battery that still holds
// charge swaps the robot's charge with the battery's; an empty battery is
// left alone.
func (gs *GameState) MoveRobot(direction string) (moved, swapped bool) {
	if gs.GameOver {
		return false, false
	}

	delta, ok := DirectionDelta(direction)
	if !ok {
		gs.Message = fmt.Sprintf("Unknown direction %q", direction)
		return false, false
	}

	target := gs.RobotPos.Add(delta)
	if !target.In(gs.Size) {
		gs.Message = fmt.Sprintf("Can't move %s: boundary at %v", direction, target)
		return false, false
	}

	if gs.Charge <= 0 {
		gs.Message = "Out of charge! Game Over!"
		gs.GameOver = true
		return false, false
	}

	gs.RobotPos = target
	gs.Charge--

	if i := gs.batteryAt(target); i >= 0 && gs.Batteries[i].Charge > 0 {
		old := gs.Charge
		gs.Charge = gs.Batteries[i].Charge
		gs.Batteries[i].Charge = old
		gs.RemainingCharge = gs.batteryCharge()
		swapped = true
		gs.Message = fmt.Sprintf("Swapped at %v: robot now holds %d, battery keeps %d", target, gs.Charge, old)
	} else {
		gs.Message = fmt.Sprintf("Charge: %d (batteries hold %d)", gs.Charge, gs.RemainingCharge)
	}

	gs.updateStatus()
	return true, swapped
}

// updateStatus sets victory or game over once the robot runs dry
func (gs *GameState) updateStatus() {
	if gs.Charge > 0 {
		return
	}
	gs.GameOver = true
	if gs.RemainingCharge == 0 {
		gs.Victory = true
		gs.Message = "Victory! All batteries drained!"
		return
	}
	gs.Victory = false
	gs.Message = fmt.Sprintf("Stranded with no charge! %d units left in batteries. Game Over!", gs.RemainingCharge)
}

func (gs *GameState) batteryAt(p grid.Point) int {
	for i, b := range gs.Batteries {
		if b.Position == p {
			return i
		}
	}
	return -1
}

func (gs *GameState) batteryCharge() int {
	total := 0
	for _, b := range gs.Batteries {
		total += b.Charge
	}
	return total
}

// CellAt describes what occupies p
func (gs *GameState) CellAt(p grid.Point) Cell {
	if !p.In(gs.Size) {
		return Cell{Type: Outside}
	}
	if p == gs.RobotPos {
		return Cell{Type: Robot, Charge: gs.Charge}
	}
	if i := gs.batteryAt(p); i >= 0 {
		return Cell{Type: Battery, Charge: gs.Batteries[i].Charge}
	}
	return Cell{Type: Empty}
}

// GenerateLocalView creates list of 8 surrounding cells around the robot
func (gs *GameState) GenerateLocalView() []SurroundingCell {
	directions := []grid.Point{
		{X: 0, Y: -1},  // North
		{X: 1, Y: -1},  // North-East
		{X: 1, Y: 0},   // East
		{X: 1, Y: 1},   // South-East
		{X: 0, Y: 1},   // South
		{X: -1, Y: 1},  // South-West
		{X: -1, Y: 0},  // West
		{X: -1, Y: -1}, // North-West
	}

	surroundings := make([]SurroundingCell, len(directions))
	for i, dir := range directions {
		p := gs.RobotPos.Add(dir)
		cell := gs.CellAt(p)
		surroundings[i] = SurroundingCell{
			X:      p.X,
			Y:      p.Y,
			Type:   cell.Type,
			Charge: cell.Charge,
		}
	}

	return surroundings
}

// AddMoveToHistory adds a move to the game's move history
func (gs *GameState) AddMoveToHistory(action string, fromPos, toPos grid.Point, success, swapped bool) {
	entry := MoveHistoryEntry{
		Action:       action,
		FromPosition: fromPos,
		ToPosition:   toPos,
		Charge:       gs.Charge,
		Swapped:      swapped,
		Timestamp:    time.Now().Unix(),
		Success:      success,
		MoveNumber:   gs.TotalMoves + 1,
	}
	// Append to cumulative history (never cleared by reset) and increment total
	gs.MoveHistory = append(gs.MoveHistory, entry)
	gs.TotalMoves++

	// Append to current segment history and increment its counter
	gs.CurrentMoves = append(gs.CurrentMoves, entry)
	gs.CurrentMovesCount++
}
