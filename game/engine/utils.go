package engine

import (
	"strconv"
	"strings"

	"github.com/wricardo/mcp-training/stromrallye/game/grid"
)

// Directions lists the move names in the order GetPossibleMoves reports them
var Directions = []string{Up, Down, Left, Right}

// DirectionDelta maps a direction name to its coordinate offset. Y grows downwards.
func DirectionDelta(direction string) (grid.Point, bool) {
	switch direction {
	case Up:
		return grid.Point{X: 0, Y: -1}, true
	case Down:
		return grid.Point{X: 0, Y: 1}, true
	case Left:
		return grid.Point{X: -1, Y: 0}, true
	case Right:
		return grid.Point{X: 1, Y: 0}, true
	}
	return grid.Point{}, false
}

// DirectionTo returns the direction leading from one cell to an adjacent one
func DirectionTo(from, to grid.Point) (string, bool) {
	for _, dir := range Directions {
		delta, _ := DirectionDelta(dir)
		if from.Add(delta) == to {
			return dir, true
		}
	}
	return "", false
}

// PathToDirections converts a list of cells, each adjacent to the previous
// one and the first adjacent to start, into direction names.
func PathToDirections(start grid.Point, path []grid.Point) ([]string, bool) {
	dirs := make([]string, 0, len(path))
	prev := start
	for _, p := range path {
		dir, ok := DirectionTo(prev, p)
		if !ok {
			return nil, false
		}
		dirs = append(dirs, dir)
		prev = p
	}
	return dirs, true
}

// FindNearestBattery finds the closest battery still holding charge and returns its position and distance
func FindNearestBattery(state *GameState) (grid.Point, int, bool) {
	minDistance := -1
	var nearestPos grid.Point
	found := false

	for _, b := range state.Batteries {
		if b.Charge == 0 {
			continue
		}
		distance := grid.ManhattanDistance(state.RobotPos, b.Position)
		if minDistance == -1 || distance < minDistance {
			minDistance = distance
			nearestPos = b.Position
			found = true
		}
	}

	return nearestPos, minDistance, found
}

// CountEmptyBatteries counts the batteries that have been drained
func CountEmptyBatteries(state *GameState) int {
	count := 0
	for _, b := range state.Batteries {
		if b.Charge == 0 {
			count++
		}
	}
	return count
}

// AnalyzeChargeRisk assesses whether the robot can still reach a charged battery
func AnalyzeChargeRisk(state *GameState) string {
	if state.Victory {
		return "DONE: All charge spent"
	}
	if state.Charge <= 0 {
		return "CRITICAL: Robot empty!"
	}

	_, distance, found := FindNearestBattery(state)
	if !found {
		return "SAFE: Only the robot's own charge remains"
	}

	if state.Charge < distance {
		return "DANGER: Insufficient charge to reach any charged battery!"
	} else if state.Charge <= distance+1 {
		return "CAUTION: Barely enough charge to reach the nearest battery"
	}

	return "SAFE: A charged battery is within reach"
}

// RenderBoard draws the board row by row. The robot is "R", a battery is its
// charge and an empty cell is ".".
func RenderBoard(state *GameState) []string {
	width := 1
	for _, b := range state.Batteries {
		if w := len(strconv.Itoa(b.Charge)); w > width {
			width = w
		}
	}

	rows := make([]string, 0, state.Size)
	for y := 1; y <= state.Size; y++ {
		cells := make([]string, 0, state.Size)
		for x := 1; x <= state.Size; x++ {
			var s string
			cell := state.CellAt(grid.Point{X: x, Y: y})
			switch cell.Type {
			case Robot:
				s = "R"
			case Battery:
				s = strconv.Itoa(cell.Charge)
			default:
				s = "."
			}
			cells = append(cells, strings.Repeat(" ", width-len(s))+s)
		}
		rows = append(rows, strings.Join(cells, " "))
	}
	return rows
}
