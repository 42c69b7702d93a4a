package engine

import (
	"github.com/wricardo/mcp-training/stromrallye/game/grid"
)

// CellType represents what occupies a grid cell
type CellType string

const (
	Empty   CellType = "empty"
	Battery CellType = "battery"
	Robot   CellType = "robot"
	Outside CellType = "outside"

	// Validation constants
	MinGridSize         = 1
	MaxGridSize         = 50
	MaxCharge           = 10000
	MaxBulkMoves        = 500
	WebSocketBufferSize = 256
)

// Direction names accepted by Move
const (
	Up    = "up"
	Down  = "down"
	Left  = "left"
	Right = "right"
)

// RobotSpec is the robot's starting cell and charge.
type RobotSpec struct {
	Position grid.Point `json:"position" yaml:"position"`
	Charge   int        `json:"charge" yaml:"charge"`
}

// BatterySpec is a battery's cell and the charge it holds.
type BatterySpec struct {
	Position grid.Point `json:"position" yaml:"position"`
	Charge   int        `json:"charge" yaml:"charge"`
}

// Puzzle is a complete Stromrallye configuration
type Puzzle struct {
	Name        string        `json:"name,omitempty" yaml:"name,omitempty"`
	Description string        `json:"description,omitempty" yaml:"description,omitempty"`
	Size        int           `json:"size" yaml:"size"`
	Robot       RobotSpec     `json:"robot" yaml:"robot"`
	Batteries   []BatterySpec `json:"batteries" yaml:"batteries"`
}

// Clone returns a deep copy of the puzzle
func (p *Puzzle) Clone() *Puzzle {
	c := *p
	c.Batteries = append([]BatterySpec(nil), p.Batteries...)
	return &c
}

// TotalCharge is the sum of the robot's and all batteries' charge. A solution
// walks exactly this many steps.
func (p *Puzzle) TotalCharge() int {
	total := p.Robot.Charge
	for _, b := range p.Batteries {
		total += b.Charge
	}
	return total
}

// BatteryIndex returns the index of the battery at pos, or -1.
func (p *Puzzle) BatteryIndex(pos grid.Point) int {
	for i, b := range p.Batteries {
		if b.Position == pos {
			return i
		}
	}
	return -1
}

// Cell is a single rendered grid cell
type Cell struct {
	Type   CellType `json:"type"`
	Charge int      `json:"charge,omitempty"`
}

// SurroundingCell represents a cell with its absolute position
type SurroundingCell struct {
	X      int      `json:"x"`
	Y      int      `json:"y"`
	Type   CellType `json:"type"`
	Charge int      `json:"charge,omitempty"`
}

// GameState represents the complete game state
type GameState struct {
	Size            int                `json:"size"`
	RobotPos        grid.Point         `json:"robot_pos"`
	Charge          int                `json:"charge"`
	Batteries       []BatterySpec      `json:"batteries"`
	RemainingCharge int                `json:"remaining_charge"`
	Message         string             `json:"message"`
	GameOver        bool               `json:"game_over"`
	Victory         bool               `json:"victory"`
	PuzzleName      string             `json:"puzzle_name"`
	MoveHistory     []MoveHistoryEntry `json:"move_history"`
	TotalMoves      int                `json:"total_moves"`
	LocalView       []SurroundingCell  `json:"local_view,omitempty"` // 8 surrounding cells

	// CurrentMoves tracks only the moves since the last reset. It mirrors MoveHistory entries
	// but gets cleared on reset while MoveHistory remains cumulative.
	CurrentMoves      []MoveHistoryEntry `json:"current_moves"`
	CurrentMovesCount int                `json:"current_moves_count"`

	// Computed helper views (not required for core game logic)
	Board      []string `json:"board,omitempty"`
	ChargeRisk string   `json:"charge_risk,omitempty"`
}

// MoveHistoryEntry represents a single move in the game history
type MoveHistoryEntry struct {
	Action       string     `json:"action"`
	FromPosition grid.Point `json:"from_position"`
	ToPosition   grid.Point `json:"to_position"`
	Charge       int        `json:"charge"`
	Swapped      bool       `json:"swapped,omitempty"`
	Timestamp    int64      `json:"timestamp"`
	Success      bool       `json:"success"`
	MoveNumber   int        `json:"move_number"`
}
