package engine

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/wricardo/mcp-training/stromrallye/game/grid"
)

// ErrInvalidPuzzle is returned for puzzles that break the board rules
var ErrInvalidPuzzle = errors.New("invalid puzzle")

var numberPattern = regexp.MustCompile(`\d+`)

// ValidatePuzzle validates a puzzle for correctness
func ValidatePuzzle(p *Puzzle) error {
	if p == nil {
		return fmt.Errorf("%w: puzzle is nil", ErrInvalidPuzzle)
	}

	if p.Size < MinGridSize || p.Size > MaxGridSize {
		return fmt.Errorf("%w: size must be between %d and %d, got %d", ErrInvalidPuzzle, MinGridSize, MaxGridSize, p.Size)
	}

	if !p.Robot.Position.In(p.Size) {
		return fmt.Errorf("%w: robot at %v is outside the %dx%d board", ErrInvalidPuzzle, p.Robot.Position, p.Size, p.Size)
	}
	if p.Robot.Charge < 0 || p.Robot.Charge > MaxCharge {
		return fmt.Errorf("%w: robot charge must be between 0 and %d, got %d", ErrInvalidPuzzle, MaxCharge, p.Robot.Charge)
	}

	occupied := map[grid.Point]bool{p.Robot.Position: true}
	for i, b := range p.Batteries {
		if !b.Position.In(p.Size) {
			return fmt.Errorf("%w: battery %d at %v is outside the board", ErrInvalidPuzzle, i+1, b.Position)
		}
		if b.Charge < 0 || b.Charge > MaxCharge {
			return fmt.Errorf("%w: battery %d charge must be between 0 and %d, got %d", ErrInvalidPuzzle, i+1, MaxCharge, b.Charge)
		}
		if occupied[b.Position] {
			if b.Position == p.Robot.Position {
				return fmt.Errorf("%w: battery %d shares the robot's cell %v", ErrInvalidPuzzle, i+1, b.Position)
			}
			return fmt.Errorf("%w: duplicate battery at %v", ErrInvalidPuzzle, b.Position)
		}
		occupied[b.Position] = true
	}

	return nil
}

// ParsePuzzle reads the text puzzle format:
//
//	n
//	x,y,charge     robot
//	k
//	x,y,charge     k batteries
//
// Any run of non-digit characters separates numbers.
func ParsePuzzle(r io.Reader) (*Puzzle, error) {
	var numbers []int
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		for _, token := range numberPattern.FindAllString(scanner.Text(), -1) {
			v, err := strconv.Atoi(token)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidPuzzle, err)
			}
			numbers = append(numbers, v)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read puzzle: %w", err)
	}

	if len(numbers) < 5 {
		return nil, fmt.Errorf("%w: expected size, robot and battery count, got %d numbers", ErrInvalidPuzzle, len(numbers))
	}

	p := &Puzzle{
		Size: numbers[0],
		Robot: RobotSpec{
			Position: grid.Point{X: numbers[1], Y: numbers[2]},
			Charge:   numbers[3],
		},
	}
	count := numbers[4]
	rest := numbers[5:]
	if len(rest) != count*3 {
		return nil, fmt.Errorf("%w: expected %d batteries, got %d numbers for them", ErrInvalidPuzzle, count, len(rest))
	}

	p.Batteries = make([]BatterySpec, 0, count)
	for i := 0; i < count; i++ {
		p.Batteries = append(p.Batteries, BatterySpec{
			Position: grid.Point{X: rest[i*3], Y: rest[i*3+1]},
			Charge:   rest[i*3+2],
		})
	}

	if err := ValidatePuzzle(p); err != nil {
		return nil, err
	}
	return p, nil
}

// WritePuzzle writes p in the text puzzle format
func WritePuzzle(w io.Writer, p *Puzzle) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d\n", p.Size)
	fmt.Fprintf(bw, "%d,%d,%d\n", p.Robot.Position.X, p.Robot.Position.Y, p.Robot.Charge)
	fmt.Fprintf(bw, "%d\n", len(p.Batteries))
	for _, b := range p.Batteries {
		fmt.Fprintf(bw, "%d,%d,%d\n", b.Position.X, b.Position.Y, b.Charge)
	}
	return bw.Flush()
}

// UnmarshalPuzzle decodes and validates a JSON puzzle
func UnmarshalPuzzle(data []byte) (*Puzzle, error) {
	return DecodePuzzle(data, FormatJSON)
}

// LoadPuzzle loads a puzzle file, picking the format from its extension.
// Puzzles without a name are named after the file.
func LoadPuzzle(filename string) (*Puzzle, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	p, err := DecodePuzzle(data, FormatFromFilename(filename))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	if p.Name == "" {
		p.Name = strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	}
	return p, nil
}

// DefaultPuzzle is a small solvable puzzle used when no library is available
func DefaultPuzzle() *Puzzle {
	return &Puzzle{
		Name:        "default",
		Description: "Default 4x4 puzzle",
		Size:        4,
		Robot:       RobotSpec{Position: grid.Point{X: 1, Y: 1}, Charge: 3},
		Batteries: []BatterySpec{
			{Position: grid.Point{X: 4, Y: 1}, Charge: 2},
			{Position: grid.Point{X: 4, Y: 3}, Charge: 3},
			{Position: grid.Point{X: 2, Y: 4}, Charge: 2},
		},
	}
}

// InitGameStateFromPuzzle creates a new game state for the given puzzle
func InitGameStateFromPuzzle(p *Puzzle) *GameState {
	if p == nil {
		p = DefaultPuzzle()
	}

	gs := &GameState{
		Size:              p.Size,
		RobotPos:          p.Robot.Position,
		Charge:            p.Robot.Charge,
		Batteries:         append([]BatterySpec(nil), p.Batteries...),
		Message:           fmt.Sprintf("Welcome! Drain all %d units of charge.", p.TotalCharge()),
		PuzzleName:        p.Name,
		MoveHistory:       []MoveHistoryEntry{},
		CurrentMoves:      []MoveHistoryEntry{},
		CurrentMovesCount: 0,
	}
	gs.RemainingCharge = gs.batteryCharge()
	gs.updateStatus()
	return gs
}
