package solver

import (
	"errors"
	"fmt"

	"github.com/wricardo/mcp-training/stromrallye/game/engine"
	"github.com/wricardo/mcp-training/stromrallye/game/grid"
)

// ErrInvalidMoves is returned when a move list does not fit the path graph.
var ErrInvalidMoves = errors.New("invalid move sequence")

// BuildPath expands a solution's moves into the cells the robot steps on.
// The starting cell is not included, so the path has one cell per unit of
// charge spent.
func (s *Solver) BuildPath(sol *Solution) ([]grid.Point, error) {
	if sol == nil || len(sol.Moves) == 0 {
		return []grid.Point{}, nil
	}

	n := s.puzzle.Size
	moves := sol.Moves
	transfers := len(moves)
	switch {
	case sol.Leftover > 2:
		transfers -= 2
	case sol.Leftover > 0:
		transfers--
	}
	if transfers < 0 {
		return nil, fmt.Errorf("%w: %d moves cannot burn %d leftover", ErrInvalidMoves, len(moves), sol.Leftover)
	}

	var path []grid.Point
	from := s.start
	for i := 0; i < transfers; i++ {
		m := moves[i]
		edge := s.graph.Path(from, m.Target)
		if edge == nil {
			return nil, fmt.Errorf("%w: move %d has no path %v -> %v", ErrInvalidMoves, i+1, grid.Decode(from, n), grid.Decode(m.Target, n))
		}

		cells, err := edge.Walk(grid.Decode(from, n), m.Distance)
		if err != nil {
			return nil, fmt.Errorf("%w: move %d: %v", ErrInvalidMoves, i+1, err)
		}
		path = append(path, cells...)
		from = m.Target
	}

	switch {
	case sol.Leftover > 2:
		neighbor := grid.Decode(moves[len(moves)-2].Target, n)
		back := grid.Decode(moves[len(moves)-1].Target, n)
		for k := 0; k < sol.Leftover; k++ {
			if k%2 == 0 {
				path = append(path, neighbor)
			} else {
				path = append(path, back)
			}
		}
	case sol.Leftover > 0:
		path = append(path, grid.Decode(moves[len(moves)-1].Target, n))
		if sol.Leftover == 2 {
			path = append(path, grid.Decode(from, n))
		}
	}

	return path, nil
}

// Verify replays path on a fresh game of p and checks that it ends in victory.
func Verify(p *engine.Puzzle, path []grid.Point) error {
	game, err := engine.NewEngine(p)
	if err != nil {
		return err
	}
	if steps, err := game.FollowPath(path); err != nil {
		return fmt.Errorf("replay stopped after %d of %d steps: %w", steps, len(path), err)
	}
	if !game.IsVictory() {
		return fmt.Errorf("replay ended without victory: %s", game.GetState().Message)
	}
	return nil
}
