package pathgraph

import (
	"errors"
	"fmt"

	"github.com/wricardo/mcp-training/stromrallye/game/grid"
)

// ErrNoRoute is returned by Walk when the path cannot cover the requested distance.
var ErrNoRoute = errors.New("no route")

// Walk returns the cells stepped on when travelling exactly distance steps
// from one end of the path to the other. The starting cell is not included.
//
// A distance equal to Length follows the shortest route. Longer distances
// follow the extended route, first going back and forth over its first two
// cells for the surplus, which must be even.
func (p *Path) Walk(from grid.Point, distance int) ([]grid.Point, error) {
	if !p.Available {
		return nil, fmt.Errorf("%w: path unavailable", ErrNoRoute)
	}
	if from != p.Shortest[0] && from != p.Shortest[len(p.Shortest)-1] {
		return nil, fmt.Errorf("%w: %v is not an end of the path", ErrNoRoute, from)
	}

	if distance == p.Length {
		return oriented(make([]grid.Point, 0, distance), p.Shortest, from), nil
	}

	extra := distance - p.ExtendedLength
	if !p.Extendable || extra < 0 || extra%2 != 0 {
		return nil, fmt.Errorf("%w: cannot cover distance %d (shortest %d, extended %d)",
			ErrNoRoute, distance, p.Length, p.ExtendedLength)
	}

	ext := p.Extended
	last := len(ext) - 1
	forward := ext[0] == from

	cells := make([]grid.Point, 0, distance)
	for k := 0; k < extra; k++ {
		if forward {
			cells = append(cells, ext[1+k%2])
		} else {
			cells = append(cells, ext[last-1-k%2])
		}
	}
	return oriented(cells, ext, from), nil
}

// oriented appends route without its first cell, reversed when the route is
// stored from the other end.
func oriented(cells, route []grid.Point, from grid.Point) []grid.Point {
	if route[0] == from {
		return append(cells, route[1:]...)
	}
	for i := len(route) - 2; i >= 0; i-- {
		cells = append(cells, route[i])
	}
	return cells
}
