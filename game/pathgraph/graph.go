// Package pathgraph abstracts the puzzle board into a complete graph over
// the points of interest (the robot's start cell and every battery).
//
// Every pair of points, including a point with itself, is connected by a
// shared *Path holding the shortest route and, when one exists, a longer
// route that can be used to burn surplus charge. The graph is built once per
// puzzle and only read afterwards, so it can be shared between goroutines.
package pathgraph

import (
	"sort"

	"github.com/wricardo/mcp-training/stromrallye/game/grid"
)

type pairKey struct {
	a, b int
}

func key(a, b int) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{a, b}
}

// Graph is the path table between all points of interest.
type Graph struct {
	board  Board
	points []int
	paths  map[pairKey]*Path
}

// Build computes a path for every unordered pair of the given node ids.
func Build(board Board, points []int) *Graph {
	g := &Graph{
		board: board,
		paths: make(map[pairKey]*Path),
	}
	for _, id := range points {
		g.AddPoint(id)
	}
	return g
}

// AddPoint adds a point of interest and computes its paths to every point
// already in the graph and to itself. Adding a known point is a no-op.
func (g *Graph) AddPoint(id int) {
	if g.HasPoint(id) {
		return
	}

	p := grid.Decode(id, g.board.Size)
	for _, other := range g.points {
		g.paths[key(id, other)] = FindPath(grid.Decode(other, g.board.Size), p, g.board)
	}
	g.paths[key(id, id)] = FindPath(p, p, g.board)

	idx := sort.SearchInts(g.points, id)
	g.points = append(g.points, 0)
	copy(g.points[idx+1:], g.points[idx:])
	g.points[idx] = id
}

// HasPoint reports whether id is a point of interest.
func (g *Graph) HasPoint(id int) bool {
	idx := sort.SearchInts(g.points, id)
	return idx < len(g.points) && g.points[idx] == id
}

// Path returns the shared path between a and b, or nil when either is not a
// point of interest.
func (g *Graph) Path(a, b int) *Path {
	return g.paths[key(a, b)]
}

// Points returns the points of interest in ascending node order.
func (g *Graph) Points() []int {
	return g.points
}

// Board returns the board the graph was built on.
func (g *Graph) Board() Board {
	return g.board
}

// Size returns the board size.
func (g *Graph) Size() int {
	return g.board.Size
}

// AvailableEdges counts the usable connections between distinct points.
func (g *Graph) AvailableEdges() int {
	count := 0
	for k, path := range g.paths {
		if k.a != k.b && path.Available {
			count++
		}
	}
	return count
}
