package pathgraph

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/katalvlaran/lvlath/bfs"
	"github.com/katalvlaran/lvlath/core"

	"github.com/wricardo/mcp-training/stromrallye/game/grid"
)

// Board is the static obstacle layout the path finder works against.
// Battery cells may only be used as the first or last cell of a path.
type Board struct {
	Size      int
	batteries map[int]bool
	cells     *core.Graph
}

// NewBoard creates a board of the given size with batteries on the given node ids.
func NewBoard(size int, batteries []int) Board {
	b := Board{
		Size:      size,
		batteries: make(map[int]bool, len(batteries)),
		cells:     gridGraph(size),
	}
	for _, id := range batteries {
		b.batteries[id] = true
	}
	return b
}

// VertexID names node id in the graphs built by this package. Ids are zero
// padded so the traversal's sorted neighbor order is ascending by node id.
func VertexID(id int) string {
	return fmt.Sprintf("%06d", id)
}

// NodeID parses a name produced by VertexID.
func NodeID(vertex string) int {
	id, err := strconv.Atoi(vertex)
	if err != nil {
		panic(fmt.Sprintf("pathgraph: bad vertex id %q", vertex))
	}
	return id
}

// gridGraph links every cell of a size x size board to its right and lower neighbor.
func gridGraph(size int) *core.Graph {
	g := core.NewGraph()
	for id := 0; id < size*size; id++ {
		_ = g.AddVertex(VertexID(id))
	}
	for id := 0; id < size*size; id++ {
		p := grid.Decode(id, size)
		for _, dir := range []grid.Point{{X: 1}, {Y: 1}} {
			if q := p.Add(dir); q.In(size) {
				_, _ = g.AddEdge(VertexID(id), VertexID(grid.Encode(q, size)), 0)
			}
		}
	}
	return g
}

// IsBattery reports whether a battery occupies p.
func (b Board) IsBattery(p grid.Point) bool {
	return b.batteries[grid.Encode(p, b.Size)]
}

// IsFree reports whether p is on the board and not occupied by a battery.
func (b Board) IsFree(p grid.Point) bool {
	return p.In(b.Size) && !b.IsBattery(p)
}

// Path is the precomputed connection between two points of interest.
type Path struct {
	Available bool         `json:"available"`
	Shortest  []grid.Point `json:"shortest,omitempty"`
	Length    int          `json:"length"`

	Extendable     bool         `json:"extendable"`
	Extended       []grid.Point `json:"extended,omitempty"`
	ExtendedLength int          `json:"extended_length"`
}

// From returns the first cell of the stored routes.
func (p *Path) From() grid.Point {
	return p.Shortest[0]
}

var (
	// loopDirections is the order in which neighbors are tried for loop paths.
	loopDirections = [4]grid.Point{{X: 0, Y: 1}, {X: -1, Y: 0}, {X: 0, Y: -1}, {X: 1, Y: 0}}

	// errReached stops a traversal once the goal is dequeued.
	errReached = errors.New("goal reached")
)

// LoopDirections returns the neighbor order used for loop paths.
func LoopDirections() [4]grid.Point {
	return loopDirections
}

// FindPath computes the shortest and the extendable route between start and end.
//
// For start == end the result is a loop: two steps onto a free neighbor and
// back, extended to a four step rhombus through a free neighbor of that
// neighbor. For distinct cells a breadth-first search over free cells is used,
// expanding neighbors in ascending node id order (up, left, right, down);
// a shortest route longer than two steps doubles as its own extended route.
func FindPath(start, end grid.Point, board Board) *Path {
	var shortest []grid.Point
	if start == end {
		for _, dir := range loopDirections {
			middle := start.Add(dir)
			if board.IsFree(middle) {
				shortest = []grid.Point{start, middle, start}
				break
			}
		}
	} else {
		shortest = search(start, end, board, false)
	}

	path := &Path{
		Available: len(shortest) >= 2,
		Shortest:  shortest,
	}
	if !path.Available {
		return path
	}
	path.Length = len(shortest) - 1

	if path.Length > 2 {
		path.Extendable = true
		path.Extended = shortest
		path.ExtendedLength = path.Length
		return path
	}

	var extended []grid.Point
	if start == end {
		extended = rhombus(start, board)
	} else {
		extended = search(start, end, board, true)
	}

	if len(extended) < 2 {
		return path
	}

	path.Extendable = true
	path.Extended = extended
	path.ExtendedLength = len(extended) - 1
	return path
}

// rhombus looks for a four step loop start -> middle -> last -> middle -> start.
func rhombus(start grid.Point, board Board) []grid.Point {
	for i, dir := range loopDirections {
		middle := start.Add(dir)
		if !board.IsFree(middle) {
			continue
		}
		for j := 0; j < len(loopDirections); j++ {
			last := middle.Add(loopDirections[(i+j)%len(loopDirections)])
			if board.IsFree(last) {
				return []grid.Point{start, middle, last, middle, start}
			}
		}
	}
	return nil
}

type edge struct {
	from, to grid.Point
}

// blockedEdges returns the edges entering goal along every shortest route of
// length one or two. Forbidding them forces the search onto a strictly longer route.
func blockedEdges(start, goal grid.Point) []edge {
	parallel := grid.Point{X: 0, Y: 1}
	diagonal := grid.Point{X: 1, Y: 1}

	for i := 0; i < 4; i++ {
		switch {
		case start.Add(parallel) == goal:
			return []edge{{start, goal}}
		case start.Add(parallel.Scale(2)) == goal:
			return []edge{{start.Add(parallel), goal}}
		case start.Add(diagonal) == goal:
			return []edge{
				{start.Add(grid.Point{X: diagonal.X}), goal},
				{start.Add(grid.Point{Y: diagonal.Y}), goal},
			}
		}
		parallel = parallel.Rotate90()
		diagonal = diagonal.Rotate90()
	}
	return nil
}

// search runs a breadth-first search from start to goal and returns the route
// including both endpoints, or nil when goal cannot be reached.
func search(start, goal grid.Point, board Board, extendable bool) []grid.Point {
	n := board.Size
	if !start.In(n) || !goal.In(n) {
		return nil
	}

	var skip []edge
	if extendable {
		skip = blockedEdges(start, goal)
	}
	goalID := VertexID(grid.Encode(goal, n))

	passable := func(curr, next string) bool {
		id := NodeID(next)
		if next != goalID && board.batteries[id] {
			return false
		}
		u, v := grid.Decode(NodeID(curr), n), grid.Decode(id, n)
		for _, e := range skip {
			if e.from == u && e.to == v {
				return false
			}
		}
		return true
	}
	stop := func(id string, _ int) error {
		if id == goalID {
			return errReached
		}
		return nil
	}

	res, err := bfs.BFS(board.cells, VertexID(grid.Encode(start, n)),
		bfs.WithFilterNeighbor(passable),
		bfs.WithOnVisit(stop),
	)
	if err != nil && !errors.Is(err, errReached) {
		return nil
	}

	ids, err := res.PathTo(goalID)
	if err != nil || len(ids) < 2 {
		return nil
	}
	route := make([]grid.Point, len(ids))
	for i, id := range ids {
		route[i] = grid.Decode(NodeID(id), n)
	}
	return route
}
