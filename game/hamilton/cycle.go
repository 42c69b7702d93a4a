// Package hamilton builds a closed tour over every cell of the board.
//
// The tour ignores batteries. The solver only uses it to judge how far a
// candidate move strays from a fixed sweep of the board, so it is not
// required to be a true grid cycle: on odd boards, where none exists, the
// closing link joins two cells that are not neighbors.
package hamilton

import (
	"fmt"

	"github.com/wricardo/mcp-training/stromrallye/game/grid"
)

// Cycle is a cyclic ordering of all n² node ids, anchored at a start cell.
type Cycle struct {
	size  int
	order []int
	next  []int
	prev  []int
	index []int
}

// Build constructs the tour for an n×n board beginning at start.
func Build(size int, start grid.Point) (*Cycle, error) {
	if size < 1 {
		return nil, fmt.Errorf("invalid board size %d", size)
	}
	if !start.In(size) {
		return nil, fmt.Errorf("start %v outside %dx%d board", start, size, size)
	}

	var order []int
	if size%2 == 0 {
		order = serpentine(size, start)
	} else {
		order = spiral(size, start)
	}
	return link(size, order), nil
}

func link(size int, order []int) *Cycle {
	l := len(order)
	c := &Cycle{
		size:  size,
		order: order,
		next:  make([]int, l),
		prev:  make([]int, l),
		index: make([]int, l),
	}
	for i, id := range order {
		c.index[id] = i
		c.next[id] = order[(i+1)%l]
		c.prev[id] = order[(i-1+l)%l]
	}
	return c
}

// serpentine follows a fixed successor rule on even boards: down the first
// column, along the bottom row, then up and down the remaining columns
// inside rows 1..n-1 back to (1,1).
func serpentine(n int, start grid.Point) []int {
	order := make([]int, 0, n*n)
	p := start
	for {
		order = append(order, grid.Encode(p, n))
		p = successor(p, n)
		if p == start {
			return order
		}
	}
}

func successor(p grid.Point, n int) grid.Point {
	switch {
	case p.X == 1 && p.Y < n:
		return grid.Point{X: p.X, Y: p.Y + 1}
	case p.Y == n:
		if p.X < n {
			return grid.Point{X: p.X + 1, Y: p.Y}
		}
		return grid.Point{X: p.X, Y: p.Y - 1}
	case p.X%2 == 1:
		if p.Y == n-1 {
			return grid.Point{X: p.X - 1, Y: p.Y}
		}
		return grid.Point{X: p.X, Y: p.Y + 1}
	default:
		if p.Y == 1 {
			return grid.Point{X: p.X - 1, Y: p.Y}
		}
		return grid.Point{X: p.X, Y: p.Y - 1}
	}
}

// spiral walks from start to its nearest corner, vertical leg first, and
// then sweeps the rings from the outside in. Each ring begins at its corner
// on the side of the chosen corner and the sweep direction alternates per
// ring. Cells already visited by the walk are skipped, so the center cell is
// the last one appended unless the walk began there.
func spiral(n int, start grid.Point) []int {
	visited := make([]bool, n*n)
	order := make([]int, 0, n*n)
	visit := func(p grid.Point) {
		id := grid.Encode(p, n)
		if !visited[id] {
			visited[id] = true
			order = append(order, id)
		}
	}

	half := (n + 1) / 2
	corner := grid.Point{X: 1, Y: 1}
	if start.X > half {
		corner.X = n
	}
	if start.Y > half {
		corner.Y = n
	}

	p := start
	visit(p)
	for p.Y != corner.Y {
		p.Y += grid.Sign(corner.Y - p.Y)
		visit(p)
	}
	for p.X != corner.X {
		p.X += grid.Sign(corner.X - p.X)
		visit(p)
	}

	for r := 0; r < half; r++ {
		lo, hi := 1+r, n-r
		ringStart := grid.Point{X: lo, Y: lo}
		if corner.X == n {
			ringStart.X = hi
		}
		if corner.Y == n {
			ringStart.Y = hi
		}
		for _, q := range ring(lo, hi, ringStart, r%2 == 1) {
			visit(q)
		}
	}
	return order
}

// ring lists the border cells of the square [lo,hi]² clockwise from first,
// or counterclockwise when reverse is set.
func ring(lo, hi int, first grid.Point, reverse bool) []grid.Point {
	var cells []grid.Point
	for x := lo; x <= hi; x++ {
		cells = append(cells, grid.Point{X: x, Y: lo})
	}
	for y := lo + 1; y <= hi; y++ {
		cells = append(cells, grid.Point{X: hi, Y: y})
	}
	for x := hi - 1; x >= lo && hi > lo; x-- {
		cells = append(cells, grid.Point{X: x, Y: hi})
	}
	for y := hi - 1; y > lo; y-- {
		cells = append(cells, grid.Point{X: lo, Y: y})
	}

	at := 0
	for i, c := range cells {
		if c == first {
			at = i
			break
		}
	}
	rotated := append(cells[at:len(cells):len(cells)], cells[:at]...)
	if reverse && len(rotated) > 1 {
		rest := rotated[1:]
		for i, j := 0, len(rest)-1; i < j; i, j = i+1, j-1 {
			rest[i], rest[j] = rest[j], rest[i]
		}
	}
	return rotated
}

// Len returns the number of cells on the tour.
func (c *Cycle) Len() int {
	return len(c.order)
}

// Size returns the board size.
func (c *Cycle) Size() int {
	return c.size
}

// Order returns the node ids in tour order, starting at the anchor cell.
func (c *Cycle) Order() []int {
	return c.order
}

// Next returns the node after id on the tour.
func (c *Cycle) Next(id int) int {
	return c.next[id]
}

// Prev returns the node before id on the tour.
func (c *Cycle) Prev(id int) int {
	return c.prev[id]
}

// Cursor returns a rotation pointer placed on the anchor cell.
func (c *Cycle) Cursor() *Cursor {
	return &Cursor{cycle: c, pos: c.order[0]}
}

// Cursor is a movable position on a Cycle. The cycle itself is never
// modified, so any number of cursors can share one Cycle.
type Cursor struct {
	cycle *Cycle
	pos   int
}

// Current returns the node the cursor points at.
func (cur *Cursor) Current() int {
	return cur.pos
}

// RotateTo moves the cursor onto id.
func (cur *Cursor) RotateTo(id int) {
	cur.pos = id
}

// Distance returns the signed number of steps from the cursor to id along
// the shorter direction: positive forward, negative backward. Ties go
// forward, and the cursor's own node counts as a full forward lap.
func (cur *Cursor) Distance(id int) int {
	l := len(cur.cycle.order)
	forward := (cur.cycle.index[id] - cur.cycle.index[cur.pos] + l) % l
	if forward == 0 {
		return l
	}
	backward := forward - l
	if forward <= -backward {
		return forward
	}
	return backward
}
