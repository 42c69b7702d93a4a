// Package grid holds the coordinate primitives shared by the puzzle engine,
// the path graph and the solver.
//
// Coordinates are 1-indexed: (1,1) is the top-left cell and (n,n) the
// bottom-right cell of an n×n board. Every cell has a node id
// (x-1) + (y-1)*n which is used as a map key throughout the module.
package grid

import "fmt"

// Point is a cell coordinate on the board.
type Point struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// Add returns the component-wise sum of p and q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Scale multiplies both components by k.
func (p Point) Scale(k int) Point {
	return Point{X: p.X * k, Y: p.Y * k}
}

// Rotate90 rotates a direction vector by a quarter turn: (x,y) -> (-y,x).
func (p Point) Rotate90() Point {
	return Point{X: -p.Y, Y: p.X}
}

// Normalize reduces each component to its sign.
func (p Point) Normalize() Point {
	return Point{X: sign(p.X), Y: sign(p.Y)}
}

// Bounded reports whether p lies inside [minX,maxX]×[minY,maxY].
func (p Point) Bounded(minX, minY, maxX, maxY int) bool {
	return p.X >= minX && p.X <= maxX && p.Y >= minY && p.Y <= maxY
}

// In reports whether p lies on an n×n board.
func (p Point) In(n int) bool {
	return p.Bounded(1, 1, n, n)
}

func (p Point) String() string {
	return fmt.Sprintf("(%d|%d)", p.X, p.Y)
}

// Encode maps p to its node id on an n×n board.
func Encode(p Point, n int) int {
	return (p.X - 1) + (p.Y-1)*n
}

// Decode maps a node id back to its coordinate.
func Decode(id, n int) Point {
	return Point{X: id%n + 1, Y: id/n + 1}
}

// Adjacent reports whether p and q share an edge.
func Adjacent(p, q Point) bool {
	return ManhattanDistance(p, q) == 1
}

// ManhattanDistance calculates the Manhattan distance between two points
func ManhattanDistance(p, q Point) int {
	return abs(p.X-q.X) + abs(p.Y-q.Y)
}

// Sign returns -1, 0 or 1.
func Sign(v int) int {
	return sign(v)
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
