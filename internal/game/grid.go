package game

import (
	"fmt"
	"math"
)

// Point is a board cell.
type Point struct {
	X, Y int
}

func (p Point) String() string { return fmt.Sprintf("(%d,%d)", p.X, p.Y) }

// dirs enumerates the 8 neighbour offsets, dx-major.
var dirs = [8][2]int{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

// Chebyshev is the king-move distance used for ranges and adjacency.
func Chebyshev(a, b Point) int {
	return max(absInt(a.X-b.X), absInt(a.Y-b.Y))
}

// Manhattan is the 4-neighbour distance.
func Manhattan(a, b Point) int {
	return absInt(a.X-b.X) + absInt(a.Y-b.Y)
}

// Euclid is the straight-line distance between cell centres.
func Euclid(a, b Point) float64 {
	return math.Hypot(float64(a.X-b.X), float64(a.Y-b.Y))
}

// Adjacent reports Chebyshev distance <= 1 (a cell is adjacent to itself).
func Adjacent(a, b Point) bool { return Chebyshev(a, b) <= 1 }

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// roundHalfUp rounds .5 toward positive infinity.
func roundHalfUp(v float64) int { return int(math.Floor(v + 0.5)) }

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// InBounds reports whether p lies on the board.
func (b *Battle) InBounds(p Point) bool {
	return p.X >= 0 && p.X < b.Size && p.Y >= 0 && p.Y < b.Size
}

// Neighbors returns the in-bounds 8-neighbourhood of p.
func (b *Battle) Neighbors(p Point) []Point {
	out := make([]Point, 0, len(dirs))
	for _, d := range dirs {
		n := Point{p.X + d[0], p.Y + d[1]}
		if b.InBounds(n) {
			out = append(out, n)
		}
	}
	return out
}

// Line traces a Bresenham line from a to b, inclusive of both endpoints.
func Line(a, b Point) []Point {
	dx := absInt(b.X - a.X)
	dy := -absInt(b.Y - a.Y)
	sx, sy := 1, 1
	if a.X >= b.X {
		sx = -1
	}
	if a.Y >= b.Y {
		sy = -1
	}
	err := dx + dy
	x, y := a.X, a.Y
	pts := make([]Point, 0, max(dx, -dy)+1)
	for {
		pts = append(pts, Point{x, y})
		if x == b.X && y == b.Y {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
	return pts
}

// UnitAt returns the living unit on p, or nil.
func (b *Battle) UnitAt(p Point) *Unit {
	for _, u := range b.Units {
		if u.Alive && u.Pos == p {
			return u
		}
	}
	return nil
}

// Unit looks up a living unit by id. Dead or unknown ids resolve to nil.
func (b *Battle) Unit(id string) *Unit {
	if id == "" {
		return nil
	}
	for _, u := range b.Units {
		if u.Alive && u.ID == id {
			return u
		}
	}
	return nil
}

// occupiedBy reports whether a living unit other than self stands on p.
func (b *Battle) occupiedBy(p Point, self *Unit) bool {
	for _, u := range b.Units {
		if u.Alive && u != self && u.Pos == p {
			return true
		}
	}
	return false
}

// Cornered reports that every in-bounds neighbour of u is occupied.
func (b *Battle) Cornered(u *Unit) bool {
	for _, n := range b.Neighbors(u.Pos) {
		if b.UnitAt(n) == nil {
			return false
		}
	}
	return true
}
