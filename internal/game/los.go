package game

// ObstaclesOnLine returns the living walls and corpses standing on the
// Bresenham line from a to b, in line order. The start cell is skipped and
// the end cell is included.
func (b *Battle) ObstaclesOnLine(from, to Point) []*Unit {
	line := Line(from, to)
	var out []*Unit
	for _, p := range line[1:] {
		if o := b.UnitAt(p); o != nil && o.Arch.Obstacle() {
			out = append(out, o)
		}
	}
	return out
}

// HasClearShot returns true if nothing obstructs the line from a to b.
func (b *Battle) HasClearShot(from, to Point) bool {
	return len(b.ObstaclesOnLine(from, to)) == 0
}

// adjacentObstacles lists living walls/corpses within one cell of p.
func (b *Battle) adjacentObstacles(p Point) []*Unit {
	var out []*Unit
	for _, u := range b.Units {
		if u.Alive && u.Arch.Obstacle() && u.Pos != p && Adjacent(u.Pos, p) {
			out = append(out, u)
		}
	}
	return out
}
