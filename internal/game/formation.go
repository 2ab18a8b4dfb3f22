package game

import (
	"math"
	"sort"
)

// formationSlots splits the free cells of team's home zone into a front
// half, nearest the enemy zone first, and a back half ordered from the rear
// forward. An odd cell count gives the extra cell to the front.
func (b *Battle) formationSlots(team Team) (front, back []Point) {
	ex, ey := b.ZoneFor(team.Opponent()).centerF()
	var free []Point
	for _, c := range b.ZoneFor(team).Cells() {
		if b.UnitAt(c) == nil {
			free = append(free, c)
		}
	}
	dist := func(p Point) float64 { return math.Hypot(float64(p.X)-ex, float64(p.Y)-ey) }
	sort.SliceStable(free, func(i, j int) bool { return dist(free[i]) < dist(free[j]) })

	split := (len(free) + 1) / 2
	front = append([]Point(nil), free[:split]...)
	for i := len(free) - 1; i >= split; i-- {
		back = append(back, free[i])
	}
	return front, back
}

// takeFirst pops the head of a slot list.
func takeFirst(slots *[]Point) (Point, bool) {
	if len(*slots) == 0 {
		return Point{}, false
	}
	p := (*slots)[0]
	*slots = (*slots)[1:]
	return p, true
}

// takeLast pops the tail of a slot list.
func takeLast(slots *[]Point) (Point, bool) {
	n := len(*slots)
	if n == 0 {
		return Point{}, false
	}
	p := (*slots)[n-1]
	*slots = (*slots)[:n-1]
	return p, true
}

// removeSlot deletes p from a slot list if present.
func removeSlot(slots *[]Point, p Point) {
	for i, s := range *slots {
		if s == p {
			*slots = append((*slots)[:i], (*slots)[i+1:]...)
			return
		}
	}
}

// overflowSlots lists free cells outside both home zones, nearest to team's
// own zone first. A roster larger than its zone spills onto this ground.
func (b *Battle) overflowSlots(team Team) []Point {
	own, enemy := b.ZoneFor(team), b.ZoneFor(team.Opponent())
	cx, cy := own.centerF()
	var free []Point
	for y := 0; y < b.Size; y++ {
		for x := 0; x < b.Size; x++ {
			p := Point{x, y}
			if own.Contains(p) || enemy.Contains(p) || b.UnitAt(p) != nil {
				continue
			}
			free = append(free, p)
		}
	}
	dist := func(p Point) float64 { return math.Hypot(float64(p.X)-cx, float64(p.Y)-cy) }
	sort.SliceStable(free, func(i, j int) bool { return dist(free[i]) < dist(free[j]) })
	return free
}
