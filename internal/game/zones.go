package game

import (
	"fmt"
	"math"
)

// ZoneScheme selects how the board is split into home zones.
type ZoneScheme int

const (
	ZoneCorners ZoneScheme = iota
	ZoneVertical
	ZoneHorizontal
)

func (z ZoneScheme) String() string {
	switch z {
	case ZoneVertical:
		return "vertical"
	case ZoneHorizontal:
		return "horizontal"
	default:
		return "corners"
	}
}

// ParseZoneScheme accepts "corners", "vertical" or "horizontal".
func ParseZoneScheme(s string) (ZoneScheme, error) {
	switch s {
	case "corners", "":
		return ZoneCorners, nil
	case "vertical":
		return ZoneVertical, nil
	case "horizontal":
		return ZoneHorizontal, nil
	}
	return ZoneCorners, fmt.Errorf("unknown zone scheme %q", s)
}

// Zone is an inclusive rectangle of cells.
type Zone struct {
	X0, X1, Y0, Y1 int
}

// Contains reports whether p lies inside the zone.
func (z Zone) Contains(p Point) bool {
	return p.X >= z.X0 && p.X <= z.X1 && p.Y >= z.Y0 && p.Y <= z.Y1
}

// Center returns the zone's middle cell, rounding half up.
func (z Zone) Center() Point {
	return Point{roundHalfUp(float64(z.X0+z.X1) / 2), roundHalfUp(float64(z.Y0+z.Y1) / 2)}
}

// centerF is the exact geometric centre, used to order formation slots.
func (z Zone) centerF() (float64, float64) {
	return float64(z.X0+z.X1) / 2, float64(z.Y0+z.Y1) / 2
}

// Cells enumerates the zone row by row.
func (z Zone) Cells() []Point {
	var out []Point
	for y := z.Y0; y <= z.Y1; y++ {
		for x := z.X0; x <= z.X1; x++ {
			out = append(out, Point{x, y})
		}
	}
	return out
}

// ZoneForTeam computes a side's home zone for a board of the given size.
// Pseudo-teams get side B's zone.
func ZoneForTeam(size int, scheme ZoneScheme, t Team) Zone {
	h := size / 2
	split := int(math.Ceil(float64(size) / 2.5))
	a := t == TeamA
	switch scheme {
	case ZoneVertical:
		if a {
			return Zone{0, split - 1, 0, size - 1}
		}
		return Zone{size - split, size - 1, 0, size - 1}
	case ZoneHorizontal:
		if a {
			return Zone{0, size - 1, 0, split - 1}
		}
		return Zone{0, size - 1, size - split, size - 1}
	default:
		if a {
			return Zone{0, max(0, h-1), 0, max(0, h-1)}
		}
		far := (size + 1) / 2
		return Zone{far, size - 1, far, size - 1}
	}
}

// ZoneFor is the home zone of team on this battle's board.
func (b *Battle) ZoneFor(t Team) Zone {
	return ZoneForTeam(b.Size, b.ZoneScheme, t)
}
