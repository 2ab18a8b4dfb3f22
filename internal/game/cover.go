package game

import "math"

// coverFactor is the share of damage that gets through cover.
const coverFactor = 0.7

// IsTargetInCover reports whether an obstacle adjacent to the target sits
// on the line of fire from the attacker before the target's own cell.
func (b *Battle) IsTargetInCover(attacker, target *Unit) bool {
	cover := b.adjacentObstacles(target.Pos)
	if len(cover) == 0 {
		return false
	}
	line := Line(attacker.Pos, target.Pos)
	for _, p := range line[1:] {
		if p == target.Pos {
			return false
		}
		for _, o := range cover {
			if o.Pos == p {
				return true
			}
		}
	}
	return false
}

// IsPositionInCoverFrom reports whether a unit standing on pos would be
// screened from ref by an obstacle adjacent to pos.
func (b *Battle) IsPositionInCoverFrom(pos, ref Point) bool {
	cover := b.adjacentObstacles(pos)
	if len(cover) == 0 {
		return false
	}
	line := Line(pos, ref)
	if len(line) <= 2 {
		return false
	}
	for _, p := range line[1 : len(line)-1] {
		for _, o := range cover {
			if o.Pos == p {
				return true
			}
		}
	}
	return false
}

// CoverAdjusted reduces a raw damage roll for a target in cover.
func CoverAdjusted(dmg int) int {
	return int(math.Round(float64(dmg) * coverFactor))
}

// hitDamage applies cover to a roll when the target is screened from the attacker.
func (b *Battle) hitDamage(attacker, target *Unit, dmg int) int {
	if b.IsTargetInCover(attacker, target) {
		return CoverAdjusted(dmg)
	}
	return dmg
}
