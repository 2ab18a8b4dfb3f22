package game

import "fmt"

const (
	grenadierLowHP      = 0.4
	friendlyFirePenalty = 5
	clusterBonus        = 0.5
	endangeredRatio     = 0.3
	endangeredHeadcount = 2
)

// grenadeSpot is a candidate blast centre and its expected value.
type grenadeSpot struct {
	p     Point
	score float64
}

// blastVictims lists living units caught by a blast centred on c.
func (b *Battle) blastVictims(c Point) []*Unit {
	var out []*Unit
	for _, o := range b.Units {
		if o.Alive && Chebyshev(o.Pos, c) <= 1 {
			out = append(out, o)
		}
	}
	return out
}

// bestGrenadeSpot scores every cell on or next to an enemy. Friendly hits
// cost five times their value; spots that only hurt friends are skipped.
func (b *Battle) bestGrenadeSpot(u *Unit, enemies []*Unit) (grenadeSpot, bool) {
	isEnemy := make(map[*Unit]bool, len(enemies))
	for _, e := range enemies {
		isEnemy[e] = true
	}

	seen := make(map[Point]bool)
	var spots []Point
	for _, e := range enemies {
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				p := Point{e.Pos.X + dx, e.Pos.Y + dy}
				if b.InBounds(p) && !seen[p] {
					seen[p] = true
					spots = append(spots, p)
				}
			}
		}
	}

	var best grenadeSpot
	found := false
	for _, p := range spots {
		hits := b.blastVictims(p)
		if len(hits) == 0 {
			continue
		}
		score := 0.0
		friends, foes := 0, 0
		for _, h := range hits {
			switch {
			case h == u:
			case h.Team == u.Team:
				score -= h.Arch.Value() * friendlyFirePenalty
				friends++
			case isEnemy[h]:
				score += h.Arch.Value()
				foes++
			}
		}
		if foes == 0 && friends > 0 {
			continue
		}
		if foes > 1 {
			score *= 1 + float64(foes)*clusterBonus
		}
		if score > best.score {
			best = grenadeSpot{p, score}
			found = true
		}
	}
	return best, found
}

// teamEndangered reports a side reduced to a couple of units or under 30%
// of its starting headcount. self counts toward the current total.
func (b *Battle) teamEndangered(u *Unit) bool {
	current := len(b.Friends(u)) + 1
	initial := b.initialCount(func(s LayoutUnit) bool { return s.Team == u.Team })
	if initial == 0 {
		initial = current
	}
	return initial > 0 && (current <= endangeredHeadcount || float64(current)/float64(initial) < endangeredRatio)
}

func grenadierDecide(b *Battle, u *Unit) Plan {
	cfg := b.cfg.Get()
	enemies := b.Enemies(u)
	if len(enemies) == 0 {
		return Hold(u)
	}

	lowHP := float64(u.HP) < float64(u.MaxHP)*grenadierLowHP
	engaged := len(adjacentTo(enemies, u.Pos)) > 0
	cornered := b.Cornered(u)
	endangered := b.teamEndangered(u)

	if u.GrenCooldown == 0 && ((lowHP && engaged) || cornered || endangered) {
		reason := "making a last stand"
		switch {
		case endangered:
			reason = "team endangered"
		case cornered:
			reason = "cornered"
		case lowHP && engaged:
			reason = "low hp and under attack"
		}
		isEnemy := make(map[*Unit]bool, len(enemies))
		for _, e := range enemies {
			isEnemy[e] = true
		}
		var gain, loss float64
		for _, h := range b.blastVictims(u.Pos) {
			switch {
			case h == u:
			case h.Team == u.Team:
				loss += h.Arch.Value()
			case isEnemy[h]:
				gain += h.Arch.Value()
			}
		}
		if gain > loss {
			b.logAI(u, "desperate", fmt.Sprintf("%s, point-blank blast (gain %.2f vs loss %.2f)", reason, gain, loss))
			return Grenade(u.Pos)
		}
		b.logAI(u, "desperate", fmt.Sprintf("%s, holding fire (loss %.2f vs gain %.2f)", reason, loss, gain))
	}

	if u.GrenCooldown > 0 {
		byManhattan(enemies, u.Pos)
		return MoveTo(b.ChooseMoveAwayFrom(u, enemies[0].Pos, true))
	}

	if spot, ok := b.bestGrenadeSpot(u, enemies); ok {
		if Chebyshev(u.Pos, spot.p) <= cfg.Grenadier.Range {
			return Grenade(spot.p)
		}
		move := b.ChooseMoveTowards(u, spot.p, true)
		if move == u.Pos {
			if obs := b.ObstaclesOnLine(u.Pos, spot.p); len(obs) > 0 && Chebyshev(u.Pos, obs[0].Pos) <= cfg.Grenadier.Range {
				b.logAI(u, "breakthrough", "blocked, bombing obstacle "+obs[0].ID)
				return Grenade(obs[0].Pos)
			}
		}
		return MoveTo(move)
	}

	byManhattan(enemies, u.Pos)
	closest := enemies[0]
	if len(b.FindPath(u, closest.Pos, UnitsBlock)) == 0 {
		if obs := b.ObstaclesOnLine(u.Pos, closest.Pos); len(obs) > 0 {
			target := obs[0]
			if Chebyshev(u.Pos, target.Pos) <= cfg.Grenadier.Range {
				b.logAI(u, "breakthrough", "no good throw, bombing obstacle "+target.ID)
				return Grenade(target.Pos)
			}
			return MoveTo(b.ChooseMoveTowards(u, target.Pos, true))
		}
	}
	return MoveTo(b.ChooseMoveAwayFrom(u, closest.Pos, true))
}
