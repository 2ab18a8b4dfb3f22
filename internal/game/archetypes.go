package game

import "sort"

// DecideFunc chooses a unit's plan for the coming tick. It reads the board
// and must not mutate it.
type DecideFunc func(b *Battle, u *Unit) Plan

// defaultDeciders maps each fighting archetype to its decision function.
// Line troops follow their team's strategy directly.
func defaultDeciders() map[Archetype]DecideFunc {
	return map[Archetype]DecideFunc{
		ArchSoldier:   strategyDecide,
		ArchCivilian:  strategyDecide,
		ArchRifle:     strategyDecide,
		ArchSniper:    sniperDecide,
		ArchMarksman:  marksmanDecide,
		ArchGrenadier: grenadierDecide,
		ArchMedic:     medicDecide,
		ArchGeneral:   generalDecide,
		ArchSpy:       spyDecide,
		ArchCommando:  commandoDecide,
	}
}

const (
	sniperRegroup = 3
	healReach     = 3
	medicLeash    = 2
	healThreshold = 0.95
)

func sniperDecide(b *Battle, u *Unit) Plan {
	cfg := b.cfg.Get()
	enemies := b.Enemies(u)
	if len(enemies) > 0 && u.Cooldown == 0 {
		if targets := b.rangedTargets(u, enemies, cfg.Sniper.Range); len(targets) > 0 {
			return Attack(targets[0].ID)
		}
	}

	switch b.Strategy(u.Team) {
	case StrategyPhalanx:
		if center := vip(append(b.Friends(u), u)); center != nil && Chebyshev(center.Pos, u.Pos) > sniperRegroup {
			return MoveTo(b.ChooseMoveTowards(u, center.Pos, false))
		}
	case StrategyDefensiveHold:
		if zone := b.ZoneFor(u.Team); !zone.Contains(u.Pos) {
			return MoveTo(b.ChooseMoveTowards(u, zone.Center(), true))
		}
	}
	return kiteAndShootDecide(b, u)
}

func marksmanDecide(b *Battle, u *Unit) Plan {
	enemies := b.Enemies(u)
	if len(enemies) == 0 {
		return Hold(u)
	}
	if targets := b.rangedTargets(u, enemies, b.cfg.Get().Marksman.Range); len(targets) > 0 {
		return Attack(targets[0].ID)
	}

	byManhattan(enemies, u.Pos)
	if closest := enemies[0]; Chebyshev(closest.Pos, u.Pos) <= 1 {
		return MoveTo(b.ChooseMoveAwayFrom(u, closest.Pos, true))
	}
	byRank(enemies)
	return MoveTo(b.ChooseMoveTowards(u, enemies[0].Pos, true))
}

func commandoDecide(b *Battle, u *Unit) Plan {
	enemies := b.Enemies(u)
	if len(enemies) == 0 {
		return Hold(u)
	}
	if u.AttackCooldown == 0 {
		if adj := adjacentTo(enemies, u.Pos); len(adj) > 0 {
			finishing := b.cfg.Get().Commando.Damage.Min
			sort.SliceStable(adj, func(i, j int) bool {
				li, lj := adj[i].HP < finishing, adj[j].HP < finishing
				if li != lj {
					return li
				}
				ri, rj := AuthorityRank(adj[i]), AuthorityRank(adj[j])
				if ri != rj {
					return ri < rj
				}
				return adj[i].HP < adj[j].HP
			})
			return Attack(adj[0].ID)
		}
	}

	if u.MoveCooldown == 0 {
		breach := make(map[*Unit]bool, len(enemies))
		for _, e := range enemies {
			breach[e] = len(b.adjacentDestructibles(e)) > 0
		}
		sort.SliceStable(enemies, func(i, j int) bool {
			bi, bj := breach[enemies[i]], breach[enemies[j]]
			if bi != bj {
				return bi
			}
			ri, rj := AuthorityRank(enemies[i]), AuthorityRank(enemies[j])
			if ri != rj {
				return ri < rj
			}
			return Euclid(enemies[i].Pos, u.Pos) < Euclid(enemies[j].Pos, u.Pos)
		})
		return b.advanceOn(u, enemies[0], false)
	}
	return Hold(u)
}

func medicDecide(b *Battle, u *Unit) Plan {
	friends := b.Friends(u)

	var wounded []*Unit
	for _, f := range friends {
		if float64(f.HP) < float64(f.MaxHP)*healThreshold {
			wounded = append(wounded, f)
		}
	}
	if u.HealCooldown == 0 && len(wounded) > 0 {
		byHP(wounded)
		target := wounded[0]
		if Chebyshev(target.Pos, u.Pos) <= healReach {
			return Heal(target.ID)
		}
		return MoveTo(b.ChooseMoveTowards(u, target.Pos, true))
	}

	if len(friends) == 0 {
		return balancedDecide(b, u)
	}

	switch b.Strategy(u.Team) {
	case StrategyPhalanx:
		if center := vip(friends); center != nil && Chebyshev(center.Pos, u.Pos) > medicLeash {
			return MoveTo(b.ChooseMoveTowards(u, center.Pos, false))
		}
	case StrategyDefensiveHold:
		if zone := b.ZoneFor(u.Team); !zone.Contains(u.Pos) {
			return MoveTo(b.ChooseMoveTowards(u, zone.Center(), true))
		}
	}

	byEuclid(friends, u.Pos)
	if closest := friends[0]; Euclid(closest.Pos, u.Pos) > medicLeash {
		return MoveTo(b.ChooseMoveTowards(u, closest.Pos, true))
	}
	return Hold(u)
}

const (
	generalRetreatHP = 0.6
	generalStandoff  = 0.5
)

// generalDecide covers the general's own conduct. Team strategy is
// re-evaluated earlier in planning by the doctrine step.
func generalDecide(b *Battle, u *Unit) Plan {
	friends := append(b.Friends(u), u)
	enemies := b.Enemies(u)
	if len(enemies) == 0 {
		return Hold(u)
	}
	if len(friends) == 1 {
		return balancedDecide(b, u)
	}

	if float64(u.HP) < float64(u.MaxHP)*generalRetreatHP {
		var medics []*Unit
		for _, f := range friends {
			if f.Arch == ArchMedic {
				medics = append(medics, f)
			}
		}
		if len(medics) > 0 {
			byEuclid(medics, u.Pos)
			b.logAI(u, "retreat", "wounded, falling back to medic "+medics[0].ID)
			return MoveTo(b.ChooseMoveTowards(u, medics[0].Pos, true))
		}
	}

	if adj := adjacentTo(enemies, u.Pos); len(adj) > 0 {
		byHP(adj)
		return Attack(adj[0].ID)
	}

	switch b.Strategy(u.Team) {
	case StrategyPhalanx, StrategyDefensiveHold:
		return balancedDecide(b, u)
	}

	fx, fy := centroid(friends)
	ex, ey := centroid(enemies)
	ideal := Point{
		X: clampInt(roundHalfUp(fx-(ex-fx)*generalStandoff), 0, b.Size-1),
		Y: clampInt(roundHalfUp(fy-(ey-fy)*generalStandoff), 0, b.Size-1),
	}
	if Chebyshev(u.Pos, ideal) <= 1 {
		return Hold(u)
	}
	return MoveTo(b.ChooseMoveTowards(u, ideal, true))
}

func centroid(units []*Unit) (float64, float64) {
	var x, y float64
	for _, o := range units {
		x += float64(o.Pos.X)
		y += float64(o.Pos.Y)
	}
	n := float64(len(units))
	return x / n, y / n
}
