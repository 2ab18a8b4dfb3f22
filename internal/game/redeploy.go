package game

import (
	"fmt"
	"sort"

	"go.uber.org/zap"
)

const patchReach = 3

// winners returns the living units showing the winning colours.
func (b *Battle) winners() []*Unit {
	if !b.HasWinner {
		return nil
	}
	return b.AliveByTeam(b.Winner)
}

// PlanCleaningUp sends every winner at its nearest corpse.
func (b *Battle) PlanCleaningUp() {
	var corpses []*Unit
	for _, u := range b.Units {
		if u.Alive && u.Arch == ArchCorpse {
			corpses = append(corpses, u)
		}
	}
	if len(corpses) == 0 {
		return
	}
	for _, u := range b.winners() {
		byManhattan(corpses, u.Pos)
		c := corpses[0]
		if Chebyshev(u.Pos, c.Pos) <= 1 {
			u.Plan = Attack(c.ID)
			continue
		}
		u.Plan = MoveTo(b.MoveToTarget(u, c.Pos, UnitsBlock))
	}
}

// PlanPatchingUp has medics treat the worst-off survivor by hp ratio while
// the wounded wait and the healthy walk to their redeploy slots.
func (b *Battle) PlanPatchingUp() {
	team := b.winners()
	var wounded []*Unit
	for _, u := range team {
		if u.Wounded() {
			wounded = append(wounded, u)
		}
	}
	sort.SliceStable(wounded, func(i, j int) bool {
		return float64(wounded[i].HP)/float64(wounded[i].MaxHP) < float64(wounded[j].HP)/float64(wounded[j].MaxHP)
	})

	for _, u := range team {
		switch {
		case u.Arch == ArchMedic:
			if len(wounded) == 0 {
				continue
			}
			t := wounded[0]
			if Chebyshev(t.Pos, u.Pos) <= patchReach && u.HealCooldown == 0 {
				u.Plan = Heal(t.ID)
			} else {
				u.Plan = MoveTo(b.MoveToTarget(u, t.Pos, UnitsBlock))
			}
		case u.Wounded():
		default:
			if t, ok := b.RedeployTargets[u.ID]; ok && t != u.Pos {
				u.Plan = MoveTo(b.MoveToTarget(u, t, UnitsBlock))
			}
		}
	}
}

// PlanRedeploying walks the winners to their formation slots and counts
// toward the redeploy timeout.
func (b *Battle) PlanRedeploying() {
	b.RedeployCounter++
	for _, u := range b.winners() {
		if t, ok := b.RedeployTargets[u.ID]; ok && t != u.Pos {
			u.Plan = MoveTo(b.MoveToTarget(u, t, UnitsBlock))
		}
	}
}

// PrepareRedeployment assigns each living unit of team a formation slot in
// its home zone: frontline troops take the cells nearest the enemy, support
// and ranged support fill from the rear. A slot that cannot be reached is
// swapped for the nearest reachable free one; a unit with none stays put.
func (b *Battle) PrepareRedeployment(team Team) {
	b.RedeployTargets = make(map[string]Point)
	var frontline, support, ranged []*Unit
	for _, u := range b.Units {
		if !u.Alive || u.Team != team || u.Arch == ArchCorpse {
			continue
		}
		switch u.Arch.Role() {
		case RoleFrontline:
			frontline = append(frontline, u)
		case RoleRangedSupport:
			ranged = append(ranged, u)
		default:
			support = append(support, u)
		}
	}
	if len(frontline)+len(support)+len(ranged) == 0 {
		return
	}
	for _, group := range [][]*Unit{frontline, support, ranged} {
		sort.SliceStable(group, func(i, j int) bool { return group[i].ID < group[j].ID })
	}

	front, back := b.formationSlots(team)
	assign := func(units []*Unit, slots *[]Point) {
		for _, u := range units {
			spot, ok := takeFirst(slots)
			if !ok {
				b.RedeployTargets[u.ID] = u.Pos
				continue
			}
			grid := b.NewNavGrid(u, UnitsBlock)
			if len(grid.FindPath(u.Pos, spot)) > 0 {
				b.RedeployTargets[u.ID] = spot
				continue
			}
			// Only units in the way: keep the slot and let the timeout
			// cover a crowd that never clears.
			if len(b.NewNavGrid(u, UnitsPass).FindPath(u.Pos, spot)) > 0 {
				b.Log.Add(b.Turn, u.ID, u.Team.String(), "redeploy", "crowded", u.ID+" is boxed in by units, keeping its slot", 0)
				b.RedeployTargets[u.ID] = spot
				continue
			}
			b.logger.Warn("redeploy slot unreachable",
				zap.String("battle", b.ID), zap.String("unit", u.ID), zap.Stringer("slot", spot))
			b.RedeployTargets[u.ID] = b.nearestReachable(u, grid, &front, &back)
		}
	}
	assign(frontline, &front)
	assign(append(support, ranged...), &back)

	b.Log.Add(b.Turn, "", team.String(), "redeploy", "targets",
		fmt.Sprintf("%d redeploy targets for team %s", len(b.RedeployTargets), team), float64(len(b.RedeployTargets)))
}

// nearestReachable picks the closest free slot u can path to, removing it
// from the lists, or u's own cell when every slot is cut off.
func (b *Battle) nearestReachable(u *Unit, grid *NavGrid, front, back *[]Point) Point {
	reachable := reachableSlots(u, grid, *front, *back)
	if len(reachable) == 0 {
		b.logger.Error("unit trapped, no reachable formation slot",
			zap.String("battle", b.ID), zap.String("unit", u.ID), zap.Stringer("pos", u.Pos))
		b.Log.Add(b.Turn, u.ID, u.Team.String(), "redeploy", "trapped", u.ID+" cannot reach any formation slot", 0)
		return u.Pos
	}
	sort.SliceStable(reachable, func(i, j int) bool {
		return Manhattan(reachable[i], u.Pos) < Manhattan(reachable[j], u.Pos)
	})
	removeSlot(front, reachable[0])
	removeSlot(back, reachable[0])
	return reachable[0]
}

func reachableSlots(u *Unit, grid *NavGrid, front, back []Point) []Point {
	var out []Point
	for _, p := range append(append([]Point(nil), front...), back...) {
		if len(grid.FindPath(u.Pos, p)) > 0 {
			out = append(out, p)
		}
	}
	return out
}
