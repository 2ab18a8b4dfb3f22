package game

import (
	"fmt"
	"sort"
)

// stalemateWindow is how many idle turns force a unit onto the offensive.
const stalemateWindow = 5

type scoredMove struct {
	p     Point
	score float64
}

// ChooseMoveTowards picks a step that closes on target, optionally
// preferring cells screened from it.
func (b *Battle) ChooseMoveTowards(u *Unit, target Point, preferCover bool) Point {
	return b.chooseMove(u, target, false, preferCover)
}

// ChooseMoveAwayFrom picks a step that opens distance from target.
func (b *Battle) ChooseMoveAwayFrom(u *Unit, target Point, preferCover bool) Point {
	return b.chooseMove(u, target, true, preferCover)
}

func (b *Battle) chooseMove(u *Unit, target Point, away, preferCover bool) Point {
	score := func(p Point) float64 {
		d := Euclid(p, target)
		if away {
			return -d
		}
		return d
	}

	var all []scoredMove
	for _, n := range b.Neighbors(u.Pos) {
		if !b.occupiedBy(n, u) {
			all = append(all, scoredMove{n, score(n)})
		}
	}
	stay := score(u.Pos)
	all = append(all, scoredMove{u.Pos, stay})

	var moves []scoredMove
	for _, m := range all {
		if m.score <= stay {
			moves = append(moves, m)
		}
	}
	if len(moves) == 0 {
		moves = all
	}

	if preferCover {
		var covered []scoredMove
		for _, m := range moves {
			if b.IsPositionInCoverFrom(m.p, target) {
				covered = append(covered, m)
			}
		}
		if len(covered) > 0 {
			moves = covered
		}
	}

	sort.SliceStable(moves, func(i, j int) bool { return moves[i].score < moves[j].score })
	k := min(len(moves), b.cfg.Get().MoveTemperature)
	if k == 0 {
		return u.Pos
	}
	return moves[b.rng.Intn(k)].p
}

// BreakthroughPlan handles a unit with no way forward: hit the weakest
// adjacent obstacle, else head for the obstacle nearest the real target.
func (b *Battle) BreakthroughPlan(u *Unit, target *Unit) Plan {
	if adj := b.adjacentDestructibles(u); len(adj) > 0 {
		sort.SliceStable(adj, func(i, j int) bool { return adj[i].HP < adj[j].HP })
		b.logAI(u, "breakthrough", fmt.Sprintf("blocked, attacking adjacent obstacle %s", adj[0].ID))
		return Attack(adj[0].ID)
	}

	var obstacles []*Unit
	for _, o := range b.Units {
		if o.Alive && o.Arch.Obstacle() {
			obstacles = append(obstacles, o)
		}
	}
	if len(obstacles) > 0 {
		sort.SliceStable(obstacles, func(i, j int) bool {
			return Euclid(obstacles[i].Pos, target.Pos) < Euclid(obstacles[j].Pos, target.Pos)
		})
		o := obstacles[0]
		b.logAI(u, "breakthrough", fmt.Sprintf("cannot reach %s, rerouting to break obstacle %s", target.ID, o.ID))
		return MoveTo(b.ChooseMoveTowards(u, o.Pos, false))
	}

	b.logAI(u, "breakthrough", "blocked with no obstacles to break, holding")
	return Hold(u)
}

// IsStalemated reports a fighter that has neither moved nor attacked for a
// full window of turns.
func (b *Battle) IsStalemated(u *Unit) bool {
	if len(u.History) < stalemateWindow {
		return false
	}
	for _, p := range u.History {
		if p != u.History[0] {
			return false
		}
	}
	return u.LastOffensiveTurn == 0 || b.Turn-u.LastOffensiveTurn >= stalemateWindow
}

// adjacentDestructibles lists living walls and corpses within one cell of u.
func (b *Battle) adjacentDestructibles(u *Unit) []*Unit {
	var out []*Unit
	for _, o := range b.Units {
		if o.Alive && o.Arch.Obstacle() && Adjacent(o.Pos, u.Pos) {
			out = append(out, o)
		}
	}
	return out
}
