package game

import "sort"

// Enemies returns the living fighters u would target: anyone on another
// side, never walls or corpses.
func (b *Battle) Enemies(u *Unit) []*Unit {
	var out []*Unit
	for _, o := range b.Units {
		if o.Alive && o.Team != u.Team && o.Team.Combatant() && o.Arch != ArchCorpse {
			out = append(out, o)
		}
	}
	return out
}

// Friends returns the living units sharing u's effective team, u excluded.
func (b *Battle) Friends(u *Unit) []*Unit {
	var out []*Unit
	for _, o := range b.Units {
		if o.Alive && o.Team == u.Team && o != u {
			out = append(out, o)
		}
	}
	return out
}

// adjacentTo filters units within one cell of p.
func adjacentTo(units []*Unit, p Point) []*Unit {
	var out []*Unit
	for _, o := range units {
		if Adjacent(o.Pos, p) {
			out = append(out, o)
		}
	}
	return out
}

// weakest returns the lowest-hp unit; the first wins ties.
func weakest(units []*Unit) *Unit {
	if len(units) == 0 {
		return nil
	}
	w := units[0]
	for _, o := range units[1:] {
		if o.HP < w.HP {
			w = o
		}
	}
	return w
}

// byRankThenHP sorts most important first, weaker first within a rank.
func byRankThenHP(units []*Unit) {
	sort.SliceStable(units, func(i, j int) bool {
		ri, rj := AuthorityRank(units[i]), AuthorityRank(units[j])
		if ri != rj {
			return ri < rj
		}
		return units[i].HP < units[j].HP
	})
}

// byRank sorts most important first.
func byRank(units []*Unit) {
	sort.SliceStable(units, func(i, j int) bool {
		return AuthorityRank(units[i]) < AuthorityRank(units[j])
	})
}

// byHP sorts weakest first.
func byHP(units []*Unit) {
	sort.SliceStable(units, func(i, j int) bool { return units[i].HP < units[j].HP })
}

// byManhattan sorts nearest to p first.
func byManhattan(units []*Unit, p Point) {
	sort.SliceStable(units, func(i, j int) bool {
		return Manhattan(units[i].Pos, p) < Manhattan(units[j].Pos, p)
	})
}

// byChebyshev sorts nearest to p first by king-move distance.
func byChebyshev(units []*Unit, p Point) {
	sort.SliceStable(units, func(i, j int) bool {
		return Chebyshev(units[i].Pos, p) < Chebyshev(units[j].Pos, p)
	})
}

// byEuclid sorts nearest to p first by straight-line distance.
func byEuclid(units []*Unit, p Point) {
	sort.SliceStable(units, func(i, j int) bool {
		return Euclid(units[i].Pos, p) < Euclid(units[j].Pos, p)
	})
}

// rangedTargets lists enemies within reach that have a clear shot, ordered
// by rank with hp as a soft tiebreak.
func (b *Battle) rangedTargets(u *Unit, enemies []*Unit, reach int) []*Unit {
	var out []*Unit
	for _, e := range enemies {
		if Chebyshev(e.Pos, u.Pos) <= reach && b.HasClearShot(u.Pos, e.Pos) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return AuthorityRank(out[i])+float64(out[i].HP)/20 < AuthorityRank(out[j])+float64(out[j].HP)/20
	})
	return out
}

// vip picks the unit a formation gathers around: a general if present,
// otherwise the best-ranked member.
func vip(members []*Unit) *Unit {
	for _, m := range members {
		if m.Arch == ArchGeneral {
			return m
		}
	}
	if len(members) == 0 {
		return nil
	}
	sorted := append([]*Unit(nil), members...)
	byRank(sorted)
	return sorted[0]
}
