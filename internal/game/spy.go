package game

import "sort"

const (
	spyDesperateHeadcount = 2
	spyDesperateRatio     = 0.3
	spyStrikeRank         = 4
	spyLowDiversityRank   = 5
	spyWitnessRange       = 3
	spyCatchPerWitness    = 0.25
	spyCatchCap           = 0.75
)

// spyDecide plays an undercover spy against its real enemies. Once
// exposed it fights like anyone else under Aggressive Swarm.
func spyDecide(b *Battle, u *Unit) Plan {
	if u.SpyRevealed {
		return aggressiveSwarmDecide(b, u)
	}

	var targets, allies []*Unit
	for _, o := range b.Units {
		if !o.Alive {
			continue
		}
		if o.Team != u.RealTeam && o.RealTeam != u.RealTeam && o.Team.Combatant() && o.Arch != ArchCorpse {
			targets = append(targets, o)
		}
		if o.RealTeam == u.RealTeam && o != u {
			allies = append(allies, o)
		}
	}
	if len(targets) == 0 {
		return Hold(u)
	}

	ranked := append([]*Unit(nil), targets...)
	byRank(ranked)
	top := ranked[0]
	if Adjacent(top.Pos, u.Pos) {
		return Backstab(top.ID)
	}

	current := 0
	for _, a := range allies {
		if a.Arch != ArchSpy {
			current++
		}
	}
	initial := b.initialCount(func(s LayoutUnit) bool { return s.RealTeam == u.RealTeam && s.Arch != ArchSpy })
	if initial == 0 && len(allies) > 0 {
		initial = len(allies) + 1
	}
	if initial > 0 && (current <= spyDesperateHeadcount || float64(current)/float64(initial) < spyDesperateRatio) {
		sort.SliceStable(targets, func(i, j int) bool {
			di, dj := Chebyshev(targets[i].Pos, u.Pos), Chebyshev(targets[j].Pos, u.Pos)
			if di != dj {
				return di < dj
			}
			return AuthorityRank(targets[i]) < AuthorityRank(targets[j])
		})
		if best := targets[0]; Adjacent(best.Pos, u.Pos) {
			return Backstab(best.ID)
		}
		return MoveTo(b.ChooseMoveTowards(u, targets[0].Pos, true))
	}

	// Waiting costs a point of patience; decisions below see the spent value.
	intent := PatienceKeep
	patience := u.Patience
	if patience > 0 {
		intent = PatienceDecrement
		patience--
	}

	if adj := adjacentTo(targets, u.Pos); len(adj) > 0 {
		byRank(adj)
		best := adj[0]
		if AuthorityRank(best) <= spyStrikeRank || patience == 0 || AuthorityRank(top) > spyLowDiversityRank {
			return Backstab(best.ID).withSpyPatience(intent)
		}
	}
	return MoveTo(b.ChooseMoveTowards(u, top.Pos, true)).withSpyPatience(intent)
}

// catchChance is the probability a backstab is witnessed.
func catchChance(witnesses int) float64 {
	return min(spyCatchCap, spyCatchPerWitness*float64(witnesses))
}
