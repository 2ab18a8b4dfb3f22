package game

import (
	"fmt"
	"math"
)

// Strategy is a team-wide doctrine shaping how its units fight.
type Strategy int

const (
	StrategyBalanced Strategy = iota
	StrategyAggressiveSwarm
	StrategyOverwhelm
	StrategyDefensiveHold
	StrategyFocusFire
	StrategyKiteAndShoot
	StrategyPhalanx
	StrategyAmbush
	strategyCount
)

var strategyNames = [strategyCount]string{
	StrategyBalanced:        "Balanced",
	StrategyAggressiveSwarm: "Aggressive Swarm",
	StrategyOverwhelm:       "Overwhelm",
	StrategyDefensiveHold:   "Defensive Hold",
	StrategyFocusFire:       "Focus Fire",
	StrategyKiteAndShoot:    "Kite & Shoot",
	StrategyPhalanx:         "Phalanx",
	StrategyAmbush:          "Ambush",
}

func (s Strategy) String() string {
	if s < 0 || s >= strategyCount {
		return "Balanced"
	}
	return strategyNames[s]
}

// Strategies lists every strategy in display order.
func Strategies() []Strategy {
	out := make([]Strategy, strategyCount)
	for i := range out {
		out[i] = Strategy(i)
	}
	return out
}

// ParseStrategy accepts the display name ("Kite & Shoot").
func ParseStrategy(s string) (Strategy, error) {
	for i, n := range strategyNames {
		if n == s {
			return Strategy(i), nil
		}
	}
	return StrategyBalanced, fmt.Errorf("unknown strategy %q", s)
}

// MarshalYAML and UnmarshalYAML let scenario and doctrine files use display names.
func (s Strategy) MarshalYAML() (any, error) { return s.String(), nil }

func (s *Strategy) UnmarshalYAML(unmarshal func(any) error) error {
	var name string
	if err := unmarshal(&name); err != nil {
		return err
	}
	v, err := ParseStrategy(name)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// strategyDecide dispatches a line unit on its team's current strategy.
func strategyDecide(b *Battle, u *Unit) Plan {
	switch b.Strategy(u.Team) {
	case StrategyAggressiveSwarm:
		return aggressiveSwarmDecide(b, u)
	case StrategyOverwhelm:
		return overwhelmDecide(b, u)
	case StrategyFocusFire:
		return focusFireDecide(b, u)
	case StrategyDefensiveHold:
		return defensiveHoldDecide(b, u)
	case StrategyKiteAndShoot:
		return kiteAndShootDecide(b, u)
	case StrategyPhalanx:
		return phalanxDecide(b, u)
	case StrategyAmbush:
		return ambushDecide(b, u)
	default:
		return balancedDecide(b, u)
	}
}

// advanceOn moves u toward target and falls back to a breakthrough when
// the step would leave it stuck out of reach.
func (b *Battle) advanceOn(u, target *Unit, preferCover bool) Plan {
	move := b.ChooseMoveTowards(u, target.Pos, preferCover)
	if move == u.Pos && !Adjacent(u.Pos, target.Pos) {
		return b.BreakthroughPlan(u, target)
	}
	return MoveTo(move)
}

func balancedDecide(b *Battle, u *Unit) Plan {
	enemies := b.Enemies(u)
	if len(enemies) == 0 {
		return Hold(u)
	}
	if adj := adjacentTo(enemies, u.Pos); len(adj) > 0 {
		byRankThenHP(adj)
		return Attack(adj[0].ID)
	}
	byManhattan(enemies, u.Pos)
	return b.advanceOn(u, enemies[0], true)
}

func aggressiveSwarmDecide(b *Battle, u *Unit) Plan {
	enemies := b.Enemies(u)
	if len(enemies) == 0 {
		if obs := b.adjacentDestructibles(u); len(obs) > 0 {
			return Attack(obs[0].ID)
		}
		return Hold(u)
	}
	if adj := adjacentTo(enemies, u.Pos); len(adj) > 0 {
		return Attack(weakest(adj).ID)
	}
	byChebyshev(enemies, u.Pos)
	return b.advanceOn(u, enemies[0], false)
}

// convergeOn is the shared shape of the team-target strategies.
func (b *Battle) convergeOn(u, target *Unit) Plan {
	if Adjacent(u.Pos, target.Pos) {
		return Attack(target.ID)
	}
	return b.advanceOn(u, target, false)
}

func overwhelmDecide(b *Battle, u *Unit) Plan {
	target := b.Unit(b.teamState(u.Team).OverwhelmTarget)
	if target == nil {
		return aggressiveSwarmDecide(b, u)
	}
	return b.convergeOn(u, target)
}

// focusFireDecide converges the whole team on its priority target.
func focusFireDecide(b *Battle, u *Unit) Plan {
	target := b.Unit(b.teamState(u.Team).PriorityTarget)
	if target == nil || target.Team == u.Team {
		return balancedDecide(b, u)
	}
	return b.convergeOn(u, target)
}

func defensiveHoldDecide(b *Battle, u *Unit) Plan {
	enemies := b.Enemies(u)
	if len(enemies) == 0 {
		return Hold(u)
	}
	zone := b.ZoneFor(u.Team)

	var threats []*Unit
	for _, e := range enemies {
		if zone.Contains(e.Pos) {
			threats = append(threats, e)
		}
	}
	if len(threats) > 0 {
		if adj := adjacentTo(threats, u.Pos); len(adj) > 0 {
			byRankThenHP(adj)
			return Attack(adj[0].ID)
		}
		byManhattan(threats, u.Pos)
		return MoveTo(b.ChooseMoveTowards(u, threats[0].Pos, true))
	}

	if adj := adjacentTo(enemies, u.Pos); len(adj) > 0 {
		byRankThenHP(adj)
		return Attack(adj[0].ID)
	}

	if !zone.Contains(u.Pos) {
		closest := Point{zone.X0, zone.Y0}
		best := math.MaxInt
		for y := zone.Y0; y <= zone.Y1; y++ {
			for x := zone.X0; x <= zone.X1; x++ {
				p := Point{x, y}
				if b.UnitAt(p) != nil {
					continue
				}
				if d := Manhattan(p, u.Pos); d < best {
					best = d
					closest = p
				}
			}
		}
		return MoveTo(b.ChooseMoveTowards(u, closest, true))
	}
	return Hold(u)
}

const (
	kiteDanger = 2
	kiteRange  = 4
)

func kiteAndShootDecide(b *Battle, u *Unit) Plan {
	enemies := b.Enemies(u)
	if len(enemies) == 0 {
		return Hold(u)
	}
	byManhattan(enemies, u.Pos)
	closest := enemies[0]
	d := Chebyshev(closest.Pos, u.Pos)

	if d <= kiteDanger {
		return MoveTo(b.ChooseMoveAwayFrom(u, closest.Pos, true))
	}
	if adj := adjacentTo(enemies, u.Pos); len(adj) > 0 {
		byHP(adj)
		return Attack(adj[0].ID)
	}
	if d > kiteRange {
		return MoveTo(b.ChooseMoveTowards(u, closest.Pos, true))
	}
	return Hold(u)
}

const phalanxSpread = 2

func phalanxDecide(b *Battle, u *Unit) Plan {
	members := append(b.Friends(u), u)
	enemies := b.Enemies(u)
	if len(enemies) == 0 {
		return Hold(u)
	}
	center := vip(members)
	if Chebyshev(center.Pos, u.Pos) > phalanxSpread {
		return MoveTo(b.ChooseMoveTowards(u, center.Pos, false))
	}
	if adj := adjacentTo(enemies, u.Pos); len(adj) > 0 {
		byRankThenHP(adj)
		return Attack(adj[0].ID)
	}
	byEuclid(enemies, center.Pos)
	return MoveTo(b.ChooseMoveTowards(u, enemies[0].Pos, false))
}

const ambushRange = 3

func ambushDecide(b *Battle, u *Unit) Plan {
	if target := b.Unit(b.teamState(u.Team).AmbushTarget); target != nil {
		if Adjacent(u.Pos, target.Pos) {
			return Attack(target.ID)
		}
		return MoveTo(b.ChooseMoveTowards(u, target.Pos, true))
	}

	enemies := b.Enemies(u)
	if len(enemies) == 0 {
		return Hold(u)
	}

	var inRange []*Unit
	for _, e := range enemies {
		if Chebyshev(e.Pos, u.Pos) <= ambushRange {
			inRange = append(inRange, e)
		}
	}
	if len(inRange) > 0 {
		if adj := adjacentTo(inRange, u.Pos); len(adj) > 0 {
			byHP(adj)
			return Attack(adj[0].ID).withAmbushPatience(PatienceReset)
		}
		byManhattan(inRange, u.Pos)
		return MoveTo(b.ChooseMoveTowards(u, inRange[0].Pos, true)).withAmbushPatience(PatienceReset)
	}

	if u.AmbushPatience > 0 {
		// Lurk: shuffle toward better cover around the current cell.
		return MoveTo(b.ChooseMoveTowards(u, u.Pos, true)).withAmbushPatience(PatienceDecrement)
	}
	return aggressiveSwarmDecide(b, u).withAmbushPatience(PatienceReset)
}
