package game

import (
	"fmt"
	"sort"

	"go.uber.org/zap"
)

const (
	reviewInterval   = 3
	emergencyHP      = 0.7
	emergencyLosses  = 0.7
	kiteMinHeadcount = 2
)

// Strength sums hp x unit value. Undercover spies count for nothing.
func Strength(units []*Unit) float64 {
	total := 0.0
	for _, u := range units {
		if u.Undercover() {
			continue
		}
		total += float64(u.HP) * u.Arch.Value()
	}
	return total
}

// Tide is side A's share of the combined strength of both real teams,
// 0.5 when neither side has any.
func (b *Battle) Tide() float64 {
	var a, bb []*Unit
	for _, u := range b.Units {
		if !u.Alive {
			continue
		}
		switch u.RealTeam {
		case TeamA:
			a = append(a, u)
		case TeamB:
			bb = append(bb, u)
		}
	}
	sa, sb := Strength(a), Strength(bb)
	if sa+sb <= 0 {
		return 0.5
	}
	return sa / (sa + sb)
}

// ThresholdStrategy maps a strength ratio onto a base strategy. Badly
// outmatched sides kite when they have shooters and numbers, else lie in
// ambush.
func ThresholdStrategy(ratio float64, hasRanged bool, friends int) Strategy {
	switch {
	case ratio > 2.0:
		return StrategyAggressiveSwarm
	case ratio > 1.5:
		return StrategyOverwhelm
	case ratio > 1.1:
		return StrategyFocusFire
	case ratio >= 0.9:
		return StrategyBalanced
	case ratio > 0.6:
		return StrategyDefensiveHold
	case ratio > 0.4:
		return StrategyPhalanx
	case hasRanged && friends > kiteMinHeadcount:
		return StrategyKiteAndShoot
	default:
		return StrategyAmbush
	}
}

// reviewDoctrine lets every living general re-evaluate its side's strategy
// before units plan. Generals are visited in board order, so the second
// side reacts to the first side's fresh orders.
func (b *Battle) reviewDoctrine() {
	for _, g := range b.Units {
		if !g.Alive || g.Arch != ArchGeneral || !g.Team.Combatant() {
			continue
		}
		if b.IsStalemated(g) {
			continue
		}
		b.reviewFor(g)
	}
}

func (b *Battle) reviewFor(g *Unit) {
	friends := append(b.Friends(g), g)
	enemies := b.Enemies(g)
	if len(enemies) == 0 || len(friends) == 1 {
		return
	}

	initial := b.initialCount(func(l LayoutUnit) bool { return l.RealTeam == g.Team })
	if initial == 0 {
		initial = len(friends) + 1
	}
	losses := float64(len(friends)) < float64(initial)*emergencyLosses
	emergency := float64(g.HP) < float64(g.MaxHP)*emergencyHP || losses
	if b.Turn <= 0 || (b.Turn%reviewInterval != 0 && !emergency) {
		return
	}

	mine, theirs := Strength(friends), Strength(enemies)
	if theirs == 0 {
		theirs = 1
	}
	ratio := mine / theirs

	env := DoctrineEnv{
		Ratio:         ratio,
		Current:       b.Strategy(g.Team).String(),
		EnemyStrategy: b.Strategy(g.Team.Opponent()).String(),
		Friends:       len(friends),
		Enemies:       len(enemies),
	}
	hasRanged := false
	for _, f := range friends {
		switch f.Arch {
		case ArchSniper:
			env.FriendsHaveSnipers = true
			hasRanged = true
		case ArchRifle:
			hasRanged = true
		case ArchGrenadier:
			env.FriendsHaveGrenadiers = true
		}
	}
	for _, e := range enemies {
		if e.Arch == ArchSniper {
			env.EnemyHasSnipers = true
		}
	}

	next := ThresholdStrategy(ratio, hasRanged, len(friends))
	env.Proposed = next.String()
	if rule, ok := b.doctrine.Counter(env); ok {
		next = rule.Then
		b.Log.Add(b.Turn, g.ID, g.Team.String(), "strategy", "counter",
			fmt.Sprintf("%s: enemy on %s, answering with %s", rule.Name, env.EnemyStrategy, next), ratio)
	}

	ts := b.teamState(g.Team)
	switch next {
	case StrategyOverwhelm:
		ranked := append([]*Unit(nil), enemies...)
		support := make(map[*Unit]int, len(ranked))
		for _, e := range ranked {
			support[e] = len(b.Friends(e))
		}
		sort.SliceStable(ranked, func(i, j int) bool {
			if support[ranked[i]] != support[ranked[j]] {
				return support[ranked[i]] < support[ranked[j]]
			}
			return ranked[i].HP < ranked[j].HP
		})
		ts.OverwhelmTarget = ranked[0].ID
	case StrategyFocusFire:
		ranked := append([]*Unit(nil), enemies...)
		byRank(ranked)
		ts.PriorityTarget = ranked[0].ID
	}

	old := ts.Strategy
	if next == old {
		return
	}
	b.SetStrategy(g.Team, next)
	b.Log.Add(b.Turn, g.ID, g.Team.String(), "strategy", "orders",
		fmt.Sprintf("ratio %.2f, %s -> %s", ratio, old, next), ratio)
	b.logger.Info("strategy change",
		zap.String("battle", b.ID),
		zap.Int("turn", b.Turn),
		zap.String("team", g.Team.String()),
		zap.String("general", g.ID),
		zap.Float64("ratio", ratio),
		zap.Stringer("from", old),
		zap.Stringer("to", next),
	)
}
