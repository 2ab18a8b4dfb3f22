package game

type BattleOutcome int

const (
	OutcomeInconclusive BattleOutcome = iota
	OutcomeAVictory
	OutcomeBVictory
	OutcomeDraw
)

func (o BattleOutcome) String() string {
	switch o {
	case OutcomeAVictory:
		return "a_victory"
	case OutcomeBVictory:
		return "b_victory"
	case OutcomeDraw:
		return "draw"
	case OutcomeInconclusive:
		return "inconclusive"
	default:
		return "unknown"
	}
}

type BattleOutcomeReason struct {
	Outcome     BattleOutcome
	Survivors   [2]int
	Total       [2]int
	Casualties  [2]int
	Tide        float64
	Turns       int
	Description string
}

// DetermineBattleOutcome grades a finished or stopped battle. Survivors are
// counted by real team against the saved starting layout, so spies count for
// the side that sent them.
func DetermineBattleOutcome(b *Battle) BattleOutcomeReason {
	r := BattleOutcomeReason{
		Casualties: b.Casualties,
		Tide:       b.Tide(),
		Turns:      b.Turn,
	}
	for _, t := range []Team{TeamA, TeamB} {
		r.Total[t] = b.initialCount(func(l LayoutUnit) bool { return l.RealTeam == t })
		for _, u := range b.Units {
			if u.Alive && u.RealTeam == t {
				r.Survivors[t]++
			}
		}
		if r.Total[t] < r.Survivors[t] {
			r.Total[t] = r.Survivors[t]
		}
	}

	rate := func(t Team) float64 {
		if r.Total[t] == 0 {
			return 0
		}
		return float64(r.Total[t]-r.Survivors[t]) / float64(r.Total[t])
	}
	aRate, bRate := rate(TeamA), rate(TeamB)

	switch {
	case r.Survivors[TeamA] == 0 && r.Survivors[TeamB] > 0:
		r.Outcome, r.Description = OutcomeBVictory, "decisive_b_victory_a_eliminated"
		return r
	case r.Survivors[TeamB] == 0 && r.Survivors[TeamA] > 0:
		r.Outcome, r.Description = OutcomeAVictory, "decisive_a_victory_b_eliminated"
		return r
	case r.Survivors[TeamA] == 0 && r.Survivors[TeamB] == 0:
		r.Outcome, r.Description = OutcomeDraw, "mutual_annihilation"
		return r
	}

	// Only spies left on one side is as good as eliminated.
	if onlySpies(b, TeamA) && !onlySpies(b, TeamB) {
		r.Outcome, r.Description = OutcomeBVictory, "b_victory_a_only_spies"
		return r
	}
	if onlySpies(b, TeamB) && !onlySpies(b, TeamA) {
		r.Outcome, r.Description = OutcomeAVictory, "a_victory_b_only_spies"
		return r
	}

	diff := bRate - aRate
	switch {
	case diff > 0.30 && aRate < 0.50:
		r.Outcome, r.Description = OutcomeAVictory, "marginal_a_victory_casualty_advantage"
	case diff < -0.30 && bRate < 0.50:
		r.Outcome, r.Description = OutcomeBVictory, "marginal_b_victory_casualty_advantage"
	case diff >= -0.20 && diff <= 0.20 && (aRate > 0.30 || bRate > 0.30):
		r.Outcome, r.Description = OutcomeDraw, "draw_similar_casualties"
	default:
		r.Outcome, r.Description = OutcomeInconclusive, "inconclusive_insufficient_resolution"
	}
	return r
}

func onlySpies(b *Battle, t Team) bool {
	for _, u := range b.Units {
		if u.Alive && u.RealTeam == t && u.Arch != ArchSpy {
			return false
		}
	}
	return true
}
