package game

import (
	"fmt"

	"go.uber.org/zap"
)

// Phase is the battle-level state.
type Phase int

const (
	PhaseCombat Phase = iota
	PhaseCleaningUp
	PhasePatchingUp
	PhaseRedeploying
	PhaseGameOver
)

func (p Phase) String() string {
	switch p {
	case PhaseCombat:
		return "COMBAT"
	case PhaseCleaningUp:
		return "CLEANING_UP"
	case PhasePatchingUp:
		return "PATCHING_UP"
	case PhaseRedeploying:
		return "REDEPLOYING"
	case PhaseGameOver:
		return "GAME_OVER"
	}
	return "UNKNOWN"
}

// phaseStage says when in a tick a transition is checked.
type phaseStage int

const (
	stagePre  phaseStage = iota // before resolution, COMBAT only
	stagePost                   // after resolution
)

// tickView is the board as it stood when the tick began.
type tickView struct {
	alive     []*Unit
	fighters  []*Unit
	sides     int
	winner    Team
	hasWinner bool
}

func newTickView(b *Battle) *tickView {
	v := &tickView{}
	seen := [2]bool{}
	for _, u := range b.Units {
		if !u.Alive {
			continue
		}
		v.alive = append(v.alive, u)
		if u.Team.Combatant() {
			v.fighters = append(v.fighters, u)
			if !seen[u.Team] {
				seen[u.Team] = true
				v.sides++
				v.winner = u.Team
			}
		}
	}
	v.hasWinner = v.sides == 1
	return v
}

// winners returns the living units of the winning side at tick start.
func (v *tickView) winners() []*Unit {
	if !v.hasWinner {
		return nil
	}
	var out []*Unit
	for _, u := range v.fighters {
		if u.Alive && u.Team == v.winner {
			out = append(out, u)
		}
	}
	return out
}

// phaseRule is one guarded edge. Rules for the same phase and stage are
// checked in table order and the first passing guard fires.
type phaseRule struct {
	name  string
	from  Phase
	stage phaseStage
	guard func(b *Battle, v *tickView) bool
	to    Phase
	enter func(b *Battle, v *tickView)
}

type phaseMachine struct {
	rules []phaseRule
}

func newPhaseMachine() *phaseMachine {
	battleDecided := func(b *Battle, v *tickView) bool { return v.sides <= 1 }
	noWinner := func(b *Battle, v *tickView) bool { return v.sides == 0 }
	needsCleanup := func(b *Battle, v *tickView) bool { return b.SecureArea && b.corpsesRemain() }
	needsPatching := func(b *Battle, v *tickView) bool { return medicsAndWounded(v.winners()) }
	highlight := func(b *Battle, v *tickView) bool { return b.HighlightZone }
	always := func(b *Battle, v *tickView) bool { return true }
	cleanedAnd := func(next func(*Battle, *tickView) bool) func(*Battle, *tickView) bool {
		return func(b *Battle, v *tickView) bool { return !b.corpsesRemain() && next(b, v) }
	}
	patchedAnd := func(next func(*Battle, *tickView) bool) func(*Battle, *tickView) bool {
		return func(b *Battle, v *tickView) bool { return !anyWounded(v.winners()) && next(b, v) }
	}

	startPatching := func(b *Battle, v *tickView) {
		if b.HighlightZone {
			b.PrepareRedeployment(v.winner)
		}
	}
	startRedeploy := func(b *Battle, v *tickView) {
		b.RedeployCounter = 0
		b.PrepareRedeployment(v.winner)
	}
	resumeRedeploy := func(b *Battle, v *tickView) { b.RedeployCounter = 0 }
	nextWave := func(b *Battle, v *tickView) { b.Waves++ }
	inPosition := func(b *Battle, v *tickView) bool {
		for _, u := range v.winners() {
			if t, ok := b.RedeployTargets[u.ID]; ok && u.Pos != t {
				return false
			}
		}
		return true
	}
	timedOut := func(b *Battle, v *tickView) bool { return b.RedeployCounter > 2*b.Size }

	return &phaseMachine{rules: []phaseRule{
		{name: "annihilation", from: PhaseCombat, stage: stagePre, guard: andGuard(battleDecided, noWinner), to: PhaseGameOver},
		{name: "secure area", from: PhaseCombat, stage: stagePre, guard: andGuard(battleDecided, needsCleanup), to: PhaseCleaningUp},
		{name: "patch up", from: PhaseCombat, stage: stagePre, guard: andGuard(battleDecided, needsPatching), to: PhasePatchingUp, enter: startPatching},
		{name: "redeploy", from: PhaseCombat, stage: stagePre, guard: andGuard(battleDecided, highlight), to: PhaseRedeploying, enter: startRedeploy},
		{name: "victory", from: PhaseCombat, stage: stagePre, guard: battleDecided, to: PhaseGameOver},

		{name: "cleanup done, patch up", from: PhaseCleaningUp, stage: stagePost, guard: cleanedAnd(needsPatching), to: PhasePatchingUp, enter: startPatching},
		{name: "cleanup done, redeploy", from: PhaseCleaningUp, stage: stagePost, guard: cleanedAnd(highlight), to: PhaseRedeploying, enter: startRedeploy},
		{name: "cleanup done", from: PhaseCleaningUp, stage: stagePost, guard: cleanedAnd(always), to: PhaseGameOver},

		{name: "patched, redeploy", from: PhasePatchingUp, stage: stagePost, guard: patchedAnd(highlight), to: PhaseRedeploying, enter: resumeRedeploy},
		{name: "patched", from: PhasePatchingUp, stage: stagePost, guard: patchedAnd(always), to: PhaseGameOver},

		{name: "in position", from: PhaseRedeploying, stage: stagePost, guard: inPosition, to: PhaseCombat, enter: nextWave},
		{name: "redeploy timeout", from: PhaseRedeploying, stage: stagePost, guard: timedOut, to: PhaseCombat, enter: nextWave},
	}}
}

func andGuard(gs ...func(*Battle, *tickView) bool) func(*Battle, *tickView) bool {
	return func(b *Battle, v *tickView) bool {
		for _, g := range gs {
			if !g(b, v) {
				return false
			}
		}
		return true
	}
}

// advance fires at most one transition for the current phase and stage.
func (m *phaseMachine) advance(b *Battle, stage phaseStage, v *tickView) bool {
	for _, r := range m.rules {
		if r.from != b.Phase || r.stage != stage || !r.guard(b, v) {
			continue
		}
		if r.from == PhaseCombat {
			b.Winner, b.HasWinner = v.winner, v.hasWinner
		}
		b.Phase = r.to
		if r.enter != nil {
			r.enter(b, v)
		}
		msg := fmt.Sprintf("%s -> %s (%s)", r.from, r.to, r.name)
		if v.hasWinner {
			msg += ", team " + v.winner.String()
		}
		b.Log.Add(b.Turn, "", "", "phase", r.name, msg, 0)
		b.logger.Info("phase change",
			zap.String("battle", b.ID),
			zap.Int("turn", b.Turn),
			zap.Stringer("from", r.from),
			zap.Stringer("to", r.to),
			zap.String("rule", r.name),
		)
		return true
	}
	return false
}

func (b *Battle) corpsesRemain() bool {
	for _, u := range b.Units {
		if u.Alive && u.Arch == ArchCorpse {
			return true
		}
	}
	return false
}

func anyWounded(units []*Unit) bool {
	for _, u := range units {
		if u.Wounded() {
			return true
		}
	}
	return false
}

func medicsAndWounded(units []*Unit) bool {
	medic := false
	for _, u := range units {
		if u.Arch == ArchMedic {
			medic = true
			break
		}
	}
	return medic && anyWounded(units)
}
