package game

import (
	"fmt"

	"go.uber.org/zap"
)

// Tick plans and resolves one turn. The first tick snapshots the starting
// layout if none was saved.
func (b *Battle) Tick() {
	if b.layout == nil {
		b.SaveLayout()
	}
	b.Plan()
	b.Step()
}

// Plan fills every living unit's plan for the coming tick using the
// planner of the current phase. Units without orders hold.
func (b *Battle) Plan() {
	for _, u := range b.Units {
		if u.Alive {
			u.Plan = Hold(u)
		}
	}
	switch b.Phase {
	case PhaseCombat:
		b.PlanCombat()
	case PhaseCleaningUp:
		b.PlanCleaningUp()
	case PhasePatchingUp:
		b.PlanPatchingUp()
	case PhaseRedeploying:
		b.PlanRedeploying()
	}
}

// PlanCombat runs the generals' doctrine review, then asks each fighter's
// decision function for a plan. Stalemated fighters are forced to attack.
func (b *Battle) PlanCombat() {
	b.reviewDoctrine()
	for _, u := range b.Units {
		if !u.Alive || !u.Team.Combatant() {
			continue
		}
		if b.IsStalemated(u) {
			b.logAI(u, "stalemate", "no progress, forcing an attack")
			u.Plan = aggressiveSwarmDecide(b, u)
		} else {
			decide := b.deciders[u.Arch]
			if decide == nil {
				decide = strategyDecide
			}
			u.Plan = decide(b, u)
		}
		b.Log.AddVerbose(b.Turn, u.ID, u.Team.String(), "ai", "plan", u.Plan.String(), 0)
	}
}

// Step resolves the plans already on the board and advances one turn.
// Plans are read as a whole before anything is applied, so every unit acts
// on the same board.
func (b *Battle) Step() {
	b.Turn++
	b.Effects = b.Effects[:0]
	view := newTickView(b)

	if b.Phase == PhaseCombat {
		b.fsm.advance(b, stagePre, view)
	}
	if b.Phase == PhaseGameOver {
		return
	}

	for _, u := range view.alive {
		u.applyPatience(u.Plan)
	}

	incoming := b.collectDamage(view.alive)
	b.applyDamage(incoming)
	b.applyMoves(view.alive)
	b.processDeaths()
	b.exposeSpies()
	b.applyHeals()
	b.applyBandages()
	b.reportGeneralDeaths()

	b.fsm.advance(b, stagePost, view)

	for _, u := range b.Units {
		u.tickCooldowns()
	}
	for _, u := range view.fighters {
		u.pushHistory()
	}
}

type pendingMove struct {
	u       *Unit
	to      Point
	blocked bool
}

// applyMoves moves units simultaneously. A unit may step into a cell whose
// occupant is leaving this tick, so swaps and chains succeed; a contested
// empty cell goes to the first claimant in board order.
func (b *Battle) applyMoves(alive []*Unit) {
	var moves []*pendingMove
	byUnit := make(map[*Unit]*pendingMove)
	claimed := make(map[Point]bool)
	for _, u := range alive {
		p := u.Plan
		if p.Kind != PlanMove || p.To == u.Pos {
			continue
		}
		m := &pendingMove{u: u, to: p.To}
		if !b.InBounds(p.To) || claimed[p.To] {
			m.blocked = true
		} else {
			claimed[p.To] = true
		}
		moves = append(moves, m)
		byUnit[u] = m
	}
	if len(moves) == 0 {
		return
	}

	at := make(map[Point]*Unit, len(alive))
	for _, u := range alive {
		at[u.Pos] = u
	}
	// Blocking propagates back along chains until nothing changes.
	for changed := true; changed; {
		changed = false
		for _, m := range moves {
			if m.blocked {
				continue
			}
			occ, ok := at[m.to]
			if !ok || occ == m.u {
				continue
			}
			if om := byUnit[occ]; om == nil || om.blocked {
				m.blocked = true
				changed = true
			}
		}
	}

	cfg := b.cfg.Get()
	for _, m := range moves {
		if m.blocked {
			b.Log.AddVerbose(b.Turn, m.u.ID, m.u.Team.String(), "move", "blocked", fmt.Sprintf("%s blocked at %s", m.u.ID, m.to), 0)
			continue
		}
		from := m.u.Pos
		m.u.Pos = m.to
		if m.u.Arch == ArchCommando {
			m.u.MoveCooldown = cfg.Commando.MoveCooldown
		}
		b.Log.AddVerbose(b.Turn, m.u.ID, m.u.Team.String(), "move", "step", fmt.Sprintf("%s -> %s", from, m.to), 0)
	}
}

// processDeaths retires units at 0 hp, optionally leaving a corpse.
func (b *Battle) processDeaths() {
	cfg := b.cfg.Get()
	for _, u := range append([]*Unit(nil), b.Units...) {
		if !u.Alive || u.HP > 0 {
			continue
		}
		u.Alive = false
		if u.Team.Combatant() {
			b.Casualties[u.Team]++
		}
		b.effect(EffectDeath, u.Pos, u.Pos, u.Team)
		b.Log.Add(b.Turn, u.ID, u.Team.String(), "death", "died", u.ID+" died at "+u.Pos.String(), 0)
		if b.Corpses && !u.Arch.Obstacle() {
			b.Units = append(b.Units, &Unit{
				ID:              "corpse_" + u.ID,
				Arch:            ArchCorpse,
				Pos:             u.Pos,
				Team:            TeamCorpse,
				RealTeam:        TeamCorpse,
				HP:              cfg.HP.Corpse,
				MaxHP:           cfg.HP.Corpse,
				Alive:           true,
				LastBandageTurn: -9999,
			})
			b.Log.Add(b.Turn, "corpse_"+u.ID, TeamCorpse.String(), "death", "corpse", "corpse left at "+u.Pos.String(), 0)
		}
	}
}

// exposeSpies reveals undercover spies whose cover no longer makes sense:
// their own side has nobody left but spies, or the side they pose as is gone.
func (b *Battle) exposeSpies() {
	for _, spy := range b.Units {
		if !spy.Alive || !spy.Undercover() {
			continue
		}
		teammates, hosts := false, false
		for _, o := range b.Units {
			if !o.Alive || o.Arch == ArchCorpse {
				continue
			}
			if o.RealTeam == spy.RealTeam && o.Arch != ArchSpy {
				teammates = true
			}
			if o.RealTeam == spy.Team {
				hosts = true
			}
		}
		switch {
		case !teammates:
			b.revealSpy(spy, "last_stand", fmt.Sprintf("%s exposed, team %s has no one else left", spy.ID, spy.RealTeam))
		case !hosts:
			b.revealSpy(spy, "cover_blown", fmt.Sprintf("%s exposed, team %s is gone", spy.ID, spy.Team))
		}
	}
}

// applyHeals resolves medic treatment. Medics treating medics heal half.
func (b *Battle) applyHeals() {
	cfg := b.cfg.Get()
	for _, u := range b.Units {
		if !u.Alive || u.Arch != ArchMedic || u.Plan.Kind != PlanHeal || u.HealCooldown != 0 {
			continue
		}
		t := b.Unit(u.Plan.Target)
		if t == nil || !t.Wounded() {
			continue
		}
		amt := b.roll(cfg.Medic.Heal)
		if t.Arch == ArchMedic {
			amt = roundHalfUp(float64(amt) / 2)
		}
		t.HP = min(t.MaxHP, t.HP+amt)
		u.HealCooldown = cfg.Medic.HealCooldown
		b.effect(EffectHeal, t.Pos, t.Pos, t.Team)
		b.Log.Add(b.Turn, u.ID, u.Team.String(), "heal", "treat", fmt.Sprintf("%s heals %s for %d", u.ID, t.ID, amt), float64(amt))
	}
}

// applyBandages spends one bandage per carrier per turn. Medics only treat
// themselves; line troops patch up the weakest wounded neighbour first.
func (b *Battle) applyBandages() {
	for _, u := range b.Units {
		if !u.Alive || u.HealUses <= 0 || u.LastBandageTurn == b.Turn {
			continue
		}
		switch u.Arch {
		case ArchMedic:
			if u.Wounded() {
				b.bandage(u, u)
			}
		case ArchSoldier, ArchRifle, ArchGeneral, ArchCommando:
			var adj []*Unit
			for _, o := range b.Units {
				if o.Alive && o != u && o.Team == u.Team && Adjacent(o.Pos, u.Pos) && o.Wounded() {
					adj = append(adj, o)
				}
			}
			if t := weakest(adj); t != nil {
				b.bandage(u, t)
			} else if u.Wounded() {
				b.bandage(u, u)
			}
		}
	}
}

func (b *Battle) bandage(u, t *Unit) {
	amt := b.cfg.Get().BandageHeal
	t.HP = min(t.MaxHP, t.HP+amt)
	u.HealUses--
	u.LastBandageTurn = b.Turn
	b.effect(EffectBandage, t.Pos, t.Pos, t.Team)
	b.Log.Add(b.Turn, u.ID, u.Team.String(), "heal", "bandage",
		fmt.Sprintf("%s bandages %s (+%d), %d left", u.ID, t.ID, amt, u.HealUses), float64(amt))
}

// reportGeneralDeaths throws a side that lost its general into Aggressive
// Swarm, once per general.
func (b *Battle) reportGeneralDeaths() {
	for _, g := range b.Units {
		if g.Alive || g.Arch != ArchGeneral || g.deathReported {
			continue
		}
		g.deathReported = true
		if !g.RealTeam.Combatant() {
			continue
		}
		ts := &b.teams[g.RealTeam]
		old := ts.Strategy
		ts.Strategy, ts.Prev = StrategyAggressiveSwarm, StrategyAggressiveSwarm
		b.Log.Add(b.Turn, g.ID, g.RealTeam.String(), "strategy", "general_down",
			fmt.Sprintf("%s died, team %s switches to %s", g.ID, g.RealTeam, StrategyAggressiveSwarm), 0)
		b.logger.Info("general killed",
			zap.String("battle", b.ID),
			zap.Int("turn", b.Turn),
			zap.String("general", g.ID),
			zap.Stringer("from", old),
		)
	}
}
