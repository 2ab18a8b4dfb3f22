package game

import "fmt"

// EffectKind classifies a visual event produced during resolution.
type EffectKind int

const (
	EffectShot EffectKind = iota
	EffectExplosion
	EffectDamage
	EffectDeath
	EffectHeal
	EffectBandage
)

// Effect is a one-tick visual for the viewer. Shots use From and At; the
// rest only At.
type Effect struct {
	Kind EffectKind
	From Point
	At   Point
	Team Team
}

// damageMap accumulates incoming damage per target id.
type damageMap struct {
	amount map[string]int
}

func newDamageMap() *damageMap { return &damageMap{amount: make(map[string]int)} }

func (d *damageMap) add(id string, dmg int) { d.amount[id] += dmg }

// roll returns a uniform integer in the inclusive range.
func (b *Battle) roll(r DamageRange) int {
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + b.rng.Intn(r.Max-r.Min+1)
}

func (b *Battle) effect(kind EffectKind, from, at Point, team Team) {
	b.Effects = append(b.Effects, Effect{Kind: kind, From: from, At: at, Team: team})
}

// strike rolls one hit from u on t, applies cover and books it.
func (b *Battle) strike(u, t *Unit, r DamageRange, verb string, incoming *damageMap) int {
	dmg := b.hitDamage(u, t, b.roll(r))
	incoming.add(t.ID, dmg)
	b.effect(EffectShot, u.Pos, t.Pos, u.Team)
	b.Log.Add(b.Turn, u.ID, u.Team.String(), "combat", verb, fmt.Sprintf("%s %s %s for %d", u.ID, verb, t.ID, dmg), float64(dmg))
	return dmg
}

// collectDamage walks the living units' plans and sums every hit this tick.
// Nothing takes effect until applyDamage.
func (b *Battle) collectDamage(alive []*Unit) *damageMap {
	cfg := b.cfg.Get()
	incoming := newDamageMap()
	for _, u := range alive {
		switch p := u.Plan; p.Kind {
		case PlanAttack:
			b.resolveAttack(u, p, incoming)
		case PlanGrenade:
			dmg := b.roll(cfg.Grenadier.Damage)
			hit := 0
			for _, t := range b.blastVictims(p.To) {
				if t != u {
					incoming.add(t.ID, dmg)
					hit++
				}
			}
			u.GrenCooldown = cfg.Grenadier.Cooldown
			u.LastOffensiveTurn = b.Turn
			b.effect(EffectShot, u.Pos, p.To, u.Team)
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					if c := (Point{p.To.X + dx, p.To.Y + dy}); b.InBounds(c) {
						b.effect(EffectExplosion, c, c, u.Team)
					}
				}
			}
			b.Log.Add(b.Turn, u.ID, u.Team.String(), "combat", "grenade", fmt.Sprintf("%s throws grenade at %s, %d each on %d", u.ID, p.To, dmg, hit), float64(dmg*hit))
		case PlanBackstab:
			b.resolveBackstab(u, p, incoming)
		}
	}
	return incoming
}

func (b *Battle) resolveAttack(u *Unit, p Plan, incoming *damageMap) {
	cfg := b.cfg.Get()
	tgt := b.Unit(p.Target)
	if tgt == nil {
		return
	}
	// Grenadiers have no melee.
	if u.Arch == ArchGrenadier {
		return
	}
	u.LastOffensiveTurn = b.Turn

	if b.Phase == PhaseCombat && !tgt.Arch.Obstacle() {
		switch u.Arch {
		case ArchCommando:
			targets := b.adjacentEnemiesByHP(u, cfg.Commando.MaxTargets)
			collateral := roundHalfUp(float64(cfg.Commando.Damage.Min) * float64(cfg.Commando.CollateralPercent) / 100)
			for _, t := range targets {
				b.strike(u, t, cfg.Commando.Damage, "blasts", incoming)
				if collateral <= 0 {
					continue
				}
				if cover := b.adjacentDestructibles(t); len(cover) > 0 {
					byHP(cover)
					incoming.add(cover[0].ID, collateral)
					b.Log.Add(b.Turn, u.ID, u.Team.String(), "combat", "collateral",
						fmt.Sprintf("%s hits %s's cover %s for %d", u.ID, t.ID, cover[0].ID, collateral), float64(collateral))
				}
			}
			if len(targets) > 0 {
				u.AttackCooldown = cfg.Commando.AttackCooldown
			}
			return
		case ArchRifle:
			for _, t := range b.adjacentEnemiesByHP(u, cfg.Rifle.MaxTargets) {
				b.strike(u, t, cfg.Rifle.Damage, "attacks", incoming)
			}
			return
		}
	}

	r := cfg.Generic
	switch u.Arch {
	case ArchSniper:
		r = cfg.Sniper.Damage
	case ArchMarksman:
		r = cfg.Marksman.Damage
	}
	b.strike(u, tgt, r, "attacks", incoming)
	if u.Arch == ArchSniper {
		u.Cooldown = cfg.Sniper.Cooldown
	}
}

// adjacentEnemiesByHP returns up to n adjacent enemies, weakest first.
func (b *Battle) adjacentEnemiesByHP(u *Unit, n int) []*Unit {
	adj := adjacentTo(b.Enemies(u), u.Pos)
	byHP(adj)
	if len(adj) > n {
		adj = adj[:max(n, 0)]
	}
	return adj
}

func (b *Battle) resolveBackstab(u *Unit, p Plan, incoming *damageMap) {
	cfg := b.cfg.Get()
	tgt := b.Unit(p.Target)
	if tgt == nil {
		return
	}
	b.strike(u, tgt, cfg.Spy.Backstab, "backstabs", incoming)
	u.SpyCooldown = cfg.Spy.Cooldown
	u.LastOffensiveTurn = b.Turn

	// An undercover spy wears the target's colours and counts itself.
	witnesses := 0
	for _, w := range b.Units {
		if w.Alive && w != tgt && w.Team == tgt.Team && Chebyshev(w.Pos, u.Pos) <= spyWitnessRange {
			witnesses++
		}
	}
	if b.rng.Float64() < catchChance(witnesses) && !u.SpyRevealed {
		b.revealSpy(u, "caught", fmt.Sprintf("%s caught by %d witnesses", u.ID, witnesses))
	}
}

// revealSpy flips a spy to its real colours and marks it for the enemy.
func (b *Battle) revealSpy(u *Unit, key, msg string) {
	u.SpyRevealed = true
	u.Team = u.RealTeam
	b.teamState(u.Team.Opponent()).PriorityTarget = u.ID
	b.Log.Add(b.Turn, u.ID, u.Team.String(), "spy", key, msg, 0)
}

// applyDamage subtracts the tick's accumulated damage from living units.
func (b *Battle) applyDamage(incoming *damageMap) {
	for _, u := range b.Units {
		if !u.Alive {
			continue
		}
		dmg := incoming.amount[u.ID]
		if dmg <= 0 {
			continue
		}
		u.HP = max(0, u.HP-dmg)
		b.effect(EffectDamage, u.Pos, u.Pos, u.Team)
		b.Log.Add(b.Turn, u.ID, u.Team.String(), "combat", "damage", fmt.Sprintf("%s takes %d -> %d hp", u.ID, dmg, u.HP), float64(dmg))
	}
}
