package game

import "fmt"

// historyLen is how many recent positions a fighter remembers for stalemate detection.
const historyLen = 5

// Team is a unit's allegiance. Walls and corpses carry their own pseudo-teams.
type Team int

const (
	TeamA        Team = iota
	TeamB             // the opposing side
	TeamObstacle      // walls
	TeamCorpse        // corpses left behind by the dead
)

func (t Team) String() string {
	switch t {
	case TeamA:
		return "A"
	case TeamB:
		return "B"
	case TeamObstacle:
		return "OBSTACLE"
	case TeamCorpse:
		return "CORPSE"
	default:
		return "unknown"
	}
}

// Combatant reports whether the team is one of the two fighting sides.
func (t Team) Combatant() bool { return t == TeamA || t == TeamB }

// Opponent returns the other fighting side. Pseudo-teams return themselves.
func (t Team) Opponent() Team {
	switch t {
	case TeamA:
		return TeamB
	case TeamB:
		return TeamA
	default:
		return t
	}
}

// ParseTeam accepts "A" or "B".
func ParseTeam(s string) (Team, error) {
	switch s {
	case "A", "a":
		return TeamA, nil
	case "B", "b":
		return TeamB, nil
	}
	return TeamA, fmt.Errorf("unknown team %q", s)
}

// Archetype is the fixed role of a unit.
type Archetype int

const (
	ArchSoldier Archetype = iota
	ArchCivilian
	ArchRifle
	ArchSniper
	ArchMedic
	ArchGrenadier
	ArchGeneral
	ArchSpy
	ArchCommando
	ArchMarksman
	ArchWall
	ArchCorpse
	archetypeCount
)

var archetypeNames = [archetypeCount]string{
	ArchSoldier:   "mil",
	ArchCivilian:  "civ",
	ArchRifle:     "rifle",
	ArchSniper:    "sniper",
	ArchMedic:     "medic",
	ArchGrenadier: "gren",
	ArchGeneral:   "general",
	ArchSpy:       "spy",
	ArchCommando:  "commando",
	ArchMarksman:  "marksman",
	ArchWall:      "wall",
	ArchCorpse:    "corpse",
}

// String returns the short id base used in unit ids ("mil", "gren", ...).
func (a Archetype) String() string {
	if a < 0 || a >= archetypeCount {
		return "unit"
	}
	return archetypeNames[a]
}

// ParseArchetype maps an id base back to its archetype.
func ParseArchetype(s string) (Archetype, error) {
	for i, n := range archetypeNames {
		if n == s {
			return Archetype(i), nil
		}
	}
	switch s {
	case "soldier":
		return ArchSoldier, nil
	case "civilian":
		return ArchCivilian, nil
	case "grenadier":
		return ArchGrenadier, nil
	}
	return ArchSoldier, fmt.Errorf("%w: %q", ErrUnknownArchetype, s)
}

// Obstacle reports whether the archetype is a destructible obstacle.
func (a Archetype) Obstacle() bool { return a == ArchWall || a == ArchCorpse }

// Role groups archetypes for formation placement.
type Role int

const (
	RoleSupport Role = iota
	RoleFrontline
	RoleRangedSupport
)

// Role returns the formation role of the archetype.
func (a Archetype) Role() Role {
	switch a {
	case ArchCommando, ArchSoldier, ArchRifle, ArchGrenadier:
		return RoleFrontline
	case ArchSniper, ArchMarksman:
		return RoleRangedSupport
	default:
		return RoleSupport
	}
}

// Value weights a unit's hp in strength calculations.
func (a Archetype) Value() float64 {
	switch a {
	case ArchGeneral:
		return 5
	case ArchCommando:
		return 4
	case ArchSniper, ArchGrenadier:
		return 3
	case ArchMarksman:
		return 2.5
	case ArchRifle, ArchMedic:
		return 2
	case ArchSoldier:
		return 1.5
	case ArchSpy:
		return 1
	case ArchCivilian:
		return 0.25
	default:
		return 1
	}
}

// Unit is one piece on the board: a fighter, a wall or a corpse.
type Unit struct {
	ID       string
	Arch     Archetype
	Pos      Point
	Team     Team // effective allegiance, used for targeting
	RealTeam Team // true allegiance; differs from Team only for undercover spies
	HP       int
	MaxHP    int
	Alive    bool

	Cooldown       int // sniper shot
	AttackCooldown int
	MoveCooldown   int
	HealCooldown   int
	GrenCooldown   int
	SpyCooldown    int

	HealUses          int
	LastBandageTurn   int
	SpyRevealed       bool
	Patience          int
	AmbushPatience    int
	History           []Point
	LastOffensiveTurn int

	// Plan is this tick's intent, written only by planning.
	Plan Plan

	deathReported bool
}

// Wounded reports hp below max.
func (u *Unit) Wounded() bool { return u.HP < u.MaxHP }

// Undercover reports an unrevealed spy.
func (u *Unit) Undercover() bool { return u.Arch == ArchSpy && !u.SpyRevealed }

// Fighter reports a living unit on one of the two sides.
func (u *Unit) Fighter() bool { return u.Alive && u.Team.Combatant() }

func (u *Unit) String() string {
	return fmt.Sprintf("%s@%s hp=%d/%d", u.ID, u.Pos, u.HP, u.MaxHP)
}

func (u *Unit) pushHistory() {
	u.History = append(u.History, u.Pos)
	if len(u.History) > historyLen {
		u.History = u.History[len(u.History)-historyLen:]
	}
}

func (u *Unit) tickCooldowns() {
	dec := func(v *int) {
		if *v > 0 {
			*v--
		}
	}
	dec(&u.Cooldown)
	dec(&u.AttackCooldown)
	dec(&u.MoveCooldown)
	dec(&u.HealCooldown)
	dec(&u.GrenCooldown)
	dec(&u.SpyCooldown)
}

// AuthorityRank orders targets by importance; lower is more valuable.
// Undercover spies and nil units are effectively unrankable.
func AuthorityRank(u *Unit) float64 {
	if u == nil {
		return 999
	}
	switch u.Arch {
	case ArchGeneral:
		return 1
	case ArchCommando:
		return 1.5
	case ArchSniper:
		return 2
	case ArchMarksman:
		return 2.5
	case ArchSpy:
		if u.SpyRevealed {
			return 3
		}
		return 999
	case ArchGrenadier:
		return 4
	case ArchRifle:
		return 5
	case ArchMedic:
		return 6
	case ArchSoldier:
		return 7
	case ArchCivilian:
		return 8
	default:
		return 9
	}
}
