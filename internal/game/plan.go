package game

import "fmt"

// PlanKind is the action a unit has committed to for the tick.
type PlanKind int

const (
	PlanHold PlanKind = iota
	PlanMove
	PlanAttack
	PlanGrenade
	PlanBackstab
	PlanHeal
)

func (k PlanKind) String() string {
	switch k {
	case PlanHold:
		return "hold"
	case PlanMove:
		return "move"
	case PlanAttack:
		return "attack"
	case PlanGrenade:
		return "grenade"
	case PlanBackstab:
		return "backstab"
	case PlanHeal:
		return "heal"
	}
	return "unknown"
}

// PatienceIntent is a side effect on a unit's patience counter that the
// resolver applies; decisions never write it directly.
type PatienceIntent int

const (
	PatienceKeep PatienceIntent = iota
	PatienceDecrement
	PatienceReset
)

// patienceFull is the value patience counters reset to.
const patienceFull = 3

// Plan is one unit's intent for a tick. To is used by move and grenade
// plans, Target by attack, backstab and heal.
type Plan struct {
	Kind   PlanKind
	To     Point
	Target string

	SpyPatience    PatienceIntent
	AmbushPatience PatienceIntent
}

// Hold keeps u where it is.
func Hold(u *Unit) Plan { return Plan{Kind: PlanHold, To: u.Pos} }

// MoveTo steps to an adjacent cell (or stays when p is the current cell).
func MoveTo(p Point) Plan { return Plan{Kind: PlanMove, To: p} }

// Attack targets a unit by id.
func Attack(id string) Plan { return Plan{Kind: PlanAttack, Target: id} }

// Grenade throws at a cell.
func Grenade(p Point) Plan { return Plan{Kind: PlanGrenade, To: p} }

// Backstab is a spy's strike on an adjacent unit.
func Backstab(id string) Plan { return Plan{Kind: PlanBackstab, Target: id} }

// Heal is a medic's treatment of a friend.
func Heal(id string) Plan { return Plan{Kind: PlanHeal, Target: id} }

// withSpyPatience returns a copy of p carrying a spy patience intent.
func (p Plan) withSpyPatience(i PatienceIntent) Plan {
	p.SpyPatience = i
	return p
}

// withAmbushPatience returns a copy of p carrying an ambush patience intent.
func (p Plan) withAmbushPatience(i PatienceIntent) Plan {
	p.AmbushPatience = i
	return p
}

func (p Plan) String() string {
	switch p.Kind {
	case PlanMove, PlanGrenade:
		return fmt.Sprintf("%s %s", p.Kind, p.To)
	case PlanAttack, PlanBackstab, PlanHeal:
		return fmt.Sprintf("%s %s", p.Kind, p.Target)
	}
	return p.Kind.String()
}

// applyPatience folds a plan's patience intents into the unit.
func (u *Unit) applyPatience(p Plan) {
	apply := func(v *int, i PatienceIntent) {
		switch i {
		case PatienceDecrement:
			if *v > 0 {
				*v--
			}
		case PatienceReset:
			*v = patienceFull
		}
	}
	apply(&u.Patience, p.SpyPatience)
	apply(&u.AmbushPatience, p.AmbushPatience)
}
