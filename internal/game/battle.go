package game

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Placement errors returned by AddUnit.
var (
	ErrOutOfBounds      = errors.New("cell out of bounds")
	ErrOccupied         = errors.New("cell occupied")
	ErrOutsideZone      = errors.New("cell outside team zone")
	ErrDuplicateGeneral = errors.New("team already has a general")
	ErrUnknownArchetype = errors.New("unknown archetype")
)

// DefaultBoardSize is the side length of a fresh board.
const DefaultBoardSize = 9

// TeamState is the shared doctrine of one side.
type TeamState struct {
	Strategy        Strategy
	Prev            Strategy
	PriorityTarget  string
	AmbushTarget    string
	OverwhelmTarget string
}

// LayoutUnit is a placement snapshot used to reset a battle and to recall
// each side's starting strength.
type LayoutUnit struct {
	Arch     Archetype
	Pos      Point
	Team     Team
	RealTeam Team
}

// Battle is one match: the board, every unit on it and all shared team
// state. Nothing in the package keeps global state, so battles can run side
// by side.
type Battle struct {
	ID    string
	Size  int
	Units []*Unit
	Turn  int
	Phase Phase

	Casualties      [2]int
	RedeployTargets map[string]Point
	RedeployCounter int
	Winner          Team
	HasWinner       bool
	Waves           int // completed battle-redeploy cycles

	// Effects are the visuals produced by the last tick.
	Effects []Effect

	ZoneScheme    ZoneScheme
	EnforceZones  bool
	Corpses       bool
	SecureArea    bool
	HighlightZone bool

	Log *SimLog

	teams    [2]TeamState
	cfg      *TunableStore
	rng      *rand.Rand
	logger   *zap.Logger
	deciders map[Archetype]DecideFunc
	doctrine *Doctrine
	layout   []LayoutUnit
	fsm      *phaseMachine
	nextID   int // only grows until the board is cleared
}

// optionKind controls the pass in which an option is applied.
type optionKind int

const (
	optInfra optionKind = iota // board, seed, flags and config; applied first
	optUnits                   // unit placement, once the board exists
)

// Option configures a Battle during construction.
type Option struct {
	kind optionKind
	fn   func(*Battle) error
}

func infra(fn func(*Battle)) Option {
	return Option{optInfra, func(b *Battle) error { fn(b); return nil }}
}

// WithBoardSize sets the board side length.
func WithBoardSize(n int) Option { return infra(func(b *Battle) { b.Size = max(n, 1) }) }

// WithSeed makes every roll in the battle reproducible.
func WithSeed(seed int64) Option {
	return infra(func(b *Battle) {
		b.rng = rand.New(rand.NewSource(seed)) // #nosec G404 -- simulation rolls, not security
	})
}

// WithZoneScheme selects the home-zone layout.
func WithZoneScheme(z ZoneScheme) Option { return infra(func(b *Battle) { b.ZoneScheme = z }) }

// WithEnforceZones restricts placement of fighters to their home zones.
func WithEnforceZones(on bool) Option { return infra(func(b *Battle) { b.EnforceZones = on }) }

// WithCorpses leaves a destructible corpse where a unit dies.
func WithCorpses(on bool) Option { return infra(func(b *Battle) { b.Corpses = on }) }

// WithSecureArea makes the winners clear corpses before standing down.
func WithSecureArea(on bool) Option { return infra(func(b *Battle) { b.SecureArea = on }) }

// WithHighlightZone sends the winners back into formation after a battle.
func WithHighlightZone(on bool) Option { return infra(func(b *Battle) { b.HighlightZone = on }) }

// WithTunables shares a tunables store with the battle.
func WithTunables(s *TunableStore) Option { return infra(func(b *Battle) { b.cfg = s }) }

// WithLogger routes diagnostics to l.
func WithLogger(l *zap.Logger) Option { return infra(func(b *Battle) { b.logger = l }) }

// WithVerbose records per-unit plan entries in the SimLog.
func WithVerbose(v bool) Option { return infra(func(b *Battle) { b.Log = NewSimLog(v) }) }

// WithStrategy sets a side's opening strategy.
func WithStrategy(t Team, s Strategy) Option {
	return infra(func(b *Battle) {
		if t.Combatant() {
			b.teams[t] = TeamState{Strategy: s, Prev: s}
		}
	})
}

// WithDecider overrides the decision function for one archetype.
func WithDecider(a Archetype, fn DecideFunc) Option {
	return infra(func(b *Battle) { b.deciders[a] = fn })
}

// WithUnit places a unit at construction time.
func WithUnit(x, y int, a Archetype, t Team) Option {
	return Option{optUnits, func(b *Battle) error {
		_, err := b.AddUnit(x, y, a, t)
		return err
	}}
}

// WithScenario places a catalogue scenario, replacing size and strategies.
func WithScenario(name string) Option {
	return Option{optUnits, func(b *Battle) error { return b.LoadScenario(name) }}
}

// NewBattle builds a battle in two ordered passes: infrastructure first,
// then unit placement.
func NewBattle(opts ...Option) (*Battle, error) {
	b := &Battle{
		ID:              uuid.NewString(),
		Size:            DefaultBoardSize,
		Phase:           PhaseCombat,
		RedeployTargets: make(map[string]Point),
		Log:             NewSimLog(false),
		rng:             rand.New(rand.NewSource(1)), // #nosec G404 -- default seed
		logger:          zap.NewNop(),
		deciders:        defaultDeciders(),
	}
	b.teams[TeamA] = TeamState{Strategy: StrategyBalanced, Prev: StrategyBalanced}
	b.teams[TeamB] = TeamState{Strategy: StrategyAggressiveSwarm, Prev: StrategyAggressiveSwarm}

	for _, o := range opts {
		if o.kind == optInfra {
			if err := o.fn(b); err != nil {
				return nil, err
			}
		}
	}
	if b.cfg == nil {
		b.cfg = NewTunableStore(DefaultTunables())
	}
	doc, err := NewDoctrine(b.cfg.Get().Doctrine, b.logger)
	if err != nil {
		return nil, err
	}
	b.doctrine = doc
	b.fsm = newPhaseMachine()

	for _, o := range opts {
		if o.kind == optUnits {
			if err := o.fn(b); err != nil {
				return nil, err
			}
		}
	}
	return b, nil
}

// Tunables returns the live configuration snapshot.
func (b *Battle) Tunables() *Tunables { return b.cfg.Get() }

// SetTunables swaps the live configuration. Placed units keep their max hp.
func (b *Battle) SetTunables(t Tunables) { b.cfg.Set(t) }

// Strategy returns a side's current strategy. Pseudo-teams fight Balanced.
func (b *Battle) Strategy(t Team) Strategy {
	if !t.Combatant() {
		return StrategyBalanced
	}
	return b.teams[t].Strategy
}

// TeamState returns a copy of a side's doctrine.
func (b *Battle) TeamState(t Team) TeamState { return *b.teamState(t) }

// SetStrategy changes a side's strategy, remembering the previous one.
func (b *Battle) SetStrategy(t Team, s Strategy) {
	if !t.Combatant() {
		return
	}
	ts := &b.teams[t]
	if ts.Strategy == s {
		return
	}
	ts.Prev = ts.Strategy
	ts.Strategy = s
}

// teamState returns the live doctrine of a side. Pseudo-teams get a
// throwaway value.
func (b *Battle) teamState(t Team) *TeamState {
	if !t.Combatant() {
		return &TeamState{}
	}
	return &b.teams[t]
}

// AddUnit places a new unit. Spies are given the opposing side's colours
// and must start inside that side's zone when zones are enforced.
func (b *Battle) AddUnit(x, y int, a Archetype, team Team) (*Unit, error) {
	p := Point{x, y}
	if a < 0 || a >= archetypeCount {
		return nil, fmt.Errorf("%w: %d", ErrUnknownArchetype, a)
	}
	if !b.InBounds(p) {
		return nil, fmt.Errorf("%w: %s", ErrOutOfBounds, p)
	}
	if b.UnitAt(p) != nil {
		return nil, fmt.Errorf("%w: %s", ErrOccupied, p)
	}
	display := team
	if a == ArchSpy {
		display = team.Opponent()
	}
	if b.EnforceZones && !a.Obstacle() && !b.ZoneFor(display).Contains(p) {
		return nil, fmt.Errorf("%w: %s %s at %s", ErrOutsideZone, team, a, p)
	}
	if a == ArchGeneral {
		for _, o := range b.Units {
			if o.Alive && o.Arch == ArchGeneral && o.RealTeam == team {
				return nil, fmt.Errorf("%w: team %s", ErrDuplicateGeneral, team)
			}
		}
	}

	realTeam := team
	switch a {
	case ArchWall:
		realTeam, display = TeamObstacle, TeamObstacle
	case ArchCorpse:
		realTeam, display = TeamCorpse, TeamCorpse
	}
	cfg := b.cfg.Get()
	hp := cfg.MaxHP(a)
	b.nextID++
	u := &Unit{
		ID:              fmt.Sprintf("%s_%d", a, b.nextID),
		Arch:            a,
		Pos:             p,
		Team:            display,
		RealTeam:        realTeam,
		HP:              hp,
		MaxHP:           hp,
		Alive:           true,
		HealUses:        cfg.Bandages(a),
		LastBandageTurn: -9999,
		AmbushPatience:  patienceFull,
	}
	if a == ArchSpy {
		u.Patience = patienceFull
	}
	b.Units = append(b.Units, u)
	return u, nil
}

// RemoveUnitAt deletes the living unit on (x, y), if any.
func (b *Battle) RemoveUnitAt(x, y int) bool {
	p := Point{x, y}
	for i, u := range b.Units {
		if u.Alive && u.Pos == p {
			b.Units = append(b.Units[:i], b.Units[i+1:]...)
			b.Log.Add(b.Turn, u.ID, u.Team.String(), "setup", "removed", fmt.Sprintf("removed at %s", p), 0)
			return true
		}
	}
	return false
}

// SaveLayout snapshots the current placement of living units.
func (b *Battle) SaveLayout() {
	b.layout = b.layout[:0]
	for _, u := range b.Units {
		if u.Alive {
			b.layout = append(b.layout, LayoutUnit{Arch: u.Arch, Pos: u.Pos, Team: u.Team, RealTeam: u.RealTeam})
		}
	}
}

// Layout returns the saved placement snapshot.
func (b *Battle) Layout() []LayoutUnit { return b.layout }

// Reset rebuilds the board from the saved layout with fresh units.
func (b *Battle) Reset() error {
	layout := append([]LayoutUnit(nil), b.layout...)
	b.Units = nil
	b.nextID = 0
	b.Turn = 0
	b.Phase = PhaseCombat
	b.Casualties = [2]int{}
	b.RedeployTargets = make(map[string]Point)
	b.RedeployCounter = 0
	b.HasWinner = false
	b.Waves = 0
	b.Effects = nil
	for i := range b.teams {
		b.teams[i].PriorityTarget, b.teams[i].AmbushTarget, b.teams[i].OverwhelmTarget = "", "", ""
	}
	enforce := b.EnforceZones
	b.EnforceZones = false
	defer func() { b.EnforceZones = enforce }()
	for _, l := range layout {
		team := l.RealTeam
		if !team.Combatant() {
			team = TeamA
		}
		if _, err := b.AddUnit(l.Pos.X, l.Pos.Y, l.Arch, team); err != nil {
			return fmt.Errorf("reset %s at %s: %w", l.Arch, l.Pos, err)
		}
	}
	b.layout = layout
	return nil
}

// initialCount counts saved-layout entries matching keep, 0 without a layout.
func (b *Battle) initialCount(keep func(LayoutUnit) bool) int {
	n := 0
	for _, l := range b.layout {
		if keep(l) {
			n++
		}
	}
	return n
}

// AliveByTeam returns the living units showing team t.
func (b *Battle) AliveByTeam(t Team) []*Unit {
	var out []*Unit
	for _, u := range b.Units {
		if u.Alive && u.Team == t {
			out = append(out, u)
		}
	}
	return out
}

// logAI records a decision-layer note.
func (b *Battle) logAI(u *Unit, key, msg string) {
	b.Log.Add(b.Turn, u.ID, u.Team.String(), "ai", key, msg, 0)
}

// String renders the board as a grid of archetype initials, for test logs.
func (b *Battle) String() string {
	var sb strings.Builder
	for y := 0; y < b.Size; y++ {
		for x := 0; x < b.Size; x++ {
			u := b.UnitAt(Point{x, y})
			switch {
			case u == nil:
				sb.WriteByte('.')
			case u.Arch.Obstacle():
				sb.WriteByte('#')
			case u.RealTeam == TeamA:
				sb.WriteByte(strings.ToUpper(u.Arch.String())[0])
			default:
				sb.WriteByte(u.Arch.String()[0])
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
