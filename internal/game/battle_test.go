package game

import (
	"errors"
	"testing"
)

// testTunables fixes every roll and removes bandages so hp changes in
// resolution tests come from a single source.
func testTunables() Tunables {
	t := DefaultTunables()
	t.Generic = DamageRange{Min: 30, Max: 30}
	t.Rifle.Damage = DamageRange{Min: 30, Max: 30}
	t.Commando.Damage = DamageRange{Min: 60, Max: 60}
	t.Medic.Heal = DamageRange{Min: 30, Max: 30}
	t.Grenadier.Damage = DamageRange{Min: 80, Max: 80}
	t.Spy.Backstab = DamageRange{Min: 90, Max: 90}
	t.SoldierBandages = 0
	t.Medic.Bandages = 0
	t.Rifle.Bandages = 0
	t.Commando.Bandages = 0
	t.GeneralBandages = 0
	return t
}

func newTestBattle(t *testing.T, opts ...Option) *Battle {
	t.Helper()
	all := append([]Option{WithSeed(1), WithTunables(NewTunableStore(testTunables()))}, opts...)
	b, err := NewBattle(all...)
	if err != nil {
		t.Fatalf("NewBattle: %v", err)
	}
	return b
}

func mustAdd(t *testing.T, b *Battle, x, y int, a Archetype, team Team) *Unit {
	t.Helper()
	u, err := b.AddUnit(x, y, a, team)
	if err != nil {
		t.Fatalf("AddUnit(%d,%d,%s,%s): %v", x, y, a, team, err)
	}
	return u
}

func TestAddUnit_PlacementErrors(t *testing.T) {
	b := newTestBattle(t)
	mustAdd(t, b, 0, 0, ArchGeneral, TeamA)

	cases := []struct {
		name string
		x, y int
		a    Archetype
		team Team
		want error
	}{
		{"occupied", 0, 0, ArchSoldier, TeamA, ErrOccupied},
		{"out of bounds", 9, 0, ArchSoldier, TeamA, ErrOutOfBounds},
		{"negative", -1, 3, ArchSoldier, TeamB, ErrOutOfBounds},
		{"second general", 1, 1, ArchGeneral, TeamA, ErrDuplicateGeneral},
		{"bad archetype", 2, 2, Archetype(99), TeamA, ErrUnknownArchetype},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := b.AddUnit(tc.x, tc.y, tc.a, tc.team)
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}

	if _, err := b.AddUnit(8, 8, ArchGeneral, TeamB); err != nil {
		t.Fatalf("one general per side should be allowed: %v", err)
	}
}

func TestAddUnit_EnforcedZones(t *testing.T) {
	b := newTestBattle(t, WithEnforceZones(true))
	if _, err := b.AddUnit(8, 8, ArchSoldier, TeamA); !errors.Is(err, ErrOutsideZone) {
		t.Fatalf("team A in B's zone: err = %v, want ErrOutsideZone", err)
	}
	// Spies start among the side they pose as.
	if _, err := b.AddUnit(8, 8, ArchSpy, TeamA); err != nil {
		t.Fatalf("spy in enemy zone: %v", err)
	}
	if _, err := b.AddUnit(4, 4, ArchWall, TeamObstacle); err != nil {
		t.Fatalf("walls ignore zones: %v", err)
	}
}

func TestAddUnit_Identity(t *testing.T) {
	b := newTestBattle(t)
	spy := mustAdd(t, b, 1, 1, ArchSpy, TeamA)
	if spy.Team != TeamB || spy.RealTeam != TeamA {
		t.Fatalf("spy teams = %s/%s, want B/A", spy.Team, spy.RealTeam)
	}
	if !spy.Undercover() || spy.Patience != patienceFull {
		t.Fatalf("fresh spy should be undercover with full patience, got %+v", spy)
	}

	wall := mustAdd(t, b, 2, 2, ArchWall, TeamA)
	if wall.Team != TeamObstacle || wall.RealTeam != TeamObstacle {
		t.Fatalf("wall teams = %s/%s", wall.Team, wall.RealTeam)
	}
	if wall.HP != 500 {
		t.Fatalf("wall hp = %d, want 500", wall.HP)
	}

	g := mustAdd(t, b, 3, 3, ArchGeneral, TeamB)
	if g.ID != "general_3" {
		t.Fatalf("id = %q, want general_3", g.ID)
	}
	if g.HP != 200 || g.MaxHP != 200 {
		t.Fatalf("general hp = %d/%d", g.HP, g.MaxHP)
	}
}

func TestRemoveUnitAt(t *testing.T) {
	b := newTestBattle(t)
	mustAdd(t, b, 4, 4, ArchSoldier, TeamA)
	if !b.RemoveUnitAt(4, 4) {
		t.Fatal("expected removal")
	}
	if b.RemoveUnitAt(4, 4) {
		t.Fatal("second removal should report false")
	}
	if len(b.Units) != 0 {
		t.Fatalf("units = %d", len(b.Units))
	}
}

func TestAddUnit_IDsSurviveRemoval(t *testing.T) {
	b := newTestBattle(t)
	mustAdd(t, b, 0, 0, ArchSoldier, TeamA)
	target := mustAdd(t, b, 4, 4, ArchSoldier, TeamA)
	enemy := mustAdd(t, b, 5, 4, ArchSoldier, TeamB)
	if !b.RemoveUnitAt(0, 0) {
		t.Fatal("expected removal")
	}
	late := mustAdd(t, b, 6, 6, ArchSoldier, TeamA)
	if late.ID == target.ID || late.ID == enemy.ID {
		t.Fatalf("new unit reused id %s", late.ID)
	}
	if late.ID != "mil_4" {
		t.Fatalf("id = %s, want mil_4", late.ID)
	}

	enemy.Plan = Attack(target.ID)
	b.Step()

	if target.HP != 70 {
		t.Fatalf("target hp = %d, want 70", target.HP)
	}
	if late.HP != late.MaxHP {
		t.Fatalf("untargeted %s hp = %d, want %d", late.ID, late.HP, late.MaxHP)
	}
}

func TestReset_RestoresLayout(t *testing.T) {
	b := newTestBattle(t)
	mustAdd(t, b, 0, 0, ArchSoldier, TeamA)
	mustAdd(t, b, 8, 8, ArchSpy, TeamB)
	mustAdd(t, b, 4, 4, ArchWall, TeamObstacle)
	b.SaveLayout()

	b.Units[0].HP = 10
	b.Units[0].Pos = Point{3, 3}
	b.Turn = 40
	b.Phase = PhaseGameOver

	if err := b.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if b.Turn != 0 || b.Phase != PhaseCombat {
		t.Fatalf("turn/phase = %d/%s", b.Turn, b.Phase)
	}
	if len(b.Units) != 3 {
		t.Fatalf("units = %d, want 3", len(b.Units))
	}
	s := b.UnitAt(Point{0, 0})
	if s == nil || s.HP != s.MaxHP {
		t.Fatalf("soldier not restored: %v", s)
	}
	spy := b.UnitAt(Point{8, 8})
	if spy == nil || spy.Arch != ArchSpy || spy.RealTeam != TeamB || spy.Team != TeamA {
		t.Fatalf("spy not restored: %+v", spy)
	}
	if w := b.UnitAt(Point{4, 4}); w == nil || w.Team != TeamObstacle {
		t.Fatalf("wall not restored: %v", w)
	}
}

func TestSetStrategy_RemembersPrevious(t *testing.T) {
	b := newTestBattle(t, WithStrategy(TeamA, StrategyPhalanx))
	b.SetStrategy(TeamA, StrategyAmbush)
	ts := b.TeamState(TeamA)
	if ts.Strategy != StrategyAmbush || ts.Prev != StrategyPhalanx {
		t.Fatalf("state = %+v", ts)
	}
	if b.Strategy(TeamObstacle) != StrategyBalanced {
		t.Fatal("pseudo-teams fight Balanced")
	}
}
