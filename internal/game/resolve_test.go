package game

import "testing"

func TestStep_SwapThrough(t *testing.T) {
	b := newTestBattle(t)
	a := mustAdd(t, b, 0, 0, ArchSoldier, TeamA)
	e := mustAdd(t, b, 1, 0, ArchSoldier, TeamB)
	a.Plan = MoveTo(Point{1, 0})
	e.Plan = MoveTo(Point{0, 0})

	b.Step()

	if a.Pos != (Point{1, 0}) || e.Pos != (Point{0, 0}) {
		t.Fatalf("swap failed: a=%s e=%s", a.Pos, e.Pos)
	}
	if b.Turn != 1 {
		t.Fatalf("turn = %d, want 1", b.Turn)
	}
}

func TestStep_ChainMoves(t *testing.T) {
	b := newTestBattle(t)
	lead := mustAdd(t, b, 1, 0, ArchSoldier, TeamA)
	tail := mustAdd(t, b, 0, 0, ArchSoldier, TeamA)
	mustAdd(t, b, 8, 8, ArchSoldier, TeamB)
	tail.Plan = MoveTo(Point{1, 0})
	lead.Plan = MoveTo(Point{2, 0})

	b.Step()

	if lead.Pos != (Point{2, 0}) || tail.Pos != (Point{1, 0}) {
		t.Fatalf("chain failed: lead=%s tail=%s", lead.Pos, tail.Pos)
	}
}

func TestStep_ChainBlocked(t *testing.T) {
	b := newTestBattle(t)
	tail := mustAdd(t, b, 0, 0, ArchSoldier, TeamA)
	lead := mustAdd(t, b, 1, 0, ArchSoldier, TeamA)
	mustAdd(t, b, 2, 0, ArchWall, TeamObstacle)
	mustAdd(t, b, 8, 8, ArchSoldier, TeamB)
	tail.Plan = MoveTo(Point{1, 0})
	lead.Plan = MoveTo(Point{2, 0})

	b.Step()

	if lead.Pos != (Point{1, 0}) || tail.Pos != (Point{0, 0}) {
		t.Fatalf("blocked chain moved: lead=%s tail=%s", lead.Pos, tail.Pos)
	}
}

func TestStep_ContestedCellFirstClaimantWins(t *testing.T) {
	b := newTestBattle(t)
	first := mustAdd(t, b, 0, 0, ArchSoldier, TeamA)
	second := mustAdd(t, b, 2, 2, ArchSoldier, TeamB)
	first.Plan = MoveTo(Point{1, 1})
	second.Plan = MoveTo(Point{1, 1})

	b.Step()

	if first.Pos != (Point{1, 1}) || second.Pos != (Point{2, 2}) {
		t.Fatalf("contest: first=%s second=%s", first.Pos, second.Pos)
	}
}

func TestStep_NoOverlapAfterMoves(t *testing.T) {
	b := newTestBattle(t)
	a := mustAdd(t, b, 0, 0, ArchSoldier, TeamA)
	e := mustAdd(t, b, 1, 0, ArchSoldier, TeamB)
	a.Plan = MoveTo(Point{1, 0})
	e.Plan = Hold(e)
	oob := mustAdd(t, b, 8, 8, ArchSoldier, TeamB)
	oob.Plan = MoveTo(Point{9, 8})

	b.Step()

	if a.Pos != (Point{0, 0}) {
		t.Fatalf("moved onto a holding unit: %s", a.Pos)
	}
	if oob.Pos != (Point{8, 8}) {
		t.Fatalf("moved off the board: %s", oob.Pos)
	}
	seen := map[Point]string{}
	for _, u := range b.Units {
		if !u.Alive {
			continue
		}
		if id, ok := seen[u.Pos]; ok {
			t.Fatalf("%s and %s share %s", id, u.ID, u.Pos)
		}
		seen[u.Pos] = u.ID
	}
}

func TestStep_SimultaneousDamage(t *testing.T) {
	b := newTestBattle(t)
	a := mustAdd(t, b, 0, 0, ArchSoldier, TeamA)
	e := mustAdd(t, b, 1, 0, ArchSoldier, TeamB)
	a.Plan = Attack(e.ID)
	e.Plan = Attack(a.ID)

	b.Step()

	if a.HP != 70 || e.HP != 70 {
		t.Fatalf("hp a=%d e=%d, want 70 each", a.HP, e.HP)
	}
	if got := b.Log.Count("combat", "attacks"); got != 2 {
		t.Fatalf("attack entries = %d, want 2", got)
	}
	if a.LastOffensiveTurn != 1 || e.LastOffensiveTurn != 1 {
		t.Fatalf("offensive turns = %d/%d", a.LastOffensiveTurn, e.LastOffensiveTurn)
	}
}

func TestStep_MutualKillThenAnnihilation(t *testing.T) {
	b := newTestBattle(t)
	cfg := testTunables()
	cfg.Generic = DamageRange{Min: 150, Max: 150}
	b.SetTunables(cfg)
	a := mustAdd(t, b, 0, 0, ArchSoldier, TeamA)
	e := mustAdd(t, b, 1, 0, ArchSoldier, TeamB)
	a.Plan = Attack(e.ID)
	e.Plan = Attack(a.ID)

	b.Step()

	if a.Alive || e.Alive {
		t.Fatal("both should die")
	}
	if a.HP != 0 || e.HP != 0 {
		t.Fatalf("hp should clamp at 0, got %d/%d", a.HP, e.HP)
	}
	if b.Casualties != [2]int{1, 1} {
		t.Fatalf("casualties = %v", b.Casualties)
	}

	b.Step()
	if b.Phase != PhaseGameOver || b.HasWinner {
		t.Fatalf("phase = %s hasWinner = %v, want GAME_OVER without winner", b.Phase, b.HasWinner)
	}
	if !b.Log.HasEntry("phase", "annihilation", "") {
		t.Fatal("expected annihilation phase entry")
	}
}

func TestStep_CorpseLeftBehind(t *testing.T) {
	b := newTestBattle(t, WithCorpses(true))
	cfg := testTunables()
	cfg.Generic = DamageRange{Min: 150, Max: 150}
	b.SetTunables(cfg)
	a := mustAdd(t, b, 0, 0, ArchSoldier, TeamA)
	e := mustAdd(t, b, 1, 0, ArchSoldier, TeamB)
	mustAdd(t, b, 8, 8, ArchSoldier, TeamB)
	a.Plan = Attack(e.ID)

	b.Step()

	c := b.UnitAt(Point{1, 0})
	if c == nil || c.Arch != ArchCorpse || c.HP != 50 {
		t.Fatalf("corpse = %v", c)
	}
	if !b.Log.HasEntry("death", "corpse", "") {
		t.Fatal("expected corpse entry")
	}
}

func TestStep_GrenadierHasNoMelee(t *testing.T) {
	b := newTestBattle(t)
	g := mustAdd(t, b, 0, 0, ArchGrenadier, TeamA)
	e := mustAdd(t, b, 1, 0, ArchSoldier, TeamB)
	g.Plan = Attack(e.ID)

	b.Step()

	if e.HP != e.MaxHP {
		t.Fatalf("grenadier attack dealt damage: hp=%d", e.HP)
	}
}

func TestStep_CoverReducesDamage(t *testing.T) {
	b := newTestBattle(t)
	a := mustAdd(t, b, 0, 0, ArchSoldier, TeamA)
	mustAdd(t, b, 1, 0, ArchWall, TeamObstacle)
	e := mustAdd(t, b, 2, 0, ArchSoldier, TeamB)
	a.Plan = Attack(e.ID)

	b.Step()

	if e.HP != 79 {
		t.Fatalf("hp = %d, want 79 (30 reduced to 21)", e.HP)
	}
}

func TestStep_GrenadeHitsEveryoneInBlast(t *testing.T) {
	b := newTestBattle(t)
	g := mustAdd(t, b, 0, 0, ArchGrenadier, TeamA)
	friend := mustAdd(t, b, 4, 4, ArchSoldier, TeamA)
	e1 := mustAdd(t, b, 5, 5, ArchSoldier, TeamB)
	e2 := mustAdd(t, b, 6, 6, ArchSoldier, TeamB)
	far := mustAdd(t, b, 8, 8, ArchSoldier, TeamB)
	g.Plan = Grenade(Point{5, 5})

	b.Step()

	for _, u := range []*Unit{friend, e1, e2} {
		if u.HP != 20 {
			t.Errorf("%s hp = %d, want 20", u.ID, u.HP)
		}
	}
	if far.HP != far.MaxHP || g.HP != g.MaxHP {
		t.Fatalf("units outside the blast were hit")
	}
	if g.GrenCooldown != 2 {
		t.Fatalf("grenade cooldown = %d, want 2 after the end-of-turn tick", g.GrenCooldown)
	}
	e, ok := b.Log.LastOf("combat", "grenade")
	if !ok || e.NumVal != 240 {
		t.Fatalf("grenade entry = %+v", e)
	}
}

func TestStep_RifleHitsWeakestAdjacent(t *testing.T) {
	b := newTestBattle(t)
	r := mustAdd(t, b, 4, 4, ArchRifle, TeamA)
	targets := []*Unit{
		mustAdd(t, b, 3, 4, ArchSoldier, TeamB),
		mustAdd(t, b, 5, 4, ArchSoldier, TeamB),
		mustAdd(t, b, 4, 3, ArchSoldier, TeamB),
		mustAdd(t, b, 4, 5, ArchSoldier, TeamB),
	}
	targets[0].HP = 90
	targets[1].HP = 80
	targets[2].HP = 70
	r.Plan = Attack(targets[3].ID)

	b.Step()

	if targets[3].HP != 100 {
		t.Fatalf("healthiest neighbour should be spared, hp=%d", targets[3].HP)
	}
	if targets[0].HP != 60 || targets[1].HP != 50 || targets[2].HP != 40 {
		t.Fatalf("hp = %d/%d/%d", targets[0].HP, targets[1].HP, targets[2].HP)
	}
}

func TestStep_CommandoCollateral(t *testing.T) {
	b := newTestBattle(t)
	c := mustAdd(t, b, 4, 4, ArchCommando, TeamA)
	e1 := mustAdd(t, b, 3, 3, ArchSoldier, TeamB)
	e2 := mustAdd(t, b, 5, 5, ArchSoldier, TeamB)
	wall := mustAdd(t, b, 2, 2, ArchWall, TeamObstacle)
	c.Plan = Attack(e1.ID)

	b.Step()

	if e1.HP != 40 || e2.HP != 40 {
		t.Fatalf("hp = %d/%d, want 40 each", e1.HP, e2.HP)
	}
	if wall.HP != 485 {
		t.Fatalf("wall hp = %d, want 485 after 15 collateral", wall.HP)
	}
}

func TestStep_HealClampsAtMax(t *testing.T) {
	b := newTestBattle(t)
	m := mustAdd(t, b, 0, 0, ArchMedic, TeamA)
	s := mustAdd(t, b, 1, 0, ArchSoldier, TeamA)
	mustAdd(t, b, 8, 8, ArchSoldier, TeamB)
	s.HP = 90
	m.Plan = Heal(s.ID)

	b.Step()

	if s.HP != s.MaxHP {
		t.Fatalf("hp = %d, want %d", s.HP, s.MaxHP)
	}
	if !b.Log.HasEntry("heal", "treat", "") {
		t.Fatal("expected treat entry")
	}
}

func TestStep_MedicOnMedicHealsHalf(t *testing.T) {
	b := newTestBattle(t)
	m := mustAdd(t, b, 0, 0, ArchMedic, TeamA)
	patient := mustAdd(t, b, 1, 0, ArchMedic, TeamA)
	mustAdd(t, b, 8, 8, ArchSoldier, TeamB)
	patient.HP = 50
	m.Plan = Heal(patient.ID)

	b.Step()

	if patient.HP != 65 {
		t.Fatalf("hp = %d, want 65", patient.HP)
	}
}

func TestStep_BandagesWeakestNeighbour(t *testing.T) {
	b := newTestBattle(t)
	cfg := testTunables()
	cfg.SoldierBandages = 3
	b.SetTunables(cfg)
	s1 := mustAdd(t, b, 0, 0, ArchSoldier, TeamA)
	s2 := mustAdd(t, b, 1, 0, ArchSoldier, TeamA)
	mustAdd(t, b, 8, 8, ArchCivilian, TeamB)
	s1.HP, s2.HP = 50, 60

	b.Step()

	if s1.HP != 75 || s2.HP != 85 {
		t.Fatalf("hp = %d/%d, want 75/85", s1.HP, s2.HP)
	}
	if s1.HealUses != 2 || s2.HealUses != 2 {
		t.Fatalf("bandages left = %d/%d", s1.HealUses, s2.HealUses)
	}
}

func TestStep_BackstabLandsFullDamage(t *testing.T) {
	b := newTestBattle(t)
	victim := mustAdd(t, b, 0, 0, ArchSoldier, TeamA)
	spy := mustAdd(t, b, 1, 1, ArchSpy, TeamB)
	mustAdd(t, b, 8, 8, ArchSoldier, TeamB)
	spy.Plan = Backstab(victim.ID)

	b.Step()

	if victim.HP != 10 {
		t.Fatalf("hp = %d, want 10", victim.HP)
	}
	if spy.SpyCooldown != 2 {
		t.Fatalf("spy cooldown = %d, want 2", spy.SpyCooldown)
	}
	if spy.SpyRevealed && spy.Team != TeamB {
		t.Fatal("a caught spy shows its real colours")
	}
}

func TestStep_SpyExposedWhenAlone(t *testing.T) {
	b := newTestBattle(t)
	cfg := testTunables()
	cfg.Generic = DamageRange{Min: 150, Max: 150}
	b.SetTunables(cfg)
	civ := mustAdd(t, b, 0, 0, ArchCivilian, TeamA)
	killer := mustAdd(t, b, 1, 0, ArchSoldier, TeamB)
	spy := mustAdd(t, b, 6, 6, ArchSpy, TeamA)
	killer.Plan = Attack(civ.ID)

	b.Step()

	if civ.Alive {
		t.Fatal("civilian should die")
	}
	if !spy.SpyRevealed || spy.Team != TeamA {
		t.Fatalf("spy should be exposed: revealed=%v team=%s", spy.SpyRevealed, spy.Team)
	}
	if !b.Log.HasEntry("spy", "last_stand", "") {
		t.Fatal("expected last_stand entry")
	}
	if b.TeamState(TeamB).PriorityTarget != spy.ID {
		t.Fatalf("B should prioritise the exposed spy, got %q", b.TeamState(TeamB).PriorityTarget)
	}
}

func TestStep_HoldKeepsBoard(t *testing.T) {
	b := newTestBattle(t)
	a := mustAdd(t, b, 0, 0, ArchSoldier, TeamA)
	e := mustAdd(t, b, 8, 8, ArchSoldier, TeamB)
	a.Plan, e.Plan = Hold(a), Hold(e)

	for i := 0; i < 3; i++ {
		b.Step()
	}
	if a.Pos != (Point{0, 0}) || e.Pos != (Point{8, 8}) {
		t.Fatal("holding units moved")
	}
	if len(a.History) != 3 {
		t.Fatalf("history = %v", a.History)
	}
}

func TestPlan_ResetsToHold(t *testing.T) {
	b := newTestBattle(t)
	a := mustAdd(t, b, 0, 0, ArchSoldier, TeamA)
	b.Phase = PhaseGameOver
	a.Plan = MoveTo(Point{1, 1})

	b.Plan()

	if a.Plan.Kind != PlanHold || a.Plan.To != a.Pos {
		t.Fatalf("plan = %v", a.Plan)
	}
}

func TestPatienceIntents(t *testing.T) {
	u := &Unit{Patience: 2, AmbushPatience: 0}
	u.applyPatience(Hold(u).withSpyPatience(PatienceDecrement).withAmbushPatience(PatienceReset))
	if u.Patience != 1 || u.AmbushPatience != patienceFull {
		t.Fatalf("patience = %d/%d", u.Patience, u.AmbushPatience)
	}
	u.Patience = 0
	u.applyPatience(Hold(u).withSpyPatience(PatienceDecrement))
	if u.Patience != 0 {
		t.Fatalf("patience went negative: %d", u.Patience)
	}
}
