package game

import "testing"

func TestPhase_VictoryEndsBattle(t *testing.T) {
	b := newTestBattle(t)
	mustAdd(t, b, 0, 0, ArchSoldier, TeamA)

	b.Tick()

	if b.Phase != PhaseGameOver {
		t.Fatalf("phase = %s, want GAME_OVER", b.Phase)
	}
	if !b.HasWinner || b.Winner != TeamA {
		t.Fatalf("winner = %s (has=%v)", b.Winner, b.HasWinner)
	}
	if !b.Log.HasEntry("phase", "victory", "team A") {
		t.Fatal("expected victory entry")
	}

	turn := b.Turn
	b.Tick()
	if b.Turn != turn+1 || b.Phase != PhaseGameOver {
		t.Fatalf("game over should be terminal, phase=%s", b.Phase)
	}
}

func TestPhase_SpyAloneDoesNotWin(t *testing.T) {
	b := newTestBattle(t)
	mustAdd(t, b, 0, 0, ArchSoldier, TeamA)
	mustAdd(t, b, 1, 1, ArchSpy, TeamB)

	b.Tick()

	// The spy shows A's colours, so only one side is on the board.
	if b.Phase != PhaseGameOver || b.Winner != TeamA {
		t.Fatalf("phase=%s winner=%s", b.Phase, b.Winner)
	}
}

func TestPhase_PatchUpThenGameOver(t *testing.T) {
	ts, err := NewTestSim(Sim(WithSeed(3), WithTunables(NewTunableStore(testTunables()))))
	if err != nil {
		t.Fatalf("NewTestSim: %v", err)
	}
	b := ts.Battle
	mustAdd(t, b, 0, 0, ArchMedic, TeamA)
	s := mustAdd(t, b, 1, 1, ArchSoldier, TeamA)
	s.HP = 40

	ts.RunToEnd(30)

	if b.Phase != PhaseGameOver {
		t.Fatalf("phase = %s", b.Phase)
	}
	if s.HP != s.MaxHP {
		t.Fatalf("soldier hp = %d, want full", s.HP)
	}
	if !b.Log.HasEntry("phase", "patch up", "") || !b.Log.HasEntry("phase", "patched", "") {
		t.Fatalf("missing phase entries:\n%s", b.Log.Format())
	}
}

func TestPhase_SecureAreaClearsCorpses(t *testing.T) {
	ts, err := NewTestSim(Sim(WithSeed(3), WithSecureArea(true), WithTunables(NewTunableStore(testTunables()))))
	if err != nil {
		t.Fatalf("NewTestSim: %v", err)
	}
	b := ts.Battle
	mustAdd(t, b, 0, 0, ArchSoldier, TeamA)
	mustAdd(t, b, 3, 0, ArchCorpse, TeamCorpse)

	ts.RunToEnd(40)

	if b.Phase != PhaseGameOver {
		t.Fatalf("phase = %s\n%s", b.Phase, b.Log.Format())
	}
	if b.corpsesRemain() {
		t.Fatal("corpse still standing")
	}
	if !b.Log.HasEntry("phase", "secure area", "") || !b.Log.HasEntry("phase", "cleanup done", "") {
		t.Fatalf("missing phase entries:\n%s", b.Log.Format())
	}
}

func TestPhase_RedeployWave(t *testing.T) {
	ts, err := NewTestSim(
		Sim(WithSeed(3), WithHighlightZone(true), WithTunables(NewTunableStore(testTunables()))),
		WithStopOnRedeploy(true),
	)
	if err != nil {
		t.Fatalf("NewTestSim: %v", err)
	}
	b := ts.Battle
	s := mustAdd(t, b, 8, 8, ArchSoldier, TeamA)

	ts.RunToEnd(40)

	if b.Waves != 1 || b.Phase != PhaseCombat {
		t.Fatalf("waves=%d phase=%s", b.Waves, b.Phase)
	}
	target, ok := b.RedeployTargets[s.ID]
	if !ok || target != (Point{3, 3}) {
		t.Fatalf("target = %s (%v), want the front slot (3,3)", target, ok)
	}
	if s.Pos != target {
		t.Fatalf("soldier at %s, want %s", s.Pos, target)
	}
	if !b.Log.HasEntry("phase", "in position", "") {
		t.Fatal("expected in position entry")
	}
}

func TestPrepareRedeployment_Roles(t *testing.T) {
	b := newTestBattle(t)
	sniper := mustAdd(t, b, 4, 4, ArchSniper, TeamA)
	soldier := mustAdd(t, b, 5, 4, ArchSoldier, TeamA)
	b.Winner, b.HasWinner = TeamA, true

	b.PrepareRedeployment(TeamA)

	if got := b.RedeployTargets[soldier.ID]; got != (Point{3, 3}) {
		t.Fatalf("soldier slot = %s, want (3,3)", got)
	}
	if got := b.RedeployTargets[sniper.ID]; got != (Point{0, 0}) {
		t.Fatalf("sniper slot = %s, want rear corner (0,0)", got)
	}
	if !b.Log.HasEntry("redeploy", "targets", "2 redeploy targets") {
		t.Fatal("expected targets entry")
	}
}

func TestPrepareRedeployment_UnreachableSlot(t *testing.T) {
	b := newTestBattle(t, WithBoardSize(5))
	// Wall off the corner (0,0).
	mustAdd(t, b, 1, 0, ArchWall, TeamObstacle)
	mustAdd(t, b, 0, 1, ArchWall, TeamObstacle)
	mustAdd(t, b, 1, 1, ArchWall, TeamObstacle)
	u := mustAdd(t, b, 4, 4, ArchSoldier, TeamA)

	b.PrepareRedeployment(TeamA)

	// A's zone on a 5 board is the 2x2 corner; only (0,0) is free and it
	// cannot be reached, so the soldier keeps its own cell.
	if got := b.RedeployTargets[u.ID]; got != u.Pos {
		t.Fatalf("slot = %s, want %s", got, u.Pos)
	}
	if !b.Log.HasEntry("redeploy", "trapped", "") {
		t.Fatal("expected trapped entry")
	}
}

func TestPrepareRedeployment_CrowdedSlot(t *testing.T) {
	b := newTestBattle(t, WithBoardSize(5))
	// Enemy soldiers box in the corner; units can move, walls cannot.
	mustAdd(t, b, 1, 0, ArchSoldier, TeamB)
	mustAdd(t, b, 0, 1, ArchSoldier, TeamB)
	mustAdd(t, b, 1, 1, ArchSoldier, TeamB)
	u := mustAdd(t, b, 4, 4, ArchSoldier, TeamA)

	b.PrepareRedeployment(TeamA)

	if got := b.RedeployTargets[u.ID]; got != (Point{0, 0}) {
		t.Fatalf("slot = %s, want (0,0)", got)
	}
	if b.Log.HasEntry("redeploy", "trapped", "") {
		t.Fatal("a crowd is not a trap")
	}
	if !b.Log.HasEntry("redeploy", "crowded", u.ID) {
		t.Fatal("expected crowded entry")
	}
}

func TestPhase_RedeployTimeoutForcesCombat(t *testing.T) {
	ts, err := NewTestSim(Sim(WithSeed(3), WithHighlightZone(true), WithTunables(NewTunableStore(testTunables()))))
	if err != nil {
		t.Fatalf("NewTestSim: %v", err)
	}
	b := ts.Battle
	s := mustAdd(t, b, 8, 8, ArchSoldier, TeamA)
	// Seal off the corner so it can never be reached.
	mustAdd(t, b, 1, 0, ArchWall, TeamObstacle)
	mustAdd(t, b, 0, 1, ArchWall, TeamObstacle)
	mustAdd(t, b, 1, 1, ArchWall, TeamObstacle)

	ts.RunTicks(1)
	if b.Phase != PhaseRedeploying {
		t.Fatalf("phase = %s, want REDEPLOYING", b.Phase)
	}
	b.RedeployTargets[s.ID] = Point{0, 0}

	ticks := 0
	for b.Phase == PhaseRedeploying && ticks < 100 {
		ts.RunTicks(1)
		ticks++
	}
	if b.Phase != PhaseCombat {
		t.Fatalf("phase = %s after %d ticks", b.Phase, ticks)
	}
	if want := 2*b.Size + 1; ticks != want {
		t.Fatalf("timeout after %d ticks, want %d", ticks, want)
	}
	if s.Pos != (Point{8, 8}) || b.Waves != 1 {
		t.Fatalf("pos=%s waves=%d", s.Pos, b.Waves)
	}
	if !b.Log.HasEntry("phase", "redeploy timeout", "") {
		t.Fatalf("missing timeout entry:\n%s", b.Log.Format())
	}
}
