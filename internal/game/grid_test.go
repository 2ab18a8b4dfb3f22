package game

import "testing"

func TestDistances(t *testing.T) {
	a, b := Point{0, 0}, Point{3, 4}
	if got := Chebyshev(a, b); got != 4 {
		t.Errorf("Chebyshev = %d, want 4", got)
	}
	if got := Manhattan(a, b); got != 7 {
		t.Errorf("Manhattan = %d, want 7", got)
	}
	if got := Euclid(a, b); got != 5 {
		t.Errorf("Euclid = %v, want 5", got)
	}
	if !Adjacent(a, a) || !Adjacent(a, Point{1, 1}) || Adjacent(a, Point{2, 0}) {
		t.Error("Adjacent should mean Chebyshev <= 1")
	}
}

func TestLine_Endpoints(t *testing.T) {
	cases := []struct{ a, b Point }{
		{Point{0, 0}, Point{4, 2}},
		{Point{5, 5}, Point{1, 2}},
		{Point{2, 7}, Point{2, 0}},
		{Point{3, 3}, Point{3, 3}},
	}
	for _, tc := range cases {
		pts := Line(tc.a, tc.b)
		if pts[0] != tc.a || pts[len(pts)-1] != tc.b {
			t.Fatalf("Line(%s,%s) = %v", tc.a, tc.b, pts)
		}
		if want := Chebyshev(tc.a, tc.b) + 1; len(pts) != want {
			t.Fatalf("Line(%s,%s) has %d cells, want %d", tc.a, tc.b, len(pts), want)
		}
		for i := 1; i < len(pts); i++ {
			if !Adjacent(pts[i-1], pts[i]) {
				t.Fatalf("Line(%s,%s) jumps at %d: %v", tc.a, tc.b, i, pts)
			}
		}
	}
}

func TestNeighbors_Corner(t *testing.T) {
	b := newTestBattle(t)
	if got := len(b.Neighbors(Point{0, 0})); got != 3 {
		t.Fatalf("corner neighbours = %d, want 3", got)
	}
	if got := len(b.Neighbors(Point{4, 4})); got != 8 {
		t.Fatalf("centre neighbours = %d, want 8", got)
	}
}

func TestCornered(t *testing.T) {
	b := newTestBattle(t)
	u := mustAdd(t, b, 0, 0, ArchSoldier, TeamA)
	mustAdd(t, b, 1, 0, ArchWall, TeamObstacle)
	mustAdd(t, b, 0, 1, ArchWall, TeamObstacle)
	if b.Cornered(u) {
		t.Fatal("diagonal still open")
	}
	mustAdd(t, b, 1, 1, ArchSoldier, TeamB)
	if !b.Cornered(u) {
		t.Fatal("expected cornered")
	}
}

func TestIsTargetInCover(t *testing.T) {
	b := newTestBattle(t)
	shooter := mustAdd(t, b, 0, 0, ArchSoldier, TeamA)
	target := mustAdd(t, b, 2, 0, ArchSoldier, TeamB)

	if b.IsTargetInCover(shooter, target) {
		t.Fatal("open ground gives no cover")
	}

	side := mustAdd(t, b, 2, 1, ArchWall, TeamObstacle)
	if b.IsTargetInCover(shooter, target) {
		t.Fatal("a wall beside the target but off the line of fire is not cover")
	}

	mustAdd(t, b, 1, 0, ArchWall, TeamObstacle)
	if !b.IsTargetInCover(shooter, target) {
		t.Fatal("wall between shooter and target should be cover")
	}

	side.Alive = false
	if !b.IsTargetInCover(shooter, target) {
		t.Fatal("cover should not depend on the side wall")
	}
}

func TestIsTargetInCover_CorpseCounts(t *testing.T) {
	b := newTestBattle(t)
	shooter := mustAdd(t, b, 0, 0, ArchSoldier, TeamA)
	target := mustAdd(t, b, 3, 3, ArchSoldier, TeamB)
	mustAdd(t, b, 2, 2, ArchCorpse, TeamCorpse)
	if !b.IsTargetInCover(shooter, target) {
		t.Fatal("corpse on the diagonal should be cover")
	}
}

func TestIsPositionInCoverFrom(t *testing.T) {
	b := newTestBattle(t)
	mustAdd(t, b, 3, 0, ArchWall, TeamObstacle)
	if !b.IsPositionInCoverFrom(Point{2, 0}, Point{6, 0}) {
		t.Fatal("(2,0) is behind the wall from (6,0)")
	}
	if b.IsPositionInCoverFrom(Point{2, 0}, Point{0, 0}) {
		t.Fatal("(2,0) faces (0,0) in the open")
	}
	if b.IsPositionInCoverFrom(Point{2, 0}, Point{3, 1}) {
		t.Fatal("adjacent reference has no cells in between")
	}
}

func TestCoverAdjusted(t *testing.T) {
	cases := map[int]int{30: 21, 50: 35, 0: 0, 100: 70}
	for in, want := range cases {
		if got := CoverAdjusted(in); got != want {
			t.Errorf("CoverAdjusted(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestObstaclesOnLine(t *testing.T) {
	b := newTestBattle(t)
	mustAdd(t, b, 1, 1, ArchWall, TeamObstacle)
	mustAdd(t, b, 2, 2, ArchSoldier, TeamB)
	mustAdd(t, b, 3, 3, ArchCorpse, TeamCorpse)

	obs := b.ObstaclesOnLine(Point{0, 0}, Point{4, 4})
	if len(obs) != 2 || obs[0].Pos != (Point{1, 1}) || obs[1].Pos != (Point{3, 3}) {
		t.Fatalf("obstacles = %v", obs)
	}
	if b.HasClearShot(Point{0, 0}, Point{4, 4}) {
		t.Fatal("line is obstructed")
	}
	if !b.HasClearShot(Point{0, 1}, Point{0, 8}) {
		t.Fatal("column 0 is clear")
	}
}
