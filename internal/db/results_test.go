package db

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *ResultStore {
	t.Helper()
	conn, err := ConnectSQLite(filepath.Join(t.TempDir(), "results.db"))
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return NewResultStore(conn)
}

func TestConnectSQLite_SchemaIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.db")
	for i := 0; i < 2; i++ {
		conn, err := ConnectSQLite(path)
		if err != nil {
			t.Fatalf("connect #%d: %v", i+1, err)
		}
		conn.Close()
	}
}

func TestResultStore_SaveAndList(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	run, err := s.CreateRun(ctx, "Demo", 3, 200)
	if err != nil {
		t.Fatalf("create run: %v", err)
	}
	if run.ID == "" {
		t.Fatal("run should get an id")
	}

	results := []BattleResult{
		{RunID: run.ID, Seed: 3, Outcome: "b_victory", Winner: "B", Turns: 30},
		{RunID: run.ID, Seed: 1, Outcome: "a_victory", Winner: "A", Turns: 10, Tide: 0.9},
		{RunID: run.ID, Seed: 2, Outcome: "draw", Turns: 20},
	}
	for _, r := range results {
		if err := s.SaveBattle(ctx, r); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	got, err := s.Battles(ctx, run.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 battles, got %d", len(got))
	}
	if got[0].Seed != 1 || got[0].Winner != "A" || got[0].Tide != 0.9 {
		t.Errorf("first row by seed should be seed 1 won by A, got %+v", got[0])
	}
	if got[0].ID == "" {
		t.Error("saved battle should have been given an id")
	}

	w, err := s.WinRates(ctx, run.ID)
	if err != nil {
		t.Fatalf("win rates: %v", err)
	}
	if w.Battles != 3 || w.WinsA != 1 || w.WinsB != 1 || w.Other != 1 {
		t.Errorf("unexpected win rates %+v", w)
	}
	if w.AvgTurn != 20 {
		t.Errorf("avg turns = %.1f, want 20", w.AvgTurn)
	}
}

func TestResultStore_UnknownRunRejected(t *testing.T) {
	s := openTestStore(t)
	err := s.SaveBattle(context.Background(), BattleResult{RunID: "missing", Outcome: "draw"})
	if err == nil {
		t.Fatal("foreign key should reject a battle for an unknown run")
	}
}

func TestResultStore_EmptyRun(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	run, err := s.CreateRun(ctx, "Demo", 0, 10)
	if err != nil {
		t.Fatalf("create run: %v", err)
	}
	w, err := s.WinRates(ctx, run.ID)
	if err != nil {
		t.Fatalf("win rates: %v", err)
	}
	if w.Battles != 0 || w.AvgTurn != 0 {
		t.Errorf("empty run should have zero stats, got %+v", w)
	}
}
