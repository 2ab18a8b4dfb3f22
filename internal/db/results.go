package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// Run is one batch of seeded battles.
type Run struct {
	ID       string
	Scenario string
	Battles  int
	MaxTurns int
}

// BattleResult is the stored summary of one battle.
type BattleResult struct {
	ID              string
	RunID           string
	Seed            int64
	Outcome         string
	Description     string
	Winner          string // "A", "B" or empty
	Turns           int
	CasualtiesA     int
	CasualtiesB     int
	SurvivorsA      int
	SurvivorsB      int
	Tide            float64
	StrategyChanges int
	FinalStrategyA  string
	FinalStrategyB  string
}

// WinRate tallies outcomes for a run.
type WinRate struct {
	Battles int
	WinsA   int
	WinsB   int
	Other   int
	AvgTurn float64
}

type ResultStore struct {
	DB *sql.DB
}

func NewResultStore(db *sql.DB) *ResultStore {
	return &ResultStore{DB: db}
}

// CreateRun records a new batch and returns it with a fresh id.
func (s *ResultStore) CreateRun(ctx context.Context, scenario string, battles, maxTurns int) (Run, error) {
	r := Run{ID: uuid.New().String(), Scenario: scenario, Battles: battles, MaxTurns: maxTurns}
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO runs (id, scenario, battles, max_turns) VALUES (?, ?, ?, ?)`,
		r.ID, r.Scenario, r.Battles, r.MaxTurns)
	if err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}
	return r, nil
}

// SaveBattle stores one battle result. An empty ID gets a fresh uuid.
func (s *ResultStore) SaveBattle(ctx context.Context, b BattleResult) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO battles (id, run_id, seed, outcome, description, winner, turns,
			casualties_a, casualties_b, survivors_a, survivors_b, tide, strategy_changes,
			final_strategy_a, final_strategy_b)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.RunID, b.Seed, b.Outcome, b.Description, b.Winner, b.Turns,
		b.CasualtiesA, b.CasualtiesB, b.SurvivorsA, b.SurvivorsB, b.Tide, b.StrategyChanges,
		b.FinalStrategyA, b.FinalStrategyB)
	if err != nil {
		return fmt.Errorf("insert battle %s: %w", b.ID, err)
	}
	return nil
}

// Battles lists a run's results in seed order.
func (s *ResultStore) Battles(ctx context.Context, runID string) ([]BattleResult, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, run_id, seed, outcome, description, winner, turns,
			casualties_a, casualties_b, survivors_a, survivors_b, tide, strategy_changes,
			final_strategy_a, final_strategy_b
		 FROM battles WHERE run_id = ? ORDER BY seed`, runID)
	if err != nil {
		return nil, fmt.Errorf("query battles: %w", err)
	}
	defer rows.Close()

	var out []BattleResult
	for rows.Next() {
		var b BattleResult
		if err := rows.Scan(&b.ID, &b.RunID, &b.Seed, &b.Outcome, &b.Description, &b.Winner, &b.Turns,
			&b.CasualtiesA, &b.CasualtiesB, &b.SurvivorsA, &b.SurvivorsB, &b.Tide, &b.StrategyChanges,
			&b.FinalStrategyA, &b.FinalStrategyB); err != nil {
			return nil, fmt.Errorf("scan battle: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// WinRates aggregates a run's winners.
func (s *ResultStore) WinRates(ctx context.Context, runID string) (WinRate, error) {
	var w WinRate
	var avg sql.NullFloat64
	err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*),
			COALESCE(SUM(CASE WHEN winner = 'A' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN winner = 'B' THEN 1 ELSE 0 END), 0),
			AVG(turns)
		 FROM battles WHERE run_id = ?`, runID).Scan(&w.Battles, &w.WinsA, &w.WinsB, &avg)
	if err != nil {
		return WinRate{}, fmt.Errorf("win rates: %w", err)
	}
	w.Other = w.Battles - w.WinsA - w.WinsB
	w.AvgTurn = avg.Float64
	return w, nil
}
