package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Garsondee/grid-tactics/internal/db"
	"github.com/Garsondee/grid-tactics/internal/game"
)

// logTailTicks is how much of the battle log a verbose run prints.
const logTailTicks = 5

type runStats struct {
	runIndex int
	seed     int64

	outcome     game.BattleOutcomeReason
	winner      string
	ticks       int
	gameOver    bool
	finalPhase  game.Phase
	finalStrats [2]game.Strategy

	firstDeathTick    int
	firstCounterTick  int
	firstSpyCaughtTick int

	strategyChanges int
	counters        int
	generalsDown    int
	grenades        int
	backstabs       int
	spiesExposed    int
	heals           int
	stalemates      int
	trapped         int

	tideLow, tideHigh float64

	windowSummary *game.WindowReport
	snapshot      string
	logTail       string
	units         []game.UnitStats
}

type options struct {
	runs      int
	ticks     int
	seedBase  int64
	seedStep  int64
	scenario  string
	tunables  string
	dbPath    string
	logLevel  string
	verbose   bool
	corpses   bool
	secure    bool
	highlight bool
}

func main() {
	var o options
	flag.IntVar(&o.runs, "runs", 5, "number of headless battles")
	flag.IntVar(&o.ticks, "ticks", 300, "turn cap per battle")
	flag.Int64Var(&o.seedBase, "seed-base", 42, "base RNG seed for run 1")
	flag.Int64Var(&o.seedStep, "seed-step", 1, "seed increment between runs")
	flag.StringVar(&o.scenario, "scenario", "Demo", "scenario id or name")
	flag.StringVar(&o.tunables, "tunables", "", "optional tunables YAML file")
	flag.StringVar(&o.dbPath, "db", "", "optional sqlite file to store results in")
	flag.StringVar(&o.logLevel, "log-level", "warn", "diagnostic log level (debug, info, warn, error)")
	flag.BoolVar(&o.verbose, "verbose", false, "print every run's unit records and log tail")
	flag.BoolVar(&o.corpses, "corpses", false, "leave corpses where units die")
	flag.BoolVar(&o.secure, "secure-area", false, "winners clear corpses after the battle")
	flag.BoolVar(&o.highlight, "redeploy", false, "winners redeploy into formation after the battle")
	flag.Parse()

	if o.runs <= 0 {
		fmt.Println("error: -runs must be > 0")
		os.Exit(2)
	}
	if o.ticks <= 0 {
		fmt.Println("error: -ticks must be > 0")
		os.Exit(2)
	}

	logger, err := newLogger(o.logLevel)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		os.Exit(2)
	}
	defer logger.Sync() //nolint:errcheck

	if err := run(context.Background(), o, logger); err != nil {
		logger.Error("headless report failed", zap.Error(err))
		fmt.Printf("error: %v\n", err)
		os.Exit(1)
	}
}

// newLogger builds a console logger on stderr.
func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	config := zap.Config{
		Level:       zap.NewAtomicLevelAt(lvl),
		Development: false,
		Encoding:    "console",
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "time",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			MessageKey:     "msg",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.SecondsDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}
	return config.Build()
}

func run(ctx context.Context, o options, logger *zap.Logger) error {
	var store *game.TunableStore
	if o.tunables != "" {
		t, err := game.LoadTunables(o.tunables)
		if err != nil {
			return err
		}
		store = game.NewTunableStore(t)
	}

	var results *db.ResultStore
	var runID string
	if o.dbPath != "" {
		conn, err := db.ConnectSQLite(o.dbPath)
		if err != nil {
			return err
		}
		defer conn.Close()
		results = db.NewResultStore(conn)
		r, err := results.CreateRun(ctx, o.scenario, o.runs, o.ticks)
		if err != nil {
			return err
		}
		runID = r.ID
	}

	fmt.Printf("=== Headless Battle Report ===\n")
	fmt.Printf("scenario=%s runs=%d ticks=%d seed_base=%d seed_step=%d\n\n", o.scenario, o.runs, o.ticks, o.seedBase, o.seedStep)

	all := make([]runStats, 0, o.runs)
	for i := 0; i < o.runs; i++ {
		seed := o.seedBase + int64(i)*o.seedStep
		rs, err := runBattle(i+1, seed, o, store, logger)
		if err != nil {
			return fmt.Errorf("run %d: %w", i+1, err)
		}
		all = append(all, rs)
		printRun(rs, o.verbose)
		if results != nil {
			if err := results.SaveBattle(ctx, toResult(runID, rs)); err != nil {
				return err
			}
		}
	}
	printAggregate(all)

	if results != nil {
		w, err := results.WinRates(ctx, runID)
		if err != nil {
			return err
		}
		fmt.Printf("\nstored run %s in %s: battles=%d a=%d b=%d other=%d avg_turns=%.1f\n",
			runID, o.dbPath, w.Battles, w.WinsA, w.WinsB, w.Other, w.AvgTurn)
	}
	return nil
}

func runBattle(runIndex int, seed int64, o options, store *game.TunableStore, logger *zap.Logger) (runStats, error) {
	bopts := []game.Option{
		game.WithSeed(seed),
		game.WithLogger(logger.With(zap.Int("run", runIndex), zap.Int64("seed", seed))),
		game.WithCorpses(o.corpses),
		game.WithSecureArea(o.secure),
		game.WithHighlightZone(o.highlight),
		game.WithVerbose(o.verbose),
		game.WithScenario(o.scenario),
	}
	if store != nil {
		bopts = append(bopts, game.WithTunables(store))
	}
	ts, err := game.NewTestSim(game.Sim(bopts...), game.WithStopOnRedeploy(true))
	if err != nil {
		return runStats{}, err
	}
	ticks := ts.RunToEnd(o.ticks)
	return collectStats(runIndex, seed, ticks, ts), nil
}

func collectStats(runIndex int, seed int64, ticks int, ts *game.TestSim) runStats {
	b := ts.Battle
	entries := ts.SimLog.Entries()
	rs := runStats{
		runIndex:           runIndex,
		seed:               seed,
		outcome:            game.DetermineBattleOutcome(b),
		ticks:              ticks,
		gameOver:           b.Phase == game.PhaseGameOver,
		finalPhase:         b.Phase,
		finalStrats:        [2]game.Strategy{b.Strategy(game.TeamA), b.Strategy(game.TeamB)},
		firstDeathTick:     firstTick(entries, "death", "died", ""),
		firstCounterTick:   firstTick(entries, "strategy", "counter", ""),
		firstSpyCaughtTick: firstTick(entries, "spy", "caught", ""),
		strategyChanges:    ts.SimLog.Count("strategy", "orders"),
		counters:           ts.SimLog.Count("strategy", "counter"),
		generalsDown:       ts.SimLog.Count("strategy", "general_down"),
		grenades:           ts.SimLog.Count("combat", "grenade"),
		backstabs:          ts.SimLog.Count("combat", "backstabs"),
		heals:              ts.SimLog.Count("heal", "treat") + ts.SimLog.Count("heal", "bandage"),
		stalemates:         ts.SimLog.Count("ai", "stalemate"),
		trapped:            ts.SimLog.Count("redeploy", "trapped"),
		windowSummary:      ts.Reporter.WindowSummary(),
		snapshot:           ts.Reporter.FormatLatest(),
		logTail:            ts.SimLog.FormatRange(max(0, b.Turn-logTailTicks), b.Turn),
		units:              game.CollectUnitStats(ts.SimLog),
	}
	for i, r := range ts.Reporter.History() {
		if i == 0 || r.Tide < rs.tideLow {
			rs.tideLow = r.Tide
		}
		if i == 0 || r.Tide > rs.tideHigh {
			rs.tideHigh = r.Tide
		}
	}
	for _, e := range entries {
		if e.Category == "spy" {
			rs.spiesExposed++
		}
	}
	if b.HasWinner {
		rs.winner = b.Winner.String()
	}
	return rs
}

func toResult(runID string, rs runStats) db.BattleResult {
	return db.BattleResult{
		RunID:           runID,
		Seed:            rs.seed,
		Outcome:         rs.outcome.Outcome.String(),
		Description:     rs.outcome.Description,
		Winner:          rs.winner,
		Turns:           rs.outcome.Turns,
		CasualtiesA:     rs.outcome.Casualties[game.TeamA],
		CasualtiesB:     rs.outcome.Casualties[game.TeamB],
		SurvivorsA:      rs.outcome.Survivors[game.TeamA],
		SurvivorsB:      rs.outcome.Survivors[game.TeamB],
		Tide:            rs.outcome.Tide,
		StrategyChanges: rs.strategyChanges,
		FinalStrategyA:  rs.finalStrats[0].String(),
		FinalStrategyB:  rs.finalStrats[1].String(),
	}
}

func firstTick(entries []game.SimLogEntry, category, key, contains string) int {
	for _, e := range entries {
		if e.Category != category || e.Key != key {
			continue
		}
		if contains == "" || strings.Contains(e.Value, contains) {
			return e.Tick
		}
	}
	return -1
}

func printRun(rs runStats, verbose bool) {
	fmt.Printf("--- Run %d (seed=%d) ---\n", rs.runIndex, rs.seed)
	winner := rs.winner
	if winner == "" {
		winner = "none"
	}
	fmt.Printf("result: outcome=%s (%s) winner=%s turns=%d final_phase=%s game_over=%v\n",
		rs.outcome.Outcome, rs.outcome.Description, winner, rs.outcome.Turns, rs.finalPhase, rs.gameOver)
	fmt.Printf("forces: a=%d/%d b=%d/%d casualties a=%d b=%d tide=%.2f\n",
		rs.outcome.Survivors[game.TeamA], rs.outcome.Total[game.TeamA],
		rs.outcome.Survivors[game.TeamB], rs.outcome.Total[game.TeamB],
		rs.outcome.Casualties[game.TeamA], rs.outcome.Casualties[game.TeamB], rs.outcome.Tide)
	fmt.Printf("markers: first_death=%d first_counter=%d first_spy_caught=%d tide_range=%.2f..%.2f\n",
		rs.firstDeathTick, rs.firstCounterTick, rs.firstSpyCaughtTick, rs.tideLow, rs.tideHigh)
	fmt.Printf("doctrine: strategy_changes=%d counters=%d generals_down=%d final a=%s b=%s\n",
		rs.strategyChanges, rs.counters, rs.generalsDown, rs.finalStrats[0], rs.finalStrats[1])
	fmt.Printf("events: grenades=%d backstabs=%d spy_events=%d heals=%d stalemates=%d trapped=%d\n",
		rs.grenades, rs.backstabs, rs.spiesExposed, rs.heals, rs.stalemates, rs.trapped)
	if verbose {
		if rs.windowSummary != nil {
			fmt.Print(rs.windowSummary.Format())
		}
		fmt.Print(rs.snapshot)
		fmt.Print(game.FormatUnitStats(rs.units))
		fmt.Printf("--- last %d ticks ---\n%s", logTailTicks, rs.logTail)
	}
	fmt.Println()
}

func printAggregate(all []runStats) {
	if len(all) == 0 {
		return
	}
	outcomes := map[string]int{}
	var turns, changes, counters, stalemates []int
	for _, rs := range all {
		outcomes[rs.outcome.Outcome.String()]++
		turns = append(turns, rs.outcome.Turns)
		changes = append(changes, rs.strategyChanges)
		counters = append(counters, rs.counters)
		stalemates = append(stalemates, rs.stalemates)
	}

	fmt.Println("=== Aggregate ===")
	fmt.Printf("runs=%d\n", len(all))
	keys := make([]string, 0, len(outcomes))
	for k := range outcomes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var parts []string
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d (%.0f%%)", k, outcomes[k], float64(outcomes[k])/float64(len(all))*100))
	}
	fmt.Printf("outcomes: %s\n", strings.Join(parts, " "))
	fmt.Printf("avg_per_run: turns=%.1f strategy_changes=%.1f counters=%.1f stalemates=%.1f\n",
		mean(turns), mean(changes), mean(counters), mean(stalemates))

	// Best performers across runs by archetype prefix of the unit id.
	byArch := map[string][]float64{}
	for _, rs := range all {
		for _, u := range rs.units {
			arch := u.ID
			if i := strings.LastIndexByte(arch, '_'); i > 0 {
				arch = arch[:i]
			}
			byArch[arch] = append(byArch[arch], u.Score())
		}
	}
	archs := make([]string, 0, len(byArch))
	for a := range byArch {
		archs = append(archs, a)
	}
	sort.Strings(archs)
	fmt.Println("\n--- Average score by archetype ---")
	for _, a := range archs {
		sum := 0.0
		for _, s := range byArch[a] {
			sum += s
		}
		fmt.Printf("  %-10s n=%-3d avg=%.1f\n", a, len(byArch[a]), sum/float64(len(byArch[a])))
	}
}

func mean(vals []int) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0
	for _, v := range vals {
		sum += v
	}
	return float64(sum) / float64(len(vals))
}
