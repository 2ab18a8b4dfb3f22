package game

import "fmt"

// TestSim is a headless battle harness used by tests and the batch runner.
// It drives Battle.Tick without the viewer and samples a report every tick.
type TestSim struct {
	Battle   *Battle
	SimLog   *SimLog
	Reporter *SimReporter

	stopOnRedeploy bool
}

// SimOption configures a TestSim. Battle options pass straight through.
type SimOption struct {
	battle  []Option
	harness func(*TestSim)
}

// Sim wraps Battle options for NewTestSim.
func Sim(opts ...Option) SimOption { return SimOption{battle: opts} }

// WithReportWindow sets the sliding window of the harness reporter.
func WithReportWindow(ticks int) SimOption {
	return SimOption{harness: func(ts *TestSim) { ts.Reporter = NewSimReporter(ticks) }}
}

// WithStopOnRedeploy makes RunToEnd stop after the first completed
// battle-redeploy wave as well as at GAME_OVER.
func WithStopOnRedeploy(on bool) SimOption {
	return SimOption{harness: func(ts *TestSim) { ts.stopOnRedeploy = on }}
}

// NewTestSim builds the battle first, then applies harness options.
func NewTestSim(opts ...SimOption) (*TestSim, error) {
	var bopts []Option
	for _, o := range opts {
		bopts = append(bopts, o.battle...)
	}
	b, err := NewBattle(bopts...)
	if err != nil {
		return nil, fmt.Errorf("new test sim: %w", err)
	}
	ts := &TestSim{
		Battle:   b,
		SimLog:   b.Log,
		Reporter: NewSimReporter(reportWindowTicks),
	}
	for _, o := range opts {
		if o.harness != nil {
			o.harness(ts)
		}
	}
	// A verbose battle log gets per-unit reports to match.
	ts.Reporter.SetVerbose(b.Log.Verbose())
	return ts, nil
}

// Done reports whether the battle has reached its end condition.
func (ts *TestSim) Done() bool {
	return ts.Battle.Phase == PhaseGameOver || (ts.stopOnRedeploy && ts.Battle.Waves > 0)
}

// RunTicks advances the battle n ticks, stopping early at the end condition.
func (ts *TestSim) RunTicks(n int) {
	for i := 0; i < n && !ts.Done(); i++ {
		ts.step()
	}
}

// RunUntil advances up to maxTicks, stopping early when predicate holds.
// Returns the turn at which it held, or -1.
func (ts *TestSim) RunUntil(predicate func(*TestSim) bool, maxTicks int) int {
	for i := 0; i < maxTicks; i++ {
		ts.step()
		if predicate(ts) {
			return ts.Battle.Turn
		}
		if ts.Done() {
			break
		}
	}
	return -1
}

// RunToEnd advances until the end condition or maxTicks and returns the
// number of ticks run.
func (ts *TestSim) RunToEnd(maxTicks int) int {
	n := 0
	for ; n < maxTicks && !ts.Done(); n++ {
		ts.step()
	}
	return n
}

func (ts *TestSim) step() {
	ts.Battle.Tick()
	ts.Reporter.Collect(ts.Battle)
}

// CurrentTick returns the battle's turn counter.
func (ts *TestSim) CurrentTick() int { return ts.Battle.Turn }

// SimSnapshot is a lightweight copy of the board at one tick.
type SimSnapshot struct {
	Tick  int
	Phase Phase
	Units []UnitSnapshot
}

// UnitSnapshot is one unit's state at a tick.
type UnitSnapshot struct {
	ID       string
	Arch     Archetype
	Team     Team
	RealTeam Team
	Pos      Point
	HP       int
	Alive    bool
	Plan     Plan
}

// Snapshot copies the current state of every unit.
func (ts *TestSim) Snapshot() SimSnapshot {
	b := ts.Battle
	snap := SimSnapshot{Tick: b.Turn, Phase: b.Phase}
	for _, u := range b.Units {
		snap.Units = append(snap.Units, UnitSnapshot{
			ID:       u.ID,
			Arch:     u.Arch,
			Team:     u.Team,
			RealTeam: u.RealTeam,
			Pos:      u.Pos,
			HP:       u.HP,
			Alive:    u.Alive,
			Plan:     u.Plan,
		})
	}
	return snap
}
