package game

import (
	"fmt"
	"strings"
)

// reportWindowTicks is the default sliding window for recent-behaviour reports.
const reportWindowTicks = 20

// TeamReport captures one side's state at one tick. Units count toward their
// real side, so undercover spies are included.
type TeamReport struct {
	Alive      int
	Dead       int
	Wounded    int // hp below max but alive
	HP         int
	Strength   float64
	Strategy   Strategy
	Stalemated int

	// Plan distribution for the tick (PlanKind -> count).
	Plans map[PlanKind]int
}

// UnitReport captures a single unit's state.
type UnitReport struct {
	ID       string
	Arch     Archetype
	Team     Team
	RealTeam Team
	Pos      Point
	HP       int
	Plan     Plan
}

// SimReport is a full snapshot of the battle at one tick.
type SimReport struct {
	Tick  int
	Phase Phase
	Tide  float64
	Teams [2]TeamReport

	// Units detail, only in verbose mode.
	Units []UnitReport
}

// SimReporter collects per-tick reports from a battle and summarises them
// over a sliding window.
type SimReporter struct {
	history     []SimReport
	windowTicks int
	verbose     bool
}

// NewSimReporter creates a reporter with the given window size.
func NewSimReporter(windowTicks int) *SimReporter {
	if windowTicks <= 0 {
		windowTicks = reportWindowTicks
	}
	return &SimReporter{windowTicks: windowTicks}
}

// SetVerbose makes Collect record every unit.
func (r *SimReporter) SetVerbose(v bool) { r.verbose = v }

// Collect gathers a snapshot from the current battle state.
func (r *SimReporter) Collect(b *Battle) {
	report := SimReport{Tick: b.Turn, Phase: b.Phase, Tide: b.Tide()}
	for _, t := range []Team{TeamA, TeamB} {
		tr := &report.Teams[t]
		tr.Strategy = b.Strategy(t)
		tr.Plans = make(map[PlanKind]int)
	}
	for _, u := range b.Units {
		if !u.RealTeam.Combatant() {
			continue
		}
		tr := &report.Teams[u.RealTeam]
		if !u.Alive {
			tr.Dead++
			continue
		}
		tr.Alive++
		tr.HP += u.HP
		if u.Wounded() {
			tr.Wounded++
		}
		tr.Plans[u.Plan.Kind]++
		if u.Team.Combatant() && b.IsStalemated(u) {
			tr.Stalemated++
		}
		if r.verbose {
			report.Units = append(report.Units, UnitReport{
				ID: u.ID, Arch: u.Arch, Team: u.Team, RealTeam: u.RealTeam, Pos: u.Pos, HP: u.HP, Plan: u.Plan,
			})
		}
	}
	for _, t := range []Team{TeamA, TeamB} {
		var mine []*Unit
		for _, u := range b.Units {
			if u.Alive && u.RealTeam == t {
				mine = append(mine, u)
			}
		}
		report.Teams[t].Strength = Strength(mine)
	}

	r.history = append(r.history, report)

	// Prune old history beyond 2x window to prevent unbounded growth.
	maxKeep := max(r.windowTicks*2, 100)
	if len(r.history) > maxKeep {
		r.history = r.history[len(r.history)-maxKeep:]
	}
}

// Latest returns the most recent report, or nil if none collected yet.
func (r *SimReporter) Latest() *SimReport {
	if len(r.history) == 0 {
		return nil
	}
	return &r.history[len(r.history)-1]
}

// History returns all retained reports.
func (r *SimReporter) History() []SimReport { return r.history }

// WindowReport is an aggregated summary over a window of ticks.
type WindowReport struct {
	FromTick, ToTick int
	SampleCount      int

	AvgTide      float64
	AvgAlive     [2]float64
	AvgWounded   [2]float64
	AvgHP        [2]float64
	AvgStalemate [2]float64

	// Plan distribution as percentages (0-100).
	PlanPct [2]map[PlanKind]float64

	// Strategy changes seen inside the window.
	StrategyChanges [2]int
	// Dead at the newest sample.
	Dead [2]int
}

// WindowSummary aggregates every report in the recent window.
func (r *SimReporter) WindowSummary() *WindowReport {
	if len(r.history) == 0 {
		return nil
	}
	latestTick := r.history[len(r.history)-1].Tick
	cutoff := latestTick - r.windowTicks
	var window []SimReport
	for i := len(r.history) - 1; i >= 0; i-- {
		if r.history[i].Tick <= cutoff {
			break
		}
		window = append(window, r.history[i])
	}
	if len(window) == 0 {
		return nil
	}

	n := float64(len(window))
	wr := &WindowReport{
		FromTick:    window[len(window)-1].Tick,
		ToTick:      window[0].Tick,
		SampleCount: len(window),
	}
	var planTotals [2]map[PlanKind]float64
	var planCount [2]float64
	for t := range planTotals {
		planTotals[t] = make(map[PlanKind]float64)
		wr.PlanPct[t] = make(map[PlanKind]float64)
		wr.Dead[t] = window[0].Teams[t].Dead
	}
	for i, rpt := range window {
		wr.AvgTide += rpt.Tide
		for t := range rpt.Teams {
			tr := rpt.Teams[t]
			wr.AvgAlive[t] += float64(tr.Alive)
			wr.AvgWounded[t] += float64(tr.Wounded)
			wr.AvgHP[t] += float64(tr.HP)
			wr.AvgStalemate[t] += float64(tr.Stalemated)
			for k, c := range tr.Plans {
				planTotals[t][k] += float64(c)
				planCount[t] += float64(c)
			}
			// window is newest first
			if i+1 < len(window) && window[i+1].Teams[t].Strategy != tr.Strategy {
				wr.StrategyChanges[t]++
			}
		}
	}
	wr.AvgTide /= n
	for t := range wr.AvgAlive {
		wr.AvgAlive[t] /= n
		wr.AvgWounded[t] /= n
		wr.AvgHP[t] /= n
		wr.AvgStalemate[t] /= n
		if planCount[t] > 0 {
			for k, c := range planTotals[t] {
				wr.PlanPct[t][k] = c / planCount[t] * 100
			}
		}
	}
	return wr
}

// Format returns a human-readable multi-line string of the window summary.
func (wr *WindowReport) Format() string {
	if wr == nil {
		return "No data collected yet.\n"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "=== Battle Report (T=%d..%d, %d samples) ===\n", wr.FromTick, wr.ToTick, wr.SampleCount)
	fmt.Fprintf(&sb, "tide=%.2f (%s)\n", wr.AvgTide, tideLabel(wr.AvgTide))
	for _, t := range []Team{TeamA, TeamB} {
		fmt.Fprintf(&sb, "\n--- Team %s ---\n", t)
		fmt.Fprintf(&sb, "  alive=%.1f wounded=%.1f hp=%.0f dead=%d stalemated=%.1f strategy_changes=%d\n",
			wr.AvgAlive[t], wr.AvgWounded[t], wr.AvgHP[t], wr.Dead[t], wr.AvgStalemate[t], wr.StrategyChanges[t])
		sb.WriteString("  plans:")
		for k := PlanHold; k <= PlanHeal; k++ {
			if pct := wr.PlanPct[t][k]; pct > 0.5 {
				fmt.Fprintf(&sb, " %s=%.0f%%", k, pct)
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func tideLabel(tide float64) string {
	switch {
	case tide > 0.75:
		return "A dominant"
	case tide > 0.55:
		return "A ahead"
	case tide >= 0.45:
		return "even"
	case tide >= 0.25:
		return "B ahead"
	default:
		return "B dominant"
	}
}

// FormatLatest returns a concise snapshot of the most recent report.
func (r *SimReporter) FormatLatest() string {
	rpt := r.Latest()
	if rpt == nil {
		return "No data.\n"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "--- Snapshot T=%d %s tide=%.2f ---\n", rpt.Tick, rpt.Phase, rpt.Tide)
	for _, t := range []Team{TeamA, TeamB} {
		tr := rpt.Teams[t]
		fmt.Fprintf(&sb, "%s: alive=%d dead=%d wounded=%d hp=%d strength=%.1f strategy=%s\n",
			t, tr.Alive, tr.Dead, tr.Wounded, tr.HP, tr.Strength, tr.Strategy)
	}
	for _, u := range rpt.Units {
		fmt.Fprintf(&sb, "  %-12s %s hp=%d %s\n", u.ID, u.Pos, u.HP, u.Plan)
	}
	return sb.String()
}
