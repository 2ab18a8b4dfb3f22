package game

import (
	"fmt"
	"strings"
)

// SimLogEntry is one recorded battle event.
type SimLogEntry struct {
	Tick     int
	Unit     string  // unit id e.g. "rifle_4", or "" for battle-wide events
	Team     string  // "A", "B", or "" for battle-wide events
	Category string  // combat, move, death, spy, heal, strategy, phase, redeploy, ai, setup
	Key      string  // specific event name within the category
	Value    string  // human-readable detail
	NumVal   float64 // optional numeric value for threshold checks
}

// String formats the entry as a fixed-width log line.
//
//	[T=042] rifle_4      combat    hit              rifle_4 hits mil_9 for 31
func (e SimLogEntry) String() string {
	unit := e.Unit
	if unit == "" {
		unit = "--"
	}
	return fmt.Sprintf("[T=%03d] %-12s %-9s %-16s %s",
		e.Tick, unit, e.Category, e.Key, e.Value)
}

// SimLog collects structured events for a battle. It is unbounded and
// machine-readable; the viewer keeps its own ring buffer on top.
type SimLog struct {
	entries []SimLogEntry
	verbose bool
}

// NewSimLog creates a SimLog. If verbose is true, per-unit plan entries are
// also recorded every tick.
func NewSimLog(verbose bool) *SimLog {
	return &SimLog{verbose: verbose}
}

// Verbose reports whether per-tick detail is being recorded.
func (sl *SimLog) Verbose() bool { return sl.verbose }

// Add records a new entry.
func (sl *SimLog) Add(tick int, unit, team, category, key, value string, numVal float64) {
	sl.entries = append(sl.entries, SimLogEntry{
		Tick:     tick,
		Unit:     unit,
		Team:     team,
		Category: category,
		Key:      key,
		Value:    value,
		NumVal:   numVal,
	})
}

// AddVerbose records an entry only when verbose mode is on.
func (sl *SimLog) AddVerbose(tick int, unit, team, category, key, value string, numVal float64) {
	if !sl.verbose {
		return
	}
	sl.Add(tick, unit, team, category, key, value, numVal)
}

// Entries returns all recorded entries.
func (sl *SimLog) Entries() []SimLogEntry {
	return sl.entries
}

// Filter returns entries matching the given category and/or key.
// Pass empty string to match any value for that field.
func (sl *SimLog) Filter(category, key string) []SimLogEntry {
	var out []SimLogEntry
	for _, e := range sl.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		out = append(out, e)
	}
	return out
}

// FilterUnit returns entries for one unit id.
func (sl *SimLog) FilterUnit(id string) []SimLogEntry {
	var out []SimLogEntry
	for _, e := range sl.entries {
		if e.Unit == id {
			out = append(out, e)
		}
	}
	return out
}

// FilterTickRange returns entries within [fromTick, toTick] inclusive.
func (sl *SimLog) FilterTickRange(fromTick, toTick int) []SimLogEntry {
	var out []SimLogEntry
	for _, e := range sl.entries {
		if e.Tick >= fromTick && e.Tick <= toTick {
			out = append(out, e)
		}
	}
	return out
}

// Count returns how many entries match the given category and key.
func (sl *SimLog) Count(category, key string) int {
	return len(sl.Filter(category, key))
}

// LastOf returns the most recent entry matching category+key, or false if none.
func (sl *SimLog) LastOf(category, key string) (SimLogEntry, bool) {
	entries := sl.Filter(category, key)
	if len(entries) == 0 {
		return SimLogEntry{}, false
	}
	return entries[len(entries)-1], true
}

// HasEntry returns true if at least one entry matches category, key, and value substring.
func (sl *SimLog) HasEntry(category, key, valueSubstr string) bool {
	for _, e := range sl.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		if valueSubstr != "" && !strings.Contains(e.Value, valueSubstr) {
			continue
		}
		return true
	}
	return false
}

// Format returns the full log as a single string for t.Log output.
func (sl *SimLog) Format() string {
	var sb strings.Builder
	for _, e := range sl.entries {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// FormatRange returns a log string filtered to a tick range.
func (sl *SimLog) FormatRange(fromTick, toTick int) string {
	var sb strings.Builder
	for _, e := range sl.FilterTickRange(fromTick, toTick) {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Summary returns a short human-readable summary of the battle state.
func (sl *SimLog) Summary(b *Battle) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "--- Summary at T=%03d (%s) ---\n", b.Turn, b.Phase)

	for _, t := range []Team{TeamA, TeamB} {
		counts := map[Archetype]int{}
		hp, maxHP := 0, 0
		for _, u := range b.Units {
			if u.Alive && u.RealTeam == t {
				counts[u.Arch]++
				hp += u.HP
				maxHP += u.MaxHP
			}
		}
		fmt.Fprintf(&sb, "Team %s [%s]: ", t, b.Strategy(t))
		for a := Archetype(0); a < archetypeCount; a++ {
			if n := counts[a]; n > 0 {
				fmt.Fprintf(&sb, "%s=%d  ", a, n)
			}
		}
		fmt.Fprintf(&sb, "hp=%d/%d  lost=%d\n", hp, maxHP, b.Casualties[t])
	}
	fmt.Fprintf(&sb, "Tide: %.2f\n", b.Tide())

	if ts := b.TeamState(TeamA); ts.PriorityTarget != "" {
		fmt.Fprintf(&sb, "A priority target: %s\n", ts.PriorityTarget)
	}
	if ts := b.TeamState(TeamB); ts.PriorityTarget != "" {
		fmt.Fprintf(&sb, "B priority target: %s\n", ts.PriorityTarget)
	}
	return sb.String()
}
