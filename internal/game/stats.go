package game

import (
	"fmt"
	"sort"
	"strings"
)

// UnitStats is one unit's combat record, rebuilt from the SimLog.
type UnitStats struct {
	ID          string
	Team        string // colours at the time of its first entry
	DamageDealt int
	DamageTaken int
	Healed      int // hp restored to others and self
	Attacks     int
	Grenades    int
	Backstabs   int
	Died        bool
	DeathTurn   int
}

// Score is a rough contribution figure: damage dealt plus healing, minus
// half the damage taken, with a flat penalty for dying.
func (s UnitStats) Score() float64 {
	v := float64(s.DamageDealt) + float64(s.Healed) - float64(s.DamageTaken)/2
	if s.Died {
		v -= 25
	}
	return v
}

// Grade buckets Score into a letter.
func (s UnitStats) Grade() string {
	switch v := s.Score(); {
	case v >= 150:
		return "A"
	case v >= 80:
		return "B"
	case v >= 30:
		return "C"
	case v >= 0:
		return "D"
	default:
		return "F"
	}
}

// CollectUnitStats walks the log and returns one record per unit that
// appears in it, ordered by team then id. Corpses and walls are skipped.
func CollectUnitStats(sl *SimLog) []UnitStats {
	byID := make(map[string]*UnitStats)
	get := func(e SimLogEntry) *UnitStats {
		s, ok := byID[e.Unit]
		if !ok {
			s = &UnitStats{ID: e.Unit, Team: e.Team}
			byID[e.Unit] = s
		}
		return s
	}
	for _, e := range sl.Entries() {
		if e.Unit == "" || e.Team == TeamObstacle.String() || e.Team == TeamCorpse.String() {
			continue
		}
		switch e.Category {
		case "combat":
			s := get(e)
			switch e.Key {
			case "attacks", "blasts":
				s.Attacks++
				s.DamageDealt += int(e.NumVal)
			case "backstabs":
				s.Backstabs++
				s.DamageDealt += int(e.NumVal)
			case "grenade":
				s.Grenades++
				s.DamageDealt += int(e.NumVal)
			case "collateral":
				s.DamageDealt += int(e.NumVal)
			case "damage":
				s.DamageTaken += int(e.NumVal)
			}
		case "heal":
			get(e).Healed += int(e.NumVal)
		case "death":
			if e.Key == "died" {
				s := get(e)
				s.Died, s.DeathTurn = true, e.Tick
			}
		}
	}
	out := make([]UnitStats, 0, len(byID))
	for _, s := range byID {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Team != out[j].Team {
			return out[i].Team < out[j].Team
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// FormatUnitStats renders a per-unit table grouped by team.
func FormatUnitStats(stats []UnitStats) string {
	var sb strings.Builder
	sb.WriteString("\n=== Unit Records ===\n")
	team := ""
	for _, s := range stats {
		if s.Team != team {
			team = s.Team
			fmt.Fprintf(&sb, "\n--- Team %s ---\n", team)
		}
		status := "survived"
		if s.Died {
			status = fmt.Sprintf("KIA T=%d", s.DeathTurn)
		}
		fmt.Fprintf(&sb, "  %s  %-14s [%s] dealt=%d taken=%d healed=%d attacks=%d grenades=%d backstabs=%d\n",
			s.Grade(), s.ID, status, s.DamageDealt, s.DamageTaken, s.Healed, s.Attacks, s.Grenades, s.Backstabs)
	}
	return sb.String()
}
