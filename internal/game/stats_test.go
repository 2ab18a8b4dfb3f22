package game

import (
	"strings"
	"testing"
)

func TestCollectUnitStats(t *testing.T) {
	sl := NewSimLog(false)
	sl.Add(1, "mil_1", "A", "combat", "attacks", "mil_1 attacks mil_2 for 30", 30)
	sl.Add(1, "mil_2", "B", "combat", "damage", "mil_2 takes 30", 30)
	sl.Add(2, "medic_3", "A", "heal", "treat", "medic_3 heals mil_1 for 20", 20)
	sl.Add(2, "gren_5", "A", "combat", "grenade", "gren_5 throws grenade", 160)
	sl.Add(3, "mil_2", "B", "death", "died", "mil_2 died", 0)
	sl.Add(3, "wall_4", "OBSTACLE", "combat", "damage", "wall_4 takes 15", 15)
	sl.Add(3, "corpse_mil_2", "CORPSE", "death", "corpse", "corpse left", 0)
	sl.Add(4, "", "", "phase", "victory", "COMBAT -> GAME_OVER", 0)

	stats := CollectUnitStats(sl)
	if len(stats) != 4 {
		t.Fatalf("records = %d, want 4: %+v", len(stats), stats)
	}
	ids := []string{stats[0].ID, stats[1].ID, stats[2].ID, stats[3].ID}
	if strings.Join(ids, ",") != "gren_5,medic_3,mil_1,mil_2" {
		t.Fatalf("order = %v", ids)
	}

	gren, medic, shooter, victim := stats[0], stats[1], stats[2], stats[3]
	if gren.Grenades != 1 || gren.DamageDealt != 160 || gren.Grade() != "A" {
		t.Errorf("grenadier = %+v grade %s", gren, gren.Grade())
	}
	if medic.Healed != 20 || medic.Grade() != "D" {
		t.Errorf("medic = %+v grade %s", medic, medic.Grade())
	}
	if shooter.Attacks != 1 || shooter.DamageDealt != 30 || shooter.Grade() != "C" {
		t.Errorf("shooter = %+v grade %s", shooter, shooter.Grade())
	}
	if !victim.Died || victim.DeathTurn != 3 || victim.DamageTaken != 30 {
		t.Errorf("victim = %+v", victim)
	}
	if victim.Score() != -40 || victim.Grade() != "F" {
		t.Errorf("victim score = %v grade %s", victim.Score(), victim.Grade())
	}

	out := FormatUnitStats(stats)
	if !strings.Contains(out, "--- Team A ---") || !strings.Contains(out, "KIA T=3") {
		t.Fatalf("format:\n%s", out)
	}
}
