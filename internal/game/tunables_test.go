package game

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseTunables_OverlaysDefaults(t *testing.T) {
	data := []byte(`
generic_damage: {min: 40, max: 10}
bandage_heal: 40
hp:
  soldier: 120
move_temperature: 0
`)
	cfg, err := ParseTunables(data)
	if err != nil {
		t.Fatalf("ParseTunables: %v", err)
	}
	if cfg.Generic != (DamageRange{Min: 10, Max: 40}) {
		t.Fatalf("generic = %+v, want swapped 10..40", cfg.Generic)
	}
	if cfg.BandageHeal != 40 || cfg.HP.Soldier != 120 {
		t.Fatalf("overrides lost: heal=%d soldier=%d", cfg.BandageHeal, cfg.HP.Soldier)
	}
	if cfg.HP.General != 200 || cfg.Sniper.Range != 4 {
		t.Fatalf("defaults lost: general=%d sniper range=%d", cfg.HP.General, cfg.Sniper.Range)
	}
	if cfg.MoveTemperature != 1 {
		t.Fatalf("temperature = %d, want clamped to 1", cfg.MoveTemperature)
	}
}

func TestSetTunables_MidRun(t *testing.T) {
	b := newTestBattle(t)
	a := mustAdd(t, b, 0, 0, ArchSoldier, TeamA)
	e := mustAdd(t, b, 1, 0, ArchSoldier, TeamB)

	cfg := testTunables()
	cfg.HP.Soldier = 999
	cfg.Generic = DamageRange{Min: 50, Max: 50}
	b.SetTunables(cfg)

	if a.MaxHP != 100 || e.MaxHP != 100 {
		t.Fatalf("placed units lost their max hp: %d/%d", a.MaxHP, e.MaxHP)
	}
	late := mustAdd(t, b, 8, 8, ArchSoldier, TeamA)
	if late.MaxHP != 999 || late.HP != 999 {
		t.Fatalf("new unit hp = %d/%d, want 999", late.HP, late.MaxHP)
	}

	a.Plan = Attack(e.ID)
	b.Step()
	if e.HP != 50 {
		t.Fatalf("hp = %d, want the live 50 damage applied", e.HP)
	}
}

func TestParseTunables_Doctrine(t *testing.T) {
	data := []byte(`
doctrine:
  - name: always-ambush
    priority: 1
    when: "Ratio > 0"
    then: "Ambush"
`)
	cfg, err := ParseTunables(data)
	if err != nil {
		t.Fatalf("ParseTunables: %v", err)
	}
	b, err := NewBattle(WithTunables(NewTunableStore(cfg)))
	if err != nil {
		t.Fatalf("NewBattle: %v", err)
	}
	rules := b.doctrine.Rules()
	if len(rules) != 1 || rules[0].Then != StrategyAmbush {
		t.Fatalf("rules = %+v", rules)
	}
}

func TestParseTunables_Errors(t *testing.T) {
	if _, err := ParseTunables([]byte("hp: [1, 2")); err == nil {
		t.Fatal("expected yaml error")
	}
	if _, err := ParseTunables([]byte("doctrine:\n  - name: x\n    when: \"true\"\n    then: \"Charge\"\n")); err == nil {
		t.Fatal("expected unknown strategy error")
	}
}

func TestNewBattle_BadDoctrine(t *testing.T) {
	cfg := DefaultTunables()
	cfg.Doctrine = []DoctrineRule{{Name: "broken", When: "Ratio >>", Then: StrategyAmbush}}
	if _, err := NewBattle(WithTunables(NewTunableStore(cfg))); err == nil {
		t.Fatal("expected doctrine compile error")
	}
}

func TestLoadTunables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tunables.yaml")
	if err := os.WriteFile(path, []byte("sniper:\n  range: 6\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := LoadTunables(path)
	if err != nil {
		t.Fatalf("LoadTunables: %v", err)
	}
	if cfg.Sniper.Range != 6 || cfg.Sniper.Cooldown != 2 {
		t.Fatalf("sniper = %+v", cfg.Sniper)
	}
	if _, err := LoadTunables(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected missing file error")
	}
}

func TestTunableStore_SetValidates(t *testing.T) {
	s := NewTunableStore(DefaultTunables())
	cfg := DefaultTunables()
	cfg.Commando.CollateralPercent = 250
	cfg.Rifle.MaxTargets = -2
	cfg.HP.Wall = 0
	s.Set(cfg)
	got := s.Get()
	if got.Commando.CollateralPercent != 100 || got.Rifle.MaxTargets != 0 || got.HP.Wall != 1 {
		t.Fatalf("not validated: %+v", got)
	}
}

func TestTunables_MaxHPAndBandages(t *testing.T) {
	cfg := DefaultTunables()
	hp := map[Archetype]int{
		ArchSoldier: 100, ArchCivilian: 75, ArchRifle: 125, ArchSniper: 125, ArchMedic: 125,
		ArchGrenadier: 125, ArchGeneral: 200, ArchSpy: 75, ArchCommando: 200, ArchWall: 500,
		ArchMarksman: 115, ArchCorpse: 50,
	}
	for a, want := range hp {
		if got := cfg.MaxHP(a); got != want {
			t.Errorf("MaxHP(%s) = %d, want %d", a, got, want)
		}
	}
	if cfg.Bandages(ArchGeneral) != 10 || cfg.Bandages(ArchSniper) != 0 || cfg.Bandages(ArchMedic) != 3 {
		t.Fatal("unexpected bandage counts")
	}
}
