package game

import (
	"fmt"
	"os"
	"sync/atomic"

	"gopkg.in/yaml.v3"
)

// DamageRange is an inclusive roll range.
type DamageRange struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// HPTable holds the starting hit points per archetype.
type HPTable struct {
	Soldier   int `yaml:"soldier"`
	Civilian  int `yaml:"civilian"`
	Rifle     int `yaml:"rifle"`
	Sniper    int `yaml:"sniper"`
	Medic     int `yaml:"medic"`
	Grenadier int `yaml:"grenadier"`
	General   int `yaml:"general"`
	Spy       int `yaml:"spy"`
	Commando  int `yaml:"commando"`
	Wall      int `yaml:"wall"`
	Marksman  int `yaml:"marksman"`
	Corpse    int `yaml:"corpse"`
}

type RifleTunables struct {
	Damage     DamageRange `yaml:"damage"`
	MaxTargets int         `yaml:"max_targets"`
	Bandages   int         `yaml:"bandages"`
}

type SniperTunables struct {
	Damage   DamageRange `yaml:"damage"`
	Cooldown int         `yaml:"cooldown"`
	Range    int         `yaml:"range"`
}

type MarksmanTunables struct {
	Damage DamageRange `yaml:"damage"`
	Range  int         `yaml:"range"`
}

type MedicTunables struct {
	Heal         DamageRange `yaml:"heal"`
	Bandages     int         `yaml:"bandages"`
	HealCooldown int         `yaml:"heal_cooldown"`
}

type GrenadierTunables struct {
	Damage   DamageRange `yaml:"damage"`
	Cooldown int         `yaml:"cooldown"`
	Range    int         `yaml:"range"`
}

type SpyTunables struct {
	Backstab DamageRange `yaml:"backstab"`
	Cooldown int         `yaml:"cooldown"`
}

type CommandoTunables struct {
	Damage            DamageRange `yaml:"damage"`
	MaxTargets        int         `yaml:"max_targets"`
	AttackCooldown    int         `yaml:"attack_cooldown"`
	MoveCooldown      int         `yaml:"move_cooldown"`
	Bandages          int         `yaml:"bandages"`
	CollateralPercent int         `yaml:"collateral_percent"`
}

// Tunables is every balance constant of the simulation.
type Tunables struct {
	HP              HPTable           `yaml:"hp"`
	Generic         DamageRange       `yaml:"generic_damage"`
	Rifle           RifleTunables     `yaml:"rifle"`
	Sniper          SniperTunables    `yaml:"sniper"`
	Marksman        MarksmanTunables  `yaml:"marksman"`
	Medic           MedicTunables     `yaml:"medic"`
	SoldierBandages int               `yaml:"soldier_bandages"`
	Grenadier       GrenadierTunables `yaml:"grenadier"`
	Spy             SpyTunables       `yaml:"spy"`
	Commando        CommandoTunables  `yaml:"commando"`
	GeneralBandages int               `yaml:"general_bandages"`
	BandageHeal     int               `yaml:"bandage_heal"`
	MoveTemperature int               `yaml:"move_temperature"`

	// Doctrine replaces the built-in counter-strategy rules when non-empty.
	Doctrine []DoctrineRule `yaml:"doctrine,omitempty"`
}

// DefaultTunables returns the stock balance.
func DefaultTunables() Tunables {
	return Tunables{
		HP: HPTable{
			Soldier: 100, Civilian: 75, Rifle: 125, Sniper: 125, Medic: 125, Grenadier: 125,
			General: 200, Spy: 75, Commando: 200, Wall: 500, Marksman: 115, Corpse: 50,
		},
		Generic:         DamageRange{20, 35},
		Rifle:           RifleTunables{Damage: DamageRange{25, 35}, MaxTargets: 3, Bandages: 3},
		Sniper:          SniperTunables{Damage: DamageRange{50, 85}, Cooldown: 2, Range: 4},
		Marksman:        MarksmanTunables{Damage: DamageRange{30, 45}, Range: 2},
		Medic:           MedicTunables{Heal: DamageRange{30, 45}, Bandages: 3, HealCooldown: 1},
		SoldierBandages: 3,
		Grenadier:       GrenadierTunables{Damage: DamageRange{70, 90}, Cooldown: 3, Range: 2},
		Spy:             SpyTunables{Backstab: DamageRange{80, 125}, Cooldown: 3},
		Commando: CommandoTunables{
			Damage: DamageRange{50, 85}, MaxTargets: 3, AttackCooldown: 1, MoveCooldown: 1,
			Bandages: 3, CollateralPercent: 25,
		},
		GeneralBandages: 10,
		BandageHeal:     25,
		MoveTemperature: 3,
	}
}

// ParseTunables overlays YAML onto the defaults, so a file only needs the
// keys it changes.
func ParseTunables(data []byte) (Tunables, error) {
	t := DefaultTunables()
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Tunables{}, fmt.Errorf("parse tunables: %w", err)
	}
	t.Validate()
	return t, nil
}

// LoadTunables reads a YAML tunables file.
func LoadTunables(path string) (Tunables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Tunables{}, fmt.Errorf("read tunables %s: %w", path, err)
	}
	return ParseTunables(data)
}

// Validate clamps values into usable ranges: inverted roll ranges are
// swapped, negative counts become zero and temperature is at least 1.
func (t *Tunables) Validate() {
	for _, r := range []*DamageRange{
		&t.Generic, &t.Rifle.Damage, &t.Sniper.Damage, &t.Marksman.Damage, &t.Medic.Heal,
		&t.Grenadier.Damage, &t.Spy.Backstab, &t.Commando.Damage,
	} {
		r.Min = max(r.Min, 0)
		r.Max = max(r.Max, 0)
		if r.Min > r.Max {
			r.Min, r.Max = r.Max, r.Min
		}
	}
	for _, hp := range []*int{
		&t.HP.Soldier, &t.HP.Civilian, &t.HP.Rifle, &t.HP.Sniper, &t.HP.Medic, &t.HP.Grenadier,
		&t.HP.General, &t.HP.Spy, &t.HP.Commando, &t.HP.Wall, &t.HP.Marksman, &t.HP.Corpse,
	} {
		*hp = max(*hp, 1)
	}
	for _, n := range []*int{
		&t.Rifle.MaxTargets, &t.Rifle.Bandages, &t.Sniper.Cooldown, &t.Sniper.Range,
		&t.Marksman.Range, &t.Medic.Bandages, &t.Medic.HealCooldown, &t.SoldierBandages,
		&t.Grenadier.Cooldown, &t.Grenadier.Range, &t.Spy.Cooldown, &t.Commando.MaxTargets,
		&t.Commando.AttackCooldown, &t.Commando.MoveCooldown, &t.Commando.Bandages,
		&t.GeneralBandages, &t.BandageHeal,
	} {
		*n = max(*n, 0)
	}
	t.Commando.CollateralPercent = clampInt(t.Commando.CollateralPercent, 0, 100)
	t.MoveTemperature = max(t.MoveTemperature, 1)
}

// MaxHP returns the starting hit points for an archetype.
func (t *Tunables) MaxHP(a Archetype) int {
	switch a {
	case ArchSoldier:
		return t.HP.Soldier
	case ArchCivilian:
		return t.HP.Civilian
	case ArchRifle:
		return t.HP.Rifle
	case ArchSniper:
		return t.HP.Sniper
	case ArchMedic:
		return t.HP.Medic
	case ArchGrenadier:
		return t.HP.Grenadier
	case ArchGeneral:
		return t.HP.General
	case ArchSpy:
		return t.HP.Spy
	case ArchCommando:
		return t.HP.Commando
	case ArchWall:
		return t.HP.Wall
	case ArchMarksman:
		return t.HP.Marksman
	case ArchCorpse:
		return t.HP.Corpse
	}
	return t.HP.Soldier
}

// Bandages returns the self-aid charges an archetype starts with.
func (t *Tunables) Bandages(a Archetype) int {
	switch a {
	case ArchMedic:
		return t.Medic.Bandages
	case ArchSoldier:
		return t.SoldierBandages
	case ArchCommando:
		return t.Commando.Bandages
	case ArchRifle:
		return t.Rifle.Bandages
	case ArchGeneral:
		return t.GeneralBandages
	}
	return 0
}

// TunableStore holds the live tunables. Readers always see a complete
// snapshot; Set swaps it atomically, even mid-battle.
type TunableStore struct {
	p atomic.Pointer[Tunables]
}

// NewTunableStore wraps t after validation.
func NewTunableStore(t Tunables) *TunableStore {
	s := &TunableStore{}
	s.Set(t)
	return s
}

// Get returns the current snapshot. Callers must not mutate it.
func (s *TunableStore) Get() *Tunables { return s.p.Load() }

// Set validates and publishes a new snapshot.
func (s *TunableStore) Set(t Tunables) {
	t.Validate()
	s.p.Store(&t)
}
