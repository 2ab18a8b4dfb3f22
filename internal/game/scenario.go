package game

import (
	_ "embed"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed scenarios/scenarios.yaml
var scenarioYAML []byte

var (
	// ErrUnknownScenario is returned when a scenario id or name is not in
	// the catalogue.
	ErrUnknownScenario = errors.New("unknown scenario")
	// ErrNoRoom is returned when a scenario roster cannot be fully placed.
	ErrNoRoom = errors.New("no free cell for unit")
)

const spyPlacementAttempts = 200

// placementOrder fixes the order archetype counts are expanded in, so a
// seeded battle always shuffles the same list.
var placementOrder = []Archetype{
	ArchGeneral, ArchCommando, ArchSoldier, ArchRifle, ArchGrenadier,
	ArchSniper, ArchMarksman, ArchMedic, ArchCivilian,
}

// ScenarioObstacle is a wall or corpse at a fixed cell.
type ScenarioObstacle struct {
	Type string `yaml:"type"`
	X    int    `yaml:"x"`
	Y    int    `yaml:"y"`
}

// ScenarioUnit is a fighter at a fixed cell.
type ScenarioUnit struct {
	Type string `yaml:"type"`
	Team string `yaml:"team"`
	X    int    `yaml:"x"`
	Y    int    `yaml:"y"`
}

// Scenario is one catalogue entry. Teams holds per-archetype counts that
// are placed in formation; Units are placed exactly as given.
type Scenario struct {
	ID         int                       `yaml:"id"`
	Name       string                    `yaml:"name"`
	Lore       string                    `yaml:"lore"`
	AltName    string                    `yaml:"alt_name"`
	AltLore    string                    `yaml:"alt_lore"`
	Size       int                       `yaml:"size"`
	Teams      map[string]map[string]int `yaml:"teams"`
	Strategies map[string]Strategy       `yaml:"strategies"`
	Obstacles  []ScenarioObstacle        `yaml:"obstacles"`
	Units      []ScenarioUnit            `yaml:"units"`
}

var (
	catalogueOnce sync.Once
	catalogue     []Scenario
	catalogueErr  error
)

// Scenarios returns the built-in catalogue.
func Scenarios() ([]Scenario, error) {
	catalogueOnce.Do(func() {
		catalogue, catalogueErr = ParseScenarios(scenarioYAML)
	})
	return catalogue, catalogueErr
}

// ParseScenarios decodes a YAML scenario list.
func ParseScenarios(data []byte) ([]Scenario, error) {
	var out []Scenario
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse scenarios: %w", err)
	}
	return out, nil
}

// FindScenario looks a scenario up by id, name or alternate name.
func FindScenario(key string) (Scenario, error) {
	all, err := Scenarios()
	if err != nil {
		return Scenario{}, err
	}
	id, numeric := strconv.Atoi(key)
	for _, s := range all {
		if (numeric == nil && s.ID == id) || strings.EqualFold(s.Name, key) || (s.AltName != "" && strings.EqualFold(s.AltName, key)) {
			return s, nil
		}
	}
	return Scenario{}, fmt.Errorf("%w: %q", ErrUnknownScenario, key)
}

// LoadScenario replaces the board with a catalogue scenario.
func (b *Battle) LoadScenario(key string) error {
	s, err := FindScenario(key)
	if err != nil {
		return err
	}
	return b.ApplyScenario(s)
}

// ApplyScenario clears the board, resizes it and places the scenario:
// obstacles first, then each side in formation, then the spies.
func (b *Battle) ApplyScenario(s Scenario) error {
	if s.Size > 0 {
		b.Size = s.Size
	}
	b.Units = nil
	b.nextID = 0
	b.layout = nil
	b.Turn = 0
	b.Phase = PhaseCombat
	b.Casualties = [2]int{}
	b.RedeployTargets = make(map[string]Point)
	b.RedeployCounter = 0
	b.HasWinner = false
	b.Waves = 0
	for _, t := range []Team{TeamA, TeamB} {
		st := b.teams[t].Strategy
		if v, ok := s.Strategies[t.String()]; ok {
			st = v
		}
		b.teams[t] = TeamState{Strategy: st, Prev: st}
	}

	enforce := b.EnforceZones
	b.EnforceZones = false
	for _, o := range s.Obstacles {
		a, err := ParseArchetype(o.Type)
		if err != nil {
			b.EnforceZones = enforce
			return fmt.Errorf("scenario %d obstacle: %w", s.ID, err)
		}
		if _, err := b.AddUnit(o.X, o.Y, a, TeamObstacle); err != nil {
			b.EnforceZones = enforce
			return fmt.Errorf("scenario %d obstacle at (%d,%d): %w", s.ID, o.X, o.Y, err)
		}
	}
	b.EnforceZones = enforce

	for _, su := range s.Units {
		a, err := ParseArchetype(su.Type)
		if err != nil {
			return fmt.Errorf("scenario %d unit: %w", s.ID, err)
		}
		t, err := ParseTeam(su.Team)
		if err != nil {
			return fmt.Errorf("scenario %d unit: %w", s.ID, err)
		}
		if _, err := b.AddUnit(su.X, su.Y, a, t); err != nil {
			return fmt.Errorf("scenario %d unit %s at (%d,%d): %w", s.ID, a, su.X, su.Y, err)
		}
	}

	counts := make(map[Team]map[Archetype]int, 2)
	for _, t := range []Team{TeamA, TeamB} {
		counts[t] = make(map[Archetype]int)
		for name, n := range s.Teams[t.String()] {
			a, err := ParseArchetype(name)
			if err != nil {
				return fmt.Errorf("scenario %d team %s: %w", s.ID, t, err)
			}
			counts[t][a] += n
		}
	}
	for _, t := range []Team{TeamA, TeamB} {
		if err := b.placeFormation(t, counts[t]); err != nil {
			return fmt.Errorf("scenario %d: %w", s.ID, err)
		}
	}
	for _, t := range []Team{TeamA, TeamB} {
		if err := b.placeSpies(t, counts[t][ArchSpy]); err != nil {
			return fmt.Errorf("scenario %d: %w", s.ID, err)
		}
	}

	b.Log.Add(0, "", "", "setup", "scenario", fmt.Sprintf("scenario %d %q loaded, %d units", s.ID, s.Name, len(b.Units)), float64(s.ID))
	b.logger.Info("scenario loaded",
		zap.String("battle", b.ID),
		zap.Int("scenario", s.ID),
		zap.String("name", s.Name),
		zap.Int("size", b.Size),
		zap.Int("units", len(b.Units)),
	)
	return nil
}

// placeFormation puts a side's non-spy units into its home zone. Frontline
// troops are shuffled into the cells facing the enemy, everyone else fills
// from the rear; either group spills into the other half when its own runs out.
// A full zone overflows onto neutral ground unless zones are enforced.
func (b *Battle) placeFormation(team Team, counts map[Archetype]int) error {
	var frontline, support []Archetype
	for _, a := range placementOrder {
		for i := 0; i < counts[a]; i++ {
			if a.Role() == RoleFrontline {
				frontline = append(frontline, a)
			} else {
				support = append(support, a)
			}
		}
	}
	b.rng.Shuffle(len(frontline), func(i, j int) { frontline[i], frontline[j] = frontline[j], frontline[i] })
	b.rng.Shuffle(len(support), func(i, j int) { support[i], support[j] = support[j], support[i] })

	front, back := b.formationSlots(team)
	var overflow []Point
	overflowing := false
	place := func(a Archetype, first, spill *[]Point) error {
		p, ok := takeFirst(first)
		if !ok {
			p, ok = takeLast(spill)
		}
		if !ok && !b.EnforceZones {
			if !overflowing {
				overflow, overflowing = b.overflowSlots(team), true
				b.logger.Debug("zone full, spilling onto open ground",
					zap.String("team", team.String()), zap.Int("cells", len(overflow)))
			}
			p, ok = takeFirst(&overflow)
		}
		if !ok {
			return fmt.Errorf("%w: %s for team %s", ErrNoRoom, a, team)
		}
		if _, err := b.AddUnit(p.X, p.Y, a, team); err != nil {
			return fmt.Errorf("place %s for team %s: %w", a, team, err)
		}
		return nil
	}
	for _, a := range frontline {
		if err := place(a, &front, &back); err != nil {
			return err
		}
	}
	for _, a := range support {
		if err := place(a, &back, &front); err != nil {
			return err
		}
	}
	return nil
}

// placeSpies drops a side's spies at random free cells of the enemy zone.
// After a fixed number of misses the zone is scanned row by row.
func (b *Battle) placeSpies(owner Team, count int) error {
	if count <= 0 {
		return nil
	}
	z := b.ZoneFor(owner.Opponent())
	placed := 0
	for attempt := 0; placed < count && attempt < spyPlacementAttempts; attempt++ {
		x := z.X0 + b.rng.Intn(z.X1-z.X0+1)
		y := z.Y0 + b.rng.Intn(z.Y1-z.Y0+1)
		if _, err := b.AddUnit(x, y, ArchSpy, owner); err == nil {
			placed++
		}
	}
	for _, c := range z.Cells() {
		if placed == count {
			break
		}
		if b.UnitAt(c) != nil {
			continue
		}
		if _, err := b.AddUnit(c.X, c.Y, ArchSpy, owner); err == nil {
			placed++
		}
	}
	if placed < count {
		return fmt.Errorf("%w: %d of %d spies for team %s", ErrNoRoom, count-placed, count, owner)
	}
	return nil
}
