package game

import (
	"fmt"
	"sort"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"go.uber.org/zap"
)

// DoctrineEnv is what a counter-strategy condition can see.
type DoctrineEnv struct {
	Ratio                 float64 // own strength / enemy strength
	Proposed              string  // strategy picked from the strength thresholds
	Current               string  // strategy in force before this review
	EnemyStrategy         string
	Friends               int // living friends, general included
	Enemies               int
	FriendsHaveGrenadiers bool
	FriendsHaveSnipers    bool
	EnemyHasSnipers       bool
}

// DoctrineRule overrides the threshold strategy when its condition holds.
type DoctrineRule struct {
	Name     string   `yaml:"name"`
	Priority int      `yaml:"priority"` // higher = evaluated first
	When     string   `yaml:"when"`
	Then     Strategy `yaml:"then"`

	program *vm.Program
}

// DefaultDoctrineRules are the stock counters: break a phalanx with
// grenadiers, rush kiters, and exploit a sniper monopoly.
func DefaultDoctrineRules() []DoctrineRule {
	return []DoctrineRule{
		{
			Name:     "counter-phalanx",
			Priority: 30,
			When:     `EnemyStrategy == "Phalanx" && FriendsHaveGrenadiers`,
			Then:     StrategyOverwhelm,
		},
		{
			Name:     "counter-kite",
			Priority: 20,
			When:     `EnemyStrategy == "Kite & Shoot" && Ratio > 0.8`,
			Then:     StrategyAggressiveSwarm,
		},
		{
			Name:     "sniper-advantage",
			Priority: 10,
			When:     `FriendsHaveSnipers && !EnemyHasSnipers && Ratio > 0.7 && Proposed != "Aggressive Swarm"`,
			Then:     StrategyKiteAndShoot,
		},
	}
}

// Doctrine is a compiled, priority-ordered rule set.
type Doctrine struct {
	rules  []DoctrineRule
	logger *zap.Logger
}

// NewDoctrine compiles rules; an empty set means the defaults.
func NewDoctrine(rules []DoctrineRule, logger *zap.Logger) (*Doctrine, error) {
	if len(rules) == 0 {
		rules = DefaultDoctrineRules()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	compiled := make([]DoctrineRule, len(rules))
	copy(compiled, rules)
	for i := range compiled {
		prog, err := expr.Compile(compiled[i].When, expr.Env(DoctrineEnv{}), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("compile doctrine rule %q: %w", compiled[i].Name, err)
		}
		compiled[i].program = prog
	}
	sort.SliceStable(compiled, func(i, j int) bool {
		return compiled[i].Priority > compiled[j].Priority
	})
	return &Doctrine{rules: compiled, logger: logger}, nil
}

// Rules returns the compiled rules in evaluation order.
func (d *Doctrine) Rules() []DoctrineRule { return d.rules }

// Counter returns the first rule whose condition holds. Rules that fail
// at run time are logged and skipped.
func (d *Doctrine) Counter(env DoctrineEnv) (DoctrineRule, bool) {
	for _, r := range d.rules {
		out, err := vm.Run(r.program, env)
		if err != nil {
			d.logger.Warn("doctrine rule error", zap.String("rule", r.Name), zap.Error(err))
			continue
		}
		if match, ok := out.(bool); ok && match {
			return r, true
		}
	}
	return DoctrineRule{}, false
}
