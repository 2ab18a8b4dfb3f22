package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Garsondee/grid-tactics/internal/game"
)

func main() {
	scenario := flag.String("scenario", "Demo", "scenario id or name")
	seed := flag.Int64("seed", 1, "RNG seed")
	tunables := flag.String("tunables", "", "optional tunables YAML file")
	corpses := flag.Bool("corpses", false, "leave corpses where units die")
	secure := flag.Bool("secure-area", false, "winners clear corpses after the battle")
	redeploy := flag.Bool("redeploy", true, "winners redeploy into formation after the battle")
	zones := flag.Bool("zones", false, "restrict placement to home zones")
	verbose := flag.Bool("verbose", false, "record per-unit plans in the log")
	flag.Parse()

	config := zap.NewDevelopmentConfig()
	config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	logger, err := config.Build()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync() //nolint:errcheck

	opts := []game.Option{
		game.WithSeed(*seed),
		game.WithLogger(logger),
		game.WithCorpses(*corpses),
		game.WithSecureArea(*secure),
		game.WithHighlightZone(*redeploy),
		game.WithEnforceZones(*zones),
		game.WithVerbose(*verbose),
		game.WithScenario(*scenario),
	}
	if *tunables != "" {
		t, err := game.LoadTunables(*tunables)
		if err != nil {
			logger.Fatal("load tunables", zap.Error(err))
		}
		opts = append(opts, game.WithTunables(game.NewTunableStore(t)))
	}

	b, err := game.NewBattle(opts...)
	if err != nil {
		logger.Fatal("new battle", zap.Error(err))
	}

	g := game.New(b, logger)
	ebiten.SetWindowTitle("Grid Tactics")
	ebiten.SetWindowSize(g.WindowSize())
	if err := ebiten.RunGame(g); err != nil {
		logger.Fatal("run game", zap.Error(err))
	}
}
