package main

import (
	"fmt"

	"github.com/lox/lotto/internal/config"
	"github.com/lox/lotto/internal/game"
	"github.com/lox/lotto/internal/randutil"
)

// loadConfig reads the configuration file and applies command line
// overrides.
func loadConfig(g *Globals) (*config.Config, game.Config, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, game.Config{}, fmt.Errorf("load config: %w", err)
	}
	if g.Debug {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, game.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}

	gc, err := cfg.GameConfig()
	if err != nil {
		return nil, game.Config{}, err
	}
	if g.Players < 0 {
		return nil, game.Config{}, fmt.Errorf("players must not be negative")
	}
	gc.SimulatedPlayers = g.Players
	return cfg, gc, nil
}

func newSource(seed int32) randutil.Source {
	if seed == 0 {
		return randutil.Random()
	}
	return randutil.NewSource(seed)
}
