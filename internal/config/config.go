// Package config loads lotto.hcl. Every block and attribute is optional;
// missing values fall back to Default.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/shopspring/decimal"

	"github.com/lox/lotto/internal/game"
	"github.com/lox/lotto/internal/lottery"
)

// DefaultFile is the configuration file looked up when none is given.
const DefaultFile = "lotto.hcl"

// Config represents the complete lotto configuration
type Config struct {
	Game   GameSettings
	Prizes PrizeSettings
	Log    LogSettings
}

// GameSettings holds table and money parameters. Amounts are decimal
// strings so they survive HCL without rounding.
type GameSettings struct {
	InitialBalance      string `hcl:"initial_balance,optional"`
	TicketPrice         string `hcl:"ticket_price,optional"`
	MaxTicketsPerPlayer int    `hcl:"max_tickets_per_player,optional"`
	MaxPlayers          int    `hcl:"max_players,optional"`
	Currency            string `hcl:"currency,optional"`
}

// PrizeSettings holds the share of the pool paid to each tier.
type PrizeSettings struct {
	Grand  string `hcl:"grand,optional"`
	Second string `hcl:"second,optional"`
	Third  string `hcl:"third,optional"`
}

// LogSettings controls logging
type LogSettings struct {
	Level string `hcl:"level,optional"`
	File  string `hcl:"file,optional"`
}

// file mirrors Config with optional blocks.
type file struct {
	Game   *GameSettings  `hcl:"game,block"`
	Prizes *PrizeSettings `hcl:"prizes,block"`
	Log    *LogSettings   `hcl:"log,block"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Game: GameSettings{
			InitialBalance:      "10.00",
			TicketPrice:         "1.00",
			MaxTicketsPerPlayer: 10,
			MaxPlayers:          15,
			Currency:            "$",
		},
		Prizes: PrizeSettings{
			Grand:  "0.50",
			Second: "0.30",
			Third:  "0.20",
		},
		Log: LogSettings{
			Level: "info",
			File:  "lotto.log",
		},
	}
}

// Load reads configuration from an HCL file. A missing file yields the
// defaults.
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	f, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}
	return decode(f)
}

// Parse reads configuration from HCL source.
func Parse(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	f, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL: %s", diags.Error())
	}
	return decode(f)
}

func decode(f *hcl.File) (*Config, error) {
	var raw file
	if diags := gohcl.DecodeBody(f.Body, nil, &raw); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	cfg := Default()
	if g := raw.Game; g != nil {
		setString(&cfg.Game.InitialBalance, g.InitialBalance)
		setString(&cfg.Game.TicketPrice, g.TicketPrice)
		setInt(&cfg.Game.MaxTicketsPerPlayer, g.MaxTicketsPerPlayer)
		setInt(&cfg.Game.MaxPlayers, g.MaxPlayers)
		setString(&cfg.Game.Currency, g.Currency)
	}
	if p := raw.Prizes; p != nil {
		setString(&cfg.Prizes.Grand, p.Grand)
		setString(&cfg.Prizes.Second, p.Second)
		setString(&cfg.Prizes.Third, p.Third)
	}
	if l := raw.Log; l != nil {
		setString(&cfg.Log.Level, l.Level)
		setString(&cfg.Log.File, l.File)
	}
	return cfg, nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

// Validate checks that every value parses and that the resulting game
// configuration is playable.
func (c *Config) Validate() error {
	if _, err := c.GameConfig(); err != nil {
		return err
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	return nil
}

// Rules converts the configuration into lottery rules.
func (c *Config) Rules() (lottery.Rules, error) {
	price, err := parseAmount("ticket_price", c.Game.TicketPrice)
	if err != nil {
		return lottery.Rules{}, err
	}
	grand, err := parseAmount("prizes.grand", c.Prizes.Grand)
	if err != nil {
		return lottery.Rules{}, err
	}
	second, err := parseAmount("prizes.second", c.Prizes.Second)
	if err != nil {
		return lottery.Rules{}, err
	}
	third, err := parseAmount("prizes.third", c.Prizes.Third)
	if err != nil {
		return lottery.Rules{}, err
	}

	return lottery.Rules{
		TicketPrice:         price,
		MaxTicketsPerPlayer: c.Game.MaxTicketsPerPlayer,
		GrandShare:          grand,
		SecondShare:         second,
		ThirdShare:          third,
	}, nil
}

// GameConfig converts the configuration into a validated game.Config with
// a random simulated-player count.
func (c *Config) GameConfig() (game.Config, error) {
	rules, err := c.Rules()
	if err != nil {
		return game.Config{}, err
	}
	balance, err := parseAmount("initial_balance", c.Game.InitialBalance)
	if err != nil {
		return game.Config{}, err
	}

	cfg := game.Config{
		Rules:          rules,
		InitialBalance: balance,
		MaxPlayers:     c.Game.MaxPlayers,
	}
	if err := cfg.Validate(); err != nil {
		return game.Config{}, err
	}
	return cfg, nil
}

func parseAmount(name, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%s: invalid amount %q: %w", name, s, err)
	}
	return d, nil
}
