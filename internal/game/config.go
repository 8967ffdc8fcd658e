package game

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/lox/lotto/internal/lottery"
)

// MinSimulatedPlayers is the lower bound of the random simulated-player
// count.
const MinSimulatedPlayers = 10

// Config holds the parameters of one game.
type Config struct {
	Rules          lottery.Rules
	InitialBalance decimal.Decimal
	// MaxPlayers bounds the table size. When SimulatedPlayers is zero the
	// simulated-player count is drawn uniformly from
	// [MinSimulatedPlayers, MaxPlayers).
	MaxPlayers int
	// SimulatedPlayers fixes the number of simulated players when positive.
	SimulatedPlayers int
}

// DefaultConfig returns a ten-unit starting balance at one unit per ticket
// with up to fifteen players.
func DefaultConfig() Config {
	return Config{
		Rules:          lottery.DefaultRules(),
		InitialBalance: decimal.NewFromInt(10),
		MaxPlayers:     15,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	r := c.Rules
	if !r.TicketPrice.IsPositive() {
		return fmt.Errorf("%w: ticket price must be positive", ErrInvalidConfig)
	}
	if r.MaxTicketsPerPlayer < 1 {
		return fmt.Errorf("%w: max tickets per player must be at least 1", ErrInvalidConfig)
	}
	if c.InitialBalance.LessThan(r.TicketPrice) {
		return fmt.Errorf("%w: initial balance %s does not cover one ticket at %s", ErrInvalidConfig, c.InitialBalance, r.TicketPrice)
	}
	for name, share := range map[string]decimal.Decimal{
		"grand":  r.GrandShare,
		"second": r.SecondShare,
		"third":  r.ThirdShare,
	} {
		if share.IsNegative() {
			return fmt.Errorf("%w: %s prize share cannot be negative", ErrInvalidConfig, name)
		}
	}
	if r.GrandShare.Add(r.SecondShare).Add(r.ThirdShare).GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("%w: prize shares exceed the pool", ErrInvalidConfig)
	}
	if c.SimulatedPlayers < 0 {
		return fmt.Errorf("%w: simulated players cannot be negative", ErrInvalidConfig)
	}
	if c.SimulatedPlayers == 0 && c.MaxPlayers <= MinSimulatedPlayers {
		return fmt.Errorf("%w: max players must be greater than %d", ErrInvalidConfig, MinSimulatedPlayers)
	}
	return nil
}
