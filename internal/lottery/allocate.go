package lottery

import (
	"github.com/shopspring/decimal"

	"github.com/lox/lotto/internal/randutil"
)

// ValidateBet checks a human ticket request against the per-player limit and
// the player's balance.
func ValidateBet(n int, balance decimal.Decimal, rules Rules) error {
	affordable := rules.Affordable(balance)
	if n < 1 || n > rules.MaxTicketsPerPlayer || n > affordable {
		return &InvalidBetError{
			Requested:  n,
			Max:        rules.MaxTicketsPerPlayer,
			Affordable: affordable,
		}
	}
	return nil
}

// Allocate decides every player's ticket count for a round. The human count
// is taken as given. Each simulated player, in ascending id order, buys a
// uniform number of tickets in [1, min(affordable, max)], or none when they
// cannot afford one.
func Allocate(src randutil.Source, human int, balances Balances, rules Rules) Allocation {
	alloc := make(Allocation, len(balances)+1)
	alloc[HumanPlayer] = human

	for _, id := range balances.IDs() {
		if id.IsHuman() {
			continue
		}
		limit := min(rules.Affordable(balances[id]), rules.MaxTicketsPerPlayer)
		if limit < 1 {
			alloc[id] = 0
			continue
		}
		alloc[id] = src.IntRange(1, limit+1)
	}

	return alloc
}
