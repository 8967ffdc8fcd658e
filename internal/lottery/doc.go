// Package lottery implements ticket allocation, the seeded draw and prize
// settlement for a single lottery round.
//
// Every function is pure given its inputs and a randutil.Source. The source
// is consumed in a fixed order: Allocate draws one value per simulated player
// with money, in ascending player id, and Draw then shuffles the combined
// ticket pool. Replaying a round from the same seed and balances yields the
// same allocation, draw and settlement.
//
// # Basic Usage
//
//	src := randutil.NewSource(111)
//	out, err := lottery.Play(src, 5, balances, lottery.DefaultRules())
//	if errors.Is(err, lottery.ErrNotEnoughTickets) {
//	    // round cannot be drawn; balances are untouched
//	}
//
// Money is exact decimal arithmetic (shopspring/decimal). Per-ticket tier
// shares are truncated to MoneyPlaces and the residue stays with the house.
package lottery
