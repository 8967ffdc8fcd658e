package lottery

import "github.com/lox/lotto/internal/randutil"

// Outcome is everything a round produced. Draw and Settlement are zero when
// the round could not be drawn.
type Outcome struct {
	Allocation Allocation
	Draw       DrawResult
	Settlement Settlement
}

// Play runs a round: Allocate, then Draw and Settle when the pool holds at
// least MinTickets. A short pool returns the allocation together with a
// *NotEnoughTicketsError; balances are not charged and the source is not
// consumed by a draw.
func Play(src randutil.Source, human int, balances Balances, rules Rules) (Outcome, error) {
	out := Outcome{Allocation: Allocate(src, human, balances, rules)}

	total := out.Allocation.Total()
	if total < MinTickets {
		return out, &NotEnoughTicketsError{Minimum: MinTickets, Sold: total}
	}

	draw, err := Draw(src, total)
	if err != nil {
		return out, err
	}
	out.Draw = draw

	settlement, err := Settle(balances, out.Allocation, draw, rules)
	if err != nil {
		return out, err
	}
	out.Settlement = settlement
	return out, nil
}
