package lottery

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Settlement is the money movement of one drawn round.
type Settlement struct {
	// Balances are the players' balances after paying for tickets and
	// collecting winnings.
	Balances Balances
	// Winnings holds every player's total prize, zero included.
	Winnings map[PlayerID]decimal.Decimal
	Result   RoundResult
}

type tally struct {
	grand  bool
	second int
	third  int
}

func (t tally) tickets() int {
	n := t.second + t.third
	if t.grand {
		n++
	}
	return n
}

func (t tally) tier() Tier {
	switch {
	case t.grand:
		return TierGrand
	case t.second > 0:
		return TierSecond
	case t.third > 0:
		return TierThird
	default:
		return TierNone
	}
}

// Settle pays out a draw. Tickets are numbered 1..N by ascending player id and
// then purchase order. The grand prize takes GrandShare of the pool; the
// second and third tier pools are split evenly over the tickets actually
// drawn for them. A player collects from every tier they hold a winning
// ticket in.
func Settle(balances Balances, alloc Allocation, draw DrawResult, rules Rules) (Settlement, error) {
	owners := ticketOwners(alloc)
	if len(owners) != draw.Total {
		return Settlement{}, fmt.Errorf("%w: %d tickets allocated, %d drawn", ErrDrawMismatch, len(owners), draw.Total)
	}
	if draw.Total == 0 {
		return Settlement{}, ErrNoTickets
	}

	owner := func(pos int) (PlayerID, error) {
		if pos < 1 || pos > len(owners) {
			return 0, fmt.Errorf("%w: ticket %d outside pool of %d", ErrDrawMismatch, pos, len(owners))
		}
		return owners[pos-1], nil
	}

	tallies := make(map[PlayerID]*tally, len(alloc))
	for _, id := range alloc.IDs() {
		tallies[id] = &tally{}
	}

	id, err := owner(draw.Grand)
	if err != nil {
		return Settlement{}, err
	}
	tallies[id].grand = true
	for _, pos := range draw.Second {
		if id, err = owner(pos); err != nil {
			return Settlement{}, err
		}
		tallies[id].second++
	}
	for _, pos := range draw.Third {
		if id, err = owner(pos); err != nil {
			return Settlement{}, err
		}
		tallies[id].third++
	}

	pool := rules.Cost(draw.Total)
	grandPrize := pool.Mul(rules.GrandShare).Truncate(MoneyPlaces)
	secondShare := perTicket(pool.Mul(rules.SecondShare), len(draw.Second))
	thirdShare := perTicket(pool.Mul(rules.ThirdShare), len(draw.Third))

	out := Settlement{
		Balances: balances.Clone(),
		Winnings: make(map[PlayerID]decimal.Decimal, len(alloc)),
	}
	paid := decimal.Zero

	for _, id := range alloc.IDs() {
		prior, ok := balances[id]
		if !ok {
			return Settlement{}, fmt.Errorf("%w: player %d", ErrUnknownPlayer, id)
		}

		t := tallies[id]
		won := decimal.Zero
		if t.grand {
			won = won.Add(grandPrize)
		}
		won = won.Add(secondShare.Mul(decimal.NewFromInt(int64(t.second))))
		won = won.Add(thirdShare.Mul(decimal.NewFromInt(int64(t.third))))

		balance := prior.Sub(rules.Cost(alloc[id])).Add(won)
		if balance.IsNegative() {
			return Settlement{}, fmt.Errorf("%w: player %d would hold %s", ErrNegativeBalance, id, balance)
		}

		out.Balances[id] = balance
		out.Winnings[id] = won
		paid = paid.Add(won)

		if won.IsPositive() {
			out.Result.Prizes = append(out.Result.Prizes, Prize{
				Player:     id,
				Tier:       t.tier(),
				Amount:     won,
				TicketsWon: t.tickets(),
			})
		}
	}

	out.Result.Pool = pool
	out.Result.HouseProfit = pool.Sub(paid)
	return out, nil
}

func ticketOwners(alloc Allocation) []PlayerID {
	owners := make([]PlayerID, 0, alloc.Total())
	for _, id := range alloc.IDs() {
		for range alloc[id] {
			owners = append(owners, id)
		}
	}
	return owners
}

func perTicket(tierPool decimal.Decimal, tickets int) decimal.Decimal {
	if tickets == 0 {
		return decimal.Zero
	}
	share, _ := tierPool.QuoRem(decimal.NewFromInt(int64(tickets)), MoneyPlaces)
	return share
}
