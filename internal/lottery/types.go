package lottery

import (
	"slices"

	"github.com/shopspring/decimal"
)

const (
	// HumanPlayer is the id reserved for the interactive player.
	HumanPlayer PlayerID = 1

	// MinTickets is the smallest pool that can be drawn.
	MinTickets = 10

	// MinParticipants is the number of simulated players that must buy a
	// ticket for the game to continue.
	MinParticipants = 4

	// MoneyPlaces is the precision tier shares are truncated to.
	MoneyPlaces int32 = 2
)

// PlayerID identifies a player within a game.
type PlayerID int

// IsHuman reports whether id is the interactive player.
func (id PlayerID) IsHuman() bool {
	return id == HumanPlayer
}

// Balances maps players to their current balance. Values placed in a
// published snapshot are never modified; use Clone to derive a new map.
type Balances map[PlayerID]decimal.Decimal

// Clone returns a copy of b.
func (b Balances) Clone() Balances {
	out := make(Balances, len(b))
	for id, v := range b {
		out[id] = v
	}
	return out
}

// IDs returns the player ids in ascending order.
func (b Balances) IDs() []PlayerID {
	ids := make([]PlayerID, 0, len(b))
	for id := range b {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Total returns the sum of all balances.
func (b Balances) Total() decimal.Decimal {
	sum := decimal.Zero
	for _, v := range b {
		sum = sum.Add(v)
	}
	return sum
}

// Allocation maps players to the number of tickets bought this round.
type Allocation map[PlayerID]int

// Total returns the number of tickets in the pool.
func (a Allocation) Total() int {
	n := 0
	for _, c := range a {
		n += c
	}
	return n
}

// Participants returns how many simulated players bought at least one ticket.
func (a Allocation) Participants() int {
	n := 0
	for id, c := range a {
		if !id.IsHuman() && c > 0 {
			n++
		}
	}
	return n
}

// IDs returns the player ids in ascending order.
func (a Allocation) IDs() []PlayerID {
	ids := make([]PlayerID, 0, len(a))
	for id := range a {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Tier is a prize category.
type Tier int

const (
	TierNone Tier = iota
	TierGrand
	TierSecond
	TierThird
)

func (t Tier) String() string {
	switch t {
	case TierGrand:
		return "grand"
	case TierSecond:
		return "second"
	case TierThird:
		return "third"
	default:
		return "none"
	}
}

// DrawResult holds the winning ticket positions of one draw. The three sets
// are disjoint and every position is within [1, Total].
type DrawResult struct {
	Total  int   `json:"total"`
	Grand  int   `json:"grand"`
	Second []int `json:"second"`
	Third  []int `json:"third"`
}

// Winners returns the number of winning positions.
func (d DrawResult) Winners() int {
	if d.Total == 0 {
		return 0
	}
	return 1 + len(d.Second) + len(d.Third)
}

// Prize is one player's winnings for a round. Tier is the highest tier the
// player won; Amount already includes every tier.
type Prize struct {
	Player     PlayerID        `json:"player"`
	Tier       Tier            `json:"tier"`
	Amount     decimal.Decimal `json:"amount"`
	TicketsWon int             `json:"tickets_won"`
}

// RoundResult is the immutable outcome of a settled round.
type RoundResult struct {
	Prizes      []Prize         `json:"prizes"`
	Pool        decimal.Decimal `json:"pool"`
	HouseProfit decimal.Decimal `json:"house_profit"`
}

// Paid returns the total paid out in prizes.
func (r RoundResult) Paid() decimal.Decimal {
	sum := decimal.Zero
	for _, p := range r.Prizes {
		sum = sum.Add(p.Amount)
	}
	return sum
}

// PrizeFor returns the prize won by id, if any.
func (r RoundResult) PrizeFor(id PlayerID) (Prize, bool) {
	for _, p := range r.Prizes {
		if p.Player == id {
			return p, true
		}
	}
	return Prize{}, false
}

// Rules are the per-game parameters of allocation and settlement.
type Rules struct {
	TicketPrice         decimal.Decimal
	MaxTicketsPerPlayer int
	GrandShare          decimal.Decimal
	SecondShare         decimal.Decimal
	ThirdShare          decimal.Decimal
}

// DefaultRules returns a one-unit ticket, ten tickets per player and a
// 50/30/20 prize split.
func DefaultRules() Rules {
	return Rules{
		TicketPrice:         decimal.NewFromInt(1),
		MaxTicketsPerPlayer: 10,
		GrandShare:          decimal.RequireFromString("0.5"),
		SecondShare:         decimal.RequireFromString("0.3"),
		ThirdShare:          decimal.RequireFromString("0.2"),
	}
}

// Affordable returns how many tickets balance buys at the rules' price.
func (r Rules) Affordable(balance decimal.Decimal) int {
	if !r.TicketPrice.IsPositive() || !balance.IsPositive() {
		return 0
	}
	q, _ := balance.QuoRem(r.TicketPrice, 0)
	return int(q.IntPart())
}

// Cost returns the price of n tickets.
func (r Rules) Cost(n int) decimal.Decimal {
	return r.TicketPrice.Mul(decimal.NewFromInt(int64(n)))
}
