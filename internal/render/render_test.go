package render

import (
	"bytes"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/lox/lotto/internal/game"
	"github.com/lox/lotto/internal/lottery"
)

func plainRenderer(currency string) *Renderer {
	return New(&bytes.Buffer{}, currency, lottery.DefaultRules(), WithPlain(true))
}

func balances(human string, others int) lottery.Balances {
	b := lottery.Balances{lottery.HumanPlayer: decimal.RequireFromString(human)}
	for i := 0; i < others; i++ {
		b[lottery.PlayerID(i+2)] = decimal.NewFromInt(5)
	}
	return b
}

func TestMoney(t *testing.T) {
	t.Parallel()

	r := plainRenderer("€")
	assert.Equal(t, "€10.00", r.Money(decimal.NewFromInt(10)))
	assert.Equal(t, "€0.79", r.Money(decimal.RequireFromString("0.79")))
	assert.Equal(t, "€1.50", r.Money(decimal.RequireFromString("1.5")))
}

func TestWelcome(t *testing.T) {
	t.Parallel()

	out := plainRenderer("$").State(game.State{Phase: game.AwaitingBet, Balances: balances("10", 12)})

	assert.Contains(t, out, "Welcome to the Lotto, Player 1!")
	assert.Contains(t, out, "12 other players have joined the game.")
	assert.Contains(t, out, "Your balance: $10.00")
	assert.Contains(t, out, "Ticket price: $1.00, up to 10 tickets per player.")
	assert.Contains(t, out, "How many tickets do you want to buy? (1-10, e to exit)")
	assert.NotContains(t, out, "\x1b[", "plain output must not contain escape codes")
}

func TestPromptLimitsToAffordable(t *testing.T) {
	t.Parallel()

	r := plainRenderer("$")
	st := game.State{Phase: game.AwaitingBet, Round: 3, Balances: balances("4", 10)}

	assert.Equal(t, "How many tickets do you want to buy? (1-4, e to exit)", r.Prompt(st))
	assert.NotContains(t, r.State(st), "Welcome")
	assert.Contains(t, r.State(st), "Lotto - round 3")
}

func TestResults(t *testing.T) {
	t.Parallel()

	st := game.State{
		Phase:          game.ShowingResults,
		Round:          1,
		Balances:       balances("19", 8),
		PendingTickets: 2,
		TicketsSold:    50,
		Participants:   8,
		LastResult: &lottery.RoundResult{
			Prizes: []lottery.Prize{
				{Player: 1, Tier: lottery.TierSecond, Amount: decimal.NewFromInt(5), TicketsWon: 2},
				{Player: 3, Tier: lottery.TierSecond, Amount: decimal.NewFromInt(5), TicketsWon: 1},
				{Player: 5, Tier: lottery.TierGrand, Amount: decimal.NewFromInt(25), TicketsWon: 1},
			},
			Pool:        decimal.NewFromInt(50),
			HouseProfit: decimal.NewFromInt(15),
		},
	}

	out := plainRenderer("$").State(st)

	assert.Contains(t, out, "You bought 2 tickets. 8 CPU players also bought tickets (50 sold).")
	assert.Contains(t, out, "Player 1 (you)")
	assert.Contains(t, out, "Second tier")
	assert.Contains(t, out, "Grand prize")
	assert.Contains(t, out, "$25.00")
	assert.Contains(t, out, "Congratulations! You won $5.00.")
	assert.Contains(t, out, "Prize pool: $50.00")
	assert.Contains(t, out, "House revenue: $15.00")
	assert.Contains(t, out, "Your balance: $19.00")
	assert.Contains(t, out, "Play another round? (y/n)")
}

func TestResultsWithoutHumanWin(t *testing.T) {
	t.Parallel()

	st := game.State{
		Phase:    game.ShowingResults,
		Round:    2,
		Balances: balances("7", 10),
		LastResult: &lottery.RoundResult{
			Prizes:      []lottery.Prize{{Player: 4, Tier: lottery.TierGrand, Amount: decimal.NewFromInt(30), TicketsWon: 1}},
			Pool:        decimal.NewFromInt(60),
			HouseProfit: decimal.NewFromInt(30),
		},
	}

	out := plainRenderer("$").State(st)
	assert.NotContains(t, out, "Congratulations")
	assert.Contains(t, out, "Player 4")
}

func TestCannotDraw(t *testing.T) {
	t.Parallel()

	st := game.State{Phase: game.CannotDraw, Balances: balances("1", 3), TicketsSold: 4}
	out := plainRenderer("$").State(st)

	assert.Contains(t, out, "Not enough tickets to run the draw.")
	assert.Contains(t, out, "4 tickets sold, at least 10 are needed.")
	assert.Contains(t, out, "Play another round? (y/n)")
}

func TestGameOver(t *testing.T) {
	t.Parallel()

	result := &lottery.RoundResult{Pool: decimal.NewFromInt(20), HouseProfit: decimal.NewFromInt(10)}

	tests := []struct {
		name   string
		state  game.State
		reason string
	}{
		{
			name:   "broke",
			state:  game.State{Phase: game.GameOver, Round: 4, Balances: balances("0.50", 12), Participants: 12, LastResult: result},
			reason: "Game over: you can no longer afford a ticket.",
		},
		{
			name:   "too few players",
			state:  game.State{Phase: game.GameOver, Round: 4, Balances: balances("8", 3), Participants: 3, LastResult: result},
			reason: "Game over: fewer than 4 CPU players can still play.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := plainRenderer("$").State(tt.state)
			assert.Contains(t, out, tt.reason)
			assert.Contains(t, out, "Press enter to exit")
		})
	}
}

func TestError(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Error: boom", plainRenderer("$").Error(errors.New("boom")))
}
