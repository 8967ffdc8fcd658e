package game

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lox/lotto/internal/lottery"
)

// Phase is where the game is in its round cycle.
type Phase int

const (
	AwaitingBet Phase = iota
	ShowingResults
	CannotDraw
	GameOver
	// Terminated is internal; it is never published.
	Terminated
)

func (p Phase) String() string {
	switch p {
	case AwaitingBet:
		return "awaiting_bet"
	case ShowingResults:
		return "showing_results"
	case CannotDraw:
		return "cannot_draw"
	case GameOver:
		return "game_over"
	case Terminated:
		return "terminated"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// MarshalText encodes the phase by name.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a phase name.
func (p *Phase) UnmarshalText(text []byte) error {
	for c := AwaitingBet; c <= Terminated; c++ {
		if c.String() == string(text) {
			*p = c
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", text)
}

// State is a read-only snapshot of the game. The orchestrator builds a new
// State for every transition; maps and the round result it references are
// never modified afterwards, and observers must not modify them either.
type State struct {
	GameID string `json:"game_id"`
	// Round counts completed draws.
	Round    int              `json:"round"`
	Phase    Phase            `json:"phase"`
	Balances lottery.Balances `json:"balances"`
	// LastResult is the most recent drawn round, nil before the first.
	LastResult *lottery.RoundResult `json:"last_result,omitempty"`
	// PendingTickets is the human's ticket count for the round on display.
	PendingTickets int `json:"pending_tickets"`
	// Allocation, TicketsSold and Participants describe the last attempted
	// round, drawn or not.
	Allocation   lottery.Allocation `json:"allocation,omitempty"`
	TicketsSold  int                `json:"tickets_sold"`
	Participants int                `json:"participants"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// HumanBalance returns the human player's balance.
func (s State) HumanBalance() decimal.Decimal {
	return s.Balances[lottery.HumanPlayer]
}

// SimulatedPlayers returns the number of non-human players.
func (s State) SimulatedPlayers() int {
	n := len(s.Balances)
	if _, ok := s.Balances[lottery.HumanPlayer]; ok {
		n--
	}
	return n
}

// Accepts reports whether cmd is valid in the current phase.
func (s State) Accepts(cmd Command) bool {
	switch cmd.(type) {
	case Exit:
		return true
	case PlaceBet:
		return s.Phase == AwaitingBet
	case AdvanceRound:
		return s.Phase == ShowingResults || s.Phase == CannotDraw
	default:
		return false
	}
}
