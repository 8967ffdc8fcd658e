// Package history records drawn rounds from a game's snapshot stream and
// summarises them.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"

	"github.com/lox/lotto/internal/game"
	"github.com/lox/lotto/internal/lottery"
)

// Round is one drawn round as seen by the human player.
type Round struct {
	Round        int             `json:"round"`
	Tickets      int             `json:"tickets"`
	TicketsSold  int             `json:"tickets_sold"`
	Participants int             `json:"participants"`
	Pool         decimal.Decimal `json:"pool"`
	HouseProfit  decimal.Decimal `json:"house_profit"`
	Cost         decimal.Decimal `json:"cost"`
	Winnings     decimal.Decimal `json:"winnings"`
	Balance      decimal.Decimal `json:"balance"`
	Prizes       []lottery.Prize `json:"prizes"`
	At           time.Time       `json:"at"`
}

// Net returns the human player's gain for the round.
func (r Round) Net() decimal.Decimal {
	return r.Winnings.Sub(r.Cost)
}

// Summary aggregates every recorded round.
type Summary struct {
	GameID        string          `json:"game_id"`
	Rounds        int             `json:"rounds"`
	CannotDraw    int             `json:"cannot_draw"`
	TicketsSold   int             `json:"tickets_sold"`
	TotalPool     decimal.Decimal `json:"total_pool"`
	HouseProfit   decimal.Decimal `json:"house_profit"`
	HumanSpent    decimal.Decimal `json:"human_spent"`
	HumanWon      decimal.Decimal `json:"human_won"`
	HumanNet      decimal.Decimal `json:"human_net"`
	WinningRounds int             `json:"winning_rounds"`
	BiggestPrize  decimal.Decimal `json:"biggest_prize"`
	FinalPhase    game.Phase      `json:"final_phase"`
}

// Recorder collects rounds. It is safe for concurrent use.
type Recorder struct {
	rules  lottery.Rules
	logger *log.Logger

	mu         sync.Mutex
	gameID     string
	lastRound  int
	cannotDraw int
	phase      game.Phase
	rounds     []Round
}

// NewRecorder creates a recorder for a game played under rules.
func NewRecorder(rules lottery.Rules, logger *log.Logger) *Recorder {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Recorder{
		rules:  rules,
		logger: logger.WithPrefix("history"),
	}
}

// Run records every snapshot from states until the channel closes or ctx
// is done.
func (r *Recorder) Run(ctx context.Context, states <-chan game.State) error {
	for {
		select {
		case st, ok := <-states:
			if !ok {
				return nil
			}
			r.Observe(st)
		case <-ctx.Done():
			return nil
		}
	}
}

// Observe records st. A drawn round is recorded once, however many
// snapshots show it.
func (r *Recorder) Observe(st game.State) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.gameID = st.GameID
	r.phase = st.Phase

	switch st.Phase {
	case game.CannotDraw:
		r.cannotDraw++
		r.logger.Debug("Round not drawn", "sold", st.TicketsSold)
		return
	case game.ShowingResults, game.GameOver:
	default:
		return
	}
	if st.LastResult == nil || st.Round <= r.lastRound {
		return
	}
	r.lastRound = st.Round

	res := st.LastResult
	round := Round{
		Round:        st.Round,
		Tickets:      st.PendingTickets,
		TicketsSold:  st.TicketsSold,
		Participants: st.Participants,
		Pool:         res.Pool,
		HouseProfit:  res.HouseProfit,
		Cost:         r.rules.Cost(st.PendingTickets),
		Winnings:     decimal.Zero,
		Balance:      st.HumanBalance(),
		Prizes:       res.Prizes,
		At:           st.UpdatedAt,
	}
	if p, ok := res.PrizeFor(lottery.HumanPlayer); ok {
		round.Winnings = p.Amount
	}
	r.rounds = append(r.rounds, round)

	r.logger.Debug("Round recorded", "round", round.Round, "net", round.Net())
}

// Rounds returns a copy of the recorded rounds.
func (r *Recorder) Rounds() []Round {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Round, len(r.rounds))
	copy(out, r.rounds)
	return out
}

// Summary aggregates the recorded rounds.
func (r *Recorder) Summary() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := Summary{
		GameID:       r.gameID,
		Rounds:       len(r.rounds),
		CannotDraw:   r.cannotDraw,
		TotalPool:    decimal.Zero,
		HouseProfit:  decimal.Zero,
		HumanSpent:   decimal.Zero,
		HumanWon:     decimal.Zero,
		BiggestPrize: decimal.Zero,
		FinalPhase:   r.phase,
	}
	for _, round := range r.rounds {
		s.TicketsSold += round.TicketsSold
		s.TotalPool = s.TotalPool.Add(round.Pool)
		s.HouseProfit = s.HouseProfit.Add(round.HouseProfit)
		s.HumanSpent = s.HumanSpent.Add(round.Cost)
		s.HumanWon = s.HumanWon.Add(round.Winnings)
		if round.Winnings.IsPositive() {
			s.WinningRounds++
		}
		for _, p := range round.Prizes {
			if p.Amount.GreaterThan(s.BiggestPrize) {
				s.BiggestPrize = p.Amount
			}
		}
	}
	s.HumanNet = s.HumanWon.Sub(s.HumanSpent)
	return s
}

type export struct {
	Summary Summary `json:"summary"`
	Rounds  []Round `json:"rounds"`
}

// WriteJSON writes the summary and rounds to w.
func (r *Recorder) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(export{Summary: r.Summary(), Rounds: r.Rounds()}); err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	return nil
}

// Export writes the history to filename atomically.
func (r *Recorder) Export(filename string) error {
	if err := writeFileAtomic(filename, 0o644, r.WriteJSON); err != nil {
		return err
	}
	r.logger.Info("History exported", "file", filename, "rounds", len(r.Rounds()))
	return nil
}

// ReadFile loads an exported history.
func ReadFile(filename string) (Summary, []Round, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return Summary{}, nil, err
	}
	var e export
	if err := json.Unmarshal(data, &e); err != nil {
		return Summary{}, nil, fmt.Errorf("decode history: %w", err)
	}
	return e.Summary, e.Rounds, nil
}
