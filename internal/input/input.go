// Package input turns a line typed by the human player into a game command.
// Which commands a line can produce depends on the phase of the latest
// snapshot.
package input

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lox/lotto/internal/game"
	"github.com/lox/lotto/internal/lottery"
)

var ErrInvalidInput = errors.New("invalid input")

// InvalidTicketsError is returned for a bet the player cannot place.
type InvalidTicketsError struct {
	Input      string
	Max        int
	Affordable int
}

func (e *InvalidTicketsError) Error() string {
	return fmt.Sprintf("invalid number of tickets %q: enter a whole number between 1 and %d, you can afford %d",
		e.Input, e.Max, e.Affordable)
}

func (e *InvalidTicketsError) Unwrap() error {
	return ErrInvalidInput
}

// InvalidAnswerError is returned when a yes/no question gets another answer.
type InvalidAnswerError struct {
	Input string
}

func (e *InvalidAnswerError) Error() string {
	return fmt.Sprintf("invalid answer %q: enter 'y' to play the next round or 'n' to exit", e.Input)
}

func (e *InvalidAnswerError) Unwrap() error {
	return ErrInvalidInput
}

// Parse maps line to a command for the phase of st.
//
//	e, exit           Exit in every phase
//	AwaitingBet       ticket count, 1..min(max, affordable)
//	ShowingResults    y to continue, n to exit
//	CannotDraw        y to continue, n to exit
//	GameOver          anything exits
func Parse(st game.State, line string, rules lottery.Rules) (game.Command, error) {
	in := strings.ToLower(strings.TrimSpace(line))
	if in == "e" || in == "exit" {
		return game.Exit{}, nil
	}

	switch st.Phase {
	case game.AwaitingBet:
		return parseBet(st, in, rules)
	case game.ShowingResults, game.CannotDraw:
		switch in {
		case "y", "yes":
			return game.AdvanceRound{}, nil
		case "n", "no":
			return game.Exit{}, nil
		}
		return nil, &InvalidAnswerError{Input: in}
	case game.GameOver:
		return game.Exit{}, nil
	default:
		return nil, fmt.Errorf("%w: no input expected during %s", ErrInvalidInput, st.Phase)
	}
}

func parseBet(st game.State, in string, rules lottery.Rules) (game.Command, error) {
	n, err := strconv.Atoi(in)
	if err != nil || lottery.ValidateBet(n, st.HumanBalance(), rules) != nil {
		return nil, &InvalidTicketsError{
			Input:      in,
			Max:        rules.MaxTicketsPerPlayer,
			Affordable: rules.Affordable(st.HumanBalance()),
		}
	}
	return game.PlaceBet{Tickets: n}, nil
}
