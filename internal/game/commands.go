package game

import "fmt"

// Command is an instruction for the orchestrator. The set is closed: only
// PlaceBet, AdvanceRound and Exit implement it.
type Command interface {
	fmt.Stringer
	command()
}

// PlaceBet buys tickets for the human player and runs the round.
type PlaceBet struct {
	Tickets int
}

// AdvanceRound leaves the results screen and opens betting for a new round.
type AdvanceRound struct{}

// Exit terminates the game.
type Exit struct{}

func (PlaceBet) command()     {}
func (AdvanceRound) command() {}
func (Exit) command()         {}

func (c PlaceBet) String() string   { return fmt.Sprintf("bet(%d)", c.Tickets) }
func (AdvanceRound) String() string { return "advance" }
func (Exit) String() string         { return "exit" }
