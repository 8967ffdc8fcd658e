// Package game runs a lottery game: it owns the authoritative state and turns
// player commands into new state snapshots.
//
// The Orchestrator is a single-owner state machine. One goroutine reads
// commands in arrival order and replaces the state after each one; observers
// receive immutable snapshots and errors on separate channels.
//
// # Basic Usage
//
//	o, err := game.New(game.DefaultConfig(), randutil.Random())
//	if err != nil {
//	    return err
//	}
//	if err := o.Start(ctx); err != nil {
//	    return err
//	}
//	_ = o.Submit(ctx, game.PlaceBet{Tickets: 5})
//	for s := range o.States() {
//	    fmt.Println(s.Phase, s.HumanBalance())
//	}
//
// # Phases
//
//	AwaitingBet --bet--> ShowingResults | CannotDraw | GameOver
//	ShowingResults, CannotDraw --advance--> AwaitingBet
//	any --exit--> terminated
//
// A bet that fails validation is reported on Errors and leaves the state as
// it was. A round with fewer than lottery.MinTickets tickets moves to
// CannotDraw without charging anyone.
//
// # Deterministic Testing
//
// Pass a seeded randutil.Source and fix the table size with
// Config.SimulatedPlayers to replay a game exactly:
//
//	cfg := game.DefaultConfig()
//	cfg.SimulatedPlayers = 10
//	o, _ := game.New(cfg, randutil.NewSource(111), game.WithClock(quartz.NewMock(t)))
package game
