package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/lox/lotto/cmd/lotto/shared"
	"github.com/lox/lotto/internal/game"
	"github.com/lox/lotto/internal/history"
	"github.com/lox/lotto/internal/lottery"
	"github.com/lox/lotto/internal/randutil"
)

type SimulateCmd struct {
	Rounds    int           `default:"100" help:"Maximum number of rounds to attempt"`
	Tickets   int           `default:"1" help:"Tickets the human player buys each round"`
	Delay     time.Duration `default:"0s" help:"Pause between rounds"`
	LogFormat string        `name:"log-format" enum:"text,json" default:"text" help:"Log output format (text, json)"`
	History   string        `placeholder:"FILE" help:"Write the round history to this JSON file"`
}

type simulation struct {
	Rounds  int
	Tickets int
	Delay   time.Duration
}

func (c *SimulateCmd) Run(g *Globals) error {
	cfg, gc, err := loadConfig(g)
	if err != nil {
		return err
	}
	logger, err := shared.SetupLogger(os.Stderr, cfg.Log.Level, c.LogFormat)
	if err != nil {
		return err
	}

	ctx, cancel := shared.SetupSignalHandler(context.Background(), logger)
	defer cancel()

	sim := simulation{Rounds: c.Rounds, Tickets: c.Tickets, Delay: c.Delay}
	rec, err := sim.run(ctx, gc, newSource(g.Seed), quartz.NewReal(), logger)
	if err != nil {
		return err
	}

	if c.History != "" {
		if err := rec.Export(c.History); err != nil {
			return err
		}
	}
	printSummary(os.Stdout, rec.Summary(), cfg.Game.Currency)
	return nil
}

// run plays until the round budget is spent or the game ends and returns
// the recorded history.
func (s simulation) run(ctx context.Context, gc game.Config, src randutil.Source, clock quartz.Clock, logger *log.Logger) (*history.Recorder, error) {
	if s.Tickets < 1 {
		return nil, fmt.Errorf("tickets must be at least 1")
	}

	o, err := game.New(gc, src, game.WithLogger(logger), game.WithClock(clock))
	if err != nil {
		return nil, err
	}
	if err := o.Start(ctx); err != nil {
		return nil, err
	}
	logger.Info("Simulation started", "game", o.GameID(), "rounds", s.Rounds, "tickets", s.Tickets)

	eg, egctx := errgroup.WithContext(ctx)
	streams := game.Fanout(egctx, o.States(), 2)

	rec := history.NewRecorder(gc.Rules, logger)
	eg.Go(func() error { return rec.Run(egctx, streams[1]) })
	eg.Go(func() error {
		defer o.Stop()
		return s.drive(egctx, o, streams[0], gc.Rules, clock, logger)
	})
	eg.Go(o.Wait)

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return rec, nil
}

// drive answers every snapshot with the next command.
func (s simulation) drive(ctx context.Context, o *game.Orchestrator, states <-chan game.State, rules lottery.Rules, clock quartz.Clock, logger *log.Logger) error {
	errs := o.Errors()
	attempts := 0

	for {
		var st game.State
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			logger.Warn("Command rejected", "error", err)
			continue
		case next, ok := <-states:
			if !ok {
				return nil
			}
			st = next
		}

		var cmd game.Command
		switch st.Phase {
		case game.AwaitingBet:
			if attempts >= s.Rounds {
				cmd = game.Exit{}
				break
			}
			affordable := rules.Affordable(st.HumanBalance())
			if affordable < 1 {
				logger.Info("Cannot afford a ticket", "balance", st.HumanBalance())
				cmd = game.Exit{}
				break
			}
			attempts++
			cmd = game.PlaceBet{Tickets: min(s.Tickets, rules.MaxTicketsPerPlayer, affordable)}
		case game.ShowingResults, game.CannotDraw:
			if !s.pause(ctx, clock) {
				return nil
			}
			cmd = game.AdvanceRound{}
		case game.GameOver:
			logger.Info("Game over", "round", st.Round, "balance", st.HumanBalance())
			cmd = game.Exit{}
		default:
			continue
		}

		if err := o.Submit(ctx, cmd); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}

func (s simulation) pause(ctx context.Context, clock quartz.Clock) bool {
	if s.Delay <= 0 {
		return true
	}
	t := clock.NewTimer(s.Delay, "simulate", "pause")
	defer t.Stop()

	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func printSummary(w io.Writer, s history.Summary, currency string) {
	money := func(d decimal.Decimal) string {
		return currency + d.StringFixed(lottery.MoneyPlaces)
	}

	fmt.Fprintf(w, "Game %s\n", s.GameID)
	fmt.Fprintf(w, "  Rounds drawn:     %d\n", s.Rounds)
	fmt.Fprintf(w, "  Not drawn:        %d\n", s.CannotDraw)
	fmt.Fprintf(w, "  Tickets sold:     %d\n", s.TicketsSold)
	fmt.Fprintf(w, "  Total pool:       %s\n", money(s.TotalPool))
	fmt.Fprintf(w, "  House profit:     %s\n", money(s.HouseProfit))
	fmt.Fprintf(w, "  You spent:        %s\n", money(s.HumanSpent))
	fmt.Fprintf(w, "  You won:          %s (%d rounds)\n", money(s.HumanWon), s.WinningRounds)
	fmt.Fprintf(w, "  Net:              %s\n", money(s.HumanNet))
	fmt.Fprintf(w, "  Biggest prize:    %s\n", money(s.BiggestPrize))
	fmt.Fprintf(w, "  Final phase:      %s\n", s.FinalPhase)
}
