package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
	"golang.org/x/sync/errgroup"

	"github.com/lox/lotto/cmd/lotto/shared"
	"github.com/lox/lotto/internal/config"
	"github.com/lox/lotto/internal/console"
	"github.com/lox/lotto/internal/game"
	"github.com/lox/lotto/internal/history"
	"github.com/lox/lotto/internal/observe"
	"github.com/lox/lotto/internal/randutil"
	"github.com/lox/lotto/internal/render"
	"github.com/lox/lotto/internal/tui"
)

type PlayCmd struct {
	Plain   bool   `help:"Use the line-mode console instead of the TUI"`
	NoColor bool   `name:"no-color" help:"Disable colour in console mode"`
	Observe string `placeholder:"ADDR" help:"Serve a read-only spectator feed on this address (e.g. :8081)"`
	History string `placeholder:"FILE" help:"Write the round history to this JSON file on exit"`
}

// stateView hands a front-end its own copy of the snapshot stream.
type stateView struct {
	*game.Orchestrator
	states <-chan game.State
}

func (v stateView) States() <-chan game.State {
	return v.states
}

func (c *PlayCmd) Run(g *Globals) error {
	cfg, gc, err := loadConfig(g)
	if err != nil {
		return err
	}

	// stdout belongs to the game, so logs go to a file
	logFile, err := shared.OpenLogFile(cfg.Log.File)
	if err != nil {
		return err
	}
	defer func() { _ = logFile.Close() }()

	logger, err := shared.SetupLogger(logFile, cfg.Log.Level, "text")
	if err != nil {
		return err
	}

	ctx, cancel := shared.SetupSignalHandler(context.Background(), logger)
	defer cancel()

	summary, err := c.play(ctx, cfg, gc, newSource(g.Seed), logger)
	if err != nil {
		return err
	}

	fmt.Printf("Thanks for playing! %d rounds drawn, net result %s%s.\n",
		summary.Rounds, cfg.Game.Currency, summary.HumanNet.StringFixed(2))
	return nil
}

func (c *PlayCmd) play(ctx context.Context, cfg *config.Config, gc game.Config, src randutil.Source, logger *log.Logger) (history.Summary, error) {
	o, err := game.New(gc, src, game.WithLogger(logger))
	if err != nil {
		return history.Summary{}, err
	}
	logger.Info("Starting game", "game", o.GameID(), "config", cfg.Game, "plain", c.Plain)

	if err := o.Start(ctx); err != nil {
		return history.Summary{}, err
	}

	subscribers := 2
	if c.Observe != "" {
		subscribers++
	}

	eg, egctx := errgroup.WithContext(ctx)
	streams := game.Fanout(egctx, o.States(), subscribers)
	view := stateView{Orchestrator: o, states: streams[0]}

	recorder := history.NewRecorder(gc.Rules, logger)
	eg.Go(func() error { return recorder.Run(egctx, streams[1]) })

	if c.Observe != "" {
		hub := observe.NewHub(observe.WithLogger(logger))
		serveCtx, stopServe := context.WithCancel(egctx)
		eg.Go(func() error {
			defer stopServe()
			return hub.Run(egctx, streams[2])
		})
		eg.Go(func() error { return hub.ListenAndServe(serveCtx, c.Observe) })
	}

	eg.Go(func() error {
		defer o.Stop()
		return c.frontEnd(egctx, view, cfg, gc, logger)
	})
	eg.Go(o.Wait)

	if err := eg.Wait(); err != nil {
		return history.Summary{}, err
	}

	if c.History != "" {
		if err := recorder.Export(c.History); err != nil {
			return history.Summary{}, err
		}
	}
	return recorder.Summary(), nil
}

func (c *PlayCmd) frontEnd(ctx context.Context, g console.Game, cfg *config.Config, gc game.Config, logger *log.Logger) error {
	interactive := isatty.IsTerminal(os.Stdout.Fd())
	plain := c.NoColor || !interactive

	r := render.New(os.Stdout, cfg.Game.Currency, gc.Rules, render.WithPlain(plain))
	if c.Plain || !interactive {
		con := console.New(os.Stdin, os.Stdout, gc.Rules, r,
			console.WithLogger(logger),
			console.WithClearScreen(interactive && !c.NoColor))
		return con.Run(ctx, g)
	}
	return tui.Run(ctx, g, gc.Rules, r, logger)
}
