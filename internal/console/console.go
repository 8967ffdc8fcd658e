// Package console is the line-mode front-end: it prints every snapshot and
// error from a game and feeds typed lines back to it as commands.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
	"golang.org/x/sync/errgroup"

	"github.com/lox/lotto/internal/game"
	"github.com/lox/lotto/internal/input"
	"github.com/lox/lotto/internal/lottery"
	"github.com/lox/lotto/internal/render"
)

// Game is the part of the orchestrator a front-end drives.
type Game interface {
	Submit(ctx context.Context, cmd game.Command) error
	States() <-chan game.State
	Errors() <-chan error
	Done() <-chan struct{}
}

// Console reads commands from in and writes screens to out.
type Console struct {
	in       io.Reader
	out      io.Writer
	term     *termenv.Output
	clear    bool
	rules    lottery.Rules
	renderer *render.Renderer
	logger   *log.Logger

	mu     sync.Mutex
	state  game.State
	notify chan struct{}
}

// Option configures a Console.
type Option func(*Console)

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(c *Console) {
		c.logger = logger.WithPrefix("console")
	}
}

// WithClearScreen clears the terminal before each snapshot.
func WithClearScreen(clear bool) Option {
	return func(c *Console) {
		c.clear = clear
	}
}

// New creates a console.
func New(in io.Reader, out io.Writer, rules lottery.Rules, renderer *render.Renderer, opts ...Option) *Console {
	c := &Console{
		in:       in,
		out:      out,
		term:     termenv.NewOutput(out),
		rules:    rules,
		renderer: renderer,
		logger:   log.New(io.Discard),
		notify:   make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run drives g until its snapshot and error streams close. End of input
// exits the game.
func (c *Console) Run(ctx context.Context, g Game) error {
	lines := make(chan string)
	stop := make(chan struct{})
	defer close(stop)
	go c.scan(lines, stop)

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error { return c.printStates(g.States()) })
	eg.Go(func() error { return c.printErrors(g.Errors()) })
	eg.Go(func() error { return c.readCommands(ctx, g, lines) })
	return eg.Wait()
}

// scan forwards input lines. It may outlive Run while blocked on a read.
func (c *Console) scan(lines chan<- string, stop <-chan struct{}) {
	defer close(lines)

	scanner := bufio.NewScanner(c.in)
	for scanner.Scan() {
		select {
		case lines <- scanner.Text():
		case <-stop:
			return
		}
	}
	if err := scanner.Err(); err != nil {
		c.logger.Warn("Input error", "error", err)
	}
}

func (c *Console) printStates(states <-chan game.State) error {
	for st := range states {
		c.mu.Lock()
		c.state = st
		if c.clear {
			c.term.ClearScreen()
		}
		fmt.Fprintln(c.out, c.renderer.State(st))
		c.mu.Unlock()

		c.signal()
	}
	return nil
}

func (c *Console) printErrors(errs <-chan error) error {
	for err := range errs {
		c.print(c.renderer.Error(err))
		c.signal()
	}
	return nil
}

func (c *Console) readCommands(ctx context.Context, g Game, lines <-chan string) error {
	// Nothing can be parsed before the opening snapshot.
	if !c.await(ctx, g) {
		return nil
	}

	for {
		var (
			line string
			ok   bool
		)
		select {
		case <-ctx.Done():
			return nil
		case <-g.Done():
			return nil
		case line, ok = <-lines:
		}
		if !ok {
			c.logger.Debug("End of input")
			return c.submit(ctx, g, game.Exit{})
		}

		cmd, err := input.Parse(c.current(), line, c.rules)
		if err != nil {
			c.print(c.renderer.Error(err))
			continue
		}
		c.logger.Debug("Command", "command", cmd)

		if err := c.submit(ctx, g, cmd); err != nil {
			return err
		}
		if _, exit := cmd.(game.Exit); exit {
			return nil
		}
		// Every other command answers with exactly one snapshot or error.
		if !c.await(ctx, g) {
			return nil
		}
	}
}

func (c *Console) submit(ctx context.Context, g Game, cmd game.Command) error {
	err := g.Submit(ctx, cmd)
	if errors.Is(err, game.ErrStopped) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (c *Console) await(ctx context.Context, g Game) bool {
	select {
	case <-c.notify:
		return true
	case <-g.Done():
		return false
	case <-ctx.Done():
		return false
	}
}

func (c *Console) signal() {
	select {
	case c.notify <- struct{}{}:
	default:
	}
}

func (c *Console) current() game.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Console) print(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, s)
}
