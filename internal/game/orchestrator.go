package game

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/lox/lotto/internal/gameid"
	"github.com/lox/lotto/internal/lottery"
	"github.com/lox/lotto/internal/randutil"
)

const commandBuffer = 16

// Orchestrator owns the game state and applies commands to it one at a time.
// A single goroutine reads commands and replaces the state; snapshots and
// errors leave through unbounded outboxes so a slow observer never stalls
// the game.
type Orchestrator struct {
	cfg    Config
	src    randutil.Source
	logger *log.Logger
	clock  quartz.Clock
	gameID string

	commands chan Command
	states   *outbox[State]
	errs     *outbox[error]

	// ctx ends the game. pumps bounds the publishers, which outlive an
	// Exit until the queued snapshots and errors are delivered.
	ctx       context.Context
	cancel    context.CancelFunc
	pumps     context.Context
	stopPumps context.CancelFunc
	group     *errgroup.Group
	started atomic.Bool

	// state is only touched by the command loop once Start returns.
	state *State
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger.WithPrefix("game")
	}
}

// WithClock sets the clock used to stamp snapshots.
func WithClock(clock quartz.Clock) Option {
	return func(o *Orchestrator) {
		o.clock = clock
	}
}

// WithGameID sets the game identifier instead of generating one.
func WithGameID(id string) Option {
	return func(o *Orchestrator) {
		o.gameID = id
	}
}

// New creates an orchestrator. src is consumed only from the command loop.
func New(cfg Config, src randutil.Source, opts ...Option) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if src == nil {
		return nil, fmt.Errorf("%w: random source is required", ErrInvalidConfig)
	}

	ctx, cancel := context.WithCancel(context.Background())
	pumps, stopPumps := context.WithCancel(context.Background())
	o := &Orchestrator{
		cfg:      cfg,
		src:      src,
		logger:   log.New(io.Discard),
		clock:    quartz.NewReal(),
		commands: make(chan Command, commandBuffer),
		states:   newOutbox[State](),
		errs:     newOutbox[error](),
		ctx:       ctx,
		cancel:    cancel,
		pumps:     pumps,
		stopPumps: stopPumps,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.gameID == "" {
		o.gameID = gameid.Generate()
	}
	return o, nil
}

// Start seats the players, publishes the opening snapshot and starts the
// command, snapshot and error loops. The game ends on Exit, Stop or when
// ctx is cancelled. After Exit the streams close once everything queued has
// been delivered; Stop and ctx cancellation close them straight away.
func (o *Orchestrator) Start(ctx context.Context) error {
	if !o.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}

	initial := o.initialState()
	o.state = &initial
	o.states.push(initial)

	o.logger.Info("Game started",
		"game", o.gameID,
		"players", len(initial.Balances),
		"balance", o.cfg.InitialBalance,
		"price", o.cfg.Rules.TicketPrice)

	stop := context.AfterFunc(ctx, o.Stop)

	g, gctx := errgroup.WithContext(o.pumps)
	g.Go(func() error { return o.processCommands(gctx) })
	g.Go(func() error { return o.states.run(gctx) })
	g.Go(func() error { return o.errs.run(gctx) })
	o.group = g

	go func() {
		_ = g.Wait()
		stop()
	}()

	return nil
}

// Submit queues cmd. It blocks only while the command buffer is full.
func (o *Orchestrator) Submit(ctx context.Context, cmd Command) error {
	if cmd == nil {
		return fmt.Errorf("%w: nil command", ErrInvariant)
	}

	select {
	case <-o.ctx.Done():
		return ErrStopped
	default:
	}

	select {
	case o.commands <- cmd:
		return nil
	case <-o.ctx.Done():
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// States returns the snapshot stream. It is closed when the game ends.
func (o *Orchestrator) States() <-chan State {
	return o.states.out
}

// Errors returns the stream of rejected commands and invariant failures.
// It is closed when the game ends.
func (o *Orchestrator) Errors() <-chan error {
	return o.errs.out
}

// Done is closed once the game has been told to stop. Snapshots queued
// before an Exit may still arrive afterwards.
func (o *Orchestrator) Done() <-chan struct{} {
	return o.ctx.Done()
}

// Stop ends the game and drops anything not yet delivered.
func (o *Orchestrator) Stop() {
	o.cancel()
	o.stopPumps()
}

// Wait blocks until every loop has returned. After Exit that includes
// delivering what was queued, so callers that stop reading must call Stop.
func (o *Orchestrator) Wait() error {
	if o.group == nil {
		return nil
	}
	return o.group.Wait()
}

// GameID returns the game identifier.
func (o *Orchestrator) GameID() string {
	return o.gameID
}

func (o *Orchestrator) initialState() State {
	players := o.cfg.SimulatedPlayers
	if players == 0 {
		players = o.src.IntRange(MinSimulatedPlayers, o.cfg.MaxPlayers)
	}

	balances := make(lottery.Balances, players+1)
	for id := lottery.HumanPlayer; id <= lottery.PlayerID(players+1); id++ {
		balances[id] = o.cfg.InitialBalance
	}

	return State{
		GameID:    o.gameID,
		Phase:     AwaitingBet,
		Balances:  balances,
		UpdatedAt: o.clock.Now(),
	}
}

func (o *Orchestrator) processCommands(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case cmd := <-o.commands:
			if o.handle(cmd) {
				o.logger.Info("Game exited", "game", o.gameID)
				o.states.close()
				o.errs.close()
				o.cancel()
				return nil
			}
		}
	}
}

// handle applies one command and reports whether the game should end.
func (o *Orchestrator) handle(cmd Command) (exit bool) {
	defer func() {
		if r := recover(); r != nil {
			o.reject(cmd, &InvariantError{Op: cmd.String(), Err: fmt.Errorf("panic: %v", r)})
		}
	}()

	if _, ok := cmd.(Exit); ok {
		return true
	}
	if o.state == nil {
		o.reject(cmd, &InvariantError{Op: cmd.String(), Err: errors.New("game state is not initialized")})
		return false
	}

	var (
		next State
		err  error
	)
	switch c := cmd.(type) {
	case PlaceBet:
		next, err = o.placeBet(*o.state, c)
	case AdvanceRound:
		next, err = o.advance(*o.state, c)
	default:
		err = &InvariantError{Op: "dispatch", Err: fmt.Errorf("unknown command %T", cmd)}
	}
	if err != nil {
		o.reject(cmd, err)
		return false
	}

	next.UpdatedAt = o.clock.Now()
	o.state = &next
	o.states.push(next)
	o.logger.Debug("State published", "command", cmd, "phase", next.Phase, "round", next.Round)
	return false
}

func (o *Orchestrator) reject(cmd Command, err error) {
	if errors.Is(err, ErrInvariant) {
		o.logger.Error("Command failed", "command", cmd, "error", err)
	} else {
		o.logger.Warn("Command rejected", "command", cmd, "error", err)
	}
	o.errs.push(err)
}

func (o *Orchestrator) placeBet(st State, c PlaceBet) (State, error) {
	if !st.Accepts(c) {
		return st, &UnexpectedCommandError{Command: c, Phase: st.Phase}
	}

	rules := o.cfg.Rules
	balance, ok := st.Balances[lottery.HumanPlayer]
	if !ok {
		return st, &InvariantError{Op: c.String(), Err: fmt.Errorf("%w: human player has no balance", lottery.ErrUnknownPlayer)}
	}
	if err := lottery.ValidateBet(c.Tickets, balance, rules); err != nil {
		return st, err
	}

	out, err := lottery.Play(o.src, c.Tickets, st.Balances, rules)

	var short *lottery.NotEnoughTicketsError
	if errors.As(err, &short) {
		o.logger.Info("Not enough tickets to draw", "sold", short.Sold, "minimum", short.Minimum, "short", short.Shortfall())
		next := st
		next.Phase = CannotDraw
		next.PendingTickets = c.Tickets
		next.Allocation = out.Allocation
		next.TicketsSold = short.Sold
		next.Participants = out.Allocation.Participants()
		return next, nil
	}
	if err != nil {
		return st, &InvariantError{Op: c.String(), Err: err}
	}

	result := out.Settlement.Result
	next := State{
		GameID:         st.GameID,
		Round:          st.Round + 1,
		Phase:          ShowingResults,
		Balances:       out.Settlement.Balances,
		LastResult:     &result,
		PendingTickets: c.Tickets,
		Allocation:     out.Allocation,
		TicketsSold:    out.Allocation.Total(),
		Participants:   out.Allocation.Participants(),
	}

	human := next.HumanBalance()
	if human.LessThan(rules.TicketPrice) || next.Participants < lottery.MinParticipants {
		next.Phase = GameOver
	}

	o.logger.Info("Round drawn",
		"round", next.Round,
		"tickets", next.TicketsSold,
		"participants", next.Participants,
		"winners", len(result.Prizes),
		"house", result.HouseProfit,
		"balance", human,
		"phase", next.Phase)

	return next, nil
}

func (o *Orchestrator) advance(st State, c AdvanceRound) (State, error) {
	if !st.Accepts(c) {
		return st, &UnexpectedCommandError{Command: c, Phase: st.Phase}
	}

	next := st
	next.Phase = AwaitingBet
	next.PendingTickets = 0
	next.Allocation = nil
	next.TicketsSold = 0
	next.Participants = 0
	return next, nil
}
