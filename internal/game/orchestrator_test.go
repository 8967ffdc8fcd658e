package game

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/lotto/internal/gameid"
	"github.com/lox/lotto/internal/lottery"
	"github.com/lox/lotto/internal/randutil"
)

const waitTimeout = 2 * time.Second

func testConfig(balance int64, players int) Config {
	cfg := DefaultConfig()
	cfg.InitialBalance = decimal.NewFromInt(balance)
	cfg.SimulatedPlayers = players
	return cfg
}

func startGame(t *testing.T, cfg Config, seed int32, opts ...Option) *Orchestrator {
	t.Helper()

	o, err := New(cfg, randutil.NewSource(seed), opts...)
	require.NoError(t, err)
	require.NoError(t, o.Start(context.Background()))

	t.Cleanup(func() {
		o.Stop()
		_ = o.Wait()
	})
	return o
}

func nextState(t *testing.T, o *Orchestrator) State {
	t.Helper()

	select {
	case st, ok := <-o.States():
		require.True(t, ok, "state stream closed")
		return st
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for state")
		return State{}
	}
}

func nextError(t *testing.T, o *Orchestrator) error {
	t.Helper()

	select {
	case err, ok := <-o.Errors():
		require.True(t, ok, "error stream closed")
		return err
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for error")
		return nil
	}
}

func submit(t *testing.T, o *Orchestrator, cmd Command) {
	t.Helper()
	require.NoError(t, o.Submit(context.Background(), cmd))
}

func assertBalancesEqual(t *testing.T, want, got lottery.Balances) {
	t.Helper()

	require.Equal(t, want.IDs(), got.IDs())
	for _, id := range want.IDs() {
		assert.True(t, want[id].Equal(got[id]), "player %d: want %s, got %s", id, want[id], got[id])
	}
}

func TestStartPublishesInitialState(t *testing.T) {
	t.Parallel()

	clock := quartz.NewMock(t)
	o := startGame(t, DefaultConfig(), 111, WithClock(clock), WithGameID("01h5n0et5q6mt3v7ms1234abcd"))

	st := nextState(t, o)
	assert.Equal(t, "01h5n0et5q6mt3v7ms1234abcd", st.GameID)
	assert.Equal(t, AwaitingBet, st.Phase)
	assert.Zero(t, st.Round)
	assert.Nil(t, st.LastResult)
	assert.Equal(t, clock.Now(), st.UpdatedAt)

	assert.GreaterOrEqual(t, st.SimulatedPlayers(), MinSimulatedPlayers)
	assert.Less(t, st.SimulatedPlayers(), DefaultConfig().MaxPlayers)
	for id, balance := range st.Balances {
		assert.True(t, balance.Equal(decimal.NewFromInt(10)), "player %d balance %s", id, balance)
	}
	assert.Contains(t, st.Balances, lottery.HumanPlayer)
}

func TestSimulatedPlayerCountIsSeeded(t *testing.T) {
	t.Parallel()

	a := nextState(t, startGame(t, DefaultConfig(), 42))
	b := nextState(t, startGame(t, DefaultConfig(), 42))
	assert.Equal(t, a.SimulatedPlayers(), b.SimulatedPlayers())

	fixed := nextState(t, startGame(t, testConfig(10, 7), 42))
	assert.Equal(t, 7, fixed.SimulatedPlayers())
	assert.Equal(t, []lottery.PlayerID{1, 2, 3, 4, 5, 6, 7, 8}, fixed.Balances.IDs())
}

func TestGeneratedGameID(t *testing.T) {
	t.Parallel()

	o := startGame(t, DefaultConfig(), 1)
	require.NoError(t, gameid.Validate(o.GameID()))
	assert.Equal(t, o.GameID(), nextState(t, o).GameID)
}

func TestStartTwice(t *testing.T) {
	t.Parallel()

	o := startGame(t, DefaultConfig(), 1)
	assert.ErrorIs(t, o.Start(context.Background()), ErrAlreadyStarted)
}

func TestNewRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Rules.TicketPrice = decimal.Zero
	_, err := New(cfg, randutil.NewSource(1))
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = New(DefaultConfig(), nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestInvalidBetPublishesErrorOnly(t *testing.T) {
	t.Parallel()

	o := startGame(t, testConfig(10, 12), 111)
	initial := nextState(t, o)

	for _, tickets := range []int{0, -3, 11} {
		submit(t, o, PlaceBet{Tickets: tickets})

		err := nextError(t, o)
		require.ErrorIs(t, err, lottery.ErrInvalidBet)

		var bet *lottery.InvalidBetError
		require.ErrorAs(t, err, &bet)
		assert.Equal(t, tickets, bet.Requested)
		assert.Equal(t, 10, bet.Max)
		assert.Equal(t, 10, bet.Affordable)
	}

	// The next snapshot is the first valid bet; rejected bets published none.
	submit(t, o, PlaceBet{Tickets: 5})
	st := nextState(t, o)
	assert.Equal(t, 1, st.Round)
	assert.Equal(t, 5, st.PendingTickets)
	assert.Len(t, initial.Balances, 13)
}

func TestPlaceBetMatchesPlay(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		balance int64
		players int
		seed    int32
		tickets int
	}{
		{"golden seed", 10, 12, 111, 5},
		{"max bet", 10, 14, 7, 10},
		{"single ticket", 10, 10, 2024, 1},
		{"low balances", 1, 12, 99, 1},
		{"few players", 100, 3, 5, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := testConfig(tt.balance, tt.players)
			o := startGame(t, cfg, tt.seed)
			initial := nextState(t, o)

			submit(t, o, PlaceBet{Tickets: tt.tickets})
			st := nextState(t, o)

			out, err := lottery.Play(randutil.NewSource(tt.seed), tt.tickets, initial.Balances, cfg.Rules)
			require.NoError(t, err)

			assertBalancesEqual(t, out.Settlement.Balances, st.Balances)
			require.NotNil(t, st.LastResult)
			assert.Equal(t, len(out.Settlement.Result.Prizes), len(st.LastResult.Prizes))
			assert.True(t, out.Settlement.Result.HouseProfit.Equal(st.LastResult.HouseProfit))
			assert.Equal(t, out.Allocation, st.Allocation)
			assert.Equal(t, out.Allocation.Total(), st.TicketsSold)
			assert.Equal(t, 1, st.Round)

			want := ShowingResults
			if st.HumanBalance().LessThan(cfg.Rules.TicketPrice) || out.Allocation.Participants() < lottery.MinParticipants {
				want = GameOver
			}
			assert.Equal(t, want, st.Phase)

			// Settlement conserves money: the house keeps exactly the unpaid pool.
			assert.True(t, initial.Balances.Total().Sub(st.LastResult.HouseProfit).Equal(st.Balances.Total()))
		})
	}
}

func TestCannotDraw(t *testing.T) {
	t.Parallel()

	o := startGame(t, testConfig(1, 3), 111)
	initial := nextState(t, o)

	submit(t, o, PlaceBet{Tickets: 1})
	st := nextState(t, o)

	assert.Equal(t, CannotDraw, st.Phase)
	assert.Equal(t, 4, st.TicketsSold)
	assert.Equal(t, 3, st.Participants)
	assert.Equal(t, 1, st.PendingTickets)
	assert.Zero(t, st.Round)
	assert.Nil(t, st.LastResult)
	assertBalancesEqual(t, initial.Balances, st.Balances)

	submit(t, o, AdvanceRound{})
	next := nextState(t, o)
	assert.Equal(t, AwaitingBet, next.Phase)
	assert.Zero(t, next.PendingTickets)
	assert.Zero(t, next.TicketsSold)
	assertBalancesEqual(t, initial.Balances, next.Balances)
}

func TestGameOverWithTooFewParticipants(t *testing.T) {
	t.Parallel()

	o := startGame(t, testConfig(100, 3), 111)
	nextState(t, o)

	submit(t, o, PlaceBet{Tickets: 10})
	st := nextState(t, o)
	assert.Equal(t, GameOver, st.Phase)
	assert.Equal(t, 1, st.Round)
	assert.Equal(t, 3, st.Participants)
	require.NotNil(t, st.LastResult)

	for _, cmd := range []Command{PlaceBet{Tickets: 1}, AdvanceRound{}} {
		submit(t, o, cmd)
		err := nextError(t, o)

		var unexpected *UnexpectedCommandError
		require.ErrorAs(t, err, &unexpected)
		assert.Equal(t, GameOver, unexpected.Phase)
		assert.Equal(t, cmd, unexpected.Command)
	}
}

func TestGameOverWhenHumanCannotAffordTicket(t *testing.T) {
	t.Parallel()

	// With every prize share at zero nobody can win, so the human's
	// balance after spending it all is exactly zero regardless of the draw.
	cfg := testConfig(3, 12)
	cfg.Rules.GrandShare = decimal.Zero
	cfg.Rules.SecondShare = decimal.Zero
	cfg.Rules.ThirdShare = decimal.Zero

	o := startGame(t, cfg, 111)
	nextState(t, o)

	submit(t, o, PlaceBet{Tickets: 3})
	st := nextState(t, o)

	assert.Equal(t, GameOver, st.Phase)
	assert.Equal(t, 1, st.Round)
	assert.True(t, st.HumanBalance().IsZero(), "human balance %s", st.HumanBalance())
	// Every simulated player could afford a ticket, so the participant rule
	// cannot be what ended the game.
	assert.Equal(t, 12, st.Participants)
	assert.GreaterOrEqual(t, st.Participants, lottery.MinParticipants)

	require.NotNil(t, st.LastResult)
	assert.Empty(t, st.LastResult.Prizes)
	assert.True(t, st.LastResult.HouseProfit.Equal(st.LastResult.Pool))
}

func TestWrongPhaseCommands(t *testing.T) {
	t.Parallel()

	o := startGame(t, testConfig(10, 12), 111)
	nextState(t, o)

	submit(t, o, AdvanceRound{})
	err := nextError(t, o)
	require.ErrorIs(t, err, ErrUnexpectedCommand)
	assert.Contains(t, err.Error(), "advance during awaiting_bet")

	submit(t, o, PlaceBet{Tickets: 2})
	st := nextState(t, o)
	require.Equal(t, ShowingResults, st.Phase)

	submit(t, o, PlaceBet{Tickets: 2})
	err = nextError(t, o)
	var unexpected *UnexpectedCommandError
	require.ErrorAs(t, err, &unexpected)
	assert.Equal(t, ShowingResults, unexpected.Phase)
}

func TestCommandsProcessedInOrder(t *testing.T) {
	t.Parallel()

	o := startGame(t, testConfig(10, 12), 111)
	nextState(t, o)

	submit(t, o, PlaceBet{Tickets: 1})
	submit(t, o, AdvanceRound{})
	submit(t, o, PlaceBet{Tickets: 1})

	first := nextState(t, o)
	second := nextState(t, o)
	third := nextState(t, o)

	assert.Equal(t, ShowingResults, first.Phase)
	assert.Equal(t, 1, first.Round)

	assert.Equal(t, AwaitingBet, second.Phase)
	assert.Equal(t, 1, second.Round)
	assert.Same(t, first.LastResult, second.LastResult)
	assertBalancesEqual(t, first.Balances, second.Balances)

	assert.Equal(t, 2, third.Round)
	assert.NotEqual(t, AwaitingBet, third.Phase)
}

func TestSnapshotsAreNotModified(t *testing.T) {
	t.Parallel()

	o := startGame(t, testConfig(10, 12), 111)
	initial := nextState(t, o)
	before := initial.Balances.Clone()

	submit(t, o, PlaceBet{Tickets: 3})
	nextState(t, o)

	assertBalancesEqual(t, before, initial.Balances)
}

func TestUpdatedAtFollowsClock(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), waitTimeout)
	defer cancel()

	clock := quartz.NewMock(t)
	o := startGame(t, testConfig(10, 12), 111, WithClock(clock))
	start := nextState(t, o).UpdatedAt

	clock.Advance(time.Minute).MustWait(ctx)
	submit(t, o, PlaceBet{Tickets: 1})

	st := nextState(t, o)
	assert.Equal(t, start.Add(time.Minute), st.UpdatedAt)
}

func TestExitStopsGame(t *testing.T) {
	t.Parallel()

	o := startGame(t, testConfig(10, 12), 111)
	nextState(t, o)

	submit(t, o, Exit{})

	select {
	case <-o.Done():
	case <-time.After(waitTimeout):
		t.Fatal("game did not stop")
	}
	require.NoError(t, o.Wait())

	_, open := <-o.States()
	assert.False(t, open)
	_, open = <-o.Errors()
	assert.False(t, open)

	assert.ErrorIs(t, o.Submit(context.Background(), PlaceBet{Tickets: 1}), ErrStopped)
}

func TestExitAcceptedInEveryPhase(t *testing.T) {
	t.Parallel()

	tests := []struct {
		phase   Phase
		balance int64
		players int
		bet     int
	}{
		{AwaitingBet, 10, 12, 0},
		{ShowingResults, 10, 12, 2},
		{CannotDraw, 1, 3, 1},
		{GameOver, 100, 3, 10},
	}

	for _, tt := range tests {
		t.Run(tt.phase.String(), func(t *testing.T) {
			t.Parallel()

			o := startGame(t, testConfig(tt.balance, tt.players), 111)
			st := nextState(t, o)
			if tt.bet > 0 {
				submit(t, o, PlaceBet{Tickets: tt.bet})
				st = nextState(t, o)
			}
			require.Equal(t, tt.phase, st.Phase)

			submit(t, o, Exit{})
			select {
			case <-o.Done():
			case <-time.After(waitTimeout):
				t.Fatal("game did not stop")
			}
			require.NoError(t, o.Wait())

			_, open := <-o.States()
			assert.False(t, open)
			assert.ErrorIs(t, o.Submit(context.Background(), AdvanceRound{}), ErrStopped)
		})
	}
}

func TestExitDeliversQueuedOutput(t *testing.T) {
	t.Parallel()

	o := startGame(t, testConfig(10, 12), 111)

	// Nothing is read until the game has exited.
	submit(t, o, PlaceBet{Tickets: 2})
	submit(t, o, AdvanceRound{})
	submit(t, o, AdvanceRound{})
	submit(t, o, Exit{})

	select {
	case <-o.Done():
	case <-time.After(waitTimeout):
		t.Fatal("game did not stop")
	}

	assert.Equal(t, AwaitingBet, nextState(t, o).Phase)
	assert.Equal(t, ShowingResults, nextState(t, o).Phase)
	assert.Equal(t, AwaitingBet, nextState(t, o).Phase)
	_, open := <-o.States()
	assert.False(t, open)

	assert.ErrorIs(t, nextError(t, o), ErrUnexpectedCommand)
	_, open = <-o.Errors()
	assert.False(t, open)

	require.NoError(t, o.Wait())
}

func TestStopDropsQueuedOutput(t *testing.T) {
	t.Parallel()

	o, err := New(testConfig(10, 12), randutil.NewSource(111))
	require.NoError(t, err)
	require.NoError(t, o.Start(context.Background()))

	o.Stop()
	require.NoError(t, o.Wait())

	_, open := <-o.States()
	assert.False(t, open, "opening snapshot should have been dropped")
}

func TestParentContextCancelStopsGame(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	o, err := New(testConfig(10, 12), randutil.NewSource(1))
	require.NoError(t, err)
	require.NoError(t, o.Start(ctx))

	cancel()
	select {
	case <-o.Done():
	case <-time.After(waitTimeout):
		t.Fatal("game did not stop")
	}
	require.NoError(t, o.Wait())
	assert.ErrorIs(t, o.Submit(context.Background(), Exit{}), ErrStopped)
}

func TestSubmitNilCommand(t *testing.T) {
	t.Parallel()

	o := startGame(t, DefaultConfig(), 1)
	err := o.Submit(context.Background(), nil)
	assert.ErrorIs(t, err, ErrInvariant)
}

func TestSubmitHonoursContext(t *testing.T) {
	t.Parallel()

	// Not started: nothing drains the buffer.
	o, err := New(testConfig(10, 12), randutil.NewSource(1))
	require.NoError(t, err)
	t.Cleanup(o.Stop)

	for i := 0; i < commandBuffer; i++ {
		require.NoError(t, o.Submit(context.Background(), AdvanceRound{}))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, o.Submit(ctx, AdvanceRound{}), context.DeadlineExceeded)
}

func TestInvariantErrorUnwraps(t *testing.T) {
	t.Parallel()

	err := &InvariantError{Op: "bet(1)", Err: lottery.ErrNegativeBalance}
	assert.ErrorIs(t, err, ErrInvariant)
	assert.ErrorIs(t, err, lottery.ErrNegativeBalance)
	assert.False(t, errors.Is(err, ErrUnexpectedCommand))
	assert.Contains(t, err.Error(), "bet(1)")
}

func TestMissingHumanBalanceIsInvariant(t *testing.T) {
	t.Parallel()

	o, err := New(testConfig(10, 12), randutil.NewSource(1))
	require.NoError(t, err)

	st := State{Phase: AwaitingBet, Balances: lottery.Balances{2: decimal.NewFromInt(10)}}
	_, err = o.placeBet(st, PlaceBet{Tickets: 1})
	assert.ErrorIs(t, err, ErrInvariant)
	assert.ErrorIs(t, err, lottery.ErrUnknownPlayer)
}
