// Package render formats game snapshots as terminal text. The console and
// TUI front-ends share it.
package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/muesli/termenv"
	"github.com/shopspring/decimal"

	"github.com/lox/lotto/internal/game"
	"github.com/lox/lotto/internal/lottery"
)

// Renderer formats snapshots for one game's rules and currency.
type Renderer struct {
	currency string
	rules    lottery.Rules
	plain    bool
	styles   styles
}

// Option configures a Renderer.
type Option func(*rendererOptions)

type rendererOptions struct {
	plain bool
}

// WithPlain disables colour and uses ASCII borders.
func WithPlain(plain bool) Option {
	return func(o *rendererOptions) {
		o.plain = plain
	}
}

// New creates a renderer whose colour profile is detected from w.
func New(w io.Writer, currency string, rules lottery.Rules, opts ...Option) *Renderer {
	var o rendererOptions
	for _, opt := range opts {
		opt(&o)
	}

	lr := lipgloss.NewRenderer(w)
	if o.plain {
		lr.SetColorProfile(termenv.Ascii)
	}

	return &Renderer{
		currency: currency,
		rules:    rules,
		plain:    o.plain,
		styles:   newStyles(lr),
	}
}

// Money formats an amount with the currency symbol and two decimals.
func (r *Renderer) Money(d decimal.Decimal) string {
	return r.currency + d.StringFixed(lottery.MoneyPlaces)
}

// State renders the whole screen for st.
func (r *Renderer) State(st game.State) string {
	var b strings.Builder

	b.WriteString(r.styles.Header.Render(r.title(st)))
	b.WriteString("\n\n")

	switch st.Phase {
	case game.AwaitingBet:
		b.WriteString(r.welcome(st))
	case game.ShowingResults:
		b.WriteString(r.results(st))
	case game.CannotDraw:
		b.WriteString(r.cannotDraw(st))
	case game.GameOver:
		b.WriteString(r.results(st))
		b.WriteString("\n")
		b.WriteString(r.gameOver(st))
	}

	b.WriteString("\n\n")
	b.WriteString(r.styles.Prompt.Render(r.Prompt(st)))
	return b.String()
}

// Prompt returns the question asked of the player in st's phase.
func (r *Renderer) Prompt(st game.State) string {
	switch st.Phase {
	case game.AwaitingBet:
		limit := min(r.rules.MaxTicketsPerPlayer, r.rules.Affordable(st.HumanBalance()))
		return fmt.Sprintf("How many tickets do you want to buy? (1-%d, e to exit)", limit)
	case game.ShowingResults, game.CannotDraw:
		return "Play another round? (y/n)"
	case game.GameOver:
		return "Press enter to exit"
	default:
		return ""
	}
}

// Error renders a rejected command or input.
func (r *Renderer) Error(err error) string {
	return r.styles.Error.Render("Error: " + err.Error())
}

func (r *Renderer) title(st game.State) string {
	if st.Round == 0 {
		return "Lotto"
	}
	return fmt.Sprintf("Lotto - round %d", st.Round)
}

func (r *Renderer) balanceLine(st game.State) string {
	return fmt.Sprintf("Your balance: %s", r.styles.Money.Render(r.Money(st.HumanBalance())))
}

func (r *Renderer) welcome(st game.State) string {
	var b strings.Builder

	if st.Round == 0 {
		fmt.Fprintf(&b, "Welcome to the Lotto, Player %d!\n", lottery.HumanPlayer)
		fmt.Fprintf(&b, "%d other players have joined the game.\n\n", st.SimulatedPlayers())
	}
	b.WriteString(r.balanceLine(st))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Ticket price: %s, up to %d tickets per player.",
		r.styles.Money.Render(r.Money(r.rules.TicketPrice)), r.rules.MaxTicketsPerPlayer)
	return b.String()
}

func (r *Renderer) results(st game.State) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You bought %d tickets. %d CPU players also bought tickets (%d sold).\n\n",
		st.PendingTickets, st.Participants, st.TicketsSold)

	res := st.LastResult
	if res == nil {
		b.WriteString(r.styles.Muted.Render("No results yet."))
		return b.String()
	}

	b.WriteString(r.styles.Info.Render("Ticket draw results"))
	b.WriteString("\n")
	b.WriteString(r.prizeTable(res))
	b.WriteString("\n\n")

	if p, ok := res.PrizeFor(lottery.HumanPlayer); ok {
		b.WriteString(r.styles.Success.Render(fmt.Sprintf("Congratulations! You won %s.", r.Money(p.Amount))))
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Prize pool: %s\n", r.Money(res.Pool))
	fmt.Fprintf(&b, "House revenue: %s\n", r.styles.Money.Render(r.Money(res.HouseProfit)))
	b.WriteString(r.balanceLine(st))
	return b.String()
}

func (r *Renderer) prizeTable(res *lottery.RoundResult) string {
	t := table.New().
		Headers("Player", "Prize", "Tickets", "Amount").
		BorderStyle(r.styles.Border)
	if r.plain {
		t = t.Border(lipgloss.ASCIIBorder())
	} else {
		t = t.Border(lipgloss.RoundedBorder())
	}

	for _, p := range res.Prizes {
		name := "Player " + strconv.Itoa(int(p.Player))
		if p.Player.IsHuman() {
			name += " (you)"
		}
		t.Row(name, tierName(p.Tier), strconv.Itoa(p.TicketsWon), r.Money(p.Amount))
	}
	return t.String()
}

func (r *Renderer) cannotDraw(st game.State) string {
	var b strings.Builder

	b.WriteString(r.styles.Warning.Render("Not enough tickets to run the draw."))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%d tickets sold, at least %d are needed. No money has changed hands.\n",
		st.TicketsSold, lottery.MinTickets)
	b.WriteString(r.balanceLine(st))
	return b.String()
}

func (r *Renderer) gameOver(st game.State) string {
	reason := "the game has ended"
	switch {
	case st.HumanBalance().LessThan(r.rules.TicketPrice):
		reason = "you can no longer afford a ticket"
	case st.Participants < lottery.MinParticipants:
		reason = fmt.Sprintf("fewer than %d CPU players can still play", lottery.MinParticipants)
	}
	return r.styles.Error.Render("Game over: " + reason + ".")
}

func tierName(t lottery.Tier) string {
	switch t {
	case lottery.TierGrand:
		return "Grand prize"
	case lottery.TierSecond:
		return "Second tier"
	case lottery.TierThird:
		return "Third tier"
	default:
		return "-"
	}
}
