package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/lox/lotto/internal/gameid"
	"github.com/lox/lotto/internal/history"
	"github.com/lox/lotto/internal/lottery"
)

type ReportCmd struct {
	File   string `arg:"" type:"existingfile" help:"History file written by --history"`
	Rounds bool   `help:"List every recorded round"`
}

func (c *ReportCmd) Run(g *Globals) error {
	cfg, _, err := loadConfig(g)
	if err != nil {
		return err
	}
	return c.run(os.Stdout, cfg.Game.Currency)
}

func (c *ReportCmd) run(w io.Writer, currency string) error {
	summary, rounds, err := history.ReadFile(c.File)
	if err != nil {
		return fmt.Errorf("read %s: %w", c.File, err)
	}

	printSummary(w, summary, currency)

	// Only generated identifiers carry a timestamp.
	if id, err := gameid.Decode(summary.GameID); err == nil && id.Version() == 7 {
		sec, nsec := id.Time().UnixTime()
		fmt.Fprintf(w, "  Started:          %s\n", time.Unix(sec, nsec).UTC().Format(time.RFC3339))
	}

	if c.Rounds {
		for _, r := range rounds {
			fmt.Fprintf(w, "Round %d: %d tickets, pool %s, won %s, balance %s\n",
				r.Round, r.Tickets,
				currency+r.Pool.StringFixed(lottery.MoneyPlaces),
				currency+r.Winnings.StringFixed(lottery.MoneyPlaces),
				currency+r.Balance.StringFixed(lottery.MoneyPlaces))
		}
	}
	return nil
}
