package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/lox/lotto/internal/lottery"
	"github.com/lox/lotto/internal/randutil"
)

type DrawCmd struct {
	Tickets int  `default:"100" help:"Number of tickets in the pool"`
	JSON    bool `name:"json" help:"Print the draw as JSON"`
}

func (c *DrawCmd) Run(g *Globals) error {
	if g.Seed == 0 {
		return fmt.Errorf("--seed is required for a reproducible draw")
	}
	return c.run(os.Stdout, g.Seed)
}

func (c *DrawCmd) run(w io.Writer, seed int32) error {
	d, err := lottery.Draw(randutil.NewSource(seed), c.Tickets)
	if err != nil {
		return err
	}

	if c.JSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Seed int32 `json:"seed"`
			lottery.DrawResult
		}{seed, d})
	}

	fmt.Fprintf(w, "Seed %d, %d tickets\n", seed, d.Total)
	fmt.Fprintf(w, "Grand prize: %d\n", d.Grand)
	fmt.Fprintf(w, "Second tier: %s\n", joinInts(d.Second))
	fmt.Fprintf(w, "Third tier:  %s\n", joinInts(d.Third))
	fmt.Fprintf(w, "Winning tickets: %d\n", d.Winners())
	return nil
}

func joinInts(xs []int) string {
	if len(xs) == 0 {
		return "-"
	}
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = strconv.Itoa(x)
	}
	return strings.Join(parts, ", ")
}
