package lottery

import (
	"slices"

	"github.com/lox/lotto/internal/randutil"
)

// Draw shuffles ticket positions 1..total with Fisher-Yates and slices the
// result into tiers: position 0 is the grand prize, the next total/10 are
// second tier and the following total/5 are third tier. Small pools may yield
// empty tiers.
func Draw(src randutil.Source, total int) (DrawResult, error) {
	if total < 1 {
		return DrawResult{}, ErrNoTickets
	}

	pool := make([]int, total)
	for i := range pool {
		pool[i] = i + 1
	}

	for i := len(pool) - 1; i > 0; i-- {
		j := src.IntRange(0, i+1)
		pool[i], pool[j] = pool[j], pool[i]
	}

	second := total / 10
	third := total / 5

	return DrawResult{
		Total:  total,
		Grand:  pool[0],
		Second: slices.Clone(pool[1 : 1+second]),
		Third:  slices.Clone(pool[1+second : 1+second+third]),
	}, nil
}
