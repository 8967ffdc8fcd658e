package randutil

import "math"

const (
	mbig  = math.MaxInt32
	mseed = 161803398
)

// Subtractive is Knuth's subtractive lagged-Fibonacci generator (TAOCP vol. 2,
// 3.6) with a 55-element state. Samples are scaled to [0, 1) by 1/MaxInt32
// and ranges are taken by truncation, which fixes the sequence for a seed so
// recorded draws can be replayed exactly.
type Subtractive struct {
	state [56]int32
	next  int
	nextp int
}

// NewSubtractive seeds a generator.
func NewSubtractive(seed int32) *Subtractive {
	g := &Subtractive{}

	subtraction := seed
	if seed == math.MinInt32 {
		subtraction = math.MaxInt32
	} else if seed < 0 {
		subtraction = -seed
	}

	mj := int32(mseed) - subtraction
	g.state[55] = mj
	mk := int32(1)
	ii := 0
	for i := 1; i < 55; i++ {
		ii += 21
		if ii >= 55 {
			ii -= 55
		}
		g.state[ii] = mk
		mk = mj - mk
		if mk < 0 {
			mk += mbig
		}
		mj = g.state[ii]
	}

	for k := 1; k < 5; k++ {
		for i := 1; i < 56; i++ {
			n := i + 30
			if n >= 55 {
				n -= 55
			}
			g.state[i] -= g.state[1+n]
			if g.state[i] < 0 {
				g.state[i] += mbig
			}
		}
	}

	g.next = 0
	g.nextp = 21
	return g
}

func (g *Subtractive) sample() int32 {
	next := g.next + 1
	if next >= 56 {
		next = 1
	}
	nextp := g.nextp + 1
	if nextp >= 56 {
		nextp = 1
	}

	v := g.state[next] - g.state[nextp]
	if v == mbig {
		v--
	}
	if v < 0 {
		v += mbig
	}

	g.state[next] = v
	g.next = next
	g.nextp = nextp
	return v
}

// Float64 returns a value in [0, 1).
func (g *Subtractive) Float64() float64 {
	return float64(g.sample()) * (1.0 / mbig)
}

// IntRange implements Source. Ranges wider than MaxInt32 are not supported.
func (g *Subtractive) IntRange(min, max int) int {
	if max <= min {
		panic("randutil: empty range")
	}
	span := max - min
	if span > mbig {
		panic("randutil: range too wide")
	}
	return int(g.Float64()*float64(span)) + min
}
