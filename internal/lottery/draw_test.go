package lottery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/lotto/internal/randutil"
)

func TestDrawGoldenSeed(t *testing.T) {
	t.Parallel()

	d, err := Draw(randutil.NewSource(111), 100)
	require.NoError(t, err)

	assert.Equal(t, 21, d.Grand)
	assert.Equal(t, []int{94, 65, 98, 40, 85, 26, 50, 32, 10, 18}, d.Second)
	assert.Equal(t, []int{47, 43, 51, 71, 3, 78, 23, 55, 41, 82, 49, 62, 53, 1, 42, 87, 93, 100, 70, 4}, d.Third)
}

func TestDrawIsReproducible(t *testing.T) {
	t.Parallel()

	for _, seed := range []int32{0, 1, 111, 2024, -7} {
		a, err := Draw(randutil.NewSource(seed), 73)
		require.NoError(t, err)
		b, err := Draw(randutil.NewSource(seed), 73)
		require.NoError(t, err)
		assert.Equal(t, a, b, "seed %d", seed)
	}
}

func TestDrawTierSizes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		total  int
		second int
		third  int
	}{
		{1, 0, 0},
		{4, 0, 0},
		{5, 0, 1},
		{9, 0, 1},
		{10, 1, 2},
		{11, 1, 2},
		{35, 3, 7},
		{50, 5, 10},
		{100, 10, 20},
		{200, 20, 40},
	}

	for _, tt := range tests {
		d, err := Draw(randutil.NewSource(111), tt.total)
		require.NoError(t, err)
		assert.Len(t, d.Second, tt.second, "total %d", tt.total)
		assert.Len(t, d.Third, tt.third, "total %d", tt.total)
		assert.Equal(t, 1+tt.second+tt.third, d.Winners())
	}
}

func TestDrawPositionsAreDistinctAndInRange(t *testing.T) {
	t.Parallel()

	for seed := int32(1); seed <= 50; seed++ {
		for _, total := range []int{1, 2, 10, 31, 57, 120} {
			d, err := Draw(randutil.NewSource(seed), total)
			require.NoError(t, err)

			all := append([]int{d.Grand}, d.Second...)
			all = append(all, d.Third...)
			require.Len(t, all, 1+total/10+total/5)

			seen := make(map[int]bool, len(all))
			for _, pos := range all {
				require.GreaterOrEqual(t, pos, 1)
				require.LessOrEqual(t, pos, total)
				require.False(t, seen[pos], "duplicate position %d (seed %d, total %d)", pos, seed, total)
				seen[pos] = true
			}
		}
	}
}

func TestDrawRejectsEmptyPool(t *testing.T) {
	t.Parallel()

	_, err := Draw(randutil.NewSource(1), 0)
	assert.ErrorIs(t, err, ErrNoTickets)
}
