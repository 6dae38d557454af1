package wins

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cascadeslots/engine/internal/game/grid"
	"github.com/cascadeslots/engine/internal/game/symbols"
)

// ============================================================================
// FindClusters — flood fill
// ============================================================================

func TestFindClusters(t *testing.T) {
	t.Run("skips scatter and below-threshold components", func(t *testing.T) {
		g := grid.Empty()
		// A 7-cell connected run of Power (below MinClusterSize=8).
		for _, p := range []Position{{0, 0}, {0, 1}, {0, 2}, {0, 3}, {0, 4}, {1, 0}, {1, 1}} {
			g.Set(p.Col, p.Row, symbols.Power)
		}
		g.Set(5, 4, symbols.Scatter)

		clusters := FindClusters(g)

		assert.Empty(t, clusters)
	})

	t.Run("emits a connected component at exactly MinClusterSize", func(t *testing.T) {
		g := grid.Empty()
		positions := []Position{{0, 0}, {0, 1}, {0, 2}, {0, 3}, {0, 4}, {1, 0}, {1, 1}, {1, 2}}
		for _, p := range positions {
			g.Set(p.Col, p.Row, symbols.Soul)
		}

		clusters := FindClusters(g)

		assert.Len(t, clusters, 1)
		assert.Equal(t, symbols.Soul, clusters[0].Symbol)
		assert.Len(t, clusters[0].Positions, MinClusterSize)
	})

	t.Run("does not connect diagonally-adjacent cells", func(t *testing.T) {
		g := grid.Empty()
		g.Set(0, 0, symbols.Mind)
		g.Set(1, 1, symbols.Mind)

		clusters := FindClusters(g)

		assert.Empty(t, clusters)
	})
}

// ============================================================================
// Score — payout tier boundaries
// ============================================================================

func clusterOfSize(sym symbols.Symbol, size int) Cluster {
	positions := make([]Position, size)
	col := 0
	row := 0
	for i := 0; i < size; i++ {
		positions[i] = Position{Col: col, Row: row}
		row++
		if row >= grid.Rows {
			row = 0
			col++
		}
	}
	return Cluster{Symbol: sym, Positions: positions}
}

func TestScore_TierBoundaries(t *testing.T) {
	const bet = 20.0 // betPerUnit = 1.0, so payout == multiplier directly.

	cases := []struct {
		name     string
		size     int
		wantPaid bool
		wantMult float64
	}{
		{"7 below first tier pays nothing", 7, false, 0},
		{"8 lands exactly on the first tier", 8, true, 0.5},
		{"9 still scores at the first tier", 9, true, 0.5},
		{"9 below second tier", 9, true, 0.5},
		{"10 lands exactly on the second tier", 10, true, 1.0},
		{"11 still scores at the second tier", 11, true, 1.0},
		{"11 below third tier", 11, true, 1.0},
		{"12 lands exactly on the third tier", 12, true, 2.5},
		{"13 still scores at the third tier", 13, true, 2.5},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			scored := Score([]Cluster{clusterOfSize(symbols.Power, tc.size)}, bet)

			if !tc.wantPaid {
				assert.Empty(t, scored)
				return
			}
			assert.Len(t, scored, 1)
			assert.InDelta(t, tc.wantMult, scored[0].Payout, 0.0001)
		})
	}

	t.Run("higher-grade symbols use their own paytable row at the same tier", func(t *testing.T) {
		scored := Score([]Cluster{clusterOfSize(symbols.Gauntlet, 12)}, bet)

		require := assert.New(t)
		require.Len(scored, 1)
		require.InDelta(40.0, scored[0].Payout, 0.0001)
	})
}

func TestSumPayouts(t *testing.T) {
	scored := []ClusterPayout{{Payout: 1.5}, {Payout: 2.5}, {Payout: 0}}
	assert.Equal(t, 4.0, SumPayouts(scored))
}

// ============================================================================
// ScatterPayout — exact clamp, not greatest-tier-below
// ============================================================================

func TestScatterPayout(t *testing.T) {
	const bet = 20.0

	cases := []struct {
		count int
		want  float64
	}{
		{3, 0},
		{4, 2.0},
		{5, 5.0},
		{6, 20.0},
		{9, 20.0}, // clamps to the top tier rather than extrapolating
	}

	for _, tc := range cases {
		got := ScatterPayout(tc.count, bet)
		assert.InDelta(t, tc.want, got, 0.0001, "count=%d", tc.count)
	}
}

// ============================================================================
// IsConnected4 — used independently by the validator
// ============================================================================

func TestIsConnected4(t *testing.T) {
	t.Run("empty set is trivially connected", func(t *testing.T) {
		assert.True(t, IsConnected4(nil))
	})

	t.Run("a straight run is connected", func(t *testing.T) {
		assert.True(t, IsConnected4([]Position{{0, 0}, {0, 1}, {0, 2}}))
	})

	t.Run("two disjoint groups are not connected", func(t *testing.T) {
		assert.False(t, IsConnected4([]Position{{0, 0}, {0, 1}, {3, 3}, {3, 4}}))
	})
}
