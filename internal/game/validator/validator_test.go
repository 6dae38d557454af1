package validator

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cascadeslots/engine/domain/spin"
	"github.com/cascadeslots/engine/internal/game/cascade"
	"github.com/cascadeslots/engine/internal/game/grid"
	"github.com/cascadeslots/engine/internal/game/symbols"
	"github.com/cascadeslots/engine/internal/game/wins"
)

func fullGrid(sym symbols.Symbol) *grid.Grid {
	g := grid.Empty()
	for col := 0; col < grid.Cols; col++ {
		for row := 0; row < grid.Rows; row++ {
			g.Set(col, row, sym)
		}
	}
	return g
}

func baseSpin(g *grid.Grid) *spin.Spin {
	return &spin.Spin{
		Bet:         20.0,
		GameMode:    spin.ModeBase,
		InitialGrid: spin.JSONGrid{Grid: g},
		FinalGrid:   spin.JSONGrid{Grid: g},
	}
}

// ============================================================================
// Validate / hard checks
// ============================================================================

func TestValidate_HardChecks(t *testing.T) {
	t.Run("passes a structurally sound spin with no cascades", func(t *testing.T) {
		g := fullGrid(symbols.Power)
		s := baseSpin(g)

		report, err := Validate(context.Background(), s, 0)

		require.NoError(t, err)
		assert.True(t, report.Passed())
	})

	t.Run("fails structural check on a nil grid", func(t *testing.T) {
		s := baseSpin(nil)

		report, err := Validate(context.Background(), s, 0)

		require.NoError(t, err)
		assert.False(t, report.Passed())
	})

	t.Run("fails physics check when a step's grid_before does not chain from the previous grid_after", func(t *testing.T) {
		g := fullGrid(symbols.Power)
		other := fullGrid(symbols.Soul)
		s := baseSpin(g)
		s.CascadeSteps.Steps = []*cascade.Step{{
			Index:      0,
			GridBefore: other,
			GridAfter:  other,
		}}

		report, err := Validate(context.Background(), s, 0)

		require.NoError(t, err)
		assert.False(t, report.Passed())
	})

	t.Run("fails timing check when sub-phase durations drift from the reported total", func(t *testing.T) {
		g := fullGrid(symbols.Power)
		s := baseSpin(g)
		s.CascadeSteps.Steps = []*cascade.Step{{
			Index:      0,
			GridBefore: g,
			GridAfter:  g,
			Timing: cascade.Timing{
				MatchHighlight: 10 * time.Millisecond,
				Total:          1 * time.Second, // wildly inconsistent with the sub-phases
			},
		}}

		report, err := Validate(context.Background(), s, 0)

		require.NoError(t, err)
		assert.False(t, report.Passed())
	})

	t.Run("fails payout check when step_win wildly exceeds the scored cluster payouts", func(t *testing.T) {
		g := fullGrid(symbols.Power)
		s := baseSpin(g)
		s.CascadeSteps.Steps = []*cascade.Step{{
			Index:       0,
			GridBefore:  g,
			GridAfter:   g,
			ClusterWins: []wins.ClusterPayout{{Payout: 1.0}},
			StepWin:     1000.0, // far beyond MaxStepMultiplier x 1.0
		}}

		report, err := Validate(context.Background(), s, 0)

		require.NoError(t, err)
		assert.False(t, report.Passed())
	})
}

// ============================================================================
// fraudHeuristics — one subtest per heuristic (spec.md §4.11)
// ============================================================================

func TestFraudHeuristics_GeometricRectangle(t *testing.T) {
	s := baseSpin(fullGrid(symbols.Power))
	rect := wins.Cluster{
		Symbol: symbols.Power,
		Positions: []wins.Position{
			{Col: 0, Row: 0}, {Col: 0, Row: 1}, {Col: 0, Row: 2}, {Col: 0, Row: 3},
			{Col: 1, Row: 0}, {Col: 1, Row: 1}, {Col: 1, Row: 2}, {Col: 1, Row: 3},
		},
	}
	s.CascadeSteps.Steps = []*cascade.Step{{Index: 0, Matches: []wins.Cluster{rect}}}

	report := fraudHeuristics(s, 0)

	assert.Greater(t, report.Score, 0)
	assert.Contains(t, report.Reasons[0], "geometric cluster")
}

func TestFraudHeuristics_ImpossibleWin(t *testing.T) {
	s := baseSpin(fullGrid(symbols.Power))
	s.Bet = 1.0
	s.CascadeSteps.Steps = []*cascade.Step{{Index: 0, StepWin: 5000.0}} // > 1000x bet

	report := fraudHeuristics(s, 0)

	assert.GreaterOrEqual(t, report.Score, 3)
}

func TestFraudHeuristics_TooManyCascades(t *testing.T) {
	s := baseSpin(fullGrid(symbols.Power))
	steps := make([]*cascade.Step, 11)
	for i := range steps {
		steps[i] = &cascade.Step{Index: i}
	}
	s.CascadeSteps.Steps = steps

	report := fraudHeuristics(s, 0)

	assertReasonContains(t, report, "exceeds 10")
	assert.Greater(t, report.Score, 0)
}

func TestFraudHeuristics_Run4(t *testing.T) {
	g := grid.Empty()
	for row := 0; row < 4; row++ {
		g.Set(0, row, symbols.Time)
	}
	g.Set(0, 4, symbols.Soul)
	s := baseSpin(g)
	s.FinalGrid = spin.JSONGrid{Grid: g}

	report := fraudHeuristics(s, 0)

	assertReasonContains(t, report, "run of 4+")
}

func TestFraudHeuristics_RepeatedTiles(t *testing.T) {
	// Three identical 2x2 tiles of Witch across three column pairs.
	g := grid.Empty()
	for _, col := range []int{0, 2, 4} {
		g.Set(col, 0, symbols.Witch)
		g.Set(col+1, 0, symbols.Witch)
		g.Set(col, 1, symbols.Witch)
		g.Set(col+1, 1, symbols.Witch)
	}
	s := baseSpin(g)
	s.FinalGrid = spin.JSONGrid{Grid: g}

	report := fraudHeuristics(s, 0)

	assertReasonContains(t, report, "repeated 2x2")
}

func TestFraudHeuristics_SessionWinRate(t *testing.T) {
	s := baseSpin(fullGrid(symbols.Power))

	report := fraudHeuristics(s, 0.85)

	assertReasonContains(t, report, "session win rate")
	assert.GreaterOrEqual(t, report.Score, 2)
}

func TestFraudHeuristics_UniformDistribution(t *testing.T) {
	t.Run("a grid with one of each regular symbol spread flat is flagged", func(t *testing.T) {
		g := grid.Empty()
		regular := symbols.RegularSymbols()
		i := 0
		for col := 0; col < grid.Cols; col++ {
			for row := 0; row < grid.Rows; row++ {
				g.Set(col, row, regular[i%len(regular)])
				i++
			}
		}
		s := baseSpin(g)
		s.FinalGrid = spin.JSONGrid{Grid: g}

		report := fraudHeuristics(s, 0)

		assertReasonContains(t, report, "too uniform")
	})

	t.Run("a grid weighted toward the low-pay symbols is not flagged", func(t *testing.T) {
		g := grid.Empty()
		// Heavily skewed toward Power, matching the base weight table's own
		// skew rather than a flat distribution.
		for col := 0; col < grid.Cols; col++ {
			for row := 0; row < grid.Rows; row++ {
				if col == grid.Cols-1 {
					g.Set(col, row, symbols.Gauntlet)
				} else {
					g.Set(col, row, symbols.Power)
				}
			}
		}
		s := baseSpin(g)
		s.FinalGrid = spin.JSONGrid{Grid: g}

		report := fraudHeuristics(s, 0)

		for _, r := range report.Reasons {
			assert.NotContains(t, r, "too uniform")
		}
	})

	t.Run("a nil grid never triggers the heuristic", func(t *testing.T) {
		assert.False(t, hasUniformDistribution(nil, false))
	})
}

func assertReasonContains(t *testing.T, report FraudReport, substr string) {
	t.Helper()
	for _, r := range report.Reasons {
		if strings.Contains(r, substr) {
			return
		}
	}
	t.Fatalf("expected a reason containing %q, got %v", substr, report.Reasons)
}

// ============================================================================
// stdDev
// ============================================================================

func TestStdDev(t *testing.T) {
	assert.Equal(t, 0.0, stdDev(nil))
	assert.Equal(t, 0.0, stdDev([]float64{5, 5, 5}))
	assert.InDelta(t, 0.8165, stdDev([]float64{1, 2, 3}), 0.0001)
}
