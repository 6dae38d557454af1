// Package validator implements the cascade validator (spec component
// C11): structural, physics, timing, and payout checks run concurrently
// per spin, plus advisory fraud heuristics. This is new domain-stack
// wiring — the teacher does not validate cascades, but already carries
// golang.org/x/sync in its require graph; errgroup is the idiomatic way
// to fan out N independent checks and collect the first hard error while
// still gathering every check's result.
package validator

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/cascadeslots/engine/domain/spin"
	"github.com/cascadeslots/engine/internal/game/grid"
	"github.com/cascadeslots/engine/internal/game/symbols"
	"github.com/cascadeslots/engine/internal/game/wins"
)

// TimingTolerance is the maximum allowed drift between a step's summed
// sub-phase durations and its reported total (spec.md §4.11).
const TimingTolerance = 50_000_000 // 50ms in nanoseconds, kept as an int to avoid importing time for a single constant

// PayoutTolerance bounds the allowed drift between step_win and the sum
// of its cluster payouts.
const PayoutTolerance = 0.01

// MaxStepMultiplier is the highest single-step multiplier considered
// plausible before a payout check fails.
const MaxStepMultiplier = 10.0

// UniformitySpreadRatio bounds how flat a grid's observed symbol counts
// may be relative to the spread symbols.BaseWeights predicts before the
// grid is flagged as suspiciously uniform (spec.md §4.11's seventh
// heuristic). Genuine weighted draws spread counts across the nine
// regular symbols roughly in proportion to their weights; a grid whose
// counts are markedly flatter than that is a sign it was not produced by
// the weighted draw at all.
const UniformitySpreadRatio = 0.35

// CheckResult is one named check's outcome.
type CheckResult struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}

// FraudReport is an advisory score, never itself a rejection.
type FraudReport struct {
	Score   int      `json:"score"`
	Reasons []string `json:"reasons"`
}

// Report aggregates every check plus the fraud heuristics for one spin.
type Report struct {
	Checks []CheckResult `json:"checks"`
	Fraud  FraudReport   `json:"fraud"`
}

// Passed reports whether every hard check in the report succeeded. Fraud
// heuristics never affect this — they are advisory only.
func (r Report) Passed() bool {
	for _, c := range r.Checks {
		if !c.Passed {
			return false
		}
	}
	return true
}

// Validate runs structural, physics, timing, and payout checks for s
// concurrently, plus the fraud heuristics, and returns the aggregated
// report. sessionWinRate is the player's running session win rate
// (total_won / total_wagered), used only by the fraud heuristics.
func Validate(ctx context.Context, s *spin.Spin, sessionWinRate float64) (Report, error) {
	names := []string{"structural", "physics", "timing", "payout"}
	results := make([]CheckResult, len(names))

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error { results[0] = checkStructural(s); return nil })
	g.Go(func() error { results[1] = checkPhysics(s); return nil })
	g.Go(func() error { results[2] = checkTiming(s); return nil })
	g.Go(func() error { results[3] = checkPayout(s); return nil })

	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	return Report{
		Checks: results,
		Fraud:  fraudHeuristics(s, sessionWinRate),
	}, nil
}

func checkStructural(s *spin.Spin) CheckResult {
	name := "structural"
	if s.InitialGrid.Grid == nil || s.FinalGrid.Grid == nil {
		return CheckResult{Name: name, Detail: "missing grid"}
	}
	if err := s.InitialGrid.Grid.Validate(); err != nil {
		return CheckResult{Name: name, Detail: "initial grid: " + err.Error()}
	}
	if err := s.FinalGrid.Grid.Validate(); err != nil {
		return CheckResult{Name: name, Detail: "final grid: " + err.Error()}
	}
	for _, step := range s.CascadeSteps.Steps {
		if step.GridBefore == nil || step.GridAfter == nil {
			return CheckResult{Name: name, Detail: fmt.Sprintf("step %d: missing grid", step.Index)}
		}
		if err := step.GridAfter.Validate(); err != nil {
			return CheckResult{Name: name, Detail: fmt.Sprintf("step %d: %s", step.Index, err)}
		}
	}
	return CheckResult{Name: name, Passed: true}
}

func checkPhysics(s *spin.Spin) CheckResult {
	name := "physics"
	steps := s.CascadeSteps.Steps
	prev := s.InitialGrid.Grid
	for _, step := range steps {
		if prev != nil && !step.GridBefore.Equal(prev) {
			return CheckResult{Name: name, Detail: fmt.Sprintf("step %d: grid_before does not match previous grid_after", step.Index)}
		}
		for _, cluster := range step.Matches {
			for _, p := range cluster.Positions {
				if step.GridBefore.Get(p.Col, p.Row) != cluster.Symbol {
					return CheckResult{Name: name, Detail: fmt.Sprintf("step %d: position (%d,%d) does not carry cluster symbol", step.Index, p.Col, p.Row)}
				}
			}
			if !wins.IsConnected4(cluster.Positions) {
				return CheckResult{Name: name, Detail: fmt.Sprintf("step %d: cluster is not 4-connected", step.Index)}
			}
		}
		prev = step.GridAfter
	}
	return CheckResult{Name: name, Passed: true}
}

func checkTiming(s *spin.Spin) CheckResult {
	name := "timing"
	for _, step := range s.CascadeSteps.Steps {
		t := step.Timing
		if t.MatchHighlight < 0 || t.SymbolRemoval < 0 || t.SymbolDrop < 0 || t.GridSettle < 0 || t.WinPresentation < 0 {
			return CheckResult{Name: name, Detail: fmt.Sprintf("step %d: negative sub-phase duration", step.Index)}
		}
		sum := t.MatchHighlight + t.SymbolRemoval + t.SymbolDrop + t.GridSettle + t.WinPresentation
		drift := sum - t.Total
		if drift < 0 {
			drift = -drift
		}
		if int64(drift) > TimingTolerance {
			return CheckResult{Name: name, Detail: fmt.Sprintf("step %d: sub-phase sum drifts %dns from total", step.Index, drift)}
		}
	}
	return CheckResult{Name: name, Passed: true}
}

func checkPayout(s *spin.Spin) CheckResult {
	name := "payout"
	for _, step := range s.CascadeSteps.Steps {
		if step.StepWin < 0 {
			return CheckResult{Name: name, Detail: fmt.Sprintf("step %d: negative step_win", step.Index)}
		}
		rawSum := wins.SumPayouts(step.ClusterWins)
		if math.Abs(step.StepWin-rawSum) > PayoutTolerance {
			stepMultiplier := 1.0
			if rawSum > 0 {
				stepMultiplier = step.StepWin / rawSum
			}
			if stepMultiplier > MaxStepMultiplier {
				return CheckResult{Name: name, Detail: fmt.Sprintf("step %d: step_multiplier %.2f exceeds %.0f", step.Index, stepMultiplier, MaxStepMultiplier)}
			}
			if math.Abs(step.StepWin-rawSum) > PayoutTolerance*stepMultiplier+PayoutTolerance {
				return CheckResult{Name: name, Detail: fmt.Sprintf("step %d: step_win %.2f does not reconcile with cluster payouts %.2f", step.Index, step.StepWin, rawSum)}
			}
		}
	}
	return CheckResult{Name: name, Passed: true}
}

// fraudHeuristics never fails the spin — it only accumulates an
// advisory score and the reasons behind it (spec.md §4.11).
func fraudHeuristics(s *spin.Spin, sessionWinRate float64) FraudReport {
	report := FraudReport{}

	for _, step := range s.CascadeSteps.Steps {
		for _, cluster := range step.Matches {
			if isGeometricRectangle(cluster.Positions) {
				report.Score++
				report.Reasons = append(report.Reasons, fmt.Sprintf("step %d: geometric cluster for %s", step.Index, cluster.Symbol))
			}
		}
		if step.StepWin > 1000*s.Bet {
			report.Score += 3
			report.Reasons = append(report.Reasons, fmt.Sprintf("step %d: impossible win %.2f on bet %.2f", step.Index, step.StepWin, s.Bet))
		}
	}

	if len(s.CascadeSteps.Steps) > 10 {
		report.Score++
		report.Reasons = append(report.Reasons, fmt.Sprintf("%d cascades in one spin exceeds 10", len(s.CascadeSteps.Steps)))
	}

	if hasRun4(s.FinalGrid.Grid) {
		report.Score++
		report.Reasons = append(report.Reasons, "uninterrupted run of 4+ identical symbols")
	}

	if hasRepeatedTiles(s.FinalGrid.Grid, 3) {
		report.Score++
		report.Reasons = append(report.Reasons, "3+ repeated 2x2 tiles")
	}

	if sessionWinRate > 0.70 {
		report.Score += 2
		report.Reasons = append(report.Reasons, fmt.Sprintf("session win rate %.2f exceeds 70%%", sessionWinRate))
	}

	if hasUniformDistribution(s.FinalGrid.Grid, s.GameMode == spin.ModeFreeSpins) {
		report.Score++
		report.Reasons = append(report.Reasons, "final grid symbol distribution is too uniform for the weighted draw")
	}

	return report
}

// hasUniformDistribution compares the observed per-symbol counts on g
// against the spread symbols.WeightTable predicts for the same number of
// draws. It flags grids whose counts are far flatter than the weight
// table's own spread, i.e. a grid that looks like it was assembled by
// picking symbols roughly equally rather than drawn from the weighted
// table.
func hasUniformDistribution(g *grid.Grid, freeSpins bool) bool {
	if g == nil {
		return false
	}

	counts := make(map[symbols.Symbol]int)
	total := 0
	for col := 0; col < grid.Cols; col++ {
		for row := 0; row < grid.Rows; row++ {
			sym := g.Get(col, row)
			if sym == "" || symbols.IsScatter(sym) {
				continue
			}
			counts[sym]++
			total++
		}
	}
	if total == 0 {
		return false
	}

	syms, weights := symbols.WeightTable(freeSpins)
	totalWeight := 0.0
	for _, w := range weights {
		totalWeight += w
	}
	if totalWeight == 0 {
		return false
	}

	observed := make([]float64, len(syms))
	expected := make([]float64, len(syms))
	for i, s := range syms {
		observed[i] = float64(counts[s])
		expected[i] = weights[i] / totalWeight * float64(total)
	}

	expectedSpread := stdDev(expected)
	if expectedSpread == 0 {
		return false
	}

	return stdDev(observed)/expectedSpread < UniformitySpreadRatio
}

func stdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	variance := 0.0
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(values))

	return math.Sqrt(variance)
}

func isGeometricRectangle(positions []wins.Position) bool {
	if len(positions) < 8 {
		return false
	}
	minCol, maxCol := positions[0].Col, positions[0].Col
	minRow, maxRow := positions[0].Row, positions[0].Row
	for _, p := range positions {
		if p.Col < minCol {
			minCol = p.Col
		}
		if p.Col > maxCol {
			maxCol = p.Col
		}
		if p.Row < minRow {
			minRow = p.Row
		}
		if p.Row > maxRow {
			maxRow = p.Row
		}
	}
	area := (maxCol - minCol + 1) * (maxRow - minRow + 1)
	return area == len(positions)
}

func hasRun4(g *grid.Grid) bool {
	if g == nil {
		return false
	}
	for col := 0; col < grid.Cols; col++ {
		run := 1
		for row := 1; row < grid.Rows; row++ {
			if g.Get(col, row) != "" && g.Get(col, row) == g.Get(col, row-1) {
				run++
				if run >= 4 {
					return true
				}
			} else {
				run = 1
			}
		}
	}
	for row := 0; row < grid.Rows; row++ {
		run := 1
		for col := 1; col < grid.Cols; col++ {
			if g.Get(col, row) != "" && g.Get(col, row) == g.Get(col-1, row) {
				run++
				if run >= 4 {
					return true
				}
			} else {
				run = 1
			}
		}
	}
	return false
}

func hasRepeatedTiles(g *grid.Grid, threshold int) bool {
	if g == nil {
		return false
	}
	counts := make(map[[4]string]int)
	for col := 0; col < grid.Cols-1; col++ {
		for row := 0; row < grid.Rows-1; row++ {
			tile := [4]string{
				string(g.Get(col, row)), string(g.Get(col+1, row)),
				string(g.Get(col, row+1)), string(g.Get(col+1, row+1)),
			}
			if tile[0] == "" {
				continue
			}
			if tile[0] == tile[1] && tile[1] == tile[2] && tile[2] == tile[3] {
				counts[tile]++
			}
		}
	}
	for _, c := range counts {
		if c >= threshold {
			return true
		}
	}
	return false
}
