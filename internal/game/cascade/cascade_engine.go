// Package cascade implements the remove/gravity/refill loop (spec
// component C5), grounded on the teacher's remove-drop-refill idiom in
// internal/game/cascade/cascade_engine.go, generalized from reel-strip
// refill to per-cell weighted refill driven by a per-cascade sub-stream.
package cascade

import (
	"fmt"
	"time"

	"github.com/cascadeslots/engine/internal/audit"
	"github.com/cascadeslots/engine/internal/game/grid"
	"github.com/cascadeslots/engine/internal/game/rng"
	"github.com/cascadeslots/engine/internal/game/symbols"
	"github.com/cascadeslots/engine/internal/game/wins"
)

// MaxCascades is the cascade-loop safety limit (spec.md §4.5).
const MaxCascades = 20

// DropEntry records where a surviving symbol moved during gravity, or
// marks a newly-introduced refill symbol with SrcRow < 0.
type DropEntry struct {
	Col    int `json:"col"`
	SrcRow int `json:"src_row"`
	DstRow int `json:"dst_row"`
}

// Timing holds the five named phase durations plus their total (spec.md
// §3 CascadeStep.timing).
type Timing struct {
	MatchHighlight  time.Duration `json:"match_highlight"`
	SymbolRemoval   time.Duration `json:"symbol_removal"`
	SymbolDrop      time.Duration `json:"symbol_drop"`
	GridSettle      time.Duration `json:"grid_settle"`
	WinPresentation time.Duration `json:"win_presentation"`
	Total           time.Duration `json:"total"`
}

// Enforced minimum total phase durations (spec.md §4.5).
const (
	quickMin  = 150 * time.Millisecond
	normalMin = 200 * time.Millisecond
)

// ComputeTiming derives phase durations from grid dimensions and the
// quick_spin flag. Timing has no effect on payout; it is presentation
// metadata only.
func ComputeTiming(quickSpin bool, matchedCells int) Timing {
	scale := time.Duration(1)
	if matchedCells > 0 {
		scale = time.Duration(matchedCells)
	}
	unit := 15 * time.Millisecond
	if quickSpin {
		unit = 8 * time.Millisecond
	}

	t := Timing{
		MatchHighlight:  unit * scale,
		SymbolRemoval:   unit,
		SymbolDrop:      unit * time.Duration(grid.Rows),
		GridSettle:      unit,
		WinPresentation: unit * 2,
	}
	t.Total = t.MatchHighlight + t.SymbolRemoval + t.SymbolDrop + t.GridSettle + t.WinPresentation

	min := normalMin
	if quickSpin {
		min = quickMin
	}
	if t.Total < min {
		t.WinPresentation += min - t.Total
		t.Total = min
	}
	return t
}

// Step is one settled cascade iteration, matching spec.md §3 CascadeStep
// without its hash fields: Step carries no step or grid hash, and none is
// computed for it anywhere. The only integrity hash is the whole-result
// ValidationHash the engine computes over the finished spin.
type Step struct {
	Index       int                  `json:"index"`
	GridBefore  *grid.Grid           `json:"grid_before"`
	GridAfter   *grid.Grid           `json:"grid_after"`
	Matches     []wins.Cluster       `json:"matches"`
	ClusterWins []wins.ClusterPayout `json:"cluster_wins"`
	StepWin     float64              `json:"step_win"`
	DropPattern []DropEntry          `json:"drop_pattern"`
	Timing      Timing               `json:"timing"`
}

// Apply removes the matched clusters from before, applies gravity per
// column, and refills from a per-cascade sub-stream derived from the spin
// seed. The caller is responsible for stopping the cascade loop once
// FindClusters returns no matches.
func Apply(before *grid.Grid, matches []wins.Cluster, scored []wins.ClusterPayout, spinSeed string, cascadeIndex int, quickSpin, freeSpinsActive bool, sink audit.Sink) (*Step, error) {
	after := before.Clone()

	matchedCells := 0
	for _, c := range matches {
		for _, p := range c.Positions {
			after.Set(p.Col, p.Row, "")
			matchedCells++
		}
	}

	dropPattern := applyGravity(after)

	stream, err := rng.NewStream(spinSeed, fmt.Sprintf("cascade:%d", cascadeIndex), sink)
	if err != nil {
		return nil, fmt.Errorf("cascade %d: %w", cascadeIndex, err)
	}
	dropPattern = append(dropPattern, refill(after, stream, freeSpinsActive)...)

	step := &Step{
		Index:       cascadeIndex,
		GridBefore:  before.Clone(),
		GridAfter:   after,
		Matches:     matches,
		ClusterWins: scored,
		StepWin:     wins.SumPayouts(scored),
		DropPattern: dropPattern,
		Timing:      ComputeTiming(quickSpin, matchedCells),
	}
	return step, nil
}

// applyGravity collects, per column, the remaining non-empty cells in
// top-to-bottom order and rewrites them to the bottom rows, clearing the
// column first. It records a DropEntry per surviving symbol describing
// its old and new row.
func applyGravity(g *grid.Grid) []DropEntry {
	var drops []DropEntry

	for col := 0; col < grid.Cols; col++ {
		var survivorRows []int
		for row := 0; row < grid.Rows; row++ {
			if !g.IsEmpty(col, row) {
				survivorRows = append(survivorRows, row)
			}
		}

		values := make([]string, len(survivorRows))
		for i, row := range survivorRows {
			values[i] = string(g.Get(col, row))
		}

		for row := 0; row < grid.Rows; row++ {
			g.Set(col, row, "")
		}

		offset := grid.Rows - len(survivorRows)
		for i, srcRow := range survivorRows {
			dstRow := offset + i
			g.Set(col, dstRow, symbols.Symbol(values[i]))
			if srcRow != dstRow {
				drops = append(drops, DropEntry{Col: col, SrcRow: srcRow, DstRow: dstRow})
			}
		}
	}
	return drops
}

// refill draws new symbols for every cell gravity left empty, top-down,
// column-major, and records each as a DropEntry with SrcRow -1.
func refill(g *grid.Grid, stream *rng.Stream, freeSpinsActive bool) []DropEntry {
	var drops []DropEntry
	for col := 0; col < grid.Cols; col++ {
		for row := 0; row < grid.Rows; row++ {
			if g.IsEmpty(col, row) {
				drops = append(drops, DropEntry{Col: col, SrcRow: -1, DstRow: row})
			}
		}
	}
	grid.FillEmpty(g, stream, freeSpinsActive)
	return drops
}
