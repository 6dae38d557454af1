// Package grid builds and manipulates the 6×5 cascade grid (spec
// component C3), replacing the teacher's reel-strip windowing with
// independent per-cell sampling.
package grid

import (
	"fmt"

	"github.com/cascadeslots/engine/internal/game/rng"
	"github.com/cascadeslots/engine/internal/game/symbols"
)

const (
	Cols = 6
	Rows = 5
)

// Grid is a 6-column × 5-row matrix of symbols, column-major indexed:
// Cells[col][row]. row == Rows-1 is the bottom under gravity. An empty
// cell (mid-cascade, before refill) is represented by the zero Symbol("").
type Grid struct {
	Cells [Cols][Rows]symbols.Symbol
}

// Empty returns a grid with every cell cleared.
func Empty() *Grid {
	return &Grid{}
}

// Get returns the symbol at (col, row).
func (g *Grid) Get(col, row int) symbols.Symbol {
	return g.Cells[col][row]
}

// Set writes the symbol at (col, row).
func (g *Grid) Set(col, row int, s symbols.Symbol) {
	g.Cells[col][row] = s
}

// IsEmpty reports whether (col, row) holds no symbol.
func (g *Grid) IsEmpty(col, row int) bool {
	return g.Cells[col][row] == ""
}

// Clone returns a deep (value) copy.
func (g *Grid) Clone() *Grid {
	clone := *g
	return &clone
}

// Equal reports whether two grids hold identical symbols in every cell.
func (g *Grid) Equal(other *Grid) bool {
	if other == nil {
		return false
	}
	return g.Cells == other.Cells
}

// CountScatters returns the number of scatter symbols on the grid, summed
// column by column — matching spec.md §8's "count_scatters equals the sum
// of per-column scatter occurrences" property directly, rather than a
// single linear scan, so the two descriptions stay provably identical.
func (g *Grid) CountScatters() int {
	total := 0
	for col := 0; col < Cols; col++ {
		for row := 0; row < Rows; row++ {
			if g.Cells[col][row] == symbols.Scatter {
				total++
			}
		}
	}
	return total
}

// Validate checks the grid's structural invariants: every cell holds a
// member of the closed symbol set (no stray empties in a settled grid),
// and gravity's "no floating symbol" invariant (a non-empty cell never
// sits directly above an empty one in the same column).
func (g *Grid) Validate() error {
	for col := 0; col < Cols; col++ {
		seenEmpty := false
		for row := Rows - 1; row >= 0; row-- { // bottom-up: row Rows-1 = bottom, row 0 = top
			sym := g.Cells[col][row]
			if sym == "" {
				seenEmpty = true
				continue
			}
			if !symbols.IsValid(sym) {
				return fmt.Errorf("grid: invalid symbol %q at col=%d row=%d", sym, col, row)
			}
			if seenEmpty {
				return fmt.Errorf("grid: floating symbol %q at col=%d row=%d sits above an empty cell", sym, col, row)
			}
		}
		if seenEmpty {
			return fmt.Errorf("grid: empty cell in column %d", col)
		}
	}
	return nil
}

// Generate produces a settled 6×5 grid by independent per-cell sampling in
// fixed column-major order: for each cell, a scatter check precedes a
// weighted draw among the nine regular symbols (spec.md §4.3). Column-major
// order is what makes two streams built from the same seed reproduce a
// byte-identical grid.
func Generate(stream *rng.Stream, freeSpins bool) *Grid {
	g := Empty()
	regularSyms, weights := symbols.WeightTable(freeSpins)
	scatterChance := symbols.ScatterChance(freeSpins)

	for col := 0; col < Cols; col++ {
		for row := 0; row < Rows; row++ {
			if stream.Next() < scatterChance {
				g.Set(col, row, symbols.Scatter)
				continue
			}
			idx := stream.WeightedPick(weights)
			g.Set(col, row, regularSyms[idx])
		}
	}
	return g
}

// FillEmpty draws replacement symbols for every empty cell in column-major
// order, using the supplied stream (the cascade processor passes a
// per-cascade sub-stream so refills stay reproducible from the spin seed).
func FillEmpty(g *Grid, stream *rng.Stream, freeSpins bool) {
	regularSyms, weights := symbols.WeightTable(freeSpins)
	scatterChance := symbols.ScatterChance(freeSpins)

	for col := 0; col < Cols; col++ {
		for row := 0; row < Rows; row++ {
			if !g.IsEmpty(col, row) {
				continue
			}
			if stream.Next() < scatterChance {
				g.Set(col, row, symbols.Scatter)
				continue
			}
			idx := stream.WeightedPick(weights)
			g.Set(col, row, regularSyms[idx])
		}
	}
}
