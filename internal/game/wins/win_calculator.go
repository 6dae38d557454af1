// Package wins implements the flood-fill cluster detector and payout
// scorer (spec component C4), grounded on the DFS match-finder idiom
// found in the corpus's cascade-engine reference implementation, adapted
// from depth-first to an explicit-queue breadth-first walk per the
// specification's "explicit queue" wording.
package wins

import (
	"github.com/cascadeslots/engine/internal/game/grid"
	"github.com/cascadeslots/engine/internal/game/symbols"
)

// Position is a single grid coordinate.
type Position struct {
	Col int `json:"col"`
	Row int `json:"row"`
}

// Cluster is a set of ≥2 connected positions of the same non-scatter
// symbol. Only clusters with |Positions| ≥ MinClusterSize are emitted as
// matches.
type Cluster struct {
	Symbol    symbols.Symbol `json:"symbol"`
	Positions []Position     `json:"positions"`
}

// MinClusterSize is the minimum connected-component size to count as a
// payable gem cluster (spec.md §3 Cluster).
const MinClusterSize = 8

// MinScatterCount is the minimum scatter occurrences (anywhere on the
// grid, not connectivity-based) required to award a scatter payout.
const MinScatterCount = 4

var neighbourDeltas = [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

// FindClusters performs a flood-fill scan of g in fixed column-major
// order using a shared visited set and an explicit BFS queue. Scatter
// cells are skipped — they never cluster. A connected component is
// emitted as a Cluster only when its size is ≥ MinClusterSize; sub-
// threshold components are discarded silently (the grid is left
// unmodified either way — detection is read-only).
func FindClusters(g *grid.Grid) []Cluster {
	var visited [grid.Cols][grid.Rows]bool
	var clusters []Cluster

	for col := 0; col < grid.Cols; col++ {
		for row := 0; row < grid.Rows; row++ {
			if visited[col][row] {
				continue
			}
			sym := g.Get(col, row)
			if sym == "" || symbols.IsScatter(sym) {
				visited[col][row] = true
				continue
			}

			positions := bfsComponent(g, col, row, sym, &visited)
			if len(positions) >= MinClusterSize {
				clusters = append(clusters, Cluster{Symbol: sym, Positions: positions})
			}
		}
	}
	return clusters
}

func bfsComponent(g *grid.Grid, startCol, startRow int, sym symbols.Symbol, visited *[grid.Cols][grid.Rows]bool) []Position {
	queue := []Position{{Col: startCol, Row: startRow}}
	visited[startCol][startRow] = true
	var component []Position

	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		component = append(component, p)

		for _, d := range neighbourDeltas {
			nc, nr := p.Col+d[0], p.Row+d[1]
			if nc < 0 || nc >= grid.Cols || nr < 0 || nr >= grid.Rows {
				continue
			}
			if visited[nc][nr] {
				continue
			}
			if g.Get(nc, nr) != sym {
				continue
			}
			visited[nc][nr] = true
			queue = append(queue, Position{Col: nc, Row: nr})
		}
	}
	return component
}

// ClusterPayout is the scored payout for a single cluster.
type ClusterPayout struct {
	Cluster Cluster `json:"cluster"`
	Payout  float64 `json:"payout"`
}

// Score computes each cluster's payout: payout = (bet/20) ×
// payout_multiplier[tier(size)] × symbol_multiplier, with
// symbol_multiplier defaulting to 1 (spec.md §4.4).
func Score(clusters []Cluster, bet float64) []ClusterPayout {
	betPerUnit := bet / 20.0
	scored := make([]ClusterPayout, 0, len(clusters))
	for _, c := range clusters {
		multiplier := symbols.PayoutMultiplier(c.Symbol, len(c.Positions))
		if multiplier == 0 {
			continue
		}
		scored = append(scored, ClusterPayout{
			Cluster: c,
			Payout:  betPerUnit * multiplier,
		})
	}
	return scored
}

// SumPayouts adds up a slice of scored cluster payouts.
func SumPayouts(scored []ClusterPayout) float64 {
	total := 0.0
	for _, s := range scored {
		total += s.Payout
	}
	return total
}

// ScatterPayout computes the once-per-spin scatter payout for the initial
// grid's scatter count (spec.md §4.4): (bet/20) × payout[scatter_count],
// awarded only when scatterCount ≥ MinScatterCount.
func ScatterPayout(scatterCount int, bet float64) float64 {
	if scatterCount < MinScatterCount {
		return 0
	}
	return (bet / 20.0) * symbols.ScatterPayoutMultiplier(scatterCount)
}

// IsConnected4 reports whether every position in positions forms a single
// 4-connected component — used by the validator (C11) to re-derive the
// same check independently of FindClusters.
func IsConnected4(positions []Position) bool {
	if len(positions) == 0 {
		return true
	}
	set := make(map[Position]bool, len(positions))
	for _, p := range positions {
		set[p] = true
	}
	visited := make(map[Position]bool, len(positions))
	queue := []Position{positions[0]}
	visited[positions[0]] = true
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		for _, d := range neighbourDeltas {
			np := Position{Col: p.Col + d[0], Row: p.Row + d[1]}
			if set[np] && !visited[np] {
				visited[np] = true
				queue = append(queue, np)
			}
		}
	}
	return len(visited) == len(positions)
}
