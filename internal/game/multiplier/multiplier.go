// Package multiplier implements the weighted random multiplier draw and
// character-selection rules of spec component C6, replacing the
// teacher's flat per-cascade progression table with a weighted random
// draw over a 1000-entry frequency table.
package multiplier

import (
	"github.com/cascadeslots/engine/internal/game/grid"
	"github.com/cascadeslots/engine/internal/game/rng"
)

// Character is the animation-only character associated with a random
// multiplier; it never affects payout.
type Character string

const (
	CharacterThanos Character = "thanos"
	CharacterWitch  Character = "witch"
)

// TriggerChance is the probability a post-cascade base-game multiplier
// roll fires, given the minimum win threshold is met.
const TriggerChance = 0.40

// MinWinForTrigger is the minimum accumulated total_win required before a
// base-game roll is attempted.
const MinWinForTrigger = 0.01

// FreeSpinCascadeChance is the per-cascade probability a free-spin
// cascade multiplier fires (only for cascade index ≥ 2).
const FreeSpinCascadeChance = 0.35

// CharacterThanosChance is the probability of sampling Thanos over Witch.
const CharacterThanosChance = 0.8

// valueFrequencies is the 1000-entry weighted multiplier-value table:
// frequencies {2×487, 3×200, 4×90, 5×70, 6×70, 8×40, 10×20, 20×10,
// 100×10, 500×3}. The expected value of a single draw is fixed by this
// table and must be preserved exactly — changing any frequency changes
// the game's RTP.
var valueFrequencies = []struct {
	Value int
	Count int
}{
	{2, 487},
	{3, 200},
	{4, 90},
	{5, 70},
	{6, 70},
	{8, 40},
	{10, 20},
	{20, 10},
	{100, 10},
	{500, 3},
}

// Values and Weights return the value table and its parallel weight
// slice (weight == frequency count, summing to 1000), ready for
// Stream.WeightedPick.
func Values() ([]int, []float64) {
	values := make([]int, len(valueFrequencies))
	weights := make([]float64, len(valueFrequencies))
	for i, f := range valueFrequencies {
		values[i] = f.Value
		weights[i] = float64(f.Count)
	}
	return values, weights
}

// Position is the grid cell a random multiplier's animation anchors to —
// presentation metadata, not a payout input.
type Position struct {
	Col int `json:"col"`
	Row int `json:"row"`
}

// RandomMultiplier is a single drawn multiplier event (spec.md §3
// CascadeStep.random_multiplier).
type RandomMultiplier struct {
	Value     int       `json:"value"`
	Position  Position  `json:"position"`
	Character Character `json:"character"`
}

func drawValue(stream *rng.Stream) int {
	values, weights := Values()
	return values[stream.WeightedPick(weights)]
}

func drawCharacter(stream *rng.Stream) Character {
	if stream.Next() < CharacterThanosChance {
		return CharacterThanos
	}
	return CharacterWitch
}

func drawPosition(stream *rng.Stream) Position {
	return Position{Col: stream.NextInt(grid.Cols), Row: stream.NextInt(grid.Rows)}
}

// BaseRoll attempts the post-cascade base-game random multiplier. It only
// rolls when totalWin ≥ MinWinForTrigger, and fires with probability
// TriggerChance. Returns nil if the roll does not fire.
func BaseRoll(stream *rng.Stream, totalWin float64) *RandomMultiplier {
	if totalWin < MinWinForTrigger {
		return nil
	}
	if stream.Next() >= TriggerChance {
		return nil
	}
	return &RandomMultiplier{
		Value:     drawValue(stream),
		Position:  drawPosition(stream),
		Character: drawCharacter(stream),
	}
}

// CascadeRoll attempts a free-spin cascade multiplier. It only fires for
// cascadeIndex ≥ 2, with probability FreeSpinCascadeChance. The resulting
// value is added (not multiplied) into the session's accumulated
// multiplier by the caller.
func CascadeRoll(stream *rng.Stream, cascadeIndex int) *RandomMultiplier {
	if cascadeIndex < 2 {
		return nil
	}
	if stream.Next() >= FreeSpinCascadeChance {
		return nil
	}
	return &RandomMultiplier{
		Value:     drawValue(stream),
		Position:  drawPosition(stream),
		Character: drawCharacter(stream),
	}
}
