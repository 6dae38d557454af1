package symbols

import "sync"

// BaseWeights are the unnormalised integer weights used for the base-game
// weighted draw among the nine regular (non-scatter) symbols.
var BaseWeights = map[Symbol]int{
	Power:   140,
	Space:   140,
	Reality: 150,
	Soul:    150,
	Time:    160,
	Mind:    160,
	Thanos:  45,
	Witch:   45,
	Gauntlet: 10,
}

// FreeSpinFactors are rational multiplicative factors applied to
// BaseWeights to obtain the free-spin weight table: ≤1 for the six low-pay
// gems (rarer relative weight so the higher grade symbols land more often
// and free spins feel more rewarding) and >1 for the high/top symbols.
var FreeSpinFactors = map[Symbol]float64{
	Power:   0.85,
	Space:   0.85,
	Reality: 0.85,
	Soul:    0.85,
	Time:    0.85,
	Mind:    0.85,
	Thanos:  1.35,
	Witch:   1.35,
	Gauntlet: 1.6,
}

// Independent per-cell scatter probabilities (spec.md §4.2/§6.5).
const (
	ScatterChanceBase      = 0.035
	ScatterChanceFreeSpins = 0.025
)

var (
	freeSpinWeightsOnce sync.Once
	freeSpinWeights     map[Symbol]float64
)

// freeSpinTable computes the free-spin weight table once: BaseWeights
// scaled by FreeSpinFactors and re-normalised so the table sums to the
// same total as BaseWeights. The spec's source material describes this
// table both as "multiplicative factors" and as "re-normalised weights" —
// resolved in DESIGN.md/SPEC_FULL.md as the same computed table, cached
// here after the one-time normalisation.
func freeSpinTable() map[Symbol]float64 {
	freeSpinWeightsOnce.Do(func() {
		baseTotal := 0.0
		for _, w := range BaseWeights {
			baseTotal += float64(w)
		}
		scaledTotal := 0.0
		scaled := make(map[Symbol]float64, len(BaseWeights))
		for sym, w := range BaseWeights {
			v := float64(w) * FreeSpinFactors[sym]
			scaled[sym] = v
			scaledTotal += v
		}
		freeSpinWeights = make(map[Symbol]float64, len(scaled))
		if scaledTotal == 0 {
			freeSpinWeights = scaled
			return
		}
		factor := baseTotal / scaledTotal
		for sym, v := range scaled {
			freeSpinWeights[sym] = v * factor
		}
	})
	return freeSpinWeights
}

// WeightTable returns the ordered regular-symbol list and its parallel
// weight slice for the requested mode, ready for Stream.WeightedPick.
func WeightTable(freeSpins bool) ([]Symbol, []float64) {
	syms := RegularSymbols()
	weights := make([]float64, len(syms))
	if freeSpins {
		table := freeSpinTable()
		for i, s := range syms {
			weights[i] = table[s]
		}
		return syms, weights
	}
	for i, s := range syms {
		weights[i] = float64(BaseWeights[s])
	}
	return syms, weights
}

// ScatterChance returns the per-cell scatter probability for the given mode.
func ScatterChance(freeSpins bool) float64 {
	if freeSpins {
		return ScatterChanceFreeSpins
	}
	return ScatterChanceBase
}
