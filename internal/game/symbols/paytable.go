package symbols

// ClusterTiers are the payout-table breakpoints for a regular (non-scatter)
// cluster. tier(c) = max{k ∈ ClusterTiers : k ≤ c}.
var ClusterTiers = []int{8, 10, 12}

// ScatterTiers are the exact scatter-count breakpoints for the scatter
// payout. Unlike ClusterTiers, scatter payout is an exact-or-clamped
// lookup, not a "greatest tier below" lookup: counts above the highest key
// clamp to that key's payout rather than extrapolating.
var ScatterTiers = []int{4, 5, 6}

// Paytable maps each regular symbol to its payout multiplier per cluster
// tier. Values scale with symbol grade: the six low-pay stones pay least,
// the two high-pay characters more, the top-pay Gauntlet symbol most.
var Paytable = map[Symbol]map[int]float64{
	Power:   {8: 0.5, 10: 1.0, 12: 2.5},
	Space:   {8: 0.5, 10: 1.0, 12: 2.5},
	Reality: {8: 0.6, 10: 1.2, 12: 3.0},
	Soul:    {8: 0.6, 10: 1.2, 12: 3.0},
	Time:    {8: 0.8, 10: 1.6, 12: 4.0},
	Mind:    {8: 0.8, 10: 1.6, 12: 4.0},
	Thanos:  {8: 2.0, 10: 5.0, 12: 12.0},
	Witch:   {8: 2.0, 10: 5.0, 12: 12.0},
	Gauntlet: {8: 5.0, 10: 15.0, 12: 40.0},
}

// ScatterPaytable maps an exact (clamped) scatter count to its payout
// multiplier.
var ScatterPaytable = map[int]float64{
	4: 2.0,
	5: 5.0,
	6: 20.0,
}

// Tier returns the greatest cluster tier ≤ size, or 0 if size is below the
// smallest tier (no payout).
func Tier(size int) int {
	best := 0
	for _, k := range ClusterTiers {
		if k <= size && k > best {
			best = k
		}
	}
	return best
}

// PayoutMultiplier returns the payout multiplier for a symbol and cluster
// size, or 0 if the cluster is below the minimum payable tier.
func PayoutMultiplier(sym Symbol, size int) float64 {
	tier := Tier(size)
	if tier == 0 {
		return 0
	}
	table, ok := Paytable[sym]
	if !ok {
		return 0
	}
	return table[tier]
}

// ScatterTier clamps a scatter count to the table's exact keys: counts
// below the minimum pay 0, counts above the maximum clamp to the maximum
// key's payout (spec.md §4.4 scatter-payout clamp rule).
func ScatterTier(count int) int {
	min := ScatterTiers[0]
	max := ScatterTiers[len(ScatterTiers)-1]
	if count < min {
		return 0
	}
	if count > max {
		return max
	}
	return count
}

// ScatterPayoutMultiplier returns the scatter payout multiplier for the
// given scatter count (0 if below the minimum of 4).
func ScatterPayoutMultiplier(count int) float64 {
	tier := ScatterTier(count)
	if tier == 0 {
		return 0
	}
	return ScatterPaytable[tier]
}
