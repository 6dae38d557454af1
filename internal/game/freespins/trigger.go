package freespins

import (
	"github.com/cascadeslots/engine/internal/game/grid"
)

// ScatterAward is the fixed number of free spins a fresh scatter trigger
// awards outside an active session (spec.md §6.5 free_spins.scatter_award).
const ScatterAward = 15

// RetriggerAward is the fixed number of additional spins an in-session
// retrigger awards (spec.md §6.5 free_spins.retrigger).
const RetriggerAward = 5

// MinScattersToTrigger is the initial-grid scatter count required to
// trigger (or retrigger) free spins.
const MinScattersToTrigger = 4

// TriggerResult reports whether a fresh grid's scatter count triggers a
// new free-spins session.
type TriggerResult struct {
	Triggered    bool
	ScatterCount int
	SpinsAwarded int
}

// CheckTrigger inspects g for a fresh (outside-session) free-spins
// trigger: scatters0 ≥ MinScattersToTrigger awards the fixed
// ScatterAward regardless of how many scatters beyond the minimum landed.
func CheckTrigger(g *grid.Grid) TriggerResult {
	count := g.CountScatters()
	if count >= MinScattersToTrigger {
		return TriggerResult{Triggered: true, ScatterCount: count, SpinsAwarded: ScatterAward}
	}
	return TriggerResult{ScatterCount: count}
}

// RetriggerResult reports whether a free-spin's own grid retriggers the
// active session.
type RetriggerResult struct {
	Retriggered     bool
	ScatterCount    int
	AdditionalSpins int
}

// CheckRetrigger inspects a free-spin's initial grid for a retrigger: the
// same MinScattersToTrigger threshold, but awarding the fixed
// RetriggerAward instead of a fresh ScatterAward.
func CheckRetrigger(g *grid.Grid) RetriggerResult {
	count := g.CountScatters()
	if count >= MinScattersToTrigger {
		return RetriggerResult{Retriggered: true, ScatterCount: count, AdditionalSpins: RetriggerAward}
	}
	return RetriggerResult{ScatterCount: count}
}
