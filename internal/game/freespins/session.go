// Package freespins implements the free-spins trigger/retrigger rules and
// buy-feature terms of spec component C7, grounded on the teacher's
// freespins/session.go lifecycle shape. Session state itself lives in
// domain/freespins.FreeSpinsSession, persisted via GORM; this package only
// holds the pure game-rule constants and helpers that produce it.
package freespins

// BuyCostMultiplier and BuySpinsAward are the buy-feature's fixed terms
// (spec.md §6.5 free_spins.buy_cost / .buy_spins).
const (
	BuyCostMultiplier = 100
	BuySpinsAward     = 15
)

// BuyCost returns the wallet debit required to buy BuySpinsAward free
// spins at the given bet.
func BuyCost(bet float64) float64 {
	return bet * BuyCostMultiplier
}
