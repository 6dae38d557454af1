// Package wallet declares the narrow balance contract the spin engine
// depends on. Payment integrations and a concrete ledger implementation
// are an explicit non-goal; this interface only describes the shape the
// game layer needs, grounded on the teacher's domain/player repository
// balance-mutation methods.
package wallet

import (
	"context"

	"github.com/google/uuid"
)

// Wallet debits and credits a player's balance. Implementations must
// make Debit/Credit idempotent per refSpinID — retrying a call for a
// spin that already applied must not double-charge or double-pay.
type Wallet interface {
	Balance(ctx context.Context, playerID uuid.UUID) (float64, error)
	Debit(ctx context.Context, playerID uuid.UUID, amount float64, refSpinID uuid.UUID) (newBalance float64, err error)
	Credit(ctx context.Context, playerID uuid.UUID, amount float64, refSpinID uuid.UUID) (newBalance float64, err error)
}
