// Package wallet provides an in-memory reference implementation of
// domain/wallet.Wallet. A real payment/ledger integration is an explicit
// non-goal of this module; this adapter exists only so the service graph
// has a concrete Wallet to wire end-to-end, grounded on the teacher's
// map-with-mutex session idiom (internal/game/sync.Manager follows the
// same shape) and on idempotency-by-reference-id rather than a real
// double-entry ledger.
package wallet

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/cascadeslots/engine/domain/wallet"
)

// StartingBalance seeds a player's balance the first time it is touched.
const StartingBalance = 10000.0

type account struct {
	balance        float64
	appliedDebits  map[uuid.UUID]struct{}
	appliedCredits map[uuid.UUID]struct{}
}

// MemoryWallet is a process-local balance store keyed by player ID. Debit
// and Credit are idempotent per refSpinID: retrying a call for a
// reference that already applied returns the current balance unchanged
// instead of mutating it again.
type MemoryWallet struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]*account
}

// NewMemoryWallet creates an empty in-memory wallet store.
func NewMemoryWallet() *MemoryWallet {
	return &MemoryWallet{accounts: make(map[uuid.UUID]*account)}
}

var _ wallet.Wallet = (*MemoryWallet)(nil)

func (w *MemoryWallet) accountLocked(playerID uuid.UUID) *account {
	acc, ok := w.accounts[playerID]
	if !ok {
		acc = &account{
			balance:        StartingBalance,
			appliedDebits:  make(map[uuid.UUID]struct{}),
			appliedCredits: make(map[uuid.UUID]struct{}),
		}
		w.accounts[playerID] = acc
	}
	return acc
}

// Balance returns a player's current balance, seeding a fresh account at
// StartingBalance on first access.
func (w *MemoryWallet) Balance(ctx context.Context, playerID uuid.UUID) (float64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.accountLocked(playerID).balance, nil
}

// Debit subtracts amount from playerID's balance, unless refSpinID has
// already been applied.
func (w *MemoryWallet) Debit(ctx context.Context, playerID uuid.UUID, amount float64, refSpinID uuid.UUID) (float64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	acc := w.accountLocked(playerID)
	if _, seen := acc.appliedDebits[refSpinID]; seen {
		return acc.balance, nil
	}
	acc.balance -= amount
	acc.appliedDebits[refSpinID] = struct{}{}
	return acc.balance, nil
}

// Credit adds amount to playerID's balance, unless refSpinID has already
// been applied.
func (w *MemoryWallet) Credit(ctx context.Context, playerID uuid.UUID, amount float64, refSpinID uuid.UUID) (float64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	acc := w.accountLocked(playerID)
	if _, seen := acc.appliedCredits[refSpinID]; seen {
		return acc.balance, nil
	}
	acc.balance += amount
	acc.appliedCredits[refSpinID] = struct{}{}
	return acc.balance, nil
}
