package freespins

import (
	"context"

	"github.com/google/uuid"

	"github.com/cascadeslots/engine/domain/spin"
)

// Service defines free-spins session business logic, layered over the
// pure internal/game/freespins session arithmetic.
type Service interface {
	// TriggerFreeSpins starts a new session from a base-game scatter
	// trigger.
	TriggerFreeSpins(ctx context.Context, playerID, spinID uuid.UUID, scatterCount int, bet float64) (*FreeSpinsSession, error)

	// BuyFreeSpins starts a new session from the buy feature; the caller
	// is responsible for the wallet debit before this is invoked.
	BuyFreeSpins(ctx context.Context, playerID, sessionID uuid.UUID, bet float64) (*FreeSpinsSession, error)

	// ExecuteFreeSpin runs one spin within an active session.
	ExecuteFreeSpin(ctx context.Context, freeSpinsSessionID uuid.UUID, quickSpin bool) (*spin.Spin, error)

	// GetStatus retrieves the status of a free spins session.
	GetStatus(ctx context.Context, freeSpinsSessionID uuid.UUID) (*FreeSpinsStatus, error)

	// GetActiveSession retrieves the active free spins session for a player.
	GetActiveSession(ctx context.Context, playerID uuid.UUID) (*FreeSpinsSession, error)

	// RetriggerFreeSpins adds additional spins to an active session.
	RetriggerFreeSpins(ctx context.Context, freeSpinsSessionID uuid.UUID, scatterCount int) error
}

// FreeSpinsStatus represents the status of a free spins session.
type FreeSpinsStatus struct {
	Active                bool        `json:"active"`
	FreeSpinsSessionID    uuid.UUID   `json:"free_spins_session_id,omitempty"`
	TriggerType           TriggerType `json:"trigger_type,omitempty"`
	TotalSpinsAwarded     int         `json:"total_spins_awarded"`
	SpinsCompleted        int         `json:"spins_completed"`
	RemainingSpins        int         `json:"remaining_spins"`
	LockedBetAmount       float64     `json:"locked_bet_amount"`
	AccumulatedMultiplier float64     `json:"accumulated_multiplier"`
	TotalWon              float64     `json:"total_won"`
}
