package spin

import (
	"context"

	"github.com/google/uuid"
)

// Service is the spin business-logic facade consumed by internal/service
// and, transitively, the API handlers. ExecuteSpin wraps the engine's pure
// orchestration (internal/game/engine) with balance debits/credits and
// persistence.
type Service interface {
	// ExecuteSpin runs one complete spin — base game or an active
	// free-spins session step, selected by freeSpinsSessionID — debiting
	// or crediting the player's wallet and persisting the sealed result.
	ExecuteSpin(ctx context.Context, playerID, sessionID uuid.UUID, bet float64, freeSpinsSessionID *uuid.UUID, quickSpin bool) (*Spin, error)

	// BuyFreeSpins debits the buy-feature cost and starts a purchased
	// free-spins session.
	BuyFreeSpins(ctx context.Context, playerID, sessionID uuid.UUID, bet float64) (*Spin, error)

	// GetSpinDetails retrieves a single sealed spin by ID.
	GetSpinDetails(ctx context.Context, spinID uuid.UUID) (*Spin, error)

	// GetSpinHistory retrieves paginated spin history for a player.
	GetSpinHistory(ctx context.Context, playerID uuid.UUID, page, limit int) (*SpinHistoryResult, error)
}

// SpinHistoryResult is paginated spin history.
type SpinHistoryResult struct {
	Page  int     `json:"page"`
	Limit int     `json:"limit"`
	Total int64   `json:"total"`
	Spins []*Spin `json:"spins"`
}
