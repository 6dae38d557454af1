package syncsession

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists SyncSession rows — the durable audit trail behind
// the in-memory, single-writer session map in internal/game/sync.
type Repository interface {
	Create(ctx context.Context, s *SyncSession) error
	GetByID(ctx context.Context, id uuid.UUID) (*SyncSession, error)
	GetBySpinID(ctx context.Context, spinID uuid.UUID) (*SyncSession, error)
	Update(ctx context.Context, s *SyncSession) error
}
