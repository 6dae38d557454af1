package integrity

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists append-only integrity seals.
type Repository interface {
	Create(ctx context.Context, seal *Seal) error
	GetBySpinID(ctx context.Context, spinID uuid.UUID) (*Seal, error)
}
