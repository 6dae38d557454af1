package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cascadeslots/engine/domain/syncsession"
)

// SyncSessionGormRepository implements syncsession.Repository using GORM.
// It is the durable audit trail behind the in-memory sync.Manager session
// map — SyncService writes the row when a session starts and updates it
// after every state transition, so a sync session's outcome survives a
// process restart.
type SyncSessionGormRepository struct {
	db *gorm.DB
}

// NewSyncSessionGormRepository creates a new GORM sync session repository.
func NewSyncSessionGormRepository(db *gorm.DB) syncsession.Repository {
	return &SyncSessionGormRepository{db: db}
}

// Create persists a new sync session row.
func (r *SyncSessionGormRepository) Create(ctx context.Context, s *syncsession.SyncSession) error {
	if err := r.db.WithContext(ctx).Create(s).Error; err != nil {
		return fmt.Errorf("failed to create sync session: %w", err)
	}
	return nil
}

// GetByID retrieves a sync session by its sync_id.
func (r *SyncSessionGormRepository) GetByID(ctx context.Context, id uuid.UUID) (*syncsession.SyncSession, error) {
	var s syncsession.SyncSession
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&s).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, syncsession.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get sync session: %w", err)
	}
	return &s, nil
}

// GetBySpinID retrieves the sync session for a spin.
func (r *SyncSessionGormRepository) GetBySpinID(ctx context.Context, spinID uuid.UUID) (*syncsession.SyncSession, error) {
	var s syncsession.SyncSession
	if err := r.db.WithContext(ctx).Where("spin_id = ?", spinID).First(&s).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, syncsession.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get sync session by spin: %w", err)
	}
	return &s, nil
}

// Update saves the latest snapshot of a sync session.
func (r *SyncSessionGormRepository) Update(ctx context.Context, s *syncsession.SyncSession) error {
	result := r.db.WithContext(ctx).Save(s)
	if result.Error != nil {
		return fmt.Errorf("failed to update sync session: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return syncsession.ErrNotFound
	}
	return nil
}
