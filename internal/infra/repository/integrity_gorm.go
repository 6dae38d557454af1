package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cascadeslots/engine/domain/integrity"
)

// IntegrityGormRepository implements integrity.Repository using GORM.
type IntegrityGormRepository struct {
	db *gorm.DB
}

// NewIntegrityGormRepository creates a new GORM integrity seal repository.
func NewIntegrityGormRepository(db *gorm.DB) integrity.Repository {
	return &IntegrityGormRepository{db: db}
}

// Create persists a new integrity seal.
func (r *IntegrityGormRepository) Create(ctx context.Context, seal *integrity.Seal) error {
	if err := r.db.WithContext(ctx).Create(seal).Error; err != nil {
		return fmt.Errorf("failed to create integrity seal: %w", err)
	}
	return nil
}

// GetBySpinID retrieves the integrity seal for a spin.
func (r *IntegrityGormRepository) GetBySpinID(ctx context.Context, spinID uuid.UUID) (*integrity.Seal, error) {
	var seal integrity.Seal
	if err := r.db.WithContext(ctx).Where("spin_id = ?", spinID).First(&seal).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, integrity.ErrSealNotFound
		}
		return nil, fmt.Errorf("failed to get integrity seal: %w", err)
	}
	return &seal, nil
}
