// Package freespins persists the free-spins session aggregate (spec.md
// §3 FreeSpinsSession), grounded on the teacher's optimistic-locked
// free_spins_sessions row shape.
package freespins

import (
	"time"

	"github.com/google/uuid"
)

// TriggerType names how a session was started.
type TriggerType string

const (
	TriggerScatter  TriggerType = "scatter"
	TriggerPurchase TriggerType = "purchase"
)

// FreeSpinsSession is the persisted free-spins session row.
type FreeSpinsSession struct {
	ID                uuid.UUID   `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	PlayerID          uuid.UUID   `gorm:"type:uuid;not null;index"`
	SessionID         uuid.UUID   `gorm:"type:uuid;not null"`
	TriggeredBySpinID *uuid.UUID  `gorm:"type:uuid"`
	TriggerType       TriggerType `gorm:"type:varchar(16);not null;default:scatter"`
	ScatterCount      int         `gorm:"not null"`
	TotalSpinsAwarded int         `gorm:"not null"`
	SpinsCompleted    int         `gorm:"default:0"`
	RemainingSpins    int         `gorm:"not null"`

	LockedBetAmount       float64 `gorm:"type:decimal(10,2);not null"`
	AccumulatedMultiplier float64 `gorm:"type:decimal(10,2);not null;default:1"`
	TotalWon              float64 `gorm:"type:decimal(15,2);default:0.00"`

	IsActive    bool `gorm:"default:true;index"`
	IsCompleted bool `gorm:"default:false"`

	CreatedAt   time.Time `gorm:"default:CURRENT_TIMESTAMP;index"`
	UpdatedAt   time.Time `gorm:"default:CURRENT_TIMESTAMP"`
	LockVersion int       `gorm:"default:0"`
	CompletedAt *time.Time
}

func (FreeSpinsSession) TableName() string {
	return "free_spins_sessions"
}
