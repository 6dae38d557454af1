// Package integrity persists the per-spin integrity seal (spec component
// C9), repurposed from the teacher's domain/provablyfair append-only
// SpinLog idiom: instead of a server-seed hash chain across an entire
// session, each spin seals itself independently under its own salt, with
// the RNG seed encrypted at rest for later dispute recovery.
package integrity

import (
	"time"

	"github.com/google/uuid"
)

// Seal is the append-only integrity record for one spin. It is created
// once, at spin settlement, and never updated — the encrypted seed gives
// operators a recovery path without exposing it in application logs.
type Seal struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	SpinID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	PlayerID  uuid.UUID `gorm:"type:uuid;not null;index"`

	EncryptedRngSeed string `gorm:"type:text;not null"`
	HashSalt         string `gorm:"type:varchar(32);not null"`
	ValidationHash   string `gorm:"type:varchar(64);not null"`

	CreatedAt time.Time `gorm:"not null;default:now();index"`
}

func (Seal) TableName() string { return "integrity_seals" }
