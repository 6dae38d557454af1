// Package syncsession persists the cascade synchronizer's per-spin
// transmission session (spec.md §3 SyncSession, component C10), grounded
// on the teacher's domain/spin row shape and the single-writer session
// idiom in domain/session/service.go.
package syncsession

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// State is one of the cascade synchronizer's state machine states
// (spec.md §4.10).
type State string

const (
	StateAwaitingInitAck State = "awaiting_init_ack"
	StateStreamingSteps  State = "streaming_steps"
	StateCompleted       State = "completed"
	StateRecovering      State = "recovering"
	StateFailed          State = "failed"
)

// DesyncType names why a recovery round was opened.
type DesyncType string

const (
	DesyncHash       DesyncType = "hash"
	DesyncTiming     DesyncType = "timing"
	DesyncGrid       DesyncType = "grid"
	DesyncValidation DesyncType = "validation"
)

// Strategy names a recovery strategy (spec.md §4.10 recovery table).
type Strategy string

const (
	StrategyStateResync     Strategy = "state_resync"
	StrategyStepReplay      Strategy = "step_replay"
	StrategyFullResync      Strategy = "full_resync"
	StrategyTimingAdjust    Strategy = "timing_adjustment"
	StrategyGridCorrection  Strategy = "grid_correction"
	StrategyCascadeReplay   Strategy = "cascade_replay"
)

// ValidationResult records one per-step validation outcome.
type ValidationResult struct {
	StepIndex int       `json:"step_index"`
	Passed    bool      `json:"passed"`
	Detail    string    `json:"detail,omitempty"`
	At        time.Time `json:"at"`
}

// RecoveryAttempt records one recovery round.
type RecoveryAttempt struct {
	Attempt    int        `json:"attempt"`
	StepIndex  int        `json:"step_index"`
	DesyncType DesyncType `json:"desync_type"`
	Strategy   Strategy   `json:"strategy"`
	StartedAt  time.Time  `json:"started_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}

// SyncSession is the persisted transmission session row.
type SyncSession struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"sync_id"`
	SpinID    uuid.UUID `gorm:"type:uuid;not null;index" json:"spin_id"`
	PlayerID  uuid.UUID `gorm:"type:uuid;not null;index" json:"player_id"`

	State        State `gorm:"type:varchar(24);not null" json:"state"`
	CurrentStep  int   `gorm:"not null;default:0" json:"current_step"`
	TotalSteps   int   `gorm:"not null" json:"total_steps"`

	ValidationResults JSONValidations `gorm:"type:jsonb" json:"validation_results"`
	RecoveryAttempts  JSONRecoveries  `gorm:"type:jsonb" json:"recovery_attempts"`

	StartedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"started_at"`
	LastActivity time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"last_activity"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

func (SyncSession) TableName() string { return "sync_sessions" }

// JSONValidations adapts []ValidationResult for JSONB storage.
type JSONValidations struct {
	Results []ValidationResult
}

func (v *JSONValidations) Scan(value interface{}) error {
	bytes, ok := value.([]byte)
	if !ok || value == nil {
		return nil
	}
	return json.Unmarshal(bytes, &v.Results)
}
func (v JSONValidations) Value() (driver.Value, error) { return json.Marshal(v.Results) }

// JSONRecoveries adapts []RecoveryAttempt for JSONB storage.
type JSONRecoveries struct {
	Attempts []RecoveryAttempt
}

func (r *JSONRecoveries) Scan(value interface{}) error {
	bytes, ok := value.([]byte)
	if !ok || value == nil {
		return nil
	}
	return json.Unmarshal(bytes, &r.Attempts)
}
func (r JSONRecoveries) Value() (driver.Value, error) { return json.Marshal(r.Attempts) }
