// Package spin defines the persisted SpinResult aggregate (spec.md §3
// SpinResult), grounded on the teacher's domain/spin/model.go JSONB
// persistence idiom.
package spin

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/cascadeslots/engine/internal/game/cascade"
	"github.com/cascadeslots/engine/internal/game/grid"
	"github.com/cascadeslots/engine/internal/game/multiplier"
)

// GameMode names which pipeline produced a spin.
type GameMode string

const (
	ModeBase       GameMode = "base"
	ModeFreeSpins  GameMode = "free_spins"
	ModeBonus      GameMode = "bonus"
)

// Bonus carries the free-spins/random-multiplier side effects of a spin
// (spec.md §3 SpinResult.bonus).
type Bonus struct {
	FreeSpinsTriggered bool                        `json:"free_spins_triggered"`
	FreeSpinsAwarded   int                         `json:"free_spins_awarded"`
	RandomMultipliers  []multiplier.RandomMultiplier `json:"random_multipliers"`
	SpecialFeatures    []string                    `json:"special_features"`
}

// Spin is the root SpinResult entity, immutable after construction. It is
// the single canonical persisted shape — the engine never produces a
// separate "legacy" row format alongside it.
type Spin struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"spin_id"`
	SessionID uuid.UUID `gorm:"type:uuid;not null;index" json:"session_id"`
	PlayerID  uuid.UUID `gorm:"type:uuid;not null;index" json:"player_id"`

	Bet      float64  `gorm:"type:decimal(10,2);not null" json:"bet"`
	GameMode GameMode `gorm:"type:varchar(16);not null" json:"game_mode"`

	RngSeed  string `gorm:"type:varchar(64);not null;uniqueIndex" json:"rng_seed"`
	HashSalt string `gorm:"type:varchar(32);not null" json:"hash_salt"`

	InitialGrid  JSONGrid    `gorm:"type:jsonb;not null" json:"initial_grid"`
	CascadeSteps JSONSteps   `gorm:"type:jsonb" json:"cascade_steps"`
	FinalGrid    JSONGrid    `gorm:"type:jsonb;not null" json:"final_grid"`

	BaseWin               float64 `gorm:"type:decimal(15,2);not null" json:"base_win"`
	AccumulatedMultiplier float64 `gorm:"type:decimal(10,2);not null;default:1" json:"accumulated_multiplier"`
	TotalWin              float64 `gorm:"type:decimal(15,2);not null" json:"total_win"`

	Bonus JSONBonus `gorm:"type:jsonb" json:"bonus"`

	ValidationHash string `gorm:"type:varchar(64);not null" json:"validation_hash"`

	FreeSpinsSessionID *uuid.UUID `gorm:"type:uuid;index" json:"free_spins_session_id,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP;index" json:"timestamp"`
}

func (Spin) TableName() string { return "spins" }

// JSONGrid adapts *grid.Grid for JSONB storage.
type JSONGrid struct {
	Grid *grid.Grid
}

func (g JSONGrid) MarshalJSON() ([]byte, error)  { return json.Marshal(g.Grid) }
func (g *JSONGrid) UnmarshalJSON(b []byte) error  { return json.Unmarshal(b, &g.Grid) }
func (g *JSONGrid) Scan(value interface{}) error {
	bytes, ok := value.([]byte)
	if !ok || value == nil {
		return nil
	}
	return json.Unmarshal(bytes, &g.Grid)
}
func (g JSONGrid) Value() (driver.Value, error) { return json.Marshal(g.Grid) }

// JSONSteps adapts []*cascade.Step for JSONB storage.
type JSONSteps struct {
	Steps []*cascade.Step
}

func (s *JSONSteps) Scan(value interface{}) error {
	bytes, ok := value.([]byte)
	if !ok || value == nil {
		return nil
	}
	return json.Unmarshal(bytes, &s.Steps)
}
func (s JSONSteps) Value() (driver.Value, error) { return json.Marshal(s.Steps) }

// JSONBonus adapts Bonus for JSONB storage.
type JSONBonus struct {
	Bonus Bonus
}

func (b *JSONBonus) Scan(value interface{}) error {
	bytes, ok := value.([]byte)
	if !ok || value == nil {
		return nil
	}
	return json.Unmarshal(bytes, &b.Bonus)
}
func (b JSONBonus) Value() (driver.Value, error) { return json.Marshal(b.Bonus) }
