package dto

import (
	"time"

	"github.com/cascadeslots/engine/internal/game/multiplier"
)

// ExecuteSpinRequest represents a spin execution request. player_id and
// session_id are supplied directly by the caller — there is no
// authentication layer in front of this API.
type ExecuteSpinRequest struct {
	PlayerID           string  `json:"player_id" validate:"required,uuid"`
	SessionID          string  `json:"session_id" validate:"required,uuid"`
	BetAmount          float64 `json:"bet" validate:"required,gt=0"`
	QuickSpin          bool    `json:"quick_spin,omitempty"`
	FreeSpinsSessionID string  `json:"free_spins_session_id,omitempty" validate:"omitempty,uuid"`
}

// BuyFreeSpinsRequest represents a buy-feature purchase request.
type BuyFreeSpinsRequest struct {
	PlayerID  string  `json:"player_id" validate:"required,uuid"`
	SessionID string  `json:"session_id" validate:"required,uuid"`
	BetAmount float64 `json:"bet" validate:"required,gt=0"`
}

// Position is a single grid coordinate.
type Position struct {
	Col int `json:"col"`
	Row int `json:"row"`
}

// ClusterResponse is one matched cluster.
type ClusterResponse struct {
	Symbol    string     `json:"symbol"`
	Positions []Position `json:"positions"`
}

// ClusterPayoutResponse is a scored cluster.
type ClusterPayoutResponse struct {
	Cluster ClusterResponse `json:"cluster"`
	Payout  float64         `json:"payout"`
}

// TimingResponse mirrors cascade.Timing, with durations expressed in
// whole milliseconds for JSON transport.
type TimingResponse struct {
	MatchHighlightMs  int64 `json:"match_highlight_ms"`
	SymbolRemovalMs   int64 `json:"symbol_removal_ms"`
	SymbolDropMs      int64 `json:"symbol_drop_ms"`
	GridSettleMs      int64 `json:"grid_settle_ms"`
	WinPresentationMs int64 `json:"win_presentation_ms"`
	TotalMs           int64 `json:"total_ms"`
}

// DropEntryResponse mirrors cascade.DropEntry.
type DropEntryResponse struct {
	Col    int `json:"col"`
	SrcRow int `json:"src_row"`
	DstRow int `json:"dst_row"`
}

// RandomMultiplierResponse mirrors multiplier.RandomMultiplier.
type RandomMultiplierResponse struct {
	Value     int                  `json:"value"`
	Position  multiplier.Position  `json:"position"`
	Character multiplier.Character `json:"character"`
}

// CascadeStepResponse is one settled cascade iteration.
type CascadeStepResponse struct {
	Index       int                     `json:"index"`
	GridBefore  [][]string              `json:"grid_before"`
	GridAfter   [][]string              `json:"grid_after"`
	Matches     []ClusterResponse       `json:"matches"`
	ClusterWins []ClusterPayoutResponse `json:"cluster_wins"`
	StepWin     float64                 `json:"step_win"`
	DropPattern []DropEntryResponse     `json:"drop_pattern"`
	Timing      TimingResponse          `json:"timing"`
}

// BonusResponse mirrors spin.Bonus.
type BonusResponse struct {
	FreeSpinsTriggered bool                        `json:"free_spins_triggered"`
	FreeSpinsAwarded   int                         `json:"free_spins_awarded"`
	RandomMultipliers  []RandomMultiplierResponse  `json:"random_multipliers"`
	SpecialFeatures    []string                    `json:"special_features"`
}

// SpinResponse is the full sealed spin result returned to the client.
type SpinResponse struct {
	SpinID                string                `json:"spin_id"`
	SessionID             string                `json:"session_id"`
	PlayerID              string                `json:"player_id"`
	Bet                   float64               `json:"bet"`
	GameMode              string                `json:"game_mode"`
	InitialGrid           [][]string            `json:"initial_grid"`
	CascadeSteps          []CascadeStepResponse `json:"cascade_steps"`
	FinalGrid             [][]string            `json:"final_grid"`
	BaseWin               float64               `json:"base_win"`
	AccumulatedMultiplier float64               `json:"accumulated_multiplier"`
	TotalWin              float64               `json:"total_win"`
	Bonus                 BonusResponse         `json:"bonus"`
	ValidationHash        string                `json:"validation_hash"`
	HashSalt              string                `json:"hash_salt"`
	FreeSpinsSessionID    string                `json:"free_spins_session_id,omitempty"`
	Timestamp             time.Time             `json:"timestamp"`
}

// SpinHistoryResponse represents paginated spin history.
type SpinHistoryResponse struct {
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
	Total int64         `json:"total"`
	Spins []SpinSummary `json:"spins"`
}

// SpinSummary is a condensed row for history listings.
type SpinSummary struct {
	SpinID    string    `json:"spin_id"`
	SessionID string    `json:"session_id"`
	Bet       float64   `json:"bet"`
	GameMode  string    `json:"game_mode"`
	TotalWin  float64   `json:"total_win"`
	CreatedAt time.Time `json:"created_at"`
}
