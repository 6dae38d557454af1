package dto

import "github.com/cascadeslots/engine/domain/syncsession"

// Envelope is the outer frame for every cascade sync wire message, carried
// over a single websocket connection per session. Type selects which of
// the payload structs below to decode/encode.
type Envelope struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Server-to-client events.

// CascadeSyncStartPayload opens a sync session for one spin.
type CascadeSyncStartPayload struct {
	SyncID          string `json:"sync_id"`
	SpinID          string `json:"spin_id"`
	TotalSteps      int    `json:"total_steps"`
	Salt            string `json:"salt"`
	InitialGridHash string `json:"initial_grid_hash"`
}

// CascadeStepPayload streams one settled cascade step to the client.
type CascadeStepPayload struct {
	SyncID       string              `json:"sync_id"`
	StepIndex    int                 `json:"step_index"`
	StepPayload  CascadeStepResponse `json:"step_payload"`
	StepHash     string              `json:"step_hash"`
	ServerTs     int64               `json:"server_ts"`
	PhaseTimings TimingResponse      `json:"phase_timings"`
}

// CascadeRecoveryDataPayload delivers replay data for an open recovery round.
type CascadeRecoveryDataPayload struct {
	SyncID      string      `json:"sync_id"`
	RecoveryID  string      `json:"recovery_id"`
	Strategy    string      `json:"strategy"`
	Data        interface{} `json:"data"`
	Attempt     int         `json:"attempt"`
	MaxAttempts int         `json:"max_attempts"`
}

// SyncResponsePayload answers a client SYNC_REQUEST.
type SyncResponsePayload struct {
	SyncID      string      `json:"sync_id"`
	RequestType string      `json:"request_type"`
	Success     bool        `json:"success"`
	Payload     interface{} `json:"payload,omitempty"`
	ServerTs    int64       `json:"server_ts"`
}

// Client-to-server events.

// CascadeStepStartPayload is the client announcing it began rendering a step.
type CascadeStepStartPayload struct {
	SyncID       string     `json:"sync_id"`
	SpinID       string     `json:"spin_id"`
	StepIndex    int        `json:"step_index"`
	GridState    [][]string `json:"grid_state"`
	ExpectedHash string     `json:"expected_hash"`
	ClientTs     int64      `json:"client_ts"`
}

// CascadeStepCompletePayload is the client's STEP_ACK — it reports the grid
// and hash it landed on after rendering a step.
type CascadeStepCompletePayload struct {
	SyncID     string     `json:"sync_id"`
	StepIndex  int        `json:"step_index"`
	FinalGrid  [][]string `json:"final_grid"`
	Matches    []ClusterResponse `json:"matches"`
	Drops      []DropEntryResponse `json:"drops"`
	Win        float64    `json:"win"`
	Multiplier float64    `json:"multiplier"`
	ClientHash string     `json:"client_hash"`
}

// CascadeDesyncDetectedPayload is the client reporting a mismatch.
type CascadeDesyncDetectedPayload struct {
	SyncID     string               `json:"sync_id"`
	StepIndex  int                  `json:"step_index"`
	DesyncType syncsession.DesyncType `json:"desync_type"`
	ClientState interface{}         `json:"client_state"`
	Attempt    int                  `json:"attempt"`
}

// SyncRequestPayload asks the server to (re)send state out of band.
type SyncRequestPayload struct {
	SyncID      string `json:"sync_id,omitempty"`
	RequestType string `json:"request_type" validate:"required,oneof=init_sync step_sync full_sync state_sync"`
}

// SyncSessionStatusResponse is the plain HTTP status read of a sync session,
// used by clients that poll rather than hold a live socket.
type SyncSessionStatusResponse struct {
	SyncID          string            `json:"sync_id"`
	SpinID          string            `json:"spin_id"`
	State           syncsession.State `json:"state"`
	TotalSteps      int               `json:"total_steps"`
	CurrentStep     int               `json:"current_step"`
	RecoveryAttempts int              `json:"recovery_attempts"`
}
