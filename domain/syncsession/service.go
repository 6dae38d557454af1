package syncsession

import (
	"context"

	"github.com/google/uuid"
)

// Service drives one spin's cascade transmission session through its
// state machine and keeps the durable row in sync with the live,
// in-memory session.
type Service interface {
	// StartSync opens a new session awaiting the client's INIT_ACK.
	StartSync(ctx context.Context, spinID, playerID uuid.UUID, totalSteps int) (*SyncSession, error)

	// AckInit resolves the client's acknowledgement of the initial grid
	// hash, advancing to streaming_steps or opening a recovery round.
	AckInit(ctx context.Context, syncID uuid.UUID, hashMatches bool) (*SyncSession, error)

	// AckStep resolves the client's acknowledgement of cascade step n.
	AckStep(ctx context.Context, syncID uuid.UUID, stepIndex int, hashMatches bool) (*SyncSession, error)

	// ReportDesync opens a recovery round for a client-detected desync.
	ReportDesync(ctx context.Context, syncID uuid.UUID, stepIndex int, desyncType DesyncType) (*SyncSession, error)

	// AckRecovery resolves the current recovery round and resumes
	// streaming.
	AckRecovery(ctx context.Context, syncID uuid.UUID) (*SyncSession, error)

	// GetStatus returns the session's current state, live if still
	// in-flight or from the durable row once terminal.
	GetStatus(ctx context.Context, syncID uuid.UUID) (*SyncSession, error)

	// Cancel marks an in-flight session failed, e.g. on transport
	// disconnection.
	Cancel(ctx context.Context, syncID uuid.UUID) error
}
