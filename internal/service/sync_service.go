package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/cascadeslots/engine/domain/syncsession"
	gsync "github.com/cascadeslots/engine/internal/game/sync"
	"github.com/cascadeslots/engine/internal/pkg/logger"
)

// SyncService implements syncsession.Service by driving the live
// in-memory sync.Manager and mirroring every transition to the durable
// syncsession.Repository row, the same split the teacher uses between an
// in-memory game.Session and its persisted domain/session counterpart.
type SyncService struct {
	manager *gsync.Manager
	repo    syncsession.Repository
	logger  *logger.Logger
}

// NewSyncService creates a new cascade synchronizer service.
func NewSyncService(manager *gsync.Manager, repo syncsession.Repository, log *logger.Logger) syncsession.Service {
	return &SyncService{manager: manager, repo: repo, logger: log}
}

// StartSync opens a new live session and persists its initial row.
func (s *SyncService) StartSync(ctx context.Context, spinID, playerID uuid.UUID, totalSteps int) (*syncsession.SyncSession, error) {
	session := s.manager.Start(spinID, playerID, totalSteps)
	row := session.Snapshot()
	if err := s.repo.Create(ctx, row); err != nil {
		s.manager.Evict(session.ID)
		return nil, fmt.Errorf("start sync session: %w", err)
	}
	s.logger.WithSyncID(session.ID).Debug().Str("spin_id", spinID.String()).Msg("sync session started")
	return row, nil
}

// AckInit resolves the client's INIT_ACK.
func (s *SyncService) AckInit(ctx context.Context, syncID uuid.UUID, hashMatches bool) (*syncsession.SyncSession, error) {
	session, ok := s.manager.Get(syncID)
	if !ok {
		return nil, syncsession.ErrNotFound
	}
	err := session.HandleInitAck(hashMatches)
	return s.persistAndMaybeEvict(ctx, session, err)
}

// AckStep resolves the client's acknowledgement of one cascade step.
func (s *SyncService) AckStep(ctx context.Context, syncID uuid.UUID, stepIndex int, hashMatches bool) (*syncsession.SyncSession, error) {
	session, ok := s.manager.Get(syncID)
	if !ok {
		return nil, syncsession.ErrNotFound
	}
	err := session.HandleStepAck(stepIndex, hashMatches)
	return s.persistAndMaybeEvict(ctx, session, err)
}

// ReportDesync opens a recovery round for a client-reported desync.
func (s *SyncService) ReportDesync(ctx context.Context, syncID uuid.UUID, stepIndex int, desyncType syncsession.DesyncType) (*syncsession.SyncSession, error) {
	session, ok := s.manager.Get(syncID)
	if !ok {
		return nil, syncsession.ErrNotFound
	}
	err := session.HandleDesync(stepIndex, desyncType)
	return s.persistAndMaybeEvict(ctx, session, err)
}

// AckRecovery resolves the current recovery round.
func (s *SyncService) AckRecovery(ctx context.Context, syncID uuid.UUID) (*syncsession.SyncSession, error) {
	session, ok := s.manager.Get(syncID)
	if !ok {
		return nil, syncsession.ErrNotFound
	}
	err := session.HandleRecoveryAck()
	return s.persistAndMaybeEvict(ctx, session, err)
}

// GetStatus returns the session's live state, falling back to the
// durable row once it has gone terminal and been evicted.
func (s *SyncService) GetStatus(ctx context.Context, syncID uuid.UUID) (*syncsession.SyncSession, error) {
	if session, ok := s.manager.Get(syncID); ok {
		return session.Snapshot(), nil
	}
	return s.repo.GetByID(ctx, syncID)
}

// Cancel marks an in-flight session failed on transport disconnection.
func (s *SyncService) Cancel(ctx context.Context, syncID uuid.UUID) error {
	session, ok := s.manager.Get(syncID)
	if !ok {
		return syncsession.ErrNotFound
	}
	session.Cancel()
	row := session.Snapshot()
	s.manager.Evict(syncID)
	if err := s.repo.Update(ctx, row); err != nil {
		return fmt.Errorf("cancel sync session: %w", err)
	}
	return nil
}

// persistAndMaybeEvict mirrors a session's post-transition snapshot to
// the durable row, regardless of whether the transition itself returned
// an error (recovery-exhaustion failures still need their terminal state
// recorded), and evicts the live entry once the session reaches a
// terminal state.
func (s *SyncService) persistAndMaybeEvict(ctx context.Context, session *gsync.Session, transitionErr error) (*syncsession.SyncSession, error) {
	row := session.Snapshot()
	if updErr := s.repo.Update(ctx, row); updErr != nil {
		s.logger.WithSyncID(row.ID).Error().Err(updErr).Msg("failed to persist sync session transition")
	}
	if row.State == syncsession.StateCompleted || row.State == syncsession.StateFailed {
		s.manager.Evict(row.ID)
	}
	if transitionErr != nil {
		return row, transitionErr
	}
	return row, nil
}
