// Package sync implements the cascade synchronizer (spec component C10):
// a server-side, step-by-step acknowledged delivery session per spin,
// with desync detection and recovery strategy selection. Grounded on the
// session-map-with-mutex idiom in the pack's websocket slot handler
// (one entry per live session, sync.RWMutex-guarded map, single owning
// goroutine per session) and on the teacher's single-writer domain
// service style.
package sync

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cascadeslots/engine/domain/syncsession"
)

// StepTimeout and MaxRecoveryAttempts are spec.md §6.5 sync defaults.
const (
	StepTimeout        = 5 * time.Second
	MaxRecoveryAttempts = 3
	TimingTolerance     = 1000 * time.Millisecond
	OverallSlack        = 30 * time.Second
)

// recoveryChain maps a desync type to its ordered strategy escalation
// (spec.md §4.10).
var recoveryChain = map[syncsession.DesyncType][]syncsession.Strategy{
	syncsession.DesyncHash:       {syncsession.StrategyStateResync, syncsession.StrategyStepReplay, syncsession.StrategyFullResync},
	syncsession.DesyncValidation: {syncsession.StrategyStateResync, syncsession.StrategyStepReplay, syncsession.StrategyFullResync},
	syncsession.DesyncTiming:     {syncsession.StrategyTimingAdjust, syncsession.StrategyStepReplay, syncsession.StrategyFullResync},
	syncsession.DesyncGrid:       {syncsession.StrategyGridCorrection, syncsession.StrategyCascadeReplay, syncsession.StrategyFullResync},
}

// StrategyFor returns the recovery strategy for the given desync type and
// 1-indexed attempt number. Returns false once attempt exceeds the chain.
func StrategyFor(desync syncsession.DesyncType, attempt int) (syncsession.Strategy, bool) {
	chain, ok := recoveryChain[desync]
	if !ok || attempt < 1 || attempt > len(chain) {
		return "", false
	}
	return chain[attempt-1], true
}

// Session is one live, in-memory cascade transmission session. All
// mutating methods must be called by the single goroutine that owns the
// session's sync_id; concurrent callers across sync_ids never contend.
type Session struct {
	mu sync.Mutex

	ID       uuid.UUID
	SpinID   uuid.UUID
	PlayerID uuid.UUID

	state        syncsession.State
	currentStep  int
	totalSteps   int
	startedAt    time.Time
	lastActivity time.Time

	validations []syncsession.ValidationResult
	recoveries  []syncsession.RecoveryAttempt
	attempt     int
}

// New starts a session awaiting the client's INIT_ACK.
func New(spinID, playerID uuid.UUID, totalSteps int) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:           uuid.New(),
		SpinID:       spinID,
		PlayerID:     playerID,
		state:        syncsession.StateAwaitingInitAck,
		totalSteps:   totalSteps,
		startedAt:    now,
		lastActivity: now,
	}
}

// OverallTimeout is StepTimeout for each of the session's steps plus a
// fixed OverallSlack. No code in this package enforces it; it is reported
// for callers only.
func (s *Session) OverallTimeout() time.Duration {
	return time.Duration(s.totalSteps)*StepTimeout + OverallSlack
}

// State returns the session's current state.
func (s *Session) State() syncsession.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Snapshot returns a persistable copy of the session's state (for
// domain/syncsession.Repository callers).
func (s *Session) Snapshot() *syncsession.SyncSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	row := &syncsession.SyncSession{
		ID:           s.ID,
		SpinID:       s.SpinID,
		PlayerID:     s.PlayerID,
		State:        s.state,
		CurrentStep:  s.currentStep,
		TotalSteps:   s.totalSteps,
		StartedAt:    s.startedAt,
		LastActivity: s.lastActivity,
	}
	row.ValidationResults.Results = append([]syncsession.ValidationResult(nil), s.validations...)
	row.RecoveryAttempts.Attempts = append([]syncsession.RecoveryAttempt(nil), s.recoveries...)
	if s.state == syncsession.StateCompleted || s.state == syncsession.StateFailed {
		now := time.Now().UTC()
		row.CompletedAt = &now
	}
	return row
}

// HandleInitAck transitions awaiting_init_ack → streaming_steps once the
// client's reported initial-grid hash matches the server's.
func (s *Session) HandleInitAck(hashMatches bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != syncsession.StateAwaitingInitAck {
		return syncsession.ErrInvalidTransition
	}
	if !hashMatches {
		return s.enterRecoveryLocked(0, syncsession.DesyncHash)
	}
	s.state = syncsession.StateStreamingSteps
	s.touchLocked()
	return nil
}

// HandleStepAck transitions streaming_steps → streaming_steps (or →
// completed on the final step) when step n's hash matches and n is the
// expected next step. Any other n, or a hash mismatch, opens a recovery
// round instead.
func (s *Session) HandleStepAck(n int, hashMatches bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != syncsession.StateStreamingSteps {
		return syncsession.ErrInvalidTransition
	}
	if n != s.currentStep || !hashMatches {
		return s.enterRecoveryLocked(n, syncsession.DesyncHash)
	}
	s.validations = append(s.validations, syncsession.ValidationResult{StepIndex: n, Passed: true, At: time.Now().UTC()})
	s.currentStep++
	s.touchLocked()
	if s.currentStep >= s.totalSteps {
		s.state = syncsession.StateCompleted
	}
	return nil
}

// HandleDesync opens a recovery round explicitly reported by the client
// (CASCADE_DESYNC_DETECTED).
func (s *Session) HandleDesync(stepIndex int, desyncType syncsession.DesyncType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enterRecoveryLocked(stepIndex, desyncType)
}

func (s *Session) enterRecoveryLocked(stepIndex int, desyncType syncsession.DesyncType) error {
	s.attempt++
	if s.attempt > MaxRecoveryAttempts {
		s.state = syncsession.StateFailed
		return syncsession.ErrRecoveryExhausted
	}
	strategy, ok := StrategyFor(desyncType, s.attempt)
	if !ok {
		s.state = syncsession.StateFailed
		return syncsession.ErrRecoveryExhausted
	}
	s.state = syncsession.StateRecovering
	s.recoveries = append(s.recoveries, syncsession.RecoveryAttempt{
		Attempt:    s.attempt,
		StepIndex:  stepIndex,
		DesyncType: desyncType,
		Strategy:   strategy,
		StartedAt:  time.Now().UTC(),
	})
	s.touchLocked()
	return nil
}

// HandleRecoveryAck resolves the current recovery round and returns the
// session to streaming_steps once replay data has been delivered.
func (s *Session) HandleRecoveryAck() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != syncsession.StateRecovering {
		return syncsession.ErrInvalidTransition
	}
	if len(s.recoveries) > 0 {
		now := time.Now().UTC()
		s.recoveries[len(s.recoveries)-1].ResolvedAt = &now
	}
	s.state = syncsession.StateStreamingSteps
	s.touchLocked()
	return nil
}

// CheckStepTimeout opens a timing-desync recovery round at the current step
// when the session is streaming and no activity has been observed within
// StepTimeout. The session fails only if that round exceeds
// MaxRecoveryAttempts.
func (s *Session) CheckStepTimeout(now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != syncsession.StateStreamingSteps {
		return nil
	}
	if now.Sub(s.lastActivity) <= StepTimeout {
		return nil
	}
	return s.enterRecoveryLocked(s.currentStep, syncsession.DesyncTiming)
}

// Cancel marks the session failed on transport disconnection. No partial
// persistence of unacknowledged steps is implied by this call — the
// caller decides what, if anything, to persist.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == syncsession.StateCompleted || s.state == syncsession.StateFailed {
		return
	}
	s.state = syncsession.StateFailed
	s.touchLocked()
}

func (s *Session) touchLocked() {
	s.lastActivity = time.Now().UTC()
}

// Manager owns the live session map, one entry per in-flight sync_id,
// guarded by a single RWMutex — readers (status lookups) take RLock,
// the registering/evicting writer takes Lock. Each Session's own mutex
// still serializes concurrent event delivery for that one sync_id.
type Manager struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

// NewManager creates an empty session manager.
func NewManager() *Manager {
	return &Manager{sessions: make(map[uuid.UUID]*Session)}
}

// Start registers a new session and returns it.
func (m *Manager) Start(spinID, playerID uuid.UUID, totalSteps int) *Session {
	s := New(spinID, playerID, totalSteps)
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s
}

// Get looks up a live session by sync_id.
func (m *Manager) Get(id uuid.UUID) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Evict removes a terminal (completed or failed) session from the live
// map. The durable syncsession.Repository row is the session's permanent
// record past this point.
func (m *Manager) Evict(id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

// Len reports the number of live sessions, for diagnostics.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
