package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cascadeslots/engine/domain/freespins"
	"github.com/cascadeslots/engine/domain/spin"
	gfreespins "github.com/cascadeslots/engine/internal/game/freespins"
	"github.com/cascadeslots/engine/internal/pkg/cache"
	"github.com/cascadeslots/engine/internal/pkg/logger"
)

// activeFreeSpinsCacheTTL bounds how long the cache-aside entry for a
// player's active session id may be trusted before a miss forces a
// database read again. Short on purpose — the database row is still the
// system of record, this is only an index accelerator for repeated status
// polling during a long free-spins run.
const activeFreeSpinsCacheTTL = 10 * time.Second

// FreeSpinsService implements the freespins.Service interface. Spin
// execution itself is delegated to spin.Service, which already knows how
// to run an active free-spins session's step — this service owns session
// lifecycle (trigger, buy, status, retrigger) around that shared path.
type FreeSpinsService struct {
	freeSpinsRepo freespins.Repository
	spinService   spin.Service
	cache         *cache.Cache
	logger        *logger.Logger
}

// NewFreeSpinsService creates a new free spins service. cache may be nil
// (e.g. in unit tests) — GetActiveSession falls back to the repository
// directly when it is.
func NewFreeSpinsService(
	freeSpinsRepo freespins.Repository,
	spinService spin.Service,
	c *cache.Cache,
	log *logger.Logger,
) freespins.Service {
	return &FreeSpinsService{
		freeSpinsRepo: freeSpinsRepo,
		spinService:   spinService,
		cache:         c,
		logger:        log,
	}
}

// TriggerFreeSpins starts a new session from a base-game scatter trigger.
//
// In practice spin.Service's base-spin path already creates the session
// as part of persisting the triggering spin (see SpinService.executeBaseSpin);
// this entry point exists for callers that need to trigger a session
// outside that flow, e.g. replaying an audited spin.
func (s *FreeSpinsService) TriggerFreeSpins(ctx context.Context, playerID, spinID uuid.UUID, scatterCount int, bet float64) (*freespins.FreeSpinsSession, error) {
	if scatterCount < gfreespins.MinScattersToTrigger {
		return nil, fmt.Errorf("insufficient scatters to trigger free spins")
	}

	if existing, _ := s.freeSpinsRepo.GetActiveByPlayer(ctx, playerID); existing != nil {
		return nil, freespins.ErrActiveFreeSpinsExists
	}

	spinsAwarded := gfreespins.ScatterAward

	newSession := &freespins.FreeSpinsSession{
		ID:                    uuid.New(),
		PlayerID:              playerID,
		TriggeredBySpinID:     &spinID,
		TriggerType:           freespins.TriggerScatter,
		ScatterCount:          scatterCount,
		TotalSpinsAwarded:     spinsAwarded,
		RemainingSpins:        spinsAwarded,
		LockedBetAmount:       bet,
		AccumulatedMultiplier: 1,
		IsActive:              true,
	}

	if err := s.freeSpinsRepo.Create(ctx, newSession); err != nil {
		s.logger.Error().Err(err).Str("player_id", playerID.String()).Msg("failed to create free spins session")
		return nil, fmt.Errorf("create free spins session: %w", err)
	}

	s.logger.Info().
		Str("free_spins_session_id", newSession.ID.String()).
		Str("player_id", playerID.String()).
		Int("scatter_count", scatterCount).
		Int("spins_awarded", spinsAwarded).
		Msg("free spins triggered")

	return newSession, nil
}

// BuyFreeSpins debits the buy-feature cost and starts a purchased
// free-spins session. The wallet debit itself happens inside
// spin.Service.BuyFreeSpins, which also runs the session's first spin.
func (s *FreeSpinsService) BuyFreeSpins(ctx context.Context, playerID, sessionID uuid.UUID, bet float64) (*freespins.FreeSpinsSession, error) {
	firstSpin, err := s.spinService.BuyFreeSpins(ctx, playerID, sessionID, bet)
	if err != nil {
		return nil, err
	}
	if firstSpin.FreeSpinsSessionID == nil {
		return nil, fmt.Errorf("buy free spins: no session id on purchased spin")
	}
	return s.freeSpinsRepo.GetByID(ctx, *firstSpin.FreeSpinsSessionID)
}

// ExecuteFreeSpin runs one spin within an active session by delegating to
// spin.Service.ExecuteSpin's free-spins branch.
func (s *FreeSpinsService) ExecuteFreeSpin(ctx context.Context, freeSpinsSessionID uuid.UUID, quickSpin bool) (*spin.Spin, error) {
	session, err := s.freeSpinsRepo.GetAvailableSessionByID(ctx, freeSpinsSessionID)
	if err != nil {
		return nil, freespins.ErrFreeSpinsNotFound
	}
	return s.spinService.ExecuteSpin(ctx, session.PlayerID, session.SessionID, session.LockedBetAmount, &freeSpinsSessionID, quickSpin)
}

// GetStatus retrieves the status of a free spins session.
func (s *FreeSpinsService) GetStatus(ctx context.Context, freeSpinsSessionID uuid.UUID) (*freespins.FreeSpinsStatus, error) {
	session, err := s.freeSpinsRepo.GetByID(ctx, freeSpinsSessionID)
	if err != nil {
		s.logger.Error().Err(err).Str("free_spins_session_id", freeSpinsSessionID.String()).Msg("failed to get free spins status")
		return nil, freespins.ErrFreeSpinsNotFound
	}

	return &freespins.FreeSpinsStatus{
		Active:                session.IsActive,
		FreeSpinsSessionID:    session.ID,
		TriggerType:           session.TriggerType,
		TotalSpinsAwarded:     session.TotalSpinsAwarded,
		SpinsCompleted:        session.SpinsCompleted,
		RemainingSpins:        session.RemainingSpins,
		LockedBetAmount:       session.LockedBetAmount,
		AccumulatedMultiplier: session.AccumulatedMultiplier,
		TotalWon:              session.TotalWon,
	}, nil
}

// GetActiveSession retrieves the active free spins session for a player,
// going through a cache-aside read so that a client polling an in-progress
// session (dozens of spins, one status check per spin) doesn't hit the
// database every time. A cache miss or a nil cache (tests) falls back to
// the repository directly.
func (s *FreeSpinsService) GetActiveSession(ctx context.Context, playerID uuid.UUID) (*freespins.FreeSpinsSession, error) {
	if s.cache == nil {
		return s.fetchActiveSession(ctx, playerID)
	}

	ttl := activeFreeSpinsCacheTTL
	res, err := s.cache.GetWithSingleflight(ctx, s.cache.ActiveFreeSpinsKey(playerID), nil, func() (interface{}, error) {
		return s.fetchActiveSession(ctx, playerID)
	}, &ttl)
	if err != nil {
		return nil, err
	}
	session, ok := res.(*freespins.FreeSpinsSession)
	if !ok {
		return s.fetchActiveSession(ctx, playerID)
	}
	return session, nil
}

func (s *FreeSpinsService) fetchActiveSession(ctx context.Context, playerID uuid.UUID) (*freespins.FreeSpinsSession, error) {
	session, err := s.freeSpinsRepo.GetActiveByPlayer(ctx, playerID)
	if err != nil {
		s.logger.Debug().Str("player_id", playerID.String()).Msg("no active free spins session")
		return nil, freespins.ErrFreeSpinsNotFound
	}
	return session, nil
}

// RetriggerFreeSpins adds additional spins to an active session.
//
// The common case — a retrigger discovered mid-session by the engine — is
// already applied by spin.Service.executeFreeSpin right after the spin
// that caused it. This entry point covers out-of-band retriggers.
func (s *FreeSpinsService) RetriggerFreeSpins(ctx context.Context, freeSpinsSessionID uuid.UUID, scatterCount int) error {
	if scatterCount < gfreespins.MinScattersToTrigger {
		return fmt.Errorf("insufficient scatters to retrigger free spins")
	}

	session, err := s.freeSpinsRepo.GetByID(ctx, freeSpinsSessionID)
	if err != nil {
		return freespins.ErrFreeSpinsNotFound
	}
	if !session.IsActive {
		return freespins.ErrNotActive
	}

	if err := s.freeSpinsRepo.AddSpins(ctx, freeSpinsSessionID, gfreespins.RetriggerAward); err != nil {
		s.logger.Error().Err(err).Str("free_spins_session_id", freeSpinsSessionID.String()).Msg("failed to retrigger free spins")
		return fmt.Errorf("retrigger free spins: %w", err)
	}

	s.logger.Info().
		Str("free_spins_session_id", freeSpinsSessionID.String()).
		Int("scatter_count", scatterCount).
		Int("additional_spins", gfreespins.RetriggerAward).
		Msg("free spins retriggered")

	return nil
}
