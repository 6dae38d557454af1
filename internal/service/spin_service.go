package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/cascadeslots/engine/domain/freespins"
	"github.com/cascadeslots/engine/domain/spin"
	"github.com/cascadeslots/engine/domain/wallet"
	"github.com/cascadeslots/engine/internal/game/engine"
	gfreespins "github.com/cascadeslots/engine/internal/game/freespins"
	"github.com/cascadeslots/engine/internal/infra/repository"
	"github.com/cascadeslots/engine/internal/pkg/logger"
)

// SpinService implements the spin.Service interface. It sequences the
// pure engine.Engine.ProcessSpin computation against wallet debits/credits
// and persistence — the engine never touches the wallet or the database
// itself.
type SpinService struct {
	spinRepo      spin.Repository
	freeSpinsRepo freespins.Repository
	wallet        wallet.Wallet
	engine        *engine.Engine
	txManager     *repository.TxManager
	logger        *logger.Logger
}

// NewSpinService creates a new spin service.
func NewSpinService(
	spinRepo spin.Repository,
	freeSpinsRepo freespins.Repository,
	w wallet.Wallet,
	eng *engine.Engine,
	txManager *repository.TxManager,
	log *logger.Logger,
) spin.Service {
	return &SpinService{
		spinRepo:      spinRepo,
		freeSpinsRepo: freeSpinsRepo,
		wallet:        w,
		engine:        eng,
		txManager:     txManager,
		logger:        log,
	}
}

// ExecuteSpin runs one spin, dispatching on freeSpinsSessionID to the base
// game or an active free-spins session.
func (s *SpinService) ExecuteSpin(ctx context.Context, playerID, sessionID uuid.UUID, bet float64, freeSpinsSessionID *uuid.UUID, quickSpin bool) (*spin.Spin, error) {
	if freeSpinsSessionID == nil {
		return s.executeBaseSpin(ctx, playerID, sessionID, bet, quickSpin)
	}
	return s.executeFreeSpin(ctx, playerID, sessionID, *freeSpinsSessionID, quickSpin)
}

func (s *SpinService) executeBaseSpin(ctx context.Context, playerID, sessionID uuid.UUID, bet float64, quickSpin bool) (*spin.Spin, error) {
	log := s.logger.WithTraceContext(ctx)

	balance, err := s.wallet.Balance(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("check balance: %w", err)
	}
	if balance < bet {
		return nil, spin.ErrInsufficientBalance
	}

	outcome, err := s.engine.ProcessSpin(ctx, playerID, sessionID, bet, engine.Context{QuickSpin: quickSpin})
	if err != nil {
		return nil, fmt.Errorf("process spin: %w", err)
	}
	result := outcome.Spin

	if _, err := s.wallet.Debit(ctx, playerID, bet, result.ID); err != nil {
		return nil, fmt.Errorf("debit bet: %w", err)
	}
	if result.TotalWin > 0 {
		if _, err := s.wallet.Credit(ctx, playerID, result.TotalWin, result.ID); err != nil {
			log.Error().Err(err).Str("spin_id", result.ID.String()).Msg("failed to credit spin win")
		}
	}

	var triggeredSession *freespins.FreeSpinsSession
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.spinRepo.Create(txCtx, result); err != nil {
			return fmt.Errorf("persist spin: %w", err)
		}

		if !outcome.ScatterTrigger.Triggered {
			return nil
		}

		triggeredSession = &freespins.FreeSpinsSession{
			ID:                    uuid.New(),
			PlayerID:              playerID,
			SessionID:             sessionID,
			TriggeredBySpinID:     &result.ID,
			TriggerType:           freespins.TriggerScatter,
			ScatterCount:          outcome.ScatterTrigger.ScatterCount,
			TotalSpinsAwarded:     outcome.ScatterTrigger.SpinsAwarded,
			RemainingSpins:        outcome.ScatterTrigger.SpinsAwarded,
			LockedBetAmount:       bet,
			AccumulatedMultiplier: 1,
			IsActive:              true,
		}
		if err := s.freeSpinsRepo.Create(txCtx, triggeredSession); err != nil {
			return fmt.Errorf("create free spins session: %w", err)
		}
		if err := s.spinRepo.UpdateFreeSpinsSessionId(txCtx, result.ID, triggeredSession.ID); err != nil {
			return fmt.Errorf("link spin to free spins session: %w", err)
		}
		result.FreeSpinsSessionID = &triggeredSession.ID
		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("spin_id", result.ID.String()).Msg("failed to persist spin")
		return nil, err
	}

	log.Info().
		Str("spin_id", result.ID.String()).
		Float64("total_win", result.TotalWin).
		Bool("free_spins_triggered", outcome.ScatterTrigger.Triggered).
		Msg("spin executed")

	return result, nil
}

func (s *SpinService) executeFreeSpin(ctx context.Context, playerID, sessionID, freeSpinsSessionID uuid.UUID, quickSpin bool) (*spin.Spin, error) {
	log := s.logger.WithTraceContext(ctx)

	session, err := s.freeSpinsRepo.GetAvailableSessionByID(ctx, freeSpinsSessionID)
	if err != nil {
		return nil, freespins.ErrFreeSpinsNotFound
	}
	if session.PlayerID != playerID {
		return nil, freespins.ErrNotActive
	}
	if session.RemainingSpins <= 0 {
		return nil, freespins.ErrNoRemainingSpins
	}

	outcome, err := s.engine.ProcessSpin(ctx, playerID, sessionID, session.LockedBetAmount, engine.Context{
		FreeSpinsActive:       true,
		FreeSpinsSessionID:    &freeSpinsSessionID,
		AccumulatedMultiplier: session.AccumulatedMultiplier,
		QuickSpin:             quickSpin,
	})
	if err != nil {
		return nil, fmt.Errorf("process free spin: %w", err)
	}
	result := outcome.Spin

	if result.TotalWin > 0 {
		if _, err := s.wallet.Credit(ctx, playerID, result.TotalWin, result.ID); err != nil {
			log.Error().Err(err).Str("spin_id", result.ID.String()).Msg("failed to credit free spin win")
		}
	}

	if err := s.freeSpinsRepo.ExecuteSpinWithLock(ctx, session.ID, -1, session.LockVersion); err != nil {
		return nil, fmt.Errorf("consume free spin: %w", err)
	}

	if err := s.spinRepo.Create(ctx, result); err != nil {
		if rbErr := s.freeSpinsRepo.RollbackSpin(ctx, session.ID, 1); rbErr != nil {
			log.Error().Err(rbErr).Str("free_spins_session_id", session.ID.String()).Msg("failed to roll back free spin consumption")
		}
		return nil, fmt.Errorf("persist free spin: %w", err)
	}

	if err := s.freeSpinsRepo.AddTotalWon(ctx, session.ID, result.TotalWin); err != nil {
		log.Error().Err(err).Str("free_spins_session_id", session.ID.String()).Msg("failed to update total won")
	}

	if outcome.ScatterRetrigger.Retriggered {
		if err := s.freeSpinsRepo.AddSpins(ctx, session.ID, outcome.ScatterRetrigger.AdditionalSpins); err != nil {
			log.Error().Err(err).Str("free_spins_session_id", session.ID.String()).Msg("failed to add retrigger spins")
		}
	}

	updated, err := s.freeSpinsRepo.GetByID(ctx, session.ID)
	if err != nil {
		log.Error().Err(err).Str("free_spins_session_id", session.ID.String()).Msg("failed to reload free spins session")
		return result, nil
	}

	if result.AccumulatedMultiplier != updated.AccumulatedMultiplier {
		updated.AccumulatedMultiplier = result.AccumulatedMultiplier
		if err := s.freeSpinsRepo.Update(ctx, updated); err != nil {
			log.Error().Err(err).Str("free_spins_session_id", session.ID.String()).Msg("failed to persist accumulated multiplier")
		}
	}

	if updated.RemainingSpins <= 0 && !updated.IsCompleted {
		if err := s.freeSpinsRepo.CompleteSession(ctx, session.ID); err != nil {
			log.Error().Err(err).Str("free_spins_session_id", session.ID.String()).Msg("failed to complete free spins session")
		}
	}

	log.Info().
		Str("spin_id", result.ID.String()).
		Str("free_spins_session_id", session.ID.String()).
		Float64("total_win", result.TotalWin).
		Bool("retriggered", outcome.ScatterRetrigger.Retriggered).
		Int("remaining_spins", updated.RemainingSpins).
		Msg("free spin executed")

	return result, nil
}

// BuyFreeSpins debits the fixed buy-feature cost, opens a purchased
// free-spins session, and immediately runs its first spin.
func (s *SpinService) BuyFreeSpins(ctx context.Context, playerID, sessionID uuid.UUID, bet float64) (*spin.Spin, error) {
	log := s.logger.WithTraceContext(ctx)

	cost := gfreespins.BuyCost(bet)

	balance, err := s.wallet.Balance(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("check balance: %w", err)
	}
	if balance < cost {
		return nil, spin.ErrInsufficientBalance
	}

	if existing, _ := s.freeSpinsRepo.GetActiveByPlayer(ctx, playerID); existing != nil {
		return nil, freespins.ErrActiveFreeSpinsExists
	}

	refID := uuid.New()
	if _, err := s.wallet.Debit(ctx, playerID, cost, refID); err != nil {
		return nil, fmt.Errorf("debit buy cost: %w", err)
	}

	newSession := &freespins.FreeSpinsSession{
		ID:                    uuid.New(),
		PlayerID:              playerID,
		SessionID:             sessionID,
		TriggerType:           freespins.TriggerPurchase,
		TotalSpinsAwarded:     gfreespins.BuySpinsAward,
		RemainingSpins:        gfreespins.BuySpinsAward,
		LockedBetAmount:       bet,
		AccumulatedMultiplier: 1,
		IsActive:              true,
	}
	if err := s.freeSpinsRepo.Create(ctx, newSession); err != nil {
		return nil, fmt.Errorf("create purchased free spins session: %w", err)
	}

	log.Info().
		Str("free_spins_session_id", newSession.ID.String()).
		Float64("cost", cost).
		Msg("free spins purchased")

	return s.executeFreeSpin(ctx, playerID, sessionID, newSession.ID, false)
}

// GetSpinDetails retrieves a single sealed spin by ID.
func (s *SpinService) GetSpinDetails(ctx context.Context, spinID uuid.UUID) (*spin.Spin, error) {
	spinRecord, err := s.spinRepo.GetByID(ctx, spinID)
	if err != nil {
		s.logger.Error().Err(err).Str("spin_id", spinID.String()).Msg("failed to get spin details")
		return nil, spin.ErrSpinNotFound
	}
	return spinRecord, nil
}

// GetSpinHistory retrieves paginated spin history for a player.
func (s *SpinService) GetSpinHistory(ctx context.Context, playerID uuid.UUID, page, limit int) (*spin.SpinHistoryResult, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	total, err := s.spinRepo.Count(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("count spins: %w", err)
	}

	spins, err := s.spinRepo.GetByPlayer(ctx, playerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("get spin history: %w", err)
	}

	return &spin.SpinHistoryResult{
		Page:  page,
		Limit: limit,
		Total: total,
		Spins: spins,
	}, nil
}
