package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/cascadeslots/engine/domain/freespins"
	"github.com/cascadeslots/engine/domain/spin"
	"github.com/cascadeslots/engine/internal/audit"
	"github.com/cascadeslots/engine/internal/game/engine"
	"github.com/cascadeslots/engine/internal/infra/repository"
	"github.com/cascadeslots/engine/internal/pkg/logger"
)

// MockWallet is a mock implementation of wallet.Wallet.
type MockWallet struct {
	mock.Mock
}

func (m *MockWallet) Balance(ctx context.Context, playerID uuid.UUID) (float64, error) {
	args := m.Called(ctx, playerID)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockWallet) Debit(ctx context.Context, playerID uuid.UUID, amount float64, refSpinID uuid.UUID) (float64, error) {
	args := m.Called(ctx, playerID, amount, refSpinID)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockWallet) Credit(ctx context.Context, playerID uuid.UUID, amount float64, refSpinID uuid.UUID) (float64, error) {
	args := m.Called(ctx, playerID, amount, refSpinID)
	return args.Get(0).(float64), args.Error(1)
}

func newTestTxManager(t *testing.T) *repository.TxManager {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	return repository.NewTxManager(db)
}

func setupSpinService(t *testing.T) (*SpinService, *MockSpinRepository, *MockFreeSpinsRepository, *MockWallet) {
	mockSpinRepo := new(MockSpinRepository)
	mockFreeSpinsRepo := new(MockFreeSpinsRepository)
	mockWallet := new(MockWallet)
	log := logger.New("info", "json")
	eng := engine.New(audit.NopSink{})
	txManager := newTestTxManager(t)

	svc := NewSpinService(mockSpinRepo, mockFreeSpinsRepo, mockWallet, eng, txManager, log).(*SpinService)
	return svc, mockSpinRepo, mockFreeSpinsRepo, mockWallet
}

// ============================================================================
// ExecuteSpin — base game
// ============================================================================

func TestExecuteSpin_BaseGame(t *testing.T) {
	ctx := context.Background()

	t.Run("returns insufficient balance before touching the engine", func(t *testing.T) {
		svc, mockSpinRepo, _, mockWallet := setupSpinService(t)

		playerID := uuid.New()
		sessionID := uuid.New()

		mockWallet.On("Balance", ctx, playerID).Return(10.0, nil)

		result, err := svc.ExecuteSpin(ctx, playerID, sessionID, 100.0, nil, false)

		assert.ErrorIs(t, err, spin.ErrInsufficientBalance)
		assert.Nil(t, result)
		mockWallet.AssertExpectations(t)
		mockSpinRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("debits the bet, persists the spin, and returns it", func(t *testing.T) {
		svc, mockSpinRepo, mockFreeSpinsRepo, mockWallet := setupSpinService(t)

		playerID := uuid.New()
		sessionID := uuid.New()
		bet := 20.0

		mockWallet.On("Balance", ctx, playerID).Return(1000.0, nil)
		mockWallet.On("Debit", ctx, playerID, bet, mock.AnythingOfType("uuid.UUID")).Return(980.0, nil)
		mockWallet.On("Credit", ctx, playerID, mock.AnythingOfType("float64"), mock.AnythingOfType("uuid.UUID")).Return(0.0, nil).Maybe()
		mockSpinRepo.On("Create", mock.Anything, mock.AnythingOfType("*spin.Spin")).Return(nil)
		mockFreeSpinsRepo.On("Create", mock.Anything, mock.AnythingOfType("*freespins.FreeSpinsSession")).Return(nil).Maybe()
		mockSpinRepo.On("UpdateFreeSpinsSessionId", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()

		result, err := svc.ExecuteSpin(ctx, playerID, sessionID, bet, nil, false)

		require.NoError(t, err)
		require.NotNil(t, result)
		assert.Equal(t, playerID, result.PlayerID)
		assert.Equal(t, sessionID, result.SessionID)
		assert.Equal(t, bet, result.Bet)
		assert.Equal(t, spin.ModeBase, result.GameMode)
		assert.NotEmpty(t, result.ValidationHash)

		mockWallet.AssertCalled(t, "Debit", ctx, playerID, bet, result.ID)
	})

	t.Run("rejects a bet the engine considers out of bounds", func(t *testing.T) {
		svc, _, _, mockWallet := setupSpinService(t)

		playerID := uuid.New()
		sessionID := uuid.New()

		mockWallet.On("Balance", ctx, playerID).Return(100000.0, nil)

		result, err := svc.ExecuteSpin(ctx, playerID, sessionID, 0.01, nil, false)

		assert.Error(t, err)
		assert.Nil(t, result)
	})
}

// ============================================================================
// ExecuteSpin — free-spins branch
// ============================================================================

func TestExecuteSpin_FreeSpins(t *testing.T) {
	ctx := context.Background()

	t.Run("returns not found when the session isn't available", func(t *testing.T) {
		svc, _, mockFreeSpinsRepo, _ := setupSpinService(t)

		playerID := uuid.New()
		sessionID := uuid.New()
		fsID := uuid.New()

		mockFreeSpinsRepo.On("GetAvailableSessionByID", ctx, fsID).Return(nil, freespins.ErrNotFound)

		result, err := svc.ExecuteSpin(ctx, playerID, sessionID, 20.0, &fsID, false)

		assert.ErrorIs(t, err, freespins.ErrFreeSpinsNotFound)
		assert.Nil(t, result)
	})

	t.Run("rejects a session owned by a different player", func(t *testing.T) {
		svc, _, mockFreeSpinsRepo, _ := setupSpinService(t)

		playerID := uuid.New()
		otherPlayerID := uuid.New()
		sessionID := uuid.New()
		fsID := uuid.New()

		mockFreeSpinsRepo.On("GetAvailableSessionByID", ctx, fsID).Return(&freespins.FreeSpinsSession{
			ID:                    fsID,
			PlayerID:              otherPlayerID,
			RemainingSpins:        5,
			LockedBetAmount:       20.0,
			AccumulatedMultiplier: 1,
			IsActive:              true,
		}, nil)

		result, err := svc.ExecuteSpin(ctx, playerID, sessionID, 20.0, &fsID, false)

		assert.ErrorIs(t, err, freespins.ErrNotActive)
		assert.Nil(t, result)
	})

	t.Run("runs, persists, and accounts for a free spin", func(t *testing.T) {
		svc, mockSpinRepo, mockFreeSpinsRepo, mockWallet := setupSpinService(t)

		playerID := uuid.New()
		sessionID := uuid.New()
		fsID := uuid.New()

		available := &freespins.FreeSpinsSession{
			ID:                    fsID,
			PlayerID:              playerID,
			SessionID:             sessionID,
			RemainingSpins:        5,
			LockedBetAmount:       20.0,
			AccumulatedMultiplier: 1,
			LockVersion:           2,
			IsActive:              true,
		}
		reloaded := *available
		reloaded.RemainingSpins = 4
		reloaded.SpinsCompleted = 1
		reloaded.LockVersion = 3

		mockFreeSpinsRepo.On("GetAvailableSessionByID", ctx, fsID).Return(available, nil)
		mockWallet.On("Credit", ctx, playerID, mock.AnythingOfType("float64"), mock.AnythingOfType("uuid.UUID")).Return(0.0, nil).Maybe()
		mockFreeSpinsRepo.On("ExecuteSpinWithLock", ctx, fsID, -1, 2).Return(nil)
		mockSpinRepo.On("Create", ctx, mock.AnythingOfType("*spin.Spin")).Return(nil)
		mockFreeSpinsRepo.On("AddTotalWon", ctx, fsID, mock.AnythingOfType("float64")).Return(nil)
		mockFreeSpinsRepo.On("AddSpins", ctx, fsID, mock.AnythingOfType("int")).Return(nil).Maybe()
		mockFreeSpinsRepo.On("GetByID", ctx, fsID).Return(&reloaded, nil)
		mockFreeSpinsRepo.On("Update", ctx, mock.AnythingOfType("*freespins.FreeSpinsSession")).Return(nil).Maybe()
		mockFreeSpinsRepo.On("CompleteSession", ctx, fsID).Return(nil).Maybe()

		result, err := svc.ExecuteSpin(ctx, playerID, sessionID, 20.0, &fsID, false)

		require.NoError(t, err)
		require.NotNil(t, result)
		assert.Equal(t, spin.ModeFreeSpins, result.GameMode)
		assert.Equal(t, &fsID, result.FreeSpinsSessionID)

		mockFreeSpinsRepo.AssertCalled(t, "ExecuteSpinWithLock", ctx, fsID, -1, 2)
	})

	t.Run("rolls back the free spin when persistence fails", func(t *testing.T) {
		svc, mockSpinRepo, mockFreeSpinsRepo, mockWallet := setupSpinService(t)

		playerID := uuid.New()
		sessionID := uuid.New()
		fsID := uuid.New()

		available := &freespins.FreeSpinsSession{
			ID:                    fsID,
			PlayerID:              playerID,
			SessionID:             sessionID,
			RemainingSpins:        5,
			LockedBetAmount:       20.0,
			AccumulatedMultiplier: 1,
			LockVersion:           0,
			IsActive:              true,
		}

		mockFreeSpinsRepo.On("GetAvailableSessionByID", ctx, fsID).Return(available, nil)
		mockWallet.On("Credit", ctx, playerID, mock.AnythingOfType("float64"), mock.AnythingOfType("uuid.UUID")).Return(0.0, nil).Maybe()
		mockFreeSpinsRepo.On("ExecuteSpinWithLock", ctx, fsID, -1, 0).Return(nil)
		mockSpinRepo.On("Create", ctx, mock.AnythingOfType("*spin.Spin")).Return(errors.New("database error"))
		mockFreeSpinsRepo.On("RollbackSpin", ctx, fsID, 1).Return(nil)

		result, err := svc.ExecuteSpin(ctx, playerID, sessionID, 20.0, &fsID, false)

		assert.Error(t, err)
		assert.Nil(t, result)
		mockFreeSpinsRepo.AssertCalled(t, "RollbackSpin", ctx, fsID, 1)
	})
}

// ============================================================================
// BuyFreeSpins
// ============================================================================

func TestBuyFreeSpins(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects an insufficient balance for the fixed buy cost", func(t *testing.T) {
		svc, _, _, mockWallet := setupSpinService(t)

		playerID := uuid.New()
		sessionID := uuid.New()
		bet := 20.0

		mockWallet.On("Balance", ctx, playerID).Return(100.0, nil) // cost is bet*100 = 2000

		result, err := svc.BuyFreeSpins(ctx, playerID, sessionID, bet)

		assert.ErrorIs(t, err, spin.ErrInsufficientBalance)
		assert.Nil(t, result)
	})

	t.Run("rejects a purchase while a session is already active", func(t *testing.T) {
		svc, _, mockFreeSpinsRepo, mockWallet := setupSpinService(t)

		playerID := uuid.New()
		sessionID := uuid.New()
		bet := 20.0

		mockWallet.On("Balance", ctx, playerID).Return(100000.0, nil)
		mockFreeSpinsRepo.On("GetActiveByPlayer", ctx, playerID).Return(&freespins.FreeSpinsSession{ID: uuid.New(), IsActive: true}, nil)

		result, err := svc.BuyFreeSpins(ctx, playerID, sessionID, bet)

		assert.ErrorIs(t, err, freespins.ErrActiveFreeSpinsExists)
		assert.Nil(t, result)
	})
}

// ============================================================================
// GetSpinDetails
// ============================================================================

func TestGetSpinDetails(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the spin on success", func(t *testing.T) {
		svc, mockSpinRepo, _, _ := setupSpinService(t)

		spinID := uuid.New()
		mockSpin := &spin.Spin{ID: spinID, Bet: 100.0, TotalWin: 500.0}

		mockSpinRepo.On("GetByID", ctx, spinID).Return(mockSpin, nil)

		result, err := svc.GetSpinDetails(ctx, spinID)

		require.NoError(t, err)
		assert.Equal(t, spinID, result.ID)
		assert.Equal(t, 500.0, result.TotalWin)
	})

	t.Run("maps a repository miss to ErrSpinNotFound", func(t *testing.T) {
		svc, mockSpinRepo, _, _ := setupSpinService(t)

		spinID := uuid.New()
		mockSpinRepo.On("GetByID", ctx, spinID).Return(nil, errors.New("not found"))

		result, err := svc.GetSpinDetails(ctx, spinID)

		assert.ErrorIs(t, err, spin.ErrSpinNotFound)
		assert.Nil(t, result)
	})
}

// ============================================================================
// GetSpinHistory
// ============================================================================

func TestGetSpinHistory(t *testing.T) {
	ctx := context.Background()

	t.Run("paginates with defaults for invalid input", func(t *testing.T) {
		svc, mockSpinRepo, _, _ := setupSpinService(t)

		playerID := uuid.New()

		mockSpinRepo.On("Count", ctx, playerID).Return(int64(10), nil)
		mockSpinRepo.On("GetByPlayer", ctx, playerID, 20, 0).Return([]*spin.Spin{}, nil)

		result, err := svc.GetSpinHistory(ctx, playerID, 0, 0)

		require.NoError(t, err)
		assert.Equal(t, 1, result.Page)
		assert.Equal(t, 20, result.Limit)
	})

	t.Run("caps an oversized limit", func(t *testing.T) {
		svc, mockSpinRepo, _, _ := setupSpinService(t)

		playerID := uuid.New()

		mockSpinRepo.On("Count", ctx, playerID).Return(int64(10), nil)
		mockSpinRepo.On("GetByPlayer", ctx, playerID, 20, 0).Return([]*spin.Spin{}, nil)

		result, err := svc.GetSpinHistory(ctx, playerID, 1, 500)

		require.NoError(t, err)
		assert.Equal(t, 20, result.Limit)
	})

	t.Run("computes the offset for page 3", func(t *testing.T) {
		svc, mockSpinRepo, _, _ := setupSpinService(t)

		playerID := uuid.New()

		mockSpinRepo.On("Count", ctx, playerID).Return(int64(50), nil)
		mockSpinRepo.On("GetByPlayer", ctx, playerID, 15, 30).Return([]*spin.Spin{}, nil)

		result, err := svc.GetSpinHistory(ctx, playerID, 3, 15)

		require.NoError(t, err)
		assert.Equal(t, int64(50), result.Total)
	})

	t.Run("propagates a count error", func(t *testing.T) {
		svc, mockSpinRepo, _, _ := setupSpinService(t)

		playerID := uuid.New()
		mockSpinRepo.On("Count", ctx, playerID).Return(int64(0), errors.New("database error"))

		result, err := svc.GetSpinHistory(ctx, playerID, 1, 20)

		assert.Error(t, err)
		assert.Nil(t, result)
	})
}
