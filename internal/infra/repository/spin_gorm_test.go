package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cascadeslots/engine/domain/spin"
	"github.com/cascadeslots/engine/internal/game/cascade"
	"github.com/cascadeslots/engine/internal/game/grid"
	"github.com/cascadeslots/engine/internal/game/symbols"
	"github.com/cascadeslots/engine/internal/game/wins"
)

// setupSpinTestDB creates an in-memory SQLite database for testing spins
func setupSpinTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "Failed to connect to test database")

	err = db.Exec(`
		CREATE TABLE spins (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			player_id TEXT NOT NULL,
			bet REAL NOT NULL,
			game_mode TEXT NOT NULL,
			rng_seed TEXT NOT NULL UNIQUE,
			hash_salt TEXT NOT NULL,
			initial_grid TEXT NOT NULL,
			cascade_steps TEXT,
			final_grid TEXT NOT NULL,
			base_win REAL NOT NULL,
			accumulated_multiplier REAL NOT NULL DEFAULT 1,
			total_win REAL NOT NULL,
			bonus TEXT,
			validation_hash TEXT NOT NULL,
			free_spins_session_id TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`).Error
	require.NoError(t, err, "Failed to create spins table")

	db.Exec("CREATE INDEX idx_spins_session_id ON spins(session_id)")
	db.Exec("CREATE INDEX idx_spins_player_id ON spins(player_id)")
	db.Exec("CREATE INDEX idx_spins_free_spins_session_id ON spins(free_spins_session_id)")
	db.Exec("CREATE INDEX idx_spins_created_at ON spins(created_at)")

	return db
}

// settledGrid builds a deterministic, fully-settled grid for fixtures.
func settledGrid() *grid.Grid {
	g := grid.Empty()
	cycle := []symbols.Symbol{symbols.Power, symbols.Space, symbols.Reality, symbols.Thanos, symbols.Witch}
	for col := 0; col < grid.Cols; col++ {
		for row := 0; row < grid.Rows; row++ {
			g.Set(col, row, cycle[(col+row)%len(cycle)])
		}
	}
	return g
}

// createTestSpin creates a test spin with default values
func createTestSpin(playerID, sessionID uuid.UUID) *spin.Spin {
	g := settledGrid()

	return &spin.Spin{
		ID:                    uuid.New(),
		SessionID:             sessionID,
		PlayerID:              playerID,
		Bet:                   100.0,
		GameMode:              spin.ModeBase,
		RngSeed:               uuid.NewString(),
		HashSalt:              uuid.NewString(),
		InitialGrid:           spin.JSONGrid{Grid: g},
		CascadeSteps:          spin.JSONSteps{},
		FinalGrid:             spin.JSONGrid{Grid: g},
		BaseWin:               0.0,
		AccumulatedMultiplier: 1.0,
		TotalWin:              0.0,
		Bonus:                 spin.JSONBonus{},
		ValidationHash:        uuid.NewString(),
		FreeSpinsSessionID:    nil,
		CreatedAt:             time.Now().UTC(),
	}
}

// oneStepCascade returns a single cascade step fixture for JSON round-trip tests.
func oneStepCascade(before, after *grid.Grid) []*cascade.Step {
	return []*cascade.Step{
		{
			Index:       0,
			GridBefore:  before,
			GridAfter:   after,
			Matches:     []wins.Cluster{},
			ClusterWins: []wins.ClusterPayout{},
			StepWin:     0,
		},
	}
}

// ============================================================================
// Create TESTS
// ============================================================================

func TestSpinGormRepository_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("should create spin successfully", func(t *testing.T) {
		db := setupSpinTestDB(t)
		repo := NewSpinGormRepository(db)

		playerID := uuid.New()
		sessionID := uuid.New()
		s := createTestSpin(playerID, sessionID)

		err := repo.Create(ctx, s)

		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, s.ID)

		retrieved, err := repo.GetByID(ctx, s.ID)
		require.NoError(t, err)
		assert.Equal(t, s.PlayerID, retrieved.PlayerID)
		assert.Equal(t, s.SessionID, retrieved.SessionID)
		assert.Equal(t, s.Bet, retrieved.Bet)
		assert.Equal(t, s.TotalWin, retrieved.TotalWin)
	})

	t.Run("should store initial and final grid as JSON", func(t *testing.T) {
		db := setupSpinTestDB(t)
		repo := NewSpinGormRepository(db)

		playerID := uuid.New()
		sessionID := uuid.New()
		s := createTestSpin(playerID, sessionID)

		err := repo.Create(ctx, s)
		require.NoError(t, err)

		retrieved, err := repo.GetByID(ctx, s.ID)
		require.NoError(t, err)
		require.NotNil(t, retrieved.InitialGrid.Grid)
		require.NotNil(t, retrieved.FinalGrid.Grid)
		assert.Equal(t, s.InitialGrid.Grid.Cells, retrieved.InitialGrid.Grid.Cells)
	})

	t.Run("should store cascade steps as JSON", func(t *testing.T) {
		db := setupSpinTestDB(t)
		repo := NewSpinGormRepository(db)

		playerID := uuid.New()
		sessionID := uuid.New()
		s := createTestSpin(playerID, sessionID)

		before := settledGrid()
		after := before.Clone()
		s.CascadeSteps = spin.JSONSteps{Steps: oneStepCascade(before, after)}

		err := repo.Create(ctx, s)
		require.NoError(t, err)

		retrieved, err := repo.GetByID(ctx, s.ID)
		require.NoError(t, err)
		assert.Len(t, retrieved.CascadeSteps.Steps, 1)
		assert.Equal(t, 0, retrieved.CascadeSteps.Steps[0].Index)
	})

	t.Run("should handle free spin attributes", func(t *testing.T) {
		db := setupSpinTestDB(t)
		repo := NewSpinGormRepository(db)

		playerID := uuid.New()
		sessionID := uuid.New()
		freeSpinsSessionID := uuid.New()
		s := createTestSpin(playerID, sessionID)
		s.GameMode = spin.ModeFreeSpins
		s.FreeSpinsSessionID = &freeSpinsSessionID

		err := repo.Create(ctx, s)
		require.NoError(t, err)

		retrieved, err := repo.GetByID(ctx, s.ID)
		require.NoError(t, err)
		assert.Equal(t, spin.ModeFreeSpins, retrieved.GameMode)
		require.NotNil(t, retrieved.FreeSpinsSessionID)
		assert.Equal(t, freeSpinsSessionID, *retrieved.FreeSpinsSessionID)
	})
}

// ============================================================================
// GetByID TESTS
// ============================================================================

func TestSpinGormRepository_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("should get spin by ID successfully", func(t *testing.T) {
		db := setupSpinTestDB(t)
		repo := NewSpinGormRepository(db)

		playerID := uuid.New()
		sessionID := uuid.New()
		s := createTestSpin(playerID, sessionID)
		err := repo.Create(ctx, s)
		require.NoError(t, err)

		retrieved, err := repo.GetByID(ctx, s.ID)

		require.NoError(t, err)
		assert.NotNil(t, retrieved)
		assert.Equal(t, s.ID, retrieved.ID)
		assert.Equal(t, s.PlayerID, retrieved.PlayerID)
		assert.Equal(t, s.SessionID, retrieved.SessionID)
	})

	t.Run("should return error for non-existent ID", func(t *testing.T) {
		db := setupSpinTestDB(t)
		repo := NewSpinGormRepository(db)

		nonExistentID := uuid.New()

		retrieved, err := repo.GetByID(ctx, nonExistentID)

		assert.Error(t, err)
		assert.Nil(t, retrieved)
		assert.Equal(t, spin.ErrSpinNotFound, err)
	})
}

// ============================================================================
// GetBySession TESTS
// ============================================================================

func TestSpinGormRepository_GetBySession(t *testing.T) {
	ctx := context.Background()

	t.Run("should get spins by session successfully", func(t *testing.T) {
		db := setupSpinTestDB(t)
		repo := NewSpinGormRepository(db)

		playerID := uuid.New()
		sessionID := uuid.New()

		s1 := createTestSpin(playerID, sessionID)
		err := repo.Create(ctx, s1)
		require.NoError(t, err)

		time.Sleep(10 * time.Millisecond)

		s2 := createTestSpin(playerID, sessionID)
		err = repo.Create(ctx, s2)
		require.NoError(t, err)

		spins, err := repo.GetBySession(ctx, sessionID)

		require.NoError(t, err)
		assert.Len(t, spins, 2)
		assert.Equal(t, s1.ID, spins[0].ID)
		assert.Equal(t, s2.ID, spins[1].ID)
	})

	t.Run("should return empty list when no spins", func(t *testing.T) {
		db := setupSpinTestDB(t)
		repo := NewSpinGormRepository(db)

		sessionID := uuid.New()

		spins, err := repo.GetBySession(ctx, sessionID)

		require.NoError(t, err)
		assert.NotNil(t, spins)
		assert.Len(t, spins, 0)
	})

	t.Run("should only return spins for specified session", func(t *testing.T) {
		db := setupSpinTestDB(t)
		repo := NewSpinGormRepository(db)

		playerID := uuid.New()
		session1ID := uuid.New()
		session2ID := uuid.New()

		s1 := createTestSpin(playerID, session1ID)
		err := repo.Create(ctx, s1)
		require.NoError(t, err)

		s2 := createTestSpin(playerID, session2ID)
		err = repo.Create(ctx, s2)
		require.NoError(t, err)

		spins, err := repo.GetBySession(ctx, session1ID)

		require.NoError(t, err)
		assert.Len(t, spins, 1)
		assert.Equal(t, s1.ID, spins[0].ID)
	})
}

// ============================================================================
// GetByPlayer TESTS
// ============================================================================

func TestSpinGormRepository_GetByPlayer(t *testing.T) {
	ctx := context.Background()

	t.Run("should get spins by player successfully", func(t *testing.T) {
		db := setupSpinTestDB(t)
		repo := NewSpinGormRepository(db)

		playerID := uuid.New()
		sessionID := uuid.New()

		s1 := createTestSpin(playerID, sessionID)
		err := repo.Create(ctx, s1)
		require.NoError(t, err)

		time.Sleep(10 * time.Millisecond)

		s2 := createTestSpin(playerID, sessionID)
		err = repo.Create(ctx, s2)
		require.NoError(t, err)

		spins, err := repo.GetByPlayer(ctx, playerID, 10, 0)

		require.NoError(t, err)
		assert.Len(t, spins, 2)
		assert.Equal(t, s2.ID, spins[0].ID)
		assert.Equal(t, s1.ID, spins[1].ID)
	})

	t.Run("should paginate results", func(t *testing.T) {
		db := setupSpinTestDB(t)
		repo := NewSpinGormRepository(db)

		playerID := uuid.New()
		sessionID := uuid.New()

		for i := 0; i < 5; i++ {
			s := createTestSpin(playerID, sessionID)
			err := repo.Create(ctx, s)
			require.NoError(t, err)
			time.Sleep(5 * time.Millisecond)
		}

		page1, err := repo.GetByPlayer(ctx, playerID, 2, 0)
		require.NoError(t, err)
		assert.Len(t, page1, 2)

		page2, err := repo.GetByPlayer(ctx, playerID, 2, 2)
		require.NoError(t, err)
		assert.Len(t, page2, 2)

		assert.NotEqual(t, page1[0].ID, page2[0].ID)
	})
}

// ============================================================================
// GetByPlayerInTimeRange TESTS
// ============================================================================

func TestSpinGormRepository_GetByPlayerInTimeRange(t *testing.T) {
	ctx := context.Background()

	t.Run("should get spins in time range successfully", func(t *testing.T) {
		db := setupSpinTestDB(t)
		repo := NewSpinGormRepository(db)

		playerID := uuid.New()
		sessionID := uuid.New()

		now := time.Now().UTC()
		start := now.Add(-1 * time.Hour)
		end := now.Add(1 * time.Hour)

		s := createTestSpin(playerID, sessionID)
		s.CreatedAt = now
		err := repo.Create(ctx, s)
		require.NoError(t, err)

		spins, err := repo.GetByPlayerInTimeRange(ctx, playerID, start, end, 10, 0)

		require.NoError(t, err)
		assert.Len(t, spins, 1)
		assert.Equal(t, s.ID, spins[0].ID)
	})

	t.Run("should exclude spins outside time range", func(t *testing.T) {
		db := setupSpinTestDB(t)
		repo := NewSpinGormRepository(db)

		playerID := uuid.New()
		sessionID := uuid.New()

		now := time.Now().UTC()
		start := now.Add(-2 * time.Hour)
		end := now.Add(-1 * time.Hour)

		s := createTestSpin(playerID, sessionID)
		s.CreatedAt = now
		err := repo.Create(ctx, s)
		require.NoError(t, err)

		spins, err := repo.GetByPlayerInTimeRange(ctx, playerID, start, end, 10, 0)

		require.NoError(t, err)
		assert.Len(t, spins, 0)
	})
}

// ============================================================================
// GetByFreeSpinsSession TESTS
// ============================================================================

func TestSpinGormRepository_GetByFreeSpinsSession(t *testing.T) {
	ctx := context.Background()

	t.Run("should get spins by free spins session successfully", func(t *testing.T) {
		db := setupSpinTestDB(t)
		repo := NewSpinGormRepository(db)

		playerID := uuid.New()
		sessionID := uuid.New()
		freeSpinsSessionID := uuid.New()

		s1 := createTestSpin(playerID, sessionID)
		s1.GameMode = spin.ModeFreeSpins
		s1.FreeSpinsSessionID = &freeSpinsSessionID
		err := repo.Create(ctx, s1)
		require.NoError(t, err)

		time.Sleep(10 * time.Millisecond)

		s2 := createTestSpin(playerID, sessionID)
		s2.GameMode = spin.ModeFreeSpins
		s2.FreeSpinsSessionID = &freeSpinsSessionID
		err = repo.Create(ctx, s2)
		require.NoError(t, err)

		spins, err := repo.GetByFreeSpinsSession(ctx, freeSpinsSessionID)

		require.NoError(t, err)
		assert.Len(t, spins, 2)
		assert.Equal(t, s1.ID, spins[0].ID)
		assert.Equal(t, s2.ID, spins[1].ID)
	})

	t.Run("should return empty list when no free spins", func(t *testing.T) {
		db := setupSpinTestDB(t)
		repo := NewSpinGormRepository(db)

		freeSpinsSessionID := uuid.New()

		spins, err := repo.GetByFreeSpinsSession(ctx, freeSpinsSessionID)

		require.NoError(t, err)
		assert.NotNil(t, spins)
		assert.Len(t, spins, 0)
	})
}

// ============================================================================
// Count TESTS
// ============================================================================

func TestSpinGormRepository_Count(t *testing.T) {
	ctx := context.Background()

	t.Run("should count spins for player successfully", func(t *testing.T) {
		db := setupSpinTestDB(t)
		repo := NewSpinGormRepository(db)

		playerID := uuid.New()
		sessionID := uuid.New()

		for i := 0; i < 5; i++ {
			s := createTestSpin(playerID, sessionID)
			err := repo.Create(ctx, s)
			require.NoError(t, err)
		}

		count, err := repo.Count(ctx, playerID)

		require.NoError(t, err)
		assert.Equal(t, int64(5), count)
	})

	t.Run("should return zero for player with no spins", func(t *testing.T) {
		db := setupSpinTestDB(t)
		repo := NewSpinGormRepository(db)

		playerID := uuid.New()

		count, err := repo.Count(ctx, playerID)

		require.NoError(t, err)
		assert.Equal(t, int64(0), count)
	})

	t.Run("should only count spins for specified player", func(t *testing.T) {
		db := setupSpinTestDB(t)
		repo := NewSpinGormRepository(db)

		player1ID := uuid.New()
		player2ID := uuid.New()
		sessionID := uuid.New()

		for i := 0; i < 3; i++ {
			s := createTestSpin(player1ID, sessionID)
			err := repo.Create(ctx, s)
			require.NoError(t, err)
		}

		for i := 0; i < 2; i++ {
			s := createTestSpin(player2ID, sessionID)
			err := repo.Create(ctx, s)
			require.NoError(t, err)
		}

		count, err := repo.Count(ctx, player1ID)

		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
	})
}

// ============================================================================
// CountInTimeRange TESTS
// ============================================================================

func TestSpinGormRepository_CountInTimeRange(t *testing.T) {
	ctx := context.Background()

	t.Run("should count spins in time range successfully", func(t *testing.T) {
		db := setupSpinTestDB(t)
		repo := NewSpinGormRepository(db)

		playerID := uuid.New()
		sessionID := uuid.New()

		now := time.Now().UTC()
		start := now.Add(-1 * time.Hour)
		end := now.Add(1 * time.Hour)

		for i := 0; i < 3; i++ {
			s := createTestSpin(playerID, sessionID)
			s.CreatedAt = now
			err := repo.Create(ctx, s)
			require.NoError(t, err)
		}

		count, err := repo.CountInTimeRange(ctx, playerID, start, end)

		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
	})

	t.Run("should exclude spins outside time range", func(t *testing.T) {
		db := setupSpinTestDB(t)
		repo := NewSpinGormRepository(db)

		playerID := uuid.New()
		sessionID := uuid.New()

		now := time.Now().UTC()
		start := now.Add(-2 * time.Hour)
		end := now.Add(-1 * time.Hour)

		for i := 0; i < 3; i++ {
			s := createTestSpin(playerID, sessionID)
			s.CreatedAt = now
			err := repo.Create(ctx, s)
			require.NoError(t, err)
		}

		count, err := repo.CountInTimeRange(ctx, playerID, start, end)

		require.NoError(t, err)
		assert.Equal(t, int64(0), count)
	})

	t.Run("should handle boundary conditions", func(t *testing.T) {
		db := setupSpinTestDB(t)
		repo := NewSpinGormRepository(db)

		playerID := uuid.New()
		sessionID := uuid.New()

		now := time.Now().UTC()

		s1 := createTestSpin(playerID, sessionID)
		s1.CreatedAt = now
		err := repo.Create(ctx, s1)
		require.NoError(t, err)

		s2 := createTestSpin(playerID, sessionID)
		s2.CreatedAt = now.Add(1 * time.Hour)
		err = repo.Create(ctx, s2)
		require.NoError(t, err)

		count, err := repo.CountInTimeRange(ctx, playerID, now, now.Add(1*time.Hour))

		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})
}
