package wallet

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryWallet_SeedsStartingBalance(t *testing.T) {
	w := NewMemoryWallet()
	ctx := context.Background()
	playerID := uuid.New()

	balance, err := w.Balance(ctx, playerID)

	require.NoError(t, err)
	assert.Equal(t, StartingBalance, balance)
}

func TestMemoryWallet_DebitAndCreditSameRef(t *testing.T) {
	w := NewMemoryWallet()
	ctx := context.Background()
	playerID := uuid.New()
	refID := uuid.New()

	balance, err := w.Debit(ctx, playerID, 100, refID)
	require.NoError(t, err)
	assert.Equal(t, StartingBalance-100, balance)

	balance, err = w.Credit(ctx, playerID, 250, refID)
	require.NoError(t, err)
	assert.Equal(t, StartingBalance-100+250, balance)
}

func TestMemoryWallet_IdempotentPerDirection(t *testing.T) {
	w := NewMemoryWallet()
	ctx := context.Background()
	playerID := uuid.New()
	refID := uuid.New()

	_, err := w.Debit(ctx, playerID, 100, refID)
	require.NoError(t, err)

	balance, err := w.Debit(ctx, playerID, 100, refID)
	require.NoError(t, err)
	assert.Equal(t, StartingBalance-100, balance, "retried debit with the same ref must not double-charge")
}

func TestMemoryWallet_IndependentAccounts(t *testing.T) {
	w := NewMemoryWallet()
	ctx := context.Background()
	playerA := uuid.New()
	playerB := uuid.New()

	_, err := w.Debit(ctx, playerA, 500, uuid.New())
	require.NoError(t, err)

	balanceB, err := w.Balance(ctx, playerB)
	require.NoError(t, err)
	assert.Equal(t, StartingBalance, balanceB)
}
