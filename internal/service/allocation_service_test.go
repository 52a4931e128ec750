package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/apperrors"
	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/repository"
	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/testutil"
)

func newTestServices(t *testing.T) (*sql.DB, *AllocationService, *HoldingsService) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	log := zerolog.Nop()

	tradeRepo := repository.NewTradeRepository(db)
	stockRepo := repository.NewStockRepository(db)
	accountRepo := repository.NewAccountRepository(db)
	actionRepo := repository.NewCorporateActionRepository(db)
	allocationRepo := repository.NewAllocationRepository(db)
	priceRepo := repository.NewPriceRepository(db)
	ownerRepo := repository.NewOwnerRepository(db)
	goalRepo := repository.NewGoalRepository(db)

	holdings := NewHoldingsService(tradeRepo, stockRepo, accountRepo, actionRepo, allocationRepo, priceRepo, log)
	allocations := NewAllocationService(allocationRepo, ownerRepo, goalRepo, stockRepo, accountRepo, tradeRepo, holdings, log)
	return db, allocations, holdings
}

func TestCreateAllocation(t *testing.T) {
	ctx := context.Background()

	t.Run("freezes buy price from funding lots", func(t *testing.T) {
		db, svc, _ := newTestServices(t)
		stock := testutil.NewStock().Build(t, db)
		account := testutil.NewAccount().Build(t, db)
		owner := testutil.NewOwner().Build(t, db)
		goal := testutil.NewGoal().Build(t, db)

		testutil.NewTrade(stock.ID, account.ID).WithDate("2024-01-10").WithQuantity(100).WithPrice("50").Build(t, db)
		testutil.NewTrade(stock.ID, account.ID).WithDate("2024-02-10").WithQuantity(50).WithPrice("80").Build(t, db)

		// First allocation takes the oldest lot's units.
		first, err := svc.CreateAllocation(ctx, NewAllocationInput{
			StockID: stock.ID, AccountID: account.ID,
			OwnerID: owner.ID, GoalID: goal.ID, Quantity: 100,
		})
		require.NoError(t, err)
		assert.Equal(t, "50", first.BuyPrice.String())
		assert.Equal(t, "2024-01-10", first.BuyDate.Format("2006-01-02"))

		// Second allocation skips the claimed units and lands on the next lot.
		second, err := svc.CreateAllocation(ctx, NewAllocationInput{
			StockID: stock.ID, AccountID: account.ID,
			OwnerID: owner.ID, GoalID: goal.ID, Quantity: 50,
		})
		require.NoError(t, err)
		assert.Equal(t, "80", second.BuyPrice.String())
		assert.Equal(t, "2024-02-10", second.BuyDate.Format("2006-01-02"))
	})

	t.Run("spanning lots uses weighted average price", func(t *testing.T) {
		db, svc, _ := newTestServices(t)
		stock := testutil.NewStock().Build(t, db)
		account := testutil.NewAccount().Build(t, db)
		owner := testutil.NewOwner().Build(t, db)
		goal := testutil.NewGoal().Build(t, db)

		testutil.NewTrade(stock.ID, account.ID).WithDate("2024-01-10").WithQuantity(100).WithPrice("50").Build(t, db)
		testutil.NewTrade(stock.ID, account.ID).WithDate("2024-02-10").WithQuantity(100).WithPrice("70").Build(t, db)

		allocation, err := svc.CreateAllocation(ctx, NewAllocationInput{
			StockID: stock.ID, AccountID: account.ID,
			OwnerID: owner.ID, GoalID: goal.ID, Quantity: 150,
		})
		require.NoError(t, err)

		// 100 @ 50 + 50 @ 70 = 8500 over 150 units
		assert.Equal(t, "56.6667", allocation.BuyPrice.String())
		assert.Equal(t, "2024-01-10", allocation.BuyDate.Format("2006-01-02"))
	})

	t.Run("rejects more units than held", func(t *testing.T) {
		db, svc, _ := newTestServices(t)
		stock := testutil.NewStock().Build(t, db)
		account := testutil.NewAccount().Build(t, db)
		owner := testutil.NewOwner().Build(t, db)
		goal := testutil.NewGoal().Build(t, db)

		testutil.NewTrade(stock.ID, account.ID).WithQuantity(100).Build(t, db)

		_, err := svc.CreateAllocation(ctx, NewAllocationInput{
			StockID: stock.ID, AccountID: account.ID,
			OwnerID: owner.ID, GoalID: goal.ID, Quantity: 101,
		})
		assert.ErrorIs(t, err, apperrors.ErrInsufficientUnits)
	})

	t.Run("invalid owner reported before invalid quantity", func(t *testing.T) {
		db, svc, _ := newTestServices(t)
		stock := testutil.NewStock().Build(t, db)
		account := testutil.NewAccount().Build(t, db)
		goal := testutil.NewGoal().Build(t, db)

		testutil.NewTrade(stock.ID, account.ID).WithQuantity(10).Build(t, db)

		_, err := svc.CreateAllocation(ctx, NewAllocationInput{
			StockID: stock.ID, AccountID: account.ID,
			OwnerID: testutil.MakeID(), GoalID: goal.ID, Quantity: 9999,
		})
		assert.ErrorIs(t, err, apperrors.ErrInvalidOwner)
	})

	t.Run("invalid goal rejected", func(t *testing.T) {
		db, svc, _ := newTestServices(t)
		stock := testutil.NewStock().Build(t, db)
		account := testutil.NewAccount().Build(t, db)
		owner := testutil.NewOwner().Build(t, db)

		testutil.NewTrade(stock.ID, account.ID).WithQuantity(10).Build(t, db)

		_, err := svc.CreateAllocation(ctx, NewAllocationInput{
			StockID: stock.ID, AccountID: account.ID,
			OwnerID: owner.ID, GoalID: testutil.MakeID(), Quantity: 5,
		})
		assert.ErrorIs(t, err, apperrors.ErrInvalidGoal)
	})
}

func TestUpdateAllocation(t *testing.T) {
	ctx := context.Background()

	t.Run("quantity growth bounded by holdings", func(t *testing.T) {
		db, svc, _ := newTestServices(t)
		stock := testutil.NewStock().Build(t, db)
		account := testutil.NewAccount().Build(t, db)
		owner := testutil.NewOwner().Build(t, db)
		goal := testutil.NewGoal().Build(t, db)

		testutil.NewTrade(stock.ID, account.ID).WithQuantity(100).Build(t, db)

		allocation, err := svc.CreateAllocation(ctx, NewAllocationInput{
			StockID: stock.ID, AccountID: account.ID,
			OwnerID: owner.ID, GoalID: goal.ID, Quantity: 60,
		})
		require.NoError(t, err)

		grow := int64(100)
		updated, err := svc.UpdateAllocation(ctx, allocation.ID, UpdateAllocationInput{Quantity: &grow})
		require.NoError(t, err)
		assert.Equal(t, int64(100), updated.Quantity)

		tooMany := int64(101)
		_, err = svc.UpdateAllocation(ctx, allocation.ID, UpdateAllocationInput{Quantity: &tooMany})
		assert.ErrorIs(t, err, apperrors.ErrInsufficientUnits)
	})

	t.Run("wrong pair rejected", func(t *testing.T) {
		db, svc, _ := newTestServices(t)
		stock := testutil.NewStock().Build(t, db)
		other := testutil.NewStock().WithSymbol("TCS").Build(t, db)
		account := testutil.NewAccount().Build(t, db)
		owner := testutil.NewOwner().Build(t, db)
		goal := testutil.NewGoal().Build(t, db)

		testutil.NewTrade(stock.ID, account.ID).WithQuantity(100).Build(t, db)

		allocation, err := svc.CreateAllocation(ctx, NewAllocationInput{
			StockID: stock.ID, AccountID: account.ID,
			OwnerID: owner.ID, GoalID: goal.ID, Quantity: 40,
		})
		require.NoError(t, err)

		shrink := int64(20)
		_, err = svc.UpdateAllocation(ctx, allocation.ID, UpdateAllocationInput{
			StockID:  other.ID,
			Quantity: &shrink,
		})
		assert.ErrorIs(t, err, apperrors.ErrAllocationMismatch)

		// The matching pair passes the same check.
		updated, err := svc.UpdateAllocation(ctx, allocation.ID, UpdateAllocationInput{
			StockID:   stock.ID,
			AccountID: account.ID,
			Quantity:  &shrink,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(20), updated.Quantity)
	})

	t.Run("buy price stays frozen across owner change", func(t *testing.T) {
		db, svc, _ := newTestServices(t)
		stock := testutil.NewStock().Build(t, db)
		account := testutil.NewAccount().Build(t, db)
		owner := testutil.NewOwner().Build(t, db)
		other := testutil.NewOwner().WithName("Other Owner").Build(t, db)
		goal := testutil.NewGoal().Build(t, db)

		testutil.NewTrade(stock.ID, account.ID).WithQuantity(100).WithPrice("250").Build(t, db)

		allocation, err := svc.CreateAllocation(ctx, NewAllocationInput{
			StockID: stock.ID, AccountID: account.ID,
			OwnerID: owner.ID, GoalID: goal.ID, Quantity: 40,
		})
		require.NoError(t, err)

		updated, err := svc.UpdateAllocation(ctx, allocation.ID, UpdateAllocationInput{OwnerID: &other.ID})
		require.NoError(t, err)
		assert.Equal(t, other.ID, updated.OwnerID)
		assert.True(t, updated.BuyPrice.Equal(allocation.BuyPrice))
		assert.Equal(t, allocation.BuyDate, updated.BuyDate)
	})
}

func TestSyncAllocations(t *testing.T) {
	ctx := context.Background()

	t.Run("shrinks oldest allocations first after a sell", func(t *testing.T) {
		db, svc, _ := newTestServices(t)
		stock := testutil.NewStock().Build(t, db)
		account := testutil.NewAccount().Build(t, db)
		owner := testutil.NewOwner().Build(t, db)
		goal := testutil.NewGoal().Build(t, db)

		testutil.NewTrade(stock.ID, account.ID).WithDate("2024-01-10").WithQuantity(100).WithPrice("50").Build(t, db)
		testutil.NewTrade(stock.ID, account.ID).WithDate("2024-02-10").WithQuantity(100).WithPrice("60").Build(t, db)

		oldAllocation, err := svc.CreateAllocation(ctx, NewAllocationInput{
			StockID: stock.ID, AccountID: account.ID,
			OwnerID: owner.ID, GoalID: goal.ID, Quantity: 100,
		})
		require.NoError(t, err)
		newAllocation, err := svc.CreateAllocation(ctx, NewAllocationInput{
			StockID: stock.ID, AccountID: account.ID,
			OwnerID: owner.ID, GoalID: goal.ID, Quantity: 100,
		})
		require.NoError(t, err)

		// Selling 150 leaves 50 held against 200 allocated.
		testutil.NewTrade(stock.ID, account.ID).Sell().WithDate("2024-03-01").WithQuantity(150).WithPrice("70").Build(t, db)

		result, err := svc.SyncPair(ctx, stock.ID, account.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Deleted)
		assert.Equal(t, 1, result.Adjusted)

		// The oldest allocation is gone, the newer one shrank to 50.
		allocationRepo := repository.NewAllocationRepository(db)
		_, err = allocationRepo.GetAllocation(oldAllocation.ID)
		assert.ErrorIs(t, err, apperrors.ErrAllocationNotFound)

		remaining, err := allocationRepo.GetAllocation(newAllocation.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(50), remaining.Quantity)
	})

	t.Run("no-op when allocations fit holdings", func(t *testing.T) {
		db, svc, _ := newTestServices(t)
		stock := testutil.NewStock().Build(t, db)
		account := testutil.NewAccount().Build(t, db)
		owner := testutil.NewOwner().Build(t, db)
		goal := testutil.NewGoal().Build(t, db)

		testutil.NewTrade(stock.ID, account.ID).WithQuantity(100).Build(t, db)
		_, err := svc.CreateAllocation(ctx, NewAllocationInput{
			StockID: stock.ID, AccountID: account.ID,
			OwnerID: owner.ID, GoalID: goal.ID, Quantity: 80,
		})
		require.NoError(t, err)

		result, err := svc.SyncPair(ctx, stock.ID, account.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, result.Adjusted)
		assert.Equal(t, 0, result.Deleted)
	})
}

func TestReallocateToDefault(t *testing.T) {
	ctx := context.Background()

	t.Run("parks unallocated units on the seeded defaults", func(t *testing.T) {
		db, svc, _ := newTestServices(t)
		stock := testutil.NewStock().Build(t, db)
		account := testutil.NewAccount().Build(t, db)
		owner := testutil.NewOwner().Build(t, db)
		goal := testutil.NewGoal().Build(t, db)

		testutil.NewTrade(stock.ID, account.ID).WithDate("2024-01-10").WithQuantity(100).WithPrice("50").Build(t, db)

		_, err := svc.CreateAllocation(ctx, NewAllocationInput{
			StockID: stock.ID, AccountID: account.ID,
			OwnerID: owner.ID, GoalID: goal.ID, Quantity: 60,
		})
		require.NoError(t, err)

		parked, err := svc.ReallocateToDefault(ctx, stock.ID, account.ID, 40)
		require.NoError(t, err)
		assert.Equal(t, testutil.DefaultOwnerID, parked.OwnerID)
		assert.Equal(t, testutil.DefaultGoalID, parked.GoalID)
		assert.Equal(t, int64(40), parked.Quantity)
		assert.Equal(t, "50", parked.BuyPrice.String())

		available, err := svc.AvailableUnits(stock.ID, account.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(0), available)
	})

	t.Run("bounded by the unallocated pool", func(t *testing.T) {
		db, svc, _ := newTestServices(t)
		stock := testutil.NewStock().Build(t, db)
		account := testutil.NewAccount().Build(t, db)

		testutil.NewTrade(stock.ID, account.ID).WithQuantity(100).Build(t, db)

		_, err := svc.ReallocateToDefault(ctx, stock.ID, account.ID, 101)
		assert.ErrorIs(t, err, apperrors.ErrInsufficientUnits)
	})
}

func TestAvailableUnits(t *testing.T) {
	ctx := context.Background()

	db, svc, _ := newTestServices(t)
	stock := testutil.NewStock().Build(t, db)
	account := testutil.NewAccount().Build(t, db)
	owner := testutil.NewOwner().Build(t, db)
	goal := testutil.NewGoal().Build(t, db)

	testutil.NewTrade(stock.ID, account.ID).WithQuantity(100).Build(t, db)

	available, err := svc.AvailableUnits(stock.ID, account.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), available)

	_, err = svc.CreateAllocation(ctx, NewAllocationInput{
		StockID: stock.ID, AccountID: account.ID,
		OwnerID: owner.ID, GoalID: goal.ID, Quantity: 30,
	})
	require.NoError(t, err)

	available, err = svc.AvailableUnits(stock.ID, account.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(70), available)
}
