package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/model"
	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/reconcile"
	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/repository"
	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/testutil"
)

func newReconciliationService(t *testing.T) (*sql.DB, *ReconciliationService) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	actions := NewCorporateActionService(
		repository.NewCorporateActionRepository(db),
		repository.NewTradeRepository(db),
		repository.NewStockRepository(db),
		zerolog.Nop(),
	)
	svc := NewReconciliationService(
		repository.NewTradeRepository(db),
		repository.NewStockRepository(db),
		repository.NewRealizedPnLRepository(db),
		actions,
		zerolog.Nop(),
	)
	return db, svc
}

func importEntry(t *testing.T, svc *ReconciliationService, stockID string, entryDate, exitDate string, quantity int64, buyValue, sellValue string) {
	t.Helper()
	entry, err := time.Parse("2006-01-02", entryDate)
	require.NoError(t, err)
	exit, err := time.Parse("2006-01-02", exitDate)
	require.NoError(t, err)

	_, err = svc.ImportEntries(context.Background(), []model.RealizedPnL{{
		ID:        testutil.MakeID(),
		StockID:   stockID,
		EntryDate: entry.UTC(),
		ExitDate:  exit.UTC(),
		Quantity:  quantity,
		BuyValue:  decimal.RequireFromString(buyValue),
		SellValue: decimal.RequireFromString(sellValue),
		CreatedAt: time.Now().UTC(),
	}})
	require.NoError(t, err)
}

func TestReconciliationRun(t *testing.T) {
	ctx := context.Background()

	t.Run("exact match", func(t *testing.T) {
		db, svc := newReconciliationService(t)
		stock := testutil.NewStock().WithSymbol("INFY").Build(t, db)
		account := testutil.NewAccount().Build(t, db)

		testutil.NewTrade(stock.ID, account.ID).WithDate("2024-01-10").WithQuantity(100).WithPrice("50").Build(t, db)
		importEntry(t, svc, stock.ID, "2024-01-10", "2024-06-03", 100, "5000", "6000")

		result, err := svc.Run(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, 1, result.Summary.TotalEntries)
		assert.Equal(t, 1, result.Summary.Matched)
		assert.Equal(t, 0, result.Summary.Discrepancies)
		assert.Equal(t, 100.0, result.Summary.MatchRate)
	})

	t.Run("split mismatch saves a proposal", func(t *testing.T) {
		db, svc := newReconciliationService(t)
		stock := testutil.NewStock().Build(t, db)
		account := testutil.NewAccount().Build(t, db)

		// We hold 10 bought at 1000; the broker reports the same purchase as
		// 100 units for the same money, the post-split view.
		testutil.NewTrade(stock.ID, account.ID).WithDate("2024-01-10").WithQuantity(10).WithPrice("1000").Build(t, db)
		importEntry(t, svc, stock.ID, "2024-01-10", "2024-08-01", 100, "10000", "11000")

		result, err := svc.Run(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, 1, result.Summary.CorporateActions)
		require.Len(t, result.Discrepancies, 1)
		assert.Equal(t, reconcile.DiscrepancyCorporateAction, result.Discrepancies[0].Type)

		actionRepo := repository.NewCorporateActionRepository(db)
		actions, err := actionRepo.GetActionsForStock(stock.ID)
		require.NoError(t, err)
		require.Len(t, actions, 1)
		assert.Equal(t, model.ActionSplit, actions[0].ActionType)
		assert.Equal(t, int64(10), actions[0].RatioTo)
		assert.False(t, actions[0].Applied)

		// A second run finds the same proposal, not a duplicate.
		_, err = svc.Run(ctx, "")
		require.NoError(t, err)
		actions, err = actionRepo.GetActionsForStock(stock.ID)
		require.NoError(t, err)
		assert.Len(t, actions, 1)
	})

	t.Run("entry before trade history", func(t *testing.T) {
		db, svc := newReconciliationService(t)
		stock := testutil.NewStock().Build(t, db)
		account := testutil.NewAccount().Build(t, db)

		testutil.NewTrade(stock.ID, account.ID).WithDate("2024-01-10").Build(t, db)
		importEntry(t, svc, stock.ID, "2020-03-01", "2020-09-01", 50, "2500", "3000")

		result, err := svc.Run(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, 1, result.Summary.MissingHistory)
		assert.Equal(t, 0, result.Summary.Matched)
		assert.Equal(t, 0, result.Summary.Discrepancies)
	})

	t.Run("no funding trade found", func(t *testing.T) {
		db, svc := newReconciliationService(t)
		traded := testutil.NewStock().Build(t, db)
		untraded := testutil.NewStock().WithSymbol("WIPRO").WithISIN("INE075A01022").Build(t, db)
		account := testutil.NewAccount().Build(t, db)

		testutil.NewTrade(traded.ID, account.ID).WithDate("2024-01-10").Build(t, db)
		importEntry(t, svc, untraded.ID, "2024-02-01", "2024-07-01", 50, "2500", "3000")

		result, err := svc.Run(ctx, "")
		require.NoError(t, err)
		require.Len(t, result.Discrepancies, 1)
		assert.Equal(t, reconcile.DiscrepancyMissingTrade, result.Discrepancies[0].Type)
	})

	t.Run("financial year filter", func(t *testing.T) {
		db, svc := newReconciliationService(t)
		stock := testutil.NewStock().Build(t, db)
		account := testutil.NewAccount().Build(t, db)

		testutil.NewTrade(stock.ID, account.ID).WithDate("2023-05-10").WithQuantity(100).WithPrice("50").Build(t, db)
		importEntry(t, svc, stock.ID, "2023-05-10", "2023-11-01", 100, "5000", "5500")
		importEntry(t, svc, stock.ID, "2023-05-10", "2024-07-01", 100, "5000", "6000")

		result, err := svc.Run(ctx, "2023-2024")
		require.NoError(t, err)
		assert.Equal(t, 1, result.Summary.TotalEntries)
	})
}
