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
	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/repository"
	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/testutil"
)

func newPnLService(t *testing.T) (*sql.DB, *RealizedPnLService) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	holdings := NewHoldingsService(
		repository.NewTradeRepository(db),
		repository.NewStockRepository(db),
		repository.NewAccountRepository(db),
		repository.NewCorporateActionRepository(db),
		repository.NewAllocationRepository(db),
		repository.NewPriceRepository(db),
		zerolog.Nop(),
	)
	svc := NewRealizedPnLService(
		repository.NewRealizedPnLRepository(db),
		repository.NewTradeRepository(db),
		holdings,
		zerolog.Nop(),
	)
	return db, svc
}

func TestRebuild(t *testing.T) {
	ctx := context.Background()

	t.Run("regenerates one row per matched lot", func(t *testing.T) {
		db, svc := newPnLService(t)
		stock := testutil.NewStock().Build(t, db)
		account := testutil.NewAccount().Build(t, db)

		testutil.NewTrade(stock.ID, account.ID).WithDate("2024-01-10").WithQuantity(100).WithPrice("50").Build(t, db)
		testutil.NewTrade(stock.ID, account.ID).WithDate("2024-02-10").WithQuantity(50).WithPrice("55").Build(t, db)
		testutil.NewTrade(stock.ID, account.ID).Sell().WithDate("2024-06-03").WithQuantity(120).WithPrice("60").Build(t, db)

		inserted, err := svc.Rebuild(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, inserted)

		entries, err := svc.GetEntries("2024-2025", "", model.PnLSourceCalculated)
		require.NoError(t, err)
		require.Len(t, entries, 2)

		byQty := map[int64]model.RealizedPnL{}
		for _, e := range entries {
			byQty[e.Quantity] = e
		}

		first, ok := byQty[100]
		require.True(t, ok)
		assert.Equal(t, "5000", first.BuyValue.String())
		assert.Equal(t, "6000", first.SellValue.String())
		assert.Equal(t, "1000", first.Profit.String())
		assert.Equal(t, model.TaxTermShort, first.TaxTerm)
		assert.Equal(t, "2024-2025", first.FinancialYear)

		second, ok := byQty[20]
		require.True(t, ok)
		assert.Equal(t, "100", second.Profit.String())
	})

	t.Run("rerun replaces instead of duplicating", func(t *testing.T) {
		db, svc := newPnLService(t)
		stock := testutil.NewStock().Build(t, db)
		account := testutil.NewAccount().Build(t, db)

		testutil.NewTrade(stock.ID, account.ID).WithDate("2024-01-10").WithQuantity(100).WithPrice("50").Build(t, db)
		testutil.NewTrade(stock.ID, account.ID).Sell().WithDate("2024-06-03").WithQuantity(100).WithPrice("60").Build(t, db)

		_, err := svc.Rebuild(ctx)
		require.NoError(t, err)
		_, err = svc.Rebuild(ctx)
		require.NoError(t, err)

		entries, err := svc.GetEntries("", "", model.PnLSourceCalculated)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("imported rows survive a rebuild", func(t *testing.T) {
		db, svc := newPnLService(t)
		stock := testutil.NewStock().Build(t, db)
		account := testutil.NewAccount().Build(t, db)

		pnlRepo := repository.NewRealizedPnLRepository(db)
		require.NoError(t, pnlRepo.InsertEntry(ctx, &model.RealizedPnL{
			ID:            testutil.MakeID(),
			StockID:       stock.ID,
			AccountID:     account.ID,
			EntryDate:     time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC),
			ExitDate:      time.Date(2023, 9, 1, 0, 0, 0, 0, time.UTC),
			Quantity:      10,
			BuyValue:      decimal.RequireFromString("1000"),
			SellValue:     decimal.RequireFromString("1200"),
			Profit:        decimal.RequireFromString("200"),
			HoldingDays:   123,
			TaxTerm:       model.TaxTermShort,
			FinancialYear: "2023-2024",
			Source:        model.PnLSourceImported,
			CreatedAt:     time.Now().UTC(),
		}))

		_, err := svc.Rebuild(ctx)
		require.NoError(t, err)

		entries, err := svc.GetEntries("", "", model.PnLSourceImported)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})
}

func TestGetTaxSummary(t *testing.T) {
	ctx := context.Background()

	db, svc := newPnLService(t)
	longHold := testutil.NewStock().Build(t, db)
	shortHold := testutil.NewStock().WithSymbol("TCS").Build(t, db)
	account := testutil.NewAccount().Build(t, db)

	// Held 510 days: long term.
	testutil.NewTrade(longHold.ID, account.ID).WithDate("2023-01-10").WithQuantity(100).WithPrice("50").Build(t, db)
	testutil.NewTrade(longHold.ID, account.ID).Sell().WithDate("2024-06-03").WithQuantity(100).WithPrice("80").Build(t, db)

	// Held 30 days: short term.
	testutil.NewTrade(shortHold.ID, account.ID).WithDate("2024-04-10").WithQuantity(10).WithPrice("100").Build(t, db)
	testutil.NewTrade(shortHold.ID, account.ID).Sell().WithDate("2024-05-10").WithQuantity(10).WithPrice("150").Build(t, db)

	_, err := svc.Rebuild(ctx)
	require.NoError(t, err)

	summary, err := svc.GetTaxSummary("2024-2025")
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Disposals)
	assert.Equal(t, "3000", summary.LongTermPnL.String())
	assert.Equal(t, "500", summary.ShortTermPnL.String())
	assert.Equal(t, "3500", summary.TotalPnL.String())
}
