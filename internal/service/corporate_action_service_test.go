package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/apperrors"
	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/model"
	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/repository"
	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/testutil"
)

func newActionService(t *testing.T) (*sql.DB, *CorporateActionService) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	svc := NewCorporateActionService(
		repository.NewCorporateActionRepository(db),
		repository.NewTradeRepository(db),
		repository.NewStockRepository(db),
		zerolog.Nop(),
	)
	return db, svc
}

func TestDetectForStock(t *testing.T) {
	ctx := context.Background()

	t.Run("detects split from buy price collapse", func(t *testing.T) {
		db, svc := newActionService(t)
		stock := testutil.NewStock().Build(t, db)
		account := testutil.NewAccount().Build(t, db)

		testutil.NewTrade(stock.ID, account.ID).WithDate("2024-01-10").WithQuantity(10).WithPrice("1000").Build(t, db)
		testutil.NewTrade(stock.ID, account.ID).WithDate("2024-06-10").WithQuantity(20).WithPrice("100").Build(t, db)

		action, err := svc.DetectForStock(ctx, stock.ID)
		require.NoError(t, err)
		require.NotNil(t, action)
		assert.Equal(t, model.ActionSplit, action.ActionType)
		assert.Equal(t, int64(1), action.RatioFrom)
		assert.Equal(t, int64(10), action.RatioTo)
		assert.True(t, action.DetectedAutomatically)
		assert.False(t, action.Applied)
		require.NotNil(t, action.RecordDate)
		assert.Equal(t, "2024-06-10", action.RecordDate.Format("2006-01-02"))
	})

	t.Run("re-running returns the existing proposal", func(t *testing.T) {
		db, svc := newActionService(t)
		stock := testutil.NewStock().Build(t, db)
		account := testutil.NewAccount().Build(t, db)

		testutil.NewTrade(stock.ID, account.ID).WithDate("2024-01-10").WithQuantity(10).WithPrice("1000").Build(t, db)
		testutil.NewTrade(stock.ID, account.ID).WithDate("2024-06-10").WithQuantity(20).WithPrice("100").Build(t, db)

		first, err := svc.DetectForStock(ctx, stock.ID)
		require.NoError(t, err)
		require.NotNil(t, first)

		second, err := svc.DetectForStock(ctx, stock.ID)
		require.NoError(t, err)
		require.NotNil(t, second)
		assert.Equal(t, first.ID, second.ID)

		actions, err := svc.GetActions(stock.ID)
		require.NoError(t, err)
		assert.Len(t, actions, 1)
	})

	t.Run("stable prices yield no proposal", func(t *testing.T) {
		db, svc := newActionService(t)
		stock := testutil.NewStock().Build(t, db)
		account := testutil.NewAccount().Build(t, db)

		testutil.NewTrade(stock.ID, account.ID).WithDate("2024-01-10").WithPrice("100").Build(t, db)
		testutil.NewTrade(stock.ID, account.ID).WithDate("2024-02-10").WithPrice("104").Build(t, db)

		action, err := svc.DetectForStock(ctx, stock.ID)
		require.NoError(t, err)
		assert.Nil(t, action)
	})

	t.Run("unknown stock rejected", func(t *testing.T) {
		_, svc := newActionService(t)
		_, err := svc.DetectForStock(ctx, testutil.MakeID())
		assert.ErrorIs(t, err, apperrors.ErrStockNotFound)
	})
}

func TestApplyAction(t *testing.T) {
	ctx := context.Background()

	db, svc := newActionService(t)
	stock := testutil.NewStock().Build(t, db)

	recordDate := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	created, err := svc.CreateAction(ctx, ManualActionInput{
		StockID:    stock.ID,
		ActionType: model.ActionSplit,
		RecordDate: &recordDate,
		RatioFrom:  1,
		RatioTo:    5,
	})
	require.NoError(t, err)
	assert.False(t, created.Applied)

	applied, err := svc.ApplyAction(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, applied.Applied)

	_, err = svc.ApplyAction(ctx, created.ID)
	assert.ErrorIs(t, err, apperrors.ErrActionAlreadyApplied)
}

func TestCreateAction(t *testing.T) {
	ctx := context.Background()

	t.Run("manual bonus", func(t *testing.T) {
		db, svc := newActionService(t)
		stock := testutil.NewStock().Build(t, db)

		action, err := svc.CreateAction(ctx, ManualActionInput{
			StockID:    stock.ID,
			ActionType: model.ActionBonus,
			RatioFrom:  2,
			RatioTo:    1,
			Notes:      "2:1 bonus per exchange circular",
		})
		require.NoError(t, err)
		assert.Equal(t, model.ActionBonus, action.ActionType)
		assert.False(t, action.DetectedAutomatically)
	})

	t.Run("invalid ratio rejected", func(t *testing.T) {
		db, svc := newActionService(t)
		stock := testutil.NewStock().Build(t, db)

		_, err := svc.CreateAction(ctx, ManualActionInput{
			StockID:    stock.ID,
			ActionType: model.ActionSplit,
			RatioFrom:  0,
			RatioTo:    10,
		})
		assert.Error(t, err)
	})

	t.Run("invalid action type rejected", func(t *testing.T) {
		db, svc := newActionService(t)
		stock := testutil.NewStock().Build(t, db)

		_, err := svc.CreateAction(ctx, ManualActionInput{
			StockID:    stock.ID,
			ActionType: "merger",
			RatioFrom:  1,
			RatioTo:    2,
		})
		assert.Error(t, err)
	})
}
