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

	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/apperrors"
	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/model"
	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/repository"
	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/testutil"
)

func newTradeService(t *testing.T) (*sql.DB, *TradeService) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	svc := NewTradeService(
		repository.NewTradeRepository(db),
		repository.NewStockRepository(db),
		repository.NewAccountRepository(db),
		zerolog.Nop(),
	)
	return db, svc
}

func validInput(stockID, accountID, tradeID string) NewTradeInput {
	return NewTradeInput{
		StockID:   stockID,
		AccountID: accountID,
		TradeType: model.TradeTypeBuy,
		TradeDate: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		Quantity:  100,
		Price:     decimal.RequireFromString("50"),
		TradeID:   tradeID,
	}
}

func TestCreateTrade(t *testing.T) {
	ctx := context.Background()

	t.Run("valid buy", func(t *testing.T) {
		db, svc := newTradeService(t)
		stock := testutil.NewStock().Build(t, db)
		account := testutil.NewAccount().Build(t, db)

		trade, err := svc.CreateTrade(ctx, validInput(stock.ID, account.ID, "T1"))
		require.NoError(t, err)
		assert.NotEmpty(t, trade.ID)
		assert.Equal(t, model.TradeTypeBuy, trade.TradeType)
	})

	t.Run("duplicate broker trade id rejected", func(t *testing.T) {
		db, svc := newTradeService(t)
		stock := testutil.NewStock().Build(t, db)
		account := testutil.NewAccount().Build(t, db)

		_, err := svc.CreateTrade(ctx, validInput(stock.ID, account.ID, "T1"))
		require.NoError(t, err)
		_, err = svc.CreateTrade(ctx, validInput(stock.ID, account.ID, "T1"))
		assert.ErrorIs(t, err, apperrors.ErrDuplicateTrade)
	})

	t.Run("same broker trade id allowed across accounts", func(t *testing.T) {
		db, svc := newTradeService(t)
		stock := testutil.NewStock().Build(t, db)
		first := testutil.NewAccount().Build(t, db)
		second := testutil.NewAccount().Build(t, db)

		_, err := svc.CreateTrade(ctx, validInput(stock.ID, first.ID, "T1"))
		require.NoError(t, err)
		_, err = svc.CreateTrade(ctx, validInput(stock.ID, second.ID, "T1"))
		assert.NoError(t, err)
	})

	t.Run("validation failures", func(t *testing.T) {
		db, svc := newTradeService(t)
		stock := testutil.NewStock().Build(t, db)
		account := testutil.NewAccount().Build(t, db)

		bad := validInput(stock.ID, account.ID, "T2")
		bad.TradeType = "short"
		_, err := svc.CreateTrade(ctx, bad)
		assert.ErrorIs(t, err, apperrors.ErrInvalidTradeType)

		bad = validInput(stock.ID, account.ID, "T3")
		bad.Quantity = 0
		_, err = svc.CreateTrade(ctx, bad)
		assert.ErrorIs(t, err, apperrors.ErrInvalidQuantity)

		bad = validInput(stock.ID, account.ID, "T4")
		bad.Price = decimal.Zero
		_, err = svc.CreateTrade(ctx, bad)
		assert.ErrorIs(t, err, apperrors.ErrInvalidPrice)

		bad = validInput(stock.ID, account.ID, "")
		_, err = svc.CreateTrade(ctx, bad)
		assert.ErrorIs(t, err, apperrors.ErrEmptyID)
	})

	t.Run("unknown stock rejected", func(t *testing.T) {
		db, svc := newTradeService(t)
		account := testutil.NewAccount().Build(t, db)

		_, err := svc.CreateTrade(ctx, validInput(testutil.MakeID(), account.ID, "T1"))
		assert.ErrorIs(t, err, apperrors.ErrStockNotFound)
	})
}

func TestImportTrades(t *testing.T) {
	ctx := context.Background()

	db, svc := newTradeService(t)
	stock := testutil.NewStock().Build(t, db)
	account := testutil.NewAccount().Build(t, db)

	// One valid, one duplicate of it, one invalid.
	inputs := []NewTradeInput{
		validInput(stock.ID, account.ID, "T1"),
		validInput(stock.ID, account.ID, "T1"),
	}
	bad := validInput(stock.ID, account.ID, "T2")
	bad.Quantity = -5
	inputs = append(inputs, bad)

	summary, err := svc.ImportTrades(ctx, inputs)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Imported)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 1, summary.Failed)

	trades, err := svc.GetTrades(stock.ID, account.ID)
	require.NoError(t, err)
	assert.Len(t, trades, 1)
}
