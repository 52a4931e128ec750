package corporateaction_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/corporateaction"
	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/fifo"
	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/model"
)

func day(offset int) time.Time {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return base.AddDate(0, 0, offset)
}

func buy(d time.Time, qty int64, price string, tradeID string) model.Trade {
	return model.Trade{
		StockID:   "stock-1",
		AccountID: "acct-1",
		TradeType: model.TradeTypeBuy,
		TradeDate: d,
		Quantity:  qty,
		Price:     decimal.RequireFromString(price),
		TradeID:   tradeID,
	}
}

func sell(d time.Time, qty int64, price string, tradeID string) model.Trade {
	t := buy(d, qty, price, tradeID)
	t.TradeType = model.TradeTypeSell
	return t
}

func TestDetectSplitFromPrices(t *testing.T) {
	t.Run("ratio 9.95 detected as 1:10 split with high confidence", func(t *testing.T) {
		trades := []model.Trade{
			buy(day(0), 10, "100", "B1"),
			buy(day(30), 100, "10.05", "B2"),
		}

		p := corporateaction.DetectSplitFromPrices(trades)
		require.NotNil(t, p)
		assert.Equal(t, model.ActionSplit, p.ActionType)
		assert.Equal(t, int64(1), p.RatioFrom)
		assert.Equal(t, int64(10), p.RatioTo)
		assert.Equal(t, corporateaction.ConfidenceHigh, p.Confidence)
		require.NotNil(t, p.RecordDate)
		assert.True(t, p.RecordDate.Equal(day(30)))
		assert.Equal(t, "B1", p.PreSplitTradeID)
		assert.Equal(t, "B2", p.PostSplitTradeID)
	})

	t.Run("ratio near band edge gets medium confidence", func(t *testing.T) {
		// 100 / 8.7 = 11.49: inside the 1:10 band but more than 0.5 from 10.
		trades := []model.Trade{
			buy(day(0), 10, "100", "B1"),
			buy(day(30), 100, "8.7", "B2"),
		}

		p := corporateaction.DetectSplitFromPrices(trades)
		require.NotNil(t, p)
		assert.Equal(t, int64(10), p.RatioTo)
		assert.Equal(t, corporateaction.ConfidenceMedium, p.Confidence)
	})

	t.Run("ordinary drift is not a split", func(t *testing.T) {
		trades := []model.Trade{
			buy(day(0), 10, "100", "B1"),
			buy(day(30), 10, "85", "B2"),
		}
		assert.Nil(t, corporateaction.DetectSplitFromPrices(trades))
	})

	t.Run("fewer than two buys yields nothing", func(t *testing.T) {
		assert.Nil(t, corporateaction.DetectSplitFromPrices([]model.Trade{buy(day(0), 10, "100", "B1")}))
	})
}

func TestDetectSplitFromDisposalMismatch(t *testing.T) {
	t.Run("sold exceeding bought matches ratio table", func(t *testing.T) {
		// Bought 10, sold 100: only a 1:10 split explains it.
		trades := []model.Trade{
			buy(day(0), 10, "100", "B1"),
			sell(day(60), 100, "11", "S1"),
		}

		p := corporateaction.DetectSplitFromDisposalMismatch(trades)
		require.NotNil(t, p)
		assert.Equal(t, int64(10), p.RatioTo)
		assert.Equal(t, corporateaction.ConfidenceMedium, p.Confidence)
		assert.Nil(t, p.RecordDate) // no post-split buy to anchor on
	})

	t.Run("anchors record date on matching price drop", func(t *testing.T) {
		trades := []model.Trade{
			buy(day(0), 10, "100", "B1"),
			buy(day(30), 50, "10.50", "B2"),
			sell(day(60), 150, "11", "S1"),
		}

		p := corporateaction.DetectSplitFromDisposalMismatch(trades)
		require.NotNil(t, p)
		assert.Equal(t, int64(10), p.RatioTo)
		require.NotNil(t, p.RecordDate)
		assert.True(t, p.RecordDate.Equal(day(30)))
		require.NotNil(t, p.OldPrice)
		assert.True(t, p.OldPrice.Equal(decimal.RequireFromString("100")))
	})

	t.Run("sold within bought yields nothing", func(t *testing.T) {
		trades := []model.Trade{
			buy(day(0), 100, "50", "B1"),
			sell(day(10), 40, "55", "S1"),
		}
		assert.Nil(t, corporateaction.DetectSplitFromDisposalMismatch(trades))
	})
}

func TestAdjustForActions(t *testing.T) {
	recordDate := day(30)
	split := model.CorporateAction{
		ActionType: model.ActionSplit,
		RecordDate: &recordDate,
		RatioFrom:  1,
		RatioTo:    10,
	}

	t.Run("pre-record-date buy is scaled, value preserved", func(t *testing.T) {
		qty, price := corporateaction.AdjustForActions(10, decimal.RequireFromString("100"), day(0), []model.CorporateAction{split})
		assert.Equal(t, int64(100), qty)
		assert.True(t, price.Equal(decimal.RequireFromString("10")))
	})

	t.Run("buy on or after record date untouched", func(t *testing.T) {
		qty, price := corporateaction.AdjustForActions(10, decimal.RequireFromString("100"), day(30), []model.CorporateAction{split})
		assert.Equal(t, int64(10), qty)
		assert.True(t, price.Equal(decimal.RequireFromString("100")))
	})

	t.Run("bonus multiplier is (from+to)/from", func(t *testing.T) {
		bonus := model.CorporateAction{
			ActionType: model.ActionBonus,
			RecordDate: &recordDate,
			RatioFrom:  1,
			RatioTo:    1,
		}
		qty, price := corporateaction.AdjustForActions(100, decimal.RequireFromString("500"), day(0), []model.CorporateAction{bonus})
		assert.Equal(t, int64(200), qty)
		assert.True(t, price.Equal(decimal.RequireFromString("250")))
	})
}

func TestAdjustTrades_RoundTripValuePreserved(t *testing.T) {
	// Applying a detected split to pre-record-date buys and replaying the
	// engine must leave total lot value unchanged.
	trades := []model.Trade{
		buy(day(0), 10, "100", "B1"),
		buy(day(40), 100, "10", "B2"),
	}

	before := fifo.FromTrades(trades)
	avgBefore, ok := before.WeightedAveragePrice()
	require.True(t, ok)
	valueBefore := avgBefore.Mul(decimal.NewFromInt(before.AvailableQuantity()))

	recordDate := day(30)
	split := model.CorporateAction{ActionType: model.ActionSplit, RecordDate: &recordDate, RatioFrom: 1, RatioTo: 10}

	adjusted := corporateaction.AdjustTrades(trades, []model.CorporateAction{split})
	after := fifo.FromTrades(adjusted)
	avgAfter, ok := after.WeightedAveragePrice()
	require.True(t, ok)
	valueAfter := avgAfter.Mul(decimal.NewFromInt(after.AvailableQuantity()))

	assert.Equal(t, int64(200), after.AvailableQuantity())
	assert.True(t, valueBefore.Equal(valueAfter), "value before %s, after %s", valueBefore, valueAfter)

	// Sells stay in post-split quantities.
	assert.Equal(t, model.TradeTypeBuy, adjusted[0].TradeType)
	assert.Equal(t, int64(100), adjusted[0].Quantity)
	assert.Equal(t, int64(100), adjusted[1].Quantity)
}
