package service

import (
	"context"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/corporateaction"
	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/fifo"
	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/model"
	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/repository"
)

// maxConcurrentPairs bounds the holdings fan-out.
const maxConcurrentPairs = 8

// HoldingsService derives current positions from the trade log. Nothing here
// is persisted: every call replays trades through the lot engine, folding in
// applied corporate actions, so holdings always reflect the log as it stands.
type HoldingsService struct {
	tradeRepo      *repository.TradeRepository
	stockRepo      *repository.StockRepository
	accountRepo    *repository.AccountRepository
	actionRepo     *repository.CorporateActionRepository
	allocationRepo *repository.AllocationRepository
	priceRepo      *repository.PriceRepository
	log            zerolog.Logger
}

// NewHoldingsService creates a new HoldingsService with the provided repository dependencies.
func NewHoldingsService(
	tradeRepo *repository.TradeRepository,
	stockRepo *repository.StockRepository,
	accountRepo *repository.AccountRepository,
	actionRepo *repository.CorporateActionRepository,
	allocationRepo *repository.AllocationRepository,
	priceRepo *repository.PriceRepository,
	log zerolog.Logger,
) *HoldingsService {
	return &HoldingsService{
		tradeRepo:      tradeRepo,
		stockRepo:      stockRepo,
		accountRepo:    accountRepo,
		actionRepo:     actionRepo,
		allocationRepo: allocationRepo,
		priceRepo:      priceRepo,
		log:            log.With().Str("component", "holdings_service").Logger(),
	}
}

// GetHoldings computes the position for every traded stock/account pair,
// optionally restricted to one account. Pairs are computed concurrently;
// pairs with zero remaining quantity are omitted.
func (s *HoldingsService) GetHoldings(ctx context.Context, accountID string) ([]model.Holding, error) {
	pairs, err := s.tradeRepo.GetTradedPairs(accountID)
	if err != nil {
		return nil, err
	}

	stocks, err := s.stockRepo.GetStocks()
	if err != nil {
		return nil, err
	}
	accounts, err := s.accountRepo.GetAccounts()
	if err != nil {
		return nil, err
	}
	prices, err := s.priceRepo.GetPrices()
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	var holdings []model.Holding

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentPairs)

	for _, pair := range pairs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			holding, err := s.computeHolding(pair, stocks, accounts, prices)
			if err != nil {
				return err
			}
			if holding == nil {
				return nil
			}
			mu.Lock()
			holdings = append(holdings, *holding)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(holdings, func(i, j int) bool {
		if holdings[i].Symbol != holdings[j].Symbol {
			return holdings[i].Symbol < holdings[j].Symbol
		}
		return holdings[i].AccountNumber < holdings[j].AccountNumber
	})
	return holdings, nil
}

// GetHolding computes the position for one stock/account pair. Returns nil
// when nothing is held.
func (s *HoldingsService) GetHolding(stockID, accountID string) (*model.Holding, error) {
	stocks, err := s.stockRepo.GetStocks()
	if err != nil {
		return nil, err
	}
	accounts, err := s.accountRepo.GetAccounts()
	if err != nil {
		return nil, err
	}
	prices, err := s.priceRepo.GetPrices()
	if err != nil {
		return nil, err
	}
	return s.computeHolding(repository.TradedPair{StockID: stockID, AccountID: accountID}, stocks, accounts, prices)
}

// ReplayPair rebuilds the lot engine for a pair with applied corporate
// actions folded in. The allocation and reconciliation services share this
// replay so that every consumer sees the same lots.
func (s *HoldingsService) ReplayPair(stockID, accountID string) (*fifo.Engine, error) {
	trades, err := s.tradeRepo.GetTradesForPair(stockID, accountID)
	if err != nil {
		return nil, err
	}

	actions, err := s.actionRepo.GetAppliedActionsForStock(stockID)
	if err != nil {
		return nil, err
	}
	adjusted := corporateaction.AdjustTrades(trades, actions)

	engine := fifo.FromTrades(adjusted)
	if engine.SkippedSells() == 0 {
		return engine, nil
	}

	// Sells exceeded known holdings, which usually means an unrecorded split.
	// Run detection on the raw trades and fold a dated proposal into the
	// replay so the position displays sensibly. The proposal itself is only
	// persisted when the detection endpoint or reconciliation saves it.
	proposal := corporateaction.Detect(trades)
	if proposal == nil || proposal.RecordDate == nil {
		s.log.Warn().
			Str("stock_id", stockID).
			Str("account_id", accountID).
			Int("skipped_sells", engine.SkippedSells()).
			Msg("sells exceed holdings and no split pattern found")
		return engine, nil
	}

	synthetic := model.CorporateAction{
		StockID:    proposal.StockID,
		ActionType: proposal.ActionType,
		RecordDate: proposal.RecordDate,
		RatioFrom:  proposal.RatioFrom,
		RatioTo:    proposal.RatioTo,
	}
	adjusted = corporateaction.AdjustTrades(trades, append(actions, synthetic))
	return fifo.FromTrades(adjusted), nil
}

func (s *HoldingsService) computeHolding(
	pair repository.TradedPair,
	stocks map[string]model.Stock,
	accounts map[string]model.Account,
	prices map[string]model.PriceCache,
) (*model.Holding, error) {
	engine, err := s.ReplayPair(pair.StockID, pair.AccountID)
	if err != nil {
		return nil, err
	}

	quantity := engine.AvailableQuantity()
	if quantity == 0 {
		return nil, nil
	}

	holding := model.Holding{
		StockID:   pair.StockID,
		AccountID: pair.AccountID,
		Quantity:  quantity,
	}
	if stock, ok := stocks[pair.StockID]; ok {
		holding.Symbol = stock.Symbol
		holding.StockName = stock.Name
		holding.ISIN = stock.ISIN
		holding.Sector = stock.Sector
		holding.Exchange = stock.Exchange
	}
	if account, ok := accounts[pair.AccountID]; ok {
		holding.AccountNumber = account.AccountNumber
	}

	if avg, ok := engine.WeightedAveragePrice(); ok {
		holding.AvgBuyPrice = avg.Round(4)
		holding.TotalBuyValue = avg.Mul(decimal.NewFromInt(quantity)).Round(2)
	}

	for _, lot := range engine.Lots() {
		holding.BuyLots = append(holding.BuyLots, model.LotView{
			TradeDate:     lot.TradeDate,
			TradeDatetime: lot.TradeDatetime,
			Quantity:      lot.Quantity,
			RemainingQty:  lot.RemainingQty,
			Price:         lot.Price,
			Value:         lot.Value(),
			TradeID:       lot.TradeID,
		})
	}

	if price, ok := prices[pair.StockID]; ok {
		s.enrichWithPrice(&holding, price)
	}

	allocations, err := s.allocationRepo.GetAllocationsForPair(pair.StockID, pair.AccountID)
	if err != nil {
		return nil, err
	}
	for _, a := range allocations {
		holding.Allocations = append(holding.Allocations, model.AllocationResponse{Allocation: a})
	}

	return &holding, nil
}

func (s *HoldingsService) enrichWithPrice(holding *model.Holding, price model.PriceCache) {
	current := price.CurrentPrice
	value := current.Mul(decimal.NewFromInt(holding.Quantity)).Round(2)
	pnl := value.Sub(holding.TotalBuyValue)

	holding.CurrentPrice = &current
	holding.CurrentValue = &value
	holding.UnrealizedPnL = &pnl

	if holding.TotalBuyValue.IsPositive() {
		pct := pnl.Div(holding.TotalBuyValue).Mul(decimal.NewFromInt(100)).Round(2)
		holding.UnrealizedPnLPercent = &pct
	}
	holding.DayChangePercent = price.ChangePercent
}

// GetSummary rolls holdings up into portfolio totals. Holdings without a
// cached price contribute buy value only.
func (s *HoldingsService) GetSummary(ctx context.Context, accountID string) (model.HoldingsSummary, error) {
	holdings, err := s.GetHoldings(ctx, accountID)
	if err != nil {
		return model.HoldingsSummary{}, err
	}

	summary := model.HoldingsSummary{
		TotalHoldings:      len(holdings),
		TotalBuyValue:      decimal.Zero,
		TotalCurrentValue:  decimal.Zero,
		TotalUnrealizedPnL: decimal.Zero,
	}
	for _, h := range holdings {
		summary.TotalBuyValue = summary.TotalBuyValue.Add(h.TotalBuyValue)
		if h.CurrentValue != nil {
			summary.HoldingsWithPrice++
			summary.TotalCurrentValue = summary.TotalCurrentValue.Add(*h.CurrentValue)
		}
		if h.UnrealizedPnL != nil {
			summary.TotalUnrealizedPnL = summary.TotalUnrealizedPnL.Add(*h.UnrealizedPnL)
		}
	}
	return summary, nil
}
