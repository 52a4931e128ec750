package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/model"
	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/quotes"
	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/repository"
)

// PriceService refreshes and serves cached market prices. Quotes are fetched
// per stock symbol; a symbol that fails to resolve is logged and skipped so
// one delisted stock does not block the rest of the refresh.
type PriceService struct {
	priceRepo *repository.PriceRepository
	stockRepo *repository.StockRepository
	client    *quotes.Client
	log       zerolog.Logger
}

// NewPriceService creates a new PriceService with the provided dependencies.
func NewPriceService(
	priceRepo *repository.PriceRepository,
	stockRepo *repository.StockRepository,
	client *quotes.Client,
	log zerolog.Logger,
) *PriceService {
	return &PriceService{
		priceRepo: priceRepo,
		stockRepo: stockRepo,
		client:    client,
		log:       log.With().Str("component", "price_service").Logger(),
	}
}

// RefreshAll fetches a fresh quote for every stock and updates the cache.
// Returns the number of stocks refreshed.
func (s *PriceService) RefreshAll(ctx context.Context) (int, error) {
	stocks, err := s.stockRepo.GetStocks()
	if err != nil {
		return 0, err
	}

	refreshed := 0
	for _, stock := range stocks {
		quote, err := s.client.FetchQuote(ctx, stock.Symbol)
		if err != nil {
			s.log.Warn().Err(err).Str("symbol", stock.Symbol).Msg("quote fetch failed")
			continue
		}
		cache := model.PriceCache{
			StockID:       stock.ID,
			CurrentPrice:  quote.CurrentPrice,
			PreviousClose: quote.PreviousClose,
			ChangePercent: quote.ChangePercent,
			Currency:      quote.Currency,
			FetchedAt:     quote.FetchedAt,
		}
		if err := s.priceRepo.UpsertPrice(ctx, &cache); err != nil {
			return refreshed, err
		}
		refreshed++
	}

	s.log.Info().Int("refreshed", refreshed).Int("total", len(stocks)).Msg("price refresh finished")
	return refreshed, nil
}

// GetPrice retrieves the cached price for one stock.
func (s *PriceService) GetPrice(stockID string) (model.PriceCache, error) {
	return s.priceRepo.GetPrice(stockID)
}

// RefreshJob adapts the price refresh for the background scheduler.
type RefreshJob struct {
	Service *PriceService
	Timeout time.Duration
}

// Name identifies the job in scheduler logs.
func (j RefreshJob) Name() string { return "price_refresh" }

// Run refreshes all cached prices with a bounded deadline.
func (j RefreshJob) Run() error {
	timeout := j.Timeout
	if timeout == 0 {
		timeout = 5 * time.Minute
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	_, err := j.Service.RefreshAll(ctx)
	return err
}
