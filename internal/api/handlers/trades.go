package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/api/request"
	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/service"
	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/validation"
)

// TradeHandler handles trade-related HTTP requests
type TradeHandler struct {
	tradeService *service.TradeService
}

// NewTradeHandler creates a new TradeHandler
func NewTradeHandler(tradeService *service.TradeService) *TradeHandler {
	return &TradeHandler{tradeService: tradeService}
}

// CreateTrade handles POST /api/trades
func (h *TradeHandler) CreateTrade(w http.ResponseWriter, r *http.Request) {
	var req request.CreateTradeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body", "detail": err.Error()})
		return
	}

	input, err := tradeInput(req)
	if err != nil {
		respondError(w, "invalid trade", err)
		return
	}

	trade, err := h.tradeService.CreateTrade(r.Context(), input)
	if err != nil {
		respondError(w, "failed to create trade", err)
		return
	}
	respondJSON(w, http.StatusCreated, trade)
}

// ImportTrades handles POST /api/trades/import
func (h *TradeHandler) ImportTrades(w http.ResponseWriter, r *http.Request) {
	var req request.ImportTradesRequest
	if err := decodeJSON(r, &req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body", "detail": err.Error()})
		return
	}

	inputs := make([]service.NewTradeInput, 0, len(req.Trades))
	for _, t := range req.Trades {
		input, err := tradeInput(t)
		if err != nil {
			respondError(w, "invalid trade in import", err)
			return
		}
		inputs = append(inputs, input)
	}

	summary, err := h.tradeService.ImportTrades(r.Context(), inputs)
	if err != nil {
		respondError(w, "failed to import trades", err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

// Trades handles GET /api/trades
func (h *TradeHandler) Trades(w http.ResponseWriter, r *http.Request) {
	trades, err := h.tradeService.GetTrades(
		r.URL.Query().Get("stockId"),
		r.URL.Query().Get("accountId"),
	)
	if err != nil {
		respondError(w, "failed to retrieve trades", err)
		return
	}
	respondJSON(w, http.StatusOK, trades)
}

// DeleteTrade handles DELETE /api/trades/{uuid}
func (h *TradeHandler) DeleteTrade(w http.ResponseWriter, r *http.Request) {
	if err := h.tradeService.DeleteTrade(r.Context(), chi.URLParam(r, "uuid")); err != nil {
		respondError(w, "failed to delete trade", err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func tradeInput(req request.CreateTradeRequest) (service.NewTradeInput, error) {
	tradeDate, err := validation.ParseDate(req.TradeDate)
	if err != nil {
		return service.NewTradeInput{}, err
	}
	tradeDatetime, err := validation.ParseDatetime(req.TradeDatetime)
	if err != nil {
		return service.NewTradeInput{}, err
	}

	return service.NewTradeInput{
		StockID:       req.StockID,
		AccountID:     req.AccountID,
		TradeType:     req.TradeType,
		TradeDate:     tradeDate,
		TradeDatetime: tradeDatetime,
		Quantity:      req.Quantity,
		Price:         decimal.NewFromFloat(req.Price),
		TradeID:       req.TradeID,
		OrderID:       req.OrderID,
		Exchange:      req.Exchange,
	}, nil
}
