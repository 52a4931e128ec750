package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/api/request"
	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/model"
	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/repository"
)

// MasterDataHandler handles stock, account, owner, and goal HTTP requests.
type MasterDataHandler struct {
	stockRepo   *repository.StockRepository
	accountRepo *repository.AccountRepository
	ownerRepo   *repository.OwnerRepository
	goalRepo    *repository.GoalRepository
}

// NewMasterDataHandler creates a new MasterDataHandler
func NewMasterDataHandler(
	stockRepo *repository.StockRepository,
	accountRepo *repository.AccountRepository,
	ownerRepo *repository.OwnerRepository,
	goalRepo *repository.GoalRepository,
) *MasterDataHandler {
	return &MasterDataHandler{
		stockRepo:   stockRepo,
		accountRepo: accountRepo,
		ownerRepo:   ownerRepo,
		goalRepo:    goalRepo,
	}
}

// CreateStock handles POST /api/stocks
func (h *MasterDataHandler) CreateStock(w http.ResponseWriter, r *http.Request) {
	var req request.CreateStockRequest
	if err := decodeJSON(r, &req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body", "detail": err.Error()})
		return
	}
	if req.Symbol == "" || req.Name == "" {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "symbol and name are required"})
		return
	}

	stock := model.Stock{
		ID:        uuid.New().String(),
		Symbol:    req.Symbol,
		Name:      req.Name,
		ISIN:      req.ISIN,
		Exchange:  req.Exchange,
		Sector:    req.Sector,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.stockRepo.InsertStock(r.Context(), &stock); err != nil {
		respondError(w, "failed to create stock", err)
		return
	}
	respondJSON(w, http.StatusCreated, stock)
}

// Stocks handles GET /api/stocks
func (h *MasterDataHandler) Stocks(w http.ResponseWriter, r *http.Request) {
	stocks, err := h.stockRepo.ListStocks()
	if err != nil {
		respondError(w, "failed to retrieve stocks", err)
		return
	}
	respondJSON(w, http.StatusOK, stocks)
}

// Stock handles GET /api/stocks/{uuid}
func (h *MasterDataHandler) Stock(w http.ResponseWriter, r *http.Request) {
	stock, err := h.stockRepo.GetStock(chi.URLParam(r, "uuid"))
	if err != nil {
		respondError(w, "failed to retrieve stock", err)
		return
	}
	respondJSON(w, http.StatusOK, stock)
}

// CreateAccount handles POST /api/accounts
func (h *MasterDataHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req request.CreateAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body", "detail": err.Error()})
		return
	}
	if req.AccountNumber == "" {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "accountNumber is required"})
		return
	}

	account := model.Account{
		ID:            uuid.New().String(),
		AccountNumber: req.AccountNumber,
		Broker:        req.Broker,
		Description:   req.Description,
		CreatedAt:     time.Now().UTC(),
	}
	if err := h.accountRepo.InsertAccount(r.Context(), &account); err != nil {
		respondError(w, "failed to create account", err)
		return
	}
	respondJSON(w, http.StatusCreated, account)
}

// Accounts handles GET /api/accounts
func (h *MasterDataHandler) Accounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.accountRepo.GetAccounts()
	if err != nil {
		respondError(w, "failed to retrieve accounts", err)
		return
	}
	list := make([]model.Account, 0, len(accounts))
	for _, a := range accounts {
		list = append(list, a)
	}
	respondJSON(w, http.StatusOK, list)
}

// CreateOwner handles POST /api/owners
func (h *MasterDataHandler) CreateOwner(w http.ResponseWriter, r *http.Request) {
	var req request.CreateOwnerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body", "detail": err.Error()})
		return
	}
	if req.Name == "" {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	owner := model.Owner{
		ID:        uuid.New().String(),
		Name:      req.Name,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.ownerRepo.InsertOwner(r.Context(), &owner); err != nil {
		respondError(w, "failed to create owner", err)
		return
	}
	respondJSON(w, http.StatusCreated, owner)
}

// Owners handles GET /api/owners
func (h *MasterDataHandler) Owners(w http.ResponseWriter, r *http.Request) {
	owners, err := h.ownerRepo.ListOwners()
	if err != nil {
		respondError(w, "failed to retrieve owners", err)
		return
	}
	respondJSON(w, http.StatusOK, owners)
}

// CreateGoal handles POST /api/goals
func (h *MasterDataHandler) CreateGoal(w http.ResponseWriter, r *http.Request) {
	var req request.CreateGoalRequest
	if err := decodeJSON(r, &req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body", "detail": err.Error()})
		return
	}
	if req.Name == "" {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	goal := model.Goal{
		ID:        uuid.New().String(),
		Name:      req.Name,
		CreatedAt: time.Now().UTC(),
	}
	if req.TargetAmount != nil {
		target := decimal.NewFromFloat(*req.TargetAmount)
		goal.TargetAmount = &target
	}
	if err := h.goalRepo.InsertGoal(r.Context(), &goal); err != nil {
		respondError(w, "failed to create goal", err)
		return
	}
	respondJSON(w, http.StatusCreated, goal)
}

// Goals handles GET /api/goals
func (h *MasterDataHandler) Goals(w http.ResponseWriter, r *http.Request) {
	goals, err := h.goalRepo.ListGoals()
	if err != nil {
		respondError(w, "failed to retrieve goals", err)
		return
	}
	respondJSON(w, http.StatusOK, goals)
}
