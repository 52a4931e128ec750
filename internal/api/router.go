package api

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/api/handlers"
	custommiddleware "github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/api/middleware"
	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/config"
	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/repository"
	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/service"
)

// Services bundles the service layer for router construction.
type Services struct {
	Trades          *service.TradeService
	Holdings        *service.HoldingsService
	Allocations     *service.AllocationService
	CorporateAction *service.CorporateActionService
	Reconciliation  *service.ReconciliationService
	RealizedPnL     *service.RealizedPnLService
	Prices          *service.PriceService
}

// Repositories bundles the repositories the master-data handlers use directly.
type Repositories struct {
	Stocks   *repository.StockRepository
	Accounts *repository.AccountRepository
	Owners   *repository.OwnerRepository
	Goals    *repository.GoalRepository
}

// NewRouter creates and configures the HTTP router
func NewRouter(db *sql.DB, svc Services, repos Repositories, cfg *config.Config, log zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger(log))
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(db)
			r.Get("/health", systemHandler.Health)
		})

		masterDataHandler := handlers.NewMasterDataHandler(repos.Stocks, repos.Accounts, repos.Owners, repos.Goals)
		r.Route("/stocks", func(r chi.Router) {
			r.Get("/", masterDataHandler.Stocks)
			r.Post("/", masterDataHandler.CreateStock)
			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Get("/", masterDataHandler.Stock)
			})
		})
		r.Route("/accounts", func(r chi.Router) {
			r.Get("/", masterDataHandler.Accounts)
			r.Post("/", masterDataHandler.CreateAccount)
		})
		r.Route("/owners", func(r chi.Router) {
			r.Get("/", masterDataHandler.Owners)
			r.Post("/", masterDataHandler.CreateOwner)
		})
		r.Route("/goals", func(r chi.Router) {
			r.Get("/", masterDataHandler.Goals)
			r.Post("/", masterDataHandler.CreateGoal)
		})

		r.Route("/trades", func(r chi.Router) {
			tradeHandler := handlers.NewTradeHandler(svc.Trades)
			r.Get("/", tradeHandler.Trades)
			r.Post("/", tradeHandler.CreateTrade)
			r.Post("/import", tradeHandler.ImportTrades)
			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Delete("/", tradeHandler.DeleteTrade)
			})
		})

		r.Route("/holdings", func(r chi.Router) {
			holdingsHandler := handlers.NewHoldingsHandler(svc.Holdings)
			r.Get("/", holdingsHandler.Holdings)
			r.Get("/summary", holdingsHandler.Summary)
		})

		r.Route("/allocations", func(r chi.Router) {
			allocationHandler := handlers.NewAllocationHandler(svc.Allocations)
			r.Get("/", allocationHandler.Allocations)
			r.Post("/", allocationHandler.CreateAllocation)
			r.Get("/available", allocationHandler.Available)
			r.Post("/reallocate", allocationHandler.Reallocate)
			r.Post("/sync", allocationHandler.Sync)
			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Put("/", allocationHandler.UpdateAllocation)
				r.Delete("/", allocationHandler.DeleteAllocation)
			})
		})

		r.Route("/corporate-actions", func(r chi.Router) {
			actionHandler := handlers.NewCorporateActionHandler(svc.CorporateAction)
			r.Get("/", actionHandler.Actions)
			r.Post("/", actionHandler.CreateAction)
			r.Route("/detect/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Post("/", actionHandler.Detect)
			})
			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Post("/apply", actionHandler.Apply)
				r.Delete("/", actionHandler.DeleteAction)
			})
		})

		reconciliationHandler := handlers.NewReconciliationHandler(svc.Reconciliation, svc.RealizedPnL)
		r.Route("/reconciliation", func(r chi.Router) {
			r.Post("/run", reconciliationHandler.Run)
		})
		r.Route("/pnl", func(r chi.Router) {
			r.Get("/", reconciliationHandler.PnL)
			r.Get("/summary", reconciliationHandler.TaxSummary)
			r.Post("/import", reconciliationHandler.ImportPnL)
			r.Post("/rebuild", reconciliationHandler.Rebuild)
		})

		r.Route("/prices", func(r chi.Router) {
			priceHandler := handlers.NewPriceHandler(svc.Prices)
			r.Post("/refresh", priceHandler.Refresh)
			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Get("/", priceHandler.Price)
			})
		})
	})

	return r
}
