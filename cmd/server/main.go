package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/api"
	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/config"
	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/database"
	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/logging"
	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/quotes"
	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/repository"
	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/scheduler"
	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		println("failed to load configuration:", err.Error())
		os.Exit(1)
	}

	log := logging.New(cfg.Logging.Level, cfg.Logging.Pretty)

	// Open database connection and apply migrations
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	log.Info().Str("path", cfg.Database.Path).Msg("connected to database")

	// Create repositories
	stockRepo := repository.NewStockRepository(db)
	accountRepo := repository.NewAccountRepository(db)
	ownerRepo := repository.NewOwnerRepository(db)
	goalRepo := repository.NewGoalRepository(db)
	tradeRepo := repository.NewTradeRepository(db)
	allocationRepo := repository.NewAllocationRepository(db)
	actionRepo := repository.NewCorporateActionRepository(db)
	pnlRepo := repository.NewRealizedPnLRepository(db)
	priceRepo := repository.NewPriceRepository(db)

	// Create services
	tradeService := service.NewTradeService(tradeRepo, stockRepo, accountRepo, log)
	holdingsService := service.NewHoldingsService(
		tradeRepo, stockRepo, accountRepo, actionRepo, allocationRepo, priceRepo, log,
	)
	allocationService := service.NewAllocationService(
		allocationRepo, ownerRepo, goalRepo, stockRepo, accountRepo, tradeRepo, holdingsService, log,
	)
	actionService := service.NewCorporateActionService(actionRepo, tradeRepo, stockRepo, log)
	reconciliationService := service.NewReconciliationService(
		tradeRepo, stockRepo, pnlRepo, actionService, log,
	)
	pnlService := service.NewRealizedPnLService(pnlRepo, tradeRepo, holdingsService, log)
	priceService := service.NewPriceService(
		priceRepo, stockRepo, quotes.NewClient(cfg.Quotes.Suffix), log,
	)

	// Background price refresh
	sched := scheduler.New(log)
	if cfg.Quotes.Schedule != "" {
		if err := sched.AddJob(cfg.Quotes.Schedule, service.RefreshJob{Service: priceService}); err != nil {
			log.Fatal().Err(err).Msg("failed to register price refresh job")
		}
	}
	sched.Start()
	defer sched.Stop()

	// Create router
	router := api.NewRouter(db, api.Services{
		Trades:          tradeService,
		Holdings:        holdingsService,
		Allocations:     allocationService,
		CorporateAction: actionService,
		Reconciliation:  reconciliationService,
		RealizedPnL:     pnlService,
		Prices:          priceService,
	}, api.Repositories{
		Stocks:   stockRepo,
		Accounts: accountRepo,
		Owners:   ownerRepo,
		Goals:    goalRepo,
	}, cfg, log)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited")
}
