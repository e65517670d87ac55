package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fmcg-admin-api/internal/cache"
	"fmcg-admin-api/internal/config"
	"fmcg-admin-api/internal/handler"
	"fmcg-admin-api/internal/repository"
	"fmcg-admin-api/internal/router"
	"fmcg-admin-api/internal/service"
	"fmcg-admin-api/internal/storage"
	"fmcg-admin-api/internal/ws"
	"fmcg-admin-api/pkg/database"
	"fmcg-admin-api/pkg/pin"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "warning: .env file not found, using process environment")
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	setupLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Setup Database
	db, err := database.ConnectDB(cfg.DSN(), cfg.LogLevel)
	if err != nil {
		log.Fatal().Err(err).Msg("database unavailable")
	}
	if cfg.DBAutoMigrate {
		if err := database.Migrate(db); err != nil {
			log.Fatal().Err(err).Msg("auto migrate failed")
		}
	}

	// 3. Optional infrastructure
	var overlapCache *cache.OverlapCache
	var offerCache service.OverlapCache
	var overlaps service.OverlapInvalidator
	var pinger handler.Pinger
	if cfg.RedisURL != "" {
		client, err := cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, overlap cache disabled")
		} else {
			defer client.Close()
			overlapCache = cache.NewOverlapCache(client)
			offerCache, overlaps, pinger = overlapCache, overlapCache, overlapCache
		}
	}

	var images service.ImageStore
	if cfg.StorageEnabled() {
		store, err := storage.NewS3Store(ctx, cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("object storage misconfigured")
		}
		images = store
	} else {
		log.Warn().Msg("STORAGE_* not set, image uploads will be rejected")
	}

	gate := pin.NewGate(cfg.AdminPIN, cfg.AdminPINHash)
	if !gate.Configured() {
		log.Warn().Msg("no admin PIN configured, every PIN protected action will be refused")
	}

	// 4. Setup WebSocket Hub
	wsHub := ws.NewHub()
	go wsHub.Run(ctx)

	// 5. Dependency Injection (Wiring Layers)
	txm := repository.NewTxManager(db)
	ledgerRepo := repository.NewLedgerRepo(db)
	stockRepo := repository.NewStockRepo(db)
	historyRepo := repository.NewHistoryRepo(db)
	offerRepo := repository.NewOfferRepo(db)
	poolRepo := repository.NewOfferPoolRepo(db)
	productRepo := repository.NewProductRepo(db)
	companyRepo := repository.NewCompanyRepo(db)
	itemRepo := repository.NewExternalItemRepo(db)
	customerRepo := repository.NewCustomerRepo(db)
	dashRepo := repository.NewDashboardRepo(db)

	offerService := service.NewOfferService(txm, offerRepo, poolRepo, productRepo, stockRepo, itemRepo, offerCache, wsHub)
	services := router.Services{
		Ledger:    service.NewLedgerService(txm, ledgerRepo, stockRepo, historyRepo, offerService, gate, wsHub),
		Pools:     service.NewOfferPoolService(txm, poolRepo, ledgerRepo, historyRepo, offerService, gate, wsHub),
		Offers:    offerService,
		Companies: service.NewCompanyService(txm, companyRepo, productRepo, offerRepo, images, overlaps, gate),
		Products:  service.NewProductService(txm, productRepo, companyRepo, stockRepo, offerRepo, images, overlaps, wsHub),
		Items:     service.NewExternalItemService(itemRepo, offerRepo, images, gate),
		Customers: service.NewCustomerService(customerRepo),
		Dashboard: service.NewDashboardService(dashRepo),
	}

	// 6. Setup Fiber
	app := router.New(cfg, services, wsHub, handler.Health(db, pinger))

	// 7. Graceful Shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("server listening")
		if err := app.Listen(addr); err != nil {
			log.Error().Err(err).Msg("server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down server")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info().Msg("server exited")
}

func setupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if !cfg.IsProduction() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	}
	// log.Ctx falls back to the global logger outside requests
	zerolog.DefaultContextLogger = &log.Logger
}
