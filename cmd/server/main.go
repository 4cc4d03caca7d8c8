package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"titan-screener/internal/analysis"
	"titan-screener/internal/config"
	deliveryhttp "titan-screener/internal/delivery/http"
	deliveryws "titan-screener/internal/delivery/websocket"
	"titan-screener/internal/domain"
	"titan-screener/internal/infrastructure/db"
	"titan-screener/internal/infrastructure/fcm"
	"titan-screener/internal/infrastructure/yahoo"
	"titan-screener/internal/logger"
	"titan-screener/internal/repository"
	"titan-screener/internal/scheduler"
	"titan-screener/internal/usecase"
)

func main() {
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	log.Info().Msg("titan screener starting")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Data feed
	feed := yahoo.NewClient(yahoo.Config{
		BaseURL:  cfg.Feed.BaseURL,
		Timeout:  cfg.Feed.Timeout,
		Throttle: cfg.Feed.Throttle,
		Retries:  cfg.Feed.Retries,
		MinBars:  cfg.Feed.MinBars,
	}, log)

	// Analysis engine
	zones := analysis.NewZoneDetector(analysis.ZoneConfig{
		PivotOrder:   cfg.Zones.PivotOrder,
		MinBars:      cfg.Zones.MinBars,
		BandPct:      cfg.Zones.BandPct,
		ProximityPct: cfg.Zones.ProximityPct,
		MinTouches:   cfg.Zones.MinTouches,
		MaxZones:     cfg.Zones.MaxZones,
	})
	structure := analysis.NewStructureClassifier(cfg.Structure.Window)
	rules := usecase.NewRuleEngine(usecase.RuleConfig{
		EMAFast:      cfg.Rules.EMAFast,
		EMASlow:      cfg.Rules.EMASlow,
		RSIPeriod:    cfg.Rules.RSIPeriod,
		VolSMAPeriod: cfg.Rules.VolSMAPeriod,
		RSIMin:       cfg.Rules.RSIMin,
		RSIMax:       cfg.Rules.RSIMax,
		VolumeMult:   cfg.Rules.VolumeMult,
	})

	scanner := usecase.NewScanner(usecase.ScannerConfig{
		Workers:       cfg.Scan.Workers,
		Interval:      cfg.Feed.Interval,
		Bars:          cfg.Feed.Bars,
		ChartBars:     cfg.Scan.ChartBars,
		FreshnessDays: cfg.Scan.FreshnessDays,
	}, feed, zones, structure, rules, log)

	// Repositories
	scanRepo := repository.NewInMemoryScanRepository()
	watchlist := repository.NewFileWatchlistRepository(cfg.Watchlist.Path)

	var tokenRepo domain.DeviceTokenRepository
	if cfg.Database.URL != "" {
		pool, err := db.NewPool(ctx, cfg.Database.URL, db.DefaultPoolConfig())
		if err != nil {
			log.Fatal().Err(err).Msg("postgres connect failed")
		}
		defer pool.Close()
		if err := db.Migrate(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("postgres migrate failed")
		}
		tokenRepo = repository.NewPostgresTokenRepository(pool)
		log.Info().Msg("device tokens persisted in postgres")
	} else {
		tokenRepo = repository.NewTokenRepository()
	}

	// Notifications
	fcmClient, err := fcm.NewClient(log)
	if err != nil {
		log.Fatal().Err(err).Msg("fcm init failed")
	}
	notifier := usecase.NewGemNotifier(fcmClient, tokenRepo, cfg.Notify.Cooldown, log)

	// Scheduled background scans
	if cfg.Scan.Cron != "" {
		sched := scheduler.New(ctx, scanner, watchlist, scanRepo, notifier, log)
		if err := sched.Register(cfg.Scan.Cron); err != nil {
			log.Fatal().Err(err).Msg("register scan schedule failed")
		}
		sched.Start()
		defer sched.Stop()
		log.Info().Str("cron", cfg.Scan.Cron).Msg("scheduled scans enabled")
	}

	// Delivery
	scanHandler := deliveryhttp.NewScanHandler(scanner, watchlist, scanRepo, log)
	tokenHandler := deliveryhttp.NewTokenHandler(tokenRepo)
	wsHandler := deliveryws.NewHandler(scanner, watchlist, scanRepo, log)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/scan/", scanHandler.HandleScanSymbol)
	mux.HandleFunc("/api/audit/", scanHandler.HandleAudit)
	mux.HandleFunc("/api/bulk_scan", scanHandler.HandleBulkScan)
	mux.HandleFunc("/api/latest", scanHandler.HandleLatest)
	mux.HandleFunc("/api/tokens/register", tokenHandler.HandleRegisterToken)
	mux.HandleFunc("/api/tokens/unregister", tokenHandler.HandleUnregisterToken)
	mux.HandleFunc("/api/tokens/count", tokenHandler.HandleGetTokenCount)
	mux.HandleFunc("/ws/scan", wsHandler.Handle)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: mux,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}
}
