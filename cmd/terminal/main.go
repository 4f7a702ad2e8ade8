package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pos-terminal/internal/backend"
	"pos-terminal/internal/capture"
	"pos-terminal/internal/catalog"
	"pos-terminal/internal/checkout"
	"pos-terminal/internal/config"
	"pos-terminal/internal/connectivity"
	"pos-terminal/internal/handler"
	"pos-terminal/internal/model"
	"pos-terminal/internal/router"
	"pos-terminal/internal/storage"
	"pos-terminal/internal/syncqueue"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger)
	logger.Info().
		Str("terminal", cfg.Terminal.TerminalNumber).
		Int("location_id", cfg.Terminal.LocationID).
		Msg("starting POS terminal")

	// Root context; cancelling it stops every periodic loop
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := storage.Open(cfg.Storage.Path, logger)
	if err != nil {
		return fmt.Errorf("failed to open local storage: %w", err)
	}
	defer db.Close()

	queue := storage.NewOrderQueue(db, logger)
	menuCache := storage.NewMenuCache(db, logger)

	client, err := backend.NewClient(cfg.Backend.BaseURL, time.Duration(cfg.Backend.RequestTimeout)*time.Second, logger)
	if err != nil {
		return fmt.Errorf("failed to create backend client: %w", err)
	}

	monitor := connectivity.NewMonitor(
		client,
		time.Duration(cfg.Sync.ProbeInterval)*time.Second,
		time.Duration(cfg.Sync.ProbeTimeout)*time.Second,
		logger,
	)
	linkWatcher := connectivity.NewLinkWatcher(monitor, 1*time.Second, logger)

	catalogSvc := catalog.NewService(client, menuCache, cfg.Terminal.LocationID, logger)
	manager := syncqueue.NewManager(client, queue, monitor, logger)

	terminal := model.TerminalContext{
		UserID:         cfg.Terminal.UserID,
		LocationID:     cfg.Terminal.LocationID,
		OrderTypeID:    cfg.Terminal.OrderTypeID,
		TerminalNumber: cfg.Terminal.TerminalNumber,
	}
	cart := checkout.NewCart()
	captureSvc := capture.NewService(client, queue, cart, terminal, logger)

	cartHandler := handler.NewCartHandler(cart, captureSvc, logger)
	menuHandler := handler.NewMenuHandler(catalogSvc, logger)
	statusHandler := handler.NewStatusHandler(manager, queue, logger)

	mux := router.New(cartHandler, menuHandler, statusHandler, logger)

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Background loops
	go linkWatcher.Run(ctx)
	go monitor.Run(ctx)
	go manager.Run(ctx,
		time.Duration(cfg.Sync.CountRefreshInterval)*time.Second,
		time.Duration(cfg.Sync.DrainPollInterval)*time.Second,
	)

	// Initial menu sync is fire-and-forget: capture must not wait on it
	go func() {
		if err := catalogSvc.Sync(ctx); err != nil {
			logger.Warn().Err(err).Msg("initial menu sync failed, serving cached menu until retry")
		}
	}()
	go catalogSvc.RunPeriodic(ctx, time.Duration(cfg.Sync.CatalogSyncInterval)*time.Second)

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info().Str("address", cfg.Server.Address()).Msg("control surface started")
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Stop the periodic loops before tearing the listener down
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("terminal shutdown completed")
	}

	return nil
}
