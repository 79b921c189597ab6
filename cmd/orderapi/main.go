package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"orderwarden/internal/config"
	"orderwarden/internal/database"
	"orderwarden/internal/handler"
	"orderwarden/internal/service"
	"orderwarden/internal/store"
	"orderwarden/internal/worker"
)

const demoShop = "OrderWardenDemoShop"

func main() {
	cfg := config.New()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var st store.Store
	if cfg.Memory {
		slog.Info("using in-memory store")
		st = store.NewMemoryStore(time.Now)
	} else {
		db, err := database.NewDB(ctx, cfg.DatabaseURI)
		if err != nil {
			slog.Error("failed to connect to DB", "error", err)
			os.Exit(1)
		}
		defer database.CloseDB(db)

		if err := database.InitSchema(ctx, db); err != nil {
			slog.Error("failed to init DB schema", "error", err)
			os.Exit(1)
		}
		st = store.NewPostgresStore(db)
	}

	var carrier service.Carrier
	if cfg.CarrierSystemAddress != "" {
		carrier = service.NewCarrierClient(cfg.CarrierSystemAddress)
	} else {
		slog.Info("no carrier system configured, simulating tracking")
		carrier = service.NewSimulator(time.Now)
	}

	// Services
	orderSvc := service.NewOrderService(st)
	trackingSvc := service.NewTrackingService(st, carrier, time.Now)
	etsySvc := service.NewEtsyService(st, service.NewFixtureMarketplace(demoShop), time.Now)

	r := handler.NewRouter(handler.Services{
		Orders:   orderSvc,
		Tracking: trackingSvc,
		Etsy:     etsySvc,
	}, cfg.JWTSecret, cfg.DashboardURL)

	srv := &http.Server{
		Addr:         cfg.RunAddress,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	if cfg.RefreshInterval > 0 {
		trackingWorker := worker.NewTrackingWorker(st, trackingSvc, cfg.RefreshInterval, cfg.RefreshBatch)
		go trackingWorker.Start(ctx)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	slog.Info("starting server", "addr", cfg.RunAddress)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
			quit <- syscall.SIGTERM
		}
	}()

	<-quit
	slog.Info("shutting down...")

	cancel() // stop worker
	ctxShut, cancelShut := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShut()

	if err := srv.Shutdown(ctxShut); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}

	slog.Info("server stopped")
}
