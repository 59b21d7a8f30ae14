package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	cardhandler "tapbank/internal/card/handler"
	cardmetrics "tapbank/internal/card/metrics"
	cardservice "tapbank/internal/card/service"
	cardstore "tapbank/internal/card/store"
	dispatchhandler "tapbank/internal/dispatch/handler"
	dispatchmetrics "tapbank/internal/dispatch/metrics"
	dispatchservice "tapbank/internal/dispatch/service"
	"tapbank/internal/ledger/gateway"
	pinhandler "tapbank/internal/pin/handler"
	"tapbank/internal/pin/pinata"
	"tapbank/internal/platform/config"
	"tapbank/internal/platform/health"
	"tapbank/internal/platform/httpserver"
	"tapbank/internal/platform/logger"
	"tapbank/internal/platform/middleware"
	poshandler "tapbank/internal/pos/handler"
	posmetrics "tapbank/internal/pos/metrics"
	posservice "tapbank/internal/pos/service"
	posstore "tapbank/internal/pos/store"
	httptransport "tapbank/internal/transport/http"
)

// main wires dependencies and runs the server plus the pending-request
// sweeper. Business logic lives in the internal services.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	log.Info("initializing tapbank-gateway",
		"addr", cfg.Addr,
		"ledger_gateway", cfg.LedgerBaseURL,
		"pending_ttl", cfg.PendingTTL.String(),
	)

	if cfg.DeviceAPIKey == "" && cfg.DeviceAPIKeyHash == "" {
		log.Warn("no device API key configured, all device endpoints will reject")
	}

	ledgerClient := gateway.New(cfg.LedgerBaseURL, cfg.LedgerAPIKey, cfg.LedgerTimeout)
	pinner := pinata.New(cfg.PinataBaseURL, cfg.PinataJWT, cfg.PinataGateway,
		pinata.WithFallbackGateway(cfg.FallbackGateway))

	cards := cardstore.NewInMemory()
	pending := posstore.NewInMemory()

	cardSvc := cardservice.New(cards, ledgerClient,
		cardservice.WithLogger(log),
		cardservice.WithMetrics(cardmetrics.New()))
	posSvc := posservice.New(pending, cfg.PendingTTL,
		posservice.WithLogger(log),
		posservice.WithMetrics(posmetrics.New()))
	dispatchSvc := dispatchservice.New(cards, posSvc, ledgerClient,
		dispatchservice.WithLogger(log),
		dispatchservice.WithMetrics(dispatchmetrics.New()))

	healthHandler := health.New(os.Getenv("ENVIRONMENT"))
	healthHandler.RegisterCheck("ledger_gateway", func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		return ledgerClient.Health(ctx)
	})

	router := httptransport.NewRouter(
		httptransport.Config{
			DeviceAuth: middleware.DeviceAuthConfig{
				Key:     cfg.DeviceAPIKey,
				KeyHash: cfg.DeviceAPIKeyHash,
			},
			AdminToken:     cfg.AdminToken,
			AllowedOrigins: cfg.AllowedOrigins,
		},
		httptransport.Handlers{
			Card:     cardhandler.New(cardSvc, log),
			POS:      poshandler.New(posSvc, log),
			Dispatch: dispatchhandler.New(dispatchSvc, log),
			Pin:      pinhandler.New(pinner, log),
			Health:   healthHandler,
		},
		log,
	)

	srv := httpserver.New(cfg.Addr, router)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		err := posSvc.RunSweeper(ctx, cfg.SweepInterval)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}
