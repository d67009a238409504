package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/billreminder/internal/api"
	"github.com/mmynk/billreminder/internal/app"
	"github.com/mmynk/billreminder/internal/auth"
	"github.com/mmynk/billreminder/internal/config"
	"github.com/mmynk/billreminder/internal/dispatch"
	"github.com/mmynk/billreminder/internal/middleware"
	"github.com/mmynk/billreminder/internal/service"
	"github.com/mmynk/billreminder/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.ValidateServer(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.LogFormat, cfg.LogLevel)
	logger := slog.Default()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := app.OpenStore(ctx, cfg)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	dispatcher, err := app.NewDispatch(ctx, cfg, store, logger)
	if err != nil {
		slog.Error("Failed to initialize dispatcher", "error", err)
		os.Exit(1)
	}
	defer dispatcher.Close()

	var verifier dispatch.TokenVerifier
	if cfg.DispatchTokenHash != "" {
		token, err := auth.NewDispatchToken(cfg.DispatchTokenHash)
		if err != nil {
			slog.Error("Invalid DISPATCH_TOKEN_HASH", "error", err)
			os.Exit(1)
		}
		verifier = token
	} else {
		slog.Warn("Dispatch endpoint is unauthenticated: DISPATCH_TOKEN_HASH not set")
	}

	mux := http.NewServeMux()

	// Register Connect services
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, time.Hour)
	interceptors := connect.WithInterceptors(
		middleware.RequireAuth(jwtManager),
		middleware.LoggingInterceptor(),
	)

	billPath, billHandler := api.NewBillServiceHandler(service.NewBillService(store, cfg.Location), interceptors)
	mux.Handle(billPath, billHandler)

	settingsPath, settingsHandler := api.NewSettingsServiceHandler(service.NewSettingsService(store), interceptors)
	mux.Handle(settingsPath, settingsHandler)

	mux.Handle(dispatch.HandlerPath, dispatch.NewHandler(dispatcher, verifier, logger))
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	var scheduler *dispatch.Scheduler
	if cfg.DispatchSchedule != "" {
		scheduler, err = dispatch.NewScheduler(cfg.DispatchSchedule, cfg.Location, dispatcher, logger)
		if err != nil {
			slog.Error("Failed to create dispatch scheduler", "error", err)
			os.Exit(1)
		}
		scheduler.Start()
		slog.Info("Dispatch scheduler started", "schedule", cfg.DispatchSchedule, "timezone", cfg.Location.String())
	}

	// Wrap with h2c for HTTP/2 without TLS (required for Connect)
	handler := h2c.NewHandler(middleware.Logging(middleware.CORS(mux)), &http2.Server{})

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Connect server starting", "address", addr, "url", fmt.Sprintf("http://localhost%s", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if scheduler != nil {
		scheduler.Stop(shutdownCtx)
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
	}
}
