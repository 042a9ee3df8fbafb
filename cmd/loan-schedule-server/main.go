package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iwvelando/loan-schedule/internal/logging"
	"github.com/iwvelando/loan-schedule/internal/server"
	"github.com/iwvelando/loan-schedule/internal/suggestions"
	"github.com/iwvelando/loan-schedule/pkg/constants"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

var version = "dev"

func main() {
	_ = godotenv.Load()

	configLocation := flag.String("config", constants.DefaultServerConfigFile, "path to server configuration file")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	cfg, err := server.LoadConfig(*configLocation)
	if err != nil {
		fmt.Fprintf(os.Stderr, "{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load server configuration at %s\", \"error\": %q}\n", *configLocation, err.Error())
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Logging, *logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": %q}\n", err.Error())
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	svc, err := suggestions.NewServiceFromConfig(context.Background(), logger, cfg.Suggestions)
	if err != nil {
		logger.Fatal("failed to set up suggestions",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.Warn("failed to close suggestion cache", zap.String("op", "main"), zap.Error(err))
		}
	}()
	if !svc.Enabled() {
		logger.Info("suggestions disabled", zap.String("op", "main"))
	}

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	if err := svc.CheckCache(pingCtx); err != nil {
		logger.Warn("suggestion cache unreachable, every lookup will miss",
			zap.String("op", "main"),
			zap.String("backend", cfg.Suggestions.Cache.Backend),
			zap.Error(err),
		)
	}
	cancelPing()

	var limiter *server.RateLimiter
	if cfg.RateLimit.Requests > 0 {
		limiter = server.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
		defer limiter.Stop()
	}

	handler := server.NewHandler(logger, server.Options{
		MaxRequestSize: cfg.RequestSizeBytes(),
		Version:        version,
		Suggestions:    svc,
		RateLimiter:    limiter,
		CORS:           cfg.CORS,
	})

	// Suggestion calls may run up to their own timeout before the response is written.
	writeTimeout := 15 * time.Second
	if cfg.Suggestions.Timeout+5*time.Second > writeTimeout {
		writeTimeout = cfg.Suggestions.Timeout + 5*time.Second
	}

	srv := &http.Server{
		Addr:         cfg.Address,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting loan schedule server",
			zap.String("op", "main"),
			zap.String("address", cfg.Address),
			zap.String("version", version),
			zap.Int64("maxRequestSize", cfg.RequestSizeBytes()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		logger.Error("server failed",
			zap.String("op", "main"),
			zap.Error(err),
		)
		return
	case sig := <-quit:
		logger.Info("shutting down server",
			zap.String("op", "main"),
			zap.String("signal", sig.String()),
		)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("error during server shutdown",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	logger.Info("server exited", zap.String("op", "main"))
}
