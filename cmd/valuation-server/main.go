package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"

	"github.com/joelkehle/startup-valuation/internal/config"
	"github.com/joelkehle/startup-valuation/internal/httpapi"
	"github.com/joelkehle/startup-valuation/internal/logging"
	"github.com/joelkehle/startup-valuation/internal/report"
	"github.com/joelkehle/startup-valuation/internal/service"
	"github.com/joelkehle/startup-valuation/internal/store"
	"github.com/joelkehle/startup-valuation/internal/telemetry"
	"github.com/joelkehle/startup-valuation/internal/valuation"
)

func main() {
	configPath := flag.String("config", os.Getenv("VALUATION_CONFIG"), "Path to YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "valuation-server: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Config{
		Endpoint:    cfg.Tracing.Endpoint,
		ServiceName: cfg.Tracing.ServiceName,
		SampleRatio: cfg.Tracing.SampleRatio,
		Insecure:    cfg.Tracing.Insecure,
	})
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}

	if err := ensureParentDir(cfg.Store); err != nil {
		return err
	}
	st, err := store.Open(cfg.Store.Backend, cfg.Store.DBPath, cfg.Store.StateFile)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Warn("close store", zap.Error(err))
		}
	}()

	svc := service.New(st, valuation.DefaultProfiles, report.NewPDFRenderer(cfg.WebDir), logger)
	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: httpapi.NewServer(svc, logger, cfg.ShareBaseURL),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("valuation server listening",
			zap.String("addr", cfg.ListenAddr),
			zap.String("store", cfg.Store.Backend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warn("tracing shutdown", zap.Error(err))
	}
	return nil
}

func ensureParentDir(cfg config.StoreConfig) error {
	var path string
	switch cfg.Backend {
	case store.BackendSQLite:
		path = cfg.DBPath
	case store.BackendFile:
		path = cfg.StateFile
	default:
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	return nil
}
