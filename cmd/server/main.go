package main // Entry point package

import (
	"context"   // Startup and shutdown deadlines
	"errors"    // Distinguish a clean server close
	"fmt"       // Startup failure output before the logger exists
	"net/http"  // http.ErrServerClosed
	"os"        // Exit codes and signals
	"os/signal" // Signal-driven shutdown
	"syscall"   // SIGTERM
	"time"      // Timeouts

	"github.com/labstack/echo/v4" // Echo web framework
	"go.uber.org/zap"             // Structured logging

	"github.com/iliyamo/wordbook/internal/config"     // Config and service binding loader
	"github.com/iliyamo/wordbook/internal/database"   // Connection spec parsing
	"github.com/iliyamo/wordbook/internal/handler"    // HTTP handlers
	"github.com/iliyamo/wordbook/internal/logger"     // zap construction
	"github.com/iliyamo/wordbook/internal/middleware" // Request logging and recovery
	"github.com/iliyamo/wordbook/internal/repository" // Word store gateway
	"github.com/iliyamo/wordbook/internal/router"     // Route registration
)

const (
	startupTimeout  = 30 * time.Second
	shutdownTimeout = 10 * time.Second
)

func main() {
	cfg, err := config.Load() // Load environment config
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Env) // Build the process logger
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg, log) // Connect and ensure the schema exists
	if err != nil {
		log.Fatal("datastore unavailable", zap.Error(err))
	}

	e := echo.New() // Create Echo instance
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Standard(log)...) // Request logging wrapping panic recovery
	router.RegisterRoutes(e, handler.NewWordHandler(store, log.Named("handler")), cfg.PublicDir)

	go func() {
		log.Info("listening", zap.String("addr", cfg.Addr()), zap.String("public_dir", cfg.PublicDir))
		if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done() // Wait for a signal or a server failure
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown", zap.Error(err))
	}
	if err := store.Close(shutdownCtx); err != nil {
		log.Error("close datastore", zap.Error(err))
	}
}

// openStore resolves the bound datastore service, connects to it and makes
// sure the words table exists.
func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (repository.WordStore, error) {
	binding, err := config.ResolveBinding(cfg.ServiceLabel, cfg.BindingsFile)
	if err != nil {
		return nil, err
	}
	spec, err := database.ParseConnSpec(binding.Credentials)
	if err != nil {
		return nil, fmt.Errorf("binding %q: %w", binding.Name, err)
	}
	log.Info("service bound",
		zap.String("label", binding.Label),
		zap.String("name", binding.Name),
		zap.String("source", binding.Source),
		zap.String("uri", spec.Redacted()))

	table := repository.TableSpec{Database: cfg.Database, Table: cfg.Table, Replicas: spec.Replicas}
	if cfg.Replicas > 0 { // WORDS_REPLICAS overrides the binding hint
		table.Replicas = cfg.Replicas
	}

	ctx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	store, err := repository.NewWordStore(ctx, spec, table, log)
	if err != nil {
		return nil, err
	}
	if err := store.EnsureSchema(ctx); err != nil {
		_ = store.Close(context.Background())
		return nil, err
	}
	return store, nil
}
