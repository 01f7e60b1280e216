// Package main - Entry point for the sitecost estimation server
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

	"go.uber.org/zap"

	"sitecost/api"
	"sitecost/core/currency"
	"sitecost/core/estimate"
	"sitecost/core/ratetable"
	"sitecost/internal/config"
	"sitecost/internal/logging"
	"sitecost/internal/store"
)

const version = "1.0.0"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "config file (json, yaml or toml)")
	addr := flag.String("addr", "", "server address (overrides config)")
	noStore := flag.Bool("no-store", false, "disable estimate storage")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	if err := logging.Initialize(cfg.Logging); err != nil {
		return err
	}
	defer logging.Sync()
	logger := logging.Logger

	table := ratetable.Default()
	if cfg.Pricing.RateTable != "" {
		t, err := ratetable.LoadFile(cfg.Pricing.RateTable)
		if err != nil {
			return err
		}
		table = t
	}

	opts := []estimate.Option{
		estimate.WithBaseCurrency(cfg.Pricing.Currency),
		estimate.WithLogger(logger),
	}
	if cfg.Pricing.RatesFile != "" {
		snapshot, err := currency.LoadSnapshot(cfg.Pricing.RatesFile)
		if err != nil {
			return err
		}
		opts = append(opts, estimate.WithRates(snapshot))
	}
	service := estimate.NewService(table, opts...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverOpts := []api.Option{api.WithLogger(logger)}
	if !*noStore {
		st, err := store.Open(ctx, cfg.Storage.Driver, cfg.Storage.DSN)
		if err != nil {
			return err
		}
		defer st.Close()
		serverOpts = append(serverOpts, api.WithStore(st))
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      api.NewServer(version, service, serverOpts...),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info("sitecost server listening",
			zap.String("addr", cfg.Server.Addr),
			zap.String("version", version),
			zap.String("rate_table", table.Version()),
			zap.String("currency", string(service.BaseCurrency())),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logging.Error("server stopped", zap.Error(err))
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logging.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeoutSeconds)*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
