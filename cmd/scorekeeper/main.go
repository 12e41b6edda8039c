package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/riskibarqy/league-live/internal/config"
	"github.com/riskibarqy/league-live/internal/fieldclient"
	"github.com/riskibarqy/league-live/internal/platform/logging"
	"github.com/riskibarqy/league-live/internal/platform/resilience"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.LoadDotEnv(os.Getenv("SCOREKEEPER_ENV_FILE")); err != nil {
		return err
	}
	cfg, err := config.LoadClient()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// stdout is reserved for command output
	logger := logging.NewJSONWriter(os.Stderr, cfg.LogLevel).Named("scorekeeper")
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := fieldclient.OpenFileStore(cfg.QueueFile)
	if err != nil {
		return fmt.Errorf("open queue file: %w", err)
	}

	deliverer, err := fieldclient.NewHTTPDeliverer(fieldclient.HTTPDelivererConfig{
		BaseURL: cfg.ServerURL,
		Timeout: cfg.RequestTimeout,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.CircuitEnabled,
			FailureThreshold: cfg.CircuitFailureCount,
			OpenTimeout:      cfg.CircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.CircuitHalfOpenMaxReq,
		},
	}, logger)
	if err != nil {
		return err
	}

	queue, err := fieldclient.Open(ctx, store, deliverer, fieldclient.Options{
		MaxRetries:     cfg.MaxRetries,
		BaseDelay:      cfg.BaseDelay,
		AttemptTimeout: cfg.AttemptTimeout,
		Concurrency:    cfg.FlushConcurrency,
		Logger:         logger,
	})
	if err != nil {
		return fmt.Errorf("open queue: %w", err)
	}
	defer queue.Close()

	monitor, err := fieldclient.NewConnectivityMonitor(queue, deliverer, fieldclient.MonitorConfig{
		Interval: cfg.PingInterval,
		Timeout:  cfg.PingTimeout,
	}, logger)
	if err != nil {
		return err
	}
	if err := monitor.Start(ctx); err != nil {
		return fmt.Errorf("start connectivity monitor: %w", err)
	}
	defer func() {
		if err := monitor.Stop(); err != nil {
			logger.Warn("stop connectivity monitor failed", "error", err)
		}
	}()

	group, groupCtx := errgroup.WithContext(ctx)
	if cfg.LiveUpdatesEnabled && len(cfg.MatchIDs) > 0 {
		listener, err := fieldclient.NewLiveListener(cfg.ServerURL, cfg.MatchIDs, queue, logger)
		if err != nil {
			return err
		}
		group.Go(func() error {
			return listener.Run(groupCtx)
		})
	}

	logger.Info("scorekeeper ready",
		"server_url", cfg.ServerURL,
		"queue_file", cfg.QueueFile,
		"matches", cfg.MatchIDs,
	)

	c := &console{queue: queue, out: os.Stdout}
	inputDone := make(chan error, 1)
	go func() { inputDone <- c.run(groupCtx, os.Stdin) }()

	select {
	case err = <-inputDone:
	case <-groupCtx.Done():
	}
	stop()
	if waitErr := group.Wait(); waitErr != nil && err == nil && ctx.Err() == nil {
		err = waitErr
	}
	return err
}
