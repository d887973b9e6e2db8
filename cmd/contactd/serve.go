package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"portfolio-contact/app"
	"portfolio-contact/config"
	"portfolio-contact/logging"
)

var envFile string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&envFile, "env-file", ".env", "optional dotenv file loaded before reading the environment")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}

	logger, closeLog, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("close failed", zap.Error(err))
		}
	}()
	a.Start(ctx)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           a.Handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	logger.Info("contactd listening",
		zap.String("addr", cfg.ListenAddr),
		zap.String("path", cfg.ContactPath),
		zap.String("env", cfg.Environment),
	)
	logger.Info("rate",
		zap.Bool("enabled", cfg.RateEnabled),
		zap.Int("max", cfg.RateMax),
		zap.Duration("window", cfg.RateWindow),
		zap.String("backend", cfg.RateBackend),
		zap.String("key_header", cfg.RateKeyHeader),
		zap.Bool("fallback_remote_addr", cfg.RateFallbackRemoteAddr),
		zap.String("stats_backend", cfg.RateStatsBackend),
	)
	logger.Info("mail",
		zap.String("provider", cfg.MailProvider),
		zap.Duration("timeout", cfg.DispatchTimeout),
		zap.Float64("rps", cfg.DispatchRPS),
	)
	logger.Info("tracing",
		zap.String("exporter", cfg.Trace.Exporter),
		zap.Float64("sample_ratio", cfg.Trace.SampleRatio),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	a.LogStats()
	logger.Info("contactd stopped")
	return err
}
