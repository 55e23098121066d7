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

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"paycache/internal/archive"
	"paycache/internal/config"
	"paycache/internal/httpapi"
	"paycache/internal/payments"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Load the record archive and serve the payments API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx)
		},
	}
}

func runServe(ctx context.Context) error {
	_ = godotenv.Load()
	cfg, err := config.Parse()
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	ar, err := archive.Open(ctx, cfg.Archive())
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}

	// A missing archive is fatal: the process must not start serving an
	// empty cache it could later persist over a real snapshot.
	store, err := payments.LoadStore(ctx, ar, logger)
	if err != nil {
		return err
	}

	sim := payments.NewSimulator(cfg.AdvanceProbability, nil)
	writer := payments.NewWriter(store, ar, logger)
	service := payments.NewService(store, sim, writer)
	server := httpapi.NewServer(service, cfg.ArchiveDriver)

	srv := &http.Server{Addr: cfg.Addr, Handler: server.Handler()}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving payments api", "addr", cfg.Addr, "records", store.Len())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		writer.Close()
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http shutdown", "error", err)
	}
	// Final best-effort flush of any pending persist signal.
	writer.Close()
	logger.Info("shutdown complete")
	return nil
}
