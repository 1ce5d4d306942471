package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/waylog/waylog/internal/api"
	"github.com/waylog/waylog/internal/service"
	"github.com/waylog/waylog/internal/storage"
	"github.com/waylog/waylog/internal/storage/mongostore"
	"github.com/waylog/waylog/internal/storage/sqlite"
	"github.com/waylog/waylog/pkg/logging"
)

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// openStore selects the storage backend: MongoDB when MONGO_URI is set,
// SQLite otherwise.
func openStore(ctx context.Context) (storage.Store, error) {
	if uri := os.Getenv("MONGO_URI"); uri != "" {
		dbName := getEnv("MONGO_DB", "waylog")
		slog.Info("using mongodb storage", "database", dbName)
		return mongostore.New(ctx, uri, dbName)
	}

	dbPath := getEnv("DB_PATH", "./data/waylog.db")
	slog.Info("using sqlite storage", "database", dbPath)
	return sqlite.New(dbPath)
}

func main() {
	logging.Setup()

	ctx := context.Background()

	store, err := openStore(ctx)
	if err != nil {
		slog.Error("failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	handler := api.NewHandler(
		service.NewLogService(store),
		service.NewTripService(store),
	)

	addr := getEnv("ADDR", ":8080")
	server := &http.Server{
		Addr:    addr,
		Handler: api.Routes(handler),
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "address", addr)
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	case sig := <-stop:
		slog.Info("shutting down", "signal", sig.String())
		shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown failed", "error", err)
			os.Exit(1)
		}
	}
}
