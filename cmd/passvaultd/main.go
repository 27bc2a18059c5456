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

	sqliteadapter "github.com/yurizz-crypto/passvault/internal/adapter/driven/sqlite"
	httphandler "github.com/yurizz-crypto/passvault/internal/adapter/driving/http"
	"github.com/yurizz-crypto/passvault/internal/application"
	"github.com/yurizz-crypto/passvault/internal/auth"
	"github.com/yurizz-crypto/passvault/internal/config"
	"github.com/yurizz-crypto/passvault/internal/keystore"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on missing required env vars).
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"key_path", cfg.KeyPath,
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Load or generate the encryption key. A malformed key file is fatal:
	// serving with a fresh key would orphan every stored secret.
	ks := keystore.New(cfg.KeyPath)
	if err := ks.Load(); err != nil {
		return err
	}
	slog.Info("encryption key ready", "path", cfg.KeyPath)

	// 4. Open database (dual reader/writer with WAL mode).
	db, err := sqliteadapter.NewDB(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()
	slog.Info("database opened", "path", cfg.DBPath)

	// 5. Run migrations on writer connection.
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}
	slog.Info("migrations complete")

	// 6. Wire adapters and services.
	logger := slog.Default()
	tokens := auth.NewJWTManager(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	vault := application.NewVaultService(sqliteadapter.NewRecordRepo(db), ks.Key(), logger)
	accounts := application.NewAccountService(sqliteadapter.NewUserRepo(db), tokens)

	handler := httphandler.NewHandler(vault, accounts, logger)
	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           httphandler.NewServeMux(handler, tokens, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	// 7. Serve until a shutdown signal arrives.
	errCh := make(chan error, 1)
	go func() {
		slog.Info("passvault started", "listen_addr", cfg.ListenAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	slog.Info("shutting down")

	// 8. Graceful shutdown with 10s timeout to drain in-flight requests.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	slog.Info("shutdown complete")
	return nil
}
