// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/gatehouse/gatehouse/internal/auth"
	authpg "github.com/gatehouse/gatehouse/internal/auth/postgres"
	"github.com/gatehouse/gatehouse/internal/config"
	"github.com/gatehouse/gatehouse/internal/httpapi"
	"github.com/gatehouse/gatehouse/internal/logging"
	"github.com/gatehouse/gatehouse/internal/observability"
	"github.com/gatehouse/gatehouse/internal/store"
)

const shutdownTimeout = 10 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	var autoMigrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the authentication API server",
		Long: `Start the HTTP API server serving register, login, logout and
session verification, plus a separate observability endpoint.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configFile, cmd.Flags())
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg, autoMigrate)
		},
	}

	cmd.Flags().Int("port", 8080, "HTTP listen port")
	cmd.Flags().String("metrics-addr", "localhost:9090", "metrics/health HTTP address")
	cmd.Flags().String("log-format", "json", "log format (json or text)")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	cmd.Flags().Bool("cookie-secure", false, "mark the session cookie Secure (enable behind TLS)")
	cmd.Flags().String("database-url", "", "PostgreSQL connection URL (overrides DB_* settings)")
	cmd.Flags().Duration("token-ttl", time.Hour, "session token lifetime")
	cmd.Flags().Duration("store-timeout", 5*time.Second, "per-request database timeout")
	cmd.Flags().BoolVar(&autoMigrate, "auto-migrate", false, "apply pending migrations on startup")

	return cmd
}

func runServe(ctx context.Context, cfg config.Config, autoMigrate bool) error {
	logging.SetDefault("gatehouse", version, cfg.LogFormat, logging.ParseLevel(cfg.LogLevel))
	logger := slog.Default()

	logger.Info("starting gatehouse",
		"port", cfg.Port,
		"metrics_addr", cfg.MetricsAddr,
		"log_format", cfg.LogFormat,
	)

	if autoMigrate {
		migrator, err := store.NewMigrator(cfg.DSN())
		if err != nil {
			return err
		}
		err = migrator.Up()
		if closeErr := migrator.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			return err
		}
		logger.Info("migrations applied")
	}

	db, err := store.Open(ctx, cfg.DSN(), store.OpenOptions{})
	if err != nil {
		return err
	}
	defer db.Close()
	logger.Info("connected to database")

	repo := authpg.NewAccountRepository(db.Pool())
	hasher := auth.NewArgon2idHasher()

	tokens, err := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return err
	}

	svc, err := auth.NewServiceWithLogger(repo, hasher, tokens, logger)
	if err != nil {
		return err
	}

	obsServer := observability.NewServer(cfg.MetricsAddr, func() bool {
		probeCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return db.Ready(probeCtx)
	})
	obsErrCh, err := obsServer.Start()
	if err != nil {
		return err
	}

	apiServer, err := httpapi.NewServer(fmt.Sprintf(":%d", cfg.Port), httpapi.Options{
		Service:            svc,
		Tokens:             tokens,
		Metrics:            obsServer.Metrics(),
		Logger:             logger,
		CookieSecure:       cfg.CookieSecure,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		StoreTimeout:       cfg.StoreTimeout,
	})
	if err != nil {
		return err
	}
	apiErrCh, err := apiServer.Start()
	if err != nil {
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = obsServer.Stop(stopCtx)
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		logger.Info("shutting down", "signal", sig.String())
	case err = <-apiErrCh:
		logger.Error("api server failed", "error", err)
	case err = <-obsErrCh:
		logger.Error("observability server failed", "error", err)
	case <-ctx.Done():
		logger.Info("shutting down", "reason", "context canceled")
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if stopErr := apiServer.Stop(stopCtx); stopErr != nil && err == nil {
		err = stopErr
	}
	if stopErr := obsServer.Stop(stopCtx); stopErr != nil && err == nil {
		err = stopErr
	}
	return err
}
