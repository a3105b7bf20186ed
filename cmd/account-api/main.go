// Package main is the entry point for the account service. It loads
// configuration, connects MongoDB and Redis, wires the auth gateway and the
// account use cases, and serves the HTTP API until SIGINT/SIGTERM.
//
// @title        Account Service API
// @version      1.0
// @description  Account registration, credential flows and session cookies backed by the external auth service.
// @BasePath     /
//
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
//
// @securityDefinitions.apikey  CookieAuth
// @in                          cookie
// @name                        accessToken
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/99minutos/account-service/internal/api"
	"github.com/99minutos/account-service/internal/core/service"
	"github.com/99minutos/account-service/internal/infrastructure/authclient"
	"github.com/99minutos/account-service/internal/infrastructure/config"
	mongodb "github.com/99minutos/account-service/internal/infrastructure/db/mongo"
	redisdb "github.com/99minutos/account-service/internal/infrastructure/db/redis"
	"github.com/99minutos/account-service/internal/infrastructure/http/handlers"
	"github.com/99minutos/account-service/internal/metrics"
	"github.com/99minutos/account-service/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Load Configuration ---
	cfg, err := config.Load(ctx)
	if err != nil {
		l := logger.Init(logger.Options{Output: os.Stderr})
		l.Fatal().Err(err).Msg("failed to load config")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: cfg.AuthService.AppID,
	})
	log.Info().Str("env", cfg.Env).Str("port", cfg.Port).Msg("starting account service")

	// --- Connect to MongoDB ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  cfg.AuthService.AppID,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()

	accounts := mongodb.NewAccountRepository(mongoClient, db)
	if err := accounts.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to create MongoDB indexes")
	}

	// --- Connect to Redis ---
	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer func() { _ = rdb.Close() }()

	ledger := redisdb.NewReconciliationLog(rdb)
	if pending, err := ledger.Pending(ctx); err != nil {
		log.Warn().Err(err).Msg("could not read reconciliation ledger")
	} else {
		metrics.ReconciliationBacklog.Set(float64(len(pending)))
		if len(pending) > 0 {
			log.Warn().Int("pending", len(pending)).Msg("remote identities awaiting manual reconciliation")
		}
	}

	// --- Wire use cases ---
	gateway := authclient.New(authclient.Config{
		BaseURL: cfg.AuthService.URL,
		AppID:   cfg.AuthService.AppID,
		Timeout: cfg.AuthService.Timeout,
	}, logger.Component("authclient"))

	tokens := service.NewTokenValidator(cfg.JWTSecret, logger.Component("tokens"))
	accountService := service.NewAccountService(
		gateway,
		accounts,
		mongodb.NewCatalogRepository(db),
		ledger,
		cfg.BcryptCost,
		logger.Component("accounts"),
	)

	e := api.NewRouter(api.Dependencies{
		Accounts: accountService,
		Tokens:   tokens,
		Guard:    service.NewGuard(tokens),
		Checks:   []handlers.DependencyCheck{handlers.MongoCheck(db), handlers.RedisCheck(rdb)},
		Log:      logger.Component("http"),
	})

	// --- Start Server ---
	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server stopped unexpectedly")
			stop()
		}
	}()
	log.Info().Str("addr", ":"+cfg.Port).Msg("listening")

	// --- Graceful Shutdown ---
	<-ctx.Done()
	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced shutdown")
	}
}
