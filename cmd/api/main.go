package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	httptransport "github.com/spec-kit/strategy-hub/internal/api/http"
	"github.com/spec-kit/strategy-hub/internal/api/http/handlers"
	"github.com/spec-kit/strategy-hub/internal/auth"
	"github.com/spec-kit/strategy-hub/internal/config"
	"github.com/spec-kit/strategy-hub/internal/events"
	"github.com/spec-kit/strategy-hub/internal/observability"
	"github.com/spec-kit/strategy-hub/internal/persistence"
	"github.com/spec-kit/strategy-hub/internal/repository"
	"github.com/spec-kit/strategy-hub/internal/service"
	"github.com/spec-kit/strategy-hub/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations && pg.Configured() {
		if err := persistence.RunMigrations(ctx, pg.Pool, cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()

	codec, err := auth.NewCodec(cfg.Auth.JWTSecret, logger, auth.WithIssuer(cfg.Auth.Issuer))
	if err != nil {
		logger.Fatal("failed to init token codec", zap.Error(err))
	}
	tokens := auth.NewAuthority(codec, cfg.Auth.AccessTTL(), cfg.Auth.RefreshTTL(), logger)

	userRepo := repository.NewUserRepository(pg.Pool)
	catalogRepo := repository.NewCatalogRepository(pg.Pool)
	revocations := repository.NewRevocationRepository(redis.Client, cfg.Redis.RevokedKeyPrefix, cfg.Redis.OperationTimeout())

	dispatcher := events.NewInMemoryDispatcher(logger)
	notifications := worker.NewNotificationWorker(service.NewNotificationService(logger, cfg.Notification), 256, logger)
	notifications.Subscribe(dispatcher, service.NotificationEvents...)
	workerDone := make(chan struct{})
	go func() {
		notifications.Run(ctx)
		close(workerDone)
	}()

	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		UserRepo:    userRepo,
		Tokens:      tokens,
		Revocations: revocations,
		Dispatcher:  dispatcher,
		Metrics:     metrics,
		Logger:      logger,
	})
	catalogService := service.NewCatalogService(catalogRepo)

	authenticator := auth.NewAuthenticator(auth.AuthenticatorDependencies{
		Tokens:      tokens,
		Revocations: revocations,
		Roles:       userRepo,
		Metrics:     metrics,
		Logger:      logger,
	})
	policy, err := auth.NewAccessPolicy(httptransport.AccessRules)
	if err != nil {
		logger.Fatal("invalid access rules", zap.Error(err))
	}

	app := httptransport.NewApp(cfg.App.Name, logger)
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres": pg,
			"redis":    redis,
		}),
		Auth:          handlers.NewAuthHandler(authService),
		Users:         handlers.NewUsersHandler(authService),
		Catalog:       handlers.NewCatalogHandler(catalogService),
		Admin:         handlers.NewAdminHandler(authService),
		Authenticator: authenticator,
		AccessPolicy:  policy,
		Metrics:       metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(cfg.App.RequestTimeout() + time.Second); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	cancel()
	<-workerDone
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
