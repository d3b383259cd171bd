package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/support-portal/internal/api/http"
	"github.com/spec-kit/support-portal/internal/api/http/handlers"
	"github.com/spec-kit/support-portal/internal/auth"
	"github.com/spec-kit/support-portal/internal/config"
	"github.com/spec-kit/support-portal/internal/events"
	"github.com/spec-kit/support-portal/internal/observability"
	"github.com/spec-kit/support-portal/internal/persistence"
	"github.com/spec-kit/support-portal/internal/repository"
	"github.com/spec-kit/support-portal/internal/service"
	"github.com/spec-kit/support-portal/internal/worker"
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
	logger = observability.WithService(logger, cfg.App.Name, cfg.App.Version)
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing := observability.SetupTracing(ctx, cfg.Telemetry, logger)

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations && pg.Enabled() {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	accounts, identities, tickets := buildRepositories(cfg, pg, redis, logger)

	metrics := observability.NewMetrics(nil)
	dispatcher := events.NewInMemoryDispatcher()
	notifications := worker.NewNotificationWorker(service.NewNotificationService(logger), logger, worker.DefaultQueueSize)
	notifications.Start(dispatcher)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL())
	authService := service.NewAuthService(service.AuthDependencies{
		Accounts:   accounts,
		Hasher:     auth.NewPasswordHasher(cfg.Auth.BcryptCost),
		Tokens:     tokens,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})
	accountService := service.NewAccountService(accounts, dispatcher, metrics, logger)
	ticketService := service.NewTicketService(service.TicketDependencies{
		Tickets:    tickets,
		Rules:      service.ContentRulesFrom(cfg.Ticket),
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})

	dependencies := map[string]handlers.Pinger{}
	if pg.Enabled() {
		dependencies["postgres"] = pg
	}
	if redis.Enabled() {
		dependencies["redis"] = redis
	}

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:  handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, dependencies),
		Auth:    handlers.NewAuthHandler(authService, cfg.Auth),
		Account: handlers.NewAccountHandler(authService, cfg.Auth.CookieName),
		Tickets: handlers.NewTicketsHandler(ticketService),
		IT:      handlers.NewITTicketsHandler(ticketService),
		Manager: handlers.NewManagerHandler(ticketService, accountService),
		Session: auth.NewSessionMiddleware(auth.NewSessionResolver(tokens, identities, logger), cfg.Auth.CookieName),
		Metrics: metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	if err := notifications.Stop(shutdownCtx); err != nil {
		logger.Warn("notification worker shutdown", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warn("tracing shutdown", zap.Error(err))
	}
}

// buildRepositories picks Postgres when a DSN is configured and in-memory
// stores otherwise. When Redis is enabled the session lookups go through the
// account cache; identities is the store the session middleware reads.
func buildRepositories(cfg *config.Config, pg *persistence.Postgres, redis *persistence.Redis, logger *zap.Logger) (accounts, identities repository.AccountRepository, tickets repository.TicketRepository) {
	if pg.Enabled() {
		accounts = repository.NewAccountRepository(pg.PoolHandle())
		tickets = repository.NewTicketRepository(pg.PoolHandle())
	} else {
		logger.Warn("using in-memory stores; data is lost on restart")
		accounts = repository.NewMemoryAccountRepository()
		tickets = repository.NewMemoryTicketRepository()
	}
	identities = accounts
	if redis.Enabled() {
		cached := repository.NewCachedAccountRepository(accounts, redis.Client, cfg.Redis.CacheTTL(), logger)
		accounts, identities = cached, cached.Identities()
	}
	return accounts, identities, tickets
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
