package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/pegrio/portal-backend/api/handler"
	"github.com/pegrio/portal-backend/internal/config"
	"github.com/pegrio/portal-backend/internal/infrastructure/mailer"
	"github.com/pegrio/portal-backend/internal/infrastructure/monitor"
	"github.com/pegrio/portal-backend/internal/infrastructure/outbox"
	pgInfra "github.com/pegrio/portal-backend/internal/infrastructure/postgres"
	redisInfra "github.com/pegrio/portal-backend/internal/infrastructure/redis"
	"github.com/pegrio/portal-backend/internal/middleware"
	"github.com/pegrio/portal-backend/internal/router"
	"github.com/pegrio/portal-backend/internal/services"
	"github.com/pegrio/portal-backend/internal/services/lifecycle"
	"github.com/pegrio/portal-backend/pkg/httpcontext"
	"github.com/pegrio/portal-backend/pkg/logger"
	"github.com/pegrio/portal-backend/repository/postgres"
	redisRepo "github.com/pegrio/portal-backend/repository/redis"
	authUC "github.com/pegrio/portal-backend/usecase/auth"
	intakeUC "github.com/pegrio/portal-backend/usecase/intake"
	orderUC "github.com/pegrio/portal-backend/usecase/order"
	portalUC "github.com/pegrio/portal-backend/usecase/portal"
	reviewUC "github.com/pegrio/portal-backend/usecase/review"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
		zapLogger.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	manager.Register("postgres", func(ctx context.Context) error {
		pool.Close()
		return nil
	})

	redisClient, err := redisInfra.NewClient(cfg.Redis)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	manager.Register("redis", func(ctx context.Context) error {
		return redisClient.Close()
	})

	outboxStore, err := outbox.Open(cfg.Outbox.Path, "outbox")
	if err != nil {
		zapLogger.Fatal("failed to open notification outbox", zap.Error(err))
	}
	manager.Register("outbox", func(ctx context.Context) error {
		return outboxStore.Close()
	})

	mon := monitor.New(pool, redisClient, outboxStore, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	orderRepo := postgres.NewOrderRepository(pool)
	orderCache := redisRepo.NewOrderCache(redisClient, cfg.Redis.CacheTTL)
	sessionRepo := redisRepo.NewSessionRepository(redisClient, cfg.Admin.SessionTTL)

	mail := mailer.NewResend(mailer.Config{
		APIKey:   cfg.Mail.APIKey,
		From:     cfg.Mail.FromEmail,
		Endpoint: cfg.Mail.Endpoint,
		Timeout:  cfg.Mail.Timeout,
	}, zapLogger)

	dispatcher := services.NewDispatcher(outboxStore, mail, mon, zapLogger, services.DispatcherConfig{
		Interval:   cfg.Outbox.SyncInterval,
		BatchSize:  cfg.Outbox.BatchSize,
		MaxRetries: cfg.Outbox.MaxRetry,
	})
	dispatcher.Start()
	manager.Register("dispatcher", func(ctx context.Context) error {
		dispatcher.Stop(ctx)
		return nil
	})

	notifier := services.NewNotifyBridge(outboxStore, cfg.Mail.AdminEmail)

	portalUseCase := portalUC.New(orderRepo, orderCache, zapLogger)
	intakeUseCase := intakeUC.New(orderRepo, orderCache, notifier, intakeUC.AllowAnyStatus, zapLogger)
	reviewUseCase := reviewUC.New(orderRepo, orderCache, notifier, cfg.Mail.SupportEmail, zapLogger)
	orderUseCase := orderUC.New(orderRepo, zapLogger)
	authUseCase := authUC.New(sessionRepo, cfg.Admin.Password, cfg.Admin.JWTSecret, cfg.Admin.JWTIssuer, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)
	development := cfg.IsDevelopment()

	handlers := router.Handlers{
		Portal: apiHandler.NewPortalHandler(portalUseCase, intakeUseCase, reviewUseCase, ctxAdapter, zapLogger, development),
		Order:  apiHandler.NewOrderHandler(orderUseCase, orderRepo, cfg.Internal.Secret, ctxAdapter, zapLogger, development),
		Auth:   apiHandler.NewAuthHandler(authUseCase, ctxAdapter, zapLogger, cfg.Admin.SessionTTL, development),
		Health: apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.JWTAuth(cfg.Admin.JWTSecret, authUseCase, zapLogger)
	r := router.New(handlers, authMiddleware)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.Shutdown()
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
