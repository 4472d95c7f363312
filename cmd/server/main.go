package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/ucardlabs/ucard-admin/internal/auth"
	"github.com/ucardlabs/ucard-admin/internal/config"
	"github.com/ucardlabs/ucard-admin/internal/db"
	"github.com/ucardlabs/ucard-admin/internal/domain/repository"
	"github.com/ucardlabs/ucard-admin/internal/goroutine"
	"github.com/ucardlabs/ucard-admin/internal/http/middleware"
	httpRouter "github.com/ucardlabs/ucard-admin/internal/http/router"
	"github.com/ucardlabs/ucard-admin/internal/infrastructure/cache"
	"github.com/ucardlabs/ucard-admin/internal/infrastructure/gateway"
	"github.com/ucardlabs/ucard-admin/internal/infrastructure/persistence"
	"github.com/ucardlabs/ucard-admin/internal/interface/http/handler"
	"github.com/ucardlabs/ucard-admin/internal/logger"
	"github.com/ucardlabs/ucard-admin/internal/metrics"
	"github.com/ucardlabs/ucard-admin/internal/usecase/kyc"
	"github.com/ucardlabs/ucard-admin/internal/usecase/sysconfig"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	logger.Init(cfg.LogLevel)
	if !cfg.IsProduction() {
		logger.SetTextFormatter()
	}

	// Подключение к базе и миграции.
	dbConn, err := db.NewDatabase(ctx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		logger.Log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if _, err := db.RunMigrations(ctx, dbConn, cfg.DriverMigrationsPath()); err != nil {
		logger.Log.Fatalf("main: ошибка миграций: %v", err)
	}

	// Redis необязателен: без него флаг одобрения не синхронизируется,
	// а лимиты считаются в памяти процесса.
	var (
		redisClient *redis.Client
		flags       repository.FlagCache
		redisPinger handler.RedisPinger
	)
	if cfg.RedisAddr != "" {
		redisClient, err = cache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Log.WithError(err).Warn("main: Redis недоступен, продолжаем без него")
			redisClient = nil
		} else {
			defer redisClient.Close()
			flags = cache.NewFlagCache(redisClient)
			redisPinger = redisClient
		}
	}

	// Репозитории.
	kycRepo := persistence.NewKycRepositoryAdapter(dbConn)
	journal := persistence.NewAuditJournalAdapter(dbConn)
	auditStore := persistence.NewAuditStoreAdapter(dbConn)
	configRepo := persistence.NewSystemConfigRepositoryAdapter(dbConn)

	// Use cases.
	ucardAPI := gateway.NewClient(cfg.UcardAPIBaseURL, cfg.UcardAPITimeout)
	propagator := kyc.NewStatePropagator(auditStore)
	auditUC := kyc.NewAuditKycUseCase(kycRepo, journal, ucardAPI, propagator)
	listUC := kyc.NewListSubmissionsUseCase(kycRepo)
	cardBinsUC := kyc.NewCardBinsUseCase(ucardAPI)
	reconcileUC := kyc.NewReconcileUseCase(kycRepo, journal, propagator)
	configUC := sysconfig.NewSystemConfigUseCase(configRepo, flags)

	// Фоновая сверка дописывает решения, подтверждённые ucard-api до падения процесса.
	if cfg.ReconcileInterval > 0 {
		goroutine.Every(ctx, cfg.ReconcileInterval, func(ctx context.Context) {
			report, err := reconcileUC.Execute(ctx, kyc.ReconcileOptions{StaleAfter: cfg.ReconcileStaleAfter})
			if err != nil {
				logger.Log.WithError(err).Error("main: фоновая сверка аудита завершилась ошибкой")
				return
			}
			if report.Resumed+report.Dropped+report.Failed+len(report.Stale) > 0 {
				logger.Log.WithField("resumed", report.Resumed).
					WithField("dropped", report.Dropped).
					WithField("conflicts", report.Conflicts).
					WithField("failed", report.Failed).
					WithField("stale", len(report.Stale)).
					Info("main: фоновая сверка аудита")
			}
		})
	}

	var tokens *auth.AdminTokens
	if cfg.AdminJWTSecret != "" {
		tokens = auth.NewAdminTokens(cfg.AdminJWTSecret)
	}

	registry := prometheus.NewRegistry()
	metrics.Register(registry)

	engine := httpRouter.SetupRouter(cfg, httpRouter.Deps{
		Kyc:            handler.NewKycHandler(auditUC, listUC, cardBinsUC),
		SystemConfig:   handler.NewSystemConfigHandler(configUC),
		Health:         handler.NewHealthHandler(dbConn, redisPinger),
		Tokens:         tokens,
		RateLimitStore: middleware.NewRateLimitStore(redisClient),
		Registry:       registry,
	})

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Завершаем сервер при получении сигнала.
	goroutine.SafeGoWithContext(ctx, func(ctx context.Context) {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Log.WithError(err).Error("main: ошибка остановки http сервера")
		}
	})

	logger.Log.Infof("main: HTTP сервер запущен на порту %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		logger.Log.WithError(err).Error("main: ошибка закрытия базы")
	}
}
