package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-hotel-reservation/internal/api"
	"github.com/sanosuguru/go-hotel-reservation/internal/api/handler"
	"github.com/sanosuguru/go-hotel-reservation/internal/api/middleware"
	"github.com/sanosuguru/go-hotel-reservation/internal/application"
	"github.com/sanosuguru/go-hotel-reservation/internal/config"
	"github.com/sanosuguru/go-hotel-reservation/internal/domain/reservation"
	"github.com/sanosuguru/go-hotel-reservation/internal/infrastructure/kafka"
	"github.com/sanosuguru/go-hotel-reservation/internal/infrastructure/postgres"
	redisinfra "github.com/sanosuguru/go-hotel-reservation/internal/infrastructure/redis"
	"github.com/sanosuguru/go-hotel-reservation/internal/infrastructure/sqlite"
	"github.com/sanosuguru/go-hotel-reservation/internal/pkg/logger"
	"github.com/sanosuguru/go-hotel-reservation/internal/pkg/metrics"
	"github.com/sanosuguru/go-hotel-reservation/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "設定の読み込みに失敗しました: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "設定が不正です: %v\n", err)
		os.Exit(1)
	}

	log := logger.Init(cfg.Env)
	defer func() { _ = logger.Sync() }()

	m := metrics.Init()

	// データベース
	db, repo, err := openRepository(&cfg.Database)
	if err != nil {
		log.Fatal("データベースの初期化に失敗しました", zap.Error(err))
	}
	defer db.Close()
	log.Info("データベース接続完了", zap.String("driver", cfg.Database.Driver))

	checks := []handler.HealthCheck{
		{Name: "database", Check: db.PingContext},
	}

	// Redis（在庫ロックと空き状況キャッシュ）
	var (
		lockManager redisinfra.LockManagerInterface
		cache       application.AvailabilityCache
	)
	if cfg.Redis.Enabled {
		redisClient, err := redisinfra.NewClient(&cfg.Redis)
		if err != nil {
			log.Fatal("Redisへの接続に失敗しました", zap.Error(err))
		}
		defer redisClient.Close()

		lockManager = redisinfra.NewLockManager(redisClient)
		cache = redisinfra.NewAvailabilityCache(redisClient, redisinfra.DefaultAvailabilityTTL)
		checks = append(checks, handler.HealthCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return redisinfra.Ping(ctx, redisClient) },
		})
		log.Info("Redis接続完了", zap.String("addr", cfg.Redis.Addr()))
	} else {
		log.Warn("Redisが無効のため、在庫ロックなしで動作します")
	}

	// Kafka（予約イベント配信）
	var publisher application.EventPublisher
	if cfg.Kafka.Enabled() {
		p, err := kafka.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			log.Fatal("Kafkaプロデューサーの作成に失敗しました", zap.Error(err))
		}
		defer p.Close()
		publisher = p
		log.Info("Kafka接続完了", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	}

	reservationService := application.NewReservationService(repo, lockManager, cache, publisher, m)

	// バックグラウンドワーカー
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	reporter := worker.NewUpcomingReservationReporter(reservationService, m.UpcomingReservations, cfg.Worker.ReportInterval)
	go reporter.Start(workerCtx)

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler

	middleware.SetupMiddleware(e, m)

	healthHandler := handler.NewHealthHandler(checks...)
	e.GET("/health", healthHandler.Check)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()), middleware.MetricsBasicAuth(cfg.Metrics))

	handler.NewReservationHandler(reservationService).Register(e.Group("/reservation"))

	go func() {
		log.Info("サーバー起動", zap.String("port", cfg.Server.Port))
		if err := e.Start(":" + cfg.Server.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal("サーバー起動エラー", zap.Error(err))
		}
	}()

	// シグナル待機
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("サーバーをシャットダウンしています...")

	reporter.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Error("サーバーシャットダウンエラー", zap.Error(err))
		return
	}

	log.Info("サーバーが正常にシャットダウンしました")
}

// openRepository は設定されたドライバーに応じてストアを開く
func openRepository(cfg *config.DatabaseConfig) (*sqlx.DB, reservation.Repository, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return db, sqlite.NewReservationRepository(db), nil
	default:
		db, err := postgres.NewConnection(cfg)
		if err != nil {
			return nil, nil, err
		}
		if err := postgres.RunMigrations(db.DB, cfg.MigrationsPath); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("マイグレーションに失敗しました: %w", err)
		}
		return db, postgres.NewReservationRepository(db), nil
	}
}
