// Command server runs the study cafe seat reservation service.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/studycafe/seat-reservation/internal/cache"
	"github.com/studycafe/seat-reservation/internal/config"
	"github.com/studycafe/seat-reservation/internal/database"
	"github.com/studycafe/seat-reservation/internal/event"
	"github.com/studycafe/seat-reservation/internal/handler"
	"github.com/studycafe/seat-reservation/internal/logger"
	"github.com/studycafe/seat-reservation/internal/metrics"
	"github.com/studycafe/seat-reservation/internal/queue"
	"github.com/studycafe/seat-reservation/internal/repository"
	"github.com/studycafe/seat-reservation/internal/router"
	"github.com/studycafe/seat-reservation/internal/service"
	"github.com/studycafe/seat-reservation/internal/worker"
)

func main() {
	cfg := config.Load()

	logger.Set(logger.New(cfg.Env))
	defer func() { _ = logger.Sync() }()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	defer func() { _ = db.Close() }()

	if err := database.RunMigrations(db, cfg.MigrationsPath); err != nil {
		logger.Fatal("migrations failed", zap.Error(err))
	}

	// Redis is optional: without it events are dropped and browse reads
	// skip the cache.
	var (
		seatCache *cache.SeatMapCache
		publisher event.Publisher = event.NopPublisher{}
	)
	if rdb := config.NewRedisClient(cfg); rdb != nil {
		seatCache = cache.NewSeatMapCache(rdb, cfg.SeatCacheTTL)
		publisher = event.NewRedisPublisher(rdb, seatCache)
		defer func() { _ = rdb.Close() }()
	} else {
		logger.Warn("redis unavailable, seat events disabled", zap.String("addr", cfg.RedisAddr))
	}

	confirmed := queue.NewPublisher(cfg.RabbitURL)
	go queue.StartConfirmedConsumer(cfg.RabbitURL)

	m := metrics.New()

	txr := repository.NewTxManager(db)
	seatRepo := repository.NewSeatRepo(db)
	resRepo := repository.NewReservationRepo(db)
	userRepo := repository.NewUserRepo(db)
	zoneRepo := repository.NewZoneRepo(db)

	holdSvc := service.NewHoldService(txr, seatRepo, resRepo, userRepo, publisher, m, cfg.HoldTTL)
	resSvc := service.NewReservationService(txr, seatRepo, resRepo, userRepo, publisher, confirmed, m)

	sweeper := worker.NewSweeper(txr, seatRepo, publisher, m, cfg.SweepInterval)
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	go sweeper.Start(sweepCtx)

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.Use(echomw.Recover())
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogURI: true, LogStatus: true, LogMethod: true, LogLatency: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			logger.Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency))
			return nil
		},
	}))

	router.Register(e, router.Handlers{
		Browse:      handler.NewBrowseHandler(zoneRepo, seatRepo, seatCache),
		Hold:        handler.NewHoldHandler(holdSvc),
		Reservation: handler.NewReservationHandler(resSvc, resRepo),
		Checkin:     handler.NewCheckinHandler(resRepo),
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server start failed", zap.Error(err))
		}
	}()
	logger.Info("server started", zap.String("port", cfg.Port), zap.String("env", cfg.Env))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	stopSweep()
	sweeper.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}
}
