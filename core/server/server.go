package server

import (
	"context"
	stdErrors "errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go-booking-api/core/cache"
	"go-booking-api/core/config"
	"go-booking-api/core/controller"
	"go-booking-api/core/database"
	"go-booking-api/core/errors"
	"go-booking-api/core/logger"
	"go-booking-api/core/middleware"
	"go-booking-api/core/queue"
	"go-booking-api/core/storage"
	"go-booking-api/core/telemetry"
	"go-booking-api/core/validator"
	"go-booking-api/modules/availability"
	"go-booking-api/modules/booking"
	"go-booking-api/modules/calendar"
	"go-booking-api/modules/eventtype"
	"go-booking-api/modules/notification"
	notificationService "go-booking-api/modules/notification/service"
	"go-booking-api/modules/payment"
	"go-booking-api/modules/webhook"
	webhookService "go-booking-api/modules/webhook/service"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
)

// Run loads configuration, wires every module and serves until SIGINT or SIGTERM.
func Run() error {
	configPath := flag.String("config", "", "optional config file (yaml, json or toml)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	logger.Init(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Init(ctx, cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Error("Server:Run:ShutdownTracing:Error", "error", err)
		}
	}()

	db, err := database.InitDB(cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Server:Run:CloseDatabase:Error", "error", err)
		}
	}()
	if cfg.Database.AutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	calendarCache, err := cache.New(cfg.Aggregator.CacheBackend, redisClient)
	if err != nil {
		return err
	}

	queueClient := queue.NewClient(cfg.Redis)
	defer queueClient.Close()

	var worker *queue.Worker
	var notificationHandlers notificationService.HandlerRegistry
	var webhookHandlers webhookService.HandlerRegistry
	if cfg.Queue.RunWorker {
		worker = queue.NewWorker(cfg.Redis, cfg.Queue)
		notificationHandlers, webhookHandlers = worker, worker
	}

	e := newEcho()
	e.Use(otelecho.Middleware(cfg.Telemetry.ServiceName))
	mw := middleware.NewMiddleware()
	e.Use(mw.RequestLogger())
	v1 := e.Group("/api/v1")

	eventTypes := eventtype.Init(db)
	bookingRepo := booking.NewRepository(db)
	registry := calendar.NewRegistry(cfg)
	calendars := calendar.Init(v1, db, calendarCache, bookingRepo, registry, cfg, mw)
	availability.Init(v1, eventTypes, calendars)

	notifier := notification.Init(v1, db, queueClient, notificationHandlers, storage.NewS3Store(cfg.Storage), bookingRepo, cfg, mw)
	webhooks := webhook.Init(db, queueClient, webhookHandlers, bookingRepo, cfg)
	payments := payment.Init(db)

	bookings := booking.Init(v1, bookingRepo, eventTypes, calendars, registry, booking.Collaborators{
		Notifier: notifier,
		Webhooks: webhooks,
		Payments: payments,
	}, cfg, mw)
	payment.Setup(v1, bookings, cfg)

	if worker != nil {
		if err := worker.Start(); err != nil {
			return fmt.Errorf("start worker: %w", err)
		}
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Server:Run:Listening", "addr", addr)
		if err := e.Start(addr); err != nil && !stdErrors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		logger.Info("Server:Run:ShutdownRequested")
	case err := <-serveErr:
		if err != nil {
			logger.Error("Server:Run:Serve:Error", "error", err)
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server:Run:Shutdown:Error", "error", err)
	}
	bookings.Drain()
	if worker != nil {
		worker.Shutdown()
	}
	logger.Info("Server:Run:Stopped")
	return nil
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validator.New()
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())

	base := controller.NewBaseController()
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		if _, ok := errors.As(err); ok {
			_ = base.ErrorResponse(c, err)
			return
		}
		e.DefaultHTTPErrorHandler(err, c)
	}

	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	return e
}
