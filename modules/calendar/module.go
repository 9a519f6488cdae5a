package calendar

import (
	"go-booking-api/core/cache"
	"go-booking-api/core/config"
	"go-booking-api/core/database"
	"go-booking-api/core/logger"
	"go-booking-api/core/middleware"
	"go-booking-api/modules/calendar/adapter"
	"go-booking-api/modules/calendar/controller"
	"go-booking-api/modules/calendar/entity"
	"go-booking-api/modules/calendar/repository"
	"go-booking-api/modules/calendar/router"
	"go-booking-api/modules/calendar/service"

	"github.com/labstack/echo/v4"
)

// NewRegistry registers the provider adapters configured for this deployment.
func NewRegistry(cfg *config.Config) *adapter.Registry {
	registry := adapter.NewRegistry()
	if err := registry.Register(entity.IntegrationGoogle, adapter.NewGoogleFactory(cfg.GoogleAPI)); err != nil {
		logger.Error("Calendar:NewRegistry:Google:Error", "error", err)
	}
	if err := registry.Register(entity.IntegrationOutlook, adapter.NewOutlookFactory(cfg.Outlook)); err != nil {
		logger.Error("Calendar:NewRegistry:Outlook:Error", "error", err)
	}
	return registry
}

func Init(v1 *echo.Group, db database.IDatabase, c cache.Cache, internal service.InternalBusySource, registry *adapter.Registry, cfg *config.Config, mw *middleware.Middleware) service.CalendarService {
	repo := repository.NewCalendarRepository(db)
	aggregator := service.NewAggregator(internal, registry, c, service.AggregatorConfig{
		CacheTTL:       cfg.Aggregator.CacheTTL,
		MaxFanout:      cfg.Aggregator.MaxFanout,
		AdapterTimeout: cfg.Aggregator.AdapterTimeout,
	})
	svc := service.NewCalendarService(repo, aggregator)
	ctrl := controller.NewCalendarController(svc)

	router.NewCalendarRouter(ctrl).Setup(v1, mw)
	return svc
}
