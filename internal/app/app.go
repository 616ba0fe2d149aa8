// Package app wires configuration into the provider clients, resolvers and
// dispatcher shared by every command.
package app

import (
	"github.com/jonboulle/clockwork"
	"github.com/vzahanych/nimbus/internal/config"
	"github.com/vzahanych/nimbus/internal/dispatcher"
	"github.com/vzahanych/nimbus/internal/location"
	"github.com/vzahanych/nimbus/internal/observability"
	"github.com/vzahanych/nimbus/internal/service"
	"github.com/vzahanych/nimbus/internal/weather"
	"github.com/vzahanych/nimbus/pkg/telemetry"
	"go.uber.org/zap"
)

type App struct {
	Dispatcher *dispatcher.Dispatcher
	Locations  *location.Resolver
	Weather    *weather.Resolver
	Metrics    *observability.Metrics
	Clock      clockwork.Clock
}

func New(cfg *config.Config, logger *zap.Logger, tele *telemetry.Telemetry, metrics *observability.Metrics, clock clockwork.Clock) *App {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	openWeather := service.NewOpenWeatherServiceWithConfig(cfg.Providers.OpenWeather, logger, tele, metrics)

	var reverse service.ReverseGeocoder
	if cfg.Providers.Nominatim.Enabled {
		reverse = service.NewNominatimServiceWithConfig(cfg.Providers.Nominatim, logger, tele, metrics)
	} else {
		logger.Info("State enrichment disabled; state will be reported as N/A")
	}

	locations := location.NewResolver(openWeather, reverse, logger, tele, metrics)
	conditions := weather.NewResolver(openWeather, logger, tele, metrics)

	logger.Info("Lookup pipeline ready",
		zap.String("units", cfg.Providers.OpenWeather.Units),
		zap.Bool("state_enrichment", reverse != nil))

	return &App{
		Dispatcher: dispatcher.New(locations, conditions, logger, tele, metrics, dispatcher.WithClock(clock)),
		Locations:  locations,
		Weather:    conditions,
		Metrics:    metrics,
		Clock:      clock,
	}
}
