package service

import (
	"context"

	"github.com/vzahanych/nimbus/internal/config"
	"github.com/vzahanych/nimbus/internal/observability"
	"github.com/vzahanych/nimbus/pkg/telemetry"
	"go.uber.org/zap"
)

const openWeatherName = "openweather"

// OpenWeatherService talks to the OpenWeather geocoding (/geo/1.0) and
// data (/data/2.5) APIs. It returns raw bodies; field extraction belongs to
// the resolvers.
type OpenWeatherService struct {
	geo    *restClient
	data   *restClient
	apiKey string
	units  string
}

func NewOpenWeatherServiceWithConfig(cfg config.OpenWeatherConfig, logger *zap.Logger, tele *telemetry.Telemetry, metrics *observability.Metrics) *OpenWeatherService {
	timeout := cfg.TimeoutDuration()
	return &OpenWeatherService{
		geo:    newRestClient(openWeatherName, cfg.GeoBaseURL, timeout, "", logger, tele, metrics),
		data:   newRestClient(openWeatherName, cfg.DataBaseURL, timeout, "", logger, tele, metrics),
		apiKey: cfg.APIKey,
		units:  cfg.Units,
	}
}

func (s *OpenWeatherService) Name() string {
	return openWeatherName
}

// Geocode asks for the single best match of query.
func (s *OpenWeatherService) Geocode(ctx context.Context, query string) ([]byte, error) {
	return s.geo.get(ctx, "geocode", "/direct", map[string]string{
		"q":     query,
		"limit": "1",
		"appid": s.apiKey,
	})
}

func (s *OpenWeatherService) CurrentConditions(ctx context.Context, lat, lon float64) ([]byte, error) {
	return s.data.get(ctx, "current", "/weather", s.coordParams(lat, lon))
}

// Forecast returns the 5 day / 3 hour forecast list.
func (s *OpenWeatherService) Forecast(ctx context.Context, lat, lon float64) ([]byte, error) {
	return s.data.get(ctx, "forecast", "/forecast", s.coordParams(lat, lon))
}

func (s *OpenWeatherService) coordParams(lat, lon float64) map[string]string {
	return map[string]string{
		"lat":   formatCoord(lat),
		"lon":   formatCoord(lon),
		"appid": s.apiKey,
		"units": s.units,
	}
}
