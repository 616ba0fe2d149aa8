package service

import (
	"context"

	"github.com/vzahanych/nimbus/internal/config"
	"github.com/vzahanych/nimbus/internal/observability"
	"github.com/vzahanych/nimbus/pkg/telemetry"
	"go.uber.org/zap"
)

const nominatimName = "nominatim"

// NominatimService reverse geocodes coordinates through the OpenStreetMap
// Nominatim API. Nominatim's usage policy requires an identifying User-Agent.
type NominatimService struct {
	client   *restClient
	language string
}

func NewNominatimServiceWithConfig(cfg config.NominatimConfig, logger *zap.Logger, tele *telemetry.Telemetry, metrics *observability.Metrics) *NominatimService {
	return &NominatimService{
		client:   newRestClient(nominatimName, cfg.BaseURL, cfg.TimeoutDuration(), cfg.UserAgent, logger, tele, metrics),
		language: cfg.Language,
	}
}

func (s *NominatimService) Name() string {
	return nominatimName
}

func (s *NominatimService) ReverseGeocode(ctx context.Context, lat, lon float64) ([]byte, error) {
	params := map[string]string{
		"lat":            formatCoord(lat),
		"lon":            formatCoord(lon),
		"format":         "jsonv2",
		"addressdetails": "1",
	}
	if s.language != "" {
		params["accept-language"] = s.language
	}
	return s.client.get(ctx, "reverse", "/reverse", params)
}
