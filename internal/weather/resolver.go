package weather

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/sourcegraph/conc"
	"github.com/tidwall/gjson"
	"github.com/vzahanych/nimbus/internal/observability"
	"github.com/vzahanych/nimbus/internal/service"
	"github.com/vzahanych/nimbus/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// JSON paths into the current conditions document.
const (
	pathTemperature = "main.temp"
	pathFeelsLike   = "main.feels_like"
	pathHumidity    = "main.humidity"
	pathDescription = "weather.0.description"
	pathWindSpeed   = "wind.speed"
	pathFirstPop    = "list.0.pop"
)

type Resolver struct {
	provider service.WeatherProvider
	logger   *zap.Logger
	tele     *telemetry.Telemetry
	metrics  *observability.Metrics
}

func NewResolver(provider service.WeatherProvider, logger *zap.Logger, tele *telemetry.Telemetry, metrics *observability.Metrics) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		provider: provider,
		logger:   logger.With(zap.String("provider", provider.Name())),
		tele:     tele,
		metrics:  metrics,
	}
}

// Resolve fetches current conditions and the forecast precipitation chance
// concurrently. Only the current conditions call can make the record
// unusable; a failed forecast degrades to NotAvailable.
func (r *Resolver) Resolve(ctx context.Context, lat, lon *float64) Record {
	tracer := r.tele.GetTracer()
	ctx, span := tracer.Start(ctx, "weather.Resolve")
	defer span.End()

	if lat == nil || lon == nil {
		span.SetAttributes(attribute.Bool("success", false))
		return failed(ErrMissingCoordinates, "missing coordinates")
	}

	span.SetAttributes(
		attribute.Float64("lat", *lat),
		attribute.Float64("lon", *lon),
	)

	var (
		current    []byte
		currentErr error
		precip     string
		wg         conc.WaitGroup
	)
	wg.Go(func() {
		current, currentErr = r.provider.CurrentConditions(ctx, *lat, *lon)
	})
	wg.Go(func() {
		precip = r.precipitationChance(ctx, *lat, *lon)
	})
	wg.Wait()

	if currentErr != nil {
		span.SetAttributes(attribute.Bool("success", false))
		return r.currentFailed(currentErr)
	}

	doc, rec, ok := parseConditions(current)
	if !ok {
		span.SetAttributes(attribute.Bool("success", false))
		r.logger.Warn("Unusable current conditions payload", zap.String("reason", rec.ErrorReason))
		return rec
	}

	rec = Record{
		TemperatureF:           roundedField(doc, pathTemperature),
		FeelsLikeF:             roundedField(doc, pathFeelsLike),
		HumidityPct:            roundedField(doc, pathHumidity),
		Description:            stringField(doc, pathDescription),
		WindSpeedMph:           windSpeed(doc),
		PrecipitationChancePct: precip,
	}

	span.SetAttributes(
		attribute.Bool("success", true),
		attribute.String("precipitation", precip),
	)

	return rec
}

func (r *Resolver) currentFailed(err error) Record {
	if statusErr, ok := service.IsStatusError(err); ok {
		r.logger.Warn("Current conditions returned non-success status", zap.Int("status", statusErr.StatusCode))
		return failed(
			fmt.Errorf("%w: %d", ErrProviderStatus, statusErr.StatusCode),
			fmt.Sprintf("Weather API error: Status code %d", statusErr.StatusCode),
		)
	}
	if errors.Is(err, service.ErrEmptyBody) {
		r.logger.Warn("Current conditions returned empty body")
		return failed(ErrEmptyPayload, "Empty weather data received.")
	}

	r.logger.Warn("Current conditions request failed", zap.Error(err))
	return failed(
		fmt.Errorf("%w: %w", ErrNetwork, err),
		fmt.Sprintf("Network error fetching weather data: %v", err),
	)
}

// precipitationChance reads the first forecast slot's probability of
// precipitation as a whole percentage, or NotAvailable.
func (r *Resolver) precipitationChance(ctx context.Context, lat, lon float64) string {
	body, err := r.provider.Forecast(ctx, lat, lon)
	if err != nil {
		r.degraded("forecast request failed", zap.Error(err))
		return NotAvailable
	}
	if !gjson.ValidBytes(body) {
		r.degraded("forecast payload is not valid JSON")
		return NotAvailable
	}

	pop := gjson.GetBytes(body, pathFirstPop)
	if pop.Type != gjson.Number {
		r.degraded("forecast has no precipitation probability")
		return NotAvailable
	}

	return fmt.Sprintf("%d%%", roundHalfEven(pop.Float()*100))
}

func (r *Resolver) degraded(msg string, fields ...zap.Field) {
	r.metrics.EnrichmentFailed(observability.EnrichmentPrecipitation)
	r.logger.Warn("Precipitation enrichment degraded: "+msg, fields...)
}

// parseConditions accepts only a non-empty JSON object. On rejection it
// returns the failed Record to hand back.
func parseConditions(body []byte) (gjson.Result, Record, bool) {
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, failed(ErrMalformedPayload, "Malformed weather data received."), false
	}

	doc := gjson.ParseBytes(body)
	switch {
	case doc.Type == gjson.Null:
		return gjson.Result{}, failed(ErrEmptyPayload, "Empty weather data received."), false
	case doc.IsObject() && len(doc.Map()) == 0:
		return gjson.Result{}, failed(ErrEmptyPayload, "Empty weather data received."), false
	case !doc.IsObject():
		return gjson.Result{}, failed(ErrMalformedPayload, "Malformed weather data received."), false
	}

	return doc, Record{}, true
}

func roundedField(doc gjson.Result, path string) *int {
	v := doc.Get(path)
	if v.Type != gjson.Number {
		return nil
	}
	n := roundHalfEven(v.Float())
	return &n
}

func stringField(doc gjson.Result, path string) *string {
	v := doc.Get(path)
	if v.Type != gjson.String {
		return nil
	}
	s := v.String()
	return &s
}

// windSpeed is 0 when the provider omits it, nil when it is present but
// not a number.
func windSpeed(doc gjson.Result) *int {
	v := doc.Get(pathWindSpeed)
	if !v.Exists() {
		zero := 0
		return &zero
	}
	return roundedField(doc, pathWindSpeed)
}

func roundHalfEven(f float64) int {
	return int(math.RoundToEven(f))
}
