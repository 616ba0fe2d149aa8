package location

import (
	"context"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/vzahanych/nimbus/internal/observability"
	"github.com/vzahanych/nimbus/internal/service"
	"github.com/vzahanych/nimbus/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Resolver turns free text into a Record: forward geocode, field
// extraction, then best-effort state enrichment by reverse geocoding.
// It holds no state between calls.
type Resolver struct {
	geocoder service.Geocoder
	reverse  service.ReverseGeocoder
	logger   *zap.Logger
	tele     *telemetry.Telemetry
	metrics  *observability.Metrics
}

// NewResolver wires the providers. A nil reverse geocoder disables state
// enrichment; StateName is then always NotAvailable.
func NewResolver(geocoder service.Geocoder, reverse service.ReverseGeocoder, logger *zap.Logger, tele *telemetry.Telemetry, metrics *observability.Metrics) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		geocoder: geocoder,
		reverse:  reverse,
		logger:   logger,
		tele:     tele,
		metrics:  metrics,
	}
}

// NotFoundMessage is the user-facing reason for a query with no match.
func NotFoundMessage(query string) string {
	return fmt.Sprintf("Couldn't find location data for '%s'.", query)
}

// Resolve does not validate query; callers reject blank input first.
func (r *Resolver) Resolve(ctx context.Context, query string) Record {
	tracer := r.tele.GetTracer()
	ctx, span := tracer.Start(ctx, "location.Resolve")
	defer span.End()

	span.SetAttributes(attribute.String("query", query))

	body, err := r.geocoder.Geocode(ctx, query)
	if err != nil {
		span.SetAttributes(attribute.Bool("found", false))
		return r.geocodeFailed(query, err)
	}

	match, ok := firstMatch(body)
	if !ok {
		r.logger.Info("No geocoding match", zap.String("query", query))
		span.SetAttributes(attribute.Bool("found", false))
		return notFound(query, NotFoundMessage(query))
	}

	rec := Record{
		Query:     query,
		Latitude:  numberField(match, "lat"),
		Longitude: numberField(match, "lon"),
		CityName:  stringField(match, "name"),
		Found:     true,
	}
	if code := stringField(match, "country"); code != nil && *code != "" {
		name := CountryName(*code)
		rec.CountryName = &name
	}

	rec.StateName = r.resolveState(ctx, rec)

	span.SetAttributes(
		attribute.Bool("found", true),
		attribute.Bool("has_coordinates", rec.HasCoordinates()),
		attribute.String("state", rec.StateName),
	)

	return rec
}

func (r *Resolver) geocodeFailed(query string, err error) Record {
	if statusErr, ok := service.IsStatusError(err); ok {
		r.logger.Warn("Geocoding returned non-success status",
			zap.String("query", query),
			zap.Int("status", statusErr.StatusCode))
		return notFound(query, NotFoundMessage(query))
	}
	if errors.Is(err, service.ErrEmptyBody) {
		r.logger.Warn("Geocoding returned empty body", zap.String("query", query))
		return notFound(query, NotFoundMessage(query))
	}

	r.logger.Warn("Geocoding request failed", zap.String("query", query), zap.Error(err))
	return notFound(query, fmt.Sprintf("Network error fetching location data: %v", err))
}

// resolveState never fails: every degraded path returns NotAvailable.
func (r *Resolver) resolveState(ctx context.Context, rec Record) string {
	if r.reverse == nil {
		return NotAvailable
	}
	if !rec.HasCoordinates() {
		r.degraded("coordinates missing from geocoding match", zap.String("query", rec.Query))
		return NotAvailable
	}

	body, err := r.reverse.ReverseGeocode(ctx, *rec.Latitude, *rec.Longitude)
	if err != nil {
		r.degraded("reverse geocoding failed", zap.Error(err))
		return NotAvailable
	}

	state := gjson.GetBytes(body, "address.state")
	if state.Type != gjson.String || state.String() == "" {
		r.degraded("reverse geocoding response has no state",
			zap.Float64("lat", *rec.Latitude),
			zap.Float64("lon", *rec.Longitude))
		return NotAvailable
	}

	return state.String()
}

func (r *Resolver) degraded(msg string, fields ...zap.Field) {
	r.metrics.EnrichmentFailed(observability.EnrichmentState)
	r.logger.Warn("State enrichment degraded: "+msg, fields...)
}

// firstMatch returns the top entry of a geocoding result list.
func firstMatch(body []byte) (gjson.Result, bool) {
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, false
	}
	list := gjson.ParseBytes(body)
	if !list.IsArray() {
		return gjson.Result{}, false
	}
	first := list.Get("0")
	if !first.IsObject() {
		return gjson.Result{}, false
	}
	return first, true
}

func numberField(obj gjson.Result, path string) *float64 {
	v := obj.Get(path)
	if v.Type != gjson.Number {
		return nil
	}
	f := v.Float()
	return &f
}

func stringField(obj gjson.Result, path string) *string {
	v := obj.Get(path)
	if v.Type != gjson.String {
		return nil
	}
	s := v.String()
	return &s
}
