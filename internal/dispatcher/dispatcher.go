package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/jonboulle/clockwork"
	"github.com/sourcegraph/conc"
	"github.com/vzahanych/nimbus/internal/location"
	"github.com/vzahanych/nimbus/internal/observability"
	"github.com/vzahanych/nimbus/internal/weather"
	"github.com/vzahanych/nimbus/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type LocationResolver interface {
	Resolve(ctx context.Context, query string) location.Record
}

type WeatherResolver interface {
	Resolve(ctx context.Context, lat, lon *float64) weather.Record
}

var (
	_ LocationResolver = (*location.Resolver)(nil)
	_ WeatherResolver  = (*weather.Resolver)(nil)
)

type Dispatcher struct {
	locations LocationResolver
	weather   WeatherResolver
	clock     clockwork.Clock
	logger    *zap.Logger
	tele      *telemetry.Telemetry
	metrics   *observability.Metrics

	generation atomic.Uint64
	inflight   conc.WaitGroup
}

type Option func(*Dispatcher)

// WithClock replaces the clock used for lookup durations.
func WithClock(clock clockwork.Clock) Option {
	return func(d *Dispatcher) {
		d.clock = clock
	}
}

func New(locations LocationResolver, weather WeatherResolver, logger *zap.Logger, tele *telemetry.Telemetry, metrics *observability.Metrics, opts ...Option) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Dispatcher{
		locations: locations,
		weather:   weather,
		clock:     clockwork.NewRealClock(),
		logger:    logger,
		tele:      tele,
		metrics:   metrics,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Submit runs the whole lookup chain for cityText on the calling goroutine.
// It never panics: a fault in either resolver becomes a KindUnexpected
// failure.
func (d *Dispatcher) Submit(ctx context.Context, cityText string) (result Result) {
	tracer := d.tele.GetTracer()
	ctx, span := tracer.Start(ctx, "dispatcher.Submit")
	defer span.End()

	query := strings.TrimSpace(cityText)
	start := d.clock.Now()
	reqLogger := d.logger.With(zap.String("query", query))

	defer func() {
		if rec := recover(); rec != nil {
			err := fmt.Errorf("lookup panicked: %v", rec)
			reqLogger.Error("Recovered from panic during lookup", zap.Error(err), zap.Stack("stack"))
			d.tele.RecordError(ctx, err, map[string]interface{}{"query": query})
			result = failure(query, KindUnexpected, UnexpectedMessage)
		}

		outcome := observability.OutcomeSuccess
		if result.Failure != nil {
			outcome = string(result.Failure.Kind)
		}
		span.SetAttributes(
			attribute.Bool("success", result.OK()),
			attribute.String("outcome", outcome),
		)
		d.metrics.ObserveLookup(outcome, d.clock.Since(start))
	}()

	span.SetAttributes(attribute.String("query", query))

	if query == "" {
		reqLogger.Debug("Rejected empty input")
		return failure(query, KindInput, EmptyInputMessage)
	}

	loc := d.locations.Resolve(ctx, query)
	if !loc.Found {
		reqLogger.Info("Location not resolved", zap.String("reason", loc.ErrorReason))
		return failure(query, KindLocationNotFound, loc.ErrorReason)
	}

	w := d.weather.Resolve(ctx, loc.Latitude, loc.Longitude)
	if !w.Usable() {
		kind := KindWeatherProvider
		if errors.Is(w.Err, weather.ErrMissingCoordinates) {
			kind = KindLocationFieldMissing
		}
		reqLogger.Warn("Weather not resolved",
			zap.String("kind", string(kind)),
			zap.String("reason", w.ErrorReason))
		return failure(query, kind, w.ErrorReason)
	}

	reqLogger.Info("Lookup succeeded",
		zap.String("state", loc.StateName),
		zap.String("precipitation", w.PrecipitationChancePct))

	return success(query, loc, w)
}

// Ticket is the handle for one background lookup. Done receives exactly
// one Result and is then closed.
type Ticket struct {
	Generation uint64
	Done       <-chan Result
}

// Dispatch starts Submit on its own goroutine and returns immediately.
// Every call supersedes the previous ones; use IsLatest to decide whether a
// delivered Result is still current.
func (d *Dispatcher) Dispatch(ctx context.Context, cityText string) *Ticket {
	gen := d.generation.Add(1)
	done := make(chan Result, 1)

	d.logger.Debug("Dispatching lookup", zap.Uint64("generation", gen))

	d.inflight.Go(func() {
		defer close(done)
		res := d.Submit(ctx, cityText)
		res.Generation = gen
		done <- res
	})

	return &Ticket{Generation: gen, Done: done}
}

// IsLatest reports whether gen belongs to the most recent Dispatch.
func (d *Dispatcher) IsLatest(gen uint64) bool {
	return gen == d.generation.Load()
}

// Wait blocks until every dispatched lookup has delivered its result.
func (d *Dispatcher) Wait() {
	d.inflight.Wait()
}
