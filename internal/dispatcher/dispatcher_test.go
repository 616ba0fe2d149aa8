package dispatcher

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vzahanych/nimbus/internal/location"
	"github.com/vzahanych/nimbus/internal/observability"
	"github.com/vzahanych/nimbus/internal/weather"
	"go.uber.org/zap/zaptest"
)

type fakeLocations struct {
	mu      sync.Mutex
	records map[string]location.Record
	gates   map[string]chan struct{}
	panics  bool
	calls   []string
}

func (f *fakeLocations) Resolve(ctx context.Context, query string) location.Record {
	f.mu.Lock()
	f.calls = append(f.calls, query)
	gate := f.gates[query]
	rec, ok := f.records[query]
	f.mu.Unlock()

	if f.panics {
		panic("geocoder blew up")
	}
	if gate != nil {
		<-gate
	}
	if !ok {
		return location.Record{Query: query, StateName: location.NotAvailable, ErrorReason: location.NotFoundMessage(query)}
	}
	return rec
}

func (f *fakeLocations) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeWeather struct {
	mu     sync.Mutex
	record weather.Record
	panics bool
	calls  int
}

func (f *fakeWeather) Resolve(_ context.Context, lat, lon *float64) weather.Record {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.panics {
		panic("weather blew up")
	}
	if lat == nil || lon == nil {
		return weather.Record{ErrorReason: "missing coordinates", Err: weather.ErrMissingCoordinates}
	}
	return f.record
}

func (f *fakeWeather) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func ptr[T any](v T) *T { return &v }

func found(city string, lat, lon float64) location.Record {
	return location.Record{
		Query:       city,
		Latitude:    ptr(lat),
		Longitude:   ptr(lon),
		CityName:    ptr(city),
		CountryName: ptr("France"),
		StateName:   "Ile-de-France",
		Found:       true,
	}
}

func goodWeather() weather.Record {
	return weather.Record{
		TemperatureF:           ptr(15),
		FeelsLikeF:             ptr(10),
		HumidityPct:            ptr(81),
		Description:            ptr("light rain"),
		WindSpeedMph:           ptr(8),
		PrecipitationChancePct: "37%",
	}
}

func newTestDispatcher(t *testing.T, locs *fakeLocations, w *fakeWeather, metrics *observability.Metrics) *Dispatcher {
	t.Helper()
	d := New(locs, w, zaptest.NewLogger(t), nil, metrics, WithClock(clockwork.NewFakeClock()))
	t.Cleanup(d.Wait)
	return d
}

func TestDispatcher_Submit_Success(t *testing.T) {
	locs := &fakeLocations{records: map[string]location.Record{"Paris": found("Paris", 48.85, 2.35)}}
	w := &fakeWeather{record: goodWeather()}
	metrics := observability.NewMetricsForTesting()
	d := newTestDispatcher(t, locs, w, metrics)

	res := d.Submit(context.Background(), "  Paris ")

	require.True(t, res.OK())
	assert.Equal(t, "Paris", res.Query)
	require.NotNil(t, res.Location)
	require.NotNil(t, res.Weather)
	assert.Equal(t, "Paris", *res.Location.CityName)
	assert.Equal(t, 15, *res.Weather.TemperatureF)
	assert.Equal(t, []string{"Paris"}, locs.calls)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.LookupsTotal.WithLabelValues(observability.OutcomeSuccess)))
}

func TestDispatcher_Submit_EmptyInput(t *testing.T) {
	locs := &fakeLocations{}
	w := &fakeWeather{}
	d := newTestDispatcher(t, locs, w, nil)

	for _, input := range []string{"", "   ", "\t\n"} {
		res := d.Submit(context.Background(), input)

		require.False(t, res.OK())
		assert.Equal(t, KindInput, res.Failure.Kind)
		assert.Equal(t, "empty input", res.Failure.Reason)
		assert.Nil(t, res.Location)
		assert.Nil(t, res.Weather)
	}

	assert.Zero(t, locs.callCount())
	assert.Zero(t, w.callCount())
}

func TestDispatcher_Submit_LocationNotFound(t *testing.T) {
	locs := &fakeLocations{}
	w := &fakeWeather{record: goodWeather()}
	d := newTestDispatcher(t, locs, w, nil)

	res := d.Submit(context.Background(), "Atlantis")

	require.False(t, res.OK())
	assert.Equal(t, KindLocationNotFound, res.Failure.Kind)
	assert.Equal(t, "Couldn't find location data for 'Atlantis'.", res.Failure.Reason)
	assert.Zero(t, w.callCount(), "weather is never resolved for an unknown location")
}

func TestDispatcher_Submit_WeatherFailures(t *testing.T) {
	tests := []struct {
		name       string
		location   location.Record
		weather    weather.Record
		wantKind   FailureKind
		wantReason string
	}{
		{
			name:       "provider status",
			location:   found("Paris", 48.85, 2.35),
			weather:    weather.Record{ErrorReason: "Weather API error: Status code 500", Err: weather.ErrProviderStatus},
			wantKind:   KindWeatherProvider,
			wantReason: "Weather API error: Status code 500",
		},
		{
			name:       "missing coordinates",
			location:   location.Record{Query: "Paris", CityName: ptr("Paris"), StateName: location.NotAvailable, Found: true},
			wantKind:   KindLocationFieldMissing,
			wantReason: "missing coordinates",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			locs := &fakeLocations{records: map[string]location.Record{"Paris": tt.location}}
			d := newTestDispatcher(t, locs, &fakeWeather{record: tt.weather}, nil)

			res := d.Submit(context.Background(), "Paris")

			require.False(t, res.OK())
			assert.Equal(t, tt.wantKind, res.Failure.Kind)
			assert.Equal(t, tt.wantReason, res.Failure.Reason)
			assert.Nil(t, res.Weather, "no partial weather on failure")
		})
	}
}

func TestDispatcher_Submit_RecoversPanics(t *testing.T) {
	tests := []struct {
		name string
		locs *fakeLocations
		w    *fakeWeather
	}{
		{"location resolver", &fakeLocations{panics: true}, &fakeWeather{}},
		{"weather resolver", &fakeLocations{records: map[string]location.Record{"Paris": found("Paris", 1, 2)}}, &fakeWeather{panics: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metrics := observability.NewMetricsForTesting()
			d := newTestDispatcher(t, tt.locs, tt.w, metrics)

			var res Result
			require.NotPanics(t, func() {
				res = d.Submit(context.Background(), "Paris")
			})

			require.False(t, res.OK())
			assert.Equal(t, KindUnexpected, res.Failure.Kind)
			assert.Equal(t, "Unable to fetch weather data.", res.Failure.Reason)
			assert.Equal(t, 1.0, testutil.ToFloat64(metrics.LookupsTotal.WithLabelValues(string(KindUnexpected))))
		})
	}
}

func TestDispatcher_Dispatch_DeliversOnce(t *testing.T) {
	locs := &fakeLocations{records: map[string]location.Record{"Paris": found("Paris", 48.85, 2.35)}}
	d := newTestDispatcher(t, locs, &fakeWeather{record: goodWeather()}, nil)

	ticket := d.Dispatch(context.Background(), "Paris")
	assert.Equal(t, uint64(1), ticket.Generation)

	select {
	case res := <-ticket.Done:
		assert.True(t, res.OK())
		assert.Equal(t, ticket.Generation, res.Generation)
	case <-time.After(time.Second):
		t.Fatal("dispatch did not deliver a result")
	}

	_, open := <-ticket.Done
	assert.False(t, open, "Done is closed after the single result")
}

func TestDispatcher_Dispatch_LatestWins(t *testing.T) {
	slowGate := make(chan struct{})
	locs := &fakeLocations{
		records: map[string]location.Record{
			"Paris":  found("Paris", 48.85, 2.35),
			"London": found("London", 51.5, -0.12),
		},
		gates: map[string]chan struct{}{"Paris": slowGate},
	}
	d := newTestDispatcher(t, locs, &fakeWeather{record: goodWeather()}, nil)

	first := d.Dispatch(context.Background(), "Paris")
	second := d.Dispatch(context.Background(), "London")

	assert.False(t, d.IsLatest(first.Generation))
	assert.True(t, d.IsLatest(second.Generation))

	res := <-second.Done
	assert.True(t, d.IsLatest(res.Generation))
	assert.Equal(t, "London", res.Query)

	close(slowGate)
	stale := <-first.Done
	assert.Equal(t, "Paris", stale.Query)
	assert.False(t, d.IsLatest(stale.Generation))
}
