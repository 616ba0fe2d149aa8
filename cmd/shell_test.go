package cmd

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vzahanych/nimbus/internal/dispatcher"
	"github.com/vzahanych/nimbus/internal/location"
	"github.com/vzahanych/nimbus/internal/observability"
	"github.com/vzahanych/nimbus/internal/weather"
	"go.uber.org/zap/zaptest"
)

func ptr[T any](v T) *T { return &v }

// cityLocations knows every city; resolving "Fast" releases "Slow".
type cityLocations struct {
	gate chan struct{}
	once sync.Once
}

func (c *cityLocations) Resolve(_ context.Context, query string) location.Record {
	switch query {
	case "Slow":
		<-c.gate
	case "Fast":
		c.once.Do(func() { close(c.gate) })
	}
	return location.Record{
		Query:       query,
		Latitude:    ptr(1.0),
		Longitude:   ptr(2.0),
		CityName:    ptr(query),
		CountryName: ptr("France"),
		StateName:   "Ile-de-France",
		Found:       true,
	}
}

type sunnyWeather struct{}

func (sunnyWeather) Resolve(context.Context, *float64, *float64) weather.Record {
	return weather.Record{
		TemperatureF:           ptr(72),
		FeelsLikeF:             ptr(70),
		HumidityPct:            ptr(40),
		Description:            ptr("clear sky"),
		WindSpeedMph:           ptr(5),
		PrecipitationChancePct: "0%",
	}
}

func newTestSession(t *testing.T, metrics *observability.Metrics) *dispatcher.Session {
	t.Helper()
	logger := zaptest.NewLogger(t)
	d := dispatcher.New(&cityLocations{gate: make(chan struct{})}, sunnyWeather{}, logger, nil, metrics)
	t.Cleanup(d.Wait)
	return dispatcher.NewSession(d, logger, metrics)
}

func TestRunShell_RendersResult(t *testing.T) {
	var out bytes.Buffer
	session := newTestSession(t, nil)

	err := runShell(context.Background(), strings.NewReader("Paris\n"), &out, session)

	require.NoError(t, err)
	assert.Contains(t, out.String(), "Fetching weather for Paris...")
	assert.Contains(t, out.String(), "Weather today in Paris, Ile-de-France, France")
	assert.Contains(t, out.String(), "Clear sky")
}

func TestRunShell_EmptyLinePromptsWithoutSearching(t *testing.T) {
	var out bytes.Buffer
	metrics := observability.NewMetricsForTesting()
	session := newTestSession(t, metrics)

	require.NoError(t, runShell(context.Background(), strings.NewReader("   \n\nParis\n"), &out, session))

	assert.Equal(t, 2, strings.Count(out.String(), "Please enter a city name.\n"))
	assert.Equal(t, 1, strings.Count(out.String(), "Fetching weather for"))
	assert.NotContains(t, out.String(), "Error: empty input")
	assert.Contains(t, out.String(), "Weather today in Paris,")
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.StaleResults))
}

func TestRunShell_QuitStopsBeforeLaterLines(t *testing.T) {
	var out bytes.Buffer
	session := newTestSession(t, nil)

	require.NoError(t, runShell(context.Background(), strings.NewReader("quit\nParis\n"), &out, session))

	assert.Empty(t, out.String())
}

func TestRunShell_OnlyLatestSearchIsRendered(t *testing.T) {
	var out bytes.Buffer
	metrics := observability.NewMetricsForTesting()
	session := newTestSession(t, metrics)

	require.NoError(t, runShell(context.Background(), strings.NewReader("Slow\nFast\n"), &out, session))

	assert.Contains(t, out.String(), "Fetching weather for Slow...")
	assert.Contains(t, out.String(), "Weather today in Fast,")
	assert.NotContains(t, out.String(), "Weather today in Slow,")
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.StaleResults))
}
