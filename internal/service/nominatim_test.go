package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vzahanych/nimbus/internal/config"
	"go.uber.org/zap/zaptest"
)

func TestNominatim_ReverseGeocode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reverse", r.URL.Path)
		assert.Equal(t, "nimbus-test/1.0", r.Header.Get("User-Agent"))

		q := r.URL.Query()
		assert.Equal(t, "30.2672", q.Get("lat"))
		assert.Equal(t, "-97.7431", q.Get("lon"))
		assert.Equal(t, "jsonv2", q.Get("format"))
		assert.Equal(t, "en", q.Get("accept-language"))

		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(`{"address":{"city":"Austin","state":"Texas"}}`))
	}))
	defer srv.Close()

	s := NewNominatimServiceWithConfig(config.NominatimConfig{
		Enabled:   true,
		BaseURL:   srv.URL,
		UserAgent: "nimbus-test/1.0",
		Language:  "en",
		Timeout:   5,
	}, zaptest.NewLogger(t), nil, nil)

	body, err := s.ReverseGeocode(context.Background(), 30.2672, -97.7431)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Texas")
	assert.Equal(t, "nominatim", s.Name())
}

func TestNominatim_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	s := NewNominatimServiceWithConfig(config.NominatimConfig{BaseURL: srv.URL, Timeout: 5}, zaptest.NewLogger(t), nil, nil)

	_, err := s.ReverseGeocode(context.Background(), 1, 2)
	statusErr, ok := IsStatusError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusTooManyRequests, statusErr.StatusCode)
}
