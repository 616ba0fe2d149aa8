package service

import "context"

// Geocoder resolves free text to the provider's raw list of best matches.
type Geocoder interface {
	Geocode(ctx context.Context, query string) ([]byte, error)
}

// ReverseGeocoder resolves coordinates to the provider's raw address document.
type ReverseGeocoder interface {
	ReverseGeocode(ctx context.Context, lat, lon float64) ([]byte, error)
}

// WeatherProvider returns raw current conditions and forecast documents.
type WeatherProvider interface {
	CurrentConditions(ctx context.Context, lat, lon float64) ([]byte, error)
	Forecast(ctx context.Context, lat, lon float64) ([]byte, error)
	Name() string
}
