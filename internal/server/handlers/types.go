package handlers

import (
	"github.com/vzahanych/nimbus/internal/location"
	"github.com/vzahanych/nimbus/internal/weather"
)

// CityWeatherRequest is the query for GET /weather.
type CityWeatherRequest struct {
	City string `form:"city" json:"city" validate:"max=200"`
}

// CoordinatesRequest is the query for GET /weather/coordinates. Pointers
// keep 0 distinguishable from an absent parameter.
type CoordinatesRequest struct {
	Lat *float64 `form:"lat" json:"lat" validate:"required,latitude"`
	Lon *float64 `form:"lon" json:"lon" validate:"required,longitude"`
}

type CityWeatherResponse struct {
	Query    string          `json:"query"`
	Location location.Record `json:"location"`
	Weather  weather.Record  `json:"weather"`
}

type CoordinatesWeatherResponse struct {
	Lat     float64        `json:"lat"`
	Lon     float64        `json:"lon"`
	Weather weather.Record `json:"weather"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Uptime    string `json:"uptime"`
	Timestamp string `json:"timestamp,omitempty"`
}

// Error codes returned in ErrorResponse.Code.
const (
	CodeInvalidParams      = "INVALID_PARAMS"
	CodeInvalidInput       = "INVALID_INPUT"
	CodeLocationNotFound   = "LOCATION_NOT_FOUND"
	CodeLocationIncomplete = "LOCATION_INCOMPLETE"
	CodeWeatherProvider    = "WEATHER_PROVIDER_ERROR"
	CodeInternalError      = "INTERNAL_ERROR"
)
