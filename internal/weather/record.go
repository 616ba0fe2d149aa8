package weather

import "errors"

// NotAvailable is the precipitation sentinel when the forecast lookup fails.
const NotAvailable = "N/A"

// Typed causes behind Record.ErrorReason.
var (
	ErrMissingCoordinates = errors.New("missing coordinates")
	ErrProviderStatus     = errors.New("weather provider returned non-success status")
	ErrEmptyPayload       = errors.New("weather provider returned empty payload")
	ErrMalformedPayload   = errors.New("weather provider returned malformed payload")
	ErrNetwork            = errors.New("weather provider network error")
)

// Record is the immutable result of resolving conditions for a location.
// Either ErrorReason is empty and the fields carry whatever could be
// extracted, or ErrorReason describes the first failure and nothing else
// is set.
type Record struct {
	TemperatureF           *int    `json:"temperature_f,omitempty"`
	FeelsLikeF             *int    `json:"feels_like_f,omitempty"`
	HumidityPct            *int    `json:"humidity_pct,omitempty"`
	Description            *string `json:"description,omitempty"`
	WindSpeedMph           *int    `json:"wind_speed_mph,omitempty"`
	PrecipitationChancePct string  `json:"precipitation_chance_pct,omitempty"`
	ErrorReason            string  `json:"error_reason,omitempty"`

	Err error `json:"-"`
}

// Usable reports whether downstream code may read the weather fields.
func (r Record) Usable() bool {
	return r.ErrorReason == ""
}

func failed(err error, reason string) Record {
	return Record{ErrorReason: reason, Err: err}
}
