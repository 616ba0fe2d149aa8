package dispatcher

import (
	"github.com/vzahanych/nimbus/internal/location"
	"github.com/vzahanych/nimbus/internal/weather"
)

// FailureKind classifies why a lookup produced no weather.
type FailureKind string

const (
	KindInput                FailureKind = "input_error"
	KindLocationNotFound     FailureKind = "location_not_found"
	KindLocationFieldMissing FailureKind = "location_field_missing"
	KindWeatherProvider      FailureKind = "weather_provider_error"
	KindUnexpected           FailureKind = "unexpected"
)

// Messages for failures raised by the dispatcher itself.
const (
	EmptyInputMessage = "empty input"
	UnexpectedMessage = "Unable to fetch weather data."
)

type Failure struct {
	Kind   FailureKind `json:"kind"`
	Reason string      `json:"reason"`
}

func (f *Failure) Error() string {
	return f.Reason
}

// Result is either a success carrying both records or a Failure with
// nothing else set. Generation is assigned by Dispatch and stays zero for
// direct Submit calls.
type Result struct {
	Generation uint64           `json:"generation,omitempty"`
	Query      string           `json:"query"`
	Location   *location.Record `json:"location,omitempty"`
	Weather    *weather.Record  `json:"weather,omitempty"`
	Failure    *Failure         `json:"failure,omitempty"`
}

func (r Result) OK() bool {
	return r.Failure == nil
}

func success(query string, loc location.Record, w weather.Record) Result {
	return Result{Query: query, Location: &loc, Weather: &w}
}

func failure(query string, kind FailureKind, reason string) Result {
	return Result{Query: query, Failure: &Failure{Kind: kind, Reason: reason}}
}
