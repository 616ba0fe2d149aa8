package location

// NotAvailable is the sentinel for enrichment that could not be resolved.
const NotAvailable = "N/A"

// Record is the immutable result of resolving a city string.
// When Found is false every optional field is nil and ErrorReason says why.
type Record struct {
	Query       string   `json:"query"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	CityName    *string  `json:"city_name,omitempty"`
	CountryName *string  `json:"country_name,omitempty"`
	StateName   string   `json:"state_name"`
	Found       bool     `json:"found"`
	ErrorReason string   `json:"error_reason,omitempty"`
}

// HasCoordinates reports whether both coordinates were extracted.
func (r Record) HasCoordinates() bool {
	return r.Latitude != nil && r.Longitude != nil
}

func notFound(query, reason string) Record {
	return Record{
		Query:       query,
		StateName:   NotAvailable,
		Found:       false,
		ErrorReason: reason,
	}
}
