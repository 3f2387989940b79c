package weather

import (
	"time"

	"github.com/google/uuid"
)

// UnitSystem tags the unit system all record values are expressed in.
type UnitSystem string

// UnitsUS is degrees F, inches, mph and inHg, as reported by the devices.
const UnitsUS UnitSystem = "US"

// Record is the normalized observation produced by one poll cycle.
// Metrics that had no reading are absent from Values, never zero.
type Record struct {
	ID        uuid.UUID          `json:"id"`
	Timestamp time.Time          `json:"timestamp"` // always UTC
	Units     UnitSystem         `json:"units"`
	Hardware  string             `json:"hardware,omitempty"`
	Values    map[string]float64 `json:"values"`
}

// Value returns the value of a logical metric and whether it was reported.
func (r Record) Value(name string) (float64, bool) {
	v, ok := r.Values[name]
	return v, ok
}

// SourceKind distinguishes the two device endpoints a cycle can read.
type SourceKind int

const (
	SourceAirQuality SourceKind = iota
	SourceWeather
)

func (k SourceKind) String() string {
	if k == SourceWeather {
		return "weather"
	}
	return "aqi"
}

// TransmitterBinding describes a metric and the transmitter it prefers.
type TransmitterBinding struct {
	MetricSpec
	PostProcessName string `json:"postProcess"`
	TransmitterID   string `json:"transmitterId"`
}
