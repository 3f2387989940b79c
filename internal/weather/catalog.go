package weather

import (
	"errors"
	"fmt"
)

// ErrUnknownMetric is returned when a logical metric name is not in the catalog.
var ErrUnknownMetric = errors.New("unknown metric")

// Family groups metrics for documentation and listing only.
type Family string

const (
	FamilyTemp         Family = "temp"
	FamilyWind         Family = "wind"
	FamilyRain         Family = "rain"
	FamilySolar        Family = "solar"
	FamilyUV           Family = "uv"
	FamilyBattery      Family = "battery"
	FamilySoilTemp     Family = "soilTemp"
	FamilySoilMoisture Family = "soilMoisture"
	FamilyBarometric   Family = "barometric"
	FamilyIndoor       Family = "indoor"
	FamilyAirQuality   Family = "airQuality"
)

// Group selects the default transmitter id class of a metric.
type Group string

const (
	GroupWeather    Group = "weather"
	GroupSoil       Group = "soil"
	GroupBarometric Group = "barometric"
	GroupIndoor     Group = "indoor"
	GroupAirQuality Group = "airQuality"
)

// PostProcess is the closed set of transformations applied after scaling.
type PostProcess int

const (
	PostNone PostProcess = iota
	PostScaleRain
	PostTrackTotalRain
)

func (p PostProcess) String() string {
	switch p {
	case PostScaleRain:
		return "scaleRain"
	case PostTrackTotalRain:
		return "trackTotalRain"
	default:
		return "none"
	}
}

// WindMeasurement chooses which wind averaging the device fields are read from.
type WindMeasurement int

const (
	WindInstant WindMeasurement = iota
	WindAvg1Min
	WindAvg2Min
)

// Valid reports whether w is one of the supported averaging modes.
func (w WindMeasurement) Valid() bool {
	return w >= WindInstant && w <= WindAvg2Min
}

// MetricSpec describes how one logical metric is read from the device payload.
type MetricSpec struct {
	Name        string      `json:"name"`
	NativeField string      `json:"nativeField"`
	Scale       float64     `json:"scale"`
	Family      Family      `json:"family"`
	Group       Group       `json:"group"`
	PostProcess PostProcess `json:"-"`
}

// Catalog is the immutable table of metrics known to the engine.
type Catalog struct {
	specs []MetricSpec
	byKey map[string]int
}

// NewCatalog builds the metric table, selecting the wind fields once for the
// requested averaging mode. Unsupported modes fall back to the 1-minute average.
func NewCatalog(wind WindMeasurement) *Catalog {
	windSpeed, windDir := windFields(wind)

	specs := []MetricSpec{
		{Name: "outTemp", NativeField: "temp", Scale: 1, Family: FamilyTemp, Group: GroupWeather},
		{Name: "outHumidity", NativeField: "hum", Scale: 1, Family: FamilyTemp, Group: GroupWeather},
		{Name: "dewpoint", NativeField: "dew_point", Scale: 1, Family: FamilyTemp, Group: GroupWeather},
		{Name: "heatindex", NativeField: "heat_index", Scale: 1, Family: FamilyTemp, Group: GroupWeather},
		{Name: "THSW", NativeField: "thsw_index", Scale: 1, Family: FamilyTemp, Group: GroupWeather},
		{Name: "windchill", NativeField: "wind_chill", Scale: 1, Family: FamilyWind, Group: GroupWeather},
		{Name: "windSpeed", NativeField: windSpeed, Scale: 1, Family: FamilyWind, Group: GroupWeather},
		{Name: "windDir", NativeField: windDir, Scale: 1, Family: FamilyWind, Group: GroupWeather},
		{Name: "windGust", NativeField: "wind_speed_hi_last_2_min", Scale: 1, Family: FamilyWind, Group: GroupWeather},
		{Name: "windGustDir", NativeField: "wind_dir_at_hi_speed_last_2_min", Scale: 1, Family: FamilyWind, Group: GroupWeather},
		{Name: "rain", NativeField: "rainfall_monthly", Scale: 1, Family: FamilyRain, Group: GroupWeather, PostProcess: PostTrackTotalRain},
		{Name: "rainRate", NativeField: "rain_rate_last", Scale: 1, Family: FamilyRain, Group: GroupWeather, PostProcess: PostScaleRain},
		{Name: "radiation", NativeField: "solar_rad", Scale: 1, Family: FamilySolar, Group: GroupWeather},
		{Name: "UV", NativeField: "uv_index", Scale: 1, Family: FamilyUV, Group: GroupWeather},
		{Name: "txBatteryStatus", NativeField: "trans_battery_flag", Scale: 1, Family: FamilyBattery, Group: GroupWeather},
		{Name: "soilTemp1", NativeField: "temp_1", Scale: 1, Family: FamilySoilTemp, Group: GroupSoil},
		{Name: "soilTemp2", NativeField: "temp_2", Scale: 1, Family: FamilySoilTemp, Group: GroupSoil},
		{Name: "soilTemp3", NativeField: "temp_3", Scale: 1, Family: FamilySoilTemp, Group: GroupSoil},
		{Name: "soilTemp4", NativeField: "temp_4", Scale: 1, Family: FamilySoilTemp, Group: GroupSoil},
		{Name: "soilMoist1", NativeField: "moist_soil_1", Scale: 1, Family: FamilySoilMoisture, Group: GroupSoil},
		{Name: "soilMoist2", NativeField: "moist_soil_2", Scale: 1, Family: FamilySoilMoisture, Group: GroupSoil},
		{Name: "soilMoist3", NativeField: "moist_soil_3", Scale: 1, Family: FamilySoilMoisture, Group: GroupSoil},
		{Name: "soilMoist4", NativeField: "moist_soil_4", Scale: 1, Family: FamilySoilMoisture, Group: GroupSoil},
		{Name: "barometer", NativeField: "bar_sea_level", Scale: 1, Family: FamilyBarometric, Group: GroupBarometric},
		{Name: "pressure", NativeField: "bar_absolute", Scale: 1, Family: FamilyBarometric, Group: GroupBarometric},
		{Name: "inTemp", NativeField: "temp_in", Scale: 1, Family: FamilyIndoor, Group: GroupIndoor},
		{Name: "inHumidity", NativeField: "hum_in", Scale: 1, Family: FamilyIndoor, Group: GroupIndoor},
		{Name: "inDewpoint", NativeField: "dew_point_in", Scale: 1, Family: FamilyIndoor, Group: GroupIndoor},
		{Name: "pm1_0", NativeField: "pm_1", Scale: 1, Family: FamilyAirQuality, Group: GroupAirQuality},
		{Name: "pm2_5", NativeField: "pm_2p5", Scale: 1, Family: FamilyAirQuality, Group: GroupAirQuality},
		{Name: "pm10_0", NativeField: "pm_10", Scale: 1, Family: FamilyAirQuality, Group: GroupAirQuality},
	}

	byKey := make(map[string]int, len(specs))
	for i, s := range specs {
		byKey[s.Name] = i
	}
	return &Catalog{specs: specs, byKey: byKey}
}

func windFields(wind WindMeasurement) (speed, dir string) {
	switch wind {
	case WindInstant:
		return "wind_speed_last", "wind_dir_last"
	case WindAvg2Min:
		return "wind_speed_avg_last_2_min", "wind_dir_scalar_avg_last_2_min"
	default:
		return "wind_speed_avg_last_1_min", "wind_dir_scalar_avg_last_1_min"
	}
}

// Lookup returns the spec for a logical metric name.
func (c *Catalog) Lookup(name string) (MetricSpec, error) {
	i, ok := c.byKey[name]
	if !ok {
		return MetricSpec{}, fmt.Errorf("%w: %q", ErrUnknownMetric, name)
	}
	return c.specs[i], nil
}

// Specs returns a copy of the catalog in declaration order.
func (c *Catalog) Specs() []MetricSpec {
	out := make([]MetricSpec, len(c.specs))
	copy(out, c.specs)
	return out
}
