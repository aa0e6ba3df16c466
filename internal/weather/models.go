package weather

import (
	"strings"
	"time"
)

// Condition represents a normalized high-level weather condition.
type Condition string

const (
	ConditionUnknown Condition = "unknown"
	ConditionClear   Condition = "clear"
	ConditionCloudy  Condition = "cloudy"
	ConditionRain    Condition = "rain"
	ConditionSnow    Condition = "snow"
	ConditionStorm   Condition = "storm"
	ConditionMist    Condition = "mist"
)

// Emoji returns a display glyph for the condition.
func (c Condition) Emoji() string {
	switch c {
	case ConditionClear:
		return "☀️"
	case ConditionCloudy:
		return "☁️"
	case ConditionRain:
		return "🌧️"
	case ConditionSnow:
		return "❄️"
	case ConditionStorm:
		return "⛈️"
	case ConditionMist:
		return "🌫️"
	default:
		return "🌤️"
	}
}

// Location is a normalized place reference extracted from a query.
// Name must be non-empty; Country and State are optional ISO-style codes.
// No geocoding happens at this level; the provider adapter is the only
// component allowed to fail on a location that does not exist.
type Location struct {
	Name    string `json:"name"`
	Country string `json:"country,omitempty"`
	State   string `json:"state,omitempty"`
}

// Key returns a canonical lowercase key; two locations are the same place
// when their keys are equal.
func (l Location) Key() string {
	return strings.ToLower(l.Name) + ":" + strings.ToLower(l.Country) + ":" + strings.ToLower(l.State)
}

// Equal reports whether two locations refer to the same place.
func (l Location) Equal(other Location) bool {
	return l.Key() == other.Key()
}

// Query renders the location in the "city,state,country" form the
// provider expects.
func (l Location) Query() string {
	parts := []string{l.Name}
	if l.State != "" {
		parts = append(parts, l.State)
	}
	if l.Country != "" {
		parts = append(parts, l.Country)
	}
	return strings.Join(parts, ",")
}

func (l Location) String() string {
	if l.Country != "" {
		return l.Name + ", " + l.Country
	}
	return l.Name
}

// Snapshot is a single point-in-time weather reading, always metric.
// Snapshots are produced fresh per fetch and never persisted.
type Snapshot struct {
	Location    Location  `json:"location"`
	Timestamp   time.Time `json:"timestamp"` // always UTC
	Temperature float64   `json:"temperatureC"`
	FeelsLike   float64   `json:"feelsLikeC"`
	Humidity    float64   `json:"humidityPercent"`
	WindSpeed   float64   `json:"windSpeedMs"`
	Pressure    float64   `json:"pressureHpa"`
	PrecipMM    float64   `json:"precipMm"`
	Condition   Condition `json:"condition"`
	Description string    `json:"description,omitempty"`
}

// DayForecast is one day's aggregated forecast entry.
type DayForecast struct {
	Date        time.Time `json:"date"` // midnight UTC
	MinTemp     float64   `json:"minTempC"`
	MaxTemp     float64   `json:"maxTempC"`
	Condition   Condition `json:"condition"`
	Description string    `json:"description,omitempty"`
	PrecipMM    float64   `json:"precipMm"`
}

// Forecast is a chronological multi-day forecast, non-empty on success.
type Forecast struct {
	Location Location      `json:"location"`
	Days     []DayForecast `json:"days"`
}

// AirQuality is a point-in-time air quality reading on the provider's
// 1-5 index scale.
type AirQuality struct {
	Location          Location           `json:"location"`
	Timestamp         time.Time          `json:"timestamp"`
	Index             int                `json:"aqi"`
	DominantPollutant string             `json:"dominantPollutant,omitempty"`
	Components        map[string]float64 `json:"components,omitempty"`
}

// IndexLabel maps the 1-5 AQI index to its qualitative band.
func (a AirQuality) IndexLabel() string {
	switch a.Index {
	case 1:
		return "Good"
	case 2:
		return "Fair"
	case 3:
		return "Moderate"
	case 4:
		return "Poor"
	case 5:
		return "Very Poor"
	default:
		return "Unknown"
	}
}
