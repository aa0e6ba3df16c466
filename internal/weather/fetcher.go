package weather

import "context"

// MaxForecastDays is the provider ceiling for multi-day forecasts.
// Requests above it are clamped, not rejected.
const MaxForecastDays = 5

// Fetcher abstracts the weather data source. Implementations own HTTP,
// parsing and resilience, and translate provider-specific errors into the
// three Failure kinds. All returned values are metric.
type Fetcher interface {
	Current(ctx context.Context, loc Location) (Snapshot, error)
	Forecast(ctx context.Context, loc Location, days int) (Forecast, error)
	AirQuality(ctx context.Context, loc Location) (AirQuality, error)
}

// ClampDays bounds a requested forecast length to [1, MaxForecastDays].
func ClampDays(days int) int {
	if days < 1 {
		return 1
	}
	if days > MaxForecastDays {
		return MaxForecastDays
	}
	return days
}
