package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-agent/internal/weather"
)

const (
	defaultBaseURL = "https://api.openweathermap.org/data/2.5"
	defaultGeoURL  = "https://api.openweathermap.org/geo/1.0"
)

// OpenWeatherFetcher implements weather.Fetcher against the OpenWeatherMap
// API: current weather, 5-day/3-hour forecast, geocoding and air pollution.
type OpenWeatherFetcher struct {
	apiKey  string
	baseURL string
	geoURL  string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

// NewOpenWeatherFetcher creates the adapter. The API key and HTTP client are
// injected; nothing is read from the environment here.
func NewOpenWeatherFetcher(client *http.Client, apiKey string) *OpenWeatherFetcher {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openweather",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &OpenWeatherFetcher{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		geoURL:  defaultGeoURL,
		httpCfg: HTTPClientConfig{
			Client: client,
			Backoff: BackoffConfig{
				MaxRetries:      2,
				InitialInterval: 500 * time.Millisecond,
				MaxInterval:     5 * time.Second,
			},
		},
		circuit: cb,
	}
}

// SetBaseURLs overrides the API endpoints, used by tests.
func (p *OpenWeatherFetcher) SetBaseURLs(base, geo string) {
	p.baseURL = base
	p.geoURL = geo
}

func (p *OpenWeatherFetcher) get(ctx context.Context, op, rawURL string, values url.Values) (*http.Response, error) {
	if p.apiKey == "" {
		return nil, weather.NewFailure(weather.FailureUnavailable, op, fmt.Errorf("openweather api key is not configured"))
	}
	values.Set("appid", p.apiKey)

	buildRequest := func() (*http.Request, error) {
		u := fmt.Sprintf("%s?%s", rawURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return nil, weather.NewFailure(failureKindFor(err), op, err)
	}
	return resp, nil
}

// Current fetches current conditions for a location.
func (p *OpenWeatherFetcher) Current(ctx context.Context, loc weather.Location) (weather.Snapshot, error) {
	values := url.Values{}
	values.Set("units", "metric")
	values.Set("q", loc.Query())

	resp, err := p.get(ctx, "current", p.baseURL+"/weather", values)
	if err != nil {
		return weather.Snapshot{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		Dt   int64 `json:"dt"`
		Main struct {
			Temp      float64 `json:"temp"`
			FeelsLike float64 `json:"feels_like"`
			Humidity  float64 `json:"humidity"`
			Pressure  float64 `json:"pressure"`
		} `json:"main"`
		Wind struct {
			Speed float64 `json:"speed"`
		} `json:"wind"`
		Rain struct {
			OneH   float64 `json:"1h"`
			ThreeH float64 `json:"3h"`
		} `json:"rain"`
		Weather []struct {
			Main        string `json:"main"`
			Description string `json:"description"`
		} `json:"weather"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.Snapshot{}, weather.NewFailure(weather.FailureUnavailable, "current", err)
	}

	ts := time.Unix(payload.Dt, 0).UTC()
	if payload.Dt == 0 {
		ts = time.Now().UTC()
	}

	precip := payload.Rain.OneH
	if precip == 0 {
		precip = payload.Rain.ThreeH
	}

	cond, desc := mapOpenWeatherCondition(payload.Weather)

	return weather.Snapshot{
		Location:    loc,
		Timestamp:   ts,
		Temperature: payload.Main.Temp,
		FeelsLike:   payload.Main.FeelsLike,
		Humidity:    payload.Main.Humidity,
		WindSpeed:   payload.Wind.Speed,
		Pressure:    payload.Main.Pressure,
		PrecipMM:    precip,
		Condition:   cond,
		Description: desc,
	}, nil
}

// Forecast fetches the 5-day/3-hour forecast and buckets it into per-day
// min/max entries, chronological order. days outside [1,5] are clamped.
func (p *OpenWeatherFetcher) Forecast(ctx context.Context, loc weather.Location, days int) (weather.Forecast, error) {
	days = weather.ClampDays(days)

	values := url.Values{}
	values.Set("units", "metric")
	values.Set("q", loc.Query())

	resp, err := p.get(ctx, "forecast", p.baseURL+"/forecast", values)
	if err != nil {
		return weather.Forecast{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		List []struct {
			Dt   int64 `json:"dt"`
			Main struct {
				Temp float64 `json:"temp"`
			} `json:"main"`
			Rain struct {
				ThreeH float64 `json:"3h"`
			} `json:"rain"`
			Weather []struct {
				Main        string `json:"main"`
				Description string `json:"description"`
			} `json:"weather"`
		} `json:"list"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.Forecast{}, weather.NewFailure(weather.FailureUnavailable, "forecast", err)
	}
	if len(payload.List) == 0 {
		return weather.Forecast{}, weather.NewFailure(weather.FailureUnavailable, "forecast", fmt.Errorf("empty forecast list"))
	}

	// Bucket the 3-hourly entries by UTC day.
	type bucket struct {
		date   time.Time
		temps  []float64
		conds  map[weather.Condition]int
		descs  map[string]int
		precip float64
	}
	buckets := make(map[string]*bucket)

	for _, entry := range payload.List {
		ts := time.Unix(entry.Dt, 0).UTC()
		key := ts.Format("2006-01-02")

		b, ok := buckets[key]
		if !ok {
			b = &bucket{
				date:  time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC),
				conds: make(map[weather.Condition]int),
				descs: make(map[string]int),
			}
			buckets[key] = b
		}

		b.temps = append(b.temps, entry.Main.Temp)
		b.precip += entry.Rain.ThreeH

		cond, desc := mapOpenWeatherCondition(entry.Weather)
		b.conds[cond]++
		if desc != "" {
			b.descs[desc]++
		}
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := weather.Forecast{Location: loc}
	for _, k := range keys {
		if len(out.Days) >= days {
			break
		}
		b := buckets[k]

		minT, maxT := b.temps[0], b.temps[0]
		for _, t := range b.temps[1:] {
			if t < minT {
				minT = t
			}
			if t > maxT {
				maxT = t
			}
		}

		out.Days = append(out.Days, weather.DayForecast{
			Date:        b.date,
			MinTemp:     minT,
			MaxTemp:     maxT,
			Condition:   majorityCondition(b.conds),
			Description: majorityString(b.descs),
			PrecipMM:    b.precip,
		})
	}

	return out, nil
}

// AirQuality geocodes the location, then fetches the air pollution index.
func (p *OpenWeatherFetcher) AirQuality(ctx context.Context, loc weather.Location) (weather.AirQuality, error) {
	lat, lon, err := p.geocode(ctx, loc)
	if err != nil {
		return weather.AirQuality{}, err
	}

	values := url.Values{}
	values.Set("lat", fmt.Sprintf("%f", lat))
	values.Set("lon", fmt.Sprintf("%f", lon))

	resp, err := p.get(ctx, "air_quality", p.baseURL+"/air_pollution", values)
	if err != nil {
		return weather.AirQuality{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		List []struct {
			Dt   int64 `json:"dt"`
			Main struct {
				AQI int `json:"aqi"`
			} `json:"main"`
			Components map[string]float64 `json:"components"`
		} `json:"list"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.AirQuality{}, weather.NewFailure(weather.FailureUnavailable, "air_quality", err)
	}
	if len(payload.List) == 0 {
		return weather.AirQuality{}, weather.NewFailure(weather.FailureUnavailable, "air_quality", fmt.Errorf("empty air quality list"))
	}

	entry := payload.List[0]
	ts := time.Unix(entry.Dt, 0).UTC()
	if entry.Dt == 0 {
		ts = time.Now().UTC()
	}

	return weather.AirQuality{
		Location:          loc,
		Timestamp:         ts,
		Index:             entry.Main.AQI,
		DominantPollutant: dominantPollutant(entry.Components),
		Components:        entry.Components,
	}, nil
}

// geocode resolves a location name to coordinates via the provider's geo
// endpoint. An empty result set means the location does not exist.
func (p *OpenWeatherFetcher) geocode(ctx context.Context, loc weather.Location) (lat, lon float64, err error) {
	values := url.Values{}
	values.Set("q", loc.Query())
	values.Set("limit", "1")

	resp, err := p.get(ctx, "geocode", p.geoURL+"/direct", values)
	if err != nil {
		return 0, 0, err
	}
	defer resp.Body.Close()

	var payload []struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, 0, weather.NewFailure(weather.FailureUnavailable, "geocode", err)
	}
	if len(payload) == 0 {
		return 0, 0, weather.NewFailure(weather.FailureNotFound, "geocode", fmt.Errorf("no geocoding match for %q", loc.Query()))
	}

	return payload[0].Lat, payload[0].Lon, nil
}

func mapOpenWeatherCondition(items []struct {
	Main        string `json:"main"`
	Description string `json:"description"`
}) (weather.Condition, string) {
	if len(items) == 0 {
		return weather.ConditionUnknown, ""
	}
	desc := items[0].Description
	switch items[0].Main {
	case "Clear":
		return weather.ConditionClear, desc
	case "Clouds":
		return weather.ConditionCloudy, desc
	case "Rain", "Drizzle":
		return weather.ConditionRain, desc
	case "Snow":
		return weather.ConditionSnow, desc
	case "Thunderstorm":
		return weather.ConditionStorm, desc
	case "Mist", "Fog", "Haze":
		return weather.ConditionMist, desc
	default:
		return weather.ConditionUnknown, desc
	}
}

func majorityCondition(counts map[weather.Condition]int) weather.Condition {
	best := weather.ConditionUnknown
	bestCount := 0
	for cond, count := range counts {
		if count > bestCount {
			bestCount = count
			best = cond
		}
	}
	return best
}

func majorityString(counts map[string]int) string {
	best := ""
	bestCount := 0
	for s, count := range counts {
		if count > bestCount {
			bestCount = count
			best = s
		}
	}
	return best
}

// dominantPollutant picks the component with the highest concentration
// relative to common reference levels, so e.g. a modest PM2.5 reading can
// still dominate a large but harmless CO reading.
func dominantPollutant(components map[string]float64) string {
	reference := map[string]float64{
		"co":    4400, // μg/m³ thresholds between "fair" and "moderate"
		"no2":   70,
		"o3":    100,
		"so2":   80,
		"pm2_5": 25,
		"pm10":  50,
	}

	best := ""
	bestRatio := 0.0
	for name, value := range components {
		ref, ok := reference[name]
		if !ok || ref == 0 {
			continue
		}
		ratio := value / ref
		if ratio > bestRatio {
			bestRatio = ratio
			best = name
		}
	}
	return best
}
