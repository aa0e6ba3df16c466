package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-agent/internal/weather"
)

func newTestFetcher(t *testing.T, handler http.Handler) *OpenWeatherFetcher {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	f := NewOpenWeatherFetcher(&http.Client{Timeout: 5 * time.Second}, "test-key")
	f.SetBaseURLs(srv.URL, srv.URL)
	// Keep retries out of unit tests so failures surface immediately.
	f.httpCfg.Backoff = BackoffConfig{
		MaxRetries:      0,
		InitialInterval: time.Millisecond,
		MaxInterval:     time.Millisecond,
	}
	return f
}

func TestCurrentParsesSnapshot(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/weather", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "London,GB", r.URL.Query().Get("q"))
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		assert.Equal(t, "test-key", r.URL.Query().Get("appid"))

		w.Write([]byte(`{
			"dt": 1700000000,
			"main": {"temp": 11.5, "feels_like": 10.2, "humidity": 72, "pressure": 1012},
			"wind": {"speed": 4.1},
			"rain": {"1h": 0.3},
			"weather": [{"main": "Rain", "description": "light rain"}]
		}`))
	})

	f := newTestFetcher(t, mux)
	loc := weather.Location{Name: "London", Country: "GB"}

	snap, err := f.Current(context.Background(), loc)
	require.NoError(t, err)

	assert.Equal(t, loc, snap.Location)
	assert.Equal(t, 11.5, snap.Temperature)
	assert.Equal(t, 72.0, snap.Humidity)
	assert.Equal(t, 0.3, snap.PrecipMM)
	assert.Equal(t, weather.ConditionRain, snap.Condition)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), snap.Timestamp)
	assert.False(t, snap.Timestamp.IsZero(), "every snapshot carries a timestamp")
}

func TestCurrentNotFound(t *testing.T) {
	f := newTestFetcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"cod":"404"}`, http.StatusNotFound)
	}))

	_, err := f.Current(context.Background(), weather.Location{Name: "Atlantis"})

	require.Error(t, err)
	assert.True(t, weather.IsKind(err, weather.FailureNotFound))
}

func TestCurrentRateLimited(t *testing.T) {
	f := newTestFetcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	}))

	_, err := f.Current(context.Background(), weather.Location{Name: "London"})

	require.Error(t, err)
	assert.True(t, weather.IsKind(err, weather.FailureRateLimited))
	assert.False(t, weather.IsKind(err, weather.FailureNotFound), "rate limiting must stay distinguishable from not-found")
}

func TestCurrentServerError(t *testing.T) {
	f := newTestFetcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	_, err := f.Current(context.Background(), weather.Location{Name: "London"})

	require.Error(t, err)
	assert.True(t, weather.IsKind(err, weather.FailureUnavailable))
}

// forecastBody spans seven days so the clamp is observable.
func forecastBody() string {
	return `{
		"list": [
			{"dt": 1700000000, "main": {"temp": 10}, "weather": [{"main": "Clear", "description": "clear sky"}]},
			{"dt": 1700086400, "main": {"temp": 11}, "weather": [{"main": "Clear", "description": "clear sky"}]},
			{"dt": 1700172800, "main": {"temp": 12}, "weather": [{"main": "Clouds", "description": "few clouds"}]},
			{"dt": 1700259200, "main": {"temp": 13}, "weather": [{"main": "Rain", "description": "light rain"}], "rain": {"3h": 1.2}},
			{"dt": 1700345600, "main": {"temp": 14}, "weather": [{"main": "Clear", "description": "clear sky"}]},
			{"dt": 1700432000, "main": {"temp": 15}, "weather": [{"main": "Clear", "description": "clear sky"}]},
			{"dt": 1700518400, "main": {"temp": 16}, "weather": [{"main": "Clear", "description": "clear sky"}]}
		]
	}`
}

func TestForecastClampsDays(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/forecast", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(forecastBody()))
	})

	f := newTestFetcher(t, mux)
	loc := weather.Location{Name: "Tokyo"}

	nine, err := f.Forecast(context.Background(), loc, 9)
	require.NoError(t, err)

	five, err := f.Forecast(context.Background(), loc, 5)
	require.NoError(t, err)

	// Requesting 9 days behaves identically to requesting the ceiling.
	assert.Equal(t, five, nine)
	assert.Len(t, nine.Days, 5)
}

func TestForecastChronologicalOrder(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/forecast", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(forecastBody()))
	})

	f := newTestFetcher(t, mux)

	fc, err := f.Forecast(context.Background(), weather.Location{Name: "Tokyo"}, 5)
	require.NoError(t, err)
	require.NotEmpty(t, fc.Days)

	for i := 1; i < len(fc.Days); i++ {
		assert.True(t, fc.Days[i].Date.After(fc.Days[i-1].Date))
	}
}

func TestAirQualityGeocodesFirst(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/direct", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Delhi", r.URL.Query().Get("q"))
		w.Write([]byte(`[{"lat": 28.61, "lon": 77.21}]`))
	})
	mux.HandleFunc("/air_pollution", func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.URL.Query().Get("lat"))
		w.Write([]byte(`{
			"list": [{
				"dt": 1700000000,
				"main": {"aqi": 4},
				"components": {"co": 400, "pm2_5": 80, "pm10": 60, "no2": 20, "o3": 30, "so2": 5}
			}]
		}`))
	})

	f := newTestFetcher(t, mux)

	aq, err := f.AirQuality(context.Background(), weather.Location{Name: "Delhi"})
	require.NoError(t, err)

	assert.Equal(t, 4, aq.Index)
	assert.Equal(t, "Poor", aq.IndexLabel())
	assert.Equal(t, "pm2_5", aq.DominantPollutant)
}

func TestAirQualityUnknownCity(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/direct", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})

	f := newTestFetcher(t, mux)

	_, err := f.AirQuality(context.Background(), weather.Location{Name: "Atlantis"})

	require.Error(t, err)
	assert.True(t, weather.IsKind(err, weather.FailureNotFound))
}
