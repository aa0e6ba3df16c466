package agent

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/i474232898/weather-agent/internal/common"
	"github.com/i474232898/weather-agent/internal/weather"
)

// Intent is the classified purpose of a query. The set is closed; OpenEnded
// is the explicit fallback, never an error.
type Intent int

const (
	IntentCurrentWeather Intent = iota
	IntentForecast
	IntentAirQuality
	IntentRecommendation
	IntentCompare
	IntentSummary
	IntentOpenEnded
)

func (i Intent) String() string {
	switch i {
	case IntentCurrentWeather:
		return "current_weather"
	case IntentForecast:
		return "forecast"
	case IntentAirQuality:
		return "air_quality"
	case IntentRecommendation:
		return "recommendation"
	case IntentCompare:
		return "compare"
	case IntentSummary:
		return "summary"
	case IntentOpenEnded:
		return "open_ended"
	default:
		return "unknown"
	}
}

// DefaultForecastDays is used when a forecast query names no day count.
const DefaultForecastDays = 3

var daysPattern = regexp.MustCompile(`(\d+)\s*-?\s*day`)

// Resolution is the outcome of resolving a raw query: one intent, the
// locations it references in order of appearance, and the forecast length.
type Resolution struct {
	Intent    Intent
	Locations []weather.Location
	Days      int
}

// Classify maps text to exactly one intent using ordered lexical rules;
// the first matching rule wins. The function is pure: the same text always
// yields the same intent regardless of call order.
func Classify(text string) Intent {
	return classify(text, ExtractLocations(text))
}

// Resolve classifies the query and extracts its locations in one pass.
func Resolve(text string) Resolution {
	locs := ExtractLocations(text)
	return Resolution{
		Intent:    classify(text, locs),
		Locations: locs,
		Days:      parseDays(text),
	}
}

// classify evaluates the rule list top to bottom. Overlapping keywords
// resolve by this fixed precedence, never by guessing.
func classify(text string, locs []weather.Location) Intent {
	lower := strings.ToLower(strings.TrimSpace(text))

	// 1. Compare: a connector plus two extractable locations.
	if hasCompareConnector(lower) && len(locs) == 2 {
		return IntentCompare
	}

	// 2. Recommendation.
	if common.HasAny(lower, "wear", "should i", "recommend", "suggestion", "bring", "pack", "umbrella", "jacket") {
		return IntentRecommendation
	}

	// 3. Forecast.
	if common.HasAny(lower, "forecast", "tomorrow", "next few days", "this week") || daysPattern.MatchString(lower) {
		return IntentForecast
	}

	// 4. Air quality.
	if common.HasAny(lower, "air quality", "aqi", "pollution", "smog") {
		return IntentAirQuality
	}

	// 5. Summary.
	if common.HasAny(lower, "summary", "overview", "full report", "complete") {
		return IntentSummary
	}

	// 6. Current weather, including a bare short city query ("London").
	if common.HasAny(lower, "weather", "temperature", "temp", "hot", "cold", "rain", "sunny", "cloudy", "humid") {
		return IntentCurrentWeather
	}
	if len(locs) > 0 && len(strings.Fields(lower)) <= 3 {
		return IntentCurrentWeather
	}

	// 7. Fallback: free-form generative answer.
	return IntentOpenEnded
}

func hasCompareConnector(lower string) bool {
	for _, conn := range compareConnectors {
		if strings.Contains(lower, " "+conn+" ") {
			return true
		}
	}
	return false
}

// parseDays reads an "N day" phrase; absent or unparsable means the
// default. Clamping to the provider ceiling is the fetcher's job.
func parseDays(text string) int {
	m := daysPattern.FindStringSubmatch(strings.ToLower(text))
	if len(m) < 2 {
		return DefaultForecastDays
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return DefaultForecastDays
	}
	return n
}
