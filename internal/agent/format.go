package agent

import (
	"fmt"
	"strings"

	"github.com/i474232898/weather-agent/internal/weather"
)

// Units selects the display unit system. Values are stored metric
// internally; conversion happens exactly once, here.
type Units string

const (
	UnitsMetric   Units = "metric"
	UnitsImperial Units = "imperial"
)

// Formatter renders fetched data and failures into final response text.
// It is a pure value type; all methods are safe for concurrent use.
type Formatter struct {
	units Units
}

func NewFormatter(units Units) Formatter {
	if units != UnitsImperial {
		units = UnitsMetric
	}
	return Formatter{units: units}
}

func (f Formatter) temp(celsius float64) string {
	if f.units == UnitsImperial {
		return fmt.Sprintf("%.1f°F", celsius*9/5+32)
	}
	return fmt.Sprintf("%.1f°C", celsius)
}

func (f Formatter) wind(metersPerSecond float64) string {
	if f.units == UnitsImperial {
		return fmt.Sprintf("%.1f mph", metersPerSecond*2.23694)
	}
	return fmt.Sprintf("%.1f m/s", metersPerSecond)
}

// Current renders a single current-conditions report.
func (f Formatter) Current(snap weather.Snapshot) string {
	desc := snap.Description
	if desc == "" {
		desc = string(snap.Condition)
	}
	desc = capitalize(desc)

	var b strings.Builder
	fmt.Fprintf(&b, "%s Current weather in %s\n\n", snap.Condition.Emoji(), snap.Location)
	fmt.Fprintf(&b, "Condition: %s\n", desc)
	fmt.Fprintf(&b, "Temperature: %s (feels like %s)\n", f.temp(snap.Temperature), f.temp(snap.FeelsLike))
	fmt.Fprintf(&b, "Humidity: %.0f%%\n", snap.Humidity)
	fmt.Fprintf(&b, "Wind: %s\n", f.wind(snap.WindSpeed))
	fmt.Fprintf(&b, "Pressure: %.0f hPa", snap.Pressure)
	return b.String()
}

// Forecast renders a day-by-day table.
func (f Formatter) Forecast(fc weather.Forecast) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📅 %d-day forecast for %s\n", len(fc.Days), fc.Location)

	for _, day := range fc.Days {
		desc := day.Description
		if desc == "" {
			desc = string(day.Condition)
		}
		fmt.Fprintf(&b, "\n%s %s: %s, %s to %s",
			day.Condition.Emoji(),
			day.Date.Format("Monday, Jan 2"),
			capitalize(desc),
			f.temp(day.MinTemp),
			f.temp(day.MaxTemp),
		)
		if day.PrecipMM > 0 {
			fmt.Fprintf(&b, " (%.1f mm precipitation)", day.PrecipMM)
		}
	}
	return b.String()
}

// AirQuality renders the index with its qualitative band.
func (f Formatter) AirQuality(aq weather.AirQuality) string {
	var b strings.Builder
	fmt.Fprintf(&b, "💨 Air quality in %s\n\n", aq.Location)
	fmt.Fprintf(&b, "Index: %d (%s)", aq.Index, aq.IndexLabel())
	if aq.DominantPollutant != "" {
		fmt.Fprintf(&b, "\nDominant pollutant: %s", pollutantLabel(aq.DominantPollutant))
	}
	return b.String()
}

// Recommendation renders the snapshot followed by the advice block.
func (f Formatter) Recommendation(rec Recommendation) string {
	return f.Current(rec.Snapshot) + "\n\n🎯 Recommendations\n\n" + rec.Advice
}

// CompareSide is one half of a comparison: either a snapshot or the error
// that prevented it.
type CompareSide struct {
	Location weather.Location
	Snapshot weather.Snapshot
	Err      error
}

// Compare renders a two-column comparison. A failed side renders an
// explicit unavailability note; it is never silently dropped.
func (f Formatter) Compare(a, b CompareSide) string {
	var sb strings.Builder
	sb.WriteString("🌍 Weather comparison\n\n")

	if a.Err != nil && b.Err != nil {
		fmt.Fprintf(&sb, "%s: %s\n", a.Location, f.sideUnavailable(a.Err))
		fmt.Fprintf(&sb, "%s: %s", b.Location, f.sideUnavailable(b.Err))
		return sb.String()
	}

	if a.Err == nil && b.Err == nil {
		fmt.Fprintf(&sb, "| Metric | %s | %s |\n", a.Snapshot.Location, b.Snapshot.Location)
		fmt.Fprintf(&sb, "| Condition | %s %s | %s %s |\n",
			a.Snapshot.Condition.Emoji(), capitalize(string(a.Snapshot.Condition)),
			b.Snapshot.Condition.Emoji(), capitalize(string(b.Snapshot.Condition)))
		fmt.Fprintf(&sb, "| Temperature | %s | %s |\n", f.temp(a.Snapshot.Temperature), f.temp(b.Snapshot.Temperature))
		fmt.Fprintf(&sb, "| Humidity | %.0f%% | %.0f%% |\n", a.Snapshot.Humidity, b.Snapshot.Humidity)
		fmt.Fprintf(&sb, "| Wind | %s | %s |\n\n", f.wind(a.Snapshot.WindSpeed), f.wind(b.Snapshot.WindSpeed))
		sb.WriteString(f.compareDelta(a.Snapshot, b.Snapshot))
		return sb.String()
	}

	ok, failed := a, b
	if a.Err != nil {
		ok, failed = b, a
	}
	sb.WriteString(f.Current(ok.Snapshot))
	fmt.Fprintf(&sb, "\n\n%s: %s", failed.Location, f.sideUnavailable(failed.Err))
	return sb.String()
}

func (f Formatter) compareDelta(a, b weather.Snapshot) string {
	var parts []string

	diff := a.Temperature - b.Temperature
	switch {
	case diff > 0:
		parts = append(parts, fmt.Sprintf("%s is warmer by %s.", a.Location, f.tempDelta(diff)))
	case diff < 0:
		parts = append(parts, fmt.Sprintf("%s is warmer by %s.", b.Location, f.tempDelta(-diff)))
	default:
		parts = append(parts, "Both cities are equally warm.")
	}

	if a.PrecipMM != b.PrecipMM {
		wetter := a.Location
		if b.PrecipMM > a.PrecipMM {
			wetter = b.Location
		}
		parts = append(parts, fmt.Sprintf("%s is the wetter of the two right now.", wetter))
	}

	return strings.Join(parts, " ")
}

func (f Formatter) tempDelta(celsius float64) string {
	if f.units == UnitsImperial {
		return fmt.Sprintf("%.1f°F", celsius*9/5)
	}
	return fmt.Sprintf("%.1f°C", celsius)
}

// Summary concatenates the sections that succeeded; a missing optional
// section renders a short note instead of fabricated data.
func (f Formatter) Summary(current weather.Snapshot, fc *weather.Forecast, aq *weather.AirQuality) string {
	var b strings.Builder
	b.WriteString("📊 Complete weather summary\n\n")
	b.WriteString(f.Current(current))

	b.WriteString("\n\n---\n\n")
	if fc != nil && len(fc.Days) > 0 {
		b.WriteString(f.Forecast(*fc))
	} else {
		b.WriteString("Forecast is unavailable right now.")
	}

	b.WriteString("\n\n---\n\n")
	if aq != nil {
		b.WriteString(f.AirQuality(*aq))
	} else {
		b.WriteString("Air quality data is unavailable right now.")
	}
	return b.String()
}

// FailureText converts a typed fetch failure into user-facing text. Raw
// provider errors never reach the caller.
func (f Formatter) FailureText(loc weather.Location, err error) string {
	switch weather.KindOf(err) {
	case weather.FailureNotFound:
		return fmt.Sprintf("❌ City %q not found. Please check the spelling or add a country code (e.g. \"Paris,FR\").", loc.Name)
	case weather.FailureRateLimited:
		return "❌ The weather service is receiving too many requests right now. Please try again shortly."
	default:
		return "❌ The weather service is unavailable right now. Please try again shortly."
	}
}

// NoLocationText asks the user to name a city for intents that need one.
func (f Formatter) NoLocationText() string {
	return "❌ I could not find a city in your question. Try something like \"Weather in London\" or \"Paris,FR forecast\"."
}

func (f Formatter) sideUnavailable(err error) string {
	switch weather.KindOf(err) {
	case weather.FailureNotFound:
		return "city not found (check the spelling or add a country code)"
	case weather.FailureRateLimited:
		return "data unavailable (rate limited, try again shortly)"
	default:
		return "data unavailable right now"
	}
}

func pollutantLabel(component string) string {
	labels := map[string]string{
		"co":    "carbon monoxide (CO)",
		"no2":   "nitrogen dioxide (NO₂)",
		"o3":    "ozone (O₃)",
		"so2":   "sulphur dioxide (SO₂)",
		"pm2_5": "fine particulates (PM2.5)",
		"pm10":  "coarse particulates (PM10)",
	}
	if label, ok := labels[component]; ok {
		return label
	}
	return component
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
