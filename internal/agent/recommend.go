package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/i474232898/weather-agent/internal/genai"
	"github.com/i474232898/weather-agent/internal/weather"
)

// Recommendation carries advisory text derived from a snapshot. Fallback is
// true whenever the generative provider was not used, so tests can assert
// which path fired without touching the network.
type Recommendation struct {
	Snapshot weather.Snapshot
	Advice   string
	Fallback bool
}

// Composer turns weather snapshots into advice. The generative path is
// optional; with a nil generator every recommendation uses the rule table.
type Composer struct {
	gen genai.Generator
}

func NewComposer(gen genai.Generator) *Composer {
	return &Composer{gen: gen}
}

// Compose asks the generative provider for clothing/activity guidance based
// on the snapshot, falling back to deterministic threshold rules when the
// provider is unavailable or fails.
func (c *Composer) Compose(ctx context.Context, snap weather.Snapshot) Recommendation {
	if c.gen != nil {
		prompt := recommendationPrompt(snap)
		if advice, err := c.gen.Generate(ctx, prompt); err == nil {
			return Recommendation{Snapshot: snap, Advice: advice, Fallback: false}
		}
	}

	return Recommendation{
		Snapshot: snap,
		Advice:   fallbackAdvice(snap),
		Fallback: true,
	}
}

// Answer handles open-ended questions. The snapshot, when present, gives
// the provider weather context. The returned bool mirrors Recommendation's
// Fallback flag.
func (c *Composer) Answer(ctx context.Context, question string, snap *weather.Snapshot) (string, bool) {
	if c.gen != nil {
		if text, err := c.gen.Generate(ctx, openEndedPrompt(question, snap)); err == nil {
			return text, false
		}
	}

	if snap != nil {
		return fmt.Sprintf(
			"In %s it is currently %.1f°C with %s. %s",
			snap.Location, snap.Temperature, conditionPhrase(snap.Condition), fallbackAdvice(*snap),
		), true
	}
	return "I can help with current weather, forecasts, air quality, recommendations and city comparisons. Try asking about a specific city, e.g. \"Weather in London\".", true
}

// recommendationPrompt constrains the model to clothing/activity/health
// guidance only, so unrelated content never reaches the user.
func recommendationPrompt(snap weather.Snapshot) string {
	var b strings.Builder
	b.WriteString("Based on this weather data, provide brief, practical recommendations.\n\n")
	fmt.Fprintf(&b, "Location: %s\n", snap.Location)
	fmt.Fprintf(&b, "Condition: %s (%s)\n", snap.Condition, snap.Description)
	fmt.Fprintf(&b, "Temperature: %.1f°C (feels like %.1f°C)\n", snap.Temperature, snap.FeelsLike)
	fmt.Fprintf(&b, "Humidity: %.0f%%\n", snap.Humidity)
	fmt.Fprintf(&b, "Wind: %.1f m/s\n", snap.WindSpeed)
	fmt.Fprintf(&b, "Precipitation: %.1f mm\n\n", snap.PrecipMM)
	b.WriteString("Provide:\n")
	b.WriteString("1. What to wear (2-3 items)\n")
	b.WriteString("2. Activities (2-3 suggestions appropriate for this weather)\n")
	b.WriteString("3. Health tips (1-2 tips based on conditions)\n\n")
	b.WriteString("Keep it concise and friendly. Do not discuss anything unrelated to the weather.")
	return b.String()
}

func openEndedPrompt(question string, snap *weather.Snapshot) string {
	var b strings.Builder
	b.WriteString("You are a friendly weather assistant. Answer this question:\n\n")
	fmt.Fprintf(&b, "Question: %s\n\n", question)
	if snap != nil {
		b.WriteString("Weather data:\n")
		fmt.Fprintf(&b, "Location: %s\n", snap.Location)
		fmt.Fprintf(&b, "Condition: %s (%s)\n", snap.Condition, snap.Description)
		fmt.Fprintf(&b, "Temperature: %.1f°C, humidity %.0f%%, wind %.1f m/s\n\n", snap.Temperature, snap.Humidity, snap.WindSpeed)
	} else {
		b.WriteString("No specific city was mentioned.\n\n")
	}
	b.WriteString("Provide a helpful, conversational answer. If no city was specified and the question needs one, ask the user which city they are interested in. Stay on the topic of weather.")
	return b.String()
}

// fallbackAdvice applies the deterministic threshold table.
func fallbackAdvice(snap weather.Snapshot) string {
	var parts []string

	switch {
	case snap.Temperature < 5:
		parts = append(parts, "Wear a heavy coat, hat and gloves; it is cold out there.")
	case snap.Temperature < 15:
		parts = append(parts, "A light jacket or sweater should be enough.")
	case snap.Temperature <= 28:
		parts = append(parts, "Comfortable clothing is fine at this temperature.")
	default:
		parts = append(parts, "Wear light clothing and stay hydrated; it is hot.")
	}

	if snap.PrecipMM > 0 || snap.Condition == weather.ConditionRain || snap.Condition == weather.ConditionStorm {
		parts = append(parts, "Take an umbrella, there is precipitation around.")
	}
	if snap.Condition == weather.ConditionSnow {
		parts = append(parts, "Waterproof footwear is a good idea in the snow.")
	}
	if snap.WindSpeed > 10 {
		parts = append(parts, "Expect strong wind; a windproof layer helps.")
	}

	return strings.Join(parts, " ")
}

func conditionPhrase(c weather.Condition) string {
	switch c {
	case weather.ConditionClear:
		return "clear skies"
	case weather.ConditionCloudy:
		return "cloudy skies"
	case weather.ConditionRain:
		return "rain"
	case weather.ConditionSnow:
		return "snow"
	case weather.ConditionStorm:
		return "storms"
	case weather.ConditionMist:
		return "mist"
	default:
		return "mixed conditions"
	}
}
