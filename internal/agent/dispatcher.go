package agent

import (
	"context"
	"log"
	"strings"
	"sync"

	"github.com/i474232898/weather-agent/internal/weather"
)

// Error codes crossing the core/transport boundary. An empty code means
// the query was answered normally.
const (
	CodeLocationNotFound    = "location_not_found"
	CodeNotFound            = "not_found"
	CodeProviderUnavailable = "provider_unavailable"
	CodeRateLimited         = "rate_limited"
	CodePartialCompare      = "partial_compare_failure"
)

// Response is the only artifact the core hands to the transport layer.
type Response struct {
	Text      string `json:"text"`
	ErrorCode string `json:"errorCode,omitempty"`
}

// Dispatcher sequences extract → classify → fetch → compose → format.
// It is stateless and safe to invoke concurrently; it never returns an
// error past its own boundary.
type Dispatcher struct {
	fetcher   weather.Fetcher
	composer  *Composer
	formatter Formatter
}

func NewDispatcher(fetcher weather.Fetcher, composer *Composer, formatter Formatter) *Dispatcher {
	return &Dispatcher{
		fetcher:   fetcher,
		composer:  composer,
		formatter: formatter,
	}
}

// Handle answers a single free-form query. An empty query yields the
// capability help text.
func (d *Dispatcher) Handle(ctx context.Context, query string) Response {
	query = strings.TrimSpace(query)
	if query == "" {
		return Response{Text: helpText}
	}

	res := Resolve(query)
	log.Printf("agent: intent=%s locations=%d query=%q", res.Intent, len(res.Locations), query)

	switch res.Intent {
	case IntentCompare:
		return d.handleCompare(ctx, res)
	case IntentRecommendation:
		return d.handleRecommendation(ctx, res)
	case IntentForecast:
		return d.handleForecast(ctx, res)
	case IntentAirQuality:
		return d.handleAirQuality(ctx, res)
	case IntentSummary:
		return d.handleSummary(ctx, res)
	case IntentCurrentWeather:
		return d.handleCurrent(ctx, res)
	default:
		return d.handleOpenEnded(ctx, query, res)
	}
}

func (d *Dispatcher) handleCurrent(ctx context.Context, res Resolution) Response {
	loc, ok := singleLocation(res)
	if !ok {
		return Response{Text: d.formatter.NoLocationText(), ErrorCode: CodeLocationNotFound}
	}

	snap, err := d.fetcher.Current(ctx, loc)
	if err != nil {
		return d.failure(loc, err)
	}
	return Response{Text: d.formatter.Current(snap)}
}

func (d *Dispatcher) handleForecast(ctx context.Context, res Resolution) Response {
	loc, ok := singleLocation(res)
	if !ok {
		return Response{Text: d.formatter.NoLocationText(), ErrorCode: CodeLocationNotFound}
	}

	fc, err := d.fetcher.Forecast(ctx, loc, res.Days)
	if err != nil {
		return d.failure(loc, err)
	}
	return Response{Text: d.formatter.Forecast(fc)}
}

func (d *Dispatcher) handleAirQuality(ctx context.Context, res Resolution) Response {
	loc, ok := singleLocation(res)
	if !ok {
		return Response{Text: d.formatter.NoLocationText(), ErrorCode: CodeLocationNotFound}
	}

	aq, err := d.fetcher.AirQuality(ctx, loc)
	if err != nil {
		return d.failure(loc, err)
	}
	return Response{Text: d.formatter.AirQuality(aq)}
}

func (d *Dispatcher) handleRecommendation(ctx context.Context, res Resolution) Response {
	loc, ok := singleLocation(res)
	if !ok {
		return Response{Text: d.formatter.NoLocationText(), ErrorCode: CodeLocationNotFound}
	}

	snap, err := d.fetcher.Current(ctx, loc)
	if err != nil {
		return d.failure(loc, err)
	}

	rec := d.composer.Compose(ctx, snap)
	return Response{Text: d.formatter.Recommendation(rec)}
}

// handleCompare fans out both fetches concurrently and waits for both
// outcomes before formatting; one failed side still renders the other.
func (d *Dispatcher) handleCompare(ctx context.Context, res Resolution) Response {
	if len(res.Locations) != 2 {
		return Response{Text: d.formatter.NoLocationText(), ErrorCode: CodeLocationNotFound}
	}

	sides := [2]CompareSide{
		{Location: res.Locations[0]},
		{Location: res.Locations[1]},
	}

	var wg sync.WaitGroup
	for i := range sides {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sides[i].Snapshot, sides[i].Err = d.fetcher.Current(ctx, sides[i].Location)
		}(i)
	}
	wg.Wait()

	text := d.formatter.Compare(sides[0], sides[1])

	switch {
	case sides[0].Err != nil && sides[1].Err != nil:
		return Response{Text: text, ErrorCode: codeFor(sides[0].Err)}
	case sides[0].Err != nil || sides[1].Err != nil:
		return Response{Text: text, ErrorCode: CodePartialCompare}
	default:
		return Response{Text: text}
	}
}

// handleSummary requires current conditions; forecast and air quality are
// best-effort sections.
func (d *Dispatcher) handleSummary(ctx context.Context, res Resolution) Response {
	loc, ok := singleLocation(res)
	if !ok {
		return Response{Text: d.formatter.NoLocationText(), ErrorCode: CodeLocationNotFound}
	}

	snap, err := d.fetcher.Current(ctx, loc)
	if err != nil {
		return d.failure(loc, err)
	}

	var fc *weather.Forecast
	if got, err := d.fetcher.Forecast(ctx, loc, DefaultForecastDays); err == nil {
		fc = &got
	} else {
		log.Printf("agent: summary forecast failed for %s: %v", loc.Key(), err)
	}

	var aq *weather.AirQuality
	if got, err := d.fetcher.AirQuality(ctx, loc); err == nil {
		aq = &got
	} else {
		log.Printf("agent: summary air quality failed for %s: %v", loc.Key(), err)
	}

	return Response{Text: d.formatter.Summary(snap, fc, aq)}
}

// handleOpenEnded routes unmatched queries through the generative path,
// with current conditions as context when a location was extracted.
func (d *Dispatcher) handleOpenEnded(ctx context.Context, query string, res Resolution) Response {
	var snap *weather.Snapshot
	if len(res.Locations) > 0 {
		if got, err := d.fetcher.Current(ctx, res.Locations[0]); err == nil {
			snap = &got
		} else {
			log.Printf("agent: open-ended context fetch failed for %s: %v", res.Locations[0].Key(), err)
		}
	}

	text, _ := d.composer.Answer(ctx, query, snap)
	return Response{Text: text}
}

func (d *Dispatcher) failure(loc weather.Location, err error) Response {
	log.Printf("agent: fetch failed for %s: %v", loc.Key(), err)
	return Response{
		Text:      d.formatter.FailureText(loc, err),
		ErrorCode: codeFor(err),
	}
}

func singleLocation(res Resolution) (weather.Location, bool) {
	if len(res.Locations) == 0 {
		return weather.Location{}, false
	}
	return res.Locations[0], true
}

func codeFor(err error) string {
	switch weather.KindOf(err) {
	case weather.FailureNotFound:
		return CodeNotFound
	case weather.FailureRateLimited:
		return CodeRateLimited
	default:
		return CodeProviderUnavailable
	}
}

const helpText = `☀️ Weather Agent

I can answer questions like:

Current weather:  "Weather in London", "Tokyo temperature"
Forecast:         "5 day forecast for Paris", "Weather tomorrow in Berlin"
Air quality:      "Air quality in Delhi", "AQI Beijing"
Recommendations:  "What to wear in London", "Should I take an umbrella in Seattle"
Compare cities:   "Compare London and Paris", "Tokyo vs New York weather"
Full summary:     "Complete weather summary for Sydney"

Or ask anything weather-related in your own words.`
