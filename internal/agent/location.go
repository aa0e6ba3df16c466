package agent

import (
	"strings"

	"github.com/i474232898/weather-agent/internal/weather"
)

// Connector phrases that join two cities in a comparison query. Checked
// longest-first so "compared to" wins over "to".
var compareConnectors = []string{"compared to", "compared with", "versus", "vs.", "vs", "and"}

// stopwords are trigger and filler words that must never leak into a
// location name. Everything is matched lowercase.
var stopwords = map[string]bool{
	// intent triggers
	"weather": true, "forecast": true, "temperature": true, "temp": true,
	"air": true, "quality": true, "aqi": true, "pollution": true, "smog": true,
	"summary": true, "overview": true, "report": true, "complete": true,
	"full": true, "compare": true, "recommend": true, "recommendation": true,
	"recommendations": true, "suggestion": true, "wear": true, "bring": true,
	"pack": true, "umbrella": true, "jacket": true,
	// time words
	"today": true, "tomorrow": true, "tonight": true, "now": true,
	"current": true, "currently": true, "day": true, "days": true,
	"week": true, "weekend": true, "next": true, "this": true, "few": true,
	// condition words
	"hot": true, "cold": true, "warm": true, "rain": true, "raining": true,
	"sunny": true, "cloudy": true, "humid": true, "snow": true, "snowing": true,
	"wind": true, "windy": true, "humidity": true,
	// filler
	"what": true, "whats": true, "what's": true, "how": true, "is": true,
	"it": true, "the": true, "in": true, "for": true, "at": true, "of": true,
	"to": true, "a": true, "an": true, "i": true, "me": true, "my": true,
	"should": true, "will": true, "would": true, "can": true, "do": true,
	"get": true, "show": true, "tell": true, "give": true, "like": true,
	"please": true, "between": true, "there": true, "be": true, "good": true,
	"going": true, "outside": true, "take": true, "need": true,
	// connectors, so a one-sided split never swallows them
	"and": true, "or": true, "vs": true, "vs.": true, "versus": true,
	"compared": true, "with": true, "than": true,
}

// ExtractLocations pulls place references out of free text, ordered by
// appearance. A comparison connector splits the text into two sides, each
// yielding at most one location. Without a connector at most one location
// is returned. Failure to find anything yields an empty slice, never a
// placeholder.
func ExtractLocations(text string) []weather.Location {
	text = normalizeQuery(text)

	if left, right, ok := splitOnConnector(text); ok {
		var locs []weather.Location
		if loc, ok := parseLocation(left); ok {
			locs = append(locs, loc)
		}
		if loc, ok := parseLocation(right); ok {
			locs = append(locs, loc)
		}
		if len(locs) == 2 {
			return locs
		}
		// One-sided matches fall through to whole-text extraction so
		// "sunny and warm in London" still finds London.
	}

	if loc, ok := parseLocation(text); ok {
		return []weather.Location{loc}
	}
	return nil
}

// normalizeQuery trims the text, drops trailing punctuation and collapses
// whitespace around commas so "Portland, OR, US" tokenizes as one unit.
func normalizeQuery(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimRight(text, "?!.")

	replacer := strings.NewReplacer(", ", ",", " ,", ",")
	for {
		next := replacer.Replace(text)
		if next == text {
			break
		}
		text = next
	}
	return text
}

// splitOnConnector splits the text at the first comparison connector.
func splitOnConnector(text string) (left, right string, ok bool) {
	lower := strings.ToLower(text)

	for _, conn := range compareConnectors {
		needle := " " + conn + " "
		idx := strings.Index(lower, needle)
		if idx < 0 {
			continue
		}
		return text[:idx], text[idx+len(needle):], true
	}
	return "", "", false
}

// parseLocation finds runs of non-stopword tokens in the segment and
// interprets the most likely one as a place reference: the first run with
// a capitalized token wins, otherwise the first run. Comma-separated
// segments map to name, name+country, or name+state+country.
func parseLocation(segment string) (weather.Location, bool) {
	tokens := strings.Fields(segment)

	var runs [][]string
	var run []string
	for _, tok := range tokens {
		if isStopToken(tok) || isNumeric(tok) {
			if len(run) > 0 {
				runs = append(runs, run)
				run = nil
			}
			continue
		}
		run = append(run, tok)
	}
	if len(run) > 0 {
		runs = append(runs, run)
	}

	if len(runs) == 0 {
		return weather.Location{}, false
	}

	chosen := runs[0]
	for _, r := range runs {
		if isCapitalized(r[0]) {
			chosen = r
			break
		}
	}

	name := strings.Join(chosen, " ")
	parts := strings.Split(name, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	switch {
	case len(parts) >= 3 && parts[0] != "":
		return weather.Location{
			Name:    parts[0],
			State:   strings.ToUpper(parts[1]),
			Country: strings.ToUpper(parts[2]),
		}, true
	case len(parts) == 2 && parts[0] != "":
		return weather.Location{
			Name:    parts[0],
			Country: strings.ToUpper(parts[1]),
		}, true
	case parts[0] != "":
		return weather.Location{Name: parts[0]}, true
	default:
		return weather.Location{}, false
	}
}

// isStopToken checks the token (comma units check their first segment only,
// so "Paris,FR" survives even though "fr" alone would not).
func isStopToken(tok string) bool {
	first := tok
	if idx := strings.Index(tok, ","); idx >= 0 {
		first = tok[:idx]
	}
	return stopwords[strings.ToLower(strings.Trim(first, "'\""))]
}

func isCapitalized(tok string) bool {
	return tok != "" && tok[0] >= 'A' && tok[0] <= 'Z'
}

func isNumeric(tok string) bool {
	if tok == "" {
		return false
	}
	for _, r := range tok {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
