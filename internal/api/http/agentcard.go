package httpapi

// Skill describes one capability on the agent card.
type Skill struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Examples    []string `json:"examples"`
}

// Card is the discovery descriptor served at /.well-known/agent.json.
type Card struct {
	Name               string       `json:"name"`
	Description        string       `json:"description"`
	URL                string       `json:"url"`
	Version            string       `json:"version"`
	DefaultInputModes  []string     `json:"defaultInputModes"`
	DefaultOutputModes []string     `json:"defaultOutputModes"`
	Capabilities       Capabilities `json:"capabilities"`
	Skills             []Skill      `json:"skills"`
}

// Capabilities flags the optional protocol features this agent supports.
type Capabilities struct {
	Streaming         bool `json:"streaming"`
	PushNotifications bool `json:"pushNotifications"`
}

// AgentCard builds the capability descriptor for this agent.
func AgentCard(url string) Card {
	return Card{
		Name: "Weather Agent",
		Description: "Weather assistant providing current conditions, forecasts, " +
			"air quality, recommendations and city comparisons over JSON-RPC.",
		URL:                url,
		Version:            "1.0.0",
		DefaultInputModes:  []string{"text", "text/plain"},
		DefaultOutputModes: []string{"text", "text/plain"},
		Capabilities:       Capabilities{},
		Skills: []Skill{
			{
				ID:          "current_weather",
				Name:        "Current Weather",
				Description: "Get current weather conditions for any city including temperature, humidity and wind.",
				Tags:        []string{"weather", "current", "temperature", "conditions"},
				Examples: []string{
					"Weather in London",
					"Current temperature in Tokyo",
					"What's the weather in New York?",
				},
			},
			{
				ID:          "forecast",
				Name:        "Weather Forecast",
				Description: "Get a weather forecast for up to 5 days with daily high/low temperatures.",
				Tags:        []string{"weather", "forecast", "prediction", "future"},
				Examples: []string{
					"5 day forecast for Paris",
					"Weather forecast London",
					"What's the weather tomorrow in Berlin?",
				},
			},
			{
				ID:          "air_quality",
				Name:        "Air Quality Index",
				Description: "Get the air quality index and pollution levels for any city.",
				Tags:        []string{"air", "quality", "pollution", "aqi", "health"},
				Examples: []string{
					"Air quality in Delhi",
					"AQI for Beijing",
					"Pollution levels in Los Angeles",
				},
			},
			{
				ID:          "recommendations",
				Name:        "Weather Recommendations",
				Description: "Get recommendations for clothing and activities based on the weather.",
				Tags:        []string{"recommendations", "clothing", "activities", "advice"},
				Examples: []string{
					"What to wear in London today",
					"Should I take an umbrella in Seattle?",
					"Good day for outdoor activities in Miami?",
				},
			},
			{
				ID:          "compare",
				Name:        "Compare Weather",
				Description: "Compare weather conditions between two cities side by side.",
				Tags:        []string{"compare", "comparison", "cities", "versus"},
				Examples: []string{
					"Compare weather London and Paris",
					"Tokyo vs New York weather",
					"Weather difference between Miami and Seattle",
				},
			},
			{
				ID:          "summary",
				Name:        "Complete Weather Summary",
				Description: "Get a comprehensive weather report including current conditions, forecast and air quality.",
				Tags:        []string{"summary", "complete", "report", "comprehensive"},
				Examples: []string{
					"Complete weather summary for Sydney",
					"Full weather report Tokyo",
					"All weather info for London",
				},
			},
			{
				ID:          "query",
				Name:        "Natural Language Query",
				Description: "Ask any weather-related question in natural language.",
				Tags:        []string{"question", "natural-language", "ask"},
				Examples: []string{
					"Is it a good day for hiking in Denver?",
					"Will it rain this weekend in Chicago?",
					"Should I plan a beach trip to LA tomorrow?",
				},
			},
		},
	}
}
