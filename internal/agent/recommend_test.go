package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-agent/internal/weather"
)

type stubGenerator struct {
	text string
	err  error
}

func (g *stubGenerator) Generate(_ context.Context, _ string) (string, error) {
	return g.text, g.err
}

func snapshotAt(tempC float64) weather.Snapshot {
	return weather.Snapshot{
		Location:    weather.Location{Name: "London", Country: "GB"},
		Temperature: tempC,
		FeelsLike:   tempC,
		Humidity:    60,
		WindSpeed:   4,
		Condition:   weather.ConditionCloudy,
	}
}

func TestComposeUsesGenerator(t *testing.T) {
	c := NewComposer(&stubGenerator{text: "Bring sunglasses."})

	rec := c.Compose(context.Background(), snapshotAt(20))

	assert.False(t, rec.Fallback)
	assert.Equal(t, "Bring sunglasses.", rec.Advice)
}

func TestComposeFallsBackOnGeneratorError(t *testing.T) {
	c := NewComposer(&stubGenerator{err: errors.New("boom")})

	rec := c.Compose(context.Background(), snapshotAt(20))

	assert.True(t, rec.Fallback)
	assert.NotEmpty(t, rec.Advice)
}

func TestComposeFallsBackWithoutGenerator(t *testing.T) {
	c := NewComposer(nil)

	rec := c.Compose(context.Background(), snapshotAt(20))

	assert.True(t, rec.Fallback)
	assert.NotEmpty(t, rec.Advice)
}

func TestFallbackThresholds(t *testing.T) {
	tests := []struct {
		name string
		snap weather.Snapshot
		want string
	}{
		{"freezing", snapshotAt(2), "heavy coat"},
		{"cool", snapshotAt(10), "light jacket"},
		{"mild", snapshotAt(20), "Comfortable clothing"},
		{"hot", snapshotAt(31), "stay hydrated"},
	}

	c := NewComposer(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := c.Compose(context.Background(), tt.snap)
			require.True(t, rec.Fallback)
			assert.Contains(t, rec.Advice, tt.want)
		})
	}
}

func TestFallbackAppendsUmbrellaAdvice(t *testing.T) {
	snap := snapshotAt(10)
	snap.PrecipMM = 2.5

	rec := NewComposer(nil).Compose(context.Background(), snap)

	assert.Contains(t, rec.Advice, "umbrella")
}

func TestAnswerFallsBackWithContext(t *testing.T) {
	c := NewComposer(&stubGenerator{err: errors.New("unavailable")})
	snap := snapshotAt(8)

	text, fallback := c.Answer(context.Background(), "is it cold out?", &snap)

	assert.True(t, fallback)
	assert.Contains(t, text, "London")
}

func TestAnswerFallsBackWithoutContext(t *testing.T) {
	c := NewComposer(nil)

	text, fallback := c.Answer(context.Background(), "hello", nil)

	assert.True(t, fallback)
	assert.NotEmpty(t, text)
}
