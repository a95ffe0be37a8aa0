package score

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"chatleads/internal/analysis/catalog"
)

func intents(tags ...string) map[string]bool {
	m := make(map[string]bool, len(tags))
	for _, tag := range tags {
		m[tag] = true
	}
	return m
}

func TestWeights_Score(t *testing.T) {
	w := DefaultWeights()

	tests := []struct {
		name     string
		in       Input
		expected int
	}{
		{
			name:     "empty input scores zero recency only",
			in:       Input{DaysSinceContact: 90},
			expected: 0,
		},
		{
			name:     "same-day contact",
			in:       Input{DaysSinceContact: 0},
			expected: 40,
		},
		{
			name:     "recency bands",
			in:       Input{DaysSinceContact: 5},
			expected: 30,
		},
		{
			name:     "recency band upper edge",
			in:       Input{DaysSinceContact: 30},
			expected: 10,
		},
		{
			name:     "recency band just past edge",
			in:       Input{DaysSinceContact: 31},
			expected: 0,
		},
		{
			name: "hot lead crosses the maximum threshold",
			in: Input{
				DaysSinceContact: 2,
				HasEmail:         true,
				Intents:          intents(catalog.IntentBulkQuote),
				ProductCount:     1,
				MessageCount:     3,
			},
			expected: 80, // 40 + 15 + 20 + 5
		},
		{
			name: "product contribution is capped",
			in: Input{
				DaysSinceContact: 60,
				ProductCount:     7,
			},
			expected: 15,
		},
		{
			name: "engagement tiers",
			in: Input{
				DaysSinceContact: 60,
				MessageCount:     8,
			},
			expected: 10,
		},
		{
			name: "moderate engagement",
			in: Input{
				DaysSinceContact: 60,
				MessageCount:     5,
			},
			expected: 5,
		},
		{
			name: "browsing penalty",
			in: Input{
				DaysSinceContact: 2,
				Intents:          intents(catalog.IntentBrowsing),
			},
			expected: 25, // 40 - 15
		},
		{
			name: "sole site-problem intent is penalized",
			in: Input{
				DaysSinceContact: 60,
				Intents:          intents(catalog.IntentSiteProblem),
			},
			expected: -10,
		},
		{
			name: "site problem alongside another intent is not penalized",
			in: Input{
				DaysSinceContact: 60,
				Intents:          intents(catalog.IntentSiteProblem, catalog.IntentPrice),
			},
			expected: 10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, w.Score(tt.in))
		})
	}
}

func TestWeights_Score_RecencyMonotonic(t *testing.T) {
	w := DefaultWeights()

	prev := w.Score(Input{DaysSinceContact: 0})
	for days := 1; days <= 40; days++ {
		got := w.Score(Input{DaysSinceContact: days})
		assert.LessOrEqual(t, got, prev, "score rose at day %d", days)
		prev = got
	}
}

func TestTier(t *testing.T) {
	tests := []struct {
		score     int
		wantTier  int
		wantLabel string
	}{
		{100, 1, LabelMaximum},
		{70, 1, LabelMaximum},
		{69, 2, LabelHigh},
		{50, 2, LabelHigh},
		{49, 3, LabelMedium},
		{35, 3, LabelMedium},
		{34, 4, LabelLow},
		{20, 4, LabelLow},
		{19, 5, LabelVeryLow},
		{0, 5, LabelVeryLow},
		{-25, 5, LabelVeryLow},
	}

	for _, tt := range tests {
		tier, label := Tier(tt.score)
		assert.Equal(t, tt.wantTier, tier, "score %d", tt.score)
		assert.Equal(t, tt.wantLabel, label, "score %d", tt.score)
	}
}

func TestLabels(t *testing.T) {
	assert.Equal(t, []string{LabelMaximum, LabelHigh, LabelMedium, LabelLow, LabelVeryLow}, Labels())
}
