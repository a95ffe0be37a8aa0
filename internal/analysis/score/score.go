// Package score turns a conversation's signals, recency and engagement into
// a numeric priority score and one of five follow-up tiers.
package score

import "chatleads/internal/analysis/catalog"

// Priority tier labels, 1 = contact immediately, 5 = passive nurturing.
const (
	LabelMaximum = "🔴 MÁXIMA"
	LabelHigh    = "🟠 ALTA"
	LabelMedium  = "🟡 MEDIA"
	LabelLow     = "🔵 BAJA"
	LabelVeryLow = "⚪ MUY BAJA"
)

// Labels returns the tier labels in urgency order, tier 1 first.
func Labels() []string {
	return []string{LabelMaximum, LabelHigh, LabelMedium, LabelLow, LabelVeryLow}
}

// Weights is the additive scoring table. All weights are configuration:
// the ceiling on the product contribution in particular is deliberate
// tuning, not a structural constant.
type Weights struct {
	Recency3  int `mapstructure:"recency_3d"`
	Recency7  int `mapstructure:"recency_7d"`
	Recency14 int `mapstructure:"recency_14d"`
	Recency30 int `mapstructure:"recency_30d"`

	HasEmail int `mapstructure:"has_email"`

	BulkQuote      int `mapstructure:"bulk_quote"`
	Contractor     int `mapstructure:"contractor"`
	SeekingProduct int `mapstructure:"seeking_product"`
	PriceInquiry   int `mapstructure:"price_inquiry"`

	PerProduct int `mapstructure:"per_product"`
	ProductCap int `mapstructure:"product_cap"`

	HighEngagement     int `mapstructure:"high_engagement"`      // ≥8 messages
	ModerateEngagement int `mapstructure:"moderate_engagement"`  // ≥5 messages

	BrowsingPenalty    int `mapstructure:"browsing_penalty"`
	SiteProblemPenalty int `mapstructure:"site_problem_penalty"` // applies only when it is the sole intent
}

// DefaultWeights returns the production scoring table.
func DefaultWeights() Weights {
	return Weights{
		Recency3:  40,
		Recency7:  30,
		Recency14: 20,
		Recency30: 10,

		HasEmail: 15,

		BulkQuote:      20,
		Contractor:     15,
		SeekingProduct: 10,
		PriceInquiry:   10,

		PerProduct: 5,
		ProductCap: 15,

		HighEngagement:     10,
		ModerateEngagement: 5,

		BrowsingPenalty:    15,
		SiteProblemPenalty: 10,
	}
}

// Input carries the scoring factors for one conversation.
type Input struct {
	DaysSinceContact int
	HasEmail         bool
	Intents          map[string]bool
	ProductCount     int
	MessageCount     int
}

// Score computes the additive priority score. It is a pure function of its
// input: no randomness, no external state. Negative scores are legal; they
// simply land in the lowest tier.
func (w Weights) Score(in Input) int {
	score := 0

	switch {
	case in.DaysSinceContact <= 3:
		score += w.Recency3
	case in.DaysSinceContact <= 7:
		score += w.Recency7
	case in.DaysSinceContact <= 14:
		score += w.Recency14
	case in.DaysSinceContact <= 30:
		score += w.Recency30
	}

	if in.HasEmail {
		score += w.HasEmail
	}

	if in.Intents[catalog.IntentBulkQuote] {
		score += w.BulkQuote
	}
	if in.Intents[catalog.IntentContractor] {
		score += w.Contractor
	}
	if in.Intents[catalog.IntentSeekingProduct] {
		score += w.SeekingProduct
	}
	if in.Intents[catalog.IntentPrice] {
		score += w.PriceInquiry
	}

	productPoints := w.PerProduct * in.ProductCount
	if productPoints > w.ProductCap {
		productPoints = w.ProductCap
	}
	score += productPoints

	switch {
	case in.MessageCount >= 8:
		score += w.HighEngagement
	case in.MessageCount >= 5:
		score += w.ModerateEngagement
	}

	if in.Intents[catalog.IntentBrowsing] {
		score -= w.BrowsingPenalty
	}
	// The site-problem penalty is literal: exactly one detected intent,
	// and it is the site problem.
	if in.Intents[catalog.IntentSiteProblem] && len(in.Intents) == 1 {
		score -= w.SiteProblemPenalty
	}

	return score
}

// Tier maps a score onto the five ordinal urgency levels.
func Tier(score int) (int, string) {
	switch {
	case score >= 70:
		return 1, LabelMaximum
	case score >= 50:
		return 2, LabelHigh
	case score >= 35:
		return 3, LabelMedium
	case score >= 20:
		return 4, LabelLow
	default:
		return 5, LabelVeryLow
	}
}
