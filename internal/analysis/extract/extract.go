// Package extract applies the pattern catalog to a conversation's visitor
// turns and produces its signal set.
package extract

import (
	"strings"

	"chatleads/internal/analysis/catalog"
	"chatleads/internal/models"
)

// Signals evaluates every intent and product rule against each visitor turn
// and unions the matches. Emails are appended in order of appearance with
// raw case preserved; "first email mentioned" is the chosen primary
// contact, so the sequence is order-sensitive and not deduplicated here.
// Re-running on the same turns yields an identical SignalSet.
func Signals(cat *catalog.Catalog, visitorTurns []string) models.SignalSet {
	set := models.NewSignalSet()
	for _, turn := range visitorTurns {
		lower := strings.ToLower(turn)

		for _, tag := range cat.MatchIntents(lower) {
			set.Intents[tag] = true
		}
		for _, tag := range cat.MatchProducts(lower) {
			set.Products[tag] = true
		}
		set.Emails = append(set.Emails, cat.FindEmails(turn)...)
	}
	return set
}
