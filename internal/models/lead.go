package models

import (
	"sort"
	"strings"
	"time"
)

// SignalSet holds the structured signals extracted from one conversation's
// visitor turns. Built once per conversation and never mutated afterwards.
// An empty SignalSet is valid (unclassified conversation).
type SignalSet struct {
	Intents  map[string]bool
	Products map[string]bool
	// Emails keeps first-seen order with raw case preserved. The first
	// entry, lowercased, becomes the lead's primary contact.
	Emails []string
}

func NewSignalSet() SignalSet {
	return SignalSet{
		Intents:  make(map[string]bool),
		Products: make(map[string]bool),
	}
}

func (s SignalSet) HasIntent(tag string) bool { return s.Intents[tag] }

func (s SignalSet) HasEmail() bool { return len(s.Emails) > 0 }

// PrimaryEmail returns the first captured email, lowercased and trimmed,
// or "" when the conversation carried none.
func (s SignalSet) PrimaryEmail() string {
	if len(s.Emails) == 0 {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(s.Emails[0]))
}

func (s SignalSet) ProductCount() int { return len(s.Products) }

// IntentTags returns the detected intent tags in sorted order.
func (s SignalSet) IntentTags() []string {
	return sortedKeys(s.Intents)
}

// ProductTags returns the detected product tags in sorted order.
func (s SignalSet) ProductTags() []string {
	return sortedKeys(s.Products)
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// PartnerProfile is the contact record returned by the CRM enrichment
// lookup. The zero value means "not found".
type PartnerProfile struct {
	Name           string  `json:"name"`
	Phone          string  `json:"phone"`
	Mobile         string  `json:"mobile"`
	City           string  `json:"city"`
	State          string  `json:"state"`
	Company        string  `json:"company"`
	Function       string  `json:"function"`
	IsCompany      bool    `json:"is_company"`
	SaleOrderCount int     `json:"sale_order_count"`
	TotalInvoiced  float64 `json:"total_invoiced"`
}

// ExistingCustomer reports whether the profile shows prior commercial
// activity.
func (p PartnerProfile) ExistingCustomer() bool {
	return p.SaleOrderCount > 0 || p.TotalInvoiced > 0
}

// LeadRecord is the classified, prioritized result for one conversation.
// Recomputed fresh on every report run; there is no cross-run persistence.
type LeadRecord struct {
	ConversationID   int64
	ChatDate         time.Time
	DaysSinceContact int

	PrimaryEmail  string
	ClientType    string
	Score         int
	PriorityTier  int
	PriorityLabel string

	Intents  []string
	Products []string

	SummaryExcerpt    string
	SuggestedApproach string
	FullTranscript    string
	MessageCount      int

	// Enrichment fields, blank when the lookup found nothing.
	Profile            PartnerProfile
	IsExistingCustomer bool
}
