// Package aggregate folds per-conversation results into corpus-level
// statistics for the executive report. The accumulator is an explicit
// value: workers fold into private partials and merge them at a single
// synchronization point instead of sharing counters.
package aggregate

import (
	"sort"
	"strings"
	"time"

	"chatleads/internal/models"
)

// Accumulator carries the running corpus tallies. Zero value is not ready;
// use New.
type Accumulator struct {
	Sessions       int
	Messages       int
	LeadCandidates int

	// Time buckets use the conversation's recorded creation timestamp as
	// the producer stored it; no timezone conversion at this stage.
	SessionsByMonth   map[string]int       // "2006-01"
	SessionsByWeekday map[time.Weekday]int
	SessionsByHour    map[int]int

	// Each conversation contributes at most one count per tag.
	IntentCounts  map[string]int
	ProductCounts map[string]int

	// Emails is the deduplicated, lowercased set captured across the
	// corpus.
	Emails map[string]bool
}

func New() *Accumulator {
	return &Accumulator{
		SessionsByMonth:   make(map[string]int),
		SessionsByWeekday: make(map[time.Weekday]int),
		SessionsByHour:    make(map[int]int),
		IntentCounts:      make(map[string]int),
		ProductCounts:     make(map[string]int),
		Emails:            make(map[string]bool),
	}
}

// AddSession folds one conversation into the tallies. Conversations without
// visitor turns still count toward session statistics; leadCandidate marks
// the ones that continue into lead generation.
func (a *Accumulator) AddSession(conv models.Conversation, set models.SignalSet, leadCandidate bool) {
	a.Sessions++
	a.Messages += len(conv.Messages)
	if leadCandidate {
		a.LeadCandidates++
	}

	a.SessionsByMonth[conv.StartedAt.Format("2006-01")]++
	a.SessionsByWeekday[conv.StartedAt.Weekday()]++
	a.SessionsByHour[conv.StartedAt.Hour()]++

	for tag := range set.Intents {
		a.IntentCounts[tag]++
	}
	for tag := range set.Products {
		a.ProductCounts[tag]++
	}
	for _, email := range set.Emails {
		a.Emails[strings.ToLower(email)] = true
	}
}

// Merge folds other into a. Merging partials built from disjoint
// conversation sets equals folding the union directly.
func (a *Accumulator) Merge(other *Accumulator) {
	a.Sessions += other.Sessions
	a.Messages += other.Messages
	a.LeadCandidates += other.LeadCandidates

	mergeCounts(a.SessionsByMonth, other.SessionsByMonth)
	for k, v := range other.SessionsByWeekday {
		a.SessionsByWeekday[k] += v
	}
	for k, v := range other.SessionsByHour {
		a.SessionsByHour[k] += v
	}
	mergeCounts(a.IntentCounts, other.IntentCounts)
	mergeCounts(a.ProductCounts, other.ProductCounts)
	for email := range other.Emails {
		a.Emails[email] = true
	}
}

func mergeCounts(dst, src map[string]int) {
	for k, v := range src {
		dst[k] += v
	}
}

// UniqueEmailCount returns the number of distinct captured emails.
func (a *Accumulator) UniqueEmailCount() int { return len(a.Emails) }

// SortedEmails returns the captured email set in lexicographic order.
func (a *Accumulator) SortedEmails() []string {
	out := make([]string, 0, len(a.Emails))
	for e := range a.Emails {
		out = append(out, e)
	}
	sort.Strings(out)
	return out
}

// Months returns the observed month buckets in chronological order.
func (a *Accumulator) Months() []string {
	out := make([]string, 0, len(a.SessionsByMonth))
	for m := range a.SessionsByMonth {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// TagCount is a tag with its session count.
type TagCount struct {
	Tag   string
	Count int
}

// TopIntents returns intent counts sorted by frequency descending, ties
// broken by tag name for stable report output.
func (a *Accumulator) TopIntents() []TagCount { return sortCounts(a.IntentCounts) }

// TopProducts returns product counts sorted by frequency descending.
func (a *Accumulator) TopProducts() []TagCount { return sortCounts(a.ProductCounts) }

func sortCounts(m map[string]int) []TagCount {
	out := make([]TagCount, 0, len(m))
	for tag, count := range m {
		out = append(out, TagCount{Tag: tag, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Tag < out[j].Tag
	})
	return out
}
